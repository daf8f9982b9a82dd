package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/controletok-go/internal/domain"

	"go.uber.org/zap"
)

// maxPhotoBytes caps the data-URL photo kept in the current-user pointer.
const maxPhotoBytes = 2 << 20

// UpdateProfile changes the name and optionally the photo of the session
// user and rewrites the current-user pointer. A nil Photo keeps the current
// one; an empty string removes it. The e-mail cannot change.
func (c *Controller) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Controller.UpdateProfile")
	defer span.End()
	start := time.Now()

	name := strings.TrimSpace(upd.Name)
	if name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if upd.Photo != nil {
		if len(*upd.Photo) > maxPhotoBytes {
			return nil, &domain.ErrValidation{Field: "photo", Message: "image too large"}
		}
		if *upd.Photo != "" && !strings.HasPrefix(*upd.Photo, "data:image/") {
			return nil, &domain.ErrValidation{Field: "photo", Message: "must be an image data URL"}
		}
	}

	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil, domain.ErrNotLoggedIn
	}

	next := *c.user
	next.Name = name
	if upd.Photo != nil {
		next.Photo = *upd.Photo
	}

	if err := saveJSON(ctx, c.store, currentUserKey, next); err != nil {
		c.mu.Unlock()
		return nil, c.persistErr("update_profile", err)
	}
	c.user = &next
	c.mu.Unlock()

	c.mutated("update_profile", start)
	c.logger.Info("profile updated", zap.String("email", next.Email))
	c.emit(ctx, domain.ChangeEvent{Type: domain.ChangeProfileUpdated, Email: next.Email})

	out := next
	return &out, nil
}

// Theme reads the stored theme of the session user; light when unset.
func (c *Controller) Theme(ctx context.Context) (domain.Theme, error) {
	user, err := c.CurrentUser()
	if err != nil {
		return "", err
	}

	raw, ok, err := c.store.Get(ctx, themeKey(user.Email))
	if err != nil {
		c.metrics.IncrStorageError("theme")
		return "", fmt.Errorf("load %s: %w", themeKey(user.Email), err)
	}
	theme := domain.Theme(strings.Trim(string(raw), "\" \n"))
	if !ok || !theme.Valid() {
		return domain.ThemeLight, nil
	}
	return theme, nil
}

// SetTheme stores the theme preference of the session user.
func (c *Controller) SetTheme(ctx context.Context, theme domain.Theme) error {
	ctx, span := tracer.Start(ctx, "Controller.SetTheme")
	defer span.End()
	start := time.Now()

	if !theme.Valid() {
		return &domain.ErrValidation{Field: "theme", Message: "must be light or dark"}
	}

	user, err := c.CurrentUser()
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, themeKey(user.Email), []byte(theme)); err != nil {
		return c.persistErr("set_theme", fmt.Errorf("save %s: %w", themeKey(user.Email), err))
	}

	c.mutated("set_theme", start)
	c.emit(ctx, domain.ChangeEvent{Type: domain.ChangeThemeUpdated, Email: user.Email})
	return nil
}

// ============================================================
// Consultor IA
// ============================================================

// RequestAdvice asks the advisor about the active-context transactions.
// The lock is released while the advisor runs. When several requests
// overlap, the newest one to be issued wins the session's last advice;
// an older result is still returned to its own caller.
func (c *Controller) RequestAdvice(ctx context.Context) (*domain.Advice, error) {
	ctx, span := tracer.Start(ctx, "Controller.RequestAdvice")
	defer span.End()

	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil, domain.ErrNotLoggedIn
	}
	accounting := c.context
	visible := make([]domain.Transaction, 0, len(c.transactions))
	for _, t := range c.transactions {
		if t.Context == accounting {
			visible = append(visible, t)
		}
	}
	email := c.user.Email
	c.adviceSeq++
	seq := c.adviceSeq
	c.mu.Unlock()

	advice := c.advisor.Advise(ctx, visible, accounting)

	c.mu.Lock()
	if c.user != nil && c.user.Email == email && seq > c.adviceShown {
		c.lastAdvice = advice
		c.adviceShown = seq
	} else {
		c.logger.Debug("advice superseded", zap.Uint64("seq", seq), zap.Uint64("shown", c.adviceShown))
	}
	c.mu.Unlock()

	return advice, nil
}

// LastAdvice returns the advice currently shown for the session, or nil.
func (c *Controller) LastAdvice() (*domain.Advice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return nil, domain.ErrNotLoggedIn
	}
	if c.lastAdvice == nil {
		return nil, nil
	}
	a := *c.lastAdvice
	return &a, nil
}
