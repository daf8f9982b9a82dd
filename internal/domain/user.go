package domain

import "strings"

// ============================================================
// Usuário / Sessão
// ============================================================

// User is the identity a session belongs to. Email is the storage key and is
// always kept lower-cased.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo,omitempty"` // data URL
}

// NormalizeEmail returns the canonical form of an email used for storage keys.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Credentials is the login/registration form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Register bool   `json:"-"`
}

// ProfileUpdate carries the editable profile fields. The email is not editable.
type ProfileUpdate struct {
	Name  string  `json:"name"`
	Photo *string `json:"photo,omitempty"`
}

// Theme is the per-user display preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// LoginResponse is returned by POST /v1/auth/login and /v1/auth/register.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
	User        *User  `json:"user"`
}

// SessionInfo describes the active session.
type SessionInfo struct {
	User    *User   `json:"user"`
	Context Context `json:"context"`
	Theme   Theme   `json:"theme"`
}
