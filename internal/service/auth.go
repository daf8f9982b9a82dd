package service

import (
	"context"
	"strings"
	"time"

	"github.com/boddenberg/controletok-go/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

// SimulatedAuthenticator accepts any non-empty credentials. There is no
// user database: the identity is whatever the form says.
type SimulatedAuthenticator struct {
	delay  time.Duration
	logger *zap.Logger
}

// NewSimulatedAuthenticator creates an authenticator that waits delay
// before answering (0 answers immediately).
func NewSimulatedAuthenticator(delay time.Duration, logger *zap.Logger) *SimulatedAuthenticator {
	return &SimulatedAuthenticator{delay: delay, logger: logger}
}

func (a *SimulatedAuthenticator) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	ctx, span := authTracer.Start(ctx, "SimulatedAuthenticator.Authenticate")
	defer span.End()
	span.SetAttributes(attribute.Bool("auth.register", creds.Register))

	email := domain.NormalizeEmail(creds.Email)
	name := strings.TrimSpace(creds.Name)

	switch {
	case email == "":
		return nil, &domain.ErrValidation{Field: "email", Message: "required"}
	case !strings.Contains(email, "@"):
		return nil, &domain.ErrValidation{Field: "email", Message: "invalid email"}
	case creds.Password == "":
		return nil, &domain.ErrValidation{Field: "password", Message: "required"}
	case creds.Register && name == "":
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}

	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	// No login, o nome vem da parte local do e-mail.
	if !creds.Register || name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	a.logger.Debug("simulated authentication",
		zap.String("email", email),
		zap.Bool("register", creds.Register),
	)
	return &domain.User{Name: name, Email: email}, nil
}
