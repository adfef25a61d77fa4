package commands

import (
	"context"
	"errors"
	"log/slog"

	application "lyceum/contexts/identity-access/account-service/application"
	"lyceum/contexts/identity-access/account-service/domain/entities"
	domainerrors "lyceum/contexts/identity-access/account-service/domain/errors"
	"lyceum/contexts/identity-access/account-service/ports"
)

type LoginCommand struct {
	Email    string
	Password string
}

type LoginResult struct {
	Session ports.Session
	User    entities.User
}

// LoginUseCase verifies credentials and issues a session. Banned users may
// still sign in; the gate blocks their uploads.
type LoginUseCase struct {
	Repository  ports.Repository
	Hasher      ports.PasswordHasher
	Sessions    ports.SessionIssuer
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func (u LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (LoginResult, error) {
	logger := application.ResolveLogger(u.Logger)
	email := normalizeEmail(cmd.Email)
	if email == "" {
		return LoginResult{}, invalid("email", "is required")
	}
	if cmd.Password == "" {
		return LoginResult{}, invalid("password", "is required")
	}

	user, err := u.Repository.GetUserByEmail(ctx, email)
	if errors.Is(err, domainerrors.ErrUserNotFound) {
		return LoginResult{}, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := u.Hasher.Compare(user.PasswordHash, cmd.Password); err != nil {
		logger.Info("login rejected",
			"event", "account_login_rejected",
			"module", "identity-access/account-service",
			"layer", "application",
			"user_id", user.UserID,
		)
		return LoginResult{}, domainerrors.ErrInvalidCredentials
	}

	session, err := u.Sessions.Issue(ctx, user.Principal())
	if err != nil {
		return LoginResult{}, err
	}
	recordActivity(ctx, u.Repository, u.IDGenerator, u.Logger, user.UserID, entities.ActivityLogin, nowFrom(u.Clock))

	logger.Info("login succeeded",
		"event", "account_login_succeeded",
		"module", "identity-access/account-service",
		"layer", "application",
		"user_id", user.UserID,
		"role", string(user.Role),
	)
	return LoginResult{Session: session, User: user}, nil
}
