package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "lyceum/contexts/identity-access/account-service/application"
	"lyceum/contexts/identity-access/account-service/domain/entities"
	domainerrors "lyceum/contexts/identity-access/account-service/domain/errors"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
	"lyceum/internal/shared/validation"
)

const (
	resourceUser      = "User"
	minPasswordLength = 8
	// bcrypt rejects inputs longer than 72 bytes; multibyte runes count per byte.
	maxPasswordBytes = 72
)

func invalid(field string, detail string) error {
	return fmt.Errorf("%w: %w", domainerrors.ErrInvalidRequest, validation.Field(field, detail))
}

func nowFrom(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// userOwner treats an account as owned by itself.
func userOwner(repository ports.Repository, userID string) gate.OwnerLookup {
	return func(ctx context.Context) (string, bool, error) {
		user, err := repository.GetUser(ctx, userID)
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return user.UserID, true, nil
	}
}

// recordActivity never fails the calling command.
func recordActivity(
	ctx context.Context,
	repository ports.Repository,
	ids ports.IDGenerator,
	logger *slog.Logger,
	userID string,
	kind entities.ActivityKind,
	at time.Time,
) {
	logger = application.ResolveLogger(logger)
	eventID, err := ids.NewID(ctx)
	if err == nil {
		err = repository.RecordActivity(ctx, entities.ActivityEvent{
			EventID:    eventID,
			UserID:     userID,
			Kind:       kind,
			OccurredAt: at,
		})
	}
	if err != nil {
		logger.Warn("activity record failed",
			"event", "account_activity_record_failed",
			"module", "identity-access/account-service",
			"layer", "application",
			"user_id", userID,
			"kind", string(kind),
			"error", err.Error(),
		)
	}
}
