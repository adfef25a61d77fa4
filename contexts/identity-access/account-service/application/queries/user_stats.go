package queries

import (
	"context"
	"time"

	"lyceum/contexts/identity-access/account-service/ports"
)

type UserStats struct {
	TotalUsers  int64
	ActiveUsers int64
	BannedUsers int64
	AdminUsers  int64
}

// UserStatsUseCase feeds the admin analytics read model; callers gate it.
type UserStatsUseCase struct {
	Repository   ports.Repository
	Clock        ports.Clock
	ActiveWindow time.Duration
}

func (u UserStatsUseCase) Execute(ctx context.Context) (UserStats, error) {
	counts, err := u.Repository.CountUsers(ctx)
	if err != nil {
		return UserStats{}, err
	}
	window := u.ActiveWindow
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	now := time.Now().UTC()
	if u.Clock != nil {
		now = u.Clock.Now().UTC()
	}
	active, err := u.Repository.CountActiveUsers(ctx, now.Add(-window))
	if err != nil {
		return UserStats{}, err
	}
	return UserStats{
		TotalUsers:  counts.Total,
		ActiveUsers: active,
		BannedUsers: counts.Banned,
		AdminUsers:  counts.Admins,
	}, nil
}
