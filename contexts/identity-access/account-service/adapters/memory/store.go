package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"lyceum/contexts/identity-access/account-service/domain/entities"
	domainerrors "lyceum/contexts/identity-access/account-service/domain/errors"
	"lyceum/contexts/identity-access/account-service/ports"
	"lyceum/internal/shared/gate"
)

// Store is an in-memory account repository for local runs and tests.
type Store struct {
	mu       sync.RWMutex
	users    map[string]entities.User
	emails   map[string]string
	activity []entities.ActivityEvent
	sequence uint64
}

func NewStore() *Store {
	return &Store{
		users:  make(map[string]entities.User),
		emails: make(map[string]string),
	}
}

// SeedUser inserts or replaces a user as-is.
func (s *Store) SeedUser(user entities.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[user.UserID]; ok {
		delete(s.emails, existing.Email)
	}
	s.users[user.UserID] = user
	s.emails[strings.ToLower(user.Email)] = user.UserID
}

func (s *Store) CreateUser(_ context.Context, user entities.User) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emails[user.Email]; taken {
		return entities.User{}, domainerrors.ErrEmailTaken
	}
	s.users[user.UserID] = user
	s.emails[user.Email] = user.UserID
	return user, nil
}

func (s *Store) GetUser(_ context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.emails[email]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return s.users[userID], nil
}

func (s *Store) ListUsers(_ context.Context, filter ports.UserFilter) ([]entities.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.User, 0, len(s.users))
	for _, user := range s.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		items = append(items, user)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].UserID < items[j].UserID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	total := len(items)
	start := (filter.Page - 1) * filter.Limit
	if start < 0 || start >= total {
		return []entities.User{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return append([]entities.User(nil), items[start:end]...), total, nil
}

func (s *Store) UpdateProfile(_ context.Context, userID string, patch ports.ProfilePatch, now time.Time) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Bio != nil {
		user.Bio = strings.TrimSpace(*patch.Bio)
	}
	user.UpdatedAt = now
	s.users[userID] = user
	return user, nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, userID string, passwordHash string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return domainerrors.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = now
	s.users[userID] = user
	return nil
}

func (s *Store) UpdateRole(_ context.Context, userID string, role gate.Role, now time.Time) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	user.Role = role
	user.UpdatedAt = now
	s.users[userID] = user
	return user, nil
}

func (s *Store) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return domainerrors.ErrUserNotFound
	}
	delete(s.users, userID)
	delete(s.emails, user.Email)
	return nil
}

func (s *Store) CountUsers(context.Context) (ports.UserCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := ports.UserCounts{Total: int64(len(s.users))}
	for _, user := range s.users {
		switch user.Role {
		case gate.RoleAdmin:
			counts.Admins++
		case gate.RoleBanned:
			counts.Banned++
		}
	}
	return counts, nil
}

func (s *Store) RecordActivity(_ context.Context, event entities.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = append(s.activity, event)
	return nil
}

func (s *Store) CountActiveUsers(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, event := range s.activity {
		if event.OccurredAt.Before(since) {
			continue
		}
		if _, ok := s.users[event.UserID]; !ok {
			continue
		}
		seen[event.UserID] = struct{}{}
	}
	return int64(len(seen)), nil
}

func (s *Store) NewID(context.Context) (string, error) {
	n := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("usr_%d", n), nil
}

var _ ports.Repository = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
