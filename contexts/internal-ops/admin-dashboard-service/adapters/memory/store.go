package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"lyceum/contexts/internal-ops/admin-dashboard-service/ports"
)

type Store struct {
	mu       sync.Mutex
	logs     []ports.AuditLog
	sequence uint64
}

func NewStore() *Store {
	return &Store{logs: make([]ports.AuditLog, 0, 128)}
}

func (s *Store) AppendAuditLog(_ context.Context, row ports.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, row)
	return nil
}

// ListRecentAuditLogs returns newest first.
func (s *Store) ListRecentAuditLogs(_ context.Context, limit int) ([]ports.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	out := make([]ports.AuditLog, 0, min(limit, len(s.logs)))
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.logs[i])
	}
	return out, nil
}

func (s *Store) NewID(context.Context) (string, error) {
	n := atomic.AddUint64(&s.sequence, 1)
	return fmt.Sprintf("audit_%d", n), nil
}

var _ ports.Repository = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
