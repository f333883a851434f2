package memstore

import (
	"context"
	"time"

	"github.com/rzyfront/vendix-core/internal/domain"
)

func (s *Store) AppendAudit(_ context.Context, orgID int64, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *clone(entry)
	stored.ID = s.id()
	stored.OrganizationID = orgID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.audits = append(s.audits, stored)
	return nil
}

func (s *Store) ListAudit(_ context.Context, orgID int64, page, limit int) ([]domain.AuditEntry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Newest first.
	var out []domain.AuditEntry
	for i := len(s.audits) - 1; i >= 0; i-- {
		if s.audits[i].OrganizationID == orgID {
			out = append(out, s.audits[i])
		}
	}
	total := int64(len(out))
	return paginate(out, page, limit), total, nil
}
