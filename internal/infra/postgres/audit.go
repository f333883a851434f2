package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rzyfront/vendix-core/internal/domain"
)

func (s *Store) AppendAudit(ctx context.Context, orgID int64, entry *domain.AuditEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (organization_id, user_id, action, entity, entity_id, detail)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		orgID, entry.UserID, entry.Action, entry.Entity, entry.EntityID, entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

func (s *Store) ListAudit(ctx context.Context, orgID int64, page, limit int) ([]domain.AuditEntry, int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE organization_id = $1`, orgID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count audit: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, organization_id, user_id, action, entity, entity_id, detail, created_at
		 FROM audit_log WHERE organization_id = $1
		 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		orgID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	out := []domain.AuditEntry{}
	for rows.Next() {
		var e domain.AuditEntry
		var detail sql.NullString
		err := rows.Scan(&e.ID, &e.OrganizationID, &e.UserID, &e.Action, &e.Entity, &e.EntityID, &detail, &e.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan audit row: %w", err)
		}
		e.Detail = detail.String
		out = append(out, e)
	}
	return out, total, rows.Err()
}
