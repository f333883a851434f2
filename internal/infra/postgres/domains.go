package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rzyfront/vendix-core/internal/domain"
)

const domainColumns = `id, hostname, organization_id, store_id, domain_type, ownership,
	status, ssl_status, is_primary, verification_token, config, last_verified_at,
	created_at, updated_at`

func (s *Store) ResolveHostname(ctx context.Context, hostname string) (*domain.DomainRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM domain_settings WHERE lower(hostname) = lower($1)`, domainColumns)
	return s.scanDomain(s.db.QueryRowContext(ctx, query, hostname), hostname)
}

func (s *Store) HostnameTaken(ctx context.Context, hostname string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM domain_settings WHERE lower(hostname) = lower($1))`,
		hostname,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check hostname: %w", err)
	}
	return exists, nil
}

func (s *Store) GetDomain(ctx context.Context, orgID int64, hostname string) (*domain.DomainRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM domain_settings WHERE lower(hostname) = lower($1) AND organization_id = $2`,
		domainColumns,
	)
	return s.scanDomain(s.db.QueryRowContext(ctx, query, hostname, orgID), hostname)
}

func (s *Store) ListDomains(ctx context.Context, orgID int64, f domain.DomainFilter, page, limit int) ([]domain.DomainRecord, int64, error) {
	where, args := domainFilterClauses([]string{"organization_id = $1"}, []any{orgID}, f)

	var total int64
	countQuery := `SELECT COUNT(*) FROM domain_settings WHERE ` + strings.Join(where, " AND ")
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count domains: %w", err)
	}

	// limit <= 0 means no pagination (exports).
	query := fmt.Sprintf(`SELECT %s FROM domain_settings WHERE %s ORDER BY id`,
		domainColumns, strings.Join(where, " AND "))
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, limit, (page-1)*limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	recs, err := collectDomains(rows)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (s *Store) ListDomainsByOwner(ctx context.Context, orgID int64, storeID *int64, dt domain.DomainType) ([]domain.DomainRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM domain_settings
		WHERE organization_id = $1 AND store_id IS NOT DISTINCT FROM $2 AND domain_type = $3
		ORDER BY id`, domainColumns)

	rows, err := s.db.QueryContext(ctx, query, orgID, storeID, string(dt))
	if err != nil {
		return nil, fmt.Errorf("list domains by owner: %w", err)
	}
	defer rows.Close()

	return collectDomains(rows)
}

func (s *Store) CreateDomain(ctx context.Context, orgID int64, rec *domain.DomainRecord) (*domain.DomainRecord, error) {
	cfg, err := json.Marshal(rec.Config)
	if err != nil {
		return nil, fmt.Errorf("marshal domain config: %w", err)
	}

	if rec.OrganizationID == nil {
		rec.OrganizationID = &orgID
	}

	query := fmt.Sprintf(`INSERT INTO domain_settings
		(hostname, organization_id, store_id, domain_type, ownership, status,
		 ssl_status, is_primary, verification_token, config)
		VALUES (lower($1), $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s`, domainColumns)

	out, err := s.scanDomain(s.db.QueryRowContext(ctx, query,
		rec.Hostname, rec.OrganizationID, rec.StoreID, string(rec.DomainType),
		string(rec.Ownership), string(rec.Status), string(rec.SSLStatus),
		rec.IsPrimary, rec.VerificationToken, cfg,
	), rec.Hostname)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &domain.ErrConflict{Message: "hostname already registered: " + rec.Hostname}
		}
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateDomain(ctx context.Context, orgID int64, rec *domain.DomainRecord) (*domain.DomainRecord, error) {
	cfg, err := json.Marshal(rec.Config)
	if err != nil {
		return nil, fmt.Errorf("marshal domain config: %w", err)
	}

	query := fmt.Sprintf(`UPDATE domain_settings SET
		domain_type = $3, ownership = $4, status = $5, ssl_status = $6,
		is_primary = $7, verification_token = $8, config = $9,
		last_verified_at = $10, updated_at = now()
		WHERE lower(hostname) = lower($1) AND organization_id = $2
		RETURNING %s`, domainColumns)

	return s.scanDomain(s.db.QueryRowContext(ctx, query,
		rec.Hostname, orgID, string(rec.DomainType), string(rec.Ownership),
		string(rec.Status), string(rec.SSLStatus), rec.IsPrimary,
		rec.VerificationToken, cfg, rec.LastVerifiedAt,
	), rec.Hostname)
}

func (s *Store) DemoteActiveDomains(ctx context.Context, orgID int64, storeID *int64, dt domain.DomainType, exceptHostname string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE domain_settings SET status = 'disabled', is_primary = false, updated_at = now()
		 WHERE organization_id = $1 AND store_id IS NOT DISTINCT FROM $2
		   AND domain_type = $3 AND status = 'active'
		   AND lower(hostname) <> lower($4)`,
		orgID, storeID, string(dt), exceptHostname,
	)
	if err != nil {
		return 0, fmt.Errorf("demote domains: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) DeleteDomain(ctx context.Context, orgID int64, hostname string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM domain_settings WHERE lower(hostname) = lower($1) AND organization_id = $2`,
		hostname, orgID,
	)
	if err != nil {
		return fmt.Errorf("delete domain: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &domain.ErrNotFound{Resource: "domain", ID: hostname}
	}
	return nil
}

func (s *Store) DomainStats(ctx context.Context, orgID *int64) (*domain.DomainStats, error) {
	// The org filter includes store-owned records through the stores table so
	// the aggregate covers everything the organization controls.
	query := `SELECT status, ownership, COUNT(*) FROM domain_settings`
	var args []any
	if orgID != nil {
		query += ` WHERE organization_id = $1
			OR store_id IN (SELECT id FROM stores WHERE organization_id = $1)`
		args = append(args, *orgID)
	}
	query += ` GROUP BY status, ownership`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("domain stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.DomainStats{
		ByStatus:    make(map[domain.DomainStatus]int64),
		ByOwnership: make(map[domain.DomainOwnership]int64),
	}
	for rows.Next() {
		var status, ownership string
		var count int64
		if err := rows.Scan(&status, &ownership, &count); err != nil {
			return nil, fmt.Errorf("scan domain stats: %w", err)
		}
		stats.Total += count
		stats.ByStatus[domain.DomainStatus(status)] += count
		stats.ByOwnership[domain.DomainOwnership(ownership)] += count
	}
	return stats, rows.Err()
}

func (s *Store) ListAllDomains(ctx context.Context, f domain.DomainFilter) ([]domain.DomainRecord, error) {
	where := []string{"true"}
	var args []any
	if f.OrganizationID != nil {
		args = append(args, *f.OrganizationID)
		where = append(where, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	where, args = domainFilterClauses(where, args, f)

	query := fmt.Sprintf(`SELECT %s FROM domain_settings WHERE %s ORDER BY id`,
		domainColumns, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list all domains: %w", err)
	}
	defer rows.Close()

	return collectDomains(rows)
}

// domainFilterClauses appends WHERE fragments for the optional filter fields.
func domainFilterClauses(where []string, args []any, f domain.DomainFilter) ([]string, []any) {
	if f.StoreID != nil {
		args = append(args, *f.StoreID)
		where = append(where, fmt.Sprintf("store_id = $%d", len(args)))
	}
	if f.DomainType != "" {
		args = append(args, string(f.DomainType))
		where = append(where, fmt.Sprintf("domain_type = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		where = append(where, fmt.Sprintf("hostname LIKE $%d", len(args)))
	}
	return where, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanDomain(row rowScanner, id string) (*domain.DomainRecord, error) {
	var rec domain.DomainRecord
	var cfg []byte
	var verificationToken sql.NullString

	err := row.Scan(
		&rec.ID, &rec.Hostname, &rec.OrganizationID, &rec.StoreID,
		&rec.DomainType, &rec.Ownership, &rec.Status, &rec.SSLStatus,
		&rec.IsPrimary, &verificationToken, &cfg, &rec.LastVerifiedAt,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "domain", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("scan domain: %w", err)
	}

	rec.VerificationToken = verificationToken.String
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &rec.Config); err != nil {
			return nil, fmt.Errorf("unmarshal domain config: %w", err)
		}
	}
	return &rec, nil
}

func collectDomains(rows *sql.Rows) ([]domain.DomainRecord, error) {
	recs := []domain.DomainRecord{}
	for rows.Next() {
		var rec domain.DomainRecord
		var cfg []byte
		var verificationToken sql.NullString
		err := rows.Scan(
			&rec.ID, &rec.Hostname, &rec.OrganizationID, &rec.StoreID,
			&rec.DomainType, &rec.Ownership, &rec.Status, &rec.SSLStatus,
			&rec.IsPrimary, &verificationToken, &cfg, &rec.LastVerifiedAt,
			&rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan domain row: %w", err)
		}
		rec.VerificationToken = verificationToken.String
		if len(cfg) > 0 {
			if err := json.Unmarshal(cfg, &rec.Config); err != nil {
				return nil, fmt.Errorf("unmarshal domain config: %w", err)
			}
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
