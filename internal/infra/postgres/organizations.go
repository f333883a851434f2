package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/rzyfront/vendix-core/internal/domain"
)

const orgColumns = `id, name, slug, email, status, created_at, updated_at`

func (s *Store) GetOrganization(ctx context.Context, id int64) (*domain.Organization, error) {
	query := fmt.Sprintf(`SELECT %s FROM organizations WHERE id = $1`, orgColumns)
	org, err := scanOrganization(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "organization", ID: strconv.FormatInt(id, 10)}
	}
	return org, err
}

func (s *Store) GetOrganizationBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	query := fmt.Sprintf(`SELECT %s FROM organizations WHERE slug = $1`, orgColumns)
	org, err := scanOrganization(s.db.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "organization", ID: slug}
	}
	return org, err
}

func (s *Store) ListOrganizations(ctx context.Context, page, limit int) ([]domain.Organization, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM organizations`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count organizations: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM organizations ORDER BY id LIMIT $1 OFFSET $2`, orgColumns)
	rows, err := s.db.QueryContext(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	out := []domain.Organization{}
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan organization row: %w", err)
		}
		out = append(out, *org)
	}
	return out, total, rows.Err()
}

func (s *Store) CreateOrganization(ctx context.Context, org *domain.Organization) (*domain.Organization, error) {
	query := fmt.Sprintf(`INSERT INTO organizations (name, slug, email, status)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, orgColumns)

	out, err := scanOrganization(s.db.QueryRowContext(ctx, query,
		org.Name, org.Slug, org.Email, org.Status,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &domain.ErrConflict{Message: "organization slug already in use: " + org.Slug}
		}
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateOrganization(ctx context.Context, org *domain.Organization) (*domain.Organization, error) {
	query := fmt.Sprintf(`UPDATE organizations SET
		name = $2, slug = $3, email = $4, status = $5, updated_at = now()
		WHERE id = $1
		RETURNING %s`, orgColumns)

	out, err := scanOrganization(s.db.QueryRowContext(ctx, query,
		org.ID, org.Name, org.Slug, org.Email, org.Status,
	))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "organization", ID: strconv.FormatInt(org.ID, 10)}
	}
	return out, err
}

func (s *Store) UpdateOrganizationName(ctx context.Context, id int64, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE organizations SET name = $2, updated_at = now() WHERE id = $1`,
		id, name,
	)
	if err != nil {
		return fmt.Errorf("update organization name: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &domain.ErrNotFound{Resource: "organization", ID: strconv.FormatInt(id, 10)}
	}
	return nil
}

func scanOrganization(row rowScanner) (*domain.Organization, error) {
	var org domain.Organization
	var email sql.NullString
	err := row.Scan(&org.ID, &org.Name, &org.Slug, &email, &org.Status, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	org.Email = email.String
	return &org, nil
}
