package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/rzyfront/vendix-core/internal/domain"
)

const storeColumns = `id, organization_id, name, slug, store_type, timezone,
	logo_url, status, created_at, updated_at`

func (s *Store) GetStore(ctx context.Context, orgID, storeID int64) (*domain.Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores WHERE id = $1 AND organization_id = $2`, storeColumns)
	return scanStore(s.db.QueryRowContext(ctx, query, storeID, orgID), storeID)
}

func (s *Store) ListStores(ctx context.Context, orgID int64, page, limit int) ([]domain.Store, int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stores WHERE organization_id = $1`, orgID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count stores: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM stores WHERE organization_id = $1 ORDER BY id LIMIT $2 OFFSET $3`, storeColumns)
	rows, err := s.db.QueryContext(ctx, query, orgID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	out := []domain.Store{}
	for rows.Next() {
		st, err := scanStoreRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *st)
	}
	return out, total, rows.Err()
}

func (s *Store) CreateStore(ctx context.Context, orgID int64, st *domain.Store) (*domain.Store, error) {
	query := fmt.Sprintf(`INSERT INTO stores
		(organization_id, name, slug, store_type, timezone, logo_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, storeColumns)

	out, err := scanStore(s.db.QueryRowContext(ctx, query,
		orgID, st.Name, st.Slug, st.StoreType, st.Timezone, st.LogoURL, st.Status,
	), 0)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &domain.ErrConflict{Message: "store slug already in use: " + st.Slug}
		}
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateStore(ctx context.Context, orgID int64, st *domain.Store) (*domain.Store, error) {
	query := fmt.Sprintf(`UPDATE stores SET
		name = $3, slug = $4, store_type = $5, timezone = $6, logo_url = $7,
		status = $8, updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING %s`, storeColumns)

	return scanStore(s.db.QueryRowContext(ctx, query,
		st.ID, orgID, st.Name, st.Slug, st.StoreType, st.Timezone, st.LogoURL, st.Status,
	), st.ID)
}

func (s *Store) UpdateStoreName(ctx context.Context, orgID, storeID int64, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE stores SET name = $3, updated_at = now() WHERE id = $1 AND organization_id = $2`,
		storeID, orgID, name,
	)
	if err != nil {
		return fmt.Errorf("update store name: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &domain.ErrNotFound{Resource: "store", ID: strconv.FormatInt(storeID, 10)}
	}
	return nil
}

func (s *Store) DeleteStore(ctx context.Context, orgID, storeID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM stores WHERE id = $1 AND organization_id = $2`,
		storeID, orgID,
	)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &domain.ErrNotFound{Resource: "store", ID: strconv.FormatInt(storeID, 10)}
	}
	return nil
}

func scanStore(row rowScanner, id int64) (*domain.Store, error) {
	st, err := scanStoreInto(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "store", ID: strconv.FormatInt(id, 10)}
	}
	if err != nil {
		return nil, fmt.Errorf("scan store: %w", err)
	}
	return st, nil
}

func scanStoreRow(rows *sql.Rows) (*domain.Store, error) {
	st, err := scanStoreInto(rows)
	if err != nil {
		return nil, fmt.Errorf("scan store row: %w", err)
	}
	return st, nil
}

func scanStoreInto(row rowScanner) (*domain.Store, error) {
	var st domain.Store
	var storeType, timezone, logoURL sql.NullString
	err := row.Scan(
		&st.ID, &st.OrganizationID, &st.Name, &st.Slug, &storeType,
		&timezone, &logoURL, &st.Status, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	st.StoreType = storeType.String
	st.Timezone = timezone.String
	st.LogoURL = logoURL.String
	return &st, nil
}
