package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rzyfront/vendix-core/internal/domain"
)

// Settings documents are stored as JSONB blobs keyed by owner. A missing
// document reads as (nil, nil): the merge layer supplies defaults.

func (s *Store) GetStoreSettingsDoc(ctx context.Context, orgID, storeID int64) (*domain.StoreSettingsDoc, error) {
	return getSettingsDoc[domain.StoreSettingsDoc](ctx, s.db,
		`SELECT doc FROM store_settings WHERE organization_id = $1 AND store_id = $2`,
		orgID, storeID)
}

func (s *Store) PutStoreSettingsDoc(ctx context.Context, orgID, storeID int64, doc *domain.StoreSettingsDoc) error {
	return putSettingsDoc(ctx, s.db,
		`INSERT INTO store_settings (organization_id, store_id, doc)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (organization_id, store_id)
		 DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		doc, orgID, storeID)
}

func (s *Store) GetEcommerceSettings(ctx context.Context, orgID, storeID int64) (*domain.EcommerceSettings, error) {
	return getSettingsDoc[domain.EcommerceSettings](ctx, s.db,
		`SELECT doc FROM ecommerce_settings WHERE organization_id = $1 AND store_id = $2`,
		orgID, storeID)
}

func (s *Store) PutEcommerceSettings(ctx context.Context, orgID, storeID int64, doc *domain.EcommerceSettings) error {
	return putSettingsDoc(ctx, s.db,
		`INSERT INTO ecommerce_settings (organization_id, store_id, doc)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (organization_id, store_id)
		 DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		doc, orgID, storeID)
}

func (s *Store) GetOrganizationSettings(ctx context.Context, orgID int64) (*domain.OrganizationSettingsDoc, error) {
	return getSettingsDoc[domain.OrganizationSettingsDoc](ctx, s.db,
		`SELECT doc FROM organization_settings WHERE organization_id = $1`,
		orgID)
}

func (s *Store) PutOrganizationSettings(ctx context.Context, orgID int64, doc *domain.OrganizationSettingsDoc) error {
	return putSettingsDoc(ctx, s.db,
		`INSERT INTO organization_settings (organization_id, doc)
		 VALUES ($1, $2)
		 ON CONFLICT (organization_id)
		 DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		doc, orgID)
}

func getSettingsDoc[T any](ctx context.Context, db *sql.DB, query string, args ...any) (*T, error) {
	var raw []byte
	err := db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings doc: %w", err)
	}
	doc := new(T)
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("unmarshal settings doc: %w", err)
	}
	return doc, nil
}

func putSettingsDoc[T any](ctx context.Context, db *sql.DB, query string, doc *T, owner ...any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal settings doc: %w", err)
	}
	args := append(owner, raw)
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put settings doc: %w", err)
	}
	return nil
}
