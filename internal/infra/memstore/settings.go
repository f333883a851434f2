package memstore

import (
	"context"

	"github.com/rzyfront/vendix-core/internal/domain"
)

// Settings getters return (nil, nil) when no document exists yet. Absence is
// an ordinary state, not an error: the merge layer falls back to defaults.

func (s *Store) GetStoreSettingsDoc(_ context.Context, orgID, storeID int64) (*domain.StoreSettingsDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.storeSettings[settingsKey{orgID, storeID}]), nil
}

func (s *Store) PutStoreSettingsDoc(_ context.Context, orgID, storeID int64, doc *domain.StoreSettingsDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeSettings[settingsKey{orgID, storeID}] = clone(doc)
	return nil
}

func (s *Store) GetEcommerceSettings(_ context.Context, orgID, storeID int64) (*domain.EcommerceSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.ecomSettings[settingsKey{orgID, storeID}]), nil
}

func (s *Store) PutEcommerceSettings(_ context.Context, orgID, storeID int64, doc *domain.EcommerceSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ecomSettings[settingsKey{orgID, storeID}] = clone(doc)
	return nil
}

func (s *Store) GetOrganizationSettings(_ context.Context, orgID int64) (*domain.OrganizationSettingsDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.orgSettings[orgID]), nil
}

func (s *Store) PutOrganizationSettings(_ context.Context, orgID int64, doc *domain.OrganizationSettingsDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgSettings[orgID] = clone(doc)
	return nil
}
