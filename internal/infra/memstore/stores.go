package memstore

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/rzyfront/vendix-core/internal/domain"
)

func (s *Store) GetStore(_ context.Context, orgID, storeID int64) (*domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stores[storeID]
	if !ok || st.OrganizationID != orgID {
		return nil, &domain.ErrNotFound{Resource: "store", ID: strconv.FormatInt(storeID, 10)}
	}
	return clone(st), nil
}

func (s *Store) ListStores(_ context.Context, orgID int64, page, limit int) ([]domain.Store, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Store
	for _, st := range s.stores {
		if st.OrganizationID == orgID {
			out = append(out, *clone(st))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	return paginate(out, page, limit), total, nil
}

func (s *Store) CreateStore(_ context.Context, orgID int64, st *domain.Store) (*domain.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clone(st)
	stored.ID = s.id()
	stored.OrganizationID = orgID
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.stores[stored.ID] = stored
	return clone(stored), nil
}

func (s *Store) UpdateStore(_ context.Context, orgID int64, st *domain.Store) (*domain.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.stores[st.ID]
	if !ok || existing.OrganizationID != orgID {
		return nil, &domain.ErrNotFound{Resource: "store", ID: strconv.FormatInt(st.ID, 10)}
	}

	updated := clone(st)
	updated.OrganizationID = orgID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	s.stores[updated.ID] = updated
	return clone(updated), nil
}

func (s *Store) UpdateStoreName(_ context.Context, orgID, storeID int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stores[storeID]
	if !ok || st.OrganizationID != orgID {
		return &domain.ErrNotFound{Resource: "store", ID: strconv.FormatInt(storeID, 10)}
	}
	st.Name = name
	st.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) DeleteStore(_ context.Context, orgID, storeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stores[storeID]
	if !ok || st.OrganizationID != orgID {
		return &domain.ErrNotFound{Resource: "store", ID: strconv.FormatInt(storeID, 10)}
	}
	delete(s.stores, storeID)
	return nil
}
