package memstore

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rzyfront/vendix-core/internal/domain"
)

func (s *Store) GetOrganization(_ context.Context, id int64) (*domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.orgs[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "organization", ID: strconv.FormatInt(id, 10)}
	}
	return clone(org), nil
}

func (s *Store) GetOrganizationBySlug(_ context.Context, slug string) (*domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, org := range s.orgs {
		if org.Slug == slug {
			return clone(org), nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "organization", ID: slug}
}

func (s *Store) ListOrganizations(_ context.Context, page, limit int) ([]domain.Organization, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Organization
	for _, org := range s.orgs {
		out = append(out, *clone(org))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	return paginate(out, page, limit), total, nil
}

func (s *Store) CreateOrganization(_ context.Context, org *domain.Organization) (*domain.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orgs {
		if strings.EqualFold(existing.Slug, org.Slug) {
			return nil, &domain.ErrConflict{Message: "organization slug already in use: " + org.Slug}
		}
	}

	stored := clone(org)
	stored.ID = s.id()
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.orgs[stored.ID] = stored
	return clone(stored), nil
}

func (s *Store) UpdateOrganization(_ context.Context, org *domain.Organization) (*domain.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.orgs[org.ID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "organization", ID: strconv.FormatInt(org.ID, 10)}
	}

	updated := clone(org)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	s.orgs[updated.ID] = updated
	return clone(updated), nil
}

func (s *Store) UpdateOrganizationName(_ context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	org, ok := s.orgs[id]
	if !ok {
		return &domain.ErrNotFound{Resource: "organization", ID: strconv.FormatInt(id, 10)}
	}
	org.Name = name
	org.UpdatedAt = time.Now().UTC()
	return nil
}
