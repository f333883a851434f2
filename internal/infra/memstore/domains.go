package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rzyfront/vendix-core/internal/domain"
)

func (s *Store) ResolveHostname(_ context.Context, hostname string) (*domain.DomainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.domainByHost[strings.ToLower(hostname)]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "domain", ID: hostname}
	}
	return clone(s.domains[id]), nil
}

func (s *Store) HostnameTaken(_ context.Context, hostname string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.domainByHost[strings.ToLower(hostname)]
	return ok, nil
}

func (s *Store) GetDomain(_ context.Context, orgID int64, hostname string) (*domain.DomainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := s.findByHost(hostname)
	if rec == nil || !belongsToOrg(rec, orgID) {
		return nil, &domain.ErrNotFound{Resource: "domain", ID: hostname}
	}
	return clone(rec), nil
}

func (s *Store) ListDomains(_ context.Context, orgID int64, f domain.DomainFilter, page, limit int) ([]domain.DomainRecord, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DomainRecord
	for _, rec := range s.domains {
		if !belongsToOrg(rec, orgID) {
			continue
		}
		if !matchesFilter(rec, f) {
			continue
		}
		out = append(out, *clone(rec))
	}
	sortDomains(out)
	total := int64(len(out))
	return paginate(out, page, limit), total, nil
}

func (s *Store) ListDomainsByOwner(_ context.Context, orgID int64, storeID *int64, dt domain.DomainType) ([]domain.DomainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DomainRecord
	for _, rec := range s.domains {
		if !belongsToOrg(rec, orgID) || rec.DomainType != dt {
			continue
		}
		if !sameStore(rec.StoreID, storeID) {
			continue
		}
		out = append(out, *clone(rec))
	}
	sortDomains(out)
	return out, nil
}

func (s *Store) CreateDomain(_ context.Context, orgID int64, rec *domain.DomainRecord) (*domain.DomainRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	host := strings.ToLower(rec.Hostname)
	if _, taken := s.domainByHost[host]; taken {
		return nil, &domain.ErrConflict{Message: "hostname already registered: " + rec.Hostname}
	}

	stored := clone(rec)
	stored.ID = s.id()
	stored.Hostname = host
	if stored.OrganizationID == nil {
		stored.OrganizationID = &orgID
	}
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.domains[stored.ID] = stored
	s.domainByHost[host] = stored.ID
	return clone(stored), nil
}

func (s *Store) UpdateDomain(_ context.Context, orgID int64, rec *domain.DomainRecord) (*domain.DomainRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.findByHost(rec.Hostname)
	if existing == nil || !belongsToOrg(existing, orgID) {
		return nil, &domain.ErrNotFound{Resource: "domain", ID: rec.Hostname}
	}

	updated := clone(rec)
	updated.ID = existing.ID
	updated.Hostname = existing.Hostname
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	s.domains[existing.ID] = updated
	return clone(updated), nil
}

func (s *Store) DemoteActiveDomains(_ context.Context, orgID int64, storeID *int64, dt domain.DomainType, exceptHostname string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	except := strings.ToLower(exceptHostname)
	var affected int64
	for _, rec := range s.domains {
		if !belongsToOrg(rec, orgID) || rec.DomainType != dt {
			continue
		}
		if !sameStore(rec.StoreID, storeID) {
			continue
		}
		if rec.Hostname == except || rec.Status != domain.StatusActive {
			continue
		}
		rec.Status = domain.StatusDisabled
		rec.IsPrimary = false
		rec.UpdatedAt = time.Now().UTC()
		affected++
	}
	return affected, nil
}

func (s *Store) DeleteDomain(_ context.Context, orgID int64, hostname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findByHost(hostname)
	if rec == nil || !belongsToOrg(rec, orgID) {
		return &domain.ErrNotFound{Resource: "domain", ID: hostname}
	}
	delete(s.domains, rec.ID)
	delete(s.domainByHost, rec.Hostname)
	return nil
}

func (s *Store) DomainStats(_ context.Context, orgID *int64) (*domain.DomainStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.DomainStats{
		ByStatus:    make(map[domain.DomainStatus]int64),
		ByOwnership: make(map[domain.DomainOwnership]int64),
	}
	for _, rec := range s.domains {
		if orgID != nil && !belongsToOrg(rec, *orgID) {
			continue
		}
		stats.Total++
		stats.ByStatus[rec.Status]++
		stats.ByOwnership[rec.Ownership]++
	}
	return stats, nil
}

func (s *Store) ListAllDomains(_ context.Context, f domain.DomainFilter) ([]domain.DomainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.DomainRecord
	for _, rec := range s.domains {
		if f.OrganizationID != nil && !belongsToOrg(rec, *f.OrganizationID) {
			continue
		}
		if !matchesFilter(rec, f) {
			continue
		}
		out = append(out, *clone(rec))
	}
	sortDomains(out)
	return out, nil
}

// findByHost returns the stored record for a hostname. Callers must hold a lock.
func (s *Store) findByHost(hostname string) *domain.DomainRecord {
	id, ok := s.domainByHost[strings.ToLower(hostname)]
	if !ok {
		return nil
	}
	return s.domains[id]
}

// belongsToOrg reports whether a record is inside an organization's scope,
// either directly or through its owning store.
func belongsToOrg(rec *domain.DomainRecord, orgID int64) bool {
	return rec.OrganizationID != nil && *rec.OrganizationID == orgID
}

func sameStore(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func matchesFilter(rec *domain.DomainRecord, f domain.DomainFilter) bool {
	if f.StoreID != nil && !sameStore(rec.StoreID, f.StoreID) {
		return false
	}
	if f.DomainType != "" && rec.DomainType != f.DomainType {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	if f.Search != "" && !strings.Contains(rec.Hostname, strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func sortDomains(recs []domain.DomainRecord) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
}
