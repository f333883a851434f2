// Package memstore is an in-memory implementation of the persistence ports.
// It backs local development without Postgres and the service-level tests.
// All access is serialized behind one mutex; values are deep-copied on the
// way in and out so callers never share memory with the store.
package memstore

import (
	"encoding/json"
	"sync"

	"github.com/rzyfront/vendix-core/internal/domain"
)

// Store holds all entities in maps keyed by id. Hostnames are additionally
// indexed lowercase for the global uniqueness and resolution lookups.
type Store struct {
	mu sync.RWMutex

	domains      map[int64]*domain.DomainRecord
	domainByHost map[string]int64

	stores map[int64]*domain.Store
	users  map[int64]*domain.User
	orgs   map[int64]*domain.Organization

	storeSettings map[settingsKey]*domain.StoreSettingsDoc
	ecomSettings  map[settingsKey]*domain.EcommerceSettings
	orgSettings   map[int64]*domain.OrganizationSettingsDoc

	audits []domain.AuditEntry

	nextID int64
}

type settingsKey struct {
	orgID   int64
	storeID int64
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		domains:       make(map[int64]*domain.DomainRecord),
		domainByHost:  make(map[string]int64),
		stores:        make(map[int64]*domain.Store),
		users:         make(map[int64]*domain.User),
		orgs:          make(map[int64]*domain.Organization),
		storeSettings: make(map[settingsKey]*domain.StoreSettingsDoc),
		ecomSettings:  make(map[settingsKey]*domain.EcommerceSettings),
		orgSettings:   make(map[int64]*domain.OrganizationSettingsDoc),
	}
}

// Ping satisfies the health probe shared with the Postgres adapter.
func (s *Store) Ping() error {
	return nil
}

// id allocates the next identifier. Callers must hold the write lock.
func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// clone deep-copies v through JSON. Every stored document is
// JSON-serializable, so this is safe, and it guarantees isolation between
// the store and its callers.
func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		panic(err)
	}
	return out
}

// paginate slices items for the requested page. page and limit are
// normalized by the handlers before they reach the store.
func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
