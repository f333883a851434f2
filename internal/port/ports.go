// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
//
// Store methods for organization-scoped entities take the resolved
// organization id as a mandatory first parameter after the context. That is
// deliberate: scoping cannot be forgotten at compile time. Feature code never
// sees these interfaces directly; it goes through the scoped facade, which
// resolves the id from the request's tenant context.
package port

import (
	"context"

	"github.com/rzyfront/vendix-core/internal/domain"
)

// DomainStore persists domain records. Hostname lookups used by edge
// resolution and uniqueness checks are global by design: they run before any
// tenant scope exists.
type DomainStore interface {
	// ResolveHostname returns the record for a hostname (case-insensitive),
	// or ErrNotFound. Global.
	ResolveHostname(ctx context.Context, hostname string) (*domain.DomainRecord, error)
	// HostnameTaken reports whether any tenant already owns the hostname. Global.
	HostnameTaken(ctx context.Context, hostname string) (bool, error)

	GetDomain(ctx context.Context, orgID int64, hostname string) (*domain.DomainRecord, error)
	ListDomains(ctx context.Context, orgID int64, f domain.DomainFilter, page, limit int) ([]domain.DomainRecord, int64, error)
	ListDomainsByOwner(ctx context.Context, orgID int64, storeID *int64, dt domain.DomainType) ([]domain.DomainRecord, error)
	CreateDomain(ctx context.Context, orgID int64, rec *domain.DomainRecord) (*domain.DomainRecord, error)
	UpdateDomain(ctx context.Context, orgID int64, rec *domain.DomainRecord) (*domain.DomainRecord, error)
	// DemoteActiveDomains disables every active record for (owner, type)
	// except the named hostname, clearing is_primary. Returns rows affected.
	DemoteActiveDomains(ctx context.Context, orgID int64, storeID *int64, dt domain.DomainType, exceptHostname string) (int64, error)
	DeleteDomain(ctx context.Context, orgID int64, hostname string) error

	// DomainStats aggregates counts for one organization's domains plus its
	// stores' domains, or platform-wide when orgID is nil.
	DomainStats(ctx context.Context, orgID *int64) (*domain.DomainStats, error)
	// ListAllDomains is the cross-tenant listing behind the platform export.
	ListAllDomains(ctx context.Context, f domain.DomainFilter) ([]domain.DomainRecord, error)
}

// SettingsStore persists tenant settings documents. All documents are
// organization-scoped.
type SettingsStore interface {
	GetStoreSettingsDoc(ctx context.Context, orgID, storeID int64) (*domain.StoreSettingsDoc, error)
	PutStoreSettingsDoc(ctx context.Context, orgID, storeID int64, doc *domain.StoreSettingsDoc) error
	GetEcommerceSettings(ctx context.Context, orgID, storeID int64) (*domain.EcommerceSettings, error)
	PutEcommerceSettings(ctx context.Context, orgID, storeID int64, doc *domain.EcommerceSettings) error
	GetOrganizationSettings(ctx context.Context, orgID int64) (*domain.OrganizationSettingsDoc, error)
	PutOrganizationSettings(ctx context.Context, orgID int64, doc *domain.OrganizationSettingsDoc) error
}

// StoreStore persists stores. Organization-scoped.
type StoreStore interface {
	GetStore(ctx context.Context, orgID, storeID int64) (*domain.Store, error)
	ListStores(ctx context.Context, orgID int64, page, limit int) ([]domain.Store, int64, error)
	CreateStore(ctx context.Context, orgID int64, st *domain.Store) (*domain.Store, error)
	UpdateStore(ctx context.Context, orgID int64, st *domain.Store) (*domain.Store, error)
	UpdateStoreName(ctx context.Context, orgID, storeID int64, name string) error
	DeleteStore(ctx context.Context, orgID, storeID int64) error
}

// UserStore persists admin users. Organization-scoped except for the email
// lookup, which the login flow runs before any scope exists.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUser(ctx context.Context, orgID, userID int64) (*domain.User, error)
	ListUsers(ctx context.Context, orgID int64, f domain.UserFilter, page, limit int) ([]domain.User, int64, error)
	CountUsers(ctx context.Context, orgID int64, f domain.UserFilter) (int64, error)
	CreateUser(ctx context.Context, orgID int64, u *domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, orgID int64, u *domain.User) (*domain.User, error)
	// BulkUpdateUserStatus updates many users at once. Scoped like every
	// other operation: the org id constrains the bulk write.
	BulkUpdateUserStatus(ctx context.Context, orgID int64, userIDs []int64, status string) (int64, error)
	DeleteUser(ctx context.Context, orgID, userID int64) error
	DeleteUsersByStore(ctx context.Context, orgID, storeID int64) (int64, error)
}

// OrganizationStore persists organizations. Global entity.
type OrganizationStore interface {
	GetOrganization(ctx context.Context, id int64) (*domain.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*domain.Organization, error)
	ListOrganizations(ctx context.Context, page, limit int) ([]domain.Organization, int64, error)
	CreateOrganization(ctx context.Context, org *domain.Organization) (*domain.Organization, error)
	UpdateOrganization(ctx context.Context, org *domain.Organization) (*domain.Organization, error)
	UpdateOrganizationName(ctx context.Context, id int64, name string) error
}

// AuditStore records audit entries. Organization-scoped.
type AuditStore interface {
	AppendAudit(ctx context.Context, orgID int64, entry *domain.AuditEntry) error
	ListAudit(ctx context.Context, orgID int64, page, limit int) ([]domain.AuditEntry, int64, error)
}

// DataStore is the full persistence surface. Implemented by the Postgres
// adapter and the in-memory adapter.
type DataStore interface {
	DomainStore
	SettingsStore
	StoreStore
	UserStore
	OrganizationStore
	AuditStore
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// SettingsCache caches merged settings views. Mutating settings operations
// must invalidate explicitly.
type SettingsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Delete(ctx context.Context, key string)
}

// DNSResolver performs the DNS probes behind domain verification.
type DNSResolver interface {
	LookupCNAME(ctx context.Context, hostname string) (string, error)
}

// AssetClient talks to the asset storage service. Keys are durable; signed
// URLs are not and must be stripped back to keys before persisting.
type AssetClient interface {
	SignURL(ctx context.Context, key string) (string, error)
	StripKey(rawURL string) string
	GenerateFavicon(ctx context.Context, logoKey string) (string, error)
}

// TaskRunner executes best-effort side effects off the request path.
// Failures are logged and retried, never surfaced to the triggering request.
type TaskRunner interface {
	Submit(name string, fn func(ctx context.Context) error)
}
