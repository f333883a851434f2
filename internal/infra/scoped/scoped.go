// Package scoped is the data access facade handed to feature services.
//
// Every method resolves the organization id from the request's tenant
// context and passes it to the underlying store, so feature code cannot
// forget to scope a query and cannot scope it to the wrong tenant. The
// facade fails closed: no tenant context reads as unauthenticated, a
// context without an organization reads as forbidden.
//
// Lookups that legitimately run outside any tenant scope (edge hostname
// resolution, login, platform administration) live behind WithoutScope,
// which makes every unscoped call site explicit and searchable.
package scoped

import (
	"context"

	"go.uber.org/zap"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/infra/observability"
	"github.com/rzyfront/vendix-core/internal/port"
	"github.com/rzyfront/vendix-core/internal/tenantctx"
)

// Store wraps a port.DataStore with tenant scoping.
type Store struct {
	data    port.DataStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// New creates the scoped facade.
func New(data port.DataStore, metrics *observability.Metrics, logger *zap.Logger) *Store {
	return &Store{data: data, metrics: metrics, logger: logger}
}

// WithoutScope exposes the raw store for the few operations that run before
// or above tenant scope.
func (s *Store) WithoutScope() port.DataStore {
	return s.data
}

// scope resolves the caller's organization id or refuses the operation.
func (s *Store) scope(ctx context.Context, entity, op string) (int64, error) {
	tc := tenantctx.FromContext(ctx)
	if tc == nil {
		s.metrics.IncrScopedDenial("unauthorized")
		s.logger.Warn("scoped operation without tenant context",
			zap.String("entity", entity), zap.String("op", op))
		return 0, &domain.ErrUnauthorized{Message: "no tenant context"}
	}
	if tc.OrganizationID == 0 {
		s.metrics.IncrScopedDenial("forbidden")
		s.logger.Warn("scoped operation without organization",
			zap.String("entity", entity), zap.String("op", op),
			zap.Int64("user_id", tc.UserID))
		return 0, &domain.ErrForbidden{Action: entity + "." + op}
	}
	s.metrics.IncrScopedQuery(entity, op)
	return tc.OrganizationID, nil
}

// --- Domains ---

func (s *Store) GetDomain(ctx context.Context, hostname string) (*domain.DomainRecord, error) {
	orgID, err := s.scope(ctx, "domain", "get")
	if err != nil {
		return nil, err
	}
	return s.data.GetDomain(ctx, orgID, hostname)
}

func (s *Store) ListDomains(ctx context.Context, f domain.DomainFilter, page, limit int) ([]domain.DomainRecord, int64, error) {
	orgID, err := s.scope(ctx, "domain", "list")
	if err != nil {
		return nil, 0, err
	}
	// A caller-supplied organization filter never widens the scope.
	f.OrganizationID = &orgID
	return s.data.ListDomains(ctx, orgID, f, page, limit)
}

func (s *Store) ListDomainsByOwner(ctx context.Context, storeID *int64, dt domain.DomainType) ([]domain.DomainRecord, error) {
	orgID, err := s.scope(ctx, "domain", "list_by_owner")
	if err != nil {
		return nil, err
	}
	return s.data.ListDomainsByOwner(ctx, orgID, storeID, dt)
}

func (s *Store) CreateDomain(ctx context.Context, rec *domain.DomainRecord) (*domain.DomainRecord, error) {
	orgID, err := s.scope(ctx, "domain", "create")
	if err != nil {
		return nil, err
	}
	// The caller's organization always owns the record; a body-supplied
	// organization id never widens the scope.
	rec.OrganizationID = &orgID
	if rec.StoreID != nil {
		// The owning store must belong to the same organization.
		if _, err := s.data.GetStore(ctx, orgID, *rec.StoreID); err != nil {
			return nil, err
		}
	}
	return s.data.CreateDomain(ctx, orgID, rec)
}

func (s *Store) UpdateDomain(ctx context.Context, rec *domain.DomainRecord) (*domain.DomainRecord, error) {
	orgID, err := s.scope(ctx, "domain", "update")
	if err != nil {
		return nil, err
	}
	return s.data.UpdateDomain(ctx, orgID, rec)
}

func (s *Store) DemoteActiveDomains(ctx context.Context, storeID *int64, dt domain.DomainType, exceptHostname string) (int64, error) {
	orgID, err := s.scope(ctx, "domain", "demote")
	if err != nil {
		return 0, err
	}
	return s.data.DemoteActiveDomains(ctx, orgID, storeID, dt, exceptHostname)
}

func (s *Store) DeleteDomain(ctx context.Context, hostname string) error {
	orgID, err := s.scope(ctx, "domain", "delete")
	if err != nil {
		return err
	}
	return s.data.DeleteDomain(ctx, orgID, hostname)
}

func (s *Store) DomainStats(ctx context.Context) (*domain.DomainStats, error) {
	orgID, err := s.scope(ctx, "domain", "stats")
	if err != nil {
		return nil, err
	}
	return s.data.DomainStats(ctx, &orgID)
}

// --- Settings ---

func (s *Store) GetStoreSettingsDoc(ctx context.Context, storeID int64) (*domain.StoreSettingsDoc, error) {
	orgID, err := s.scope(ctx, "settings", "get_store")
	if err != nil {
		return nil, err
	}
	return s.data.GetStoreSettingsDoc(ctx, orgID, storeID)
}

func (s *Store) PutStoreSettingsDoc(ctx context.Context, storeID int64, doc *domain.StoreSettingsDoc) error {
	orgID, err := s.scope(ctx, "settings", "put_store")
	if err != nil {
		return err
	}
	return s.data.PutStoreSettingsDoc(ctx, orgID, storeID, doc)
}

func (s *Store) GetEcommerceSettings(ctx context.Context, storeID int64) (*domain.EcommerceSettings, error) {
	orgID, err := s.scope(ctx, "settings", "get_ecommerce")
	if err != nil {
		return nil, err
	}
	return s.data.GetEcommerceSettings(ctx, orgID, storeID)
}

func (s *Store) PutEcommerceSettings(ctx context.Context, storeID int64, doc *domain.EcommerceSettings) error {
	orgID, err := s.scope(ctx, "settings", "put_ecommerce")
	if err != nil {
		return err
	}
	return s.data.PutEcommerceSettings(ctx, orgID, storeID, doc)
}

func (s *Store) GetOrganizationSettings(ctx context.Context) (*domain.OrganizationSettingsDoc, error) {
	orgID, err := s.scope(ctx, "settings", "get_org")
	if err != nil {
		return nil, err
	}
	return s.data.GetOrganizationSettings(ctx, orgID)
}

func (s *Store) PutOrganizationSettings(ctx context.Context, doc *domain.OrganizationSettingsDoc) error {
	orgID, err := s.scope(ctx, "settings", "put_org")
	if err != nil {
		return err
	}
	return s.data.PutOrganizationSettings(ctx, orgID, doc)
}

// --- Stores ---

func (s *Store) GetStore(ctx context.Context, storeID int64) (*domain.Store, error) {
	orgID, err := s.scope(ctx, "store", "get")
	if err != nil {
		return nil, err
	}
	return s.data.GetStore(ctx, orgID, storeID)
}

func (s *Store) ListStores(ctx context.Context, page, limit int) ([]domain.Store, int64, error) {
	orgID, err := s.scope(ctx, "store", "list")
	if err != nil {
		return nil, 0, err
	}
	return s.data.ListStores(ctx, orgID, page, limit)
}

func (s *Store) CreateStore(ctx context.Context, st *domain.Store) (*domain.Store, error) {
	orgID, err := s.scope(ctx, "store", "create")
	if err != nil {
		return nil, err
	}
	return s.data.CreateStore(ctx, orgID, st)
}

func (s *Store) UpdateStore(ctx context.Context, st *domain.Store) (*domain.Store, error) {
	orgID, err := s.scope(ctx, "store", "update")
	if err != nil {
		return nil, err
	}
	return s.data.UpdateStore(ctx, orgID, st)
}

func (s *Store) UpdateStoreName(ctx context.Context, storeID int64, name string) error {
	orgID, err := s.scope(ctx, "store", "update_name")
	if err != nil {
		return err
	}
	return s.data.UpdateStoreName(ctx, orgID, storeID, name)
}

func (s *Store) DeleteStore(ctx context.Context, storeID int64) error {
	orgID, err := s.scope(ctx, "store", "delete")
	if err != nil {
		return err
	}
	return s.data.DeleteStore(ctx, orgID, storeID)
}

// --- Users ---

func (s *Store) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	orgID, err := s.scope(ctx, "user", "get")
	if err != nil {
		return nil, err
	}
	return s.data.GetUser(ctx, orgID, userID)
}

func (s *Store) ListUsers(ctx context.Context, f domain.UserFilter, page, limit int) ([]domain.User, int64, error) {
	orgID, err := s.scope(ctx, "user", "list")
	if err != nil {
		return nil, 0, err
	}
	return s.data.ListUsers(ctx, orgID, f, page, limit)
}

func (s *Store) CountUsers(ctx context.Context, f domain.UserFilter) (int64, error) {
	orgID, err := s.scope(ctx, "user", "count")
	if err != nil {
		return 0, err
	}
	return s.data.CountUsers(ctx, orgID, f)
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	orgID, err := s.scope(ctx, "user", "create")
	if err != nil {
		return nil, err
	}
	return s.data.CreateUser(ctx, orgID, u)
}

func (s *Store) UpdateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	orgID, err := s.scope(ctx, "user", "update")
	if err != nil {
		return nil, err
	}
	return s.data.UpdateUser(ctx, orgID, u)
}

func (s *Store) BulkUpdateUserStatus(ctx context.Context, userIDs []int64, status string) (int64, error) {
	orgID, err := s.scope(ctx, "user", "bulk_update_status")
	if err != nil {
		return 0, err
	}
	return s.data.BulkUpdateUserStatus(ctx, orgID, userIDs, status)
}

func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	orgID, err := s.scope(ctx, "user", "delete")
	if err != nil {
		return err
	}
	return s.data.DeleteUser(ctx, orgID, userID)
}

func (s *Store) DeleteUsersByStore(ctx context.Context, storeID int64) (int64, error) {
	orgID, err := s.scope(ctx, "user", "delete_by_store")
	if err != nil {
		return 0, err
	}
	return s.data.DeleteUsersByStore(ctx, orgID, storeID)
}

// --- Audit ---

func (s *Store) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	orgID, err := s.scope(ctx, "audit", "append")
	if err != nil {
		return err
	}
	return s.data.AppendAudit(ctx, orgID, entry)
}

func (s *Store) ListAudit(ctx context.Context, page, limit int) ([]domain.AuditEntry, int64, error) {
	orgID, err := s.scope(ctx, "audit", "list")
	if err != nil {
		return nil, 0, err
	}
	return s.data.ListAudit(ctx, orgID, page, limit)
}
