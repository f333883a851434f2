package scoped_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/infra/memstore"
	"github.com/rzyfront/vendix-core/internal/infra/observability"
	"github.com/rzyfront/vendix-core/internal/infra/scoped"
	"github.com/rzyfront/vendix-core/internal/tenantctx"
)

func newStore() (*scoped.Store, *memstore.Store) {
	mem := memstore.New()
	return scoped.New(mem, observability.NewMetrics(), zap.NewNop()), mem
}

func orgCtx(orgID int64) context.Context {
	return tenantctx.NewContext(context.Background(), &tenantctx.TenantContext{
		UserID:         1,
		OrganizationID: orgID,
	})
}

func TestScope_NoTenantContext(t *testing.T) {
	store, _ := newStore()

	_, err := store.GetStore(context.Background(), 1)
	var unauth *domain.ErrUnauthorized
	if !errors.As(err, &unauth) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}

	_, _, err = store.ListUsers(context.Background(), domain.UserFilter{}, 1, 20)
	if !errors.As(err, &unauth) {
		t.Fatalf("list users err = %v, want ErrUnauthorized", err)
	}
}

func TestScope_NoOrganization(t *testing.T) {
	store, _ := newStore()
	ctx := orgCtx(0)

	_, err := store.GetStore(ctx, 1)
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	// Bulk operations refuse just the same as single-row ones.
	_, err = store.BulkUpdateUserStatus(ctx, []int64{1, 2}, "inactive")
	if !errors.As(err, &forbidden) {
		t.Fatalf("bulk err = %v, want ErrForbidden", err)
	}
	_, err = store.DeleteUsersByStore(ctx, 1)
	if !errors.As(err, &forbidden) {
		t.Fatalf("delete by store err = %v, want ErrForbidden", err)
	}
}

func TestScope_CrossOrgIsolation(t *testing.T) {
	store, mem := newStore()
	bg := context.Background()

	org1, err := mem.CreateOrganization(bg, &domain.Organization{Name: "One", Slug: "one", Status: "active"})
	if err != nil {
		t.Fatalf("create org1: %v", err)
	}
	org2, err := mem.CreateOrganization(bg, &domain.Organization{Name: "Two", Slug: "two", Status: "active"})
	if err != nil {
		t.Fatalf("create org2: %v", err)
	}

	st, err := mem.CreateStore(bg, org1.ID, &domain.Store{Name: "One Store", Slug: "one-store", Status: "active"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	// The owning organization sees the store.
	if _, err := store.GetStore(orgCtx(org1.ID), st.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}

	// Another organization gets not found, never someone else's row.
	_, err = store.GetStore(orgCtx(org2.ID), st.ID)
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("cross-org read err = %v, want ErrNotFound", err)
	}
}

func TestListDomains_ForcesOrgFilter(t *testing.T) {
	store, mem := newStore()
	bg := context.Background()

	org1, _ := mem.CreateOrganization(bg, &domain.Organization{Name: "One", Slug: "one", Status: "active"})
	org2, _ := mem.CreateOrganization(bg, &domain.Organization{Name: "Two", Slug: "two", Status: "active"})

	for _, seed := range []struct {
		orgID    int64
		hostname string
	}{
		{org1.ID, "one.vendix.com"},
		{org2.ID, "two.vendix.com"},
	} {
		if _, err := mem.CreateDomain(bg, seed.orgID, &domain.DomainRecord{
			Hostname:   seed.hostname,
			DomainType: domain.DomainTypeOrganization,
			Ownership:  domain.OwnershipVendixSubdomain,
			Status:     domain.StatusActive,
		}); err != nil {
			t.Fatalf("seed %s: %v", seed.hostname, err)
		}
	}

	// A filter pointing at another organization is overridden, not honored.
	recs, total, err := store.ListDomains(orgCtx(org1.ID), domain.DomainFilter{OrganizationID: &org2.ID}, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(recs) != 1 {
		t.Fatalf("total = %d, records = %d, want 1/1", total, len(recs))
	}
	if recs[0].Hostname != "one.vendix.com" {
		t.Errorf("hostname = %q, leaked another tenant's record", recs[0].Hostname)
	}
}

func TestCreateDomain_ForcesCallerOrg(t *testing.T) {
	store, mem := newStore()
	bg := context.Background()

	org1, _ := mem.CreateOrganization(bg, &domain.Organization{Name: "One", Slug: "one", Status: "active"})
	org2, _ := mem.CreateOrganization(bg, &domain.Organization{Name: "Two", Slug: "two", Status: "active"})

	// A body-supplied organization id never overrides the caller's scope.
	rec, err := store.CreateDomain(orgCtx(org1.ID), &domain.DomainRecord{
		Hostname:       "one.vendix.com",
		DomainType:     domain.DomainTypeOrganization,
		Ownership:      domain.OwnershipVendixSubdomain,
		Status:         domain.StatusActive,
		OrganizationID: &org2.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.OrganizationID == nil || *rec.OrganizationID != org1.ID {
		t.Fatalf("organization id = %v, want caller's %d", rec.OrganizationID, org1.ID)
	}

	stored, err := mem.GetDomain(bg, org1.ID, rec.Hostname)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if stored.OrganizationID == nil || *stored.OrganizationID != org1.ID {
		t.Errorf("stored owner = %v, want %d", stored.OrganizationID, org1.ID)
	}
}

func TestCreateDomain_RejectsForeignStore(t *testing.T) {
	store, mem := newStore()
	bg := context.Background()

	org1, _ := mem.CreateOrganization(bg, &domain.Organization{Name: "One", Slug: "one", Status: "active"})
	org2, _ := mem.CreateOrganization(bg, &domain.Organization{Name: "Two", Slug: "two", Status: "active"})
	foreign, err := mem.CreateStore(bg, org2.ID, &domain.Store{Name: "Two Store", Slug: "two-store", Status: "active"})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}

	_, err = store.CreateDomain(orgCtx(org1.ID), &domain.DomainRecord{
		Hostname:   "one.vendix.com",
		DomainType: domain.DomainTypeStore,
		Ownership:  domain.OwnershipVendixSubdomain,
		Status:     domain.StatusActive,
		StoreID:    &foreign.ID,
	})
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want ErrNotFound for another tenant's store", err)
	}
}

func TestBulkOps_CrossOrgIsolation(t *testing.T) {
	store, mem := newStore()
	bg := context.Background()

	org1, _ := mem.CreateOrganization(bg, &domain.Organization{Name: "One", Slug: "one", Status: "active"})
	org2, _ := mem.CreateOrganization(bg, &domain.Organization{Name: "Two", Slug: "two", Status: "active"})

	u, err := mem.CreateUser(bg, org1.ID, &domain.User{
		Email: "a@one.test", Name: "A", Status: "active",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	// A bulk write from another tenant naming this user's id touches nothing.
	n, err := store.BulkUpdateUserStatus(orgCtx(org2.ID), []int64{u.ID}, "inactive")
	if err != nil {
		t.Fatalf("bulk update: %v", err)
	}
	if n != 0 {
		t.Errorf("bulk update affected %d rows across tenants", n)
	}

	got, err := mem.GetUser(bg, org1.ID, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Status != "active" {
		t.Errorf("status = %q, mutated by another tenant", got.Status)
	}
}

func TestWithoutScope_BypassesTenantChecks(t *testing.T) {
	store, mem := newStore()
	bg := context.Background()

	org, _ := mem.CreateOrganization(bg, &domain.Organization{Name: "One", Slug: "one", Status: "active"})
	if _, err := mem.CreateDomain(bg, org.ID, &domain.DomainRecord{
		Hostname:   "one.vendix.com",
		DomainType: domain.DomainTypeOrganization,
		Ownership:  domain.OwnershipVendixSubdomain,
		Status:     domain.StatusActive,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Edge resolution runs before auth, on a context with no tenant.
	rec, err := store.WithoutScope().ResolveHostname(bg, "one.vendix.com")
	if err != nil {
		t.Fatalf("unscoped resolve: %v", err)
	}
	if rec.Hostname != "one.vendix.com" {
		t.Errorf("hostname = %q", rec.Hostname)
	}
}
