package tenantctx_test

import (
	"context"
	"testing"

	"github.com/rzyfront/vendix-core/internal/tenantctx"
)

func TestFromContext_Empty(t *testing.T) {
	ctx := context.Background()

	if tc := tenantctx.FromContext(ctx); tc != nil {
		t.Errorf("FromContext = %+v, want nil", tc)
	}
	if got := tenantctx.OrganizationID(ctx); got != 0 {
		t.Errorf("OrganizationID = %d, want 0", got)
	}
	if got := tenantctx.UserID(ctx); got != 0 {
		t.Errorf("UserID = %d, want 0", got)
	}
	if got := tenantctx.StoreID(ctx); got != nil {
		t.Errorf("StoreID = %v, want nil", got)
	}
	if tenantctx.IsSuperAdmin(ctx) {
		t.Error("IsSuperAdmin = true on empty context")
	}
}

func TestFromContext_RoundTrip(t *testing.T) {
	storeID := int64(7)
	tc := &tenantctx.TenantContext{
		UserID:         42,
		OrganizationID: 3,
		StoreID:        &storeID,
		Roles:          map[string]bool{"admin": true},
	}
	ctx := tenantctx.NewContext(context.Background(), tc)

	if got := tenantctx.FromContext(ctx); got != tc {
		t.Fatalf("FromContext = %+v, want the attached identity", got)
	}
	if got := tenantctx.OrganizationID(ctx); got != 3 {
		t.Errorf("OrganizationID = %d", got)
	}
	if got := tenantctx.UserID(ctx); got != 42 {
		t.Errorf("UserID = %d", got)
	}
	if got := tenantctx.StoreID(ctx); got == nil || *got != 7 {
		t.Errorf("StoreID = %v", got)
	}
	if tenantctx.IsSuperAdmin(ctx) {
		t.Error("IsSuperAdmin = true without the flag")
	}
}

func TestIsSuperAdmin(t *testing.T) {
	ctx := tenantctx.NewContext(context.Background(), &tenantctx.TenantContext{
		UserID:       1,
		IsSuperAdmin: true,
	})
	if !tenantctx.IsSuperAdmin(ctx) {
		t.Error("IsSuperAdmin = false")
	}
}

func TestHasRole(t *testing.T) {
	tc := &tenantctx.TenantContext{Roles: map[string]bool{"owner": true}}

	if !tc.HasRole("owner") {
		t.Error("HasRole(owner) = false")
	}
	if tc.HasRole("admin") {
		t.Error("HasRole(admin) = true")
	}

	var nilTC *tenantctx.TenantContext
	if nilTC.HasRole("owner") {
		t.Error("nil receiver HasRole = true")
	}
}
