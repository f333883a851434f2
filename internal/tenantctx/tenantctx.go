// Package tenantctx carries the resolved tenant identity through a request.
//
// The context is constructed exactly once at the edge (auth middleware) and
// is read-only afterwards. Per-request isolation and cleanup fall out of
// context.Context semantics: nothing survives the request, nothing leaks
// between goroutines serving different requests.
package tenantctx

import "context"

type contextKey int

const tenantContextKey contextKey = iota

// TenantContext is the resolved tenant identity for one request. Immutable
// for the request's lifetime; never persisted.
type TenantContext struct {
	UserID         int64
	OrganizationID int64
	StoreID        *int64
	Roles          map[string]bool
	IsSuperAdmin   bool
}

// HasRole reports whether the context carries the given role.
func (t *TenantContext) HasRole(role string) bool {
	return t != nil && t.Roles[role]
}

// NewContext returns a context with the tenant identity attached.
func NewContext(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey, tc)
}

// FromContext retrieves the tenant context. Returns nil when no auth step
// ran; callers must treat nil as unauthenticated and refuse scoped work.
func FromContext(ctx context.Context) *TenantContext {
	tc, _ := ctx.Value(tenantContextKey).(*TenantContext)
	return tc
}

// OrganizationID returns the caller's organization id, or 0 when absent.
func OrganizationID(ctx context.Context) int64 {
	if tc := FromContext(ctx); tc != nil {
		return tc.OrganizationID
	}
	return 0
}

// UserID returns the caller's user id, or 0 when absent.
func UserID(ctx context.Context) int64 {
	if tc := FromContext(ctx); tc != nil {
		return tc.UserID
	}
	return 0
}

// StoreID returns the caller's store id, or nil when the caller is not bound
// to a single store.
func StoreID(ctx context.Context) *int64 {
	if tc := FromContext(ctx); tc != nil {
		return tc.StoreID
	}
	return nil
}

// IsSuperAdmin reports whether the caller is a platform super admin.
func IsSuperAdmin(ctx context.Context) bool {
	tc := FromContext(ctx)
	return tc != nil && tc.IsSuperAdmin
}
