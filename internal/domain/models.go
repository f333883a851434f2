package domain

import "time"

// Organization is a platform customer. Organizations themselves are a global
// entity: looking one up is what establishes scope in the first place.
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Email     string    `json:"email,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a sales channel owned by an organization. Organization-scoped.
type Store struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	StoreType      string    `json:"store_type,omitempty"`
	Timezone       string    `json:"timezone,omitempty"`
	LogoURL        string    `json:"logo_url,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// User is an admin platform user. Organization-scoped.
type User struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	StoreID        *int64    `json:"store_id,omitempty"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	PasswordHash   string    `json:"-"`
	Roles          []string  `json:"roles"`
	IsSuperAdmin   bool      `json:"is_super_admin"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AuditEntry records who did what. Written best-effort off the request path.
type AuditEntry struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	UserID         int64     `json:"user_id"`
	Action         string    `json:"action"`
	Entity         string    `json:"entity"`
	EntityID       string    `json:"entity_id"`
	Detail         string    `json:"detail,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListMeta is the pagination envelope for every list endpoint.
type ListMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewListMeta computes the envelope for a page of results.
func NewListMeta(total int64, page, limit int) ListMeta {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return ListMeta{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// UserFilter narrows user listings inside the caller's scope.
type UserFilter struct {
	StoreID *int64
	Status  string
	Search  string
}

// LoginRequest is the credential payload for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token and resolved tenant identity.
type LoginResponse struct {
	AccessToken    string `json:"access_token"`
	ExpiresIn      int    `json:"expires_in"`
	UserID         int64  `json:"user_id"`
	OrganizationID int64  `json:"organization_id"`
	StoreID        *int64 `json:"store_id,omitempty"`
	Name           string `json:"name"`
}

// CreateOrganizationInput provisions a new organization tenant.
type CreateOrganizationInput struct {
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
}

// CreateStoreInput provisions a new store under the caller's organization.
type CreateStoreInput struct {
	Name      string `json:"name"`
	StoreType string `json:"store_type,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	// WithEcommerce additionally provisions a storefront subdomain.
	WithEcommerce bool `json:"with_ecommerce,omitempty"`
}
