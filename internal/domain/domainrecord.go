package domain

import "time"

// DomainType classifies what a hostname is used for.
type DomainType string

const (
	DomainTypePrimary      DomainType = "primary_domain"
	DomainTypeSubdomain    DomainType = "subdomain"
	DomainTypeStore        DomainType = "store_domain"
	DomainTypeOrganization DomainType = "organization"
	DomainTypeEcommerce    DomainType = "ecommerce"
)

// DomainOwnership classifies who controls a hostname.
type DomainOwnership string

const (
	OwnershipVendixSubdomain     DomainOwnership = "vendix_subdomain"
	OwnershipVendixCore          DomainOwnership = "vendix_core"
	OwnershipCustomDomain        DomainOwnership = "custom_domain"
	OwnershipCustomSubdomain     DomainOwnership = "custom_subdomain"
	OwnershipThirdPartySubdomain DomainOwnership = "third_party_subdomain"
)

// DomainStatus is the lifecycle state of a domain record.
type DomainStatus string

const (
	StatusPendingDNS DomainStatus = "pending_dns"
	StatusPendingSSL DomainStatus = "pending_ssl"
	StatusActive     DomainStatus = "active"
	StatusDisabled   DomainStatus = "disabled"
)

// SSLStatus tracks certificate provisioning for a hostname.
type SSLStatus string

const (
	SSLPending SSLStatus = "pending"
	SSLIssued  SSLStatus = "issued"
	SSLNone    SSLStatus = "none"
)

// DomainConfig is the per-domain configuration blob: app-level settings plus
// the branding palette served to the frontend that loads under this hostname.
type DomainConfig struct {
	App      map[string]any  `json:"app,omitempty"`
	Branding *BrandingConfig `json:"branding,omitempty"`
}

// DomainRecord is a hostname owned by a tenant (organization or store).
// Hostnames are globally unique, case-insensitive.
type DomainRecord struct {
	ID                int64           `json:"id"`
	Hostname          string          `json:"hostname"`
	OrganizationID    *int64          `json:"organization_id,omitempty"`
	StoreID           *int64          `json:"store_id,omitempty"`
	DomainType        DomainType      `json:"domain_type"`
	Ownership         DomainOwnership `json:"ownership"`
	Status            DomainStatus    `json:"status"`
	SSLStatus         SSLStatus       `json:"ssl_status"`
	IsPrimary         bool            `json:"is_primary"`
	VerificationToken string          `json:"verification_token,omitempty"`
	Config            DomainConfig    `json:"config"`
	LastVerifiedAt    *time.Time      `json:"last_verified_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// OwnerKey identifies the exclusivity group for the single-active-domain
// invariant: at most one active record per (owner, domain_type).
func (d *DomainRecord) OwnerKey() (orgID, storeID int64) {
	if d.OrganizationID != nil {
		orgID = *d.OrganizationID
	}
	if d.StoreID != nil {
		storeID = *d.StoreID
	}
	return orgID, storeID
}

// SameOwner reports whether two records belong to the same owning entity.
func (d *DomainRecord) SameOwner(other *DomainRecord) bool {
	aOrg, aStore := d.OwnerKey()
	bOrg, bStore := other.OwnerKey()
	return aOrg == bOrg && aStore == bStore
}

// CreateDomainInput is the request shape for creating a domain record.
// DomainType and Ownership are inferred from the hostname when empty.
// OrganizationID is accepted on the wire for compatibility but ignored:
// the record is always owned by the caller's organization.
type CreateDomainInput struct {
	Hostname       string          `json:"hostname"`
	OrganizationID *int64          `json:"organization_id,omitempty"`
	StoreID        *int64          `json:"store_id,omitempty"`
	DomainType     DomainType      `json:"domain_type,omitempty"`
	Ownership      DomainOwnership `json:"ownership,omitempty"`
	IsPrimary      bool            `json:"is_primary,omitempty"`
	Config         *DomainConfig   `json:"config,omitempty"`
}

// UpdateDomainPatch is a partial update to a domain record. Nil fields are
// left untouched.
type UpdateDomainPatch struct {
	Status    *DomainStatus `json:"status,omitempty"`
	SSLStatus *SSLStatus    `json:"ssl_status,omitempty"`
	IsPrimary *bool         `json:"is_primary,omitempty"`
	Config    *DomainConfig `json:"config,omitempty"`
}

// VerifyCheck names a verification probe to run against a hostname.
type VerifyCheck string

const (
	CheckCNAME VerifyCheck = "cname"
)

// VerifyCheckResult is the outcome of a single verification probe.
type VerifyCheckResult struct {
	Check  VerifyCheck `json:"check"`
	Passed bool        `json:"passed"`
	Detail string      `json:"detail,omitempty"`
}

// VerifyResult reports a verification attempt. Verification is idempotent:
// a failed run leaves the record untouched.
type VerifyResult struct {
	Hostname       string              `json:"hostname"`
	Verified       bool                `json:"verified"`
	StatusBefore   DomainStatus        `json:"status_before"`
	StatusAfter    DomainStatus        `json:"status_after"`
	Checks         []VerifyCheckResult `json:"checks"`
	LastVerifiedAt *time.Time          `json:"last_verified_at,omitempty"`
}

// DomainStats aggregates domain counts by status and ownership, optionally
// scoped to one organization plus its stores.
type DomainStats struct {
	Total       int64                     `json:"total"`
	ByStatus    map[DomainStatus]int64    `json:"by_status"`
	ByOwnership map[DomainOwnership]int64 `json:"by_ownership"`
}

// DomainFilter narrows domain listings. An explicit OrganizationID here is
// overridden by the request scope for scoped callers.
type DomainFilter struct {
	OrganizationID *int64
	StoreID        *int64
	DomainType     DomainType
	Status         DomainStatus
	Search         string
}
