// Package service provides the business logic layer (use cases).
// DomainService owns hostname resolution and the domain lifecycle:
// creation, verification, primary swaps, config fan-out, stats.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/infra/observability"
	"github.com/rzyfront/vendix-core/internal/infra/scoped"
	"github.com/rzyfront/vendix-core/internal/port"
	"github.com/rzyfront/vendix-core/internal/tenantctx"
)

var domainTracer = otel.Tracer("service/domains")

// reservedPrefixes are first labels that can never be claimed by a tenant.
var reservedPrefixes = map[string]bool{
	"www": true, "api": true, "admin": true, "app": true,
	"mail": true, "ftp": true, "localhost": true,
}

var hostnameLabelRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// DomainService orchestrates domain records through the scoped store. It
// shares the settings cache with SettingsService because domain branding is
// baked into the merged store-settings view.
type DomainService struct {
	store     *scoped.Store
	generator *DomainGenerator
	dns       port.DNSResolver
	cache     port.SettingsCache
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewDomainService creates a new domain service.
func NewDomainService(store *scoped.Store, generator *DomainGenerator, dns port.DNSResolver, cache port.SettingsCache, metrics *observability.Metrics, logger *zap.Logger) *DomainService {
	return &DomainService{store: store, generator: generator, dns: dns, cache: cache, metrics: metrics, logger: logger}
}

// ============================================================
// Resolution — GET /v1/domains/resolve/{hostname}
// ============================================================

// ResolveDomain maps an inbound hostname to its owning tenant record. It
// runs before any tenant scope exists, so it reads through the unscoped
// store on purpose.
func (s *DomainService) ResolveDomain(ctx context.Context, hostname string) (*domain.DomainRecord, error) {
	ctx, span := domainTracer.Start(ctx, "DomainService.ResolveDomain")
	defer span.End()
	span.SetAttributes(attribute.String("domain.hostname", hostname))

	rec, err := s.store.WithoutScope().ResolveHostname(ctx, strings.ToLower(strings.TrimSpace(hostname)))
	if err != nil {
		s.metrics.IncrDomainResolution("miss")
		return nil, err
	}
	s.metrics.IncrDomainResolution("hit")
	return rec, nil
}

// ============================================================
// Creation — POST /v1/domains
// ============================================================

func (s *DomainService) CreateDomainSetting(ctx context.Context, input *domain.CreateDomainInput) (*domain.DomainRecord, error) {
	ctx, span := domainTracer.Start(ctx, "DomainService.CreateDomainSetting")
	defer span.End()

	hostname := strings.ToLower(strings.TrimSpace(input.Hostname))
	span.SetAttributes(attribute.String("domain.hostname", hostname))

	if err := validateHostname(hostname); err != nil {
		return nil, err
	}

	// Fast-path uniqueness check. The storage unique index on
	// lower(hostname) is the real guard under concurrency.
	taken, err := s.store.WithoutScope().HostnameTaken(ctx, hostname)
	if err != nil {
		return nil, fmt.Errorf("check hostname: %w", err)
	}
	if taken {
		return nil, &domain.ErrConflict{Message: "hostname already registered: " + hostname}
	}

	domainType := input.DomainType
	if domainType == "" {
		domainType = s.inferDomainType(hostname, input.StoreID)
	}
	ownership := input.Ownership
	if ownership == "" {
		ownership = s.inferOwnership(hostname, domainType)
	}

	// Ownership is never taken from the input: the scoped store stamps the
	// caller's organization on the record.
	rec := &domain.DomainRecord{
		Hostname:          hostname,
		StoreID:           input.StoreID,
		DomainType:        domainType,
		Ownership:         ownership,
		Status:            domain.StatusPendingDNS,
		SSLStatus:         domain.SSLPending,
		IsPrimary:         input.IsPrimary,
		VerificationToken: newVerificationToken(),
	}
	if input.Config != nil {
		rec.Config = *input.Config
	}

	// Platform subdomains are pre-verified; both DNS and certificates are
	// platform-managed.
	if ownership == domain.OwnershipVendixSubdomain {
		rec.Status = domain.StatusActive
		rec.SSLStatus = domain.SSLIssued
	}

	if input.IsPrimary || ownership == domain.OwnershipVendixSubdomain {
		rec.Status = domain.StatusActive
		if _, err := s.store.DemoteActiveDomains(ctx, rec.StoreID, domainType, hostname); err != nil {
			return nil, fmt.Errorf("demote siblings: %w", err)
		}
	}

	created, err := s.store.CreateDomain(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.invalidateStoreSettings(ctx, created.StoreID)

	s.logger.Info("domain created",
		zap.String("hostname", created.Hostname),
		zap.String("type", string(created.DomainType)),
		zap.String("ownership", string(created.Ownership)),
		zap.String("status", string(created.Status)),
	)
	return created, nil
}

// ============================================================
// Update — PATCH /v1/domains/{hostname}
// ============================================================

func (s *DomainService) UpdateDomainSetting(ctx context.Context, hostname string, patch *domain.UpdateDomainPatch) (*domain.DomainRecord, error) {
	ctx, span := domainTracer.Start(ctx, "DomainService.UpdateDomainSetting")
	defer span.End()
	span.SetAttributes(attribute.String("domain.hostname", hostname))

	rec, err := s.store.GetDomain(ctx, hostname)
	if err != nil {
		return nil, err
	}

	activating := patch.Status != nil && *patch.Status == domain.StatusActive
	claimingPrimary := patch.IsPrimary != nil && *patch.IsPrimary

	if activating || claimingPrimary {
		if _, err := s.store.DemoteActiveDomains(ctx, rec.StoreID, rec.DomainType, rec.Hostname); err != nil {
			return nil, fmt.Errorf("demote siblings: %w", err)
		}
		rec.Status = domain.StatusActive
	}
	if patch.Status != nil {
		rec.Status = *patch.Status
	}
	if patch.SSLStatus != nil {
		rec.SSLStatus = *patch.SSLStatus
	}
	if patch.IsPrimary != nil {
		rec.IsPrimary = *patch.IsPrimary
	}
	if patch.Config != nil {
		rec.Config = *patch.Config
	}

	updated, err := s.store.UpdateDomain(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.invalidateStoreSettings(ctx, updated.StoreID)

	if patch.Config != nil {
		s.fanOutConfig(ctx, updated)
	}
	return updated, nil
}

// fanOutConfig propagates a config change to every other active record of
// the same type for the same owner, so all aliases serve the same branding.
// Best-effort: a partial failure leaves siblings stale until the next
// update; the triggering write has already succeeded.
func (s *DomainService) fanOutConfig(ctx context.Context, src *domain.DomainRecord) {
	siblings, err := s.store.ListDomainsByOwner(ctx, src.StoreID, src.DomainType)
	if err != nil {
		s.logger.Warn("config fan-out: list siblings failed",
			zap.String("hostname", src.Hostname), zap.Error(err))
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range siblings {
		sib := siblings[i]
		if sib.Hostname == src.Hostname || sib.Status != domain.StatusActive {
			continue
		}
		g.Go(func() error {
			sib.Config = src.Config
			if _, err := s.store.UpdateDomain(gctx, &sib); err != nil {
				return fmt.Errorf("sync %s: %w", sib.Hostname, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("config fan-out incomplete",
			zap.String("hostname", src.Hostname), zap.Error(err))
	}
}

// ============================================================
// Duplication — POST /v1/domains/{hostname}/duplicate
// ============================================================

func (s *DomainService) DuplicateDomainSetting(ctx context.Context, hostname, newHostname string) (*domain.DomainRecord, error) {
	ctx, span := domainTracer.Start(ctx, "DomainService.DuplicateDomainSetting")
	defer span.End()

	src, err := s.store.GetDomain(ctx, hostname)
	if err != nil {
		return nil, err
	}

	cfg := src.Config
	return s.CreateDomainSetting(ctx, &domain.CreateDomainInput{
		Hostname:   newHostname,
		StoreID:    src.StoreID,
		DomainType: src.DomainType,
		Ownership:  src.Ownership,
		IsPrimary:  false,
		Config:     &cfg,
	})
}

// ============================================================
// Verification — POST /v1/domains/{hostname}/verify
// ============================================================

func (s *DomainService) VerifyDomain(ctx context.Context, hostname string, checks []domain.VerifyCheck) (*domain.VerifyResult, error) {
	ctx, span := domainTracer.Start(ctx, "DomainService.VerifyDomain")
	defer span.End()
	span.SetAttributes(attribute.String("domain.hostname", hostname))

	rec, err := s.store.GetDomain(ctx, hostname)
	if err != nil {
		return nil, err
	}

	if rec.Ownership != domain.OwnershipCustomDomain && rec.Ownership != domain.OwnershipCustomSubdomain {
		return nil, &domain.ErrValidation{
			Field:   "hostname",
			Message: "only custom domains require verification",
		}
	}

	if len(checks) == 0 {
		checks = []domain.VerifyCheck{domain.CheckCNAME}
	}

	result := &domain.VerifyResult{
		Hostname:       rec.Hostname,
		StatusBefore:   rec.Status,
		StatusAfter:    rec.Status,
		LastVerifiedAt: rec.LastVerifiedAt,
	}

	allPassed := true
	for _, check := range checks {
		cr := s.runCheck(ctx, rec.Hostname, check)
		result.Checks = append(result.Checks, cr)
		if !cr.Passed {
			allPassed = false
		}
	}

	// A failed run is a no-op: retrying is always safe.
	if !allPassed {
		s.metrics.IncrVerification("failed")
		return result, nil
	}

	now := time.Now().UTC()
	rec.Status = domain.StatusActive
	rec.SSLStatus = domain.SSLIssued
	rec.LastVerifiedAt = &now

	updated, err := s.store.UpdateDomain(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("persist verification: %w", err)
	}

	s.metrics.IncrVerification("passed")
	result.Verified = true
	result.StatusAfter = updated.Status
	result.LastVerifiedAt = updated.LastVerifiedAt

	s.logger.Info("domain verified", zap.String("hostname", rec.Hostname))
	return result, nil
}

// runCheck executes one probe. A DNS timeout or NXDOMAIN is a failed check,
// never an error: VerifyDomain always returns a result.
func (s *DomainService) runCheck(ctx context.Context, hostname string, check domain.VerifyCheck) domain.VerifyCheckResult {
	switch check {
	case domain.CheckCNAME:
		target, err := s.dns.LookupCNAME(ctx, hostname)
		if err != nil {
			return domain.VerifyCheckResult{
				Check:  check,
				Passed: false,
				Detail: "cname lookup failed: " + err.Error(),
			}
		}
		if !strings.HasSuffix(target, s.generator.BaseDomain()) {
			return domain.VerifyCheckResult{
				Check:  check,
				Passed: false,
				Detail: fmt.Sprintf("cname points to %s, expected a %s target", target, s.generator.BaseDomain()),
			}
		}
		return domain.VerifyCheckResult{Check: check, Passed: true, Detail: "cname -> " + target}
	default:
		return domain.VerifyCheckResult{
			Check:  check,
			Passed: false,
			Detail: "unknown check",
		}
	}
}

// ============================================================
// Listing, stats, deletion
// ============================================================

func (s *DomainService) ListDomains(ctx context.Context, f domain.DomainFilter, page, limit int) ([]domain.DomainRecord, int64, error) {
	ctx, span := domainTracer.Start(ctx, "DomainService.ListDomains")
	defer span.End()

	return s.store.ListDomains(ctx, f, page, limit)
}

func (s *DomainService) GetDomain(ctx context.Context, hostname string) (*domain.DomainRecord, error) {
	ctx, span := domainTracer.Start(ctx, "DomainService.GetDomain")
	defer span.End()

	return s.store.GetDomain(ctx, hostname)
}

// GetDomainStats aggregates the caller's organization by default. Super
// admins may request the platform-wide aggregate.
func (s *DomainService) GetDomainStats(ctx context.Context, platformWide bool) (*domain.DomainStats, error) {
	ctx, span := domainTracer.Start(ctx, "DomainService.GetDomainStats")
	defer span.End()

	if platformWide {
		return s.store.WithoutScope().DomainStats(ctx, nil)
	}
	return s.store.DomainStats(ctx)
}

func (s *DomainService) DeleteDomain(ctx context.Context, hostname string) error {
	ctx, span := domainTracer.Start(ctx, "DomainService.DeleteDomain")
	defer span.End()

	rec, err := s.store.GetDomain(ctx, hostname)
	if err != nil {
		return err
	}
	if err := s.store.DeleteDomain(ctx, hostname); err != nil {
		return err
	}
	s.invalidateStoreSettings(ctx, rec.StoreID)
	s.logger.Info("domain deleted", zap.String("hostname", hostname))
	return nil
}

// ============================================================
// Helpers
// ============================================================

// invalidateStoreSettings drops the cached merged settings view for the
// store owning a domain record. Any domain write under a store can change
// the branding that view serves.
func (s *DomainService) invalidateStoreSettings(ctx context.Context, storeID *int64) {
	if storeID == nil {
		return
	}
	s.cache.Delete(ctx, storeSettingsCacheKey(tenantctx.OrganizationID(ctx), *storeID))
}

// validateHostname enforces RFC-ish label rules plus the platform's
// reserved-prefix list.
func validateHostname(hostname string) error {
	if hostname == "" {
		return &domain.ErrValidation{Field: "hostname", Message: "hostname is required"}
	}
	if len(hostname) > 253 {
		return &domain.ErrValidation{Field: "hostname", Message: "hostname exceeds 253 characters"}
	}

	labels := strings.Split(hostname, ".")
	if len(labels) < 2 {
		return &domain.ErrValidation{Field: "hostname", Message: "hostname must contain at least two labels"}
	}
	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return &domain.ErrValidation{Field: "hostname", Message: "each label must be 1-63 characters"}
		}
		if !hostnameLabelRe.MatchString(label) {
			return &domain.ErrValidation{Field: "hostname", Message: "invalid label: " + label}
		}
	}

	if reservedPrefixes[labels[0]] {
		return &domain.ErrValidation{Field: "hostname", Message: "reserved prefix: " + labels[0]}
	}
	return nil
}

func (s *DomainService) inferDomainType(hostname string, storeID *int64) domain.DomainType {
	if storeID != nil {
		return domain.DomainTypeStore
	}
	if strings.Count(hostname, ".") >= 2 {
		return domain.DomainTypeSubdomain
	}
	return domain.DomainTypePrimary
}

func (s *DomainService) inferOwnership(hostname string, dt domain.DomainType) domain.DomainOwnership {
	if strings.HasSuffix(hostname, "."+s.generator.BaseDomain()) || hostname == s.generator.BaseDomain() {
		return domain.OwnershipVendixSubdomain
	}
	if dt == domain.DomainTypePrimary {
		return domain.OwnershipCustomDomain
	}
	return domain.OwnershipCustomSubdomain
}

// newVerificationToken builds a vdx_ token from random and time components.
// Collisions are improbable enough for this use; tokens are not secrets.
func newVerificationToken() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	return fmt.Sprintf("vdx_%s%d", random, time.Now().Unix())
}
