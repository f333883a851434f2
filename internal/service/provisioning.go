package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/infra/scoped"
	"github.com/rzyfront/vendix-core/internal/port"
	"github.com/rzyfront/vendix-core/internal/tenantctx"
)

var provisioningTracer = otel.Tracer("service/provisioning")

// ProvisioningService creates tenants: an organization with its platform
// subdomain and branding, and stores with their admin and storefront
// hostnames. Children inherit the parent's branding unless overridden.
type ProvisioningService struct {
	store     *scoped.Store
	domains   *DomainService
	generator *DomainGenerator
	tasks     port.TaskRunner
	logger    *zap.Logger
}

// NewProvisioningService creates a new provisioning service.
func NewProvisioningService(store *scoped.Store, domains *DomainService, generator *DomainGenerator, tasks port.TaskRunner, logger *zap.Logger) *ProvisioningService {
	return &ProvisioningService{store: store, domains: domains, generator: generator, tasks: tasks, logger: logger}
}

// ============================================================
// Organizations — POST /v1/organizations (super admin)
// ============================================================

func (s *ProvisioningService) CreateOrganization(ctx context.Context, input *domain.CreateOrganizationInput) (*domain.Organization, error) {
	ctx, span := provisioningTracer.Start(ctx, "ProvisioningService.CreateOrganization")
	defer span.End()

	if input.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}
	slug := CleanSlug(input.Name)
	if slug == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name yields an empty slug"}
	}

	org, err := s.store.WithoutScope().CreateOrganization(ctx, &domain.Organization{
		Name:   input.Name,
		Slug:   slug,
		Email:  input.Email,
		Status: "active",
	})
	if err != nil {
		return nil, err
	}

	branding := GenerateBranding(domain.BrandingOptions{
		Name:           input.Name,
		PrimaryColor:   input.PrimaryColor,
		SecondaryColor: input.SecondaryColor,
	})

	// Domain creation runs in the new organization's scope, not the
	// provisioning caller's.
	orgCtx := tenantctx.NewContext(ctx, &tenantctx.TenantContext{
		UserID:         tenantctx.UserID(ctx),
		OrganizationID: org.ID,
	})

	hostname, err := s.claimHostname(orgCtx, slug, ContextOrganization, nil, domain.DomainTypeOrganization, &branding)
	if err != nil {
		return nil, fmt.Errorf("provision organization domain: %w", err)
	}

	if err := s.store.WithoutScope().PutOrganizationSettings(ctx, org.ID, &domain.OrganizationSettingsDoc{
		Branding: &branding,
	}); err != nil {
		s.logger.Warn("persist organization branding", zap.Int64("organization_id", org.ID), zap.Error(err))
	}

	s.logger.Info("organization provisioned",
		zap.Int64("organization_id", org.ID),
		zap.String("slug", slug),
		zap.String("hostname", hostname),
	)
	return org, nil
}

// ============================================================
// Stores — POST /v1/stores
// ============================================================

func (s *ProvisioningService) CreateStore(ctx context.Context, input *domain.CreateStoreInput) (*domain.Store, error) {
	ctx, span := provisioningTracer.Start(ctx, "ProvisioningService.CreateStore")
	defer span.End()

	if input.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}
	slug := CleanSlug(input.Name)
	if slug == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name yields an empty slug"}
	}

	st, err := s.store.CreateStore(ctx, &domain.Store{
		Name:      input.Name,
		Slug:      slug,
		StoreType: input.StoreType,
		Timezone:  input.Timezone,
		Status:    "active",
	})
	if err != nil {
		return nil, err
	}

	branding := s.inheritedBranding(ctx, input.Name)

	if _, err := s.claimHostname(ctx, slug, ContextStore, &st.ID, domain.DomainTypeStore, branding); err != nil {
		return nil, fmt.Errorf("provision store domain: %w", err)
	}

	if input.WithEcommerce {
		if _, err := s.claimHostname(ctx, slug, ContextEcommerce, &st.ID, domain.DomainTypeEcommerce, branding); err != nil {
			return nil, fmt.Errorf("provision storefront domain: %w", err)
		}
	}

	recordAudit(s.tasks, s.store, ctx, "create", "store", strconv.FormatInt(st.ID, 10), st.Name)
	s.logger.Info("store provisioned",
		zap.Int64("store_id", st.ID),
		zap.String("slug", slug),
		zap.Bool("with_ecommerce", input.WithEcommerce),
	)
	return st, nil
}

// DeleteStore removes a store with its users and domains.
func (s *ProvisioningService) DeleteStore(ctx context.Context, storeID int64) error {
	ctx, span := provisioningTracer.Start(ctx, "ProvisioningService.DeleteStore")
	defer span.End()

	st, err := s.store.GetStore(ctx, storeID)
	if err != nil {
		return err
	}

	for _, dt := range []domain.DomainType{domain.DomainTypeStore, domain.DomainTypeEcommerce} {
		recs, err := s.store.ListDomainsByOwner(ctx, &storeID, dt)
		if err != nil {
			return fmt.Errorf("list store domains: %w", err)
		}
		for _, rec := range recs {
			if err := s.store.DeleteDomain(ctx, rec.Hostname); err != nil {
				return fmt.Errorf("delete domain %s: %w", rec.Hostname, err)
			}
		}
	}

	if _, err := s.store.DeleteUsersByStore(ctx, storeID); err != nil {
		return fmt.Errorf("delete store users: %w", err)
	}
	if err := s.store.DeleteStore(ctx, storeID); err != nil {
		return err
	}

	recordAudit(s.tasks, s.store, ctx, "delete", "store", strconv.FormatInt(storeID, 10), st.Name)
	return nil
}

// claimHostname walks the generator's candidate list and registers the
// first free hostname as a platform subdomain for the owner.
func (s *ProvisioningService) claimHostname(ctx context.Context, slug string, dc DomainContext, storeID *int64, dt domain.DomainType, branding *domain.BrandingConfig) (string, error) {
	var cfg *domain.DomainConfig
	if branding != nil {
		cfg = &domain.DomainConfig{Branding: branding}
	}

	var lastErr error
	for _, candidate := range s.generator.GenerateAttempts(slug, dc, 0) {
		taken, err := s.store.WithoutScope().HostnameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}

		rec, err := s.domains.CreateDomainSetting(ctx, &domain.CreateDomainInput{
			Hostname:   candidate,
			StoreID:    storeID,
			DomainType: dt,
			Ownership:  domain.OwnershipVendixSubdomain,
			IsPrimary:  true,
			Config:     cfg,
		})
		if err != nil {
			// Lost the race for this candidate; try the next one.
			var conflict *domain.ErrConflict
			if errors.As(err, &conflict) {
				lastErr = err
				continue
			}
			return "", err
		}
		return rec.Hostname, nil
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", &domain.ErrConflict{Message: "no free hostname for slug: " + slug}
}

// ============================================================
// Reads used by the organization and store endpoints
// ============================================================

func (s *ProvisioningService) GetOrganization(ctx context.Context, id int64) (*domain.Organization, error) {
	ctx, span := provisioningTracer.Start(ctx, "ProvisioningService.GetOrganization")
	defer span.End()

	return s.store.WithoutScope().GetOrganization(ctx, id)
}

func (s *ProvisioningService) ListOrganizations(ctx context.Context, page, limit int) ([]domain.Organization, int64, error) {
	ctx, span := provisioningTracer.Start(ctx, "ProvisioningService.ListOrganizations")
	defer span.End()

	return s.store.WithoutScope().ListOrganizations(ctx, page, limit)
}

func (s *ProvisioningService) GetStore(ctx context.Context, storeID int64) (*domain.Store, error) {
	ctx, span := provisioningTracer.Start(ctx, "ProvisioningService.GetStore")
	defer span.End()

	return s.store.GetStore(ctx, storeID)
}

func (s *ProvisioningService) ListStores(ctx context.Context, page, limit int) ([]domain.Store, int64, error) {
	ctx, span := provisioningTracer.Start(ctx, "ProvisioningService.ListStores")
	defer span.End()

	return s.store.ListStores(ctx, page, limit)
}

func (s *ProvisioningService) UpdateStore(ctx context.Context, st *domain.Store) (*domain.Store, error) {
	ctx, span := provisioningTracer.Start(ctx, "ProvisioningService.UpdateStore")
	defer span.End()

	updated, err := s.store.UpdateStore(ctx, st)
	if err != nil {
		return nil, err
	}
	// The merged settings view bakes in the live store row.
	s.domains.invalidateStoreSettings(ctx, &updated.ID)
	recordAudit(s.tasks, s.store, ctx, "update", "store", strconv.FormatInt(st.ID, 10), "")
	return updated, nil
}

// inheritedBranding returns the organization's branding with the child's
// name, or nil when the organization has none.
func (s *ProvisioningService) inheritedBranding(ctx context.Context, childName string) *domain.BrandingConfig {
	doc, err := s.store.GetOrganizationSettings(ctx)
	if err != nil || doc == nil || doc.Branding == nil {
		return nil
	}
	branding := *doc.Branding
	branding.Name = childName
	return &branding
}
