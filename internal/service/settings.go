package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/infra/observability"
	"github.com/rzyfront/vendix-core/internal/infra/scoped"
	"github.com/rzyfront/vendix-core/internal/port"
	"github.com/rzyfront/vendix-core/internal/tenantctx"
)

var settingsTracer = otel.Tracer("service/settings")

// SettingsService is the layered settings merger. Reads compose compiled
// defaults, the persisted document, live store row fields and domain
// branding into one view; writes deep-merge the storefront document and
// run their side effects off the critical path.
type SettingsService struct {
	store   *scoped.Store
	cache   port.SettingsCache
	assets  port.AssetClient
	tasks   port.TaskRunner
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewSettingsService creates a new settings service.
func NewSettingsService(store *scoped.Store, cache port.SettingsCache, assets port.AssetClient, tasks port.TaskRunner, metrics *observability.Metrics, logger *zap.Logger) *SettingsService {
	return &SettingsService{store: store, cache: cache, assets: assets, tasks: tasks, metrics: metrics, logger: logger}
}

func storeSettingsCacheKey(orgID, storeID int64) string {
	return fmt.Sprintf("settings:store:%d:%d", orgID, storeID)
}

// ============================================================
// Store settings — GET /v1/stores/{id}/settings
// ============================================================

// GetStoreSettings returns the fully merged settings view for a store.
func (s *SettingsService) GetStoreSettings(ctx context.Context, storeID int64) (*domain.StoreSettings, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.GetStoreSettings")
	defer span.End()
	span.SetAttributes(attribute.Int64("store.id", storeID))

	cacheKey := storeSettingsCacheKey(tenantctx.OrganizationID(ctx), storeID)
	if raw, ok := s.cache.Get(ctx, cacheKey); ok {
		s.metrics.IncrCacheHit("settings")
		var cached domain.StoreSettings
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}
	s.metrics.IncrCacheMiss("settings")

	st, err := s.store.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	merged := defaultStoreSettings()

	doc, err := s.store.GetStoreSettingsDoc(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("load settings doc: %w", err)
	}
	if doc != nil {
		applyStoreSettingsDoc(&merged, doc)
	}

	// Live store row fields always win over stale document copies.
	merged.General.Name = st.Name
	merged.General.LogoURL = st.LogoURL
	merged.General.StoreType = st.StoreType
	merged.General.Timezone = st.Timezone

	if branding := s.storeBranding(ctx, st); branding != nil {
		merged.App = remapBranding(branding)
	}

	if raw, err := json.Marshal(&merged); err == nil {
		s.cache.Set(ctx, cacheKey, raw)
	}
	return &merged, nil
}

// UpdateStoreSettings shallow-merges the patch document into the persisted
// one: a section present in the patch replaces that section wholesale.
func (s *SettingsService) UpdateStoreSettings(ctx context.Context, storeID int64, patch *domain.StoreSettingsDoc) (*domain.StoreSettings, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.UpdateStoreSettings")
	defer span.End()

	doc, err := s.store.GetStoreSettingsDoc(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("load settings doc: %w", err)
	}
	if doc == nil {
		doc = &domain.StoreSettingsDoc{}
	}
	mergeStoreSettingsDoc(doc, patch)

	if err := s.store.PutStoreSettingsDoc(ctx, storeID, doc); err != nil {
		return nil, fmt.Errorf("persist settings doc: %w", err)
	}

	s.cache.Delete(ctx, storeSettingsCacheKey(tenantctx.OrganizationID(ctx), storeID))
	return s.GetStoreSettings(ctx, storeID)
}

// storeBranding finds branding for a store: its primary store domain first,
// then any store domain carrying a branding config.
func (s *SettingsService) storeBranding(ctx context.Context, st *domain.Store) *domain.BrandingConfig {
	recs, err := s.store.ListDomainsByOwner(ctx, &st.ID, domain.DomainTypeStore)
	if err != nil {
		s.logger.Warn("load store domains for branding",
			zap.Int64("store_id", st.ID), zap.Error(err))
		return nil
	}

	var fallback *domain.BrandingConfig
	for i := range recs {
		if recs[i].Config.Branding == nil {
			continue
		}
		if recs[i].IsPrimary {
			return recs[i].Config.Branding
		}
		if fallback == nil {
			fallback = recs[i].Config.Branding
		}
	}
	return fallback
}

// remapBranding converts domain-record branding into the legacy app
// settings shape. The legacy theme value for light is "default".
func remapBranding(b *domain.BrandingConfig) domain.AppSettings {
	theme := string(b.Theme)
	if theme == string(domain.ThemeLight) || theme == "" {
		theme = "default"
	}
	return domain.AppSettings{
		Theme:              theme,
		PrimaryColor:       b.PrimaryColor,
		SecondaryColor:     b.SecondaryColor,
		BackgroundColor:    b.BackgroundColor,
		SurfaceColor:       b.SurfaceColor,
		AccentColor:        b.AccentColor,
		BorderColor:        b.BorderColor,
		TextColor:          b.TextColor,
		TextSecondaryColor: b.TextSecondaryColor,
		TextMutedColor:     b.TextMutedColor,
		LogoURL:            b.LogoURL,
		FaviconURL:         b.FaviconURL,
	}
}

func applyStoreSettingsDoc(out *domain.StoreSettings, doc *domain.StoreSettingsDoc) {
	if doc.General != nil {
		out.General = *doc.General
	}
	if doc.Inventory != nil {
		out.Inventory = *doc.Inventory
	}
	if doc.Checkout != nil {
		out.Checkout = *doc.Checkout
	}
	if doc.Shipping != nil {
		out.Shipping = *doc.Shipping
	}
	if doc.Notifications != nil {
		out.Notifications = *doc.Notifications
	}
	if doc.POS != nil {
		out.POS = *doc.POS
	}
	if doc.Receipts != nil {
		out.Receipts = *doc.Receipts
	}
}

func mergeStoreSettingsDoc(dst, patch *domain.StoreSettingsDoc) {
	if patch.General != nil {
		dst.General = patch.General
	}
	if patch.Inventory != nil {
		dst.Inventory = patch.Inventory
	}
	if patch.Checkout != nil {
		dst.Checkout = patch.Checkout
	}
	if patch.Shipping != nil {
		dst.Shipping = patch.Shipping
	}
	if patch.Notifications != nil {
		dst.Notifications = patch.Notifications
	}
	if patch.POS != nil {
		dst.POS = patch.POS
	}
	if patch.Receipts != nil {
		dst.Receipts = patch.Receipts
	}
}

// ============================================================
// Organization settings
// ============================================================

func (s *SettingsService) GetOrganizationSettings(ctx context.Context) (*domain.OrganizationSettingsDoc, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.GetOrganizationSettings")
	defer span.End()

	doc, err := s.store.GetOrganizationSettings(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = &domain.OrganizationSettingsDoc{}
	}
	return doc, nil
}

func (s *SettingsService) UpdateOrganizationSettings(ctx context.Context, patch *domain.OrganizationSettingsDoc) (*domain.OrganizationSettingsDoc, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.UpdateOrganizationSettings")
	defer span.End()

	doc, err := s.store.GetOrganizationSettings(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = &domain.OrganizationSettingsDoc{}
	}
	if patch.General != nil {
		doc.General = patch.General
	}
	if patch.Notifications != nil {
		doc.Notifications = patch.Notifications
	}
	if patch.Branding != nil {
		doc.Branding = patch.Branding
	}

	if err := s.store.PutOrganizationSettings(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist organization settings: %w", err)
	}
	return doc, nil
}
