package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/infra/cache"
	"github.com/rzyfront/vendix-core/internal/infra/memstore"
	"github.com/rzyfront/vendix-core/internal/infra/observability"
	"github.com/rzyfront/vendix-core/internal/infra/scoped"
	"github.com/rzyfront/vendix-core/internal/service"
)

// --- Mocks ---

const signedPrefix = "https://cdn.example.com/assets/"

type mockAssets struct {
	signErr  error
	favicons []string
}

func (m *mockAssets) SignURL(_ context.Context, key string) (string, error) {
	if m.signErr != nil {
		return "", m.signErr
	}
	return signedPrefix + key + "?sig=abc", nil
}

func (m *mockAssets) StripKey(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		return rawURL
	}
	key := strings.TrimPrefix(rawURL, signedPrefix)
	if i := strings.Index(key, "?"); i >= 0 {
		key = key[:i]
	}
	return key
}

func (m *mockAssets) GenerateFavicon(_ context.Context, logoKey string) (string, error) {
	favicon := "favicons/" + logoKey
	m.favicons = append(m.favicons, favicon)
	return favicon, nil
}

// syncRunner runs submitted tasks inline so tests observe their effects
// immediately.
type syncRunner struct{}

func (syncRunner) Submit(_ string, fn func(ctx context.Context) error) {
	_ = fn(context.Background())
}

// --- Helpers ---

type settingsFixture struct {
	svc     *service.SettingsService
	domains *service.DomainService
	prov    *service.ProvisioningService
	mem     *memstore.Store
	assets  *mockAssets
	orgID   int64
	storeID int64
}

func newSettingsFixture(t *testing.T) *settingsFixture {
	t.Helper()
	mem := memstore.New()
	ctx := context.Background()

	org, err := mem.CreateOrganization(ctx, &domain.Organization{Name: "Acme", Slug: "acme", Status: "active"})
	if err != nil {
		t.Fatalf("create org: %v", err)
	}
	st, err := mem.CreateStore(ctx, org.ID, &domain.Store{
		Name:      "Acme Store",
		Slug:      "acme-store",
		StoreType: "physical",
		Timezone:  "America/Bogota",
		Status:    "active",
	})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	assets := &mockAssets{}
	store := scoped.New(mem, observability.NewMetrics(), zap.NewNop())
	// Domain, settings and provisioning services share one cache in
	// production; the merged view must never outlive a write on any of them.
	settingsCache := cache.NewMemorySettings(time.Minute)
	svc := service.NewSettingsService(
		store,
		settingsCache,
		assets,
		syncRunner{},
		observability.NewMetrics(),
		zap.NewNop(),
	)
	generator := service.NewDomainGenerator("vendix.com")
	domains := service.NewDomainService(store, generator, &mockDNS{}, settingsCache, observability.NewMetrics(), zap.NewNop())
	prov := service.NewProvisioningService(store, domains, generator, syncRunner{}, zap.NewNop())
	return &settingsFixture{
		svc:     svc,
		domains: domains,
		prov:    prov,
		mem:     mem,
		assets:  assets,
		orgID:   org.ID,
		storeID: st.ID,
	}
}

// --- Store settings ---

func TestGetStoreSettings_Defaults(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := tenantCtx(fx.orgID)

	got, err := fx.svc.GetStoreSettings(ctx, fx.storeID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// Live store row wins over defaults.
	if got.General.Name != "Acme Store" {
		t.Errorf("name = %q", got.General.Name)
	}
	if got.General.Timezone != "America/Bogota" {
		t.Errorf("timezone = %q", got.General.Timezone)
	}
	// Compiled defaults fill everything else.
	if got.General.Currency != "USD" {
		t.Errorf("currency = %q", got.General.Currency)
	}
	if !got.Inventory.TrackStock || got.Inventory.LowStockThreshold != 5 {
		t.Errorf("inventory defaults: %+v", got.Inventory)
	}
	if got.App.Theme != "default" {
		t.Errorf("theme = %q", got.App.Theme)
	}
}

func TestUpdateStoreSettings_SectionMerge(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := tenantCtx(fx.orgID)

	if _, err := fx.svc.UpdateStoreSettings(ctx, fx.storeID, &domain.StoreSettingsDoc{
		Checkout: &domain.CheckoutSettings{GuestCheckout: false, TaxIncluded: false, DefaultTaxRate: 0.19},
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	// Patching a different section leaves the first one intact.
	got, err := fx.svc.UpdateStoreSettings(ctx, fx.storeID, &domain.StoreSettingsDoc{
		Inventory: &domain.InventorySettings{TrackStock: false, LowStockThreshold: 20},
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}

	if got.Checkout.DefaultTaxRate != 0.19 || got.Checkout.GuestCheckout {
		t.Errorf("checkout section lost: %+v", got.Checkout)
	}
	if got.Inventory.TrackStock || got.Inventory.LowStockThreshold != 20 {
		t.Errorf("inventory section not applied: %+v", got.Inventory)
	}
	// Untouched sections stay on defaults.
	if !got.Notifications.OrderEmails {
		t.Errorf("notifications defaults lost: %+v", got.Notifications)
	}
}

func TestGetStoreSettings_DomainBranding(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := tenantCtx(fx.orgID)

	_, err := fx.mem.CreateDomain(ctx, fx.orgID, &domain.DomainRecord{
		Hostname:   "acme-store.vendix.com",
		StoreID:    &fx.storeID,
		DomainType: domain.DomainTypeStore,
		Ownership:  domain.OwnershipVendixSubdomain,
		Status:     domain.StatusActive,
		IsPrimary:  true,
		Config: domain.DomainConfig{
			Branding: &domain.BrandingConfig{
				Theme:        domain.ThemeLight,
				PrimaryColor: "#123456",
			},
		},
	})
	if err != nil {
		t.Fatalf("create domain: %v", err)
	}

	got, err := fx.svc.GetStoreSettings(ctx, fx.storeID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.App.PrimaryColor != "#123456" {
		t.Errorf("branding not mapped: %+v", got.App)
	}
	// Legacy clients expect "default" for the light theme.
	if got.App.Theme != "default" {
		t.Errorf("theme = %q, want default", got.App.Theme)
	}
}

func TestGetStoreSettings_FreshAfterDomainConfigPatch(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := tenantCtx(fx.orgID)

	rec, err := fx.domains.CreateDomainSetting(ctx, &domain.CreateDomainInput{
		Hostname:  "acme-store.vendix.com",
		StoreID:   &fx.storeID,
		IsPrimary: true,
		Config: &domain.DomainConfig{
			Branding: &domain.BrandingConfig{PrimaryColor: "#111111"},
		},
	})
	if err != nil {
		t.Fatalf("create domain: %v", err)
	}

	before, err := fx.svc.GetStoreSettings(ctx, fx.storeID)
	if err != nil {
		t.Fatalf("get before: %v", err)
	}
	if before.App.PrimaryColor != "#111111" {
		t.Fatalf("primary color = %q, want #111111", before.App.PrimaryColor)
	}

	cfg := domain.DomainConfig{
		Branding: &domain.BrandingConfig{PrimaryColor: "#222222"},
	}
	if _, err := fx.domains.UpdateDomainSetting(ctx, rec.Hostname, &domain.UpdateDomainPatch{Config: &cfg}); err != nil {
		t.Fatalf("patch config: %v", err)
	}

	// The cached merged view is dropped on the write, not served stale.
	after, err := fx.svc.GetStoreSettings(ctx, fx.storeID)
	if err != nil {
		t.Fatalf("get after: %v", err)
	}
	if after.App.PrimaryColor != "#222222" {
		t.Errorf("primary color = %q, want #222222 after patch", after.App.PrimaryColor)
	}
}

func TestGetStoreSettings_FreshAfterStoreUpdate(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := tenantCtx(fx.orgID)

	before, err := fx.svc.GetStoreSettings(ctx, fx.storeID)
	if err != nil {
		t.Fatalf("get before: %v", err)
	}
	if before.General.Name != "Acme Store" {
		t.Fatalf("name = %q", before.General.Name)
	}

	st, err := fx.mem.GetStore(context.Background(), fx.orgID, fx.storeID)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	st.Name = "Acme Renamed"
	if _, err := fx.prov.UpdateStore(ctx, st); err != nil {
		t.Fatalf("update store: %v", err)
	}

	after, err := fx.svc.GetStoreSettings(ctx, fx.storeID)
	if err != nil {
		t.Fatalf("get after: %v", err)
	}
	if after.General.Name != "Acme Renamed" {
		t.Errorf("name = %q, want renamed store on next read", after.General.Name)
	}
}

// --- Organization settings ---

func TestOrganizationSettings_RoundTrip(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := tenantCtx(fx.orgID)

	// Empty document before any write.
	got, err := fx.svc.GetOrganizationSettings(ctx)
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if got.Branding != nil || got.General != nil {
		t.Errorf("expected empty doc, got %+v", got)
	}

	branding := &domain.BrandingConfig{PrimaryColor: "#ABCDEF"}
	if _, err := fx.svc.UpdateOrganizationSettings(ctx, &domain.OrganizationSettingsDoc{Branding: branding}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err = fx.svc.GetOrganizationSettings(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Branding == nil || got.Branding.PrimaryColor != "#ABCDEF" {
		t.Errorf("branding not persisted: %+v", got)
	}
}

// --- Ecommerce settings ---

func TestGetEcommerceSettings_SetupSentinel(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := tenantCtx(fx.orgID)

	doc, err := fx.svc.GetEcommerceSettings(ctx, fx.storeID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil sentinel for unconfigured storefront, got %+v", doc)
	}
}

func TestUpdateEcommerceSettings_MergeAndSliderReplace(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := tenantCtx(fx.orgID)

	if _, err := fx.svc.UpdateEcommerceSettings(ctx, fx.storeID, &domain.EcommerceSettings{
		Inicio: &domain.EcommerceHome{
			Titulo: "Acme Shop",
			Slogan: "Everything acme",
			Slider: &domain.EcommerceSlider{Photos: []string{"photos/a.jpg", "photos/b.jpg"}},
		},
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	got, err := fx.svc.UpdateEcommerceSettings(ctx, fx.storeID, &domain.EcommerceSettings{
		Inicio: &domain.EcommerceHome{
			Slogan: "New slogan",
			Slider: &domain.EcommerceSlider{Photos: []string{"photos/c.jpg"}},
		},
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}

	// Scalar fields merge individually.
	if got.Inicio.Titulo != "Acme Shop" {
		t.Errorf("titulo lost: %q", got.Inicio.Titulo)
	}
	if got.Inicio.Slogan != "New slogan" {
		t.Errorf("slogan = %q", got.Inicio.Slogan)
	}
	// The photo list is replaced wholesale.
	if len(got.Inicio.Slider.Photos) != 1 {
		t.Errorf("slider photos = %v, want single replacement", got.Inicio.Slider.Photos)
	}
}

func TestUpdateEcommerceSettings_LegacyColorMigration(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := tenantCtx(fx.orgID)

	got, err := fx.svc.UpdateEcommerceSettings(ctx, fx.storeID, &domain.EcommerceSettings{
		Inicio: &domain.EcommerceHome{
			Colores: &domain.LegacyColors{Primario: "ff0000", Secundario: "#00ff00"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Branding == nil {
		t.Fatal("legacy colors not migrated to branding")
	}
	if got.Branding.PrimaryColor != "#FF0000" || got.Branding.SecondaryColor != "#00FF00" {
		t.Errorf("migrated palette: %+v", got.Branding)
	}

	// The migration is one-way: new colores never overwrite an existing
	// branding object.
	got, err = fx.svc.UpdateEcommerceSettings(ctx, fx.storeID, &domain.EcommerceSettings{
		Inicio: &domain.EcommerceHome{
			Colores: &domain.LegacyColors{Primario: "#0000FF"},
		},
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if got.Branding.PrimaryColor != "#FF0000" {
		t.Errorf("branding overwritten by later colores: %+v", got.Branding)
	}
}

func TestEcommerceSettings_AssetURLRoundTrip(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := tenantCtx(fx.orgID)

	// The client sends back a signed URL; only the key must be persisted.
	signedLogo := signedPrefix + "logos/acme.png?sig=abc"
	if _, err := fx.svc.UpdateEcommerceSettings(ctx, fx.storeID, &domain.EcommerceSettings{
		Inicio: &domain.EcommerceHome{LogoKey: signedLogo},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	raw, err := fx.mem.GetEcommerceSettings(ctx, fx.orgID, fx.storeID)
	if err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if raw.Inicio.LogoKey != "logos/acme.png" {
		t.Errorf("persisted value is not a bare key: %q", raw.Inicio.LogoKey)
	}

	// Reads sign the key again.
	doc, err := fx.svc.GetEcommerceSettings(ctx, fx.storeID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.HasPrefix(doc.Inicio.LogoKey, signedPrefix) {
		t.Errorf("read value not signed: %q", doc.Inicio.LogoKey)
	}
}

func TestUpdateEcommerceSettings_FaviconRefresh(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := tenantCtx(fx.orgID)

	if _, err := fx.svc.UpdateEcommerceSettings(ctx, fx.storeID, &domain.EcommerceSettings{
		Inicio: &domain.EcommerceHome{LogoKey: "logos/acme.png"},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(fx.assets.favicons) != 1 {
		t.Fatalf("favicon generations = %d, want 1", len(fx.assets.favicons))
	}

	raw, err := fx.mem.GetEcommerceSettings(ctx, fx.orgID, fx.storeID)
	if err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if raw.Branding == nil || raw.Branding.FaviconURL != "favicons/logos/acme.png" {
		t.Errorf("favicon key not persisted: %+v", raw.Branding)
	}

	// Re-sending the same logo key does not regenerate the favicon.
	if _, err := fx.svc.UpdateEcommerceSettings(ctx, fx.storeID, &domain.EcommerceSettings{
		Inicio: &domain.EcommerceHome{LogoKey: "logos/acme.png"},
	}); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if len(fx.assets.favicons) != 1 {
		t.Errorf("favicon regenerated for unchanged logo: %d runs", len(fx.assets.favicons))
	}
}

func TestEcommerceBranding_IndependentFromStoreBranding(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := tenantCtx(fx.orgID)

	_, err := fx.mem.CreateDomain(ctx, fx.orgID, &domain.DomainRecord{
		Hostname:   "acme-store.vendix.com",
		StoreID:    &fx.storeID,
		DomainType: domain.DomainTypeStore,
		Ownership:  domain.OwnershipVendixSubdomain,
		Status:     domain.StatusActive,
		IsPrimary:  true,
		Config: domain.DomainConfig{
			Branding: &domain.BrandingConfig{PrimaryColor: "#111111"},
		},
	})
	if err != nil {
		t.Fatalf("create domain: %v", err)
	}

	if _, err := fx.svc.UpdateEcommerceSettings(ctx, fx.storeID, &domain.EcommerceSettings{
		Branding: &domain.BrandingConfig{PrimaryColor: "#222222"},
	}); err != nil {
		t.Fatalf("update ecommerce: %v", err)
	}

	// Two branding objects, two audiences: the admin app keeps the domain
	// branding, the storefront keeps its own.
	storeView, err := fx.svc.GetStoreSettings(ctx, fx.storeID)
	if err != nil {
		t.Fatalf("get store settings: %v", err)
	}
	if storeView.App.PrimaryColor != "#111111" {
		t.Errorf("store branding = %q, want #111111", storeView.App.PrimaryColor)
	}

	ecomView, err := fx.svc.GetEcommerceSettings(ctx, fx.storeID)
	if err != nil {
		t.Fatalf("get ecommerce settings: %v", err)
	}
	if ecomView.Branding.PrimaryColor != "#222222" {
		t.Errorf("ecommerce branding = %q, want #222222", ecomView.Branding.PrimaryColor)
	}
}

func TestUpdateEcommerceSettings_DisplayNameSync(t *testing.T) {
	fx := newSettingsFixture(t)
	ctx := tenantCtx(fx.orgID)

	if _, err := fx.svc.UpdateEcommerceSettings(ctx, fx.storeID, &domain.EcommerceSettings{
		Inicio: &domain.EcommerceHome{Titulo: "Renamed Shop"},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	st, err := fx.mem.GetStore(ctx, fx.orgID, fx.storeID)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if st.Name != "Renamed Shop" {
		t.Errorf("store name = %q", st.Name)
	}

	org, err := fx.mem.GetOrganization(ctx, fx.orgID)
	if err != nil {
		t.Fatalf("get org: %v", err)
	}
	if org.Name != "Renamed Shop" {
		t.Errorf("organization name = %q", org.Name)
	}
}
