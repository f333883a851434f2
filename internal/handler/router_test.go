package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/handler"
	"github.com/rzyfront/vendix-core/internal/infra/cache"
	"github.com/rzyfront/vendix-core/internal/infra/memstore"
	"github.com/rzyfront/vendix-core/internal/infra/observability"
	"github.com/rzyfront/vendix-core/internal/infra/scoped"
	"github.com/rzyfront/vendix-core/internal/service"
)

// --- Mocks ---

type stubDNS struct{ target string }

func (s stubDNS) LookupCNAME(_ context.Context, _ string) (string, error) {
	return s.target, nil
}

type stubAssets struct{}

func (stubAssets) SignURL(_ context.Context, key string) (string, error) { return key, nil }
func (stubAssets) StripKey(rawURL string) string                         { return rawURL }
func (stubAssets) GenerateFavicon(_ context.Context, logoKey string) (string, error) {
	return logoKey, nil
}

type stubRunner struct{}

func (stubRunner) Submit(_ string, fn func(ctx context.Context) error) {
	_ = fn(context.Background())
}

// --- Fixture ---

type fixture struct {
	router http.Handler
	mem    *memstore.Store
	auth   *service.AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memstore.New()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := scoped.New(mem, metrics, logger)

	generator := service.NewDomainGenerator("vendix.com")
	settingsCache := cache.NewMemorySettings(time.Minute)
	domains := service.NewDomainService(store, generator, stubDNS{target: "edge.vendix.com"}, settingsCache, metrics, logger)
	settings := service.NewSettingsService(store, settingsCache, stubAssets{}, stubRunner{}, metrics, logger)
	users := service.NewUserService(store, stubRunner{}, logger)
	provisioning := service.NewProvisioningService(store, domains, generator, stubRunner{}, logger)
	auth := service.NewAuthService(store, "router-test-secret", 15*time.Minute, logger)

	router := handler.NewRouter(handler.Deps{
		Domains:      domains,
		Settings:     settings,
		Users:        users,
		Provisioning: provisioning,
		Auth:         auth,
		Metrics:      metrics,
		Backend:      mem,
		AdminOrigin:  "http://localhost:4200",
		Logger:       logger,
	})
	return &fixture{router: router, mem: mem, auth: auth}
}

func (f *fixture) seedUser(t *testing.T, orgID int64, email string, superAdmin bool) {
	t.Helper()
	hash, err := service.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := f.mem.CreateUser(context.Background(), orgID, &domain.User{
		Email:        email,
		Name:         "Router Test",
		PasswordHash: hash,
		Roles:        []string{"admin"},
		IsSuperAdmin: superAdmin,
		Status:       "active",
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func (f *fixture) login(t *testing.T, email string) string {
	t.Helper()
	body := `{"email":"` + email + `","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken
}

func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/v1/domains", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}

	rec = f.do(http.MethodGet, "/v1/domains", "bogus-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bogus token: expected 401, got %d", rec.Code)
	}
}

func TestResolveDomain_Public(t *testing.T) {
	f := newFixture(t)
	if _, err := f.mem.CreateDomain(context.Background(), 1, &domain.DomainRecord{
		Hostname:   "acme.vendix.com",
		DomainType: domain.DomainTypeOrganization,
		Ownership:  domain.OwnershipVendixSubdomain,
		Status:     domain.StatusActive,
	}); err != nil {
		t.Fatalf("seed domain: %v", err)
	}

	// Resolution happens at the edge, before any authentication.
	rec := f.do(http.MethodGet, "/v1/domains/resolve/ACME.vendix.com", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(http.MethodGet, "/v1/domains/resolve/unknown.example.com", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown hostname: expected 404, got %d", rec.Code)
	}
}

func TestDomainLifecycle(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 3, "owner@acme.test", false)
	token := f.login(t, "owner@acme.test")

	rec := f.do(http.MethodPost, "/v1/domains", token,
		`{"hostname":"acme-org.vendix.com","domain_type":"organization","ownership":"vendix_subdomain"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.DomainRecord
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Status != domain.StatusActive {
		t.Errorf("platform subdomain status = %q, want active", created.Status)
	}

	rec = f.do(http.MethodGet, "/v1/domains", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list struct {
		Data []domain.DomainRecord `json:"data"`
		Meta domain.ListMeta       `json:"meta"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Meta.Total != 1 || len(list.Data) != 1 {
		t.Errorf("list total = %d, records = %d", list.Meta.Total, len(list.Data))
	}

	rec = f.do(http.MethodDelete, "/v1/domains/acme-org.vendix.com", token, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	rec = f.do(http.MethodGet, "/v1/domains/acme-org.vendix.com", token, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestDomainStats_IncludesResolutionMeta(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 3, "owner@acme.test", false)
	token := f.login(t, "owner@acme.test")

	if _, err := f.mem.CreateDomain(context.Background(), 3, &domain.DomainRecord{
		Hostname:   "acme.vendix.com",
		DomainType: domain.DomainTypeOrganization,
		Ownership:  domain.OwnershipVendixSubdomain,
		Status:     domain.StatusActive,
	}); err != nil {
		t.Fatalf("seed domain: %v", err)
	}

	// One hit and one miss feed the counters behind the meta block.
	if rec := f.do(http.MethodGet, "/v1/domains/resolve/acme.vendix.com", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("resolve: expected 200, got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/v1/domains/resolve/nope.example.com", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("resolve miss: expected 404, got %d", rec.Code)
	}

	rec := f.do(http.MethodGet, "/v1/domains/stats", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data *domain.DomainStats               `json:"data"`
		Meta *observability.ResolutionSnapshot `json:"meta"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if resp.Data == nil || resp.Data.Total != 1 {
		t.Errorf("data block: %+v", resp.Data)
	}
	if resp.Meta == nil {
		t.Fatal("meta block missing")
	}
	if resp.Meta.ResolutionHits < 1 || resp.Meta.ResolutionMisses < 1 {
		t.Errorf("resolution counters: hits=%d misses=%d", resp.Meta.ResolutionHits, resp.Meta.ResolutionMisses)
	}
}

func TestSuperAdminGate(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 3, "owner@acme.test", false)
	f.seedUser(t, 3, "root@vendix.test", true)

	memberToken := f.login(t, "owner@acme.test")
	rec := f.do(http.MethodGet, "/v1/organizations", memberToken, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("member: expected 403, got %d", rec.Code)
	}

	adminToken := f.login(t, "root@vendix.test")
	rec = f.do(http.MethodGet, "/v1/organizations", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Errorf("super admin: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTenantIsolationOverHTTP(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 3, "owner@acme.test", false)
	f.seedUser(t, 4, "owner@other.test", false)

	tokenA := f.login(t, "owner@acme.test")
	rec := f.do(http.MethodPost, "/v1/domains", tokenA,
		`{"hostname":"acme-org.vendix.com","domain_type":"organization","ownership":"vendix_subdomain"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}

	// The other tenant cannot see or delete the record.
	tokenB := f.login(t, "owner@other.test")
	rec = f.do(http.MethodGet, "/v1/domains/acme-org.vendix.com", tokenB, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-tenant get: expected 404, got %d", rec.Code)
	}
	rec = f.do(http.MethodGet, "/v1/domains", tokenB, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list struct {
		Data []domain.DomainRecord `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Data) != 0 {
		t.Errorf("cross-tenant list leaked %d records", len(list.Data))
	}
}

func TestEcommerceSettingsSetupState(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, 3, "owner@acme.test", false)
	token := f.login(t, "owner@acme.test")

	st, err := f.mem.CreateStore(context.Background(), 3, &domain.Store{
		Name: "Acme Store", Slug: "acme-store", Status: "active",
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}

	rec := f.do(http.MethodGet, "/v1/stores/1/ecommerce-settings", token, "")
	if st.ID != 1 {
		t.Fatalf("unexpected store id %d", st.ID)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Data          *domain.EcommerceSettings `json:"data"`
		SetupRequired bool                      `json:"setup_required"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data != nil || !resp.SetupRequired {
		t.Errorf("unconfigured storefront: %+v", resp)
	}
}
