package service_test

import (
	"strings"
	"testing"

	"github.com/rzyfront/vendix-core/internal/service"
)

func TestCleanSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Mi Tienda", "mi-tienda"},
		{"Café São Paulo", "cafe-sao-paulo"},
		{"  Hello   World  ", "hello-world"},
		{"UPPER-case", "upper-case"},
		{"a--b---c", "a-b-c"},
		{"-leading-and-trailing-", "leading-and-trailing"},
		{"emoji 🚀 store", "emoji-store"},
		{"ñandú & co.", "nandu-co"},
		{"", ""},
		{"---", ""},
	}
	for _, tc := range cases {
		if got := service.CleanSlug(tc.in); got != tc.want {
			t.Errorf("CleanSlug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanSlug_Idempotent(t *testing.T) {
	inputs := []string{"Café São Paulo", "Mi  Tienda", "a--b", "Ñandú 42", "plain"}
	for _, in := range inputs {
		once := service.CleanSlug(in)
		twice := service.CleanSlug(once)
		if once != twice {
			t.Errorf("CleanSlug not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestGenerate(t *testing.T) {
	g := service.NewDomainGenerator("vendix.com")

	if got := g.Generate("Mi Tienda", service.ContextStore); got != "mi-tienda-store.vendix.com" {
		t.Errorf("Generate store = %q", got)
	}
	if got := g.Generate("acme", service.ContextOrganization); got != "acme-org.vendix.com" {
		t.Errorf("Generate organization = %q", got)
	}
	if got := g.Generate("acme", service.ContextEcommerce); got != "acme-shop.vendix.com" {
		t.Errorf("Generate ecommerce = %q", got)
	}
}

func TestGenerateUnique(t *testing.T) {
	g := service.NewDomainGenerator("vendix.com")

	// No collision: the clean base form comes back untouched.
	got := g.GenerateUnique("acme", service.ContextStore, map[string]bool{})
	if got != "acme-store.vendix.com" {
		t.Errorf("expected base form, got %q", got)
	}

	// Collision: a 4-char suffix is spliced in before the context token.
	existing := map[string]bool{"acme-store.vendix.com": true}
	got = g.GenerateUnique("acme", service.ContextStore, existing)
	if got == "acme-store.vendix.com" {
		t.Fatal("expected suffixed hostname on collision")
	}
	if !strings.HasPrefix(got, "acme-") || !strings.HasSuffix(got, "-store.vendix.com") {
		t.Errorf("suffixed form has wrong shape: %q", got)
	}
	suffix := strings.TrimSuffix(strings.TrimPrefix(got, "acme-"), "-store.vendix.com")
	if len(suffix) != 4 {
		t.Errorf("expected 4-char suffix, got %q", suffix)
	}
}

func TestGenerateAttempts(t *testing.T) {
	g := service.NewDomainGenerator("vendix.com")

	attempts := g.GenerateAttempts("acme", service.ContextEcommerce, 5)
	if len(attempts) != 5 {
		t.Fatalf("expected 5 attempts, got %d", len(attempts))
	}
	if attempts[0] != "acme-shop.vendix.com" {
		t.Errorf("first attempt should be the clean form, got %q", attempts[0])
	}
	for _, a := range attempts[1:] {
		if a == attempts[0] {
			t.Errorf("suffixed attempt equals base form: %q", a)
		}
		if !strings.HasSuffix(a, "-shop.vendix.com") {
			t.Errorf("attempt %q lost the context suffix", a)
		}
	}
}

func TestParseHostname_RoundTrip(t *testing.T) {
	g := service.NewDomainGenerator("vendix.com")

	for _, dc := range []service.DomainContext{
		service.ContextOrganization,
		service.ContextStore,
		service.ContextEcommerce,
	} {
		hostname := g.Generate("mi-tienda", dc)
		parsed := g.ParseHostname(hostname)
		if parsed == nil {
			t.Fatalf("ParseHostname(%q) = nil", hostname)
		}
		if parsed.Slug != "mi-tienda" {
			t.Errorf("slug = %q, want mi-tienda", parsed.Slug)
		}
		if parsed.Context != dc {
			t.Errorf("context = %q, want %q", parsed.Context, dc)
		}
		if g.ExtractContext(hostname) != dc {
			t.Errorf("ExtractContext(%q) != %q", hostname, dc)
		}
	}
}

func TestParseHostname_Foreign(t *testing.T) {
	g := service.NewDomainGenerator("vendix.com")

	for _, hostname := range []string{
		"example.com",
		"acme-store.other.com",
		"noseparator.vendix.com",
		"acme-unknown.vendix.com",
	} {
		if parsed := g.ParseHostname(hostname); parsed != nil {
			t.Errorf("ParseHostname(%q) = %+v, want nil", hostname, parsed)
		}
	}
}
