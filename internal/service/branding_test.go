package service_test

import (
	"testing"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/service"
)

func TestLightenDarkenColor(t *testing.T) {
	cases := []struct {
		name    string
		fn      func(string, int) string
		hex     string
		percent int
		want    string
	}{
		{"lighten 20", service.LightenColor, "#6366F1", 20, "#9699FF"},
		{"darken 20", service.DarkenColor, "#6366F1", 20, "#3033BE"},
		{"lighten clamps at white", service.LightenColor, "#FFFFFF", 50, "#FFFFFF"},
		{"darken clamps at black", service.DarkenColor, "#000000", 50, "#000000"},
		{"lighten 0 is identity", service.LightenColor, "#1E293B", 0, "#1E293B"},
		{"short form expands", service.LightenColor, "#FFF", 10, "#FFFFFF"},
		{"invalid passthrough", service.LightenColor, "not-a-color", 20, "not-a-color"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.fn(tc.hex, tc.percent); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGenerateBranding_Defaults(t *testing.T) {
	cfg := service.GenerateBranding(domain.BrandingOptions{Name: "Acme"})

	if cfg.Name != "Acme" {
		t.Errorf("name = %q", cfg.Name)
	}
	if cfg.Theme != domain.ThemeLight {
		t.Errorf("theme = %q, want light", cfg.Theme)
	}
	if cfg.PrimaryColor != service.DefaultPrimaryColor {
		t.Errorf("primary = %q", cfg.PrimaryColor)
	}
	if cfg.SecondaryColor != service.DefaultSecondaryColor {
		t.Errorf("secondary = %q", cfg.SecondaryColor)
	}
	// Accent is the plain secondary, not a blend.
	if cfg.AccentColor != cfg.SecondaryColor {
		t.Errorf("accent = %q, want secondary %q", cfg.AccentColor, cfg.SecondaryColor)
	}
	if cfg.TextMutedColor != service.LightenColor(cfg.TextColor, 40) {
		t.Errorf("muted text = %q", cfg.TextMutedColor)
	}
}

func TestGenerateBranding_Normalization(t *testing.T) {
	cfg := service.GenerateBranding(domain.BrandingOptions{
		PrimaryColor:   "ff0000",
		SecondaryColor: "#00ff00",
	})
	if cfg.PrimaryColor != "#FF0000" {
		t.Errorf("primary = %q, want #FF0000", cfg.PrimaryColor)
	}
	if cfg.SecondaryColor != "#00FF00" {
		t.Errorf("secondary = %q, want #00FF00", cfg.SecondaryColor)
	}
}

func TestGenerateBranding_Deterministic(t *testing.T) {
	opts := domain.BrandingOptions{
		Name:           "Acme",
		PrimaryColor:   "#123456",
		SecondaryColor: "#654321",
	}
	a := service.GenerateBranding(opts)
	b := service.GenerateBranding(opts)
	if a != b {
		t.Errorf("same seeds produced different palettes:\n%+v\n%+v", a, b)
	}
}

func TestGenerateColorPalette(t *testing.T) {
	p := service.GenerateColorPalette("#6366F1", "#8B5CF6")

	if p.Primary != "#6366F1" || p.Secondary != "#8B5CF6" {
		t.Fatalf("seed colors mangled: %+v", p)
	}
	if p.PrimaryLight != "#9699FF" {
		t.Errorf("primary light = %q, want #9699FF", p.PrimaryLight)
	}
	if p.PrimaryDark != "#3033BE" {
		t.Errorf("primary dark = %q, want #3033BE", p.PrimaryDark)
	}
	if p.Accent != p.Secondary {
		t.Errorf("accent = %q, want secondary", p.Accent)
	}
	if p.Background != service.DefaultBackgroundColor || p.Text != service.DefaultTextColor {
		t.Errorf("platform constants missing: %+v", p)
	}
}

func TestIsValidHexColor(t *testing.T) {
	valid := []string{"#FFFFFF", "FFFFFF", "#abc", "abc", "#1E293B"}
	invalid := []string{"", "#FFFF", "red", "#GGGGGG", "#12345"}
	for _, s := range valid {
		if !service.IsValidHexColor(s) {
			t.Errorf("IsValidHexColor(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if service.IsValidHexColor(s) {
			t.Errorf("IsValidHexColor(%q) = true, want false", s)
		}
	}
}
