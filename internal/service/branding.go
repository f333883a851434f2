package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rzyfront/vendix-core/internal/domain"
)

// Platform default palette. New tenants start from these until they pick
// their own seed colors.
const (
	DefaultPrimaryColor    = "#6366F1"
	DefaultSecondaryColor  = "#8B5CF6"
	DefaultBackgroundColor = "#FFFFFF"
	DefaultSurfaceColor    = "#F8FAFC"
	DefaultTextColor       = "#1E293B"
	DefaultBorderColor     = "#E2E8F0"
)

var hexColorRe = regexp.MustCompile(`^#?([0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})$`)

// IsValidHexColor reports whether s is a 6-digit or 3-digit hex color, with
// or without the leading '#'.
func IsValidHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// NormalizeHexColor uppercases a hex color and ensures the leading '#'.
// Empty input falls back to the given default.
func NormalizeHexColor(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		s = fallback
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return strings.ToUpper(s)
}

// GenerateBranding derives a full branding palette from two seed colors plus
// explicit overrides. The accent is simply the secondary color: a perceptual
// blend was never implemented upstream and storefronts depend on the plain
// value, so keep it that way.
func GenerateBranding(opts domain.BrandingOptions) domain.BrandingConfig {
	primary := NormalizeHexColor(opts.PrimaryColor, DefaultPrimaryColor)
	secondary := NormalizeHexColor(opts.SecondaryColor, DefaultSecondaryColor)

	theme := opts.Theme
	if theme == "" {
		theme = domain.ThemeLight
	}

	background := NormalizeHexColor(opts.BackgroundColor, DefaultBackgroundColor)
	surface := NormalizeHexColor(opts.SurfaceColor, DefaultSurfaceColor)
	text := NormalizeHexColor(opts.TextColor, DefaultTextColor)
	border := NormalizeHexColor(opts.BorderColor, DefaultBorderColor)

	return domain.BrandingConfig{
		Name:               opts.Name,
		Theme:              theme,
		PrimaryColor:       primary,
		SecondaryColor:     secondary,
		BackgroundColor:    background,
		SurfaceColor:       surface,
		AccentColor:        secondary,
		BorderColor:        border,
		TextColor:          text,
		TextSecondaryColor: text,
		TextMutedColor:     LightenColor(text, 40),
		LogoURL:            opts.LogoURL,
		FaviconURL:         opts.FaviconURL,
	}
}

// GenerateColorPalette derives the fixed-shape palette used by provisioning:
// light/dark variants at 20 percent, platform constants for the rest.
func GenerateColorPalette(primary, secondary string) domain.ColorPalette {
	p := NormalizeHexColor(primary, DefaultPrimaryColor)
	s := NormalizeHexColor(secondary, DefaultSecondaryColor)
	return domain.ColorPalette{
		Primary:        p,
		Secondary:      s,
		PrimaryLight:   LightenColor(p, 20),
		PrimaryDark:    DarkenColor(p, 20),
		SecondaryLight: LightenColor(s, 20),
		SecondaryDark:  DarkenColor(s, 20),
		Accent:         s,
		Background:     DefaultBackgroundColor,
		Text:           DefaultTextColor,
		Border:         DefaultBorderColor,
	}
}

// LightenColor shifts every RGB channel up by round(2.55*percent), clamped
// to 255. This is a plain linear shift, not a perceptually uniform
// transform; storefront golden values depend on this exact arithmetic.
func LightenColor(hex string, percent int) string {
	r, g, b, ok := parseHexColor(hex)
	if !ok {
		return hex
	}
	amt := int(math.Round(2.55 * float64(percent)))
	return formatHexColor(clampChannel(r+amt), clampChannel(g+amt), clampChannel(b+amt))
}

// DarkenColor shifts every RGB channel down by round(2.55*percent), clamped
// to 0. Same arithmetic contract as LightenColor.
func DarkenColor(hex string, percent int) string {
	r, g, b, ok := parseHexColor(hex)
	if !ok {
		return hex
	}
	amt := int(math.Round(2.55 * float64(percent)))
	return formatHexColor(clampChannel(r-amt), clampChannel(g-amt), clampChannel(b-amt))
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func parseHexColor(hex string) (r, g, b int, ok bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), true
}

func formatHexColor(r, g, b int) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}
