package domain

// BrandingTheme selects the light or dark admin theme.
type BrandingTheme string

const (
	ThemeLight BrandingTheme = "light"
	ThemeDark  BrandingTheme = "dark"
)

// BrandingConfig is the derived visual palette for a tenant context. It is
// embedded in DomainRecord.Config and in settings documents, never stored as
// its own table.
type BrandingConfig struct {
	Name               string        `json:"name,omitempty"`
	Theme              BrandingTheme `json:"theme,omitempty"`
	PrimaryColor       string        `json:"primary_color"`
	SecondaryColor     string        `json:"secondary_color"`
	BackgroundColor    string        `json:"background_color"`
	SurfaceColor       string        `json:"surface_color"`
	AccentColor        string        `json:"accent_color"`
	BorderColor        string        `json:"border_color"`
	TextColor          string        `json:"text_color"`
	TextSecondaryColor string        `json:"text_secondary_color"`
	TextMutedColor     string        `json:"text_muted_color"`
	LogoURL            string        `json:"logo_url,omitempty"`
	FaviconURL         string        `json:"favicon_url,omitempty"`
}

// BrandingOptions seed the branding generator. Empty colors fall back to the
// platform defaults.
type BrandingOptions struct {
	Name            string
	Theme           BrandingTheme
	PrimaryColor    string
	SecondaryColor  string
	BackgroundColor string
	SurfaceColor    string
	TextColor       string
	BorderColor     string
	LogoURL         string
	FaviconURL      string
}

// ColorPalette is the fixed-shape palette derived from two seed colors.
type ColorPalette struct {
	Primary        string `json:"primary"`
	Secondary      string `json:"secondary"`
	PrimaryLight   string `json:"primary_light"`
	PrimaryDark    string `json:"primary_dark"`
	SecondaryLight string `json:"secondary_light"`
	SecondaryDark  string `json:"secondary_dark"`
	Accent         string `json:"accent"`
	Background     string `json:"background"`
	Text           string `json:"text"`
	Border         string `json:"border"`
}
