package domain

// Tenant settings are open, versionless key-grouped documents. The merged
// read view layers compiled defaults, the persisted document, live store row
// fields and domain branding. Merge is shallow per top-level section.

// GeneralSettings covers store identity fields. Name, LogoURL, StoreType and
// Timezone are always taken from the live store row on read.
type GeneralSettings struct {
	Name      string `json:"name"`
	LogoURL   string `json:"logo_url,omitempty"`
	StoreType string `json:"store_type,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	Currency  string `json:"currency,omitempty"`
	Language  string `json:"language,omitempty"`
}

// InventorySettings controls stock tracking behavior.
type InventorySettings struct {
	TrackStock        bool `json:"track_stock"`
	LowStockThreshold int  `json:"low_stock_threshold"`
	AllowBackorders   bool `json:"allow_backorders"`
}

// CheckoutSettings controls the checkout flow.
type CheckoutSettings struct {
	GuestCheckout  bool    `json:"guest_checkout"`
	RequirePhone   bool    `json:"require_phone"`
	TaxIncluded    bool    `json:"tax_included"`
	DefaultTaxRate float64 `json:"default_tax_rate"`
	MinOrderAmount float64 `json:"min_order_amount"`
	PaymentTimeout int     `json:"payment_timeout_minutes"`
}

// ShippingSettings controls shipping options.
type ShippingSettings struct {
	Enabled           bool    `json:"enabled"`
	FlatRate          float64 `json:"flat_rate"`
	FreeShippingAbove float64 `json:"free_shipping_above"`
	OriginPostalCode  string  `json:"origin_postal_code,omitempty"`
}

// NotificationSettings controls operational notifications.
type NotificationSettings struct {
	OrderEmails     bool `json:"order_emails"`
	LowStockAlerts  bool `json:"low_stock_alerts"`
	DailySummary    bool `json:"daily_summary"`
	MarketingEmails bool `json:"marketing_emails"`
}

// POSSettings controls point-of-sale behavior.
type POSSettings struct {
	Enabled        bool   `json:"enabled"`
	CashDrawer     bool   `json:"cash_drawer"`
	BarcodeScanner bool   `json:"barcode_scanner"`
	DefaultPrinter string `json:"default_printer,omitempty"`
}

// ReceiptSettings controls printed/emailed receipts.
type ReceiptSettings struct {
	HeaderText string `json:"header_text,omitempty"`
	FooterText string `json:"footer_text,omitempty"`
	ShowLogo   bool   `json:"show_logo"`
	PaperWidth int    `json:"paper_width_mm"`
	AutoPrint  bool   `json:"auto_print"`
	EmailCopy  bool   `json:"email_copy"`
}

// AppSettings is the legacy app section of the merged view. Branding pulled
// from the store's domain record is remapped into this shape on read; the
// legacy theme value for light is "default".
type AppSettings struct {
	Theme              string `json:"theme"`
	PrimaryColor       string `json:"primary_color,omitempty"`
	SecondaryColor     string `json:"secondary_color,omitempty"`
	BackgroundColor    string `json:"background_color,omitempty"`
	SurfaceColor       string `json:"surface_color,omitempty"`
	AccentColor        string `json:"accent_color,omitempty"`
	BorderColor        string `json:"border_color,omitempty"`
	TextColor          string `json:"text_color,omitempty"`
	TextSecondaryColor string `json:"text_secondary_color,omitempty"`
	TextMutedColor     string `json:"text_muted_color,omitempty"`
	LogoURL            string `json:"logo_url,omitempty"`
	FaviconURL         string `json:"favicon_url,omitempty"`
}

// StoreSettings is the fully merged read view returned to clients.
type StoreSettings struct {
	General       GeneralSettings      `json:"general"`
	Inventory     InventorySettings    `json:"inventory"`
	Checkout      CheckoutSettings     `json:"checkout"`
	Shipping      ShippingSettings     `json:"shipping"`
	Notifications NotificationSettings `json:"notifications"`
	POS           POSSettings          `json:"pos"`
	Receipts      ReceiptSettings      `json:"receipts"`
	App           AppSettings          `json:"app"`
}

// StoreSettingsDoc is the persisted store settings document. Nil sections
// fall back to compiled defaults; a non-nil section overrides its default
// wholesale (shallow merge).
type StoreSettingsDoc struct {
	General       *GeneralSettings      `json:"general,omitempty"`
	Inventory     *InventorySettings    `json:"inventory,omitempty"`
	Checkout      *CheckoutSettings     `json:"checkout,omitempty"`
	Shipping      *ShippingSettings     `json:"shipping,omitempty"`
	Notifications *NotificationSettings `json:"notifications,omitempty"`
	POS           *POSSettings          `json:"pos,omitempty"`
	Receipts      *ReceiptSettings      `json:"receipts,omitempty"`
}

// EcommerceSlider holds storefront slider photos. On update the photo list is
// replaced wholesale, never merged element-wise.
type EcommerceSlider struct {
	Photos   []string `json:"photos"`
	Interval int      `json:"interval_seconds,omitempty"`
}

// LegacyColors is the pre-branding color sub-object some stores still carry
// under inicio.colores. It is migrated one-way into Branding.
type LegacyColors struct {
	Primario   string `json:"primario,omitempty"`
	Secundario string `json:"secundario,omitempty"`
	Fondo      string `json:"fondo,omitempty"`
	Texto      string `json:"texto,omitempty"`
}

// EcommerceHome is the storefront landing configuration. Field names keep the
// legacy document shape consumed by existing storefronts.
type EcommerceHome struct {
	Titulo      string           `json:"titulo,omitempty"`
	Slogan      string           `json:"slogan,omitempty"`
	Descripcion string           `json:"descripcion,omitempty"`
	LogoKey     string           `json:"logo,omitempty"`
	Colores     *LegacyColors    `json:"colores,omitempty"`
	Slider      *EcommerceSlider `json:"slider,omitempty"`
}

// EcommerceSettings is the storefront settings document. Branding here is
// independent from store/organization branding once both exist.
type EcommerceSettings struct {
	Inicio   *EcommerceHome  `json:"inicio,omitempty"`
	Branding *BrandingConfig `json:"branding,omitempty"`
	Contact  map[string]any  `json:"contacto,omitempty"`
	Social   map[string]any  `json:"redes,omitempty"`
}

// OrganizationSettingsDoc is the organization-level settings document.
type OrganizationSettingsDoc struct {
	General       *GeneralSettings      `json:"general,omitempty"`
	Notifications *NotificationSettings `json:"notifications,omitempty"`
	Branding      *BrandingConfig       `json:"branding,omitempty"`
}
