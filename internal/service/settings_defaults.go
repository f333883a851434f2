package service

import "github.com/rzyfront/vendix-core/internal/domain"

// defaultStoreSettings is the compiled baseline every store starts from.
// Persisted documents shallow-override whole sections of this.
func defaultStoreSettings() domain.StoreSettings {
	return domain.StoreSettings{
		General: domain.GeneralSettings{
			Currency: "USD",
			Language: "es",
		},
		Inventory: domain.InventorySettings{
			TrackStock:        true,
			LowStockThreshold: 5,
			AllowBackorders:   false,
		},
		Checkout: domain.CheckoutSettings{
			GuestCheckout:  true,
			RequirePhone:   false,
			TaxIncluded:    true,
			DefaultTaxRate: 0,
			MinOrderAmount: 0,
			PaymentTimeout: 30,
		},
		Shipping: domain.ShippingSettings{
			Enabled:           false,
			FlatRate:          0,
			FreeShippingAbove: 0,
		},
		Notifications: domain.NotificationSettings{
			OrderEmails:     true,
			LowStockAlerts:  true,
			DailySummary:    false,
			MarketingEmails: false,
		},
		POS: domain.POSSettings{
			Enabled:        false,
			CashDrawer:     false,
			BarcodeScanner: false,
		},
		Receipts: domain.ReceiptSettings{
			ShowLogo:   true,
			PaperWidth: 80,
			AutoPrint:  false,
			EmailCopy:  false,
		},
		App: domain.AppSettings{
			Theme: "default",
		},
	}
}
