package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/tenantctx"
)

// ============================================================
// Ecommerce settings — GET/PUT /v1/stores/{id}/ecommerce-settings
// ============================================================

// GetEcommerceSettings returns the storefront document with asset keys
// resolved into signed URLs. Returns (nil, nil) when the storefront was
// never configured, which callers surface as a setup state distinct from
// "configured with defaults".
func (s *SettingsService) GetEcommerceSettings(ctx context.Context, storeID int64) (*domain.EcommerceSettings, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.GetEcommerceSettings")
	defer span.End()
	span.SetAttributes(attribute.Int64("store.id", storeID))

	doc, err := s.store.GetEcommerceSettings(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	s.signAssetURLs(ctx, doc)
	return doc, nil
}

// UpdateEcommerceSettings deep-merges the patch into the persisted
// storefront document, then runs the write-time pipeline: legacy color
// migration, asset URL sanitization, best-effort favicon regeneration and
// display name sync.
func (s *SettingsService) UpdateEcommerceSettings(ctx context.Context, storeID int64, patch *domain.EcommerceSettings) (*domain.EcommerceSettings, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.UpdateEcommerceSettings")
	defer span.End()
	span.SetAttributes(attribute.Int64("store.id", storeID))

	doc, err := s.store.GetEcommerceSettings(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = &domain.EcommerceSettings{}
	}

	prevLogoKey := ""
	if doc.Inicio != nil {
		prevLogoKey = doc.Inicio.LogoKey
	}

	mergeEcommerceSettings(doc, patch)
	migrateLegacyColors(doc)
	s.sanitizeAssetKeys(doc)

	if err := s.store.PutEcommerceSettings(ctx, storeID, doc); err != nil {
		return nil, fmt.Errorf("persist ecommerce settings: %w", err)
	}

	// Side effects run off the critical path: their failure never fails the
	// settings write.
	if doc.Inicio != nil {
		if doc.Inicio.LogoKey != "" && doc.Inicio.LogoKey != prevLogoKey {
			s.scheduleFaviconRefresh(ctx, storeID, doc.Inicio.LogoKey)
		}
		if doc.Inicio.Titulo != "" {
			s.syncDisplayName(ctx, storeID, doc.Inicio.Titulo)
		}
	}

	return doc, nil
}

// mergeEcommerceSettings merges field-by-field inside inicio, but replaces
// array-bearing sections (slider photos) and whole sections (branding,
// contact, social) when the patch supplies them.
func mergeEcommerceSettings(dst, patch *domain.EcommerceSettings) {
	if patch.Inicio != nil {
		if dst.Inicio == nil {
			dst.Inicio = &domain.EcommerceHome{}
		}
		if patch.Inicio.Titulo != "" {
			dst.Inicio.Titulo = patch.Inicio.Titulo
		}
		if patch.Inicio.Slogan != "" {
			dst.Inicio.Slogan = patch.Inicio.Slogan
		}
		if patch.Inicio.Descripcion != "" {
			dst.Inicio.Descripcion = patch.Inicio.Descripcion
		}
		if patch.Inicio.LogoKey != "" {
			dst.Inicio.LogoKey = patch.Inicio.LogoKey
		}
		if patch.Inicio.Colores != nil {
			dst.Inicio.Colores = patch.Inicio.Colores
		}
		// Slider photos are replaced wholesale, never merged element-wise.
		if patch.Inicio.Slider != nil {
			dst.Inicio.Slider = patch.Inicio.Slider
		}
	}
	if patch.Branding != nil {
		dst.Branding = patch.Branding
	}
	if patch.Contact != nil {
		dst.Contact = patch.Contact
	}
	if patch.Social != nil {
		dst.Social = patch.Social
	}
}

// migrateLegacyColors synthesizes a branding object from the legacy
// inicio.colores sub-object when no branding exists yet. One-way: once a
// branding object exists it is never overwritten from colores again.
func migrateLegacyColors(doc *domain.EcommerceSettings) {
	if doc.Branding != nil || doc.Inicio == nil || doc.Inicio.Colores == nil {
		return
	}
	c := doc.Inicio.Colores
	branding := GenerateBranding(domain.BrandingOptions{
		PrimaryColor:    c.Primario,
		SecondaryColor:  c.Secundario,
		BackgroundColor: c.Fondo,
		TextColor:       c.Texto,
	})
	doc.Branding = &branding
}

// sanitizeAssetKeys strips signed URLs back to durable storage keys before
// persisting. Only the key is durable; signed URLs expire.
func (s *SettingsService) sanitizeAssetKeys(doc *domain.EcommerceSettings) {
	if doc.Inicio != nil {
		doc.Inicio.LogoKey = s.assets.StripKey(doc.Inicio.LogoKey)
		if doc.Inicio.Slider != nil {
			for i, photo := range doc.Inicio.Slider.Photos {
				doc.Inicio.Slider.Photos[i] = s.assets.StripKey(photo)
			}
		}
	}
	if doc.Branding != nil {
		doc.Branding.LogoURL = s.assets.StripKey(doc.Branding.LogoURL)
		doc.Branding.FaviconURL = s.assets.StripKey(doc.Branding.FaviconURL)
	}
}

// signAssetURLs is the read-side inverse of sanitizeAssetKeys. A signing
// failure degrades to the bare key.
func (s *SettingsService) signAssetURLs(ctx context.Context, doc *domain.EcommerceSettings) {
	sign := func(key string) string {
		if key == "" {
			return key
		}
		url, err := s.assets.SignURL(ctx, key)
		if err != nil {
			s.logger.Warn("sign asset url", zap.String("key", key), zap.Error(err))
			return key
		}
		return url
	}

	if doc.Inicio != nil {
		doc.Inicio.LogoKey = sign(doc.Inicio.LogoKey)
		if doc.Inicio.Slider != nil {
			for i, photo := range doc.Inicio.Slider.Photos {
				doc.Inicio.Slider.Photos[i] = sign(photo)
			}
		}
	}
	if doc.Branding != nil {
		doc.Branding.LogoURL = sign(doc.Branding.LogoURL)
		doc.Branding.FaviconURL = sign(doc.Branding.FaviconURL)
	}
}

// scheduleFaviconRefresh regenerates the storefront favicon from the new
// logo in the background and persists the resulting key.
func (s *SettingsService) scheduleFaviconRefresh(ctx context.Context, storeID int64, logoKey string) {
	orgID := tenantctx.OrganizationID(ctx)
	s.tasks.Submit("favicon_generate", func(taskCtx context.Context) error {
		faviconKey, err := s.assets.GenerateFavicon(taskCtx, logoKey)
		if err != nil {
			return err
		}

		// The task outlives the request, so it goes through the unscoped
		// store with the captured organization id.
		doc, err := s.store.WithoutScope().GetEcommerceSettings(taskCtx, orgID, storeID)
		if err != nil || doc == nil {
			return err
		}
		if doc.Branding == nil {
			doc.Branding = &domain.BrandingConfig{}
		}
		doc.Branding.FaviconURL = faviconKey
		return s.store.WithoutScope().PutEcommerceSettings(taskCtx, orgID, storeID, doc)
	})
}

// syncDisplayName propagates the storefront title to the store and
// organization display names. Best-effort.
func (s *SettingsService) syncDisplayName(ctx context.Context, storeID int64, title string) {
	if err := s.store.UpdateStoreName(ctx, storeID, title); err != nil {
		s.logger.Warn("sync store name", zap.Int64("store_id", storeID), zap.Error(err))
	}
	orgID := tenantctx.OrganizationID(ctx)
	if orgID == 0 {
		return
	}
	if err := s.store.WithoutScope().UpdateOrganizationName(ctx, orgID, title); err != nil {
		s.logger.Warn("sync organization name", zap.Int64("organization_id", orgID), zap.Error(err))
	}
	s.cache.Delete(ctx, storeSettingsCacheKey(orgID, storeID))
}
