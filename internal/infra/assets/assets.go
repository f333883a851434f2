// Package assets is the HTTP client for the asset storage service. It signs
// asset keys into temporary URLs and strips signed URLs back to durable keys.
package assets

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/infra/resilience"
)

// Client talks to the asset service over HTTP with a circuit breaker in
// front. All methods return ErrExternalService on transport or upstream
// failures so callers can degrade instead of breaking.
type Client struct {
	http      *resty.Client
	breaker   *gobreaker.CircuitBreaker
	signedTTL time.Duration
	logger    *zap.Logger
}

// NewClient creates an asset service client.
func NewClient(baseURL, token string, signedTTL time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:      httpClient,
		breaker:   resilience.NewCircuitBreaker("assets"),
		signedTTL: signedTTL,
		logger:    logger,
	}
}

type signRequest struct {
	Key        string `json:"key"`
	TTLSeconds int    `json:"ttl_seconds"`
}

type signResponse struct {
	URL string `json:"url"`
}

type faviconRequest struct {
	LogoKey string `json:"logo_key"`
}

type faviconResponse struct {
	FaviconKey string `json:"favicon_key"`
}

// SignURL exchanges a durable asset key for a temporary signed URL.
func (c *Client) SignURL(ctx context.Context, key string) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var out signResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(signRequest{Key: key, TTLSeconds: int(c.signedTTL.Seconds())}).
			SetResult(&out).
			Post("/v1/assets/sign")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("asset service returned %d", resp.StatusCode())
		}
		return out.URL, nil
	})
	if err != nil {
		c.logger.Warn("sign url failed", zap.String("key", key), zap.Error(err))
		return "", &domain.ErrExternalService{Service: "assets", Err: err}
	}
	return result.(string), nil
}

// GenerateFavicon asks the asset service to derive a favicon from a logo
// and returns the favicon's durable key.
func (c *Client) GenerateFavicon(ctx context.Context, logoKey string) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var out faviconResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(faviconRequest{LogoKey: logoKey}).
			SetResult(&out).
			Post("/v1/assets/favicon")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("asset service returned %d", resp.StatusCode())
		}
		return out.FaviconKey, nil
	})
	if err != nil {
		c.logger.Warn("favicon generation failed", zap.String("logo_key", logoKey), zap.Error(err))
		return "", &domain.ErrExternalService{Service: "assets", Err: err}
	}
	return result.(string), nil
}

// StripKey reduces a signed asset URL to its durable key. Bare keys and
// unparseable values pass through unchanged, so it is safe to call on any
// stored asset reference.
func (c *Client) StripKey(rawURL string) string {
	if rawURL == "" || !strings.Contains(rawURL, "://") {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	key := strings.TrimPrefix(u.Path, "/")
	key = strings.TrimPrefix(key, "assets/")
	if key == "" {
		return rawURL
	}
	return key
}
