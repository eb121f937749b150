// Package marketdata is the boundary to the upstream quote/chain/history
// provider. The analytics core never touches it directly; fetched data is
// passed in as plain values.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/gexlens/internal/chain"
)

// Quote is the provider's current print for an instrument.
type Quote struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Chain is one expiration's option chain halves.
type Chain struct {
	Expiration time.Time           `json:"expiration"`
	Calls      []chain.RawContract `json:"calls"`
	Puts       []chain.RawContract `json:"puts"`
}

// Provider is the synchronous market-data source. Implementations do not
// retry semantics beyond their own transport policy and never cache on
// behalf of the analytics core.
type Provider interface {
	GetQuote(ctx context.Context, ticker string) (Quote, error)
	GetExpirations(ctx context.Context, ticker string) ([]time.Time, error)
	GetOptionChain(ctx context.Context, ticker string, expiration time.Time) (Chain, error)
	GetDailyCloses(ctx context.Context, ticker string, months int) ([]float64, error)
}

// HTTPProvider talks JSON to the upstream data API with rate limiting and
// bounded exponential-backoff retries.
type HTTPProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	retryCount int
	retryDelay time.Duration
	logger     *zap.Logger
}

func NewHTTPProvider(baseURL, apiKey string, ratePerSec int, timeout, retryDelay time.Duration, retryCount int, logger *zap.Logger) *HTTPProvider {
	transport := &http.Transport{
		MaxIdleConns:       100,
		MaxConnsPerHost:    10,
		IdleConnTimeout:    90 * time.Second,
		DisableCompression: false,
	}

	return &HTTPProvider{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec*2),
		retryCount: retryCount,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

func (p *HTTPProvider) GetQuote(ctx context.Context, ticker string) (Quote, error) {
	var q Quote
	err := p.getJSON(ctx, fmt.Sprintf("%s/v1/quote/%s", p.baseURL, ticker), &q)
	return q, err
}

func (p *HTTPProvider) GetExpirations(ctx context.Context, ticker string) ([]time.Time, error) {
	var resp struct {
		Expirations []time.Time `json:"expirations"`
	}
	if err := p.getJSON(ctx, fmt.Sprintf("%s/v1/expirations/%s", p.baseURL, ticker), &resp); err != nil {
		return nil, err
	}
	return resp.Expirations, nil
}

func (p *HTTPProvider) GetOptionChain(ctx context.Context, ticker string, expiration time.Time) (Chain, error) {
	var c Chain
	url := fmt.Sprintf("%s/v1/chain/%s/%s", p.baseURL, ticker, expiration.Format("2006-01-02"))
	err := p.getJSON(ctx, url, &c)
	return c, err
}

func (p *HTTPProvider) GetDailyCloses(ctx context.Context, ticker string, months int) ([]float64, error) {
	var resp struct {
		Closes []float64 `json:"closes"`
	}
	url := fmt.Sprintf("%s/v1/history/%s?months=%d", p.baseURL, ticker, months)
	if err := p.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return resp.Closes, nil
}

func (p *HTTPProvider) getJSON(ctx context.Context, url string, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	p.logger.Debug("requesting", zap.String("url", url))

	var lastErr error
	for attempt := 0; attempt <= p.retryCount; attempt++ {
		if attempt > 0 {
			delay := p.retryDelay * time.Duration(1<<(attempt-1)) // Exponential backoff
			p.logger.Debug("retrying request", zap.Int("attempt", attempt), zap.Duration("delay", delay))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+p.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if readErr != nil {
			lastErr = readErr
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return ErrAuthFailed
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = ErrRateLimited
			continue
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
