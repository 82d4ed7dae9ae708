package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/sawpanic/leveledge/internal/models"
)

// HTTPConfig configures the bars API client.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// HTTPProvider fetches bars from the history API. Requests pass through
// a token-bucket rate limiter and a circuit breaker so a degraded
// upstream sheds load instead of stalling every scan.
type HTTPProvider struct {
	cfg     HTTPConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPProvider creates a rate-limited, breaker-protected bars client.
func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 4
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 8
	}

	settings := gobreaker.Settings{
		Name:    "history-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &HTTPProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Bars fetches up to maxBars bars for ticker at the given interval.
func (p *HTTPProvider) Bars(ctx context.Context, ticker, interval string, maxBars int) ([]models.Bar, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.fetch(ctx, ticker, interval, maxBars)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Bar), nil
}

func (p *HTTPProvider) fetch(ctx context.Context, ticker, interval string, maxBars int) ([]models.Bar, error) {
	endpoint := fmt.Sprintf("%s/v1/bars/%s", p.cfg.BaseURL, url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	q := req.URL.Query()
	q.Set("interval", interval)
	if maxBars > 0 {
		q.Set("limit", fmt.Sprintf("%d", maxBars))
	}
	req.URL.RawQuery = q.Encode()

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("history API returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Bars []models.Bar `json:"bars"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode bars response: %w", err)
	}

	log.Debug().
		Str("ticker", ticker).
		Str("interval", interval).
		Int("bars", len(payload.Bars)).
		Msg("Fetched history")

	return payload.Bars, nil
}
