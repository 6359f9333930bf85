// Package catalog looks up artists and albums in the Spotify Web API so new
// inventory items can be pre-filled.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	v "github.com/Gobd/vinylstock/apivalidation"
	"github.com/Gobd/vinylstock/internal/config"
	"github.com/Gobd/vinylstock/internal/logging"
	"github.com/Gobd/vinylstock/internal/metrics"
)

var (
	ErrNotConfigured = errors.New("catalog is not configured")
	ErrNotFound      = errors.New("not found in catalog")
	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("catalog temporarily unavailable")
	// ErrUpstream wraps failed calls to the catalog service.
	ErrUpstream = errors.New("catalog request failed")
)

// tokenLeeway is how long before expiry a token is considered stale.
const tokenLeeway = 60 * time.Second

const breakerName = "spotify"

// Client is safe for concurrent use. The access token is fetched lazily
// and shared by all callers until it is within tokenLeeway of expiring.
type Client struct {
	baseURL string
	market  string
	http    *http.Client
	creds   clientcredentials.Config
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
	log     zerolog.Logger
	now     func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// New returns a client for cfg, or ErrNotConfigured when no credentials
// are set.
func New(cfg config.CatalogConfig) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrNotConfigured
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := max(cfg.Burst, 1)

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		market:  cfg.Market,
		http:    &http.Client{Timeout: cfg.Timeout},
		creds: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		limiter: rate.NewLimiter(limit, burst),
		log:     logging.With("catalog"),
		now:     time.Now,
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return c, nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

// accessToken returns the cached token, requesting a new one when it is
// missing or about to expire.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Add(tokenLeeway).Before(c.expiry) {
		return c.token, nil
	}

	tok, err := c.creds.Token(context.WithValue(ctx, oauth2.HTTPClient, c.http))
	metrics.RecordTokenRefresh(err == nil)
	if err != nil {
		return "", fmt.Errorf("%w: token: %w", ErrUpstream, err)
	}

	c.token = tok.AccessToken
	c.expiry = tok.Expiry
	if c.expiry.IsZero() {
		c.expiry = c.now().Add(time.Hour)
	}
	c.log.Debug().Time("expiry", c.expiry).Msg("catalog token refreshed")
	return c.token, nil
}

// get performs an authenticated GET and decodes the JSON response into dst.
func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.fetch(ctx, path, query)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		return ErrUnavailable
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()

	if err := v.DecodeAndValidateCtx(ctx, bytes.NewReader(body), dst); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrUpstream, path, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUpstream, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized:
		c.invalidateToken()
		return nil, fmt.Errorf("%w: %s: unauthorized", ErrUpstream, path)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: %s: status %d", ErrUpstream, path, resp.StatusCode)
	}
	return body, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
