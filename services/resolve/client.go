package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"magnetview/models"
)

const (
	lookupPath       = "/api/v1/link"
	lookupUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	maxResponseBytes = 1 << 20
)

// defaultReferers is the pool a request's Referer is drawn from. A
// cosmetic anti-blocking measure, not a security control.
var defaultReferers = []string{
	"https://beta.magnet.pics/",
	"https://tmp.nulla.top/",
}

var (
	ErrInvalidMagnet   = errors.New("invalid magnet link")
	ErrEmptyEndpoint   = errors.New("empty lookup endpoint")
	ErrInvalidResponse = errors.New("lookup response failed validation")
	ErrAllEndpoints    = errors.New("all lookup endpoints failed")
)

// RetryPolicy bounds the transport retries of a single Resolve call.
// It applies only to connection errors and timeouts; application-level
// failures (non-200, validation) fail fast.
type RetryPolicy struct {
	MaxAttempts uint
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the lookup API's tolerance: three attempts
// with exponential backoff.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    5 * time.Second,
}

// Client issues metadata lookups against whatslink-style endpoints.
type Client struct {
	httpClient *http.Client
	referers   []string
	retry      RetryPolicy
}

// NewClient constructs a lookup client. A non-nil httpClient is shared
// with the caller and never closed here; nil falls back to an owned
// client with a 30-second budget per request.
func NewClient(httpClient *http.Client, policy RetryPolicy) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy
	}
	return &Client{
		httpClient: httpClient,
		referers:   defaultReferers,
		retry:      policy,
	}
}

func (c *Client) pickReferer() string {
	return c.referers[rand.Intn(len(c.referers))]
}

// Resolve looks up one magnet link against one endpoint. It returns the
// validated result, or an error when the endpoint could not produce one.
// Invalid input is rejected before any network traffic.
func (c *Client) Resolve(ctx context.Context, link, endpoint string) (*models.ResolutionResult, error) {
	if !ValidMagnet(link) {
		return nil, ErrInvalidMagnet
	}
	if strings.TrimSpace(endpoint) == "" {
		return nil, ErrEmptyEndpoint
	}

	lookupURL := strings.TrimSuffix(endpoint, "/") + lookupPath + "?url=" + url.QueryEscape(link)

	var result *models.ResolutionResult
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("User-Agent", lookupUserAgent)
			req.Header.Set("Referer", c.pickReferer())

			resp, err := c.httpClient.Do(req)
			if err != nil {
				// Connection failure or timeout: the retryable branch.
				return fmt.Errorf("lookup request: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("lookup status %d from %s", resp.StatusCode, endpoint))
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			if err != nil {
				return fmt.Errorf("lookup read: %w", err)
			}

			parsed, err := models.DecodeResult(body)
			if err != nil {
				log.Printf("[resolver] undecodable lookup payload from %s: %v", endpoint, err)
				return retry.Unrecoverable(ErrInvalidResponse)
			}

			// The {error, name} variant skips the structural gate: it is a
			// valid upstream answer, just a failed one.
			if parsed.IsUpstreamError() {
				result = parsed
				return nil
			}

			if !models.ValidResponse(body) {
				// Data-integrity event: log the offending payload, don't retry.
				log.Printf("[resolver] invalid lookup payload from %s: %s", endpoint, truncateForLog(body))
				return retry.Unrecoverable(ErrInvalidResponse)
			}
			result = parsed
			return nil
		},
		retry.Attempts(c.retry.MaxAttempts),
		retry.Delay(c.retry.BaseDelay),
		retry.MaxDelay(c.retry.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResolveWithFallback tries each endpoint in configured order and
// returns the first result. Endpoint order is significant; there is no
// health-based reordering. Each failed endpoint is logged before the
// chain advances.
func (c *Client) ResolveWithFallback(ctx context.Context, link string, endpoints []string) (*models.ResolutionResult, error) {
	if !ValidMagnet(link) {
		return nil, ErrInvalidMagnet
	}
	tried := 0
	for _, endpoint := range endpoints {
		if strings.TrimSpace(endpoint) == "" {
			continue
		}
		tried++
		result, err := c.Resolve(ctx, link, endpoint)
		if err != nil {
			log.Printf("[resolver] endpoint %s failed: %v", endpoint, err)
			continue
		}
		return result, nil
	}
	if tried == 0 {
		return nil, ErrEmptyEndpoint
	}
	return nil, ErrAllEndpoints
}

func truncateForLog(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
