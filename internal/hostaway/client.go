// Package hostaway talks to the Hostaway reviews API and maps its loosely shaped
// payload into canonical review records.
package hostaway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"review-insights-go/internal/config"
	"review-insights-go/internal/logger"
	"review-insights-go/internal/types"
)

var (
	// ErrNotConfigured means the account id or api key is missing.
	ErrNotConfigured = errors.New("hostaway credentials not configured")
	// ErrUnexpectedStatus wraps non-2xx responses.
	ErrUnexpectedStatus = errors.New("hostaway API request failed")
)

// containerKeys are probed in order for the review array.
var containerKeys = []string{"result", "results", "data", "items"}

type Client struct {
	cfg    config.Hostaway
	http   *http.Client
	mapper *Mapper
	log    *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.mapper = NewMapper(now) }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l.Component("hostaway-client") }
}

func NewClient(cfg config.Hostaway, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		mapper: NewMapper(time.Now),
		log:    logger.New().Component("hostaway-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchReviews performs one upstream request (plus HOSTAWAY_MAX_RETRIES retries on
// transient failures) and maps the result. An empty batch with a nil error means
// the API answered but had nothing to return.
func (c *Client) FetchReviews(ctx context.Context, criteria types.Criteria) (types.UpstreamBatch, error) {
	if !c.cfg.Configured() {
		return types.UpstreamBatch{}, ErrNotConfigured
	}

	endpoint, err := c.requestURL(criteria)
	if err != nil {
		return types.UpstreamBatch{}, fmt.Errorf("build request url: %w", err)
	}
	log := c.log.WithField("endpoint", endpoint)

	var payload any
	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		c.setHeaders(req)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("hostaway request failed")
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			lastErr = fmt.Errorf("read body: %w", err)
			return lastErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
			log.WithField("http_status", resp.StatusCode).Warn("hostaway returned non-success status")
			if resp.StatusCode < 500 {
				return backoff.Permanent(lastErr)
			}
			return lastErr
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			lastErr = fmt.Errorf("decode hostaway payload: %w", err)
			return backoff.Permanent(lastErr)
		}
		lastErr = nil
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return types.UpstreamBatch{}, lastErr
	}

	items, ok := extractItems(payload)
	if !ok {
		log.Debug("hostaway payload carried no review array")
		return types.UpstreamBatch{Reviews: []types.RawReview{}}, nil
	}

	reviews, stats := c.mapper.MapAll(items)
	log.WithField("received", stats.Received).
		WithField("dropped", stats.Dropped).
		WithField("substituted_timestamps", stats.SubstitutedTimestamps).
		Debug("mapped hostaway reviews")
	return types.UpstreamBatch{Reviews: reviews, Stats: stats}, nil
}

func (c *Client) requestURL(criteria types.Criteria) (string, error) {
	endpoint := c.cfg.ReviewsEndpoint
	if !strings.HasPrefix(endpoint, "http") {
		base := strings.TrimRight(c.cfg.BaseURL, "/")
		if !strings.HasPrefix(endpoint, "/") {
			endpoint = "/" + endpoint
		}
		endpoint = base + endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("accountId", c.cfg.AccountID)
	if criteria.StartDate != "" {
		q.Set("startDate", criteria.StartDate)
	}
	if criteria.EndDate != "" {
		q.Set("endDate", criteria.EndDate)
	}
	if criteria.ListingID != "" {
		q.Set("listingId", criteria.ListingID)
	}
	if criteria.Channel != "" {
		q.Set("channel", criteria.Channel)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("X-Hostaway-API-Key", c.cfg.APIKey)
	req.Header.Set("X-Hostaway-Account-Id", c.cfg.AccountID)
	req.Header.Set("Accept", "application/json")
}

// extractItems finds the review array in a payload: either the payload itself or
// the first array-valued container key.
func extractItems(payload any) ([]any, bool) {
	switch p := payload.(type) {
	case []any:
		return p, true
	case map[string]any:
		for _, k := range containerKeys {
			if arr, ok := p[k].([]any); ok {
				return arr, true
			}
		}
	}
	return nil, false
}
