package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"satlink/internal/config"
)

const userAgent = "satlink/1.0 (+https://github.com/satlink)"

// Client is the HTTP getter shared by the web sources.
type Client struct {
	httpClient *http.Client
	limiter    *RateLimiter
	maxAttempt int
	backoff    time.Duration
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.FetchRateLimitRPS),
		maxAttempt: 5,
		backoff:    250 * time.Millisecond,
	}
}

// Get returns the body of a 2xx response. Transport errors and 429 and 5xx
// answers are retried with exponential backoff and jitter.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempt; attempt++ {
		if err := c.limiter.WaitTurn(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if attempt < c.maxAttempt {
				if err := c.sleep(ctx, attempt); err != nil {
					return nil, err
				}
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			if attempt < c.maxAttempt {
				if err := c.sleep(ctx, attempt); err != nil {
					return nil, err
				}
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < c.maxAttempt {
				lastErr = fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
				if err := c.sleep(ctx, attempt); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("GET %s: status=%d body=%s", rawURL, resp.StatusCode, truncate(string(body), 200))
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("request failed")
	}
	return nil, lastErr
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	backoff := c.backoff*time.Duration(1<<(attempt-1)) + time.Duration(rand.Intn(100))*time.Millisecond
	t := time.NewTimer(backoff)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
