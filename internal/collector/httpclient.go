package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// HTTPStatusError is returned for non-200 responses.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("status %d, body: %s", e.StatusCode, e.Body)
}

// HTTPClient wraps http.Client with rate limiting and retries.
type HTTPClient struct {
	Client         *http.Client
	Limiter        *rate.Limiter
	MaxElapsedTime time.Duration
}

// NewHTTPClient creates a client with optional proxy support, allowing
// requestsPerSec requests per second.
func NewHTTPClient(proxyURL string, requestsPerSec int) *HTTPClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if requestsPerSec <= 0 {
		requestsPerSec = 2
	}
	return &HTTPClient{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Limiter:        rate.NewLimiter(rate.Limit(requestsPerSec), requestsPerSec),
		MaxElapsedTime: 30 * time.Second,
	}
}

// Get performs a GET and returns the body of a 200 response. Server errors
// and transport failures are retried with exponential backoff; 4xx responses
// are not.
func (c *HTTPClient) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	var body []byte
	operation := func() error {
		if err := c.Limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		resp, err := c.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(data)}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}
		body = data
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.MaxElapsedTime
	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}
