package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kataras/markup-extractor/pkg/dom"
	"golang.org/x/time/rate"
)

// UserAgent is sent with every request.
const UserAgent = "markup-extractor/1.0 (+https://github.com/kataras/markup-extractor)"

// maxBodySize caps page and stylesheet downloads.
const maxBodySize = 16 << 20

// Client downloads pages and their stylesheets. It retries rate-limited and
// failing requests.
type Client struct {
	httpClient *http.Client
	// MaxRetries is the number of attempts per request.
	MaxRetries int
	// Backoff is multiplied by the attempt number between attempts.
	Backoff time.Duration
	// HostRate and HostBurst pace requests per host. A zero HostRate
	// disables pacing.
	HostRate  rate.Limit
	HostBurst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient creates a client with pooled connections and a one minute
// timeout.
func NewClient() *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return NewClientWith(&http.Client{Timeout: time.Minute, Transport: transport})
}

// NewClientWith wraps an existing http.Client.
func NewClientWith(hc *http.Client) *Client {
	return &Client{
		httpClient: hc,
		MaxRetries: 3,
		Backoff:    2 * time.Second,
		HostRate:   8,
		HostBurst:  4,
	}
}

// limiter returns the pacing limiter of host, creating it on first use.
func (c *Client) limiter(host string) *rate.Limiter {
	if c.HostRate <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.limiters == nil {
		c.limiters = make(map[string]*rate.Limiter)
	}
	l, ok := c.limiters[host]
	if !ok {
		burst := c.HostBurst
		if burst < 1 {
			burst = 1
		}
		l = rate.NewLimiter(c.HostRate, burst)
		c.limiters[host] = l
	}
	return l
}

// Get returns the body of url as text. Status 429 and 5xx responses and
// transport errors are retried up to MaxRetries attempts.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	body, err := c.GetBytes(ctx, url)
	return string(body), err
}

// GetBytes is Get returning the raw body.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	maxRetries := c.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, retry, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt, err)
		if !retry || attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * c.Backoff):
		}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, url string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	if l := c.limiter(req.URL.Host); l != nil {
		if err := l.Wait(ctx); err != nil {
			return nil, false, fmt.Errorf("wait for %s: %w", req.URL.Host, err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err != nil {
		return nil, true, fmt.Errorf("read response body: %w", err)
	}
	return data, false, nil
}

// StyleSheetLoader returns a loader that downloads linked stylesheets with
// ctx.
func (c *Client) StyleSheetLoader(ctx context.Context) dom.StyleSheetLoader {
	return func(href string) (string, error) {
		return c.Get(ctx, href)
	}
}

// Document downloads the page at url and parses it. Same-origin linked
// stylesheets are downloaded on demand.
func (c *Client) Document(ctx context.Context, url string) (*dom.HTMLDocument, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	return dom.ParseString(body, dom.ParseOptions{URL: url, Loader: c.StyleSheetLoader(ctx)})
}
