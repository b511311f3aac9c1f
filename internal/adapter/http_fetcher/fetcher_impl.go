package http_fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/nflstats/predictor/internal/parser"
	"github.com/nflstats/predictor/internal/proxy"
	"github.com/nflstats/predictor/internal/repository"
	"github.com/nflstats/predictor/pkg/retry"
)

// HTTPFetcher loads pages with a plain HTTP client and selects elements from
// the returned markup. Tables the site hides in comments are included.
type HTTPFetcher struct {
	timeout time.Duration
	referer string
	proxies *proxy.Manager
	logger  *zap.Logger

	mu      sync.Mutex
	clients map[string]*resty.Client // keyed by proxy URL, "" = direct
}

// NewHTTPFetcher creates a fetcher backed by resty.
func NewHTTPFetcher(timeout time.Duration, referer string, pm *proxy.Manager, logger *zap.Logger) repository.PageFetcher {
	return &HTTPFetcher{
		timeout: timeout,
		referer: referer,
		proxies: pm,
		logger:  logger,
		clients: make(map[string]*resty.Client),
	}
}

func (f *HTTPFetcher) client(proxyURL string) *resty.Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.clients[proxyURL]; ok {
		return c
	}
	c := resty.New().
		SetTimeout(f.timeout).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	if f.referer != "" {
		c.SetHeader("Referer", f.referer)
	}
	if proxyURL != "" {
		c.SetProxy(proxyURL)
	}
	f.clients[proxyURL] = c
	return c
}

// Fetch downloads url and returns the inner HTML of selector. Client errors
// other than 429 are permanent; a page without the selector is permanent as
// well since reloading will not change it.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, selector string) (string, error) {
	resp, err := f.client(f.proxies.GetProxy()).R().
		SetContext(ctx).
		SetHeader("User-Agent", f.proxies.GetUserAgent()).
		Get(url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", ctxErr
		}
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %s: %v", repository.ErrFetchTimeout, url, err)
		}
		return "", fmt.Errorf("http fetch %s: %w", url, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return "", fmt.Errorf("http fetch %s: status %d", url, code)
	case code >= http.StatusBadRequest:
		return "", retry.Permanent(fmt.Errorf("http fetch %s: status %d", url, code))
	}

	inner, found, err := parser.SelectInnerHTML(resp.String(), selector)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", url, err)
	}
	if !found {
		return "", retry.Permanent(fmt.Errorf("%w: %s on %s", repository.ErrSelectorNotFound, selector, url))
	}

	f.logger.Debug("page fetched",
		zap.String("url", url),
		zap.String("selector", selector),
		zap.Duration("duration", resp.Time()),
		zap.Int("bytes", len(inner)),
	)
	return inner, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
