package chromedp_fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/nflstats/predictor/internal/proxy"
	"github.com/nflstats/predictor/internal/repository"
)

// ChromedpFetcher loads pages in headless Chrome. Every Fetch launches its
// own browser session and tears it down afterwards.
type ChromedpFetcher struct {
	timeout time.Duration
	referer string
	proxies *proxy.Manager
	logger  *zap.Logger
}

// NewChromedpFetcher creates a new fetcher implementation using chromedp.
func NewChromedpFetcher(pageLoadTimeout time.Duration, referer string, pm *proxy.Manager, logger *zap.Logger) repository.PageFetcher {
	return &ChromedpFetcher{
		timeout: pageLoadTimeout,
		referer: referer,
		proxies: pm,
		logger:  logger,
	}
}

func (c *ChromedpFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(c.proxies.GetUserAgent()),
	)
	if p := c.proxies.GetProxy(); p != "" {
		opts = append(opts, chromedp.ProxyServer(p))
	}
	return opts
}

// Fetch navigates to url and returns the inner HTML of selector. A selector
// that never appears surfaces as a timeout.
func (c *ChromedpFetcher) Fetch(ctx context.Context, url, selector string) (string, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer allocCancel()

	sugar := c.logger.Sugar()
	taskCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(sugar.Debugf), chromedp.WithErrorf(sugar.Debugf))
	defer cancel()

	taskCtx, cancel = context.WithTimeout(taskCtx, c.timeout)
	defer cancel()

	var html string
	actions := []chromedp.Action{network.Enable()}
	if c.referer != "" {
		actions = append(actions, network.SetExtraHTTPHeaders(network.Headers{"Referer": c.referer}))
	}
	actions = append(actions,
		chromedp.Navigate(url),
		chromedp.InnerHTML(selector, &html, chromedp.ByQuery, chromedp.NodeReady),
	)

	startTime := time.Now()
	err := chromedp.Run(taskCtx, actions...)
	elapsed := time.Since(startTime)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s after %s", repository.ErrFetchTimeout, url, elapsed.Round(time.Millisecond))
		}
		return "", fmt.Errorf("browser fetch %s: %w", url, err)
	}

	c.logger.Debug("page fetched",
		zap.String("url", url),
		zap.String("selector", selector),
		zap.Duration("duration", elapsed),
		zap.Int("bytes", len(html)),
	)
	return html, nil
}
