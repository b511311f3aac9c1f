package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nflstats/predictor/internal/parser"
	"github.com/nflstats/predictor/internal/repository"
	"github.com/nflstats/predictor/pkg/metrics"
	"github.com/nflstats/predictor/pkg/retry"
	"github.com/nflstats/predictor/pkg/utils"
)

// CollectSummary counts what a collection run did.
type CollectSummary struct {
	ListingsFetched int
	ListingsCached  int
	ListingsFailed  int
	LinksFound      int
	Saved           int
	Skipped         int
	Failed          int
}

// Collector downloads raw box-score documents.
type Collector interface {
	Collect(ctx context.Context) (CollectSummary, error)
}

// CollectorConfig holds the collector's settings.
type CollectorConfig struct {
	BaseURL      string
	Seasons      []int
	Teams        []string
	Retry        retry.Policy
	LinkCacheTTL time.Duration
	// Now defaults to time.Now. Listings of seasons that have not finished
	// are never cached because they grow every week.
	Now func() time.Time
}

type collectorUseCase struct {
	fetcher repository.PageFetcher
	docs    repository.DocumentRepository
	links   repository.LinkCache // optional
	cfg     CollectorConfig
	logger  *zap.Logger
}

// NewCollectorUseCase creates a new instance of the collector use case.
// links may be nil.
func NewCollectorUseCase(
	fetcher repository.PageFetcher,
	docs repository.DocumentRepository,
	links repository.LinkCache,
	cfg CollectorConfig,
	logger *zap.Logger,
) Collector {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &collectorUseCase{
		fetcher: fetcher,
		docs:    docs,
		links:   links,
		cfg:     cfg,
		logger:  logger,
	}
}

// Collect walks every season and team listing, then fetches each box score
// not already stored. Individual failures are logged and skipped.
func (uc *collectorUseCase) Collect(ctx context.Context) (CollectSummary, error) {
	var sum CollectSummary

	base, err := url.Parse(uc.cfg.BaseURL)
	if err != nil {
		return sum, fmt.Errorf("invalid base url %q: %w", uc.cfg.BaseURL, err)
	}

	seen := make(map[string]bool)
	var boxScores []string
	for _, season := range uc.cfg.Seasons {
		for _, team := range uc.cfg.Teams {
			hrefs, err := uc.listing(ctx, team, season, &sum)
			if err != nil {
				if ctx.Err() != nil {
					return sum, ctx.Err()
				}
				continue
			}
			for _, href := range hrefs {
				abs, err := utils.ToAbsoluteURL(base, href)
				if err != nil {
					uc.logger.Warn("skipping malformed link", zap.String("href", href), zap.Error(err))
					continue
				}
				if !seen[abs] {
					seen[abs] = true
					boxScores = append(boxScores, abs)
				}
			}
		}
	}
	sum.LinksFound = len(boxScores)
	uc.logger.Info("box score links discovered", zap.Int("links", sum.LinksFound))

	for _, link := range boxScores {
		if err := uc.boxScore(ctx, link, &sum); err != nil {
			return sum, err
		}
	}

	uc.logger.Info("collection finished",
		zap.Int("listings_fetched", sum.ListingsFetched),
		zap.Int("listings_cached", sum.ListingsCached),
		zap.Int("listings_failed", sum.ListingsFailed),
		zap.Int("saved", sum.Saved),
		zap.Int("skipped", sum.Skipped),
		zap.Int("failed", sum.Failed),
	)
	return sum, nil
}

func (uc *collectorUseCase) listing(ctx context.Context, team string, season int, sum *CollectSummary) ([]string, error) {
	log := uc.logger.With(zap.String("team", team), zap.Int("season", season))

	if uc.links != nil {
		hrefs, ok, err := uc.links.Get(ctx, team, season)
		switch {
		case err != nil:
			log.Warn("link cache lookup failed", zap.Error(err))
		case ok:
			sum.ListingsCached++
			metrics.FetchesTotal.WithLabelValues("listing", "cached").Inc()
			return hrefs, nil
		}
	}

	listingURL := fmt.Sprintf("%s/teams/%s/%d/gamelog/", uc.cfg.BaseURL, team, season)
	page, err := uc.fetch(ctx, "listing", listingURL, parser.ListingSelector)
	if err != nil {
		sum.ListingsFailed++
		log.Error("game log unavailable", zap.String("url", listingURL), zap.Error(err))
		return nil, err
	}
	hrefs, err := parser.GameLogLinks(page, season)
	if err != nil {
		sum.ListingsFailed++
		log.Error("game log unreadable", zap.String("url", listingURL), zap.Error(err))
		return nil, err
	}
	sum.ListingsFetched++

	switch {
	case uc.links == nil:
	case len(hrefs) == 0:
		log.Warn("game log has no links, not caching", zap.String("url", listingURL))
	case !uc.seasonFinished(season):
		log.Debug("season in progress, not caching links")
	default:
		if err := uc.links.Put(ctx, team, season, hrefs, uc.cfg.LinkCacheTTL); err != nil {
			log.Warn("link cache store failed", zap.Error(err))
		}
	}
	return hrefs, nil
}

// seasonFinished reports whether the season's playoffs are over, which
// happens by the March after it started.
func (uc *collectorUseCase) seasonFinished(season int) bool {
	return !uc.cfg.Now().Before(time.Date(season+1, time.March, 1, 0, 0, 0, 0, time.UTC))
}

// boxScore stores one detail page. Only context cancellation is returned.
func (uc *collectorUseCase) boxScore(ctx context.Context, link string, sum *CollectSummary) error {
	name, err := utils.FilenameFromURL(link)
	if err != nil {
		sum.Failed++
		uc.logger.Warn("cannot name document", zap.String("url", link), zap.Error(err))
		return nil
	}

	exists, err := uc.docs.Exists(ctx, name)
	if err != nil {
		sum.Failed++
		uc.logger.Error("document lookup failed", zap.String("name", name), zap.Error(err))
		return nil
	}
	if exists {
		sum.Skipped++
		metrics.FetchesTotal.WithLabelValues("boxscore", "skipped").Inc()
		uc.logger.Debug("document already stored", zap.String("name", name))
		return nil
	}

	content, err := uc.fetch(ctx, "boxscore", link, parser.BoxScoreSelector)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		sum.Failed++
		uc.logger.Error("box score not saved", zap.String("url", link), zap.Error(err))
		return nil
	}

	if err := uc.docs.Save(ctx, name, content); err != nil {
		sum.Failed++
		uc.logger.Error("document write failed", zap.String("name", name), zap.Error(err))
		return nil
	}
	sum.Saved++
	uc.logger.Info("box score saved", zap.String("name", name))
	return nil
}

func (uc *collectorUseCase) fetch(ctx context.Context, kind, target, selector string) (string, error) {
	policy := uc.cfg.Retry
	policy.OnRetry = func(attempt int, err error) {
		metrics.FetchRetriesTotal.Inc()
		level := zap.WarnLevel
		if errors.Is(err, repository.ErrFetchTimeout) {
			level = zap.InfoLevel
		}
		uc.logger.Log(level, "fetch attempt failed, retrying",
			zap.String("url", target),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	start := time.Now()
	content, err := retry.Do(ctx, policy, func(ctx context.Context) (string, error) {
		return uc.fetcher.Fetch(ctx, target, selector)
	})
	metrics.FetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.FetchesTotal.WithLabelValues(kind, status).Inc()
	return content, err
}
