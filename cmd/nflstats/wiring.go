package main

import (
	"context"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/nflstats/predictor/internal/adapter/chromedp_fetcher"
	"github.com/nflstats/predictor/internal/adapter/filesystem"
	"github.com/nflstats/predictor/internal/adapter/http_fetcher"
	"github.com/nflstats/predictor/internal/adapter/postgres"
	redis_adapter "github.com/nflstats/predictor/internal/adapter/redis"
	"github.com/nflstats/predictor/internal/adapter/sqlite"
	"github.com/nflstats/predictor/internal/proxy"
	"github.com/nflstats/predictor/internal/repository"
	"github.com/nflstats/predictor/pkg/config"
)

func (a *app) fetcher() repository.PageFetcher {
	pm := proxy.NewManager(a.cfg.Proxies, a.cfg.UserAgents)
	referer := strings.TrimRight(a.cfg.BaseURL, "/") + "/"
	if a.cfg.FetchMode == "http" {
		return http_fetcher.NewHTTPFetcher(a.cfg.PageLoadTimeout(), referer, pm, a.logger)
	}
	return chromedp_fetcher.NewChromedpFetcher(a.cfg.PageLoadTimeout(), referer, pm, a.logger)
}

func (a *app) documents() (repository.DocumentRepository, error) {
	return filesystem.NewDocumentRepo(afero.NewOsFs(), a.cfg.ScoresDir)
}

func (a *app) gameTable() repository.GameTableRepository {
	return filesystem.NewGameTable(afero.NewOsFs(), a.cfg.GamesCSV)
}

// predictions opens the store named by DATABASE_URL and makes sure the
// schema exists.
func (a *app) predictions(ctx context.Context) (repository.PredictionRepository, error) {
	var (
		repo repository.PredictionRepository
		err  error
	)
	if strings.HasPrefix(a.cfg.DatabaseURL, sqlite.DSNPrefix) {
		repo, err = sqlite.Open(a.cfg.DatabaseURL)
	} else {
		repo, err = postgres.NewPredictionRepo(ctx, a.cfg.DatabaseURL)
	}
	if err != nil {
		return nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

// redis connects when REDIS_ADDR is set. An unreachable server disables the
// caches instead of failing the command.
func (a *app) redis(ctx context.Context) *goredis.Client {
	if a.cfg.RedisAddr == "" {
		return nil
	}
	client, err := redis_adapter.Connect(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
	if err != nil {
		a.logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		return nil
	}
	a.logger.Info("redis connection established", zap.String("addr", a.cfg.RedisAddr))
	return client
}

func linkCache(client *goredis.Client) repository.LinkCache {
	if client == nil {
		return nil
	}
	return redis_adapter.NewLinkCache(client)
}

func statisticsCache(client *goredis.Client, cfg *config.Config) repository.StatisticsCache {
	if client == nil || cfg.ResponseCacheTTL() <= 0 {
		return nil
	}
	return redis_adapter.NewStatisticsCache(client)
}

func closeRedis(client *goredis.Client) {
	if client != nil {
		_ = client.Close()
	}
}

func storeLabel(dsn string) string {
	if strings.HasPrefix(dsn, sqlite.DSNPrefix) {
		return "sqlite"
	}
	return "postgres"
}
