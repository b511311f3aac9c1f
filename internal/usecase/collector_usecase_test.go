package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nflstats/predictor/internal/repository"
	"github.com/nflstats/predictor/internal/testfixture"
	"github.com/nflstats/predictor/pkg/retry"
)

const site = "https://stats.example"

func noSleep(context.Context, time.Duration) error { return nil }

func collectorConfig(teams ...string) CollectorConfig {
	return CollectorConfig{
		BaseURL: site,
		Seasons: []int{2020},
		Teams:   teams,
		Retry:   retry.Policy{Attempts: 3, Backoff: 5 * time.Second, Sleep: noSleep},
	}
}

func seedSite(f *fakeFetcher) {
	f.pages[site+"/teams/buf/2020/gamelog/"] = testfixture.GameLogPage(2020,
		"/boxscores/202009130nyj.htm", "/boxscores/202010150buf.htm")
	f.pages[site+"/teams/kan/2020/gamelog/"] = testfixture.GameLogPage(2020,
		"/boxscores/202010150buf.htm", "/boxscores/202009100kan.htm")
	for _, name := range []string{"202009130nyj.htm", "202010150buf.htm", "202009100kan.htm"} {
		f.pages[site+"/boxscores/"+name] = "<tbody>" + name + "</tbody>"
	}
}

func TestCollectFetchesEachBoxScoreOnce(t *testing.T) {
	ctx := context.Background()
	_, docs, _ := newStores(t)
	f := newFakeFetcher()
	seedSite(f)

	uc := NewCollectorUseCase(f, docs, nil, collectorConfig("buf", "kan"), zaptest.NewLogger(t))
	sum, err := uc.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, CollectSummary{ListingsFetched: 2, LinksFound: 3, Saved: 3}, sum)
	assert.Equal(t, 1, f.callCount(site+"/boxscores/202010150buf.htm"), "shared games are fetched once")
	assert.Zero(t, f.callCount(site+"/boxscores/ignored.htm"))

	names, err := docs.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"202009100kan.htm", "202009130nyj.htm", "202010150buf.htm"}, names)

	content, err := docs.Read(ctx, "202009130nyj.htm")
	require.NoError(t, err)
	assert.Equal(t, "<tbody>202009130nyj.htm</tbody>", content)
}

func TestCollectIsIdempotent(t *testing.T) {
	ctx := context.Background()
	_, docs, _ := newStores(t)
	f := newFakeFetcher()
	seedSite(f)
	require.NoError(t, docs.Save(ctx, "202009100kan.htm", "already here"))

	uc := NewCollectorUseCase(f, docs, nil, collectorConfig("buf", "kan"), zaptest.NewLogger(t))
	sum, err := uc.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Saved)
	assert.Equal(t, 1, sum.Skipped)
	assert.Zero(t, f.callCount(site+"/boxscores/202009100kan.htm"), "stored documents are not refetched")

	sum, err = uc.Collect(ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.Saved)
	assert.Equal(t, 3, sum.Skipped)

	content, err := docs.Read(ctx, "202009100kan.htm")
	require.NoError(t, err)
	assert.Equal(t, "already here", content)
}

func TestCollectRetriesAndSkipsFailures(t *testing.T) {
	ctx := context.Background()
	_, docs, _ := newStores(t)
	f := newFakeFetcher()
	seedSite(f)

	flaky := site + "/boxscores/202009130nyj.htm"
	gone := site + "/boxscores/202010150buf.htm"
	f.failures[flaky] = []error{repository.ErrFetchTimeout, errBoom}
	f.failures[gone] = []error{retry.Permanent(errBoom)}

	var sleeps []time.Duration
	cfg := collectorConfig("buf")
	cfg.Retry.Sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}

	uc := NewCollectorUseCase(f, docs, nil, cfg, zaptest.NewLogger(t))
	sum, err := uc.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Saved)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 3, f.callCount(flaky))
	assert.Equal(t, 1, f.callCount(gone), "permanent errors stop retrying")

	ok, err := docs.Exists(ctx, "202010150buf.htm")
	require.NoError(t, err)
	assert.False(t, ok)

	// listing (1 attempt), flaky (3 attempts), gone (1 attempt)
	assert.Equal(t, []time.Duration{0, 0, 5 * time.Second, 10 * time.Second, 0}, sleeps)
}

func TestCollectContinuesPastBrokenListing(t *testing.T) {
	ctx := context.Background()
	_, docs, _ := newStores(t)
	f := newFakeFetcher()
	seedSite(f)
	f.failures[site+"/teams/buf/2020/gamelog/"] = []error{errBoom, errBoom, errBoom}

	uc := NewCollectorUseCase(f, docs, nil, collectorConfig("buf", "kan"), zaptest.NewLogger(t))
	sum, err := uc.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ListingsFailed)
	assert.Equal(t, 1, sum.ListingsFetched)
	assert.Equal(t, 2, sum.Saved)
}

func TestCollectUsesLinkCache(t *testing.T) {
	ctx := context.Background()
	_, docs, _ := newStores(t)
	f := newFakeFetcher()
	seedSite(f)
	cache := &memLinkCache{links: map[string][]string{}}

	uc := NewCollectorUseCase(f, docs, cache, collectorConfig("buf", "kan"), zaptest.NewLogger(t))
	_, err := uc.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.puts)

	sum, err := uc.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.ListingsCached)
	assert.Zero(t, sum.ListingsFetched)
	assert.Equal(t, 1, f.callCount(site+"/teams/buf/2020/gamelog/"))
}

func TestCollectDoesNotCacheEmptyListing(t *testing.T) {
	ctx := context.Background()
	_, docs, _ := newStores(t)
	f := newFakeFetcher()
	seedSite(f)
	listing := site + "/teams/buf/2020/gamelog/"
	recovered := f.pages[listing]
	f.pages[listing] = testfixture.GameLogPage(2019, "/boxscores/201909080nyj.htm")
	cache := &memLinkCache{links: map[string][]string{}}

	uc := NewCollectorUseCase(f, docs, cache, collectorConfig("buf"), zaptest.NewLogger(t))
	sum, err := uc.Collect(ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.LinksFound)
	assert.Zero(t, cache.puts)

	f.pages[listing] = recovered
	sum, err = uc.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ListingsFetched)
	assert.Zero(t, sum.ListingsCached)
	assert.Equal(t, 2, sum.Saved)
	assert.Equal(t, 1, cache.puts)
}

func TestCollectDoesNotCacheSeasonInProgress(t *testing.T) {
	ctx := context.Background()
	_, docs, _ := newStores(t)
	f := newFakeFetcher()
	seedSite(f)
	cache := &memLinkCache{links: map[string][]string{}}

	cfg := collectorConfig("buf")
	cfg.Now = func() time.Time { return time.Date(2021, time.January, 20, 0, 0, 0, 0, time.UTC) }
	uc := NewCollectorUseCase(f, docs, cache, cfg, zaptest.NewLogger(t))
	_, err := uc.Collect(ctx)
	require.NoError(t, err)
	assert.Zero(t, cache.puts)

	cfg.Now = func() time.Time { return time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC) }
	uc = NewCollectorUseCase(f, docs, cache, cfg, zaptest.NewLogger(t))
	_, err = uc.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.puts)
}

func TestCollectTrimsTrailingSlashFromBaseURL(t *testing.T) {
	ctx := context.Background()
	_, docs, _ := newStores(t)
	f := newFakeFetcher()
	seedSite(f)

	cfg := collectorConfig("buf")
	cfg.BaseURL = site + "/"
	uc := NewCollectorUseCase(f, docs, nil, cfg, zaptest.NewLogger(t))
	sum, err := uc.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ListingsFetched)
	assert.Equal(t, 1, f.callCount(site+"/teams/buf/2020/gamelog/"))
	assert.Equal(t, 2, sum.Saved)
}

func TestCollectStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, docs, _ := newStores(t)
	f := newFakeFetcher()
	seedSite(f)

	cfg := collectorConfig("buf")
	cfg.Retry.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	uc := NewCollectorUseCase(f, docs, nil, cfg, zaptest.NewLogger(t))
	_, err := uc.Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
