package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/nflstats/predictor/internal/adapter/filesystem"
	"github.com/nflstats/predictor/internal/entity"
)

// fakeFetcher serves canned pages. failures[url] errors are returned, one per
// call, before the page is served.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	failures map[string][]error
	calls    map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:    map[string]string{},
		failures: map[string][]error{},
		calls:    map[string]int{},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, selector string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if errs := f.failures[url]; len(errs) > 0 {
		f.failures[url] = errs[1:]
		return "", errs[0]
	}
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return page, nil
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type memLinkCache struct {
	links map[string][]string
	puts  int
}

func (c *memLinkCache) key(team string, season int) string { return fmt.Sprintf("%s/%d", team, season) }

func (c *memLinkCache) Get(_ context.Context, team string, season int) ([]string, bool, error) {
	l, ok := c.links[c.key(team, season)]
	return l, ok, nil
}

func (c *memLinkCache) Put(_ context.Context, team string, season int, links []string, _ time.Duration) error {
	c.links[c.key(team, season)] = links
	c.puts++
	return nil
}

type memPredictionRepo struct {
	rows     []entity.StoredPrediction
	nextID   int64
	writeErr error
	listErr  error
	listed   int
}

func (r *memPredictionRepo) EnsureSchema(context.Context) error { return nil }

func (r *memPredictionRepo) Append(_ context.Context, runID string, preds []entity.Prediction) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	for _, p := range preds {
		r.nextID++
		v := p.Stats
		ppr, non := p.FantasyPPR, p.FantasyNonPPR
		id := runID
		r.rows = append(r.rows, entity.StoredPrediction{
			ID: r.nextID, Player: p.Player,
			PassYds: &v.PassYds, PassTD: &v.PassTD, Ints: &v.Ints,
			RushYds: &v.RushYds, RushTDs: &v.RushTDs, Catches: &v.Catches,
			RecYds: &v.RecYds, RecTDs: &v.RecTDs, Fumbles: &v.Fumbles,
			FantasyPPR: &ppr, FantasyNonPPR: &non, RunID: &id,
		})
	}
	return nil
}

func (r *memPredictionRepo) Replace(ctx context.Context, runID string, preds []entity.Prediction) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.rows = nil
	return r.Append(ctx, runID, preds)
}

func (r *memPredictionRepo) ListAll(context.Context) ([]entity.StoredPrediction, error) {
	r.listed++
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.rows, nil
}

func (r *memPredictionRepo) Ping(context.Context) error { return r.listErr }

func (r *memPredictionRepo) Close() {}

type memStatisticsCache struct {
	rows        []entity.StoredPrediction
	cached      bool
	invalidated int
	getErr      error
}

func (c *memStatisticsCache) Get(context.Context) ([]entity.StoredPrediction, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.rows, c.cached, nil
}

func (c *memStatisticsCache) Put(_ context.Context, rows []entity.StoredPrediction, _ time.Duration) error {
	c.rows, c.cached = rows, true
	return nil
}

func (c *memStatisticsCache) Invalidate(context.Context) error {
	c.rows, c.cached = nil, false
	c.invalidated++
	return nil
}

var errBoom = errors.New("boom")

func newStores(t *testing.T) (afero.Fs, *filesystem.DocumentRepoImpl, *filesystem.GameTableImpl) {
	t.Helper()
	fs := afero.NewMemMapFs()
	docs, err := filesystem.NewDocumentRepo(fs, "scores")
	require.NoError(t, err)
	return fs, docs, filesystem.NewGameTable(fs, "nfl_games.csv")
}
