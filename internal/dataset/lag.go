package dataset

import (
	"sort"

	"github.com/nflstats/predictor/internal/entity"
)

// SortGames returns a copy of records ordered by player, then date.
func SortGames(records []entity.GameRecord) []entity.GameRecord {
	out := append([]entity.GameRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Player != out[j].Player {
			return out[i].Player < out[j].Player
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// BuildLagged attaches each player's previous game to every game after the
// first. The first appearance of a player has no history and is dropped.
func BuildLagged(records []entity.GameRecord) []entity.LaggedRecord {
	sorted := SortGames(records)
	lagged := make([]entity.LaggedRecord, 0, len(sorted))
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Player != cur.Player {
			continue
		}
		lagged = append(lagged, entity.LaggedRecord{
			Player:  cur.Player,
			Date:    cur.Date,
			Current: cur.Stats,
			Prev:    prev.Stats,
		})
	}
	return lagged
}

// LatestPerPlayer returns the most recent lagged row of every player, in
// player order. lagged must be ordered as BuildLagged returns it.
func LatestPerPlayer(lagged []entity.LaggedRecord) []entity.LaggedRecord {
	var out []entity.LaggedRecord
	for i, r := range lagged {
		if i+1 < len(lagged) && lagged[i+1].Player == r.Player {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Features returns the lag columns of rows as a feature matrix.
func Features(rows []entity.LaggedRecord) [][]float64 {
	x := make([][]float64, len(rows))
	for i, r := range rows {
		x[i] = r.Prev.Values()
	}
	return x
}

// Targets returns the current-game stats of rows as a target matrix.
func Targets(rows []entity.LaggedRecord) [][]float64 {
	y := make([][]float64, len(rows))
	for i, r := range rows {
		y[i] = r.Current.Values()
	}
	return y
}

// FeatureColumns names the columns returned by Features.
func FeatureColumns() []string {
	cols := make([]string, len(entity.StatColumns))
	for i, s := range entity.StatColumns {
		cols[i] = entity.LagColumn(s)
	}
	return cols
}
