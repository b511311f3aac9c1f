package entity

import "strings"

// StatColumns lists the nine per-game statistics in their canonical order.
// The flat table, the feature matrix and the storage schema all follow it.
var StatColumns = []string{
	"PassYds",
	"PassTD",
	"Ints",
	"RushYds",
	"RushTDs",
	"Catches",
	"RecYds",
	"RecTDs",
	"Fumbles",
}

// NumStats is the number of statistics in a StatLine.
const NumStats = 9

// StatLine holds one set of the nine tracked statistics.
type StatLine struct {
	PassYds float64
	PassTD  float64
	Ints    float64
	RushYds float64
	RushTDs float64
	Catches float64
	RecYds  float64
	RecTDs  float64
	Fumbles float64
}

// Values returns the stats in StatColumns order.
func (s StatLine) Values() []float64 {
	return []float64{
		s.PassYds,
		s.PassTD,
		s.Ints,
		s.RushYds,
		s.RushTDs,
		s.Catches,
		s.RecYds,
		s.RecTDs,
		s.Fumbles,
	}
}

// StatLineFromValues is the inverse of Values. It panics if v does not hold
// exactly NumStats entries.
func StatLineFromValues(v []float64) StatLine {
	if len(v) != NumStats {
		panic("entity: stat line needs exactly 9 values")
	}
	return StatLine{
		PassYds: v[0],
		PassTD:  v[1],
		Ints:    v[2],
		RushYds: v[3],
		RushTDs: v[4],
		Catches: v[5],
		RecYds:  v[6],
		RecTDs:  v[7],
		Fumbles: v[8],
	}
}

// LagColumn returns the feature name for the previous-game value of stat.
func LagColumn(stat string) string {
	return "Prev_" + stat
}

// StorageColumn returns the lower-case column name used in player_stats.
func StorageColumn(stat string) string {
	return strings.ToLower(stat)
}
