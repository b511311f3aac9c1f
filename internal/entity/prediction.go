package entity

import "time"

// Prediction is a forecast stat line for a player's next game.
type Prediction struct {
	Player        string
	Stats         StatLine
	FantasyPPR    float64
	FantasyNonPPR float64
}

// StoredPrediction mirrors a row of the `player_stats` table. Columns are
// nullable because rows written by earlier tools may lack some of them.
type StoredPrediction struct {
	ID            int64
	Player        string
	PassYds       *float64
	PassTD        *float64
	Ints          *float64
	RushYds       *float64
	RushTDs       *float64
	Catches       *float64
	RecYds        *float64
	RecTDs        *float64
	Fumbles       *float64
	FantasyPPR    *float64
	FantasyNonPPR *float64
	RunID         *string
	CreatedAt     *time.Time
}

// NewPrediction builds a Prediction and fills in its fantasy scores.
func NewPrediction(player string, stats StatLine) Prediction {
	return Prediction{
		Player:        player,
		Stats:         stats,
		FantasyPPR:    FantasyPoints(stats, true),
		FantasyNonPPR: FantasyPoints(stats, false),
	}
}
