package response

import "github.com/nflstats/predictor/internal/entity"

// PlayerStatistics is one row of /api/statistics. Keys are the labels the
// front-end displays.
type PlayerStatistics struct {
	Player         string   `json:"Player"`
	PassingYards   *float64 `json:"Passing Yards"`
	PassingTDs     *float64 `json:"Passing TDs"`
	Interceptions  *float64 `json:"Interceptions"`
	RushingYards   *float64 `json:"Rushing Yards"`
	RushingTDs     *float64 `json:"Rushing TDs"`
	Receptions     *float64 `json:"Receptions"`
	ReceivingYards *float64 `json:"Receiving Yards"`
	ReceivingTDs   *float64 `json:"Receiving TDs"`
	Fumbles        *float64 `json:"Fumbles"`
	FantasyPPR     *float64 `json:"Fantasy PPR Points"`
	FantasyNonPPR  *float64 `json:"Fantasy Non-PPR Points"`
}

// NewPlayerStatistics maps a stored row to its API form.
func NewPlayerStatistics(sp entity.StoredPrediction) PlayerStatistics {
	return PlayerStatistics{
		Player:         sp.Player,
		PassingYards:   sp.PassYds,
		PassingTDs:     sp.PassTD,
		Interceptions:  sp.Ints,
		RushingYards:   sp.RushYds,
		RushingTDs:     sp.RushTDs,
		Receptions:     sp.Catches,
		ReceivingYards: sp.RecYds,
		ReceivingTDs:   sp.RecTDs,
		Fumbles:        sp.Fumbles,
		FantasyPPR:     sp.FantasyPPR,
		FantasyNonPPR:  sp.FantasyNonPPR,
	}
}

// HealthResponse is returned by /api/health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
