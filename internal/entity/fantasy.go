package entity

// Standard scoring weights.
const (
	pointsPerPassYard  = 0.04
	pointsPerPassTD    = 4
	pointsPerInt       = -2
	pointsPerRushYard  = 0.1
	pointsPerRushTD    = 6
	pointsPerRecYard   = 0.1
	pointsPerRecTD     = 6
	pointsPerFumble    = -2
	pointsPerReception = 1
)

// FantasyPoints scores a stat line. With ppr set every reception is worth
// one extra point.
func FantasyPoints(s StatLine, ppr bool) float64 {
	pts := s.PassYds*pointsPerPassYard +
		s.PassTD*pointsPerPassTD +
		s.Ints*pointsPerInt +
		s.RushYds*pointsPerRushYard +
		s.RushTDs*pointsPerRushTD +
		s.RecYds*pointsPerRecYard +
		s.RecTDs*pointsPerRecTD +
		s.Fumbles*pointsPerFumble
	if ppr {
		pts += s.Catches * pointsPerReception
	}
	return pts
}
