// Package testfixture builds synthetic reference-site pages for tests.
package testfixture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nflstats/predictor/internal/entity"
)

// Player is one row of a synthetic box score.
type Player struct {
	Name  string
	Team  string
	Stats entity.StatLine
}

// statPositions maps StatColumns order to data-column positions of the
// offense table (0 = team).
var statPositions = []int{3, 4, 5, 11, 12, 15, 16, 17, 20}

var dataStats = []string{
	"team", "pass_cmp", "pass_att", "pass_yds", "pass_td", "pass_int",
	"pass_sacked", "pass_sacked_yds", "pass_long", "pass_rating",
	"rush_att", "rush_yds", "rush_td", "rush_long",
	"targets", "rec", "rec_yds", "rec_td", "rec_long",
	"fumbles", "fumbles_lost",
}

// BoxScoreFragment renders the inner HTML of a #player_offense table, with
// the decorative header rows the real site embeds.
func BoxScoreFragment(players ...Player) string {
	var b strings.Builder
	b.WriteString(`<caption>Passing, Rushing, &amp; Receiving Table</caption>`)
	b.WriteString(`<thead><tr class="over_header"><th></th><th></th><th colspan="9">Passing</th><th colspan="4">Rushing</th><th colspan="5">Receiving</th><th colspan="2">Fumbles</th></tr>`)
	b.WriteString(`<tr><th>Player</th>`)
	for _, ds := range dataStats {
		fmt.Fprintf(&b, `<th>%s</th>`, ds)
	}
	b.WriteString(`</tr></thead><tbody>`)
	for i, p := range players {
		if i > 0 && i%2 == 0 {
			b.WriteString(`<tr class="over_header"><th colspan="22">Passing</th></tr>`)
			b.WriteString(`<tr class="thead"><th>Player</th><th colspan="21">Tm</th></tr>`)
		}
		b.WriteString(playerRow(p))
	}
	b.WriteString(`</tbody>`)
	return b.String()
}

func playerRow(p Player) string {
	cells := make([]string, len(dataStats))
	for i := range cells {
		cells[i] = strconv.Itoa(i) // filler for unused columns
	}
	cells[0] = p.Team
	for i, v := range p.Stats.Values() {
		cells[statPositions[i]] = strconv.FormatFloat(v, 'f', -1, 64)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<tr><th scope="row" data-stat="player"><a href="/players/x.htm">%s</a></th>`, p.Name)
	for i, c := range cells {
		fmt.Fprintf(&b, `<td data-stat="%s">%s</td>`, dataStats[i], c)
	}
	b.WriteString(`</tr>`)
	return b.String()
}

// BoxScorePage wraps a fragment in a full page with the table commented out,
// the way the site serves secondary tables.
func BoxScorePage(fragment string) string {
	return `<html><body><div id="all_player_offense"><!--<table id="player_offense">` +
		fragment + `</table>--></div></body></html>`
}

// GameLogPage renders a team game-log page linking to the given box scores.
func GameLogPage(season int, hrefs ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<html><body><table id="gamelog%d"><tbody>`, season)
	for i, h := range hrefs {
		fmt.Fprintf(&b, `<tr><th>%d</th><td class="center"><a href="%s">boxscore</a></td></tr>`, i+1, h)
	}
	b.WriteString(`</tbody></table>`)
	// Links outside the game-log table must be ignored.
	b.WriteString(`<div class="center"><a href="/boxscores/ignored.htm">other</a></div>`)
	b.WriteString(`</body></html>`)
	return b.String()
}
