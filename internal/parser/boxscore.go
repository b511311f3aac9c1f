package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nflstats/predictor/internal/entity"
)

// BoxScoreSelector locates the offensive player table on a box-score page.
const BoxScoreSelector = "#player_offense"

var (
	ErrNoTableBody = errors.New("box score has no table body")
	ErrColumnCount = errors.New("box score row has an unexpected column count")
)

// dataColumns is the number of cells after the player cell in a row of the
// offense table.
const dataColumns = 21

// droppedColumns are data-column positions (0 = team) that are not used
// downstream: completions, attempts, sacks, sack yards, long passes, rating,
// rush attempts, long rushes, targets, long receptions and total fumbles.
var droppedColumns = map[int]bool{
	1: true, 2: true, 6: true, 7: true, 8: true, 9: true,
	10: true, 13: true, 14: true, 18: true, 19: true,
}

// decorativeRows are the repeated header rows embedded in the table.
const decorativeRows = "tr.over_header, tr.thead"

// PlayerRow is one player's line from a box score.
type PlayerRow struct {
	Player string
	Team   string
	Stats  entity.StatLine
}

// ParseBoxScore converts the inner HTML of the offense table into one row
// per player.
func ParseBoxScore(fragment string) ([]PlayerRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table>" + uncomment(fragment) + "</table>"))
	if err != nil {
		return nil, fmt.Errorf("parse box score: %w", err)
	}

	doc.Find(decorativeRows).Remove()

	tbody := doc.Find("tbody").First()
	if tbody.Length() == 0 {
		return nil, ErrNoTableBody
	}

	var rows []PlayerRow
	var rowErr error
	tbody.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		row, err := parseRow(tr)
		if err != nil {
			rowErr = fmt.Errorf("row %d: %w", i, err)
			return false
		}
		rows = append(rows, row)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return rows, nil
}

func parseRow(tr *goquery.Selection) (PlayerRow, error) {
	cells := tr.ChildrenFiltered("th, td")
	if cells.Length() != dataColumns+1 {
		return PlayerRow{}, fmt.Errorf("%w: got %d cells, want %d", ErrColumnCount, cells.Length(), dataColumns+1)
	}

	player := cleanText(cells.Eq(0).Text())
	if player == "" {
		return PlayerRow{}, errors.New("empty player cell")
	}

	kept := make([]string, 0, dataColumns-len(droppedColumns))
	for pos := 0; pos < dataColumns; pos++ {
		if droppedColumns[pos] {
			continue
		}
		kept = append(kept, cleanText(cells.Eq(pos+1).Text()))
	}

	values := make([]float64, entity.NumStats)
	for i, raw := range kept[1:] {
		v, err := parseNumber(raw)
		if err != nil {
			return PlayerRow{}, fmt.Errorf("%s for %s: %w", entity.StatColumns[i], player, err)
		}
		values[i] = v
	}

	return PlayerRow{
		Player: player,
		Team:   kept[0],
		Stats:  entity.StatLineFromValues(values),
	}, nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseNumber reads a stat cell. Blank cells count as zero.
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
