package entity

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in the flat games table.
const DateLayout = "2006-01-02"

// filenameDateLayout is the 8-digit date prefix of box-score filenames.
const filenameDateLayout = "20060102"

// GameRecord is one player's statistics for a single game.
type GameRecord struct {
	Player string
	Team   string
	Stats  StatLine
	Season int
	Date   time.Time
}

// LaggedRecord is a game row carrying the same player's previous game stats.
type LaggedRecord struct {
	Player  string
	Date    time.Time
	Current StatLine
	Prev    StatLine
}

// SeasonFor returns the NFL season a game date belongs to. January games
// close out the season that started the previous calendar year.
func SeasonFor(date time.Time) int {
	if date.Month() == time.January {
		return date.Year() - 1
	}
	return date.Year()
}

// GameDateFromFilename parses the leading YYYYMMDD of a box-score filename
// such as "202009100kan.htm".
func GameDateFromFilename(name string) (time.Time, error) {
	if len(name) < 8 {
		return time.Time{}, fmt.Errorf("filename %q is too short to carry a date", name)
	}
	date, err := time.Parse(filenameDateLayout, name[:8])
	if err != nil {
		return time.Time{}, fmt.Errorf("filename %q has no date prefix: %w", name, err)
	}
	return date, nil
}
