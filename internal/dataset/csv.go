package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nflstats/predictor/internal/entity"
)

// Header is the exact column layout of the games table.
var Header = append(append([]string{"Player", "Team"}, entity.StatColumns...), "Season", "Date")

// WriteGames writes records as CSV with Header as the first row.
func WriteGames(w io.Writer, records []entity.GameRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	row := make([]string, len(Header))
	for _, r := range records {
		row[0] = r.Player
		row[1] = r.Team
		for i, v := range r.Stats.Values() {
			row[2+i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		row[2+entity.NumStats] = strconv.Itoa(r.Season)
		row[3+entity.NumStats] = r.Date.Format(entity.DateLayout)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadGames parses a games table. Columns are located by header name, so
// extra columns (such as a leading unnamed index) are ignored.
func ReadGames(r io.Reader) ([]entity.GameRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("games table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(head))
	for i, name := range head {
		index[strings.TrimSpace(name)] = i
	}
	cols := make([]int, len(Header))
	for i, name := range Header {
		pos, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("games table is missing column %q", name)
		}
		cols[i] = pos
	}

	var records []entity.GameRecord
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := parseRecord(fields, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(fields []string, cols []int) (entity.GameRecord, error) {
	get := func(i int) (string, error) {
		if cols[i] >= len(fields) {
			return "", fmt.Errorf("missing value for %s", Header[i])
		}
		return strings.TrimSpace(fields[cols[i]]), nil
	}

	var rec entity.GameRecord
	var err error
	if rec.Player, err = get(0); err != nil {
		return rec, err
	}
	if rec.Team, err = get(1); err != nil {
		return rec, err
	}

	values := make([]float64, entity.NumStats)
	for i := range values {
		raw, err := get(2 + i)
		if err != nil {
			return rec, err
		}
		if raw == "" {
			continue
		}
		if values[i], err = strconv.ParseFloat(raw, 64); err != nil {
			return rec, fmt.Errorf("%s: %w", Header[2+i], err)
		}
	}
	rec.Stats = entity.StatLineFromValues(values)

	raw, err := get(2 + entity.NumStats)
	if err != nil {
		return rec, err
	}
	if rec.Season, err = strconv.Atoi(raw); err != nil {
		return rec, fmt.Errorf("Season: %w", err)
	}

	if raw, err = get(3 + entity.NumStats); err != nil {
		return rec, err
	}
	if rec.Date, err = parseDate(raw); err != nil {
		return rec, fmt.Errorf("Date: %w", err)
	}
	return rec, nil
}

// parseDate accepts the ISO date and the timestamp form some tools emit.
func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse(entity.DateLayout, s); err == nil {
		return d, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
