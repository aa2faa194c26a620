// Package csvcodec serializes standings tables to the canonical CSV text and
// back. The header row and column order are an external contract (other
// tooling consumes this exact shape), so Encode never reorders columns, while
// Decode matches columns by header name so hand-edited or independently
// produced files re-ingest correctly.
package csvcodec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"scrimtally/internal/model"
)

// Header is the fixed canonical column set, in encode order.
var Header = []string{
	"TEAM NAME",
	"WIN",
	"MATCHES PLAYED",
	"PLACEMENT POINT",
	"KILL POINT",
	"TOTAL POINT",
	"GROUP NAME",
	"SLOT NUMBER",
}

// ErrBadHeader is returned when a CSV is missing the canonical header.
var ErrBadHeader = errors.New("missing or unrecognized standings header")

// Encode renders a standings table as canonical CSV text. Fields containing
// commas, quotes, or newlines get standard CSV quoting.
func Encode(table model.StandingsTable) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(Header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range table {
		record := []string{
			row.TeamName,
			strconv.Itoa(row.Wins),
			strconv.Itoa(row.MatchesPlayed),
			strconv.Itoa(row.PlacementPoints),
			strconv.Itoa(row.KillPoints),
			strconv.Itoa(row.PlacementPoints + row.KillPoints),
			row.GroupName,
			row.SlotNumber,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write row %q: %w", row.TeamName, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Decode parses canonical CSV text back into a standings table. Columns are
// located by header name, so column order drift is tolerated; a missing
// canonical column is fatal (ErrBadHeader). Trailing blank lines are
// ignored. TotalPoints is recomputed from its parts, never trusted.
func Decode(text string) (model.StandingsTable, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1 // row width validated against the header below
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrBadHeader
	}

	col, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var table model.StandingsTable
	for n, record := range rows[1:] {
		if isBlank(record) {
			continue
		}
		if len(record) < len(rows[0]) {
			return nil, fmt.Errorf("row %d: %d fields, header has %d", n+2, len(record), len(rows[0]))
		}

		row := model.StandingsRow{
			TeamName:   record[col["TEAM NAME"]],
			GroupName:  record[col["GROUP NAME"]],
			SlotNumber: record[col["SLOT NUMBER"]],
		}
		ints := []struct {
			name string
			dst  *int
		}{
			{"WIN", &row.Wins},
			{"MATCHES PLAYED", &row.MatchesPlayed},
			{"PLACEMENT POINT", &row.PlacementPoints},
			{"KILL POINT", &row.KillPoints},
		}
		for _, f := range ints {
			v, convErr := strconv.Atoi(strings.TrimSpace(record[col[f.name]]))
			if convErr != nil {
				return nil, fmt.Errorf("row %d: bad %s %q", n+2, f.name, record[col[f.name]])
			}
			*f.dst = v
		}
		row.TotalPoints = row.PlacementPoints + row.KillPoints
		table = append(table, row)
	}
	return table, nil
}

// headerIndex maps canonical column names to positions in the given header
// row, matching case-insensitively with surrounding whitespace ignored.
func headerIndex(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	col := make(map[string]int, len(Header))
	for _, name := range Header {
		i, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("column %q: %w", name, ErrBadHeader)
		}
		col[name] = i
	}
	return col, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
