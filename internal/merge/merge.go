// Package merge binds extraction records to team identities and scores them.
//
// Identity resolution is tiered: an extracted slot number is tried first,
// then case-insensitive substring containment between the record's team label
// (or first player name) and a known team name (either direction). The containment
// heuristic is deliberately permissive: it tolerates partial OCR names at
// the cost of conflating player identity with team identity, which is
// accepted behavior.
package merge

import (
	"fmt"
	"strconv"
	"strings"

	"scrimtally/internal/model"
	"scrimtally/internal/scoring"
)

// Directory is the team-identity lookup one merge pass resolves against.
// It is built from a Roster on a fresh run, or from previously decoded
// standings rows in combine mode. Entry order is input order and is the
// tie-break for ambiguous name matches: first match wins.
type Directory struct {
	entries []dirEntry
	bySlot  map[int]int // slot -> entries index
}

type dirEntry struct {
	name string
	slot int
}

// FromRoster builds a Directory over the roster's teams.
func FromRoster(r *model.Roster) *Directory {
	d := &Directory{bySlot: make(map[int]int)}
	for _, t := range r.Teams {
		d.add(t.Name, t.Slot)
	}
	return d
}

// FromStandings builds a Directory over previously aggregated rows, so a new
// round can be merged into an existing table. Slot numbers are reused when
// the stored slot field is numeric.
func FromStandings(rows []model.StandingsRow) *Directory {
	d := &Directory{bySlot: make(map[int]int)}
	for _, row := range rows {
		slot, _ := strconv.Atoi(strings.TrimSpace(row.SlotNumber))
		d.add(row.TeamName, slot)
	}
	return d
}

// Len returns the number of known teams.
func (d *Directory) Len() int { return len(d.entries) }

func (d *Directory) add(name string, slot int) {
	d.entries = append(d.entries, dirEntry{name: name, slot: slot})
	if slot != 0 {
		if _, taken := d.bySlot[slot]; !taken {
			d.bySlot[slot] = len(d.entries) - 1
		}
	}
}

// Merge resolves each record to a team and scores it. It returns the merged
// results, the synthesized-team names that could not be identified (for the
// human-facing summary), and warning strings for suppressed duplicates.
// A (teamName, placement) pair seen twice within one batch is a duplicate
// detection: the second occurrence is dropped with a warning, not an error.
func Merge(dir *Directory, records []model.RawResultRecord) ([]model.MergedTeamResult, []string, []string) {
	type dupKey struct {
		name      string
		placement int
	}
	seen := make(map[dupKey]bool, len(records))

	var merged []model.MergedTeamResult
	var unidentified []string
	var warnings []string

	for i, rec := range records {
		name, slot, found := resolve(dir, rec)
		isNew := false
		if !found {
			name = synthName(rec, i)
			isNew = true
			unidentified = append(unidentified, name)
		}

		key := dupKey{name: name, placement: rec.Placement}
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("duplicate result for %q at placement %d dropped", name, rec.Placement))
			continue
		}
		seen[key] = true

		s := scoring.Compute(rec.Placement, rec.Kills)
		slotStr := ""
		if slot != 0 {
			slotStr = strconv.Itoa(slot)
		}
		merged = append(merged, model.MergedTeamResult{
			TeamName:       name,
			Placement:      scoring.ClampPlacement(rec.Placement),
			Win:            s.Win,
			PlacementPoint: s.PlacementPoints,
			FinishPoint:    s.KillPoints,
			Players:        rec.Players,
			SlotNumber:     slotStr,
			MatchFound:     found,
			IsNewTeam:      isNew,
		})
	}
	return merged, unidentified, warnings
}

// resolve finds the team a record belongs to: slot binding first (highest
// confidence), then name containment against the record's representative
// token (the extracted team label when present, else the first player name).
func resolve(dir *Directory, rec model.RawResultRecord) (name string, slot int, found bool) {
	if idx, ok := dir.bySlot[rec.Slot]; ok && rec.Slot != 0 {
		e := dir.entries[idx]
		return e.name, e.slot, true
	}

	token := matchToken(rec)
	if token == "" {
		return "", 0, false
	}
	for _, e := range dir.entries {
		if NameMatch(token, e.name) {
			return e.name, e.slot, true
		}
	}
	return "", 0, false
}

func matchToken(rec model.RawResultRecord) string {
	if t := strings.TrimSpace(rec.TeamName); t != "" {
		return t
	}
	return firstPlayer(rec)
}

// NameMatch reports whether a and b match under the containment heuristic:
// case-folded, whitespace-trimmed substring containment in either direction.
// Empty strings never match anything.
func NameMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// synthName names a team that could not be identified: the extracted team
// label, then the first listed player, then a positional placeholder. Keeps
// extraction dropouts in the table instead of discarding their data.
func synthName(rec model.RawResultRecord, idx int) string {
	if t := matchToken(rec); t != "" {
		return t
	}
	return fmt.Sprintf("Unknown Team %d", idx+1)
}

func firstPlayer(rec model.RawResultRecord) string {
	for _, p := range rec.Players {
		if s := strings.TrimSpace(p); s != "" {
			return s
		}
	}
	return ""
}
