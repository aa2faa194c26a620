package model

// MaxTeamSize is the number of players a team fields in one match.
const MaxTeamSize = 4

// Player is one roster entry extracted from a slotlist image.
type Player struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Team is a roster team. Slot 0 means no slot was assigned or extracted.
type Team struct {
	Slot    int      `json:"slot"`
	Name    string   `json:"name"`
	Players []Player `json:"players"`
}

// Roster is the team/slot/player assignment table produced from slotlist
// images before any match is played. It is an immutable input to the merger.
type Roster struct {
	ID        string `json:"id"`
	GroupName string `json:"groupName"`
	Teams     []Team `json:"teams"`
}

// TeamBySlot returns the team occupying the given slot, or nil.
func (r *Roster) TeamBySlot(slot int) *Team {
	if slot == 0 {
		return nil
	}
	for i := range r.Teams {
		if r.Teams[i].Slot == slot {
			return &r.Teams[i]
		}
	}
	return nil
}

// RawResultRecord is one ranked team box extracted from a single result
// screenshot. Slot is 0 and TeamName is empty when the screenshot carries no
// slot column or team label. Records only exist in validated form:
// Placement > 0, exactly MaxTeamSize non-empty player names, Kills >= 0.
type RawResultRecord struct {
	Slot      int      `json:"slot"`
	TeamName  string   `json:"teamName"`
	Placement int      `json:"placement"`
	Players   []string `json:"players"`
	Kills     int      `json:"kills"`
}

// ImageError records a per-image processing failure. These are local
// failures: the offending image (or record) is excluded from scoring while
// the rest of the batch proceeds.
type ImageError struct {
	ImageIndex int    `json:"imageIndex"`
	Error      string `json:"error"`
}

// MergedTeamResult is one result record bound to a team identity and scored.
type MergedTeamResult struct {
	TeamName       string
	Placement      int
	Win            int
	PlacementPoint int
	FinishPoint    int
	Players        []string
	SlotNumber     string
	MatchFound     bool
	IsNewTeam      bool
}

// StandingsRow is the unit of the canonical standings table and of CSV I/O.
// TotalPoints is always PlacementPoints + KillPoints; it is recomputed
// wherever a row is produced, never trusted from input.
type StandingsRow struct {
	TeamName        string
	Wins            int
	MatchesPlayed   int
	PlacementPoints int
	KillPoints      int
	TotalPoints     int
	GroupName       string
	SlotNumber      string

	// Provenance for the human-facing summary only; not part of CSV I/O
	// and never used for scoring.
	HasNewResult bool
	IsNewTeam    bool
}

// StandingsTable is the accumulated, scored, ranked per-team record across
// one or more rounds. Row order is the canonical ranking.
type StandingsTable []StandingsRow

// Winner returns the top-ranked row, or nil for an empty table.
func (t StandingsTable) Winner() *StandingsRow {
	if len(t) == 0 {
		return nil
	}
	return &t[0]
}

// AccuracyMetrics summarizes how much of the input survived extraction and
// how much of it could be bound to known teams.
type AccuracyMetrics struct {
	ImagesProcessed int     `json:"imagesProcessed"`
	TotalImages     int     `json:"totalImages"`
	TeamMatchRate   float64 `json:"teamMatchRate"`
}

// Summary is the structured counterpart of the CSV artifact, emitted once
// per aggregation for human review.
type Summary struct {
	TotalMatches          int             `json:"totalMatches"`
	GroupName             string          `json:"groupName"`
	TeamsProcessed        int             `json:"teamsProcessed"`
	TotalTeams            int             `json:"totalTeams"`
	Winner                string          `json:"winner"`
	WinnerPoints          int             `json:"winnerPoints"`
	UnidentifiedTeams     []string        `json:"unidentifiedTeams"`
	ImageProcessingErrors []ImageError    `json:"imageProcessingErrors"`
	AccuracyMetrics       AccuracyMetrics `json:"accuracyMetrics"`
}

// AggregationRecord is a stored aggregation run: the canonical CSV text plus
// the metadata shown by list/show. One exists per (MatchID, Namespace); the
// pair is unique and the record is immutable once written.
type AggregationRecord struct {
	MatchID      string
	Namespace    string
	GroupName    string
	TotalMatches int
	Winner       string
	WinnerPoints int
	TeamCount    int
	CSV          string
	Summary      string // JSON-encoded Summary
	CreatedAt    string
}
