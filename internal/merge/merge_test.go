package merge

import (
	"strings"
	"testing"

	"scrimtally/internal/model"
)

func testRoster() *model.Roster {
	return &model.Roster{
		ID:        "r1",
		GroupName: "Group A",
		Teams: []model.Team{
			{Slot: 1, Name: "Team Alpha"},
			{Slot: 2, Name: "Nightcrawlers"},
			{Slot: 3, Name: "Void"},
		},
	}
}

func TestMergeSlotMatch(t *testing.T) {
	records := []model.RawResultRecord{
		{Slot: 2, Placement: 4, Players: []string{"p1", "p2", "p3", "p4"}, Kills: 6},
	}
	merged, unidentified, _ := Merge(FromRoster(testRoster()), records)
	if len(merged) != 1 {
		t.Fatalf("want 1 merged result, got %d", len(merged))
	}
	if merged[0].TeamName != "Nightcrawlers" {
		t.Errorf("slot 2 should bind to Nightcrawlers, got %q", merged[0].TeamName)
	}
	if !merged[0].MatchFound || merged[0].IsNewTeam {
		t.Errorf("slot match should set MatchFound: %+v", merged[0])
	}
	if len(unidentified) != 0 {
		t.Errorf("unexpected unidentified teams: %v", unidentified)
	}
}

func TestMergePlayerNameContainment(t *testing.T) {
	// First player's OCR name contains the team name.
	records := []model.RawResultRecord{
		{Placement: 2, Players: []string{"VoidSniper", "x", "y", "z"}, Kills: 3},
	}
	merged, _, _ := Merge(FromRoster(testRoster()), records)
	if merged[0].TeamName != "Void" {
		t.Errorf("want Void via containment, got %q", merged[0].TeamName)
	}
	if !merged[0].MatchFound {
		t.Error("containment match should set MatchFound")
	}
}

func TestMergeTeamLabelPreferredOverPlayers(t *testing.T) {
	// The extracted team label binds even when no player name would.
	records := []model.RawResultRecord{
		{TeamName: "alpha", Placement: 3, Players: []string{"p1", "p2", "p3", "p4"}, Kills: 0},
	}
	merged, _, _ := Merge(FromRoster(testRoster()), records)
	if merged[0].TeamName != "Team Alpha" {
		t.Errorf("team label should bind via containment, got %q", merged[0].TeamName)
	}
}

func TestMergeContainmentIsCaseInsensitive(t *testing.T) {
	records := []model.RawResultRecord{
		{Placement: 5, Players: []string{"NIGHTCRAWLERS_ace", "x", "y", "z"}, Kills: 1},
	}
	merged, _, _ := Merge(FromRoster(testRoster()), records)
	if merged[0].TeamName != "Nightcrawlers" {
		t.Errorf("case-folded containment failed: got %q", merged[0].TeamName)
	}
}

func TestMergeSynthesizesUnknownTeam(t *testing.T) {
	records := []model.RawResultRecord{
		{Placement: 9, Players: []string{"stranger", "x", "y", "z"}, Kills: 2},
	}
	merged, unidentified, _ := Merge(FromRoster(testRoster()), records)
	if merged[0].TeamName != "stranger" {
		t.Errorf("synthesized name should be the first player, got %q", merged[0].TeamName)
	}
	if merged[0].MatchFound || !merged[0].IsNewTeam {
		t.Errorf("unknown team flags wrong: %+v", merged[0])
	}
	if len(unidentified) != 1 || unidentified[0] != "stranger" {
		t.Errorf("want [stranger] unidentified, got %v", unidentified)
	}
}

func TestMergeScoresRecords(t *testing.T) {
	records := []model.RawResultRecord{
		{Slot: 1, Placement: 1, Players: []string{"a", "b", "c", "d"}, Kills: 8},
	}
	merged, _, _ := Merge(FromRoster(testRoster()), records)
	m := merged[0]
	if m.Win != 1 || m.PlacementPoint != 10 || m.FinishPoint != 8 {
		t.Errorf("scoring mismatch: win=%d pp=%d kp=%d", m.Win, m.PlacementPoint, m.FinishPoint)
	}
}

func TestMergeClampsStoredPlacement(t *testing.T) {
	records := []model.RawResultRecord{
		{Slot: 1, Placement: 99, Players: []string{"a", "b", "c", "d"}, Kills: 0},
	}
	merged, _, _ := Merge(FromRoster(testRoster()), records)
	if merged[0].Placement != 25 {
		t.Errorf("placement 99 should clamp to 25, got %d", merged[0].Placement)
	}
}

func TestMergeDuplicateSuppression(t *testing.T) {
	// Same team at the same placement extracted from two overlapping
	// screenshots: the second occurrence is dropped with a warning.
	records := []model.RawResultRecord{
		{Slot: 1, Placement: 3, Players: []string{"a", "b", "c", "d"}, Kills: 5},
		{Slot: 1, Placement: 3, Players: []string{"a", "b", "c", "d"}, Kills: 5},
	}
	merged, _, warnings := Merge(FromRoster(testRoster()), records)
	if len(merged) != 1 {
		t.Fatalf("want 1 merged result after dedup, got %d", len(merged))
	}
	if len(warnings) != 1 {
		t.Fatalf("want 1 warning, got %d", len(warnings))
	}
	if !strings.Contains(warnings[0], "Team Alpha") {
		t.Errorf("warning should name the team: %q", warnings[0])
	}
}

func TestMergeSamePlacementDifferentTeamsKept(t *testing.T) {
	records := []model.RawResultRecord{
		{Slot: 1, Placement: 3, Players: []string{"a", "b", "c", "d"}, Kills: 5},
		{Slot: 2, Placement: 3, Players: []string{"e", "f", "g", "h"}, Kills: 2},
	}
	merged, _, warnings := Merge(FromRoster(testRoster()), records)
	if len(merged) != 2 {
		t.Errorf("different teams at one placement must both survive, got %d", len(merged))
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestFromStandings(t *testing.T) {
	rows := []model.StandingsRow{
		{TeamName: "Team Alpha", SlotNumber: "1"},
		{TeamName: "Void", SlotNumber: ""},
	}
	dir := FromStandings(rows)
	if dir.Len() != 2 {
		t.Fatalf("want 2 entries, got %d", dir.Len())
	}
	merged, _, _ := Merge(dir, []model.RawResultRecord{
		{Slot: 1, Placement: 2, Players: []string{"x", "y", "z", "w"}, Kills: 1},
	})
	if merged[0].TeamName != "Team Alpha" {
		t.Errorf("slot from standings row should bind, got %q", merged[0].TeamName)
	}
}

func TestNameMatch(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"Team Alpha", "team alpha", true},
		{"VoidSniper", "Void", true},
		{"Void", "VoidSniper", true},
		{"", "Void", false},
		{"  ", "Void", false},
		{"Beta", "Gamma", false},
	}
	for _, c := range cases {
		if got := NameMatch(c.a, c.b); got != c.want {
			t.Errorf("NameMatch(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
