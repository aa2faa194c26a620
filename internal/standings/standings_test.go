package standings

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"scrimtally/internal/model"
)

func TestCombineFreshRun(t *testing.T) {
	merged := []model.MergedTeamResult{
		{TeamName: "Alpha", Win: 1, PlacementPoint: 10, FinishPoint: 8, SlotNumber: "1"},
		{TeamName: "Beta", Win: 0, PlacementPoint: 6, FinishPoint: 2, SlotNumber: "2"},
	}
	table := Combine(nil, merged, 1, "Group A")
	if len(table) != 2 {
		t.Fatalf("want 2 rows, got %d", len(table))
	}
	top := table[0]
	if top.TeamName != "Alpha" || top.TotalPoints != 18 || top.Wins != 1 {
		t.Errorf("top row mismatch: %+v", top)
	}
	if top.MatchesPlayed != 1 || top.GroupName != "Group A" {
		t.Errorf("row metadata mismatch: %+v", top)
	}
}

func TestCombineAccumulates(t *testing.T) {
	existing := []model.StandingsRow{
		{TeamName: "Alpha", Wins: 1, MatchesPlayed: 1, PlacementPoints: 10, KillPoints: 8, TotalPoints: 18, GroupName: "Group A", SlotNumber: "1"},
	}
	merged := []model.MergedTeamResult{
		{TeamName: "Alpha", Win: 0, PlacementPoint: 5, FinishPoint: 5, SlotNumber: "1"},
	}
	table := Combine(existing, merged, 2, "Group A")

	row := table[0]
	if row.Wins != 1 || row.PlacementPoints != 15 || row.KillPoints != 13 || row.TotalPoints != 28 {
		t.Errorf("accumulation mismatch: %+v", row)
	}
	if row.MatchesPlayed != 2 {
		t.Errorf("matchesPlayed should be stamped to 2, got %d", row.MatchesPlayed)
	}
	if !row.HasNewResult {
		t.Error("touched row should be flagged HasNewResult")
	}
}

func TestCombineCarriesForwardUntouchedRows(t *testing.T) {
	existing := []model.StandingsRow{
		{TeamName: "Alpha", Wins: 1, MatchesPlayed: 1, PlacementPoints: 10, KillPoints: 8, TotalPoints: 18},
		{TeamName: "Beta", Wins: 0, MatchesPlayed: 1, PlacementPoints: 6, KillPoints: 2, TotalPoints: 8},
	}
	merged := []model.MergedTeamResult{
		{TeamName: "Alpha", Win: 0, PlacementPoint: 0, FinishPoint: 1},
	}
	table := Combine(existing, merged, 2, "")

	var beta *model.StandingsRow
	for i := range table {
		if table[i].TeamName == "Beta" {
			beta = &table[i]
		}
	}
	if beta == nil {
		t.Fatal("Beta should be carried forward")
	}
	if beta.TotalPoints != 8 || beta.MatchesPlayed != 1 {
		t.Errorf("carried row must be unchanged: %+v", beta)
	}
	if beta.HasNewResult {
		t.Error("carried row must not be flagged HasNewResult")
	}
}

func TestCombineInsertsNewTeams(t *testing.T) {
	existing := []model.StandingsRow{
		{TeamName: "Alpha", TotalPoints: 18, PlacementPoints: 10, KillPoints: 8, MatchesPlayed: 1},
	}
	merged := []model.MergedTeamResult{
		{TeamName: "Gamma", Win: 0, PlacementPoint: 4, FinishPoint: 3, IsNewTeam: true},
	}
	table := Combine(existing, merged, 2, "Group B")
	if len(table) != 2 {
		t.Fatalf("want 2 rows, got %d", len(table))
	}
	var gamma *model.StandingsRow
	for i := range table {
		if table[i].TeamName == "Gamma" {
			gamma = &table[i]
		}
	}
	if gamma == nil {
		t.Fatal("Gamma should be inserted")
	}
	if gamma.TotalPoints != 7 || gamma.MatchesPlayed != 2 || gamma.GroupName != "Group B" {
		t.Errorf("inserted row mismatch: %+v", gamma)
	}
	if !gamma.IsNewTeam {
		t.Error("inserted row should keep the IsNewTeam flag")
	}
}

func TestRankOrdering(t *testing.T) {
	table := model.StandingsTable{
		{TeamName: "D", TotalPoints: 10, PlacementPoints: 4, KillPoints: 6},
		{TeamName: "B", TotalPoints: 12, PlacementPoints: 6, KillPoints: 6},
		{TeamName: "C", TotalPoints: 10, PlacementPoints: 6, KillPoints: 4},
		{TeamName: "A", TotalPoints: 10, PlacementPoints: 4, KillPoints: 6},
	}
	Rank(table)

	want := []string{"B", "C", "A", "D"}
	got := make([]string, len(table))
	for i, r := range table {
		got[i] = r.TeamName
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestCombineIsDeterministic(t *testing.T) {
	merged := []model.MergedTeamResult{
		{TeamName: "A", PlacementPoint: 3, FinishPoint: 3},
		{TeamName: "B", PlacementPoint: 3, FinishPoint: 3},
		{TeamName: "C", PlacementPoint: 3, FinishPoint: 3},
	}
	first := Combine(nil, merged, 1, "g")
	second := Combine(nil, merged, 1, "g")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("identical input must rank identically (-first +second):\n%s", diff)
	}
	if first[0].TeamName != "A" || first[2].TeamName != "C" {
		t.Errorf("full ties break on team name: %v", []string{first[0].TeamName, first[1].TeamName, first[2].TeamName})
	}
}
