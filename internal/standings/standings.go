// Package standings combines merged round results into the running
// standings table.
package standings

import (
	"sort"

	"scrimtally/internal/model"
)

// Combine folds one round of merged results into an existing standings table
// (which may be empty for a fresh run) and returns the re-ranked table.
//
// matchesPlayed is the externally supplied running total of rounds played
// across the whole series; it is stamped onto every row that received a new
// result this round, not incremented per row. Existing rows without a new
// result are carried forward unchanged. TotalPoints is recomputed on every
// touched row; it is a structural invariant, never trusted from input.
//
// Output order is deterministic: totalPoints desc, then placementPoints
// desc, then killPoints desc, then teamName asc.
func Combine(existing []model.StandingsRow, merged []model.MergedTeamResult, matchesPlayed int, groupName string) model.StandingsTable {
	table := make(model.StandingsTable, len(existing))
	index := make(map[string]int, len(existing))
	for i, row := range existing {
		row.HasNewResult = false
		row.IsNewTeam = false
		table[i] = row
		index[row.TeamName] = i
	}

	for _, m := range merged {
		i, ok := index[m.TeamName]
		if !ok {
			table = append(table, model.StandingsRow{
				TeamName:        m.TeamName,
				Wins:            m.Win,
				MatchesPlayed:   matchesPlayed,
				PlacementPoints: m.PlacementPoint,
				KillPoints:      m.FinishPoint,
				TotalPoints:     m.PlacementPoint + m.FinishPoint,
				GroupName:       groupName,
				SlotNumber:      m.SlotNumber,
				HasNewResult:    true,
				IsNewTeam:       m.IsNewTeam,
			})
			index[m.TeamName] = len(table) - 1
			continue
		}

		row := &table[i]
		row.Wins += m.Win
		row.PlacementPoints += m.PlacementPoint
		row.KillPoints += m.FinishPoint
		row.TotalPoints = row.PlacementPoints + row.KillPoints
		row.MatchesPlayed = matchesPlayed
		row.HasNewResult = true
		if row.GroupName == "" {
			row.GroupName = groupName
		}
		if row.SlotNumber == "" {
			row.SlotNumber = m.SlotNumber
		}
	}

	Rank(table)
	return table
}

// Rank sorts a table into canonical order in place. Two runs over identical
// input must produce identical row order, so every tie breaks down to the
// lexicographic team name.
func Rank(table model.StandingsTable) {
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.PlacementPoints != b.PlacementPoints {
			return a.PlacementPoints > b.PlacementPoints
		}
		if a.KillPoints != b.KillPoints {
			return a.KillPoints > b.KillPoints
		}
		return a.TeamName < b.TeamName
	})
}
