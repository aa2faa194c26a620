package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"scrimtally/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintStandingsTable renders the ranked standings. Rows flagged as
// synthesized teams are marked with "*", rows that received a result this
// round with "+".
func PrintStandingsTable(w io.Writer, table model.StandingsTable) {
	t := newTable(w)
	t.Header(" ", "#", "TEAM", "WIN", "MP", "PLACE_PT", "KILL_PT", "TOTAL", "GROUP", "SLOT")

	for i, row := range table {
		marker := " "
		if row.IsNewTeam {
			marker = "*"
		} else if row.HasNewResult {
			marker = "+"
		}
		t.Append(
			marker,
			strconv.Itoa(i+1),
			row.TeamName,
			strconv.Itoa(row.Wins),
			strconv.Itoa(row.MatchesPlayed),
			strconv.Itoa(row.PlacementPoints),
			strconv.Itoa(row.KillPoints),
			strconv.Itoa(row.TotalPoints),
			row.GroupName,
			row.SlotNumber,
		)
	}
	t.Render()
}

// PrintRosterTable renders a roster's slot assignments.
func PrintRosterTable(w io.Writer, r *model.Roster) {
	t := newTable(w)
	t.Header("SLOT", "TEAM", "PLAYERS")

	for _, team := range r.Teams {
		slot := "—"
		if team.Slot != 0 {
			slot = strconv.Itoa(team.Slot)
		}
		names := ""
		for i, p := range team.Players {
			if i > 0 {
				names += ", "
			}
			names += p.Name
		}
		t.Append(slot, team.Name, names)
	}
	t.Render()
}

// PrintSummary prints the structured aggregation summary.
func PrintSummary(w io.Writer, s model.Summary) {
	fmt.Fprintf(w, "\nGroup: %s  |  Matches: %d  |  Teams: %d/%d processed  |  Winner: %s (%d pts)\n",
		orDash(s.GroupName), s.TotalMatches, s.TeamsProcessed, s.TotalTeams,
		orDash(s.Winner), s.WinnerPoints)
	fmt.Fprintf(w, "Images: %d/%d usable  |  Team match rate: %.1f%%\n",
		s.AccuracyMetrics.ImagesProcessed, s.AccuracyMetrics.TotalImages,
		s.AccuracyMetrics.TeamMatchRate)

	if len(s.UnidentifiedTeams) > 0 {
		fmt.Fprintf(w, "Unidentified teams (review):\n")
		for _, name := range s.UnidentifiedTeams {
			fmt.Fprintf(w, "  * %s\n", name)
		}
	}
	if len(s.ImageProcessingErrors) > 0 {
		fmt.Fprintf(w, "Image processing errors:\n")
		for _, e := range s.ImageProcessingErrors {
			fmt.Fprintf(w, "  [image %d] %s\n", e.ImageIndex, e.Error)
		}
	}
	fmt.Fprintln(w)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
