package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"scrimtally/internal/csvcodec"
	"scrimtally/internal/extract"
	"scrimtally/internal/merge"
	"scrimtally/internal/model"
	"scrimtally/internal/report"
	"scrimtally/internal/standings"
)

var (
	combineCSV       string
	combineMatchID   string
	combineNamespace string
	combineMatches   int
	combineGroup     string
	combineWorkers   int
	combineUser      string
	combineOut       string
	combineJSON      bool
)

var combineCmd = &cobra.Command{
	Use:   "combine <image|payload-file>...",
	Short: "Merge a new round into an existing standings CSV",
	Long: `Decodes an existing standings CSV, extracts a new round of results,
accumulates the points onto the known teams, and re-ranks the table. Teams
absent from the new round are carried forward unchanged. The result is
stored under the new match identifier like a fresh aggregation.

The existing CSV is validated before any extraction work: a missing or
unrecognized header fails the run immediately.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCombine,
}

func init() {
	combineCmd.Flags().StringVar(&combineCSV, "csv", "", "existing standings CSV to merge into (required)")
	combineCmd.Flags().StringVar(&combineMatchID, "match", "", "match identifier for this round (default: random UUID)")
	combineCmd.Flags().StringVar(&combineNamespace, "namespace", "default", "namespace the match identifier is scoped to")
	combineCmd.Flags().IntVar(&combineMatches, "matches-played", 0, "new running total of matches played (required)")
	combineCmd.Flags().StringVar(&combineGroup, "group", "", "group name for teams not yet in the table")
	combineCmd.Flags().IntVar(&combineWorkers, "workers", extract.DefaultWorkers, "concurrent extraction workers")
	combineCmd.Flags().StringVar(&combineUser, "user", "", "acting user charged the aggregation fee")
	combineCmd.Flags().StringVar(&combineOut, "out", "", "output CSV path (default: overwrite --csv)")
	combineCmd.Flags().BoolVar(&combineJSON, "json", false, "arguments are payload dump files, not images")
	_ = combineCmd.MarkFlagRequired("csv")
	_ = combineCmd.MarkFlagRequired("matches-played")
}

func runCombine(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(combineCSV)
	if err != nil {
		return fmt.Errorf("read %s: %w", combineCSV, err)
	}
	existing, err := csvcodec.Decode(string(data))
	if err != nil {
		return fmt.Errorf("decode %s: %w", combineCSV, err)
	}

	matchID := combineMatchID
	if matchID == "" {
		matchID = uuid.NewString()
	}

	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	exists, err := db.AggregationExists(matchID, combineNamespace)
	if err != nil {
		return fmt.Errorf("check aggregation: %w", err)
	}
	if exists {
		return fmt.Errorf("match %s already aggregated in namespace %s", matchID, combineNamespace)
	}

	if err := chargeFee(combineUser); err != nil {
		return err
	}

	batch, err := gatherBatch(args, combineJSON, combineWorkers)
	if err != nil {
		return err
	}
	if len(batch.Records) == 0 {
		return fmt.Errorf("nothing to combine: no valid records in %d image(s)", batch.TotalImages)
	}

	merged, unidentified, warnings := merge.Merge(merge.FromStandings(existing), batch.Records)
	table := standings.Combine(existing, merged, combineMatches, combineGroup)

	csvText, err := csvcodec.Encode(table)
	if err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}

	summary := buildSummary(table, merged, unidentified, batch, len(existing), combineMatches, combineGroup)
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	winner := table.Winner()
	rec := model.AggregationRecord{
		MatchID:      matchID,
		Namespace:    combineNamespace,
		GroupName:    combineGroup,
		TotalMatches: combineMatches,
		Winner:       winner.TeamName,
		WinnerPoints: winner.TotalPoints,
		TeamCount:    len(table),
		CSV:          csvText,
		Summary:      string(summaryJSON),
	}
	if err := db.InsertAggregation(rec); err != nil {
		return err
	}

	outPath := combineOut
	if outPath == "" {
		outPath = combineCSV
	}
	if err := os.WriteFile(outPath, []byte(csvText), 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	report.PrintStandingsTable(os.Stdout, table)
	report.PrintSummary(os.Stdout, summary)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warn: %s\n", w)
	}
	fmt.Fprintf(os.Stdout, "Wrote %s and stored as match %s (namespace %s).\n", outPath, matchID, combineNamespace)
	return nil
}
