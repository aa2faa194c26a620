package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"scrimtally/internal/billing"
	"scrimtally/internal/csvcodec"
	"scrimtally/internal/extract"
	"scrimtally/internal/merge"
	"scrimtally/internal/model"
	"scrimtally/internal/normalize"
	"scrimtally/internal/report"
	"scrimtally/internal/standings"
	"scrimtally/internal/storage"
)

// aggregationFee is the flat per-aggregation feature fee, in credits.
const aggregationFee = 30

// feeCharger is swapped for a real billing backend when one is wired.
var feeCharger billing.FeeCharger = billing.NopCharger{}

var (
	aggRoster    string
	aggMatchID   string
	aggNamespace string
	aggMatches   int
	aggGroup     string
	aggWorkers   int
	aggUser      string
	aggOut       string
	aggJSON      bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <image|payload-file>...",
	Short: "Aggregate result screenshots into a standings table",
	Long: `Extracts ranked team results from one or more result screenshots,
binds them to the roster's team identities, scores them, and stores the
ranked standings table as canonical CSV under (match, namespace).

A (match, namespace) pair can only be aggregated once; retries with the
same identifier fail without overwriting the stored table.

With --json, arguments are extraction payload dump files (.json, .json.gz,
.json.zst) instead of image references, and no extraction service is called.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAggregate,
}

func init() {
	aggregateCmd.Flags().StringVar(&aggRoster, "roster", "", "roster ID (from 'slotlist') or path to a roster JSON file (required)")
	aggregateCmd.Flags().StringVar(&aggMatchID, "match", "", "match identifier (default: random UUID)")
	aggregateCmd.Flags().StringVar(&aggNamespace, "namespace", "default", "namespace the match identifier is scoped to")
	aggregateCmd.Flags().IntVar(&aggMatches, "matches-played", 1, "running total of matches played across the series")
	aggregateCmd.Flags().StringVar(&aggGroup, "group", "", "group name override (default: roster's group)")
	aggregateCmd.Flags().IntVar(&aggWorkers, "workers", extract.DefaultWorkers, "concurrent extraction workers")
	aggregateCmd.Flags().StringVar(&aggUser, "user", "", "acting user charged the aggregation fee")
	aggregateCmd.Flags().StringVar(&aggOut, "out", "", "also write the CSV to this path")
	aggregateCmd.Flags().BoolVar(&aggJSON, "json", false, "arguments are payload dump files, not images")
	_ = aggregateCmd.MarkFlagRequired("roster")
}

func runAggregate(cmd *cobra.Command, args []string) error {
	matchID := aggMatchID
	if matchID == "" {
		matchID = uuid.NewString()
	}

	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	// Check the guard before paying for extraction.
	exists, err := db.AggregationExists(matchID, aggNamespace)
	if err != nil {
		return fmt.Errorf("check aggregation: %w", err)
	}
	if exists {
		return fmt.Errorf("match %s already aggregated in namespace %s", matchID, aggNamespace)
	}

	roster, err := loadRoster(db, aggRoster)
	if err != nil {
		return err
	}
	groupName := aggGroup
	if groupName == "" {
		groupName = roster.GroupName
	}

	if err := chargeFee(aggUser); err != nil {
		return err
	}

	batch, err := gatherBatch(args, aggJSON, aggWorkers)
	if err != nil {
		return err
	}
	if len(batch.Records) == 0 {
		return fmt.Errorf("nothing to aggregate: no valid records in %d image(s)", batch.TotalImages)
	}

	merged, unidentified, warnings := merge.Merge(merge.FromRoster(roster), batch.Records)
	table := standings.Combine(nil, merged, aggMatches, groupName)

	csvText, err := csvcodec.Encode(table)
	if err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}

	summary := buildSummary(table, merged, unidentified, batch, len(roster.Teams), aggMatches, groupName)
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	winner := table.Winner()
	rec := model.AggregationRecord{
		MatchID:      matchID,
		Namespace:    aggNamespace,
		GroupName:    groupName,
		TotalMatches: aggMatches,
		Winner:       winner.TeamName,
		WinnerPoints: winner.TotalPoints,
		TeamCount:    len(table),
		CSV:          csvText,
		Summary:      string(summaryJSON),
	}
	if err := db.InsertAggregation(rec); err != nil {
		return err
	}

	if aggOut != "" {
		if err := os.WriteFile(aggOut, []byte(csvText), 0644); err != nil {
			return fmt.Errorf("write %s: %w", aggOut, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", aggOut)
	}

	report.PrintStandingsTable(os.Stdout, table)
	report.PrintSummary(os.Stdout, summary)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warn: %s\n", w)
	}
	fmt.Fprintf(os.Stdout, "Stored as match %s (namespace %s).\n", matchID, aggNamespace)
	return nil
}

// payloadFiles adapts payload dump files to the Extractor contract so the
// offline path runs through the same fan-out as live extraction.
type payloadFiles struct{}

func (payloadFiles) ExtractMatchResult(ref string) (string, error) { return readPayloadFile(ref) }
func (payloadFiles) ExtractRoster(ref string) (string, error)      { return readPayloadFile(ref) }

func gatherBatch(args []string, jsonMode bool, workers int) (extract.BatchResult, error) {
	if jsonMode {
		return extract.RunBatch(payloadFiles{}, args, workers), nil
	}
	client, err := newExtractClient()
	if err != nil {
		return extract.BatchResult{}, err
	}
	fmt.Fprintf(os.Stderr, "Extracting %d image(s) with %d worker(s)...\n", len(args), workers)
	return extract.RunBatch(client, args, workers), nil
}

// chargeFee runs the fee gate. An empty user skips it; billing is scoped to
// identified accounts.
func chargeFee(user string) error {
	if user == "" {
		return nil
	}
	if err := feeCharger.ChargeFeatureFee(user, aggregationFee); err != nil {
		return fmt.Errorf("charge aggregation fee: %w", err)
	}
	return nil
}

// buildSummary assembles the structured counterpart of the CSV artifact.
func buildSummary(table model.StandingsTable, merged []model.MergedTeamResult,
	unidentified []string, batch extract.BatchResult, totalTeams, totalMatches int, groupName string) model.Summary {

	matched := 0
	for _, m := range merged {
		if m.MatchFound {
			matched++
		}
	}
	rate := 0.0
	if len(merged) > 0 {
		rate = float64(matched) / float64(len(merged)) * 100
	}

	s := model.Summary{
		TotalMatches:          totalMatches,
		GroupName:             groupName,
		TeamsProcessed:        matched,
		TotalTeams:            totalTeams,
		UnidentifiedTeams:     unidentified,
		ImageProcessingErrors: batch.Errors,
		AccuracyMetrics: model.AccuracyMetrics{
			ImagesProcessed: batch.ImagesOK,
			TotalImages:     batch.TotalImages,
			TeamMatchRate:   rate,
		},
	}
	if w := table.Winner(); w != nil {
		s.Winner = w.TeamName
		s.WinnerPoints = w.TotalPoints
	}
	return s
}

// loadRoster resolves --roster: a stored roster ID first, then a path to a
// roster JSON file.
func loadRoster(db *storage.DB, ref string) (*model.Roster, error) {
	r, err := db.GetRoster(ref)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if r != nil {
		return r, nil
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("roster %q: not a stored roster ID and not a readable file", ref)
	}
	var fromFile model.Roster
	if err := json.Unmarshal(data, &fromFile); err != nil || len(fromFile.Teams) == 0 {
		teams, perr := normalize.ParseRoster(string(data))
		if perr != nil {
			return nil, fmt.Errorf("parse roster file %s: %w", ref, perr)
		}
		fromFile.Teams = teams
	}
	if fromFile.ID == "" {
		fromFile.ID = ref
	}
	return &fromFile, nil
}
