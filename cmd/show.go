package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scrimtally/internal/csvcodec"
	"scrimtally/internal/model"
	"scrimtally/internal/report"
)

var showNamespace string

var showCmd = &cobra.Command{
	Use:   "show <match-id>",
	Short: "Show a stored aggregation",
	Long:  "Re-render the standings table and summary for a stored aggregation from its canonical CSV.",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showNamespace, "namespace", "default", "namespace the match identifier is scoped to")
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := db.GetAggregation(args[0], showNamespace)
	if err != nil {
		return fmt.Errorf("load aggregation: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("no aggregation for match %s in namespace %s", args[0], showNamespace)
	}

	table, err := csvcodec.Decode(rec.CSV)
	if err != nil {
		return fmt.Errorf("decode stored csv: %w", err)
	}

	report.PrintStandingsTable(os.Stdout, table)

	var summary model.Summary
	if rec.Summary != "" {
		if err := json.Unmarshal([]byte(rec.Summary), &summary); err != nil {
			return fmt.Errorf("decode stored summary: %w", err)
		}
		report.PrintSummary(os.Stdout, summary)
	}
	fmt.Fprintf(os.Stdout, "Aggregated %s (namespace %s, %d teams).\n",
		rec.CreatedAt, rec.Namespace, rec.TeamCount)
	return nil
}
