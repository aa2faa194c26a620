package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"scrimtally/internal/model"
	"scrimtally/internal/normalize"
	"scrimtally/internal/report"
)

var (
	slotlistGroup string
	slotlistJSON  bool
)

var slotlistCmd = &cobra.Command{
	Use:   "slotlist <image|payload-file>...",
	Short: "Build a roster from slotlist screenshots",
	Long: `Extracts team/slot/player assignments from one or more slotlist
screenshots and stores them as a roster. The printed roster ID is what
'aggregate --roster' consumes.

With --json, arguments are extraction payload dump files (.json, .json.gz,
.json.zst) instead of image references, and no extraction service is called.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSlotlist,
}

func init() {
	slotlistCmd.Flags().StringVar(&slotlistGroup, "group", "", "group name stamped on the roster")
	slotlistCmd.Flags().BoolVar(&slotlistJSON, "json", false, "arguments are payload dump files, not images")
}

func runSlotlist(cmd *cobra.Command, args []string) error {
	payloads, err := slotlistPayloads(args)
	if err != nil {
		return err
	}

	roster := &model.Roster{
		ID:        uuid.NewString(),
		GroupName: slotlistGroup,
	}
	for i, payload := range payloads {
		teams, err := normalize.ParseRoster(payload)
		if err != nil {
			return fmt.Errorf("slotlist %d: %w", i+1, err)
		}
		roster.Teams = append(roster.Teams, teams...)
	}
	if len(roster.Teams) == 0 {
		return fmt.Errorf("no teams extracted from %d slotlist(s)", len(args))
	}

	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveRoster(roster); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}

	report.PrintRosterTable(os.Stdout, roster)
	fmt.Fprintf(os.Stdout, "\nRoster %s stored (%d teams).\n", roster.ID, len(roster.Teams))
	return nil
}

func slotlistPayloads(args []string) ([]string, error) {
	payloads := make([]string, 0, len(args))
	if slotlistJSON {
		for _, path := range args {
			p, err := readPayloadFile(path)
			if err != nil {
				return nil, err
			}
			payloads = append(payloads, p)
		}
		return payloads, nil
	}

	client, err := newExtractClient()
	if err != nil {
		return nil, err
	}
	for _, ref := range args {
		fmt.Fprintf(os.Stderr, "Extracting %s...\n", ref)
		p, err := client.ExtractRoster(ref)
		if err != nil {
			return nil, fmt.Errorf("extract slotlist: %w", err)
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}
