package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listRosters bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored aggregations",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listRosters, "rosters", false, "list stored rosters instead")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	if listRosters {
		rosters, err := db.ListRosters()
		if err != nil {
			return fmt.Errorf("list rosters: %w", err)
		}
		if len(rosters) == 0 {
			fmt.Fprintln(os.Stdout, "No rosters stored yet. Run 'scrimtally slotlist <image>' to add one.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-16s  %s\n", "ROSTER", "GROUP", "TEAMS")
		for _, r := range rosters {
			fmt.Fprintf(os.Stdout, "%-36s  %-16s  %d\n", r.ID, r.GroupName, len(r.Teams))
		}
		return nil
	}

	aggs, err := db.ListAggregations()
	if err != nil {
		return fmt.Errorf("list aggregations: %w", err)
	}
	if len(aggs) == 0 {
		fmt.Fprintln(os.Stdout, "No aggregations stored yet. Run 'scrimtally aggregate' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-12s  %-12s  %7s  %5s  %-20s  %s\n",
		"MATCH", "NAMESPACE", "GROUP", "MATCHES", "TEAMS", "WINNER", "DATE")
	for _, a := range aggs {
		fmt.Fprintf(os.Stdout, "%-36s  %-12s  %-12s  %7d  %5d  %-20s  %s\n",
			a.MatchID, a.Namespace, a.GroupName, a.TotalMatches, a.TeamCount,
			a.Winner, a.CreatedAt)
	}
	return nil
}
