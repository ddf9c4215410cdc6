package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchd/internal/probe"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the error counters",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print as a JSON object")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := connect(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.ErrorStats(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	if len(stats) == 0 {
		fmt.Fprintln(out, "no errors recorded")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tCOUNT")
	for _, k := range probe.SortedKeys(stats) {
		fmt.Fprintf(tw, "%s\t%d\n", k, stats[k])
	}
	return tw.Flush()
}
