package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchd/internal/probe"
)

var errProbeFailed = errors.New("probe failed")

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Provoke known failures and verify how they are counted",
	Long: `probe runs a fixed set of failing commands against the server and
compares the change in INFO errorstats with the expected codes. It creates
and drops a temporary index. Run it against an otherwise idle server.`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := connect(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	results, err := probe.Run(ctx, store, probe.Scenarios(), logger)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RESULT\tSCENARIO\tDELTAS\tREPLY")
	failed := 0
	for _, r := range results {
		status := "ok"
		if !r.Passed {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", status, r.Scenario, formatDeltas(r.Deltas), r.Reply)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d scenarios", errProbeFailed, failed, len(results))
	}
	return nil
}

func formatDeltas(d map[string]int64) string {
	if len(d) == 0 {
		return "-"
	}
	s := ""
	for i, k := range probe.SortedKeys(d) {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s%+d", k, d[k])
	}
	return s
}
