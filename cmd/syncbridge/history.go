package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <account>",
	Short: "Show the most recent sync cycles of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLimit <= 0 {
			return fmt.Errorf("--limit must be positive")
		}

		a, err := openApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		cycles, err := a.database.ListSyncCycles(cmd.Context(), args[0], historyLimit)
		if err != nil {
			return err
		}

		if jsonOut {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cycles)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tSTATUS\tAUTH\tIO\tPARSE\tWAITED")
		for _, c := range cycles {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
				c.StartedAt.Local().Format(time.DateTime),
				c.Status,
				c.AuthFailures, c.IOFailures, c.ParseFailures,
				c.FinishedAt.Sub(c.StartedAt).Round(time.Millisecond))
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of cycles to show")
	rootCmd.AddCommand(historyCmd)
}
