package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/livinlefevreloca/syncbridge/internal/coordinator"
)

var syncCmd = &cobra.Command{
	Use:   "sync <account>",
	Short: "Run one sync cycle for an account and wait for the worker",
	Long: `Runs a single sync cycle: checks the worker, the database and the
account's credentials, dispatches one update command and waits for it to
complete. An interrupt ends the wait and the cycle is recorded as
interrupted. Exits with status 1 when the cycle reports any failure.`,
	Args: cobra.ExactArgs(1),
	RunE: runSyncCmd,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSyncCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.startSync(ctx, cfg); err != nil {
		return err
	}

	result := a.syncAccount(ctx, args[0])

	if err := printResult(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if result.HasError() {
		return exitError{code: 1}
	}
	return nil
}

type resultView struct {
	Account       string `json:"account"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Status        string `json:"status"`
	AuthFailures  int    `json:"auth_failures"`
	IOFailures    int    `json:"io_failures"`
	ParseFailures int    `json:"parse_failures"`
	Iterations    int    `json:"iterations"`
	Duration      string `json:"duration"`
}

func printResult(w io.Writer, r coordinator.CycleResult) error {
	view := resultView{
		Account:       r.Account,
		CorrelationID: r.CorrelationID,
		Status:        r.Status.String(),
		AuthFailures:  r.AuthFailures,
		IOFailures:    r.IOFailures,
		ParseFailures: r.ParseFailures,
		Iterations:    r.Iterations,
		Duration:      r.Duration().Round(time.Millisecond).String(),
	}

	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	_, err := fmt.Fprintf(w, "%s: %s (auth=%d io=%d parse=%d) in %s\n",
		view.Account, view.Status,
		view.AuthFailures, view.IOFailures, view.ParseFailures,
		view.Duration)
	return err
}
