package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/livinlefevreloca/syncbridge/internal/coordinator"
	"github.com/livinlefevreloca/syncbridge/internal/stats"
	"github.com/livinlefevreloca/syncbridge/internal/trigger"
)

var runOnce bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run sync cycles for every account on the configured schedule",
	Long: `Starts the worker and runs one sync cycle per account at every
activation of trigger.schedule until interrupted. Results are written to
the cycle history.`,
	Args: cobra.NoArgs,
	RunE: runRunCmd,
}

func init() {
	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single round immediately and exit")
	rootCmd.AddCommand(runCmd)
}

func runRunCmd(cmd *cobra.Command, args []string) error {
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

	collector, err := stats.NewCollector(cfg.Stats, stats.LogReporter{Logger: a.logger}, a.logger)
	if err != nil {
		return err
	}
	collector.Start()
	defer func() {
		if err := collector.Stop(); err != nil {
			a.logger.Warn("stats collector stop failed", "error", err)
		}
	}()

	trig, err := trigger.New(cfg.Trigger, a.coord, a.context, sinks{a.recorder, collector}, a.logger)
	if err != nil {
		return err
	}

	if runOnce {
		results, err := trig.RunOnce(ctx)
		for _, r := range results {
			if perr := printResult(cmd.OutOrStdout(), r); perr != nil {
				return perr
			}
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	a.logger.Info("syncbridge is running", "schedule", cfg.Trigger.Schedule)
	if err := trig.Run(ctx); err != nil {
		return err
	}
	a.logger.Info("shutting down gracefully")
	return nil
}

// sinks hands each result to every sink and returns the first error
type sinks []trigger.Sink

func (s sinks) Record(result coordinator.CycleResult) error {
	var first error
	for _, sink := range s {
		if err := sink.Record(result); err != nil && first == nil {
			first = err
		}
	}
	return first
}
