package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkovacs-dev/cogno/internal/memory"
)

func sweepCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evict stale, unimportant sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			eng, err := buildEngine(ctx, logger)
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			defer func() { _ = eng.Close() }()

			sweeper := memory.NewSweeper(eng.memory, eng.router.TurnGate(), cfg.Memory.SweepInterval(), logger)
			report, err := sweeper.RunOnce(ctx, dryRun)
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}

			if dryRun {
				fmt.Printf("Would evict %d session(s).\n", report.EvictedSessions)
			} else {
				fmt.Printf("Evicted %d session(s).\n", report.EvictedSessions)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report without deleting")
	return cmd
}
