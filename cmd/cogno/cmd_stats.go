package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show engine statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			eng, err := buildEngine(ctx, logger)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			defer func() { _ = eng.Close() }()

			memStats := eng.memory.Stats()
			fmt.Printf("Session:            %s\n", sessionID)
			fmt.Printf("Facts:              %d\n", eng.facts.Len())
			fmt.Printf("Knowledge entries:  %d\n", eng.knowledge.Len())
			fmt.Printf("Sessions in memory: %d (%d records)\n", memStats.Sessions, memStats.TotalRecords)
			fmt.Printf("Session importance: %.2f\n", eng.memory.Importance(sessionID))
			return nil
		},
	}
	return cmd
}
