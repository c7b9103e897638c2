package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func recallCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recall [keyword]",
		Short: "Recall conversation records containing a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			eng, err := buildEngine(ctx, logger)
			if err != nil {
				return fmt.Errorf("recall: %w", err)
			}
			defer func() { _ = eng.Close() }()

			records := eng.memory.Recall(sessionID, args[0], limit)
			if len(records) == 0 {
				fmt.Println("No records found.")
				return nil
			}
			for _, r := range records {
				fmt.Printf("[%s] %s: %s\n", r.Timestamp.Format("15:04:05"), r.Role, r.Content)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 5, "max records")
	return cmd
}
