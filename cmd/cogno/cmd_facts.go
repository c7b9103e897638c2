package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func factsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "List the stored personal facts",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			eng, err := buildEngine(ctx, logger)
			if err != nil {
				return fmt.Errorf("facts: %w", err)
			}
			defer func() { _ = eng.Close() }()

			list := eng.facts.List()
			if len(list) == 0 {
				fmt.Println("No facts stored.")
				return nil
			}
			for _, f := range list {
				fmt.Printf("%-14s %-24s importance=%.2f source=%s %s\n",
					f.Key, f.Value, f.Importance, f.Source, f.Timestamp.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	return cmd
}
