package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func forgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forget [query]",
		Short: "Delete facts by fuzzy key/value match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			eng, err := buildEngine(ctx, logger)
			if err != nil {
				return fmt.Errorf("forget: %w", err)
			}
			defer func() { _ = eng.Close() }()

			removed, err := eng.facts.Forget(ctx, args[0])
			if err != nil {
				return fmt.Errorf("forget: %w", err)
			}
			if len(removed) == 0 {
				fmt.Println("Nothing matched.")
				return nil
			}
			for _, f := range removed {
				fmt.Printf("forgot %s = %s\n", f.Key, f.Value)
			}
			return nil
		},
	}
	return cmd
}
