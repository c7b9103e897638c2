package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func askCmd() *cobra.Command {
	var showReasoning bool

	cmd := &cobra.Command{
		Use:   "ask [utterance]",
		Short: "Process a single utterance and print the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			eng, err := buildEngine(ctx, logger)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer func() { _ = eng.Close() }()

			answer := eng.router.Respond(ctx, args[0])
			fmt.Printf("%s  (confidence %.2f)\n", answer.Content, answer.Confidence)
			if showReasoning {
				for _, step := range answer.Reasoning {
					fmt.Printf("  - %s\n", step)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showReasoning, "reasoning", false, "print reasoning steps")
	return cmd
}
