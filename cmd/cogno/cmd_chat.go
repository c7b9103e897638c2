package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkovacs-dev/cogno/internal/memory"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			eng, err := buildEngine(ctx, logger)
			if err != nil {
				return fmt.Errorf("chat: %w", err)
			}
			defer func() { _ = eng.Close() }()

			// Background eviction, gated by the turn lock.
			sweeper := memory.NewSweeper(eng.memory, eng.router.TurnGate(), cfg.Memory.SweepInterval(), logger)
			go sweeper.Run(ctx)

			fmt.Println("cogno ready. Type a message, or /quit to exit.")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "/quit" || line == "/exit" {
					break
				}
				if ctx.Err() != nil {
					break
				}

				answer := eng.router.Respond(ctx, line)
				fmt.Printf("%s  (confidence %.2f)\n", answer.Content, answer.Confidence)
			}
			return scanner.Err()
		},
	}
	return cmd
}
