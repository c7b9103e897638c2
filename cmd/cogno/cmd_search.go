package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkovacs-dev/cogno/pkg/textutil"
)

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the knowledge store by relevance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			eng, err := buildEngine(ctx, logger)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			defer func() { _ = eng.Close() }()

			results := eng.knowledge.Search(args[0])
			if len(results) == 0 {
				fmt.Println("No results found.")
				return nil
			}
			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}
			for i, r := range results {
				fmt.Printf("[%d] (%.2f) [%s] %s — %s\n",
					i+1, r.Score, r.Entry.Category, r.Entry.Term, textutil.Truncate(r.Entry.Payload, 100))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "max results")
	return cmd
}
