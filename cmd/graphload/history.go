package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent ingestion runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No recorded runs")
			return nil
		}

		for _, run := range runs {
			fmt.Printf("%s  %-9s  %s\n", run.StartedAt.Format(time.RFC3339), run.Status, run.SourceFile)
			fmt.Printf("  run %s: %d/%d entities created/updated, %d relationships created, %d row errors (%s)\n",
				run.ID, run.EntitiesCreated, run.EntitiesUpdated,
				run.RelationshipsCreated, run.RowErrors, run.Duration.Round(time.Millisecond))
			if run.Error != "" {
				fmt.Printf("  error: %s\n", run.Error)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum runs to list")
}
