package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pharmakb/graphload/internal/graph"
)

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all nodes of one entity type from the graph store",
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, _ := cmd.Flags().GetString("entity-type")
		force, _ := cmd.Flags().GetBool("force")

		if entityType == "" {
			return fmt.Errorf("--entity-type is required")
		}
		if !force {
			return fmt.Errorf("wipe deletes %s nodes and their relationships; re-run with --force to confirm", entityType)
		}

		ctx := context.Background()
		store, err := graph.NewNeo4jStore(ctx,
			cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database, logger)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		deleted, err := store.DeleteEntities(ctx, entityType)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d %s node(s)\n", deleted, entityType)
		return nil
	},
}

func init() {
	wipeCmd.Flags().String("entity-type", "", "node label to delete (required)")
	wipeCmd.Flags().Bool("force", false, "confirm deletion")
}
