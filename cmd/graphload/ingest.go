package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pharmakb/graphload/internal/graph"
	"github.com/pharmakb/graphload/internal/history"
	"github.com/pharmakb/graphload/internal/ingest"
	"github.com/pharmakb/graphload/internal/mapping"
	"github.com/pharmakb/graphload/internal/tabular"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Load a tabular file into the graph store",
	Long: `Load a CSV/TSV/JSON/XLSX file into Neo4j as typed nodes and relationships.

Without --mapping the schema is inferred from column names; --preview shows
the resulting mapping and validation report without writing anything.

Examples:
  graphload ingest drugs.csv --preview
  graphload ingest drugs.csv --save-template drugs.yaml
  graphload ingest drugs.csv --mapping drugs.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("preview", false, "show the mapping and validation report, write nothing")
	ingestCmd.Flags().String("mapping", "", "mapping template to use instead of inference")
	ingestCmd.Flags().String("save-template", "", "write the mapping to this path for later reuse")
	ingestCmd.Flags().String("format", "", "format hint: csv, tsv, json, or xlsx (default: detect)")
	ingestCmd.Flags().Int("batch-size", 0, "records per write batch (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	file := args[0]

	preview, _ := cmd.Flags().GetBool("preview")
	mappingPath, _ := cmd.Flags().GetString("mapping")
	savePath, _ := cmd.Flags().GetString("save-template")
	formatHint, _ := cmd.Flags().GetString("format")
	batchSize, _ := cmd.Flags().GetInt("batch-size")

	loader := tabular.NewLoader(logger)
	rs, err := loader.Load(file, tabular.Format(formatHint))
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %s: %d columns, %d rows\n", file, len(rs.Columns), len(rs.Rows))

	var spec *mapping.Spec
	if mappingPath != "" {
		spec, err = mapping.LoadTemplate(mappingPath)
		if err != nil {
			return err
		}
		fmt.Printf("Using mapping template %s\n", mappingPath)
	} else {
		spec = mapping.NewMapper(mapping.DefaultCatalog()).Infer(rs)
		fmt.Println("Inferred mapping from column names")
	}

	if savePath != "" {
		if err := mapping.SaveTemplate(spec, savePath); err != nil {
			return err
		}
		fmt.Printf("Mapping template written to %s\n", savePath)
	}

	printSpec(spec)

	validation := mapping.Validate(rs, spec)
	if preview {
		// Preview never writes, and always exits cleanly even when the
		// mapping has problems.
		printValidation(validation)
		return nil
	}
	if !validation.OK() {
		printValidation(validation)
		return fmt.Errorf("mapping validation failed with %d error(s)", len(validation.Errors))
	}

	store, err := graph.NewNeo4jStore(ctx,
		cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	if batchSize <= 0 {
		batchSize = cfg.Ingest.BatchSize
	}
	engine := ingest.NewEngine(store, logger, ingest.Options{
		BatchSize:       batchSize,
		WritesPerSecond: cfg.Ingest.WritesPerSecond,
	})

	startedAt := time.Now()
	result, runErr := engine.Ingest(ctx, rs, spec)
	recordRun(ctx, file, spec.Name, startedAt, result, runErr)
	if runErr != nil {
		return runErr
	}

	fmt.Printf("\nIngestion complete (run %s, %s)\n", result.RunID, result.Duration.Round(time.Millisecond))
	fmt.Printf("  Entities:      %d created, %d updated\n", result.EntitiesCreated, result.EntitiesUpdated)
	fmt.Printf("  Relationships: %d created, %d already present\n", result.RelationshipsCreated, result.RelationshipsUpdated)
	if result.RowErrorCount() > 0 {
		fmt.Printf("  Skipped rows:  %d\n", result.RowErrorCount())
		for _, msg := range result.RowErrors {
			fmt.Printf("    - %s\n", msg)
		}
	}
	return nil
}

// recordRun writes the run to the history ledger. Ledger problems are
// logged, never fatal: the graph write already succeeded or failed on its
// own terms.
func recordRun(ctx context.Context, file, mappingName string, startedAt time.Time, result *ingest.Result, runErr error) {
	if !cfg.History.Enabled || result == nil {
		return
	}

	store, err := openHistoryStore()
	if err != nil {
		logger.WithError(err).Warn("History ledger unavailable, run not recorded")
		return
	}
	defer store.Close()

	run := &history.Run{
		ID:                   result.RunID,
		SourceFile:           file,
		MappingName:          mappingName,
		EntitiesCreated:      result.EntitiesCreated,
		EntitiesUpdated:      result.EntitiesUpdated,
		RelationshipsCreated: result.RelationshipsCreated,
		RelationshipsUpdated: result.RelationshipsUpdated,
		RowErrors:            result.RowErrorCount(),
		Status:               "completed",
		StartedAt:            startedAt,
		Duration:             result.Duration,
	}
	if runErr != nil {
		run.Status = "failed"
		run.Error = runErr.Error()
	}
	if err := store.SaveRun(ctx, run); err != nil {
		logger.WithError(err).Warn("Failed to record run in history ledger")
	}
}

func openHistoryStore() (history.Store, error) {
	switch cfg.History.Driver {
	case "postgres":
		return history.NewPostgresStore(cfg.History.DSN, logger)
	default:
		return history.NewSQLiteStore(cfg.History.Path, logger)
	}
}

func printSpec(spec *mapping.Spec) {
	fmt.Println("\nMapping:")
	if spec.IsEmpty() {
		fmt.Println("  (no entities identified)")
	}
	for _, typ := range spec.EntityTypes() {
		rule := spec.Entities[typ]
		fmt.Printf("  %s <- %s\n", typ, rule.IdentifierColumn)

		props := make([]string, 0, len(rule.Properties))
		for p := range rule.Properties {
			props = append(props, p)
		}
		sort.Strings(props)
		for _, p := range props {
			fmt.Printf("    .%s <- %s\n", p, rule.Properties[p])
		}
	}
	for _, rel := range spec.Relationships {
		suffix := ""
		if rel.Delimiter != "" {
			suffix = fmt.Sprintf(" (split on %q)", rel.Delimiter)
		}
		fmt.Printf("  (%s)-[%s]->(%s) <- %s%s\n",
			rel.SourceType, rel.Type, rel.TargetType, rel.Column, suffix)
	}
}

func printValidation(result mapping.ValidationResult) {
	if result.OK() {
		fmt.Println("\nValidation: OK")
		return
	}
	fmt.Printf("\nValidation: %d error(s)\n", len(result.Errors))
	for _, e := range result.Errors {
		fmt.Printf("  - %s\n", e)
	}
	fmt.Println("Fix the mapping template (or rename the columns) and re-run.")
}
