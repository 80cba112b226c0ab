package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archmap-dev/archmap/internal/pipeline"
	"github.com/archmap-dev/archmap/internal/store"
)

func RunFeatureSave(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveRootPath(args)
	if err != nil {
		return err
	}

	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return fmt.Errorf("failed to read --file flag: %w", err)
	}
	by, err := parseSource(cmd)
	if err != nil {
		return err
	}
	replace, err := cmd.Flags().GetBool("replace")
	if err != nil {
		return fmt.Errorf("failed to read --replace flag: %w", err)
	}
	writeGraph, err := cmd.Flags().GetBool("graph")
	if err != nil {
		return fmt.Errorf("failed to read --graph flag: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}

	proposals, err := loadProposals(file)
	if err != nil {
		return err
	}

	summary, err := pipeline.SaveFeatures(proposals, pipeline.FeatureOptions{
		RootPath:   rootPath,
		By:         by,
		Replace:    replace,
		WriteGraph: writeGraph,
		Cache:      store.NewRecordCache(1024),
	})
	if err != nil {
		var batchErr *pipeline.BatchValidationError
		if errors.As(err, &batchErr) {
			for _, problem := range batchErr.Problems {
				fmt.Fprintf(os.Stderr, "error: %s\n", problem)
			}
			return fmt.Errorf("feature batch rejected; nothing was written")
		}
		return err
	}

	reportWarnings(summary.Warnings)
	reportRecordErrors(summary.RecordErrors)

	if asJSON {
		return printJSON(summary)
	}
	fmt.Printf("feature save: %d proposed: %d created, %d updated, %d touched, %d unchanged, %d ignored\n",
		summary.Proposed, summary.Created, summary.Updated, summary.Touched, summary.Unchanged, summary.Ignored)
	return nil
}

func RunFeatureList(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveRootPath(args)
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}

	st := store.Open(rootPath, nil)
	features, report := st.LoadFeatures()
	reportWarnings(report.Warnings)
	reportRecordErrors(report.Errors)

	if asJSON {
		return printJSON(features)
	}
	if len(features) == 0 {
		fmt.Println("no feature records")
		return nil
	}
	for _, f := range features {
		fmt.Printf("%-24s %-10s %-8s v%d  clusters=%s\n",
			f.ID, f.Status, f.Source, f.Metadata.Version, strings.Join(f.Clusters, ","))
	}
	return nil
}

func parseSource(cmd *cobra.Command) (store.FeatureSource, error) {
	value, err := cmd.Flags().GetString("by")
	if err != nil {
		return "", fmt.Errorf("failed to read --by flag: %w", err)
	}
	switch source := store.FeatureSource(strings.ToLower(strings.TrimSpace(value))); source {
	case store.SourceAuto, store.SourceAI, store.SourceManual:
		return source, nil
	default:
		return "", fmt.Errorf("unsupported --by value %q (expected auto, ai, or manual)", value)
	}
}

func loadProposals(path string) ([]store.FeatureRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proposal batch %s: %w", path, err)
	}
	var proposals []store.FeatureRecord
	if err := json.Unmarshal(data, &proposals); err != nil {
		return nil, fmt.Errorf("failed to parse proposal batch %s: %w", path, err)
	}
	return proposals, nil
}
