package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archmap-dev/archmap/internal/pipeline"
	"github.com/archmap-dev/archmap/internal/store"
)

func RunAnalyze(cmd *cobra.Command, args []string) error {
	return runPipeline(cmd, args, false)
}

func RunStatus(cmd *cobra.Command, args []string) error {
	return runPipeline(cmd, args, true)
}

func runPipeline(cmd *cobra.Command, args []string, dryRun bool) error {
	rootPath, err := resolveRootPath(args)
	if err != nil {
		return err
	}
	threshold, err := parseThreshold(cmd)
	if err != nil {
		return err
	}
	sourceRoots, err := parseSourceRoots(cmd)
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	ignoreRules, err := LoadIgnoreRules(rootPath)
	if err != nil {
		return err
	}

	summary, err := pipeline.Run(pipeline.Options{
		RootPath:    rootPath,
		SourceRoots: sourceRoots,
		Threshold:   threshold,
		IgnoreRules: ignoreRules,
		Cache:       store.NewRecordCache(1024),
		DryRun:      dryRun,
	})
	if err != nil {
		return err
	}

	reportWarnings(summary.Warnings)
	reportRecordErrors(summary.RecordErrors)

	if asJSON {
		return printJSON(summary)
	}

	fmt.Printf("%s: %d files, %d clusters (%d matched, %d renamed)\n",
		summary.Mode, summary.FilesScanned, summary.Clusters, summary.Matched, summary.Renamed)
	if len(summary.Orphaned) > 0 {
		fmt.Printf("orphaned cluster ids: %v\n", summary.Orphaned)
	}
	if dryRun {
		return nil
	}
	fmt.Printf("wrote %d cluster records", summary.ClustersWritten)
	if summary.GraphWritten {
		fmt.Printf(", refreshed graph artifact")
	}
	fmt.Println()
	return nil
}
