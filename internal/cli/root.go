package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand wires up the archmap CLI.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "archmap",
		Short: "Map a codebase into architectural clusters and features",
		Long: `Archmap scans a repository, builds a file-level dependency graph,
partitions files into architectural clusters, and reconciles the result
with previously persisted cluster and feature records, keeping ids
stable and respecting locked, hand-curated fields.

Records are written to .archmap/ and can be version-controlled.`,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Initialize the .archmap/ record directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunInit,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze the repository and reconcile persisted records",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunAnalyze,
	}
	analyzeCmd.Flags().Float64("threshold", 0, "Identity-match similarity threshold (default 0.7, env ARCHMAP_MATCH_THRESHOLD)")
	analyzeCmd.Flags().StringSlice("source-root", nil, "Recognized source roots (default: src,lib,app; env ARCHMAP_SOURCE_ROOTS)")
	analyzeCmd.Flags().Bool("json", false, "Print machine-readable run summary")

	statusCmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Show what analyze would change, without writing",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunStatus,
	}
	statusCmd.Flags().Float64("threshold", 0, "Identity-match similarity threshold")
	statusCmd.Flags().StringSlice("source-root", nil, "Recognized source roots")
	statusCmd.Flags().Bool("json", false, "Print machine-readable status output")

	featureCmd := &cobra.Command{
		Use:   "feature",
		Short: "Manage curated feature records",
	}

	featureSaveCmd := &cobra.Command{
		Use:   "save [path]",
		Short: "Merge a feature proposal batch onto persisted records",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunFeatureSave,
	}
	featureSaveCmd.Flags().StringP("file", "f", "", "JSON file holding the proposal batch (array of features)")
	featureSaveCmd.Flags().String("by", "manual", "Proposer identity: auto|ai|manual")
	featureSaveCmd.Flags().Bool("replace", false, "Retire proposer-sourced features absent from this batch")
	featureSaveCmd.Flags().Bool("graph", false, "Refresh the feature-grain graph artifact after saving")
	featureSaveCmd.Flags().Bool("json", false, "Print machine-readable summary")
	_ = featureSaveCmd.MarkFlagRequired("file")

	featureListCmd := &cobra.Command{
		Use:   "list [path]",
		Short: "List persisted feature records",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunFeatureList,
	}
	featureListCmd.Flags().Bool("json", false, "Print machine-readable feature list")

	featureCmd.AddCommand(featureSaveCmd, featureListCmd)

	graphCmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Rebuild the graph artifact from persisted records",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunGraph,
	}
	graphCmd.Flags().String("from", "clusters", "Graph grain: clusters|features")
	graphCmd.Flags().Bool("json", false, "Print machine-readable summary")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("archmap %s\n", version)
		},
	}

	rootCmd.AddCommand(
		initCmd,
		analyzeCmd,
		statusCmd,
		featureCmd,
		graphCmd,
		versionCmd,
	)

	return rootCmd
}
