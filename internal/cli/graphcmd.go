package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/archmap-dev/archmap/internal/artifact"
	"github.com/archmap-dev/archmap/internal/cluster"
	"github.com/archmap-dev/archmap/internal/store"
)

// RunGraph rebuilds the shared graph artifact from the persisted records
// at the requested grain.
func RunGraph(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveRootPath(args)
	if err != nil {
		return err
	}
	from, err := cmd.Flags().GetString("from")
	if err != nil {
		return fmt.Errorf("failed to read --from flag: %w", err)
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}

	st := store.Open(rootPath, nil)

	var record store.GraphRecord
	switch from {
	case "clusters":
		records, report := st.LoadClusters()
		reportWarnings(report.Warnings)
		reportRecordErrors(report.Errors)
		record = artifact.FromClusters(clustersFromRecords(records))
	case "features":
		features, report := st.LoadFeatures()
		reportWarnings(report.Warnings)
		reportRecordErrors(report.Errors)
		record = artifact.FromFeatures(features)
	default:
		return fmt.Errorf("unsupported --from value %q (expected clusters or features)", from)
	}

	wrote, warnings, err := artifact.Write(st, record, time.Now())
	reportWarnings(warnings)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(map[string]any{
			"mode":    "graph",
			"from":    from,
			"nodes":   len(record.Nodes),
			"edges":   len(record.Edges),
			"written": wrote,
		})
	}
	if wrote {
		fmt.Printf("graph artifact rebuilt from %s: %d nodes, %d edges\n", from, len(record.Nodes), len(record.Edges))
	} else {
		fmt.Println("graph artifact already up to date")
	}
	return nil
}

func clustersFromRecords(records []store.ClusterRecord) []cluster.Cluster {
	clusters := make([]cluster.Cluster, 0, len(records))
	for _, rec := range records {
		clusters = append(clusters, cluster.Cluster{
			ID:           rec.ID,
			Name:         rec.Layer,
			Files:        rec.Files,
			InternalDeps: rec.Imports.Internal,
			ExternalDeps: rec.Imports.External,
		})
	}
	return clusters
}
