package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/archmap-dev/archmap/internal/artifact"
	"github.com/archmap-dev/archmap/internal/cluster"
	"github.com/archmap-dev/archmap/internal/depgraph"
	"github.com/archmap-dev/archmap/internal/ignore"
	"github.com/archmap-dev/archmap/internal/inspect"
	"github.com/archmap-dev/archmap/internal/store"
)

// Options configures one analyze invocation. The pipeline is a synchronous
// batch transform: load, compute in memory, write, summarize. Concurrent
// invocations against one project are the caller's responsibility.
type Options struct {
	RootPath    string
	SourceRoots []string
	Threshold   float64
	IgnoreRules []string
	Registry    *inspect.Registry
	Cache       *store.RecordCache
	Now         time.Time
	// DryRun computes the full reconciliation but skips every write.
	DryRun bool
}

func (o *Options) defaults() {
	if o.Registry == nil {
		o.Registry = inspect.NewDefaultRegistry()
	}
	if o.Threshold <= 0 {
		o.Threshold = cluster.DefaultMatchThreshold
	}
	if len(o.SourceRoots) == 0 {
		o.SourceRoots = cluster.DefaultSourceRoots
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
}

// Run executes the full analysis pipeline: inspect sources, build the
// dependency graph, cluster, reconcile identities against persisted
// records, persist changed cluster records, and refresh the graph
// artifact. All computation happens before the first write, so a failure
// never leaves partial state on disk.
func Run(opts Options) (*Summary, error) {
	opts.defaults()
	start := time.Now()

	summary := &Summary{
		Mode:     "analyze",
		RootPath: opts.RootPath,
		Warnings: make([]string, 0),
	}
	if opts.DryRun {
		summary.Mode = "status"
	}

	matcher := ignore.NewMatcher(opts.IgnoreRules)
	scan, err := opts.Registry.InspectDirectory(opts.RootPath, matcher)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", opts.RootPath, err)
	}
	for _, issue := range scan.Issues {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: %s", issue.File, issue.Message))
	}
	summary.FilesScanned = len(scan.Files)

	aliasRules := depgraph.LoadAliasRules(opts.RootPath)
	graph := depgraph.Build(scan.Files, aliasRules)
	candidates := cluster.BuildClusters(graph, opts.SourceRoots)

	st := store.Open(opts.RootPath, opts.Cache)
	persistedRecords, report := st.LoadClusters()
	summary.Warnings = append(summary.Warnings, report.Warnings...)
	summary.RecordErrors = append(summary.RecordErrors, report.Errors...)

	persisted := make([]cluster.Persisted, 0, len(persistedRecords))
	persistedByID := make(map[string]store.ClusterRecord, len(persistedRecords))
	for _, rec := range persistedRecords {
		persisted = append(persisted, cluster.Persisted{ID: rec.ID, Files: rec.Files})
		persistedByID[rec.ID] = rec
	}

	match := cluster.MatchIdentities(candidates, persisted, opts.Threshold)
	summary.Clusters = len(match.Clusters)
	summary.Orphaned = match.Orphaned
	for suggested, assigned := range match.Assignments {
		if _, ok := persistedByID[assigned]; ok {
			summary.Matched++
		}
		if suggested != assigned {
			summary.Renamed++
		}
	}

	records := buildClusterRecords(match.Clusters, graph, persistedByID, opts.Now)

	// Write phase.
	if !opts.DryRun {
		for _, rec := range records {
			if prev, ok := persistedByID[rec.ID]; ok && clusterContentEqual(rec, prev) {
				continue
			}
			changed, err := st.SaveCluster(rec)
			if err != nil {
				return nil, fmt.Errorf("failed to write cluster %s: %w", rec.ID, err)
			}
			if changed {
				summary.ClustersWritten++
			}
		}

		wrote, artifactWarnings, err := artifact.Write(st, artifact.FromClusters(match.Clusters), opts.Now)
		summary.Warnings = append(summary.Warnings, artifactWarnings...)
		if err != nil {
			return nil, fmt.Errorf("failed to write graph artifact: %w", err)
		}
		summary.GraphWritten = wrote
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	return summary, nil
}

// buildClusterRecords converts matched clusters into persisted records,
// carrying creation timestamps over from prior records with the same id.
func buildClusterRecords(clusters []cluster.Cluster, graph *depgraph.Graph, persistedByID map[string]store.ClusterRecord, now time.Time) []store.ClusterRecord {
	timestamp := now.UTC().Format(time.RFC3339)

	records := make([]store.ClusterRecord, 0, len(clusters))
	for _, c := range clusters {
		rec := store.ClusterRecord{
			Version: store.RecordVersion,
			ID:      c.ID,
			Layer:   c.Name,
			Files:   c.Files,
			Exports: clusterExports(c, graph),
			Imports: store.ImportSummary{
				Internal: c.InternalDeps,
				External: c.ExternalDeps,
			},
			CompositionHash: cluster.HashFiles(c.Files),
			Metadata:        store.RecordMeta{CreatedAt: timestamp, UpdatedAt: timestamp},
		}
		if prev, ok := persistedByID[c.ID]; ok && prev.Metadata.CreatedAt != "" {
			rec.Metadata.CreatedAt = prev.Metadata.CreatedAt
		}
		records = append(records, rec)
	}
	return records
}

func clusterExports(c cluster.Cluster, graph *depgraph.Graph) []string {
	seen := make(map[string]bool)
	exports := make([]string, 0)
	for _, file := range c.Files {
		record, ok := graph.Files[file]
		if !ok {
			continue
		}
		for _, exp := range record.Exports {
			if exp.Name == "" || exp.Name == "*" || seen[exp.Name] {
				continue
			}
			seen[exp.Name] = true
			exports = append(exports, exp.Name)
		}
	}
	sort.Strings(exports)
	return exports
}

// clusterContentEqual ignores metadata so an unchanged cluster does not
// get rewritten with a fresh updatedAt on every run.
func clusterContentEqual(a, b store.ClusterRecord) bool {
	if a.Version != b.Version || a.ID != b.ID || a.Layer != b.Layer || a.CompositionHash != b.CompositionHash {
		return false
	}
	return equalStrings(a.Files, b.Files) &&
		equalStrings(a.Exports, b.Exports) &&
		equalStrings(a.Imports.Internal, b.Imports.Internal) &&
		equalStrings(a.Imports.External, b.Imports.External)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
