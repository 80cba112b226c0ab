package artifact

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/archmap-dev/archmap/internal/cluster"
	"github.com/archmap-dev/archmap/internal/store"
)

// FromClusters builds the nodes/edges artifact at cluster grain; edges
// follow each cluster's external dependencies.
func FromClusters(clusters []cluster.Cluster) store.GraphRecord {
	record := store.GraphRecord{
		Version: store.RecordVersion,
		Nodes:   make([]store.GraphNode, 0, len(clusters)),
		Edges:   make([]store.GraphEdge, 0),
	}
	for _, c := range clusters {
		record.Nodes = append(record.Nodes, store.GraphNode{
			ID:        c.ID,
			Label:     c.Name,
			Type:      "cluster",
			FileCount: len(c.Files),
		})
		for _, dep := range c.ExternalDeps {
			record.Edges = append(record.Edges, store.GraphEdge{Source: c.ID, Target: dep})
		}
	}
	return normalize(record)
}

// FromFeatures builds the artifact at feature grain; edges follow
// depends-on references. Ignored features keep their node so existing
// links keep resolving.
func FromFeatures(features []store.FeatureRecord) store.GraphRecord {
	record := store.GraphRecord{
		Version: store.RecordVersion,
		Nodes:   make([]store.GraphNode, 0, len(features)),
		Edges:   make([]store.GraphEdge, 0),
	}
	for _, f := range features {
		record.Nodes = append(record.Nodes, store.GraphNode{
			ID:        f.ID,
			Label:     f.Name,
			Type:      "feature",
			FileCount: len(f.Clusters),
		})
		for _, dep := range f.DependsOn {
			record.Edges = append(record.Edges, store.GraphEdge{Source: f.ID, Target: dep})
		}
	}
	return normalize(record)
}

// Write persists the artifact only when it differs from the record
// already on disk, so an unchanged re-analysis causes no downstream
// churn. A malformed or incompatible existing artifact is replaced
// wholesale, reported through warnings. Returns true when a write
// happened.
func Write(s *store.Store, record store.GraphRecord, now time.Time) (bool, []string, error) {
	var warnings []string
	existing, err := s.LoadGraph()
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("graph.json: %v; replacing", err))
		existing = nil
	}

	fresh := normalize(record)
	if existing != nil && reflect.DeepEqual(normalize(*existing), fresh) {
		return false, warnings, nil
	}

	fresh.GeneratedAt = now.UTC().Format(time.RFC3339)
	if err := s.SaveGraph(fresh); err != nil {
		return false, warnings, err
	}
	return true, warnings, nil
}

// normalize sorts nodes by id and edges by source then target, and strips
// the generation timestamp so comparisons see only real content.
func normalize(record store.GraphRecord) store.GraphRecord {
	out := record
	out.GeneratedAt = ""

	out.Nodes = make([]store.GraphNode, len(record.Nodes))
	copy(out.Nodes, record.Nodes)
	sort.Slice(out.Nodes, func(i, j int) bool { return out.Nodes[i].ID < out.Nodes[j].ID })

	out.Edges = make([]store.GraphEdge, len(record.Edges))
	copy(out.Edges, record.Edges)
	sort.Slice(out.Edges, func(i, j int) bool {
		if out.Edges[i].Source != out.Edges[j].Source {
			return out.Edges[i].Source < out.Edges[j].Source
		}
		return out.Edges[i].Target < out.Edges[j].Target
	})
	return out
}
