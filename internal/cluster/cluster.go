package cluster

import (
	"sort"
	"strings"

	"github.com/archmap-dev/archmap/internal/depgraph"
)

// Cluster is one run's structural grouping of files. The ID is suggested
// by folder layout and may be replaced during identity matching.
type Cluster struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Files        []string `json:"files"`        // sorted
	InternalDeps []string `json:"internalDeps"` // dependency files inside this cluster, sorted
	ExternalDeps []string `json:"externalDeps"` // other cluster ids this cluster depends on, sorted
}

// DefaultSourceRoots are the directory names recognized as source roots.
var DefaultSourceRoots = []string{"src", "lib", "app"}

// CoreClusterID is assigned to files sitting directly in a source root.
const CoreClusterID = "core"

// AssignID maps a file path to its structural cluster id: files directly
// beneath a recognized source root form the core cluster, one directory
// level forms the cluster id, and exactly one further directory level is
// collapsed into a compound id. Pure and deterministic.
func AssignID(filePath string, sourceRoots []string) string {
	rel := filePath
	for _, root := range sourceRoots {
		if strings.HasPrefix(rel, root+"/") {
			rel = rel[len(root)+1:]
			break
		}
	}

	segments := strings.Split(rel, "/")
	switch {
	case len(segments) <= 1:
		return CoreClusterID
	case len(segments) == 2:
		return slug(segments[0])
	default:
		return slug(segments[0]) + "-" + slug(segments[1])
	}
}

// BuildClusters partitions the graph's files into clusters and derives
// each cluster's intra- and inter-cluster dependency sets. Output is
// sorted by cluster id.
func BuildClusters(g *depgraph.Graph, sourceRoots []string) []Cluster {
	if len(sourceRoots) == 0 {
		sourceRoots = DefaultSourceRoots
	}

	clusterOf := make(map[string]string, len(g.Files))
	members := make(map[string][]string)
	for filePath := range g.Files {
		id := AssignID(filePath, sourceRoots)
		clusterOf[filePath] = id
		members[id] = append(members[id], filePath)
	}

	clusters := make([]Cluster, 0, len(members))
	for id, files := range members {
		sort.Strings(files)

		internal := make(map[string]bool)
		external := make(map[string]bool)
		for _, file := range files {
			for _, dep := range g.Dependencies[file] {
				depCluster, ok := clusterOf[dep]
				if !ok {
					continue
				}
				if depCluster == id {
					internal[dep] = true
				} else {
					external[depCluster] = true
				}
			}
		}

		clusters = append(clusters, Cluster{
			ID:           id,
			Name:         humanize(id),
			Files:        files,
			InternalDeps: sortedKeys(internal),
			ExternalDeps: sortedKeys(external),
		})
	}

	sort.Slice(clusters, func(i, j int) bool { return clusters[i].ID < clusters[j].ID })
	return clusters
}

func slug(segment string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(segment) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func humanize(id string) string {
	parts := strings.Split(id, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
