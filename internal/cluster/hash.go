package cluster

import (
	"sort"
	"strings"

	"github.com/archmap-dev/archmap/internal/fileutil"
)

// missingClusterSentinel replaces the hash of a referenced cluster id that
// no longer exists, so a dangling reference still changes the feature
// hash instead of being silently ignored.
const missingClusterSentinel = "missing:"

// HashFiles computes the order-independent composition hash of a file set:
// sort, join with a fixed separator, SHA-256, truncated hex.
func HashFiles(files []string) string {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)
	return fileutil.ShortHash([]byte(strings.Join(sorted, "\n")))
}

// HashClusters computes a feature-grain composition hash from the
// composition hashes of the referenced clusters.
func HashClusters(clusterIDs []string, hashByID map[string]string) string {
	sorted := make([]string, len(clusterIDs))
	copy(sorted, clusterIDs)
	sort.Strings(sorted)

	parts := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if hash, ok := hashByID[id]; ok {
			parts = append(parts, hash)
		} else {
			parts = append(parts, missingClusterSentinel+id)
		}
	}
	return fileutil.ShortHash([]byte(strings.Join(parts, "\n")))
}
