package cluster

import (
	"fmt"
	"sort"
)

// DefaultMatchThreshold is the minimum Jaccard overlap required before a
// candidate cluster may claim a persisted identity.
const DefaultMatchThreshold = 0.7

// Persisted is the durable identity of a cluster from a previous run.
type Persisted struct {
	ID    string
	Files []string
}

// MatchResult is the stable-id assignment for one run.
type MatchResult struct {
	Clusters    []Cluster         // final ids assigned, external deps rewritten, sorted by id
	Assignments map[string]string // suggested id -> assigned id
	Orphaned    []string          // persisted ids claimed by no candidate, sorted
}

// Jaccard returns |A∩B| / |A∪B| over two file lists, 0 when both are
// empty. Always within [0,1].
func Jaccard(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, v := range a {
		setA[v] = true
	}
	setB := make(map[string]bool, len(b))
	for _, v := range b {
		setB[v] = true
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for v := range setA {
		if setB[v] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// MatchIdentities reconciles freshly computed clusters against persisted
// cluster identities. Candidates scoring at or above threshold against an
// unclaimed persisted cluster inherit its id; everyone else keeps their
// suggested id, uniquified against ids already assigned this run.
// Threshold values <= 0 fall back to DefaultMatchThreshold.
func MatchIdentities(candidates []Cluster, persisted []Persisted, threshold float64) MatchResult {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}

	result := MatchResult{
		Assignments: make(map[string]string, len(candidates)),
	}

	if len(persisted) == 0 {
		// Identity passthrough: nothing to reconcile against.
		for _, c := range candidates {
			result.Assignments[c.ID] = c.ID
		}
		result.Clusters = rewrite(candidates, result.Assignments)
		result.Orphaned = []string{}
		return result
	}

	type scored struct {
		candidate Cluster
		bestID    string
		bestScore float64
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		entry := scored{candidate: c}
		for _, p := range persisted {
			score := Jaccard(c.Files, p.Files)
			// Equal scores resolve to the lexically smaller persisted id,
			// independent of load order.
			if score > entry.bestScore ||
				(score == entry.bestScore && (entry.bestID == "" || p.ID < entry.bestID)) {
				entry.bestID = p.ID
				entry.bestScore = score
			}
		}
		ranked = append(ranked, entry)
	}

	// Higher scores claim first; equal scores resolve by lexical suggested
	// id so the outcome never depends on input order.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].bestScore != ranked[j].bestScore {
			return ranked[i].bestScore > ranked[j].bestScore
		}
		return ranked[i].candidate.ID < ranked[j].candidate.ID
	})

	claimed := make(map[string]bool, len(persisted))
	assigned := make(map[string]bool, len(candidates))
	finals := make([]Cluster, 0, len(candidates))

	for _, entry := range ranked {
		var finalID string
		// A higher-ranked candidate may already hold the persisted id as
		// its fallback; claiming it anyway would duplicate a final id.
		if entry.bestScore >= threshold && entry.bestID != "" &&
			!claimed[entry.bestID] && !assigned[entry.bestID] {
			finalID = entry.bestID
			claimed[finalID] = true
		} else {
			finalID = uniquify(entry.candidate.ID, assigned)
		}
		assigned[finalID] = true
		result.Assignments[entry.candidate.ID] = finalID

		c := entry.candidate
		c.ID = finalID
		finals = append(finals, c)
	}

	orphaned := make([]string, 0)
	for _, p := range persisted {
		// An id reused as a fallback is not orphaned: its record gets
		// overwritten by the cluster now carrying the id.
		if !claimed[p.ID] && !assigned[p.ID] {
			orphaned = append(orphaned, p.ID)
		}
	}
	sort.Strings(orphaned)
	result.Orphaned = orphaned

	result.Clusters = rewrite(finals, result.Assignments)
	return result
}

// uniquify returns base when free, otherwise base-2, base-3, ...
func uniquify(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

// rewrite maps every cluster's external-dependency ids through the
// suggested->assigned mapping so cross-cluster edges stay consistent
// after renames, then re-sorts by final id.
func rewrite(clusters []Cluster, assignments map[string]string) []Cluster {
	out := make([]Cluster, len(clusters))
	copy(out, clusters)
	for i := range out {
		deps := make([]string, 0, len(out[i].ExternalDeps))
		for _, dep := range out[i].ExternalDeps {
			if mapped, ok := assignments[dep]; ok {
				deps = append(deps, mapped)
			} else {
				deps = append(deps, dep)
			}
		}
		sort.Strings(deps)
		out[i].ExternalDeps = deps
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
