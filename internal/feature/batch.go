package feature

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/archmap-dev/archmap/internal/store"
)

// BatchOptions configures one proposal batch merge.
type BatchOptions struct {
	// By identifies the proposer; created records take it as their source
	// and replace mode only retires features of this source.
	By store.FeatureSource
	// Replace retires proposer-sourced features absent from this batch by
	// transitioning them to ignored. Records are never deleted.
	Replace bool
	Now     time.Time
}

// BatchResult summarizes a proposal batch merge.
type BatchResult struct {
	Results   []MergeResult
	Created   int
	Updated   int
	Touched   int
	Unchanged int
	Ignored   int
	Warnings  []string
}

// ValidateBatch checks a proposal batch against the current cluster set.
// Any returned error rejects the entire batch; nothing may be written.
func ValidateBatch(proposals []store.FeatureRecord, clusterIDs map[string]bool) []string {
	errs := make([]string, 0)

	seen := make(map[string]bool, len(proposals))
	duplicates := make([]string, 0)
	for _, p := range proposals {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			errs = append(errs, fmt.Sprintf("feature %q has no id", p.Name))
			continue
		}
		if seen[id] {
			duplicates = append(duplicates, id)
		}
		seen[id] = true
	}
	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		errs = append(errs, "Duplicate feature ids: "+strings.Join(duplicates, ", "))
	}

	for _, p := range proposals {
		// Empty enums are fine (the merge defaults them); unknown values
		// would round-trip into records the loader rejects.
		if p.Source != "" && !p.Source.Valid() {
			errs = append(errs, fmt.Sprintf("feature %s has unknown source %q", p.ID, p.Source))
		}
		if p.Status != "" && !p.Status.Valid() {
			errs = append(errs, fmt.Sprintf("feature %s has unknown status %q", p.ID, p.Status))
		}
		for _, clusterID := range p.Clusters {
			if !clusterIDs[clusterID] {
				errs = append(errs, fmt.Sprintf("feature %s references nonexistent cluster %s", p.ID, clusterID))
			}
		}
	}
	return errs
}

// MergeBatch merges every proposal onto its persisted record and, in
// replace mode, retires proposer-sourced features the batch no longer
// proposes. The caller is responsible for running ValidateBatch first and
// for persisting the returned records.
func MergeBatch(persisted []store.FeatureRecord, proposals []store.FeatureRecord, clusterHashes map[string]string, opts BatchOptions) BatchResult {
	byID := make(map[string]*store.FeatureRecord, len(persisted))
	for i := range persisted {
		byID[persisted[i].ID] = &persisted[i]
	}

	result := BatchResult{
		Results:  make([]MergeResult, 0, len(proposals)),
		Warnings: make([]string, 0),
	}

	proposedIDs := make(map[string]bool, len(proposals))
	for _, proposal := range proposals {
		proposedIDs[proposal.ID] = true

		merge := Merge(byID[proposal.ID], proposal, clusterHashes, opts.Now, opts.By)
		result.Results = append(result.Results, merge)
		result.Warnings = append(result.Warnings, merge.Warnings...)
		switch merge.Outcome {
		case OutcomeCreated:
			result.Created++
		case OutcomeUpdated:
			result.Updated++
		case OutcomeTouched:
			result.Touched++
		case OutcomeUnchanged:
			result.Unchanged++
		}
	}

	if !opts.Replace {
		return result
	}

	timestamp := opts.Now.UTC().Format(time.RFC3339)
	for i := range persisted {
		rec := persisted[i]
		if proposedIDs[rec.ID] || rec.Source != opts.By || rec.Status == store.StatusIgnored {
			continue
		}
		if rec.Locks != nil && rec.Locks.Status {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("feature %s is no longer proposed but its status is locked", rec.ID))
			continue
		}

		rec.Status = store.StatusIgnored
		rec.Metadata.UpdatedAt = timestamp
		rec.Metadata.LastModifiedBy = string(opts.By)
		rec.Metadata.Version = persisted[i].Metadata.Version + 1
		result.Results = append(result.Results, MergeResult{Record: rec, Outcome: OutcomeUpdated})
		result.Ignored++
	}

	return result
}
