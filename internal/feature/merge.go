package feature

import (
	"fmt"
	"strings"
	"time"

	"github.com/archmap-dev/archmap/internal/cluster"
	"github.com/archmap-dev/archmap/internal/store"
)

// Outcome classifies what a merge did to a feature record.
type Outcome string

const (
	OutcomeUnchanged Outcome = "unchanged" // bit-for-bit same signatures
	OutcomeTouched   Outcome = "touched"   // cosmetic change only, version kept
	OutcomeUpdated   Outcome = "updated"   // semantic change, version bumped
	OutcomeCreated   Outcome = "created"   // no persisted record existed
)

// MergeResult is the outcome of merging one proposal onto one record.
type MergeResult struct {
	Record   store.FeatureRecord
	Outcome  Outcome
	Warnings []string
}

// Merge reconciles a proposed feature onto its persisted record. Locked
// fields keep their persisted value regardless of the proposal; omitted
// proposal fields fall back to the persisted value. The composition hash
// is recomputed from the resolved cluster list, and the version counter
// moves only when the semantic signature changes.
func Merge(persisted *store.FeatureRecord, proposed store.FeatureRecord, clusterHashes map[string]string, now time.Time, by store.FeatureSource) MergeResult {
	timestamp := now.UTC().Format(time.RFC3339)

	if persisted == nil {
		record := proposed
		record.Version = store.RecordVersion
		if record.Source == "" {
			record.Source = by
		}
		if record.Status == "" {
			record.Status = store.StatusActive
		}
		record.Metadata = store.FeatureMeta{
			CreatedAt:      timestamp,
			UpdatedAt:      timestamp,
			LastModifiedBy: string(by),
			Version:        1,
		}
		hash, warnings := composition(record.ID, record.Clusters, clusterHashes)
		record.Composition = store.Composition{Hash: hash}
		return MergeResult{Record: record, Outcome: OutcomeCreated, Warnings: warnings}
	}

	locks := store.FeatureLocks{}
	if persisted.Locks != nil {
		locks = *persisted.Locks
	}

	merged := *persisted
	merged.Version = store.RecordVersion
	merged.Name = pickString(locks.Name, persisted.Name, proposed.Name)
	merged.Description = pickString(locks.Description, persisted.Description, proposed.Description)
	merged.Scope = pickString(locks.Scope, persisted.Scope, proposed.Scope)
	merged.Clusters = pickList(locks.Clusters, persisted.Clusters, proposed.Clusters)
	merged.DependsOn = pickList(locks.DependsOn, persisted.DependsOn, proposed.DependsOn)
	if !locks.Status && proposed.Status != "" {
		merged.Status = proposed.Status
	}
	if proposed.Purpose != "" {
		merged.Purpose = proposed.Purpose
	}

	hash, warnings := composition(merged.ID, merged.Clusters, clusterHashes)
	merged.Composition = store.Composition{Hash: hash}

	semanticChanged := semanticSignature(merged) != semanticSignature(*persisted)
	contentChanged := contentSignature(merged) != contentSignature(*persisted)

	switch {
	case !semanticChanged && !contentChanged:
		return MergeResult{Record: *persisted, Outcome: OutcomeUnchanged, Warnings: warnings}
	case !semanticChanged:
		merged.Metadata.UpdatedAt = timestamp
		merged.Metadata.LastModifiedBy = string(by)
		return MergeResult{Record: merged, Outcome: OutcomeTouched, Warnings: warnings}
	default:
		merged.Metadata.UpdatedAt = timestamp
		merged.Metadata.LastModifiedBy = string(by)
		merged.Metadata.Version = persisted.Metadata.Version + 1
		return MergeResult{Record: merged, Outcome: OutcomeUpdated, Warnings: warnings}
	}
}

func composition(featureID string, clusterIDs []string, clusterHashes map[string]string) (string, []string) {
	warnings := make([]string, 0)
	for _, id := range clusterIDs {
		if _, ok := clusterHashes[id]; !ok {
			warnings = append(warnings, fmt.Sprintf("feature %s references unknown cluster %s", featureID, id))
		}
	}
	return cluster.HashClusters(clusterIDs, clusterHashes), warnings
}

func pickString(locked bool, persisted, proposed string) string {
	if locked || proposed == "" {
		return persisted
	}
	return proposed
}

func pickList(locked bool, persisted, proposed []string) []string {
	if locked || proposed == nil {
		return persisted
	}
	return proposed
}

// semanticSignature covers the fields whose change means the feature
// itself changed: renames, rescoping, membership, and dependency edits.
func semanticSignature(r store.FeatureRecord) string {
	return strings.Join([]string{
		r.Name,
		r.Description,
		r.Scope,
		string(r.Status),
		strings.Join(r.Clusters, ","),
		strings.Join(r.DependsOn, ","),
		r.Composition.Hash,
	}, "|")
}

// contentSignature additionally covers free-text fields whose edits are
// cosmetic: they refresh updatedAt but never bump the version counter.
func contentSignature(r store.FeatureRecord) string {
	return semanticSignature(r) + "|" + r.Purpose
}
