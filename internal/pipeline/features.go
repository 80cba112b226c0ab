package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/archmap-dev/archmap/internal/artifact"
	"github.com/archmap-dev/archmap/internal/feature"
	"github.com/archmap-dev/archmap/internal/store"
)

// FeatureOptions configures one feature proposal batch save.
type FeatureOptions struct {
	RootPath   string
	By         store.FeatureSource
	Replace    bool
	WriteGraph bool
	Cache      *store.RecordCache
	Now        time.Time
}

// BatchValidationError rejects an entire proposal batch. Nothing has been
// written when it is returned.
type BatchValidationError struct {
	Problems []string
}

func (e *BatchValidationError) Error() string {
	return "invalid feature batch: " + strings.Join(e.Problems, "; ")
}

// SaveFeatures validates and merges a feature proposal batch onto the
// persisted feature records. Validation is all-or-nothing: any problem
// rejects the whole batch before a single write.
func SaveFeatures(proposals []store.FeatureRecord, opts FeatureOptions) (*FeatureSummary, error) {
	if opts.By == "" {
		opts.By = store.SourceManual
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	start := time.Now()

	summary := &FeatureSummary{
		Mode:     "feature-save",
		RootPath: opts.RootPath,
		By:       string(opts.By),
		Proposed: len(proposals),
		Warnings: make([]string, 0),
	}

	st := store.Open(opts.RootPath, opts.Cache)

	clusterRecords, clusterReport := st.LoadClusters()
	summary.Warnings = append(summary.Warnings, clusterReport.Warnings...)
	summary.RecordErrors = append(summary.RecordErrors, clusterReport.Errors...)

	clusterIDs := make(map[string]bool, len(clusterRecords))
	clusterHashes := make(map[string]string, len(clusterRecords))
	for _, rec := range clusterRecords {
		clusterIDs[rec.ID] = true
		clusterHashes[rec.ID] = rec.CompositionHash
	}

	if problems := feature.ValidateBatch(proposals, clusterIDs); len(problems) > 0 {
		return nil, &BatchValidationError{Problems: problems}
	}

	persisted, featureReport := st.LoadFeatures()
	summary.Warnings = append(summary.Warnings, featureReport.Warnings...)
	summary.RecordErrors = append(summary.RecordErrors, featureReport.Errors...)

	result := feature.MergeBatch(persisted, proposals, clusterHashes, feature.BatchOptions{
		By:      opts.By,
		Replace: opts.Replace,
		Now:     opts.Now,
	})
	summary.Created = result.Created
	summary.Updated = result.Updated
	summary.Touched = result.Touched
	summary.Unchanged = result.Unchanged
	summary.Ignored = result.Ignored
	summary.Warnings = append(summary.Warnings, result.Warnings...)

	// Write phase.
	final := make(map[string]store.FeatureRecord, len(persisted)+len(result.Results))
	for _, rec := range persisted {
		final[rec.ID] = rec
	}
	for _, merge := range result.Results {
		final[merge.Record.ID] = merge.Record
		if merge.Outcome == feature.OutcomeUnchanged {
			continue
		}
		changed, err := st.SaveFeature(merge.Record)
		if err != nil {
			return nil, fmt.Errorf("failed to write feature %s: %w", merge.Record.ID, err)
		}
		if changed {
			summary.Written++
		}
	}

	if opts.WriteGraph {
		records := make([]store.FeatureRecord, 0, len(final))
		for _, rec := range final {
			records = append(records, rec)
		}
		wrote, artifactWarnings, err := artifact.Write(st, artifact.FromFeatures(records), opts.Now)
		summary.Warnings = append(summary.Warnings, artifactWarnings...)
		if err != nil {
			return nil, fmt.Errorf("failed to write graph artifact: %w", err)
		}
		summary.GraphWritten = wrote
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	return summary, nil
}
