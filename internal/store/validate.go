package store

import (
	"errors"
	"fmt"
	"strings"
)

// Version gate errors. Callers branch on these to tell a stale record from
// one written by a newer tool.
var (
	ErrVersionMissing = errors.New("record has no version field")
	ErrVersionTooOld  = errors.New("record version is too old")
	ErrVersionTooNew  = errors.New("record version is too new")
)

// CheckVersion enforces the supported version window on a loaded record.
func CheckVersion(version int) error {
	switch {
	case version == 0:
		return ErrVersionMissing
	case version < MinRecordVersion:
		return fmt.Errorf("%w: got %d, minimum supported is %d", ErrVersionTooOld, version, MinRecordVersion)
	case version > RecordVersion:
		return fmt.Errorf("%w: got %d, current is %d", ErrVersionTooNew, version, RecordVersion)
	}
	return nil
}

// ValidateCluster returns every structural problem with a cluster record.
// An empty slice means the record is valid.
func ValidateCluster(rec ClusterRecord) []string {
	problems := make([]string, 0)
	if strings.TrimSpace(rec.ID) == "" {
		problems = append(problems, "missing id")
	}
	if len(rec.Files) == 0 {
		problems = append(problems, "empty file list")
	}
	if rec.CompositionHash == "" {
		problems = append(problems, "missing compositionHash")
	}
	return problems
}

// ValidateFeature returns every structural problem with a feature record.
func ValidateFeature(rec FeatureRecord) []string {
	problems := make([]string, 0)
	if strings.TrimSpace(rec.ID) == "" {
		problems = append(problems, "missing id")
	}
	if strings.TrimSpace(rec.Name) == "" {
		problems = append(problems, "missing name")
	}
	switch {
	case rec.Source == "":
		problems = append(problems, "missing source")
	case !rec.Source.Valid():
		problems = append(problems, fmt.Sprintf("unknown source %q", rec.Source))
	}
	switch {
	case rec.Status == "":
		problems = append(problems, "missing status")
	case !rec.Status.Valid():
		problems = append(problems, fmt.Sprintf("unknown status %q", rec.Status))
	}
	if len(rec.Clusters) == 0 {
		problems = append(problems, "no cluster references")
	}
	return problems
}

// ValidateGroup returns every structural problem with a group record.
func ValidateGroup(rec GroupRecord) []string {
	problems := make([]string, 0)
	if strings.TrimSpace(rec.ID) == "" {
		problems = append(problems, "missing id")
	}
	if strings.TrimSpace(rec.Name) == "" {
		problems = append(problems, "missing name")
	}
	return problems
}
