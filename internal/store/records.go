package store

// Persisted record shapes. Field order in these structs is the canonical
// serialization order; the encoder emits fields exactly as declared.

const (
	// RecordVersion is the version written to every new record.
	RecordVersion = 1
	// MinRecordVersion is the oldest record version still readable.
	MinRecordVersion = 1
)

// Dir is the persisted-record directory created inside analyzed projects.
const Dir = ".archmap"

// ImportSummary aggregates a cluster's dependencies: files it imports
// inside itself and the ids of other clusters it reaches.
type ImportSummary struct {
	Internal []string `json:"internal"`
	External []string `json:"external"`
}

// RecordMeta carries record provenance timestamps (RFC 3339).
type RecordMeta struct {
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ClusterRecord is the durable form of a structural cluster.
type ClusterRecord struct {
	Version         int           `json:"version"`
	ID              string        `json:"id"`
	Layer           string        `json:"layer"`
	Files           []string      `json:"files"`
	Exports         []string      `json:"exports"`
	Imports         ImportSummary `json:"imports"`
	CompositionHash string        `json:"compositionHash"`
	Metadata        RecordMeta    `json:"metadata"`
}

// FeatureSource identifies who authored or proposed a feature.
type FeatureSource string

const (
	SourceAuto   FeatureSource = "auto"
	SourceAI     FeatureSource = "ai"
	SourceManual FeatureSource = "manual"
)

// Valid reports whether the source is a known value.
func (s FeatureSource) Valid() bool {
	switch s {
	case SourceAuto, SourceAI, SourceManual:
		return true
	}
	return false
}

// FeatureStatus is a feature's lifecycle state. Features are never
// deleted; ones no longer proposed become ignored so their ids stay
// valid reference targets.
type FeatureStatus string

const (
	StatusActive     FeatureStatus = "active"
	StatusIgnored    FeatureStatus = "ignored"
	StatusDeprecated FeatureStatus = "deprecated"
)

// Valid reports whether the status is a known value.
func (s FeatureStatus) Valid() bool {
	switch s {
	case StatusActive, StatusIgnored, StatusDeprecated:
		return true
	}
	return false
}

// FeatureLocks flags fields a merge must never overwrite.
type FeatureLocks struct {
	Name        bool `json:"name,omitempty"`
	Description bool `json:"description,omitempty"`
	Clusters    bool `json:"clusters,omitempty"`
	DependsOn   bool `json:"dependsOn,omitempty"`
	Scope       bool `json:"scope,omitempty"`
	Status      bool `json:"status,omitempty"`
}

// Composition is a feature's change-detection digest over its clusters.
type Composition struct {
	Hash string `json:"hash"`
}

// FeatureMeta tracks a feature record's provenance and its monotonic
// semantic version counter.
type FeatureMeta struct {
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
	LastModifiedBy string `json:"lastModifiedBy,omitempty"`
	Version        int    `json:"version,omitempty"`
}

// FeatureRecord is a curated grouping of clusters.
type FeatureRecord struct {
	Version     int           `json:"version"`
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Purpose     string        `json:"purpose,omitempty"`
	Source      FeatureSource `json:"source"`
	Status      FeatureStatus `json:"status"`
	Scope       string        `json:"scope"`
	Clusters    []string      `json:"clusters"`
	DependsOn   []string      `json:"dependsOn,omitempty"`
	Composition Composition   `json:"composition"`
	Locks       *FeatureLocks `json:"locks,omitempty"`
	Metadata    FeatureMeta   `json:"metadata"`
}

// GroupRecord aggregates features. Groups are curated outside this
// pipeline; they are loaded read-only because they consume feature ids.
type GroupRecord struct {
	Version  int           `json:"version"`
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Features []string      `json:"features"`
	Locks    *FeatureLocks `json:"locks,omitempty"`
	Metadata RecordMeta    `json:"metadata"`
}

// GraphNode is one node of the UI-facing graph artifact.
type GraphNode struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Type      string `json:"type"` // cluster | feature
	FileCount int    `json:"fileCount"`
}

// GraphEdge is a directed dependency between two graph nodes.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GraphRecord is the shared nodes/edges artifact consumed by the UI layer.
type GraphRecord struct {
	Version     int         `json:"version"`
	GeneratedAt string      `json:"generatedAt,omitempty"`
	Nodes       []GraphNode `json:"nodes"`
	Edges       []GraphEdge `json:"edges"`
}
