package pipeline

// Summary is the machine-readable result of one analyze run.
type Summary struct {
	Mode            string   `json:"mode"`
	RootPath        string   `json:"root_path"`
	FilesScanned    int      `json:"files_scanned"`
	Clusters        int      `json:"clusters"`
	Matched         int      `json:"matched"`
	Renamed         int      `json:"renamed"`
	Orphaned        []string `json:"orphaned,omitempty"`
	ClustersWritten int      `json:"clusters_written"`
	GraphWritten    bool     `json:"graph_written"`
	DurationMS      int64    `json:"duration_ms"`
	Warnings        []string `json:"warnings,omitempty"`
	RecordErrors    []string `json:"record_errors,omitempty"`
}

// FeatureSummary is the machine-readable result of one feature batch save.
type FeatureSummary struct {
	Mode         string   `json:"mode"`
	RootPath     string   `json:"root_path"`
	By           string   `json:"by"`
	Proposed     int      `json:"proposed"`
	Created      int      `json:"created"`
	Updated      int      `json:"updated"`
	Touched      int      `json:"touched"`
	Unchanged    int      `json:"unchanged"`
	Ignored      int      `json:"ignored"`
	Written      int      `json:"written"`
	GraphWritten bool     `json:"graph_written"`
	DurationMS   int64    `json:"duration_ms"`
	Warnings     []string `json:"warnings,omitempty"`
	RecordErrors []string `json:"record_errors,omitempty"`
}
