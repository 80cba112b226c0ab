package inspect

// Export is a single exported symbol surfaced by a source file.
type Export struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"` // function | class | const | type | interface | enum | reexport
	IsDefault bool   `json:"isDefault,omitempty"`
}

// ImportSet splits a file's import specifiers by how they can resolve.
// Internal specifiers are relative paths; external specifiers are bare
// module names (the graph builder may still reclassify an external
// specifier as internal when a path-alias rule matches it).
type ImportSet struct {
	Internal []string `json:"internal"`
	External []string `json:"external"`
}

// FileRecord is the per-file analysis fact set. It is produced once per
// file by an inspector and treated as immutable input downstream.
type FileRecord struct {
	Path    string    `json:"path"`
	Exports []Export  `json:"exports"`
	Imports ImportSet `json:"imports"`
	Lines   int       `json:"lines"`
}

// Issue captures a non-fatal problem encountered while scanning files.
type Issue struct {
	File     string `json:"file"`
	Severity string `json:"severity"` // warning | error
	Message  string `json:"message"`
}

// Result holds the records for every inspected file in a tree.
type Result struct {
	RootPath string
	Files    map[string]FileRecord // keyed by root-relative slash path
	Issues   []Issue
}

// Inspector extracts the FileRecord contract from one source file. Any
// implementation satisfying it is interchangeable.
type Inspector interface {
	// Language returns the language name (e.g., "typescript").
	Language() string

	// Extensions returns file extensions this inspector handles.
	Extensions() []string

	// Inspect extracts exports, imports, and line count from source code.
	Inspect(filename string, content []byte) (*FileRecord, error)
}
