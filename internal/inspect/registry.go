package inspect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/archmap-dev/archmap/internal/ignore"
)

// Registry holds all registered inspectors keyed by language and extension.
type Registry struct {
	inspectors map[string]Inspector
	extToLang  map[string]string
}

// NewRegistry creates an empty inspector registry.
func NewRegistry() *Registry {
	return &Registry{
		inspectors: make(map[string]Inspector),
		extToLang:  make(map[string]string),
	}
}

// NewDefaultRegistry returns a registry with all built-in inspectors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewTypeScriptInspector())
	return r
}

// Register adds an inspector to the registry.
func (r *Registry) Register(in Inspector) {
	r.inspectors[in.Language()] = in
	for _, ext := range in.Extensions() {
		r.extToLang[ext] = in.Language()
	}
}

// InspectorForFile returns the inspector handling filename, if any.
func (r *Registry) InspectorForFile(filename string) (Inspector, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	in, ok := r.inspectors[lang]
	return in, ok
}

// SupportedExtensions returns all extensions with a registered inspector.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// InspectFile reads and inspects a single file. Unsupported file types
// return (nil, nil) and are skipped silently.
func (r *Registry) InspectFile(path string) (*FileRecord, error) {
	in, ok := r.InspectorForFile(path)
	if !ok {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	record, err := in.Inspect(path, content)
	if err != nil {
		return nil, err
	}

	record.Imports.Internal = normalizeSpecifiers(record.Imports.Internal)
	record.Imports.External = normalizeSpecifiers(record.Imports.External)
	if record.Lines == 0 {
		record.Lines = countLines(content)
	}
	return record, nil
}

// InspectDirectory walks root and inspects every supported file not
// excluded by matcher. Per-file failures become Issues, not errors.
func (r *Registry) InspectDirectory(root string, matcher *ignore.Matcher) (*Result, error) {
	result := &Result{
		RootPath: root,
		Files:    make(map[string]FileRecord),
		Issues:   make([]Issue, 0),
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			result.Issues = append(result.Issues, Issue{
				File:     relOrSelf(root, path),
				Severity: "warning",
				Message:  fmt.Sprintf("walk error: %v", walkErr),
			})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if matcher != nil && matcher.ShouldIgnore(rel, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		record, err := r.InspectFile(path)
		if err != nil {
			result.Issues = append(result.Issues, Issue{
				File:     rel,
				Severity: "warning",
				Message:  fmt.Sprintf("inspect failed: %v", err),
			})
			return nil
		}
		if record == nil {
			return nil
		}

		record.Path = rel
		result.Files[rel] = *record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func relOrSelf(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

func normalizeSpecifiers(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte("\n"))
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}
