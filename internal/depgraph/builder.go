package depgraph

import (
	"path"
	"sort"
	"strings"

	"github.com/archmap-dev/archmap/internal/inspect"
)

// Graph is the file-level dependency graph over resolved internal paths.
// It is rebuilt wholesale on every run and never partially updated.
type Graph struct {
	Files        map[string]inspect.FileRecord
	Dependencies map[string][]string // file -> resolved internal targets, sorted
	Dependents   map[string][]string // file -> files depending on it, sorted
	External     map[string][]string // file -> external specifiers, sorted
}

var sourceExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// Build resolves every file's import specifiers against the known file set
// and the alias rules, and assembles forward and reverse adjacency maps.
// Specifiers that resolve to no known file are dropped silently.
func Build(files map[string]inspect.FileRecord, rules []AliasRule) *Graph {
	g := &Graph{
		Files:        files,
		Dependencies: make(map[string][]string, len(files)),
		Dependents:   make(map[string][]string, len(files)),
		External:     make(map[string][]string, len(files)),
	}

	resolver := newResolver(files, rules)

	for filePath, record := range files {
		targets := make([]string, 0, len(record.Imports.Internal))
		for _, spec := range record.Imports.Internal {
			if target, ok := resolver.resolveRelative(filePath, spec); ok {
				targets = append(targets, target)
			}
		}

		external := make([]string, 0, len(record.Imports.External))
		for _, spec := range record.Imports.External {
			if target, ok := resolver.resolveAlias(spec); ok {
				targets = append(targets, target)
				continue
			}
			external = append(external, spec)
		}

		g.Dependencies[filePath] = dedupeSorted(targets, filePath)
		g.External[filePath] = dedupeSorted(external, "")
	}

	for source, targets := range g.Dependencies {
		for _, target := range targets {
			g.Dependents[target] = append(g.Dependents[target], source)
		}
	}
	for target := range g.Dependents {
		g.Dependents[target] = dedupeSorted(g.Dependents[target], "")
	}

	return g
}

type resolver struct {
	files map[string]inspect.FileRecord
	rules []AliasRule
}

func newResolver(files map[string]inspect.FileRecord, rules []AliasRule) *resolver {
	return &resolver{files: files, rules: rules}
}

// resolveRelative resolves a relative specifier against the importing
// file's directory.
func (r *resolver) resolveRelative(fromFile, specifier string) (string, bool) {
	joined := path.Join(path.Dir(fromFile), specifier)
	return r.resolvePath(joined)
}

// resolveAlias resolves a bare specifier through the alias rules. Among
// matching rules the longest matched prefix+suffix wins, tie-broken by
// declaration order; each expanded target is then resolved like a direct
// path.
func (r *resolver) resolveAlias(specifier string) (string, bool) {
	best := -1
	bestScore := -1
	var bestCapture string
	for i, rule := range r.rules {
		capture, score, ok := rule.Match(specifier)
		if !ok {
			continue
		}
		if score > bestScore {
			best, bestScore, bestCapture = i, score, capture
		}
	}
	if best < 0 {
		return "", false
	}

	for _, candidate := range r.rules[best].Expand(bestCapture) {
		if target, ok := r.resolvePath(candidate); ok {
			return target, true
		}
	}
	return "", false
}

// resolvePath tries a cleaned root-relative path verbatim, with each known
// source extension appended, with a known extension swapped, and as a
// directory index file.
func (r *resolver) resolvePath(p string) (string, bool) {
	p = path.Clean(p)
	if strings.HasPrefix(p, "../") {
		return "", false
	}

	if _, ok := r.files[p]; ok {
		return p, true
	}
	for _, ext := range sourceExtensions {
		if _, ok := r.files[p+ext]; ok {
			return p + ext, true
		}
	}

	// TS sources routinely import compiled names: ./util.js -> util.ts.
	if ext := path.Ext(p); isSourceExtension(ext) {
		trimmed := strings.TrimSuffix(p, ext)
		for _, alt := range sourceExtensions {
			if alt == ext {
				continue
			}
			if _, ok := r.files[trimmed+alt]; ok {
				return trimmed + alt, true
			}
		}
	}

	for _, ext := range sourceExtensions {
		candidate := path.Join(p, "index"+ext)
		if _, ok := r.files[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

func isSourceExtension(ext string) bool {
	for _, known := range sourceExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// dedupeSorted sorts and deduplicates values, dropping skip when present.
func dedupeSorted(values []string, skip string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == skip && skip != "" {
			continue
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
