package ignore

import (
	"path/filepath"
	"regexp"
	"strings"
)

type rule struct {
	pattern  string
	negated  bool
	dirOnly  bool
	anchored bool
}

// Matcher applies gitignore-like exclusion rules with last-rule-wins
// semantics. Default excludes are prepended and can be re-included by user
// negation rules.
type Matcher struct {
	rules []rule
}

var defaultRules = []string{
	".git/",
	".archmap/",
	"node_modules/",
	"vendor/",
	"dist/",
	"build/",
	"coverage/",
	"__pycache__/",
}

// NewMatcher builds a matcher from .archmapignore lines.
func NewMatcher(userRules []string) *Matcher {
	all := make([]string, 0, len(defaultRules)+len(userRules))
	all = append(all, defaultRules...)
	all = append(all, userRules...)

	rules := make([]rule, 0, len(all))
	for _, line := range all {
		if parsed, ok := parseRule(line); ok {
			rules = append(rules, parsed)
		}
	}
	return &Matcher{rules: rules}
}

// ShouldIgnore reports whether relPath is excluded from the scan.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = normalizePath(relPath)
	ignored := false
	for _, r := range m.rules {
		if r.matches(relPath, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	var parsed rule
	if strings.HasPrefix(line, "!") {
		parsed.negated = true
		line = line[1:]
	}
	if strings.HasPrefix(line, "/") {
		parsed.anchored = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		parsed.dirOnly = true
		line = line[:len(line)-1]
	}

	parsed.pattern = normalizePath(line)
	if parsed.pattern == "" {
		return rule{}, false
	}
	return parsed, true
}

func (r rule) matches(relPath string, isDir bool) bool {
	if r.dirOnly {
		if r.insideMatchedDir(relPath) {
			return true
		}
		if !isDir {
			return false
		}
		if r.anchored || strings.Contains(r.pattern, "/") {
			return globMatch(r.pattern, relPath)
		}
		return globMatch(r.pattern, filepath.Base(relPath))
	}

	if r.anchored {
		return globMatch(r.pattern, relPath)
	}

	if strings.Contains(r.pattern, "/") {
		if globMatch(r.pattern, relPath) {
			return true
		}
		parts := strings.Split(relPath, "/")
		for i := 1; i < len(parts); i++ {
			if globMatch(r.pattern, strings.Join(parts[i:], "/")) {
				return true
			}
		}
		return false
	}

	for _, segment := range strings.Split(relPath, "/") {
		if globMatch(r.pattern, segment) {
			return true
		}
	}
	return false
}

// insideMatchedDir reports whether relPath sits beneath a directory the
// rule names. Rules with a slash in the pattern match from the root;
// bare directory names match at any depth.
func (r rule) insideMatchedDir(relPath string) bool {
	if strings.HasPrefix(relPath, r.pattern+"/") {
		return true
	}
	if r.anchored || strings.Contains(r.pattern, "/") {
		return false
	}
	parts := strings.Split(relPath, "/")
	for i := 0; i < len(parts)-1; i++ {
		if globMatch(r.pattern, parts[i]) {
			return true
		}
	}
	return false
}

func globMatch(pattern, value string) bool {
	ok, err := regexp.MatchString("^"+globToRegex(pattern)+"$", value)
	return err == nil && ok
}

func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case ch == '?':
			b.WriteString("[^/]")
		case strings.ContainsRune(`.+()|[]{}^$\\`, rune(ch)):
			b.WriteByte('\\')
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	return strings.TrimPrefix(path, "/")
}
