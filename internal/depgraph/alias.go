package depgraph

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// AliasRule maps a wildcard import pattern (prefix*suffix, or an exact
// specifier when no wildcard is present) onto one or more target path
// templates. Order records the rule's declaration position; earlier rules
// win score ties.
type AliasRule struct {
	Pattern string
	Targets []string
	Order   int
}

func (r AliasRule) split() (prefix, suffix string, wildcard bool) {
	idx := strings.Index(r.Pattern, "*")
	if idx < 0 {
		return r.Pattern, "", false
	}
	return r.Pattern[:idx], r.Pattern[idx+1:], true
}

// Match reports whether specifier matches the rule, the wildcard capture,
// and the matched prefix+suffix length used for longest-match ranking.
func (r AliasRule) Match(specifier string) (capture string, score int, ok bool) {
	prefix, suffix, wildcard := r.split()
	if !wildcard {
		if specifier == r.Pattern {
			return "", len(r.Pattern), true
		}
		return "", 0, false
	}
	if !strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) {
		return "", 0, false
	}
	if len(specifier) < len(prefix)+len(suffix) {
		return "", 0, false
	}
	return specifier[len(prefix) : len(specifier)-len(suffix)], len(prefix) + len(suffix), true
}

// Expand substitutes capture into each target template.
func (r AliasRule) Expand(capture string) []string {
	out := make([]string, 0, len(r.Targets))
	for _, target := range r.Targets {
		out = append(out, strings.Replace(target, "*", capture, 1))
	}
	return out
}

var aliasConfigFiles = []string{"tsconfig.json", "jsconfig.json"}

// LoadAliasRules reads path-alias rules from the project's tsconfig.json or
// jsconfig.json compilerOptions.paths, resolved against baseUrl and
// preserving declaration order. A missing or malformed config yields no
// rules and no error; speculative analysis must not fail on project config.
func LoadAliasRules(rootPath string) []AliasRule {
	for _, name := range aliasConfigFiles {
		data, err := os.ReadFile(filepath.Join(rootPath, name))
		if err != nil {
			continue
		}
		if rules, err := parseAliasConfig(data); err == nil {
			return rules
		}
	}
	return nil
}

func parseAliasConfig(data []byte) ([]AliasRule, error) {
	var config struct {
		CompilerOptions struct {
			BaseURL string          `json:"baseUrl"`
			Paths   json.RawMessage `json:"paths"`
		} `json:"compilerOptions"`
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if len(config.CompilerOptions.Paths) == 0 {
		return nil, nil
	}

	baseURL := config.CompilerOptions.BaseURL
	if baseURL == "" {
		baseURL = "."
	}

	// encoding/json maps drop key order, so walk the token stream to keep
	// the declaration order that breaks score ties.
	return decodeOrderedPaths(config.CompilerOptions.Paths, baseURL)
}

func decodeOrderedPaths(raw json.RawMessage, baseURL string) ([]AliasRule, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("paths is not an object")
	}

	rules := make([]AliasRule, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		pattern, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("paths key is not a string")
		}

		var targets []string
		if err := dec.Decode(&targets); err != nil {
			return nil, err
		}

		resolved := make([]string, 0, len(targets))
		for _, target := range targets {
			resolved = append(resolved, path.Clean(path.Join(filepath.ToSlash(baseURL), target)))
		}
		rules = append(rules, AliasRule{
			Pattern: pattern,
			Targets: resolved,
			Order:   len(rules),
		})
	}
	return rules, nil
}
