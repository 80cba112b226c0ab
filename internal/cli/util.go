package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archmap-dev/archmap/internal/cluster"
)

// IgnoreFile is the project-local exclusion rule file.
const IgnoreFile = ".archmapignore"

func resolveRootPath(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	rootPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return "", fmt.Errorf("failed to access path %q: %w", rootPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path %q is not a directory", rootPath)
	}
	return rootPath, nil
}

// LoadIgnoreRules reads .archmapignore lines, skipping blanks and comments.
func LoadIgnoreRules(rootPath string) ([]string, error) {
	f, err := os.Open(filepath.Join(rootPath, IgnoreFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFile, err)
	}
	defer f.Close()

	rules := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", IgnoreFile, err)
	}
	return rules, nil
}

// parseThreshold resolves the match threshold from the flag, then the
// environment, then the built-in default.
func parseThreshold(cmd *cobra.Command) (float64, error) {
	value, err := cmd.Flags().GetFloat64("threshold")
	if err != nil {
		return 0, fmt.Errorf("failed to read --threshold flag: %w", err)
	}
	if value == 0 {
		if env := strings.TrimSpace(os.Getenv("ARCHMAP_MATCH_THRESHOLD")); env != "" {
			value, err = strconv.ParseFloat(env, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid ARCHMAP_MATCH_THRESHOLD %q: %w", env, err)
			}
		}
	}
	if value == 0 {
		return cluster.DefaultMatchThreshold, nil
	}
	if value < 0 || value > 1 {
		return 0, fmt.Errorf("threshold must be within [0,1], got %v", value)
	}
	return value, nil
}

// parseSourceRoots resolves source roots from the flag, then the
// environment, then the built-in default.
func parseSourceRoots(cmd *cobra.Command) ([]string, error) {
	roots, err := cmd.Flags().GetStringSlice("source-root")
	if err != nil {
		return nil, fmt.Errorf("failed to read --source-root flag: %w", err)
	}
	if len(roots) == 0 {
		if env := strings.TrimSpace(os.Getenv("ARCHMAP_SOURCE_ROOTS")); env != "" {
			roots = strings.Split(env, ",")
		}
	}
	out := make([]string, 0, len(roots))
	for _, root := range roots {
		root = strings.Trim(strings.TrimSpace(root), "/")
		if root != "" {
			out = append(out, root)
		}
	}
	if len(out) == 0 {
		out = cluster.DefaultSourceRoots
	}
	return out, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func reportWarnings(warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
}

func reportRecordErrors(errs []string) {
	for _, msg := range errs {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}
}
