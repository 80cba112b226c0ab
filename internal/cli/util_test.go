package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func thresholdCommand(args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	cmd.Flags().Float64("threshold", 0, "")
	cmd.Flags().StringSlice("source-root", nil, "")
	cmd.SetArgs(args)
	_ = cmd.Execute()
	return cmd
}

func TestParseThresholdDefault(t *testing.T) {
	value, err := parseThreshold(thresholdCommand())
	require.NoError(t, err)
	assert.Equal(t, 0.7, value)
}

func TestParseThresholdFlag(t *testing.T) {
	value, err := parseThreshold(thresholdCommand("--threshold", "0.85"))
	require.NoError(t, err)
	assert.Equal(t, 0.85, value)
}

func TestParseThresholdEnv(t *testing.T) {
	t.Setenv("ARCHMAP_MATCH_THRESHOLD", "0.6")
	value, err := parseThreshold(thresholdCommand())
	require.NoError(t, err)
	assert.Equal(t, 0.6, value)

	// The flag wins over the environment.
	value, err = parseThreshold(thresholdCommand("--threshold", "0.9"))
	require.NoError(t, err)
	assert.Equal(t, 0.9, value)
}

func TestParseThresholdRejectsOutOfRange(t *testing.T) {
	_, err := parseThreshold(thresholdCommand("--threshold", "1.5"))
	assert.Error(t, err)

	t.Setenv("ARCHMAP_MATCH_THRESHOLD", "not-a-number")
	_, err = parseThreshold(thresholdCommand())
	assert.Error(t, err)
}

func TestParseSourceRoots(t *testing.T) {
	roots, err := parseSourceRoots(thresholdCommand())
	require.NoError(t, err)
	assert.Equal(t, []string{"src", "lib", "app"}, roots)

	roots, err = parseSourceRoots(thresholdCommand("--source-root", "packages,modules/"))
	require.NoError(t, err)
	assert.Equal(t, []string{"packages", "modules"}, roots)
}

func TestParseSourceRootsEnv(t *testing.T) {
	t.Setenv("ARCHMAP_SOURCE_ROOTS", "server, client")
	roots, err := parseSourceRoots(thresholdCommand())
	require.NoError(t, err)
	assert.Equal(t, []string{"server", "client"}, roots)
}

func TestLoadIgnoreRules(t *testing.T) {
	root := t.TempDir()

	rules, err := LoadIgnoreRules(root)
	require.NoError(t, err)
	assert.Nil(t, rules)

	content := "# comment\n\n*.test.ts\ngenerated/\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, IgnoreFile), []byte(content), 0644))

	rules, err = LoadIgnoreRules(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.test.ts", "generated/"}, rules)
}

func TestResolveRootPath(t *testing.T) {
	dir := t.TempDir()

	resolved, err := resolveRootPath([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, resolved)

	_, err = resolveRootPath([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)

	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = resolveRootPath([]string{file})
	assert.Error(t, err)
}
