package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archmap-dev/archmap/internal/store"
)

var runNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func seedProject(t *testing.T) string {
	root := t.TempDir()
	writeSource(t, root, "src/index.ts", "import { routes } from './api/routes';\n")
	writeSource(t, root, "src/api/routes.ts", "import { login } from '../auth/login';\nexport function routes() {}\n")
	writeSource(t, root, "src/auth/login.ts", "import { session } from './session';\nexport function login() {}\n")
	writeSource(t, root, "src/auth/session.ts", "export const session = 1;\n")
	writeSource(t, root, "src/auth/token.ts", "export const token = 2;\n")
	return root
}

func TestRunFirstAnalysis(t *testing.T) {
	root := seedProject(t)

	summary, err := Run(Options{RootPath: root, Now: runNow})
	require.NoError(t, err)

	assert.Equal(t, "analyze", summary.Mode)
	assert.Equal(t, 5, summary.FilesScanned)
	assert.Equal(t, 3, summary.Clusters)
	assert.Equal(t, 0, summary.Matched)
	assert.Equal(t, 0, summary.Renamed)
	assert.Equal(t, 3, summary.ClustersWritten)
	assert.True(t, summary.GraphWritten)
	assert.Empty(t, summary.Orphaned)

	s := store.Open(root, nil)
	records, report := s.LoadClusters()
	require.Empty(t, report.Warnings)
	require.Len(t, records, 3)
	assert.Equal(t, "api", records[0].ID)
	assert.Equal(t, "auth", records[1].ID)
	assert.Equal(t, "core", records[2].ID)

	auth := records[1]
	assert.Equal(t, []string{"src/auth/login.ts", "src/auth/session.ts", "src/auth/token.ts"}, auth.Files)
	assert.Equal(t, []string{"login", "session", "token"}, auth.Exports)
	assert.Equal(t, []string{"src/auth/session.ts"}, auth.Imports.Internal)
	assert.NotEmpty(t, auth.CompositionHash)
	assert.Equal(t, "2026-03-14T09:30:00Z", auth.Metadata.CreatedAt)

	graph, err := s.LoadGraph()
	require.NoError(t, err)
	require.NotNil(t, graph)
	assert.Len(t, graph.Nodes, 3)
}

func TestRunIsIdempotent(t *testing.T) {
	root := seedProject(t)

	_, err := Run(Options{RootPath: root, Now: runNow})
	require.NoError(t, err)

	s := store.Open(root, nil)
	graphBefore, err := os.ReadFile(s.GraphPath())
	require.NoError(t, err)
	authBefore, err := os.ReadFile(s.ClusterPath("auth"))
	require.NoError(t, err)

	second, err := Run(Options{RootPath: root, Now: runNow.Add(time.Hour)})
	require.NoError(t, err)

	assert.Equal(t, 0, second.ClustersWritten)
	assert.False(t, second.GraphWritten)
	assert.Equal(t, 3, second.Matched)
	assert.Equal(t, 0, second.Renamed)

	graphAfter, err := os.ReadFile(s.GraphPath())
	require.NoError(t, err)
	assert.Equal(t, graphBefore, graphAfter)
	authAfter, err := os.ReadFile(s.ClusterPath("auth"))
	require.NoError(t, err)
	assert.Equal(t, authBefore, authAfter)
}

func TestRunKeepsIdentityWhenFilesAdded(t *testing.T) {
	root := seedProject(t)

	_, err := Run(Options{RootPath: root, Now: runNow})
	require.NoError(t, err)

	// 3 of 4 files survive: overlap 0.75 clears the threshold, so the
	// cluster keeps its id and only its membership changes.
	writeSource(t, root, "src/auth/logout.ts", "export const logout = 3;\n")

	summary, err := Run(Options{RootPath: root, Now: runNow.Add(time.Hour)})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Matched)
	assert.Equal(t, 1, summary.ClustersWritten)
	assert.Empty(t, summary.Orphaned)

	records, _ := store.Open(root, nil).LoadClusters()
	require.Len(t, records, 3)
	auth := records[1]
	assert.Equal(t, "auth", auth.ID)
	assert.Len(t, auth.Files, 4)
	assert.Equal(t, "2026-03-14T09:30:00Z", auth.Metadata.CreatedAt)
	assert.Equal(t, "2026-03-14T10:30:00Z", auth.Metadata.UpdatedAt)
}

func TestRunAdoptsPersistedIdentity(t *testing.T) {
	root := seedProject(t)
	s := store.Open(root, nil)

	// A prior run named this cluster "accounts"; the folder heuristic
	// suggests "auth", but the persisted identity wins.
	_, err := s.SaveCluster(store.ClusterRecord{
		Version:         store.RecordVersion,
		ID:              "accounts",
		Layer:           "Accounts",
		Files:           []string{"src/auth/login.ts", "src/auth/session.ts", "src/auth/token.ts"},
		CompositionHash: "seed",
		Metadata:        store.RecordMeta{CreatedAt: "2026-01-01T00:00:00Z", UpdatedAt: "2026-01-01T00:00:00Z"},
	})
	require.NoError(t, err)

	summary, err := Run(Options{RootPath: root, Now: runNow})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Matched)
	assert.Equal(t, 1, summary.Renamed)

	records, _ := s.LoadClusters()
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{"accounts", "api", "core"}, ids)
	assert.Equal(t, "2026-01-01T00:00:00Z", records[0].Metadata.CreatedAt)

	// The api cluster's edge follows the rename.
	assert.Equal(t, []string{"accounts"}, records[1].Imports.External)
}

func TestRunDryRunWritesNothing(t *testing.T) {
	root := seedProject(t)

	summary, err := Run(Options{RootPath: root, DryRun: true, Now: runNow})
	require.NoError(t, err)

	assert.Equal(t, "status", summary.Mode)
	assert.Equal(t, 3, summary.Clusters)
	assert.Equal(t, 0, summary.ClustersWritten)
	assert.False(t, summary.GraphWritten)

	_, err = os.Stat(filepath.Join(root, store.Dir))
	assert.True(t, os.IsNotExist(err))
}

func TestRunReportsOrphans(t *testing.T) {
	root := seedProject(t)
	s := store.Open(root, nil)

	_, err := s.SaveCluster(store.ClusterRecord{
		Version:         store.RecordVersion,
		ID:              "removed-module",
		Layer:           "Removed Module",
		Files:           []string{"src/removed/a.ts", "src/removed/b.ts"},
		CompositionHash: "seed",
	})
	require.NoError(t, err)

	summary, err := Run(Options{RootPath: root, Now: runNow})
	require.NoError(t, err)

	assert.Equal(t, []string{"removed-module"}, summary.Orphaned)

	// Orphaned records stay on disk; the pipeline never deletes.
	records, _ := s.LoadClusters()
	assert.Len(t, records, 4)
}

func TestRunSurfacesVersionGateErrors(t *testing.T) {
	root := seedProject(t)
	dir := filepath.Join(root, store.Dir, "clusters")
	require.NoError(t, os.MkdirAll(dir, 0755))
	future := `{"version": 99, "id": "future", "files": ["a.ts"], "compositionHash": "x"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "future.json"), []byte(future), 0644))

	summary, err := Run(Options{RootPath: root, Now: runNow})
	require.NoError(t, err)

	require.Len(t, summary.RecordErrors, 1)
	assert.Contains(t, summary.RecordErrors[0], "too new")
}

func TestRunWarnsOnMalformedGraphArtifact(t *testing.T) {
	root := seedProject(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, store.Dir), 0755))
	graphPath := filepath.Join(root, store.Dir, "graph.json")
	require.NoError(t, os.WriteFile(graphPath, []byte("{broken"), 0644))

	summary, err := Run(Options{RootPath: root, Now: runNow})
	require.NoError(t, err)

	assert.True(t, summary.GraphWritten)
	found := false
	for _, w := range summary.Warnings {
		if strings.Contains(w, "graph.json") {
			found = true
		}
	}
	assert.True(t, found, "expected a graph.json warning, got %v", summary.Warnings)

	// The replacement is a healthy artifact.
	graph, err := store.Open(root, nil).LoadGraph()
	require.NoError(t, err)
	require.NotNil(t, graph)
}

func TestRunHonorsIgnoreRules(t *testing.T) {
	root := seedProject(t)
	writeSource(t, root, "src/generated/schema.ts", "export const schema = {};\n")

	summary, err := Run(Options{
		RootPath:    root,
		IgnoreRules: []string{"generated/"},
		Now:         runNow,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.FilesScanned)
}
