package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archmap-dev/archmap/internal/depgraph"
	"github.com/archmap-dev/archmap/internal/inspect"
)

func TestAssignID(t *testing.T) {
	roots := DefaultSourceRoots

	cases := []struct {
		path string
		want string
	}{
		{"src/index.ts", "core"},
		{"index.ts", "core"},
		{"src/auth/login.ts", "auth"},
		{"src/web/core/render.ts", "web-core"},
		{"src/web/core/nested/deep.ts", "web-core"},
		{"lib/utils/strings.ts", "utils"},
		{"app/Pages/Home.tsx", "pages"},
		{"scripts/build.ts", "scripts"},
		{"src/My Widgets/grid.ts", "my-widgets"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AssignID(c.path, roots), "path %s", c.path)
	}
}

func TestAssignIDDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, "web-core", AssignID("src/web/core/a.ts", DefaultSourceRoots))
	}
}

func TestBuildClusters(t *testing.T) {
	files := map[string]inspect.FileRecord{
		"src/index.ts":        {Path: "src/index.ts"},
		"src/auth/login.ts":   {Path: "src/auth/login.ts"},
		"src/auth/session.ts": {Path: "src/auth/session.ts"},
		"src/api/routes.ts":   {Path: "src/api/routes.ts"},
	}
	g := &depgraph.Graph{
		Files: files,
		Dependencies: map[string][]string{
			"src/auth/login.ts": {"src/auth/session.ts", "src/api/routes.ts"},
			"src/index.ts":      {"src/auth/login.ts"},
		},
	}

	clusters := BuildClusters(g, nil)

	require.Len(t, clusters, 3)
	assert.Equal(t, "api", clusters[0].ID)
	assert.Equal(t, "auth", clusters[1].ID)
	assert.Equal(t, "core", clusters[2].ID)

	auth := clusters[1]
	assert.Equal(t, "Auth", auth.Name)
	assert.Equal(t, []string{"src/auth/login.ts", "src/auth/session.ts"}, auth.Files)
	assert.Equal(t, []string{"src/auth/session.ts"}, auth.InternalDeps)
	assert.Equal(t, []string{"api"}, auth.ExternalDeps)

	core := clusters[2]
	assert.Equal(t, []string{"auth"}, core.ExternalDeps)
	assert.Empty(t, core.InternalDeps)
}

func TestBuildClustersSortedOutput(t *testing.T) {
	files := map[string]inspect.FileRecord{
		"src/zeta/a.ts":  {Path: "src/zeta/a.ts"},
		"src/alpha/a.ts": {Path: "src/alpha/a.ts"},
		"src/mid/a.ts":   {Path: "src/mid/a.ts"},
	}
	g := &depgraph.Graph{Files: files, Dependencies: map[string][]string{}}

	clusters := BuildClusters(g, DefaultSourceRoots)

	ids := make([]string, 0, len(clusters))
	for _, c := range clusters {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Web Core", humanize("web-core"))
	assert.Equal(t, "Auth", humanize("auth"))
}
