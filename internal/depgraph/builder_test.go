package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archmap-dev/archmap/internal/inspect"
)

func record(internal, external []string) inspect.FileRecord {
	return inspect.FileRecord{
		Imports: inspect.ImportSet{Internal: internal, External: external},
	}
}

func TestBuildResolvesRelativeImports(t *testing.T) {
	files := map[string]inspect.FileRecord{
		"src/app.ts":         record([]string{"./auth/login", "./util.js"}, nil),
		"src/auth/login.ts":  record([]string{"../util"}, nil),
		"src/util.ts":        record(nil, nil),
		"src/auth/index.tsx": record(nil, nil),
		"src/main.ts":        record([]string{"./auth"}, nil),
	}

	g := Build(files, nil)

	assert.Equal(t, []string{"src/auth/login.ts", "src/util.ts"}, g.Dependencies["src/app.ts"])
	assert.Equal(t, []string{"src/util.ts"}, g.Dependencies["src/auth/login.ts"])
	// Directory imports fall back to the index file.
	assert.Equal(t, []string{"src/auth/index.tsx"}, g.Dependencies["src/main.ts"])
}

func TestBuildReverseAdjacency(t *testing.T) {
	files := map[string]inspect.FileRecord{
		"src/a.ts": record([]string{"./c"}, nil),
		"src/b.ts": record([]string{"./c"}, nil),
		"src/c.ts": record(nil, nil),
	}

	g := Build(files, nil)

	assert.Equal(t, []string{"src/a.ts", "src/b.ts"}, g.Dependents["src/c.ts"])
	assert.Empty(t, g.Dependents["src/a.ts"])
}

func TestBuildDropsUnresolvedAndSelfImports(t *testing.T) {
	files := map[string]inspect.FileRecord{
		"src/a.ts": record([]string{"./missing", "./a"}, nil),
	}

	g := Build(files, nil)

	assert.Empty(t, g.Dependencies["src/a.ts"])
}

func TestBuildKeepsExternalSpecifiers(t *testing.T) {
	files := map[string]inspect.FileRecord{
		"src/a.ts": record(nil, []string{"react", "lodash", "react"}),
	}

	g := Build(files, nil)

	assert.Equal(t, []string{"lodash", "react"}, g.External["src/a.ts"])
}

func TestBuildResolvesAliases(t *testing.T) {
	files := map[string]inspect.FileRecord{
		"src/app.ts":          record(nil, []string{"@auth/login", "react"}),
		"src/auth/login.ts":   record(nil, nil),
		"src/shared/index.ts": record(nil, nil),
		"src/page.ts":         record(nil, []string{"shared"}),
	}
	rules := []AliasRule{
		{Pattern: "@auth/*", Targets: []string{"src/auth/*"}, Order: 0},
		{Pattern: "shared", Targets: []string{"src/shared"}, Order: 1},
	}

	g := Build(files, rules)

	assert.Equal(t, []string{"src/auth/login.ts"}, g.Dependencies["src/app.ts"])
	assert.Equal(t, []string{"react"}, g.External["src/app.ts"])
	assert.Equal(t, []string{"src/shared/index.ts"}, g.Dependencies["src/page.ts"])
	assert.Empty(t, g.External["src/page.ts"])
}

func TestBuildAliasLongestMatchWins(t *testing.T) {
	files := map[string]inspect.FileRecord{
		"src/a.ts":              record(nil, []string{"@app/ui/button"}),
		"src/ui/button.ts":      record(nil, nil),
		"src/generic/button.ts": record(nil, nil),
	}
	rules := []AliasRule{
		{Pattern: "@app/*", Targets: []string{"src/generic/*"}, Order: 0},
		{Pattern: "@app/ui/*", Targets: []string{"src/ui/*"}, Order: 1},
	}

	g := Build(files, rules)

	assert.Equal(t, []string{"src/ui/button.ts"}, g.Dependencies["src/a.ts"])
}

func TestBuildAliasDeclarationOrderBreaksTies(t *testing.T) {
	files := map[string]inspect.FileRecord{
		"src/a.ts":      record(nil, []string{"~x/mod"}),
		"first/mod.ts":  record(nil, nil),
		"second/mod.ts": record(nil, nil),
	}
	rules := []AliasRule{
		{Pattern: "~x/*", Targets: []string{"first/*"}, Order: 0},
		{Pattern: "~x/*", Targets: []string{"second/*"}, Order: 1},
	}

	g := Build(files, rules)

	assert.Equal(t, []string{"first/mod.ts"}, g.Dependencies["src/a.ts"])
}

func TestResolvePathRejectsEscapes(t *testing.T) {
	r := newResolver(map[string]inspect.FileRecord{"src/a.ts": {}}, nil)

	_, ok := r.resolveRelative("src/a.ts", "../../outside")
	assert.False(t, ok)
}

func TestResolvePathExtensionSwap(t *testing.T) {
	r := newResolver(map[string]inspect.FileRecord{"src/util.ts": {}}, nil)

	target, ok := r.resolvePath("src/util.js")
	require.True(t, ok)
	assert.Equal(t, "src/util.ts", target)
}
