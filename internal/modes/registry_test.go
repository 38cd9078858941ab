package modes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/roomodes/roomodes/pkg/models"
)

func TestBuiltinModesAreValid(t *testing.T) {
	builtins := BuiltinModes()
	if len(builtins) != 5 {
		t.Fatalf("expected 5 builtin modes, got %d", len(builtins))
	}

	wantSlugs := map[string]bool{
		"code": true, "architect": true, "ask": true, "debug": true, "orchestrator": true,
	}
	for _, mode := range builtins {
		if !wantSlugs[mode.Slug] {
			t.Errorf("unexpected builtin slug %q", mode.Slug)
		}
		if err := mode.Validate(); err != nil {
			t.Errorf("builtin %q fails validation: %v", mode.Slug, err)
		}
		if mode.Source != models.SourceBuiltin {
			t.Errorf("builtin %q has source %q", mode.Slug, mode.Source)
		}
	}
}

func TestBuiltinArchitectEditRestriction(t *testing.T) {
	registry := NewRegistry(BuiltinModes())
	architect := registry.Get("architect")
	if architect == nil {
		t.Fatal("architect mode missing")
	}

	if !architect.CanEditFile("README.md") {
		t.Error("architect should edit README.md")
	}
	if architect.CanEditFile("main.py") {
		t.Error("architect should not edit main.py")
	}

	opts := architect.GroupOptions(models.GroupEdit)
	if opts == nil || opts.FileRegex != `\.md$` {
		t.Errorf("architect edit options = %+v, want fileRegex \\.md$", opts)
	}
}

func TestLoadPrecedenceProjectOverridesAll(t *testing.T) {
	configDir := t.TempDir()
	projectRoot := t.TempDir()

	globalYAML := `customModes:
  - slug: code
    name: Global Code
    roleDefinition: global override
    groups: [read]
  - slug: review
    name: Review
    roleDefinition: global reviewer
    groups: [read, browser]
`
	projectYAML := `customModes:
  - slug: code
    name: Project Code
    roleDefinition: project override
    groups:
      - read
      - [edit, {fileRegex: "\\.go$", description: "Go files only"}]
`
	writeFile(t, filepath.Join(configDir, GlobalModesFilename), globalYAML)
	writeFile(t, filepath.Join(projectRoot, ProjectModesFilename), projectYAML)

	registry := Load(projectRoot, configDir, zerolog.Nop())

	code := registry.Get("code")
	if code == nil {
		t.Fatal("code mode missing")
	}
	if code.Source != models.SourceProject {
		t.Errorf("code source = %q, want project", code.Source)
	}
	if code.Name != "Project Code" {
		t.Errorf("code name = %q, want Project Code", code.Name)
	}
	if opts := code.GroupOptions(models.GroupEdit); opts == nil || opts.FileRegex != `\.go$` {
		t.Errorf("code edit options = %+v, want fileRegex \\.go$", opts)
	}

	review := registry.Get("review")
	if review == nil || review.Source != models.SourceGlobal {
		t.Errorf("review mode = %+v, want global source", review)
	}

	// Builtins not shadowed remain available.
	if ask := registry.Get("ask"); ask == nil || ask.Source != models.SourceBuiltin {
		t.Errorf("ask mode = %+v, want builtin source", ask)
	}
}

func TestLoadMalformedFileContributesNothing(t *testing.T) {
	configDir := t.TempDir()
	writeFile(t, filepath.Join(configDir, GlobalModesFilename), "customModes: [not: closed")

	registry := Load("", configDir, zerolog.Nop())

	// Builtins are always available even when a source fails to parse.
	if registry.Len() != len(BuiltinModes()) {
		t.Errorf("registry has %d modes, want %d builtins only", registry.Len(), len(BuiltinModes()))
	}
}

func TestLoadSkipsInvalidEntriesKeepsSiblings(t *testing.T) {
	configDir := t.TempDir()
	content := `customModes:
  - slug: "Bad Slug!"
    name: Broken
    roleDefinition: nope
    groups: [read]
  - slug: good
    name: Good
    roleDefinition: fine
    groups: [read]
`
	writeFile(t, filepath.Join(configDir, GlobalModesFilename), content)

	registry := Load("", configDir, zerolog.Nop())
	if registry.Get("good") == nil {
		t.Error("valid sibling mode was dropped")
	}
	if registry.Len() != len(BuiltinModes())+1 {
		t.Errorf("registry has %d modes, want builtins + 1", registry.Len())
	}
}

func TestLoadJSONCProjectFile(t *testing.T) {
	projectRoot := t.TempDir()
	content := `{
  // project modes, comments allowed
  "customModes": [
    {
      "slug": "docs",
      "name": "Docs",
      "roleDefinition": "You write documentation.",
      "groups": ["read", ["edit", {"fileRegex": "\\.mdx?$"}]],
    },
  ],
}`
	writeFile(t, filepath.Join(projectRoot, ProjectModesFilename), content)

	registry := Load(projectRoot, "", zerolog.Nop())
	docs := registry.Get("docs")
	if docs == nil {
		t.Fatal("docs mode missing")
	}
	if docs.Source != models.SourceProject {
		t.Errorf("docs source = %q, want project", docs.Source)
	}
	if !docs.CanEditFile("guide.mdx") || docs.CanEditFile("main.go") {
		t.Error("docs edit restriction not applied from JSONC file")
	}
}

func TestLoadStripsBOM(t *testing.T) {
	configDir := t.TempDir()
	content := "\ufeffcustomModes:\n  - slug: bom\n    name: BOM\n    roleDefinition: ok\n    groups: [read]\n"
	writeFile(t, filepath.Join(configDir, GlobalModesFilename), content)

	registry := Load("", configDir, zerolog.Nop())
	if registry.Get("bom") == nil {
		t.Error("mode from BOM-prefixed file missing")
	}
}

func TestListDeterministicOrder(t *testing.T) {
	project := &models.Mode{Slug: "zeta", Name: "Z", RoleDefinition: "r", Source: models.SourceProject}
	global := &models.Mode{Slug: "alpha", Name: "A", RoleDefinition: "r", Source: models.SourceGlobal}
	registry := NewRegistry(BuiltinModes(), []*models.Mode{global, project})

	listed := registry.List(FilterAll)
	if len(listed) != 7 {
		t.Fatalf("listed %d modes, want 7", len(listed))
	}

	// Project first, then global, then builtins lexicographically.
	wantOrder := []string{"zeta", "alpha", "architect", "ask", "code", "debug", "orchestrator"}
	for i, slug := range wantOrder {
		if listed[i].Slug != slug {
			t.Errorf("listed[%d] = %q, want %q", i, listed[i].Slug, slug)
		}
	}
}

func TestListSourceFilter(t *testing.T) {
	registry := NewRegistry(BuiltinModes(), []*models.Mode{
		{Slug: "extra", Name: "E", RoleDefinition: "r", Source: models.SourceGlobal},
	})

	if got := len(registry.List(FilterGlobal)); got != 1 {
		t.Errorf("global filter returned %d modes, want 1", got)
	}
	if got := len(registry.List(FilterProject)); got != 0 {
		t.Errorf("project filter returned %d modes, want 0", got)
	}
	if got := len(registry.List(FilterBuiltin)); got != 5 {
		t.Errorf("builtin filter returned %d modes, want 5", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
