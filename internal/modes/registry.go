// Package modes loads mode definitions from built-in, global, and project
// sources, resolves slug precedence, and answers capability queries. The
// registry is immutable after Load, so it is freely shareable across
// goroutines without locking.
package modes

import (
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/roomodes/roomodes/pkg/models"
)

// SourceFilter selects which sources List returns. The zero value ("")
// behaves like FilterAll.
type SourceFilter string

const (
	FilterBuiltin SourceFilter = "builtin"
	FilterGlobal  SourceFilter = "global"
	FilterProject SourceFilter = "project"
	FilterAll     SourceFilter = "all"
)

// ValidSourceFilters is the set of accepted list_modes source values.
var ValidSourceFilters = map[SourceFilter]bool{
	FilterBuiltin: true,
	FilterGlobal:  true,
	FilterProject: true,
	FilterAll:     true,
}

// Registry holds the merged mode table. On slug collision the precedence is
// project > global > builtin.
type Registry struct {
	bySlug map[string]*models.Mode
}

// Load builds a registry from the built-in set plus the global and project
// mode files. projectRoot may be empty to skip project modes. Parse failures
// in either file are logged and that source contributes nothing; built-ins
// are always available.
func Load(projectRoot, configDir string, log zerolog.Logger) *Registry {
	bySlug := make(map[string]*models.Mode)

	for _, mode := range BuiltinModes() {
		bySlug[mode.Slug] = mode
	}

	if configDir != "" {
		globalPath := filepath.Join(configDir, GlobalModesFilename)
		for _, mode := range LoadModeFile(globalPath, models.SourceGlobal, log) {
			bySlug[mode.Slug] = mode
		}
	}

	if projectRoot != "" {
		projectPath := filepath.Join(projectRoot, ProjectModesFilename)
		for _, mode := range LoadModeFile(projectPath, models.SourceProject, log) {
			bySlug[mode.Slug] = mode
		}
	}

	log.Info().Int("modes", len(bySlug)).Msg("mode registry loaded")
	return &Registry{bySlug: bySlug}
}

// NewRegistry builds a registry directly from the given modes, later
// entries overriding earlier ones on slug collision. Used by tests when no
// filesystem sources are wanted.
func NewRegistry(modeSets ...[]*models.Mode) *Registry {
	bySlug := make(map[string]*models.Mode)
	for _, set := range modeSets {
		for _, mode := range set {
			bySlug[mode.Slug] = mode
		}
	}
	return &Registry{bySlug: bySlug}
}

// Get returns the mode for a slug, or nil when unknown.
func (r *Registry) Get(slug string) *models.Mode {
	return r.bySlug[slug]
}

// Has reports whether a slug is loaded.
func (r *Registry) Has(slug string) bool {
	_, ok := r.bySlug[slug]
	return ok
}

// Slugs returns all loaded slugs in lexicographic order.
func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.bySlug))
	for slug := range r.bySlug {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// List returns modes matching the filter in deterministic order: project
// first, then global, then builtin, lexicographic by slug within each source.
func (r *Registry) List(filter SourceFilter) []*models.Mode {
	if filter == "" {
		filter = FilterAll
	}

	result := make([]*models.Mode, 0, len(r.bySlug))
	for _, mode := range r.bySlug {
		if filter == FilterAll || string(mode.Source) == string(filter) {
			result = append(result, mode)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		ri, rj := sourceRank(result[i].Source), sourceRank(result[j].Source)
		if ri != rj {
			return ri < rj
		}
		return result[i].Slug < result[j].Slug
	})
	return result
}

func sourceRank(s models.ModeSource) int {
	switch s {
	case models.SourceProject:
		return 0
	case models.SourceGlobal:
		return 1
	default:
		return 2
	}
}

// Len returns the number of loaded modes.
func (r *Registry) Len() int {
	return len(r.bySlug)
}
