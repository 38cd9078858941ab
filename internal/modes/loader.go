package modes

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/roomodes/roomodes/pkg/models"
)

// Mode file names per source.
const (
	GlobalModesFilename  = "modes.yaml"
	ProjectModesFilename = ".roomodes"
)

// modeFile mirrors the on-disk document: a top-level customModes list.
// Unknown fields are ignored.
type modeFile struct {
	CustomModes []modeEntry `yaml:"customModes"`
}

// modeEntry is one raw mode definition. Groups entries are decoded loosely
// because each may be either a bare string or a [name, options] pair.
type modeEntry struct {
	Slug               string      `yaml:"slug"`
	Name               string      `yaml:"name"`
	RoleDefinition     string      `yaml:"roleDefinition"`
	Groups             []yaml.Node `yaml:"groups"`
	WhenToUse          string      `yaml:"whenToUse"`
	Description        string      `yaml:"description"`
	CustomInstructions string      `yaml:"customInstructions"`
}

// LoadModeFile reads mode definitions from a YAML or JSONC file. A missing
// file yields no modes. A file that fails to parse logs a warning and
// contributes no modes; a single invalid mode entry is skipped the same way
// without discarding its siblings.
func LoadModeFile(path string, source models.ModeSource, log zerolog.Logger) []*models.Mode {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("reading mode file")
		}
		return nil
	}

	data = normalizeModeFile(data)

	var doc modeFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("parsing mode file, source treated as empty")
		return nil
	}

	var result []*models.Mode
	for _, entry := range doc.CustomModes {
		mode, err := parseModeEntry(entry, source)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skipping invalid mode entry")
			continue
		}
		result = append(result, mode)
	}
	return result
}

// normalizeModeFile strips a UTF-8 BOM and converts JSONC documents to
// plain JSON. YAML 1.2 is a JSON superset, so one decode path serves both.
func normalizeModeFile(data []byte) []byte {
	data = []byte(strings.TrimPrefix(string(data), "\ufeff"))
	if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, "{") {
		return jsonc.ToJSON(data)
	}
	return data
}

func parseModeEntry(entry modeEntry, source models.ModeSource) (*models.Mode, error) {
	groups, err := parseGroups(entry.Groups)
	if err != nil {
		return nil, fmt.Errorf("mode %q: %w", entry.Slug, err)
	}

	mode := &models.Mode{
		Slug:               entry.Slug,
		Name:               entry.Name,
		RoleDefinition:     entry.RoleDefinition,
		Groups:             groups,
		WhenToUse:          entry.WhenToUse,
		Description:        entry.Description,
		CustomInstructions: entry.CustomInstructions,
		Source:             source,
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	return mode, nil
}

// parseGroups decodes a groups list where each entry is either a bare
// group name or a [name, {fileRegex, description}] pair.
func parseGroups(nodes []yaml.Node) ([]models.GroupEntry, error) {
	var groups []models.GroupEntry
	for i, node := range nodes {
		switch node.Kind {
		case yaml.ScalarNode:
			var name string
			if err := node.Decode(&name); err != nil {
				return nil, fmt.Errorf("groups[%d]: %w", i, err)
			}
			groups = append(groups, models.GroupEntry{Group: models.ToolGroup(name)})

		case yaml.SequenceNode:
			if len(node.Content) != 2 {
				return nil, fmt.Errorf("groups[%d]: pair entry must have exactly two elements", i)
			}
			var name string
			if err := node.Content[0].Decode(&name); err != nil {
				return nil, fmt.Errorf("groups[%d]: %w", i, err)
			}
			var opts models.GroupOptions
			if err := node.Content[1].Decode(&opts); err != nil {
				return nil, fmt.Errorf("groups[%d]: options: %w", i, err)
			}
			groups = append(groups, models.GroupEntry{
				Group:   models.ToolGroup(name),
				Options: &opts,
			})

		default:
			return nil, fmt.Errorf("groups[%d]: entry must be a string or a [name, options] pair", i)
		}
	}
	return groups, nil
}
