package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roomodes/roomodes/internal/modes"
	"github.com/roomodes/roomodes/internal/rpc"
	"github.com/roomodes/roomodes/pkg/models"
)

// resourceDescriptor is one entry of a resources/list result.
type resourceDescriptor struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	Description string `json:"description"`
}

// resourceContents is one entry of a resources/read result.
type resourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

func (s *Server) handleListResources(json.RawMessage) (any, *rpc.Error) {
	var resources []resourceDescriptor

	for _, mode := range s.registry.List(modes.FilterAll) {
		description := mode.Description
		if description == "" {
			description = fmt.Sprintf("Full configuration for %s", mode.Name)
		}
		resources = append(resources,
			resourceDescriptor{
				URI:         fmt.Sprintf("mode://%s", mode.Slug),
				Name:        mode.Name,
				MimeType:    "application/json",
				Description: description,
			},
			resourceDescriptor{
				URI:         fmt.Sprintf("mode://%s/config", mode.Slug),
				Name:        fmt.Sprintf("%s - Configuration", mode.Name),
				MimeType:    "application/json",
				Description: fmt.Sprintf("Structured configuration for %s", mode.Name),
			},
			resourceDescriptor{
				URI:         fmt.Sprintf("mode://%s/system_prompt", mode.Slug),
				Name:        fmt.Sprintf("%s - System Prompt", mode.Name),
				MimeType:    "text/plain",
				Description: fmt.Sprintf("System prompt for %s", mode.Name),
			},
		)
	}

	return map[string]any{"resources": resources}, nil
}

func (s *Server) handleReadResource(params json.RawMessage) (any, *rpc.Error) {
	args, rpcErr := decodeArgs(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	uri, rpcErr := requireString(args, "uri")
	if rpcErr != nil {
		return nil, rpcErr
	}

	slug, subresource, rpcErr := parseModeURI(uri)
	if rpcErr != nil {
		return nil, rpcErr
	}

	mode := s.registry.Get(slug)
	if mode == nil {
		return nil, rpc.NewError(rpc.CodeModeNotFound,
			"Mode not found: %s. Available modes: %s", slug, strings.Join(s.registry.Slugs(), ", "))
	}

	var text, mimeType string
	switch subresource {
	case "":
		doc, err := serializeModeFull(mode)
		if err != nil {
			return nil, rpc.NewError(rpc.CodeInternalError, "serializing mode")
		}
		text, mimeType = doc, "application/json"
	case "config":
		doc, err := serializeModeConfig(mode)
		if err != nil {
			return nil, rpc.NewError(rpc.CodeInternalError, "serializing mode config")
		}
		text, mimeType = doc, "application/json"
	case "system_prompt":
		text, mimeType = modes.SystemPrompt(mode), "text/plain"
	default:
		return nil, rpc.NewError(rpc.CodeValidationError,
			"Unknown subresource: %s. Valid subresources: config, system_prompt", subresource)
	}

	return map[string]any{
		"contents": []resourceContents{{URI: uri, MimeType: mimeType, Text: text}},
	}, nil
}

// parseModeURI splits "mode://{slug}[/{subresource}]" into its parts.
func parseModeURI(uri string) (slug, subresource string, rpcErr *rpc.Error) {
	scheme, rest, found := strings.Cut(uri, "://")
	if !found {
		return "", "", rpc.NewError(rpc.CodeValidationError, "URI must contain '://' separator")
	}
	if scheme != "mode" {
		return "", "", rpc.NewError(rpc.CodeValidationError, "URI scheme must be 'mode', got %q", scheme)
	}

	slug, subresource, _ = strings.Cut(rest, "/")
	if slug == "" {
		return "", "", rpc.NewError(rpc.CodeValidationError, "Mode slug is required in URI")
	}
	if strings.Contains(subresource, "/") {
		return "", "", rpc.NewError(rpc.CodeValidationError, "Unknown subresource: %s", subresource)
	}
	return slug, subresource, nil
}

// modeConfigDoc is the structured config serialization: the mode schema as
// written in mode files, with groups as strings or [name, options] pairs.
type modeConfigDoc struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Source      string `json:"source"`
	Groups      []any  `json:"groups"`
	Description string `json:"description,omitempty"`
	WhenToUse   string `json:"when_to_use,omitempty"`
}

func serializeModeConfig(mode *models.Mode) (string, error) {
	doc := modeConfigDoc{
		Slug:        mode.Slug,
		Name:        mode.Name,
		Source:      string(mode.Source),
		Groups:      make([]any, 0, len(mode.Groups)),
		Description: mode.Description,
		WhenToUse:   mode.WhenToUse,
	}

	for _, entry := range mode.Groups {
		if entry.Options == nil {
			doc.Groups = append(doc.Groups, string(entry.Group))
			continue
		}
		opts := map[string]string{}
		if entry.Options.FileRegex != "" {
			opts["fileRegex"] = entry.Options.FileRegex
		}
		if entry.Options.Description != "" {
			opts["description"] = entry.Options.Description
		}
		doc.Groups = append(doc.Groups, []any{string(entry.Group), opts})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// modeFullDoc is the full serialization: all metadata plus a per-group
// enabled/restriction table.
type modeFullDoc struct {
	Slug               string                   `json:"slug"`
	Name               string                   `json:"name"`
	Source             string                   `json:"source"`
	Description        string                   `json:"description,omitempty"`
	WhenToUse          string                   `json:"when_to_use,omitempty"`
	RoleDefinition     string                   `json:"role_definition"`
	CustomInstructions string                   `json:"custom_instructions,omitempty"`
	ToolGroups         map[string]groupFullInfo `json:"tool_groups"`
}

type groupFullInfo struct {
	Enabled     bool   `json:"enabled"`
	FileRegex   string `json:"file_regex,omitempty"`
	Description string `json:"description,omitempty"`
}

func serializeModeFull(mode *models.Mode) (string, error) {
	doc := modeFullDoc{
		Slug:               mode.Slug,
		Name:               mode.Name,
		Source:             string(mode.Source),
		Description:        mode.Description,
		WhenToUse:          mode.WhenToUse,
		RoleDefinition:     mode.RoleDefinition,
		CustomInstructions: mode.CustomInstructions,
		ToolGroups:         make(map[string]groupFullInfo, len(models.AllToolGroups)),
	}

	for _, group := range models.AllToolGroups {
		info := groupFullInfo{Enabled: mode.IsGroupEnabled(group)}
		if info.Enabled {
			if opts := mode.GroupOptions(group); opts != nil {
				info.FileRegex = opts.FileRegex
				info.Description = opts.Description
			}
		}
		doc.ToolGroups[string(group)] = info
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
