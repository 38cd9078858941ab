// Package models defines the data types shared across the roomodes server:
// mode profiles, tasks, and their lifecycle states.
package models

import (
	"fmt"
	"regexp"
)

// ToolGroup is a coarse category of tools that a mode enables or not.
type ToolGroup string

const (
	GroupRead    ToolGroup = "read"
	GroupEdit    ToolGroup = "edit"
	GroupBrowser ToolGroup = "browser"
	GroupCommand ToolGroup = "command"
	GroupMCP     ToolGroup = "mcp"
	GroupModes   ToolGroup = "modes"
)

// AllToolGroups lists every valid tool group in display order.
var AllToolGroups = []ToolGroup{
	GroupRead,
	GroupEdit,
	GroupBrowser,
	GroupCommand,
	GroupMCP,
	GroupModes,
}

// validToolGroups is the set of allowed ToolGroup values.
var validToolGroups = map[ToolGroup]bool{
	GroupRead:    true,
	GroupEdit:    true,
	GroupBrowser: true,
	GroupCommand: true,
	GroupMCP:     true,
	GroupModes:   true,
}

// ModeSource identifies where a mode definition was loaded from.
type ModeSource string

const (
	SourceBuiltin ModeSource = "builtin"
	SourceGlobal  ModeSource = "global"
	SourceProject ModeSource = "project"
)

// slugPattern matches lowercase alphanumeric slugs with dashes and underscores.
var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// GroupOptions holds per-group restrictions, currently a file regex that
// edit-class tools must satisfy.
type GroupOptions struct {
	FileRegex   string `json:"fileRegex,omitempty" yaml:"fileRegex,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	pattern *regexp.Regexp
}

// Compile validates and caches the file regex. A nil receiver or empty
// regex compiles to "no restriction".
func (o *GroupOptions) Compile() error {
	if o == nil || o.FileRegex == "" {
		return nil
	}
	re, err := regexp.Compile(o.FileRegex)
	if err != nil {
		return fmt.Errorf("invalid file regex %q: %w", o.FileRegex, err)
	}
	o.pattern = re
	return nil
}

// MatchesFile reports whether a file path satisfies this group's restriction.
// An unset regex matches everything. The match is unanchored.
func (o *GroupOptions) MatchesFile(path string) bool {
	if o == nil || o.FileRegex == "" {
		return true
	}
	if o.pattern == nil {
		if err := o.Compile(); err != nil {
			return false
		}
	}
	return o.pattern.MatchString(path)
}

// GroupEntry is one element of a mode's groups list: either a bare group
// name or a group paired with options. The two variants are distinguished
// by Options being nil.
type GroupEntry struct {
	Group   ToolGroup
	Options *GroupOptions
}

// Mode is a named operational profile constraining which tool groups and
// file paths a task may touch. Modes are immutable after load.
type Mode struct {
	Slug               string       `json:"slug"`
	Name               string       `json:"name"`
	RoleDefinition     string       `json:"role_definition"`
	Groups             []GroupEntry `json:"-"`
	WhenToUse          string       `json:"when_to_use,omitempty"`
	Description        string       `json:"description,omitempty"`
	CustomInstructions string       `json:"custom_instructions,omitempty"`
	Source             ModeSource   `json:"source"`
}

// Validate checks the mode definition: slug format, required fields,
// duplicate or unknown groups, and regex compilation.
func (m *Mode) Validate() error {
	if !slugPattern.MatchString(m.Slug) {
		return fmt.Errorf("invalid slug %q: must match [a-z0-9_-]+", m.Slug)
	}
	if m.Name == "" {
		return fmt.Errorf("mode %q: name is required", m.Slug)
	}
	if m.RoleDefinition == "" {
		return fmt.Errorf("mode %q: roleDefinition is required", m.Slug)
	}

	seen := make(map[ToolGroup]bool, len(m.Groups))
	for _, entry := range m.Groups {
		if !validToolGroups[entry.Group] {
			return fmt.Errorf("mode %q: invalid tool group %q", m.Slug, entry.Group)
		}
		if seen[entry.Group] {
			return fmt.Errorf("mode %q: duplicate group %q", m.Slug, entry.Group)
		}
		seen[entry.Group] = true

		if err := entry.Options.Compile(); err != nil {
			return fmt.Errorf("mode %q: group %q: %w", m.Slug, entry.Group, err)
		}
	}
	return nil
}

// IsGroupEnabled reports whether a tool group is enabled in this mode.
func (m *Mode) IsGroupEnabled(group ToolGroup) bool {
	for _, entry := range m.Groups {
		if entry.Group == group {
			return true
		}
	}
	return false
}

// GroupOptions returns the options for a group, or nil if the group is
// absent or unrestricted.
func (m *Mode) GroupOptions(group ToolGroup) *GroupOptions {
	for _, entry := range m.Groups {
		if entry.Group == group {
			return entry.Options
		}
	}
	return nil
}

// CanEditFile reports whether this mode may edit the given file path,
// honoring the edit group's file regex when one is configured.
func (m *Mode) CanEditFile(path string) bool {
	if !m.IsGroupEnabled(GroupEdit) {
		return false
	}
	return m.GroupOptions(GroupEdit).MatchesFile(path)
}
