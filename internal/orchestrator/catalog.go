package orchestrator

import "github.com/roomodes/roomodes/pkg/models"

// ToolCatalog maps mode-system tool names to their tool groups and flags.
// These are the tools a task's agent invokes (read_file, write_to_file, …),
// not the MCP tools the dispatcher exposes. The catalog is static after
// construction.
type ToolCatalog struct {
	groups    map[string]models.ToolGroup
	editClass map[string]bool
	always    map[string]bool
}

// catalogTool describes one catalog entry.
type catalogTool struct {
	Name      string
	Group     models.ToolGroup
	EditClass bool
}

// DefaultCatalog returns the standard tool-to-group table.
func DefaultCatalog() *ToolCatalog {
	c := &ToolCatalog{
		groups:    make(map[string]models.ToolGroup),
		editClass: make(map[string]bool),
		always:    make(map[string]bool),
	}

	for _, t := range []catalogTool{
		{Name: "read_file", Group: models.GroupRead},
		{Name: "list_files", Group: models.GroupRead},
		{Name: "list_code_definition_names", Group: models.GroupRead},
		{Name: "search_files", Group: models.GroupRead},
		{Name: "write_to_file", Group: models.GroupEdit, EditClass: true},
		{Name: "apply_diff", Group: models.GroupEdit, EditClass: true},
		{Name: "insert_content", Group: models.GroupEdit, EditClass: true},
		{Name: "browser_action", Group: models.GroupBrowser},
		{Name: "execute_command", Group: models.GroupCommand},
		{Name: "use_mcp_tool", Group: models.GroupMCP},
		{Name: "access_mcp_resource", Group: models.GroupMCP},
		{Name: "switch_mode", Group: models.GroupModes},
		{Name: "new_task", Group: models.GroupModes},
	} {
		c.groups[t.Name] = t.Group
		if t.EditClass {
			c.editClass[t.Name] = true
		}
	}

	for _, name := range []string{
		"ask_followup_question",
		"attempt_completion",
		"update_todo_list",
	} {
		c.always[name] = true
	}

	return c
}

// Group returns the tool's group and whether the tool is known.
func (c *ToolCatalog) Group(tool string) (models.ToolGroup, bool) {
	group, ok := c.groups[tool]
	return group, ok
}

// IsEditClass reports whether the tool takes a file_path argument subject
// to the mode's file regex.
func (c *ToolCatalog) IsEditClass(tool string) bool {
	return c.editClass[tool]
}

// IsAlwaysAvailable reports whether the tool ignores mode restrictions.
func (c *ToolCatalog) IsAlwaysAvailable(tool string) bool {
	return c.always[tool]
}
