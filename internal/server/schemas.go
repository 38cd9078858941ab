package server

// toolSchema is one entry of a tools/list result.
type toolSchema struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema inputSchema `json:"inputSchema"`
}

type inputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

type property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// toolSchemas declares the seven MCP tools this server exposes. These are
// distinct from the mode-system tool catalog the orchestrator validates
// against.
var toolSchemas = []toolSchema{
	{
		Name:        "list_modes",
		Description: "List all available modes with their metadata",
		InputSchema: inputSchema{
			Type: "object",
			Properties: map[string]property{
				"source": {
					Type:        "string",
					Enum:        []string{"builtin", "global", "project", "all"},
					Description: "Filter modes by source (default: all)",
				},
			},
		},
	},
	{
		Name:        "get_mode_info",
		Description: "Get detailed information about a specific mode",
		InputSchema: inputSchema{
			Type: "object",
			Properties: map[string]property{
				"mode_slug": {
					Type:        "string",
					Description: "Slug of the mode to get info for",
				},
				"include_system_prompt": {
					Type:        "boolean",
					Description: "Include the full system prompt (default: false)",
				},
			},
			Required: []string{"mode_slug"},
		},
	},
	{
		Name:        "create_task",
		Description: "Create a new task in a specific mode",
		InputSchema: inputSchema{
			Type: "object",
			Properties: map[string]property{
				"mode_slug": {
					Type:        "string",
					Description: "Mode to use for this task",
				},
				"initial_message": {
					Type:        "string",
					Description: "Initial user message for the task",
				},
				"parent_session_id": {
					Type:        "string",
					Description: "Parent session ID if this is a subtask",
				},
			},
			Required: []string{"mode_slug"},
		},
	},
	{
		Name:        "switch_mode",
		Description: "Switch a task to a different mode",
		InputSchema: inputSchema{
			Type: "object",
			Properties: map[string]property{
				"session_id": {
					Type:        "string",
					Description: "Session ID of the task",
				},
				"new_mode_slug": {
					Type:        "string",
					Description: "Slug of the mode to switch to",
				},
				"reason": {
					Type:        "string",
					Description: "Reason for switching modes (optional)",
				},
			},
			Required: []string{"session_id", "new_mode_slug"},
		},
	},
	{
		Name:        "get_task_info",
		Description: "Get information about a task/session",
		InputSchema: inputSchema{
			Type: "object",
			Properties: map[string]property{
				"session_id": {
					Type:        "string",
					Description: "Session ID",
				},
				"include_messages": {
					Type:        "boolean",
					Description: "Include conversation history (default: false)",
				},
				"include_hierarchy": {
					Type:        "boolean",
					Description: "Include parent/child task info (default: false)",
				},
			},
			Required: []string{"session_id"},
		},
	},
	{
		Name:        "validate_tool_use",
		Description: "Check if a tool can be used in the current mode",
		InputSchema: inputSchema{
			Type: "object",
			Properties: map[string]property{
				"session_id": {
					Type:        "string",
					Description: "Session ID",
				},
				"tool_name": {
					Type:        "string",
					Description: "Name of the tool to validate",
				},
				"file_path": {
					Type:        "string",
					Description: "File path (for edit operations)",
				},
			},
			Required: []string{"session_id", "tool_name"},
		},
	},
	{
		Name:        "complete_task",
		Description: "Mark a task as completed, failed, or cancelled",
		InputSchema: inputSchema{
			Type: "object",
			Properties: map[string]property{
				"session_id": {
					Type:        "string",
					Description: "Session ID",
				},
				"status": {
					Type:        "string",
					Enum:        []string{"completed", "failed", "cancelled"},
					Description: "Final status of the task",
				},
				"result": {
					Type:        "string",
					Description: "Completion result or error message",
				},
			},
			Required: []string{"session_id", "status"},
		},
	},
}
