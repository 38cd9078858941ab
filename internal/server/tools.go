package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roomodes/roomodes/internal/modes"
	"github.com/roomodes/roomodes/internal/orchestrator"
	"github.com/roomodes/roomodes/internal/rpc"
	"github.com/roomodes/roomodes/pkg/models"
)

// toolResult is the response envelope of a successful tools/call: a
// human-readable content block plus optional machine-parseable metadata.
type toolResult struct {
	Content  []textContent  `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textResult(text string, metadata map[string]any) *toolResult {
	return &toolResult{
		Content:  []textContent{{Type: "text", Text: text}},
		Metadata: metadata,
	}
}

func (s *Server) handleListTools(json.RawMessage) (any, *rpc.Error) {
	return map[string]any{"tools": toolSchemas}, nil
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (s *Server) handleCallTool(params json.RawMessage) (any, *rpc.Error) {
	var p callToolParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, rpc.NewError(rpc.CodeInvalidParams, "malformed tools/call params").WithData(err.Error())
		}
	}
	if p.Name == "" {
		return nil, rpc.NewError(rpc.CodeInvalidParams, "Missing required parameter: name")
	}

	args, rpcErr := decodeArgs(p.Arguments)
	if rpcErr != nil {
		return nil, rpcErr
	}

	handler, ok := s.toolHandler(p.Name)
	if !ok {
		return nil, rpc.NewError(rpc.CodeMethodNotFound, "Unknown tool: %s", p.Name)
	}

	result, rpcErr := handler(args)
	if rpcErr != nil {
		return nil, rpcErr
	}
	s.log.Debug().Str("tool", p.Name).Msg("tool executed")
	return result, nil
}

type toolHandler func(args map[string]any) (*toolResult, *rpc.Error)

func (s *Server) toolHandler(name string) (toolHandler, bool) {
	switch name {
	case "list_modes":
		return s.toolListModes, true
	case "get_mode_info":
		return s.toolGetModeInfo, true
	case "create_task":
		return s.toolCreateTask, true
	case "switch_mode":
		return s.toolSwitchMode, true
	case "get_task_info":
		return s.toolGetTaskInfo, true
	case "validate_tool_use":
		return s.toolValidateToolUse, true
	case "complete_task":
		return s.toolCompleteTask, true
	}
	return nil, false
}

// --- Tool implementations ---

func (s *Server) toolListModes(args map[string]any) (*toolResult, *rpc.Error) {
	source, rpcErr := optionalString(args, "source")
	if rpcErr != nil {
		return nil, rpcErr
	}
	filter := modes.SourceFilter(source)
	if filter == "" {
		filter = modes.FilterAll
	}
	if !modes.ValidSourceFilters[filter] {
		return nil, rpc.NewError(rpc.CodeValidationError,
			"Parameter \"source\" must be one of: builtin, global, project, all, got %q", source)
	}

	listed := s.registry.List(filter)

	var b strings.Builder
	b.WriteString("Available modes:\n\n")
	for i, mode := range listed {
		fmt.Fprintf(&b, "%d. %s (%s) - %s\n", i+1, mode.Slug, mode.Name, mode.Source)
		if mode.Description != "" {
			fmt.Fprintf(&b, "   Description: %s\n", mode.Description)
		}
		groups := make([]string, 0, len(mode.Groups))
		for _, entry := range mode.Groups {
			if entry.Options != nil && entry.Options.FileRegex != "" {
				groups = append(groups, fmt.Sprintf("%s (%s)", entry.Group, entry.Options.FileRegex))
			} else {
				groups = append(groups, string(entry.Group))
			}
		}
		fmt.Fprintf(&b, "   Tool groups: %s\n\n", strings.Join(groups, ", "))
	}

	slugs := make([]string, len(listed))
	for i, mode := range listed {
		slugs[i] = mode.Slug
	}

	return textResult(b.String(), map[string]any{
		"count": len(listed),
		"modes": slugs,
	}), nil
}

func (s *Server) toolGetModeInfo(args map[string]any) (*toolResult, *rpc.Error) {
	slug, rpcErr := requireString(args, "mode_slug")
	if rpcErr != nil {
		return nil, rpcErr
	}
	includePrompt, rpcErr := optionalBool(args, "include_system_prompt")
	if rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := validateModeSlug(slug); rpcErr != nil {
		return nil, rpcErr
	}

	mode := s.registry.Get(slug)
	if mode == nil {
		return nil, rpc.NewError(rpc.CodeModeNotFound,
			"Mode not found: %s. Available: %s", slug, strings.Join(s.registry.Slugs(), ", "))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Mode: %s (%s)\n", mode.Name, mode.Slug)
	fmt.Fprintf(&b, "Source: %s\n", mode.Source)
	if mode.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", mode.Description)
	}
	if mode.WhenToUse != "" {
		fmt.Fprintf(&b, "\nWhen to use:\n%s\n", mode.WhenToUse)
	}

	b.WriteString("\nTool Groups:\n")
	writeGroupChecklist(&b, mode)

	if mode.CustomInstructions != "" {
		fmt.Fprintf(&b, "\nCustom Instructions:\n%s\n", mode.CustomInstructions)
	}
	if includePrompt {
		fmt.Fprintf(&b, "\nSystem Prompt:\n%s\n", modes.SystemPrompt(mode))
	}

	return textResult(b.String(), map[string]any{
		"mode_slug": mode.Slug,
		"source":    string(mode.Source),
	}), nil
}

// writeGroupChecklist renders the per-group enabled markers shared by
// get_mode_info and switch_mode.
func writeGroupChecklist(b *strings.Builder, mode *models.Mode) {
	for _, group := range models.AllToolGroups {
		enabled := mode.IsGroupEnabled(group)
		marker := "✗"
		if enabled {
			marker = "✓"
		}
		fmt.Fprintf(b, "%s %s", marker, group)
		if enabled {
			if opts := mode.GroupOptions(group); opts != nil {
				if opts.FileRegex != "" {
					fmt.Fprintf(b, " (restricted to: %s)", opts.FileRegex)
				}
				if opts.Description != "" {
					fmt.Fprintf(b, " - %s", opts.Description)
				}
			}
		}
		b.WriteString("\n")
	}
}

func (s *Server) toolCreateTask(args map[string]any) (*toolResult, *rpc.Error) {
	slug, rpcErr := requireString(args, "mode_slug")
	if rpcErr != nil {
		return nil, rpcErr
	}
	initialMessage, rpcErr := optionalString(args, "initial_message")
	if rpcErr != nil {
		return nil, rpcErr
	}
	parentSessionID, rpcErr := optionalString(args, "parent_session_id")
	if rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := validateModeSlug(slug); rpcErr != nil {
		return nil, rpcErr
	}

	var parent *models.Task
	if parentSessionID != "" {
		parentSession, rpcErr := s.resolveSession(parentSessionID)
		if rpcErr != nil {
			return nil, rpcErr
		}
		parent = parentSession.Task
	}

	task, err := s.orch.CreateTask(slug, initialMessage, parent)
	if err != nil {
		return nil, mapOrchestratorError(err)
	}

	sess := s.sessions.Create(task)
	mode := s.registry.Get(slug)

	text := fmt.Sprintf(
		"Task created successfully\n\n"+
			"Session ID: %s\n"+
			"Task ID: %s\n"+
			"Mode: %s (%s)\n"+
			"State: %s\n\n"+
			"Use this session_id for subsequent operations.",
		sess.ID, task.ID, slug, mode.Name, task.State)

	return textResult(text, map[string]any{
		"session_id": sess.ID,
		"task_id":    task.ID,
		"mode_slug":  slug,
	}), nil
}

func (s *Server) toolSwitchMode(args map[string]any) (*toolResult, *rpc.Error) {
	sessionID, rpcErr := requireString(args, "session_id")
	if rpcErr != nil {
		return nil, rpcErr
	}
	newSlug, rpcErr := requireString(args, "new_mode_slug")
	if rpcErr != nil {
		return nil, rpcErr
	}
	reason, rpcErr := optionalString(args, "reason")
	if rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := validateModeSlug(newSlug); rpcErr != nil {
		return nil, rpcErr
	}

	sess, rpcErr := s.resolveSession(sessionID)
	if rpcErr != nil {
		return nil, rpcErr
	}

	oldSlug := sess.Task.ModeSlug
	if err := s.orch.SwitchMode(sess.Task, newSlug, reason); err != nil {
		return nil, mapOrchestratorError(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Mode switched successfully\n\n")
	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	fmt.Fprintf(&b, "Old mode: %s\n", oldSlug)
	fmt.Fprintf(&b, "New mode: %s\n", newSlug)
	if reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", reason)
	}
	if newMode := s.registry.Get(newSlug); newMode != nil {
		b.WriteString("\nNew tool groups:\n")
		writeGroupChecklist(&b, newMode)
	}

	return textResult(b.String(), map[string]any{
		"old_mode": oldSlug,
		"new_mode": newSlug,
	}), nil
}

func (s *Server) toolGetTaskInfo(args map[string]any) (*toolResult, *rpc.Error) {
	sessionID, rpcErr := requireString(args, "session_id")
	if rpcErr != nil {
		return nil, rpcErr
	}
	includeMessages, rpcErr := optionalBool(args, "include_messages")
	if rpcErr != nil {
		return nil, rpcErr
	}
	includeHierarchy, rpcErr := optionalBool(args, "include_hierarchy")
	if rpcErr != nil {
		return nil, rpcErr
	}

	sess, rpcErr := s.resolveSession(sessionID)
	if rpcErr != nil {
		return nil, rpcErr
	}

	task := sess.Task
	modeName := task.ModeSlug
	if mode := s.registry.Get(task.ModeSlug); mode != nil {
		modeName = mode.Name
	}

	var b strings.Builder
	b.WriteString("Task Information\n\n")
	fmt.Fprintf(&b, "Session ID: %s\n", sess.ID)
	fmt.Fprintf(&b, "Task ID: %s\n", task.ID)
	fmt.Fprintf(&b, "Mode: %s (%s)\n", modeName, task.ModeSlug)
	fmt.Fprintf(&b, "State: %s\n", task.State)
	fmt.Fprintf(&b, "Created: %s\n", task.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	if task.CompletedAt != nil {
		fmt.Fprintf(&b, "Completed: %s\n", task.CompletedAt.Format("2006-01-02T15:04:05Z07:00"))
	}

	now := sess.LastActivity
	fmt.Fprintf(&b, "\nSession Age: %.0fs\n", sess.Age(now).Seconds())
	fmt.Fprintf(&b, "Idle Time: %.0fs\n", sess.Idle(now).Seconds())

	if includeHierarchy {
		b.WriteString("\nHierarchy:\n")
		if task.ParentTaskID != "" {
			fmt.Fprintf(&b, "  Parent Task: %s\n", task.ParentTaskID)
		}
		if len(task.ChildTaskIDs) > 0 {
			fmt.Fprintf(&b, "  Child Tasks: %s\n", strings.Join(task.ChildTaskIDs, ", "))
		}
	}

	if includeMessages {
		fmt.Fprintf(&b, "\nConversation History (%d messages):\n", len(task.Messages))
		for i, msg := range task.Messages {
			fmt.Fprintf(&b, "\n%d. [%s] %s\n", i+1, msg.Role, msg.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
			preview := msg.Content
			if len(preview) > 100 {
				preview = preview[:100] + "..."
			}
			fmt.Fprintf(&b, "   %s\n", preview)
		}
	}

	metadata := map[string]any{
		"session_id":    sess.ID,
		"task_id":       task.ID,
		"mode":          task.ModeSlug,
		"state":         string(task.State),
		"message_count": len(task.Messages),
	}
	if includeHierarchy {
		metadata["parent_task_id"] = task.ParentTaskID
		metadata["child_task_ids"] = append([]string{}, task.ChildTaskIDs...)
	}

	return textResult(b.String(), metadata), nil
}

func (s *Server) toolValidateToolUse(args map[string]any) (*toolResult, *rpc.Error) {
	sessionID, rpcErr := requireString(args, "session_id")
	if rpcErr != nil {
		return nil, rpcErr
	}
	toolName, rpcErr := requireString(args, "tool_name")
	if rpcErr != nil {
		return nil, rpcErr
	}
	filePath, rpcErr := optionalString(args, "file_path")
	if rpcErr != nil {
		return nil, rpcErr
	}
	if toolName == "" {
		return nil, rpc.NewError(rpc.CodeValidationError, "Tool name must be a non-empty string")
	}

	sess, rpcErr := s.resolveSession(sessionID)
	if rpcErr != nil {
		return nil, rpcErr
	}

	task := sess.Task
	allowed, reason := s.orch.ValidateToolUse(task, toolName, filePath)

	modeName := task.ModeSlug
	mode := s.registry.Get(task.ModeSlug)
	if mode != nil {
		modeName = mode.Name
	}

	var text string
	if allowed {
		text = fmt.Sprintf("✓ Tool '%s' is allowed in mode '%s'", toolName, modeName)
		if filePath != "" {
			text += fmt.Sprintf(" for file '%s'", filePath)
		}
	} else {
		text = fmt.Sprintf("✗ %s", reason)
	}

	metadata := map[string]any{
		"allowed":   allowed,
		"tool_name": toolName,
		"mode":      task.ModeSlug,
	}
	if !allowed {
		metadata["reason"] = reason
		// Include the restriction detail so the client can explain the
		// denial without a second round-trip.
		if filePath != "" {
			metadata["file_path"] = filePath
		}
		if mode != nil {
			if opts := mode.GroupOptions(models.GroupEdit); opts != nil && opts.FileRegex != "" {
				metadata["pattern"] = opts.FileRegex
			}
		}
	}

	return textResult(text, metadata), nil
}

func (s *Server) toolCompleteTask(args map[string]any) (*toolResult, *rpc.Error) {
	sessionID, rpcErr := requireString(args, "session_id")
	if rpcErr != nil {
		return nil, rpcErr
	}
	status, rpcErr := requireString(args, "status")
	if rpcErr != nil {
		return nil, rpcErr
	}
	result, rpcErr := optionalString(args, "result")
	if rpcErr != nil {
		return nil, rpcErr
	}

	state := models.TaskState(status)
	if !models.ValidCompletionStates[state] {
		return nil, rpc.NewError(rpc.CodeValidationError,
			"Parameter \"status\" must be one of: completed, failed, cancelled, got %q", status)
	}

	sess, rpcErr := s.resolveSession(sessionID)
	if rpcErr != nil {
		return nil, rpcErr
	}

	task := sess.Task
	if err := s.orch.CompleteTask(task, state, result); err != nil {
		return nil, mapOrchestratorError(err)
	}

	// The session stays resolvable until this response has been written,
	// then it is removed.
	s.deferCleanup(sess.ID)

	var b strings.Builder
	fmt.Fprintf(&b, "Task %s\n\n", status)
	fmt.Fprintf(&b, "Session ID: %s\n", sess.ID)
	fmt.Fprintf(&b, "Task ID: %s\n", task.ID)
	fmt.Fprintf(&b, "Final State: %s\n", task.State)
	if task.CompletedAt != nil {
		fmt.Fprintf(&b, "Completed At: %s\n", task.CompletedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	if result != "" {
		fmt.Fprintf(&b, "\nResult:\n%s", result)
	}

	return textResult(b.String(), map[string]any{
		"session_id": sess.ID,
		"task_id":    task.ID,
		"status":     string(task.State),
	}), nil
}

// mapOrchestratorError translates orchestrator sentinel errors into
// protocol codes: unknown mode → MODE_NOT_FOUND, lifecycle conflicts →
// INTERNAL_ERROR, bad status → VALIDATION_ERROR.
func mapOrchestratorError(err error) *rpc.Error {
	switch {
	case errors.Is(err, orchestrator.ErrModeNotFound):
		return rpc.NewError(rpc.CodeModeNotFound, "%s", err.Error())
	case errors.Is(err, orchestrator.ErrBadStatus):
		return rpc.NewError(rpc.CodeValidationError, "%s", err.Error())
	case errors.Is(err, orchestrator.ErrTaskNotActive):
		return rpc.NewError(rpc.CodeInternalError, "%s", err.Error())
	default:
		return rpc.NewError(rpc.CodeInternalError, "Internal server error")
	}
}
