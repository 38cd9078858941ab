package models

import "time"

// TaskState represents the current lifecycle state of a task. A task starts
// active; every other state is terminal.
type TaskState string

const (
	TaskActive    TaskState = "active"
	TaskCompleted TaskState = "completed"
	TaskFailed    TaskState = "failed"
	TaskCancelled TaskState = "cancelled"
)

// Terminal reports whether the state is one of the final states.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskCancelled
}

// ValidCompletionStates is the set of states complete_task accepts.
var ValidCompletionStates = map[TaskState]bool{
	TaskCompleted: true,
	TaskFailed:    true,
	TaskCancelled: true,
}

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single entry in a task's append-only conversation history.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// ModeSwitch records one mode transition on a task.
type ModeSwitch struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

// Task is a stateful unit of work executed under a mode. Its ModeSlug always
// references a loaded mode, its parent link is fixed at construction, and
// once the state leaves active it never changes again.
type Task struct {
	ID           string         `json:"task_id"`
	ModeSlug     string         `json:"mode_slug"`
	State        TaskState      `json:"state"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	ParentTaskID string         `json:"parent_task_id,omitempty"`
	ChildTaskIDs []string       `json:"child_task_ids,omitempty"`
	Messages     []Message      `json:"messages,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// AppendMessage adds a message to the conversation history.
func (t *Task) AppendMessage(role MessageRole, content string, at time.Time) {
	t.Messages = append(t.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: at,
	})
}

// RecordModeSwitch appends a mode transition to the task metadata under the
// "mode_switches" key.
func (t *Task) RecordModeSwitch(sw ModeSwitch) {
	if t.Metadata == nil {
		t.Metadata = make(map[string]any)
	}
	switches, _ := t.Metadata["mode_switches"].([]ModeSwitch)
	t.Metadata["mode_switches"] = append(switches, sw)
}
