package orchestrator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomodes/roomodes/internal/modes"
	"github.com/roomodes/roomodes/pkg/models"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	registry := modes.NewRegistry(modes.BuiltinModes())
	return New(registry, DefaultCatalog(), zerolog.Nop())
}

func TestCreateTask(t *testing.T) {
	o := newTestOrchestrator(t)

	task, err := o.CreateTask("code", "build the thing", nil)
	if err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}

	if task.State != models.TaskActive {
		t.Errorf("state = %q, want active", task.State)
	}
	if task.ModeSlug != "code" {
		t.Errorf("mode = %q, want code", task.ModeSlug)
	}
	if !strings.HasPrefix(task.ID, "tsk_") {
		t.Errorf("task id %q missing tsk_ prefix", task.ID)
	}
	if len(task.Messages) != 1 || task.Messages[0].Role != models.RoleUser {
		t.Errorf("initial message not recorded: %+v", task.Messages)
	}
	if o.GetTask(task.ID) != task {
		t.Error("task not registered in arena")
	}
}

func TestCreateTaskUnknownMode(t *testing.T) {
	o := newTestOrchestrator(t)

	_, err := o.CreateTask("nonexistent", "", nil)
	if !errors.Is(err, ErrModeNotFound) {
		t.Fatalf("expected ErrModeNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "code") {
		t.Errorf("error should list available modes: %v", err)
	}
}

func TestCreateTaskWithParent(t *testing.T) {
	o := newTestOrchestrator(t)

	parent, err := o.CreateTask("orchestrator", "", nil)
	if err != nil {
		t.Fatalf("creating parent: %v", err)
	}
	child, err := o.CreateTask("code", "subtask work", parent)
	if err != nil {
		t.Fatalf("creating child: %v", err)
	}

	if child.ParentTaskID != parent.ID {
		t.Errorf("child parent = %q, want %q", child.ParentTaskID, parent.ID)
	}
	if len(parent.ChildTaskIDs) != 1 || parent.ChildTaskIDs[0] != child.ID {
		t.Errorf("parent children = %v, want [%s]", parent.ChildTaskIDs, child.ID)
	}

	gotParent, gotChildren := o.Hierarchy(child)
	if gotParent != parent {
		t.Error("Hierarchy() did not resolve parent")
	}
	if len(gotChildren) != 0 {
		t.Errorf("child has children %v", gotChildren)
	}
}

func TestCreateTaskRefusesCompletedParent(t *testing.T) {
	o := newTestOrchestrator(t)

	parent, _ := o.CreateTask("orchestrator", "", nil)
	if err := o.CompleteTask(parent, models.TaskCompleted, ""); err != nil {
		t.Fatalf("completing parent: %v", err)
	}

	if _, err := o.CreateTask("code", "", parent); !errors.Is(err, ErrTaskNotActive) {
		t.Fatalf("expected ErrTaskNotActive, got %v", err)
	}
}

func TestSwitchMode(t *testing.T) {
	o := newTestOrchestrator(t)
	task, _ := o.CreateTask("architect", "", nil)

	if err := o.SwitchMode(task, "code", "plan approved"); err != nil {
		t.Fatalf("SwitchMode() error: %v", err)
	}
	if task.ModeSlug != "code" {
		t.Errorf("mode = %q, want code", task.ModeSlug)
	}
	if task.State != models.TaskActive {
		t.Errorf("state changed to %q", task.State)
	}

	switches, ok := task.Metadata["mode_switches"].([]models.ModeSwitch)
	if !ok || len(switches) != 1 {
		t.Fatalf("mode switch not recorded: %+v", task.Metadata)
	}
	sw := switches[0]
	if sw.From != "architect" || sw.To != "code" || sw.Reason != "plan approved" {
		t.Errorf("recorded switch = %+v", sw)
	}
}

func TestSwitchModeErrors(t *testing.T) {
	o := newTestOrchestrator(t)
	task, _ := o.CreateTask("code", "", nil)

	if err := o.SwitchMode(task, "missing", ""); !errors.Is(err, ErrModeNotFound) {
		t.Errorf("expected ErrModeNotFound, got %v", err)
	}
	if task.ModeSlug != "code" {
		t.Errorf("failed switch mutated mode to %q", task.ModeSlug)
	}

	_ = o.CompleteTask(task, models.TaskCancelled, "")
	if err := o.SwitchMode(task, "ask", ""); !errors.Is(err, ErrTaskNotActive) {
		t.Errorf("expected ErrTaskNotActive on terminal task, got %v", err)
	}
}

func TestCompleteTask(t *testing.T) {
	o := newTestOrchestrator(t)
	task, _ := o.CreateTask("code", "", nil)

	if err := o.CompleteTask(task, models.TaskCompleted, "all done"); err != nil {
		t.Fatalf("CompleteTask() error: %v", err)
	}
	if task.State != models.TaskCompleted {
		t.Errorf("state = %q, want completed", task.State)
	}
	if task.CompletedAt == nil {
		t.Error("completed_at not set")
	}
	if task.Metadata["completion_result"] != "all done" {
		t.Errorf("result not recorded: %+v", task.Metadata)
	}

	// A second completion is a conflict.
	if err := o.CompleteTask(task, models.TaskFailed, ""); !errors.Is(err, ErrTaskNotActive) {
		t.Errorf("expected ErrTaskNotActive on double complete, got %v", err)
	}
	if task.State != models.TaskCompleted {
		t.Errorf("double complete changed state to %q", task.State)
	}
}

func TestCompleteTaskBadStatus(t *testing.T) {
	o := newTestOrchestrator(t)
	task, _ := o.CreateTask("code", "", nil)

	if err := o.CompleteTask(task, models.TaskState("archived"), ""); !errors.Is(err, ErrBadStatus) {
		t.Errorf("expected ErrBadStatus, got %v", err)
	}
	if err := o.CompleteTask(task, models.TaskActive, ""); !errors.Is(err, ErrBadStatus) {
		t.Errorf("active is not a completion status, got %v", err)
	}
}

func TestCompleteParentLeavesChildrenIndependent(t *testing.T) {
	o := newTestOrchestrator(t)
	parent, _ := o.CreateTask("orchestrator", "", nil)
	child, _ := o.CreateTask("code", "", parent)

	if err := o.CompleteTask(parent, models.TaskCompleted, ""); err != nil {
		t.Fatalf("completing parent: %v", err)
	}
	if child.State != models.TaskActive {
		t.Errorf("child state = %q, want active after parent completion", child.State)
	}
}

func TestValidateToolUse(t *testing.T) {
	o := newTestOrchestrator(t)

	tests := []struct {
		name        string
		mode        string
		tool        string
		filePath    string
		wantAllowed bool
		wantReason  string
	}{
		{
			name: "read allowed in code", mode: "code", tool: "read_file",
			wantAllowed: true,
		},
		{
			name: "edit any file in code", mode: "code", tool: "write_to_file",
			filePath: "main.py", wantAllowed: true,
		},
		{
			name: "command denied in ask", mode: "ask", tool: "execute_command",
			wantAllowed: false, wantReason: `tool group "command" is not enabled`,
		},
		{
			name: "edit denied entirely in ask", mode: "ask", tool: "write_to_file",
			filePath: "notes.md", wantAllowed: false,
			wantReason: `tool group "edit" is not enabled`,
		},
		{
			name: "architect edits markdown", mode: "architect", tool: "write_to_file",
			filePath: "README.md", wantAllowed: true,
		},
		{
			name: "architect denied python", mode: "architect", tool: "write_to_file",
			filePath: "main.py", wantAllowed: false,
			wantReason: `does not match mode 🏗️ Architect's pattern \.md$`,
		},
		{
			name: "architect edit requires path", mode: "architect", tool: "apply_diff",
			wantAllowed: false, wantReason: "file_path required",
		},
		{
			name: "always-available bypasses orchestrator", mode: "orchestrator",
			tool: "attempt_completion", wantAllowed: true,
		},
		{
			name: "unknown tool denied", mode: "code", tool: "launch_rockets",
			wantAllowed: false, wantReason: "unknown tool",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := o.CreateTask(tt.mode, "", nil)
			if err != nil {
				t.Fatalf("creating task: %v", err)
			}

			allowed, reason := o.ValidateToolUse(task, tt.tool, tt.filePath)
			if allowed != tt.wantAllowed {
				t.Errorf("allowed = %v, want %v (reason: %s)", allowed, tt.wantAllowed, reason)
			}
			if tt.wantReason != "" && !strings.Contains(reason, tt.wantReason) {
				t.Errorf("reason = %q, want substring %q", reason, tt.wantReason)
			}
		})
	}
}

func TestValidateToolUseInactiveTask(t *testing.T) {
	o := newTestOrchestrator(t)
	task, _ := o.CreateTask("code", "", nil)
	_ = o.CompleteTask(task, models.TaskFailed, "")

	allowed, reason := o.ValidateToolUse(task, "read_file", "")
	if allowed {
		t.Error("terminal task should not be allowed tool use")
	}
	if reason != "task is not active" {
		t.Errorf("reason = %q", reason)
	}
}

func TestSwitchModeChangesCapability(t *testing.T) {
	o := newTestOrchestrator(t)
	task, _ := o.CreateTask("architect", "", nil)

	if allowed, _ := o.ValidateToolUse(task, "write_to_file", "main.py"); allowed {
		t.Fatal("architect should not edit main.py")
	}
	if err := o.SwitchMode(task, "code", ""); err != nil {
		t.Fatalf("switching mode: %v", err)
	}
	if allowed, reason := o.ValidateToolUse(task, "write_to_file", "main.py"); !allowed {
		t.Errorf("code mode should edit main.py, denied: %s", reason)
	}
}

func TestClockInjection(t *testing.T) {
	o := newTestOrchestrator(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	o.SetClock(func() time.Time { return fixed })

	task, _ := o.CreateTask("code", "hello", nil)
	if !task.CreatedAt.Equal(fixed) {
		t.Errorf("created_at = %v, want %v", task.CreatedAt, fixed)
	}
	_ = o.CompleteTask(task, models.TaskCompleted, "")
	if task.CompletedAt == nil || !task.CompletedAt.Equal(fixed) {
		t.Errorf("completed_at = %v, want %v", task.CompletedAt, fixed)
	}
}
