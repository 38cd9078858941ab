// Package orchestrator implements the task lifecycle: creation, mode
// switching, completion, hierarchical subtasks, and validation of tool use
// against the mode's group and file restrictions.
package orchestrator

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roomodes/roomodes/internal/modes"
	"github.com/roomodes/roomodes/pkg/models"
)

// Sentinel errors for the dispatcher to translate into protocol codes.
var (
	ErrModeNotFound  = errors.New("mode not found")
	ErrTaskNotActive = errors.New("task is not active")
	ErrBadStatus     = errors.New("invalid completion status")
)

// Orchestrator owns the task arena. Tasks are keyed by opaque ids and
// linked parent-to-child by id, never by pointer. All mutation of task
// fields goes through these methods under the orchestrator's lock.
type Orchestrator struct {
	registry *modes.Registry
	catalog  *ToolCatalog
	log      zerolog.Logger

	mu    sync.Mutex
	tasks map[string]*models.Task

	// now is replaceable in tests.
	now func() time.Time
}

// New creates an orchestrator over the given registry and tool catalog.
func New(registry *modes.Registry, catalog *ToolCatalog, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		catalog:  catalog,
		log:      log.With().Str("component", "orchestrator").Logger(),
		tasks:    make(map[string]*models.Task),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Test hook.
func (o *Orchestrator) SetClock(now func() time.Time) {
	o.now = now
}

// NewTaskID returns an opaque task identifier with 96 bits of entropy.
func NewTaskID() string {
	u := uuid.New()
	// Skip bytes 6-9, which carry the fixed UUID version and variant bits.
	return "tsk_" + hex.EncodeToString(append(u[:6:6], u[10:]...))
}

// CreateTask creates an active task in the given mode. When parent is
// non-nil the new task is linked under it; the parent must itself still be
// active. The parent link is fixed at construction and never changed, which
// keeps the task graph acyclic by construction.
func (o *Orchestrator) CreateTask(modeSlug, initialMessage string, parent *models.Task) (*models.Task, error) {
	if !o.registry.Has(modeSlug) {
		return nil, fmt.Errorf("%w: %q (available: %s)",
			ErrModeNotFound, modeSlug, strings.Join(o.registry.Slugs(), ", "))
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if parent != nil && parent.State != models.TaskActive {
		return nil, fmt.Errorf("parent task %s: %w", parent.ID, ErrTaskNotActive)
	}

	task := &models.Task{
		ID:        NewTaskID(),
		ModeSlug:  modeSlug,
		State:     models.TaskActive,
		CreatedAt: o.now(),
	}
	if initialMessage != "" {
		task.AppendMessage(models.RoleUser, initialMessage, o.now())
	}
	if parent != nil {
		task.ParentTaskID = parent.ID
		parent.ChildTaskIDs = append(parent.ChildTaskIDs, task.ID)
	}

	o.tasks[task.ID] = task
	o.log.Info().
		Str("task_id", task.ID).
		Str("mode", modeSlug).
		Str("parent", task.ParentTaskID).
		Msg("task created")
	return task, nil
}

// GetTask returns a task by id, or nil when unknown.
func (o *Orchestrator) GetTask(taskID string) *models.Task {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tasks[taskID]
}

// SwitchMode atomically moves an active task to a new mode and records the
// transition in the task metadata. The operation is a pure state change.
func (o *Orchestrator) SwitchMode(task *models.Task, newSlug, reason string) error {
	if !o.registry.Has(newSlug) {
		return fmt.Errorf("%w: %q (available: %s)",
			ErrModeNotFound, newSlug, strings.Join(o.registry.Slugs(), ", "))
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if task.State != models.TaskActive {
		return fmt.Errorf("task %s is %s: %w", task.ID, task.State, ErrTaskNotActive)
	}

	from := task.ModeSlug
	task.ModeSlug = newSlug
	task.RecordModeSwitch(models.ModeSwitch{
		From:   from,
		To:     newSlug,
		Reason: reason,
		At:     o.now(),
	})

	o.log.Info().
		Str("task_id", task.ID).
		Str("from", from).
		Str("to", newSlug).
		Msg("mode switched")
	return nil
}

// CompleteTask moves a task to a terminal state and stamps completed_at.
// Completing an already-terminal task is a conflict. Child tasks are not
// affected; parents and children complete independently.
func (o *Orchestrator) CompleteTask(task *models.Task, status models.TaskState, result string) error {
	if !models.ValidCompletionStates[status] {
		return fmt.Errorf("%w: %q", ErrBadStatus, status)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if task.State.Terminal() {
		return fmt.Errorf("task %s is already %s: %w", task.ID, task.State, ErrTaskNotActive)
	}

	now := o.now()
	task.State = status
	task.CompletedAt = &now
	if result != "" {
		if task.Metadata == nil {
			task.Metadata = make(map[string]any)
		}
		task.Metadata["completion_result"] = result
	}

	o.log.Info().
		Str("task_id", task.ID).
		Str("status", string(status)).
		Msg("task completed")
	return nil
}

// ValidateToolUse checks whether a task may invoke a mode-system tool.
// Ordering: task liveness, always-available bypass, group membership, then
// the file regex for edit-class tools. It returns a denial reason instead
// of an error; the caller decides how to surface it.
func (o *Orchestrator) ValidateToolUse(task *models.Task, toolName, filePath string) (bool, string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if task.State != models.TaskActive {
		return false, "task is not active"
	}

	if o.catalog.IsAlwaysAvailable(toolName) {
		return true, ""
	}

	mode := o.registry.Get(task.ModeSlug)
	if mode == nil {
		return false, fmt.Sprintf("mode %q is not loaded", task.ModeSlug)
	}

	group, known := o.catalog.Group(toolName)
	if !known {
		return false, fmt.Sprintf("unknown tool %q", toolName)
	}

	if !mode.IsGroupEnabled(group) {
		return false, fmt.Sprintf("tool group %q is not enabled for mode %s", group, mode.Name)
	}

	if o.catalog.IsEditClass(toolName) {
		opts := mode.GroupOptions(group)
		if opts != nil && opts.FileRegex != "" {
			if filePath == "" {
				return false, "file_path required"
			}
			if !opts.MatchesFile(filePath) {
				return false, fmt.Sprintf("file %s does not match mode %s's pattern %s",
					filePath, mode.Name, opts.FileRegex)
			}
		}
	}

	return true, ""
}

// Hierarchy resolves a task's parent and children by id lookup.
func (o *Orchestrator) Hierarchy(task *models.Task) (parent *models.Task, children []*models.Task) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if task.ParentTaskID != "" {
		parent = o.tasks[task.ParentTaskID]
	}
	for _, childID := range task.ChildTaskIDs {
		if child := o.tasks[childID]; child != nil {
			children = append(children, child)
		}
	}
	return parent, children
}

// RemoveTask drops a task from the arena. Called when the owning session
// is destroyed. Parent and child links held by other tasks are left in
// place; they are ids, not references, and resolve to nil afterwards.
func (o *Orchestrator) RemoveTask(taskID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.tasks, taskID)
}
