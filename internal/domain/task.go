package domain

import (
	"time"
)

// TaskStatus is a task's kanban column.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// IsValid checks if the status is one of the defined constants.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusCancelled:
		return true
	}
	return false
}

// Task is a unit of work inside a single board.
//
// Assignees, the reporter and watchers form a direct-access allowlist: task
// participants keep access to their own tasks regardless of the workspace
// role matrix. Task involvement is a stronger access signal than generic
// role membership.
type Task struct {
	ID      string `json:"id" db:"id"`
	BoardID string `json:"boardId" db:"board_id"`

	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	Status      TaskStatus `json:"status" db:"status"`

	ReporterID string   `json:"reporterId" db:"reporter_id"`
	Assignees  []string `json:"assignees"`
	Watchers   []string `json:"watchers"`

	DueDate   *time.Time `json:"dueDate,omitempty" db:"due_date"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsAssignee reports whether the user is on the task's assignee list.
func (t *Task) IsAssignee(userID string) bool {
	return containsUser(t.Assignees, userID)
}

// IsReporter reports whether the user reported the task.
func (t *Task) IsReporter(userID string) bool {
	return userID != "" && t.ReporterID == userID
}

// IsWatcher reports whether the user watches the task.
func (t *Task) IsWatcher(userID string) bool {
	return containsUser(t.Watchers, userID)
}

// HasDirectReadAccess reports whether the user may see the task without any
// workspace role evaluation: assignee, reporter or watcher.
func (t *Task) HasDirectReadAccess(userID string) bool {
	return t.IsAssignee(userID) || t.IsReporter(userID) || t.IsWatcher(userID)
}

// HasDirectWriteAccess reports whether the user may mutate the task without
// any workspace role evaluation. Narrower than read: watchers are excluded.
func (t *Task) HasDirectWriteAccess(userID string) bool {
	return t.IsAssignee(userID) || t.IsReporter(userID)
}

func containsUser(ids []string, userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range ids {
		if id == userID {
			return true
		}
	}
	return false
}

// UpdateTaskRequest is the partial-update DTO for PATCH on a task. All
// fields are pointers; nil means "leave unchanged".
type UpdateTaskRequest struct {
	Title       *string     `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Description *string     `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *TaskStatus `json:"status,omitempty" validate:"omitempty,oneof=TODO IN_PROGRESS DONE CANCELLED"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
}
