package models

import (
	"fmt"
	"strings"
	"time"
)

// Action names a task operation.
type Action string

const (
	ActionSave          Action = "save"
	ActionSchedule      Action = "schedule"
	ActionTest          Action = "test"
	ActionDeleteResults Action = "delete_results"
	ActionDeleteTask    Action = "delete_task"
	ActionStatus        Action = "status"
	ActionNewTask       Action = "new_task"
	ActionSelectorNames Action = "selector_names"
)

// Activity is the recorded outcome of one task operation.
type Activity struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"-"`
	Task      string    `json:"task"`
	Action    Action    `json:"action"`
	Message   string    `json:"message"`
	OK        bool      `json:"ok"`
	CreatedAt time.Time `json:"created_at"`
}

// NewActivity builds an activity entry; a non-nil err marks it failed and supplies the message when none is given.
func NewActivity(task string, action Action, message string, err error) *Activity {
	a := &Activity{
		Task:      task,
		Action:    action,
		Message:   message,
		OK:        err == nil,
		CreatedAt: time.Now().UTC(),
	}
	if err != nil && message == "" {
		a.Message = err.Error()
	}
	return a
}

// Validate checks the fields required for persistence.
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Task) == "" {
		return fmt.Errorf("activity task is required")
	}
	if a.Action == "" {
		return fmt.Errorf("activity action is required")
	}
	return nil
}

// Outcome is "ok" or "failed".
func (a *Activity) Outcome() string {
	if a.OK {
		return "ok"
	}
	return "failed"
}
