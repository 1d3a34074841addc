// package services defines interface TaskAPI for interacting with the webscraper task endpoints
package services

import (
	"context"

	"github.com/desertthunder/wsctl/internal/models"
)

// Endpoint paths of the webscraper task page.
const (
	SaveTaskPath      = "/webscraper/ajax/save_task"
	TaskStatusPath    = "/webscraper/ajax/get_task_status"
	SchedulePath      = "/webscraper/ajax/schedule"
	TestTaskPath      = "/webscraper/ajax/test_task"
	DeleteResultsPath = "/webscraper/ajax/delete_results"
	DeleteTaskPath    = "/webscraper/ajax/delete_task"
	SelectorNamesPath = "/webscraper/ajax/get_task_selector_names"
	NewTaskPath       = "/webscraper/ajax/new_task"
)

// TaskAPI defines the remote operations available to the task page.
type TaskAPI interface {
	// SaveTask persists the form contents. Returns once the server has answered.
	SaveTask(ctx context.Context, form *models.TaskForm) error

	// Schedule asks the server to enqueue the task for execution.
	Schedule(ctx context.Context, name string) error

	// TestTask runs the task once without storing results and returns the result text.
	TestTask(ctx context.Context, name string) (string, error)

	// DeleteResults removes the stored results of the task.
	DeleteResults(ctx context.Context, name string) error

	// DeleteTask removes the task definition.
	DeleteTask(ctx context.Context, name string) error

	// TaskStatus fetches the current execution status.
	TaskStatus(ctx context.Context, name string) (models.Status, error)

	// SelectorNames lists the property names of a results set.
	SelectorNames(ctx context.Context, name string) ([]string, error)

	// NewTaskURL returns the location that creates a task with the given name.
	NewTaskURL(name string) string

	// URL resolves an application path to an absolute location.
	URL(path string) string
}
