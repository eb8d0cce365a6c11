package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mglenn/ttm/internal/models"
)

type taskListResponse struct {
	Tasks       []models.Task `json:"tasks"`
	Pages       int           `json:"pages"`
	CurrentPage int           `json:"current_page"`
}

// ListTasks fetches all tasks for the current user. The backend paginates
// the collection, so pages are walked and accumulated into one slice. A
// malformed payload degrades to an empty list.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}
	for page := 1; ; page++ {
		var body taskListResponse
		path := fmt.Sprintf("/api/tasks?page=%d&per_page=%d", page, listPageSize)
		if err := c.get(ctx, path, &body, "Failed to load tasks"); err != nil {
			return nil, err
		}
		tasks = append(tasks, body.Tasks...)
		// An empty page also stops the walk, guarding against a server
		// whose page counters never converge.
		if body.CurrentPage >= body.Pages || len(body.Tasks) == 0 {
			break
		}
	}
	return tasks, nil
}

// GetTask fetches a single task by id, subtasks included.
func (c *Client) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var task models.Task
	err := c.get(ctx, fmt.Sprintf("/api/tasks/%d", id), &task, "Failed to load task")
	return task, err
}

// NewTask carries the fields for task creation. Setting ParentID makes the
// new task a subtask of that parent.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ProjectID   *int64 `json:"project_id,omitempty"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	Recurrence  string `json:"recurrence,omitempty"`
}

// CreateTask creates a task and returns the server's canonical record.
func (c *Client) CreateTask(ctx context.Context, nt NewTask) (models.Task, error) {
	var created models.Task
	err := c.mutate(ctx, http.MethodPost, "/api/tasks", nt, &created, "Failed to create task")
	return created, err
}

// TaskPatch is a partial task update. Pointer fields are sent only when
// set. The Clear flags serialize an explicit JSON null so the server unsets
// the field instead of ignoring an absent key.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *int
	DueDate     *string
	StartDate   *string
	Recurrence  *string
	ProjectID   *int64

	ClearStartDate bool
	ClearDueDate   bool
	ClearProject   bool
}

func (p TaskPatch) body() map[string]any {
	body := map[string]any{}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Completed != nil {
		body["completed"] = *p.Completed
	}
	if p.Priority != nil {
		body["priority"] = *p.Priority
	}
	if p.DueDate != nil {
		body["due_date"] = *p.DueDate
	}
	if p.StartDate != nil {
		body["start_date"] = *p.StartDate
	}
	if p.Recurrence != nil {
		body["recurrence"] = *p.Recurrence
	}
	if p.ProjectID != nil {
		body["project_id"] = *p.ProjectID
	}
	if p.ClearStartDate {
		body["start_date"] = nil
	}
	if p.ClearDueDate {
		body["due_date"] = nil
	}
	if p.ClearProject {
		body["project_id"] = nil
	}
	return body
}

// UpdateTask applies a partial update and returns the server's canonical
// record, which callers should prefer over any optimistic local guess.
func (c *Client) UpdateTask(ctx context.Context, id int64, patch TaskPatch) (models.Task, error) {
	var updated models.Task
	err := c.mutate(ctx, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id),
		patch.body(), &updated, "Failed to update task")
	return updated, err
}

// DeleteTask deletes a task by id. Cascading to subtasks is the server's
// concern.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id),
		nil, nil, "Failed to delete task")
}

type reorderRequest struct {
	SubtaskIDs []int64 `json:"subtask_ids"`
}

// ReorderSubtasks persists a full subtask ordering for a parent in a single
// call. Partial orders are never sent.
func (c *Client) ReorderSubtasks(ctx context.Context, parentID int64, orderedIDs []int64) error {
	return c.mutate(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%d/reorder_subtasks", parentID),
		reorderRequest{SubtaskIDs: orderedIDs}, nil, "Failed to reorder subtasks")
}
