package models

// User is the authenticated account returned by the auth check endpoint
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Project groups tasks together
type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Status is the displayed task state, derived from Completed and StartDate
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Task is a single task as returned by the backend. Dates travel as
// ISO-8601 strings; the client only ever checks presence or stamps a
// fresh instant, so they are not parsed into time.Time.
type Task struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	Completed       bool    `json:"completed"`
	Priority        int     `json:"priority,omitempty"`
	DueDate         string  `json:"due_date,omitempty"`
	StartDate       string  `json:"start_date,omitempty"`
	Recurrence      string  `json:"recurrence,omitempty"`
	ProjectID       *int64  `json:"project_id,omitempty"`
	ParentID        *int64  `json:"parent_id,omitempty"`
	Subtasks        []Task  `json:"subtasks,omitempty"`
	BlockedBy       []int64 `json:"blocked_by,omitempty"`
	Blocking        []int64 `json:"blocking,omitempty"`
	ReminderEnabled bool    `json:"reminder_enabled,omitempty"`
	ReminderTime    string  `json:"reminder_time,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty"`
}

// Status derives the displayed state from the two underlying fields.
func (t Task) Status() Status {
	switch {
	case t.Completed:
		return StatusCompleted
	case t.StartDate != "":
		return StatusInProgress
	default:
		return StatusTodo
	}
}

// IsSubtask reports whether the task belongs to a parent task.
func (t Task) IsSubtask() bool {
	return t.ParentID != nil
}

// IsQuick reports whether the task has no project ("quick task").
func (t Task) IsQuick() bool {
	return t.ProjectID == nil
}

// SubtasksComplete reports whether every embedded subtask is completed.
// True for tasks without subtasks.
func (t Task) SubtasksComplete() bool {
	for _, st := range t.Subtasks {
		if !st.Completed {
			return false
		}
	}
	return true
}
