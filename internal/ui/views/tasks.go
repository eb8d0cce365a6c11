package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mglenn/ttm/internal/api"
	"github.com/mglenn/ttm/internal/models"
	"github.com/mglenn/ttm/internal/taskgraph"
	"github.com/mglenn/ttm/internal/ui/keys"
	"github.com/mglenn/ttm/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// BackToProjects signals to go back to project list
type BackToProjects struct{}

// OpenTaskDetails asks the task view to open a specific task's detail pane,
// e.g. a subtask selected from its parent.
type OpenTaskDetails struct {
	TaskID int64
}

// filterTab selects which slice of the graph the list shows.
type filterTab int

const (
	tabProject filterTab = iota
	tabQuick
	tabAll
)

func (t filterTab) label() string {
	switch t {
	case tabQuick:
		return "Quick"
	case tabAll:
		return "All"
	default:
		return "Project"
	}
}

type tasksLoadedMsg struct{}

// taskMutatedMsg carries the server's canonical record after a successful
// mutation; it is reconciled into the graph.
type taskMutatedMsg struct {
	task models.Task
}

type taskDeletedMsg struct {
	id int64
}

type reorderSavedMsg struct{}

// taskErrMsg is a failed mutation. The optimistic local state is stale, so
// handling it always triggers a full re-fetch.
type taskErrMsg struct {
	message string
}

// TaskListView shows the tasks of a project plus the quick and all tabs
type TaskListView struct {
	client  *api.Client
	graph   *taskgraph.Graph
	project models.Project
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	tab     filterTab
	visible []models.Task
	cursor  int
	scrollY int
	loaded  bool
	errMsg  string
	// gateMsg is shown next to the selected task when completion is blocked
	gateMsg string

	// Task detail pane
	viewingTask bool
	viewTaskID  int64
	subCursor   int

	// Reorder mode (only inside the detail pane)
	reordering    bool
	reorderCursor int

	// Task creation
	editing      bool
	editParentID *int64
	editTitle    textinput.Model
	editDesc     textarea.Model
	editPriority textinput.Model
	editDueDate  textinput.Model
	editFocusIdx int // 0=title, 1=desc, 2=priority, 3=due date, 4=save

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string
}

// NewTaskListView creates a new task list view scoped to a project
func NewTaskListView(client *api.Client, graph *taskgraph.Graph, project models.Project) *TaskListView {
	s := styles.NewStyles()

	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	editPriority := textinput.New()
	editPriority.Placeholder = "0-10"
	editPriority.CharLimit = 2

	editDueDate := textinput.New()
	editDueDate.Placeholder = "YYYY-MM-DD"
	editDueDate.CharLimit = 10

	return &TaskListView{
		client:       client,
		graph:        graph,
		project:      project,
		styles:       s,
		keys:         keys.DefaultKeyMap(),
		editTitle:    editTitle,
		editDesc:     editDesc,
		editPriority: editPriority,
		editDueDate:  editDueDate,
	}
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return v.loadTasks
}

func (v *TaskListView) filter() taskgraph.Filter {
	switch v.tab {
	case tabQuick:
		return taskgraph.Quick()
	case tabAll:
		return taskgraph.All()
	default:
		return taskgraph.Project(v.project.ID)
	}
}

// loadTasks replaces the local graph with the server's collection. It is
// both the initial load and the rollback path after a failed mutation.
func (v *TaskListView) loadTasks() tea.Msg {
	tasks, err := v.client.ListTasks(context.Background())
	if err != nil {
		return taskErrMsg{message: api.ErrorMessage(err)}
	}
	v.graph.Replace(tasks)
	return tasksLoadedMsg{}
}

func (v *TaskListView) refreshVisible() {
	v.visible = v.graph.TopLevel(v.filter())
	if v.cursor >= len(v.visible) {
		v.cursor = max(0, len(v.visible)-1)
	}
}

func (v *TaskListView) selectedTask() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.visible) {
		return models.Task{}, false
	}
	return v.visible[v.cursor], true
}

// toggleCompletion flips the completed flag of task id, optimistically in
// the graph first, then with a single PUT. Gating runs before any change.
func (v *TaskListView) toggleCompletion(id int64) tea.Cmd {
	task, ok := v.graph.Get(id)
	if !ok {
		return nil
	}

	completed := !task.Completed
	if completed {
		if allowed, reason := v.graph.Gate(id); !allowed {
			v.gateMsg = reason
			return nil
		}
	}
	v.gateMsg = ""
	v.graph.SetCompleted(id, completed)
	v.refreshVisible()

	return func() tea.Msg {
		updated, err := v.client.UpdateTask(context.Background(), id, api.TaskPatch{
			Completed: &completed,
		})
		if err != nil {
			return taskErrMsg{message: api.ErrorMessage(err)}
		}
		return taskMutatedMsg{task: updated}
	}
}

// cycleStatus advances task id through todo, in progress, completed.
func (v *TaskListView) cycleStatus(id int64) tea.Cmd {
	task, ok := v.graph.Get(id)
	if !ok {
		return nil
	}

	var next models.Status
	switch task.Status() {
	case models.StatusTodo:
		next = models.StatusInProgress
	case models.StatusInProgress:
		next = models.StatusCompleted
	default:
		next = models.StatusTodo
	}

	if next == models.StatusCompleted {
		if allowed, reason := v.graph.Gate(id); !allowed {
			v.gateMsg = reason
			return nil
		}
	}
	v.gateMsg = ""

	now := time.Now()
	v.graph.SetStatus(id, next, now)
	v.refreshVisible()

	completed, startDate, clearStart := taskgraph.StatusFields(next, now)
	patch := api.TaskPatch{Completed: &completed}
	if clearStart {
		patch.ClearStartDate = true
	} else if startDate != "" {
		patch.StartDate = &startDate
	}

	return func() tea.Msg {
		updated, err := v.client.UpdateTask(context.Background(), id, patch)
		if err != nil {
			return taskErrMsg{message: api.ErrorMessage(err)}
		}
		return taskMutatedMsg{task: updated}
	}
}

func (v *TaskListView) deleteTask(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := v.client.DeleteTask(context.Background(), id); err != nil {
			return taskErrMsg{message: api.ErrorMessage(err)}
		}
		return taskDeletedMsg{id: id}
	}
}

func (v *TaskListView) saveReorder() tea.Cmd {
	parentID, order, ok := v.graph.CommitReorder()
	v.reordering = false
	if !ok {
		return nil
	}
	return func() tea.Msg {
		if err := v.client.ReorderSubtasks(context.Background(), parentID, order); err != nil {
			return taskErrMsg{message: api.ErrorMessage(err)}
		}
		return reorderSavedMsg{}
	}
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case tasksLoadedMsg:
		v.loaded = true
		v.errMsg = ""
		v.refreshVisible()
		return v, nil

	case taskMutatedMsg:
		v.graph.Reconcile(msg.task)
		v.errMsg = ""
		v.refreshVisible()
		return v, nil

	case taskDeletedMsg:
		v.graph.Remove(msg.id)
		v.errMsg = ""
		if v.viewingTask && v.viewTaskID == msg.id {
			v.viewingTask = false
		}
		v.refreshVisible()
		return v, nil

	case reorderSavedMsg:
		v.errMsg = ""
		return v, nil

	case taskErrMsg:
		// Local optimistic state may now disagree with the server.
		v.errMsg = msg.message
		v.loaded = true
		return v, v.loadTasks

	case OpenTaskDetails:
		if _, ok := v.graph.Get(msg.TaskID); ok {
			v.viewingTask = true
			v.viewTaskID = msg.TaskID
			v.subCursor = 0
			v.gateMsg = ""
		}
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		if v.reordering {
			return v.updateReordering(msg)
		}
		if v.viewingTask {
			return v.updateViewingTask(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Tab):
		v.tab = (v.tab + 1) % 3
		v.cursor = 0
		v.scrollY = 0
		v.gateMsg = ""
		v.refreshVisible()
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.gateMsg = ""
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.visible)-1 {
			v.cursor++
			v.gateMsg = ""
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if task, ok := v.selectedTask(); ok {
			v.viewingTask = true
			v.viewTaskID = task.ID
			v.subCursor = 0
			v.gateMsg = ""
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if task, ok := v.selectedTask(); ok {
			return v, v.toggleCompletion(task.ID)
		}
		return v, nil

	case key.Matches(msg, v.keys.Status):
		if task, ok := v.selectedTask(); ok {
			return v, v.cycleStatus(task.ID)
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask(nil)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selectedTask(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = task.ID
			v.deleteTargetName = task.Title
		}
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task, ok := v.graph.Get(v.viewTaskID)
	if !ok {
		v.viewingTask = false
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewingTask = false
		v.gateMsg = ""
		v.refreshVisible()
		return v, nil

	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.subCursor > 0 {
			v.subCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.subCursor < len(task.Subtasks)-1 {
			v.subCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.subCursor < len(task.Subtasks) {
			sub := task.Subtasks[v.subCursor]
			return v, func() tea.Msg { return OpenTaskDetails{TaskID: sub.ID} }
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		id := task.ID
		if v.subCursor < len(task.Subtasks) {
			id = task.Subtasks[v.subCursor].ID
		}
		return v, v.toggleCompletion(id)

	case key.Matches(msg, v.keys.Status):
		return v, v.cycleStatus(task.ID)

	case key.Matches(msg, v.keys.New):
		parentID := task.ID
		v.startNewTask(&parentID)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Reorder):
		if v.graph.BeginReorder(task.ID) {
			v.reordering = true
			v.reorderCursor = 0
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		v.confirmingDelete = true
		v.deleteTargetID = task.ID
		v.deleteTargetName = task.Title
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateReordering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	order := v.graph.WorkingOrder()

	switch {
	case key.Matches(msg, v.keys.Back):
		v.graph.CancelReorder()
		v.reordering = false
		return v, nil

	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Save):
		return v, v.saveReorder()

	case msg.String() == "shift+up", msg.String() == "K":
		v.graph.MoveInReorder(v.reorderCursor, -1)
		if v.reorderCursor > 0 {
			v.reorderCursor--
		}
		return v, nil

	case msg.String() == "shift+down", msg.String() == "J":
		v.graph.MoveInReorder(v.reorderCursor, 1)
		if v.reorderCursor < len(order)-1 {
			v.reorderCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.reorderCursor > 0 {
			v.reorderCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.reorderCursor < len(order)-1 {
			v.reorderCursor++
		}
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		return v, v.deleteTask(v.deleteTargetID)
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % 5
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + 4) % 5
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		// Enter on single-line fields moves on; the textarea keeps it
		if v.editFocusIdx == 0 || v.editFocusIdx == 2 || v.editFocusIdx == 3 {
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		}
		if v.editFocusIdx == 4 {
			return v, v.saveTask()
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case 0:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case 1:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case 2:
		v.editPriority, cmd = v.editPriority.Update(msg)
	case 3:
		v.editDueDate, cmd = v.editDueDate.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) startNewTask(parentID *int64) {
	v.editing = true
	v.editParentID = parentID
	v.editFocusIdx = 0
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editPriority.SetValue("0")
	v.editDueDate.Reset()
	v.updateEditFocus()
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editPriority.Blur()
	v.editDueDate.Blur()

	switch v.editFocusIdx {
	case 0:
		v.editTitle.Focus()
	case 1:
		v.editDesc.Focus()
	case 2:
		v.editPriority.Focus()
	case 3:
		v.editDueDate.Focus()
	}
}

func (v *TaskListView) saveTask() tea.Cmd {
	title := strings.TrimSpace(v.editTitle.Value())
	if title == "" {
		v.errMsg = "Task title is required"
		return nil
	}

	priority, _ := strconv.Atoi(v.editPriority.Value())
	priority = clamp(priority, 0, 10)

	nt := api.NewTask{
		Title:       title,
		Description: strings.TrimSpace(v.editDesc.Value()),
		Priority:    priority,
		DueDate:     strings.TrimSpace(v.editDueDate.Value()),
		ParentID:    v.editParentID,
	}
	// Subtasks inherit scope from the parent; quick tasks carry no project.
	if v.editParentID == nil && v.tab != tabQuick {
		projectID := v.project.ID
		nt.ProjectID = &projectID
	}

	v.editing = false
	v.errMsg = ""

	return func() tea.Msg {
		created, err := v.client.CreateTask(context.Background(), nt)
		if err != nil {
			return taskErrMsg{message: api.ErrorMessage(err)}
		}
		return taskMutatedMsg{task: created}
	}
}

func (v *TaskListView) ensureVisible() {
	availableHeight := v.height - 10
	if availableHeight < 2 {
		availableHeight = 2
	}
	visibleItems := max(availableHeight/2, 1)

	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.editing {
		return v.renderEditForm()
	}
	if v.reordering {
		return v.renderReorder()
	}
	if v.viewingTask {
		return v.renderTaskDetail()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	if v.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.ErrorText.Render(v.errMsg))
	}
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles

	var tabs []string
	for _, t := range []filterTab{tabProject, tabQuick, tabAll} {
		label := t.label()
		if t == tabProject {
			label = v.project.Name
		}
		if t == v.tab {
			tabs = append(tabs, s.ButtonFocused.Render(label))
		} else {
			tabs = append(tabs, s.Button.Render(label))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Tasks"),
		lipgloss.JoinHorizontal(lipgloss.Center, tabs...),
	)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}
	if len(v.visible) == 0 {
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	availableHeight := max(v.height-10, 2)
	visibleItems := max(availableHeight/2, 1)

	var items []string
	endIdx := min(v.scrollY+visibleItems, len(v.visible))

	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.visible[i], i == v.cursor))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) statusBadge(status models.Status) string {
	s := v.styles
	switch status {
	case models.StatusCompleted:
		return s.StatusCompleted.Render("[x]")
	case models.StatusInProgress:
		return s.StatusInProgress.Render("[~]")
	default:
		return s.StatusTodo.Render("[ ]")
	}
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	line := v.statusBadge(task.Status()) + " " + task.Title
	if task.Priority > 0 {
		line += fmt.Sprintf(" [%d]", task.Priority)
	}
	if n := len(task.Subtasks); n > 0 {
		done := 0
		for _, st := range task.Subtasks {
			if st.Completed {
				done++
			}
		}
		line += s.TitleMuted.Render(fmt.Sprintf(" (%d/%d)", done, n))
	}

	var second string
	switch {
	case selected && v.gateMsg != "":
		second = s.GateHint.Render(v.gateMsg)
	case task.DueDate != "":
		second = s.TitleMuted.Render("due " + task.DueDate)
	case task.Description != "":
		second = s.TitleMuted.Render(task.Description)
	}

	itemStyle := s.ListItem
	if selected {
		itemStyle = s.ListSelected
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		itemStyle.Width(width).Render(line),
		itemStyle.Width(width).Render(second),
	) + "\n"
}

func (v *TaskListView) renderTaskDetail() string {
	task, ok := v.graph.Get(v.viewTaskID)
	if !ok {
		return ""
	}

	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	textWidth := clamp(contentWidth-10, 20, 70)
	labelStyle := s.TitleMuted

	descText := task.Description
	if descText == "" {
		descText = s.TitleMuted.Render("No description")
	}

	rows := []string{
		s.Title.MarginBottom(1).Render(task.Title),
		"",
		labelStyle.Render("Status"),
		v.statusBadge(task.Status()) + " " + string(task.Status()),
		"",
		labelStyle.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(descText),
	}

	if task.DueDate != "" {
		rows = append(rows, "", labelStyle.Render("Due"), task.DueDate)
	}
	if task.StartDate != "" {
		rows = append(rows, "", labelStyle.Render("Started"), task.StartDate)
	}

	blockedBy, blocking := v.graph.Dependencies(task.ID)
	if len(blockedBy) > 0 {
		rows = append(rows, "", labelStyle.Render("Blocked by"))
		for _, title := range blockedBy {
			rows = append(rows, s.DepLabel.Render("⊘ "+title))
		}
	}
	if len(blocking) > 0 {
		rows = append(rows, "", labelStyle.Render("Blocking"))
		for _, title := range blocking {
			rows = append(rows, s.DepLabel.Render("→ "+title))
		}
	}

	rows = append(rows, "", labelStyle.Render("Subtasks"))
	if len(task.Subtasks) == 0 {
		rows = append(rows, s.TitleMuted.Render("No subtasks"))
	} else {
		for i, sub := range task.Subtasks {
			line := v.statusBadge(sub.Status()) + " " + sub.Title
			if i == v.subCursor {
				rows = append(rows, s.ListSelected.Render(line))
			} else {
				rows = append(rows, s.ListItem.Render(line))
			}
		}
	}

	if v.gateMsg != "" {
		rows = append(rows, "", s.GateHint.Render(v.gateMsg))
	}
	if v.errMsg != "" {
		rows = append(rows, "", s.ErrorText.Render(v.errMsg))
	}

	rows = append(rows, "", s.Help.Render(
		fmt.Sprintf("%s open subtask • %s toggle • %s status • %s subtask • %s reorder • %s del • %s back",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("space"),
			s.HelpKey.Render("s"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("r"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("esc"),
		),
	))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}

func (v *TaskListView) renderReorder() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var items []string
	for i, id := range v.graph.WorkingOrder() {
		title := fmt.Sprintf("Task #%d", id)
		if t, ok := v.graph.Get(id); ok {
			title = t.Title
		}
		line := fmt.Sprintf("%d. %s", i+1, title)
		if i == v.reorderCursor {
			items = append(items, s.ListSelected.Render(line))
		} else {
			items = append(items, s.ListItem.Render(line))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Reorder Subtasks"),
		"",
		lipgloss.JoinVertical(lipgloss.Left, items...),
		"",
		s.TitleMuted.Render("Shift+↑↓: move • ↵: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	if v.editParentID != nil {
		formTitle = "New Subtask"
	} else if v.tab == tabQuick {
		formTitle = "New Quick Task"
	}

	titleStyle := s.Input
	descStyle := s.Input
	priorityStyle := s.Input
	dueStyle := s.Input
	btnStyle := s.Button

	switch v.editFocusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		priorityStyle = s.InputFocused
	case 3:
		dueStyle = s.InputFocused
	case 4:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	rows := []string{
		s.Title.Render(formTitle),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.editTitle.View()),
		"",
		"Description:",
		descStyle.Render(v.editDesc.View()),
		"",
		"Priority (0-10):",
		priorityStyle.Width(10).Render(v.editPriority.View()),
		"",
		"Due date:",
		dueStyle.Width(16).Render(v.editDueDate.View()),
		"",
		btnStyle.Render(" Save "),
	}
	if v.errMsg != "" {
		rows = append(rows, "", s.ErrorText.Render(v.errMsg))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s toggle • %s status • %s filter • %s new • %s del • %s back • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("space"),
			v.styles.HelpKey.Render("s"),
			v.styles.HelpKey.Render("tab"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" and its subtasks will be deleted.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
