package ui

import (
	"context"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mglenn/ttm/internal/api"
	"github.com/mglenn/ttm/internal/models"
	"github.com/mglenn/ttm/internal/settings"
	"github.com/mglenn/ttm/internal/taskgraph"
	"github.com/mglenn/ttm/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewLoading View = iota
	ViewLogin
	ViewProjects
	ViewTasks
)

type authCheckedMsg struct{}

type App struct {
	client   *api.Client
	session  *api.Session
	graph    *taskgraph.Graph
	settings *settings.Store

	currentView View
	loginView   *views.LoginView
	projectList *views.ProjectListView
	taskList    *views.TaskListView
	width       int
	height      int
}

// Creates a new application
func NewApp(client *api.Client, session *api.Session, graph *taskgraph.Graph, store *settings.Store) *App {
	return &App{
		client:      client,
		session:     session,
		graph:       graph,
		settings:    store,
		currentView: ViewLoading,
		loginView:   views.NewLoginView(session),
		projectList: views.NewProjectListView(client, session),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.loginView.Init(),
		func() tea.Msg {
			a.session.CheckAuth(context.Background())
			return authCheckedMsg{}
		},
	)
}

func (a *App) openProject(project models.Project) tea.Cmd {
	a.currentView = ViewTasks
	a.taskList = views.NewTaskListView(a.client, a.graph, project)

	a.settings.Set("last_project_id", strconv.FormatInt(project.ID, 10))

	return tea.Batch(
		a.taskList.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

// restoreLastProject reopens the project the user had open last time, if it
// still exists on the server.
func (a *App) restoreLastProject() tea.Cmd {
	raw, err := a.settings.Get("last_project_id")
	if err != nil || raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	project, err := a.client.GetProject(context.Background(), id)
	if err != nil {
		a.settings.Delete("last_project_id")
		return nil
	}
	return a.openProject(project)
}

func (a *App) showProjects() tea.Cmd {
	a.currentView = ViewProjects
	return tea.Batch(
		a.projectList.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Persistent views track size even while hidden
		a.loginView.Update(msg)
		a.projectList.Update(msg)

	case authCheckedMsg:
		if a.session.State().Authenticated {
			if cmd := a.restoreLastProject(); cmd != nil {
				return a, cmd
			}
			return a, a.showProjects()
		}
		a.currentView = ViewLogin
		return a, nil

	case views.LoggedIn:
		if cmd := a.restoreLastProject(); cmd != nil {
			return a, cmd
		}
		return a, a.showProjects()

	case views.LoggedOut:
		a.currentView = ViewLogin
		a.loginView = views.NewLoginView(a.session)
		if !msg.Verified {
			a.loginView.SetNotice("Logged out locally; the server session may still be active")
		}
		return a, tea.Batch(
			a.loginView.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			},
		)

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.BackToProjects:
		a.settings.Set("last_project_id", "")
		return a, a.showProjects()

	case views.OpenTaskDetails:
		if a.currentView == ViewTasks && a.taskList != nil {
			_, cmd := a.taskList.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewLogin:
		_, cmd = a.loginView.Update(msg)
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewTasks:
		if a.taskList != nil {
			_, cmd = a.taskList.Update(msg)
		}
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewLogin:
		return a.loginView.View()
	case ViewProjects:
		return a.projectList.View()
	case ViewTasks:
		if a.taskList != nil {
			return a.taskList.View()
		}
	}
	return "Checking session..."
}
