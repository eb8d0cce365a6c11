package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mglenn/ttm/internal/api"
	"github.com/mglenn/ttm/internal/models"
	"github.com/mglenn/ttm/internal/ui/keys"
	"github.com/mglenn/ttm/internal/ui/styles"
)

// SelectedProject is broadcast when the user opens a project.
type SelectedProject struct {
	Project models.Project
}

// LoggedOut is broadcast after a logout. Verified is advisory: false means
// the server may still consider the session signed in.
type LoggedOut struct {
	Verified bool
}

type projectsLoadedMsg struct {
	projects []models.Project
}

type projectCreatedMsg struct {
	project models.Project
}

type projectUpdatedMsg struct {
	project models.Project
}

type projectDeletedMsg struct {
	id int64
}

// projectErrMsg carries a displayable failure for this view.
type projectErrMsg struct {
	message string
}

type logoutDoneMsg struct {
	verified bool
}

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	title := titleStyle.Render(p.Title())
	desc := descStyle.Render(p.Description())

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

// ProjectListView lists the user's projects
type ProjectListView struct {
	client   *api.Client
	session  *api.Session
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	loaded  bool
	errMsg  string
	editing bool
	// editID is nil while creating, set while editing an existing project
	editID *int64

	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	newName  textinput.Model
	newDesc  textinput.Model
	focusIdx int // 0=name, 1=desc, 2=confirm
}

func NewProjectListView(client *api.Client, session *api.Session) *ProjectListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 200

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		client:   client,
		session:  session,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
		newDesc:  newDesc,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects
}

func (v *ProjectListView) loadProjects() tea.Msg {
	projects, err := v.client.ListProjects(context.Background())
	if err != nil {
		return projectErrMsg{message: api.ErrorMessage(err)}
	}
	return projectsLoadedMsg{projects: projects}
}

func (v *ProjectListView) createProject(name, description string) tea.Cmd {
	return func() tea.Msg {
		project, err := v.client.CreateProject(context.Background(), name, description)
		if err != nil {
			return projectErrMsg{message: api.ErrorMessage(err)}
		}
		return projectCreatedMsg{project: project}
	}
}

func (v *ProjectListView) updateProject(id int64, name, description string) tea.Cmd {
	return func() tea.Msg {
		project, err := v.client.UpdateProject(context.Background(), id, name, description)
		if err != nil {
			return projectErrMsg{message: api.ErrorMessage(err)}
		}
		return projectUpdatedMsg{project: project}
	}
}

func (v *ProjectListView) deleteProject(id int64) tea.Cmd {
	return func() tea.Msg {
		// The backend rejects deletes for projects with dependent tasks;
		// that message is shown verbatim, never retried.
		if err := v.client.DeleteProject(context.Background(), id); err != nil {
			return projectErrMsg{message: api.ErrorMessage(err)}
		}
		return projectDeletedMsg{id: id}
	}
}

func (v *ProjectListView) logout() tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{verified: v.session.Logout(context.Background())}
	}
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case projectsLoadedMsg:
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		v.list.SetItems(items)
		v.loaded = true
		v.errMsg = ""
		return v, nil

	case projectCreatedMsg:
		v.editing = false
		v.errMsg = ""
		return v, func() tea.Msg {
			return SelectedProject{Project: msg.project}
		}

	case projectUpdatedMsg:
		v.editing = false
		v.errMsg = ""
		return v, v.loadProjects

	case projectDeletedMsg:
		v.errMsg = ""
		return v, v.loadProjects

	case projectErrMsg:
		v.errMsg = msg.message
		v.loaded = true
		return v, nil

	case logoutDoneMsg:
		return v, func() tea.Msg {
			return LoggedOut{Verified: msg.verified}
		}

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Logout):
			return v, v.logout()
		case key.Matches(msg, v.keys.New):
			v.startForm(nil)
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.startForm(&item.project)
				return v, textinput.Blink
			}
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return SelectedProject{Project: item.project}
				}
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTargetID = item.project.ID
				v.deleteTargetName = item.project.Name
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		return v, v.deleteProject(v.deleteTargetID)
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

// startForm opens the project form, prefilled when editing an existing one.
func (v *ProjectListView) startForm(project *models.Project) {
	v.editing = true
	v.focusIdx = 0
	v.errMsg = ""
	v.newName.Reset()
	v.newDesc.Reset()
	v.editID = nil
	if project != nil {
		v.editID = &project.ID
		v.newName.SetValue(project.Name)
		v.newDesc.SetValue(project.Description)
	}
	v.updateFocus()
}

func (v *ProjectListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.submitForm()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 2 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.submitForm()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) submitForm() tea.Cmd {
	name := strings.TrimSpace(v.newName.Value())
	if name == "" {
		v.errMsg = "Project name is required"
		return nil
	}
	description := strings.TrimSpace(v.newDesc.Value())
	if v.editID != nil {
		return v.updateProject(*v.editID, name, description)
	}
	return v.createProject(name, description)
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newDesc.Focus()
	}
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.editing {
		return v.renderForm()
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}
	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View()
	if v.errMsg != "" {
		content += "\n" + v.styles.ErrorText.Render(v.errMsg)
	}
	content += "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	lines := []string{
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
	}
	if v.errMsg != "" {
		lines = append(lines, "", s.ErrorText.Render(v.errMsg))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Project"
	buttonLabel := " Create "
	if v.editID != nil {
		formTitle = "Edit Project"
		buttonLabel = " Save "
	}

	nameStyle := s.Input
	descStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	rows := []string{
		s.Title.Render(formTitle),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		btnStyle.Render(buttonLabel),
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

func (v *ProjectListView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s select • %s new • %s edit • %s del • %s log out • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("ctrl+l"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" and all of its tasks will be deleted.", v.deleteTargetName)),
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
