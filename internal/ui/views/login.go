package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mglenn/ttm/internal/api"
	"github.com/mglenn/ttm/internal/ui/keys"
	"github.com/mglenn/ttm/internal/ui/styles"
)

// LoggedIn is broadcast after a successful login and auth re-check.
type LoggedIn struct{}

type loginResultMsg struct {
	err error
}

// LoginView is the sign-in form shown while the session is unauthenticated.
type LoginView struct {
	session *api.Session
	styles  *styles.Styles
	keys    keys.KeyMap

	username textinput.Model
	password textinput.Model
	focusIdx int // 0=username, 1=password, 2=submit

	submitting bool
	errMsg     string
	notice     string

	width  int
	height int
}

func NewLoginView(session *api.Session) *LoginView {
	s := styles.NewStyles()

	username := textinput.New()
	username.Placeholder = "Username or email"
	username.CharLimit = 120
	username.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 120
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &LoginView{
		session:  session,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		username: username,
		password: password,
	}
}

// SetNotice shows an advisory line above the form, e.g. when a logout could
// not be verified against the server.
func (v *LoginView) SetNotice(notice string) {
	v.notice = notice
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *LoginView) submit() tea.Cmd {
	username := strings.TrimSpace(v.username.Value())
	password := v.password.Value()
	if username == "" || password == "" {
		v.errMsg = "Username and password are required"
		return nil
	}
	v.submitting = true
	v.errMsg = ""
	return func() tea.Msg {
		return loginResultMsg{err: v.session.Login(context.Background(), username, password)}
	}
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case loginResultMsg:
		v.submitting = false
		if msg.err != nil {
			v.errMsg = api.ErrorMessage(msg.err)
			return v, nil
		}
		if !v.session.State().Authenticated {
			// The login call succeeded but the re-check disagreed.
			v.errMsg = "Failed to log in"
			return v, nil
		}
		return v, func() tea.Msg { return LoggedIn{} }

	case tea.KeyMsg:
		if v.submitting {
			return v, nil
		}
		switch {
		case msg.Type == tea.KeyCtrlC:
			return v, tea.Quit
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
			return v, v.submit()
		case msg.String() == "ctrl+s":
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.username, cmd = v.username.Update(msg)
	case 1:
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) updateFocus() {
	v.username.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case 0:
		v.username.Focus()
	case 1:
		v.password.Focus()
	}
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	usernameStyle := s.Input
	passwordStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		usernameStyle = s.InputFocused
	case 1:
		passwordStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 44)

	rows := []string{
		s.Title.Render("Sign In"),
		"",
	}
	if v.notice != "" {
		rows = append(rows, s.GateHint.Render(v.notice), "")
	}
	rows = append(rows,
		"Username or email:",
		usernameStyle.Width(inputWidth).Render(v.username.View()),
		"",
		"Password:",
		passwordStyle.Width(inputWidth).Render(v.password.View()),
		"",
	)
	if v.submitting {
		rows = append(rows, s.TitleMuted.Render("Signing in..."))
	} else {
		rows = append(rows, btnStyle.Render(" Sign In "))
	}
	if v.errMsg != "" {
		rows = append(rows, "", s.ErrorText.Render(v.errMsg))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • ↵: submit • Ctrl+C: quit"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
