// Package login implements the sign-in and registration screens shown before
// the workbench.
package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/querydesk/internal/api"
	"github.com/sadopc/querydesk/internal/form"
	"github.com/sadopc/querydesk/internal/msg"
	"github.com/sadopc/querydesk/internal/theme"
	"github.com/sadopc/querydesk/internal/workbench"
)

// Backend is the part of the service the auth screens talk to.
type Backend interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.Reply, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.Reply, error)
}

// Mode selects the screen.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// field indexes the inputs of both screens.
type field int

const (
	fieldUsername field = iota
	fieldEmail
	fieldPassword
	fieldConfirm
	fieldRemember
	fieldCount
)

// jsonName is the form.Errors key of each field.
var jsonName = [fieldCount]string{
	fieldUsername: "username",
	fieldEmail:    "email",
	fieldPassword: "password",
	fieldConfirm:  "confirm_password",
}

var fieldOrder = map[Mode][]field{
	ModeLogin:    {fieldEmail, fieldPassword, fieldRemember},
	ModeRegister: {fieldUsername, fieldEmail, fieldPassword, fieldConfirm},
}

type authReplyMsg struct {
	seq   uint64
	mode  Mode
	email string
	reply *api.Reply
	err   error
}

// Model is the auth screen.
type Model struct {
	backend  Backend
	session  *workbench.Session
	validate *form.Validator

	mode     Mode
	inputs   [fieldCount]textinput.Model
	remember bool
	focus    int // index into fieldOrder[mode]

	errs      form.Errors
	formErr   string
	loginCtl  form.Control
	signupCtl form.Control

	width  int
	height int
}

// New creates the login screen with email prefilled.
func New(b Backend, session *workbench.Session, email string) Model {
	m := Model{
		backend:   b,
		session:   session,
		validate:  form.New(),
		loginCtl:  form.NewControl("Login", "Logging in..."),
		signupCtl: form.NewControl("Register", "Registering..."),
	}

	prompts := [fieldCount]string{
		fieldUsername: "Username: ",
		fieldEmail:    "Email:    ",
		fieldPassword: "Password: ",
		fieldConfirm:  "Confirm:  ",
	}
	for i := fieldUsername; i < fieldRemember; i++ {
		t := textinput.New()
		t.Prompt = prompts[i]
		t.Width = 36
		if i == fieldPassword || i == fieldConfirm {
			t.EchoMode = textinput.EchoPassword
		}
		m.inputs[i] = t
	}
	m.inputs[fieldEmail].SetValue(email)
	m.focusField()
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles keys and auth replies.
func (m Model) Update(message tea.Msg) (Model, tea.Cmd) {
	switch message := message.(type) {
	case authReplyMsg:
		return m.handleReply(message)
	case tea.KeyMsg:
		return m.handleKey(message)
	}
	return m, nil
}

func (m Model) handleKey(key tea.KeyMsg) (Model, tea.Cmd) {
	order := fieldOrder[m.mode]
	switch key.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % len(order)
		m.focusField()
		return m, textinput.Blink
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + len(order)) % len(order)
		m.focusField()
		return m, textinput.Blink
	case "ctrl+r":
		m.SetMode(1 - m.mode)
		return m, textinput.Blink
	case "enter":
		return m.submit()
	case " ":
		if order[m.focus] == fieldRemember {
			m.remember = !m.remember
			return m, nil
		}
	}

	f := order[m.focus]
	if f == fieldRemember {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[f], cmd = m.inputs[f].Update(key)
	return m, cmd
}

func (m *Model) focusField() {
	current := fieldOrder[m.mode][m.focus]
	for i := fieldUsername; i < fieldRemember; i++ {
		if i == current {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// SetMode switches between the login and register screens. Field errors
// are cleared; typed values are kept.
func (m *Model) SetMode(mode Mode) {
	m.mode = mode
	m.focus = 0
	m.errs = nil
	m.formErr = ""
	m.focusField()
}

func (m Model) value(f field) string {
	return m.inputs[f].Value()
}

func (m *Model) control() *form.Control {
	if m.mode == ModeRegister {
		return &m.signupCtl
	}
	return &m.loginCtl
}

func (m Model) submit() (Model, tea.Cmd) {
	email := strings.TrimSpace(m.value(fieldEmail))

	var request func(ctx context.Context) (*api.Reply, error)
	if m.mode == ModeRegister {
		f := form.RegisterForm{
			Username:        strings.TrimSpace(m.value(fieldUsername)),
			Email:           email,
			Password:        m.value(fieldPassword),
			ConfirmPassword: m.value(fieldConfirm),
		}
		m.errs = m.validate.Check(f)
		req := api.RegisterRequest{Username: f.Username, Email: f.Email, Password: f.Password}
		request = func(ctx context.Context) (*api.Reply, error) { return m.backend.Register(ctx, req) }
	} else {
		f := form.LoginForm{Email: email, Password: m.value(fieldPassword), Remember: m.remember}
		m.errs = m.validate.Check(f)
		req := api.LoginRequest{Email: f.Email, Password: f.Password, Remember: f.Remember}
		request = func(ctx context.Context) (*api.Reply, error) { return m.backend.Login(ctx, req) }
	}
	if m.errs != nil {
		return m, nil
	}

	m.formErr = ""
	ctl := m.control()
	if !ctl.Begin() {
		return m, nil
	}
	seq := m.session.Begin(workbench.OpAuth)
	mode := m.mode
	return m, func() tea.Msg {
		reply, err := request(context.Background())
		return authReplyMsg{seq: seq, mode: mode, email: email, reply: reply, err: err}
	}
}

func (m Model) handleReply(r authReplyMsg) (Model, tea.Cmd) {
	if !m.session.Current(workbench.OpAuth, r.seq) {
		return m, nil
	}

	ctl, fallback := &m.loginCtl, form.LoginFailed
	if r.mode == ModeRegister {
		ctl, fallback = &m.signupCtl, form.RegisterFailed
	}

	var success bool
	var message, redirect string
	if r.reply != nil {
		success, message, redirect = r.reply.Success, r.reply.Message, r.reply.Redirect
	}
	err := r.err
	if err == nil && r.reply == nil {
		err = &api.TransportError{Method: "POST", Path: "/" + r.mode.String()}
	}

	text, ok := ctl.Outcome(success, message, err, fallback)
	if !ok {
		m.formErr = text
		return m, nil
	}
	email := r.email
	return m, func() tea.Msg { return msg.AuthenticatedMsg{Email: email, Redirect: redirect} }
}

// Mode returns the current screen.
func (m Model) Mode() Mode { return m.mode }

// Errors returns the field errors of the last submit.
func (m Model) Errors() form.Errors { return m.errs }

// FormError returns the form-level error of the last reply.
func (m Model) FormError() string { return m.formErr }

// Busy reports whether a request is in flight.
func (m Model) Busy() bool { return m.control().Busy() }

// SubmitDisabled reports whether the current screen's submit is disabled.
func (m Model) SubmitDisabled() bool { return m.control().Disabled() }

// SetValues fills the inputs. Used by tests and the --email flag.
func (m *Model) SetValues(username, email, password, confirm string) {
	m.inputs[fieldUsername].SetValue(username)
	m.inputs[fieldEmail].SetValue(email)
	m.inputs[fieldPassword].SetValue(password)
	m.inputs[fieldConfirm].SetValue(confirm)
}

// SetSize sets the available space.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the screen centered.
func (m Model) View() string {
	th := theme.Current

	title := "  Sign in to QueryDesk  "
	if m.mode == ModeRegister {
		title = "  Create an account  "
	}
	lines := []string{th.DialogTitle.Render(title), ""}

	for i, f := range fieldOrder[m.mode] {
		if f == fieldRemember {
			box := "[ ]"
			if m.remember {
				box = "[x]"
			}
			line := box + " Remember me"
			if i == m.focus {
				line = th.SidebarSelected.Render(line)
			}
			lines = append(lines, "  "+line)
			continue
		}
		lines = append(lines, "  "+m.inputs[f].View())
		if e := m.errs.Get(jsonName[f]); e != "" {
			lines = append(lines, "  "+th.FormError.Render("  "+e))
		}
	}

	ctl := m.control()
	button := th.DialogButtonActive.Render(ctl.Text())
	if ctl.Disabled() {
		button = th.DialogButtonDisabled.Render(ctl.Text())
	}
	lines = append(lines, "", "  "+button)
	if m.formErr != "" {
		lines = append(lines, "", "  "+th.ErrorText.Render(m.formErr))
	}

	hint := "  enter:login  tab:next  space:remember  ctrl+r:register  ctrl+c:quit"
	if m.mode == ModeRegister {
		hint = "  enter:register  tab:next  ctrl+r:login  ctrl+c:quit"
	}
	lines = append(lines, "", th.MutedText.Render(hint))

	box := th.DialogBorder.Width(60).Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
