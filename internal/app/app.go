// Package app wires the querydesk components into the root bubbletea model:
// the auth screens first, then the workbench with its schema explorer,
// editor, result panel and assistant chat.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/sadopc/querydesk/internal/api"
	"github.com/sadopc/querydesk/internal/completion"
	"github.com/sadopc/querydesk/internal/config"
	"github.com/sadopc/querydesk/internal/connection"
	"github.com/sadopc/querydesk/internal/logging"
	appmsg "github.com/sadopc/querydesk/internal/msg"
	"github.com/sadopc/querydesk/internal/schema"
	"github.com/sadopc/querydesk/internal/theme"
	"github.com/sadopc/querydesk/internal/ui/autocomplete"
	"github.com/sadopc/querydesk/internal/ui/chatpanel"
	"github.com/sadopc/querydesk/internal/ui/connmgr"
	"github.com/sadopc/querydesk/internal/ui/editor"
	"github.com/sadopc/querydesk/internal/ui/login"
	"github.com/sadopc/querydesk/internal/ui/results"
	"github.com/sadopc/querydesk/internal/ui/sidebar"
	"github.com/sadopc/querydesk/internal/ui/statusbar"
	"github.com/sadopc/querydesk/internal/ui/toast"
	"github.com/sadopc/querydesk/internal/workbench"
)

// Status bar and toast texts.
const (
	busyGenerating       = "Generating SQL..."
	busySchema           = "Loading schema..."
	msgCancelled         = "Query cancelled"
	msgUnknownConnection = "Connection not found: "
	msgNothingToExport   = "No results to export"
)

// Backend is the remote service as the workbench sees it. *api.Client
// implements it.
type Backend interface {
	login.Backend
	connmgr.Backend
	GenerateSQL(ctx context.Context, connectionID, prompt string) (*api.Generated, error)
	RunQuery(ctx context.Context, connectionID, query string) (*api.QueryResult, error)
	SchemaInfo(ctx context.Context, connectionID string) (*api.SchemaInfo, error)
}

type screen int

const (
	screenAuth screen = iota
	screenWorkbench
)

// Options configure the root model.
type Options struct {
	Config  *config.Config
	Backend Backend
	Logger  *logrus.Logger
	// Email prefills the login form.
	Email string
	// Connection is selected once the list is loaded after login.
	Connection string
}

// Model is the root application model.
type Model struct {
	// Layout
	width        int
	height       int
	sidebarWidth int
	chatWidth    int
	editorHeight int // percentage of the middle column for the editor
	showSidebar  bool

	screen      screen
	focusedPane appmsg.Pane

	// Components
	login     login.Model
	sidebar   sidebar.Model
	editor    editor.Model
	results   results.Model
	chat      chatpanel.Model
	statusbar statusbar.Model
	connMgr   connmgr.Model
	autocomp  autocomplete.Model
	toasts    toast.Model
	help      help.Model

	compEngine *completion.Engine

	backend Backend
	session *workbench.Session
	log     *logrus.Logger
	cfg     *config.Config

	// pendingConnection is selected as soon as the list contains it.
	pendingConnection string
	cancelFunc        context.CancelFunc

	// Keybinding
	keyMap     KeyMap
	keyMode    appmsg.KeyMode
	vimNormal  bool
	showHelp   bool
	executing  bool
	generating bool
	quitting   bool
}

// New creates the root model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	if t := theme.Get(cfg.Theme); t != nil {
		theme.Current = t
	}

	keyMode := appmsg.ParseKeyMode(cfg.KeyMode)
	km := StandardKeyMap()
	if keyMode == appmsg.KeyModeVim {
		km = VimKeyMap()
	}

	session := workbench.NewSession()
	compEngine := completion.NewEngine("")

	m := Model{
		sidebarWidth: 30,
		chatWidth:    44,
		editorHeight: 45,
		showSidebar:  true,
		focusedPane:  appmsg.PaneEditor,

		login: login.New(opts.Backend, session, opts.Email),
		editor: editor.New(editor.Options{
			TabSize:         cfg.Editor.TabSize,
			ShowLineNumbers: cfg.Editor.ShowLineNumbers,
		}),
		sidebar:   sidebar.New(),
		results:   results.New(cfg.Results.MaxColumnWidth),
		chat:      chatpanel.New(),
		statusbar: statusbar.New(cfg.Server.URL),
		connMgr:   connmgr.New(opts.Backend, session),
		autocomp:  autocomplete.New(compEngine),
		toasts:    toast.New(cfg.Toast.Duration),
		help:      help.New(),

		compEngine:        compEngine,
		backend:           opts.Backend,
		session:           session,
		log:               log,
		cfg:               cfg,
		pendingConnection: strings.TrimSpace(opts.Connection),
		keyMap:            km,
		keyMode:           keyMode,
	}
	m.help.ShowAll = true
	m.editor.Focus()
	m.statusbar.SetKeyMode(keyMode)
	return m
}

// Init starts the login screen.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.login.Init(), m.editor.Init())
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		if m.screen == screenAuth {
			if msg.String() == "ctrl+c" || msg.String() == "ctrl+q" {
				m.quitting = true
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.login, cmd = m.login.Update(msg)
			return m, cmd
		}
		return m, m.handleKey(msg)

	case appmsg.AuthenticatedMsg:
		m.screen = screenWorkbench
		m.log.WithField("email", msg.Email).Info("signed in")
		var cmd tea.Cmd
		m.statusbar, cmd = m.statusbar.Update(msg)
		cmds = append(cmds, cmd, m.connMgr.Load())
		if m.pendingConnection == "" {
			m.connMgr.Show()
		}
		m.updateLayout()

	case toast.ShowMsg, toast.DismissMsg:
		var cmd tea.Cmd
		m.toasts, cmd = m.toasts.Update(msg)
		cmds = append(cmds, cmd)

	case appmsg.OpenConnectionsMsg:
		m.connMgr.Show()
		cmds = append(cmds, m.connMgr.Load())

	case appmsg.SelectConnectionMsg:
		cmds = append(cmds, m.selectConnection(msg.ID, msg.Name))

	case appmsg.ConnectionRemovedMsg:
		m.connectionRemoved(msg.ID)

	case appmsg.SchemaLoadedMsg:
		cmds = append(cmds, m.schemaLoaded(msg))

	case appmsg.ToggleSchemaMsg:
		cmds = append(cmds, m.toggleSidebar())

	case appmsg.RefreshSchemaMsg:
		cmds = append(cmds, m.refreshSchema())

	case appmsg.GenerateRequestMsg:
		cmds = append(cmds, m.generate(msg.Prompt))

	case appmsg.SQLGeneratedMsg:
		cmds = append(cmds, m.generated(msg))

	case appmsg.ExecuteQueryMsg:
		cmds = append(cmds, m.execute(msg.Query))

	case appmsg.QueryResultMsg:
		cmds = append(cmds, m.executed(msg))

	case appmsg.UseQueryMsg:
		m.editor.SetValue(msg.SQL)
		m.setFocus(appmsg.PaneEditor)

	case appmsg.InsertTextMsg:
		m.editor.InsertText(msg.Text)

	case autocomplete.SelectedMsg:
		m.editor.ReplaceBeforeCursor(len([]rune(msg.Replace)), msg.Text)

	case autocomplete.DismissMsg:
		m.autocomp.Dismiss()

	case appmsg.ExportCompleteMsg:
		text := "Saved " + msg.Path
		if msg.RowCount > 0 {
			text = fmt.Sprintf("Exported %d rows to %s", msg.RowCount, msg.Path)
		}
		cmds = append(cmds, toast.Show(toast.Success, text))

	case appmsg.ExportErrMsg:
		m.log.WithError(msg.Err).Error("export failed")
		cmds = append(cmds, toast.Show(toast.Error, "Export failed: "+msg.Err.Error()))

	case appmsg.ToggleKeyModeMsg:
		if m.keyMode == appmsg.KeyModeStandard {
			m.keyMode = appmsg.KeyModeVim
			m.keyMap = VimKeyMap()
		} else {
			m.keyMode = appmsg.KeyModeStandard
			m.keyMap = StandardKeyMap()
			if m.vimNormal {
				m.vimNormal = false
				m.setFocus(m.focusedPane)
			}
		}
		var cmd tea.Cmd
		m.statusbar, cmd = m.statusbar.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.statusbar, cmd = m.statusbar.Update(msg)
		cmds = append(cmds, cmd)

	default:
		// Replies owned by the components (auth, connection manager) and
		// cursor blinks.
		var cmd tea.Cmd
		if m.screen == screenAuth {
			m.login, cmd = m.login.Update(msg)
			return m, cmd
		}
		m.connMgr, cmd = m.connMgr.Update(msg)
		cmds = append(cmds, cmd)
		m.editor, cmd = m.editor.Update(msg)
		cmds = append(cmds, cmd)
		m.chat, cmd = m.chat.Update(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.selectPending())
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Connection manager takes priority
	if m.connMgr.Visible() {
		var cmd tea.Cmd
		m.connMgr, cmd = m.connMgr.Update(msg)
		return tea.Batch(cmd, m.selectPending())
	}

	// Help overlay consumes all keys except close
	if m.showHelp {
		switch msg.String() {
		case "f1", "?", "esc", "q":
			m.showHelp = false
		}
		return nil
	}

	// Autocomplete takes priority when visible
	if m.autocomp.Visible() {
		switch msg.String() {
		case "up", "down", "enter", "tab", "esc", "ctrl+p", "ctrl+n":
			var cmd tea.Cmd
			m.autocomp, cmd = m.autocomp.Update(msg)
			return cmd
		}
		m.autocomp.Dismiss()
	}

	if cmd, handled := m.handleGlobalKeys(msg); handled {
		return cmd
	}
	if m.keyMode == appmsg.KeyModeVim {
		if cmd, handled := m.handleVimKeys(msg); handled {
			return cmd
		}
	}
	return m.handleFocusedPaneKey(msg)
}

func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	km := m.keyMap
	switch {
	case key.Matches(msg, km.Quit):
		m.quitting = true
		return tea.Quit, true

	case key.Matches(msg, km.CancelQuery):
		if m.executing {
			return m.cancelQuery(), true
		}
		return nil, true

	case key.Matches(msg, km.Help):
		m.showHelp = !m.showHelp
		return nil, true

	case msg.String() == "?" && !m.textPaneFocused():
		m.showHelp = !m.showHelp
		return nil, true

	case key.Matches(msg, km.ToggleKeyMode):
		return func() tea.Msg { return appmsg.ToggleKeyModeMsg{} }, true

	case key.Matches(msg, km.ToggleSidebar):
		return m.toggleSidebar(), true

	case key.Matches(msg, km.RefreshSchema):
		return m.refreshSchema(), true

	case key.Matches(msg, km.OpenConnMgr):
		m.connMgr.Show()
		return m.connMgr.Load(), true

	case key.Matches(msg, km.ExportCSV):
		return exportOrWarn(m.results.ExportCSV()), true

	case key.Matches(msg, km.ExportJSON):
		return exportOrWarn(m.results.ExportJSON()), true

	case key.Matches(msg, km.FormatQuery):
		if m.editor.Format() {
			m.statusbar.SetCursor(m.editor.Cursor())
		}
		return nil, true

	case key.Matches(msg, km.ExecuteQuery):
		query := m.editor.Value()
		return func() tea.Msg { return appmsg.ExecuteQueryMsg{Query: query} }, true

	case key.Matches(msg, km.FocusNext) && m.focusedPane != appmsg.PaneEditor:
		m.cycleFocus(1)
		return nil, true

	case key.Matches(msg, km.FocusPrev):
		m.cycleFocus(-1)
		return nil, true

	case key.Matches(msg, km.FocusSidebar):
		if !m.showSidebar {
			return m.toggleSidebar(), true
		}
		m.setFocus(appmsg.PaneSidebar)
		return nil, true

	case key.Matches(msg, km.FocusEditor):
		m.setFocus(appmsg.PaneEditor)
		return nil, true

	case key.Matches(msg, km.FocusResults):
		m.setFocus(appmsg.PaneResults)
		return nil, true

	case key.Matches(msg, km.FocusChat):
		m.setFocus(appmsg.PaneChat)
		return nil, true

	case key.Matches(msg, km.ResizeLeft):
		if m.sidebarWidth > 15 {
			m.sidebarWidth -= 2
			m.updateLayout()
		}
		return nil, true

	case key.Matches(msg, km.ResizeRight):
		if m.sidebarWidth < m.width/3 {
			m.sidebarWidth += 2
			m.updateLayout()
		}
		return nil, true

	case key.Matches(msg, km.ResizeUp):
		if m.editorHeight > 20 {
			m.editorHeight -= 5
			m.updateLayout()
		}
		return nil, true

	case key.Matches(msg, km.ResizeDown):
		if m.editorHeight < 80 {
			m.editorHeight += 5
			m.updateLayout()
		}
		return nil, true
	}
	return nil, false
}

// handleVimKeys implements the normal/insert split for the text panes.
func (m *Model) handleVimKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	km := m.keyMap
	text := m.focusedPane == appmsg.PaneEditor || m.focusedPane == appmsg.PaneChat

	if !m.vimNormal {
		if text && key.Matches(msg, km.VimEscape) {
			m.vimNormal = true
			m.editor.Blur()
			m.chat.Blur()
			return nil, true
		}
		return nil, false
	}

	switch {
	case key.Matches(msg, km.VimInsert) && text:
		m.vimNormal = false
		m.setFocus(m.focusedPane)
		return nil, true
	case key.Matches(msg, km.VimLeft):
		m.cycleFocus(-1)
		return nil, true
	case key.Matches(msg, km.VimRight):
		m.cycleFocus(1)
		return nil, true
	}
	// Normal mode swallows typing in the text panes.
	return nil, text
}

func (m *Model) handleFocusedPaneKey(msg tea.KeyMsg) tea.Cmd {
	switch m.focusedPane {
	case appmsg.PaneSidebar:
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return cmd

	case appmsg.PaneEditor:
		if key.Matches(msg, m.keyMap.Complete) {
			m.autocomp.Trigger(m.editor.Value(), m.editor.CursorOffset())
			return nil
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		m.statusbar.SetCursor(m.editor.Cursor())
		return cmd

	case appmsg.PaneResults:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return cmd

	case appmsg.PaneChat:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return cmd
	}
	return nil
}

func (m Model) textPaneFocused() bool {
	return !m.vimNormal && (m.focusedPane == appmsg.PaneEditor || m.focusedPane == appmsg.PaneChat)
}

func (m Model) panes() []appmsg.Pane {
	if m.showSidebar {
		return []appmsg.Pane{appmsg.PaneSidebar, appmsg.PaneEditor, appmsg.PaneResults, appmsg.PaneChat}
	}
	return []appmsg.Pane{appmsg.PaneEditor, appmsg.PaneResults, appmsg.PaneChat}
}

func (m *Model) cycleFocus(direction int) {
	panes := m.panes()
	current := 0
	for i, p := range panes {
		if p == m.focusedPane {
			current = i
			break
		}
	}
	next := (current + direction + len(panes)) % len(panes)
	m.setFocus(panes[next])
}

func (m *Model) setFocus(pane appmsg.Pane) {
	m.sidebar.Blur()
	m.editor.Blur()
	m.results.Blur()
	m.chat.Blur()
	m.autocomp.Dismiss()

	m.focusedPane = pane
	m.statusbar, _ = m.statusbar.Update(appmsg.FocusMsg{Pane: pane})

	switch pane {
	case appmsg.PaneSidebar:
		m.sidebar.Focus()
	case appmsg.PaneResults:
		m.results.Focus()
	case appmsg.PaneEditor:
		if !m.vimNormal {
			m.editor.Focus()
		}
	case appmsg.PaneChat:
		if !m.vimNormal {
			m.chat.Focus()
		}
	}
}

// selectPending selects the connection named on the command line once the
// connection manager has loaded it.
func (m *Model) selectPending() tea.Cmd {
	if m.pendingConnection == "" || m.screen != screenWorkbench {
		return nil
	}
	e, ok := connection.Find(m.connMgr.Entries(), m.pendingConnection)
	if !ok {
		if !m.connMgr.Loaded() {
			return nil
		}
		missing := m.pendingConnection
		m.pendingConnection = ""
		m.connMgr.Show()
		return toast.Show(toast.Warning, msgUnknownConnection+missing)
	}
	m.pendingConnection = ""
	m.connMgr.Hide()
	return m.selectConnection(e.ID, e.Name)
}

func (m *Model) selectConnection(id, name string) tea.Cmd {
	m.connMgr.Hide()
	m.session.Select(id, name)

	dbType := connection.DBType("")
	if e, ok := connection.Find(m.connMgr.Entries(), id); ok {
		dbType = connection.DBType(e.DBType)
	}
	m.statusbar.SetConnection(name, string(dbType))
	m.editor.SetDialect(dbType)
	m.chat.SetDialect(dbType)
	m.compEngine.SetDialect(dbType)
	m.compEngine.UpdateSchema(nil)
	m.results.Reset()

	m.chat.AddSystem(workbench.ConnectedMessage(name))
	m.log.WithFields(logrus.Fields{"connection": id, "type": dbType}).Info("connection selected")

	return m.ensureSchema(id, name)
}

func (m *Model) connectionRemoved(id string) {
	active, _, ok := m.session.Active()
	if !ok || active != id {
		return
	}
	m.session.Clear()
	m.cancelExecution()
	m.sidebar.ClearConnection()
	m.statusbar.SetConnection("", "")
	m.compEngine.UpdateSchema(nil)
	m.results.Reset()
	m.chat.CancelGenerate()
	m.executing = false
	m.generating = false
	m.statusbar.SetBusy("")
}

// ensureSchema renders the cached snapshot of id or dispatches a load. A
// load already in flight is not duplicated.
func (m *Model) ensureSchema(id, name string) tea.Cmd {
	if snap, ok := m.session.Schemas.Get(id); ok {
		m.applySchema(name, snap)
		return nil
	}
	m.sidebar.SetLoading(name)
	if !m.session.Schemas.MarkLoading(id) {
		return nil
	}
	return m.loadSchema(id)
}

func (m *Model) refreshSchema() tea.Cmd {
	id, name, ok := m.session.Active()
	if !ok {
		return toast.Show(toast.Warning, workbench.MsgNoConnection)
	}
	if !m.session.Schemas.MarkRefresh(id) {
		return nil
	}
	m.sidebar.SetLoading(name)
	return m.loadSchema(id)
}

func (m *Model) loadSchema(id string) tea.Cmd {
	seq := m.session.Begin(workbench.OpSchema)
	b := m.backend
	busy := m.statusbar.SetBusy(busySchema)
	return tea.Batch(busy, func() tea.Msg {
		info, err := b.SchemaInfo(context.Background(), id)
		return appmsg.SchemaLoadedMsg{Seq: seq, ConnectionID: id, Info: info, Err: err}
	})
}

func (m *Model) schemaLoaded(r appmsg.SchemaLoadedMsg) tea.Cmd {
	ok := r.Err == nil && r.Info != nil && r.Info.Success
	if ok {
		m.session.Schemas.Put(r.ConnectionID, r.Info.Schema)
	} else {
		m.session.Schemas.Fail(r.ConnectionID)
	}
	m.clearBusy(busySchema)

	active, name, hasActive := m.session.Active()
	// A stale token is still applied when the active connection waits for
	// exactly this id, since its own load was deduplicated into this one.
	if !hasActive || active != r.ConnectionID {
		return nil
	}
	if !m.session.Current(workbench.OpSchema, r.Seq) && !m.sidebar.Loading() {
		return nil
	}

	if ok {
		m.applySchema(name, r.Info.Schema)
		return nil
	}
	title, detail := workbench.SchemaFailure(r.Info, r.Err)
	if r.Err != nil {
		m.log.WithError(r.Err).WithField("connection", r.ConnectionID).Error("schema load failed")
	}
	m.sidebar.SetError(title, detail)
	return nil
}

func (m *Model) applySchema(name string, snap schema.Snapshot) {
	m.sidebar.SetSnapshot(name, snap)
	m.compEngine.UpdateSchema(snap)
}

func (m *Model) toggleSidebar() tea.Cmd {
	m.showSidebar = !m.showSidebar
	if !m.showSidebar && m.focusedPane == appmsg.PaneSidebar {
		m.setFocus(appmsg.PaneEditor)
	}
	m.updateLayout()
	if !m.showSidebar {
		return nil
	}
	id, name, ok := m.session.Active()
	if !ok {
		m.sidebar.ClearConnection()
		return nil
	}
	return m.ensureSchema(id, name)
}

func (m *Model) generate(prompt string) tea.Cmd {
	id, trimmed, err := m.session.PrepareGenerate(prompt)
	if err != nil {
		return m.notice(err)
	}
	m.chat.BeginGenerate(trimmed)
	m.generating = true

	seq := m.session.Begin(workbench.OpGenerate)
	b := m.backend
	return tea.Batch(m.statusbar.SetBusy(busyGenerating), func() tea.Msg {
		reply, err := b.GenerateSQL(context.Background(), id, trimmed)
		return appmsg.SQLGeneratedMsg{Seq: seq, Reply: reply, Err: err}
	})
}

func (m *Model) generated(r appmsg.SQLGeneratedMsg) tea.Cmd {
	if !m.session.Current(workbench.OpGenerate, r.Seq) {
		return nil
	}
	m.generating = false
	m.clearBusy(busyGenerating)
	if r.Err != nil {
		m.log.WithError(r.Err).Error("generate failed")
	}

	out := workbench.ResolveGenerate(r.Reply, r.Err)
	m.chat.AddAI(out.AIText, out.IsCode)
	if out.SQL != "" {
		m.editor.SetValue(out.SQL)
	}
	if out.Notice != nil {
		return showNotice(*out.Notice)
	}
	return nil
}

func (m *Model) execute(buffer string) tea.Cmd {
	id, query, err := m.session.PrepareExecute(buffer)
	if err != nil {
		return m.notice(err)
	}
	m.cancelExecution()
	m.results.SetLoading()
	m.editor.ResetModified()
	m.executing = true

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFunc = cancel
	seq := m.session.Begin(workbench.OpExecute)
	b := m.backend
	return tea.Batch(m.statusbar.SetBusy(workbench.MsgExecuting), func() tea.Msg {
		defer cancel()
		reply, err := b.RunQuery(ctx, id, query)
		return appmsg.QueryResultMsg{Seq: seq, Reply: reply, Err: err}
	})
}

func (m *Model) executed(r appmsg.QueryResultMsg) tea.Cmd {
	if !m.session.Current(workbench.OpExecute, r.Seq) {
		return nil
	}
	m.executing = false
	m.cancelFunc = nil
	m.clearBusy(workbench.MsgExecuting)
	if r.Err != nil {
		m.log.WithError(r.Err).Error("execute failed")
	}

	out := workbench.ResolveExecute(r.Reply, r.Err)
	if out.Failed() {
		m.results.SetError(out.ErrTitle, out.ErrDetail)
	} else {
		m.results.SetResult(out.Result)
	}
	if out.System != "" {
		m.chat.AddSystem(out.System)
	}
	return showNotice(out.Notice)
}

// cancelQuery abandons the running execution. Its reply, if it still
// arrives, carries a stale token.
func (m *Model) cancelQuery() tea.Cmd {
	m.cancelExecution()
	m.session.Begin(workbench.OpExecute)
	m.executing = false
	m.results.Reset()
	m.clearBusy(workbench.MsgExecuting)
	return toast.Show(toast.Info, msgCancelled)
}

func (m *Model) cancelExecution() {
	if m.cancelFunc != nil {
		m.cancelFunc()
		m.cancelFunc = nil
	}
}

// clearBusy drops the status bar indicator if text is still the one shown.
func (m *Model) clearBusy(text string) {
	if m.statusbar.Busy() != text {
		return
	}
	switch {
	case m.executing:
		m.statusbar.SetBusy(workbench.MsgExecuting)
	case m.generating:
		m.statusbar.SetBusy(busyGenerating)
	default:
		m.statusbar.SetBusy("")
	}
}

func exportOrWarn(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return toast.Show(toast.Warning, msgNothingToExport)
	}
	return cmd
}

func (m *Model) notice(err error) tea.Cmd {
	n, ok := workbench.PreconditionNotice(err)
	if !ok {
		if !errors.Is(err, workbench.ErrEmptyPrompt) {
			m.log.WithError(err).Warn("request not sent")
		}
		return nil
	}
	return showNotice(n)
}

func showNotice(n workbench.Notice) tea.Cmd {
	return toast.Show(toastKind(n.Level), n.Text)
}

func toastKind(l workbench.Level) toast.Kind {
	switch l {
	case workbench.LevelSuccess:
		return toast.Success
	case workbench.LevelWarning:
		return toast.Warning
	case workbench.LevelError:
		return toast.Error
	}
	return toast.Info
}

// Screen helpers used by the command and tests.

// Authenticated reports whether the workbench is shown.
func (m Model) Authenticated() bool { return m.screen == screenWorkbench }

// Session returns the shared workbench session.
func (m Model) Session() *workbench.Session { return m.session }

// FocusedPane returns the pane with input focus.
func (m Model) FocusedPane() appmsg.Pane { return m.focusedPane }
