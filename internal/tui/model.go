// Package tui is the interactive shell around the dashboard. Update is the
// only place state changes: watcher callbacks and timers send messages, and
// refreshes run as commands whose results are applied here.
package tui

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/mpjhorner/specdash/internal/dashboard"
	"github.com/mpjhorner/specdash/internal/fsutil"
	"github.com/mpjhorner/specdash/internal/git"
	"github.com/mpjhorner/specdash/internal/log"
	"github.com/mpjhorner/specdash/internal/model"
	"github.com/mpjhorner/specdash/internal/notify"
	"github.com/mpjhorner/specdash/internal/render"
	"github.com/mpjhorner/specdash/internal/render/components"
	"github.com/mpjhorner/specdash/internal/textutil"
	"github.com/mpjhorner/specdash/internal/view"
)

// Options configures the shell
type Options struct {
	RefreshInterval time.Duration
	Notify          bool
	Icons           view.IconSet
	HighlightCode   bool
	Logger          *log.Logger

	// OnFlowChange is called after the active flow changes, so the watch
	// runtime can retarget.
	OnFlowChange func(model.Flow)
}

// Messages
type (
	// RefreshMsg asks for a refresh. The watch runtime sends it after a burst
	// of file events.
	RefreshMsg struct{}

	// WatchErrorMsg reports a watcher failure. It is shown but never fatal.
	WatchErrorMsg struct {
		Err *model.Error
	}

	tickMsg time.Time

	refreshedMsg struct {
		result dashboard.Result
		status dashboard.Status
	}

	previewMsg struct {
		key     string
		preview *view.Preview
		err     error
	}

	flashMsg struct {
		text  string
		isErr bool
	}
)

// Model is the bubbletea model of the dashboard
type Model struct {
	dash     *dashboard.Dashboard
	renderer render.Renderer
	opts     Options
	logger   *log.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	status      dashboard.Status
	state       view.State
	previewKey  string
	refreshing  bool
	manual      bool
	queued      bool
	pendingFlow model.Flow

	flash    string
	flashErr bool

	Width  int
	Height int

	// Desktop and file access, replaced in tests
	notifyGate func(model.ApprovalGate) error
	openFile   func(string) error
	readFile   func(string) (string, bool)
	diff       func(context.Context, git.ChangeSet, git.FileChange, git.Bucket) (string, error)
}

// NewModel creates the shell for dash. The initial size comes from term; a
// refresh is started by Init.
func NewModel(dash *dashboard.Dashboard, renderer render.Renderer, term render.Terminal, opts Options) Model {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Second
	}
	if opts.Icons.Name == "" {
		opts.Icons = view.Icons("")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	width, height := render.DefaultWidth, render.DefaultHeight
	if term != nil {
		width, height = term.Size()
	}

	h := newHelp()
	h.Width = width

	return Model{
		dash:     dash,
		renderer: renderer,
		opts:     opts,
		logger:   logger,
		keys:     defaultKeyMap(),
		help:     h,
		spinner:  s,
		status:   dash.Status(),
		state: view.State{
			View:          components.TabWork,
			Expanded:      map[string]bool{},
			Icons:         opts.Icons,
			HighlightCode: opts.HighlightCode,
		},
		refreshing: true,
		Width:      width,
		Height:     height,
		notifyGate: notify.Gate,
		openFile:   notify.OpenFile,
		readFile:   fsutil.ReadFile,
		diff:       git.Diff,
	}
}

// NewProgram wraps m in a full-screen program reading in and writing out
func NewProgram(m Model, in io.Reader, out io.Writer) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithInput(in), tea.WithOutput(out))
}

// Init starts the first refresh, the spinner and the fallback timer
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.refreshCmd(),
		m.tickCmd(),
	)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshCmd runs one refresh off the update loop. Only one is in flight at a
// time, so the dashboard is never touched concurrently.
func (m Model) refreshCmd() tea.Cmd {
	dash := m.dash
	return func() tea.Msg {
		res := dash.Refresh(context.Background())
		return refreshedMsg{result: res, status: dash.Status()}
	}
}

func (m *Model) startRefresh() tea.Cmd {
	if m.refreshing {
		m.queued = true
		return nil
	}
	m.refreshing = true
	return m.refreshCmd()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		cmd := m.tickCmd()
		if !m.refreshing {
			cmd = tea.Batch(cmd, m.startRefresh())
		}
		return m, cmd

	case RefreshMsg:
		cmd := m.startRefresh()
		return m, cmd

	case WatchErrorMsg:
		if msg.Err != nil {
			m.logger.Warn("watch error", "code", msg.Err.Code, "error", msg.Err.Message)
			m.setFlash(msg.Err.Error(), true)
		}

	case refreshedMsg:
		return m.applyRefresh(msg)

	case previewMsg:
		if msg.key != m.previewKey {
			return m, nil
		}
		if msg.err != nil {
			m.closePreview()
			m.setFlash(msg.err.Error(), true)
			return m, nil
		}
		m.state.Preview = msg.preview

	case flashMsg:
		m.setFlash(msg.text, msg.isErr)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) applyRefresh(msg refreshedMsg) (tea.Model, tea.Cmd) {
	m.refreshing = false
	m.manual = false
	m.status = msg.status

	var cmds []tea.Cmd
	if m.opts.Notify && len(msg.result.NewGates) > 0 {
		cmds = append(cmds, m.notifyCmd(msg.result.NewGates))
	}
	if msg.result.Changed && m.state.Preview != nil {
		if line, ok := view.Lookup(m.frame(), m.previewKey); ok {
			cmds = append(cmds, m.previewCmd(line))
		} else {
			m.closePreview()
		}
	}

	switch {
	case m.pendingFlow != "":
		f := m.pendingFlow
		m.pendingFlow = ""
		m.queued = false
		cmds = append(cmds, m.switchFlow(f))
	case m.queued:
		m.queued = false
		cmds = append(cmds, m.startRefresh())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		m.manual = true
		cmd := m.startRefresh()
		return m, cmd

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.ViewWork, m.keys.ViewIntents, m.keys.ViewGit, m.keys.ViewHealth):
		m.setView(components.TabFromKey(msg.String()))

	case key.Matches(msg, m.keys.NextView):
		m.setView(m.state.View.Next())

	case key.Matches(msg, m.keys.PrevView):
		m.setView(m.state.View.Prev())

	case key.Matches(msg, m.keys.Up):
		m.state.Selected = view.Move(m.frame(), m.state.Selected, -1)

	case key.Matches(msg, m.keys.Down):
		m.state.Selected = view.Move(m.frame(), m.state.Selected, 1)

	case key.Matches(msg, m.keys.Expand):
		if m.state.Selected != "" {
			m.state.Expanded[m.state.Selected] = !m.state.Expanded[m.state.Selected]
		}

	case key.Matches(msg, m.keys.Preview):
		cmd := m.togglePreview()
		return m, cmd

	case key.Matches(msg, m.keys.Open):
		cmd := m.openSelected()
		return m, cmd

	case key.Matches(msg, m.keys.Filter):
		m.state.Filter = m.state.Filter.Next()
		m.setFlash("Filter: "+m.state.Filter.String(), false)

	case key.Matches(msg, m.keys.CycleFlow):
		cmd := m.cycleFlow()
		return m, cmd
	}

	return m, nil
}

func (m *Model) setView(tab components.Tab) {
	if tab < 0 || tab == m.state.View {
		return
	}
	m.state.View = tab
	m.state.Selected = ""
	m.closePreview()
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

func (m *Model) closePreview() {
	m.state.Preview = nil
	m.previewKey = ""
}

func (m *Model) togglePreview() tea.Cmd {
	if m.state.Preview != nil || m.previewKey != "" {
		m.closePreview()
		return nil
	}

	line, ok := view.Lookup(m.frame(), m.state.Selected)
	if !ok {
		m.setFlash("Select a line to preview", false)
		return nil
	}
	cmd := m.previewCmd(line)
	if cmd != nil {
		m.previewKey = line.Key
	}
	return cmd
}

// previewCmd loads the preview of line: a diff for changed files, the file
// content otherwise
func (m *Model) previewCmd(line render.Line) tea.Cmd {
	if bucket, rel, ok := view.ParseGitKey(line.Key); ok {
		change, found := m.findChange(bucket, rel)
		if !found {
			m.setFlash("No change for "+rel, true)
			return nil
		}
		cs := *m.status.Changes
		diff := m.diff
		return func() tea.Msg {
			text, err := diff(context.Background(), cs, change, bucket)
			if err != nil {
				return previewMsg{key: line.Key, err: fmt.Errorf("diff %s: %w", rel, err)}
			}
			return previewMsg{key: line.Key, preview: &view.Preview{Title: rel, Text: text, Diff: true}}
		}
	}

	if line.Path == "" {
		m.setFlash("Nothing to preview", false)
		return nil
	}
	read := m.readFile
	return func() tea.Msg {
		text, ok := read(line.Path)
		if !ok {
			return previewMsg{key: line.Key, err: fmt.Errorf("cannot read %s", line.Path)}
		}
		return previewMsg{key: line.Key, preview: &view.Preview{Title: filepath.Base(line.Path), Text: text}}
	}
}

func (m Model) findChange(bucket git.Bucket, rel string) (git.FileChange, bool) {
	if m.status.Changes == nil {
		return git.FileChange{}, false
	}
	return lo.Find(m.status.Changes.Files(bucket), func(c git.FileChange) bool {
		return c.RelativePath == rel
	})
}

func (m *Model) openSelected() tea.Cmd {
	line, ok := view.Lookup(m.frame(), m.state.Selected)
	if !ok || line.Path == "" {
		m.setFlash("No file for the selected line", false)
		return nil
	}

	path := line.Path
	open := m.openFile
	logger := m.logger
	return func() tea.Msg {
		if err := open(path); err != nil {
			logger.Warn("open failed", "path", path, "error", err)
			return flashMsg{text: "Open failed: " + err.Error(), isErr: true}
		}
		return flashMsg{text: "Opened " + path}
	}
}

func (m *Model) cycleFlow() tea.Cmd {
	next := nextFlow(m.status.Flow, m.status.Available)
	if next == "" {
		m.setFlash("No other flow available", false)
		return nil
	}
	if m.refreshing {
		m.pendingFlow = next
		return nil
	}
	return m.switchFlow(next)
}

// nextFlow returns the flow after current in available, or "" when there is
// nothing to switch to
func nextFlow(current model.Flow, available []model.Flow) model.Flow {
	if len(available) == 0 {
		return ""
	}
	i := lo.IndexOf(available, current)
	next := available[(i+1)%len(available)]
	if next == current {
		return ""
	}
	return next
}

func (m *Model) switchFlow(f model.Flow) tea.Cmd {
	if err := m.dash.SwitchFlow(f); err != nil {
		m.setFlash(model.NormalizeError(err, model.CodeUnsupportedFlow).Error(), true)
		return nil
	}

	m.status = m.dash.Status()
	m.state.Selected = ""
	m.state.Expanded = map[string]bool{}
	m.closePreview()
	if m.opts.OnFlowChange != nil {
		m.opts.OnFlowChange(f)
	}
	m.setFlash("Switched to "+f.DisplayName(), false)
	return m.startRefresh()
}

func (m Model) notifyCmd(gates []model.ApprovalGate) tea.Cmd {
	send := m.notifyGate
	logger := m.logger
	return func() tea.Msg {
		for _, g := range gates {
			if err := send(g); err != nil {
				logger.Debug("notification failed", "subject", g.Subject, "error", err)
			}
		}
		return nil
	}
}

// frame builds the view model for the current state without the shell fields
func (m Model) frame() render.Frame {
	st := m.state
	st.Now = time.Now()
	return view.Build(m.status.Snapshot, m.status.Changes, st)
}

func (m Model) statusName() string {
	switch {
	case m.refreshing && (m.manual || m.status.Snapshot == nil):
		return dashboard.StateRefreshing.String()
	case m.status.Err != nil:
		return dashboard.StateError.String()
	default:
		return dashboard.StateIdle.String()
	}
}

func (m Model) footer() string {
	var lines []string
	if m.flash != "" {
		style := FlashStyle
		if m.flashErr {
			style = FlashErrorStyle
		}
		lines = append(lines, style.Render(m.flash))
	}
	if m.refreshing && m.manual {
		lines = append(lines, m.spinner.View()+" refreshing")
	}
	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

// View renders the UI
func (m Model) View() string {
	f := m.frame()
	f.Status = m.statusName()
	if !m.status.UpdatedAt.IsZero() {
		f.Updated = textutil.FormatClock(m.status.UpdatedAt)
	}
	f.Error = m.status.Err
	f.Footer = m.footer()
	return m.renderer.Render(f, m.Width, m.Height)
}
