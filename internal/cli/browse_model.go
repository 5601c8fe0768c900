package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/reqreport/internal/app"
	"github.com/alexanderramin/reqreport/internal/cli/formatter"
	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/service"
)

const releaseListWidth = 26

type browseKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	TestPlan key.Binding
	Reload   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultBrowseKeys() browseKeyMap {
	return browseKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous release")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next release")),
		TestPlan: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "test plan")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "scroll up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "f", " "), key.WithHelp("pgdn", "scroll down")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.TestPlan, k.Help, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Reload},
		{k.PageUp, k.PageDown, k.TestPlan},
		{k.Help, k.Quit},
	}
}

type releasesLoadedMsg struct {
	releases []domain.Release
	err      error
}

// reportLoadedMsg carries the outcome of the pass started for seq.
type reportLoadedMsg struct {
	seq  uint64
	snap *service.Snapshot
	err  error
}

// browseModel lists releases on the left and the report of the selected
// release on the right. Moving the cursor starts a new pass; results of
// passes the user has already moved past are dropped.
type browseModel struct {
	ctx      context.Context
	session  *service.Session
	releases app.ReleaseListUseCase
	base     app.ReportRequest
	now      func() time.Time

	list     []domain.Release
	cursor   int
	seq      uint64
	loading  bool
	testPlan bool
	snap     *service.Snapshot
	err      error
	quitting bool

	spinner spinner.Model
	vp      viewport.Model
	help    help.Model
	keys    browseKeyMap

	width  int
	height int
}

func newBrowseModel(ctx context.Context, a *App, base app.ReportRequest) browseModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = formatter.StyleYellow

	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown", "f", " ")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "b")),
	}

	return browseModel{
		ctx:      ctx,
		session:  service.NewSession(a.Reports, a.Metrics, a.Logger),
		releases: a.Releases,
		base:     base,
		now:      a.Now,
		testPlan: base.IncludeTestPlanColumn,
		loading:  true,
		spinner:  sp,
		vp:       vp,
		help:     help.New(),
		keys:     defaultBrowseKeys(),
	}
}

func (m browseModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadReleases())
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.render()
		return m, nil

	case releasesLoadedMsg:
		if msg.err != nil {
			m.loading = false
			m.err = msg.err
			return m, nil
		}
		m.list = msg.releases
		if len(m.list) == 0 {
			m.loading = false
			m.err = errors.New("no releases found in scope")
			return m, nil
		}
		m.cursor = 0
		return m, m.selectCurrent()

	case reportLoadedMsg:
		if msg.seq != m.seq || errors.Is(msg.err, app.ErrStaleResult) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.snap = msg.snap
		if m.snap.Request.IncludeTestPlanColumn != m.testPlan {
			// Toggled while the pass was running.
			m.applyTestPlan()
		}
		m.render()
		m.vp.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.session.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			return m, m.selectCurrent()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.list)-1 {
			m.cursor++
			return m, m.selectCurrent()
		}

	case key.Matches(msg, m.keys.Reload):
		if len(m.list) > 0 {
			return m, m.selectCurrent()
		}

	case key.Matches(msg, m.keys.TestPlan):
		m.testPlan = !m.testPlan
		if m.snap != nil {
			m.applyTestPlan()
			m.render()
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	return m, nil
}

// selectCurrent starts a pass for the release under the cursor.
func (m *browseModel) selectCurrent() tea.Cmd {
	m.seq++
	m.loading = true
	req := m.base
	req.ReleaseName = m.list[m.cursor].Name
	req.IncludeTestPlanColumn = m.testPlan
	return tea.Batch(m.spinner.Tick, m.loadReport(m.seq, req))
}

func (m *browseModel) applyTestPlan() {
	snap, err := m.session.ToggleTestPlan(m.testPlan)
	if err != nil {
		m.err = err
		return
	}
	m.snap = snap
}

func (m browseModel) loadReleases() tea.Cmd {
	ctx, releases, scope := m.ctx, m.releases, m.base.Scope
	return func() tea.Msg {
		rs, err := releases.ListReleases(ctx, scope)
		return releasesLoadedMsg{releases: rs, err: err}
	}
}

func (m browseModel) loadReport(seq uint64, req app.ReportRequest) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		snap, err := session.Select(ctx, req)
		return reportLoadedMsg{seq: seq, snap: snap, err: err}
	}
}

func (m *browseModel) resize() {
	m.help.Width = m.width
	m.vp.Width = max(m.width-releaseListWidth-1, 20)
	// Header, status line and help.
	chrome := 2 + lipgloss.Height(m.help.View(m.keys))
	m.vp.Height = max(m.height-chrome, 3)
}

// render refreshes the viewport from the current snapshot.
func (m *browseModel) render() {
	if m.snap == nil {
		return
	}
	resp := *m.snap.Response
	resp.Report = m.snap.Report
	m.vp.SetContent(formatter.FormatReport(&resp, m.vp.Width, m.now()))
}

func (m browseModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(formatter.Header("reqreport") + "\n")

	body := m.vp.View()
	if m.snap == nil {
		body = lipgloss.NewStyle().Width(m.vp.Width).Height(m.vp.Height).Render(formatter.Dim("No report loaded."))
	}
	list := lipgloss.NewStyle().Width(releaseListWidth).Height(m.vp.Height).Render(m.renderList())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, " ", body) + "\n")

	b.WriteString(m.statusLine() + "\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m browseModel) renderList() string {
	if len(m.list) == 0 {
		return formatter.Dim("  (no releases)")
	}
	var b strings.Builder
	for i, r := range m.list {
		name := r.Name
		if i == m.cursor {
			b.WriteString(formatter.StyleHeader.Render("› " + name))
		} else {
			b.WriteString("  " + formatter.StyleFg.Render(name))
		}
		if r.State != "" {
			b.WriteString(" " + formatter.Dim(string(r.State)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m browseModel) statusLine() string {
	switch {
	case m.loading:
		name := ""
		if len(m.list) > 0 {
			name = " " + m.list[m.cursor].Name
		}
		return m.spinner.View() + formatter.Dim(" Loading"+name+"...")
	case m.err != nil:
		return formatter.StyleRed.Render("Error: " + m.err.Error())
	case m.snap != nil:
		plan := "off"
		if m.testPlan {
			plan = "on"
		}
		return formatter.Dim(fmt.Sprintf("%s  test plan %s", m.snap.Request.ReleaseName, plan))
	}
	return ""
}
