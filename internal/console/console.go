// Package console renders a running simulator in a bubbletea terminal UI.
package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"fleetfusion/internal/fleet"
	"fleetfusion/internal/sim"
)

// Controller is the slice of the simulator the UI drives.
type Controller interface {
	Accept() bool
	Dismiss() bool
	Restart()
}

type simController struct {
	ctx context.Context
	sim *sim.Simulator
}

func (c simController) Accept() bool  { return c.sim.Accept() }
func (c simController) Dismiss() bool { return c.sim.Dismiss() }
func (c simController) Restart()      { c.sim.Activate(c.ctx) }

// snapshotMsg carries the latest simulator state.
type snapshotMsg struct{ sim.Snapshot }

// actionMsg reports the outcome of a key-triggered action.
type actionMsg struct {
	action  string
	applied bool
}

var (
	green  = lipgloss.Color("10")
	red    = lipgloss.Color("9")
	yellow = lipgloss.Color("11")
	blue   = lipgloss.Color("12")
	gray   = lipgloss.Color("8")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(blue)
	offerStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(yellow).Padding(0, 1)
	dimStyle   = lipgloss.NewStyle().Foreground(gray)
)

func statusColor(s fleet.Status) lipgloss.Color {
	switch s {
	case fleet.StatusCritical:
		return red
	case fleet.StatusDelayed:
		return yellow
	default:
		return green
	}
}

func severityColor(s fleet.Severity) lipgloss.Color {
	switch s {
	case fleet.SeverityCritical:
		return red
	case fleet.SeverityWarning:
		return yellow
	default:
		return gray
	}
}

// Run shows s until the user quits or ctx is done. The simulator is
// activated on start and deactivated when the UI exits.
func Run(ctx context.Context, s *sim.Simulator, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snaps, unsubscribe := s.Subscribe()
	defer unsubscribe()

	m := newModel(simController{ctx: ctx, sim: s})
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)...)
	go func() {
		for snap := range snaps {
			p.Send(snapshotMsg{snap})
		}
	}()
	s.Activate(ctx)
	defer s.Deactivate()

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

type model struct {
	ctl        Controller
	table      table.Model
	vp         viewport.Model
	snap       sim.Snapshot
	logs       []string
	status     string
	wrap       bool
	autoscroll bool
	help       bool
	width      int
	height     int
}

func newModel(ctl Controller) model {
	cols := []table.Column{
		{Title: "Truck", Width: 9},
		{Title: "Driver", Width: 14},
		{Title: "Status", Width: 9},
		{Title: "km/h", Width: 6},
		{Title: "Class", Width: 9},
		{Title: "ETA h", Width: 6},
		{Title: "Cargo", Width: 10},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(2))
	return model{
		ctl:        ctl,
		table:      t,
		vp:         viewport.New(0, 0),
		autoscroll: true,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) act(action string, fn func() bool) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{action: action, applied: fn()}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.updateViewportHeight()
		m.refreshViewport()
	case snapshotMsg:
		m.snap = msg.Snapshot
		m.setRows()
		m.logs = make([]string, 0, len(m.snap.Events))
		for _, ev := range m.snap.Events {
			m.logs = append(m.logs, formatEvent(ev))
		}
		m.updateViewportHeight()
		m.refreshViewport()
	case actionMsg:
		if msg.applied {
			m.status = msg.action + " applied"
		} else {
			m.status = msg.action + " ignored: nothing pending"
		}
		m.updateViewportHeight()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "a":
			return m, m.act(sim.ActionAccept, m.ctl.Accept)
		case "d":
			return m, m.act(sim.ActionDismiss, m.ctl.Dismiss)
		case "r":
			return m, m.act("restart", func() bool { m.ctl.Restart(); return true })
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		case "h", "?":
			m.help = !m.help
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown":
				m.vp.LineDown(10)
			case "pgup":
				m.vp.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
		}
	}
	return m, nil
}

func (m *model) setRows() {
	rows := make([]table.Row, 0, len(m.snap.Trucks))
	for _, t := range m.snap.Trucks {
		rows = append(rows, table.Row{
			t.ID,
			t.Driver,
			string(t.Status),
			fmt.Sprintf("%.0f", t.Velocity),
			string(fleet.ClassifyVelocity(t.Velocity)),
			fmt.Sprintf("%.1f", fleet.ETAHours(t.Velocity)),
			fmt.Sprintf("$%.0f", t.CargoValue),
		})
	}
	m.table.SetRows(rows)
	m.table.SetHeight(len(rows) + 1)
}

func formatEvent(ev fleet.AgentEvent) string {
	sev := lipgloss.NewStyle().Foreground(severityColor(ev.Severity))
	return fmt.Sprintf("%s %s %s",
		dimStyle.Render(ev.Timestamp.Format("15:04:05")),
		sev.Render(fmt.Sprintf("[%s]", strings.ToUpper(string(ev.Type)))),
		ev.Message)
}

func (m *model) updateViewportHeight() {
	used := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderBottom()) + 2
	if offer := m.renderOffer(); offer != "" {
		used += lipgloss.Height(offer) + 1
	}
	h := m.height - used
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *model) refreshViewport() {
	lines := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		if m.wrap && m.vp.Width > 0 {
			l = wordwrap.String(l, m.vp.Width)
		}
		lines = append(lines, l)
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m model) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := dimStyle.Render(strings.Repeat("─", m.vp.Width))
	sections := []string{m.renderHeader(), divider}
	if offer := m.renderOffer(); offer != "" {
		sections = append(sections, offer)
	}
	sections = append(sections, m.vp.View(), divider, m.renderBottom())
	return strings.Join(sections, "\n")
}

func (m model) renderHeader() string {
	state := lipgloss.NewStyle().Foreground(red).Render("stopped")
	if m.snap.Active {
		state = lipgloss.NewStyle().Foreground(green).Render("running")
	}
	title := fmt.Sprintf("%s %s  script=%s  events=%d  actions=%d",
		titleStyle.Render("FleetFusion"), state, m.snap.Script,
		m.snap.Stats.TotalEvents, m.snap.Stats.ActionsTaken)
	return lipgloss.JoinVertical(lipgloss.Left, title, m.table.View())
}

func (m model) renderOffer() string {
	a := m.snap.Arbitrage
	if a == nil {
		return ""
	}
	body := fmt.Sprintf("%s  %s\npenalty $%.0f  cost $%.0f  net $%.0f\n%s\n[a] execute  [d] dismiss",
		lipgloss.NewStyle().Bold(true).Foreground(statusColor(fleet.StatusCritical)).Render(a.TruckID),
		a.SolutionType, a.ProjectedPenalty, a.SolutionCost, a.NetSavings, a.Details)
	if m.vp.Width > 4 {
		body = wordwrap.String(body, m.vp.Width-4)
	}
	return offerStyle.Render(body)
}

func indicator(on bool) string {
	c := red
	if on {
		c = green
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

func (m model) renderBottom() string {
	counts := make([]string, 0, 4)
	for _, s := range []fleet.Status{fleet.StatusOnTime, fleet.StatusDelayed, fleet.StatusCritical, fleet.StatusResolved} {
		if n := m.snap.Stats.StatusCounts[s]; n > 0 {
			counts = append(counts, lipgloss.NewStyle().Foreground(statusColor(s)).Render(fmt.Sprintf("%s=%d", s, n)))
		}
	}
	line := fmt.Sprintf("%s | Wrap %s | Scroll %s | h help", strings.Join(counts, " "), indicator(m.wrap), indicator(m.autoscroll))
	if m.status != "" {
		line += " | " + m.status
	}
	return line
}

func (m model) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" a  execute the pending arbitrage solution",
		" d  dismiss the pending opportunity",
		" r  restart the script",
		" w  toggle wrap for the agent log",
		" s  toggle auto-scroll",
		" h/? toggle this help view",
		" q  quit",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}
