// Package tui renders a live terminal dashboard of the controller state.
package tui

import (
	"context"
	"fmt"
	"strings"

	ntrunes "github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ayusman/volante/internal/app"
)

const (
	headerHeight = 2 // title + blank line
	playerHeight = 3 // one line per player + keys
	legendHeight = 2
	footerHeight = 7 // log box
	maxLogs      = 5
	borderSize   = 2
)

// playerColors are the chart colors of player 1 and 2.
var playerColors = []string{"51", "208"}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	pausedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	keyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// Controller is the part of the engine the dashboard drives.
type Controller interface {
	SetPaused(paused bool)
	Paused() bool
	Snapshots() <-chan app.Snapshot
}

type snapshotMsg app.Snapshot
type logMsg string

func waitForSnapshot(ch <-chan app.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-ch)
	}
}

func waitForLog(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return logMsg(<-ch)
	}
}

type model struct {
	ctrl     Controller
	logCh    <-chan string
	chart    *streamlinechart.Model
	snap     app.Snapshot
	width    int
	height   int
	logs     []string
	quitting bool
}

func newModel(ctrl Controller, logs <-chan string) model {
	chart := streamlinechart.New(80, 12,
		streamlinechart.WithYRange(-0.2, 1.2),
	)
	for i, color := range playerColors {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		chart.SetDataSetStyles(seriesName(i+1), ntrunes.ThinLineStyle, style)
	}

	return model{
		ctrl:  ctrl,
		logCh: logs,
		chart: &chart,
	}
}

func seriesName(slot int) string {
	return fmt.Sprintf("player%d", slot)
}

func (m *model) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *model) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 12
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - playerHeight - legendHeight - footerHeight - borderSize
	if height < 6 {
		height = 6
	}
	return width, height
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		waitForSnapshot(m.ctrl.Snapshots()),
		waitForLog(m.logCh),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "p", " ":
			m.ctrl.SetPaused(!m.ctrl.Paused())
		}
		return m, nil

	case snapshotMsg:
		m.snap = app.Snapshot(msg)
		for _, s := range m.snap.Slots {
			if s.Assigned && s.Classification.HasHeight {
				m.chart.PushDataSet(seriesName(s.ID), s.Classification.Height)
			}
		}
		m.chart.DrawAll()
		return m, waitForSnapshot(m.ctrl.Snapshots())

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.logCh)
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return "Volante stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Volante"))
	sb.WriteString(fmt.Sprintf(" - tick %d", m.snap.Tick))
	if m.ctrl.Paused() {
		sb.WriteString("  " + pausedStyle.Render("PAUSED"))
	}
	sb.WriteString("\n\n")

	for _, s := range m.snap.Slots {
		sb.WriteString(playerLine(s))
		sb.WriteString("\n")
	}
	sb.WriteString("Keys: ")
	if len(m.snap.Keys) == 0 {
		sb.WriteString(statusStyle.Render("none"))
	} else {
		names := make([]string, len(m.snap.Keys))
		for i, k := range m.snap.Keys {
			names[i] = string(k)
		}
		sb.WriteString(keyStyle.Render(strings.Join(names, " ")))
	}
	sb.WriteString("\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")
	sb.WriteString(renderLegend(len(m.snap.Slots)))
	sb.WriteString("\n")

	logWidth := m.width - 4
	if logWidth < 20 {
		logWidth = 76
	}
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(logWidth)

	logLines := statusStyle.Render("Press 'p' to pause, 'q' to quit")
	if len(m.logs) > 0 {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func playerLine(s app.SlotState) string {
	if !s.Assigned {
		return fmt.Sprintf("Player %d: %s", s.ID, statusStyle.Render("not detected"))
	}
	c := s.Classification
	height, angle := "-", "-"
	if c.HasHeight {
		height = fmt.Sprintf("%.2f", c.Height)
	}
	if c.HasAngle {
		angle = fmt.Sprintf("%+.0f°", c.Angle)
	}
	return fmt.Sprintf("Player %d: %-4s %-7s height %s  tilt %s", s.ID, c.Band, c.Tilt, height, angle)
}

func renderLegend(slots int) string {
	var items []string
	for i := 0; i < slots && i < len(playerColors); i++ {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(playerColors[i])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+fmt.Sprintf("player %d height", i+1))
	}
	return strings.Join(items, "  ")
}

// Run shows the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, ctrl Controller, logs <-chan string) error {
	p := tea.NewProgram(newModel(ctrl, logs), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		// cancelled from outside
		return nil
	}
	return err
}
