// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/velsh/presshold/internal/bridge"
	"github.com/velsh/presshold/internal/model"
	"github.com/velsh/presshold/internal/session"
	"github.com/velsh/presshold/internal/telemetry"
)

const tickInterval = 100 * time.Millisecond

var (
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	hitStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	missStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle      = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

type bridgeMsg struct {
	event bridge.Event
}

type tickMsg struct {
	generation int
	at         time.Time
}

// Model implements the Bubble Tea drill UI.
type Model struct {
	ctrl *session.Controller
	brd  *bridge.Bridge

	width  int
	height int

	status      bridge.Status
	lastSnaps   []model.KeySnapshot
	lastOutcome *model.AttemptOutcome

	resultsBuilt bool
	resultsTable table.Model
}

// NewModel constructs a drill TUI model.
func NewModel(ctrl *session.Controller, brd *bridge.Bridge) *Model {
	return &Model{ctrl: ctrl, brd: brd, status: brd.Status()}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForBridge(), m.scheduleTick())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case bridgeMsg:
		m.handleBridgeEvent(msg.event)
		return m, m.waitForBridge()
	case tickMsg:
		// A tick armed before a pause or reset carries a stale generation
		// and must not advance fresh session state.
		if msg.generation == m.ctrl.Generation() {
			m.ctrl.TimeTick(msg.at)
			m.refreshResults()
		}
		return m, m.scheduleTick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.brd.Disconnect()
		return m, tea.Quit
	case "enter":
		switch m.ctrl.State() {
		case session.StateNotStarted:
			if m.ctrl.Start() {
				m.brd.Connect()
			}
		case session.StatePaused:
			m.ctrl.Resume(time.Now())
		}
		return m, nil
	case "esc":
		m.ctrl.Pause(time.Now())
		return m, nil
	case "ctrl+r":
		m.reset()
		return m, nil
	case "ctrl+l":
		levels := 2
		if len(m.ctrl.Levels()) == 2 {
			levels = 3
		}
		m.ctrl.Regenerate(levels)
		m.lastOutcome = nil
		m.resultsBuilt = false
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) reset() {
	m.ctrl.Reset()
	m.lastOutcome = nil
	m.resultsBuilt = false
}

func (m *Model) handleBridgeEvent(ev bridge.Event) {
	switch ev.Kind {
	case bridge.EventStatus:
		m.status = ev.Status
		m.ctrl.SetConnected(ev.Status == bridge.StatusConnected)
	case bridge.EventTelemetry:
		snaps := telemetry.Decode(ev.Payload)
		m.lastSnaps = snaps
		if outcome := m.ctrl.HandleTelemetry(snaps, time.Now()); outcome != nil {
			m.lastOutcome = outcome
		}
		m.refreshResults()
	}
}

func (m *Model) waitForBridge() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.brd.Events()
		if !ok {
			return nil
		}
		return bridgeMsg{event: ev}
	}
}

func (m *Model) scheduleTick() tea.Cmd {
	generation := m.ctrl.Generation()
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg{generation: generation, at: t}
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.ctrl.State() == session.StateCompleted {
		return m.viewResults()
	}
	content := m.viewDrill()
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) viewDrill() string {
	target, ok := m.ctrl.CurrentTarget()
	if !ok {
		return ""
	}
	lines := []string{
		m.renderStatusLine(),
		"",
		m.renderTargetCard(target),
		"",
		m.renderPressure(target),
		"",
		m.renderPhaseLine(),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderStatusLine() string {
	status := mutedStyle.Render("bridge " + m.status.String())
	state := mutedStyle.Render(m.ctrl.State().String())
	position := accentStyle.Render(fmt.Sprintf("target %d/%d", m.ctrl.Index()+1, len(m.ctrl.Sequence())))
	return strings.Join([]string{status, state, position}, "  ")
}

func (m *Model) renderTargetCard(target model.TargetSpec) string {
	title := cardTitleStyle.Render("hold")
	key := keyStyle.Render(strings.ToUpper(string(target.Key)))
	level := accentStyle.Render(fmt.Sprintf("at %d%%", target.TargetPressure))
	return cardStyle.Render(title + " " + key + " " + level)
}

func (m *Model) renderPressure(target model.TargetSpec) string {
	analog := 0.0
	for _, snap := range m.lastSnaps {
		if snap.KeyCode == target.KeyCode {
			analog = snap.AnalogValue
		}
	}
	width := barWidthFor(m.width)
	bar := renderTargetBar(analog, target.TargetPressure, width)
	label := fmt.Sprintf("%3.0f%%", analog*100)
	return bar + " " + mutedStyle.Render(label)
}

func (m *Model) renderPhaseLine() string {
	now := time.Now()
	switch m.ctrl.Phase() {
	case session.PhaseHolding:
		return accentStyle.Render("holding...")
	case session.PhaseCooldown:
		remaining := m.ctrl.CooldownRemaining(now)
		line := fmt.Sprintf("next target in %.1fs", remaining.Seconds())
		if m.lastOutcome != nil {
			line = m.renderOutcome(*m.lastOutcome) + "  " + mutedStyle.Render(line)
			return line
		}
		return mutedStyle.Render(line)
	default:
		switch m.ctrl.State() {
		case session.StateNotStarted:
			if m.ctrl.Connected() {
				return mutedStyle.Render("press enter to start")
			}
			return mutedStyle.Render("press enter to connect and start")
		case session.StatePaused:
			return mutedStyle.Render("paused - press enter to resume")
		default:
			return mutedStyle.Render("waiting for key contact")
		}
	}
}

func (m *Model) renderOutcome(outcome model.AttemptOutcome) string {
	if outcome.Success {
		return hitStyle.Render(fmt.Sprintf("hit! deviation %.1f", outcome.DeviationPercent))
	}
	return missStyle.Render(fmt.Sprintf("miss (%s) deviation %.1f", outcome.Reason, outcome.DeviationPercent))
}

func (m *Model) renderFooter() string {
	stats := m.ctrl.Stats()
	segments := []string{
		fmt.Sprintf("Attempts %d", stats.TotalAttempts),
		fmt.Sprintf("Accuracy %.1f%%", stats.AccuracyPercent),
		fmt.Sprintf("Avg deviation %.1f", stats.AverageDeviationPercent),
	}
	segments = append(segments, fmt.Sprintf("Levels %s", levelsLabel(m.ctrl.Levels())))
	return footerStyle.Render(strings.Join(segments, "  "))
}

func levelsLabel(levels []int) string {
	parts := make([]string, 0, len(levels))
	for _, level := range levels {
		parts = append(parts, fmt.Sprintf("%d", level))
	}
	return strings.Join(parts, "/")
}

func barWidthFor(totalWidth int) int {
	if totalWidth == 0 {
		return 40
	}
	width := int(float64(totalWidth) * 0.5)
	if width < 10 {
		width = 10
	}
	if width > 60 {
		width = 60
	}
	return width
}
