package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/velsh/presshold/internal/model"
	"github.com/velsh/presshold/internal/session"
	"github.com/velsh/presshold/internal/stats"
)

// refreshResults builds the completion table once the drill finishes.
func (m *Model) refreshResults() {
	if m.ctrl.State() != session.StateCompleted || m.resultsBuilt {
		return
	}
	m.resultsTable = buildResultsTable(m.ctrl.KeyAggregates())
	m.resultsBuilt = true
}

func buildResultsTable(aggs []model.KeyAggregate) table.Model {
	columns := []table.Column{
		{Title: "Key", Width: 5},
		{Title: "Attempts", Width: 9},
		{Title: "Hits", Width: 6},
		{Title: "Avg dev", Width: 8},
	}
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, table.Row{
			strings.ToUpper(string(agg.Key)),
			fmt.Sprintf("%d", agg.Attempts),
			fmt.Sprintf("%d", agg.Hits),
			fmt.Sprintf("%.1f", agg.AverageDeviation()),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)
	return t
}

func (m *Model) viewResults() string {
	totals := m.ctrl.Stats()
	title := keyStyle.Render("Drill complete")
	summary := fmt.Sprintf("Accuracy %.1f%%  Avg deviation %.1f  (%d/%d hits)",
		totals.AccuracyPercent,
		totals.AverageDeviationPercent,
		totals.SuccessfulHits,
		totals.TotalAttempts,
	)
	spark := stats.Sparkline(m.ctrl.Deviations())
	lines := []string{
		title,
		"",
		hitStyle.Render(summary),
		"",
		m.resultsTable.View(),
	}
	if spark != "" {
		lines = append(lines, "", mutedStyle.Render("deviation "+spark))
	}
	lines = append(lines, "", footerStyle.Render("ctrl+r new drill  ctrl+l switch levels  ctrl+c quit"))
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
