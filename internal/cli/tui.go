package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/knotmap/knotmap/pkg/graph"
	"github.com/knotmap/knotmap/pkg/metrics"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RankListModel - Interactive importance ranking browser
// =============================================================================

// RankListModel is the bubbletea model for browsing the importance ranking.
type RankListModel struct {
	Graph   *graph.Graph
	Records []metrics.Record
	Cursor  int
	Height  int
	Offset  int
}

// NewRankListModel creates a new ranking browser over the sorted records.
func NewRankListModel(g *graph.Graph, records []metrics.Record) RankListModel {
	return RankListModel{
		Graph:   g,
		Records: records,
		Cursor:  0,
		Height:  15,
		Offset:  0,
	}
}

func (m RankListModel) Init() tea.Cmd {
	return nil
}

func (m RankListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Records)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "g":
			m.Cursor = 0
			m.Offset = 0
		case "G":
			m.Cursor = len(m.Records) - 1
			m.Offset = m.Cursor - m.Height + 1
			if m.Offset < 0 {
				m.Offset = 0
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m RankListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Node Importance"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G top/bottom  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Records) {
		end = len(m.Records)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		rec := m.Records[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		name := rec.NodeID
		level := "—"
		if n, ok := m.Graph.Node(rec.NodeID); ok {
			name = n.DisplayName()
			level = fmt.Sprintf("%d", n.Level)
		}

		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", i+1),
			name,
			level,
			fmt.Sprintf("%.4f", rec.CompositeImportance),
			fmt.Sprintf("%.4f", rec.PageRank),
			fmt.Sprintf("%d", rec.DescendantCount),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Node", "Lvl", "Score", "PageRank", "Desc").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actualIdx := m.Offset + row
			if actualIdx == m.Cursor {
				return listSelectedStyle
			}
			if col == 4 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(m.detailLine())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Records))))

	return b.String()
}

// detailLine shows the full metric breakdown for the selected node.
func (m RankListModel) detailLine() string {
	if m.Cursor >= len(m.Records) {
		return ""
	}
	rec := m.Records[m.Cursor]
	return fmt.Sprintf("  %s  pagerank %s  betweenness %s  descendants %s  entities %s",
		StyleValue.Render(rec.NodeID),
		StyleNumber.Render(fmt.Sprintf("%.4f", rec.PageRank)),
		StyleNumber.Render(fmt.Sprintf("%.4f", rec.Betweenness)),
		StyleNumber.Render(fmt.Sprintf("%d", rec.DescendantCount)),
		StyleNumber.Render(fmt.Sprintf("%d", rec.EntityCount)))
}
