package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/rivergraph/pkg/network"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ChannelListModel - Interactive channel browser
// =============================================================================

// ChannelListModel is the bubbletea model behind "inspect -i". It lists the
// channels of a network and drills into the segments of the selected one.
type ChannelListModel struct {
	Graph    *network.Graph
	Channels []channel
	Cursor   int
	Height   int
	Offset   int

	// Open is the channel whose segments are shown, or nil for the list.
	Open *channel
}

// NewChannelListModel creates a browser over the channels of g.
func NewChannelListModel(g *network.Graph) ChannelListModel {
	return ChannelListModel{
		Graph:    g,
		Channels: channelsOf(g),
		Height:   15,
	}
}

func (m ChannelListModel) Init() tea.Cmd {
	return nil
}

func (m ChannelListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc", "backspace":
			if m.Open == nil {
				return m, tea.Quit
			}
			m.Open = nil
		case "up", "k":
			if m.Open == nil && m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Open == nil && m.Cursor < len(m.Channels)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if m.Open == nil && len(m.Channels) > 0 {
				ch := m.Channels[m.Cursor]
				m.Open = &ch
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m ChannelListModel) View() string {
	if m.Open != nil {
		return m.segmentView(*m.Open)
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Channels"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ segments  q quit"))
	b.WriteString("\n\n")

	if len(m.Channels) == 0 {
		b.WriteString(listDimStyle.Render("  no flow edges"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Channels))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		ch := m.Channels[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor + ch.Name,
			fmt.Sprintf("%d", ch.Segments),
			fmt.Sprintf("%.2f", ch.LengthKm),
		})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("  CHANNEL", "SEGMENTS", "KM").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return listDimStyle.Bold(true)
			case m.Offset+row == m.Cursor:
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Channels))))
	return b.String()
}

func (m ChannelListModel) segmentView(ch channel) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(ch.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d segments · %.2f km   esc back  q quit", ch.Segments, ch.LengthKm)))
	b.WriteString("\n\n")

	var rows [][]string
	for _, e := range m.Graph.EdgesOfType(network.EdgeFlow) {
		if e.Name != ch.Name {
			continue
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.ID),
			e.From,
			e.To,
			fmt.Sprintf("%.2f", e.LengthKm),
		})
	}
	b.WriteString(newTable([]string{"EDGE", "FROM", "TO", "KM"}, rows).Render())
	return b.String()
}
