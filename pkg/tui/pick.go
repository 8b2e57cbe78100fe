// Package tui runs the element picker in a terminal. The arrow keys move the
// hover outline through the tree, Enter picks the hovered element and Escape
// gives up.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kataras/markup-extractor/pkg/dom"
	"github.com/kataras/markup-extractor/pkg/picker"
)

// ErrCancelled is returned by Pick when the user leaves without picking.
var ErrCancelled = errors.New("pick cancelled")

// maxChildren caps the children listed under the hovered element.
const maxChildren = 8

var (
	accent    = lipgloss.Color("#7C3AED")
	secondary = lipgloss.Color("#06B6D4")
	muted     = lipgloss.Color("#6B7280")
	failure   = lipgloss.Color("#EF4444")

	titleStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)
	pathStyle    = lipgloss.NewStyle().Foreground(muted)
	dimStyle     = lipgloss.NewStyle().Foreground(muted)
	errorStyle   = lipgloss.NewStyle().Foreground(failure)
	tooltipStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
)

// Model is the bubbletea model of the picker.
type Model struct {
	hover   lipgloss.Style
	state   picker.State
	tooltip string
	status  string
	err     error
	picked  dom.Node
	done    bool
}

// New returns a model hovering start. highlight colours the hovered
// element; empty uses the default colour.
func New(start dom.Node, highlight string) *Model {
	color := secondary
	if highlight != "" {
		color = lipgloss.Color(highlight)
	}
	m := &Model{hover: lipgloss.NewStyle().Foreground(color).Bold(true)}
	m.send(picker.Init{})
	m.send(picker.Activate{})
	m.send(picker.Hover{Node: start})
	return m
}

// Picked returns the element chosen with Enter, or nil.
func (m *Model) Picked() dom.Node { return m.picked }

// Hovered returns the element under the outline.
func (m *Model) Hovered() dom.Node { return m.state.Hovered }

func (m *Model) Init() tea.Cmd { return nil }

var keys = map[string]string{
	"up":    picker.KeyUp,
	"k":     picker.KeyUp,
	"down":  picker.KeyDown,
	"j":     picker.KeyDown,
	"left":  picker.KeyLeft,
	"h":     picker.KeyLeft,
	"right": picker.KeyRight,
	"l":     picker.KeyRight,
	"enter": picker.KeyEnter,
	"esc":   picker.KeyEscape,
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch s := km.String(); s {
	case "ctrl+c", "q":
		m.send(picker.Deactivate{})
	default:
		k, ok := keys[s]
		if !ok {
			return m, nil
		}
		m.send(picker.Key{Key: k})
		if k == picker.KeyEnter {
			m.send(picker.ExtractSelected{})
		}
	}
	if m.done {
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) send(ev picker.Event) {
	var effects []picker.Effect
	m.state, effects = picker.Reduce(m.state, ev)
	for _, e := range effects {
		switch e := e.(type) {
		case picker.Tooltip:
			m.tooltip = e.Text
		case picker.HideTooltip:
			m.tooltip = ""
		case picker.Notify:
			m.status, m.err = e.Message, e.Err
		case picker.RequestExtraction:
			m.picked = e.Node
			m.done = true
		case picker.Clear:
			m.tooltip = ""
			m.done = true
		}
	}
}

func (m *Model) View() string {
	if m.done {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Pick an element"))
	sb.WriteString("\n\n")

	n := m.state.Hovered
	if n == nil {
		sb.WriteString(dimStyle.Render("nothing hovered"))
		sb.WriteString("\n")
		return sb.String()
	}

	if path := ancestors(n); len(path) > 0 {
		sb.WriteString(pathStyle.Render(strings.Join(path, " > ") + " >"))
		sb.WriteString("\n")
	}
	if m.tooltip != "" {
		sb.WriteString(tooltipStyle.Render(m.hover.Render(m.tooltip)))
		sb.WriteString("\n")
	}

	children, _ := n.Children()
	for i, c := range children {
		if i == maxChildren {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(children)-maxChildren)))
			sb.WriteString("\n")
			break
		}
		sb.WriteString(dimStyle.Render("  " + picker.TooltipText(c)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	switch {
	case m.err != nil:
		sb.WriteString(errorStyle.Render(m.err.Error()))
	case m.status != "":
		sb.WriteString(dimStyle.Render(m.status))
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("arrows/hjkl move  enter pick  esc quit"))
	sb.WriteString("\n")
	return sb.String()
}

// ancestors lists the tooltip text of n's ancestors, outermost first.
func ancestors(n dom.Node) []string {
	var path []string
	for {
		p, err := n.Parent()
		if err != nil || p == nil {
			break
		}
		path = append(path, picker.TooltipText(p))
		n = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Pick runs the picker on in and out starting from start and returns the
// chosen element.
func Pick(ctx context.Context, start dom.Node, highlight string, in io.Reader, out io.Writer) (dom.Node, error) {
	p := tea.NewProgram(New(start, highlight),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}
	m, ok := final.(*Model)
	if !ok || m.Picked() == nil {
		return nil, ErrCancelled
	}
	return m.Picked(), nil
}
