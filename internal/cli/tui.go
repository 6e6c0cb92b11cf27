package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plateworks/tavola/pkg/errors"
	"github.com/plateworks/tavola/pkg/render"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// formatDescriptions explains each output format in the picker.
var formatDescriptions = map[string]string{
	string(render.FormatSVG):  "one vector file per plate, editable",
	string(render.FormatPDF):  "single print-ready document",
	string(render.FormatPNG):  "one lossless raster per plate",
	string(render.FormatJPEG): "one compressed raster per plate",
	string(render.FormatJSON): "plate geometry for re-rendering",
}

// =============================================================================
// FormatPickerModel - Interactive output format selection
// =============================================================================

// FormatPickerModel is the bubbletea model for picking output formats.
// Space toggles a format, enter confirms the selection.
type FormatPickerModel struct {
	Formats   []string
	Cursor    int
	Checked   map[int]bool
	Confirmed bool
}

// NewFormatPickerModel creates a picker over all supported formats, with the
// given formats pre-selected.
func NewFormatPickerModel(preselected []string) FormatPickerModel {
	formats := make([]string, 0, len(render.ValidFormats))
	for f := range render.ValidFormats {
		formats = append(formats, string(f))
	}
	sort.Strings(formats)

	checked := make(map[int]bool)
	for i, f := range formats {
		for _, p := range preselected {
			if p == f {
				checked[i] = true
			}
		}
	}
	return FormatPickerModel{Formats: formats, Checked: checked}
}

func (m FormatPickerModel) Init() tea.Cmd {
	return nil
}

func (m FormatPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Formats)-1 {
				m.Cursor++
			}
		case " ":
			m.Checked[m.Cursor] = !m.Checked[m.Cursor]
		case "enter":
			if len(m.Selected()) == 0 {
				return m, nil
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m FormatPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Output Formats"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	for i, f := range m.Formats {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		mark := "[ ]"
		if m.Checked[i] {
			mark = "[" + StyleSuccess.Render("x") + "]"
		}

		line := fmt.Sprintf("%s%s %-5s  %s", cursor, mark, f, listDimStyle.Render(formatDescriptions[f]))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else if m.Checked[i] {
			b.WriteString(listNormalStyle.Render(line))
		} else {
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d selected", len(m.Selected()))))

	return b.String()
}

// Selected returns the checked formats in display order.
func (m FormatPickerModel) Selected() []string {
	var out []string
	for i, f := range m.Formats {
		if m.Checked[i] {
			out = append(out, f)
		}
	}
	return out
}

// pickFormats runs the interactive picker and returns the confirmed formats.
func pickFormats(preselected []string) ([]string, error) {
	model := NewFormatPickerModel(preselected)
	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("format picker: %w", err)
	}
	picked, ok := final.(FormatPickerModel)
	if !ok || !picked.Confirmed {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no output formats selected")
	}
	return picked.Selected(), nil
}
