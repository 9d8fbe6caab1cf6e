package view

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/formula"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/shu"
)

var paletteOperators = []string{"+", "-", "*", "/", "(", ")"}

type formulaTarget int

const (
	targetSHU formulaTarget = iota
	targetTHR
)

func (t formulaTarget) String() string {
	if t == targetTHR {
		return "THR"
	}
	return "SHU"
}

// FormulaModel edits the SHU and THR formulas with live validation against
// the sample variables.
type FormulaModel struct {
	CommonModel
	shuService *shu.Service

	input      textinput.Model
	target     formulaTarget
	draft      shu.Settings
	sample     map[string]float64
	palette    []string
	paletteIdx int

	validation formula.Validation
	preview    *shu.PreviewResult

	loading bool
	status  string
	err     error
}

func NewFormulaModel(shuSvc *shu.Service) FormulaModel {
	ti := textinput.New()
	ti.Placeholder = "simpanan_wajib * 0.05"
	ti.Width = 70
	ti.CharLimit = formula.MaxLength
	ti.Focus()

	return FormulaModel{
		shuService: shuSvc,
		input:      ti,
		loading:    true,
	}
}

func (m FormulaModel) Title() string { return "Formula Playground" }
func (m FormulaModel) ShortHelp() string {
	return "Esc: back | ↑/↓: pick | Tab: insert | Ctrl+T: SHU/THR | Ctrl+P: preview | Ctrl+S: save"
}

func (m FormulaModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadSettingsCmd())
}

func (m FormulaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.draft = *msg.settings
		m.sample = shu.SampleVariables(m.draft.CustomVariables)
		m.palette = append(slices.Sorted(maps.Keys(m.sample)), paletteOperators...)
		m.loadTarget()
		return m, nil

	case previewMsg:
		m.loading = false
		if msg.err != nil {
			m.status = formula.Message(msg.err)
			return m, nil
		}
		m.preview = msg.result
		m.status = ""
		return m, nil

	case saveSettingsMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		} else {
			m.status = "Settings saved"
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "up":
			if m.paletteIdx > 0 {
				m.paletteIdx--
			}
			return m, nil
		case "down":
			if m.paletteIdx < len(m.palette)-1 {
				m.paletteIdx++
			}
			return m, nil
		case "tab":
			m.insertSelected()
			return m, nil
		case "ctrl+t":
			m.storeTarget()
			m.target = (m.target + 1) % 2
			m.loadTarget()
			return m, nil
		case "ctrl+p":
			m.storeTarget()
			m.loading = true
			return m, m.previewCmd()
		case "ctrl+s":
			m.storeTarget()
			return m, m.saveCmd()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.revalidate()

	return m, cmd
}

func (m *FormulaModel) insertSelected() {
	if m.paletteIdx >= len(m.palette) {
		return
	}

	item := m.palette[m.paletteIdx]

	var (
		text   string
		cursor int
	)
	if slices.Contains(paletteOperators, item) {
		text, cursor = formula.InsertOperator(m.input.Value(), m.input.Position(), item)
	} else {
		text, cursor = formula.InsertVariable(m.input.Value(), m.input.Position(), item)
	}

	m.input.SetValue(text)
	m.input.SetCursor(cursor)
	m.revalidate()
}

func (m *FormulaModel) loadTarget() {
	if m.target == targetTHR {
		m.input.SetValue(m.draft.THRFormula)
	} else {
		m.input.SetValue(m.draft.Formula)
	}
	m.input.CursorEnd()
	m.revalidate()
}

func (m *FormulaModel) storeTarget() {
	if m.target == targetTHR {
		m.draft.THRFormula = m.input.Value()
	} else {
		m.draft.Formula = m.input.Value()
	}
}

func (m *FormulaModel) revalidate() {
	if m.target == targetTHR && strings.TrimSpace(m.input.Value()) == "" {
		// THR is optional.
		m.validation = formula.Validation{Valid: true}
		return
	}

	m.validation = formula.Validate(m.input.Value(), m.sample)
}

func (m FormulaModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.loading && m.palette == nil {
		return lipgloss.NewStyle().Padding(2).Render("Loading settings...")
	}

	var result string
	if m.validation.Valid {
		result = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).
			Render(fmt.Sprintf("✓ sample result: %.2f", m.validation.Result))
	} else {
		result = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗ " + m.validation.Message)
	}

	editor := fmt.Sprintf("Formula %s\n\n%s\n\n%s", activeStyle(m.target.String()), m.input.View(), result)

	var palette strings.Builder
	for i, item := range m.palette {
		line := item
		if v, ok := m.sample[item]; ok {
			line = fmt.Sprintf("%-20s %12.0f", item, v)
		}

		if i == m.paletteIdx {
			line = activeStyle("> " + line)
		} else {
			line = "  " + line
		}

		palette.WriteString(line + "\n")
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(76).Render(editor),
		boxed(palette.String()),
	)

	if m.preview != nil {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.previewView())
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	help := lipgloss.NewStyle().Faint(true).Render(m.ShortHelp())

	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + help)
}

func (m FormulaModel) previewView() string {
	var b strings.Builder

	b.WriteString("Preview\n\n")

	for _, s := range m.preview.Samples {
		if s.Error != "" {
			fmt.Fprintf(&b, "%-24s %s\n", s.Nama, s.Error)
			continue
		}

		fmt.Fprintf(&b, "%-24s SHU %14.2f   THR %14.2f\n", s.Nama, s.SHU, s.THR)
	}

	fmt.Fprintf(&b, "\nTotal SHU %.2f | Rata-rata %.2f | Total THR %.2f",
		m.preview.TotalSHU, m.preview.AverageSHU, m.preview.TotalTHR)

	return lipgloss.NewStyle().PaddingTop(1).Render(b.String())
}

// Messages

type settingsMsg struct {
	settings *shu.Settings
	err      error
}

func (m FormulaModel) loadSettingsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		settings, err := m.shuService.Settings(ctx)
		return settingsMsg{settings: settings, err: err}
	}
}

type previewMsg struct {
	result *shu.PreviewResult
	err    error
}

func (m FormulaModel) previewCmd() tea.Cmd {
	draft := m.draft

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		result, err := m.shuService.Preview(ctx, &draft)
		return previewMsg{result: result, err: err}
	}
}

type saveSettingsMsg struct {
	err error
}

func (m FormulaModel) saveCmd() tea.Cmd {
	draft := m.draft

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return saveSettingsMsg{err: m.shuService.SaveSettings(ctx, &draft)}
	}
}
