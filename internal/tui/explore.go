// Package tui is the interactive explore view: pick a temperament,
// then cycle through norms, optimizers and enforcements while the
// tuning re-solves on every change.
package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tuneforge/regtemp/internal/config"
	"github.com/tuneforge/regtemp/internal/interval"
	"github.com/tuneforge/regtemp/internal/norm"
	"github.com/tuneforge/regtemp/internal/report"
	"github.com/tuneforge/regtemp/internal/spectrum"
	"github.com/tuneforge/regtemp/internal/temperament"
	"github.com/tuneforge/regtemp/internal/tuner"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

// spectrumLimit is the odd limit enumerated for the spectrum pane.
const spectrumLimit = 9

type state int

const (
	statePicker state = iota
	stateView
)

type model struct {
	state  state
	cursor int
	names  []string
	info   map[string]string

	name string
	cfg  *config.Config

	tp       *temperament.Temperament
	res      *tuner.Result
	meas     *temperament.Measures
	entries  []spectrum.Entry
	solveErr error

	width  int
	height int
}

// NewExplore builds the explore view over the built-in presets.
func NewExplore() *model {
	names := config.ListTemperaments()
	info := make(map[string]string, len(names))
	for _, name := range names {
		if cfg := config.GetPreset(name, "te"); cfg != nil {
			info[name] = cfg.Subgroup
		}
	}
	return &model{
		state:  statePicker,
		names:  names,
		info:   info,
		width:  80,
		height: 24,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case statePicker:
		return m.pickerKey(msg)
	case stateView:
		return m.viewKey(msg)
	}
	return m, nil
}

func (m model) pickerKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.name = m.names[m.cursor]
		m.cfg = config.GetPreset(m.name, "te")
		m.solve()
		m.state = stateView
		return m, tea.ClearScreen
	}
	return m, nil
}

func (m model) viewKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "escape":
		m.state = statePicker
		return m, tea.ClearScreen
	case "w":
		m.cfg.Weighting = nextIn(m.cfg.Weighting, []string{"tenney", "wilson", "equilateral"})
	case "a":
		switch m.cfg.WeightAmount {
		case 0, 1:
			m.cfg.WeightAmount = 0.5
		case 0.5:
			m.cfg.WeightAmount = 2
		default:
			m.cfg.WeightAmount = 1
		}
	case "s":
		if m.cfg.Skew == 0 {
			m.cfg.Skew = 1
		} else {
			m.cfg.Skew = 0
		}
	case "o":
		switch {
		case m.cfg.Order == 1:
			m.cfg.Order = math.Inf(1)
		case math.IsInf(m.cfg.Order, 1):
			m.cfg.Order = 2
		default:
			m.cfg.Order = 1
		}
	case "p":
		m.cfg.Optimizer = nextIn(m.cfg.Optimizer, []string{"numeric", "symbolic"})
	case "e":
		m.cfg.Enforce = nextIn(m.cfg.Enforce, []string{"", "c1", "d1"})
	case "n":
		m.cfg.NType = nextIn(m.cfg.NType, []string{"breed", "smith", "none"})
	default:
		return m, nil
	}
	m.solve()
	return m, nil
}

// nextIn steps to the option after cur, treating anything unknown as
// the first option.
func nextIn(cur string, options []string) string {
	for i, opt := range options {
		if opt == cur {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

// solve rebuilds the temperament and every pane from the current
// config. Skew conflicts and rank problems land in solveErr and render
// instead of the tuning.
func (m *model) solve() {
	m.tp, m.res, m.meas, m.entries = nil, nil, nil, nil
	m.solveErr = nil

	tp, err := m.cfg.Temperament(temperament.Options{})
	if err != nil {
		m.solveErr = err
		return
	}
	m.tp = tp

	p := m.cfg.Profile()
	if err := validateProfile(p); err != nil {
		m.solveErr = err
		return
	}

	res, err := tp.Tune(m.cfg.TuneOptions())
	if err != nil {
		m.solveErr = err
		return
	}
	m.res = res

	if rp, _ := p.Resolve(); rp.Order != 2 {
		return
	}
	if meas, err := tp.Measures(temperament.NType(m.cfg.NType), p); err == nil {
		m.meas = meas
	}
	ratios := spectrum.OddLimit(spectrumLimit, nil)
	monzos, _, err := spectrum.Monzos(ratios, tp.Subgroup())
	if err != nil {
		return
	}
	if entries, err := spectrum.Complexity(tp, monzos, p, true); err == nil {
		m.entries = entries
	}
}

func validateProfile(p norm.Profile) error {
	p, _ = p.Resolve()
	return p.Validate()
}

func (m model) View() string {
	switch m.state {
	case statePicker:
		return m.viewPicker()
	case stateView:
		return m.viewTuning()
	}
	return ""
}

func (m model) viewPicker() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("r e g t e m p") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.names {
		desc := m.info[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-12s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-12s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter explore   q quit") + "\n")

	return b.String()
}

func (m model) viewTuning() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(m.name) + "  " + dim.Render(m.cfg.Subgroup) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 40)) + "\n\n")

	for i, row := range m.cfg.Mapping {
		label := "mapping"
		if i > 0 {
			label = ""
		}
		b.WriteString("      " + dim.Render(fmt.Sprintf("%-12s", label)) + white.Render(report.Val(row)) + "\n")
	}
	b.WriteString("      " + dim.Render(fmt.Sprintf("%-12s", "norm")) + magenta.Render(report.Norm(m.cfg.Profile())) + "\n")
	if m.tp != nil {
		b.WriteString("      " + dim.Render(fmt.Sprintf("%-12s", "enforcement")) + white.Render(report.Enforce(m.cfg.Enforce, m.tp.Subgroup())) + "\n")
	}
	b.WriteString("      " + dim.Render(fmt.Sprintf("%-12s", "optimizer")) + white.Render(m.cfg.Optimizer) + "\n")
	b.WriteString("      " + dim.Render(fmt.Sprintf("%-12s", "normalizer")) + white.Render(m.cfg.NType) + "\n")
	b.WriteString("\n")

	if m.solveErr != nil {
		b.WriteString("      " + yellow.Render(m.solveErr.Error()) + "\n\n")
		b.WriteString(m.keybar())
		return b.String()
	}

	if m.res != nil {
		b.WriteString("      " + dim.Render(fmt.Sprintf("%-12s", "generators")) + cyan.Render(report.CentsVector(m.res.Gen)) + dim.Render(" (¢)") + "\n")
		b.WriteString("      " + dim.Render(fmt.Sprintf("%-12s", "tuning map")) + white.Render(report.CentsVector(m.res.TuningMap)) + dim.Render(" (¢)") + "\n")
		b.WriteString("      " + dim.Render(fmt.Sprintf("%-12s", "error map")) + white.Render(report.CentsVector(m.res.ErrorMap)) + dim.Render(" (¢)") + "\n")
		b.WriteString("      " + dim.Render(fmt.Sprintf("%-12s", "error")) + magenta.Render(fmt.Sprintf("%.6f", m.res.Error)) + dim.Render(" (¢)") +
			dim.Render("   bias ") + white.Render(fmt.Sprintf("%.6f", m.res.Bias)) + dim.Render(" (¢)") + "\n")
		for _, w := range m.res.Warnings {
			b.WriteString("      " + yellow.Render(w) + "\n")
		}
		b.WriteString("\n")
	}

	if m.meas != nil {
		b.WriteString("      " + dim.Render(fmt.Sprintf("%-12s", "complexity")) + white.Render(fmt.Sprintf("%.6f", m.meas.Complexity)) +
			dim.Render("   badness ") + white.Render(fmt.Sprintf("%.6f", m.meas.Badness*1000)) + dim.Render(" (oct/1000)") + "\n\n")
	}

	if len(m.entries) > 0 {
		b.WriteString("      " + dim.Render(fmt.Sprintf("%d-odd-limit spectrum", spectrumLimit)) + "\n")
		head := m.entries
		if len(head) > 8 {
			head = head[:8]
		}
		basis := m.tp.Subgroup().Ratios()
		for _, e := range head {
			ratio := report.Ratio(interval.Value(e.Monzo, basis))
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-8s", ratio)) + white.Render(fmt.Sprintf("%.4f", e.Norm)) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.keybar())
	return b.String()
}

func (m model) keybar() string {
	return dim.Render("      w weighting  a amount  s skew  o order  p optimizer  e enforce  n normalizer  esc back") + "\n"
}

// RunExplore runs the explore view until the user quits.
func RunExplore() error {
	p := tea.NewProgram(NewExplore(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
