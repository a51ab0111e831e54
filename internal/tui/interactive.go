package tui

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/dsmcdb/internal/config"
	"github.com/san-kum/dsmcdb/internal/experiment"
	"github.com/san-kum/dsmcdb/internal/sim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

const historyLen = 60

// Loader turns a preset into a ready experiment.
type Loader func(gas, preset string) (*experiment.Experiment, error)

// Entry is one selectable preset.
type Entry struct {
	Gas    string
	Preset string
}

func (e Entry) String() string { return e.Gas + "/" + e.Preset }

// PresetEntries lists every built-in preset, grouped by gas.
func PresetEntries() []Entry {
	var out []Entry
	for _, gas := range config.Gases() {
		for _, p := range config.ListPresets(gas) {
			out = append(out, Entry{Gas: gas, Preset: p})
		}
	}
	return out
}

type state int

const (
	stateMenu state = iota
	stateSim
)

type model struct {
	state   state
	cursor  int
	entries []Entry
	load    Loader

	exp     *experiment.Experiment
	cell    *sim.Cell
	names   []string
	seed    int64
	step    int
	snap    sim.Snapshot
	total0  float64
	history [][]float64

	running   bool
	paused    bool
	speed     int // steps per tick
	lastFrame time.Time
	fps       float64
	err       error

	width  int
	height int
}

func NewInteractiveApp(entries []Entry, load Loader) *model {
	return &model{
		state:   stateMenu,
		entries: entries,
		load:    load,
		speed:   1,
		width:   80,
		height:  24,
	}
}

// NewWatchApp skips the menu and runs exp directly.
func NewWatchApp(exp *experiment.Experiment) *model {
	m := NewInteractiveApp(nil, nil)
	m.exp = exp
	m.seed = exp.Config().Seed
	m.state = stateSim
	m.start()
	return m
}

func (m model) Init() tea.Cmd {
	if m.state == stateSim {
		return tick()
	}
	return nil
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateSim {
			return m, nil
		}
		if m.running && !m.paused && m.cell != nil {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			for i := 0; i < m.speed && !m.paused; i++ {
				m.advance()
			}
		}
		if m.running {
			return m, tick()
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.entries) == 0 || m.load == nil {
			return m, nil
		}
		e := m.entries[m.cursor]
		exp, err := m.load(e.Gas, e.Preset)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.exp = exp
		m.seed = exp.Config().Seed
		m.state = stateSim
		m.start()
		return m, tea.Batch(tea.ClearScreen, tick())
	}
	return m, nil
}

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		if m.load == nil {
			return m, tea.Quit
		}
		m.running = false
		m.state = stateMenu
		m.reset()
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "r":
		m.seed++
		m.start()
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = min(m.speed*2, 64)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	case "0":
		m.speed = 1
	}
	return m, nil
}

func (m *model) start() {
	m.reset()
	cell, err := m.exp.NewCell(rand.New(rand.NewSource(m.seed)))
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.cell = cell
	m.names = m.exp.SpeciesNames()
	m.history = make([][]float64, len(m.names))
	m.snap = cell.Snapshot(0, 0)
	m.total0 = m.snap.Total()
	m.record()
	m.running = true
	m.paused = false
	m.speed = 1
}

func (m *model) reset() {
	m.cell = nil
	m.names = nil
	m.history = nil
	m.step = 0
	m.lastFrame = time.Time{}
	m.err = nil
}

func (m *model) advance() {
	cfg := m.exp.Config()
	if m.step >= cfg.Steps {
		m.paused = true
		return
	}
	accepted, err := m.cell.Step(cfg.PairsPerStep)
	if err != nil {
		m.err = err
		m.paused = true
		return
	}
	m.step++
	m.snap = m.cell.Snapshot(m.step, accepted)
	m.record()
}

func (m *model) record() {
	for i := range m.history {
		if i < len(m.snap.Species) {
			m.history[i] = append(m.history[i], m.snap.Species[i])
		}
		if len(m.history[i]) > historyLen {
			m.history[i] = m.history[i][1:]
		}
	}
}

func (m model) drift() float64 {
	if m.total0 == 0 {
		return 0
	}
	return math.Abs(m.snap.Total()-m.total0) / m.total0
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateSim:
		return m.viewSim()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("            " + cyan.Render("d s m c d b") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, e := range m.entries {
		cfg := config.GetPreset(e.Gas, e.Preset)
		desc := ""
		if cfg != nil {
			desc = fmt.Sprintf("%d steps  %s", cfg.Steps, populationSummary(cfg.Population))
		}
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-18s", e)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-18s", e)) + dimmer.Render(desc) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter start   q quit") + "\n")

	return b.String()
}

func populationSummary(pops []config.PopulationConfig) string {
	parts := make([]string, len(pops))
	for i, p := range pops {
		parts[i] = fmt.Sprintf("%d %s@%gK", p.Count, p.Species, p.Temperature)
	}
	return strings.Join(parts, " ")
}

func (m model) viewSim() string {
	var b strings.Builder
	if m.exp == nil {
		return ""
	}
	cfg := m.exp.Config()

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	switch {
	case m.err != nil:
		statusIcon = red.Render("✕")
		statusText = red.Render("error")
	case m.paused:
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n",
		statusIcon, cyan.Render(cfg.Database), statusText, dim.Render(fmt.Sprintf("seed %d  x%d", m.seed, m.speed))))

	progress := float64(m.step) / float64(cfg.Steps)
	barWidth := 36
	filled := int(math.Min(progress, 1) * float64(barWidth))
	stepStr := fmt.Sprintf("%d/%d", m.step, cfg.Steps)
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n", bar, dim.Render(stepStr), dim.Render(fmt.Sprintf("%.0ffps", m.fps))))

	maxT := m.snap.Temperature
	for _, t := range m.snap.Species {
		maxT = math.Max(maxT, t)
	}
	tempWidth := 24
	for i, name := range m.names {
		t := 0.0
		if i < len(m.snap.Species) {
			t = m.snap.Species[i]
		}
		n := 0
		if maxT > 0 {
			n = int(t / maxT * float64(tempWidth))
		}
		b.WriteString(fmt.Sprintf("   %s %s%s %s  %s\n",
			white.Render(fmt.Sprintf("%-6s", name)),
			magenta.Render(strings.Repeat("█", n)),
			dimmer.Render(strings.Repeat("░", tempWidth-n)),
			dim.Render(fmt.Sprintf("%9.1fK", t)),
			cyan.Render(sparkline(m.history[i], 24))))
	}
	b.WriteString(fmt.Sprintf("   %s %s\n\n", dim.Render(fmt.Sprintf("%-6s", "all")), white.Render(fmt.Sprintf("%.1fK", m.snap.Temperature))))

	if m.cell != nil {
		c := m.cell.Counters()
		b.WriteString(fmt.Sprintf("   %s %s  %s %s  %s %s\n",
			dim.Render("trials"), white.Render(fmt.Sprint(c.Trials)),
			dim.Render("accepted"), green.Render(fmt.Sprint(c.Accepted)),
			dim.Render("rate"), white.Render(fmt.Sprintf("%.3f", c.AcceptanceRate()))))
		b.WriteString(fmt.Sprintf("   %s %s  %s %s  %s %s\n",
			dim.Render("particles"), white.Render(fmt.Sprint(m.snap.Particles)),
			dim.Render("domain"), yellow.Render(fmt.Sprint(c.DomainErrors)),
			dim.Render("below threshold"), yellow.Render(fmt.Sprint(c.BelowThreshold))))
	}
	b.WriteString(fmt.Sprintf("   %s %s  %s %s\n",
		dim.Render("absorbed"), white.Render(fmt.Sprintf("%.3e J", m.snap.Absorbed)),
		dim.Render("energy drift"), white.Render(fmt.Sprintf("%.2e", m.drift()))))

	if m.err != nil {
		b.WriteString("\n   " + red.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dim.Render("   space pause  ±speed  r reseed  q back") + "\n")

	return b.String()
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		sb.WriteRune(chars[max(0, min(idx, 7))])
	}
	return sb.String()
}

func RunInteractive(load Loader) error {
	p := tea.NewProgram(NewInteractiveApp(PresetEntries(), load), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func RunWatch(exp *experiment.Experiment) error {
	p := tea.NewProgram(NewWatchApp(exp), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
