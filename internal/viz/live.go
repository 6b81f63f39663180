// Package viz renders a live terminal view of the simulation: one Z-slice
// of a selected channel, a stats sidebar, and an energy history graph.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fieldlab/internal/field"
	"github.com/san-kum/fieldlab/internal/sim"
)

const (
	frameInterval   = 33 * time.Millisecond
	historyCapacity = 240
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	sliceStyle  = lipgloss.NewStyle().Padding(0, 1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

var intensityRamp = []rune(" .:-=+*#%@")

var channelNames = []string{"electron", "higgs", "photon", "coherence", "phi"}

type TickMsg time.Time

// Model drives the engine from the bubbletea event loop.
type Model struct {
	engine  *sim.Engine
	paused  bool
	channel int
	sliceZ  int
	preset  int

	lastFrame     time.Time
	energyHistory []float64
}

func NewModel(engine *sim.Engine) Model {
	return Model{
		engine:    engine,
		sliceZ:    engine.Lattice().N / 2,
		lastFrame: time.Now(),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tickCmd() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		now := time.Time(msg)
		elapsed := now.Sub(m.lastFrame).Seconds()
		m.lastFrame = now
		if !m.paused {
			m.engine.Frame(elapsed)
			m.energyHistory = append(m.energyHistory, m.engine.Grid().MeanKineticEnergy())
			if len(m.energyHistory) > historyCapacity {
				m.energyHistory = m.energyHistory[len(m.energyHistory)-historyCapacity:]
			}
		}
		return m, tickCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "tab":
			m.channel = (m.channel + 1) % len(channelNames)
		case "[":
			m.sliceZ = m.engine.Lattice().Wrap(m.sliceZ - 1)
		case "]":
			m.sliceZ = m.engine.Lattice().Wrap(m.sliceZ + 1)
		case "p":
			names := field.PresetNames()
			m.preset = (m.preset + 1) % len(names)
			if err := m.engine.ApplyPreset(names[m.preset]); err == nil {
				m.energyHistory = m.energyHistory[:0]
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("fieldlab — coupled field substrate"))
	b.WriteString("\n")

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		sliceStyle.Render(m.renderSlice()),
		statsStyle.Render(m.renderStats()),
	)
	b.WriteString(row)

	if len(m.energyHistory) > 2 {
		graph := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(6),
			asciigraph.Caption("mean kinetic energy"))
		b.WriteString("\n")
		b.WriteString(graphStyle.Render(graph))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space pause · tab channel · [/] slice · p preset · q quit"))
	return b.String()
}

func (m Model) channelData() ([]float64, float64, float64) {
	g := m.engine.Grid()
	switch channelNames[m.channel] {
	case "higgs":
		return g.Higgs, field.AmpMin, field.AmpMax
	case "photon":
		return g.Photon, -1.5, 1.5
	case "coherence":
		return g.Coherence, 0, 1
	case "phi":
		return g.Phi, 0, 1
	default:
		return g.Electron, -1.5, 1.5
	}
}

func (m Model) renderSlice() string {
	lat := m.engine.Lattice()
	data, lo, hi := m.channelData()

	var b strings.Builder
	for y := lat.N - 1; y >= 0; y-- {
		for x := 0; x < lat.N; x++ {
			v := data[lat.Index(x, y, m.sliceZ)]
			t := (v - lo) / (hi - lo)
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			r := intensityRamp[int(t*float64(len(intensityRamp)-1))]
			b.WriteRune(r)
			b.WriteRune(r)
		}
		b.WriteRune('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderStats() string {
	g := m.engine.Grid()
	pool := m.engine.Pool()

	line := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	state := "running"
	if m.paused {
		state = "paused"
	}

	rows := []string{
		line("state", state),
		line("channel", channelNames[m.channel]),
		line("slice z", fmt.Sprintf("%d", m.sliceZ)),
		line("tick", fmt.Sprintf("%d", m.engine.Tick())),
		line("sim time", fmt.Sprintf("%.2fs", m.engine.Now())),
		line("energy", fmt.Sprintf("%.5f", g.MeanKineticEnergy())),
		line("coherence", fmt.Sprintf("%.3f", g.Coherence.Mean())),
		line("phi", fmt.Sprintf("%.3f", g.Phi.Mean())),
		line("particles", fmt.Sprintf("%d/%d", pool.ActiveCount(), pool.Capacity())),
	}
	return strings.Join(rows, "\n")
}
