package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
	"github.com/san-kum/threebody/internal/trail"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	panelWidth    = 40
	energyPoints  = 300
)

// Options configure the live view. Zero values take the defaults from
// config.Settings.
type Options struct {
	Name          string
	FPS           int
	StepsPerFrame int
	TrailCapacity int
	Zoom          float64
	Background    string
	Colors        [dynamo.NumBodies]config.RGB
}

type TickMsg time.Time

// Model is the bubbletea live view. The driver owns the simulation; the
// model owns the trails and everything on screen.
type Model struct {
	driver  *sim.Driver
	updates *sim.Updates
	logger  zerolog.Logger
	opts    Options

	history *trail.History
	energy  *trail.Ring[float64]
	canvas  *Canvas

	colors     [dynamo.NumBodies]config.RGB
	background int
	running    bool
	showAxes   bool
	hidePanels bool
	showAbout  bool
	prompt     *prompt
	message    string
	failed     bool
	halted     error

	width, height int
}

// NewModel builds the live view over driver. Edits are queued on updates,
// which must be the queue the driver drains.
func NewModel(driver *sim.Driver, updates *sim.Updates, opts Options, logger zerolog.Logger) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = 1
	}
	if opts.TrailCapacity <= 0 {
		opts.TrailCapacity = trail.DefaultCapacity
	}
	if opts.Zoom <= 0 {
		opts.Zoom = 1
	}
	bg := config.BackgroundIndex(opts.Background)
	if bg < 0 {
		bg = 0
	}

	m := Model{
		driver:     driver,
		updates:    updates,
		logger:     logger,
		opts:       opts,
		history:    trail.NewHistory(opts.TrailCapacity),
		energy:     trail.NewRing[float64](energyPoints),
		colors:     opts.Colors,
		background: bg,
		running:    true,
		width:      defaultWidth + panelWidth,
		height:     defaultHeight,
	}
	m.resize()
	m.record()
	return m
}

// Run starts the live view in the alternate screen and blocks until quit.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
	case tea.KeyMsg:
		if m.prompt != nil {
			m.promptKey(msg)
			return m, nil
		}
		return m.key(msg)
	case TickMsg:
		m.advance()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return *m, tea.Quit
	case " ", "space":
		m.running = !m.running
	case "r":
		m.send(sim.ResetUpdate())
	case "m":
		m.open(promptMasses)
	case "d":
		m.open(promptStepSize)
	case "i":
		m.open(promptInitial)
	case "c":
		m.open(promptColors)
	case "b":
		m.background = (m.background + 1) % len(config.Backgrounds)
	case "s":
		m.showAxes = !m.showAxes
	case "h":
		m.hidePanels = !m.hidePanels
		m.resize()
	case "a":
		m.showAbout = !m.showAbout
	case "+", "=":
		m.opts.Zoom = math.Min(20, m.opts.Zoom*1.25)
	case "-", "_":
		m.opts.Zoom = math.Max(0.05, m.opts.Zoom/1.25)
	}
	return *m, nil
}

func (m *Model) open(kind promptKind) {
	m.prompt = newPrompt(kind, m.driver.Initial(), m.colors)
	m.message = ""
}

func (m *Model) promptKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		m.submit()
	case tea.KeyEsc, tea.KeyCtrlC:
		m.prompt = nil
	case tea.KeyBackspace:
		m.prompt.backspace()
	case tea.KeySpace:
		m.prompt.insert(" ")
	case tea.KeyRunes:
		m.prompt.insert(string(msg.Runes))
	}
}

// submit closes the prompt if its value is accepted. A rejected value keeps
// the prompt open with the error shown.
func (m *Model) submit() {
	p := m.prompt
	if p.kind == promptColors {
		colors, err := p.colors()
		if err != nil {
			m.fail(err)
			return
		}
		m.colors = colors
		m.prompt = nil
		m.note("colours updated")
		return
	}

	u, err := p.update()
	if err != nil {
		m.fail(err)
		return
	}
	if m.send(u) {
		m.prompt = nil
	}
}

func (m *Model) send(u sim.Update) bool {
	if err := m.updates.Send(u); err != nil {
		m.fail(err)
		return false
	}
	m.note(u.Kind.String() + " queued")
	return true
}

func (m *Model) note(s string) {
	m.message, m.failed = s, false
}

func (m *Model) fail(err error) {
	m.logger.Warn().Err(err).Msg("edit rejected")
	m.message, m.failed = err.Error(), true
}

// advance runs one frame. Queued edits apply even while paused.
func (m *Model) advance() {
	if !m.running {
		if m.driver.ApplyPending() {
			m.restart()
		}
		return
	}

	for i := 0; i < m.opts.StepsPerFrame; i++ {
		restarted, err := m.driver.Tick()
		if restarted {
			m.restart()
		}
		if err != nil {
			if m.halted == nil {
				m.halted = err
			}
			return
		}
		m.halted = nil
		m.history.Record(m.driver.State())
	}
	m.energy.Push(physics.Energy(m.driver.State()))
}

func (m *Model) restart() {
	m.history.Reset()
	m.energy.Reset()
	m.halted = nil
	m.record()
}

func (m *Model) record() {
	s := m.driver.State()
	m.history.Record(s)
	m.energy.Push(physics.Energy(s))
}

func (m *Model) resize() {
	w := m.width
	if !m.hidePanels {
		w -= panelWidth + 4
	}
	h := m.height - 2
	m.canvas = NewCanvas(max(w, 10), max(h, 5))
}

// project maps world coordinates to canvas dots. At zoom 1 the box
// |x| <= sim.MaxAbsX, |y| <= sim.MaxAbsY fits the canvas.
func (m *Model) project(x, y float64) (int, int) {
	cw, ch := m.canvas.Dots()
	scale := math.Min(float64(cw)/(2*sim.MaxAbsX), float64(ch)/(2*sim.MaxAbsY)) * m.opts.Zoom
	return cw/2 + int(math.Round(x*scale)), ch/2 - int(math.Round(y*scale))
}

// visible reports whether a dot is near enough the canvas to be worth
// drawing a line to.
func (m *Model) visible(x, y int) bool {
	cw, ch := m.canvas.Dots()
	return x > -cw && x < 2*cw && y > -ch && y < 2*ch
}

func (m *Model) theme() Theme {
	return GetTheme(config.Backgrounds[m.background])
}

func (m *Model) draw() {
	m.canvas.Clear()
	th := m.theme()

	if m.showAxes {
		m.drawAxes(th)
	}

	state := m.driver.State()
	for b := 0; b < dynamo.NumBodies; b++ {
		ring := m.history.Body(b)
		tone := shades(m.colors[b].Hex(), string(th.Background))
		n := ring.Len()
		for i := 1; i < n; i++ {
			p0, p1 := ring.At(i-1), ring.At(i)
			x0, y0 := m.project(p0.X, p0.Y)
			x1, y1 := m.project(p1.X, p1.Y)
			if !m.visible(x0, y0) || !m.visible(x1, y1) {
				continue
			}
			age := (n - 1 - i) * fadeLevels / n
			m.canvas.DrawLine(x0, y0, x1, y1, tone[age])
		}

		x, y := state.Bodies[b].State.Pos()
		px, py := m.project(x, y)
		m.canvas.Disc(px, py, m.radius(state.Bodies[b].Mass), tone[0])
	}

	if m.showAxes {
		m.labelAxes(th)
	}
}

// radius grows with the square root of mass, up to an eighth of the
// smaller canvas side.
func (m *Model) radius(mass float64) int {
	cw, ch := m.canvas.Dots()
	limit := max(1, min(cw, ch)/8)
	r := 1 + math.Round(math.Sqrt(mass))
	if math.IsNaN(r) || r > float64(limit) {
		return limit
	}
	return int(r)
}

// drawAxes draws the unit vectors from the origin. Labels go on last so
// trails never cover them.
func (m *Model) drawAxes(th Theme) {
	ox, oy := m.project(0, 0)
	ux, _ := m.project(1, 0)
	_, uy := m.project(0, 1)
	axis := string(th.Axis)
	m.canvas.DrawLine(ox, oy, ux, oy, axis)
	m.canvas.DrawLine(ox, oy, ox, uy, axis)
}

func (m *Model) labelAxes(th Theme) {
	ox, oy := m.project(0, 0)
	ux, _ := m.project(1, 0)
	_, uy := m.project(0, 1)
	axis := string(th.Axis)
	m.canvas.Text(ox/2+1, oy/4+1, "(0,0)", axis)
	m.canvas.Text(ux/2+1, oy/4+1, "(1,0)", axis)
	m.canvas.Text(ox/2+1, uy/4, "(0,1)", axis)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	th := m.theme()
	view := m.canvas.Render(th.Background, th.Text)

	if !m.hidePanels {
		side := m.panel()
		if m.showAbout {
			side = aboutStyle.Render(about)
		}
		view = lipgloss.JoinHorizontal(lipgloss.Top, view, panelStyle.Render(side))
	}

	var footer string
	switch {
	case m.prompt != nil:
		footer = promptStyle.Render(m.prompt.kind.label()+": ") + m.prompt.buf + "_"
		if m.message != "" && m.failed {
			footer += "  " + errorStyle.Render(m.message)
		}
	case m.message != "":
		if m.failed {
			footer = errorStyle.Render(m.message)
		} else {
			footer = hintStyle.Render(m.message)
		}
	}
	return view + "\n" + footer
}

func (m Model) status() string {
	switch {
	case m.halted != nil:
		return haltedStyle.Render("HALTED")
	case !m.running:
		return pausedStyle.Render("PAUSED")
	}
	return runningStyle.Render("RUNNING")
}

func (m Model) panel() string {
	s := m.driver.State()
	var b strings.Builder

	name := m.opts.Name
	if name == "" {
		name = "three body"
	}
	b.WriteString(titleStyle.Render(strings.ToUpper(name)) + "\n")
	b.WriteString(m.status() + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("step size", fmt.Sprintf("%g", s.StepSize))
	row("time", fmt.Sprintf("%.3f", s.T))
	for i, body := range s.Bodies {
		row(fmt.Sprintf("m%d", i+1), lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors[i].Hex())).Render("●")+" "+fmt.Sprintf("%g", body.Mass))
	}
	row("energy", fmt.Sprintf("%.6f", physics.Energy(s)))
	px, py := physics.Momentum(s)
	row("momentum", fmt.Sprintf("%.2e, %.2e", px, py))

	if m.energy.Len() > 1 {
		chart := asciigraph.Plot(m.energy.Slice(), asciigraph.Height(5), asciigraph.Width(panelWidth-18), asciigraph.Caption("energy"))
		b.WriteString("\n" + graphStyle.Render(chart) + "\n")
	}

	if m.halted != nil {
		var se *dynamo.SimulationError
		if errors.As(m.halted, &se) {
			b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("singular at t=%.4f", se.Time)) + "\n")
		}
		b.WriteString(hintStyle.Render("press r to reset") + "\n")
	}

	b.WriteString("\n" + strings.Join([]string{
		keyHint("space", "pause") + "  " + keyHint("r", "reset") + "  " + keyHint("q", "quit"),
		keyHint("i", "initial") + "  " + keyHint("m", "masses") + "  " + keyHint("d", "step"),
		keyHint("c", "colours") + "  " + keyHint("b", "background") + "  " + keyHint("s", "axes"),
		keyHint("+/-", "zoom") + "  " + keyHint("h", "hide") + "  " + keyHint("a", "about"),
	}, "\n"))
	return b.String()
}

const about = `THREE BODY

Three point masses under
Newtonian gravity (G = 1)
in the plane, advanced by
fixed-step fourth-order
Runge-Kutta.

Each tick moves every body
against the pre-tick
positions of the other two.

Edits apply between ticks.
New initial conditions and
r restart from t = 0.
Masses and step size carry
over to the next reset.

Positions must satisfy
|x| <= 3.2 and |y| <= 1.7.

press a to close`
