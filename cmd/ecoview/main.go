// Command ecoview is a terminal viewport onto a running simulation: a
// Bubble Tea program that scrolls the terrain cache, steps the
// simulator, and drops creatures at the cursor, rendered with Lip Gloss.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/rubinda/ecotile/catalog"
	"github.com/rubinda/ecotile/config"
	"github.com/rubinda/ecotile/noise"
	"github.com/rubinda/ecotile/randsrc"
	"github.com/rubinda/ecotile/sim"
	"github.com/rubinda/ecotile/terrain"
	"github.com/rubinda/ecotile/world"

	ecotile "github.com/rubinda/ecotile"
)

const (
	viewWidth  = 48
	viewHeight = 20
)

var tileGlyphs = map[ecotile.TileType]string{
	ecotile.DeepWater: "≈",
	ecotile.Water:     "~",
	ecotile.Sand:      ".",
	ecotile.Dirt:      ",",
	ecotile.Rock:      "^",
	ecotile.Snow:      "*",
}

var tileStyle = map[ecotile.TileType]lipgloss.Style{
	ecotile.DeepWater: lipgloss.NewStyle().Foreground(lipgloss.Color("18")),
	ecotile.Water:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	ecotile.Sand:      lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
	ecotile.Dirt:      lipgloss.NewStyle().Foreground(lipgloss.Color("94")),
	ecotile.Rock:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	ecotile.Snow:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
}

var (
	cursorStyle  = lipgloss.NewStyle().Background(lipgloss.Color("205")).Foreground(lipgloss.Color("0"))
	beingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("202")).Bold(true)
	carcassStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type model struct {
	driver   *sim.Driver
	cat      *catalog.Catalog
	cursor   ecotile.Position
	selected uint8
	status   string
}

func (m model) Init() tea.Cmd {
	m.driver.EnsureCached(m.cursor.X-viewWidth/2, m.cursor.Y-viewHeight/2, viewWidth, viewHeight)
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up":
		m.cursor.Y--
	case "down":
		m.cursor.Y++
	case "left":
		m.cursor.X--
	case "right":
		m.cursor.X++
	case " ":
		changed := m.driver.Step()
		m.status = fmt.Sprintf("step %d: %d tiles changed", m.driver.CurrentStep(), len(changed))
	case "n":
		m.selected = (m.selected + 1) % uint8(m.cat.Len())
	case "p":
		m.status = m.tryPlace()
	}

	m.driver.EnsureCached(m.cursor.X-viewWidth/2, m.cursor.Y-viewHeight/2, viewWidth, viewHeight)
	return m, nil
}

func (m *model) tryPlace() (status string) {
	defer func() {
		// Place panics on a bad position; swallow it into a status line.
		if r := recover(); r != nil {
			status = fmt.Sprint(r)
		}
	}()
	m.driver.Place(m.selected, m.cursor)
	return fmt.Sprintf("placed %s at %v", m.cat.Get(m.selected).Name, m.cursor)
}

func (m model) View() string {
	left := m.cursor.X - viewWidth/2
	top := m.cursor.Y - viewHeight/2

	var grid string
	for y := int64(0); y < viewHeight; y++ {
		for x := int64(0); x < viewWidth; x++ {
			pos := ecotile.Position{X: left + x, Y: top + y}
			grid += m.glyphAt(pos)
		}
		grid += "\n"
	}

	header := statusStyle.Render(fmt.Sprintf(
		"step=%d  cursor=%v  species=%s  (arrows: move, space: step, n: cycle species, p: place, q: quit)",
		m.driver.CurrentStep(), m.cursor, m.cat.Get(m.selected).Name,
	))
	footer := statusStyle.Render(m.status)
	return header + "\n" + grid + footer
}

func (m model) glyphAt(pos ecotile.Position) string {
	if pos == m.cursor {
		return cursorStyle.Render("@")
	}
	if !m.driver.IsCached(pos) {
		return " "
	}
	if handles := m.driver.CreaturesAt(pos); len(handles) > 0 {
		return beingStyle.Render("o")
	}
	if _, ok := m.driver.CarcassAt(pos); ok {
		return carcassStyle.Render("x")
	}
	tile := m.driver.TileAt(pos)
	return tileStyle[tile].Render(tileGlyphs[tile])
}

func main() {
	configPath := flag.String("config", "./ecotile.yaml", "path to the simulator configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if lvl, lerr := logrus.ParseLevel(cfg.LogLevel); lerr == nil {
		logrus.SetLevel(lvl)
	}

	cat, rowErrs, err := catalog.Load(cfg.SpeciesTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, re := range rowErrs {
		logrus.WithField("line", re.Line).Warn(re.Error())
	}
	logrus.WithFields(logrus.Fields{
		"species":     cat.Len(),
		"fingerprint": cat.Fingerprint(),
	}).Info("loaded species catalog")

	gen := noise.NewGenerator(cfg.WorldSeed)
	cache := terrain.NewCache(gen)
	store := world.NewStore()
	behaviour := randsrc.NewBehaviourSourceSeeded(cfg.WorldSeed)
	driver := sim.NewDriver(store, cache, cat, behaviour)

	m := model{driver: driver, cat: cat, status: "ready"}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
