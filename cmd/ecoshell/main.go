// Command ecoshell is a line-oriented REPL over a simulator instance,
// built on go-prompt: each line is a command that inspects or drives the
// world (tile lookups, placement, stepping, pathing, reachability).
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"
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

const promptPrefix = "ecotile> "

var commandNames = []string{"ensure", "tile", "place", "step", "path", "reach", "help", "quit"}

type shell struct {
	driver *sim.Driver
	cat    *catalog.Catalog
}

func (s *shell) complete(doc prompt.Document) []prompt.Suggest {
	word := doc.GetWordBeforeCursor()
	suggestions := make([]prompt.Suggest, 0, len(commandNames))
	for _, name := range commandNames {
		suggestions = append(suggestions, prompt.Suggest{Text: name})
	}
	return prompt.FilterHasPrefix(suggestions, word, true)
}

func (s *shell) execute(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	var err error
	switch fields[0] {
	case "ensure":
		err = s.cmdEnsure(fields[1:])
	case "tile":
		err = s.cmdTile(fields[1:])
	case "place":
		err = s.cmdPlace(fields[1:])
	case "step":
		err = s.cmdStep(fields[1:])
	case "path":
		err = s.cmdPath(fields[1:])
	case "reach":
		err = s.cmdReach(fields[1:])
	case "help":
		s.printHelp()
	case "quit", "exit":
		fmt.Println("bye")
		os.Exit(0)
	default:
		err = fmt.Errorf("unknown command %q, try 'help'", fields[0])
	}

	if err != nil {
		fmt.Println("error:", err)
	}
}

func (s *shell) printHelp() {
	fmt.Println("commands:")
	fmt.Println("  ensure <left> <top> <width> <height>   -- cache a terrain window")
	fmt.Println("  tile <x> <y>                           -- show the tile at a position")
	fmt.Println("  place <species> <x> <y>                -- place a creature")
	fmt.Println("  step                                   -- advance the simulation one tick")
	fmt.Println("  path <medium> <fx> <fy> <tx> <ty>       -- find a path between two positions")
	fmt.Println("  reach <medium> <x> <y> <maxDist>        -- list reachable positions")
	fmt.Println("  quit                                    -- exit the shell")
}

func (s *shell) cmdEnsure(args []string) error {
	ints, err := parseInts(args, 4)
	if err != nil {
		return err
	}
	s.driver.EnsureCached(ints[0], ints[1], ints[2], ints[3])
	fmt.Printf("cached window left=%d top=%d width=%d height=%d\n", ints[0], ints[1], ints[2], ints[3])
	return nil
}

func (s *shell) cmdTile(args []string) error {
	ints, err := parseInts(args, 2)
	if err != nil {
		return err
	}
	pos := ecotile.Position{X: ints[0], Y: ints[1]}
	if !s.driver.IsCached(pos) {
		return fmt.Errorf("%v is not cached, run ensure first", pos)
	}
	fmt.Printf("%v: %s\n", pos, s.driver.TileAt(pos))
	return nil
}

func (s *shell) cmdPlace(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: place <species> <x> <y>")
	}
	idx, ok := s.cat.IndexOf(args[0])
	if !ok {
		return fmt.Errorf("unknown species %q", args[0])
	}
	ints, err := parseInts(args[1:], 2)
	if err != nil {
		return err
	}
	pos := ecotile.Position{X: ints[0], Y: ints[1]}
	h := s.driver.Place(idx, pos)
	fmt.Printf("placed %s at %v (handle %v)\n", args[0], pos, h)
	return nil
}

func (s *shell) cmdStep(args []string) error {
	changed := s.driver.Step()
	fmt.Printf("step %d: %d positions changed\n", s.driver.CurrentStep(), len(changed))
	return nil
}

func (s *shell) cmdPath(args []string) error {
	if len(args) != 5 {
		return fmt.Errorf("usage: path <medium> <fx> <fy> <tx> <ty>")
	}
	medium, err := parseMedium(args[0])
	if err != nil {
		return err
	}
	ints, err := parseInts(args[1:], 4)
	if err != nil {
		return err
	}
	from := ecotile.Position{X: ints[0], Y: ints[1]}
	to := ecotile.Position{X: ints[2], Y: ints[3]}
	path, ok := s.driver.Path(from, to, medium)
	if !ok {
		fmt.Println("no path found")
		return nil
	}
	fmt.Printf("path (%d steps): %v\n", len(path)-1, path)
	return nil
}

func (s *shell) cmdReach(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: reach <medium> <x> <y> <maxDist>")
	}
	medium, err := parseMedium(args[0])
	if err != nil {
		return err
	}
	ints, err := parseInts(args[1:], 3)
	if err != nil {
		return err
	}
	pos := ecotile.Position{X: ints[0], Y: ints[1]}
	reachable := s.driver.ReachablePositions(pos, ints[2], medium)
	fmt.Printf("%d reachable positions: %v\n", len(reachable), reachable)
	return nil
}

func parseMedium(s string) (ecotile.Medium, error) {
	switch s {
	case "aquatic":
		return ecotile.Aquatic, nil
	case "terrestrial":
		return ecotile.Terrestrial, nil
	default:
		return 0, fmt.Errorf("unknown medium %q, want aquatic or terrestrial", s)
	}
}

func parseInts(args []string, want int) ([]int64, error) {
	if len(args) != want {
		return nil, fmt.Errorf("expected %d integer arguments, got %d", want, len(args))
	}
	out := make([]int64, want)
	for i, a := range args {
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
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

	gen := noise.NewGenerator(cfg.WorldSeed)
	cache := terrain.NewCache(gen)
	store := world.NewStore()
	behaviour := randsrc.NewBehaviourSourceSeeded(cfg.WorldSeed)
	driver := sim.NewDriver(store, cache, cat, behaviour)

	s := &shell{driver: driver, cat: cat}
	fmt.Printf("ecotile shell: %d species loaded, run %s\n", cat.Len(), driver.RunID())
	s.printHelp()

	prompt.New(
		s.execute,
		s.complete,
		prompt.OptionTitle("ecotile shell"),
		prompt.OptionPrefix(promptPrefix),
		prompt.OptionCompletionOnDown(),
	).Run()
}
