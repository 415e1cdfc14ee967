package sim

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rubinda/ecotile/catalog"
	"github.com/rubinda/ecotile/pathing"
	"github.com/rubinda/ecotile/randsrc"
	"github.com/rubinda/ecotile/world"

	ecotile "github.com/rubinda/ecotile"
)

// Terrain is the subset of terrain.Cache the step driver needs. Kept as
// a local interface, like pathing.Terrain, so tests can exercise the
// transition table against a fixed, hand-laid-out tile grid instead of
// real generated noise.
type Terrain interface {
	IsCached(pos ecotile.Position) bool
	TileAt(pos ecotile.Position) ecotile.TileType
	EnsureCached(left, top, width, height int64)
}

// Driver is the step driver (C8): it owns references to every other
// component and advances the simulation one tick at a time, applying
// the deferred-mutation commit protocol.
type Driver struct {
	store       *world.Store
	terrain     Terrain
	pathfinder  *pathing.AStar
	cat         *catalog.Catalog
	behaviour   *randsrc.BehaviourSource
	currentStep int64
	log         *logrus.Logger
	runID       uuid.UUID
}

// NewDriver wires up a step driver over an already-constructed store,
// terrain cache and species catalog. Lifecycle events (step summaries,
// deaths, procreation) are logged through logrus.StandardLogger(); use
// SetLogger to redirect them. Step summaries and cache-scroll lines are
// tagged with a fresh run ID so lines from concurrently running simulator
// instances can be told apart; the per-creature death and procreation
// lines carry no run ID.
func NewDriver(store *world.Store, terr Terrain, cat *catalog.Catalog, behaviour *randsrc.BehaviourSource) *Driver {
	return &Driver{
		store:      store,
		terrain:    terr,
		pathfinder: pathing.NewAStar(terr),
		cat:        cat,
		behaviour:  behaviour,
		log:        logrus.StandardLogger(),
		runID:      uuid.New(),
	}
}

// RunID identifies this driver instance in logs.
func (d *Driver) RunID() uuid.UUID {
	return d.runID
}

// SetLogger overrides the logger lifecycle events are written to.
func (d *Driver) SetLogger(l *logrus.Logger) {
	d.log = l
}

// moveRecord is a queued relocation, applied at commit.
type moveRecord struct {
	handle   world.Handle
	from, to ecotile.Position
}

// offspringRecord is a queued insertion, applied at commit.
type offspringRecord struct {
	pos              ecotile.Position
	speciesIdx       uint8
	lifetime         int16
	aiState          uint16
	procreationTimer uint8
}

// tickQueues accumulates every deferred mutation produced while visiting
// this tick's creatures, so that no creature's update can observe
// another's move, death or birth before commit.
type tickQueues struct {
	moves          []moveRecord
	pendingCarcass []world.Handle // animals to erase and carcass-transfer
	pendingErase   []world.Handle // plants killed by predation (not discovered via the outer iteration)
	offspring      []offspringRecord
	changed        map[ecotile.Position]bool
}

// Step advances the simulation by one tick: every live creature is
// visited once, its transition and action computed against the
// pre-commit world, and the resulting moves, deaths, births and carcass
// decay are applied afterward in the mandated order (moves, then the
// countdown of carcasses left by earlier ticks, then deaths, then
// births), so a carcass placed this tick still shows its full 10 ticks.
// It returns every position whose occupant set changed.
func (d *Driver) Step() []ecotile.Position {
	d.currentStep++
	q := &tickQueues{changed: map[ecotile.Position]bool{}}

	for _, h := range d.store.All() {
		creature, ok := d.store.Get(h)
		if !ok {
			continue
		}
		pos, ok := d.store.PositionOf(h)
		if !ok || !d.terrain.IsCached(pos) {
			continue
		}

		sp := d.cat.Get(creature.SpeciesIndex)
		if sp.Ecology.IsPlant() {
			d.updatePlant(h, pos, creature, sp, q)
		} else {
			d.updateAnimal(h, pos, creature, sp, q)
		}
	}

	for _, m := range q.moves {
		d.store.Move(m.handle, m.to)
		q.changed[m.from] = true
		q.changed[m.to] = true
	}
	d.store.DecrementCarcasses()
	for _, h := range q.pendingCarcass {
		if pos, ok := d.store.PositionOf(h); ok {
			d.store.EraseAt(h)
			d.store.PlaceCarcass(pos)
			q.changed[pos] = true
		}
	}
	for _, h := range q.pendingErase {
		if pos, ok := d.store.PositionOf(h); ok {
			d.store.EraseAt(h)
			q.changed[pos] = true
		}
	}
	for _, o := range q.offspring {
		d.store.Insert(o.pos, world.Creature{
			SpeciesIndex:     o.speciesIdx,
			Lifetime:         o.lifetime,
			AIState:          o.aiState,
			ProcreationTimer: o.procreationTimer,
		})
		q.changed[o.pos] = true
	}

	out := make([]ecotile.Position, 0, len(q.changed))
	for p := range q.changed {
		out = append(out, p)
	}

	d.log.WithFields(logrus.Fields{
		"run":       d.runID,
		"step":      d.currentStep,
		"moves":     len(q.moves),
		"deaths":    len(q.pendingCarcass),
		"erased":    len(q.pendingErase),
		"offspring": len(q.offspring),
	}).Debug("sim: step complete")

	return out
}

// Place inserts a brand-new creature of the given species at pos. It
// panics if pos is not cached or is not a good position for the species:
// placement preconditions are the caller's responsibility, never expected
// to fail in ordinary operation.
func (d *Driver) Place(speciesIdx uint8, pos ecotile.Position) world.Handle {
	sp := d.cat.Get(speciesIdx)
	if !d.terrain.IsCached(pos) {
		panic(fmt.Sprintf("sim: cannot place at uncached position %v", pos))
	}
	if !world.IsGoodPosition(sp, d.terrain.TileAt(pos)) {
		panic(fmt.Sprintf("sim: %v is not a good position for species %q", pos, sp.Name))
	}

	var procTimer uint8
	interval := sp.ProcreationInterval()
	if interval < 1 {
		interval = 1
	}
	if sp.Ecology.IsPlant() {
		procTimer = uint8(d.behaviour.Intn(interval))
	} else {
		procTimer = uint8(interval)
	}

	return d.store.Insert(pos, world.Creature{
		SpeciesIndex:     speciesIdx,
		Lifetime:         sp.MaxLifetime,
		AIState:          ArrivedRoam,
		ProcreationTimer: procTimer,
	})
}

// scrollFingerprinter is satisfied by *terrain.Cache; kept as an optional
// type assertion rather than folded into Terrain so fakeTerrain test
// doubles need not implement it.
type scrollFingerprinter interface {
	ScrollFingerprint() uint64
}

// EnsureCached forwards to the terrain cache, so callers driving
// the simulator need only hold a *Driver.
func (d *Driver) EnsureCached(left, top, width, height int64) {
	d.terrain.EnsureCached(left, top, width, height)
	if fp, ok := d.terrain.(scrollFingerprinter); ok {
		d.log.WithFields(logrus.Fields{
			"run":    d.runID,
			"window": fmt.Sprintf("%d,%d+%dx%d", left, top, width, height),
			"slots":  fmt.Sprintf("%x", fp.ScrollFingerprint()),
		}).Debug("sim: terrain cache scrolled")
	}
}

// IsCached reports whether pos currently lies within the cached window.
func (d *Driver) IsCached(pos ecotile.Position) bool {
	return d.terrain.IsCached(pos)
}

// TileAt returns the tile type at pos. Panics if pos is not cached.
func (d *Driver) TileAt(pos ecotile.Position) ecotile.TileType {
	return d.terrain.TileAt(pos)
}

// CreaturesAt returns a handle to every creature occupying pos.
func (d *Driver) CreaturesAt(pos ecotile.Position) []world.Handle {
	return d.store.EqualRange(pos)
}

// Creature resolves a handle to its current creature record.
func (d *Driver) Creature(h world.Handle) (world.Creature, bool) {
	return d.store.Get(h)
}

// CarcassAt returns the remaining decay ticks of the carcass at pos, if any.
func (d *Driver) CarcassAt(pos ecotile.Position) (uint8, bool) {
	return d.store.CarcassAt(pos)
}

// Catalog returns the species catalog backing this driver.
func (d *Driver) Catalog() *catalog.Catalog {
	return d.cat
}

// CurrentStep returns the number of ticks simulated so far.
func (d *Driver) CurrentStep() int64 {
	return d.currentStep
}

// ReachablePositions forwards to the pathing package's reachability
// enumerator (C6).
func (d *Driver) ReachablePositions(pos ecotile.Position, maxDist int64, medium ecotile.Medium) []ecotile.Position {
	return pathing.ReachablePositions(d.terrain, pos, maxDist, medium)
}

// Path forwards to the pathfinder (C5).
func (d *Driver) Path(from, to ecotile.Position, medium ecotile.Medium) ([]ecotile.Position, bool) {
	return d.pathfinder.GetPath(from, to, medium)
}
