package sim

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/rubinda/ecotile/catalog"
	"github.com/rubinda/ecotile/pathing"
	"github.com/rubinda/ecotile/world"

	ecotile "github.com/rubinda/ecotile"
)

// updatePlant applies a single tick to a stationary plant: on its
// procreation phase it may seed up to two offspring nearby, then it ages
// according to the tile it stands on, erasing itself inline (permitted
// since it was discovered via the outer iteration) if its lifetime runs
// out.
func (d *Driver) updatePlant(h world.Handle, pos ecotile.Position, c world.Creature, sp catalog.Species, q *tickQueues) {
	interval := sp.ProcreationInterval()
	if interval < 1 {
		interval = 1
	}
	if d.currentStep%int64(interval) == int64(c.ProcreationTimer) {
		count := d.store.CountBySpecies(pos, 5, c.SpeciesIndex)
		if count > 2 && count < 10 {
			d.spawnPlantOffspring(pos, c.SpeciesIndex, sp, q)
			d.spawnPlantOffspring(pos, c.SpeciesIndex, sp, q)
		}
	}

	switch d.terrain.TileAt(pos) {
	case ecotile.Water, ecotile.Sand, ecotile.Dirt:
		c.Lifetime -= 10
	default:
		c.Lifetime -= 25
	}

	if c.Lifetime <= 0 {
		d.store.EraseAt(h)
		q.changed[pos] = true
		d.log.WithFields(logrus.Fields{"species": sp.Name, "at": pos}).Debug("sim: plant died")
		return
	}
	d.store.Update(h, c)
}

// spawnPlantOffspring samples a ring-of-5 offset from pos (|dx|+|dy| = 5,
// dx uniform in [-5, 5], sign of dy a fair coin flip) and queues an
// offspring there if the candidate tile is cached, a good position for
// the species, and not already vegetated.
func (d *Driver) spawnPlantOffspring(pos ecotile.Position, speciesIdx uint8, sp catalog.Species, q *tickQueues) {
	dx := int64(d.behaviour.Intn(11)) - 5
	absDy := 5 - absInt64(dx)
	dy := absDy
	if !d.behaviour.CoinFlip() {
		dy = -absDy
	}

	candidate := pos.Add(dx, dy)
	if !d.terrain.IsCached(candidate) {
		return
	}
	if !world.IsGoodPosition(sp, d.terrain.TileAt(candidate)) {
		return
	}
	if d.store.IsVegetated(candidate, d.cat) {
		return
	}

	interval := sp.ProcreationInterval()
	if interval < 1 {
		interval = 1
	}
	q.offspring = append(q.offspring, offspringRecord{
		pos:              candidate,
		speciesIdx:       speciesIdx,
		lifetime:         sp.MaxLifetime,
		aiState:          ArrivedRoam,
		procreationTimer: uint8(d.behaviour.Intn(interval)),
	})
}

// updateAnimal applies a single tick to a mobile animal: the transition
// table resolves the new ai_state from the old one and the creature's
// current condition, then the corresponding action executes using that
// resolved state.
func (d *Driver) updateAnimal(h world.Handle, pos ecotile.Position, c world.Creature, sp catalog.Species, q *tickQueues) {
	medium := ecotile.Terrestrial
	if sp.Ecology.IsAquatic() {
		medium = ecotile.Aquatic
	}

	relLife := float64(c.Lifetime) / float64(sp.MaxLifetime)
	isHungry := relLife < 0.6
	isSated := c.Lifetime >= sp.MaxLifetime

	var foodPositions []ecotile.Position
	var foodDist int64
	var foodFound bool

	newState := c.AIState
	resolved := false

	if (IsRoamState(c.AIState) || IsRestState(c.AIState)) && c.ProcreationTimer == 0 && relLife > 0.5 {
		count := d.store.CountBySpecies(pos, 3, c.SpeciesIndex)
		if count > 1 && count < 5 {
			newState = ProcreateState
			resolved = true
		}
	}

	if !resolved {
		wantsFood := (IsRoamState(c.AIState) || c.AIState == ProcreateState) && isHungry
		wantsFood = wantsFood || ((c.AIState == HuntState || c.AIState == ConsumeState) && !isSated)
		if wantsFood {
			foodPositions, foodDist, foodFound = pathing.FindFood(d.terrain, d.store, d.cat, pos, 10, medium, sp.Ecology)
			switch {
			case foodFound && foodDist <= 1:
				newState = ConsumeState
				resolved = true
			case foodFound && foodDist <= 10:
				newState = HuntState
				resolved = true
			case c.AIState == HuntState || c.AIState == ConsumeState:
				// Already mid-hunt or mid-consume with nothing left to find:
				// give up and rest rather than keep searching.
				newState = RestState(0)
				resolved = true
			}
			// A hungry animal still roaming or just finished procreating,
			// with no food found, falls through unresolved: it keeps its
			// existing roam (below) or picks a fresh destination, instead
			// of being forced to rest.
		}
	}

	if !resolved && IsRoamState(c.AIState) && c.AIState != ArrivedRoam {
		newState = c.AIState
		resolved = true
	}

	if !resolved && c.AIState == ProcreateState {
		newState = d.pickRoamDestination(pos, medium)
		resolved = true
	}

	if !resolved && (c.AIState == ArrivedRoam || c.AIState == HuntState || c.AIState == ConsumeState) {
		newState = RestState(0)
		resolved = true
	}

	if !resolved && IsRestState(c.AIState) {
		level := RestLevel(c.AIState)
		maxRest := uint16(math.Round(relLife * 5))
		if level+1 < maxRest {
			newState = RestState(level + 1)
		} else {
			newState = d.pickRoamDestination(pos, medium)
		}
		resolved = true
	}

	c.AIState = newState

	switch {
	case IsRoamState(newState):
		d.actRoam(h, pos, &c, sp, medium, q)
	case newState == ProcreateState:
		d.actProcreate(pos, &c, sp, medium, q)
	case newState == HuntState:
		d.actHunt(h, pos, &c, sp, medium, foodPositions, q)
	case newState == ConsumeState:
		d.actConsume(&c, sp, foodPositions, q)
	case IsRestState(newState):
		c.Lifetime -= 5
	}

	if c.ProcreationTimer > 0 {
		c.ProcreationTimer--
	}

	if c.Lifetime <= 0 {
		q.pendingCarcass = append(q.pendingCarcass, h)
		q.changed[pos] = true
		d.log.WithFields(logrus.Fields{"species": sp.Name, "at": pos}).Debug("sim: animal died")
		return
	}
	d.store.Update(h, c)
}

// pickRoamDestination samples a uniformly random reachable position
// within 10 tiles of pos, restricted to the creature's own medium, and
// encodes the offset to it as a fresh Roam ai_state.
func (d *Driver) pickRoamDestination(pos ecotile.Position, medium ecotile.Medium) uint16 {
	candidates := d.ReachablePositions(pos, 10, medium)
	dest := candidates[d.behaviour.Intn(len(candidates))]
	return EncodeRoam(dest.X-pos.X, dest.Y-pos.Y)
}

// actRoam walks up to the species' walk speed in tiles toward the
// destination encoded in c.AIState, queues the resulting move, and
// re-encodes the remaining offset. If the destination has scrolled out
// of the cached window, the creature gives up and arrives where it
// stands, at a small energy cost.
func (d *Driver) actRoam(h world.Handle, pos ecotile.Position, c *world.Creature, sp catalog.Species, medium ecotile.Medium, q *tickQueues) {
	if c.AIState == ArrivedRoam {
		return
	}
	dx, dy := DecodeRoam(c.AIState)
	dest := pos.Add(dx, dy)
	if !d.terrain.IsCached(dest) {
		c.AIState = ArrivedRoam
		c.Lifetime -= 5
		return
	}

	path, _ := d.pathfinder.GetPath(pos, dest, medium)
	if len(path) < 2 {
		c.AIState = ArrivedRoam
		return
	}

	steps := sp.WalkSpeed()
	if steps < 1 {
		steps = 1
	}
	idx := steps
	if idx >= len(path) {
		idx = len(path) - 1
	}
	newPos := path[idx]
	if newPos != pos {
		q.moves = append(q.moves, moveRecord{handle: h, from: pos, to: newPos})
	}
	c.AIState = EncodeRoam(dest.X-newPos.X, dest.Y-newPos.Y)
}

// actProcreate attempts to seed one offspring on a reachable tile within
// 3 tiles of pos (excluding pos itself), halving the parent's remaining
// lifetime into the child and discounting the parent's own for the
// effort. On success it resets the procreation countdown; on failure
// (no eligible tile) it leaves everything unchanged, as if the attempt
// never happened.
func (d *Driver) actProcreate(pos ecotile.Position, c *world.Creature, sp catalog.Species, medium ecotile.Medium, q *tickQueues) {
	reachable := d.ReachablePositions(pos, 3, medium)
	var candidates []ecotile.Position
	for _, p := range reachable {
		if p != pos {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return
	}

	dest := candidates[d.behaviour.Intn(len(candidates))]
	childLifetime := int16(math.Round(0.5 * float64(c.Lifetime)))
	q.offspring = append(q.offspring, offspringRecord{
		pos:              dest,
		speciesIdx:       c.SpeciesIndex,
		lifetime:         childLifetime,
		aiState:          ArrivedRoam,
		procreationTimer: uint8(sp.ProcreationInterval()),
	})

	c.Lifetime = int16(math.Round(0.75 * float64(c.Lifetime)))
	interval := sp.ProcreationInterval()
	if interval < 1 {
		interval = 1
	}
	c.ProcreationTimer = uint8(interval)

	d.log.WithFields(logrus.Fields{"species": sp.Name, "at": dest}).Debug("sim: procreation")
}

// actHunt moves toward a uniformly chosen prey candidate at the
// species' run speed.
func (d *Driver) actHunt(h world.Handle, pos ecotile.Position, c *world.Creature, sp catalog.Species, medium ecotile.Medium, foodPositions []ecotile.Position, q *tickQueues) {
	if len(foodPositions) == 0 {
		return
	}
	target := foodPositions[d.behaviour.Intn(len(foodPositions))]
	path, _ := d.pathfinder.GetPath(pos, target, medium)
	if len(path) < 2 {
		return
	}

	steps := sp.RunSpeed()
	if steps < 1 {
		steps = 1
	}
	idx := steps
	if idx >= len(path) {
		idx = len(path) - 1
	}
	newPos := path[idx]
	if newPos != pos {
		q.moves = append(q.moves, moveRecord{handle: h, from: pos, to: newPos})
	}
}

// actConsume picks a uniformly random adjacent prey individual and
// applies the leech formula: the predator gains half of what it takes,
// bounded by its own remaining headroom to MaxLifetime; the prey loses
// the full amount and is queued for removal if that kills it. The
// removal is deferred rather than applied inline because, unlike a
// creature's own natural death, the prey was discovered through this
// creature's search, not the outer iteration.
func (d *Driver) actConsume(c *world.Creature, sp catalog.Species, foodPositions []ecotile.Position, q *tickQueues) {
	if len(foodPositions) == 0 {
		return
	}
	targetPos := foodPositions[d.behaviour.Intn(len(foodPositions))]

	var preyHandles []world.Handle
	for _, oh := range d.store.EqualRange(targetPos) {
		oc, ok := d.store.Get(oh)
		if !ok {
			continue
		}
		preyEco := d.cat.Get(oc.SpeciesIndex).Ecology
		isPrey := preyEco.IsPlant()
		if sp.Ecology.IsCarnivore() {
			isPrey = preyEco.IsHerbivore()
		}
		if isPrey {
			preyHandles = append(preyHandles, oh)
		}
	}
	if len(preyHandles) == 0 {
		return
	}

	targetHandle := preyHandles[d.behaviour.Intn(len(preyHandles))]
	target, ok := d.store.Get(targetHandle)
	if !ok {
		return
	}

	amount := int16(sp.Strength)
	if target.Lifetime < amount {
		amount = target.Lifetime
	}
	headroom := int16(2 * (int(sp.MaxLifetime) - int(c.Lifetime)))
	if headroom < amount {
		amount = headroom
	}
	if amount < 0 {
		amount = 0
	}

	c.Lifetime += amount / 2
	if c.Lifetime > sp.MaxLifetime {
		c.Lifetime = sp.MaxLifetime
	}

	target.Lifetime -= amount
	d.store.Update(targetHandle, target)
	q.changed[targetPos] = true

	if target.Lifetime <= 0 {
		if d.cat.Get(target.SpeciesIndex).Ecology.IsPlant() {
			q.pendingErase = append(q.pendingErase, targetHandle)
		} else {
			q.pendingCarcass = append(q.pendingCarcass, targetHandle)
		}
	}
}

func absInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
