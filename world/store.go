// Package world is the spatial store (C4): a multi-valued mapping from
// Position to the Creature(s) occupying it, plus the single-valued
// carcass map. It is grounded on rubinda-GoWorld's World interface
// (GetBeingAt, GetFoodWithID, BeingsToJSON) for the query-surface shape,
// generalised per the Design Notes into an arena of generation-checked
// slots: a Handle captured before a commit cannot silently alias a
// different creature after its slot is recycled.
package world

import (
	"github.com/brentp/intintmap"

	"github.com/rubinda/ecotile/catalog"

	ecotile "github.com/rubinda/ecotile"
)

// Creature is the mutable per-individual state tracked by the store. Its
// static properties (strength, speed, lifespan, diet) live in the
// species catalog and are looked up by SpeciesIndex.
type Creature struct {
	SpeciesIndex     uint8
	Lifetime         int16
	AIState          uint16
	ProcreationTimer uint8
}

// Handle is a stable reference to a creature slot, safe to hold across a
// single tick. It is invalidated the instant the referenced slot is
// erased; a stale Handle is detected via its generation counter rather
// than silently resolving to whatever creature was later inserted into
// the recycled slot.
type Handle struct {
	index      int32
	generation uint32
}

// Valid reports whether h was ever issued by a Store (the zero Handle is
// never valid, since slot generations start at 1).
func (h Handle) Valid() bool {
	return h.generation != 0
}

type creatureSlot struct {
	pos        ecotile.Position
	creature   Creature
	generation uint32
	occupied   bool
	next       int32 // next occupied slot sharing pos, or next free slot; -1 terminates either chain
}

// Store holds every live creature and every decaying carcass in the
// world. It is not safe for concurrent use.
type Store struct {
	heads    *intintmap.Map
	slots    []creatureSlot
	freeHead int32

	carcassTicks     *intintmap.Map
	carcassPositions []ecotile.Position
}

// NewStore returns an empty spatial store.
func NewStore() *Store {
	return &Store{
		heads:        intintmap.New(1024, 0.75),
		carcassTicks: intintmap.New(256, 0.75),
		freeHead:     -1,
	}
}

// PackPosition hashes a position into a 64-bit key with each coordinate
// folded into a disjoint half of the word, sign folded into the low bit
// of its half. This is collision-free for both coordinates in
// [-2^31, 2^31) by construction: each half is an injective map of its
// coordinate into 32 bits and the two halves never share bits.
func PackPosition(p ecotile.Position) int64 {
	fold := func(v int64) uint32 {
		if v >= 0 {
			return uint32(v) << 1
		}
		return uint32(-v)<<1 | 1
	}
	fx := fold(p.X)
	fy := fold(p.Y)
	return int64(fx)<<32 | int64(fy)
}

func (s *Store) allocSlot() int32 {
	if s.freeHead != -1 {
		idx := s.freeHead
		s.freeHead = s.slots[idx].next
		return idx
	}
	s.slots = append(s.slots, creatureSlot{})
	return int32(len(s.slots) - 1)
}

// Insert places a creature at pos and returns a handle to it.
func (s *Store) Insert(pos ecotile.Position, c Creature) Handle {
	idx := s.allocSlot()
	gen := s.slots[idx].generation + 1

	key := PackPosition(pos)
	head, hasHead := s.heads.Get(key)
	next := int32(-1)
	if hasHead {
		next = int32(head)
	}

	s.slots[idx] = creatureSlot{pos: pos, creature: c, generation: gen, occupied: true, next: next}
	s.heads.Put(key, int64(idx))
	return Handle{index: idx, generation: gen}
}

func (s *Store) resolve(h Handle) *creatureSlot {
	if h.index < 0 || int(h.index) >= len(s.slots) {
		return nil
	}
	slot := &s.slots[h.index]
	if !slot.occupied || slot.generation != h.generation {
		return nil
	}
	return slot
}

// unlink removes slot index idx, currently filed under pos, from that
// tile's occupant chain.
func (s *Store) unlink(pos ecotile.Position, idx int32) {
	key := PackPosition(pos)
	head, _ := s.heads.Get(key)
	if int32(head) == idx {
		if s.slots[idx].next == -1 {
			s.heads.Del(key)
		} else {
			s.heads.Put(key, int64(s.slots[idx].next))
		}
		return
	}
	prev := int32(head)
	for prev != -1 && s.slots[prev].next != idx {
		prev = s.slots[prev].next
	}
	if prev != -1 {
		s.slots[prev].next = s.slots[idx].next
	}
}

// EraseAt removes the creature referenced by h. It returns false if h is
// stale: already erased, or recycled into a different creature.
func (s *Store) EraseAt(h Handle) bool {
	slot := s.resolve(h)
	if slot == nil {
		return false
	}
	s.unlink(slot.pos, h.index)
	slot.occupied = false
	slot.next = s.freeHead
	s.freeHead = h.index
	return true
}

// Move relocates the creature referenced by h to a new position without
// invalidating h.
func (s *Store) Move(h Handle, to ecotile.Position) bool {
	slot := s.resolve(h)
	if slot == nil {
		return false
	}
	s.unlink(slot.pos, h.index)

	key := PackPosition(to)
	head, hasHead := s.heads.Get(key)
	slot.pos = to
	if hasHead {
		slot.next = int32(head)
	} else {
		slot.next = -1
	}
	s.heads.Put(key, int64(h.index))
	return true
}

// Get returns the creature referenced by h and whether h is still live.
func (s *Store) Get(h Handle) (Creature, bool) {
	slot := s.resolve(h)
	if slot == nil {
		return Creature{}, false
	}
	return slot.creature, true
}

// Update overwrites the creature referenced by h in place.
func (s *Store) Update(h Handle, c Creature) bool {
	slot := s.resolve(h)
	if slot == nil {
		return false
	}
	slot.creature = c
	return true
}

// PositionOf returns the current position of the creature referenced by h.
func (s *Store) PositionOf(h Handle) (ecotile.Position, bool) {
	slot := s.resolve(h)
	if slot == nil {
		return ecotile.Position{}, false
	}
	return slot.pos, true
}

// All returns a handle to every currently live creature, in arena order
// (not insertion or spatial order). Used by the step driver to visit
// every creature once per tick.
func (s *Store) All() []Handle {
	out := make([]Handle, 0, len(s.slots))
	for idx := range s.slots {
		if s.slots[idx].occupied {
			out = append(out, Handle{index: int32(idx), generation: s.slots[idx].generation})
		}
	}
	return out
}

// EqualRange returns a handle to every creature currently occupying pos.
func (s *Store) EqualRange(pos ecotile.Position) []Handle {
	head, ok := s.heads.Get(PackPosition(pos))
	if !ok {
		return nil
	}
	var out []Handle
	for idx := int32(head); idx != -1; idx = s.slots[idx].next {
		out = append(out, Handle{index: idx, generation: s.slots[idx].generation})
	}
	return out
}

// IsVegetated reports whether pos is occupied by at least one plant.
func (s *Store) IsVegetated(pos ecotile.Position, cat *catalog.Catalog) bool {
	for _, h := range s.EqualRange(pos) {
		c, ok := s.Get(h)
		if ok && cat.Get(c.SpeciesIndex).Ecology.IsPlant() {
			return true
		}
	}
	return false
}

// CountBySpecies counts live creatures of the given species within
// Manhattan radius of center, center included.
func (s *Store) CountBySpecies(center ecotile.Position, radius int64, speciesIdx uint8) int {
	count := 0
	for dy := -radius; dy <= radius; dy++ {
		rem := radius - absInt64(dy)
		for dx := -rem; dx <= rem; dx++ {
			for _, h := range s.EqualRange(center.Add(dx, dy)) {
				c, ok := s.Get(h)
				if ok && c.SpeciesIndex == speciesIdx {
					count++
				}
			}
		}
	}
	return count
}

func absInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// IsGoodPosition reports whether a species of the given ecology may
// legally occupy a tile of the given type: aquatic species require an
// aquatic tile, terrestrial species require a terrestrial one.
func IsGoodPosition(sp catalog.Species, tile ecotile.TileType) bool {
	return sp.Ecology.IsAquatic() == (ecotile.MediumOf(tile) == ecotile.Aquatic)
}

// PlaceCarcass records a freshly dead animal's carcass at pos with the
// standard 10-tick decay countdown.
func (s *Store) PlaceCarcass(pos ecotile.Position) {
	key := PackPosition(pos)
	if _, exists := s.carcassTicks.Get(key); !exists {
		s.carcassPositions = append(s.carcassPositions, pos)
	}
	s.carcassTicks.Put(key, 10)
}

// CarcassAt returns the remaining decay ticks at pos, if a carcass is
// there.
func (s *Store) CarcassAt(pos ecotile.Position) (ticks uint8, ok bool) {
	v, ok := s.carcassTicks.Get(PackPosition(pos))
	if !ok {
		return 0, false
	}
	return uint8(v), true
}

// DecrementCarcasses ages every carcass by one tick and evicts any that
// reach zero. Called once per commit, before that tick's new carcasses
// are placed.
func (s *Store) DecrementCarcasses() {
	kept := s.carcassPositions[:0]
	for _, pos := range s.carcassPositions {
		key := PackPosition(pos)
		ticks, ok := s.carcassTicks.Get(key)
		if !ok {
			continue
		}
		ticks--
		if ticks <= 0 {
			s.carcassTicks.Del(key)
			continue
		}
		s.carcassTicks.Put(key, ticks)
		kept = append(kept, pos)
	}
	s.carcassPositions = kept
}
