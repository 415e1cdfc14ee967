package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ecotile "github.com/rubinda/ecotile"
)

func TestPackPositionCollisionFree(t *testing.T) {
	seen := map[int64]ecotile.Position{}
	coords := []int64{-1000, -7, -1, 0, 1, 7, 999}
	for _, x := range coords {
		for _, y := range coords {
			p := ecotile.Position{X: x, Y: y}
			key := PackPosition(p)
			if other, ok := seen[key]; ok && other != p {
				t.Fatalf("hash collision between %v and %v", p, other)
			}
			seen[key] = p
		}
	}
}

func TestInsertGetEraseRoundTrip(t *testing.T) {
	s := NewStore()
	pos := ecotile.Position{X: 3, Y: 4}
	h := s.Insert(pos, Creature{SpeciesIndex: 2, Lifetime: 50})

	got, ok := s.Get(h)
	require.True(t, ok)
	assert.Equal(t, uint8(2), got.SpeciesIndex)

	require.True(t, s.EraseAt(h))
	_, ok = s.Get(h)
	assert.False(t, ok, "erased handle should no longer resolve")
	assert.False(t, s.EraseAt(h), "erasing an already-erased handle should report false")
}

func TestHandleGenerationDetectsStaleReferences(t *testing.T) {
	s := NewStore()
	pos := ecotile.Position{X: 0, Y: 0}
	h1 := s.Insert(pos, Creature{SpeciesIndex: 1})
	require.True(t, s.EraseAt(h1))

	h2 := s.Insert(pos, Creature{SpeciesIndex: 9})
	if h1.index == h2.index {
		_, ok := s.Get(h1)
		assert.False(t, ok, "stale handle must not alias the recycled slot's new occupant")
	}
	got, ok := s.Get(h2)
	require.True(t, ok)
	assert.Equal(t, uint8(9), got.SpeciesIndex)
}

func TestEqualRangeMultipleOccupants(t *testing.T) {
	s := NewStore()
	pos := ecotile.Position{X: 5, Y: 5}
	h1 := s.Insert(pos, Creature{SpeciesIndex: 1})
	h2 := s.Insert(pos, Creature{SpeciesIndex: 2})

	handles := s.EqualRange(pos)
	assert.Len(t, handles, 2)

	found := map[int32]bool{}
	for _, h := range handles {
		found[h.index] = true
	}
	assert.True(t, found[h1.index])
	assert.True(t, found[h2.index])
}

func TestMoveKeepsHandleValid(t *testing.T) {
	s := NewStore()
	from := ecotile.Position{X: 0, Y: 0}
	to := ecotile.Position{X: 1, Y: 0}
	h := s.Insert(from, Creature{SpeciesIndex: 3})

	require.True(t, s.Move(h, to))
	assert.Empty(t, s.EqualRange(from))
	assert.Len(t, s.EqualRange(to), 1)

	pos, ok := s.PositionOf(h)
	require.True(t, ok)
	assert.Equal(t, to, pos)
}

func TestCarcassLifecycle(t *testing.T) {
	s := NewStore()
	pos := ecotile.Position{X: 2, Y: 2}
	s.PlaceCarcass(pos)

	ticks, ok := s.CarcassAt(pos)
	require.True(t, ok)
	assert.EqualValues(t, 10, ticks)

	for i := 0; i < 9; i++ {
		s.DecrementCarcasses()
	}
	ticks, ok = s.CarcassAt(pos)
	require.True(t, ok)
	assert.EqualValues(t, 1, ticks)

	s.DecrementCarcasses()
	_, ok = s.CarcassAt(pos)
	assert.False(t, ok, "carcass should be evicted once its ticks reach zero")
}

func TestCountBySpeciesWithinRadius(t *testing.T) {
	s := NewStore()
	center := ecotile.Position{X: 0, Y: 0}
	s.Insert(center, Creature{SpeciesIndex: 1})
	s.Insert(center.Add(2, 0), Creature{SpeciesIndex: 1})
	s.Insert(center.Add(5, 0), Creature{SpeciesIndex: 1})
	s.Insert(center.Add(1, 0), Creature{SpeciesIndex: 2})

	assert.Equal(t, 2, s.CountBySpecies(center, 2, 1))
	assert.Equal(t, 1, s.CountBySpecies(center, 2, 2))
	assert.Equal(t, 3, s.CountBySpecies(center, 5, 1))
}
