package terrain

import (
	"testing"

	ecotile "github.com/rubinda/ecotile"
	"github.com/rubinda/ecotile/noise"
)

func TestIsCachedBeforeFirstEnsure(t *testing.T) {
	c := NewCache(noise.NewGenerator(1))
	if c.IsCached(ecotile.Position{X: 0, Y: 0}) {
		t.Fatal("nothing should be cached before the first EnsureCached call")
	}
}

func TestEnsureCachedCoversViewport(t *testing.T) {
	c := NewCache(noise.NewGenerator(1))
	c.EnsureCached(0, 0, ecotile.BlockSize, ecotile.BlockSize)
	if c.anchor != (ecotile.BlockCoord{Row: 0, Col: 0}) {
		t.Fatalf("anchor = %v, want (0,0)", c.anchor)
	}
	for _, p := range []ecotile.Position{{X: 0, Y: 0}, {X: 127, Y: 127}, {X: 64, Y: 0}} {
		if !c.IsCached(p) {
			t.Errorf("expected %v to be cached", p)
		}
	}
	if c.IsCached(ecotile.Position{X: 200, Y: 200}) {
		t.Error("position far outside the window should not be cached")
	}
}

// TestScrollReuseRightByOne reproduces the canonical scroll-reuse scenario:
// a pure one-block rightward scroll reuses the old TR and BR blocks as the
// new TL and BL, regenerating only the new TR and BR, and the freshly
// generated blocks are bit-identical to what direct regeneration produces.
func TestScrollReuseRightByOne(t *testing.T) {
	c := NewCache(noise.NewGenerator(99))
	c.EnsureCached(0, 0, ecotile.BlockSize, ecotile.BlockSize)

	oldTR := c.slots[slotTR].block
	oldBR := c.slots[slotBR].block

	c.EnsureCached(ecotile.BlockSize+1, 0, ecotile.BlockSize, ecotile.BlockSize)

	if c.anchor != (ecotile.BlockCoord{Row: 0, Col: 1}) {
		t.Fatalf("anchor after right scroll = %v, want (0,1)", c.anchor)
	}
	if c.slots[slotTL].block != oldTR {
		t.Error("new TL should reuse the old TR block")
	}
	if c.slots[slotBL].block != oldBR {
		t.Error("new BL should reuse the old BR block")
	}

	ref := noise.NewGenerator(99)
	wantTR := ref.Generate(0, 2)
	wantBR := ref.Generate(1, 2)
	if c.slots[slotTR].block != wantTR {
		t.Error("freshly generated TR does not match direct regeneration")
	}
	if c.slots[slotBR].block != wantBR {
		t.Error("freshly generated BR does not match direct regeneration")
	}
}

func TestScrollReuseDiagonal(t *testing.T) {
	c := NewCache(noise.NewGenerator(5))
	c.EnsureCached(ecotile.BlockSize, ecotile.BlockSize, ecotile.BlockSize, ecotile.BlockSize)
	startAnchor := c.anchor

	oldTL := c.slots[slotTL].block

	// Scroll the viewport one block up-and-left.
	c.EnsureCached(0, 0, ecotile.BlockSize, ecotile.BlockSize)

	wantAnchor := ecotile.BlockCoord{Row: startAnchor.Row - 1, Col: startAnchor.Col - 1}
	if c.anchor != wantAnchor {
		t.Fatalf("anchor = %v, want %v", c.anchor, wantAnchor)
	}
	if c.slots[slotBR].block != oldTL {
		t.Error("new BR should reuse the old TL block on a (-1,-1) scroll")
	}
}

func TestLargeJumpRegeneratesEverything(t *testing.T) {
	c := NewCache(noise.NewGenerator(3))
	c.EnsureCached(0, 0, ecotile.BlockSize, ecotile.BlockSize)
	far := int64(50) * ecotile.BlockSize
	c.EnsureCached(far, far, ecotile.BlockSize, ecotile.BlockSize)
	for s := slotIndex(0); s < numSlots; s++ {
		if !c.slots[s].valid {
			t.Fatalf("slot %d should be valid after regeneration", s)
		}
	}
	if c.anchor.Row < 49 || c.anchor.Col < 49 {
		t.Fatalf("anchor %v did not move to the new viewport", c.anchor)
	}
}

func TestTileAtPanicsWhenUncached(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("TileAt on an uncached position should panic")
		}
	}()
	c := NewCache(noise.NewGenerator(1))
	c.TileAt(ecotile.Position{X: 1000, Y: 1000})
}
