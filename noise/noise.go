// Package noise is the terrain generator (C2): a pure function from block
// coordinates to a TerrainBlock, built on 2-D Perlin noise whose gradient
// vectors are shared across adjacent blocks so the tiling is seamless.
//
// This replaces the earlier permutation-table Perlin implementation
// (Noise1D/2D/3D and octave combinators keyed off Ken Perlin's reference
// permutation table) with the seam-consistent scheme the simulator
// actually needs: gradients live on a per-block grid, and a block
// borrows the gradients along its bottom row and right column from its
// neighbours' own seeded streams rather than owning a global, shared
// permutation table. That borrowing is grounded directly on
// original_source/src/map_generator.cpp's seedRNG/getGradient dance. A
// global permutation table can't give two independently-requested blocks
// agreeing values along a shared edge; per-block reseeding can.
package noise

import (
	"math"

	ecotile "github.com/rubinda/ecotile"
	"github.com/rubinda/ecotile/randsrc"
)

// gridPoints is the number of gradient-grid nodes along one edge of a
// block: one per GridSize-aligned line, plus the trailing boundary shared
// with the next block.
const gridPoints = ecotile.BlockSize/ecotile.GridSize + 1

// gradient is a unit vector assigned to a gradient-grid node.
type gradient struct {
	x, y float64
}

// Generator produces TerrainBlock values for a fixed world seed. It is not
// safe for concurrent use: Generate reseeds and advances a single internal
// PRNG stream per call.
type Generator struct {
	worldSeed int64
	seam      *randsrc.SeamSource
}

// NewGenerator returns a terrain generator for the given world seed.
func NewGenerator(worldSeed int64) *Generator {
	return &Generator{worldSeed: worldSeed, seam: randsrc.NewSeamSource()}
}

// blockSeed derives the seed used for block (row, col), folding zero and
// negative coordinates into even values and positive ones into odd values so
// the mapping stays injective, then mixes in the world seed.
func (g *Generator) blockSeed(row, col int64) int64 {
	fold := func(n int64) int64 {
		if n <= 0 {
			return -n * 2
		}
		return n*2 - 1
	}
	rowPart := fold(row)
	colPart := fold(col)
	return (rowPart<<16 | colPart) ^ g.worldSeed
}

// seedFor reseeds the seam source for block (row, col) and discards the
// first 3 draws, since the first values out of two similarly-derived seeds
// otherwise correlate too strongly.
func (g *Generator) seedFor(row, col int64) {
	g.seam.Seed(g.blockSeed(row, col), 3)
}

// nextGradient draws a unit vector with a fair-coin flip deciding the sign
// of the y component.
func (g *Generator) nextGradient() gradient {
	u := g.seam.Float64()
	v := math.Sqrt(1 - u*u)
	if g.seam.CoinFlip() {
		v = -v
	}
	return gradient{x: u, y: v}
}

// discardGradients draws and discards n gradients, used to skip over the
// portion of a neighbour's stream that it keeps for itself.
func (g *Generator) discardGradients(n int) {
	for i := 0; i < n; i++ {
		g.nextGradient()
	}
}

// Generate returns the terrain block at block coordinate (row, col). It is
// deterministic in the generator's world seed: the same (row, col) always
// yields the same block, independent of call order or of whatever blocks
// were generated before it, and agrees with its neighbours along shared
// edges.
func (g *Generator) Generate(row, col int64) ecotile.TerrainBlock {
	grads := g.gradientGrid(row, col)

	var block ecotile.TerrainBlock
	for y := 0; y < ecotile.BlockSize; y++ {
		for x := 0; x < ecotile.BlockSize; x++ {
			block[y][x] = tileAt(grads, x, y)
		}
	}
	return block
}

// gradientGrid computes the full gridPoints x gridPoints gradient grid for
// block (row, col). The bottom row and right column are borrowed from the
// corresponding neighbour's own seeded stream, which is what makes the
// corner and edge gradients identical between adjacent blocks: the
// same gradient value is what both sides place at the shared boundary.
func (g *Generator) gradientGrid(row, col int64) [gridPoints][gridPoints]gradient {
	const size = gridPoints
	var grads [size][size]gradient

	// Bottom row borrowed from the block below: its own seeding phase will
	// draw these same gradients first for its top row.
	g.seedFor(row+1, col)
	for j := 0; j < size-1; j++ {
		grads[size-1][j] = g.nextGradient()
	}
	// Bottom-right corner borrowed from the block below-and-right.
	g.seedFor(row+1, col+1)
	grads[size-1][size-1] = g.nextGradient()

	// Right column borrowed from the block to the right: its top-left
	// gradient comes first, then its own top row's remaining draws are
	// skipped, then its left column's interior gradients.
	g.seedFor(row, col+1)
	grads[0][size-1] = g.nextGradient()
	g.discardGradients(size - 2)
	for i := 1; i < size-1; i++ {
		grads[i][size-1] = g.nextGradient()
	}

	// Everything else comes from this block's own seed: the top row
	// first, since a neighbour above would borrow it, then the remaining
	// interior, column by column.
	g.seedFor(row, col)
	for j := 0; j < size-1; j++ {
		grads[0][j] = g.nextGradient()
	}
	for j := 0; j < size-1; j++ {
		for i := 1; i < size-1; i++ {
			grads[i][j] = g.nextGradient()
		}
	}

	return grads
}

func lerp(a, b, w float64) float64 { return (1-w)*a + w*b }

// tileAt computes the Perlin value at tile (x, y) within a block from its
// surrounding gradient-grid corners and remaps it to a TileType.
func tileAt(grads [gridPoints][gridPoints]gradient, x, y int) ecotile.TileType {
	px := float64(x) / ecotile.GridSize
	py := float64(y) / ecotile.GridSize
	left := x / ecotile.GridSize
	top := y / ecotile.GridSize

	dx := px - float64(left)
	dy := py - float64(top)

	dot := func(gx, gy float64, grad gradient) float64 { return gx*grad.x + gy*grad.y }

	n00 := dot(dx, dy, grads[top][left])
	n10 := dot(dx-1, dy, grads[top][left+1])
	n01 := dot(dx, dy-1, grads[top+1][left])
	n11 := dot(dx-1, dy-1, grads[top+1][left+1])

	topAvg := lerp(n00, n10, dx)
	bottomAvg := lerp(n01, n11, dx)
	v := lerp(topAvg, bottomAvg, dy)

	v = v*5 + 2.5
	switch {
	case v < 0:
		v = 0
	case v >= 6:
		v = 5.999
	}
	return ecotile.TileType(v)
}
