package ecotile

import "testing"

func TestManhattan(t *testing.T) {
	cases := []struct {
		a, b Position
		want int64
	}{
		{Position{0, 0}, Position{0, 0}, 0},
		{Position{0, 0}, Position{3, 4}, 7},
		{Position{-3, -4}, Position{3, 4}, 14},
	}
	for _, c := range cases {
		if got := c.a.Manhattan(c.b); got != c.want {
			t.Errorf("Manhattan(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestMediumOf(t *testing.T) {
	aquatic := []TileType{DeepWater, Water}
	terrestrial := []TileType{Sand, Dirt, Rock, Snow}
	for _, tt := range aquatic {
		if MediumOf(tt) != Aquatic {
			t.Errorf("MediumOf(%v) should be Aquatic", tt)
		}
	}
	for _, tt := range terrestrial {
		if MediumOf(tt) != Terrestrial {
			t.Errorf("MediumOf(%v) should be Terrestrial", tt)
		}
	}
}

func TestBlockOf(t *testing.T) {
	cases := []struct {
		p         Position
		wantBlock BlockCoord
		wantX     int
		wantY     int
	}{
		{Position{0, 0}, BlockCoord{0, 0}, 0, 0},
		{Position{63, 63}, BlockCoord{0, 0}, 63, 63},
		{Position{64, 64}, BlockCoord{1, 1}, 0, 0},
		{Position{-1, -1}, BlockCoord{-1, -1}, 63, 63},
		{Position{-64, 0}, BlockCoord{0, -1}, 0, 0},
		{Position{-65, 0}, BlockCoord{0, -2}, 63, 0},
	}
	for _, c := range cases {
		block, x, y := BlockOf(c.p)
		if block != c.wantBlock || x != c.wantX || y != c.wantY {
			t.Errorf("BlockOf(%v) = (%v, %d, %d), want (%v, %d, %d)",
				c.p, block, x, y, c.wantBlock, c.wantX, c.wantY)
		}
	}
}

func TestTileTypeValid(t *testing.T) {
	if !Snow.IsValid() {
		t.Error("Snow should be valid")
	}
	if TileType(6).IsValid() {
		t.Error("TileType(6) should be invalid")
	}
}
