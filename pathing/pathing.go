// Package pathing is the pathfinder (C5) and reachability enumerator
// (C6). The A* search keeps the original container/heap-based open list
// shape (an index map plus a backing slice, with Less/Swap/Len/Push/Pop
// and an update-in-place decrease-key), generalised from 8-neighbour/
// Euclidean/surface-name costs to a 4-neighbour/Manhattan/TileType cost
// table, with FIFO tie-breaking and a nearest-reachable fallback when the
// destination is unreachable within the cached region.
package pathing

import (
	"container/heap"

	"github.com/rubinda/ecotile/catalog"
	"github.com/rubinda/ecotile/world"

	ecotile "github.com/rubinda/ecotile"
)

// Terrain is the subset of terrain.Cache the pathfinder needs: whether a
// position is currently materialised, and its tile type. Kept as a local
// interface so this package does not need to import terrain directly.
type Terrain interface {
	IsCached(pos ecotile.Position) bool
	TileAt(pos ecotile.Position) ecotile.TileType
}

var directions4 = [4]ecotile.Position{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

// moveCost returns the movement cost of entering a tile of the given
// type for a creature of the given medium, and whether it is passable at
// all (cost table).
func moveCost(tile ecotile.TileType, medium ecotile.Medium) (cost float64, passable bool) {
	if medium == ecotile.Aquatic {
		switch tile {
		case ecotile.DeepWater:
			return 3, true
		case ecotile.Water:
			return 1, true
		default:
			return 0, false
		}
	}
	switch tile {
	case ecotile.Sand:
		return 1, true
	case ecotile.Dirt:
		return 1, true
	case ecotile.Rock:
		return 4, true
	case ecotile.Snow:
		return 2, true
	default:
		return 0, false
	}
}

// AStar is the pathfinder. It holds no mutable search state between
// calls; every field is read-only configuration.
type AStar struct {
	Terrain Terrain
}

// NewAStar returns a pathfinder querying t for cache membership and tile
// types.
func NewAStar(t Terrain) *AStar {
	return &AStar{Terrain: t}
}

type searchNode struct {
	pos    ecotile.Position
	parent *searchNode
	gScore float64
	fScore float64
	seq    int
}

// openQueue is the A* open list: a binary heap ordered by fScore, with
// insertion sequence as the FIFO tie-breaker, plus a position index for
// O(log n) decrease-key updates.
type openQueue struct {
	indexOf map[ecotile.Position]int
	nodes   []*searchNode
}

func (q *openQueue) Len() int { return len(q.nodes) }

func (q *openQueue) Less(i, j int) bool {
	if q.nodes[i].fScore != q.nodes[j].fScore {
		return q.nodes[i].fScore < q.nodes[j].fScore
	}
	return q.nodes[i].seq < q.nodes[j].seq
}

func (q *openQueue) Swap(i, j int) {
	q.indexOf[q.nodes[i].pos] = j
	q.indexOf[q.nodes[j].pos] = i
	q.nodes[i], q.nodes[j] = q.nodes[j], q.nodes[i]
}

func (q *openQueue) Push(x interface{}) {
	n := x.(*searchNode)
	q.indexOf[n.pos] = len(q.nodes)
	q.nodes = append(q.nodes, n)
}

func (q *openQueue) Pop() interface{} {
	n := q.nodes[len(q.nodes)-1]
	q.nodes = q.nodes[:len(q.nodes)-1]
	delete(q.indexOf, n.pos)
	return n
}

// GetPath searches for a path from `from` to `to` restricted to tiles of
// medium m, 4-connected, within the currently cached region. If `to`
// cannot be reached, the returned path instead ends at the cached,
// reachable position with the smallest Manhattan distance to `to`, and ok
// is false. The path always includes both endpoints, start first.
func (a *AStar) GetPath(from, to ecotile.Position, m ecotile.Medium) (path []ecotile.Position, ok bool) {
	open := &openQueue{indexOf: map[ecotile.Position]int{}}
	heap.Init(open)
	closed := map[ecotile.Position]bool{}
	byPos := map[ecotile.Position]*searchNode{}
	seq := 0

	start := &searchNode{pos: from, gScore: 0, fScore: float64(from.Manhattan(to)), seq: seq}
	seq++
	byPos[from] = start
	heap.Push(open, start)

	var best *searchNode
	bestDist := int64(-1)

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)
		if closed[current.pos] {
			continue
		}
		closed[current.pos] = true

		if d := current.pos.Manhattan(to); bestDist == -1 || d < bestDist {
			bestDist = d
			best = current
		}

		if current.pos == to {
			return reconstruct(current), true
		}

		for _, dir := range directions4 {
			np := current.pos.Add(dir.X, dir.Y)
			if closed[np] {
				continue
			}
			if !a.Terrain.IsCached(np) {
				continue
			}
			cost, passable := moveCost(a.Terrain.TileAt(np), m)
			if !passable {
				continue
			}

			g := current.gScore + cost
			if existing, ok := byPos[np]; ok {
				if g < existing.gScore {
					existing.gScore = g
					existing.fScore = g + float64(np.Manhattan(to))
					existing.parent = current
					if idx, inOpen := open.indexOf[np]; inOpen {
						heap.Fix(open, idx)
					}
				}
				continue
			}

			n := &searchNode{pos: np, parent: current, gScore: g, fScore: g + float64(np.Manhattan(to)), seq: seq}
			seq++
			byPos[np] = n
			heap.Push(open, n)
		}
	}

	if best == nil {
		return nil, false
	}
	return reconstruct(best), false
}

func reconstruct(n *searchNode) []ecotile.Position {
	var rev []ecotile.Position
	for cur := n; cur != nil; cur = cur.parent {
		rev = append(rev, cur.pos)
	}
	path := make([]ecotile.Position, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// ReachablePositions is the reachability enumerator (C6): a BFS over
// 4-neighbours constrained to the cached region and to tiles of the same
// medium as start. The result contains start first, then every other
// position reachable by a shortest path of length <= maxDist, each once.
func ReachablePositions(t Terrain, start ecotile.Position, maxDist int64, medium ecotile.Medium) []ecotile.Position {
	span := int(2*maxDist + 1)
	visited := make([]bool, span*span)
	idx := func(dx, dy int64) int {
		return int(dy+maxDist)*span + int(dx+maxDist)
	}

	type bfsNode struct {
		pos  ecotile.Position
		dist int64
	}
	queue := []bfsNode{{start, 0}}
	visited[idx(0, 0)] = true
	out := []ecotile.Position{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.dist == maxDist {
			continue
		}
		for _, dir := range directions4 {
			np := cur.pos.Add(dir.X, dir.Y)
			dx, dy := np.X-start.X, np.Y-start.Y
			if dx < -maxDist || dx > maxDist || dy < -maxDist || dy > maxDist {
				continue
			}
			if visited[idx(dx, dy)] {
				continue
			}
			if !t.IsCached(np) || ecotile.MediumOf(t.TileAt(np)) != medium {
				continue
			}
			visited[idx(dx, dy)] = true
			out = append(out, np)
			queue = append(queue, bfsNode{np, cur.dist + 1})
		}
	}
	return out
}

// FindFood runs a bounded prey search: a BFS from start that accumulates
// every prey candidate found at the first depth any are seen, then stops
// without exploring deeper. eco is the searching animal's own ecology,
// used to pick the prey predicate (herbivores hunt plants, carnivores
// hunt herbivores).
func FindFood(t Terrain, store *world.Store, cat *catalog.Catalog, start ecotile.Position, maxDist int64, medium ecotile.Medium, eco catalog.Ecology) (positions []ecotile.Position, distance int64, found bool) {
	isPrey := func(c world.Creature) bool {
		preyEco := cat.Get(c.SpeciesIndex).Ecology
		if eco.IsHerbivore() {
			return preyEco.IsPlant()
		}
		return preyEco.IsHerbivore()
	}
	hasPreyAt := func(pos ecotile.Position) bool {
		for _, h := range store.EqualRange(pos) {
			if c, ok := store.Get(h); ok && isPrey(c) {
				return true
			}
		}
		return false
	}

	span := int(2*maxDist + 1)
	visited := make([]bool, span*span)
	idx := func(dx, dy int64) int { return int(dy+maxDist)*span + int(dx+maxDist) }

	type bfsNode struct {
		pos  ecotile.Position
		dist int64
	}
	queue := []bfsNode{{start, 0}}
	visited[idx(0, 0)] = true

	foundDist := int64(-1)
	var foundPositions []ecotile.Position

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if foundDist != -1 && cur.dist > foundDist {
			break
		}
		if hasPreyAt(cur.pos) {
			if foundDist == -1 {
				foundDist = cur.dist
			}
			foundPositions = append(foundPositions, cur.pos)
		}
		if foundDist != -1 || cur.dist == maxDist {
			continue
		}
		for _, dir := range directions4 {
			np := cur.pos.Add(dir.X, dir.Y)
			dx, dy := np.X-start.X, np.Y-start.Y
			if dx < -maxDist || dx > maxDist || dy < -maxDist || dy > maxDist {
				continue
			}
			if visited[idx(dx, dy)] {
				continue
			}
			if !t.IsCached(np) || ecotile.MediumOf(t.TileAt(np)) != medium {
				continue
			}
			visited[idx(dx, dy)] = true
			queue = append(queue, bfsNode{np, cur.dist + 1})
		}
	}

	if foundDist == -1 {
		return nil, 0, false
	}
	return foundPositions, foundDist, true
}
