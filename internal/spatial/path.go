package spatial

import (
	"container/heap"
	"math"
)

// FeetPerSquare is the scale of the grid: one tile is a 5 ft square.
const FeetPerSquare = 5.0

// diagonalStepCost is the per-step cost of a diagonal move in squares under
// the alternating 5-10-5 rule: successive diagonals cost 5 ft then 10 ft,
// averaging to 1.5 squares each.
const diagonalStepCost = 1.5

// DiagonalRule selects how diagonal steps are priced by the pathfinder.
type DiagonalRule int

const (
	// DiagonalFiveTenFive prices diagonals at 1.5 squares (5-10-5 rule).
	DiagonalFiveTenFive DiagonalRule = iota
	// DiagonalUniform prices diagonals like orthogonal steps.
	DiagonalUniform
)

func (r DiagonalRule) stepCost() float64 {
	if r == DiagonalUniform {
		return 1
	}
	return diagonalStepCost
}

// PathQuery describes a pathfinding request. Obstacles must already
// exclude the mover's own footprint.
type PathQuery struct {
	Start     Position
	End       Position
	Size      Size
	Obstacles TileSet
	Difficult TileSet
	Bounds    GridBounds
	Diagonal  DiagonalRule
}

// neighborDeltas is the fixed 8-connected expansion order. The order is
// part of the determinism contract: identical queries expand identically.
var neighborDeltas = [8]struct{ dx, dy int }{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// FindPath runs A* over the bounded grid and returns the cheapest path
// from start to end inclusive, or nil when no path exists under the
// current obstacles. A nil result is a valid negative answer, not an
// error.
//
// Every expanded node is validated against the mover's entire footprint,
// not just the anchor tile; a single-tile check would let large creatures
// squeeze through gaps their bodies cannot fit.
func FindPath(q PathQuery) []Position {
	if !q.Bounds.Contains(q.Start) || !q.Bounds.Contains(q.End) {
		return nil
	}

	start := q.Start.Tile()
	goal := q.End.Tile()
	if start == goal {
		return []Position{{X: q.Start.X, Y: q.Start.Y}}
	}
	if footprintBlocked(goal, q.Size, q.Obstacles) {
		return nil
	}

	diag := q.Diagonal.stepCost()
	gScore := map[Tile]float64{start: 0}
	cameFrom := map[Tile]Tile{}
	closed := TileSet{}

	open := &nodeQueue{}
	heap.Init(open)
	heap.Push(open, pathNode{tile: start, f: octile(start, goal, diag)})

	for open.Len() > 0 {
		current := heap.Pop(open).(pathNode)
		if closed.Has(current.tile) {
			continue
		}
		if current.tile == goal {
			return reconstruct(cameFrom, current.tile)
		}
		closed.Add(current.tile)

		cx, cy := current.tile.X(), current.tile.Y()
		for _, d := range neighborDeltas {
			nx, ny := cx+d.dx, cy+d.dy
			next := TileAt(nx, ny)
			if closed.Has(next) {
				continue
			}
			if !q.Bounds.Contains(Position{X: nx, Y: ny}) {
				continue
			}
			if footprintBlocked(next, q.Size, q.Obstacles) {
				continue
			}

			stepBase := 1.0
			if d.dx != 0 && d.dy != 0 {
				stepBase = diag
			}
			if q.Difficult.Has(next) {
				stepBase *= 2
			}

			tentative := gScore[current.tile] + stepBase
			if known, seen := gScore[next]; seen && tentative >= known {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = current.tile
			heap.Push(open, pathNode{tile: next, f: tentative + octile(next, goal, diag)})
		}
	}
	return nil
}

// footprintBlocked checks every tile of a footprint anchored at anchor.
func footprintBlocked(anchor Tile, size Size, obstacles TileSet) bool {
	side := size.FootprintSide()
	ax, ay := anchor.X(), anchor.Y()
	for dx := 0; dx < side; dx++ {
		for dy := 0; dy < side; dy++ {
			if obstacles.Has(TileAt(ax+dx, ay+dy)) {
				return true
			}
		}
	}
	return false
}

// octile is the admissible distance estimate for a grid with orthogonal
// cost 1 and diagonal cost diag (terrain multipliers only increase cost).
func octile(from, to Tile, diag float64) float64 {
	dx := math.Abs(float64(to.X() - from.X()))
	dy := math.Abs(float64(to.Y() - from.Y()))
	return dx + dy + (diag-2)*math.Min(dx, dy)
}

func reconstruct(cameFrom map[Tile]Tile, tile Tile) []Position {
	var reversed []Tile
	for {
		reversed = append(reversed, tile)
		prev, ok := cameFrom[tile]
		if !ok {
			break
		}
		tile = prev
	}
	path := make([]Position, len(reversed))
	for i, t := range reversed {
		path[len(reversed)-1-i] = Position{X: t.X(), Y: t.Y()}
	}
	return path
}

// PathCost returns the movement cost of a path in feet. Each step costs 1
// square orthogonally or 1.5 diagonally, doubled when the step lands on
// difficult terrain, and the total converts at 5 ft per square.
func PathCost(path []Position, difficult TileSet) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		step := 1.0
		if path[i].X != path[i-1].X && path[i].Y != path[i-1].Y {
			step = diagonalStepCost
		}
		if difficult.Has(path[i].Tile()) {
			step *= 2
		}
		total += step
	}
	return total * FeetPerSquare
}

// FeetToSquares converts feet to whole grid squares, rounding down.
func FeetToSquares(feet float64) int {
	return int(math.Floor(feet / FeetPerSquare))
}

// SquaresToFeet converts grid squares to feet.
func SquaresToFeet(squares int) float64 {
	return float64(squares) * FeetPerSquare
}

// pathNode is an open-list entry.
type pathNode struct {
	tile Tile
	f    float64
}

// nodeQueue is a min-heap over f with a deterministic (x,y) tie-break so
// repeated queries on identical input reproduce the same path.
type nodeQueue []pathNode

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].tile.X() != q[j].tile.X() {
		return q[i].tile.X() < q[j].tile.X()
	}
	return q[i].tile.Y() < q[j].tile.Y()
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(pathNode)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	*q = old[:n-1]
	return node
}
