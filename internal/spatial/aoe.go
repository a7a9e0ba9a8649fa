package spatial

import (
	"math"

	"github.com/arquebus/battlegrid/internal/platform/errors"
)

// AoEResult is the outcome of an area-of-effect query. Both slices are in
// deterministic order: tiles by (x,y), participants in state order.
type AoEResult struct {
	AffectedTiles        []string `json:"affected_tiles"`
	AffectedParticipants []string `json:"affected_participants"`
}

// CircleTiles enumerates the tiles within radius squares (euclidean) of
// center, clipped to bounds.
func CircleTiles(center Position, radius int, bounds GridBounds) TileSet {
	tiles := TileSet{}
	if radius < 0 {
		return tiles
	}
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			p := Position{X: center.X + dx, Y: center.Y + dy}
			if bounds.Contains(p) {
				tiles.Add(p.Tile())
			}
		}
	}
	return tiles
}

// ConeTiles enumerates the tiles within length squares of origin that fall
// inside the angular sector of angleDegrees centered on the direction from
// origin toward the direction position. The origin tile itself is not part
// of the cone.
func ConeTiles(origin, direction Position, length int, angleDegrees float64, bounds GridBounds) (TileSet, error) {
	ux := float64(direction.X - origin.X)
	uy := float64(direction.Y - origin.Y)
	norm := math.Hypot(ux, uy)
	if norm == 0 {
		return nil, errors.WithMetadata(errors.CodeInvalidAoEShape,
			"cone direction must differ from its origin",
			map[string]string{"reason": "direction equals origin"})
	}
	ux /= norm
	uy /= norm
	cosHalf := math.Cos(angleDegrees / 2 * math.Pi / 180)

	tiles := TileSet{}
	for dx := -length; dx <= length; dx++ {
		for dy := -length; dy <= length; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			dist := math.Hypot(float64(dx), float64(dy))
			if dist > float64(length) {
				continue
			}
			cos := (float64(dx)*ux + float64(dy)*uy) / dist
			if cos < cosHalf-1e-9 {
				continue
			}
			p := Position{X: origin.X + dx, Y: origin.Y + dy}
			if bounds.Contains(p) {
				tiles.Add(p.Tile())
			}
		}
	}
	return tiles, nil
}

// LineTiles traces the tiles along the segment from start to end using a
// supercover walk: whenever the segment crosses a tile corner both
// adjacent tiles are included, so a 45° line stays continuously connected
// instead of skipping between diagonal neighbors.
func LineTiles(start, end Position) []Tile {
	x, y := start.X, start.Y
	dx := end.X - start.X
	dy := end.Y - start.Y
	sx, sy := 1, 1
	if dx < 0 {
		sx = -1
		dx = -dx
	}
	if dy < 0 {
		sy = -1
		dy = -dy
	}

	tiles := []Tile{TileAt(x, y)}
	ix, iy := 0, 0
	for ix < dx || iy < dy {
		decide := (1+2*ix)*dy - (1+2*iy)*dx
		switch {
		case decide == 0:
			// Corner crossing: take both orthogonal neighbors, then
			// step diagonally.
			tiles = append(tiles, TileAt(x+sx, y), TileAt(x, y+sy))
			x += sx
			y += sy
			ix++
			iy++
		case decide < 0:
			x += sx
			ix++
		default:
			y += sy
			iy++
		}
		tiles = append(tiles, TileAt(x, y))
	}
	return tiles
}

// HasLineOfSight reports whether the straight line between the two
// positions is free of static terrain obstacles. Creatures never block
// line of sight, and the endpoint tiles themselves do not interrupt it.
func (s *CombatState) HasLineOfSight(from, to Position) bool {
	startTile := from.Tile()
	endTile := to.Tile()
	for _, t := range LineTiles(from, to) {
		if t == startTile || t == endTile {
			continue
		}
		if s.Terrain.Obstacles.Has(t) {
			return false
		}
	}
	return true
}

// CircleTargets selects the tiles and participants affected by a circular
// area of radiusFeet centered on center.
func (s *CombatState) CircleTargets(center Position, radiusFeet float64, excludeIDs []string) AoEResult {
	area := CircleTiles(center, FeetToSquares(radiusFeet), s.Bounds)
	return s.targetsIn(area, excludeIDs)
}

// ConeTargets selects the tiles and participants affected by a cone of
// lengthFeet and angleDegrees pointing from origin toward direction.
func (s *CombatState) ConeTargets(origin, direction Position, lengthFeet, angleDegrees float64, excludeIDs []string) (AoEResult, error) {
	area, err := ConeTiles(origin, direction, FeetToSquares(lengthFeet), angleDegrees, s.Bounds)
	if err != nil {
		return AoEResult{}, err
	}
	return s.targetsIn(area, excludeIDs), nil
}

// LineTargets selects the tiles and participants affected by the segment
// from start to end.
func (s *CombatState) LineTargets(start, end Position, excludeIDs []string) AoEResult {
	area := TileSet{}
	for _, t := range LineTiles(start, end) {
		if s.Bounds.Contains(Position{X: t.X(), Y: t.Y()}) {
			area.Add(t)
		}
	}
	return s.targetsIn(area, excludeIDs)
}

// targetsIn reports every participant whose footprint intersects the area.
// Any overlapping tile counts, not just the anchor, so a gargantuan
// creature clipped by one corner of a spell is still hit. Participants
// without a position and excluded ids are skipped.
func (s *CombatState) targetsIn(area TileSet, excludeIDs []string) AoEResult {
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	var hit []string
	for _, p := range s.Participants {
		if _, skip := excluded[p.ID]; skip || !p.Placed() {
			continue
		}
		if p.Footprint().Intersects(area) {
			hit = append(hit, p.ID)
		}
	}
	return AoEResult{
		AffectedTiles:        area.Keys(),
		AffectedParticipants: hit,
	}
}
