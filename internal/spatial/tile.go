// Package spatial implements the grid-based combat engine: bounds and
// collision checks, A* pathfinding with terrain costs, per-turn movement
// budgets, and area-of-effect geometry. The package is pure computation;
// it performs no I/O and no locking, and each CombatState is owned by a
// single Manager for the lifetime of an encounter.
package spatial

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/arquebus/battlegrid/internal/platform/errors"
)

// Tile is a grid coordinate packed into a single integer so tile sets can
// be plain map keys. The canonical "x,y" string form only appears at the
// serialization boundary.
type Tile int64

// TileAt packs a coordinate pair into a Tile.
func TileAt(x, y int) Tile {
	return Tile(int64(x)<<32 | int64(uint32(int32(y))))
}

// X returns the tile column.
func (t Tile) X() int {
	return int(int32(t >> 32))
}

// Y returns the tile row.
func (t Tile) Y() int {
	return int(int32(t))
}

// Key returns the canonical "x,y" wire form of the tile.
func (t Tile) Key() string {
	return strconv.Itoa(t.X()) + "," + strconv.Itoa(t.Y())
}

// ParseTileKey parses a canonical "x,y" key into a Tile.
func ParseTileKey(key string) (Tile, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 2 {
		return 0, errors.WithMetadata(errors.CodeInvalidTileKey,
			"tile key "+strconv.Quote(key)+" is not an x,y pair",
			map[string]string{"key": key})
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, errors.WithMetadata(errors.CodeInvalidTileKey,
			"tile key "+strconv.Quote(key)+" has a non-integer x",
			map[string]string{"key": key})
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.WithMetadata(errors.CodeInvalidTileKey,
			"tile key "+strconv.Quote(key)+" has a non-integer y",
			map[string]string{"key": key})
	}
	return TileAt(x, y), nil
}

// TileSet is a set of tiles.
type TileSet map[Tile]struct{}

// NewTileSet creates a set from the given tiles.
func NewTileSet(tiles ...Tile) TileSet {
	set := make(TileSet, len(tiles))
	for _, t := range tiles {
		set[t] = struct{}{}
	}
	return set
}

// TileSetFromKeys parses a slice of "x,y" keys into a set.
func TileSetFromKeys(keys []string) (TileSet, error) {
	set := make(TileSet, len(keys))
	for _, key := range keys {
		tile, err := ParseTileKey(key)
		if err != nil {
			return nil, err
		}
		set[tile] = struct{}{}
	}
	return set, nil
}

// Add inserts a tile into the set.
func (s TileSet) Add(t Tile) {
	s[t] = struct{}{}
}

// Has reports whether the set contains t.
func (s TileSet) Has(t Tile) bool {
	_, ok := s[t]
	return ok
}

// AddAll inserts every tile of other into the set.
func (s TileSet) AddAll(other TileSet) {
	for t := range other {
		s[t] = struct{}{}
	}
}

// Intersects reports whether the two sets share at least one tile.
func (s TileSet) Intersects(other TileSet) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for t := range small {
		if large.Has(t) {
			return true
		}
	}
	return false
}

// Keys returns the canonical "x,y" keys of the set, ordered by (x,y) so
// identical sets always serialize identically.
func (s TileSet) Keys() []string {
	tiles := make([]Tile, 0, len(s))
	for t := range s {
		tiles = append(tiles, t)
	}
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].X() != tiles[j].X() {
			return tiles[i].X() < tiles[j].X()
		}
		return tiles[i].Y() < tiles[j].Y()
	})
	keys := make([]string, len(tiles))
	for i, t := range tiles {
		keys[i] = t.Key()
	}
	return keys
}

// MarshalJSON serializes the set as a sorted array of "x,y" keys.
func (s TileSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}

// UnmarshalJSON parses an array of "x,y" keys.
func (s *TileSet) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	set, err := TileSetFromKeys(keys)
	if err != nil {
		return err
	}
	*s = set
	return nil
}
