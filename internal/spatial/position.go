package spatial

import (
	"strconv"

	"github.com/arquebus/battlegrid/internal/platform/errors"
)

// Position is a grid cell coordinate. Z is optional and only checked when
// the grid declares vertical bounds.
type Position struct {
	X int  `json:"x"`
	Y int  `json:"y"`
	Z *int `json:"z,omitempty"`
}

// Tile returns the tile under the position, ignoring elevation.
func (p Position) Tile() Tile {
	return TileAt(p.X, p.Y)
}

// GridBounds defines the legal coordinate space of an encounter grid.
// All limits are inclusive. MinZ/MaxZ are nil for flat grids.
type GridBounds struct {
	MinX int  `json:"min_x"`
	MaxX int  `json:"max_x"`
	MinY int  `json:"min_y"`
	MaxY int  `json:"max_y"`
	MinZ *int `json:"min_z,omitempty"`
	MaxZ *int `json:"max_z,omitempty"`
}

// Contains reports whether p lies inside the bounds, inclusive on every
// axis. The Z axis only participates when both the bounds and the position
// carry elevation.
func (b GridBounds) Contains(p Position) bool {
	if p.X < b.MinX || p.X > b.MaxX {
		return false
	}
	if p.Y < b.MinY || p.Y > b.MaxY {
		return false
	}
	if b.MinZ != nil && b.MaxZ != nil && p.Z != nil {
		if *p.Z < *b.MinZ || *p.Z > *b.MaxZ {
			return false
		}
	}
	return true
}

// ValidatePosition checks p against bounds and returns a descriptive error
// naming the failing axis, the offending value, and the limits. The context
// string ("destination", "current position", ...) prefixes the message.
// Returns nil when the position is legal.
func ValidatePosition(p Position, b GridBounds, context string) error {
	if p.X < b.MinX || p.X > b.MaxX {
		return outOfBounds(context, "x", p.X, b.MinX, b.MaxX)
	}
	if p.Y < b.MinY || p.Y > b.MaxY {
		return outOfBounds(context, "y", p.Y, b.MinY, b.MaxY)
	}
	if b.MinZ != nil && b.MaxZ != nil && p.Z != nil {
		if *p.Z < *b.MinZ || *p.Z > *b.MaxZ {
			return outOfBounds(context, "z", *p.Z, *b.MinZ, *b.MaxZ)
		}
	}
	return nil
}

func outOfBounds(context, axis string, value, min, max int) error {
	return errors.WithMetadata(errors.CodeOutOfBounds,
		context+" "+axis+"="+strconv.Itoa(value)+" is outside grid bounds "+
			strconv.Itoa(min)+".."+strconv.Itoa(max),
		map[string]string{
			"context": context,
			"axis":    axis,
			"value":   strconv.Itoa(value),
			"min":     strconv.Itoa(min),
			"max":     strconv.Itoa(max),
		})
}
