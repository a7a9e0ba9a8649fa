package spatial

import "github.com/arquebus/battlegrid/internal/platform/errors"

// Size is a creature size category.
type Size string

const (
	SizeTiny       Size = "tiny"
	SizeSmall      Size = "small"
	SizeMedium     Size = "medium"
	SizeLarge      Size = "large"
	SizeHuge       Size = "huge"
	SizeGargantuan Size = "gargantuan"
)

// ParseSize validates a size label. An empty label defaults to medium so
// callers omitting the field get a 1-tile footprint.
func ParseSize(label string) (Size, error) {
	switch Size(label) {
	case SizeTiny, SizeSmall, SizeMedium, SizeLarge, SizeHuge, SizeGargantuan:
		return Size(label), nil
	case "":
		return SizeMedium, nil
	}
	return "", errors.WithMetadata(errors.CodeInvalidSize,
		label+" is not a valid creature size",
		map[string]string{"size": label})
}

// FootprintSide returns the side length in tiles of the square footprint
// for the size category. Medium and smaller creatures occupy a single tile.
func (s Size) FootprintSide() int {
	switch s {
	case SizeLarge:
		return 2
	case SizeHuge:
		return 3
	case SizeGargantuan:
		return 4
	default:
		return 1
	}
}

// OccupiedTiles returns the side×side block of tiles a creature of the
// given size occupies when anchored at pos.
func OccupiedTiles(pos Position, size Size) TileSet {
	side := size.FootprintSide()
	tiles := make(TileSet, side*side)
	for dx := 0; dx < side; dx++ {
		for dy := 0; dy < side; dy++ {
			tiles.Add(TileAt(pos.X+dx, pos.Y+dy))
		}
	}
	return tiles
}
