// Package scenario loads battle maps from Lua scripts. A scenario script
// returns a single table describing the grid, its terrain, and the
// participants to seed the encounter with, so map authors can generate
// tile lists with loops instead of hand-writing coordinates.
package scenario

import (
	"fmt"
	"strings"

	lua "github.com/Shopify/go-lua"
	"github.com/arquebus/battlegrid/internal/platform/errors"
	"github.com/arquebus/battlegrid/internal/spatial"
)

// Map is a loaded scenario: a named, fully seeded combat state.
type Map struct {
	Name  string
	State *spatial.CombatState
}

// Load runs the Lua script at path and converts the returned table into a
// Map. The script must return a table with a bounds table (min_x..max_y)
// or width/height, and may add obstacles, difficult, and participants.
func Load(path string) (*Map, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)

	if err := lua.LoadFile(l, path, ""); err != nil {
		return nil, errors.Wrap(errors.CodeScenarioInvalid, "scenario script failed to load", err)
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		return nil, errors.Wrap(errors.CodeScenarioInvalid, "scenario script failed to run", err)
	}
	if l.TypeOf(-1) != lua.TypeTable {
		return nil, errors.New(errors.CodeScenarioInvalid, "scenario script must return a table")
	}

	bounds, err := readBounds(l)
	if err != nil {
		return nil, err
	}
	state := spatial.NewCombatState(bounds)

	for field, set := range map[string]spatial.TileSet{
		"obstacles": state.Terrain.Obstacles,
		"difficult": state.Terrain.DifficultTerrain,
	} {
		tiles, err := readTileList(l, field)
		if err != nil {
			return nil, err
		}
		for _, tile := range tiles {
			set.Add(tile)
		}
	}

	participants, err := readParticipants(l, bounds)
	if err != nil {
		return nil, err
	}
	state.Participants = participants
	if err := validatePlacements(state); err != nil {
		return nil, err
	}

	name, _ := stringField(l, "name")
	return &Map{Name: name, State: state}, nil
}

// readBounds accepts either an explicit bounds table or width/height
// shorthand anchored at the origin.
func readBounds(l *lua.State) (spatial.GridBounds, error) {
	l.Field(-1, "bounds")
	if l.TypeOf(-1) == lua.TypeTable {
		defer l.Pop(1)
		var bounds spatial.GridBounds
		var ok bool
		if bounds.MinX, ok = intField(l, "min_x"); !ok {
			return bounds, missingField("bounds.min_x")
		}
		if bounds.MaxX, ok = intField(l, "max_x"); !ok {
			return bounds, missingField("bounds.max_x")
		}
		if bounds.MinY, ok = intField(l, "min_y"); !ok {
			return bounds, missingField("bounds.min_y")
		}
		if bounds.MaxY, ok = intField(l, "max_y"); !ok {
			return bounds, missingField("bounds.max_y")
		}
		if v, ok := intField(l, "min_z"); ok {
			bounds.MinZ = &v
		}
		if v, ok := intField(l, "max_z"); ok {
			bounds.MaxZ = &v
		}
		return bounds, validateBounds(bounds)
	}
	l.Pop(1)

	width, wok := intField(l, "width")
	height, hok := intField(l, "height")
	if !wok || !hok {
		return spatial.GridBounds{}, errors.New(errors.CodeScenarioInvalid,
			"scenario must define a bounds table or width and height")
	}
	if width < 1 || height < 1 {
		return spatial.GridBounds{}, errors.WithMetadata(errors.CodeScenarioInvalid,
			"scenario width and height must be at least 1",
			map[string]string{"width": fmt.Sprint(width), "height": fmt.Sprint(height)})
	}
	return spatial.GridBounds{MaxX: width - 1, MaxY: height - 1}, nil
}

func validateBounds(bounds spatial.GridBounds) error {
	if bounds.MaxX < bounds.MinX || bounds.MaxY < bounds.MinY {
		return errors.New(errors.CodeScenarioInvalid, "scenario bounds are inverted")
	}
	if bounds.MinZ != nil && bounds.MaxZ != nil && *bounds.MaxZ < *bounds.MinZ {
		return errors.New(errors.CodeScenarioInvalid, "scenario bounds are inverted")
	}
	return nil
}

// readTileList reads an array field of {x, y} pairs from the scenario
// table at the top of the stack.
func readTileList(l *lua.State, field string) ([]spatial.Tile, error) {
	l.Field(-1, field)
	defer l.Pop(1)
	switch l.TypeOf(-1) {
	case lua.TypeNil:
		return nil, nil
	case lua.TypeTable:
	default:
		return nil, errors.New(errors.CodeScenarioInvalid,
			fmt.Sprintf("scenario field %q must be a list of {x, y} pairs", field))
	}

	count := l.RawLength(-1)
	tiles := make([]spatial.Tile, 0, count)
	for i := 1; i <= count; i++ {
		l.RawGetInt(-1, i)
		if l.TypeOf(-1) != lua.TypeTable {
			l.Pop(1)
			return nil, errors.New(errors.CodeScenarioInvalid,
				fmt.Sprintf("scenario field %q entry %d is not an {x, y} pair", field, i))
		}
		x, xok := indexInt(l, 1)
		y, yok := indexInt(l, 2)
		l.Pop(1)
		if !xok || !yok {
			return nil, errors.New(errors.CodeScenarioInvalid,
				fmt.Sprintf("scenario field %q entry %d is not an {x, y} pair", field, i))
		}
		tiles = append(tiles, spatial.TileAt(x, y))
	}
	return tiles, nil
}

func readParticipants(l *lua.State, bounds spatial.GridBounds) ([]*spatial.Participant, error) {
	l.Field(-1, "participants")
	defer l.Pop(1)
	switch l.TypeOf(-1) {
	case lua.TypeNil:
		return nil, nil
	case lua.TypeTable:
	default:
		return nil, errors.New(errors.CodeScenarioInvalid,
			"scenario field \"participants\" must be a list of tables")
	}

	count := l.RawLength(-1)
	participants := make([]*spatial.Participant, 0, count)
	seen := make(map[string]bool, count)
	for i := 1; i <= count; i++ {
		l.RawGetInt(-1, i)
		if l.TypeOf(-1) != lua.TypeTable {
			l.Pop(1)
			return nil, errors.New(errors.CodeScenarioInvalid,
				fmt.Sprintf("scenario participant %d is not a table", i))
		}
		p, err := readParticipant(l, i, bounds)
		l.Pop(1)
		if err != nil {
			return nil, err
		}
		if seen[p.ID] {
			return nil, errors.WithMetadata(errors.CodeScenarioInvalid,
				"scenario participant ids must be unique",
				map[string]string{"participant_id": p.ID})
		}
		seen[p.ID] = true
		participants = append(participants, p)
	}
	return participants, nil
}

// readParticipant converts the participant table at the top of the stack.
// Placed participants are bounds-checked here so a bad map fails at load
// time instead of mid-encounter.
func readParticipant(l *lua.State, index int, bounds spatial.GridBounds) (*spatial.Participant, error) {
	id, _ := stringField(l, "id")
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New(errors.CodeScenarioInvalid,
			fmt.Sprintf("scenario participant %d is missing an id", index))
	}

	sizeLabel, _ := stringField(l, "size")
	size, err := spatial.ParseSize(sizeLabel)
	if err != nil {
		return nil, errors.Wrap(errors.CodeScenarioInvalid,
			fmt.Sprintf("scenario participant %q has an invalid size", id), err)
	}

	p := &spatial.Participant{ID: id, Size: size, MovementSpeed: spatial.DefaultSpeedFeet, HP: 1}
	if hp, ok := intField(l, "hp"); ok {
		p.HP = hp
	}
	if speed, ok := numberField(l, "speed"); ok {
		if speed < 0 {
			return nil, errors.New(errors.CodeScenarioInvalid,
				fmt.Sprintf("scenario participant %q has a negative speed", id))
		}
		p.MovementSpeed = speed
	}
	p.IsEnemy = boolField(l, "enemy")

	x, xok := intField(l, "x")
	y, yok := intField(l, "y")
	if xok != yok {
		return nil, errors.New(errors.CodeScenarioInvalid,
			fmt.Sprintf("scenario participant %q must set both x and y or neither", id))
	}
	if xok {
		pos := &spatial.Position{X: x, Y: y}
		if z, ok := intField(l, "z"); ok {
			pos.Z = &z
		}
		if err := spatial.ValidatePosition(*pos, bounds, "participant "+id); err != nil {
			return nil, err
		}
		p.Position = pos
	}
	return p, nil
}

// validatePlacements checks spawns the way token placement does: a placed
// participant may not overlap static obstacles or a live participant spawned
// before it. Footprints of defeated spawns stay passable.
func validatePlacements(state *spatial.CombatState) error {
	occupied := spatial.TileSet{}
	occupied.AddAll(state.Terrain.Obstacles)
	for _, p := range state.Participants {
		if !p.Placed() {
			continue
		}
		if spatial.IsBlocked(*p.Position, p.Size, occupied) {
			return errors.WithMetadata(errors.CodeScenarioInvalid,
				fmt.Sprintf("scenario participant %q spawns on an occupied tile", p.ID),
				map[string]string{"participant_id": p.ID, "tile": p.Position.Tile().Key()})
		}
		if p.HP > 0 {
			occupied.AddAll(p.Footprint())
		}
	}
	return nil
}

func stringField(l *lua.State, name string) (string, bool) {
	l.Field(-1, name)
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeString {
		return "", false
	}
	value, ok := l.ToString(-1)
	return value, ok
}

func intField(l *lua.State, name string) (int, bool) {
	l.Field(-1, name)
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeNumber {
		return 0, false
	}
	value, ok := l.ToInteger(-1)
	return value, ok
}

func numberField(l *lua.State, name string) (float64, bool) {
	l.Field(-1, name)
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeNumber {
		return 0, false
	}
	value, ok := l.ToNumber(-1)
	return value, ok
}

func boolField(l *lua.State, name string) bool {
	l.Field(-1, name)
	defer l.Pop(1)
	return l.TypeOf(-1) == lua.TypeBoolean && l.ToBoolean(-1)
}

func indexInt(l *lua.State, i int) (int, bool) {
	l.RawGetInt(-1, i)
	defer l.Pop(1)
	if l.TypeOf(-1) != lua.TypeNumber {
		return 0, false
	}
	value, ok := l.ToInteger(-1)
	return value, ok
}

func missingField(name string) error {
	return errors.New(errors.CodeScenarioInvalid,
		fmt.Sprintf("scenario is missing required field %q", name))
}
