// Package scenario validates Lua battle maps from the command line.
package scenario

import (
	"flag"
	"fmt"
	"io"

	"github.com/arquebus/battlegrid/internal/scenario"
)

// Run loads every scenario file named in args and writes a one-line
// summary per map. The first invalid map stops the run.
func Run(fs *flag.FlagSet, args []string, out io.Writer) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		return fmt.Errorf("usage: scenario <map.lua> [map.lua ...]")
	}

	for _, file := range files {
		m, err := scenario.Load(file)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		bounds := m.State.Bounds
		fmt.Fprintf(out, "%s: %q grid %d..%d x %d..%d, %d participants, %d obstacles, %d difficult\n",
			file, m.Name,
			bounds.MinX, bounds.MaxX, bounds.MinY, bounds.MaxY,
			len(m.State.Participants),
			len(m.State.Terrain.Obstacles),
			len(m.State.Terrain.DifficultTerrain))
	}
	return nil
}
