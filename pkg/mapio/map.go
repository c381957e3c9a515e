// Package mapio parses the ASCII map and scenario file formats search
// queries are driven from, derives the cache file paths associated with a
// map, and builds a graph.FlatGraph out of a parsed map's pathable cells.
package mapio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// pathableChars lists the map glyphs considered passable. Everything else
// (walls, trees, water, out-of-bounds glyphs) is an obstacle.
var pathableChars = map[byte]bool{'.': true, 'S': true}

// Map is a parsed occupancy grid: width x height cells, row-major,
// true where a cell can be stood on.
type Map struct {
	Width, Height uint64
	Pathable      [][]bool // [y][x]
}

// IsPathable reports whether (x, y) is within bounds and passable.
func (m *Map) IsPathable(x, y uint64) bool {
	if x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pathable[y][x]
}

// LoadMap parses a map file: header lines "height H" and "width W" (in
// either order, plus an optional "type ..." line) ended by a "map" line,
// followed by height rows of at least width glyphs. Glyphs past the
// declared width, and lines after the last row, are ignored.
func LoadMap(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var height, width uint64
	sawHeight, sawWidth, sawMapToken := false, false, false

	for !sawMapToken {
		if !scanner.Scan() {
			return nil, fmt.Errorf("mapio: unexpected end of header in %s", path)
		}
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "type":
			// Accepted and ignored: this parser only supports the
			// octile-neighbourhood format the rest of this module
			// assumes.
		case "height":
			if len(fields) != 2 {
				return nil, fmt.Errorf("mapio: malformed height header in %s", path)
			}
			v, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("mapio: malformed height header in %s: %w", path, err)
			}
			height = v
			sawHeight = true
		case "width":
			if len(fields) != 2 {
				return nil, fmt.Errorf("mapio: malformed width header in %s", path)
			}
			v, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("mapio: malformed width header in %s: %w", path, err)
			}
			width = v
			sawWidth = true
		case "map":
			sawMapToken = true
		default:
			return nil, fmt.Errorf("mapio: unrecognized header token %q in %s", fields[0], path)
		}
	}
	if !sawHeight || !sawWidth {
		return nil, fmt.Errorf("mapio: missing height/width header in %s", path)
	}

	m := &Map{Width: width, Height: height, Pathable: make([][]bool, height)}
	for y := uint64(0); y < height; y++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("mapio: expected %d map rows, found %d in %s", height, y, path)
		}
		row := scanner.Text()
		if uint64(len(row)) < width {
			return nil, fmt.Errorf("mapio: row %d shorter than declared width in %s", y, path)
		}
		cells := make([]bool, width)
		for x := uint64(0); x < width; x++ {
			cells[x] = pathableChars[row[x]]
		}
		m.Pathable[y] = cells
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
