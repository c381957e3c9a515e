// Package persist implements the on-disk binary format for FlatGraph and
// HierarchicalGraph: a magic-byte + version header, a flat encoding of the
// structure, and a trailing CRC32 checksum, written atomically via a
// temp-file-then-rename so a crash mid-write never leaves a corrupt graph
// file where a caller expects a complete one.
package persist

import (
	"bufio"
	"encoding/binary"
	"errors"
	"hash"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"prastar/pkg/graph"
	"prastar/pkg/octile"
)

var flatGraphMagic = [8]byte{'P', 'R', 'A', 'F', 'L', 'A', 'T', '1'}
var hierarchicalMagic = [8]byte{'P', 'R', 'A', 'H', 'I', 'E', 'R', '1'}

const formatVersion = uint32(1)

// ErrBadMagic is returned when a file does not start with the expected
// magic bytes for the type being loaded.
var ErrBadMagic = errors.New("persist: bad magic bytes")

// ErrUnsupportedVersion is returned when a file's version header is newer
// than this package knows how to read.
var ErrUnsupportedVersion = errors.New("persist: unsupported format version")

// ErrChecksumMismatch is returned when a file's trailing CRC32 does not
// match its contents: the file is truncated or corrupt.
var ErrChecksumMismatch = errors.New("persist: checksum mismatch")

// crc32Writer wraps an io.Writer, feeding every byte written through it
// into a running CRC32 checksum so the trailer can be computed without a
// second pass over the data.
type crc32Writer struct {
	w   io.Writer
	crc hash.Hash32
}

func newCRCWriter(w io.Writer) *crc32Writer {
	return &crc32Writer{w: w, crc: crc32.NewIEEE()}
}

func (c *crc32Writer) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if n > 0 {
		c.crc.Write(p[:n])
	}
	return n, err
}

func (c *crc32Writer) Sum32() uint32 { return c.crc.Sum32() }

// crc32Reader mirrors crc32Writer on the read side.
type crc32Reader struct {
	r   io.Reader
	crc hash.Hash32
}

func newCRCReader(r io.Reader) *crc32Reader {
	return &crc32Reader{r: r, crc: crc32.NewIEEE()}
}

func (c *crc32Reader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.crc.Write(p[:n])
	}
	return n, err
}

func (c *crc32Reader) Sum32() uint32 { return c.crc.Sum32() }

// SaveFlatGraph writes g to path atomically: it writes to a temp file in
// the same directory, then renames it over path so readers never observe
// a partial write.
func SaveFlatGraph(g *graph.FlatGraph, path string) error {
	return atomicWrite(path, func(w io.Writer) error {
		return writeFlatGraph(w, g)
	})
}

// LoadFlatGraph reads a FlatGraph previously written by SaveFlatGraph.
func LoadFlatGraph(path string) (*graph.FlatGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readFlatGraph(bufio.NewReader(f))
}

// SaveHierarchicalGraph writes h to path atomically.
func SaveHierarchicalGraph(h *graph.HierarchicalGraph, path string) error {
	return atomicWrite(path, func(w io.Writer) error {
		return writeHierarchicalGraph(w, h)
	})
}

// LoadHierarchicalGraph reads a HierarchicalGraph previously written by
// SaveHierarchicalGraph.
func LoadHierarchicalGraph(path string) (*graph.HierarchicalGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readHierarchicalGraph(bufio.NewReader(f))
}

func atomicWrite(path string, body func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	bw := bufio.NewWriter(tmp)
	if err := body(bw); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func writeFlatGraph(w io.Writer, g *graph.FlatGraph) error {
	cw := newCRCWriter(w)
	if _, err := cw.Write(flatGraphMagic[:]); err != nil {
		return err
	}
	if err := writeUint32(cw, formatVersion); err != nil {
		return err
	}
	if err := encodeFlatGraphBody(cw, g); err != nil {
		return err
	}
	return writeUint32(w, cw.Sum32())
}

func encodeFlatGraphBody(cw *crc32Writer, g *graph.FlatGraph) error {
	ids := g.AllNodeIDs()
	if err := writeUint64(cw, uint64(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		n := g.Node(id)
		if err := writeUint64(cw, n.ID); err != nil {
			return err
		}
		if err := writeFloat64(cw, n.Position.X); err != nil {
			return err
		}
		if err := writeFloat64(cw, n.Position.Y); err != nil {
			return err
		}
		if err := writeUint64(cw, uint64(len(n.RepresentedPositions))); err != nil {
			return err
		}
		for pos := range n.RepresentedPositions {
			if err := writeUint64(cw, pos.X); err != nil {
				return err
			}
			if err := writeUint64(cw, pos.Y); err != nil {
				return err
			}
		}
	}

	type edge struct{ a, b uint64 }
	var edges []edge
	seen := make(map[[2]uint64]bool)
	for _, a := range ids {
		for _, b := range g.RawNeighbours(a) {
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			key := [2]uint64{lo, hi}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, edge{lo, hi})
		}
	}
	if err := writeUint64(cw, uint64(len(edges))); err != nil {
		return err
	}
	for _, e := range edges {
		if err := writeUint64(cw, e.a); err != nil {
			return err
		}
		if err := writeUint64(cw, e.b); err != nil {
			return err
		}
	}
	return nil
}

func readFlatGraph(r io.Reader) (*graph.FlatGraph, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if magic != flatGraphMagic {
		return nil, ErrBadMagic
	}
	crw := newCRCReader(r)
	crw.crc.Write(magic[:])
	version, err := readUint32(crw)
	if err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, ErrUnsupportedVersion
	}

	g, err := decodeFlatGraphBody(crw)
	if err != nil {
		return nil, err
	}

	wantCRC, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if crw.Sum32() != wantCRC {
		return nil, ErrChecksumMismatch
	}
	return g, nil
}

func writeHierarchicalGraph(w io.Writer, h *graph.HierarchicalGraph) error {
	cw := newCRCWriter(w)
	if _, err := cw.Write(hierarchicalMagic[:]); err != nil {
		return err
	}
	if err := writeUint32(cw, formatVersion); err != nil {
		return err
	}
	if err := writeUint32(cw, uint32(h.NumLayers())); err != nil {
		return err
	}
	for i := 0; i < h.NumLayers(); i++ {
		if err := encodeFlatGraphBody(cw, h.Layer(i)); err != nil {
			return err
		}
	}
	for i := 0; i < h.NumLayers()-1; i++ {
		pc := h.ParentChildMapping(i)
		if err := writeUint64(cw, uint64(len(pc))); err != nil {
			return err
		}
		parents := make([]uint64, 0, len(pc))
		for p := range pc {
			parents = append(parents, p)
		}
		sort.Slice(parents, func(i, j int) bool { return parents[i] < parents[j] })
		for _, parent := range parents {
			children := pc[parent]
			if err := writeUint64(cw, parent); err != nil {
				return err
			}
			if err := writeUint64(cw, uint64(len(children))); err != nil {
				return err
			}
			for _, c := range children {
				if err := writeUint64(cw, c); err != nil {
					return err
				}
			}
		}
	}
	return writeUint32(w, cw.Sum32())
}

func readHierarchicalGraph(r io.Reader) (*graph.HierarchicalGraph, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if magic != hierarchicalMagic {
		return nil, ErrBadMagic
	}
	crw := newCRCReader(r)
	crw.crc.Write(magic[:])
	version, err := readUint32(crw)
	if err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, ErrUnsupportedVersion
	}
	numLayers, err := readUint32(crw)
	if err != nil {
		return nil, err
	}

	layers := make([]*graph.FlatGraph, numLayers)
	for i := range layers {
		g, err := decodeFlatGraphBody(crw)
		if err != nil {
			return nil, err
		}
		layers[i] = g
	}

	parentChild := make([]graph.ParentChildMap, 0)
	if numLayers > 0 {
		for i := 0; i < int(numLayers)-1; i++ {
			entries, err := readUint64(crw)
			if err != nil {
				return nil, err
			}
			pc := make(graph.ParentChildMap, entries)
			for j := uint64(0); j < entries; j++ {
				parent, err := readUint64(crw)
				if err != nil {
					return nil, err
				}
				childCount, err := readUint64(crw)
				if err != nil {
					return nil, err
				}
				children := make([]uint64, childCount)
				for k := range children {
					c, err := readUint64(crw)
					if err != nil {
						return nil, err
					}
					children[k] = c
				}
				pc[parent] = children
			}
			parentChild = append(parentChild, pc)
		}
	}

	wantCRC, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if crw.Sum32() != wantCRC {
		return nil, ErrChecksumMismatch
	}

	return graph.AssembleHierarchicalGraph(layers, parentChild), nil
}

func decodeFlatGraphBody(crw *crc32Reader) (*graph.FlatGraph, error) {
	g := graph.NewFlatGraph()
	nodeCount, err := readUint64(crw)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < nodeCount; i++ {
		id, err := readUint64(crw)
		if err != nil {
			return nil, err
		}
		x, err := readFloat64(crw)
		if err != nil {
			return nil, err
		}
		y, err := readFloat64(crw)
		if err != nil {
			return nil, err
		}
		repCount, err := readUint64(crw)
		if err != nil {
			return nil, err
		}
		reps := make(map[octile.Grid]struct{}, repCount)
		for j := uint64(0); j < repCount; j++ {
			px, err := readUint64(crw)
			if err != nil {
				return nil, err
			}
			py, err := readUint64(crw)
			if err != nil {
				return nil, err
			}
			reps[octile.Grid{X: px, Y: py}] = struct{}{}
		}
		if err := g.AddNode(graph.Node{ID: id, Position: octile.Abstract{X: x, Y: y}, RepresentedPositions: reps}); err != nil {
			return nil, err
		}
	}
	edgeCount, err := readUint64(crw)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < edgeCount; i++ {
		a, err := readUint64(crw)
		if err != nil {
			return nil, err
		}
		b, err := readUint64(crw)
		if err != nil {
			return nil, err
		}
		if err := g.AddEdge(a, b); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeFloat64(w io.Writer, v float64) error {
	return writeUint64(w, math.Float64bits(v))
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readFloat64(r io.Reader) (float64, error) {
	bits, err := readUint64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}
