package graph

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

const (
	magicBytes = "RDPATH01"
	version    = uint32(1)
	maxNodes   = 50_000_000
	maxEdges   = 200_000_000
	maxShape   = 1 << 30
)

// ErrCorruptGraph is returned by ReadBinary for files that fail validation.
var ErrCorruptGraph = errors.New("graph: corrupt binary")

// fileHeader is the binary header.
type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumEdges uint32
}

// Fixed-size element types stored as raw little-endian arrays.
type scalar interface {
	~uint8 | ~uint32 | ~float64
}

// WriteBinary serializes a Graph to path. The file is written to a
// temporary name and renamed into place, so readers never see a partial
// graph. A CRC32 of everything before it trails the file.
func WriteBinary(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // no-op after a successful rename
	}()

	h := crc32.NewIEEE()
	w := io.MultiWriter(f, h)

	hdr := fileHeader{Version: version, NumNodes: g.NumNodes, NumEdges: g.NumEdges}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	sections := []struct {
		name  string
		write func() error
	}{
		{"NodeLat", func() error { return writeSlice(w, g.NodeLat) }},
		{"NodeLon", func() error { return writeSlice(w, g.NodeLon) }},
		{"FirstOut", func() error { return writeSlice(w, g.FirstOut) }},
		{"Head", func() error { return writeSlice(w, g.Head) }},
		{"Length", func() error { return writeSlice(w, g.Length) }},
		{"MaxSpeed", func() error { return writeSlice(w, g.MaxSpeed) }},
		{"RoadType", func() error { return writeSlice(w, g.RoadType) }},
		{"Access", func() error { return writeSlice(w, g.Access) }},
		// Geometry arrays vary in size and carry their own length.
		{"GeoFirstOut", func() error { return writeLenPrefixed(w, g.GeoFirstOut) }},
		{"GeoShapeLat", func() error { return writeLenPrefixed(w, g.GeoShapeLat) }},
		{"GeoShapeLon", func() error { return writeLenPrefixed(w, g.GeoShapeLon) }},
	}
	for _, s := range sections {
		if err := s.write(); err != nil {
			return fmt.Errorf("write %s: %w", s.name, err)
		}
	}

	if err := binary.Write(f, binary.LittleEndian, h.Sum32()); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadBinary deserializes a Graph written by WriteBinary.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	h := crc32.NewIEEE()
	r := io.TeeReader(f, h)

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrCorruptGraph, err)
	}
	switch {
	case string(hdr.Magic[:]) != magicBytes:
		return nil, fmt.Errorf("%w: invalid magic bytes %q", ErrCorruptGraph, hdr.Magic)
	case hdr.Version != version:
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptGraph, hdr.Version)
	case hdr.NumNodes > maxNodes:
		return nil, fmt.Errorf("%w: NumNodes %d exceeds limit %d", ErrCorruptGraph, hdr.NumNodes, maxNodes)
	case hdr.NumEdges > maxEdges:
		return nil, fmt.Errorf("%w: NumEdges %d exceeds limit %d", ErrCorruptGraph, hdr.NumEdges, maxEdges)
	}

	g := &Graph{NumNodes: hdr.NumNodes, NumEdges: hdr.NumEdges}
	n, m := int(hdr.NumNodes), int(hdr.NumEdges)

	sections := []struct {
		name string
		read func() error
	}{
		{"NodeLat", func() (err error) { g.NodeLat, err = readSlice[float64](r, n); return }},
		{"NodeLon", func() (err error) { g.NodeLon, err = readSlice[float64](r, n); return }},
		{"FirstOut", func() (err error) { g.FirstOut, err = readSlice[uint32](r, n+1); return }},
		{"Head", func() (err error) { g.Head, err = readSlice[uint32](r, m); return }},
		{"Length", func() (err error) { g.Length, err = readSlice[float64](r, m); return }},
		{"MaxSpeed", func() (err error) { g.MaxSpeed, err = readSlice[float64](r, m); return }},
		{"RoadType", func() (err error) { g.RoadType, err = readSlice[RoadType](r, m); return }},
		{"Access", func() (err error) { g.Access, err = readSlice[Access](r, m); return }},
		{"GeoFirstOut", func() (err error) { g.GeoFirstOut, err = readLenPrefixed[uint32](r); return }},
		{"GeoShapeLat", func() (err error) { g.GeoShapeLat, err = readLenPrefixed[float64](r); return }},
		{"GeoShapeLon", func() (err error) { g.GeoShapeLon, err = readLenPrefixed[float64](r); return }},
	}
	for _, s := range sections {
		if err := s.read(); err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrCorruptGraph, s.name, err)
		}
	}

	computed := h.Sum32()
	var stored uint32
	if err := binary.Read(f, binary.LittleEndian, &stored); err != nil {
		return nil, fmt.Errorf("%w: read CRC32: %v", ErrCorruptGraph, err)
	}
	if stored != computed {
		return nil, fmt.Errorf("%w: CRC32 mismatch: stored=%08x computed=%08x", ErrCorruptGraph, stored, computed)
	}

	if err := validateCSR(g.FirstOut, g.Head, hdr.NumNodes); err != nil {
		return nil, fmt.Errorf("%w: CSR invalid: %v", ErrCorruptGraph, err)
	}
	if err := validateGeometry(g); err != nil {
		return nil, fmt.Errorf("%w: geometry invalid: %v", ErrCorruptGraph, err)
	}

	g.index()
	return g, nil
}

// validateCSR checks CSR invariants.
func validateCSR(firstOut, head []uint32, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("FirstOut length %d != NumNodes+1 %d", len(firstOut), numNodes+1)
	}
	numEdges := firstOut[numNodes]
	if uint32(len(head)) != numEdges {
		return fmt.Errorf("Head length %d != FirstOut[NumNodes] %d", len(head), numEdges)
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("FirstOut not monotonic at %d: %d < %d", i, firstOut[i], firstOut[i-1])
		}
	}
	for i, h := range head {
		if h >= numNodes {
			return fmt.Errorf("Head[%d]=%d >= NumNodes=%d", i, h, numNodes)
		}
	}
	return nil
}

// validateGeometry checks that shape offsets stay inside the shape arrays.
// Graphs without geometry have an empty GeoFirstOut.
func validateGeometry(g *Graph) error {
	if len(g.GeoShapeLat) != len(g.GeoShapeLon) {
		return fmt.Errorf("shape lat/lon lengths differ: %d != %d", len(g.GeoShapeLat), len(g.GeoShapeLon))
	}
	if len(g.GeoFirstOut) == 0 {
		return nil
	}
	if uint32(len(g.GeoFirstOut)) != g.NumEdges+1 {
		return fmt.Errorf("GeoFirstOut length %d != NumEdges+1 %d", len(g.GeoFirstOut), g.NumEdges+1)
	}
	for e := uint32(1); e <= g.NumEdges; e++ {
		if g.GeoFirstOut[e] < g.GeoFirstOut[e-1] {
			return fmt.Errorf("GeoFirstOut not monotonic at %d", e)
		}
	}
	if last := g.GeoFirstOut[g.NumEdges]; int(last) != len(g.GeoShapeLat) {
		return fmt.Errorf("GeoFirstOut ends at %d, shape has %d points", last, len(g.GeoShapeLat))
	}
	return nil
}

// Zero-copy I/O helpers: the slice memory is written and read as is, so
// the format is little-endian like every supported target.

func asBytes[T scalar](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(s[0])))
}

func writeSlice[T scalar](w io.Writer, s []T) error {
	_, err := w.Write(asBytes(s))
	return err
}

func readSlice[T scalar](r io.Reader, n int) ([]T, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]T, n)
	if _, err := io.ReadFull(r, asBytes(s)); err != nil {
		return nil, err
	}
	return s, nil
}

func writeLenPrefixed[T scalar](w io.Writer, s []T) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	return writeSlice(w, s)
}

func readLenPrefixed[T scalar](r io.Reader) ([]T, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > maxShape {
		return nil, fmt.Errorf("length %d exceeds limit %d", n, maxShape)
	}
	return readSlice[T](r, int(n))
}
