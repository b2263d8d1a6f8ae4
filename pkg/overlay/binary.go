package overlay

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sort"
	"unsafe"

	"github.com/paulmach/orb"

	"github.com/azybler/chrouter/pkg/graph"
)

const (
	magicBytes = "CHOVERLAY"
	version    = uint32(1)
	maxNodes   = 50_000_000
	maxEdges   = 200_000_000
)

// fileHeader is the on-disk header. Field order matches write order below.
type fileHeader struct {
	Magic        [9]byte
	Version      uint32
	NumNodes     uint32
	NumEdges     uint32
	NumUpTotal   uint32
	NumDownTotal uint32
	NumShortcuts uint32
}

// WriteBinary serializes an overlay graph to path, following the three
// persisted streams: the per-node upward partition ("edges_fwd"), the
// per-node downward partition ("edges_bwd"), and the shortcut child map.
// Writes to a temp file and renames atomically on success so a failed run
// never leaves a truncated file behind.
func WriteBinary(path string, o *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	crcW := &crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := crcW

	g := o.g
	n := uint32(len(g.Nodes))
	numEdges := uint32(len(g.Edges))

	upFirstOut, upFlat := flattenCSR(o.up)
	downFirstOut, downFlat := flattenCSR(o.down)

	// Sort by edge index so the same overlay always produces the same bytes.
	scEdgeIdx := make([]uint32, 0, len(o.shortcuts))
	for idx := range o.shortcuts {
		scEdgeIdx = append(scEdgeIdx, idx)
	}
	sort.Slice(scEdgeIdx, func(i, j int) bool { return scEdgeIdx[i] < scEdgeIdx[j] })
	scChild1 := make([]uint32, len(scEdgeIdx))
	scChild2 := make([]uint32, len(scEdgeIdx))
	for i, idx := range scEdgeIdx {
		scChild1[i] = o.shortcuts[idx][0]
		scChild2[i] = o.shortcuts[idx][1]
	}

	hdr := fileHeader{
		Version:      version,
		NumNodes:     n,
		NumEdges:     numEdges,
		NumUpTotal:   uint32(len(upFlat)),
		NumDownTotal: uint32(len(downFlat)),
		NumShortcuts: uint32(len(scEdgeIdx)),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	nodeID := make([]int64, n)
	nodeLon := make([]float64, n)
	nodeLat := make([]float64, n)
	for i, nd := range g.Nodes {
		nodeID[i] = nd.ID
		nodeLon[i] = nd.Pos.X()
		nodeLat[i] = nd.Pos.Y()
	}
	if err := writeInt64Slice(w, nodeID); err != nil {
		return fmt.Errorf("write NodeID: %w", err)
	}
	if err := writeFloat64Slice(w, nodeLon); err != nil {
		return fmt.Errorf("write NodeLon: %w", err)
	}
	if err := writeFloat64Slice(w, nodeLat); err != nil {
		return fmt.Errorf("write NodeLat: %w", err)
	}
	if err := writeUint32Slice(w, o.rank); err != nil {
		return fmt.Errorf("write Rank: %w", err)
	}

	edgeSource := make([]uint32, numEdges)
	edgeTarget := make([]uint32, numEdges)
	edgeWeight := make([]uint32, numEdges)
	edgeChild1 := make([]uint32, numEdges)
	edgeChild2 := make([]uint32, numEdges)
	for i, e := range g.Edges {
		edgeSource[i] = e.Source
		edgeTarget[i] = e.Target
		edgeWeight[i] = e.Weight
		edgeChild1[i] = e.Child1
		edgeChild2[i] = e.Child2
	}
	if err := writeUint32Slice(w, edgeSource); err != nil {
		return fmt.Errorf("write edge Source: %w", err)
	}
	if err := writeUint32Slice(w, edgeTarget); err != nil {
		return fmt.Errorf("write edge Target: %w", err)
	}
	if err := writeUint32Slice(w, edgeWeight); err != nil {
		return fmt.Errorf("write edge Weight: %w", err)
	}
	if err := writeUint32Slice(w, edgeChild1); err != nil {
		return fmt.Errorf("write edge Child1: %w", err)
	}
	if err := writeUint32Slice(w, edgeChild2); err != nil {
		return fmt.Errorf("write edge Child2: %w", err)
	}

	// edges_fwd stream (up partition).
	if err := writeUint32Slice(w, upFirstOut); err != nil {
		return fmt.Errorf("write UpFirstOut: %w", err)
	}
	if err := writeUint32Slice(w, upFlat); err != nil {
		return fmt.Errorf("write UpEdgeIdx: %w", err)
	}

	// edges_bwd stream (down partition).
	if err := writeUint32Slice(w, downFirstOut); err != nil {
		return fmt.Errorf("write DownFirstOut: %w", err)
	}
	if err := writeUint32Slice(w, downFlat); err != nil {
		return fmt.Errorf("write DownEdgeIdx: %w", err)
	}

	// shortcuts stream (child map).
	if err := writeUint32Slice(w, scEdgeIdx); err != nil {
		return fmt.Errorf("write ShortcutEdgeIdx: %w", err)
	}
	if err := writeUint32Slice(w, scChild1); err != nil {
		return fmt.Errorf("write ShortcutChild1: %w", err)
	}
	if err := writeUint32Slice(w, scChild2); err != nil {
		return fmt.Errorf("write ShortcutChild2: %w", err)
	}

	checksum := crcW.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
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

// ReadBinary deserializes an overlay graph from path.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcR := &crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := crcR

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:len(magicBytes)]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes || hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("graph too large: %d nodes, %d edges", hdr.NumNodes, hdr.NumEdges)
	}

	n := int(hdr.NumNodes)
	numEdges := int(hdr.NumEdges)

	nodeID, err := readInt64Slice(r, n)
	if err != nil {
		return nil, fmt.Errorf("read NodeID: %w", err)
	}
	nodeLon, err := readFloat64Slice(r, n)
	if err != nil {
		return nil, fmt.Errorf("read NodeLon: %w", err)
	}
	nodeLat, err := readFloat64Slice(r, n)
	if err != nil {
		return nil, fmt.Errorf("read NodeLat: %w", err)
	}
	rank, err := readUint32Slice(r, n)
	if err != nil {
		return nil, fmt.Errorf("read Rank: %w", err)
	}

	edgeSource, err := readUint32Slice(r, numEdges)
	if err != nil {
		return nil, fmt.Errorf("read edge Source: %w", err)
	}
	edgeTarget, err := readUint32Slice(r, numEdges)
	if err != nil {
		return nil, fmt.Errorf("read edge Target: %w", err)
	}
	edgeWeight, err := readUint32Slice(r, numEdges)
	if err != nil {
		return nil, fmt.Errorf("read edge Weight: %w", err)
	}
	edgeChild1, err := readUint32Slice(r, numEdges)
	if err != nil {
		return nil, fmt.Errorf("read edge Child1: %w", err)
	}
	edgeChild2, err := readUint32Slice(r, numEdges)
	if err != nil {
		return nil, fmt.Errorf("read edge Child2: %w", err)
	}

	upFirstOut, err := readUint32Slice(r, n+1)
	if err != nil {
		return nil, fmt.Errorf("read UpFirstOut: %w", err)
	}
	upFlat, err := readUint32Slice(r, int(hdr.NumUpTotal))
	if err != nil {
		return nil, fmt.Errorf("read UpEdgeIdx: %w", err)
	}
	downFirstOut, err := readUint32Slice(r, n+1)
	if err != nil {
		return nil, fmt.Errorf("read DownFirstOut: %w", err)
	}
	downFlat, err := readUint32Slice(r, int(hdr.NumDownTotal))
	if err != nil {
		return nil, fmt.Errorf("read DownEdgeIdx: %w", err)
	}

	scEdgeIdx, err := readUint32Slice(r, int(hdr.NumShortcuts))
	if err != nil {
		return nil, fmt.Errorf("read ShortcutEdgeIdx: %w", err)
	}
	scChild1, err := readUint32Slice(r, int(hdr.NumShortcuts))
	if err != nil {
		return nil, fmt.Errorf("read ShortcutChild1: %w", err)
	}
	scChild2, err := readUint32Slice(r, int(hdr.NumShortcuts))
	if err != nil {
		return nil, fmt.Errorf("read ShortcutChild2: %w", err)
	}

	expectedCRC := crcR.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	if err := validateCSR(upFirstOut, uint32(n)); err != nil {
		return nil, fmt.Errorf("up CSR invalid: %w", err)
	}
	if err := validateCSR(downFirstOut, uint32(n)); err != nil {
		return nil, fmt.Errorf("down CSR invalid: %w", err)
	}
	for i := 0; i < numEdges; i++ {
		if edgeSource[i] >= hdr.NumNodes || edgeTarget[i] >= hdr.NumNodes {
			return nil, fmt.Errorf("edge %d references nonexistent node (%d -> %d, %d nodes)", i, edgeSource[i], edgeTarget[i], hdr.NumNodes)
		}
	}

	g := graph.New()
	for i := 0; i < n; i++ {
		g.AddNode(graph.Node{ID: nodeID[i], Pos: orb.Point{nodeLon[i], nodeLat[i]}})
	}
	g.Edges = make([]graph.Edge, numEdges)
	for i := 0; i < numEdges; i++ {
		g.Edges[i] = graph.Edge{
			Source: edgeSource[i],
			Target: edgeTarget[i],
			Weight: edgeWeight[i],
			Child1: edgeChild1[i],
			Child2: edgeChild2[i],
		}
	}

	up := unflattenCSR(upFirstOut, upFlat)
	down := unflattenCSR(downFirstOut, downFlat)

	shortcuts := make(map[uint32][2]uint32, hdr.NumShortcuts)
	for i := range scEdgeIdx {
		shortcuts[scEdgeIdx[i]] = [2]uint32{scChild1[i], scChild2[i]}
		g.NumShortcuts++
	}

	return New(g, up, down, rank, shortcuts), nil
}

func flattenCSR(buckets [][]uint32) (firstOut []uint32, flat []uint32) {
	firstOut = make([]uint32, len(buckets)+1)
	for i, b := range buckets {
		firstOut[i+1] = firstOut[i] + uint32(len(b))
	}
	flat = make([]uint32, firstOut[len(buckets)])
	for i, b := range buckets {
		copy(flat[firstOut[i]:firstOut[i+1]], b)
	}
	return firstOut, flat
}

func unflattenCSR(firstOut, flat []uint32) [][]uint32 {
	n := len(firstOut) - 1
	buckets := make([][]uint32, n)
	for i := 0; i < n; i++ {
		start, end := firstOut[i], firstOut[i+1]
		if end > start {
			buckets[i] = append([]uint32(nil), flat[start:end]...)
		}
	}
	return buckets
}

func validateCSR(firstOut []uint32, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("firstOut length %d != numNodes+1 %d", len(firstOut), numNodes+1)
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("firstOut not monotonic at %d: %d < %d", i, firstOut[i], firstOut[i-1])
		}
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice: the arrays are written and
// read as raw little-endian bytes, one syscall per array.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeInt64Slice(w io.Writer, s []int64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readInt64Slice(r io.Reader, n int) ([]int64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]int64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
