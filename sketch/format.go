package sketch

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/brotli/go/cbrotli"

	"github.com/mudesheng/wgalign/params"
	"github.com/mudesheng/wgalign/xhash"
)

// Write persists the complete index to path. When compress is true the
// byte stream produced by the layout below is wrapped end-to-end in a
// brotli writer (spec.md §4.7's layout is unchanged either way; only
// the outer transport differs), grounded on mudesheng-ga/cuckoofilter's
// HashWriter use of github.com/google/brotli/go/cbrotli.
func Write(idx *Index, path string, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sketch.Write: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var brw *cbrotli.Writer
	if compress {
		brw = cbrotli.NewWriter(f, cbrotli.WriterOptions{Quality: 9})
		defer brw.Close()
		w = brw
	}
	bw := bufio.NewWriterSize(w, 1<<20)

	if err := writeLayout(bw, idx); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("sketch.Write: flush: %w", err)
	}
	if brw != nil {
		if err := brw.Flush(); err != nil {
			return fmt.Errorf("sketch.Write: brotli flush: %w", err)
		}
	}
	return nil
}

// Read restores an index from path, failing fatally (per spec.md §4.7
// and §8 property #3) if the file's PARAMS section disagrees with
// want on any of segLength/sketchSize/kmerSize. No magic number or
// version prefix is written or expected — see DESIGN.md's Open
// Question log for why that is intentional, not an oversight.
func Read(path string, want Params, compressed bool) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sketch.Read: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		brr := cbrotli.NewReader(f)
		defer brr.Close()
		r = brr
	}
	br := bufio.NewReaderSize(r, 1<<20)

	idx, err := readLayout(br, want)
	if err != nil {
		return nil, err
	}
	idx.rebuildFreqCache()
	return idx, nil
}

func writeU64(w io.Writer, v uint64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readU64(r io.Reader) (uint64, error) {
	var v uint64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeLayout(w io.Writer, idx *Index) error {
	// PARAMS
	if err := writeU64(w, uint64(idx.Params.SegLength)); err != nil {
		return err
	}
	if err := writeU64(w, uint64(idx.Params.SketchSize)); err != nil {
		return err
	}
	if err := writeU64(w, uint64(idx.Params.KmerSize)); err != nil {
		return err
	}

	// WINDOWS
	if err := writeU64(w, uint64(len(idx.Windows))); err != nil {
		return err
	}
	for _, win := range idx.Windows {
		if err := writeWindow(w, win); err != nil {
			return err
		}
	}

	// LOOKUP. Map iteration order is randomized per range, so keys are
	// sorted first — otherwise two writes of the identical index would
	// produce byte-different files.
	lookupHashes := make([]uint64, 0, len(idx.Lookup))
	for hash := range idx.Lookup {
		lookupHashes = append(lookupHashes, hash)
	}
	sort.Slice(lookupHashes, func(i, j int) bool { return lookupHashes[i] < lookupHashes[j] })

	if err := writeU64(w, uint64(len(idx.Lookup))); err != nil {
		return err
	}
	for _, hash := range lookupHashes {
		pts := idx.Lookup[hash]
		if err := writeU64(w, hash); err != nil {
			return err
		}
		if err := writeU64(w, uint64(len(pts))); err != nil {
			return err
		}
		for _, p := range pts {
			if err := writePoint(w, p); err != nil {
				return err
			}
		}
	}

	// FREQUENT, sorted for the same reason as LOOKUP above.
	frequentHashes := make([]uint64, 0, len(idx.Frequent))
	for hash := range idx.Frequent {
		frequentHashes = append(frequentHashes, hash)
	}
	sort.Slice(frequentHashes, func(i, j int) bool { return frequentHashes[i] < frequentHashes[j] })

	if err := writeU64(w, uint64(len(idx.Frequent))); err != nil {
		return err
	}
	for _, hash := range frequentHashes {
		if err := writeU64(w, hash); err != nil {
			return err
		}
	}
	return nil
}

func readLayout(r io.Reader, want Params) (*Index, error) {
	segLength, err := readU64(r)
	if err != nil {
		return nil, fmt.Errorf("sketch.Read: PARAMS.segLength: %w", err)
	}
	sketchSize, err := readU64(r)
	if err != nil {
		return nil, fmt.Errorf("sketch.Read: PARAMS.sketchSize: %w", err)
	}
	kmerSize, err := readU64(r)
	if err != nil {
		return nil, fmt.Errorf("sketch.Read: PARAMS.kmerSize: %w", err)
	}

	if int(segLength) != want.SegLength || int(sketchSize) != want.SketchSize || int(kmerSize) != want.KmerSize {
		params.Fatal("sketch.Read",
			"parameter mismatch: index has {segLength:%d sketchSize:%d kmerSize:%d}, CLI has {segLength:%d sketchSize:%d kmerSize:%d}",
			segLength, sketchSize, kmerSize, want.SegLength, want.SketchSize, want.KmerSize)
	}

	idx := New(want)

	numWindows, err := readU64(r)
	if err != nil {
		return nil, fmt.Errorf("sketch.Read: WINDOWS.count: %w", err)
	}
	idx.Windows = make([]Window, numWindows)
	for i := uint64(0); i < numWindows; i++ {
		w, err := readWindow(r)
		if err != nil {
			return nil, fmt.Errorf("sketch.Read: WINDOWS[%d]: %w", i, err)
		}
		idx.Windows[i] = w
	}

	numHashes, err := readU64(r)
	if err != nil {
		return nil, fmt.Errorf("sketch.Read: LOOKUP.num_hashes: %w", err)
	}
	idx.Lookup = make(map[uint64][]Point, numHashes)
	for i := uint64(0); i < numHashes; i++ {
		hash, err := readU64(r)
		if err != nil {
			return nil, fmt.Errorf("sketch.Read: LOOKUP[%d].hash: %w", i, err)
		}
		nPoints, err := readU64(r)
		if err != nil {
			return nil, fmt.Errorf("sketch.Read: LOOKUP[%d].nPoints: %w", i, err)
		}
		pts := make([]Point, nPoints)
		for j := uint64(0); j < nPoints; j++ {
			p, err := readPoint(r)
			if err != nil {
				return nil, fmt.Errorf("sketch.Read: LOOKUP[%d].points[%d]: %w", i, j, err)
			}
			pts[j] = p
		}
		idx.Lookup[hash] = pts
	}

	numFrequent, err := readU64(r)
	if err != nil {
		return nil, fmt.Errorf("sketch.Read: FREQUENT.count: %w", err)
	}
	idx.Frequent = make(map[uint64]struct{}, numFrequent)
	for i := uint64(0); i < numFrequent; i++ {
		hash, err := readU64(r)
		if err != nil {
			return nil, fmt.Errorf("sketch.Read: FREQUENT[%d]: %w", i, err)
		}
		idx.Frequent[hash] = struct{}{}
	}

	return idx, nil
}

func writeWindow(w io.Writer, win Window) error {
	if err := writeU64(w, win.Hash); err != nil {
		return err
	}
	if err := writeU64(w, uint64(win.WposStart)); err != nil {
		return err
	}
	if err := writeU64(w, uint64(win.WposEnd)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, win.SeqID); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, uint8(win.Strand))
}

func readWindow(r io.Reader) (Window, error) {
	var win Window
	hash, err := readU64(r)
	if err != nil {
		return win, err
	}
	wposStart, err := readU64(r)
	if err != nil {
		return win, err
	}
	wposEnd, err := readU64(r)
	if err != nil {
		return win, err
	}
	var seqID uint32
	if err := binary.Read(r, binary.LittleEndian, &seqID); err != nil {
		return win, err
	}
	var strand uint8
	if err := binary.Read(r, binary.LittleEndian, &strand); err != nil {
		return win, err
	}
	win.Hash = hash
	win.WposStart = int(wposStart)
	win.WposEnd = int(wposEnd)
	win.SeqID = seqID
	win.Strand = xhash.Strand(strand)
	return win, nil
}

func writePoint(w io.Writer, p Point) error {
	if err := writeU64(w, uint64(p.Pos)); err != nil {
		return err
	}
	if err := writeU64(w, p.Hash); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, p.SeqID); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, uint8(p.Side))
}

func readPoint(r io.Reader) (Point, error) {
	var p Point
	pos, err := readU64(r)
	if err != nil {
		return p, err
	}
	hash, err := readU64(r)
	if err != nil {
		return p, err
	}
	var seqID uint32
	if err := binary.Read(r, binary.LittleEndian, &seqID); err != nil {
		return p, err
	}
	var side uint8
	if err := binary.Read(r, binary.LittleEndian, &side); err != nil {
		return p, err
	}
	p.Pos = int(pos)
	p.Hash = hash
	p.SeqID = seqID
	p.Side = Side(side)
	return p, nil
}
