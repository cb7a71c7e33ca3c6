package sketch

// mergeWindows appends a worker's thread-local window list to the
// global ordered window list and extends the hash lookup, applying the
// interval-point dedup/contiguity-compression rule verbatim (spec.md
// §4.2, §9 "Interval-point compaction"): when the last point recorded
// for a hash is a CLOSE with the same seq_id and its position equals
// the incoming window's wpos_start, the CLOSE is extended in place
// instead of appending a fresh OPEN/CLOSE pair.
//
// This must run on a single goroutine — the caller (Build) guarantees
// that by funneling every worker's output through one merge loop — so
// no locking is needed here, matching spec.md §5's "merge is
// serialized" concurrency model.
func mergeWindows(idx *Index, ws []Window) {
	for _, w := range ws {
		idx.Windows = append(idx.Windows, w)

		pts := idx.Lookup[w.Hash]
		if n := len(pts); n > 0 {
			last := pts[n-1]
			if last.Side == Close && last.SeqID == w.SeqID && last.Pos == w.WposStart {
				pts[n-1].Pos = w.WposEnd
				idx.Lookup[w.Hash] = pts
				continue
			}
		}
		pts = append(pts,
			Point{Pos: w.WposStart, Hash: w.Hash, SeqID: w.SeqID, Side: Open},
			Point{Pos: w.WposEnd, Hash: w.Hash, SeqID: w.SeqID, Side: Close},
		)
		idx.Lookup[w.Hash] = pts
	}
}
