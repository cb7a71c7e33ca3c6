package sketch

import (
	"fmt"
	"os"

	"github.com/awalterschulze/gographviz"
)

// WriteDebugDot renders the ordered window list belonging to one
// contig (by sequence id) as a small chain graph — one node per merged
// window, edges in scan order, labeled with hash/strand — purely as a
// diagnostic aid. Never on the hot path, never required for round-trip
// correctness or any testable property.
func WriteDebugDot(idx *Index, seqID uint32, path string) error {
	g := gographviz.NewGraph()
	name := "minmers"
	if err := g.SetName(name); err != nil {
		return fmt.Errorf("sketch.WriteDebugDot: %w", err)
	}
	if err := g.SetDir(true); err != nil {
		return fmt.Errorf("sketch.WriteDebugDot: %w", err)
	}

	var prev string
	n := 0
	for _, w := range idx.Windows {
		if w.SeqID != seqID {
			continue
		}
		node := fmt.Sprintf("w%d", n)
		label := fmt.Sprintf("\"hash=%x [%d,%d) %c\"", w.Hash, w.WposStart, w.WposEnd, strandByte(w.Strand))
		if err := g.AddNode(name, node, map[string]string{"label": label}); err != nil {
			return fmt.Errorf("sketch.WriteDebugDot: %w", err)
		}
		if prev != "" {
			if err := g.AddEdge(prev, node, true, nil); err != nil {
				return fmt.Errorf("sketch.WriteDebugDot: %w", err)
			}
		}
		prev = node
		n++
	}

	return os.WriteFile(path, []byte(g.String()), 0o644)
}
