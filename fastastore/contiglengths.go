package fastastore

import (
	"fmt"
	"io"
	"strings"

	"github.com/shenwei356/bio/seqio/fastx"
)

// ContigLengths sequentially scans fastaPath and returns each record's
// id (the header up to the first whitespace, matching samtools .fai
// convention) mapped to its sequence length. Used by the CLI to build a
// SAM header's @SQ lines, where only the length is needed and the exact
// byte offsets a Handle requires would be wasted work — so this uses
// the sequential shenwei356/bio/seqio/fastx reader (already the
// pack's tool of choice for exactly this access pattern, e.g.
// LexicMap's index-build scan) rather than parsing a .fai file.
func ContigLengths(fastaPath string) (map[string]int, error) {
	r, err := fastx.NewReader(nil, fastaPath, "")
	if err != nil {
		return nil, fmt.Errorf("fastastore.ContigLengths: %w", err)
	}
	defer r.Close()

	lengths := make(map[string]int)
	for {
		rec, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("fastastore.ContigLengths: %s: %w", fastaPath, err)
		}
		id := strings.Fields(string(rec.Name))
		if len(id) == 0 {
			continue
		}
		lengths[id[0]] = len(rec.Seq.Seq)
	}
	return lengths, nil
}
