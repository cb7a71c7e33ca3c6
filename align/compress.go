package align

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// openMappingList opens path for sequential reading, transparently
// decompressing it through zstd when the name ends in ".zst". Grounded
// on mudesheng-ga/constructcf.go's ReadZstdFile, which opens every
// large intermediate file the same way.
func openMappingList(path string) (*bufio.Scanner, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("align: open mapping list %s: %w", path, err)
	}

	var r io.Reader = f
	closers := []func() error{f.Close}

	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("align: zstd reader for %s: %w", path, err)
		}
		r = zr
		closers = append([]func() error{func() error { zr.Close(); return nil }}, closers...)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)

	closeAll := func() error {
		var firstErr error
		for _, c := range closers {
			if err := c(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	return sc, closeAll, nil
}
