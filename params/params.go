// Package params holds the frozen configuration bundle threaded through
// the sketch/index and alignment pipeline, in the spirit of mashmap's
// skch::Parameters: constructed once from CLI flags, never mutated after
// the pipeline starts.
package params

import (
	"fmt"
	"log"
	"os"
)

// Parameters is the read-only configuration bundle shared by the
// indexing and alignment stages. The CLI builds one in checkIndexArgs
// or checkAlignArgs; never mutate it after a pipeline begins.
type Parameters struct {
	// Indexing
	KmerSize      int // k for k-mer hashing
	SegLength     int // sliding-window length for minmer selection
	SketchSize    int // s in bottom-s sketch per window
	AlphabetSize  int // 4 for DNA
	KmerPctThresh float64

	RefSequences   []string
	QuerySequences []string
	TargetNames    []string // restrict indexing to these sequence names; empty means all

	IndexFilename  string
	OverwriteIndex bool
	CompressIndex  bool // wrap the on-disk index in brotli

	// Alignment pipeline
	Threads           int
	MashmapPafFile    string
	PafOutputFile     string
	TSVOutputPrefix   string
	PatchingInfoTSV   string
	WflignMaxLenMinor int

	// alignment knobs: WflambdaSegmentLength and MinIdentity are applied
	// by align.Adapter; the WFA* penalties are passed to the aligner
	WflambdaSegmentLength int
	MinIdentity           float64
	WFAMismatchScore      int
	WFAGapOpeningScore    int
	WFAGapExtensionScore  int

	// output formatting
	SAMFormat  bool
	EmitMDTag  bool
	NoSeqInSAM bool
	Split      bool

	DotDebugPath string
}

// FixedPercentageIdentity is used when a mapping record's identity
// column is non-numeric, matching skch::fixed::percentage_identity. A
// line without that column is rejected by mapping.ParseRow instead.
const FixedPercentageIdentity = 95.0

// Fatal logs a bracketed diagnostic (matching the [Component.Func] style
// used throughout the reference pipeline) and terminates the process.
// Core code calls it for fatal errors it does not return to its caller;
// errors that are returned reach the CLI, which exits via log.Fatalf.
func Fatal(component, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[%s] ERROR: %s", component, msg)
	os.Exit(1)
}

// Warn logs a bracketed warning without terminating the process, used
// for recoverable conditions like a too-short reference sequence.
func Warn(component, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[%s] WARNING: %s", component, msg)
}
