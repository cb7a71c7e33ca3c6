// Package wfa models the external wavefront aligner as a small
// black-box interface: Penalties/Options/Aligner, shaped after the
// github.com/shenwei356/wfa-style aligners referenced in the retrieved
// pack (Align(query, ref []byte) -> CIGAR). spec.md puts the inner
// wavefront algorithm itself out of scope — only this contract is
// fixed — so WFAligner below is a correct reference implementation for
// tests (global affine-gap alignment via Gotoh's DP, not literal
// wavefront propagation); production wiring is any Aligner.
package wfa

import "fmt"

// Penalties holds the gap-affine penalties; a match costs 0.
type Penalties struct {
	Mismatch int
	GapOpen  int
	GapExt   int
}

// DefaultPenalties mirrors common WFA defaults.
var DefaultPenalties = Penalties{Mismatch: 4, GapOpen: 6, GapExt: 2}

// Options controls alignment mode.
type Options struct {
	GlobalAlignment bool
}

// DefaultOptions requests end-to-end (global) alignment.
var DefaultOptions = Options{GlobalAlignment: true}

// Result is one alignment outcome: a CIGAR string in PAF convention
// (run-length then operator, e.g. "12M3D5M") plus bookkeeping the
// caller needs for PAF/SAM columns.
type Result struct {
	CIGAR      string
	Score      int
	Matches    int
	Mismatches int
	NM         int // edit distance: substitutions + inserted + deleted bases
}

// Aligner is the black-box contract every concrete wavefront
// implementation must satisfy.
type Aligner interface {
	Align(query, ref []byte) (Result, error)
}

// WFAligner is a reference Aligner backed by Gotoh's affine-gap global
// alignment DP. Correct for any input size; not the asymptotically
// sparse wavefront algorithm the name evokes, since that algorithm's
// internals are explicitly not this repository's concern.
type WFAligner struct {
	p   Penalties
	opt Options
}

// New returns a WFAligner with p/opt. Only global alignment is
// implemented: Align returns an error unless opt.GlobalAlignment is set.
func New(p Penalties, opt Options) *WFAligner {
	return &WFAligner{p: p, opt: opt}
}

const negInf = 1 << 30

func (a *WFAligner) Align(query, ref []byte) (Result, error) {
	if !a.opt.GlobalAlignment {
		return Result{}, fmt.Errorf("wfa.WFAligner: only global alignment is implemented")
	}
	n, m := len(query), len(ref)

	// M[i][j]: best score aligning query[:i] to ref[:j] ending in a
	// match/mismatch; I[i][j]: ending in a gap in ref (insertion to
	// query); D[i][j]: ending in a gap in query (deletion from query).
	M := make([][]int, n+1)
	I := make([][]int, n+1)
	D := make([][]int, n+1)
	for i := range M {
		M[i] = make([]int, m+1)
		I[i] = make([]int, m+1)
		D[i] = make([]int, m+1)
	}

	for i := 1; i <= n; i++ {
		M[i][0] = negInf
		I[i][0] = a.p.GapOpen + a.p.GapExt*i
		D[i][0] = negInf
	}
	for j := 1; j <= m; j++ {
		M[0][j] = negInf
		D[0][j] = a.p.GapOpen + a.p.GapExt*j
		I[0][j] = negInf
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			sub := a.p.Mismatch
			if upper(query[i-1]) == upper(ref[j-1]) {
				sub = 0
			}
			best := min3(M[i-1][j-1], I[i-1][j-1], D[i-1][j-1])
			M[i][j] = best + sub

			I[i][j] = min2(
				M[i-1][j]+a.p.GapOpen+a.p.GapExt,
				I[i-1][j]+a.p.GapExt,
			)
			D[i][j] = min2(
				M[i][j-1]+a.p.GapOpen+a.p.GapExt,
				D[i][j-1]+a.p.GapExt,
			)
		}
	}

	score := min3(M[n][m], I[n][m], D[n][m])
	cigar, matches, mismatches, nm := backtrace(query, ref, M, I, D, a.p)
	return Result{CIGAR: cigar, Score: score, Matches: matches, Mismatches: mismatches, NM: nm}, nil
}

func backtrace(query, ref []byte, M, I, D [][]int, p Penalties) (cigar string, matches, mismatches, nm int) {
	i, j := len(query), len(ref)
	state := argmin3(M[i][j], I[i][j], D[i][j])

	type run struct {
		op  byte
		len int
	}
	var runs []run
	push := func(op byte) {
		if n := len(runs); n > 0 && runs[n-1].op == op {
			runs[n-1].len++
			return
		}
		runs = append(runs, run{op: op, len: 1})
	}

	for i > 0 || j > 0 {
		switch state {
		case 0: // M
			if upper(query[i-1]) == upper(ref[j-1]) {
				matches++
				push('M')
			} else {
				mismatches++
				nm++
				push('X')
			}
			prevBest := argmin3(M[i-1][j-1], I[i-1][j-1], D[i-1][j-1])
			i, j, state = i-1, j-1, prevBest
		case 1: // I: gap in ref, consumes a query base
			nm++
			push('I')
			if M[i-1][j]+p.GapOpen+p.GapExt <= I[i-1][j]+p.GapExt {
				state = 0
			} else {
				state = 1
			}
			i--
		case 2: // D: gap in query, consumes a ref base
			nm++
			push('D')
			if M[i][j-1]+p.GapOpen+p.GapExt <= D[i][j-1]+p.GapExt {
				state = 0
			} else {
				state = 2
			}
			j--
		}
	}

	// runs were built backtracking from the end, so reverse them. X
	// (mismatch) collapses into M for PAF's CIGAR convention, which can
	// make a run adjacent to its neighbor, so merge again on the way out.
	var merged []run
	for k := len(runs) - 1; k >= 0; k-- {
		op := runs[k].op
		if op == 'X' {
			op = 'M'
		}
		if n := len(merged); n > 0 && merged[n-1].op == op {
			merged[n-1].len += runs[k].len
			continue
		}
		merged = append(merged, run{op: op, len: runs[k].len})
	}

	var b []byte
	for _, r := range merged {
		b = append(b, []byte(fmt.Sprintf("%d%c", r.len, r.op))...)
	}
	return string(b), matches, mismatches, nm
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func min3(a, b, c int) int { return min2(min2(a, b), c) }

func argmin3(a, b, c int) int {
	state := 0
	best := a
	if b < best {
		best, state = b, 1
	}
	if c < best {
		state = 2
	}
	return state
}
