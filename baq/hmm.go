package baq

import (
	"math"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Emission constants: the match/mismatch partition and the constant
// insertion emission.
const (
	emitMatchShare = 1.0 / 3.0
	emitInsert     = 1.0 / 4.0
)

// Config holds the glocal HMM decoder's tuning parameters.
type Config struct {
	D     float64 // gap-open probability
	E     float64 // gap-extension probability
	Band  int     // configured band
	MinQ  int     // quality floor
}

// DefaultConfig returns the package's default tuning.
func DefaultConfig() Config {
	return Config{D: 1e-3, E: 0.1, Band: 7, MinQ: 4}
}

// Posterior is the decoder's per-query-base result: the winning state word
// and its phred-scaled posterior error probability.
type Posterior struct {
	State int32
	Q     byte
}

// transitions holds the profile HMM's 3x3 transition matrix for one Decode
// call; newTransitions also returns the boundary probabilities it is
// derived from.
type transitions struct {
	mm, mi, md float64
	im, ii     float64
	dm, dd     float64
}

func newTransitions(d, e float64, lQuery int) (t transitions, sM, sI, bM, bI float64) {
	n := float64(lQuery)
	sM = 1 / (2*n + 2)
	sI = sM
	bM = (1 - d) / n
	bI = d / n
	t.mm = (1 - 2*d) * (1 - sM)
	t.mi = d * (1 - sM)
	t.md = d * (1 - sM)
	t.im = (1 - e) * (1 - sI)
	t.ii = e * (1 - sI)
	t.dm = 1 - e
	t.dd = e
	return t, sM, sI, bM, bI
}

// emitMatch returns E(i,k): 1 when either base is ambiguous (encoded 4), 1
// minus the error probability on an exact match, or a third of the error
// probability otherwise.
func emitMatch(r, q byte, errP float64) float64 {
	switch {
	case r == 4 || q == 4:
		return 1
	case r == q:
		return 1 - errP
	default:
		return errP * emitMatchShare
	}
}

// scratch holds the per-call forward/backward matrices and scaling vector,
// reused across Decode calls via scratchPool to avoid allocating two full
// matrices per read.
type scratch struct {
	f, b [][]float64
	s    []float64
}

var scratchPool = sync.Pool{New: func() interface{} { return new(scratch) }}

func zero(row []float64) {
	for i := range row {
		row[i] = 0
	}
}

func getScratch(lQuery, band int) *scratch {
	sc := scratchPool.Get().(*scratch)
	rs := rowSize(band)
	rows := lQuery + 1

	grow := func(m [][]float64) [][]float64 {
		if cap(m) < rows {
			m = make([][]float64, rows)
		} else {
			m = m[:rows]
		}
		for i := range m {
			if cap(m[i]) < rs {
				m[i] = make([]float64, rs)
			} else {
				m[i] = m[i][:rs]
				zero(m[i])
			}
		}
		return m
	}
	sc.f = grow(sc.f)
	sc.b = grow(sc.b)

	if cap(sc.s) < lQuery+2 {
		sc.s = make([]float64, lQuery+2)
	} else {
		sc.s = sc.s[:lQuery+2]
		zero(sc.s)
	}
	return sc
}

func putScratch(sc *scratch) { scratchPool.Put(sc) }

// rowSum sums the M/I/D cells across the in-band columns of a row; the
// band's cells are contiguous in the row buffer, so this is a single
// slice reduction.
func rowSum(row []float64, b, i, kMin, kMax int) float64 {
	first := columnOffset(b, i, kMin)
	last := columnOffset(b, i, kMax) + 2
	return floats.Sum(row[first : last+1])
}

// Decode runs the banded forward-backward profile HMM posterior decoder.
// ref and query are already base-encoded (see
// EncodeBases); qual holds the query's raw phred qualities. It returns one
// Posterior per query base.
func Decode(ref, query, qual []byte, cfg Config) ([]Posterior, error) {
	if len(query) != len(qual) {
		return nil, errors.Wrapf(ErrInvalidInput, "query length %d disagrees with quality length %d", len(query), len(qual))
	}
	lRef := len(ref)
	lQuery := len(query)
	if lRef == 0 || lQuery == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "empty reference or query")
	}

	band := effectiveBand(cfg.Band, lRef, lQuery)

	// 1-based local copies so the recurrence below can use 1-based
	// indices directly; index 0 is the unused guard element.
	R := make([]byte, lRef+1)
	copy(R[1:], ref)
	Q := make([]byte, lQuery+1)
	copy(Q[1:], query)

	sc := getScratch(lQuery, band)
	defer putScratch(sc)
	f, b, s := sc.f, sc.b, sc.s

	trans, sM, sI, bM, bI := newTransitions(cfg.D, cfg.E, lQuery)
	minQ := byte(cfg.MinQ)

	errAt := func(i int) float64 {
		qv := qual[i-1]
		if qv < minQ {
			qv = minQ
		}
		return errProb[qv]
	}

	// Forward pass.
	for i := 1; i <= lQuery; i++ {
		kMin, kMax := bandRange(i, band, lRef)
		row := f[i]
		qerr := errAt(i)

		if i == 1 {
			for k := kMin; k <= kMax; k++ {
				u := columnOffset(band, i, k)
				row[u] = emitMatch(R[k], Q[i], qerr) * bM
				row[u+1] = emitInsert * bI
			}
		} else {
			prev := f[i-1]
			for k := kMin; k <= kMax; k++ {
				u := columnOffset(band, i, k)
				v11 := columnOffset(band, i-1, k-1)
				v10 := columnOffset(band, i-1, k)
				e := emitMatch(R[k], Q[i], qerr)
				row[u] = e * (trans.mm*prev[v11] + trans.im*prev[v11+1] + trans.dm*prev[v11+2])
				row[u+1] = emitInsert * (trans.mi*prev[v10] + trans.ii*prev[v10+1])
			}
		}
		// D is a horizontal recursion within the row, so it must run in
		// increasing k order after M and I are in place for this row.
		for k := kMin; k <= kMax; k++ {
			u := columnOffset(band, i, k)
			v01 := columnOffset(band, i, k-1)
			row[u+2] = trans.md*row[v01] + trans.dd*row[v01+2]
		}

		sum := rowSum(row, band, i, kMin, kMax)
		s[i] = sum
		if sum > 0 {
			floats.Scale(1/sum, row)
		}
	}

	kMinL, kMaxL := bandRange(lQuery, band, lRef)
	lastF := f[lQuery]
	var term float64
	for k := kMinL; k <= kMaxL; k++ {
		u := columnOffset(band, lQuery, k)
		term += lastF[u]*sM + lastF[u+1]*sI
	}
	s[lQuery+1] = term

	// Backward pass.
	baseRow := b[lQuery]
	denom := s[lQuery] * s[lQuery+1]
	if denom > 0 {
		for k := kMinL; k <= kMaxL; k++ {
			u := columnOffset(band, lQuery, k)
			baseRow[u] = sM / denom
			baseRow[u+1] = sI / denom
		}
	}
	// The D cell at the last row has no "next row" to transition into, so
	// it only has the horizontal m_DD decay, run right-to-left with the
	// guard supplying the k=kMax+1 base case as zero.
	// (it stays zero throughout: the base case above already folds in
	// 1/(s[L_query]*s[L_query+1]), so this row is not rescaled again.)
	for k := kMaxL; k >= kMinL; k-- {
		u := columnOffset(band, lQuery, k)
		next := columnOffset(band, lQuery, k+1)
		baseRow[u+2] = trans.dd * baseRow[next+2]
	}

	for i := lQuery - 1; i >= 1; i-- {
		kMin, kMax := bandRange(i, band, lRef)
		row := b[i]
		next := b[i+1]
		// y gates the current row's own D recursion off at row 1: no
		// deletion state is reachable before the first query base.
		y := 1.0
		if i == 1 {
			y = 0
		}
		for k := kMax; k >= kMin; k-- {
			u := columnOffset(band, i, k)
			w11 := columnOffset(band, i+1, k+1)
			w10 := columnOffset(band, i+1, k)
			v01 := columnOffset(band, i, k+1)
			qerr := errAt(i + 1)
			var eNext float64
			if k+1 <= lRef {
				eNext = emitMatch(R[k+1], Q[i+1], qerr)
			}
			mNext := next[w11] * eNext
			iNext := next[w10+1] * emitInsert
			row[u] = trans.mm*mNext + trans.mi*iNext + y*trans.md*row[v01+2]
			row[u+1] = trans.im*mNext + trans.ii*iNext
			row[u+2] = trans.dm*mNext + y*trans.dd*row[v01+2]
		}
		if s[i] > 0 {
			floats.Scale(1/s[i], row)
		}
	}

	// Posterior decoding.
	result := make([]Posterior, lQuery)
	for i := 1; i <= lQuery; i++ {
		kMin, kMax := bandRange(i, band, lRef)
		fr, br := f[i], b[i]
		var maxVal, sum float64
		var maxState int32
		for k := kMin; k <= kMax; k++ {
			u := columnOffset(band, i, k)
			zM := fr[u] * br[u]
			zI := fr[u+1] * br[u+1]
			sum += zM + zI
			if zM > maxVal {
				maxVal = zM
				maxState = encodeState(k-1, false)
			}
			if zI > maxVal {
				maxVal = zI
				maxState = encodeState(k-1, true)
			}
		}

		q := 99
		if sum > 0 {
			ratio := 1 - maxVal/sum
			if ratio > 0 {
				qf := -10*math.Log10(ratio) + 0.499
				if qf < 99 {
					q = int(qf)
				}
			}
		}
		if q < 0 {
			q = 0
		}
		result[i-1] = Posterior{State: maxState, Q: byte(q)}
	}

	return result, nil
}
