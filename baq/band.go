package baq

// columnOffset returns the flat offset into a banded matrix row for band b,
// query row i (1-based) and reference column k (1-based):
//
//	x = max(i-b, 0)
//	u(b,i,k) = (k+1-x) * 3
//
// The value at the returned offset is the Match cell; offset+1 is Insert
// and offset+2 is Delete.
func columnOffset(b, i, k int) int {
	x := i - b
	if x < 0 {
		x = 0
	}
	return (k + 1 - x) * 3
}

// rowSize returns the length of a banded matrix row buffer for band b:
// three cells per banded column, plus a three-cell guard at each end so
// that offset-3 and offset+3 reads at the band edges stay in-bounds and
// read zero. Callers must zero a row before use.
func rowSize(b int) int { return 3*(2*b+1) + 6 }

// bandRange returns the inclusive reference column range considered at
// query row i for band b and reference length lRef: [max(1,i-b), min(lRef,i+b)].
func bandRange(i, b, lRef int) (kMin, kMax int) {
	kMin = i - b
	if kMin < 1 {
		kMin = 1
	}
	kMax = i + b
	if kMax > lRef {
		kMax = lRef
	}
	return kMin, kMax
}

// effectiveBand clamps a configured band so it is never wider than the
// longer of the two sequences, and never narrower than |lRef-lQuery| or 1.
func effectiveBand(configured, lRef, lQuery int) int {
	b := configured
	longest := lRef
	if lQuery > longest {
		longest = lQuery
	}
	if b > longest {
		b = longest
	}
	diff := lRef - lQuery
	if diff < 0 {
		diff = -diff
	}
	if b < diff {
		b = diff
	}
	if b < 1 {
		b = 1
	}
	return b
}
