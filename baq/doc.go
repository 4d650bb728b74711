// Package baq implements Base Alignment Quality: a profile-HMM posterior
// decoder that re-estimates per-base quality scores for a read aligned to a
// reference window, downweighting bases near indels or in ambiguous
// alignments.
//
// The package is organised leaf-first: encode.go and band.go are pure
// helpers, hmm.go holds the banded forward-backward decoder itself,
// adapter.go walks a read's CIGAR against the decoder's output, tag.go
// persists the result into a BQ attribute, and facade.go selects what a
// caller wants done with a given read. samview.go adapts the package to
// github.com/biogo/hts/sam's Record type for callers that already have
// one.
package baq
