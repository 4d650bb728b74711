package baq

import (
	"context"

	"github.com/pkg/errors"
)

// CigarOp is the CIGAR operator vocabulary the adapter understands.
// Concrete ReadView implementations translate their own CIGAR
// representation into these; see samview.go for the
// github.com/biogo/hts/sam-backed one.
type CigarOp byte

const (
	CigarMatch CigarOp = iota
	CigarInsertion
	CigarDeletion
	CigarSkip
	CigarSoftClip
	CigarHardClip
	CigarPad
)

// CigarElt is a single CIGAR run.
type CigarElt struct {
	Op  CigarOp
	Len int
}

// ReadView is the aligned-read collaborator consumed by the adapter:
// bases, qualities, CIGAR, 1-based inclusive alignment bounds, and the
// attribute accessors the tag codec and facade need.
type ReadView interface {
	Bases() []byte
	Qualities() []byte
	Cigar() []CigarElt
	AlignStart() int
	AlignEnd() int
	ReferenceName() string
	ReadName() string
	StringAttribute(name string) (string, bool)
	SetAttribute(name string, value string)
	Unmapped() bool
	FailsQC() bool
	Duplicate() bool
}

// ReferenceProvider is the reference-sequence collaborator consumed by the
// adapter: a byte window for a named contig and the contig's full length,
// both 1-based inclusive where relevant.
type ReferenceProvider interface {
	Fetch(ctx context.Context, contig string, start, stop int) ([]byte, error)
	ContigLength(contig string) (uint64, error)
}

// BaqResult is the outcome of recomputing a read's base alignment quality.
type BaqResult struct {
	RefBases  []byte
	RawQuals  []byte
	ReadBases []byte
	RefOffset int
	State     []int32
	BQ        []byte
}

// SkipReason distinguishes the ways CalcBAQ can decline to produce a
// BaqResult without that being an error.
type SkipReason int

const (
	// NotSkipped means CalcBAQ ran to completion and returned a result.
	NotSkipped SkipReason = iota
	// SkipNCigar means the read's CIGAR contained an N (skip) operator.
	SkipNCigar
	// SkipOutOfRange means the extended reference window would have
	// exceeded the contig's length.
	SkipOutOfRange
)

// CalcBAQ extends the read's reference window by half the configured band
// plus any leading/trailing insertion run, invokes Decode, and caps
// posterior qualities against the read's CIGAR. It returns a nil result
// and a non-zero SkipReason -- not an error -- when the CIGAR contains an
// N operator or the computed window would exceed the contig.
func CalcBAQ(ctx context.Context, read ReadView, refs ReferenceProvider, cfg Config) (*BaqResult, SkipReason, error) {
	cigar := read.Cigar()
	for _, c := range cigar {
		if c.Op == CigarSkip {
			return nil, SkipNCigar, nil
		}
	}

	offset := cfg.Band / 2
	leadingI, trailingI := flankingInsertions(cigar)

	start := read.AlignStart() - offset - leadingI
	if start < 1 {
		start = 1
	}
	stop := read.AlignEnd() + offset + trailingI

	contig := read.ReferenceName()
	contigLen, err := refs.ContigLength(contig)
	if err != nil {
		return nil, NotSkipped, errors.Wrapf(err, "baq: contig length for %s", contig)
	}
	if uint64(stop) > contigLen {
		return nil, SkipOutOfRange, nil
	}

	refWindow, err := refs.Fetch(ctx, contig, start, stop)
	if err != nil {
		return nil, NotSkipped, errors.Wrapf(err, "baq: fetch %s:%d-%d", contig, start, stop)
	}
	// refOffset is non-positive whenever the window was pushed back by the
	// half-band/leading-insertion extension past the alignment's own
	// start; the M-case cap step below relies on that sign.
	refOffset := start - read.AlignStart()

	rawQual := read.Qualities()
	readBases := read.Bases()

	posteriors, err := Decode(EncodeBases(refWindow), EncodeBases(readBases), rawQual, cfg)
	if err != nil {
		return nil, NotSkipped, err
	}

	state := make([]int32, len(posteriors))
	bq := make([]byte, len(posteriors))
	for i, p := range posteriors {
		state[i] = p.State
		bq[i] = p.Q
	}

	readI, refI := 0, 0
	for _, c := range cigar {
		switch c.Op {
		case CigarHardClip, CigarPad:
			// no cursor movement
		case CigarInsertion, CigarSoftClip:
			for n := 0; n < c.Len; n++ {
				bq[readI] = rawQual[readI]
				readI++
			}
		case CigarDeletion:
			refI += c.Len
		case CigarMatch:
			for n := 0; n < c.Len; n++ {
				expected := refI - refOffset
				if stateIsIndel(state[readI]) || stateColumn(state[readI]) != expected {
					bq[readI] = 0
				} else if bq[readI] > rawQual[readI] {
					bq[readI] = rawQual[readI]
				}
				readI++
				refI++
			}
		}
	}

	return &BaqResult{
		RefBases:  refWindow,
		RawQuals:  rawQual,
		ReadBases: readBases,
		RefOffset: refOffset,
		State:     state,
		BQ:        bq,
	}, NotSkipped, nil
}

func flankingInsertions(cigar []CigarElt) (leading, trailing int) {
	if len(cigar) == 0 {
		return 0, 0
	}
	if cigar[0].Op == CigarInsertion {
		leading = cigar[0].Len
	}
	if last := cigar[len(cigar)-1]; last.Op == CigarInsertion {
		trailing = last.Len
	}
	return leading, trailing
}
