package baq

import (
	"context"
	"sync"

	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"
)

// cigarOpFromSAM translates github.com/biogo/hts/sam's CigarOpType into
// this package's CigarOp vocabulary. CigarEqual, CigarMismatch and
// CigarBack have no BAQ meaning and are dropped by SAMReadView.Cigar.
var cigarOpFromSAM = map[sam.CigarOpType]CigarOp{
	sam.CigarMatch:       CigarMatch,
	sam.CigarInsertion:   CigarInsertion,
	sam.CigarDeletion:    CigarDeletion,
	sam.CigarSkipped:     CigarSkip,
	sam.CigarSoftClipped: CigarSoftClip,
	sam.CigarHardClipped: CigarHardClip,
	sam.CigarPadded:      CigarPad,
}

// SAMReadView adapts a *sam.Record to ReadView, using the sam package's
// own Flags and CigarOpType as the source of truth for exclusion and
// CIGAR semantics rather than redeclaring an equivalent enum.
type SAMReadView struct {
	Record *sam.Record
}

func (v SAMReadView) Bases() []byte     { return v.Record.Seq.Expand() }
func (v SAMReadView) Qualities() []byte { return v.Record.Qual }

func (v SAMReadView) Cigar() []CigarElt {
	src := v.Record.Cigar
	out := make([]CigarElt, 0, len(src))
	for _, op := range src {
		ct, ok := cigarOpFromSAM[op.Type()]
		if !ok {
			continue
		}
		out = append(out, CigarElt{Op: ct, Len: op.Len()})
	}
	return out
}

// AlignStart returns the 1-based inclusive alignment start; sam.Record.Pos
// is 0-based.
func (v SAMReadView) AlignStart() int { return v.Record.Pos + 1 }

// AlignEnd returns the 1-based inclusive alignment end.
func (v SAMReadView) AlignEnd() int { return v.Record.End() }

func (v SAMReadView) ReferenceName() string { return v.Record.Ref.Name() }
func (v SAMReadView) ReadName() string      { return v.Record.Name }

func (v SAMReadView) Unmapped() bool  { return v.Record.Flags&sam.Unmapped != 0 }
func (v SAMReadView) FailsQC() bool   { return v.Record.Flags&sam.QCFail != 0 }
func (v SAMReadView) Duplicate() bool { return v.Record.Flags&sam.Duplicate != 0 }

func (v SAMReadView) StringAttribute(name string) (string, bool) {
	if len(name) != 2 {
		return "", false
	}
	aux, ok := v.Record.Tag([]byte(name))
	if !ok {
		return "", false
	}
	return string(aux[3:]), true
}

// SetAttribute replaces any existing aux field with the same tag and
// appends a new Z-typed (text) aux field holding value.
func (v SAMReadView) SetAttribute(name string, value string) {
	var t sam.Tag
	copy(t[:], name)
	aux, err := sam.NewAux(t, sam.Text(value))
	if err != nil {
		return
	}
	kept := make(sam.AuxFields, 0, len(v.Record.AuxFields)+1)
	for _, f := range v.Record.AuxFields {
		if f.Tag() != t {
			kept = append(kept, f)
		}
	}
	v.Record.AuxFields = append(kept, aux)
}

// InMemoryReferenceProvider is a minimal ReferenceProvider backed by an
// in-memory map of contig name to full sequence. It is adequate for
// tests and small references; production callers should supply their
// own, e.g. one backed by github.com/biogo/hts/fai, which this package
// does not depend on directly.
type InMemoryReferenceProvider struct {
	mu   sync.RWMutex
	seqs map[string][]byte
}

// NewInMemoryReferenceProvider copies seqs so later caller mutation of
// the input map or its slices cannot affect the provider.
func NewInMemoryReferenceProvider(seqs map[string][]byte) *InMemoryReferenceProvider {
	cp := make(map[string][]byte, len(seqs))
	for name, seq := range seqs {
		cp[name] = append([]byte(nil), seq...)
	}
	return &InMemoryReferenceProvider{seqs: cp}
}

func (p *InMemoryReferenceProvider) ContigLength(contig string) (uint64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	seq, ok := p.seqs[contig]
	if !ok {
		return 0, errors.Errorf("baq: unknown contig %q", contig)
	}
	return uint64(len(seq)), nil
}

func (p *InMemoryReferenceProvider) Fetch(_ context.Context, contig string, start, stop int) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	seq, ok := p.seqs[contig]
	if !ok {
		return nil, errors.Errorf("baq: unknown contig %q", contig)
	}
	if start < 1 || stop > len(seq) || start > stop {
		return nil, errors.Errorf("baq: range %d-%d out of bounds for contig %q (length %d)", start, stop, contig, len(seq))
	}
	out := make([]byte, stop-start+1)
	copy(out, seq[start-1:stop])
	return out, nil
}
