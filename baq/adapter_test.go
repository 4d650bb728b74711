package baq

import (
	"context"

	"gopkg.in/check.v1"
)

// fakeRead is a minimal ReadView for adapter/facade tests, independent of
// any concrete record type.
type fakeRead struct {
	bases      []byte
	quals      []byte
	cigar      []CigarElt
	alignStart int
	alignEnd   int
	refName    string
	name       string
	attrs      map[string]string
	unmapped   bool
	failsQC    bool
	duplicate  bool
}

func (r *fakeRead) Bases() []byte        { return r.bases }
func (r *fakeRead) Qualities() []byte    { return r.quals }
func (r *fakeRead) Cigar() []CigarElt    { return r.cigar }
func (r *fakeRead) AlignStart() int      { return r.alignStart }
func (r *fakeRead) AlignEnd() int        { return r.alignEnd }
func (r *fakeRead) ReferenceName() string { return r.refName }
func (r *fakeRead) ReadName() string     { return r.name }
func (r *fakeRead) Unmapped() bool       { return r.unmapped }
func (r *fakeRead) FailsQC() bool        { return r.failsQC }
func (r *fakeRead) Duplicate() bool      { return r.duplicate }

func (r *fakeRead) StringAttribute(name string) (string, bool) {
	v, ok := r.attrs[name]
	return v, ok
}

func (r *fakeRead) SetAttribute(name, value string) {
	if r.attrs == nil {
		r.attrs = map[string]string{}
	}
	r.attrs[name] = value
}

func matchRead(bases string, qual byte, contig string, start int) *fakeRead {
	b := []byte(bases)
	q := allHighQual(len(b), qual)
	return &fakeRead{
		bases:      b,
		quals:      q,
		cigar:      []CigarElt{{Op: CigarMatch, Len: len(b)}},
		alignStart: start,
		alignEnd:   start + len(b) - 1,
		refName:    contig,
		name:       "r1",
	}
}

type AdapterSuite struct{}

var _ = check.Suite(&AdapterSuite{})

func (s *AdapterSuite) refs() *InMemoryReferenceProvider {
	return NewInMemoryReferenceProvider(map[string][]byte{
		"chr1": []byte("NNNNNNNNNNACGTACGTACGTACGTACGTACGTNNNNNNNNNN"),
	})
}

// TestMonotoneCap checks that bq[i] <= rawQual[i] always.
func (s *AdapterSuite) TestMonotoneCap(c *check.C) {
	read := matchRead("ACGTACGTAC", 30, "chr1", 11)
	result, reason, err := CalcBAQ(context.Background(), read, s.refs(), DefaultConfig())
	c.Assert(err, check.IsNil)
	c.Check(reason, check.Equals, NotSkipped)
	c.Assert(result, check.NotNil)
	for i := range result.BQ {
		c.Check(result.BQ[i] <= result.RawQuals[i], check.Equals, true)
	}
}

// TestS3InsertionPassthrough checks that an inserted base passes its
// quality through untouched.
func (s *AdapterSuite) TestS3InsertionPassthrough(c *check.C) {
	read := &fakeRead{
		bases:      []byte("ACGGTA"),
		quals:      allHighQual(6, 30),
		cigar:      []CigarElt{{Op: CigarMatch, Len: 2}, {Op: CigarInsertion, Len: 1}, {Op: CigarMatch, Len: 3}},
		alignStart: 11,
		alignEnd:   15, // 5 reference-consuming bases (2M + 3M)
		refName:    "chr1",
		name:       "r1",
	}
	result, reason, err := CalcBAQ(context.Background(), read, s.refs(), DefaultConfig())
	c.Assert(err, check.IsNil)
	c.Check(reason, check.Equals, NotSkipped)
	c.Assert(result, check.NotNil)
	c.Check(result.BQ[2], check.Equals, result.RawQuals[2])
}

func (s *AdapterSuite) TestSoftClipPassthrough(c *check.C) {
	read := &fakeRead{
		bases:      []byte("TTACGTA"),
		quals:      allHighQual(7, 30),
		cigar:      []CigarElt{{Op: CigarSoftClip, Len: 2}, {Op: CigarMatch, Len: 5}},
		alignStart: 11,
		alignEnd:   15,
		refName:    "chr1",
		name:       "r1",
	}
	result, reason, err := CalcBAQ(context.Background(), read, s.refs(), DefaultConfig())
	c.Assert(err, check.IsNil)
	c.Check(reason, check.Equals, NotSkipped)
	c.Check(result.BQ[0], check.Equals, result.RawQuals[0])
	c.Check(result.BQ[1], check.Equals, result.RawQuals[1])
}

// TestS6NCigarRejected checks that any N operator aborts the adapter
// with "no result", not an error.
func (s *AdapterSuite) TestS6NCigarRejected(c *check.C) {
	read := &fakeRead{
		bases:      []byte("ACGTACGTAC"),
		quals:      allHighQual(10, 30),
		cigar:      []CigarElt{{Op: CigarMatch, Len: 5}, {Op: CigarSkip, Len: 100}, {Op: CigarMatch, Len: 5}},
		alignStart: 11,
		alignEnd:   120,
		refName:    "chr1",
		name:       "r1",
	}
	result, reason, err := CalcBAQ(context.Background(), read, s.refs(), DefaultConfig())
	c.Assert(err, check.IsNil)
	c.Check(result, check.IsNil)
	c.Check(reason, check.Equals, SkipNCigar)
}

func (s *AdapterSuite) TestOutOfRangeSkipped(c *check.C) {
	read := matchRead("ACGTACGTAC", 30, "chr1", 40)
	result, reason, err := CalcBAQ(context.Background(), read, s.refs(), DefaultConfig())
	c.Assert(err, check.IsNil)
	c.Check(result, check.IsNil)
	c.Check(reason, check.Equals, SkipOutOfRange)
}

func (s *AdapterSuite) TestDeletionAdvancesReferenceOnly(c *check.C) {
	read := &fakeRead{
		bases:      []byte("ACGTAC"),
		quals:      allHighQual(6, 30),
		cigar:      []CigarElt{{Op: CigarMatch, Len: 3}, {Op: CigarDeletion, Len: 2}, {Op: CigarMatch, Len: 3}},
		alignStart: 11,
		alignEnd:   18, // 3 + 2(del) + 3 = 8 ref bases
		refName:    "chr1",
		name:       "r1",
	}
	result, reason, err := CalcBAQ(context.Background(), read, s.refs(), DefaultConfig())
	c.Assert(err, check.IsNil)
	c.Check(reason, check.Equals, NotSkipped)
	c.Assert(result, check.NotNil)
	c.Check(len(result.BQ), check.Equals, 6)
}
