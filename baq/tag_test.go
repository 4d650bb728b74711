package baq

import "gopkg.in/check.v1"

type TagSuite struct{}

var _ = check.Suite(&TagSuite{})

// TestS5RoundTrip checks the BQ tag codec round-trips exactly.
func (s *TagSuite) TestS5RoundTrip(c *check.C) {
	raw := []byte{40, 40, 40}
	bq := []byte{40, 20, 10}

	tag := EncodeTag(raw, bq)
	c.Check(tag, check.DeepEquals, []byte{64, 84, 94})

	got := DecodeTag(raw, tag)
	c.Check(got, check.DeepEquals, bq)
}

// TestCodecRoundTripProperty checks decode(encode(raw, bq)) == bq for any
// bq with bq[i] <= raw[i] and raw[i]-bq[i] <= 64.
func (s *TagSuite) TestCodecRoundTripProperty(c *check.C) {
	raw := []byte{93, 50, 10, 0, 64}
	deltas := []byte{0, 1, 10, 0, 64}
	bq := make([]byte, len(raw))
	for i := range raw {
		bq[i] = raw[i] - deltas[i]
	}

	tag := EncodeTag(raw, bq)
	got := DecodeTag(raw, tag)
	c.Check(got, check.DeepEquals, bq)
}

func (s *TagSuite) TestNoAdjustmentByte(c *check.C) {
	raw := []byte{40}
	bq := []byte{40}
	tag := EncodeTag(raw, bq)
	c.Check(tag[0], check.Equals, byte('@'))
}
