package baq

// AttributeName is the SAM/BAM auxiliary tag this package persists BAQ
// deltas under.
const AttributeName = "BQ"

// EncodeTag produces the BQ attribute bytes for a read: tag[i] =
// rawQual[i] + 64 - bq[i]. Byte 64 ('@') means "no adjustment". Lossless
// only while tag[i] stays in [0,255], i.e. while rawQual[i]-bq[i] <= 191
// -- always true in practice since bq never exceeds rawQual.
func EncodeTag(rawQual, bq []byte) []byte {
	tag := make([]byte, len(rawQual))
	for i := range rawQual {
		tag[i] = byte(int(rawQual[i]) + 64 - int(bq[i]))
	}
	return tag
}

// DecodeTag recovers bq from a read's raw qualities and its BQ attribute:
// bq[i] = max(0, rawQual[i] - (tag[i] - 64)).
func DecodeTag(rawQual, tag []byte) []byte {
	bq := make([]byte, len(rawQual))
	for i := range rawQual {
		delta := int(tag[i]) - 64
		v := int(rawQual[i]) - delta
		if v < 0 {
			v = 0
		}
		bq[i] = byte(v)
	}
	return bq
}
