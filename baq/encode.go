package baq

// baseCode maps an ASCII base byte to its 0/1/2/3 encoding for A/C/G/T
// (case-insensitive); any other byte, including N, maps to 4 ("ambiguous").
var baseCode [256]byte

func init() {
	for i := range baseCode {
		baseCode[i] = 4
	}
	baseCode['a'], baseCode['A'] = 0, 0
	baseCode['c'], baseCode['C'] = 1, 1
	baseCode['g'], baseCode['G'] = 2, 2
	baseCode['t'], baseCode['T'] = 3, 3
}

// EncodeBases maps an ASCII base sequence to its encoded form: 0/1/2/3 for
// A/C/G/T (case-insensitive) and 4 for any other byte.
func EncodeBases(seq []byte) []byte {
	enc := make([]byte, len(seq))
	for i, b := range seq {
		enc[i] = baseCode[b]
	}
	return enc
}
