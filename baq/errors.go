package baq

import "github.com/pkg/errors"

var (
	// ErrInvalidInput marks a buffer length that disagrees with its
	// declared partner, or an empty reference or query, given to Decode.
	ErrInvalidInput = errors.New("baq: invalid input")

	// ErrMissingTag is returned, in strict mode only, when a caller asks
	// to decode a read's BQ tag and none is present.
	ErrMissingTag = errors.New("baq: missing BQ attribute")
)
