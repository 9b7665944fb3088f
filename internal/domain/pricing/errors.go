package pricing

import "errors"

// Sentinel kinds for pricing errors.
var (
	ErrUnknownNormalization = errors.New("unknown normalization mode")
)
