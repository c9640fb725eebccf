package model

import "errors"

var (
	errFieldOverflow     = errors.New("model: sum of field lengths exceeds record size")
	errOverlappingFields = errors.New("model: overlapping fields in record layout")
)
