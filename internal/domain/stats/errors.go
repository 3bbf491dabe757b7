package stats

import "errors"

// ErrInvalidRange is returned for unparsable or inverted throughput date ranges.
var ErrInvalidRange = errors.New("invalid date range")
