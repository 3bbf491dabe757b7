package export

import "errors"

// Error constants.
var (
	ErrNoRunner    = errors.New("export: no pipeline configured")
	ErrNoProject   = errors.New("export: project id is empty")
	ErrWriteOutput = errors.New("export: write output failed")
)
