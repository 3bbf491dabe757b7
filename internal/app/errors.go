package service

import "errors"

// ErrNoPipeline is returned by Start when no pipeline was configured.
var ErrNoPipeline = errors.New("service has no pipeline")
