package derive

import "errors"

// ErrUnknownStrategy is returned for an unsupported author or source strategy.
var ErrUnknownStrategy = errors.New("unknown derivation strategy")
