package repository

import (
	"errors"
	"fmt"

	"github.com/okian/contrib-leaderboard/internal/domain/types"
)

// Sentinel kinds for leaderboard errors.
var (
	ErrNotFound     = fmt.Errorf("contributor %w", types.ErrNotFound)
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
