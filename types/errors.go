// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import "errors"

var (
	ErrInvalidRound         = errors.New("types: round must be >= 1")
	ErrRoundOneHasParents   = errors.New("types: round 1 header must not reference parents")
	ErrMissingParents       = errors.New("types: round > 1 header must reference parents")
	ErrTooManyTransmissions = errors.New("types: transmission count exceeds MAX_TRANSMISSIONS_PER_BATCH")
)
