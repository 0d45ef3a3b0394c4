// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package committee

import "errors"

var (
	ErrEmptyCommittee  = errors.New("committee: member list must not be empty")
	ErrDuplicateMember = errors.New("committee: duplicate member")
	ErrZeroStake       = errors.New("committee: member stake must be > 0")
	ErrNegativeSampleSize = errors.New("committee: sample size must be >= 0")
)
