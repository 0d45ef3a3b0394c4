// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrAlreadyPresent = errors.New("storage: certificate already present")
	ErrRoundGCed      = errors.New("storage: round already garbage collected")
	ErrMissingParent  = errors.New("storage: referenced parent certificate not present")
)
