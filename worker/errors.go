// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package worker

import "errors"

var (
	ErrInvalidTransmission = errors.New("worker: transmission failed verification")
	ErrQueueFull           = errors.New("worker: pending queue at capacity")
)
