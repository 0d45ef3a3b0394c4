// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "errors"

var (
	ErrRoundTimeoutTooLow  = errors.New("config: T_round must be > 0")
	ErrAnchorTimeoutTooLow = errors.New("config: T_anchor must be > 0")
	ErrVoteTimeoutTooLow   = errors.New("config: T_vote must be > 0")
	ErrGCDepthTooLow       = errors.New("config: GC_DEPTH must be >= 1")
	ErrInvalidBatchSize    = errors.New("config: MAX_TRANSMISSIONS_PER_BATCH must be >= 1")
	ErrInvalidQueueSize    = errors.New("config: MAX_WORKER_QUEUE must be >= MAX_TRANSMISSIONS_PER_BATCH")
	ErrInvalidLagThreshold = errors.New("config: LAG_THRESHOLD must be >= 1")
	ErrUnknownPreset       = errors.New("config: unknown preset name")
)
