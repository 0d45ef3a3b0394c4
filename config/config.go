// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds the tunables for the DAG-BFT core: round/anchor/vote
// timeouts, GC depth, batch and queue bounds, and the transmission fetch
// policy.
package config

import (
	"time"

	"github.com/luxfi/ids"
)

// FetchPolicy selects how this node fetches transmissions it does not hold
// when a peer's proposed header references them (see
// dagsync.Syncer.FetchTransmissionFromCommittee). Redundant fetch is safer;
// partitioned fetch is cheaper. Builder defaults to FetchRedundant.
type FetchPolicy uint8

const (
	// FetchRedundant asks the header's author first, then falls back
	// through the rest of the committee one member at a time, in stake
	// order, until one succeeds. Safer, more bandwidth.
	FetchRedundant FetchPolicy = iota
	// FetchPartitioned asks only the header's author, with no fallback.
	// Cheaper.
	FetchPartitioned
)

func (p FetchPolicy) String() string {
	switch p {
	case FetchRedundant:
		return "redundant"
	case FetchPartitioned:
		return "partitioned"
	default:
		return "unknown"
	}
}

// Config holds all tunables for a validator's core.
type Config struct {
	CommitteeEpoch uint64
	ValidatorID    ids.NodeID

	// Round discipline.
	TRound  time.Duration
	TAnchor time.Duration
	TVote   time.Duration

	// Garbage collection.
	GCDepth uint64

	// Worker bounds.
	MaxTransmissionsPerBatch int
	MaxWorkerQueue           int

	// Sync.
	LagThreshold uint64

	// TransmissionFetchPolicy chooses how this node fetches missing
	// transmissions from peers; Builder defaults it to FetchRedundant but any preset
	// or WithFetchPolicy call can override it.
	TransmissionFetchPolicy FetchPolicy
}

// Validate checks the invariants every Config must satisfy before it can
// back a running node.
func (c *Config) Validate() error {
	switch {
	case c.TRound <= 0:
		return ErrRoundTimeoutTooLow
	case c.TAnchor <= 0:
		return ErrAnchorTimeoutTooLow
	case c.TVote <= 0:
		return ErrVoteTimeoutTooLow
	case c.GCDepth < 1:
		return ErrGCDepthTooLow
	case c.MaxTransmissionsPerBatch < 1:
		return ErrInvalidBatchSize
	case c.MaxWorkerQueue < c.MaxTransmissionsPerBatch:
		return ErrInvalidQueueSize
	case c.LagThreshold < 1:
		return ErrInvalidLagThreshold
	}
	return nil
}
