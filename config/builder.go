// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"time"

	"github.com/luxfi/ids"
)

// Builder provides a fluent interface for constructing a Config, mirroring
// the validate-as-you-go style used across the Lux consensus stack.
type Builder struct {
	cfg *Config
	err error
}

// NewBuilder starts from sane defaults (the Mainnet preset's values, except
// for a 5,000-entry worker queue) and lets
// the caller override individual fields before Build validates everything
// at once.
func NewBuilder() *Builder {
	return &Builder{cfg: defaultConfig()}
}

func defaultConfig() *Config {
	return &Config{
		TRound:                   10 * time.Second,
		TAnchor:                  2 * time.Second,
		TVote:                    2 * time.Second,
		GCDepth:                  50,
		MaxTransmissionsPerBatch: 500,
		MaxWorkerQueue:           5_000,
		LagThreshold:             50,
		TransmissionFetchPolicy:  FetchRedundant,
	}
}

// FromPreset loads one of the named presets as the builder's starting point.
func (b *Builder) FromPreset(cfg Config) *Builder {
	if b.err != nil {
		return b
	}
	clone := cfg
	b.cfg = &clone
	return b
}

// WithIdentity sets the committee epoch and this validator's own node id.
func (b *Builder) WithIdentity(epoch uint64, validatorID ids.NodeID) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.CommitteeEpoch = epoch
	b.cfg.ValidatorID = validatorID
	return b
}

// WithRoundTimeouts sets T_round, T_anchor, T_vote.
func (b *Builder) WithRoundTimeouts(round, anchor, vote time.Duration) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.TRound = round
	b.cfg.TAnchor = anchor
	b.cfg.TVote = vote
	return b
}

// WithGCDepth sets GC_DEPTH.
func (b *Builder) WithGCDepth(depth uint64) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.GCDepth = depth
	return b
}

// WithWorkerBounds sets MAX_TRANSMISSIONS_PER_BATCH and MAX_WORKER_QUEUE.
func (b *Builder) WithWorkerBounds(maxPerBatch, maxQueue int) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.MaxTransmissionsPerBatch = maxPerBatch
	b.cfg.MaxWorkerQueue = maxQueue
	return b
}

// WithLagThreshold sets LAG_THRESHOLD.
func (b *Builder) WithLagThreshold(lag uint64) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.LagThreshold = lag
	return b
}

// WithFetchPolicy sets the transmission fetch policy, overriding the
// default (FetchRedundant).
func (b *Builder) WithFetchPolicy(policy FetchPolicy) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.TransmissionFetchPolicy = policy
	return b
}

// Build validates accumulated settings and returns the finished Config.
func (b *Builder) Build() (Config, error) {
	if b.err != nil {
		return Config{}, b.err
	}
	if err := b.cfg.Validate(); err != nil {
		return Config{}, err
	}
	return *b.cfg, nil
}
