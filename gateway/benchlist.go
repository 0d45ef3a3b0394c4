// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"sync"
	"time"

	luxids "github.com/luxfi/ids"
)

// BenchlistConfig controls when a peer is sanctioned for misbehaving or
// going unresponsive.
type BenchlistConfig struct {
	// Threshold is the number of consecutive failures before a peer is
	// benched.
	Threshold int
	// MinimumFailingDuration is how long a peer must have been failing
	// before it can be benched, even past Threshold; guards against
	// benching on a single burst of timeouts.
	MinimumFailingDuration time.Duration
	// Duration is how long a bench lasts once applied.
	Duration time.Duration
}

// DefaultBenchlistConfig matches the teacher stack's production defaults.
func DefaultBenchlistConfig() BenchlistConfig {
	return BenchlistConfig{
		Threshold:              5,
		MinimumFailingDuration: 2 * time.Second,
		Duration:               15 * time.Minute,
	}
}

// Benchlist tracks peers that are currently sanctioned: messages destined
// for a benched peer are dropped rather than sent, and inbound messages
// from a benched peer are dropped rather than dispatched.
type Benchlist struct {
	mu         sync.RWMutex
	cfg        BenchlistConfig
	benched    map[luxids.NodeID]time.Time
	failures   map[luxids.NodeID]int
	failedTime map[luxids.NodeID]time.Time
}

// NewBenchlist creates an empty Benchlist governed by cfg.
func NewBenchlist(cfg BenchlistConfig) *Benchlist {
	return &Benchlist{
		cfg:        cfg,
		benched:    make(map[luxids.NodeID]time.Time),
		failures:   make(map[luxids.NodeID]int),
		failedTime: make(map[luxids.NodeID]time.Time),
	}
}

// IsBenched reports whether nodeID is currently sanctioned, lazily
// expiring a bench whose duration has elapsed.
func (b *Benchlist) IsBenched(nodeID luxids.NodeID) bool {
	b.mu.RLock()
	until, ok := b.benched[nodeID]
	b.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(until) {
		b.mu.Lock()
		delete(b.benched, nodeID)
		b.mu.Unlock()
		return false
	}
	return true
}

// RegisterResponse clears nodeID's failure streak: it answered in time.
func (b *Benchlist) RegisterResponse(nodeID luxids.NodeID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, nodeID)
	delete(b.failedTime, nodeID)
}

// RegisterFailure records a timeout or validation failure from nodeID,
// benching it once Threshold consecutive failures span at least
// MinimumFailingDuration.
func (b *Benchlist) RegisterFailure(nodeID luxids.NodeID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, benched := b.benched[nodeID]; benched {
		return
	}
	if _, ok := b.failedTime[nodeID]; !ok {
		b.failedTime[nodeID] = time.Now()
	}
	b.failures[nodeID]++

	if b.failures[nodeID] >= b.cfg.Threshold {
		if time.Since(b.failedTime[nodeID]) >= b.cfg.MinimumFailingDuration {
			b.benched[nodeID] = time.Now().Add(b.cfg.Duration)
			delete(b.failures, nodeID)
			delete(b.failedTime, nodeID)
		}
	}
}

// Count returns the number of peers currently benched.
func (b *Benchlist) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	now := time.Now()
	for _, until := range b.benched {
		if now.Before(until) {
			n++
		}
	}
	return n
}
