// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import "time"

// HealthConfig bounds what this node considers a healthy gateway.
type HealthConfig struct {
	// MaxOutstandingRequests is the number of requests this node will have
	// in flight, across all peers, before it considers itself unhealthy.
	MaxOutstandingRequests int
	// MaxOutstandingDuration is a per-request duration bound. Gateway does
	// not consult it: a request stays outstanding until its caller's
	// context ends, and only then counts as a failure.
	MaxOutstandingDuration time.Duration
	// MaxBenchedPortion is the maximum fraction of the committee that may
	// be benched before the gateway reports itself unhealthy (a high
	// fraction usually means this node's own clock or network is at
	// fault, not the peers).
	MaxBenchedPortion float64
}

// DefaultHealthConfig matches the teacher stack's production defaults.
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		MaxOutstandingRequests: 1 << 12,
		MaxOutstandingDuration: 30 * time.Second,
		MaxBenchedPortion:      0.5,
	}
}

// Health is a point-in-time snapshot of gateway liveness.
type Health struct {
	OutstandingRequests int
	BenchedPeers        int
	CommitteeSize       int
	Healthy             bool
}
