// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package committee

import (
	"math/rand"

	"github.com/luxfi/ids"
)

// Leader returns the deterministic leader for round: a stake-weighted
// pseudo-random draw determined by round and the committee, identical on every
// honest node. Seeding a math/rand source deterministically from the round
// number itself, rather than drawing on real entropy, is what lets every
// node compute the same draw without any coordination.
func (c *Committee) Leader(round uint64) Member {
	// math/rand.New(NewSource(seed)) produces an identical sequence for an
	// identical seed on every node; this is the intentional mechanism for
	// agreement, not a randomness source in the security sense.
	src := rand.New(rand.NewSource(int64(round))) //nolint:gosec // deterministic by design
	target := src.Uint64() % c.total

	var cum uint64
	for _, m := range c.members {
		cum += m.Stake
		if target < cum {
			return m
		}
	}
	// Unreachable given total == sum(stakes), but guards against rounding.
	return c.members[len(c.members)-1]
}

// IsLeader reports whether nodeID is the leader for round.
func (c *Committee) IsLeader(round uint64, nodeID ids.NodeID) bool {
	return c.Leader(round).NodeID == nodeID
}
