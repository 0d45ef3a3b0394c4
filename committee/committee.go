// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package committee holds the stake-weighted validator set for an epoch and
// the quorum/availability/leader-election math every other component
// derives from it. It mirrors the shape of the Set/Manager contracts the
// wider Lux validators stack exposes (Has/Len/List/Light/Sample),
// specialized to a single, immutable-for-the-epoch committee rather than a
// chain-indexed manager.
package committee

import (
	"fmt"
	"sort"

	"github.com/luxfi/ids"
	"github.com/luxfi/validators"
)

// Member is one committee seat: a validator id and its stake.
type Member struct {
	NodeID ids.NodeID
	Stake  uint64
}

// Committee is the stake-weighted, epoch-immutable validator set.
type Committee struct {
	epoch   uint64
	members []Member
	byID    map[ids.NodeID]uint64
	total   uint64
	f       uint64 // floor((N-1)/3)
}

// New builds a Committee for epoch from an unordered member list. Members
// are sorted by (stake desc, id asc) so leader election and tie-breaks are
// identical on every honest node given the same input.
func New(epoch uint64, members []Member) (*Committee, error) {
	if len(members) == 0 {
		return nil, ErrEmptyCommittee
	}

	sorted := make([]Member, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Stake != sorted[j].Stake {
			return sorted[i].Stake > sorted[j].Stake
		}
		return lessNodeID(sorted[i].NodeID, sorted[j].NodeID)
	})

	byID := make(map[ids.NodeID]uint64, len(sorted))
	var total uint64
	for _, m := range sorted {
		if _, dup := byID[m.NodeID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMember, m.NodeID)
		}
		if m.Stake == 0 {
			return nil, fmt.Errorf("%w: %s", ErrZeroStake, m.NodeID)
		}
		byID[m.NodeID] = m.Stake
		total += m.Stake
	}

	var f uint64
	if total > 0 {
		f = (total - 1) / 3
	}

	return &Committee{
		epoch:   epoch,
		members: sorted,
		byID:    byID,
		total:   total,
		f:       f,
	}, nil
}

// NewFromValidatorState builds a Committee for epoch from the validator
// records a platform validator-state query returns, the shape
// validators.State.GetCurrentValidators hands back. Only NodeID and Weight
// are consulted: BLS key material for a validator lives behind bcrypto's
// own Registry, not this package, so PublicKey is ignored here.
func NewFromValidatorState(epoch uint64, outputs []validators.GetValidatorOutput) (*Committee, error) {
	members := make([]Member, len(outputs))
	for i, out := range outputs {
		members[i] = Member{NodeID: out.NodeID, Stake: out.Weight}
	}
	return New(epoch, members)
}

// Epoch returns the committee's epoch.
func (c *Committee) Epoch() uint64 { return c.epoch }

// Members returns the ordered (stake desc, id asc) member list. Callers
// must not mutate the returned slice.
func (c *Committee) Members() []Member { return c.members }

// TotalStake returns N, the committee's aggregate stake.
func (c *Committee) TotalStake() uint64 { return c.total }

// F returns floor((N-1)/3), the maximum tolerated Byzantine stake.
func (c *Committee) F() uint64 { return c.f }

// QuorumThreshold returns 2f+1, the aggregate stake required to certify a
// batch or advance a round.
func (c *Committee) QuorumThreshold() uint64 { return 2*c.f + 1 }

// AvailabilityThreshold returns f+1, the aggregate stake required for the
// Bullshark anchor-vote rule.
func (c *Committee) AvailabilityThreshold() uint64 { return c.f + 1 }

// Has reports whether nodeID is a committee member.
func (c *Committee) Has(nodeID ids.NodeID) bool {
	_, ok := c.byID[nodeID]
	return ok
}

// StakeOf returns nodeID's stake, or 0 if it is not a member.
func (c *Committee) StakeOf(nodeID ids.NodeID) uint64 {
	return c.byID[nodeID]
}

// Len returns the number of members.
func (c *Committee) Len() int { return len(c.members) }

// List returns every member as a Validator handle.
func (c *Committee) List() []Validator {
	out := make([]Validator, len(c.members))
	for i, m := range c.members {
		out[i] = &memberHandle{m}
	}
	return out
}

// Light returns the committee's total stake.
func (c *Committee) Light() uint64 { return c.total }

// Validator is a single committee seat, mirroring the Lux validators
// Validator contract (ID/Light).
type Validator interface {
	ID() ids.NodeID
	Light() uint64
}

// Sample draws a deterministic stake-weighted subset of up to size
// members; see sample.go.
func (c *Committee) Sample(size int) ([]ids.NodeID, error) {
	return c.sample(size)
}

// AggregateStake sums the stake of the given node ids, ignoring (rather
// than erroring on) ids that are not committee members, mirroring how
// Storage/Primary treat stray references as simply not contributing to
// quorum.
func (c *Committee) AggregateStake(nodeIDs []ids.NodeID) uint64 {
	var total uint64
	seen := make(map[ids.NodeID]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		total += c.byID[id]
	}
	return total
}

// HasQuorum reports whether nodeIDs' aggregate stake meets 2f+1.
func (c *Committee) HasQuorum(nodeIDs []ids.NodeID) bool {
	return c.AggregateStake(nodeIDs) >= c.QuorumThreshold()
}

// HasAvailability reports whether nodeIDs' aggregate stake meets f+1.
func (c *Committee) HasAvailability(nodeIDs []ids.NodeID) bool {
	return c.AggregateStake(nodeIDs) >= c.AvailabilityThreshold()
}

type memberHandle struct{ m Member }

func (h *memberHandle) ID() ids.NodeID { return h.m.NodeID }
func (h *memberHandle) Light() uint64  { return h.m.Stake }

func lessNodeID(a, b ids.NodeID) bool {
	as, bs := a.String(), b.String()
	return as < bs
}
