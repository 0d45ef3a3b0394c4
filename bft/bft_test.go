// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bft

import (
	"testing"
	"time"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/ids"
	"github.com/luxfi/narwhal/storage"
	"github.com/luxfi/narwhal/types"
	"github.com/stretchr/testify/require"
)

// bftFixture is a 4-member, equal-stake committee sharing one storage,
// built by inserting hand-assembled certificates directly rather than
// driving a real Primary round state machine: bft only ever reads
// storage, so its tests only need valid (round, author, parents) shapes,
// not real signatures or quorum-respecting proposal flow.
type bftFixture struct {
	com   *committee.Committee
	store *storage.Storage
	nodes []luxids.NodeID
}

func newBFTFixture(t *testing.T) *bftFixture {
	t.Helper()

	var members []committee.Member
	var nodes []luxids.NodeID
	for i := 0; i < 4; i++ {
		nodeID := luxids.BuildTestNodeID([]byte{byte(i + 1)})
		members = append(members, committee.Member{NodeID: nodeID, Stake: 1})
		nodes = append(nodes, nodeID)
	}
	com, err := committee.New(1, members)
	require.NoError(t, err)

	return &bftFixture{com: com, store: storage.New(), nodes: nodes}
}

// insert builds and stores a certificate for author at round, with the
// given parents, returning its id.
func (f *bftFixture) insert(t *testing.T, author luxids.NodeID, round uint64, parents []ids.CertificateID) ids.CertificateID {
	t.Helper()
	h := types.BatchHeader{
		Author:                 author,
		Round:                  round,
		Timestamp:              time.Unix(int64(round), 0),
		PreviousCertificateIDs: parents,
	}
	id := h.ID()
	cert := &types.BatchCertificate{Header: h}
	require.NoError(t, f.store.InsertCertificate(id, cert))
	return id
}

// round1 inserts a certificate for every committee member at round 1,
// with no parents, and returns their ids.
func (f *bftFixture) round1(t *testing.T) []ids.CertificateID {
	t.Helper()
	var out []ids.CertificateID
	for _, n := range f.nodes {
		out = append(out, f.insert(t, n, 1, nil))
	}
	return out
}

func TestTryCommitRejectsOddRound(t *testing.T) {
	f := newBFTFixture(t)
	e := New(f.com, f.store, 1, nil, nil)

	_, err := e.TryCommit(3)
	require.ErrorIs(t, err, ErrAnchorRoundNotEven)
}

func TestTryCommitFailsWhenAnchorNotCertified(t *testing.T) {
	f := newBFTFixture(t)
	e := New(f.com, f.store, 1, nil, nil)

	_, err := e.TryCommit(2)
	require.ErrorIs(t, err, ErrAnchorNotCertified)
}

func TestTryCommitFailsWithoutQuorumVotes(t *testing.T) {
	f := newBFTFixture(t)
	e := New(f.com, f.store, 1, nil, nil)

	r1 := f.round1(t)
	leader2 := f.com.Leader(2).NodeID
	f.insert(t, leader2, 2, r1)

	// Round 3 certificates exist but none reference the anchor as a
	// parent, so it never collects direct votes.
	for _, n := range f.nodes {
		f.insert(t, n, 3, r1)
	}

	_, err := e.TryCommit(2)
	require.ErrorIs(t, err, ErrVotesNotYetQuorum)
}

func TestTryCommitSucceedsWithDirectVotes(t *testing.T) {
	f := newBFTFixture(t)
	e := New(f.com, f.store, 1, nil, nil)

	r1 := f.round1(t)
	leader2 := f.com.Leader(2).NodeID
	anchor := f.insert(t, leader2, 2, r1)

	// Every other round-2 certificate carries no vote for the anchor;
	// two of the four round-3 authors reference it directly, which is
	// enough stake (f+1 == 2 for a 4-member committee).
	for _, n := range f.nodes {
		if n == leader2 {
			continue
		}
		f.insert(t, n, 2, r1)
	}
	voters := 0
	for _, n := range f.nodes {
		if voters >= 2 {
			break
		}
		f.insert(t, n, 3, []ids.CertificateID{anchor})
		voters++
	}

	sub, err := e.TryCommit(2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), sub.AnchorRound)
	require.Equal(t, anchor, sub.AnchorID)
	// anchor + its 4 round-1 parents.
	require.Len(t, sub.CertificateIDs, 5)
	require.Equal(t, uint64(2), e.CommittedRound())

	_, err = e.TryCommit(2)
	require.ErrorIs(t, err, ErrAlreadyCommitted)
}

func TestSkipRejectsOddRoundAndAlreadyResolved(t *testing.T) {
	f := newBFTFixture(t)
	e := New(f.com, f.store, 1, nil, nil)

	require.ErrorIs(t, e.Skip(3), ErrAnchorRoundNotEven)
	require.NoError(t, e.Skip(2))
	require.ErrorIs(t, e.Skip(2), ErrAlreadyCommitted)
}

// TestTryCommitWalksChainOfUncommittedAnchors exercises the full chain
// walk: round 2's anchor times out and is skipped without ever reaching
// f+1 direct votes, but round 4's anchor both collects direct votes and
// is reachable back to round 2's anchor via certificate ancestry, so a
// single TryCommit(4) call sweeps both anchors into one OrderedSubDAG.
func TestTryCommitWalksChainOfUncommittedAnchors(t *testing.T) {
	f := newBFTFixture(t)
	e := New(f.com, f.store, 2, nil, nil)

	r1 := f.round1(t)

	leader2 := f.com.Leader(2).NodeID
	anchor2 := f.insert(t, leader2, 2, r1)
	var round2 []ids.CertificateID
	round2 = append(round2, anchor2)
	for _, n := range f.nodes {
		if n == leader2 {
			continue
		}
		round2 = append(round2, f.insert(t, n, 2, r1))
	}

	// Exactly one round-3 author references the anchor: not enough
	// stake to commit round 2 directly.
	voter := f.nodes[0]
	voterCert := f.insert(t, voter, 3, []ids.CertificateID{anchor2})
	var round3 []ids.CertificateID
	round3 = append(round3, voterCert)
	for _, n := range f.nodes {
		if n == voter {
			continue
		}
		var parents []ids.CertificateID
		for _, id := range round2 {
			if id != anchor2 {
				parents = append(parents, id)
			}
		}
		round3 = append(round3, f.insert(t, n, 3, parents))
	}

	_, err := e.TryCommit(2)
	require.ErrorIs(t, err, ErrVotesNotYetQuorum)
	require.NoError(t, e.Skip(2))

	leader4 := f.com.Leader(4).NodeID
	anchor4 := f.insert(t, leader4, 4, round3)
	for _, n := range f.nodes {
		if n == leader4 {
			continue
		}
		f.insert(t, n, 4, round3)
	}

	voters := 0
	for _, n := range f.nodes {
		if voters >= 2 {
			break
		}
		f.insert(t, n, 5, []ids.CertificateID{anchor4})
		voters++
	}

	sub, err := e.TryCommit(4)
	require.NoError(t, err)
	require.Equal(t, uint64(4), sub.AnchorRound)
	require.Equal(t, anchor4, sub.AnchorID)

	seen := map[ids.CertificateID]struct{}{}
	for _, id := range sub.CertificateIDs {
		_, dup := seen[id]
		require.False(t, dup, "certificate committed twice")
		seen[id] = struct{}{}
	}
	require.Contains(t, seen, anchor2)
	require.Contains(t, seen, anchor4)
	// round 1 (4) + round 2 (4) + round 3 (4) + round 4 anchor (1).
	require.Len(t, sub.CertificateIDs, 13)

	require.Equal(t, uint64(4), e.CommittedRound())
	require.Equal(t, uint64(2), e.GCRound())

	for _, id := range r1 {
		_, ok := f.store.GetCertificate(id)
		require.False(t, ok, "round 1 certificates should have been garbage collected")
	}
}
