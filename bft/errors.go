// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bft

import "errors"

var (
	// ErrAnchorRoundNotEven is returned when TryCommit is called on an odd
	// round; only even rounds carry an anchor candidate.
	ErrAnchorRoundNotEven = errors.New("bft: anchor round must be even")
	// ErrAnchorNotCertified means the leader for the anchor round has no
	// stored certificate yet; the caller should retry once one arrives.
	ErrAnchorNotCertified = errors.New("bft: leader's certificate not yet stored for anchor round")
	// ErrVotesNotYetQuorum means round r+1 does not yet carry f+1
	// direct-vote stake for the anchor; the caller should retry once more
	// round r+1 certificates arrive, or eventually Skip the anchor.
	ErrVotesNotYetQuorum = errors.New("bft: anchor does not yet have f+1 direct votes")
	// ErrAlreadyCommitted means the anchor round already has a commit or
	// skip recorded.
	ErrAlreadyCommitted = errors.New("bft: anchor round already resolved")
)
