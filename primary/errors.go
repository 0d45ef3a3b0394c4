// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

import "errors"

var (
	// ErrUnknownAuthor is returned when a peer header's author is not a
	// committee member.
	ErrUnknownAuthor = errors.New("primary: header author is not a committee member")
	// ErrRoundOutOfRange is returned when a peer header's round is more
	// than one ahead of or behind this node's current round.
	ErrRoundOutOfRange = errors.New("primary: header round is out of the acceptable window")
	// ErrParentsMissing is transient: the caller should schedule a fetch
	// and retry once the parents arrive.
	ErrParentsMissing = errors.New("primary: header parents not yet available")
	// ErrParentQuorumUnmet means the referenced parents, even if present,
	// don't carry enough stake to justify the round advance they imply.
	ErrParentQuorumUnmet = errors.New("primary: header parents do not meet quorum stake")
	// ErrTransmissionsMissing is transient: the caller should schedule a
	// fetch and retry once the transmissions arrive.
	ErrTransmissionsMissing = errors.New("primary: header transmissions not yet available")
	// ErrInvalidSignature means the author's signature over the header
	// does not verify.
	ErrInvalidSignature = errors.New("primary: header author signature is invalid")
	// ErrEquivocation means this author already has a different header on
	// record for the same round; the node refuses to sign the second one.
	ErrEquivocation = errors.New("primary: equivocating header for this (round, author)")
	// ErrNoActiveProposal means CollectSignature was called with no
	// proposal outstanding for the given round.
	ErrNoActiveProposal = errors.New("primary: no active proposal for this round")
	// ErrUnknownSigner means a signature arrived from a non-committee node.
	ErrUnknownSigner = errors.New("primary: signature from a non-committee node")
	// ErrAlreadyCertified means the current round's header already
	// collected quorum; further signatures are rejected with this error
	// and not recorded.
	ErrAlreadyCertified = errors.New("primary: round already certified")
	// ErrRoundNotReady means Advance was called before 2f+1 certificates
	// for the current round were stored.
	ErrRoundNotReady = errors.New("primary: round does not yet have quorum of certificates")
)
