// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger is the read-only facade between the core and everything
// it is explicitly not responsible for: transaction verification, VM
// execution, and the persistent block store. dagsync and node consume it
// through the Ledger interface below; the core never mutates it.
package ledger

import (
	"github.com/luxfi/narwhal/bcrypto"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/ids"
	"github.com/luxfi/narwhal/types"
)

// Ledger is the external collaborator the core consumes. Implementations
// are supplied by block production; the core treats every method as
// read-only and side-effect-free from its own point of view.
type Ledger interface {
	// Committee returns the committee for the ledger's current epoch.
	Committee() *committee.Committee
	// GCRound returns the round below which state may be purged.
	GCRound() uint64
	// LatestRound returns the highest round this node has committed.
	LatestRound() uint64
	// VerifyTransmission runs the external payload-validity predicate
	// (transaction/solution semantics, VM execution) that sits outside
	// the core's scope.
	VerifyTransmission(tx types.Transmission) bool
	// VerifyBatchHeaderSemantic checks header-level semantic validity
	// beyond the core's own structural checks (e.g. author-specific
	// rate limits the ledger enforces).
	VerifyBatchHeaderSemantic(header types.BatchHeader) bool
	// AggregateVerify checks signatures over msg against the ledger's
	// known public keys.
	AggregateVerify(msg []byte, sigs map[ids.NodeID]bcrypto.Signature) bool
}

// Static facade backing a single epoch's Ledger. Production deployments
// wire block-store-backed implementations; Static is what tests and
// single-epoch deployments use directly.
type Static struct {
	committee   *committee.Committee
	verifier    bcrypto.Verifier
	gcRound     uint64
	latestRound uint64

	verifyTransmission func(types.Transmission) bool
	verifyHeader       func(types.BatchHeader) bool
}

// NewStatic builds a Ledger over a fixed committee and verifier. Its
// transmission/header predicates accept anything until
// WithTransmissionPredicate or WithHeaderPredicate replaces them.
func NewStatic(com *committee.Committee, verifier bcrypto.Verifier) *Static {
	return &Static{
		committee:          com,
		verifier:           verifier,
		verifyTransmission: func(types.Transmission) bool { return true },
		verifyHeader:       func(types.BatchHeader) bool { return true },
	}
}

// WithTransmissionPredicate overrides the transmission-validity predicate.
func (s *Static) WithTransmissionPredicate(f func(types.Transmission) bool) *Static {
	s.verifyTransmission = f
	return s
}

// WithHeaderPredicate overrides the header semantic-validity predicate.
func (s *Static) WithHeaderPredicate(f func(types.BatchHeader) bool) *Static {
	s.verifyHeader = f
	return s
}

func (s *Static) Committee() *committee.Committee { return s.committee }
func (s *Static) GCRound() uint64                 { return s.gcRound }
func (s *Static) LatestRound() uint64             { return s.latestRound }

// SetGCRound sets the facade's view of gc_round.
func (s *Static) SetGCRound(round uint64) { s.gcRound = round }

// SetLatestRound advances the facade's view of the node's latest round.
func (s *Static) SetLatestRound(round uint64) { s.latestRound = round }

func (s *Static) VerifyTransmission(tx types.Transmission) bool {
	return s.verifyTransmission(tx)
}

func (s *Static) VerifyBatchHeaderSemantic(header types.BatchHeader) bool {
	return s.verifyHeader(header)
}

func (s *Static) AggregateVerify(msg []byte, sigs map[ids.NodeID]bcrypto.Signature) bool {
	return s.verifier.AggregateVerify(msg, sigs)
}
