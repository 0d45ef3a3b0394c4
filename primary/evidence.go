// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

import (
	"sync"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/narwhal/types"
)

type roundAuthor struct {
	round  uint64
	author luxids.NodeID
}

// EvidenceStore records, per (round, author), the first BatchHeader an
// honest node has seen and signed. A second, distinct header from the
// same author at the same round is equivocation: the store records both
// as evidence and the node refuses to sign the second one.
type EvidenceStore struct {
	mu   sync.Mutex
	seen map[roundAuthor]types.BatchHeader
	// evidence holds, per (round, author), every distinct header observed
	// once a second one arrives — readable through Evidence, not acted on
	// by the core itself.
	evidence map[roundAuthor][]types.BatchHeader
}

// NewEvidenceStore creates an empty EvidenceStore.
func NewEvidenceStore() *EvidenceStore {
	return &EvidenceStore{
		seen:     make(map[roundAuthor]types.BatchHeader),
		evidence: make(map[roundAuthor][]types.BatchHeader),
	}
}

// Observe records header as the one seen for its (round, author) and
// reports whether it is a first sighting (ok to sign) or an equivocation
// (must refuse). Headers are compared by signing bytes, so re-delivery of
// the same header is idempotent and never flagged as equivocation.
func (e *EvidenceStore) Observe(header types.BatchHeader) (equivocation bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := roundAuthor{round: header.Round, author: header.Author}
	prior, ok := e.seen[key]
	if !ok {
		e.seen[key] = header
		return false
	}
	if string(prior.SigningBytes()) == string(header.SigningBytes()) {
		return false
	}

	if len(e.evidence[key]) == 0 {
		e.evidence[key] = append(e.evidence[key], prior)
	}
	e.evidence[key] = append(e.evidence[key], header)
	return true
}

// Evidence returns the distinct headers recorded as equivocation evidence
// for (round, author), or nil if none.
func (e *EvidenceStore) Evidence(round uint64, author luxids.NodeID) []types.BatchHeader {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evidence[roundAuthor{round: round, author: author}]
}

// HasEquivocated reports whether author has any recorded equivocation
// evidence, at any round. Nothing in the core consults it: bft's anchor
// vote count does not exclude authors that have equivocated.
func (e *EvidenceStore) HasEquivocated(author luxids.NodeID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key := range e.evidence {
		if key.author == author {
			return true
		}
	}
	return false
}
