// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage is the round-indexed, in-memory DAG store: a map from
// (round, author) to certificate, a map from transmission id to
// transmission, and round-based garbage collection. Its arena-plus-index
// shape (records keyed by id, with a separate round/author index) keeps
// parent references as plain ids rather than owning pointers, so garbage
// collection is a set difference rather than a graph walk.
package storage

import (
	"sync"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/narwhal/ids"
	"github.com/luxfi/narwhal/types"
)

// roundAuthor is the key a primary can have at most one certificate under:
// one certificate per (round, author).
type roundAuthor struct {
	round  uint64
	author luxids.NodeID
}

// Storage is the DAG store. It is logically owned by the Primary; BFT and
// Sync read it via the methods below, which are all
// goroutine-safe so they can also be called from a read-only snapshot
// path without extra coordination.
type Storage struct {
	mu sync.RWMutex

	certsByID    map[ids.CertificateID]*types.BatchCertificate
	certsByRA    map[roundAuthor]ids.CertificateID
	certsByRound map[uint64][]ids.CertificateID

	transmissions map[ids.TransmissionID][]byte
	// transmissionRefs counts how many stored certificates reference a
	// transmission id, so GC can free a transmission once its last
	// referencing certificate is purged.
	transmissionRefs map[ids.TransmissionID]int

	gcRound uint64
}

// New creates an empty Storage.
func New() *Storage {
	return &Storage{
		certsByID:        make(map[ids.CertificateID]*types.BatchCertificate),
		certsByRA:        make(map[roundAuthor]ids.CertificateID),
		certsByRound:     make(map[uint64][]ids.CertificateID),
		transmissions:    make(map[ids.TransmissionID][]byte),
		transmissionRefs: make(map[ids.TransmissionID]int),
	}
}

// InsertCertificate records cert, keyed by (round, author) and by its id.
// It fails if a certificate already exists for cert's (round, author), if
// cert's round has already been garbage collected, or if any parent it
// references above gc_round is not already stored.
func (s *Storage) InsertCertificate(id ids.CertificateID, cert *types.BatchCertificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	round := cert.Header.Round
	if round <= s.gcRound {
		return ErrRoundGCed
	}
	if _, exists := s.certsByID[id]; exists {
		return ErrAlreadyPresent
	}
	ra := roundAuthor{round: round, author: cert.Header.Author}
	if _, exists := s.certsByRA[ra]; exists {
		return ErrAlreadyPresent
	}
	// A parent certificate from round-1 must already be stored unless
	// round-1 itself has been garbage collected, in which case the parent
	// was legitimately purged and its absence is not an error. Otherwise
	// Sync must fetch and install the parent first.
	parentsMayBeGCed := round >= 2 && round-1 <= s.gcRound
	if !parentsMayBeGCed {
		for _, parentID := range cert.Header.PreviousCertificateIDs {
			if _, ok := s.certsByID[parentID]; !ok {
				return ErrMissingParent
			}
		}
	}

	s.certsByID[id] = cert
	s.certsByRA[ra] = id
	s.certsByRound[round] = append(s.certsByRound[round], id)
	for _, txID := range cert.Header.TransmissionIDs {
		s.transmissionRefs[txID]++
	}
	return nil
}

// GetCertificate returns the certificate for id, if stored.
func (s *Storage) GetCertificate(id ids.CertificateID) (*types.BatchCertificate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.certsByID[id]
	return c, ok
}

// CertificateIDForAuthor returns the certificate id a given author has at
// round, if any — the mechanism that enforces "at most one certificate per
// (round, author)".
func (s *Storage) CertificateIDForAuthor(round uint64, author luxids.NodeID) (ids.CertificateID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.certsByRA[roundAuthor{round: round, author: author}]
	return id, ok
}

// CertificatesForRound returns every certificate id stored for round.
func (s *Storage) CertificatesForRound(round uint64) []ids.CertificateID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ids.CertificateID, len(s.certsByRound[round]))
	copy(out, s.certsByRound[round])
	return out
}

// ContainsCertificate reports whether id is stored.
func (s *Storage) ContainsCertificate(id ids.CertificateID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.certsByID[id]
	return ok
}

// InsertTransmission records a transmission's bytes by id. Idempotent: a
// re-insert of an already-present id is a no-op.
func (s *Storage) InsertTransmission(id ids.TransmissionID, bytes []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.transmissions[id]; exists {
		return
	}
	s.transmissions[id] = bytes
}

// GetTransmission returns the bytes for id, if stored.
func (s *Storage) GetTransmission(id ids.TransmissionID) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.transmissions[id]
	return b, ok
}

// ContainsTransmission reports whether id is stored.
func (s *Storage) ContainsTransmission(id ids.TransmissionID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.transmissions[id]
	return ok
}

// GCRound returns the highest round purged so far: every round at or
// below it has been garbage collected.
func (s *Storage) GCRound() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gcRound
}

// GC purges every certificate with round <= upToRound and every
// transmission referenced only by purged certificates. Returns the number
// of certificates purged.
func (s *Storage) GC(upToRound uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if upToRound <= s.gcRound {
		return 0
	}

	purged := 0
	for round := s.gcRound + 1; round <= upToRound; round++ {
		roundCerts := s.certsByRound[round]
		for _, id := range roundCerts {
			cert := s.certsByID[id]
			delete(s.certsByID, id)
			delete(s.certsByRA, roundAuthor{round: round, author: cert.Header.Author})
			for _, txID := range cert.Header.TransmissionIDs {
				s.transmissionRefs[txID]--
				if s.transmissionRefs[txID] <= 0 {
					delete(s.transmissionRefs, txID)
					delete(s.transmissions, txID)
				}
			}
			purged++
		}
		delete(s.certsByRound, round)
	}
	s.gcRound = upToRound
	return purged
}

// Len returns the number of certificates currently stored, for the
// |DAG| <= N*(committed_round-gc_round+buffer) bound.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.certsByID)
}
