// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"testing"
	"time"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/narwhal/ids"
	"github.com/luxfi/narwhal/types"
	"github.com/stretchr/testify/require"
)

func certAt(round uint64, author luxids.NodeID, parents ...ids.CertificateID) *types.BatchCertificate {
	return &types.BatchCertificate{
		Header: types.BatchHeader{
			Author:                 author,
			Round:                  round,
			Timestamp:              time.Unix(int64(round), 0),
			TransmissionIDs:        []ids.TransmissionID{ids.TransmissionID(luxids.GenerateTestID())},
			PreviousCertificateIDs: parents,
		},
	}
}

func TestInsertAndGetCertificate(t *testing.T) {
	require := require.New(t)

	s := New()
	author := luxids.GenerateTestNodeID()
	id := ids.CertificateID(luxids.GenerateTestID())
	cert := certAt(1, author)

	require.NoError(s.InsertCertificate(id, cert))

	got, ok := s.GetCertificate(id)
	require.True(ok)
	require.Same(cert, got)

	gotID, ok := s.CertificateIDForAuthor(1, author)
	require.True(ok)
	require.Equal(id, gotID)
}

func TestInsertCertificateRejectsDuplicateID(t *testing.T) {
	require := require.New(t)

	s := New()
	author := luxids.GenerateTestNodeID()
	id := ids.CertificateID(luxids.GenerateTestID())

	require.NoError(s.InsertCertificate(id, certAt(1, author)))
	require.ErrorIs(s.InsertCertificate(id, certAt(1, author)), ErrAlreadyPresent)
}

func TestInsertCertificateRejectsSecondCertForSameRoundAuthor(t *testing.T) {
	require := require.New(t)

	s := New()
	author := luxids.GenerateTestNodeID()

	require.NoError(s.InsertCertificate(ids.CertificateID(luxids.GenerateTestID()), certAt(1, author)))
	err := s.InsertCertificate(ids.CertificateID(luxids.GenerateTestID()), certAt(1, author))
	require.ErrorIs(err, ErrAlreadyPresent)
}

func TestInsertCertificateRejectsMissingParent(t *testing.T) {
	require := require.New(t)

	s := New()
	author := luxids.GenerateTestNodeID()
	missingParent := ids.CertificateID(luxids.GenerateTestID())

	err := s.InsertCertificate(ids.CertificateID(luxids.GenerateTestID()), certAt(2, author, missingParent))
	require.ErrorIs(err, ErrMissingParent)
}

func TestInsertCertificateSucceedsOncePresentParentsInstalled(t *testing.T) {
	require := require.New(t)

	s := New()
	authorA := luxids.GenerateTestNodeID()
	authorB := luxids.GenerateTestNodeID()

	parentID := ids.CertificateID(luxids.GenerateTestID())
	require.NoError(s.InsertCertificate(parentID, certAt(1, authorA)))
	require.NoError(s.InsertCertificate(ids.CertificateID(luxids.GenerateTestID()), certAt(2, authorB, parentID)))
}

func TestInsertCertificateRejectsRoundAlreadyGCed(t *testing.T) {
	require := require.New(t)

	s := New()
	author := luxids.GenerateTestNodeID()
	require.NoError(s.InsertCertificate(ids.CertificateID(luxids.GenerateTestID()), certAt(1, author)))

	s.GC(1)

	err := s.InsertCertificate(ids.CertificateID(luxids.GenerateTestID()), certAt(1, author))
	require.ErrorIs(err, ErrRoundGCed)
}

func TestInsertCertificateAllowsMissingParentOnceParentRoundGCed(t *testing.T) {
	require := require.New(t)

	s := New()
	authorA := luxids.GenerateTestNodeID()
	authorB := luxids.GenerateTestNodeID()

	parentID := ids.CertificateID(luxids.GenerateTestID())
	require.NoError(s.InsertCertificate(parentID, certAt(1, authorA)))
	s.GC(1)

	// Parent from round 1 was purged by GC; round 2 may still reference it.
	err := s.InsertCertificate(ids.CertificateID(luxids.GenerateTestID()), certAt(2, authorB, parentID))
	require.NoError(err)
}

func TestCertificatesForRound(t *testing.T) {
	require := require.New(t)

	s := New()
	a, b := luxids.GenerateTestNodeID(), luxids.GenerateTestNodeID()
	idA, idB := ids.CertificateID(luxids.GenerateTestID()), ids.CertificateID(luxids.GenerateTestID())

	require.NoError(s.InsertCertificate(idA, certAt(1, a)))
	require.NoError(s.InsertCertificate(idB, certAt(1, b)))

	got := s.CertificatesForRound(1)
	require.ElementsMatch([]ids.CertificateID{idA, idB}, got)
	require.Empty(s.CertificatesForRound(2))
}

func TestGCPurgesCertificatesAndUnreferencedTransmissions(t *testing.T) {
	require := require.New(t)

	s := New()
	author := luxids.GenerateTestNodeID()
	id := ids.CertificateID(luxids.GenerateTestID())
	cert := certAt(1, author)
	txID := cert.Header.TransmissionIDs[0]

	require.NoError(s.InsertCertificate(id, cert))
	s.InsertTransmission(txID, []byte("payload"))

	purged := s.GC(1)
	require.Equal(1, purged)
	require.False(s.ContainsCertificate(id))
	require.False(s.ContainsTransmission(txID))
	require.Equal(uint64(1), s.GCRound())
	require.Equal(0, s.Len())
}

func TestGCKeepsTransmissionStillReferencedByLaterCertificate(t *testing.T) {
	require := require.New(t)

	s := New()
	authorA := luxids.GenerateTestNodeID()
	authorB := luxids.GenerateTestNodeID()

	txID := ids.TransmissionID(luxids.GenerateTestID())
	round1 := &types.BatchCertificate{Header: types.BatchHeader{
		Author: authorA, Round: 1, Timestamp: time.Unix(1, 0),
		TransmissionIDs: []ids.TransmissionID{txID},
	}}
	parentID := ids.CertificateID(luxids.GenerateTestID())
	round2 := &types.BatchCertificate{Header: types.BatchHeader{
		Author: authorB, Round: 2, Timestamp: time.Unix(2, 0),
		TransmissionIDs:        []ids.TransmissionID{txID},
		PreviousCertificateIDs: []ids.CertificateID{parentID},
	}}

	require.NoError(s.InsertCertificate(parentID, round1))
	round2ID := ids.CertificateID(luxids.GenerateTestID())
	require.NoError(s.InsertCertificate(round2ID, round2))
	s.InsertTransmission(txID, []byte("payload"))

	s.GC(1)
	require.True(s.ContainsTransmission(txID), "transmission still referenced by round-2 certificate must survive GC")
}

func TestGCIsIdempotentAndMonotonic(t *testing.T) {
	require := require.New(t)

	s := New()
	require.Equal(0, s.GC(5))
	require.Equal(uint64(5), s.GCRound())
	require.Equal(0, s.GC(3), "GC below the current gc_round must be a no-op")
	require.Equal(uint64(5), s.GCRound())
}

func TestInsertAndGetTransmission(t *testing.T) {
	require := require.New(t)

	s := New()
	id := ids.TransmissionID(luxids.GenerateTestID())
	s.InsertTransmission(id, []byte("hello"))

	got, ok := s.GetTransmission(id)
	require.True(ok)
	require.Equal([]byte("hello"), got)
	require.True(s.ContainsTransmission(id))
}

func TestInsertTransmissionIsIdempotent(t *testing.T) {
	require := require.New(t)

	s := New()
	id := ids.TransmissionID(luxids.GenerateTestID())
	s.InsertTransmission(id, []byte("first"))
	s.InsertTransmission(id, []byte("second"))

	got, ok := s.GetTransmission(id)
	require.True(ok)
	require.Equal([]byte("first"), got, "insert must not overwrite an already-stored transmission")
}
