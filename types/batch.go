// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"crypto/sha256"
	"time"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/narwhal/bcrypto"
	"github.com/luxfi/narwhal/ids"
)

// BatchHeader is a primary's proposal for round Round: the set of
// transmission ids it wants certified and the parent certificates (from
// round Round-1) it has observed enough of to build on.
type BatchHeader struct {
	Author                 luxids.NodeID
	Round                  uint64
	Timestamp              time.Time
	TransmissionIDs        []ids.TransmissionID
	PreviousCertificateIDs []ids.CertificateID
	AuthorSignature        bcrypto.Signature
}

// Validate checks the structural invariants a BatchHeader must satisfy in
// isolation (committee/quorum-dependent invariants are checked by the
// Primary against a Committee + Storage, not here).
func (h *BatchHeader) Validate(maxTransmissions int) error {
	switch {
	case h.Round < 1:
		return ErrInvalidRound
	case h.Round == 1 && len(h.PreviousCertificateIDs) != 0:
		return ErrRoundOneHasParents
	case h.Round > 1 && len(h.PreviousCertificateIDs) == 0:
		return ErrMissingParents
	case len(h.TransmissionIDs) > maxTransmissions:
		return ErrTooManyTransmissions
	}
	return nil
}

// SigningBytes returns the canonical bytes the author signs and peers
// verify against. Deterministic: same header, same bytes, on every node.
func (h *BatchHeader) SigningBytes() []byte {
	buf := make([]byte, 0, 64+32*len(h.TransmissionIDs)+32*len(h.PreviousCertificateIDs))
	buf = append(buf, h.Author[:]...)
	buf = appendUint64(buf, h.Round)
	buf = appendUint64(buf, uint64(h.Timestamp.UnixNano()))
	for _, id := range sortedTransmissionIDs(h.TransmissionIDs) {
		buf = append(buf, id[:]...)
	}
	for _, id := range ids.SortCertificateIDs(h.PreviousCertificateIDs) {
		buf = append(buf, id[:]...)
	}
	return buf
}

// ID returns the header's CertificateID: the content hash every honest
// node derives identically from the same header, used to key storage and
// to name the certificate assembled once quorum signatures are collected.
func (h *BatchHeader) ID() ids.CertificateID {
	return ids.CertificateID(sha256.Sum256(h.SigningBytes()))
}

func appendUint64(buf []byte, v uint64) []byte {
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(v>>(56-8*i)))
	}
	return buf
}

func sortedTransmissionIDs(in []ids.TransmissionID) []ids.TransmissionID {
	out := make([]ids.TransmissionID, len(in))
	copy(out, in)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && ids.LessTransmission(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// BatchCertificate is a BatchHeader plus a quorum of validator signatures
// over it. CertificateID = hash(batch_header), computed by
// BatchHeader.ID (SHA-256 of its signing bytes); storage keys
// certificates by that id.
type BatchCertificate struct {
	Header     BatchHeader
	Signatures map[luxids.NodeID]bcrypto.Signature
}

// SignerStake sums stakeOf over the certificate's signers; a signer for
// which stakeOf returns 0 adds nothing.
func (c *BatchCertificate) SignerStake(stakeOf func(luxids.NodeID) uint64) uint64 {
	var total uint64
	for nodeID := range c.Signatures {
		total += stakeOf(nodeID)
	}
	return total
}
