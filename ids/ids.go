// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ids defines the content-addressed identifiers the core passes
// around: TransmissionId and CertificateId. Both are defined types whose
// underlying type is the committee-wide github.com/luxfi/ids.ID, so they
// compare, hash, and sort exactly like any other id in the Lux stack, while still giving the
// type checker two distinct names to catch accidental mixing.
package ids

import "github.com/luxfi/ids"

// ID is the generic content-addressed identifier type used throughout the
// core, aliasing the committee-wide id type.
type ID = ids.ID

// NodeID identifies a committee member.
type NodeID = ids.NodeID

// TransmissionID identifies a transaction or solution payload.
type TransmissionID ID

// CertificateID identifies a BatchCertificate; it is defined as
// hash(batch_header).
type CertificateID ID

// Empty is the zero value of ID, used as a sentinel for "no id".
var Empty ID

// LessTransmission orders two TransmissionIDs lexicographically, the
// tie-break the Worker's deterministic `ready()` ordering relies on.
func LessTransmission(a, b TransmissionID) bool {
	return less(ID(a), ID(b))
}

// LessCertificate orders two CertificateIDs lexicographically, used for the
// lexicographically-smallest-first-to-cross-quorum parent tie-break.
func LessCertificate(a, b CertificateID) bool {
	return less(ID(a), ID(b))
}

func less(a, b ID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// SortCertificateIDs returns a new, lexicographically sorted slice.
func SortCertificateIDs(in []CertificateID) []CertificateID {
	out := make([]CertificateID, len(in))
	copy(out, in)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && LessCertificate(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
