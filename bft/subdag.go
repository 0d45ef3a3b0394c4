// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bft implements the Bullshark-style two-chain commit rule over
// certificates a Primary has already stored: anchor selection at even
// rounds, direct-vote commit, causal-history linearization, and the
// emission of committed sub-DAGs to the block producer.
package bft

import "github.com/luxfi/narwhal/ids"

// OrderedSubDAG is the result of committing one or more anchors: every
// certificate and transmission reachable from the commit, in the
// deterministic order every honest node produces for the same input.
type OrderedSubDAG struct {
	AnchorRound     uint64
	AnchorID        ids.CertificateID
	CertificateIDs  []ids.CertificateID
	TransmissionIDs []ids.TransmissionID
}
