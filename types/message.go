// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	luxids "github.com/luxfi/ids"
	"github.com/luxfi/narwhal/bcrypto"
	"github.com/luxfi/narwhal/ids"
)

// Op identifies a wire message's operation, mirroring the router.Op
// byte-enum style used across the Lux networking stack.
type Op byte

const (
	OpBatchPropose Op = iota
	OpBatchSignature
	OpCertificateBroadcast
	OpCertificateRequest
	OpCertificateResponse
	OpTransmissionRequest
	OpTransmissionResponse
	OpTransmissionBroadcast
	OpPing
	OpPong
)

func (o Op) String() string {
	switch o {
	case OpBatchPropose:
		return "BatchPropose"
	case OpBatchSignature:
		return "BatchSignature"
	case OpCertificateBroadcast:
		return "CertificateBroadcast"
	case OpCertificateRequest:
		return "CertificateRequest"
	case OpCertificateResponse:
		return "CertificateResponse"
	case OpTransmissionRequest:
		return "TransmissionRequest"
	case OpTransmissionResponse:
		return "TransmissionResponse"
	case OpTransmissionBroadcast:
		return "TransmissionBroadcast"
	case OpPing:
		return "Ping"
	case OpPong:
		return "Pong"
	default:
		return "Unknown"
	}
}

// Message is the envelope every wire message travels in: Sender and
// Signature plus exactly one payload variant selected by Op. The wire codec
// carries Signature, but no component in this repository sets or verifies
// it; handlers act on Payload as received. Duplicates are idempotent by
// construction in every handler.
type Message struct {
	Op        Op
	Sender    luxids.NodeID
	Signature bcrypto.Signature
	Payload   any
}

// BatchProposePayload carries a primary's proposed header for signing.
type BatchProposePayload struct {
	Header BatchHeader
}

// BatchSignaturePayload carries one peer's signature over a header the
// proposer is assembling into a certificate.
type BatchSignaturePayload struct {
	CertificateID ids.CertificateID
	Signer        luxids.NodeID
	Signature     bcrypto.Signature
}

// CertificateBroadcastPayload disseminates a newly formed certificate.
type CertificateBroadcastPayload struct {
	Certificate BatchCertificate
}

// CertificateRequestPayload asks a peer for a certificate by id.
type CertificateRequestPayload struct {
	CertificateID ids.CertificateID
}

// CertificateResponsePayload answers a CertificateRequest; Certificate is
// nil if the responder doesn't have it.
type CertificateResponsePayload struct {
	CertificateID ids.CertificateID
	Certificate   *BatchCertificate
}

// TransmissionRequestPayload asks a peer for a transmission by id.
type TransmissionRequestPayload struct {
	TransmissionID ids.TransmissionID
}

// TransmissionResponsePayload answers a TransmissionRequest; Transmission
// is nil if the responder doesn't have it.
type TransmissionResponsePayload struct {
	TransmissionID ids.TransmissionID
	Transmission   *Transmission
}

// TransmissionBroadcastPayload pushes a newly received transmission to
// other workers (worker-level gossip).
type TransmissionBroadcastPayload struct {
	Transmission Transmission
}

// PingPayload/PongPayload carry the sender's current round for liveness and
// lag detection (feeds dagsync's LAG_THRESHOLD decision).
type PingPayload struct{ Round uint64 }
type PongPayload struct{ Round uint64 }
