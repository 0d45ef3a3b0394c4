// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package gateway is the authenticated point-to-point boundary between this
// committee member and its peers: framing wire messages, correlating
// requests with responses, and sanctioning peers that misbehave or go
// unresponsive. The core only depends on the Transport interface below; the
// production binary wires it to github.com/luxfi/p2p, tests wire it to
// gatewaymock.
package gateway

import (
	"context"

	luxids "github.com/luxfi/ids"
)

// Transport sends and receives raw, already wire-encoded frames between
// committee members. It mirrors the request/response/gossip shape the Lux
// networking stack's AppSender uses: a request carries a requestID the
// responder echoes back so the caller can correlate SendResponse with the
// SendRequest that triggered it.
type Transport interface {
	// SendRequest sends frame to nodeID and expects a correlated response
	// via the Gateway's inbound handler, tagged with requestID.
	SendRequest(ctx context.Context, nodeID luxids.NodeID, requestID uint32, frame []byte) error
	// SendResponse answers a previously received request.
	SendResponse(ctx context.Context, nodeID luxids.NodeID, requestID uint32, frame []byte) error
	// Gossip broadcasts frame to every connected peer; used for
	// CertificateBroadcast/TransmissionBroadcast, which carry no requestID.
	Gossip(ctx context.Context, frame []byte) error
}

// Inbound is a frame delivered by Transport to this node, annotated with
// the request id (zero for gossip/unsolicited sends).
type Inbound struct {
	From      luxids.NodeID
	RequestID uint32
	Frame     []byte
}
