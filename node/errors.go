// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import "errors"

var (
	// ErrUnsupportedOp means an inbound message carried an Op this node
	// does not know how to dispatch.
	ErrUnsupportedOp = errors.New("node: unsupported message op")
	// ErrNotARequest means a request-shaped Op (one that expects a
	// Respond call) arrived with a zero RequestID.
	ErrNotARequest = errors.New("node: request op delivered without a request id")
	// ErrQuorumNotReached means every reachable peer answered a signing
	// request, or timed out, without the collected signatures ever
	// reaching committee quorum stake.
	ErrQuorumNotReached = errors.New("node: did not collect quorum signatures for proposed header")
)
