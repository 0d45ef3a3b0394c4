// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import "errors"

var (
	// ErrPeerBenched is returned when a send targets a currently
	// sanctioned peer.
	ErrPeerBenched = errors.New("gateway: peer is benched")
	// ErrUnknownPeer is returned when a send targets a node not in the
	// committee this gateway was built for.
	ErrUnknownPeer = errors.New("gateway: peer is not a committee member")
	// ErrRequestTimeout is returned when a request's response does not
	// arrive within its deadline.
	ErrRequestTimeout = errors.New("gateway: request timed out")
	// ErrTooManyOutstanding is returned when MaxOutstandingRequests would
	// be exceeded by a new request.
	ErrTooManyOutstanding = errors.New("gateway: too many outstanding requests")
	// ErrClosed is returned by any operation on a Gateway that has been
	// closed.
	ErrClosed = errors.New("gateway: closed")
)
