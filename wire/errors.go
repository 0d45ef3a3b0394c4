// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import "errors"

var (
	// ErrUnsupportedVersion is returned when a frame's version is not one
	// this codec knows how to decode.
	ErrUnsupportedVersion = errors.New("wire: unsupported frame version")
	// ErrUnknownOp is returned when a frame's Op does not match any known
	// payload variant.
	ErrUnknownOp = errors.New("wire: unknown message op")
)
