// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types defines the wire-level data model of the DAG-BFT core:
// transmissions, batch headers, and batch certificates.
package types

import (
	"github.com/luxfi/narwhal/ids"
)

// Kind discriminates what a Transmission's opaque bytes represent. The core
// never interprets the bytes itself; Kind only routes verification to the
// right external predicate.
type Kind uint8

const (
	KindTransaction Kind = iota
	KindSolution
)

func (k Kind) String() string {
	switch k {
	case KindTransaction:
		return "transaction"
	case KindSolution:
		return "solution"
	default:
		return "unknown"
	}
}

// Transmission is an opaque, content-addressed payload: a transaction or
// solution. The core stores and forwards it without interpreting Bytes.
type Transmission struct {
	ID    ids.TransmissionID
	Kind  Kind
	Bytes []byte
}
