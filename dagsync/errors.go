// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dagsync

import "errors"

var (
	// ErrAlreadyInflight means a fetch for this id is already outstanding;
	// the caller must not issue a second one.
	ErrAlreadyInflight = errors.New("dagsync: fetch already in flight for id")
	// ErrNotFound means every peer tried answered with "don't have it".
	ErrNotFound = errors.New("dagsync: no peer had the requested id")
	// ErrQuorumUnmet means a fetched certificate's signatures don't
	// aggregate to committee quorum; it is discarded, not stored.
	ErrQuorumUnmet = errors.New("dagsync: fetched certificate lacks quorum signatures")
	// ErrUnexpectedResponse means a peer answered with the wrong payload
	// shape for the request.
	ErrUnexpectedResponse = errors.New("dagsync: unexpected response payload")
)
