// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package worker implements the per-validator transmission intake: accept,
// verify, dedup, and hold transmissions until the Primary is ready to batch
// them into a BatchHeader, and serve them back out to peers that certified
// a header referencing ids this node hasn't seen yet. Shares storage's
// mutex-guarded map shape, narrowed to a single bounded pending pool plus
// an inflight-fetch set.
package worker

import (
	"sort"
	"sync"

	"github.com/luxfi/narwhal/ids"
	"github.com/luxfi/narwhal/types"
	"golang.org/x/exp/maps"
)

// VerifyFunc is the external predicate a Worker calls before admitting a
// transmission (ledger.Ledger.VerifyTransmission in production, a stub in
// tests). It must not block for long; heavy verification is expected to
// run on a parallel CPU pool and report back via this callback's return
// value only.
type VerifyFunc func(types.Transmission) bool

// Worker is the pending-transmission pool for one validator. It is not
// safe to share across validators; each Worker instance owns one node's
// view of what's waiting to be batched.
type Worker struct {
	mu sync.Mutex

	pending  map[ids.TransmissionID]types.Transmission
	order    []ids.TransmissionID // insertion order of pending ids; Ready does not consult it
	inflight map[ids.TransmissionID]struct{}

	maxQueue      int
	maxPerBatch   int
	verify        VerifyFunc
	rejectedTotal int
}

// New creates a Worker bounded by maxQueue pending transmissions, serving
// at most maxPerBatch ids per Ready() call, verifying admissions with
// verify.
func New(maxQueue, maxPerBatch int, verify VerifyFunc) *Worker {
	return &Worker{
		pending:     make(map[ids.TransmissionID]types.Transmission),
		inflight:    make(map[ids.TransmissionID]struct{}),
		maxQueue:    maxQueue,
		maxPerBatch: maxPerBatch,
		verify:      verify,
	}
}

// Accept admits tx into the pending pool. Duplicate ids are an idempotent
// ack: the second Accept for an id
// still pending returns nil without changing state. The Worker does not
// remember ids removed by Take, so such an id is verified and admitted
// again. An invalid transmission (verify returns false) or a
// full queue are rejected.
func (w *Worker) Accept(tx types.Transmission) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.pending[tx.ID]; ok {
		return nil
	}
	if !w.verify(tx) {
		return ErrInvalidTransmission
	}
	if len(w.pending) >= w.maxQueue {
		w.rejectedTotal++
		return ErrQueueFull
	}

	w.pending[tx.ID] = tx
	w.order = append(w.order, tx.ID)
	return nil
}

// Ready returns up to maxPerBatch pending ids, sorted deterministically
// so that every honest node proposing from the same
// pending set produces the same BatchHeader.TransmissionIDs.
func (w *Worker) Ready() []ids.TransmissionID {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := maps.Keys(w.pending)
	sort.Slice(out, func(i, j int) bool { return ids.LessTransmission(out[i], out[j]) })
	if len(out) > w.maxPerBatch {
		out = out[:w.maxPerBatch]
	}
	return out
}

// Take removes the given ids from the pending pool — called once the
// Primary's header referencing them has been certified. Ids not held are
// silently ignored (they may have already been removed by an earlier
// Take, or never admitted here). Ids not passed to Take
// remain pending for the next Ready() call (no starvation).
func (w *Worker) Take(taken []ids.TransmissionID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, id := range taken {
		delete(w.pending, id)
	}
	w.compactOrder()
}

func (w *Worker) compactOrder() {
	kept := w.order[:0]
	for _, id := range w.order {
		if _, ok := w.pending[id]; ok {
			kept = append(kept, id)
		}
	}
	w.order = kept
}

// Contains reports whether id is currently pending.
func (w *Worker) Contains(id ids.TransmissionID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.pending[id]
	return ok
}

// Get returns the pending transmission for id, if held, for serving a
// peer's TransmissionRequest before it has been taken into a certificate.
func (w *Worker) Get(id ids.TransmissionID) (types.Transmission, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	tx, ok := w.pending[id]
	return tx, ok
}

// Len returns the number of pending transmissions.
func (w *Worker) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// RejectedTotal returns the number of Accept calls rejected for a full
// queue, as a backpressure signal. It is not fed into the metrics
// package's WorkerQueueRejected counter.
func (w *Worker) RejectedTotal() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rejectedTotal
}

// BeginFetch marks id as having an in-flight fetch, enforcing the
// single-inflight-per-id rule for fetches. It returns false if a
// fetch for id is already in flight, in which case the caller must not
// issue a second request.
func (w *Worker) BeginFetch(id ids.TransmissionID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inflight[id]; ok {
		return false
	}
	w.inflight[id] = struct{}{}
	return true
}

// EndFetch clears id's in-flight marker, whether the fetch succeeded or
// not, so a future fetch can be retried.
func (w *Worker) EndFetch(id ids.TransmissionID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inflight, id)
}

// Resolve completes a pending fetch: it admits tx the same way Accept
// does, then clears the in-flight marker. Used by dagsync when a
// TransmissionResponse arrives for an id this Worker requested.
func (w *Worker) Resolve(tx types.Transmission) error {
	defer w.EndFetch(tx.ID)
	return w.Accept(tx)
}
