// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bft

import (
	"sort"
	"sync"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/ids"
	"github.com/luxfi/narwhal/log"
	"github.com/luxfi/narwhal/metrics"
	"github.com/luxfi/narwhal/storage"
	"github.com/luxfi/narwhal/types"
)

// Engine drives the two-chain commit rule over a Storage shared with the
// local Primary: it never mutates certificates, only decides which of
// them are committed and in what order, then triggers GC.
type Engine struct {
	com     *committee.Committee
	store   *storage.Storage
	metrics *metrics.Metrics
	log     log.Logger
	gcDepth uint64

	mu               sync.Mutex
	committedRound   uint64
	committedAnchors map[uint64]ids.CertificateID // anchor round -> committed anchor id
	skipped          map[uint64]struct{}
	committedCerts   map[ids.CertificateID]struct{}
}

// New creates an Engine for com/store. gcDepth mirrors config.Config's
// GCDepth.
func New(com *committee.Committee, store *storage.Storage, gcDepth uint64, m *metrics.Metrics, logger log.Logger) *Engine {
	return &Engine{
		com:              com,
		store:            store,
		metrics:          m,
		log:              logger,
		gcDepth:          gcDepth,
		committedAnchors: make(map[uint64]ids.CertificateID),
		skipped:          make(map[uint64]struct{}),
		committedCerts:   make(map[ids.CertificateID]struct{}),
	}
}

// CommittedRound returns the highest round committed so far.
func (e *Engine) CommittedRound() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.committedRound
}

// GCRound returns max(0, committed_round - GC_DEPTH).
func (e *Engine) GCRound() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gcRoundLocked()
}

func (e *Engine) gcRoundLocked() uint64 {
	if e.committedRound <= e.gcDepth {
		return 0
	}
	return e.committedRound - e.gcDepth
}

// Skip permanently abandons the anchor at round r: its certificates remain
// in storage and become eligible for inclusion in a later anchor's causal
// history.
func (e *Engine) Skip(r uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r%2 != 0 {
		return ErrAnchorRoundNotEven
	}
	if _, done := e.committedAnchors[r]; done {
		return ErrAlreadyCommitted
	}
	if _, done := e.skipped[r]; done {
		return ErrAlreadyCommitted
	}
	e.skipped[r] = struct{}{}
	if e.metrics != nil {
		e.metrics.AnchorsSkipped.Inc()
	}
	return nil
}

// TryCommit attempts to commit the anchor candidate at even round r: the
// leader's certificate, if f+1 stake worth of round r+1 certificates carry
// it as a direct parent. On success it returns the single OrderedSubDAG
// covering every newly-committed anchor in the uncommitted chain ending at
// r, and triggers GC.
func (e *Engine) TryCommit(r uint64) (*OrderedSubDAG, error) {
	if r%2 != 0 {
		return nil, ErrAnchorRoundNotEven
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, done := e.committedAnchors[r]; done {
		return nil, ErrAlreadyCommitted
	}
	if _, done := e.skipped[r]; done {
		return nil, ErrAlreadyCommitted
	}

	leader := e.com.Leader(r).NodeID
	anchorID, ok := e.store.CertificateIDForAuthor(r, leader)
	if !ok {
		return nil, ErrAnchorNotCertified
	}

	if !e.hasDirectVotes(anchorID, r+1) {
		return nil, ErrVotesNotYetQuorum
	}

	chain := e.uncommittedChain(r, anchorID)

	sub := &OrderedSubDAG{AnchorRound: r, AnchorID: anchorID}
	for _, step := range chain {
		certs := e.causalHistory(step.certID)
		linearized := linearize(certs, e.com.StakeOf)
		for _, c := range linearized {
			sub.CertificateIDs = append(sub.CertificateIDs, c.id)
			sub.TransmissionIDs = append(sub.TransmissionIDs, c.cert.Header.TransmissionIDs...)
			e.committedCerts[c.id] = struct{}{}
		}
		e.committedAnchors[step.round] = step.certID
		if e.metrics != nil {
			e.metrics.AnchorsCommitted.Inc()
		}
	}

	e.committedRound = r
	gcRound := e.gcRoundLocked()
	purged := e.store.GC(gcRound)
	if e.metrics != nil {
		e.metrics.CommittedRound.Set(float64(r))
		e.metrics.GCRound.Set(float64(gcRound))
		if purged > 0 {
			e.metrics.GCPurgedCerts.Add(float64(purged))
		}
	}
	if e.log != nil {
		e.log.Info("committed anchor chain", "round", r, "anchors", len(chain), "certificates", len(sub.CertificateIDs))
	}

	return sub, nil
}

// anchorStep is one anchor in the uncommitted chain ending at the
// triggering round.
type anchorStep struct {
	round  uint64
	certID ids.CertificateID
}

// uncommittedChain walks anchors at rounds r, r-2, r-4, ... while each is
// reachable from the next via certificate ancestry and not yet committed,
// returning them in increasing round order (oldest first).
func (e *Engine) uncommittedChain(r uint64, anchorID ids.CertificateID) []anchorStep {
	var chain []anchorStep
	cur, curID := r, anchorID
	for {
		chain = append(chain, anchorStep{round: cur, certID: curID})
		if cur < 2 {
			break
		}
		prevRound := cur - 2
		if prevRound == 0 {
			break
		}
		if _, done := e.committedAnchors[prevRound]; done {
			break
		}
		prevLeader := e.com.Leader(prevRound).NodeID
		prevID, ok := e.store.CertificateIDForAuthor(prevRound, prevLeader)
		if !ok {
			break
		}
		if !e.reachable(curID, prevID) {
			break
		}
		cur, curID = prevRound, prevID
	}

	// chain was built newest-first; reverse to oldest-first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// reachable reports whether to is an ancestor of from via parent edges,
// stopping at certificates missing from storage (legitimately GC'd).
func (e *Engine) reachable(from, to ids.CertificateID) bool {
	visited := map[ids.CertificateID]struct{}{}
	queue := []ids.CertificateID{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == to {
			return true
		}
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		cert, ok := e.store.GetCertificate(id)
		if !ok {
			continue
		}
		queue = append(queue, cert.Header.PreviousCertificateIDs...)
	}
	return false
}

// hasDirectVotes reports whether the distinct-author stake of round-voteRound
// certificates that reference anchorID as a direct parent meets f+1.
func (e *Engine) hasDirectVotes(anchorID ids.CertificateID, voteRound uint64) bool {
	var voters []luxids.NodeID
	for _, certID := range e.store.CertificatesForRound(voteRound) {
		cert, ok := e.store.GetCertificate(certID)
		if !ok {
			continue
		}
		for _, parent := range cert.Header.PreviousCertificateIDs {
			if parent == anchorID {
				voters = append(voters, cert.Header.Author)
				break
			}
		}
	}
	return e.com.HasAvailability(voters)
}

// causalHistory returns every certificate reachable from anchorID via
// parent edges that has not already been committed by a previous call,
// including anchorID itself.
func (e *Engine) causalHistory(anchorID ids.CertificateID) []idCert {
	var out []idCert
	visited := map[ids.CertificateID]struct{}{}
	queue := []ids.CertificateID{anchorID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		if _, done := e.committedCerts[id]; done {
			continue
		}
		cert, ok := e.store.GetCertificate(id)
		if !ok {
			continue
		}
		out = append(out, idCert{id: id, cert: cert})
		queue = append(queue, cert.Header.PreviousCertificateIDs...)
	}
	return out
}

type idCert struct {
	id   ids.CertificateID
	cert *types.BatchCertificate
}

// linearize orders certs round-major, then by (author stake desc, author
// id asc) within a round, the deterministic order every honest node
// produces for the same causal history.
func linearize(certs []idCert, stakeOf func(luxids.NodeID) uint64) []idCert {
	out := make([]idCert, len(certs))
	copy(out, certs)
	sort.Slice(out, func(i, j int) bool {
		hi, hj := out[i].cert.Header, out[j].cert.Header
		if hi.Round != hj.Round {
			return hi.Round < hj.Round
		}
		si, sj := stakeOf(hi.Author), stakeOf(hj.Author)
		if si != sj {
			return si > sj
		}
		return hi.Author.String() < hj.Author.String()
	})
	return out
}
