// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package primary drives one validator's round state machine: proposing
// batches, collecting peer signatures into certificates, broadcasting
// certificates, and advancing rounds once a quorum of parents is stored.
package primary

import (
	"time"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/narwhal/bcrypto"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/config"
	"github.com/luxfi/narwhal/ids"
	"github.com/luxfi/narwhal/log"
	"github.com/luxfi/narwhal/metrics"
	"github.com/luxfi/narwhal/storage"
	"github.com/luxfi/narwhal/types"
	"github.com/luxfi/narwhal/worker"
	"golang.org/x/exp/maps"
)

// proposal tracks the header this primary is currently assembling
// signatures for.
type proposal struct {
	header    types.BatchHeader
	certID    ids.CertificateID
	collected map[luxids.NodeID]bcrypto.Signature
	certified bool
}

// Primary is one validator's round driver.
type Primary struct {
	cfg      config.Config
	com      *committee.Committee
	store    *storage.Storage
	wk       *worker.Worker
	signer   bcrypto.Signer
	verifier bcrypto.Verifier
	evidence *EvidenceStore
	metrics  *metrics.Metrics
	log      log.Logger

	round       uint64
	phase       Phase
	lastParents []ids.CertificateID
	current     *proposal
}

// New creates a Primary for one validator, starting at round 1 with no
// parents (spec round-1 invariant: previous_certificate_ids is empty).
func New(
	cfg config.Config,
	com *committee.Committee,
	store *storage.Storage,
	wk *worker.Worker,
	signer bcrypto.Signer,
	verifier bcrypto.Verifier,
	m *metrics.Metrics,
	logger log.Logger,
) *Primary {
	return &Primary{
		cfg:      cfg,
		com:      com,
		store:    store,
		wk:       wk,
		signer:   signer,
		verifier: verifier,
		evidence: NewEvidenceStore(),
		metrics:  m,
		log:      logger,
		round:    1,
		phase:    PhaseIdle,
	}
}

// Round returns the current round.
func (p *Primary) Round() uint64 { return p.round }

// Phase returns the current state machine phase.
func (p *Primary) Phase() Phase { return p.phase }

// Evidence returns this primary's equivocation evidence store; this
// accessor is the only way to reach it (the Ledger interface does not
// expose it).
func (p *Primary) Evidence() *EvidenceStore { return p.evidence }

// Propose constructs this validator's BatchHeader for the current round,
// signs it, and begins collecting peer signatures toward a certificate.
func (p *Primary) Propose(now time.Time) (types.BatchHeader, error) {
	header := types.BatchHeader{
		Author:                 p.signer.NodeID(),
		Round:                  p.round,
		Timestamp:              now,
		TransmissionIDs:        p.wk.Ready(),
		PreviousCertificateIDs: p.lastParents,
	}
	sig, err := p.signer.Sign(header.SigningBytes())
	if err != nil {
		return types.BatchHeader{}, err
	}
	header.AuthorSignature = sig

	p.evidence.Observe(header)
	p.current = &proposal{
		header:    header,
		certID:    header.ID(),
		collected: map[luxids.NodeID]bcrypto.Signature{p.signer.NodeID(): sig},
	}
	p.phase = PhaseProposing
	if p.metrics != nil {
		p.metrics.BatchesProposed.Inc()
		p.metrics.RoundCurrent.Set(float64(p.round))
	}
	p.phase = PhaseAwaitingSignatures
	return header, nil
}

// Sign validates a peer's proposed header and, if valid, returns this
// node's signature over it. It never mutates storage; the caller is
// responsible for sending the signature back to the proposer.
func (p *Primary) Sign(header types.BatchHeader) (bcrypto.Signature, error) {
	if !p.com.Has(header.Author) {
		return bcrypto.Signature{}, ErrUnknownAuthor
	}
	if !withinWindow(header.Round, p.round) {
		return bcrypto.Signature{}, ErrRoundOutOfRange
	}
	if err := header.Validate(p.cfg.MaxTransmissionsPerBatch); err != nil {
		return bcrypto.Signature{}, err
	}
	if header.Round > 1 {
		if !p.parentsAtExpectedRound(header.PreviousCertificateIDs, header.Round) {
			return bcrypto.Signature{}, ErrParentQuorumUnmet
		}
		stake := p.parentStake(header.PreviousCertificateIDs)
		if stake == 0 {
			return bcrypto.Signature{}, ErrParentsMissing
		}
		if stake < p.com.QuorumThreshold() {
			return bcrypto.Signature{}, ErrParentQuorumUnmet
		}
	}
	for _, txID := range header.TransmissionIDs {
		if !p.wk.Contains(txID) && !p.store.ContainsTransmission(txID) {
			return bcrypto.Signature{}, ErrTransmissionsMissing
		}
	}
	if !p.verifier.Verify(header.SigningBytes(), header.Author, header.AuthorSignature) {
		return bcrypto.Signature{}, ErrInvalidSignature
	}
	if p.evidence.Observe(header) {
		if p.log != nil {
			p.log.Warn("refusing to sign equivocating header", "author", header.Author, "round", header.Round)
		}
		if p.metrics != nil {
			p.metrics.EquivocationsSeen.Inc()
		}
		return bcrypto.Signature{}, ErrEquivocation
	}

	return p.signer.Sign(header.SigningBytes())
}

// parentStake returns the aggregate stake of the distinct authors behind
// parentIDs that are actually present in storage; missing parents
// contribute nothing, which naturally yields ErrParentsMissing above if
// every parent is absent and ErrParentQuorumUnmet if some are.
func (p *Primary) parentStake(parentIDs []ids.CertificateID) uint64 {
	authors := make([]luxids.NodeID, 0, len(parentIDs))
	for _, id := range parentIDs {
		cert, ok := p.store.GetCertificate(id)
		if !ok {
			continue
		}
		authors = append(authors, cert.Header.Author)
	}
	return p.com.AggregateStake(authors)
}

// parentsAtExpectedRound reports whether every stored parent in parentIDs
// was actually certified at round-1; a single parent pointing at the wrong
// round makes Sign reject the whole header with ErrParentQuorumUnmet.
func (p *Primary) parentsAtExpectedRound(parentIDs []ids.CertificateID, round uint64) bool {
	for _, id := range parentIDs {
		cert, ok := p.store.GetCertificate(id)
		if ok && cert.Header.Round != round-1 {
			return false
		}
	}
	return true
}

func withinWindow(round, local uint64) bool {
	if round >= local {
		return round-local <= 1
	}
	return local-round <= 1
}

// CollectSignature records a peer's signature toward the current round's
// certificate. Once aggregate distinct-signer stake reaches quorum, it
// assembles and returns the certificate; the proposer then inserts it
// into storage and broadcasts it.
func (p *Primary) CollectSignature(signer luxids.NodeID, sig bcrypto.Signature) (*types.BatchCertificate, bool, error) {
	if p.current == nil {
		return nil, false, ErrNoActiveProposal
	}
	if !p.com.Has(signer) {
		return nil, false, ErrUnknownSigner
	}
	if p.current.certified {
		return nil, false, ErrAlreadyCertified
	}
	if !p.verifier.Verify(p.current.header.SigningBytes(), signer, sig) {
		return nil, false, ErrInvalidSignature
	}

	p.current.collected[signer] = sig

	signers := maps.Keys(p.current.collected)
	if !p.com.HasQuorum(signers) {
		return nil, false, nil
	}

	cert := &types.BatchCertificate{
		Header:     p.current.header,
		Signatures: copySignatures(p.current.collected),
	}
	p.current.certified = true
	p.phase = PhaseCertified
	if p.metrics != nil {
		p.metrics.CertificatesFormed.Inc()
	}
	return cert, true, nil
}

func copySignatures(in map[luxids.NodeID]bcrypto.Signature) map[luxids.NodeID]bcrypto.Signature {
	out := make(map[luxids.NodeID]bcrypto.Signature, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Advance checks whether storage holds a quorum of round-r certificates
// (by distinct-author stake) and, if so, moves to round r+1, remembering
// the lexicographically-smallest-first-to-cross-quorum certificate set as
// the next round's parents.
func (p *Primary) Advance() ([]ids.CertificateID, error) {
	certIDs := ids.SortCertificateIDs(p.store.CertificatesForRound(p.round))

	var chosen []ids.CertificateID
	var authors []luxids.NodeID
	for _, id := range certIDs {
		cert, ok := p.store.GetCertificate(id)
		if !ok {
			continue
		}
		chosen = append(chosen, id)
		authors = append(authors, cert.Header.Author)
		if p.com.HasQuorum(authors) {
			break
		}
	}
	if !p.com.HasQuorum(authors) {
		return nil, ErrRoundNotReady
	}

	p.lastParents = chosen
	p.round++
	p.current = nil
	p.phase = PhaseIdle
	if p.metrics != nil {
		p.metrics.RoundCurrent.Set(float64(p.round))
	}
	return chosen, nil
}
