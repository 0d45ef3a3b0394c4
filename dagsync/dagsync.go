// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dagsync is the catch-up path: fetching certificates and
// transmissions a primary has observed a reference to but does not hold,
// verifying them recursively before they enter Storage, and bulk-syncing
// whole rounds when this node has fallen LAG_THRESHOLD rounds behind a
// peer. Every other component only ever reads Storage directly; dagsync is
// the only writer that didn't originate the data locally.
package dagsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	luxids "github.com/luxfi/ids"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/config"
	"github.com/luxfi/narwhal/gateway"
	"github.com/luxfi/narwhal/ids"
	"github.com/luxfi/narwhal/ledger"
	"github.com/luxfi/narwhal/log"
	"github.com/luxfi/narwhal/metrics"
	"github.com/luxfi/narwhal/storage"
	"github.com/luxfi/narwhal/types"
	"github.com/luxfi/narwhal/worker"
	"golang.org/x/exp/maps"
)

// Config bounds how aggressively Syncer retries and fans out fetches.
type Config struct {
	MaxConcurrentFetches int
	InitialInterval      time.Duration
	MaxInterval          time.Duration
	MaxElapsedTime       time.Duration
}

// DefaultConfig mirrors config.Builder's defaults-and-override shape: sane
// values for production, freely overridden in tests.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentFetches: 16,
		InitialInterval:      100 * time.Millisecond,
		MaxInterval:          5 * time.Second,
		MaxElapsedTime:       30 * time.Second,
	}
}

// Syncer drives per-id fetches and bulk round catch-up against a shared
// Storage and Worker. It is the only component that installs certificates
// and transmissions this node did not author itself.
type Syncer struct {
	store  *storage.Storage
	wk     *worker.Worker
	gw     *gateway.Gateway
	ledger ledger.Ledger
	self   luxids.NodeID

	cfg     Config
	sem     chan struct{}
	metrics *metrics.Metrics
	log     log.Logger

	mu           sync.Mutex
	certInflight map[ids.CertificateID]struct{}
}

// New creates a Syncer. self is this node's id, used as the Sender on
// outgoing requests.
func New(store *storage.Storage, wk *worker.Worker, gw *gateway.Gateway, led ledger.Ledger, self luxids.NodeID, cfg Config, m *metrics.Metrics, logger log.Logger) *Syncer {
	return &Syncer{
		store:        store,
		wk:           wk,
		gw:           gw,
		ledger:       led,
		self:         self,
		cfg:          cfg,
		sem:          make(chan struct{}, cfg.MaxConcurrentFetches),
		metrics:      m,
		log:          logger,
		certInflight: make(map[ids.CertificateID]struct{}),
	}
}

func (s *Syncer) beginCertFetch(id ids.CertificateID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.certInflight[id]; ok {
		return false
	}
	s.certInflight[id] = struct{}{}
	return true
}

func (s *Syncer) endCertFetch(id ids.CertificateID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.certInflight, id)
}

func (s *Syncer) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		if s.metrics != nil {
			s.metrics.SyncFetchesInFlight.Inc()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Syncer) release() {
	<-s.sem
	if s.metrics != nil {
		s.metrics.SyncFetchesInFlight.Dec()
	}
}

func (s *Syncer) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialInterval
	b.MaxInterval = s.cfg.MaxInterval
	b.MaxElapsedTime = s.cfg.MaxElapsedTime
	return b
}

// FetchCertificate fetches and recursively verifies the certificate for id
// from peer, installing it (and any of its ancestors it had to fetch
// along the way) into storage. round is the round id's certificate is
// expected to occupy (the caller always knows this: it is either
// requesting a known round's anchor, or a header's declared parent
// round). It is a no-op if id is already stored or already GC'd past, and
// returns ErrAlreadyInflight if id already has a fetch in flight.
func (s *Syncer) FetchCertificate(ctx context.Context, peer luxids.NodeID, id ids.CertificateID, round uint64) error {
	if s.store.ContainsCertificate(id) {
		return nil
	}
	if round <= s.store.GCRound() {
		// Already-collected rounds are gone for good; there is nothing
		// left to verify this reference against, so it is dropped
		// rather than chased forever.
		return nil
	}
	if !s.beginCertFetch(id) {
		return ErrAlreadyInflight
	}
	defer s.endCertFetch(id)

	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	cert, err := s.requestCertificate(ctx, peer, id)
	if err != nil {
		return err
	}

	if err := s.verifyAndInstall(ctx, peer, cert, id); err != nil {
		return err
	}
	return nil
}

// FetchCertificateFromCommittee tries each of advertisers in order,
// stopping at the first success.
func (s *Syncer) FetchCertificateFromCommittee(ctx context.Context, advertisers []luxids.NodeID, id ids.CertificateID, round uint64) error {
	var lastErr error
	for _, peer := range advertisers {
		if s.store.ContainsCertificate(id) {
			return nil
		}
		err := s.FetchCertificate(ctx, peer, id, round)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	if lastErr == nil {
		lastErr = ErrNotFound
	}
	return lastErr
}

func (s *Syncer) requestCertificate(ctx context.Context, peer luxids.NodeID, id ids.CertificateID) (*types.BatchCertificate, error) {
	var cert *types.BatchCertificate
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		resp, err := s.gw.Request(ctx, peer, types.Message{
			Op:     types.OpCertificateRequest,
			Sender: s.self,
			Payload: types.CertificateRequestPayload{
				CertificateID: id,
			},
		})
		if err != nil {
			return err
		}
		payload, ok := resp.Payload.(types.CertificateResponsePayload)
		if !ok {
			return backoff.Permanent(ErrUnexpectedResponse)
		}
		if payload.Certificate == nil {
			return backoff.Permanent(ErrNotFound)
		}
		cert = payload.Certificate
		return nil
	}
	if err := backoff.Retry(op, s.newBackOff()); err != nil {
		return nil, fmt.Errorf("dagsync: fetch certificate %x from %s: %w", id, peer, err)
	}
	return cert, nil
}

// verifyAndInstall recursively resolves cert's parents (fetching any
// that are missing and not yet GC'd), checks cert's own signatures
// aggregate to committee quorum, then inserts it.
func (s *Syncer) verifyAndInstall(ctx context.Context, peer luxids.NodeID, cert *types.BatchCertificate, id ids.CertificateID) error {
	if cert.Header.Round > 1 {
		parentRound := cert.Header.Round - 1
		for _, parentID := range cert.Header.PreviousCertificateIDs {
			if s.store.ContainsCertificate(parentID) {
				continue
			}
			if parentRound <= s.store.GCRound() {
				continue
			}
			if err := s.FetchCertificate(ctx, peer, parentID, parentRound); err != nil && err != ErrAlreadyInflight {
				return err
			}
		}
	}

	com := s.ledger.Committee()
	signers := maps.Keys(cert.Signatures)
	if !com.HasQuorum(signers) || !s.ledger.AggregateVerify(cert.Header.SigningBytes(), cert.Signatures) {
		return ErrQuorumUnmet
	}

	if err := s.store.InsertCertificate(id, cert); err != nil {
		return fmt.Errorf("dagsync: install certificate %x: %w", id, err)
	}
	if s.metrics != nil {
		s.metrics.CertificatesStored.Set(float64(s.store.Len()))
	}
	if s.log != nil {
		s.log.Debug("installed synced certificate", "round", cert.Header.Round, "author", cert.Header.Author)
	}
	return nil
}

// InstallBroadcast verifies and installs a certificate this node already
// holds the bytes of (received via CertificateBroadcast gossip rather than
// a direct fetch response), resolving any missing parents from peer the
// same way FetchCertificate's recursive resolution does. It is a no-op if
// cert is already stored or its round has already been garbage collected.
func (s *Syncer) InstallBroadcast(ctx context.Context, peer luxids.NodeID, cert *types.BatchCertificate) error {
	id := cert.Header.ID()
	if s.store.ContainsCertificate(id) {
		return nil
	}
	if cert.Header.Round <= s.store.GCRound() {
		return nil
	}
	return s.verifyAndInstall(ctx, peer, cert, id)
}

// FetchTransmission fetches the transmission for id from peer and admits
// it into the Worker, so that a later Primary.Sign call that failed with
// primary.ErrTransmissionsMissing for it can succeed on retry.
func (s *Syncer) FetchTransmission(ctx context.Context, peer luxids.NodeID, id ids.TransmissionID) error {
	if s.wk.Contains(id) || s.store.ContainsTransmission(id) {
		return nil
	}
	if !s.wk.BeginFetch(id) {
		return ErrAlreadyInflight
	}
	committed := false
	defer func() {
		if !committed {
			s.wk.EndFetch(id)
		}
	}()

	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	var tx *types.Transmission
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		resp, err := s.gw.Request(ctx, peer, types.Message{
			Op:     types.OpTransmissionRequest,
			Sender: s.self,
			Payload: types.TransmissionRequestPayload{
				TransmissionID: id,
			},
		})
		if err != nil {
			return err
		}
		payload, ok := resp.Payload.(types.TransmissionResponsePayload)
		if !ok {
			return backoff.Permanent(ErrUnexpectedResponse)
		}
		if payload.Transmission == nil {
			return backoff.Permanent(ErrNotFound)
		}
		tx = payload.Transmission
		return nil
	}
	if err := backoff.Retry(op, s.newBackOff()); err != nil {
		return fmt.Errorf("dagsync: fetch transmission %x from %s: %w", id, peer, err)
	}

	committed = true
	return s.wk.Resolve(*tx)
}

// FetchTransmissionFromCommittee fetches id per config.FetchPolicy. author
// is always tried first, since it is the committee member whose proposed
// header referenced id and so is presumed to hold it. FetchPartitioned
// stops there, accepting whatever that single fetch yields; FetchRedundant
// falls back through the rest of com's members, in stake order, until one
// succeeds. It is a no-op if id is already held.
func (s *Syncer) FetchTransmissionFromCommittee(ctx context.Context, author luxids.NodeID, com *committee.Committee, id ids.TransmissionID, policy config.FetchPolicy) error {
	if s.wk.Contains(id) || s.store.ContainsTransmission(id) {
		return nil
	}
	err := s.FetchTransmission(ctx, author, id)
	if err == nil || err == ErrAlreadyInflight {
		return err
	}
	if policy == config.FetchPartitioned {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	lastErr := err
	for _, m := range com.Members() {
		if m.NodeID == author {
			continue
		}
		if s.wk.Contains(id) || s.store.ContainsTransmission(id) {
			return nil
		}
		err := s.FetchTransmission(ctx, m.NodeID, id)
		if err == nil || err == ErrAlreadyInflight {
			return err
		}
		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return lastErr
}

// BulkSync catches this node up from localRound to peerRound when it has
// fallen more than lagThreshold rounds behind: for each round in turn it
// asks roundCerts for the certificate ids peer carries at that round (a
// manifest the node accumulates from certificate-broadcast gossip it has
// already observed, even for certificates it hasn't verified yet) and
// fetches/installs each, in round order, before moving to the next round.
// It returns false without fetching anything if the node is not behind
// by more than lagThreshold.
func (s *Syncer) BulkSync(ctx context.Context, peer luxids.NodeID, localRound, peerRound, lagThreshold uint64, roundCerts func(round uint64) ([]ids.CertificateID, error)) (bool, error) {
	if peerRound < localRound || peerRound-localRound <= lagThreshold {
		return false, nil
	}

	for round := localRound; round <= peerRound; round++ {
		certIDs, err := roundCerts(round)
		if err != nil {
			return true, fmt.Errorf("dagsync: bulk sync round %d manifest: %w", round, err)
		}
		for _, id := range certIDs {
			if err := s.FetchCertificate(ctx, peer, id, round); err != nil && err != ErrAlreadyInflight {
				return true, fmt.Errorf("dagsync: bulk sync round %d certificate %x: %w", round, id, err)
			}
		}
		if s.metrics != nil {
			s.metrics.SyncBulkRoundsDone.Inc()
		}
		if s.log != nil {
			s.log.Info("bulk sync installed round", "round", round, "certificates", len(certIDs))
		}
	}
	return true, nil
}
