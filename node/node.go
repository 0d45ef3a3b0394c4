// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package node wires every other package into one validator: it drives
// Primary's round state machine over a real Gateway, hands newly formed
// certificates and broadcasts to Storage and dagsync, and turns BFT's
// committed sub-DAGs into calls against an external OnCommit callback. It
// is the only package that depends on all the others; nothing else
// imports it.
package node

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/narwhal/bcrypto"
	"github.com/luxfi/narwhal/bft"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/config"
	"github.com/luxfi/narwhal/dagsync"
	"github.com/luxfi/narwhal/gateway"
	"github.com/luxfi/narwhal/ids"
	"github.com/luxfi/narwhal/ledger"
	"github.com/luxfi/narwhal/log"
	"github.com/luxfi/narwhal/metrics"
	"github.com/luxfi/narwhal/primary"
	"github.com/luxfi/narwhal/storage"
	"github.com/luxfi/narwhal/types"
	"github.com/luxfi/narwhal/worker"
)

// OnCommit is called once per TryCommit success, in increasing
// AnchorRound order. Implementations belong to the block producer; node
// never inspects what they return.
type OnCommit func(*bft.OrderedSubDAG)

// Consensus is one validator's complete DAG-BFT core: round driver,
// commit rule, and catch-up sync sharing one Storage and Gateway.
type Consensus struct {
	cfg   config.Config
	com   *committee.Committee
	store *storage.Storage
	wk    *worker.Worker
	self  luxids.NodeID

	primary *primary.Primary
	bftE    *bft.Engine
	sync    *dagsync.Syncer
	gw      *gateway.Gateway
	ledger  ledger.Ledger

	metrics  *metrics.Metrics
	log      log.Logger
	onCommit OnCommit

	mu             sync.Mutex
	roundReachedAt map[uint64]time.Time
	seenByRound    map[uint64][]ids.CertificateID
	advertisedBy   map[ids.CertificateID][]luxids.NodeID
}

// New creates a Consensus for a single validator (self) from its already
// constructed components. Callers build Primary, bft.Engine, dagsync.Syncer
// and Gateway over a shared Committee/Storage/Worker first, the same way
// production wiring and tests in this package do.
func New(
	cfg config.Config,
	com *committee.Committee,
	store *storage.Storage,
	wk *worker.Worker,
	self luxids.NodeID,
	p *primary.Primary,
	bftE *bft.Engine,
	syncer *dagsync.Syncer,
	gw *gateway.Gateway,
	led ledger.Ledger,
	m *metrics.Metrics,
	logger log.Logger,
	onCommit OnCommit,
) *Consensus {
	return &Consensus{
		cfg:            cfg,
		com:            com,
		store:          store,
		wk:             wk,
		self:           self,
		primary:        p,
		bftE:           bftE,
		sync:           syncer,
		gw:             gw,
		ledger:         led,
		metrics:        m,
		log:            logger,
		onCommit:       onCommit,
		roundReachedAt: map[uint64]time.Time{1: time.Now()},
		seenByRound:    make(map[uint64][]ids.CertificateID),
		advertisedBy:   make(map[ids.CertificateID][]luxids.NodeID),
	}
}

// Dispatch decodes and routes one inbound frame. It is the method the
// node's Transport implementation calls on every received frame, mirroring
// Gateway.HandleInbound's own "decode, maybe it's a pending response"
// contract one layer up.
func (c *Consensus) Dispatch(ctx context.Context, in gateway.Inbound) error {
	msg, ok, err := c.gw.HandleInbound(in)
	if err != nil {
		return err
	}
	if !ok {
		// Delivered to an outstanding Request call; nothing more to do.
		return nil
	}

	switch msg.Op {
	case types.OpBatchPropose:
		return c.onBatchPropose(ctx, in, msg)
	case types.OpCertificateRequest:
		return c.onCertificateRequest(ctx, in, msg)
	case types.OpTransmissionRequest:
		return c.onTransmissionRequest(ctx, in, msg)
	case types.OpPing:
		return c.onPing(ctx, in, msg)
	case types.OpCertificateBroadcast:
		return c.onCertificateBroadcast(ctx, msg)
	case types.OpTransmissionBroadcast:
		return c.onTransmissionBroadcast(msg)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOp, msg.Op)
	}
}

func (c *Consensus) onBatchPropose(ctx context.Context, in gateway.Inbound, msg types.Message) error {
	if in.RequestID == 0 {
		return ErrNotARequest
	}
	payload, ok := msg.Payload.(types.BatchProposePayload)
	if !ok {
		return ErrUnsupportedOp
	}

	sig, err := c.primary.Sign(payload.Header)
	if errors.Is(err, primary.ErrTransmissionsMissing) {
		if fetchErr := c.fetchMissingTransmissions(ctx, msg.Sender, payload.Header); fetchErr != nil {
			if c.log != nil {
				c.log.Warn("failed fetching transmissions referenced by proposed header", "from", msg.Sender, "round", payload.Header.Round, "err", fetchErr)
			}
			return nil
		}
		sig, err = c.primary.Sign(payload.Header)
	}
	if err != nil {
		if c.log != nil {
			c.log.Warn("refusing to sign proposed header", "from", msg.Sender, "round", payload.Header.Round, "err", err)
		}
		// No response: the proposer's per-peer request simply times out,
		// the same outcome as a peer that never answers at all.
		return nil
	}

	resp := types.Message{
		Op:     types.OpBatchSignature,
		Sender: c.self,
		Payload: types.BatchSignaturePayload{
			CertificateID: payload.Header.ID(),
			Signer:        c.self,
			Signature:     sig,
		},
	}
	return c.gw.Respond(ctx, in.From, in.RequestID, resp)
}

// fetchMissingTransmissions resolves every id header references that
// neither Worker nor Storage currently hold, per the configured
// TransmissionFetchPolicy, treating author as the presumed holder.
func (c *Consensus) fetchMissingTransmissions(ctx context.Context, author luxids.NodeID, header types.BatchHeader) error {
	for _, txID := range header.TransmissionIDs {
		if c.wk.Contains(txID) || c.store.ContainsTransmission(txID) {
			continue
		}
		err := c.sync.FetchTransmissionFromCommittee(ctx, author, c.com, txID, c.cfg.TransmissionFetchPolicy)
		if err != nil && err != dagsync.ErrAlreadyInflight {
			return err
		}
	}
	return nil
}

func (c *Consensus) onCertificateRequest(ctx context.Context, in gateway.Inbound, msg types.Message) error {
	if in.RequestID == 0 {
		return ErrNotARequest
	}
	payload, ok := msg.Payload.(types.CertificateRequestPayload)
	if !ok {
		return ErrUnsupportedOp
	}
	cert, _ := c.store.GetCertificate(payload.CertificateID)
	resp := types.Message{
		Op:     types.OpCertificateResponse,
		Sender: c.self,
		Payload: types.CertificateResponsePayload{
			CertificateID: payload.CertificateID,
			Certificate:   cert,
		},
	}
	return c.gw.Respond(ctx, in.From, in.RequestID, resp)
}

func (c *Consensus) onTransmissionRequest(ctx context.Context, in gateway.Inbound, msg types.Message) error {
	if in.RequestID == 0 {
		return ErrNotARequest
	}
	payload, ok := msg.Payload.(types.TransmissionRequestPayload)
	if !ok {
		return ErrUnsupportedOp
	}

	var tx *types.Transmission
	if held, ok := c.wk.Get(payload.TransmissionID); ok {
		tx = &held
	} else if bytes, ok := c.store.GetTransmission(payload.TransmissionID); ok {
		held := types.Transmission{ID: payload.TransmissionID, Kind: types.KindTransaction, Bytes: bytes}
		tx = &held
	}

	resp := types.Message{
		Op:     types.OpTransmissionResponse,
		Sender: c.self,
		Payload: types.TransmissionResponsePayload{
			TransmissionID: payload.TransmissionID,
			Transmission:   tx,
		},
	}
	return c.gw.Respond(ctx, in.From, in.RequestID, resp)
}

func (c *Consensus) onPing(ctx context.Context, in gateway.Inbound, msg types.Message) error {
	if in.RequestID == 0 {
		return ErrNotARequest
	}
	if _, ok := msg.Payload.(types.PingPayload); !ok {
		return ErrUnsupportedOp
	}
	resp := types.Message{
		Op:      types.OpPong,
		Sender:  c.self,
		Payload: types.PongPayload{Round: c.primary.Round()},
	}
	return c.gw.Respond(ctx, in.From, in.RequestID, resp)
}

// onCertificateBroadcast records the sender as a holder of the advertised
// certificate (for dagsync's peer-fallback fetch) and, if not already
// stored, verifies and installs it via the same recursive-parent-resolve
// path a direct fetch would use.
func (c *Consensus) onCertificateBroadcast(ctx context.Context, msg types.Message) error {
	payload, ok := msg.Payload.(types.CertificateBroadcastPayload)
	if !ok {
		return ErrUnsupportedOp
	}
	cert := payload.Certificate
	id := cert.Header.ID()

	c.mu.Lock()
	c.advertisedBy[id] = appendUnique(c.advertisedBy[id], msg.Sender)
	c.seenByRound[cert.Header.Round] = appendUniqueCert(c.seenByRound[cert.Header.Round], id)
	c.mu.Unlock()

	if c.store.ContainsCertificate(id) {
		return nil
	}
	return c.sync.InstallBroadcast(ctx, msg.Sender, &cert)
}

func (c *Consensus) onTransmissionBroadcast(msg types.Message) error {
	payload, ok := msg.Payload.(types.TransmissionBroadcastPayload)
	if !ok {
		return ErrUnsupportedOp
	}
	err := c.wk.Accept(payload.Transmission)
	if c.metrics != nil {
		c.metrics.WorkerQueueDepth.Set(float64(c.wk.Len()))
	}
	return err
}

func appendUnique(in []luxids.NodeID, v luxids.NodeID) []luxids.NodeID {
	for _, x := range in {
		if x == v {
			return in
		}
	}
	return append(in, v)
}

func appendUniqueCert(in []ids.CertificateID, v ids.CertificateID) []ids.CertificateID {
	for _, x := range in {
		if x == v {
			return in
		}
	}
	return append(in, v)
}

// AdvertisersFor returns the committee members this node has observed
// broadcasting id, for a caller that wants to drive
// dagsync.FetchCertificateFromCommittee directly.
func (c *Consensus) AdvertisersFor(id ids.CertificateID) []luxids.NodeID {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]luxids.NodeID, len(c.advertisedBy[id]))
	copy(out, c.advertisedBy[id])
	return out
}

// roundCertsManifest answers dagsync.BulkSync's per-round lookup from
// certificate ids this node has observed advertised for round, whether or
// not it has verified and stored them yet.
func (c *Consensus) roundCertsManifest(round uint64) ([]ids.CertificateID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ids.CertificateID, len(c.seenByRound[round]))
	copy(out, c.seenByRound[round])
	return out, nil
}

// BulkSyncFrom catches this node up to peer's reported round if it has
// fallen more than LagThreshold rounds behind.
func (c *Consensus) BulkSyncFrom(ctx context.Context, peer luxids.NodeID, peerRound uint64) (bool, error) {
	return c.sync.BulkSync(ctx, peer, c.primary.Round(), peerRound, c.cfg.LagThreshold, c.roundCertsManifest)
}

// PingPeer asks peer for its current round, for the lag check that feeds
// BulkSyncFrom.
func (c *Consensus) PingPeer(ctx context.Context, peer luxids.NodeID) (uint64, error) {
	resp, err := c.gw.Request(ctx, peer, types.Message{
		Op:      types.OpPing,
		Sender:  c.self,
		Payload: types.PingPayload{Round: c.primary.Round()},
	})
	if err != nil {
		return 0, err
	}
	payload, ok := resp.Payload.(types.PongPayload)
	if !ok {
		return 0, ErrUnsupportedOp
	}
	return payload.Round, nil
}

// ProposeAndCertify drives one round for this validator: proposes a
// header, fans a signing request out to every other committee member
// concurrently (each bounded by T_vote), and assembles and broadcasts the
// resulting certificate once quorum stake of signatures is collected.
func (c *Consensus) ProposeAndCertify(ctx context.Context, now time.Time) (*types.BatchCertificate, error) {
	header, err := c.primary.Propose(now)
	if err != nil {
		return nil, err
	}

	type sigResult struct {
		signer luxids.NodeID
		sig    bcrypto.Signature
	}

	members := c.com.Members()
	results := make(chan sigResult, len(members))
	var wg sync.WaitGroup
	for _, m := range members {
		if m.NodeID == c.self {
			continue
		}
		wg.Add(1)
		go func(peer luxids.NodeID) {
			defer wg.Done()
			reqCtx, cancel := context.WithTimeout(ctx, c.cfg.TVote)
			defer cancel()
			resp, err := c.gw.Request(reqCtx, peer, types.Message{
				Op:      types.OpBatchPropose,
				Sender:  c.self,
				Payload: types.BatchProposePayload{Header: header},
			})
			if err != nil {
				return
			}
			payload, ok := resp.Payload.(types.BatchSignaturePayload)
			if !ok {
				return
			}
			results <- sigResult{signer: payload.Signer, sig: payload.Signature}
		}(m.NodeID)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var cert *types.BatchCertificate
	for r := range results {
		c2, done, err := c.primary.CollectSignature(r.signer, r.sig)
		if err != nil {
			continue
		}
		if done {
			cert = c2
			break
		}
	}
	if cert == nil {
		return nil, ErrQuorumNotReached
	}

	certID := cert.Header.ID()
	if err := c.store.InsertCertificate(certID, cert); err != nil && err != storage.ErrAlreadyPresent {
		return nil, fmt.Errorf("node: insert own certificate: %w", err)
	}
	c.wk.Take(header.TransmissionIDs)
	if c.metrics != nil {
		c.metrics.CertificatesStored.Set(float64(c.store.Len()))
		c.metrics.WorkerQueueDepth.Set(float64(c.wk.Len()))
	}

	if err := c.gw.Broadcast(ctx, types.Message{
		Op:      types.OpCertificateBroadcast,
		Sender:  c.self,
		Payload: types.CertificateBroadcastPayload{Certificate: *cert},
	}); err != nil && c.log != nil {
		c.log.Warn("certificate broadcast failed", "round", header.Round, "err", err)
	}
	return cert, nil
}

// Advance moves this validator's Primary to the next round once storage
// holds quorum of the current round's certificates, then attempts to
// commit or skip the anchor rounds that just became decidable.
func (c *Consensus) Advance(now time.Time) (*bft.OrderedSubDAG, error) {
	if _, err := c.primary.Advance(); err != nil {
		return nil, err
	}
	newRound := c.primary.Round()

	c.mu.Lock()
	c.roundReachedAt[newRound] = now
	c.mu.Unlock()

	return c.tryCommitDecidableAnchor(newRound)
}

// tryCommitDecidableAnchor attempts the anchor round that just became
// decidable now that round newRound-1 (the anchor's vote round) has
// quorum certificates stored, falling back to skipping it once its
// T_anchor deadline has passed without quorum votes.
func (c *Consensus) tryCommitDecidableAnchor(newRound uint64) (*bft.OrderedSubDAG, error) {
	if newRound < 3 {
		return nil, nil
	}
	voteRound := newRound - 1
	if voteRound%2 != 1 {
		return nil, nil
	}
	anchorRound := voteRound - 1

	sub, err := c.bftE.TryCommit(anchorRound)
	switch err {
	case nil:
		if c.onCommit != nil {
			c.onCommit(sub)
		}
		return sub, nil
	case bft.ErrVotesNotYetQuorum:
		c.mu.Lock()
		reachedAt, tracked := c.roundReachedAt[voteRound]
		c.mu.Unlock()
		if tracked && time.Since(reachedAt) > c.cfg.TAnchor {
			if skipErr := c.bftE.Skip(anchorRound); skipErr != nil && c.log != nil {
				c.log.Warn("failed to skip timed-out anchor", "round", anchorRound, "err", skipErr)
			}
		}
		return nil, nil
	case bft.ErrAlreadyCommitted, bft.ErrAnchorNotCertified:
		return nil, nil
	default:
		return nil, err
	}
}

// Round returns this validator's current primary round.
func (c *Consensus) Round() uint64 { return c.primary.Round() }

// CommittedRound returns the highest anchor round committed so far.
func (c *Consensus) CommittedRound() uint64 { return c.bftE.CommittedRound() }
