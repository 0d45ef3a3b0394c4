// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"context"
	"sync"
	"sync/atomic"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/log"
	"github.com/luxfi/narwhal/metrics"
	"github.com/luxfi/narwhal/types"
	"github.com/luxfi/narwhal/wire"
)

// Gateway is the framing, correlation, and sanctioning layer between the
// core's components and a raw Transport. Callers send types.Message values
// and get types.Message values back; Gateway handles wire encoding,
// request/response correlation, and dropping traffic to or from benched
// peers.
type Gateway struct {
	transport Transport
	com       *committee.Committee
	bench     *Benchlist
	health    HealthConfig
	metrics   *metrics.Metrics
	log       log.Logger

	nextRequestID uint32

	mu      sync.Mutex
	closed  bool
	pending map[uint32]chan types.Message
}

// New creates a Gateway wired to transport for the given committee.
func New(transport Transport, com *committee.Committee, bench *Benchlist, health HealthConfig, m *metrics.Metrics, logger log.Logger) *Gateway {
	return &Gateway{
		transport: transport,
		com:       com,
		bench:     bench,
		health:    health,
		metrics:   m,
		log:       logger,
		pending:   make(map[uint32]chan types.Message),
	}
}

// Close marks the gateway closed; outstanding and future requests fail
// with ErrClosed.
func (g *Gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	for id, ch := range g.pending {
		close(ch)
		delete(g.pending, id)
	}
}

// Health reports a point-in-time liveness snapshot.
func (g *Gateway) Health() Health {
	g.mu.Lock()
	outstanding := len(g.pending)
	g.mu.Unlock()

	benched := g.bench.Count()
	size := g.com.Len()
	if g.metrics != nil {
		g.metrics.PeersBenched.Set(float64(benched))
	}
	healthy := outstanding <= g.health.MaxOutstandingRequests
	if size > 0 && float64(benched)/float64(size) > g.health.MaxBenchedPortion {
		healthy = false
	}
	return Health{
		OutstandingRequests: outstanding,
		BenchedPeers:        benched,
		CommitteeSize:       size,
		Healthy:             healthy,
	}
}

// Request sends msg to nodeID as a request and blocks for its response,
// failing if nodeID is unknown, benched, ctx expires, or too many requests
// are already outstanding.
func (g *Gateway) Request(ctx context.Context, nodeID luxids.NodeID, msg types.Message) (types.Message, error) {
	if !g.com.Has(nodeID) {
		return types.Message{}, ErrUnknownPeer
	}
	if g.bench.IsBenched(nodeID) {
		return types.Message{}, ErrPeerBenched
	}

	requestID, ch, err := g.register()
	if err != nil {
		return types.Message{}, err
	}
	defer g.unregister(requestID)

	frame, err := wire.Encode(msg)
	if err != nil {
		return types.Message{}, err
	}
	if err := g.transport.SendRequest(ctx, nodeID, requestID, frame); err != nil {
		g.bench.RegisterFailure(nodeID)
		return types.Message{}, err
	}
	if g.metrics != nil {
		g.metrics.MessagesSent.Inc()
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return types.Message{}, ErrClosed
		}
		g.bench.RegisterResponse(nodeID)
		return resp, nil
	case <-ctx.Done():
		g.bench.RegisterFailure(nodeID)
		return types.Message{}, ErrRequestTimeout
	}
}

// Respond answers a previously received request identified by requestID.
func (g *Gateway) Respond(ctx context.Context, nodeID luxids.NodeID, requestID uint32, msg types.Message) error {
	frame, err := wire.Encode(msg)
	if err != nil {
		return err
	}
	if err := g.transport.SendResponse(ctx, nodeID, requestID, frame); err != nil {
		return err
	}
	if g.metrics != nil {
		g.metrics.MessagesSent.Inc()
	}
	return nil
}

// Broadcast gossips msg to every connected peer; used for certificate and
// transmission dissemination, which carry no requestID.
func (g *Gateway) Broadcast(ctx context.Context, msg types.Message) error {
	frame, err := wire.Encode(msg)
	if err != nil {
		return err
	}
	if err := g.transport.Gossip(ctx, frame); err != nil {
		return err
	}
	if g.metrics != nil {
		g.metrics.MessagesSent.Inc()
	}
	return nil
}

// HandleInbound decodes a Transport-delivered frame. If it completes an
// outstanding Request call, it is delivered there and ok is false (nothing
// further for the caller to do). Otherwise ok is true and the caller is
// responsible for acting on msg and, for request ops, calling Respond with
// the same in.RequestID.
func (g *Gateway) HandleInbound(in Inbound) (msg types.Message, ok bool, err error) {
	if g.bench.IsBenched(in.From) {
		if g.metrics != nil {
			g.metrics.MessagesDropped.Inc()
		}
		return types.Message{}, false, ErrPeerBenched
	}

	msg, err = wire.Decode(in.Frame)
	if err != nil {
		g.bench.RegisterFailure(in.From)
		if g.metrics != nil {
			g.metrics.MessagesDropped.Inc()
		}
		if g.log != nil {
			g.log.Warn("dropping undecodable inbound frame", "from", in.From, "err", err)
		}
		return types.Message{}, false, err
	}

	if in.RequestID != 0 {
		g.mu.Lock()
		ch, pending := g.pending[in.RequestID]
		g.mu.Unlock()
		if pending {
			ch <- msg
			return types.Message{}, false, nil
		}
	}
	return msg, true, nil
}

func (g *Gateway) register() (uint32, chan types.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return 0, nil, ErrClosed
	}
	if len(g.pending) >= g.health.MaxOutstandingRequests {
		return 0, nil, ErrTooManyOutstanding
	}
	id := atomic.AddUint32(&g.nextRequestID, 1)
	ch := make(chan types.Message, 1)
	g.pending[id] = ch
	return id, ch, nil
}

func (g *Gateway) unregister(id uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, id)
}
