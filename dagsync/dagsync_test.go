// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dagsync

import (
	"context"
	"errors"
	"testing"
	"time"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/narwhal/bcrypto"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/gateway"
	"github.com/luxfi/narwhal/ids"
	"github.com/luxfi/narwhal/ledger"
	"github.com/luxfi/narwhal/storage"
	"github.com/luxfi/narwhal/types"
	"github.com/luxfi/narwhal/wire"
	"github.com/luxfi/narwhal/worker"
	"github.com/stretchr/testify/require"
)

// scriptedTransport decodes the outgoing request frame, hands it to
// respond for an answer, and delivers that answer straight back into gw's
// HandleInbound — a single-peer stand-in for the network that lets these
// tests drive Syncer without a second Gateway/transport pair.
type scriptedTransport struct {
	gw       *gateway.Gateway
	respond  func(luxids.NodeID, types.Message) types.Message
	failSend bool
}

func (t *scriptedTransport) SendRequest(_ context.Context, nodeID luxids.NodeID, requestID uint32, frame []byte) error {
	if t.failSend {
		return errors.New("send failed")
	}
	msg, err := wire.Decode(frame)
	if err != nil {
		return err
	}
	resp := t.respond(nodeID, msg)
	respFrame, err := wire.Encode(resp)
	if err != nil {
		return err
	}
	_, _, err = t.gw.HandleInbound(gateway.Inbound{From: nodeID, RequestID: requestID, Frame: respFrame})
	return err
}

func (t *scriptedTransport) SendResponse(context.Context, luxids.NodeID, uint32, []byte) error { return nil }
func (t *scriptedTransport) Gossip(context.Context, []byte) error                              { return nil }

// fixture is a 4-member equal-stake committee (quorum 3, availability 2)
// with real signing keys, used to build certificates a fetched-and-verify
// path will accept.
type fixture struct {
	com     *committee.Committee
	signers map[luxids.NodeID]*bcrypto.KeySigner
	reg     *bcrypto.Registry
	nodes   []luxids.NodeID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	var members []committee.Member
	signers := make(map[luxids.NodeID]*bcrypto.KeySigner, 4)
	keys := make(map[luxids.NodeID]bcrypto.PublicKey, 4)
	var nodes []luxids.NodeID
	for i := 0; i < 4; i++ {
		nodeID := luxids.BuildTestNodeID([]byte{byte(i + 1)})
		signer := bcrypto.NewKeySigner(nodeID, bcrypto.SecretKey{byte(i + 1)})
		signers[nodeID] = signer
		keys[nodeID] = signer.PublicKey()
		members = append(members, committee.Member{NodeID: nodeID, Stake: 1})
		nodes = append(nodes, nodeID)
	}
	com, err := committee.New(1, members)
	require.NoError(t, err)
	return &fixture{com: com, signers: signers, reg: bcrypto.NewRegistry(keys), nodes: nodes}
}

// certify builds a quorum-signed certificate for author at round with the
// given parents, signed by signerCount distinct committee members
// (author included first).
func (f *fixture) certify(t *testing.T, author luxids.NodeID, round uint64, parents []ids.CertificateID, signerCount int) (*types.BatchCertificate, ids.CertificateID) {
	t.Helper()
	h := types.BatchHeader{
		Author:                 author,
		Round:                  round,
		Timestamp:              time.Unix(int64(round), 0),
		PreviousCertificateIDs: parents,
	}
	sigs := make(map[luxids.NodeID]bcrypto.Signature, signerCount)
	count := 0
	for _, n := range f.nodes {
		if count >= signerCount {
			break
		}
		sig, err := f.signers[n].Sign(h.SigningBytes())
		require.NoError(t, err)
		sigs[n] = sig
		count++
	}
	id := h.ID()
	return &types.BatchCertificate{Header: h, Signatures: sigs}, id
}

func newSyncer(t *testing.T, f *fixture, selfStore *storage.Storage, selfWk *worker.Worker, responder func(luxids.NodeID, types.Message) types.Message) (*Syncer, *gateway.Gateway) {
	t.Helper()
	transport := &scriptedTransport{respond: responder}
	gw := gateway.New(transport, f.com, gateway.NewBenchlist(gateway.DefaultBenchlistConfig()), gateway.DefaultHealthConfig(), nil, nil)
	transport.gw = gw
	led := ledger.NewStatic(f.com, f.reg)
	cfg := DefaultConfig()
	cfg.MaxElapsedTime = time.Second
	cfg.InitialInterval = time.Millisecond
	s := New(selfStore, selfWk, gw, led, f.nodes[0], cfg, nil, nil)
	return s, gw
}

func TestFetchCertificateInstallsVerifiedQuorumCertificate(t *testing.T) {
	f := newFixture(t)
	store := storage.New()
	wk := worker.New(10, 10, func(types.Transmission) bool { return true })

	cert, id := f.certify(t, f.nodes[1], 1, nil, 3)

	s, _ := newSyncer(t, f, store, wk, func(_ luxids.NodeID, req types.Message) types.Message {
		reqPayload := req.Payload.(types.CertificateRequestPayload)
		require.Equal(t, id, reqPayload.CertificateID)
		return types.Message{
			Op:      types.OpCertificateResponse,
			Sender:  f.nodes[1],
			Payload: types.CertificateResponsePayload{CertificateID: id, Certificate: cert},
		}
	})

	err := s.FetchCertificate(context.Background(), f.nodes[1], id, 1)
	require.NoError(t, err)
	require.True(t, store.ContainsCertificate(id))
}

func TestFetchCertificateRejectsUnderQuorumSignatures(t *testing.T) {
	f := newFixture(t)
	store := storage.New()
	wk := worker.New(10, 10, func(types.Transmission) bool { return true })

	cert, id := f.certify(t, f.nodes[1], 1, nil, 1)

	s, _ := newSyncer(t, f, store, wk, func(_ luxids.NodeID, req types.Message) types.Message {
		return types.Message{
			Op:      types.OpCertificateResponse,
			Sender:  f.nodes[1],
			Payload: types.CertificateResponsePayload{CertificateID: id, Certificate: cert},
		}
	})

	err := s.FetchCertificate(context.Background(), f.nodes[1], id, 1)
	require.ErrorIs(t, err, ErrQuorumUnmet)
	require.False(t, store.ContainsCertificate(id))
}

func TestFetchCertificateRecursivelyResolvesMissingParent(t *testing.T) {
	f := newFixture(t)
	store := storage.New()
	wk := worker.New(10, 10, func(types.Transmission) bool { return true })

	parentCert, parentID := f.certify(t, f.nodes[0], 1, nil, 3)
	childCert, childID := f.certify(t, f.nodes[1], 2, []ids.CertificateID{parentID}, 3)

	s, _ := newSyncer(t, f, store, wk, func(_ luxids.NodeID, req types.Message) types.Message {
		reqPayload := req.Payload.(types.CertificateRequestPayload)
		switch reqPayload.CertificateID {
		case childID:
			return types.Message{Op: types.OpCertificateResponse, Payload: types.CertificateResponsePayload{CertificateID: childID, Certificate: childCert}}
		case parentID:
			return types.Message{Op: types.OpCertificateResponse, Payload: types.CertificateResponsePayload{CertificateID: parentID, Certificate: parentCert}}
		default:
			return types.Message{Op: types.OpCertificateResponse, Payload: types.CertificateResponsePayload{CertificateID: reqPayload.CertificateID}}
		}
	})

	err := s.FetchCertificate(context.Background(), f.nodes[1], childID, 2)
	require.NoError(t, err)
	require.True(t, store.ContainsCertificate(childID))
	require.True(t, store.ContainsCertificate(parentID))
}

func TestFetchCertificateDropsReferenceBelowGCRound(t *testing.T) {
	f := newFixture(t)
	store := storage.New()
	store.GC(5)
	wk := worker.New(10, 10, func(types.Transmission) bool { return true })

	ghostParent := ids.CertificateID(luxids.GenerateTestID())
	childCert, childID := f.certify(t, f.nodes[1], 6, []ids.CertificateID{ghostParent}, 3)

	calls := 0
	s, _ := newSyncer(t, f, store, wk, func(_ luxids.NodeID, req types.Message) types.Message {
		calls++
		reqPayload := req.Payload.(types.CertificateRequestPayload)
		return types.Message{Op: types.OpCertificateResponse, Payload: types.CertificateResponsePayload{CertificateID: reqPayload.CertificateID, Certificate: childCert}}
	})

	err := s.FetchCertificate(context.Background(), f.nodes[1], childID, 6)
	require.NoError(t, err)
	require.True(t, store.ContainsCertificate(childID))
	require.Equal(t, 1, calls, "the GC'd parent reference must be dropped, not fetched")
}

func TestFetchCertificateNoOpWhenAlreadyGCed(t *testing.T) {
	f := newFixture(t)
	store := storage.New()
	store.GC(5)
	wk := worker.New(10, 10, func(types.Transmission) bool { return true })

	s, _ := newSyncer(t, f, store, wk, func(_ luxids.NodeID, req types.Message) types.Message {
		t.Fatal("must not contact the network for an already-GC'd round")
		return types.Message{}
	})

	err := s.FetchCertificate(context.Background(), f.nodes[1], ids.CertificateID(luxids.GenerateTestID()), 3)
	require.NoError(t, err)
}

func TestFetchCertificateFromCommitteeFallsBackOnNotFound(t *testing.T) {
	f := newFixture(t)
	store := storage.New()
	wk := worker.New(10, 10, func(types.Transmission) bool { return true })

	cert, id := f.certify(t, f.nodes[2], 1, nil, 3)

	s, _ := newSyncer(t, f, store, wk, func(nodeID luxids.NodeID, req types.Message) types.Message {
		reqPayload := req.Payload.(types.CertificateRequestPayload)
		if nodeID == f.nodes[1] {
			// First peer tried claims not to have it.
			return types.Message{Op: types.OpCertificateResponse, Payload: types.CertificateResponsePayload{CertificateID: reqPayload.CertificateID}}
		}
		return types.Message{Op: types.OpCertificateResponse, Payload: types.CertificateResponsePayload{CertificateID: id, Certificate: cert}}
	})

	err := s.FetchCertificateFromCommittee(context.Background(), []luxids.NodeID{f.nodes[1], f.nodes[2]}, id, 1)
	require.NoError(t, err)
	require.True(t, store.ContainsCertificate(id))
}

func TestFetchTransmissionResolvesWorkerFetch(t *testing.T) {
	f := newFixture(t)
	store := storage.New()
	wk := worker.New(10, 10, func(types.Transmission) bool { return true })

	txID := ids.TransmissionID(luxids.GenerateTestID())
	tx := types.Transmission{ID: txID, Bytes: []byte("payload")}

	s, _ := newSyncer(t, f, store, wk, func(_ luxids.NodeID, req types.Message) types.Message {
		reqPayload := req.Payload.(types.TransmissionRequestPayload)
		require.Equal(t, txID, reqPayload.TransmissionID)
		return types.Message{Op: types.OpTransmissionResponse, Payload: types.TransmissionResponsePayload{TransmissionID: txID, Transmission: &tx}}
	})

	err := s.FetchTransmission(context.Background(), f.nodes[1], txID)
	require.NoError(t, err)
	require.True(t, wk.Contains(txID))
}

func TestBulkSyncSkipsWhenNotFarEnoughBehind(t *testing.T) {
	f := newFixture(t)
	store := storage.New()
	wk := worker.New(10, 10, func(types.Transmission) bool { return true })

	s, _ := newSyncer(t, f, store, wk, func(luxids.NodeID, types.Message) types.Message {
		t.Fatal("must not fetch when within lag threshold")
		return types.Message{}
	})

	triggered, err := s.BulkSync(context.Background(), f.nodes[1], 10, 11, 5, nil)
	require.NoError(t, err)
	require.False(t, triggered)
}

func TestBulkSyncFetchesRoundByRound(t *testing.T) {
	f := newFixture(t)
	store := storage.New()
	wk := worker.New(10, 10, func(types.Transmission) bool { return true })

	r1Cert, r1ID := f.certify(t, f.nodes[0], 1, nil, 3)
	r2Cert, r2ID := f.certify(t, f.nodes[1], 2, []ids.CertificateID{r1ID}, 3)

	s, _ := newSyncer(t, f, store, wk, func(_ luxids.NodeID, req types.Message) types.Message {
		reqPayload := req.Payload.(types.CertificateRequestPayload)
		switch reqPayload.CertificateID {
		case r1ID:
			return types.Message{Op: types.OpCertificateResponse, Payload: types.CertificateResponsePayload{CertificateID: r1ID, Certificate: r1Cert}}
		case r2ID:
			return types.Message{Op: types.OpCertificateResponse, Payload: types.CertificateResponsePayload{CertificateID: r2ID, Certificate: r2Cert}}
		default:
			return types.Message{Op: types.OpCertificateResponse, Payload: types.CertificateResponsePayload{CertificateID: reqPayload.CertificateID}}
		}
	})

	manifest := func(round uint64) ([]ids.CertificateID, error) {
		switch round {
		case 1:
			return []ids.CertificateID{r1ID}, nil
		case 2:
			return []ids.CertificateID{r2ID}, nil
		default:
			return nil, nil
		}
	}

	triggered, err := s.BulkSync(context.Background(), f.nodes[1], 1, 10, 5, manifest)
	require.NoError(t, err)
	require.True(t, triggered)
	require.True(t, store.ContainsCertificate(r1ID))
	require.True(t, store.ContainsCertificate(r2ID))
}
