// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	luxids "github.com/luxfi/ids"
	"github.com/luxfi/narwhal/gatewaymock"
	"github.com/luxfi/narwhal/ids"
	"github.com/luxfi/narwhal/types"
	"github.com/luxfi/narwhal/wire"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// Unlike loopTransport above, which actually delivers frames between two
// real Gateways, these tests assert on the exact arguments Gateway hands
// its Transport, independent of any peer's behavior — the case gomock
// expectations are for.

func TestRequestEncodesExactFrameOnMockedTransport(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)
	com, a, b := twoNodeCommittee(t)

	transport := gatewaymock.NewMockTransport(ctrl)
	gw := New(transport, com, NewBenchlist(DefaultBenchlistConfig()), DefaultHealthConfig(), nil, nil)

	certID := ids.CertificateID(luxids.GenerateTestID())
	want := types.Message{
		Op:      types.OpCertificateRequest,
		Sender:  a,
		Payload: types.CertificateRequestPayload{CertificateID: certID},
	}

	transport.EXPECT().SendRequest(gomock.Any(), b, gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, nodeID luxids.NodeID, requestID uint32, frame []byte) error {
			got, err := wire.Decode(frame)
			require.NoError(err)
			require.Equal(want, got)

			resp := types.Message{
				Op:      types.OpCertificateResponse,
				Sender:  b,
				Payload: types.CertificateResponsePayload{CertificateID: certID},
			}
			respFrame, err := wire.Encode(resp)
			require.NoError(err)
			_, _, err = gw.HandleInbound(Inbound{From: b, RequestID: requestID, Frame: respFrame})
			return err
		})

	out, err := gw.Request(context.Background(), b, want)
	require.NoError(err)
	payload, ok := out.Payload.(types.CertificateResponsePayload)
	require.True(ok)
	require.Equal(certID, payload.CertificateID)
}

func TestRequestPropagatesMockedTransportFailureAndBenches(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)
	com, a, b := twoNodeCommittee(t)

	transport := gatewaymock.NewMockTransport(ctrl)
	gw := New(transport, com, NewBenchlist(BenchlistConfig{Threshold: 1, Duration: time.Minute}), DefaultHealthConfig(), nil, nil)

	sendErr := errors.New("dial refused")
	transport.EXPECT().SendRequest(gomock.Any(), b, gomock.Any(), gomock.Any()).Return(sendErr)

	_, err := gw.Request(context.Background(), b, types.Message{
		Op:      types.OpCertificateRequest,
		Sender:  a,
		Payload: types.CertificateRequestPayload{CertificateID: ids.CertificateID(luxids.GenerateTestID())},
	})
	require.ErrorIs(err, sendErr)
	require.True(gw.bench.IsBenched(b))
}

func TestBroadcastGossipsExactFrameOnMockedTransport(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)
	com, a, _ := twoNodeCommittee(t)

	transport := gatewaymock.NewMockTransport(ctrl)
	gw := New(transport, com, NewBenchlist(DefaultBenchlistConfig()), DefaultHealthConfig(), nil, nil)

	cert := types.BatchCertificate{Header: types.BatchHeader{Author: a, Round: 1}}
	want := types.Message{Op: types.OpCertificateBroadcast, Sender: a, Payload: types.CertificateBroadcastPayload{Certificate: cert}}

	transport.EXPECT().Gossip(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, frame []byte) error {
		got, err := wire.Decode(frame)
		require.NoError(err)
		require.Equal(want, got)
		return nil
	})

	require.NoError(gw.Broadcast(context.Background(), want))
}
