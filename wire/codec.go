// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wire encodes and decodes the Message envelope that travels
// between validators: a versioned, Op-tagged frame carrying exactly one
// payload variant. The codec is JSON, matching the committee's own
// dev/test codec; the payload types carry no protobuf struct tags.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/luxfi/narwhal/types"
)

// Version identifies the wire format of an encoded frame.
type Version uint16

// CurrentVersion is the only version this codec currently emits or accepts.
const CurrentVersion Version = 0

// envelope mirrors types.Message but carries Payload as raw JSON, so it can
// be decoded into the right concrete struct once Op is known.
type envelope struct {
	Version   Version         `json:"version"`
	Op        types.Op        `json:"op"`
	Sender    json.RawMessage `json:"sender"`
	Signature json.RawMessage `json:"signature"`
	Payload   json.RawMessage `json:"payload"`
}

// Encode marshals msg into a versioned frame.
func Encode(msg types.Message) ([]byte, error) {
	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal payload: %w", err)
	}
	sender, err := json.Marshal(msg.Sender)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal sender: %w", err)
	}
	sig, err := json.Marshal(msg.Signature)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal signature: %w", err)
	}
	return json.Marshal(envelope{
		Version:   CurrentVersion,
		Op:        msg.Op,
		Sender:    sender,
		Signature: sig,
		Payload:   payload,
	})
}

// Decode unmarshals a frame produced by Encode, dispatching Payload into
// the concrete struct its Op names.
func Decode(data []byte) (types.Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return types.Message{}, fmt.Errorf("wire: unmarshal envelope: %w", err)
	}
	if env.Version != CurrentVersion {
		return types.Message{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}

	msg := types.Message{Op: env.Op}
	if err := json.Unmarshal(env.Sender, &msg.Sender); err != nil {
		return types.Message{}, fmt.Errorf("wire: unmarshal sender: %w", err)
	}
	if err := json.Unmarshal(env.Signature, &msg.Signature); err != nil {
		return types.Message{}, fmt.Errorf("wire: unmarshal signature: %w", err)
	}

	payload, err := decodePayload(env.Op, env.Payload)
	if err != nil {
		return types.Message{}, err
	}
	msg.Payload = payload
	return msg, nil
}

func decodePayload(op types.Op, raw json.RawMessage) (any, error) {
	var target any
	switch op {
	case types.OpBatchPropose:
		target = new(types.BatchProposePayload)
	case types.OpBatchSignature:
		target = new(types.BatchSignaturePayload)
	case types.OpCertificateBroadcast:
		target = new(types.CertificateBroadcastPayload)
	case types.OpCertificateRequest:
		target = new(types.CertificateRequestPayload)
	case types.OpCertificateResponse:
		target = new(types.CertificateResponsePayload)
	case types.OpTransmissionRequest:
		target = new(types.TransmissionRequestPayload)
	case types.OpTransmissionResponse:
		target = new(types.TransmissionResponsePayload)
	case types.OpTransmissionBroadcast:
		target = new(types.TransmissionBroadcastPayload)
	case types.OpPing:
		target = new(types.PingPayload)
	case types.OpPong:
		target = new(types.PongPayload)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOp, op)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("wire: unmarshal payload for %s: %w", op, err)
	}
	return derefPayload(target), nil
}

// derefPayload returns the pointed-to payload value, matching the
// by-value shape the original sender constructed.
func derefPayload(p any) any {
	switch v := p.(type) {
	case *types.BatchProposePayload:
		return *v
	case *types.BatchSignaturePayload:
		return *v
	case *types.CertificateBroadcastPayload:
		return *v
	case *types.CertificateRequestPayload:
		return *v
	case *types.CertificateResponsePayload:
		return *v
	case *types.TransmissionRequestPayload:
		return *v
	case *types.TransmissionResponsePayload:
		return *v
	case *types.TransmissionBroadcastPayload:
		return *v
	case *types.PingPayload:
		return *v
	case *types.PongPayload:
		return *v
	default:
		return p
	}
}
