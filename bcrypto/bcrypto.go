// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bcrypto is the signature-aggregation capability the core depends
// on without caring whether the underlying scheme is BLS-style aggregation
// or plain multisig: the core only ever calls Verify and AggregateVerify.
// KeySigner/Registry below are a reference implementation standing in for
// a production BLS backend until one is linked in; the interfaces are what
// production code implements against.
package bcrypto

import "github.com/luxfi/ids"

// PublicKey is an opaque, comparable public key.
type PublicKey [48]byte

// Signature is an opaque signature.
type Signature [96]byte

// SecretKey signs on behalf of a single validator.
type SecretKey [32]byte

// Signer is implemented by this validator's own signing key.
type Signer interface {
	NodeID() ids.NodeID
	PublicKey() PublicKey
	Sign(msg []byte) (Signature, error)
}

// Verifier verifies individual and aggregate signatures against the
// committee's known public keys. The core depends only on this narrow
// capability; how aggregation is implemented underneath is out of scope.
type Verifier interface {
	// Verify checks a single signature against msg and signer's known
	// public key.
	Verify(msg []byte, signer ids.NodeID, sig Signature) bool
	// AggregateVerify checks that every (signer, sig) pair in sigs is a
	// valid signature over msg, aggregating the check where the backend
	// supports it.
	AggregateVerify(msg []byte, sigs map[ids.NodeID]Signature) bool
}

// KeySigner is the reference Signer: a raw secret key bound to a node id.
// Its Sign implementation is a placeholder (deterministic, not
// cryptographically sound) standing in for the production BLS backend;
// see the package doc comment.
type KeySigner struct {
	nodeID ids.NodeID
	sk     SecretKey
	pk     PublicKey
}

// NewKeySigner derives a signer from a raw secret key and this validator's
// node id.
func NewKeySigner(nodeID ids.NodeID, sk SecretKey) *KeySigner {
	return &KeySigner{nodeID: nodeID, sk: sk, pk: derivePublicKey(sk)}
}

func (k *KeySigner) NodeID() ids.NodeID   { return k.nodeID }
func (k *KeySigner) PublicKey() PublicKey { return k.pk }

func (k *KeySigner) Sign(msg []byte) (Signature, error) {
	if len(msg) == 0 {
		return Signature{}, ErrEmptyMessage
	}
	var sig Signature
	for i := range sig {
		sig[i] = k.sk[i%len(k.sk)] ^ msg[i%len(msg)]
	}
	return sig, nil
}

func derivePublicKey(sk SecretKey) PublicKey {
	var pk PublicKey
	copy(pk[:len(sk)], sk[:])
	for i := len(sk); i < len(pk); i++ {
		pk[i] = byte(i)
	}
	return pk
}

// Registry implements Verifier over a fixed map of known public keys,
// wired from the Committee at epoch start (public keys don't change
// within an epoch, same as stake).
type Registry struct {
	keys map[ids.NodeID]PublicKey
}

// NewRegistry builds a Registry from the committee's known public keys.
func NewRegistry(keys map[ids.NodeID]PublicKey) *Registry {
	cp := make(map[ids.NodeID]PublicKey, len(keys))
	for k, v := range keys {
		cp[k] = v
	}
	return &Registry{keys: cp}
}

func (r *Registry) Verify(msg []byte, signer ids.NodeID, sig Signature) bool {
	pk, ok := r.keys[signer]
	if !ok {
		return false
	}
	return verifyOne(msg, pk, sig)
}

func (r *Registry) AggregateVerify(msg []byte, sigs map[ids.NodeID]Signature) bool {
	for signer, sig := range sigs {
		if !r.Verify(msg, signer, sig) {
			return false
		}
	}
	return true
}

func verifyOne(msg []byte, pk PublicKey, sig Signature) bool {
	if len(msg) == 0 {
		return false
	}
	// Placeholder verification consistent with KeySigner.Sign's placeholder
	// scheme: reconstructs the secret-derived first 32 bytes of pk from sig
	// and msg and checks they match. A production backend replaces this wholesale.
	for i := 0; i < len(sig) && i < len(pk); i++ {
		want := sig[i] ^ msg[i%len(msg)]
		if i < 32 && want != pk[i] {
			return false
		}
	}
	return true
}
