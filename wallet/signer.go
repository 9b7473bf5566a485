// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"io"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/transaction"
)

// Signer - holder of a key that can authorise transactions
type Signer interface {
	// hash of the verification key, the payment credential
	KeyHash() digest.Hash28

	// append a witness for this key
	Sign(tx *transaction.Transaction) error
}

// KeySigner - a signer holding an ed25519 key in memory
type KeySigner struct {
	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey
	keyHash    digest.Hash28
}

// NewKeySigner - signer from a 32 byte seed
func NewKeySigner(seed []byte) (*KeySigner, error) {
	if ed25519.SeedSize != len(seed) {
		return nil, fault.ErrInvalidKeyLength
	}
	privateKey := ed25519.NewKeyFromSeed(seed)
	publicKey := privateKey.Public().(ed25519.PublicKey)
	return &KeySigner{
		publicKey:  publicKey,
		privateKey: privateKey,
		keyHash:    digest.Sum224(publicKey),
	}, nil
}

// Generate - signer with a fresh random key
func Generate(rand io.Reader) (*KeySigner, error) {
	seed := make([]byte, ed25519.SeedSize)
	_, err := io.ReadFull(rand, seed)
	if nil != err {
		return nil, err
	}
	return NewKeySigner(seed)
}

// KeyHash - payment credential of the key
func (s *KeySigner) KeyHash() digest.Hash28 {
	return s.keyHash
}

// PublicKey - the verification key
func (s *KeySigner) PublicKey() []byte {
	return s.publicKey
}

// Address - enterprise address of the key on a network
func (s *KeySigner) Address(network string) string {
	return address.KeyAddress(network, s.keyHash).String()
}

// Sign - sign the transaction id
func (s *KeySigner) Sign(tx *transaction.Transaction) error {
	id := tx.Id()
	signature := ed25519.Sign(s.privateKey, id[:])
	tx.AddWitness(s.publicKey, signature)
	return nil
}

// Verify - check every vkey witness against the transaction id and
// return the hashes of the keys that signed
func Verify(tx *transaction.Transaction) (map[digest.Hash28]struct{}, error) {
	id := tx.Id()
	signed := make(map[digest.Hash28]struct{}, len(tx.Witnesses.VKeys))
	for _, w := range tx.Witnesses.VKeys {
		if ed25519.PublicKeySize != len(w.VKey) {
			return nil, fault.ErrInvalidKeyLength
		}
		if !ed25519.Verify(ed25519.PublicKey(w.VKey), id[:], w.Signature) {
			return nil, fault.ErrMissingSignature
		}
		signed[digest.Sum224(w.VKey)] = struct{}{}
	}
	return signed, nil
}
