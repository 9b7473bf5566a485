// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/bitmark-inc/raiders/fault"
)

// signing key envelope types accepted
const (
	paymentSigningKey = "PaymentSigningKeyShelley_ed25519"
	genesisSigningKey = "GenesisUTxOSigningKey_ed25519"
)

// TextEnvelope - key file as written by cardano-cli
type TextEnvelope struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	CBORHex     string `json:"cborHex"`
}

// LoadSigningKey - read a .skey file
func LoadSigningKey(fileName string) (*KeySigner, error) {
	buffer, err := os.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	return ParseSigningKey(buffer)
}

// ParseSigningKey - signer from the contents of a .skey file
func ParseSigningKey(buffer []byte) (*KeySigner, error) {
	var envelope TextEnvelope
	err := json.Unmarshal(buffer, &envelope)
	if nil != err {
		return nil, fault.ErrInvalidSigningKey
	}

	switch envelope.Type {
	case paymentSigningKey, genesisSigningKey:
	default:
		return nil, fault.ErrInvalidSigningKey
	}

	encoded, err := hex.DecodeString(envelope.CBORHex)
	if nil != err {
		return nil, fault.ErrInvalidHexString
	}
	var seed []byte
	err = cbor.Unmarshal(encoded, &seed)
	if nil != err {
		return nil, fault.ErrInvalidSigningKey
	}
	return NewKeySigner(seed)
}

// Envelope - the key as a cardano-cli text envelope
func (s *KeySigner) Envelope() (*TextEnvelope, error) {
	encoded, err := cbor.Marshal(s.privateKey.Seed())
	if nil != err {
		return nil, err
	}
	return &TextEnvelope{
		Type:        paymentSigningKey,
		Description: "Payment Signing Key",
		CBORHex:     hex.EncodeToString(encoded),
	}, nil
}
