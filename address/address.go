// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/bitmark-inc/raiders/chain"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
)

// CredentialType - what a credential hash refers to
type CredentialType byte

// credential types
const (
	KeyHash    CredentialType = 0
	ScriptHash CredentialType = 1
)

// Credential - a payment or staking credential
type Credential struct {
	Type CredentialType
	Hash digest.Hash28
}

// Address - a shelley era address
//
// Stake is nil for an enterprise address
type Address struct {
	NetworkId byte
	Payment   Credential
	Stake     *Credential
}

// header type nibbles
const (
	typeBaseKeyKey       = 0x00
	typeBaseScriptKey    = 0x01
	typeBaseKeyScript    = 0x02
	typeBaseScriptScript = 0x03
	typeEnterpriseKey    = 0x06
	typeEnterpriseScript = 0x07
)

const (
	enterpriseLength = 1 + digest.Hash28Length
	baseLength       = 1 + 2*digest.Hash28Length
)

// NewEnterprise - address with a payment credential only
func NewEnterprise(network string, payment Credential) Address {
	return Address{
		NetworkId: chain.NetworkId(network),
		Payment:   payment,
	}
}

// ScriptAddress - enterprise address locked by a script hash
func ScriptAddress(network string, hash digest.Hash28) Address {
	return NewEnterprise(network, Credential{Type: ScriptHash, Hash: hash})
}

// KeyAddress - enterprise address locked by a key hash
func KeyAddress(network string, hash digest.Hash28) Address {
	return NewEnterprise(network, Credential{Type: KeyHash, Hash: hash})
}

// Parse - decode a bech32 address
func Parse(s string) (*Address, error) {
	hrp, data, err := bech32.DecodeNoLimit(s)
	if nil != err {
		return nil, fault.ErrInvalidAddress
	}
	buffer, err := bech32.ConvertBits(data, 5, 8, false)
	if nil != err {
		return nil, fault.ErrInvalidAddress
	}

	a, err := FromBytes(buffer)
	if nil != err {
		return nil, err
	}
	if chain.PrefixForNetworkId(a.NetworkId) != hrp {
		return nil, fault.ErrInvalidAddressNetwork
	}
	return a, nil
}

// FromBytes - decode the raw header and credential bytes
func FromBytes(buffer []byte) (*Address, error) {
	if 0 == len(buffer) {
		return nil, fault.ErrInvalidAddress
	}

	header := buffer[0]
	kind := header >> 4
	a := &Address{
		NetworkId: header & 0x0f,
	}

	switch kind {
	case typeBaseKeyKey, typeBaseScriptKey, typeBaseKeyScript, typeBaseScriptScript:
		if baseLength != len(buffer) {
			return nil, fault.ErrInvalidAddress
		}
		a.Payment.Type = CredentialType(kind & 0x01)
		copy(a.Payment.Hash[:], buffer[1:enterpriseLength])
		a.Stake = &Credential{
			Type: CredentialType(kind >> 1 & 0x01),
		}
		copy(a.Stake.Hash[:], buffer[enterpriseLength:])

	case typeEnterpriseKey, typeEnterpriseScript:
		if enterpriseLength != len(buffer) {
			return nil, fault.ErrInvalidAddress
		}
		a.Payment.Type = CredentialType(kind & 0x01)
		copy(a.Payment.Hash[:], buffer[1:])

	default:
		// pointer, reward and bootstrap addresses are not used here
		return nil, fault.ErrInvalidAddressType
	}
	return a, nil
}

// Bytes - raw binary form
func (a Address) Bytes() []byte {
	var kind byte
	if nil == a.Stake {
		kind = typeEnterpriseKey | byte(a.Payment.Type)
	} else {
		kind = byte(a.Payment.Type) | byte(a.Stake.Type)<<1
	}

	buffer := make([]byte, 0, baseLength)
	buffer = append(buffer, kind<<4|a.NetworkId&0x0f)
	buffer = append(buffer, a.Payment.Hash[:]...)
	if nil != a.Stake {
		buffer = append(buffer, a.Stake.Hash[:]...)
	}
	return buffer
}

// String - bech32 form
func (a Address) String() string {
	data, err := bech32.ConvertBits(a.Bytes(), 8, 5, true)
	if nil != err {
		return ""
	}
	s, err := bech32.Encode(chain.PrefixForNetworkId(a.NetworkId), data)
	if nil != err {
		return ""
	}
	return s
}

// GoString - debug form
func (a Address) GoString() string {
	return "<address:" + hex.EncodeToString(a.Bytes()) + ">"
}

// MarshalText - bech32 text
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText - from bech32 text
func (a *Address) UnmarshalText(s []byte) error {
	b, err := Parse(string(s))
	if nil != err {
		return err
	}
	*a = *b
	return nil
}

// Equal - compare two addresses
func (a Address) Equal(b Address) bool {
	if a.NetworkId != b.NetworkId || a.Payment != b.Payment {
		return false
	}
	if nil == a.Stake || nil == b.Stake {
		return a.Stake == b.Stake
	}
	return *a.Stake == *b.Stake
}

// PaymentKeyHash - the key hash of a bech32 address's payment credential
//
// fails if the address is locked by a script
func PaymentKeyHash(s string) (digest.Hash28, error) {
	a, err := Parse(s)
	if nil != err {
		return digest.Hash28{}, err
	}
	if KeyHash != a.Payment.Type {
		return digest.Hash28{}, fault.ErrAddressIsNotKeyHash
	}
	return a.Payment.Hash, nil
}

// PaymentHash - the hash of a bech32 address's payment credential
// whatever its type
func PaymentHash(s string) (digest.Hash28, error) {
	a, err := Parse(s)
	if nil != err {
		return digest.Hash28{}, err
	}
	return a.Payment.Hash, nil
}
