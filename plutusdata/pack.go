// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package plutusdata

import (
	"encoding/hex"
	"math/big"

	"github.com/bitmark-inc/raiders/fault"
)

// CBOR major types
const (
	majorUnsigned = 0
	majorNegative = 1
	majorBytes    = 2
	majorArray    = 4
	majorMap      = 5
	majorTag      = 6
	majorSimple   = 7
)

// CBOR tags used by the data encoding
const (
	tagPositiveBignum = 2
	tagNegativeBignum = 3
	tagConstrGeneral  = 102
	tagConstrSmall    = 121  // indices 0..6
	tagConstrLarge    = 1280 // indices 7..127
)

const (
	indefinite     = 31
	breakCode      = 0xff
	maxChunkLength = 64
)

// Packed - the binary encoding of a data value
type Packed []byte

// String - hex representation as used by ledger queries
func (p Packed) String() string {
	return hex.EncodeToString(p)
}

// MarshalText - hex text
func (p Packed) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(p)), nil
}

// UnmarshalText - from hex text
func (p *Packed) UnmarshalText(s []byte) error {
	b, err := hex.DecodeString(string(s))
	if nil != err {
		return fault.ErrInvalidHexString
	}
	*p = b
	return nil
}

// Pack - encode a data value
func Pack(d Data) (Packed, error) {
	return appendData(nil, d)
}

// PackHex - encode a data value as hex text
func PackHex(d Data) (string, error) {
	p, err := Pack(d)
	if nil != err {
		return "", err
	}
	return p.String(), nil
}

func appendData(buffer []byte, d Data) ([]byte, error) {
	switch v := d.(type) {

	case Constr:
		switch {
		case v.Index < 7:
			buffer = appendHead(buffer, majorTag, tagConstrSmall+v.Index)
		case v.Index < 128:
			buffer = appendHead(buffer, majorTag, tagConstrLarge+v.Index-7)
		default:
			buffer = appendHead(buffer, majorTag, tagConstrGeneral)
			buffer = appendHead(buffer, majorArray, 2)
			buffer = appendHead(buffer, majorUnsigned, v.Index)
		}
		return appendList(buffer, v.Fields)

	case Integer:
		return appendInteger(buffer, bigOf(v)), nil

	case Bytes:
		return appendBytes(buffer, v), nil

	case List:
		return appendList(buffer, v)

	case Map:
		var err error
		buffer = appendHead(buffer, majorMap, uint64(len(v)))
		for _, p := range v {
			buffer, err = appendData(buffer, p.Key)
			if nil != err {
				return nil, err
			}
			buffer, err = appendData(buffer, p.Value)
			if nil != err {
				return nil, err
			}
		}
		return buffer, nil

	default:
		return nil, fault.ErrUnexpectedDataType
	}
}

// non-empty lists use the indefinite form, empty lists are definite
func appendList(buffer []byte, items []Data) ([]byte, error) {
	if 0 == len(items) {
		return appendHead(buffer, majorArray, 0), nil
	}
	buffer = append(buffer, majorArray<<5|indefinite)
	for _, item := range items {
		var err error
		buffer, err = appendData(buffer, item)
		if nil != err {
			return nil, err
		}
	}
	return append(buffer, breakCode), nil
}

func appendInteger(buffer []byte, i *big.Int) []byte {
	if i.IsUint64() {
		return appendHead(buffer, majorUnsigned, i.Uint64())
	}

	// n = -1 - i
	n := new(big.Int).Neg(i)
	n.Sub(n, big.NewInt(1))
	if 0 <= n.Sign() && n.IsUint64() {
		return appendHead(buffer, majorNegative, n.Uint64())
	}

	if i.Sign() > 0 {
		buffer = appendHead(buffer, majorTag, tagPositiveBignum)
		return appendBytes(buffer, i.Bytes())
	}
	buffer = appendHead(buffer, majorTag, tagNegativeBignum)
	return appendBytes(buffer, n.Bytes())
}

// byte strings longer than 64 bytes are split into 64 byte chunks
func appendBytes(buffer []byte, b []byte) []byte {
	if len(b) <= maxChunkLength {
		buffer = appendHead(buffer, majorBytes, uint64(len(b)))
		return append(buffer, b...)
	}
	buffer = append(buffer, majorBytes<<5|indefinite)
	for len(b) > 0 {
		n := len(b)
		if n > maxChunkLength {
			n = maxChunkLength
		}
		buffer = appendHead(buffer, majorBytes, uint64(n))
		buffer = append(buffer, b[:n]...)
		b = b[n:]
	}
	return append(buffer, breakCode)
}

func appendHead(buffer []byte, major byte, n uint64) []byte {
	m := major << 5
	switch {
	case n < 24:
		return append(buffer, m|byte(n))
	case n <= 0xff:
		return append(buffer, m|24, byte(n))
	case n <= 0xffff:
		return append(buffer, m|25, byte(n>>8), byte(n))
	case n <= 0xffffffff:
		return append(buffer, m|26, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	default:
		return append(buffer, m|27,
			byte(n>>56), byte(n>>48), byte(n>>40), byte(n>>32),
			byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
}
