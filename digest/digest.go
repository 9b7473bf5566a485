// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package digest

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/bitmark-inc/raiders/fault"
)

// number of bytes in each digest
const (
	Hash28Length = 28
	Hash32Length = 32
)

// Hash28 - a blake2b-224 digest
//
// used for key hashes, script hashes and policy ids
// to convert to bytes just use h[:]
type Hash28 [Hash28Length]byte

// Hash32 - a blake2b-256 digest
//
// used for transaction ids, token names and data hashes
type Hash32 [Hash32Length]byte

// Sum224 - create a 224 bit digest from a byte slice
func Sum224(record []byte) Hash28 {
	h, err := blake2b.New(Hash28Length, nil)
	if nil != err {
		// only fails for an invalid size or key
		panic(err)
	}
	h.Write(record)
	var d Hash28
	copy(d[:], h.Sum(nil))
	return d
}

// Sum256 - create a 256 bit digest from a byte slice
func Sum256(record []byte) Hash32 {
	return blake2b.Sum256(record)
}

// Bytes - copy of the digest as a slice
func (h Hash28) Bytes() []byte {
	b := make([]byte, Hash28Length)
	copy(b, h[:])
	return b
}

// IsZero - true if no bytes are set
func (h Hash28) IsZero() bool {
	return h == Hash28{}
}

// convert a binary digest to hex string for use by the fmt package (for %s)
func (h Hash28) String() string {
	return hex.EncodeToString(h[:])
}

// convert a binary digest to hex string for use by the fmt package (for %#v)
func (h Hash28) GoString() string {
	return "<BLAKE2b-224:" + hex.EncodeToString(h[:]) + ">"
}

// convert a hex representation to a digest for use by the format package scan routines
func (h *Hash28) Scan(state fmt.ScanState, verb rune) error {
	return scanHex(state, h[:])
}

// MarshalText - convert digest to hex text
func (h Hash28) MarshalText() ([]byte, error) {
	return marshalHex(h[:]), nil
}

// UnmarshalText - convert hex text into a digest
func (h *Hash28) UnmarshalText(s []byte) error {
	return unmarshalHex(h[:], s)
}

// Bytes - copy of the digest as a slice
func (h Hash32) Bytes() []byte {
	b := make([]byte, Hash32Length)
	copy(b, h[:])
	return b
}

// IsZero - true if no bytes are set
func (h Hash32) IsZero() bool {
	return h == Hash32{}
}

// convert a binary digest to hex string for use by the fmt package (for %s)
func (h Hash32) String() string {
	return hex.EncodeToString(h[:])
}

// convert a binary digest to hex string for use by the fmt package (for %#v)
func (h Hash32) GoString() string {
	return "<BLAKE2b-256:" + hex.EncodeToString(h[:]) + ">"
}

// convert a hex representation to a digest for use by the format package scan routines
func (h *Hash32) Scan(state fmt.ScanState, verb rune) error {
	return scanHex(state, h[:])
}

// MarshalText - convert digest to hex text
func (h Hash32) MarshalText() ([]byte, error) {
	return marshalHex(h[:]), nil
}

// UnmarshalText - convert hex text into a digest
func (h *Hash32) UnmarshalText(s []byte) error {
	return unmarshalHex(h[:], s)
}

// Hash28FromBytes - convert and validate a binary byte slice to a digest
func Hash28FromBytes(h *Hash28, buffer []byte) error {
	if Hash28Length != len(buffer) {
		return fault.ErrHashLength
	}
	copy(h[:], buffer)
	return nil
}

// Hash32FromBytes - convert and validate a binary byte slice to a digest
func Hash32FromBytes(h *Hash32, buffer []byte) error {
	if Hash32Length != len(buffer) {
		return fault.ErrHashLength
	}
	copy(h[:], buffer)
	return nil
}

// Hash28FromHex - convert and validate a hex string to a digest
func Hash28FromHex(s string) (Hash28, error) {
	var h Hash28
	err := h.UnmarshalText([]byte(s))
	return h, err
}

// Hash32FromHex - convert and validate a hex string to a digest
func Hash32FromHex(s string) (Hash32, error) {
	var h Hash32
	err := h.UnmarshalText([]byte(s))
	return h, err
}

func scanHex(state fmt.ScanState, buffer []byte) error {
	token, err := state.Token(true, func(c rune) bool {
		if c >= '0' && c <= '9' {
			return true
		}
		if c >= 'A' && c <= 'F' {
			return true
		}
		if c >= 'a' && c <= 'f' {
			return true
		}
		return false
	})
	if nil != err {
		return err
	}
	return unmarshalHex(buffer, token)
}

func marshalHex(buffer []byte) []byte {
	size := hex.EncodedLen(len(buffer))
	result := make([]byte, size)
	hex.Encode(result, buffer)
	return result
}

func unmarshalHex(buffer []byte, s []byte) error {
	if len(buffer) != hex.DecodedLen(len(s)) || 0 != len(s)%2 {
		return fault.ErrHashLength
	}
	decoded := make([]byte, len(buffer))
	_, err := hex.Decode(decoded, s)
	if nil != err {
		return fault.ErrInvalidHexString
	}
	copy(buffer, decoded)
	return nil
}
