// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokenname

import (
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/ledger"
)

// FromOutRef - unique asset name for an output that is consumed by
// the minting transaction
//
// name = BLAKE2b-256(txId ‖ index), the index as minimal big-endian
// bytes, so index 0 contributes nothing
func FromOutRef(ref ledger.OutRef) digest.Hash32 {
	buffer := make([]byte, 0, digest.Hash32Length+4)
	buffer = append(buffer, ref.TxId[:]...)
	buffer = appendIndex(buffer, ref.Index)
	return digest.Sum256(buffer)
}

// minimal big-endian representation, empty for zero
func appendIndex(buffer []byte, index uint32) []byte {
	started := false
	for shift := 24; shift >= 0; shift -= 8 {
		b := byte(index >> uint(shift))
		if 0 == b && !started {
			continue
		}
		started = true
		buffer = append(buffer, b)
	}
	return buffer
}
