// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/plutusdata"
	"github.com/bitmark-inc/raiders/script"
)

// OutRef - reference to a transaction output
type OutRef struct {
	TxId  digest.Hash32 `json:"txHash"`
	Index uint32        `json:"outputIndex"`
}

// String - txid#index
func (o OutRef) String() string {
	return fmt.Sprintf("%s#%d", o.TxId, o.Index)
}

// Less - ledger ordering: transaction id bytes then index
func (o OutRef) Less(p OutRef) bool {
	c := bytes.Compare(o.TxId[:], p.TxId[:])
	if 0 != c {
		return c < 0
	}
	return o.Index < p.Index
}

// UTxO - an unspent output
type UTxO struct {
	OutRef
	Address   string            `json:"address"`
	Assets    Assets            `json:"assets"`
	DatumHash string            `json:"datumHash,omitempty"`
	Datum     plutusdata.Packed `json:"datum,omitempty"`
	ScriptRef *script.Script    `json:"scriptRef,omitempty"`
}

// Lovelace - the primary currency amount
func (u UTxO) Lovelace() uint64 {
	return u.Assets.Lovelace()
}

// SortByOutRef - order a set of outputs by reference, in place
func SortByOutRef(utxos []UTxO) {
	sort.SliceStable(utxos, func(i, j int) bool {
		return utxos[i].OutRef.Less(utxos[j].OutRef)
	})
}

// AssetSupply - circulating quantity of one unit
type AssetSupply struct {
	Unit     string `json:"asset"`
	Quantity uint64 `json:"quantity,string"`
}
