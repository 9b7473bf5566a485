// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package selection_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/selection"
)

func utxo(id byte, index uint32, lovelace uint64) ledger.UTxO {
	u := ledger.UTxO{
		Assets: ledger.Assets{ledger.Lovelace: lovelace},
	}
	u.TxId = digest.Hash32{id}
	u.Index = index
	return u
}

func TestSelectLargestFirst(t *testing.T) {
	candidates := []ledger.UTxO{
		utxo(0x30, 0, 1_000_000),
		utxo(0x10, 0, 9_000_000),
		utxo(0x20, 1, 4_000_000),
		utxo(0x20, 0, 6_000_000),
	}

	selected, err := selection.Select(candidates, 12_000_000)
	assert.Nil(t, err, "select")
	assert.Equal(t, 2, len(selected), "count")

	// ledger order: 0x10... before 0x20...
	assert.Equal(t, digest.Hash32{0x10}, selected[0].TxId, "first")
	assert.Equal(t, digest.Hash32{0x20}, selected[1].TxId, "second")
	assert.Equal(t, uint32(0), selected[1].Index, "second index")

	// input untouched
	assert.Equal(t, digest.Hash32{0x30}, candidates[0].TxId, "candidates reordered")
}

func TestSelectIndexOrdering(t *testing.T) {
	candidates := []ledger.UTxO{
		utxo(0x20, 2, 5_000_000),
		utxo(0x20, 1, 5_000_000),
	}
	selected, err := selection.Select(candidates, 10_000_000)
	assert.Nil(t, err, "select")
	assert.Equal(t, uint32(1), selected[0].Index, "first index")
	assert.Equal(t, uint32(2), selected[1].Index, "second index")
}

func TestSelectZero(t *testing.T) {
	selected, err := selection.Select([]ledger.UTxO{utxo(1, 0, 5)}, 0)
	assert.Nil(t, err, "select")
	assert.Equal(t, 0, len(selected), "count")
}

func TestSelectInsufficient(t *testing.T) {
	candidates := []ledger.UTxO{
		utxo(0x01, 0, 1_000_000),
		utxo(0x02, 0, 2_000_000),
	}
	_, err := selection.Select(candidates, 3_000_001)
	assert.Equal(t, fault.ErrInsufficientBalance, err, "error")
	assert.True(t, fault.IsErrBalance(err), "class")

	_, err = selection.Select(nil, 1)
	assert.Equal(t, fault.ErrInsufficientBalance, err, "empty wallet")
}

// sufficiency and subset over random wallets
func TestSelectSufficiency(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for n := 0; n < 500; n += 1 {
		count := 1 + r.Intn(12)
		candidates := make([]ledger.UTxO, count)
		for i := range candidates {
			candidates[i] = utxo(byte(r.Intn(256)), uint32(i), uint64(r.Intn(50_000_000)))
		}
		total := selection.Total(candidates)
		if 0 == total {
			continue
		}
		required := 1 + uint64(r.Int63n(int64(total)))

		selected, err := selection.Select(candidates, required)
		if nil != err {
			t.Fatalf("%d: required: %d of: %d  error: %s", n, required, total, err)
		}
		if selection.Total(selected) < required {
			t.Fatalf("%d: selected: %d  required: %d", n, selection.Total(selected), required)
		}

		available := make(map[ledger.OutRef]int)
		for _, c := range candidates {
			available[c.OutRef] += 1
		}
		for _, s := range selected {
			if 0 == available[s.OutRef] {
				t.Fatalf("%d: selected %s is not a candidate", n, s.OutRef)
			}
			available[s.OutRef] -= 1
		}
		for i := 1; i < len(selected); i += 1 {
			if selected[i].OutRef.Less(selected[i-1].OutRef) {
				t.Fatalf("%d: selection is not in ledger order", n)
			}
		}
	}
}
