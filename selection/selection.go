// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package selection

import (
	"sort"

	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
)

// Select - choose outputs whose lovelace sum reaches required
//
// largest first, stopping as soon as the requirement is met; the
// result is returned in ledger order so its first element is stable
// for asset naming. The candidate slice is not modified
func Select(candidates []ledger.UTxO, required uint64) ([]ledger.UTxO, error) {
	if 0 == required {
		return []ledger.UTxO{}, nil
	}

	ordered := make([]ledger.UTxO, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Lovelace() > ordered[j].Lovelace()
	})

	total := uint64(0)
	selected := make([]ledger.UTxO, 0, 4)
	for _, u := range ordered {
		if total >= required {
			break
		}
		selected = append(selected, u)
		total += u.Lovelace()
	}

	if total < required {
		return nil, fault.ErrInsufficientBalance
	}

	ledger.SortByOutRef(selected)
	return selected, nil
}

// Total - lovelace held by a set of outputs
func Total(utxos []ledger.UTxO) uint64 {
	total := uint64(0)
	for _, u := range utxos {
		total += u.Lovelace()
	}
	return total
}
