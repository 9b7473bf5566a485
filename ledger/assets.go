// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/hex"
	"encoding/json"
	"math/bits"
	"sort"
	"strconv"

	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
)

// Lovelace - unit name of the primary currency
const Lovelace = "lovelace"

// longest permitted asset name in bytes
const maxAssetNameLength = 32

// Assets - quantity of each unit held
//
// a unit is the hex policy id followed by the hex asset name,
// or "lovelace"
type Assets map[string]uint64

// NewUnit - join a policy id and an asset name
func NewUnit(policy digest.Hash28, name []byte) string {
	return policy.String() + hex.EncodeToString(name)
}

// SplitUnit - separate a unit into policy id and asset name
func SplitUnit(unit string) (digest.Hash28, []byte, error) {
	policyLength := 2 * digest.Hash28Length
	if len(unit) < policyLength || Lovelace == unit {
		return digest.Hash28{}, nil, fault.ErrInvalidUnit
	}
	policy, err := digest.Hash28FromHex(unit[:policyLength])
	if nil != err {
		return digest.Hash28{}, nil, fault.ErrInvalidPolicyId
	}
	name, err := hex.DecodeString(unit[policyLength:])
	if nil != err || len(name) > maxAssetNameLength {
		return digest.Hash28{}, nil, fault.ErrInvalidAssetName
	}
	return policy, name, nil
}

// Lovelace - the primary currency amount
func (a Assets) Lovelace() uint64 {
	return a[Lovelace]
}

// Clone - independent copy
func (a Assets) Clone() Assets {
	c := make(Assets, len(a))
	for unit, q := range a {
		c[unit] = q
	}
	return c
}

// Add - sum of two asset sets
func (a Assets) Add(b Assets) (Assets, error) {
	c := a.Clone()
	for unit, q := range b {
		sum, carry := bits.Add64(c[unit], q, 0)
		if 0 != carry {
			return nil, fault.ErrOverflow
		}
		c[unit] = sum
	}
	return c, nil
}

// Sub - difference of two asset sets, zero entries are removed
func (a Assets) Sub(b Assets) (Assets, error) {
	c := a.Clone()
	for unit, q := range b {
		if c[unit] < q {
			return nil, fault.ErrInsufficientBalance
		}
		c[unit] -= q
	}
	for unit, q := range c {
		if 0 == q {
			delete(c, unit)
		}
	}
	return c, nil
}

// Covers - true if every quantity in b is available in a
func (a Assets) Covers(b Assets) bool {
	for unit, q := range b {
		if a[unit] < q {
			return false
		}
	}
	return true
}

// Units - sorted unit names, lovelace excluded
func (a Assets) Units() []string {
	units := make([]string, 0, len(a))
	for unit := range a {
		if Lovelace != unit {
			units = append(units, unit)
		}
	}
	sort.Strings(units)
	return units
}

// MarshalJSON - quantities as decimal strings
func (a Assets) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(a))
	for unit, q := range a {
		m[unit] = strconv.FormatUint(q, 10)
	}
	return json.Marshal(m)
}

// UnmarshalJSON - quantities as decimal strings or numbers
func (a *Assets) UnmarshalJSON(b []byte) error {
	var m map[string]json.Number
	err := json.Unmarshal(b, &m)
	if nil != err {
		return err
	}
	result := make(Assets, len(m))
	for unit, n := range m {
		q, err := strconv.ParseUint(n.String(), 10, 64)
		if nil != err {
			return fault.ErrInvalidCount
		}
		result[unit] = q
	}
	*a = result
	return nil
}
