// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bounty

import (
	"math/bits"

	"github.com/bitmark-inc/raiders/fault"
)

// amounts in lovelace
const (
	// locked with every raid on top of the bounty itself
	FixedBuffer = 2_000_000

	// extra wallet balance needed to cover fees and change
	WalletBuffer = 5_000_000

	// the most a fee percentage may be
	MaxFeePercentage = 100
)

// ValidateQuantityPrice - reject values no raid can hold
func ValidateQuantityPrice(quantity int64, price uint64) error {
	if quantity < 0 {
		return fault.ErrInvalidQuantity
	}
	if 0 == price {
		return fault.ErrInvalidPrice
	}
	return nil
}

// RequiredBounty - lovelace locked for a raid: quantity × price + buffer
func RequiredBounty(quantity int64, price uint64) (uint64, error) {
	total, err := multiply(quantity, price)
	if nil != err {
		return 0, err
	}
	return add(total, FixedBuffer)
}

// BountyFee - project fee for a raid
//
// 100% or more takes the whole bounty, otherwise the percentage
// is applied with integer division rounding down
func BountyFee(feePercentage uint64, quantity int64, price uint64) (uint64, error) {
	total, err := multiply(quantity, price)
	if nil != err {
		return 0, err
	}
	if feePercentage >= MaxFeePercentage {
		return total, nil
	}

	hi, lo := bits.Mul64(total, feePercentage)
	fee, _ := bits.Div64(hi, lo, MaxFeePercentage)
	return fee, nil
}

// Qualified - lovelace a creator's wallet must hold to fund a raid
func Qualified(required uint64, fee uint64) (uint64, error) {
	total, err := add(required, fee)
	if nil != err {
		return 0, err
	}
	return add(total, WalletBuffer)
}

func multiply(quantity int64, price uint64) (uint64, error) {
	if quantity < 0 {
		return 0, fault.ErrInvalidQuantity
	}
	hi, lo := bits.Mul64(uint64(quantity), price)
	if 0 != hi {
		return 0, fault.ErrOverflow
	}
	return lo, nil
}

func add(a uint64, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if 0 != carry {
		return 0, fault.ErrOverflow
	}
	return sum, nil
}
