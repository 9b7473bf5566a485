// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package datum

import (
	"github.com/bitmark-inc/raiders/plutusdata"
)

// parameter_mint policy
func ParameterMint() plutusdata.Data { return plutusdata.NewConstr(0) }
func ParameterBurn() plutusdata.Data { return plutusdata.NewConstr(1) }

// raid_mint policy
func RaidCreate(quantity int64, price uint64) plutusdata.Data {
	return plutusdata.NewConstr(0, plutusdata.Int(quantity), plutusdata.Uint(price))
}
func RaidRemove() plutusdata.Data { return plutusdata.NewConstr(1) }

// raid_lock spending validator
func RaidClaim() plutusdata.Data { return plutusdata.NewConstr(0) }
func RaidClose() plutusdata.Data { return plutusdata.NewConstr(1) }
