// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package datum - the records held in inline datums and the
// redeemers passed to the raid programs
//
// both records are constructor 0 with positional fields:
//
//   Parameter = Constr 0 [raiderLockerScriptHash, projectAddress,
//                         feePercentage, [authorizerKeyHash]]
//   Raid      = Constr 0 [quantity, price, creator]
//
// decoding rejects any other constructor, field count or value
// range with a RecordError
package datum
