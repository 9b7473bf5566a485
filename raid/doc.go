// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package raid builds the transactions of the raid lifecycle
//
// a raid is a bounty escrow identified by a single token minted
// under the raid policy and locked at the raid lock address:
//
//   Create  ->  Claim (quantity - 1)  ->  ...  ->  quantity 0
//      \                                              |
//       +------------------ Remove <------------------+
//
// every operation returns an unsigned transaction; the caller signs
// it with the keys listed as required signers and submits it
package raid
