// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// transaction assembly
//
// a Builder collects the pieces of a transaction: consumed inputs
// with their redeemers, read-only reference inputs, minted and
// burned tokens, payments, required signers and a message.
// Complete then balances it against a wallet:
//
//   1. every output is topped up to its minimum lovelace
//   2. wallet outputs are added until inputs + mint cover
//      outputs + burn + fee, and any change can stand as an output
//   3. script transactions get a pure-lovelace collateral input
//   4. the fee is recomputed from the serialised size until stable
//   5. redeemer indices, the script data hash and the auxiliary
//      data hash are filled in
//
// the result is an unsigned Transaction whose Id is the hash of the
// serialised body; signers append vkey witnesses to it
package transaction
