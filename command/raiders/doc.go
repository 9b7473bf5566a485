// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// raiders - deploy the raid programs and build raid transactions
//
// transactions that need a wallet signature are printed as JSON
// with their CBOR hex; admin transactions can instead be signed with
// the configured signing key and submitted directly (--submit)
package main
