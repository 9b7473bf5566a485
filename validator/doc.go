// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package validator - derive the four cooperating programs
//
// The programs depend on each other through their hashes:
//
//   parameterLock  native signature script of the admin key
//   parameterMint  applied to (admin, parameterLock hash)
//   raidMint       applied to (parameterMint policy id)
//   raidLock       applied to (admin, raidMint policy id)
//
// so every client holding the same artifacts and admin key agrees on
// all addresses without sharing any other state
package validator
