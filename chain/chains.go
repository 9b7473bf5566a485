// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

// names of all chains
const (
	Mainnet = "mainnet"
	Preprod = "preprod"
	Preview = "preview"
	Local   = "local"
)

// address prefixes
const (
	mainnetPrefix = "addr"
	testnetPrefix = "addr_test"
)

// Valid - validate a chain name
func Valid(name string) bool {
	switch name {
	case Mainnet, Preprod, Preview, Local:
		return true
	default:
		return false
	}
}

// NetworkId - the id encoded in the header of every address
func NetworkId(name string) byte {
	if Mainnet == name {
		return 1
	}
	return 0
}

// AddressPrefix - the human readable part of a bech32 address
func AddressPrefix(name string) string {
	if Mainnet == name {
		return mainnetPrefix
	}
	return testnetPrefix
}

// PrefixForNetworkId - human readable part for a raw network id
func PrefixForNetworkId(id byte) string {
	if 1 == id {
		return mainnetPrefix
	}
	return testnetPrefix
}
