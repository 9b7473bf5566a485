// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"fmt"

	"github.com/bitmark-inc/raiders/chain"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
)

// Role - which deployed program an entry holds
type Role string

// the two deployed reference scripts
const (
	RaidMint Role = "raid-mint"
	RaidLock Role = "raid-lock"
)

// Key - one registry entry
type Key struct {
	Network string
	Testing bool
	Role    Role
}

// String - network/role[-test]
func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Network, k.name())
}

// file name stem
func (k Key) name() string {
	if k.Testing {
		return string(k.Role) + "-test"
	}
	return string(k.Role)
}

// Store - persistence for deployed outputs
//
// Get returns fault.ErrDeploymentNotFound for a missing entry
type Store interface {
	Get(key Key) (*ledger.UTxO, error)
	Put(key Key, utxo ledger.UTxO) error
	Close() error
}

// Deployment - the reference script outputs of one deployment
type Deployment struct {
	RaidMint ledger.UTxO `json:"raidMint"`
	RaidLock ledger.UTxO `json:"raidLock"`
}

// Deployed - load both entries for a network
//
// each entry must carry a reference script
func Deployed(store Store, network string, testing bool) (*Deployment, error) {
	if !chain.Valid(network) {
		return nil, fault.ErrInvalidChain
	}

	d := &Deployment{}
	for _, item := range []struct {
		role Role
		utxo *ledger.UTxO
	}{
		{RaidLock, &d.RaidLock},
		{RaidMint, &d.RaidMint},
	} {
		u, err := store.Get(Key{Network: network, Testing: testing, Role: item.role})
		if nil != err {
			return nil, err
		}
		if nil == u.ScriptRef {
			return nil, fault.ErrScriptReferenceNotFound
		}
		*item.utxo = *u
	}
	return d, nil
}

// Save - record both entries of a deployment
func Save(store Store, network string, testing bool, d *Deployment) error {
	if !chain.Valid(network) {
		return fault.ErrInvalidChain
	}
	err := store.Put(Key{Network: network, Testing: testing, Role: RaidMint}, d.RaidMint)
	if nil != err {
		return err
	}
	return store.Put(Key{Network: network, Testing: testing, Role: RaidLock}, d.RaidLock)
}
