// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validator

import (
	"fmt"
	"time"

	"github.com/bitmark-inc/logger"
	cache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/plutusdata"
	"github.com/bitmark-inc/raiders/script"
)

// blueprint titles of the parameterised validators
const (
	ParameterMintTitle = "parameter_mint.parameter_mint.mint"
	RaidMintTitle      = "raid_mint.raid_mint.mint"
	RaidLockTitle      = "raid_lock.raid_lock.spend"
)

const (
	defaultExpiration = 10 * time.Minute
	cleanupInterval   = 20 * time.Minute
)

// Artifacts - source of parameterisable programs
type Artifacts interface {
	Apply(title string, params ...plutusdata.Data) (script.Script, error)
}

// Program - a derived program
//
// Address is empty for minting policies
type Program struct {
	Script  script.Script
	Hash    digest.Hash28
	Address string
}

// Chain - all four derived programs
type Chain struct {
	ParameterLock Program
	ParameterMint Program
	RaidMint      Program
	RaidLock      Program
}

// Resolver - derives and remembers validator chains
type Resolver struct {
	artifacts Artifacts
	network   string
	log       *logger.L
	cache     *cache.Cache
}

// NewResolver - create a resolver for one network
func NewResolver(artifacts Artifacts, network string, log *logger.L) *Resolver {
	return &Resolver{
		artifacts: artifacts,
		network:   network,
		log:       log,
		cache:     cache.New(defaultExpiration, cleanupInterval),
	}
}

// Resolve - derive the chain for an admin key
//
// stages run strictly in order and the first failure is returned
// without attempting any later stage
func (r *Resolver) Resolve(admin digest.Hash28) (*Chain, error) {
	key := admin.String()
	if c, found := r.cache.Get(key); found {
		return c.(*Chain), nil
	}

	parameterLock := DeriveParameterLock(r.network, admin)

	parameterMint, err := r.DeriveParameterMint(admin, parameterLock.Hash)
	if nil != err {
		return nil, fmt.Errorf("parameter mint: %w", err)
	}

	raidMint, err := r.DeriveRaidMint(parameterMint.Hash)
	if nil != err {
		return nil, fmt.Errorf("raid mint: %w", err)
	}

	raidLock, err := r.DeriveRaidLock(admin, raidMint.Hash)
	if nil != err {
		return nil, fmt.Errorf("raid lock: %w", err)
	}

	c := &Chain{
		ParameterLock: parameterLock,
		ParameterMint: parameterMint,
		RaidMint:      raidMint,
		RaidLock:      raidLock,
	}

	r.log.Debugf("admin: %s  parameter lock: %s  parameter mint: %s  raid mint: %s  raid lock: %s",
		admin, parameterLock.Hash, parameterMint.Hash, raidMint.Hash, raidLock.Hash)

	r.cache.Set(key, c, cache.DefaultExpiration)
	return c, nil
}

// Flush - forget all derived chains, e.g. after artifacts changed
func (r *Resolver) Flush() {
	r.cache.Flush()
}

// DeriveParameterLock - the admin's signature script
func DeriveParameterLock(network string, admin digest.Hash28) Program {
	s := script.NativeSignature(admin)
	return spending(network, s)
}

// DeriveParameterMint - policy of the parameter token
func (r *Resolver) DeriveParameterMint(admin digest.Hash28, parameterLock digest.Hash28) (Program, error) {
	s, err := r.artifacts.Apply(ParameterMintTitle, hashData(admin), hashData(parameterLock))
	if nil != err {
		return Program{}, err
	}
	return minting(s), nil
}

// DeriveRaidMint - policy of the raid tokens
func (r *Resolver) DeriveRaidMint(parameterMintPolicyId digest.Hash28) (Program, error) {
	s, err := r.artifacts.Apply(RaidMintTitle, hashData(parameterMintPolicyId))
	if nil != err {
		return Program{}, err
	}
	return minting(s), nil
}

// DeriveRaidLock - escrow holding the raid bounties
func (r *Resolver) DeriveRaidLock(admin digest.Hash28, raidMintPolicyId digest.Hash28) (Program, error) {
	s, err := r.artifacts.Apply(RaidLockTitle, hashData(admin), hashData(raidMintPolicyId))
	if nil != err {
		return Program{}, err
	}
	return spending(r.network, s), nil
}

// SpendingAddress - address of a spending program on a network
func SpendingAddress(network string, s script.Script) string {
	return address.ScriptAddress(network, s.Hash()).String()
}

func spending(network string, s script.Script) Program {
	return Program{
		Script:  s,
		Hash:    s.Hash(),
		Address: SpendingAddress(network, s),
	}
}

func minting(s script.Script) Program {
	return Program{
		Script: s,
		Hash:   s.Hash(),
	}
}

func hashData(h digest.Hash28) plutusdata.Data {
	return plutusdata.Bytes(h.Bytes())
}
