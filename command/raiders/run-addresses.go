// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/blueprint"
	"github.com/bitmark-inc/raiders/digest"
)

type derived struct {
	Network       string        `json:"network"`
	Admin         digest.Hash28 `json:"admin"`
	ParameterLock program       `json:"parameterLock"`
	ParameterMint program       `json:"parameterMint"`
	RaidMint      program       `json:"raidMint"`
	RaidLock      program       `json:"raidLock"`
}

type program struct {
	Hash    digest.Hash28 `json:"hash"`
	Address string        `json:"address,omitempty"`
}

func runAddresses(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	admin, err := m.admin()
	if nil != err {
		return err
	}
	adminHash, err := address.PaymentKeyHash(admin)
	if nil != err {
		return err
	}

	if !c.Bool("watch") {
		return m.printDerived(adminHash)
	}

	watcher, err := blueprint.NewWatcher(m.config.Blueprint, logger.New("blueprint"))
	if nil != err {
		return err
	}
	defer watcher.Stop()

	for {
		err = m.printDerived(adminHash)
		if nil != err {
			m.log.Warnf("derive error: %s", err)
		}

		select {
		case <-m.ctx.Done():
			return nil
		case <-watcher.Change():
			m.log.Info("blueprint changed, deriving again")
			m.blueprint.Reload()
			m.resolver.Flush()
		}
	}
}

func (m *metadata) printDerived(adminHash digest.Hash28) error {
	chain, err := m.resolver.Resolve(adminHash)
	if nil != err {
		return err
	}
	return printJson(m.w, derived{
		Network: m.config.Network,
		Admin:   adminHash,
		ParameterLock: program{
			Hash:    chain.ParameterLock.Hash,
			Address: chain.ParameterLock.Address,
		},
		ParameterMint: program{Hash: chain.ParameterMint.Hash},
		RaidMint:      program{Hash: chain.RaidMint.Hash},
		RaidLock: program{
			Hash:    chain.RaidLock.Hash,
			Address: chain.RaidLock.Address,
		},
	})
}
