// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/raiders/deploy"
)

func runDeploy(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	s, err := m.signer()
	if nil != err {
		return err
	}

	chain, err := m.resolver.Resolve(s.KeyHash())
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "network: %s  testing: %v\n", m.config.Network, m.config.Testing)
		fmt.Fprintf(m.e, "raid mint: %s\n", chain.RaidMint.Hash)
		fmt.Fprintf(m.e, "raid lock: %s\n", chain.RaidLock.Hash)
	}

	d := deploy.New(m.ledger, m.store, s, m.config.DeployConfiguration(), logger.New("deploy"))
	deployment, err := d.Deploy(m.ctx, chain, m.config.Testing)
	if nil != err {
		return err
	}

	return printJson(m.w, deployment)
}
