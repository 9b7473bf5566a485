// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/raiders/parameter"
)

func runParameterMint(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	admin, err := m.admin()
	if nil != err {
		return err
	}

	project := c.String("project")
	if "" == project {
		project = m.config.Parameter.ProjectAddress
	}
	if "" == project {
		return missingOption("project")
	}

	authorizers := c.StringSlice("authorizer")
	if 0 == len(authorizers) {
		authorizers = m.config.Parameter.AuthorizerAddresses
	}

	fee := c.Int64("fee")
	if fee < 0 {
		fee = m.config.Parameter.FeePercentage
	}

	if m.verbose {
		fmt.Fprintf(m.e, "admin: %s\n", admin)
		fmt.Fprintf(m.e, "project: %s\n", project)
		fmt.Fprintf(m.e, "authorizers: %q\n", authorizers)
		fmt.Fprintf(m.e, "fee: %d%%\n", fee)
	}

	minted, err := parameter.New(m.ledger, m.resolver, logger.New("parameter")).Mint(m.ctx, admin, project, authorizers, fee)
	if nil != err {
		return err
	}

	return m.finish(c, minted.Tx, minted)
}

func runParameterBurn(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	admin, err := m.admin()
	if nil != err {
		return err
	}

	unit, err := requiredString(c, "unit")
	if nil != err {
		return err
	}

	tx, err := parameter.New(m.ledger, m.resolver, logger.New("parameter")).Burn(m.ctx, admin, unit)
	if nil != err {
		return err
	}

	return m.finish(c, tx, tx)
}
