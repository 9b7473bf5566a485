// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/raiders/raid"
)

func (m *metadata) raider() *raid.Raider {
	return raid.New(m.ledger, m.store, m.config.Testing, logger.New("raid"))
}

type creation struct {
	wallet   string
	creator  string
	quantity int64
	price    uint64
}

func creationOptions(c *cli.Context) (*creation, error) {
	wallet, err := requiredAddress(c, "wallet")
	if nil != err {
		return nil, err
	}

	creator := c.String("creator")
	if "" == creator {
		creator = wallet
	}

	price := c.Uint64("price")
	if 0 == price {
		return nil, missingOption("price")
	}

	return &creation{
		wallet:   wallet,
		creator:  creator,
		quantity: c.Int64("quantity"),
		price:    price,
	}, nil
}

func runRaiderCreate(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	options, err := creationOptions(c)
	if nil != err {
		return err
	}

	ref, err := m.parameterUTxO(c)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "creator: %s\n", options.creator)
		fmt.Fprintf(m.e, "quantity: %d  price: %d\n", options.quantity, options.price)
		fmt.Fprintf(m.e, "parameter: %s\n", ref.OutRef)
	}

	created, err := m.raider().Create(m.ctx, options.wallet, options.quantity, options.price, options.creator, *ref)
	if nil != err {
		return err
	}

	return printJson(m.w, created)
}

func runRaiderCreateWithAuthorizer(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	options, err := creationOptions(c)
	if nil != err {
		return err
	}

	authorizer, err := requiredAddress(c, "authorizer")
	if nil != err {
		return err
	}

	ref, err := m.parameterUTxO(c)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "creator: %s  authorizer: %s\n", options.creator, authorizer)
		fmt.Fprintf(m.e, "quantity: %d  price: %d\n", options.quantity, options.price)
		fmt.Fprintf(m.e, "parameter: %s\n", ref.OutRef)
	}

	created, err := m.raider().CreateWithAuthorizer(m.ctx, options.wallet, options.quantity, options.price, options.creator, authorizer, *ref)
	if nil != err {
		return err
	}

	return printJson(m.w, created)
}

func runRaiderClaim(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	wallet, err := requiredAddress(c, "wallet")
	if nil != err {
		return err
	}
	unit, err := requiredString(c, "unit")
	if nil != err {
		return err
	}
	admin, err := m.admin()
	if nil != err {
		return err
	}

	tx, err := m.raider().Claim(m.ctx, wallet, admin, unit)
	if nil != err {
		return err
	}

	return m.finish(c, tx, tx)
}

func runRaiderRemove(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	wallet, err := requiredAddress(c, "wallet")
	if nil != err {
		return err
	}
	unit, err := requiredString(c, "unit")
	if nil != err {
		return err
	}

	tx, err := m.raider().Remove(m.ctx, wallet, unit)
	if nil != err {
		return err
	}

	return printJson(m.w, tx)
}

func runRaiderList(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	units, err := m.raider().List(m.ctx)
	if nil != err {
		return err
	}

	return printJson(m.w, units)
}
