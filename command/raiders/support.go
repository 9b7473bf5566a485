// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/blockfrost"
	"github.com/bitmark-inc/raiders/configuration"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/parameter"
	"github.com/bitmark-inc/raiders/registry"
	"github.com/bitmark-inc/raiders/transaction"
	"github.com/bitmark-inc/raiders/wallet"
)

// NAME=VALUE pairs as Lua globals
func defines(items []string) (map[string]string, error) {
	variables := make(map[string]string, len(items))
	for _, item := range items {
		s := strings.SplitN(item, "=", 2)
		if 2 != len(s) || "" == s[0] {
			return nil, ErrInvalidDefine
		}
		variables[s[0]] = s[1]
	}
	return variables, nil
}

func newLedger(c *configuration.Configuration) (ledger.Ledger, error) {
	return blockfrost.New(c.Network, c.Blockfrost)
}

func openRegistry(c *configuration.Configuration) (registry.Store, error) {
	switch c.Deployed.Driver {
	case configuration.DriverLevelDB:
		return registry.OpenLevelDB(c.RegistryPath(), registry.ReadWrite)
	default:
		return registry.NewFile(c.RegistryPath()), nil
	}
}

// the configured signing key
func (m *metadata) signer() (*wallet.KeySigner, error) {
	s, err := wallet.LoadSigningKey(m.config.SigningKeyFile)
	if nil != err {
		m.log.Errorf("signing key: %q  error: %s", m.config.SigningKeyFile, err)
		return nil, err
	}
	return s, nil
}

// configured admin address, else the signing key's address
func (m *metadata) admin() (string, error) {
	if "" != m.config.AdminAddress {
		return m.config.AdminAddress, nil
	}
	s, err := m.signer()
	if nil != err {
		return "", err
	}
	return s.Address(m.config.Network), nil
}

// TXHASH#INDEX
func parseOutRef(s string) (ledger.OutRef, error) {
	parts := strings.Split(s, "#")
	if 2 != len(parts) {
		return ledger.OutRef{}, ErrInvalidOutRef
	}
	h, err := digest.Hash32FromHex(parts[0])
	if nil != err {
		return ledger.OutRef{}, err
	}
	index, err := strconv.ParseUint(parts[1], 10, 32)
	if nil != err {
		return ledger.OutRef{}, ErrInvalidOutRef
	}
	return ledger.OutRef{TxId: h, Index: uint32(index)}, nil
}

// the parameter output named on the command line or in the configuration
func (m *metadata) parameterUTxO(c *cli.Context) (*ledger.UTxO, error) {
	var ref ledger.OutRef
	var err error
	if s := c.String("parameter"); "" != s {
		ref, err = parseOutRef(s)
	} else {
		ref, err = m.config.ParameterRef()
	}
	if nil != err {
		return nil, err
	}

	u, _, err := parameter.Find(m.ctx, m.ledger, ref)
	return u, err
}

func requiredString(c *cli.Context, name string) (string, error) {
	s := c.String(name)
	if "" == s {
		return "", missingOption(name)
	}
	return s, nil
}

func requiredAddress(c *cli.Context, name string) (string, error) {
	s, err := requiredString(c, name)
	if nil != err {
		return "", err
	}
	_, err = address.Parse(s)
	if nil != err {
		return "", err
	}
	return s, nil
}

type submitted struct {
	Tx digest.Hash32 `json:"tx"`
}

// either print the unsigned transaction or sign and submit it
func (m *metadata) finish(c *cli.Context, tx *transaction.Transaction, result interface{}) error {
	if !c.Bool("submit") {
		return printJson(m.w, result)
	}

	s, err := m.signer()
	if nil != err {
		return err
	}
	err = s.Sign(tx)
	if nil != err {
		return err
	}
	buffer, err := tx.Bytes()
	if nil != err {
		return err
	}
	id, err := m.ledger.Submit(m.ctx, buffer)
	if nil != err {
		m.log.Errorf("submit error: %s", err)
		return err
	}
	m.log.Infof("submitted: %s", id)
	return printJson(m.w, submitted{Tx: id})
}
