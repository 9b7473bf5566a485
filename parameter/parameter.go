// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parameter

import (
	"context"
	"fmt"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/chain"
	"github.com/bitmark-inc/raiders/datum"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/tokenname"
	"github.com/bitmark-inc/raiders/transaction"
	"github.com/bitmark-inc/raiders/validator"
)

// minimum lovelace of the input the token name is derived from
const minimumFundingInput = 5_000_000

// transaction messages
const (
	mintMessage = "Mint Parameter"
	burnMessage = "Burn Parameter"
)

// Resolver - source of the derived programs for an admin
type Resolver interface {
	Resolve(admin digest.Hash28) (*validator.Chain, error)
}

// Manager - parameter operations against one ledger
type Manager struct {
	ledger   ledger.Ledger
	resolver Resolver
	log      *logger.L
}

// Minted - result of a mint
type Minted struct {
	Tx      *transaction.Transaction `json:"tx"`
	AssetId string                   `json:"assetId"`
}

// New - manager deriving programs with a resolver
func New(l ledger.Ledger, resolver Resolver, log *logger.L) *Manager {
	return &Manager{
		ledger:   l,
		resolver: resolver,
		log:      log,
	}
}

// Mint - publish a parameter record at the parameter lock
//
// the fee percentage is clamped to 0..100 and the record points at
// the raid lock derived for this admin
func (m *Manager) Mint(ctx context.Context, admin string, project string, authorizers []string, feePercentage int64) (*Minted, error) {
	network := m.ledger.Network()

	adminHash, err := address.PaymentKeyHash(admin)
	if nil != err {
		return nil, err
	}

	authorizerHashes := make([]digest.Hash28, len(authorizers))
	for i, a := range authorizers {
		authorizerHashes[i], err = address.PaymentKeyHash(a)
		if nil != err {
			return nil, fmt.Errorf("authorizer: %q: %w", a, err)
		}
	}

	projectAddress, err := address.Parse(project)
	if nil != err {
		return nil, err
	}
	if chain.NetworkId(network) != projectAddress.NetworkId {
		return nil, fault.ErrInvalidAddressNetwork
	}

	c, err := m.resolver.Resolve(adminHash)
	if nil != err {
		return nil, err
	}

	utxos, err := m.ledger.UTxOsAt(ctx, admin)
	if nil != err {
		return nil, err
	}
	var funding *ledger.UTxO
	for i := range utxos {
		if utxos[i].Lovelace() >= minimumFundingInput && nil == utxos[i].ScriptRef {
			funding = &utxos[i]
			break
		}
	}
	if nil == funding {
		return nil, fault.ErrNoFundingInput
	}

	name := tokenname.FromOutRef(funding.OutRef)
	unit := ledger.NewUnit(c.ParameterMint.Hash, name[:])

	p := datum.NewParameter(c.RaidLock.Hash, *projectAddress, feePercentage, authorizerHashes)
	packed, err := p.Pack()
	if nil != err {
		return nil, err
	}
	m.log.Debugf("mint: unit: %s  funding: %s  fee: %d%%", unit, funding.OutRef, p.FeePercentage)

	params, err := m.ledger.ProtocolParameters(ctx)
	if nil != err {
		return nil, err
	}

	tx, err := transaction.NewBuilder(network, params).
		CollectFrom([]ledger.UTxO{*funding}, nil).
		Mint(unit, 1, datum.ParameterMint()).
		Attach(c.ParameterMint.Script).
		AddSigner(adminHash).
		PayWithData(c.ParameterLock.Address, packed, ledger.Assets{unit: 1}).
		Message(mintMessage).
		Complete(utxos, admin)
	if nil != err {
		return nil, err
	}

	m.log.Infof("mint: tx: %s  unit: %s", tx.Id(), unit)
	return &Minted{
		Tx:      tx,
		AssetId: unit,
	}, nil
}

// Burn - spend a parameter record and burn its token
func (m *Manager) Burn(ctx context.Context, admin string, unit string) (*transaction.Transaction, error) {
	adminHash, err := address.PaymentKeyHash(admin)
	if nil != err {
		return nil, err
	}

	policy, _, err := ledger.SplitUnit(unit)
	if nil != err {
		return nil, err
	}

	c, err := m.resolver.Resolve(adminHash)
	if nil != err {
		return nil, err
	}
	if policy != c.ParameterMint.Hash {
		return nil, fault.ErrInvalidPolicyId
	}

	u, err := m.ledger.UTxOByUnit(ctx, unit)
	if nil != err {
		return nil, err
	}
	if c.ParameterLock.Address != u.Address {
		m.log.Warnf("burn: unit: %s  held at: %s", unit, u.Address)
		return nil, fault.ErrLockMismatch
	}

	params, err := m.ledger.ProtocolParameters(ctx)
	if nil != err {
		return nil, err
	}
	utxos, err := m.ledger.UTxOsAt(ctx, admin)
	if nil != err {
		return nil, err
	}

	tx, err := transaction.NewBuilder(m.ledger.Network(), params).
		CollectFrom([]ledger.UTxO{*u}, nil).
		Attach(c.ParameterLock.Script).
		Mint(unit, -1, datum.ParameterBurn()).
		Attach(c.ParameterMint.Script).
		AddSigner(adminHash).
		Message(burnMessage).
		Complete(utxos, admin)
	if nil != err {
		return nil, err
	}

	m.log.Infof("burn: tx: %s  unit: %s", tx.Id(), unit)
	return tx, nil
}

// Find - the parameter output at a reference and its decoded record
func Find(ctx context.Context, l ledger.Ledger, ref ledger.OutRef) (*ledger.UTxO, *datum.Parameter, error) {
	utxos, err := l.UTxOsByOutRef(ctx, []ledger.OutRef{ref})
	if nil != err {
		return nil, nil, err
	}
	if 0 == len(utxos) {
		return nil, nil, fault.ErrParameterNotFound
	}
	u := utxos[0]
	if 0 == len(u.Datum) {
		return nil, nil, fault.ErrInvalidParameterRef
	}
	p, err := datum.UnpackParameter(u.Datum, chain.NetworkId(l.Network()))
	if nil != err {
		return nil, nil, fault.ErrInvalidParameterRef
	}
	return &u, p, nil
}
