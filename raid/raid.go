// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package raid

import (
	"context"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/bounty"
	"github.com/bitmark-inc/raiders/chain"
	"github.com/bitmark-inc/raiders/datum"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/registry"
	"github.com/bitmark-inc/raiders/selection"
	"github.com/bitmark-inc/raiders/tokenname"
	"github.com/bitmark-inc/raiders/transaction"
	"github.com/bitmark-inc/raiders/validator"
)

// transaction messages
const (
	createMessage = "Create Raid"
	claimMessage  = "Claim Raid"
	removeMessage = "Remove Raid"
)

// Raider - raid operations against one ledger and deployment
type Raider struct {
	ledger  ledger.Ledger
	store   registry.Store
	testing bool
	log     *logger.L
}

// Created - result of a creation
type Created struct {
	Tx      *transaction.Transaction `json:"tx"`
	AssetId string                   `json:"assetId"`
}

// New - raider using the deployment recorded in a store
func New(l ledger.Ledger, store registry.Store, testing bool, log *logger.L) *Raider {
	return &Raider{
		ledger:  l,
		store:   store,
		testing: testing,
		log:     log,
	}
}

func (r *Raider) deployed() (*registry.Deployment, error) {
	return registry.Deployed(r.store, r.ledger.Network(), r.testing)
}

// Create - open a raid, paying the project its fee
//
// wallet funds the transaction and receives the change
func (r *Raider) Create(ctx context.Context, wallet string, quantity int64, price uint64, creator string, parameterRef ledger.UTxO) (*Created, error) {
	return r.create(ctx, wallet, quantity, price, creator, "", parameterRef)
}

// CreateWithAuthorizer - open a raid without a fee, approved by one
// of the parameter's authorizers
func (r *Raider) CreateWithAuthorizer(ctx context.Context, wallet string, quantity int64, price uint64, creator string, authorizer string, parameterRef ledger.UTxO) (*Created, error) {
	if "" == authorizer {
		return nil, fault.ErrUnauthorizedApprover
	}
	return r.create(ctx, wallet, quantity, price, creator, authorizer, parameterRef)
}

func (r *Raider) create(ctx context.Context, wallet string, quantity int64, price uint64, creator string, authorizer string, parameterRef ledger.UTxO) (*Created, error) {
	err := bounty.ValidateQuantityPrice(quantity, price)
	if nil != err {
		return nil, err
	}

	network := r.ledger.Network()
	creatorHash, err := address.PaymentKeyHash(creator)
	if nil != err {
		return nil, err
	}

	d, err := r.deployed()
	if nil != err {
		return nil, err
	}
	raidPolicy := d.RaidMint.ScriptRef.Hash()
	raidLockAddress := validator.SpendingAddress(network, *d.RaidLock.ScriptRef)

	parameter, err := parameterOf(parameterRef, network)
	if nil != err {
		r.log.Errorf("parameter: %s  error: %s", parameterRef.OutRef, err)
		return nil, err
	}

	var authorizerHash digest.Hash28
	waived := "" != authorizer
	if waived {
		authorizerHash, err = address.PaymentKeyHash(authorizer)
		if nil != err {
			return nil, err
		}
		if !parameter.IsAuthorizer(authorizerHash) {
			return nil, fault.ErrUnauthorizedApprover
		}
	}

	required, err := bounty.RequiredBounty(quantity, price)
	if nil != err {
		return nil, err
	}
	fee := uint64(0)
	if !waived {
		fee, err = bounty.BountyFee(parameter.FeePercentage, quantity, price)
		if nil != err {
			return nil, err
		}
	}
	qualified, err := bounty.Qualified(required, fee)
	if nil != err {
		return nil, err
	}

	utxos, err := r.ledger.UTxOsAt(ctx, wallet)
	if nil != err {
		return nil, err
	}
	selected, err := selection.Select(utxos, qualified)
	if nil != err {
		return nil, err
	}
	if 0 == len(selected) {
		return nil, fault.ErrInsufficientBalance
	}

	name := tokenname.FromOutRef(selected[0].OutRef)
	unit := ledger.NewUnit(raidPolicy, name[:])
	r.log.Debugf("create: unit: %s  qualified: %d  inputs: %d", unit, qualified, len(selected))

	raid := &datum.Raid{
		Quantity: quantity,
		Price:    price,
		Creator:  creatorHash,
	}
	packed, err := raid.Pack()
	if nil != err {
		return nil, err
	}

	params, err := r.ledger.ProtocolParameters(ctx)
	if nil != err {
		return nil, err
	}

	b := transaction.NewBuilder(network, params).
		ReadFrom(parameterRef, d.RaidMint).
		CollectFrom(selected, nil).
		Mint(unit, 1, datum.RaidCreate(quantity, price)).
		AddSigner(creatorHash).
		PayWithData(raidLockAddress, packed, ledger.Assets{
			unit:            1,
			ledger.Lovelace: required,
		})
	if waived {
		b.AddSigner(authorizerHash)
	} else {
		b.Pay(parameter.ProjectAddress.String(), ledger.Assets{ledger.Lovelace: fee})
	}
	tx, err := b.Message(createMessage).Complete(selected, wallet)
	if nil != err {
		return nil, err
	}

	r.log.Infof("create: tx: %s  unit: %s  bounty: %d  fee: %d", tx.Id(), unit, required, fee)
	return &Created{
		Tx:      tx,
		AssetId: unit,
	}, nil
}

// the parameter carried by a reference output
func parameterOf(ref ledger.UTxO, network string) (*datum.Parameter, error) {
	if 0 == len(ref.Datum) {
		return nil, fault.ErrInvalidParameterRef
	}
	p, err := datum.UnpackParameter(ref.Datum, chain.NetworkId(network))
	if nil != err {
		return nil, fault.ErrInvalidParameterRef
	}
	return p, nil
}

// Claim - pay out one unit of a raid's bounty
//
// the admin must sign; the price leaves the escrow as change
func (r *Raider) Claim(ctx context.Context, wallet string, admin string, unit string) (*transaction.Transaction, error) {
	adminHash, err := address.PaymentKeyHash(admin)
	if nil != err {
		return nil, err
	}

	d, err := r.deployed()
	if nil != err {
		return nil, err
	}

	locked, raid, err := r.locked(ctx, d, unit)
	if nil != err {
		return nil, err
	}

	claimed, err := raid.Claimed()
	if nil != err {
		return nil, err
	}
	required, err := bounty.RequiredBounty(claimed.Quantity, claimed.Price)
	if nil != err {
		return nil, err
	}
	packed, err := claimed.Pack()
	if nil != err {
		return nil, err
	}

	assets := locked.Assets.Clone()
	assets[ledger.Lovelace] = required

	params, err := r.ledger.ProtocolParameters(ctx)
	if nil != err {
		return nil, err
	}
	utxos, err := r.ledger.UTxOsAt(ctx, wallet)
	if nil != err {
		return nil, err
	}

	tx, err := transaction.NewBuilder(r.ledger.Network(), params).
		ReadFrom(d.RaidLock).
		CollectFrom([]ledger.UTxO{*locked}, datum.RaidClaim()).
		AddSigner(adminHash).
		PayWithData(locked.Address, packed, assets).
		Message(claimMessage).
		Complete(utxos, wallet)
	if nil != err {
		return nil, err
	}

	r.log.Infof("claim: tx: %s  unit: %s  remaining: %d", tx.Id(), unit, claimed.Quantity)
	return tx, nil
}

// Remove - close a raid and burn its token
//
// the creator recorded in the datum must sign
func (r *Raider) Remove(ctx context.Context, wallet string, unit string) (*transaction.Transaction, error) {
	d, err := r.deployed()
	if nil != err {
		return nil, err
	}

	locked, raid, err := r.locked(ctx, d, unit)
	if nil != err {
		return nil, err
	}

	params, err := r.ledger.ProtocolParameters(ctx)
	if nil != err {
		return nil, err
	}
	utxos, err := r.ledger.UTxOsAt(ctx, wallet)
	if nil != err {
		return nil, err
	}

	tx, err := transaction.NewBuilder(r.ledger.Network(), params).
		ReadFrom(d.RaidMint, d.RaidLock).
		CollectFrom([]ledger.UTxO{*locked}, datum.RaidClose()).
		Mint(unit, -1, datum.RaidRemove()).
		AddSigner(raid.Creator).
		Message(removeMessage).
		Complete(utxos, wallet)
	if nil != err {
		return nil, err
	}

	r.log.Infof("remove: tx: %s  unit: %s  creator: %s", tx.Id(), unit, raid.Creator)
	return tx, nil
}

// the output holding a raid token, checked to be at the deployed lock
func (r *Raider) locked(ctx context.Context, d *registry.Deployment, unit string) (*ledger.UTxO, *datum.Raid, error) {
	u, err := r.ledger.UTxOByUnit(ctx, unit)
	if nil != err {
		return nil, nil, err
	}
	if 0 == len(u.Datum) {
		return nil, nil, fault.ErrMissingDatum
	}

	lockHash, err := address.PaymentHash(u.Address)
	if nil != err {
		return nil, nil, err
	}
	if lockHash != d.RaidLock.ScriptRef.Hash() {
		r.log.Warnf("unit: %s  locked at: %s  deployed: %s", unit, lockHash, d.RaidLock.ScriptRef.Hash())
		return nil, nil, fault.ErrLockMismatch
	}

	raid, err := datum.UnpackRaid(u.Datum)
	if nil != err {
		return nil, nil, err
	}
	return u, raid, nil
}

// List - every live raid token, those with a supply of one
func (r *Raider) List(ctx context.Context) ([]string, error) {
	d, err := r.deployed()
	if nil != err {
		return nil, err
	}

	assets, err := r.ledger.AssetsByPolicy(ctx, d.RaidMint.ScriptRef.Hash())
	if nil != err {
		return nil, err
	}

	units := make([]string, 0, len(assets))
	for _, a := range assets {
		if 1 == a.Quantity {
			units = append(units, a.Unit)
		}
	}
	return units, nil
}
