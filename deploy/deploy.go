// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package deploy

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/plutusdata"
	"github.com/bitmark-inc/raiders/registry"
	"github.com/bitmark-inc/raiders/script"
	"github.com/bitmark-inc/raiders/transaction"
	"github.com/bitmark-inc/raiders/validator"
	"github.com/bitmark-inc/raiders/wallet"
)

const deployMessage = "Deploy Raid Contracts"

// output positions in the deploy transaction
const (
	raidMintIndex = 0
	raidLockIndex = 1
)

const (
	defaultInterval    = 10 * time.Second
	defaultMaxInterval = 2 * time.Minute
	defaultTimeout     = 30 * time.Minute
)

// Configuration - confirmation polling
type Configuration struct {
	Interval    time.Duration `json:"interval"`
	MaxInterval time.Duration `json:"max_interval"`
	Timeout     time.Duration `json:"timeout"`
}

// Deployer - publishes the raid programs as reference outputs
type Deployer struct {
	ledger        ledger.Ledger
	store         registry.Store
	signer        wallet.Signer
	configuration Configuration
	rand          io.Reader
	log           *logger.L
}

// New - deployer paying from the signer's enterprise address
func New(l ledger.Ledger, store registry.Store, signer wallet.Signer, configuration Configuration, log *logger.L) *Deployer {
	if configuration.Interval <= 0 {
		configuration.Interval = defaultInterval
	}
	if configuration.MaxInterval < configuration.Interval {
		configuration.MaxInterval = defaultMaxInterval
		if configuration.MaxInterval < configuration.Interval {
			configuration.MaxInterval = configuration.Interval
		}
	}
	if configuration.Timeout <= 0 {
		configuration.Timeout = defaultTimeout
	}
	return &Deployer{
		ledger:        l,
		store:         store,
		signer:        signer,
		configuration: configuration,
		rand:          rand.Reader,
		log:           log,
	}
}

// Deploy - publish, confirm and record the raid programs
//
// both outputs go to an always failing program so they can be read
// but never spent; the wait for them is bounded by the configured
// timeout and by ctx
func (d *Deployer) Deploy(ctx context.Context, c *validator.Chain, testing bool) (*registry.Deployment, error) {
	network := d.ledger.Network()
	payer := address.KeyAddress(network, d.signer.KeyHash()).String()

	tx, err := d.build(ctx, c, payer)
	if nil != err {
		return nil, err
	}

	err = d.signer.Sign(tx)
	if nil != err {
		return nil, err
	}
	buffer, err := tx.Bytes()
	if nil != err {
		return nil, err
	}

	d.log.Infof("deploying on: %s  tx: %s", network, tx.Id())
	id, err := d.ledger.Submit(ctx, buffer)
	if nil != err {
		d.log.Errorf("submit error: %s", err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.configuration.Timeout)
	defer cancel()

	err = d.ledger.AwaitTx(ctx, id)
	if nil != err {
		return nil, timeoutOr(ctx, err)
	}

	deployment, err := d.confirm(ctx, id)
	if nil != err {
		return nil, err
	}

	for _, item := range []struct {
		utxo     ledger.UTxO
		expected script.Script
	}{
		{deployment.RaidMint, c.RaidMint.Script},
		{deployment.RaidLock, c.RaidLock.Script},
	} {
		if nil == item.utxo.ScriptRef || item.utxo.ScriptRef.Hash() != item.expected.Hash() {
			return nil, fault.ErrScriptReferenceNotFound
		}
	}

	err = registry.Save(d.store, network, testing, deployment)
	if nil != err {
		return nil, err
	}
	d.log.Infof("deployed: raid mint: %s  raid lock: %s", deployment.RaidMint.OutRef, deployment.RaidLock.OutRef)
	return deployment, nil
}

func (d *Deployer) build(ctx context.Context, c *validator.Chain, payer string) (*transaction.Transaction, error) {
	destination, err := script.AlwaysFail(d.rand)
	if nil != err {
		return nil, err
	}
	to := validator.SpendingAddress(d.ledger.Network(), destination)

	void, err := plutusdata.Pack(plutusdata.Void())
	if nil != err {
		return nil, err
	}

	params, err := d.ledger.ProtocolParameters(ctx)
	if nil != err {
		return nil, err
	}
	utxos, err := d.ledger.UTxOsAt(ctx, payer)
	if nil != err {
		return nil, err
	}

	return transaction.NewBuilder(d.ledger.Network(), params).
		PayWithScript(to, void, c.RaidMint.Script, ledger.Assets{}).
		PayWithScript(to, void, c.RaidLock.Script, ledger.Assets{}).
		Message(deployMessage).
		Complete(utxos, payer)
}

// poll with exponential backoff until both outputs are visible
func (d *Deployer) confirm(ctx context.Context, id digest.Hash32) (*registry.Deployment, error) {
	refs := []ledger.OutRef{
		{TxId: id, Index: raidMintIndex},
		{TxId: id, Index: raidLockIndex},
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.configuration.Interval
	b.MaxInterval = d.configuration.MaxInterval

	operation := func() (*registry.Deployment, error) {
		utxos, err := d.ledger.UTxOsByOutRef(ctx, refs)
		if nil != err {
			return nil, err
		}
		deployment := &registry.Deployment{}
		found := 0
		for _, u := range utxos {
			switch u.Index {
			case raidMintIndex:
				deployment.RaidMint = u
				found += 1
			case raidLockIndex:
				deployment.RaidLock = u
				found += 1
			}
		}
		if len(refs) != found {
			return nil, fault.ErrWrongNumberOfDeployOutputs
		}
		return deployment, nil
	}

	notify := func(err error, next time.Duration) {
		d.log.Warnf("deployed outputs of: %s  not visible: %s  retry in: %s", id, err, next)
	}

	deployment, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(d.configuration.Timeout),
		backoff.WithNotify(notify),
	)
	if nil != err {
		return nil, timeoutOr(ctx, err)
	}
	return deployment, nil
}

// a deadline becomes the confirmation timeout, other errors pass
func timeoutOr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fault.ErrConfirmationTimeout
	}
	if errors.Is(err, fault.ErrWrongNumberOfDeployOutputs) {
		return fault.ErrConfirmationTimeout
	}
	return err
}
