// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package raid_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/blueprint"
	"github.com/bitmark-inc/raiders/datum"
	"github.com/bitmark-inc/raiders/deploy"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/emulator"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/ledger/mocks"
	"github.com/bitmark-inc/raiders/parameter"
	"github.com/bitmark-inc/raiders/raid"
	"github.com/bitmark-inc/raiders/registry"
	"github.com/bitmark-inc/raiders/transaction"
	"github.com/bitmark-inc/raiders/validator"
	"github.com/bitmark-inc/raiders/wallet"
)

const network = "preprod"

const testBlueprint = `{
  "preamble": {"title": "raiders", "version": "0.0.0", "plutusVersion": "v3"},
  "validators": [
    {"title": "parameter_mint.parameter_mint.mint", "compiledCode": "46010100220021"},
    {"title": "raid_mint.raid_mint.mint", "compiledCode": "46010100200101"},
    {"title": "raid_lock.raid_lock.spend", "compiledCode": "4701010022200101"}
  ]
}`

const (
	price      = 50_000_000
	feePercent = 5
)

type world struct {
	ctx        context.Context
	emulator   *emulator.Emulator
	store      registry.Store
	chain      *validator.Chain
	parameter  ledger.UTxO
	admin      *wallet.KeySigner
	creator    *wallet.KeySigner
	project    *wallet.KeySigner
	authorizer *wallet.KeySigner
}

func signer(t *testing.T, b byte) *wallet.KeySigner {
	s, err := wallet.NewKeySigner(bytes.Repeat([]byte{b}, 32))
	if nil != err {
		t.Fatalf("signer error: %s", err)
	}
	return s
}

func (w *world) submit(t *testing.T, tx *transaction.Transaction, signers ...*wallet.KeySigner) error {
	for _, s := range signers {
		err := s.Sign(tx)
		if nil != err {
			t.Fatalf("sign error: %s", err)
		}
	}
	buffer, err := tx.Bytes()
	if nil != err {
		t.Fatalf("serialise error: %s", err)
	}
	_, err = w.emulator.Submit(w.ctx, buffer)
	return err
}

// deployed raid programs and one parameter record, the way an admin
// prepares a network
func setup(t *testing.T) *world {
	w := &world{
		ctx:        context.Background(),
		store:      registry.NewMemory(),
		admin:      signer(t, 0x42),
		creator:    signer(t, 0x51),
		project:    signer(t, 0x43),
		authorizer: signer(t, 0x44),
	}

	e, err := emulator.New(network,
		emulator.Account{
			Address: w.admin.Address(network),
			Assets:  ledger.Assets{ledger.Lovelace: 300_000_000},
		},
		emulator.Account{
			Address: w.creator.Address(network),
			Assets:  ledger.Assets{ledger.Lovelace: 200_000_000},
		},
	)
	if nil != err {
		t.Fatalf("emulator error: %s", err)
	}
	w.emulator = e

	b, err := blueprint.Parse([]byte(testBlueprint))
	if nil != err {
		t.Fatalf("blueprint error: %s", err)
	}
	r := validator.NewResolver(b, network, logger.New(category))
	w.chain, err = r.Resolve(w.admin.KeyHash())
	if nil != err {
		t.Fatalf("resolve error: %s", err)
	}

	_, err = deploy.New(e, w.store, w.admin, deploy.Configuration{
		Interval: time.Millisecond,
		Timeout:  time.Second,
	}, logger.New(category)).Deploy(w.ctx, w.chain, false)
	if nil != err {
		t.Fatalf("deploy error: %s", err)
	}

	minted, err := parameter.New(e, r, logger.New(category)).Mint(w.ctx,
		w.admin.Address(network),
		w.project.Address(network),
		[]string{w.authorizer.Address(network)},
		feePercent)
	if nil != err {
		t.Fatalf("parameter error: %s", err)
	}
	err = w.submit(t, minted.Tx, w.admin)
	if nil != err {
		t.Fatalf("parameter submit error: %s", err)
	}
	u, err := e.UTxOByUnit(w.ctx, minted.AssetId)
	if nil != err {
		t.Fatalf("parameter lookup error: %s", err)
	}
	w.parameter = *u
	return w
}

func (w *world) raider() *raid.Raider {
	return raid.New(w.emulator, w.store, false, logger.New(category))
}

func TestLifecycle(t *testing.T) {
	w := setup(t)
	raider := w.raider()
	creator := w.creator.Address(network)
	admin := w.admin.Address(network)

	created, err := raider.Create(w.ctx, creator, 1, price, creator, w.parameter)
	assert.Nil(t, err)
	assert.Equal(t, []string{"Create Raid"}, created.Tx.Messages())

	policy, _, err := ledger.SplitUnit(created.AssetId)
	assert.Nil(t, err)
	assert.Equal(t, w.chain.RaidMint.Hash, policy)

	err = w.submit(t, created.Tx, w.creator)
	assert.Nil(t, err)

	// escrow holds the bounty and the token under the raid lock
	locked, err := w.emulator.UTxOByUnit(w.ctx, created.AssetId)
	assert.Nil(t, err)
	assert.Equal(t, w.chain.RaidLock.Address, locked.Address)
	assert.Equal(t, uint64(price+2_000_000), locked.Lovelace())
	r, err := datum.UnpackRaid(locked.Datum)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), r.Quantity)
	assert.Equal(t, uint64(price), r.Price)
	assert.Equal(t, w.creator.KeyHash(), r.Creator)

	// project is paid its fee
	paid, err := w.emulator.UTxOsAt(w.ctx, w.project.Address(network))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(paid))
	assert.True(t, paid[0].Lovelace() >= price*feePercent/100)

	units, err := raider.List(w.ctx)
	assert.Nil(t, err)
	assert.Equal(t, []string{created.AssetId}, units)

	// one claim releases one price
	tx, err := raider.Claim(w.ctx, admin, admin, created.AssetId)
	assert.Nil(t, err)
	assert.Equal(t, []string{"Claim Raid"}, tx.Messages())
	err = w.submit(t, tx, w.admin)
	assert.Nil(t, err)

	locked, err = w.emulator.UTxOByUnit(w.ctx, created.AssetId)
	assert.Nil(t, err)
	assert.Equal(t, w.chain.RaidLock.Address, locked.Address)
	assert.Equal(t, uint64(2_000_000), locked.Lovelace())
	r, err = datum.UnpackRaid(locked.Datum)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), r.Quantity)

	_, err = raider.Claim(w.ctx, admin, admin, created.AssetId)
	assert.Equal(t, fault.ErrNothingToClaim, err)

	// the creator closes the raid and burns the token
	tx, err = raider.Remove(w.ctx, creator, created.AssetId)
	assert.Nil(t, err)
	assert.Equal(t, []string{"Remove Raid"}, tx.Messages())
	err = w.submit(t, tx, w.creator)
	assert.Nil(t, err)

	_, err = w.emulator.UTxOByUnit(w.ctx, created.AssetId)
	assert.Equal(t, fault.ErrUTxONotFound, err)

	units, err = raider.List(w.ctx)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(units))

	_, err = raider.Claim(w.ctx, admin, admin, created.AssetId)
	assert.Equal(t, fault.ErrUTxONotFound, err)
	_, err = raider.Remove(w.ctx, creator, created.AssetId)
	assert.Equal(t, fault.ErrUTxONotFound, err)
}

func TestRemoveNeedsCreator(t *testing.T) {
	w := setup(t)
	raider := w.raider()
	creator := w.creator.Address(network)

	created, err := raider.Create(w.ctx, creator, 2, price, creator, w.parameter)
	assert.Nil(t, err)
	assert.Nil(t, w.submit(t, created.Tx, w.creator))

	// admin pays the fee but the creator is a required signer
	tx, err := raider.Remove(w.ctx, w.admin.Address(network), created.AssetId)
	assert.Nil(t, err)
	err = w.submit(t, tx, w.admin)
	assert.Equal(t, fault.ErrMissingSignature, err)
}

func TestCreateWithAuthorizer(t *testing.T) {
	w := setup(t)
	raider := w.raider()
	creator := w.creator.Address(network)

	created, err := raider.CreateWithAuthorizer(w.ctx, creator, 1, price, creator, w.authorizer.Address(network), w.parameter)
	assert.Nil(t, err)

	produced, err := created.Tx.Produced()
	assert.Nil(t, err)
	for _, u := range produced {
		assert.NotEqual(t, w.project.Address(network), u.Address, "fee is waived")
	}

	signers, err := created.Tx.RequiredSigners()
	assert.Nil(t, err)
	assert.Contains(t, signers, w.authorizer.KeyHash())
	assert.Contains(t, signers, w.creator.KeyHash())

	err = w.submit(t, created.Tx, w.creator)
	assert.Equal(t, fault.ErrMissingSignature, err, "authorizer has not signed")

	err = w.submit(t, created.Tx, w.authorizer)
	assert.Nil(t, err)

	locked, err := w.emulator.UTxOByUnit(w.ctx, created.AssetId)
	assert.Nil(t, err)
	assert.Equal(t, uint64(price+2_000_000), locked.Lovelace())
}

func TestCreateWithUnknownAuthorizer(t *testing.T) {
	w := setup(t)
	raider := w.raider()
	creator := w.creator.Address(network)

	_, err := raider.CreateWithAuthorizer(w.ctx, creator, 1, price, creator, creator, w.parameter)
	assert.Equal(t, fault.ErrUnauthorizedApprover, err)

	_, err = raider.CreateWithAuthorizer(w.ctx, creator, 1, price, creator, "", w.parameter)
	assert.Equal(t, fault.ErrUnauthorizedApprover, err)
}

func TestCreateInvalid(t *testing.T) {
	w := setup(t)
	raider := w.raider()
	creator := w.creator.Address(network)

	_, err := raider.Create(w.ctx, creator, -1, price, creator, w.parameter)
	assert.Equal(t, fault.ErrInvalidQuantity, err)

	_, err = raider.Create(w.ctx, creator, 1, 0, creator, w.parameter)
	assert.Equal(t, fault.ErrInvalidPrice, err)

	plain, err := w.emulator.UTxOsAt(w.ctx, creator)
	assert.Nil(t, err)
	_, err = raider.Create(w.ctx, creator, 1, price, creator, plain[0])
	assert.Equal(t, fault.ErrInvalidParameterRef, err)

	_, err = raider.Create(w.ctx, creator, 10, price, creator, w.parameter)
	assert.Equal(t, fault.ErrInsufficientBalance, err)
}

func TestNotDeployed(t *testing.T) {
	w := setup(t)
	creator := w.creator.Address(network)

	staging := raid.New(w.emulator, w.store, true, logger.New(category))
	_, err := staging.Create(w.ctx, creator, 1, price, creator, w.parameter)
	assert.Equal(t, fault.ErrDeploymentNotFound, err)

	empty := raid.New(w.emulator, registry.NewMemory(), false, logger.New(category))
	_, err = empty.List(w.ctx)
	assert.Equal(t, fault.ErrDeploymentNotFound, err)
}

// a deployment recorded in a fresh store, for mocked ledgers
func recorded(t *testing.T) (registry.Store, *validator.Chain) {
	b, err := blueprint.Parse([]byte(testBlueprint))
	if nil != err {
		t.Fatalf("blueprint error: %s", err)
	}
	c, err := validator.NewResolver(b, network, logger.New(category)).Resolve(signer(t, 0x42).KeyHash())
	if nil != err {
		t.Fatalf("resolve error: %s", err)
	}

	store := registry.NewMemory()
	holder := address.ScriptAddress(network, digest.Sum224([]byte("always fail"))).String()
	err = registry.Save(store, network, false, &registry.Deployment{
		RaidMint: ledger.UTxO{
			OutRef:    ledger.OutRef{TxId: digest.Sum256([]byte("deploy")), Index: 0},
			Address:   holder,
			ScriptRef: &c.RaidMint.Script,
		},
		RaidLock: ledger.UTxO{
			OutRef:    ledger.OutRef{TxId: digest.Sum256([]byte("deploy")), Index: 1},
			Address:   holder,
			ScriptRef: &c.RaidLock.Script,
		},
	})
	if nil != err {
		t.Fatalf("save error: %s", err)
	}
	return store, c
}

func TestLockedElsewhere(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store, c := recorded(t)
	admin := signer(t, 0x42)
	unit := ledger.NewUnit(c.RaidMint.Hash, []byte("raid"))

	packed, err := (&datum.Raid{Quantity: 1, Price: price, Creator: admin.KeyHash()}).Pack()
	assert.Nil(t, err)

	l := mocks.NewMockLedger(ctrl)
	l.EXPECT().Network().Return(network).AnyTimes()
	gomock.InOrder(
		l.EXPECT().UTxOByUnit(gomock.Any(), unit).Return(&ledger.UTxO{
			Address: address.ScriptAddress(network, digest.Sum224([]byte("impostor"))).String(),
			Assets:  ledger.Assets{ledger.Lovelace: 52_000_000, unit: 1},
			Datum:   packed,
		}, nil),
		l.EXPECT().UTxOByUnit(gomock.Any(), unit).Return(&ledger.UTxO{
			Address: c.RaidLock.Address,
			Assets:  ledger.Assets{ledger.Lovelace: 52_000_000, unit: 1},
		}, nil),
	)

	raider := raid.New(l, store, false, logger.New(category))

	_, err = raider.Claim(context.Background(), admin.Address(network), admin.Address(network), unit)
	assert.Equal(t, fault.ErrLockMismatch, err)

	_, err = raider.Remove(context.Background(), admin.Address(network), unit)
	assert.Equal(t, fault.ErrMissingDatum, err)
}

func TestClaimCarriesAssets(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store, c := recorded(t)
	admin := signer(t, 0x42)
	unit := ledger.NewUnit(c.RaidMint.Hash, []byte("raid"))
	foreign := ledger.NewUnit(digest.Sum224([]byte("foreign policy")), []byte("gem"))

	const quantity = 3
	const unitPrice = 10_000_000

	packed, err := (&datum.Raid{Quantity: quantity, Price: unitPrice, Creator: admin.KeyHash()}).Pack()
	assert.Nil(t, err)

	locked := &ledger.UTxO{
		OutRef:  ledger.OutRef{TxId: digest.Sum256([]byte("create")), Index: 0},
		Address: c.RaidLock.Address,
		Assets: ledger.Assets{
			ledger.Lovelace: quantity*unitPrice + 2_000_000,
			unit:            1,
			foreign:         7,
		},
		Datum: packed,
	}
	funds := ledger.UTxO{
		OutRef:  ledger.OutRef{TxId: digest.Sum256([]byte("funds")), Index: 0},
		Address: admin.Address(network),
		Assets:  ledger.Assets{ledger.Lovelace: 100_000_000},
	}

	l := mocks.NewMockLedger(ctrl)
	l.EXPECT().Network().Return(network).AnyTimes()
	l.EXPECT().UTxOByUnit(gomock.Any(), unit).Return(locked, nil)
	l.EXPECT().ProtocolParameters(gomock.Any()).Return(ledger.DefaultProtocolParameters(), nil)
	l.EXPECT().UTxOsAt(gomock.Any(), admin.Address(network)).Return([]ledger.UTxO{funds}, nil)

	raider := raid.New(l, store, false, logger.New(category))
	tx, err := raider.Claim(context.Background(), admin.Address(network), admin.Address(network), unit)
	assert.Nil(t, err)

	produced, err := tx.Produced()
	assert.Nil(t, err)

	var relocked *ledger.UTxO
	for i := range produced {
		if c.RaidLock.Address == produced[i].Address {
			assert.Nil(t, relocked, "more than one output at the raid lock")
			relocked = &produced[i]
		}
	}
	if nil == relocked {
		t.Fatalf("no output at the raid lock")
	}

	assert.Equal(t, uint64(7), relocked.Assets[foreign])
	assert.Equal(t, uint64(1), relocked.Assets[unit])
	assert.Equal(t, uint64((quantity-1)*unitPrice+2_000_000), relocked.Assets.Lovelace())
	assert.Equal(t, 3, len(relocked.Assets))

	remaining, err := datum.UnpackRaid(relocked.Datum)
	assert.Nil(t, err)
	assert.Equal(t, int64(quantity-1), remaining.Quantity)
	assert.Equal(t, uint64(unitPrice), remaining.Price)
	assert.Equal(t, admin.KeyHash(), remaining.Creator)
}

func TestList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store, c := recorded(t)
	live := ledger.NewUnit(c.RaidMint.Hash, []byte("live"))
	burned := ledger.NewUnit(c.RaidMint.Hash, []byte("burned"))

	l := mocks.NewMockLedger(ctrl)
	l.EXPECT().Network().Return(network).AnyTimes()
	l.EXPECT().AssetsByPolicy(gomock.Any(), c.RaidMint.Hash).Return([]ledger.AssetSupply{
		{Unit: burned, Quantity: 0},
		{Unit: live, Quantity: 1},
	}, nil)

	units, err := raid.New(l, store, false, logger.New(category)).List(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, []string{live}, units)
}

func TestLedgerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store, c := recorded(t)
	unit := ledger.NewUnit(c.RaidMint.Hash, []byte("raid"))

	l := mocks.NewMockLedger(ctrl)
	l.EXPECT().Network().Return(network).AnyTimes()
	l.EXPECT().UTxOByUnit(gomock.Any(), unit).Return(nil, fault.ErrInvalidCount)

	admin := signer(t, 0x42).Address(network)
	_, err := raid.New(l, store, false, logger.New(category)).Claim(context.Background(), admin, admin, unit)
	assert.Equal(t, fault.ErrInvalidCount, err)
}
