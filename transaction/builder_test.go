// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/plutusdata"
	"github.com/bitmark-inc/raiders/script"
	"github.com/bitmark-inc/raiders/transaction"
)

const network = "preprod"

// flat program (lam x x) wrapped as a byte string
const identityProgram = "46010100200101"

func keyHash(b byte) digest.Hash28 {
	h := digest.Hash28{}
	for i := range h {
		h[i] = b
	}
	return h
}

func keyAddress(b byte) string {
	return address.KeyAddress(network, keyHash(b)).String()
}

func utxo(id byte, index uint32, at string, assets ledger.Assets) ledger.UTxO {
	return ledger.UTxO{
		OutRef:  ledger.OutRef{TxId: digest.Hash32{id}, Index: index},
		Address: at,
		Assets:  assets,
	}
}

func lovelace(n uint64) ledger.Assets {
	return ledger.Assets{ledger.Lovelace: n}
}

func identityScript(t *testing.T) script.Script {
	code, err := hex.DecodeString(identityProgram)
	if nil != err {
		t.Fatalf("hex error: %s", err)
	}
	return script.Script{Type: script.PlutusV3, Code: code}
}

// inputs + mint == outputs + fee + burn
func assertBalanced(t *testing.T, tx *transaction.Transaction, known []ledger.UTxO) {
	byRef := make(map[ledger.OutRef]ledger.UTxO)
	for _, u := range known {
		byRef[u.OutRef] = u
	}

	spent, err := tx.Spent()
	if nil != err {
		t.Fatalf("spent error: %s", err)
	}
	supply := ledger.Assets{}
	for _, ref := range spent {
		u, ok := byRef[ref]
		if !ok {
			t.Fatalf("unknown input: %s", ref)
		}
		supply, _ = supply.Add(u.Assets)
	}

	minted, burned, err := tx.Body.Mint.Deltas()
	if nil != err {
		t.Fatalf("mint error: %s", err)
	}
	supply, _ = supply.Add(minted)

	demand := ledger.Assets{ledger.Lovelace: tx.Body.Fee}
	demand, _ = demand.Add(burned)
	produced, err := tx.Produced()
	if nil != err {
		t.Fatalf("produced error: %s", err)
	}
	for _, u := range produced {
		demand, _ = demand.Add(u.Assets)
	}

	leftover, err := supply.Sub(demand)
	if nil != err || 0 != len(leftover) {
		t.Fatalf("unbalanced: supply: %v  demand: %v", supply, demand)
	}
}

func TestSimplePayment(t *testing.T) {
	params := ledger.DefaultProtocolParameters()
	owner := keyAddress(1)
	wallet := []ledger.UTxO{
		utxo(0x10, 0, owner, lovelace(3_000_000)),
		utxo(0x20, 0, owner, lovelace(10_000_000)),
	}

	tx, err := transaction.NewBuilder(network, params).
		Pay(keyAddress(2), lovelace(2_000_000)).
		Message("Simple Payment").
		Complete(wallet, owner)
	if nil != err {
		t.Fatalf("complete error: %s", err)
	}

	// largest first: one input suffices
	assert.Equal(t, 1, len(tx.Body.Inputs), "inputs")
	assert.Equal(t, 2, len(tx.Body.Outputs), "outputs")
	assert.Equal(t, uint64(2_000_000), tx.Body.Outputs[0].Amount.Coin, "payment")
	assert.True(t, tx.Body.Fee > params.MinFeeB, "fee: %d", tx.Body.Fee)
	assert.True(t, tx.Body.Fee < 1_000_000, "fee: %d", tx.Body.Fee)
	assert.Nil(t, tx.Body.ScriptDataHash, "script data hash")
	assert.Nil(t, tx.Body.Collateral, "collateral")
	assert.Equal(t, []string{"Simple Payment"}, tx.Messages(), "messages")
	assert.Equal(t, digest.Sum256(tx.Auxiliary).Bytes(), tx.Body.AuxDataHash, "aux hash")

	assertBalanced(t, tx, wallet)

	// serialisation keeps the id
	buffer, err := tx.Bytes()
	assert.Nil(t, err, "bytes")
	decoded, err := transaction.Decode(buffer)
	assert.Nil(t, err, "decode")
	assert.Equal(t, tx.Id(), decoded.Id(), "id")
	assert.Equal(t, tx.Body.Fee, decoded.Body.Fee, "fee")
	assert.Equal(t, []string{"Simple Payment"}, decoded.Messages(), "decoded messages")
}

func TestDeterministicId(t *testing.T) {
	params := ledger.DefaultProtocolParameters()
	owner := keyAddress(1)
	wallet := []ledger.UTxO{utxo(0x20, 0, owner, lovelace(10_000_000))}

	build := func() digest.Hash32 {
		tx, err := transaction.NewBuilder(network, params).
			Pay(keyAddress(2), lovelace(2_000_000)).
			Complete(wallet, owner)
		if nil != err {
			t.Fatalf("complete error: %s", err)
		}
		return tx.Id()
	}
	assert.Equal(t, build(), build(), "id")
}

func TestMinimumLovelaceTopUp(t *testing.T) {
	params := ledger.DefaultProtocolParameters()
	owner := keyAddress(1)
	wallet := []ledger.UTxO{utxo(0x20, 0, owner, lovelace(10_000_000))}

	tx, err := transaction.NewBuilder(network, params).
		Pay(keyAddress(2), lovelace(1)).
		Complete(wallet, owner)
	if nil != err {
		t.Fatalf("complete error: %s", err)
	}

	minimum, err := transaction.MinLovelace(params, keyAddress(2), lovelace(1))
	assert.Nil(t, err, "min lovelace")
	assert.True(t, minimum > 800_000, "minimum: %d", minimum)
	assert.Equal(t, minimum, tx.Body.Outputs[0].Amount.Coin, "topped up")
	assertBalanced(t, tx, wallet)
}

func TestInsufficientBalance(t *testing.T) {
	owner := keyAddress(1)
	wallet := []ledger.UTxO{utxo(0x20, 0, owner, lovelace(1_000_000))}

	_, err := transaction.NewBuilder(network, ledger.DefaultProtocolParameters()).
		Pay(keyAddress(2), lovelace(5_000_000)).
		Complete(wallet, owner)
	assert.Equal(t, fault.ErrInsufficientBalance, err, "error")
}

func TestChangeTooSmallPullsMoreInputs(t *testing.T) {
	params := ledger.DefaultProtocolParameters()
	owner := keyAddress(1)
	wallet := []ledger.UTxO{
		utxo(0x10, 0, owner, lovelace(5_100_000)),
		utxo(0x20, 0, owner, lovelace(4_000_000)),
	}

	// 5.1 ADA alone would leave change below its minimum
	tx, err := transaction.NewBuilder(network, params).
		Pay(keyAddress(2), lovelace(5_000_000)).
		Complete(wallet, owner)
	if nil != err {
		t.Fatalf("complete error: %s", err)
	}
	assert.Equal(t, 2, len(tx.Body.Inputs), "inputs")
	assertBalanced(t, tx, wallet)
}

func TestNetworkMismatch(t *testing.T) {
	owner := keyAddress(1)
	mainnet := address.KeyAddress("mainnet", keyHash(2)).String()
	wallet := []ledger.UTxO{utxo(0x20, 0, owner, lovelace(10_000_000))}

	_, err := transaction.NewBuilder(network, ledger.DefaultProtocolParameters()).
		Pay(mainnet, lovelace(2_000_000)).
		Complete(wallet, owner)
	assert.Equal(t, fault.ErrInvalidAddressNetwork, err, "error")
}

func TestDuplicateInput(t *testing.T) {
	owner := keyAddress(1)
	u := utxo(0x20, 0, owner, lovelace(10_000_000))

	_, err := transaction.NewBuilder(network, ledger.DefaultProtocolParameters()).
		CollectFrom([]ledger.UTxO{u}, nil).
		CollectFrom([]ledger.UTxO{u}, nil).
		Complete(nil, owner)
	assert.Equal(t, fault.ErrDuplicateInput, err, "error")
}

func TestMintWithRedeemer(t *testing.T) {
	params := ledger.DefaultProtocolParameters()
	policy := identityScript(t)
	unit := ledger.NewUnit(policy.Hash(), []byte("raid"))

	owner := keyAddress(1)
	wallet := []ledger.UTxO{
		utxo(0x10, 0, owner, lovelace(20_000_000)),
		utxo(0x11, 0, owner, lovelace(6_000_000)),
	}

	datum, err := plutusdata.Pack(plutusdata.Int(7))
	assert.Nil(t, err, "pack")

	tx, err := transaction.NewBuilder(network, params).
		Attach(policy).
		Mint(unit, 1, plutusdata.Void()).
		PayWithData(keyAddress(3), datum, ledger.Assets{ledger.Lovelace: 2_000_000, unit: 1}).
		Complete(wallet, owner)
	if nil != err {
		t.Fatalf("complete error: %s", err)
	}

	assert.Equal(t, 1, len(tx.Witnesses.Redeemers), "redeemers")
	r := tx.Witnesses.Redeemers[0]
	assert.Equal(t, uint64(transaction.PurposeMint), r.Tag, "purpose")
	assert.Equal(t, uint64(0), r.Index, "index")
	assert.Equal(t, 1, len(tx.Witnesses.PlutusV3), "attached")
	assert.Equal(t, 32, len(tx.Body.ScriptDataHash), "script data hash")

	assert.Equal(t, 1, len(tx.Body.Collateral), "collateral")
	assert.True(t, tx.Body.TotalCollateral*100 >= tx.Body.Fee*params.CollateralPercent, "total collateral")

	produced, err := tx.Produced()
	assert.Nil(t, err, "produced")
	assert.Equal(t, uint64(1), produced[0].Assets[unit], "minted token")
	assert.Equal(t, plutusdata.Packed(datum), produced[0].Datum, "datum")

	assertBalanced(t, tx, wallet)
}

func TestBurnAndSpendRedeemerIndex(t *testing.T) {
	params := ledger.DefaultProtocolParameters()
	lock := identityScript(t)
	lockAddress := address.ScriptAddress(network, lock.Hash()).String()
	unit := ledger.NewUnit(lock.Hash(), []byte{0x01})

	owner := keyAddress(1)
	locked := utxo(0x50, 3, lockAddress, ledger.Assets{ledger.Lovelace: 12_000_000, unit: 1})
	wallet := []ledger.UTxO{
		utxo(0x10, 0, owner, lovelace(8_000_000)),
		utxo(0x90, 0, owner, lovelace(5_000_000)),
	}

	tx, err := transaction.NewBuilder(network, params).
		Attach(lock).
		CollectFrom([]ledger.UTxO{locked}, plutusdata.NewConstr(1)).
		Mint(unit, -1, plutusdata.NewConstr(1)).
		AddSigner(keyHash(9)).
		Complete(wallet, owner)
	if nil != err {
		t.Fatalf("complete error: %s", err)
	}

	// the locked output pays for everything so no wallet input is needed
	spent, err := tx.Spent()
	assert.Nil(t, err, "spent")
	assert.Equal(t, []ledger.OutRef{locked.OutRef}, spent, "inputs")

	assert.Equal(t, 2, len(tx.Witnesses.Redeemers), "redeemers")
	for _, r := range tx.Witnesses.Redeemers {
		assert.Equal(t, uint64(0), r.Index, "index of purpose %d", r.Tag)
	}
	assert.Equal(t, [][]byte{keyHash(9).Bytes()}, tx.Body.RequiredSigners, "signers")

	// collateral comes from the wallet, the smallest that works
	collateral, err := tx.CollateralInputs()
	assert.Nil(t, err, "collateral")
	assert.Equal(t, []ledger.OutRef{wallet[1].OutRef}, collateral, "collateral")

	_, burned, err := tx.Body.Mint.Deltas()
	assert.Nil(t, err, "deltas")
	assert.Equal(t, uint64(1), burned[unit], "burned")

	assertBalanced(t, tx, append(wallet, locked))
}

func TestSpendIndexFollowsLedgerOrder(t *testing.T) {
	params := ledger.DefaultProtocolParameters()
	lock := identityScript(t)
	lockAddress := address.ScriptAddress(network, lock.Hash()).String()

	owner := keyAddress(1)
	locked := utxo(0x80, 0, lockAddress, lovelace(3_000_000))
	funding := utxo(0x10, 0, owner, lovelace(10_000_000))

	tx, err := transaction.NewBuilder(network, params).
		Attach(lock).
		CollectFrom([]ledger.UTxO{funding}, nil).
		CollectFrom([]ledger.UTxO{locked}, plutusdata.Void()).
		Pay(keyAddress(2), lovelace(4_000_000)).
		Complete(nil, owner)
	if nil != err {
		t.Fatalf("complete error: %s", err)
	}

	// 0x10… sorts before 0x80…
	assert.Equal(t, 1, len(tx.Witnesses.Redeemers), "redeemers")
	assert.Equal(t, uint64(1), tx.Witnesses.Redeemers[0].Index, "index")
	assertBalanced(t, tx, []ledger.UTxO{funding, locked})
}

func TestNoCollateralAvailable(t *testing.T) {
	policy := identityScript(t)
	unit := ledger.NewUnit(policy.Hash(), []byte("x"))
	owner := keyAddress(1)

	// the only funding carries a token so cannot be collateral
	other := ledger.NewUnit(keyHash(7), []byte("y"))
	wallet := []ledger.UTxO{utxo(0x10, 0, owner, ledger.Assets{ledger.Lovelace: 20_000_000, other: 1})}

	_, err := transaction.NewBuilder(network, ledger.DefaultProtocolParameters()).
		Attach(policy).
		Mint(unit, 1, plutusdata.Void()).
		Complete(wallet, owner)
	assert.Equal(t, fault.ErrInsufficientCollateral, err, "error")
}

func TestReferenceScriptOutput(t *testing.T) {
	params := ledger.DefaultProtocolParameters()
	owner := keyAddress(1)
	wallet := []ledger.UTxO{utxo(0x20, 0, owner, lovelace(50_000_000))}
	s := identityScript(t)
	native := script.NativeSignature(keyHash(4))

	tx, err := transaction.NewBuilder(network, params).
		PayWithScript(keyAddress(5), plutusdata.Packed{0xd8, 0x79, 0x80}, s, ledger.Assets{}).
		PayWithScript(keyAddress(5), plutusdata.Packed{0xd8, 0x79, 0x80}, native, ledger.Assets{}).
		Complete(wallet, owner)
	if nil != err {
		t.Fatalf("complete error: %s", err)
	}

	produced, err := tx.Produced()
	assert.Nil(t, err, "produced")
	assert.Equal(t, s, *produced[0].ScriptRef, "plutus reference script")
	assert.Equal(t, native, *produced[1].ScriptRef, "native reference script")
	assert.Equal(t, s.Hash(), produced[0].ScriptRef.Hash(), "hash")
	assert.Equal(t, "d87980", produced[0].Datum.String(), "datum")
	assert.Equal(t, keyAddress(5), produced[0].Address, "address")
	assert.Equal(t, tx.Id(), produced[1].TxId, "id")
	assert.Equal(t, uint32(1), produced[1].Index, "index")
}

func TestLongMessageIsSplit(t *testing.T) {
	owner := keyAddress(1)
	wallet := []ledger.UTxO{utxo(0x20, 0, owner, lovelace(10_000_000))}
	long := strings.Repeat("x", 150)

	tx, err := transaction.NewBuilder(network, ledger.DefaultProtocolParameters()).
		Message(long).
		Complete(wallet, owner)
	if nil != err {
		t.Fatalf("complete error: %s", err)
	}
	lines := tx.Messages()
	assert.Equal(t, 3, len(lines), "lines")
	assert.Equal(t, long, strings.Join(lines, ""), "content")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := transaction.Decode([]byte{0x84, 0x01})
	assert.True(t, fault.IsErrRecord(err), "error: %v", err)

	_, err = transaction.DecodeHex("zz")
	assert.Equal(t, fault.ErrInvalidHexString, err, "hex")
}
