// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package emulator

import (
	"bytes"
	"context"
	"sort"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/script"
	"github.com/bitmark-inc/raiders/transaction"
	"github.com/bitmark-inc/raiders/wallet"
)

// Submit - validate and apply a signed transaction
func (e *Emulator) Submit(ctx context.Context, buffer []byte) (digest.Hash32, error) {
	if err := ctx.Err(); nil != err {
		return digest.Hash32{}, err
	}

	tx, err := transaction.Decode(buffer)
	if nil != err {
		return digest.Hash32{}, err
	}
	id := tx.Id()

	e.Lock()
	defer e.Unlock()

	if _, ok := e.transactions[id]; ok {
		return digest.Hash32{}, fault.ErrInputAlreadySpent
	}

	err = e.validate(tx)
	if nil != err {
		e.log.Warnf("reject: %s  error: %s", id, err)
		return digest.Hash32{}, err
	}

	err = e.apply(tx)
	if nil != err {
		return digest.Hash32{}, err
	}

	e.log.Infof("accept: %s  height: %d", id, e.height)
	return id, nil
}

// phase one checks, everything short of running Plutus programs
func (e *Emulator) validate(tx *transaction.Transaction) error {
	if !tx.Valid {
		return fault.ErrInvalidTransaction
	}
	if 0 == len(tx.Body.Inputs) {
		return fault.ErrInvalidTransaction
	}

	spent, err := tx.Spent()
	if nil != err {
		return err
	}
	inputs, err := e.lookup(spent, fault.ErrInputAlreadySpent)
	if nil != err {
		return err
	}
	referencedRefs, err := tx.Referenced()
	if nil != err {
		return err
	}
	referenced, err := e.lookup(referencedRefs, fault.ErrUTxONotFound)
	if nil != err {
		return err
	}
	collateralRefs, err := tx.CollateralInputs()
	if nil != err {
		return err
	}
	collateral, err := e.lookup(collateralRefs, fault.ErrUTxONotFound)
	if nil != err {
		return err
	}

	signed, err := wallet.Verify(tx)
	if nil != err {
		return err
	}

	// scripts available to this transaction by hash
	scripts := make(map[digest.Hash28]script.Script)
	for _, s := range tx.Witnesses.Scripts() {
		scripts[s.Hash()] = s
	}
	for _, group := range [][]ledger.UTxO{inputs, referenced} {
		for _, u := range group {
			if nil != u.ScriptRef {
				scripts[u.ScriptRef.Hash()] = *u.ScriptRef
			}
		}
	}

	redeemers := make(map[[2]uint64]bool, len(tx.Witnesses.Redeemers))
	for _, r := range tx.Witnesses.Redeemers {
		redeemers[[2]uint64{r.Tag, r.Index}] = true
	}

	// spending: key inputs need a signature, script inputs a script
	ledger.SortByOutRef(inputs)
	for i, u := range inputs {
		a, err := address.Parse(u.Address)
		if nil != err {
			return err
		}
		err = e.authorise(a.Payment, scripts, signed, redeemers, transaction.PurposeSpend, uint64(i))
		if nil != err {
			return err
		}
		if address.ScriptHash == a.Payment.Type && !isNative(scripts[a.Payment.Hash]) && 0 == len(u.Datum) {
			return fault.ErrMissingDatum
		}
	}

	// minting: every policy needs its script
	policies := make([][]byte, 0, len(tx.Body.Mint))
	for p := range tx.Body.Mint {
		policies = append(policies, []byte(p))
	}
	sort.Slice(policies, func(i, j int) bool {
		return bytes.Compare(policies[i], policies[j]) < 0
	})
	for i, p := range policies {
		var policy digest.Hash28
		if nil != digest.Hash28FromBytes(&policy, p) {
			return fault.ErrInvalidPolicyId
		}
		credential := address.Credential{Type: address.ScriptHash, Hash: policy}
		err = e.authorise(credential, scripts, signed, redeemers, transaction.PurposeMint, uint64(i))
		if nil != err {
			return err
		}
	}

	requiredSigners, err := tx.RequiredSigners()
	if nil != err {
		return err
	}
	for _, h := range requiredSigners {
		if _, ok := signed[h]; !ok {
			return fault.ErrMissingSignature
		}
	}

	if 0 != len(tx.Witnesses.Redeemers) {
		if 0 == len(collateral) {
			return fault.ErrInsufficientCollateral
		}
		for _, u := range collateral {
			h, err := address.PaymentKeyHash(u.Address)
			if nil != err {
				return err
			}
			if _, ok := signed[h]; !ok {
				return fault.ErrMissingSignature
			}
		}
		err = e.collateralCovers(tx, collateral)
		if nil != err {
			return err
		}
	}

	return e.conserved(tx, inputs)
}

func (e *Emulator) lookup(refs []ledger.OutRef, missing error) ([]ledger.UTxO, error) {
	seen := make(map[ledger.OutRef]bool, len(refs))
	utxos := make([]ledger.UTxO, 0, len(refs))
	for _, ref := range refs {
		if seen[ref] {
			return nil, fault.ErrDuplicateInput
		}
		seen[ref] = true
		u, ok := e.utxos[ref]
		if !ok {
			return nil, missing
		}
		utxos = append(utxos, u)
	}
	return utxos, nil
}

func isNative(s script.Script) bool {
	return script.Native == s.Type && 0 != len(s.Code)
}

// collateral less its return must reach the fee scaled by the
// collateral percentage, and match any declared total
func (e *Emulator) collateralCovers(tx *transaction.Transaction, collateral []ledger.UTxO) error {
	total := uint64(0)
	for _, u := range collateral {
		total += u.Lovelace()
	}
	if nil != tx.Body.CollateralReturn {
		returned := tx.Body.CollateralReturn.Amount.Coin
		if returned > total {
			return fault.ErrInsufficientCollateral
		}
		total -= returned
	}
	if 0 != tx.Body.TotalCollateral && total != tx.Body.TotalCollateral {
		return fault.ErrInsufficientCollateral
	}

	required := (tx.Body.Fee*e.params.CollateralPercent + 99) / 100
	if total < required {
		return fault.ErrInsufficientCollateral
	}
	return nil
}

// check that a credential is satisfied
func (e *Emulator) authorise(
	credential address.Credential,
	scripts map[digest.Hash28]script.Script,
	signed map[digest.Hash28]struct{},
	redeemers map[[2]uint64]bool,
	purpose uint64,
	index uint64,
) error {
	if address.KeyHash == credential.Type {
		if _, ok := signed[credential.Hash]; !ok {
			return fault.ErrMissingSignature
		}
		return nil
	}

	s, ok := scripts[credential.Hash]
	if !ok {
		return fault.ErrScriptNotFound
	}
	if !s.IsPlutus() {
		keyHash, err := script.SignatureKeyHash(s)
		if nil != err {
			return err
		}
		if _, ok := signed[keyHash]; !ok {
			return fault.ErrMissingSignature
		}
		return nil
	}
	if !redeemers[[2]uint64{purpose, index}] {
		return fault.ErrMissingRedeemer
	}
	return nil
}

// inputs + minted = outputs + fee + burned
func (e *Emulator) conserved(tx *transaction.Transaction, inputs []ledger.UTxO) error {
	minted, burned, err := tx.Body.Mint.Deltas()
	if nil != err {
		return err
	}

	consumed := minted
	for _, u := range inputs {
		consumed, err = consumed.Add(u.Assets)
		if nil != err {
			return err
		}
	}

	produced := burned
	produced, err = produced.Add(ledger.Assets{ledger.Lovelace: tx.Body.Fee})
	if nil != err {
		return err
	}
	outputs, err := tx.Produced()
	if nil != err {
		return err
	}
	for i, u := range outputs {
		if u.Lovelace() < tx.Body.Outputs[i].MinLovelace(e.params) {
			return fault.ErrOutputTooSmall
		}
		produced, err = produced.Add(u.Assets)
		if nil != err {
			return err
		}
	}

	if !consumed.Covers(produced) || !produced.Covers(consumed) {
		return fault.ErrUnbalancedTransaction
	}
	return nil
}

// remove spent outputs, add produced ones and adjust supply
func (e *Emulator) apply(tx *transaction.Transaction) error {
	spent, err := tx.Spent()
	if nil != err {
		return err
	}
	produced, err := tx.Produced()
	if nil != err {
		return err
	}
	minted, burned, err := tx.Body.Mint.Deltas()
	if nil != err {
		return err
	}

	for _, ref := range spent {
		delete(e.utxos, ref)
	}
	for _, u := range produced {
		e.utxos[u.OutRef] = u
	}
	for unit, quantity := range minted {
		e.supply[unit] += quantity
	}
	for unit, quantity := range burned {
		if e.supply[unit] < quantity {
			e.supply[unit] = 0
		} else {
			e.supply[unit] -= quantity
		}
	}

	e.height += 1
	e.transactions[tx.Id()] = e.height
	return nil
}
