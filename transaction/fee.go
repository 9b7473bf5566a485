// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"math"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/script"
)

const (
	// bytes charged for every output on top of its own size
	utxoEntryOverhead = 160

	// serialised [vkey, signature]
	vkeyWitnessSize = 101

	// witness set key and array header for the vkeys
	vkeyWitnessOverhead = 4
)

// minimum lovelace an output must hold
func (b *Builder) minLovelace(o *Output) uint64 {
	buffer, err := encMode.Marshal(o)
	if nil != err {
		return math.MaxUint64
	}
	return (utxoEntryOverhead + uint64(len(buffer))) * b.params.CoinsPerUTxOByte
}

// MinLovelace - minimum lovelace for a plain output holding assets
func MinLovelace(params *ledger.ProtocolParameters, to string, assets ledger.Assets) (uint64, error) {
	a, err := address.Parse(to)
	if nil != err {
		return 0, err
	}
	b := &Builder{params: params}
	o, err := b.output(a.Bytes(), assets, nil, nil)
	if nil != err {
		return 0, err
	}
	b.topUp(&o)
	return o.Amount.Coin, nil
}

// size fee + execution fee + reference script fee
func (b *Builder) minFee(tx *Transaction, d *draft) (uint64, error) {
	buffer, err := tx.Bytes()
	if nil != err {
		return 0, err
	}

	witnesses := len(b.witnessKeys(d))
	size := uint64(len(buffer)) + uint64(witnesses)*vkeyWitnessSize
	if 0 != witnesses && 0 == len(tx.Witnesses.VKeys) {
		size += vkeyWitnessOverhead
	}

	fee := b.params.MinFeeA*size + b.params.MinFeeB

	mem := uint64(0)
	steps := uint64(0)
	for _, r := range tx.Witnesses.Redeemers {
		mem += r.ExUnits.Mem
		steps += r.ExUnits.Steps
	}
	if mem > b.params.MaxTxExMem || steps > b.params.MaxTxExSteps {
		return 0, fault.ErrOverflow
	}
	fee += uint64(math.Ceil(b.params.PriceMem*float64(mem) + b.params.PriceStep*float64(steps)))

	referenced := 0
	for _, u := range d.inputs {
		if nil != u.ScriptRef {
			referenced += len(u.ScriptRef.Code)
		}
	}
	for _, u := range b.references {
		if nil != u.ScriptRef {
			referenced += len(u.ScriptRef.Code)
		}
	}
	fee += b.params.RefScriptCost * uint64(referenced)

	return fee, nil
}

// distinct keys expected to sign
func (b *Builder) witnessKeys(d *draft) map[digest.Hash28]struct{} {
	keys := make(map[digest.Hash28]struct{})
	add := func(u ledger.UTxO) {
		if h, err := address.PaymentKeyHash(u.Address); nil == err {
			keys[h] = struct{}{}
		}
	}
	for _, u := range d.inputs {
		add(u)
	}
	if nil != d.collateral {
		add(*d.collateral)
	}
	for _, s := range b.signers {
		keys[s] = struct{}{}
	}
	for _, s := range b.scripts {
		if h, err := script.SignatureKeyHash(s); nil == err {
			keys[h] = struct{}{}
		}
	}
	return keys
}

// hash(redeemers ‖ language views)
//
// no witness datums are used, all datums are inline
func (b *Builder) scriptDataHash(redeemers []Redeemer, sortedInputs []ledger.UTxO) ([]byte, error) {
	encodedRedeemers, err := encMode.Marshal(redeemers)
	if nil != err {
		return nil, err
	}

	views := make(map[uint64][]int64)
	for _, t := range b.languages(sortedInputs) {
		if script.PlutusV1 == t {
			// V1 views use a different, doubly wrapped encoding
			return nil, fault.ErrInvalidScriptType
		}
		costs, ok := b.params.CostModels[t.String()]
		if !ok {
			costs = []int64{}
		}
		views[uint64(t)-1] = costs
	}
	encodedViews, err := encMode.Marshal(views)
	if nil != err {
		return nil, err
	}

	buffer := make([]byte, 0, len(encodedRedeemers)+len(encodedViews))
	buffer = append(buffer, encodedRedeemers...)
	buffer = append(buffer, encodedViews...)
	return digest.Sum256(buffer).Bytes(), nil
}

// Plutus languages of the scripts the redeemers will run
func (b *Builder) languages(sortedInputs []ledger.UTxO) []script.Type {
	purposes := make(map[digest.Hash28]struct{})
	redeemed := make(map[ledger.OutRef]bool)
	for _, c := range b.inputs {
		if nil != c.redeemer {
			redeemed[c.utxo.OutRef] = true
		}
	}
	for _, u := range sortedInputs {
		if !redeemed[u.OutRef] {
			continue
		}
		if h, err := address.PaymentHash(u.Address); nil == err {
			purposes[h] = struct{}{}
		}
	}
	for policy, m := range b.mints {
		if nil != m.redeemer {
			purposes[policy] = struct{}{}
		}
	}

	available := make([]script.Script, 0, len(b.scripts)+len(b.references))
	available = append(available, b.scripts...)
	for _, u := range b.references {
		if nil != u.ScriptRef {
			available = append(available, *u.ScriptRef)
		}
	}
	for _, u := range sortedInputs {
		if nil != u.ScriptRef {
			available = append(available, *u.ScriptRef)
		}
	}

	seen := make(map[script.Type]bool)
	languages := make([]script.Type, 0, 1)
	for _, s := range available {
		if !s.IsPlutus() || seen[s.Type] {
			continue
		}
		if _, ok := purposes[s.Hash()]; !ok {
			continue
		}
		seen[s.Type] = true
		languages = append(languages, s.Type)
	}
	return languages
}

// MinLovelace - minimum lovelace this output must hold as serialised
func (o Output) MinLovelace(params *ledger.ProtocolParameters) uint64 {
	b := &Builder{params: params}
	return b.minLovelace(&o)
}
