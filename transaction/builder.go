// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"bytes"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/chain"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/plutusdata"
	"github.com/bitmark-inc/raiders/script"
)

// transaction message metadata (CIP-20)
const (
	messageLabel     = 674
	messageKey       = "msg"
	maxMessageLength = 64
)

// rounds of fee estimation before giving up
const maxIterations = 10

// DefaultExUnits - budget given to each redeemer
//
// no script is evaluated here, so every execution is allowed a
// fixed share of the per transaction maximum
var DefaultExUnits = ExUnits{Mem: 3_500_000, Steps: 1_400_000_000}

type collected struct {
	utxo     ledger.UTxO
	redeemer plutusdata.Data
}

type minting struct {
	assets   map[string]int64
	redeemer plutusdata.Data
}

type payment struct {
	address   string
	assets    ledger.Assets
	datum     plutusdata.Packed
	scriptRef *script.Script
}

// Builder - accumulates the parts of a transaction
//
// methods may be chained; the first error is kept and returned
// by Complete
type Builder struct {
	network    string
	params     *ledger.ProtocolParameters
	inputs     []collected
	references []ledger.UTxO
	mints      map[digest.Hash28]*minting
	scripts    []script.Script
	payments   []payment
	signers    []digest.Hash28
	messages   []string
	budget     ExUnits
	err        error
}

// NewBuilder - start a transaction for a network
func NewBuilder(network string, params *ledger.ProtocolParameters) *Builder {
	b := &Builder{
		network: network,
		params:  params,
		mints:   make(map[digest.Hash28]*minting),
		budget:  DefaultExUnits,
	}
	if !chain.Valid(network) {
		b.err = fault.ErrInvalidChain
	}
	return b
}

func (b *Builder) fail(err error) *Builder {
	if nil == b.err {
		b.err = err
	}
	return b
}

// ReadFrom - reference inputs, read but not consumed
func (b *Builder) ReadFrom(utxos ...ledger.UTxO) *Builder {
	b.references = append(b.references, utxos...)
	return b
}

// CollectFrom - consume inputs, a nil redeemer for key locked inputs
func (b *Builder) CollectFrom(utxos []ledger.UTxO, redeemer plutusdata.Data) *Builder {
	for _, u := range utxos {
		for _, c := range b.inputs {
			if c.utxo.OutRef == u.OutRef {
				return b.fail(fault.ErrDuplicateInput)
			}
		}
		b.inputs = append(b.inputs, collected{utxo: u, redeemer: redeemer})
	}
	return b
}

// Mint - mint (positive) or burn (negative) a unit
//
// a nil redeemer marks a native policy; all units of one policy
// share the last redeemer given
func (b *Builder) Mint(unit string, quantity int64, redeemer plutusdata.Data) *Builder {
	policy, name, err := ledger.SplitUnit(unit)
	if nil != err {
		return b.fail(err)
	}
	m, ok := b.mints[policy]
	if !ok {
		m = &minting{assets: make(map[string]int64)}
		b.mints[policy] = m
	}
	m.assets[string(name)] += quantity
	if nil != redeemer {
		m.redeemer = redeemer
	}
	return b
}

// Attach - carry a script in the witness set
func (b *Builder) Attach(s script.Script) *Builder {
	for _, existing := range b.scripts {
		if existing.Hash() == s.Hash() {
			return b
		}
	}
	b.scripts = append(b.scripts, s)
	return b
}

// Pay - plain output
func (b *Builder) Pay(to string, assets ledger.Assets) *Builder {
	b.payments = append(b.payments, payment{address: to, assets: assets.Clone()})
	return b
}

// PayWithData - output carrying an inline datum
func (b *Builder) PayWithData(to string, datum plutusdata.Packed, assets ledger.Assets) *Builder {
	b.payments = append(b.payments, payment{address: to, assets: assets.Clone(), datum: datum})
	return b
}

// PayWithScript - output carrying an inline datum and a reference script
func (b *Builder) PayWithScript(to string, datum plutusdata.Packed, s script.Script, assets ledger.Assets) *Builder {
	b.payments = append(b.payments, payment{address: to, assets: assets.Clone(), datum: datum, scriptRef: &s})
	return b
}

// AddSigner - key that must sign
func (b *Builder) AddSigner(keyHash digest.Hash28) *Builder {
	for _, s := range b.signers {
		if s == keyHash {
			return b
		}
	}
	b.signers = append(b.signers, keyHash)
	return b
}

// Message - lines of a transaction message
func (b *Builder) Message(lines ...string) *Builder {
	b.messages = append(b.messages, lines...)
	return b
}

// Budget - execution units allowed for each redeemer
func (b *Builder) Budget(units ExUnits) *Builder {
	b.budget = units
	return b
}

// state of one balancing round
type draft struct {
	inputs     []ledger.UTxO
	change     *Output
	collateral *ledger.UTxO
	returned   *Output
	total      uint64
	fee        uint64
}

// Complete - balance, fund and finalise the transaction
//
// wallet outputs are only consumed as needed; leftover value is
// returned to the change address
func (b *Builder) Complete(wallet []ledger.UTxO, change string) (*Transaction, error) {
	if nil != b.err {
		return nil, b.err
	}
	if nil == b.params {
		return nil, fault.ErrNotInitialised
	}
	if "" == change {
		return nil, fault.ErrNoChangeAddress
	}

	changeAddress, err := b.addressBytes(change)
	if nil != err {
		return nil, err
	}

	outputs, err := b.outputs()
	if nil != err {
		return nil, err
	}

	mint, minted, burned, err := b.mintValue()
	if nil != err {
		return nil, err
	}

	d := &draft{
		inputs: make([]ledger.UTxO, 0, len(b.inputs)+2),
	}
	used := make(map[ledger.OutRef]bool)
	for _, c := range b.inputs {
		d.inputs = append(d.inputs, c.utxo)
		used[c.utxo.OutRef] = true
	}
	candidates := b.candidates(wallet, used)

	auxiliary, err := b.auxiliary()
	if nil != err {
		return nil, err
	}

	for i := 0; i < maxIterations; i += 1 {
		candidates, err = b.balance(d, candidates, outputs, minted, burned, changeAddress)
		if nil != err {
			return nil, err
		}

		tx, err := b.assemble(d, outputs, mint, auxiliary)
		if nil != err {
			return nil, err
		}

		if 0 != len(tx.Witnesses.Redeemers) {
			err = b.chooseCollateral(d, candidates, changeAddress)
			if nil != err {
				return nil, err
			}
			tx, err = b.assemble(d, outputs, mint, auxiliary)
			if nil != err {
				return nil, err
			}
		}

		required, err := b.minFee(tx, d)
		if nil != err {
			return nil, err
		}
		if required <= d.fee {
			return tx, nil
		}
		d.fee = required
	}
	return nil, fault.ErrFeeNotConverged
}

// add wallet inputs until the value balances and change can stand
func (b *Builder) balance(d *draft, candidates []ledger.UTxO, outputs []Output, minted ledger.Assets, burned ledger.Assets, changeAddress []byte) ([]ledger.UTxO, error) {
	demand, err := outputTotal(outputs)
	if nil != err {
		return nil, err
	}
	demand, err = demand.Add(burned)
	if nil != err {
		return nil, err
	}
	demand, err = demand.Add(ledger.Assets{ledger.Lovelace: d.fee})
	if nil != err {
		return nil, err
	}

	for {
		supply, err := utxoTotal(d.inputs)
		if nil != err {
			return nil, err
		}
		supply, err = supply.Add(minted)
		if nil != err {
			return nil, err
		}

		leftover, err := supply.Sub(demand)
		if nil == err {
			if 0 == len(leftover) {
				d.change = nil
				return candidates, nil
			}
			o, err := b.output(changeAddress, leftover, nil, nil)
			if nil != err {
				return nil, err
			}
			if leftover.Lovelace() >= b.minLovelace(&o) {
				d.change = &o
				return candidates, nil
			}
		}

		k := pick(candidates, supply, demand)
		if k < 0 {
			return nil, fault.ErrInsufficientBalance
		}
		d.inputs = append(d.inputs, candidates[k])
		candidates = append(candidates[:k:k], candidates[k+1:]...)
	}
}

// prefer an output holding a missing token, otherwise the largest
func pick(candidates []ledger.UTxO, supply ledger.Assets, demand ledger.Assets) int {
	if 0 == len(candidates) {
		return -1
	}
	for unit, wanted := range demand {
		if ledger.Lovelace == unit || supply[unit] >= wanted {
			continue
		}
		for i, c := range candidates {
			if 0 != c.Assets[unit] {
				return i
			}
		}
	}
	return 0
}

// wallet outputs usable for funding, largest first
func (b *Builder) candidates(wallet []ledger.UTxO, used map[ledger.OutRef]bool) []ledger.UTxO {
	candidates := make([]ledger.UTxO, 0, len(wallet))
	for _, u := range wallet {
		if used[u.OutRef] || nil != u.ScriptRef {
			continue
		}
		used[u.OutRef] = true
		candidates = append(candidates, u)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Lovelace() > candidates[j].Lovelace()
	})
	return candidates
}

// smallest pure lovelace key output that covers the collateral
// and leaves a valid return output
func (b *Builder) chooseCollateral(d *draft, candidates []ledger.UTxO, changeAddress []byte) error {
	total := (d.fee*b.params.CollateralPercent + 99) / 100

	pool := make([]ledger.UTxO, 0, len(candidates)+len(d.inputs))
	pool = append(pool, d.inputs...)
	pool = append(pool, candidates...)

	var best *ledger.UTxO
	var bestReturn *Output
	for i := range pool {
		u := pool[i]
		if 0 != len(u.Assets.Units()) || nil != u.ScriptRef || u.Lovelace() < total {
			continue
		}
		if _, err := address.PaymentKeyHash(u.Address); nil != err {
			continue
		}

		var returned *Output
		if remaining := u.Lovelace() - total; 0 != remaining {
			o, err := b.output(changeAddress, ledger.Assets{ledger.Lovelace: remaining}, nil, nil)
			if nil != err {
				return err
			}
			if remaining < b.minLovelace(&o) {
				continue
			}
			returned = &o
		}
		if nil == best || u.Lovelace() < best.Lovelace() {
			best = &pool[i]
			bestReturn = returned
		}
	}
	if nil == best {
		return fault.ErrInsufficientCollateral
	}

	d.collateral = best
	d.returned = bestReturn
	d.total = total
	return nil
}

// build the transaction for the current draft
func (b *Builder) assemble(d *draft, outputs []Output, mint Mint, auxiliary cbor.RawMessage) (*Transaction, error) {
	inputs := make([]ledger.UTxO, len(d.inputs))
	copy(inputs, d.inputs)
	ledger.SortByOutRef(inputs)

	body := Body{
		Inputs:  make([]Input, len(inputs)),
		Outputs: make([]Output, 0, len(outputs)+1),
		Fee:     d.fee,
		Mint:    mint,
	}
	for i, u := range inputs {
		body.Inputs[i] = inputOf(u.OutRef)
	}
	body.Outputs = append(body.Outputs, outputs...)
	if nil != d.change {
		body.Outputs = append(body.Outputs, *d.change)
	}

	if 0 != len(b.references) {
		references := make([]ledger.UTxO, len(b.references))
		copy(references, b.references)
		ledger.SortByOutRef(references)
		body.ReferenceInputs = make([]Input, len(references))
		for i, u := range references {
			body.ReferenceInputs[i] = inputOf(u.OutRef)
		}
	}

	for _, s := range b.signers {
		body.RequiredSigners = append(body.RequiredSigners, s.Bytes())
	}

	witnesses := WitnessSet{}
	for _, s := range b.scripts {
		witnesses.attach(s)
	}

	redeemers, err := b.redeemers(inputs)
	if nil != err {
		return nil, err
	}
	if 0 != len(redeemers) {
		witnesses.Redeemers = redeemers
		body.ScriptDataHash, err = b.scriptDataHash(redeemers, inputs)
		if nil != err {
			return nil, err
		}
		if nil != d.collateral {
			body.Collateral = []Input{inputOf(d.collateral.OutRef)}
			body.CollateralReturn = d.returned
			body.TotalCollateral = d.total
		}
	}

	if 0 != len(auxiliary) {
		body.AuxDataHash = digest.Sum256(auxiliary).Bytes()
	}

	return newTransaction(body, witnesses, auxiliary)
}

// spend redeemers index the sorted inputs, mint redeemers the
// sorted policy ids
func (b *Builder) redeemers(sortedInputs []ledger.UTxO) ([]Redeemer, error) {
	byRef := make(map[ledger.OutRef]plutusdata.Data, len(b.inputs))
	for _, c := range b.inputs {
		if nil != c.redeemer {
			byRef[c.utxo.OutRef] = c.redeemer
		}
	}

	redeemers := make([]Redeemer, 0, len(byRef)+len(b.mints))
	for i, u := range sortedInputs {
		r, ok := byRef[u.OutRef]
		if !ok {
			continue
		}
		packed, err := plutusdata.Pack(r)
		if nil != err {
			return nil, err
		}
		redeemers = append(redeemers, Redeemer{
			Tag:     PurposeSpend,
			Index:   uint64(i),
			Data:    cbor.RawMessage(packed),
			ExUnits: b.budget,
		})
	}

	for i, policy := range b.policies() {
		m := b.mints[policy]
		if nil == m.redeemer {
			continue
		}
		packed, err := plutusdata.Pack(m.redeemer)
		if nil != err {
			return nil, err
		}
		redeemers = append(redeemers, Redeemer{
			Tag:     PurposeMint,
			Index:   uint64(i),
			Data:    cbor.RawMessage(packed),
			ExUnits: b.budget,
		})
	}
	return redeemers, nil
}

// policies in ledger order
func (b *Builder) policies() []digest.Hash28 {
	policies := make([]digest.Hash28, 0, len(b.mints))
	for p := range b.mints {
		policies = append(policies, p)
	}
	sort.Slice(policies, func(i, j int) bool {
		return bytes.Compare(policies[i][:], policies[j][:]) < 0
	})
	return policies
}

func (b *Builder) mintValue() (Mint, ledger.Assets, ledger.Assets, error) {
	if 0 == len(b.mints) {
		return nil, ledger.Assets{}, ledger.Assets{}, nil
	}
	mint := make(Mint)
	for policy, m := range b.mints {
		names := make(map[cbor.ByteString]int64)
		for name, quantity := range m.assets {
			if 0 != quantity {
				names[cbor.ByteString(name)] = quantity
			}
		}
		if 0 != len(names) {
			mint[cbor.ByteString(policy[:])] = names
		}
	}
	minted, burned, err := mint.Deltas()
	if nil != err {
		return nil, nil, nil, err
	}
	if 0 == len(mint) {
		mint = nil
	}
	return mint, minted, burned, nil
}

// payments as outputs each holding at least the minimum lovelace
func (b *Builder) outputs() ([]Output, error) {
	outputs := make([]Output, len(b.payments))
	for i, p := range b.payments {
		to, err := b.addressBytes(p.address)
		if nil != err {
			return nil, err
		}
		o, err := b.output(to, p.assets, p.datum, p.scriptRef)
		if nil != err {
			return nil, err
		}
		b.topUp(&o)
		outputs[i] = o
	}
	return outputs, nil
}

func (b *Builder) output(to []byte, assets ledger.Assets, datum plutusdata.Packed, s *script.Script) (Output, error) {
	value, err := valueOf(assets)
	if nil != err {
		return Output{}, err
	}
	o := Output{
		Address: to,
		Amount:  value,
	}
	if 0 != len(datum) {
		o.Datum, err = inlineDatumOf(datum)
		if nil != err {
			return Output{}, err
		}
	}
	if nil != s {
		o.ScriptRef, err = scriptRefOf(*s)
		if nil != err {
			return Output{}, err
		}
	}
	return o, nil
}

// raise lovelace to the minimum; more lovelace can lengthen the
// encoding so repeat until stable
func (b *Builder) topUp(o *Output) {
	for i := 0; i < 3; i += 1 {
		minimum := b.minLovelace(o)
		if o.Amount.Coin >= minimum {
			return
		}
		o.Amount.Coin = minimum
	}
}

func (b *Builder) addressBytes(s string) ([]byte, error) {
	a, err := address.Parse(s)
	if nil != err {
		return nil, err
	}
	if chain.NetworkId(b.network) != a.NetworkId {
		return nil, fault.ErrInvalidAddressNetwork
	}
	return a.Bytes(), nil
}

// label 674 {"msg": [lines]} with long lines split
func (b *Builder) auxiliary() (cbor.RawMessage, error) {
	if 0 == len(b.messages) {
		return nil, nil
	}
	lines := make([]string, 0, len(b.messages))
	for _, m := range b.messages {
		lines = append(lines, splitMessage(m)...)
	}
	aux := map[uint64]map[string][]string{
		messageLabel: {messageKey: lines},
	}
	return encMode.Marshal(aux)
}

func splitMessage(s string) []string {
	lines := []string{}
	for len(s) > maxMessageLength {
		cut := maxMessageLength
		// do not split a UTF-8 sequence
		for cut > 0 && 0x80 == s[cut]&0xc0 {
			cut -= 1
		}
		lines = append(lines, s[:cut])
		s = s[cut:]
	}
	return append(lines, s)
}

func outputTotal(outputs []Output) (ledger.Assets, error) {
	total := ledger.Assets{}
	for _, o := range outputs {
		assets, err := o.Amount.ToAssets()
		if nil != err {
			return nil, err
		}
		total, err = total.Add(assets)
		if nil != err {
			return nil, err
		}
	}
	return total, nil
}

func utxoTotal(utxos []ledger.UTxO) (ledger.Assets, error) {
	total := ledger.Assets{}
	for _, u := range utxos {
		var err error
		total, err = total.Add(u.Assets)
		if nil != err {
			return nil, err
		}
	}
	return total, nil
}
