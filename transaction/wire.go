// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/plutusdata"
	"github.com/bitmark-inc/raiders/script"
)

// maps are written in canonical key order so that a body always
// serialises to the same bytes, and so to the same id
var encMode cbor.EncMode

func init() {
	em, err := cbor.EncOptions{Sort: cbor.SortCanonical}.EncMode()
	if nil != err {
		panic(err)
	}
	encMode = em
}

// datum option kinds
const (
	datumHash   = 0
	datumInline = 1
)

// tag for embedded CBOR
const embeddedCBOR = 24

// Input - reference to a consumed or read output
type Input struct {
	_     struct{} `cbor:",toarray"`
	TxId  []byte
	Index uint32
}

// OutRef - as a ledger reference
func (i Input) OutRef() (ledger.OutRef, error) {
	ref := ledger.OutRef{Index: i.Index}
	err := digest.Hash32FromBytes(&ref.TxId, i.TxId)
	return ref, err
}

func inputOf(ref ledger.OutRef) Input {
	return Input{
		TxId:  ref.TxId.Bytes(),
		Index: ref.Index,
	}
}

// MultiAsset - policy id → asset name → quantity
type MultiAsset map[cbor.ByteString]map[cbor.ByteString]uint64

// Mint - policy id → asset name → signed quantity
type Mint map[cbor.ByteString]map[cbor.ByteString]int64

// Value - lovelace and, optionally, other assets
//
// serialised as a bare integer when there are no other assets
type Value struct {
	Coin   uint64
	Assets MultiAsset
}

type valuePair struct {
	_      struct{} `cbor:",toarray"`
	Coin   uint64
	Assets MultiAsset
}

// MarshalCBOR - integer or [coin, multiasset]
func (v Value) MarshalCBOR() ([]byte, error) {
	if 0 == len(v.Assets) {
		return encMode.Marshal(v.Coin)
	}
	return encMode.Marshal(valuePair{Coin: v.Coin, Assets: v.Assets})
}

// UnmarshalCBOR - integer or [coin, multiasset]
func (v *Value) UnmarshalCBOR(b []byte) error {
	if 0 == len(b) {
		return fault.ErrRecordTruncated
	}
	if 0 == b[0]>>5 {
		v.Assets = nil
		return cbor.Unmarshal(b, &v.Coin)
	}
	var pair valuePair
	err := cbor.Unmarshal(b, &pair)
	if nil != err {
		return err
	}
	v.Coin = pair.Coin
	v.Assets = pair.Assets
	return nil
}

// DatumOption - datum hash or inline datum
type DatumOption struct {
	_     struct{} `cbor:",toarray"`
	Kind  uint64
	Value cbor.RawMessage
}

// Output - post-Alonzo map form output
type Output struct {
	Address   []byte       `cbor:"0,keyasint"`
	Amount    Value        `cbor:"1,keyasint"`
	Datum     *DatumOption `cbor:"2,keyasint,omitempty"`
	ScriptRef *cbor.RawTag `cbor:"3,keyasint,omitempty"`
}

// Body - the signed part of a transaction
type Body struct {
	Inputs           []Input  `cbor:"0,keyasint"`
	Outputs          []Output `cbor:"1,keyasint"`
	Fee              uint64   `cbor:"2,keyasint"`
	AuxDataHash      []byte   `cbor:"7,keyasint,omitempty"`
	Mint             Mint     `cbor:"9,keyasint,omitempty"`
	ScriptDataHash   []byte   `cbor:"11,keyasint,omitempty"`
	Collateral       []Input  `cbor:"13,keyasint,omitempty"`
	RequiredSigners  [][]byte `cbor:"14,keyasint,omitempty"`
	CollateralReturn *Output  `cbor:"16,keyasint,omitempty"`
	TotalCollateral  uint64   `cbor:"17,keyasint,omitempty"`
	ReferenceInputs  []Input  `cbor:"18,keyasint,omitempty"`
}

// VKeyWitness - public key and signature over the body hash
type VKeyWitness struct {
	_         struct{} `cbor:",toarray"`
	VKey      []byte
	Signature []byte
}

// ExUnits - execution budget of one redeemer
type ExUnits struct {
	_     struct{} `cbor:",toarray"`
	Mem   uint64
	Steps uint64
}

// redeemer purposes
const (
	PurposeSpend = 0
	PurposeMint  = 1
)

// Redeemer - argument for one script execution
type Redeemer struct {
	_       struct{} `cbor:",toarray"`
	Tag     uint64
	Index   uint64
	Data    cbor.RawMessage
	ExUnits ExUnits
}

// WitnessSet - signatures, scripts and redeemers
type WitnessSet struct {
	VKeys     []VKeyWitness     `cbor:"0,keyasint,omitempty"`
	Native    []cbor.RawMessage `cbor:"1,keyasint,omitempty"`
	PlutusV1  [][]byte          `cbor:"3,keyasint,omitempty"`
	Redeemers []Redeemer        `cbor:"5,keyasint,omitempty"`
	PlutusV2  [][]byte          `cbor:"6,keyasint,omitempty"`
	PlutusV3  [][]byte          `cbor:"7,keyasint,omitempty"`
}

// Scripts - every script carried in the witness set
func (w *WitnessSet) Scripts() []script.Script {
	scripts := make([]script.Script, 0, len(w.Native)+len(w.PlutusV1)+len(w.PlutusV2)+len(w.PlutusV3))
	for _, code := range w.Native {
		scripts = append(scripts, script.Script{Type: script.Native, Code: code})
	}
	for _, code := range w.PlutusV1 {
		scripts = append(scripts, script.Script{Type: script.PlutusV1, Code: code})
	}
	for _, code := range w.PlutusV2 {
		scripts = append(scripts, script.Script{Type: script.PlutusV2, Code: code})
	}
	for _, code := range w.PlutusV3 {
		scripts = append(scripts, script.Script{Type: script.PlutusV3, Code: code})
	}
	return scripts
}

func (w *WitnessSet) attach(s script.Script) {
	switch s.Type {
	case script.Native:
		w.Native = append(w.Native, cbor.RawMessage(s.Code))
	case script.PlutusV1:
		w.PlutusV1 = append(w.PlutusV1, s.Code)
	case script.PlutusV2:
		w.PlutusV2 = append(w.PlutusV2, s.Code)
	case script.PlutusV3:
		w.PlutusV3 = append(w.PlutusV3, s.Code)
	}
}

// assets ↔ value

func valueOf(assets ledger.Assets) (Value, error) {
	v := Value{
		Coin: assets.Lovelace(),
	}
	for _, unit := range assets.Units() {
		policy, name, err := ledger.SplitUnit(unit)
		if nil != err {
			return Value{}, err
		}
		quantity := assets[unit]
		if 0 == quantity {
			continue
		}
		if nil == v.Assets {
			v.Assets = make(MultiAsset)
		}
		p := cbor.ByteString(policy[:])
		if nil == v.Assets[p] {
			v.Assets[p] = make(map[cbor.ByteString]uint64)
		}
		v.Assets[p][cbor.ByteString(name)] = quantity
	}
	return v, nil
}

// ToAssets - value as a unit → quantity map
func (v Value) ToAssets() (ledger.Assets, error) {
	assets := ledger.Assets{}
	if 0 != v.Coin {
		assets[ledger.Lovelace] = v.Coin
	}
	for p, names := range v.Assets {
		var policy digest.Hash28
		err := digest.Hash28FromBytes(&policy, []byte(p))
		if nil != err {
			return nil, fault.ErrInvalidPolicyId
		}
		for name, quantity := range names {
			if 0 == quantity {
				continue
			}
			assets[ledger.NewUnit(policy, []byte(name))] = quantity
		}
	}
	return assets, nil
}

// Deltas - minted (positive) and burned (negative) units
func (m Mint) Deltas() (minted ledger.Assets, burned ledger.Assets, err error) {
	minted = ledger.Assets{}
	burned = ledger.Assets{}
	for p, names := range m {
		var policy digest.Hash28
		if nil != digest.Hash28FromBytes(&policy, []byte(p)) {
			return nil, nil, fault.ErrInvalidPolicyId
		}
		for name, quantity := range names {
			unit := ledger.NewUnit(policy, []byte(name))
			switch {
			case quantity > 0:
				minted[unit] = uint64(quantity)
			case quantity < 0:
				burned[unit] = uint64(-quantity)
			}
		}
	}
	return minted, burned, nil
}

// script references are [type, script] wrapped as embedded CBOR

func scriptRefOf(s script.Script) (*cbor.RawTag, error) {
	var item interface{}
	if script.Native == s.Type {
		item = cbor.RawMessage(s.Code)
	} else {
		item = s.Code
	}
	inner, err := encMode.Marshal([]interface{}{uint64(s.Type), item})
	if nil != err {
		return nil, err
	}
	content, err := encMode.Marshal(inner)
	if nil != err {
		return nil, err
	}
	return &cbor.RawTag{Number: embeddedCBOR, Content: content}, nil
}

func scriptFromRef(tag *cbor.RawTag) (*script.Script, error) {
	if embeddedCBOR != tag.Number {
		return nil, fault.ErrUnknownTag
	}
	var inner []byte
	err := cbor.Unmarshal(tag.Content, &inner)
	if nil != err {
		return nil, err
	}
	var pair []cbor.RawMessage
	err = cbor.Unmarshal(inner, &pair)
	if nil != err {
		return nil, err
	}
	if 2 != len(pair) {
		return nil, fault.ErrInvalidScriptType
	}
	var t uint64
	err = cbor.Unmarshal(pair[0], &t)
	if nil != err || t > uint64(script.PlutusV3) {
		return nil, fault.ErrInvalidScriptType
	}
	s := &script.Script{Type: script.Type(t)}
	if script.Native == s.Type {
		s.Code = []byte(pair[1])
	} else {
		err = cbor.Unmarshal(pair[1], &s.Code)
		if nil != err {
			return nil, err
		}
	}
	return s, nil
}

func inlineDatumOf(datum plutusdata.Packed) (*DatumOption, error) {
	content, err := encMode.Marshal([]byte(datum))
	if nil != err {
		return nil, err
	}
	tagged, err := encMode.Marshal(cbor.RawTag{Number: embeddedCBOR, Content: content})
	if nil != err {
		return nil, err
	}
	return &DatumOption{Kind: datumInline, Value: tagged}, nil
}

// inline datum bytes or the hex datum hash
func datumFrom(option *DatumOption) (plutusdata.Packed, string, error) {
	switch option.Kind {
	case datumHash:
		var h []byte
		err := cbor.Unmarshal(option.Value, &h)
		if nil != err {
			return nil, "", err
		}
		var hash digest.Hash32
		err = digest.Hash32FromBytes(&hash, h)
		if nil != err {
			return nil, "", err
		}
		return nil, hash.String(), nil
	case datumInline:
		var tag cbor.RawTag
		err := cbor.Unmarshal(option.Value, &tag)
		if nil != err {
			return nil, "", err
		}
		if embeddedCBOR != tag.Number {
			return nil, "", fault.ErrUnknownTag
		}
		var datum []byte
		err = cbor.Unmarshal(tag.Content, &datum)
		if nil != err {
			return nil, "", err
		}
		return datum, "", nil
	default:
		return nil, "", fault.ErrUnknownTag
	}
}
