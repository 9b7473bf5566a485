// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"encoding/hex"
	"encoding/json"

	"github.com/fxamacker/cbor/v2"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
)

// Transaction - body, witnesses and auxiliary data
//
// the body bytes are kept exactly as serialised because the id and
// every signature are over those bytes
type Transaction struct {
	Body      Body
	Witnesses WitnessSet
	Valid     bool
	Auxiliary cbor.RawMessage

	body []byte
}

type wireTransaction struct {
	_         struct{} `cbor:",toarray"`
	Body      cbor.RawMessage
	Witnesses WitnessSet
	Valid     bool
	Auxiliary cbor.RawMessage
}

func newTransaction(body Body, witnesses WitnessSet, auxiliary cbor.RawMessage) (*Transaction, error) {
	b, err := encMode.Marshal(body)
	if nil != err {
		return nil, err
	}
	return &Transaction{
		Body:      body,
		Witnesses: witnesses,
		Valid:     true,
		Auxiliary: auxiliary,
		body:      b,
	}, nil
}

// Decode - parse a serialised transaction
func Decode(buffer []byte) (*Transaction, error) {
	var w wireTransaction
	err := cbor.Unmarshal(buffer, &w)
	if nil != err {
		return nil, fault.ErrInvalidTransaction
	}

	tx := &Transaction{
		Witnesses: w.Witnesses,
		Valid:     w.Valid,
		body:      []byte(w.Body),
	}
	err = cbor.Unmarshal(w.Body, &tx.Body)
	if nil != err {
		return nil, fault.ErrInvalidTransaction
	}
	if 0 != len(w.Auxiliary) && !isNull(w.Auxiliary) {
		tx.Auxiliary = w.Auxiliary
	}
	return tx, nil
}

// DecodeHex - parse a hex serialised transaction
func DecodeHex(s string) (*Transaction, error) {
	b, err := hex.DecodeString(s)
	if nil != err {
		return nil, fault.ErrInvalidHexString
	}
	return Decode(b)
}

func isNull(b []byte) bool {
	return 1 == len(b) && 0xf6 == b[0]
}

// Id - transaction id, the hash of the body
func (tx *Transaction) Id() digest.Hash32 {
	return digest.Sum256(tx.body)
}

// BodyBytes - the serialised body as signed
func (tx *Transaction) BodyBytes() []byte {
	return tx.body
}

// Bytes - complete serialised transaction
func (tx *Transaction) Bytes() ([]byte, error) {
	return encMode.Marshal(wireTransaction{
		Body:      tx.body,
		Witnesses: tx.Witnesses,
		Valid:     tx.Valid,
		Auxiliary: tx.Auxiliary,
	})
}

// Hex - complete serialised transaction as hex, as accepted by wallets
func (tx *Transaction) Hex() (string, error) {
	b, err := tx.Bytes()
	if nil != err {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// AddWitness - append a signature, replacing any earlier one for
// the same key
func (tx *Transaction) AddWitness(vkey []byte, signature []byte) {
	for i, w := range tx.Witnesses.VKeys {
		if string(w.VKey) == string(vkey) {
			tx.Witnesses.VKeys[i].Signature = signature
			return
		}
	}
	tx.Witnesses.VKeys = append(tx.Witnesses.VKeys, VKeyWitness{
		VKey:      vkey,
		Signature: signature,
	})
}

// RequiredSigners - key hashes listed in the body
func (tx *Transaction) RequiredSigners() ([]digest.Hash28, error) {
	signers := make([]digest.Hash28, len(tx.Body.RequiredSigners))
	for i, s := range tx.Body.RequiredSigners {
		err := digest.Hash28FromBytes(&signers[i], s)
		if nil != err {
			return nil, err
		}
	}
	return signers, nil
}

// Spent - references of the consumed inputs
func (tx *Transaction) Spent() ([]ledger.OutRef, error) {
	return outRefs(tx.Body.Inputs)
}

// Referenced - references of the read-only inputs
func (tx *Transaction) Referenced() ([]ledger.OutRef, error) {
	return outRefs(tx.Body.ReferenceInputs)
}

// CollateralInputs - references of the collateral inputs
func (tx *Transaction) CollateralInputs() ([]ledger.OutRef, error) {
	return outRefs(tx.Body.Collateral)
}

func outRefs(inputs []Input) ([]ledger.OutRef, error) {
	refs := make([]ledger.OutRef, len(inputs))
	for i, input := range inputs {
		ref, err := input.OutRef()
		if nil != err {
			return nil, err
		}
		refs[i] = ref
	}
	return refs, nil
}

// Produced - the outputs as they will appear on the ledger
func (tx *Transaction) Produced() ([]ledger.UTxO, error) {
	id := tx.Id()
	utxos := make([]ledger.UTxO, len(tx.Body.Outputs))
	for i, o := range tx.Body.Outputs {
		u, err := o.UTxO(ledger.OutRef{TxId: id, Index: uint32(i)})
		if nil != err {
			return nil, err
		}
		utxos[i] = u
	}
	return utxos, nil
}

// UTxO - the output at a given reference
func (o Output) UTxO(ref ledger.OutRef) (ledger.UTxO, error) {
	a, err := address.FromBytes(o.Address)
	if nil != err {
		return ledger.UTxO{}, err
	}
	assets, err := o.Amount.ToAssets()
	if nil != err {
		return ledger.UTxO{}, err
	}
	u := ledger.UTxO{
		OutRef:  ref,
		Address: a.String(),
		Assets:  assets,
	}
	if nil != o.Datum {
		u.Datum, u.DatumHash, err = datumFrom(o.Datum)
		if nil != err {
			return ledger.UTxO{}, err
		}
	}
	if nil != o.ScriptRef {
		u.ScriptRef, err = scriptFromRef(o.ScriptRef)
		if nil != err {
			return ledger.UTxO{}, err
		}
	}
	return u, nil
}

// Messages - text of a label 674 message, if any
func (tx *Transaction) Messages() []string {
	if 0 == len(tx.Auxiliary) {
		return nil
	}
	var aux map[uint64]map[string][]string
	err := cbor.Unmarshal(tx.Auxiliary, &aux)
	if nil != err {
		return nil
	}
	return aux[messageLabel][messageKey]
}

type jsonTransaction struct {
	Id       digest.Hash32 `json:"id"`
	Fee      uint64        `json:"fee"`
	Inputs   int           `json:"inputs"`
	Outputs  int           `json:"outputs"`
	Messages []string      `json:"messages,omitempty"`
	CBOR     string        `json:"cbor"`
}

// MarshalJSON - summary with the hex serialisation
func (tx *Transaction) MarshalJSON() ([]byte, error) {
	h, err := tx.Hex()
	if nil != err {
		return nil, err
	}
	return json.Marshal(jsonTransaction{
		Id:       tx.Id(),
		Fee:      tx.Body.Fee,
		Inputs:   len(tx.Body.Inputs),
		Outputs:  len(tx.Body.Outputs),
		Messages: tx.Messages(),
		CBOR:     h,
	})
}
