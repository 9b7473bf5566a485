// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfrost

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/plutusdata"
	"github.com/bitmark-inc/raiders/script"
)

// make sure the ledger interface is satisfied
var _ ledger.Ledger = (*Client)(nil)

type wireParameters struct {
	MinFeeA           uint64             `json:"min_fee_a"`
	MinFeeB           uint64             `json:"min_fee_b"`
	MaxTxSize         uint64             `json:"max_tx_size"`
	CoinsPerUTxOSize  json.Number        `json:"coins_per_utxo_size"`
	PriceMem          float64            `json:"price_mem"`
	PriceStep         float64            `json:"price_step"`
	MaxTxExMem        json.Number        `json:"max_tx_ex_mem"`
	MaxTxExSteps      json.Number        `json:"max_tx_ex_steps"`
	CollateralPercent uint64             `json:"collateral_percent"`
	RefScriptCost     json.Number        `json:"min_fee_ref_script_cost_per_byte"`
	CostModels        map[string][]int64 `json:"cost_models_raw"`
}

type wireAmount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

type wireOutput struct {
	Address             string       `json:"address"`
	TxHash              string       `json:"tx_hash"`
	OutputIndex         uint32       `json:"output_index"`
	Amount              []wireAmount `json:"amount"`
	DataHash            *string      `json:"data_hash"`
	InlineDatum         *string      `json:"inline_datum"`
	ReferenceScriptHash *string      `json:"reference_script_hash"`
	Collateral          bool         `json:"collateral"`
	ConsumedBy          *string      `json:"consumed_by_tx"`
}

type wireTxUTxOs struct {
	Hash    string       `json:"hash"`
	Outputs []wireOutput `json:"outputs"`
}

type wireHolder struct {
	Address  string `json:"address"`
	Quantity string `json:"quantity"`
}

type wireScript struct {
	Hash string `json:"script_hash"`
	Type string `json:"type"`
}

type wireScriptCBOR struct {
	CBOR *string `json:"cbor"`
}

type wireNative struct {
	JSON struct {
		Type    string `json:"type"`
		KeyHash string `json:"keyHash"`
	} `json:"json"`
}

func parseNumber(n json.Number) (uint64, error) {
	if "" == n {
		return 0, nil
	}
	u, err := strconv.ParseUint(string(n), 10, 64)
	if nil == err {
		return u, nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if nil != err || f < 0 {
		return 0, fault.ErrValueIsNegative
	}
	return uint64(f), nil
}

// ProtocolParameters - parameters of the latest epoch
func (c *Client) ProtocolParameters(ctx context.Context) (*ledger.ProtocolParameters, error) {
	var w wireParameters
	err := c.get(ctx, "/epochs/latest/parameters", nil, fault.ErrNotInitialised, &w)
	if nil != err {
		return nil, err
	}

	p := &ledger.ProtocolParameters{
		MinFeeA:           w.MinFeeA,
		MinFeeB:           w.MinFeeB,
		MaxTxSize:         w.MaxTxSize,
		PriceMem:          w.PriceMem,
		PriceStep:         w.PriceStep,
		CollateralPercent: w.CollateralPercent,
		CostModels:        w.CostModels,
	}
	if nil == p.CostModels {
		p.CostModels = map[string][]int64{}
	}
	for _, item := range []struct {
		n json.Number
		v *uint64
	}{
		{w.CoinsPerUTxOSize, &p.CoinsPerUTxOByte},
		{w.MaxTxExMem, &p.MaxTxExMem},
		{w.MaxTxExSteps, &p.MaxTxExSteps},
		{w.RefScriptCost, &p.RefScriptCost},
	} {
		*item.v, err = parseNumber(item.n)
		if nil != err {
			return nil, err
		}
	}
	return p, nil
}

// UTxOsAt - every output held at an address
func (c *Client) UTxOsAt(ctx context.Context, address string) ([]ledger.UTxO, error) {
	return c.addressUTxOs(ctx, "/addresses/"+url.PathEscape(address)+"/utxos")
}

func (c *Client) addressUTxOs(ctx context.Context, path string) ([]ledger.UTxO, error) {
	outputs := make([]wireOutput, 0, pageSize)
	err := c.pages(ctx, path, errEmpty, func(buffer json.RawMessage) (int, error) {
		var page []wireOutput
		err := json.Unmarshal(buffer, &page)
		if nil != err {
			return 0, errInvalidResponse
		}
		outputs = append(outputs, page...)
		return len(page), nil
	})
	if errEmpty == err {
		// unused addresses are reported as missing
		return []ledger.UTxO{}, nil
	}
	if nil != err {
		return nil, err
	}
	utxos, err := c.convert(ctx, outputs)
	if nil != err {
		return nil, err
	}
	ledger.SortByOutRef(utxos)
	return utxos, nil
}

var (
	// marker for an empty listing
	errEmpty = fault.NotFoundError("empty")

	errInvalidResponse = fault.ProcessError("ledger response invalid")
)

// UTxOByUnit - the only output holding a unit
func (c *Client) UTxOByUnit(ctx context.Context, unit string) (*ledger.UTxO, error) {
	if _, _, err := ledger.SplitUnit(unit); nil != err {
		return nil, err
	}

	var holders []wireHolder
	err := c.get(ctx, "/assets/"+unit+"/addresses", nil, fault.ErrUTxONotFound, &holders)
	if nil != err {
		return nil, err
	}
	if 0 == len(holders) {
		return nil, fault.ErrUTxONotFound
	}
	if 1 != len(holders) {
		return nil, fault.ErrInvalidCount
	}

	utxos, err := c.addressUTxOs(ctx, "/addresses/"+url.PathEscape(holders[0].Address)+"/utxos/"+unit)
	if nil != err {
		return nil, err
	}
	switch len(utxos) {
	case 0:
		return nil, fault.ErrUTxONotFound
	case 1:
		return &utxos[0], nil
	default:
		return nil, fault.ErrInvalidCount
	}
}

// UTxOsByOutRef - the unspent subset of the references
func (c *Client) UTxOsByOutRef(ctx context.Context, refs []ledger.OutRef) ([]ledger.UTxO, error) {
	byTx := make(map[digest.Hash32]*wireTxUTxOs)
	utxos := make([]ledger.UTxO, 0, len(refs))
	for _, ref := range refs {
		tx, ok := byTx[ref.TxId]
		if !ok {
			tx = &wireTxUTxOs{}
			err := c.get(ctx, "/txs/"+ref.TxId.String()+"/utxos", nil, errEmpty, tx)
			if errEmpty == err {
				tx = nil
			} else if nil != err {
				return nil, err
			}
			byTx[ref.TxId] = tx
		}
		if nil == tx {
			continue
		}
		for _, o := range tx.Outputs {
			if o.OutputIndex != ref.Index || o.Collateral || nil != o.ConsumedBy {
				continue
			}
			o.TxHash = tx.Hash
			converted, err := c.convert(ctx, []wireOutput{o})
			if nil != err {
				return nil, err
			}
			utxos = append(utxos, converted[0])
		}
	}
	return utxos, nil
}

// AssetsByPolicy - every unit under a policy with its supply
func (c *Client) AssetsByPolicy(ctx context.Context, policy digest.Hash28) ([]ledger.AssetSupply, error) {
	assets := make([]ledger.AssetSupply, 0, pageSize)
	err := c.pages(ctx, "/assets/policy/"+policy.String(), errEmpty, func(buffer json.RawMessage) (int, error) {
		var page []ledger.AssetSupply
		err := json.Unmarshal(buffer, &page)
		if nil != err {
			return 0, errInvalidResponse
		}
		assets = append(assets, page...)
		return len(page), nil
	})
	if errEmpty == err {
		return []ledger.AssetSupply{}, nil
	}
	if nil != err {
		return nil, err
	}
	return assets, nil
}

// Submit - send a signed transaction
func (c *Client) Submit(ctx context.Context, tx []byte) (digest.Hash32, error) {
	var reply string
	err := c.do(ctx, http.MethodPost, "/tx/submit", nil, "application/cbor", tx, fault.ErrSubmissionFailed, &reply)
	if nil != err {
		return digest.Hash32{}, err
	}
	id, err := digest.Hash32FromHex(reply)
	if nil != err {
		return digest.Hash32{}, fault.ErrSubmissionFailed
	}
	c.log.Infof("submitted: %s", id)
	return id, nil
}

// AwaitTx - poll until the transaction is in a block
func (c *Client) AwaitTx(ctx context.Context, id digest.Hash32) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		err := c.get(ctx, "/txs/"+id.String(), nil, fault.ErrTransactionNotFound, nil)
		if nil == err {
			c.log.Infof("confirmed: %s", id)
			return nil
		}
		if fault.ErrTransactionNotFound != err {
			return err
		}
		c.log.Debugf("waiting for: %s", id)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// convert API outputs, fetching any reference scripts
func (c *Client) convert(ctx context.Context, outputs []wireOutput) ([]ledger.UTxO, error) {
	utxos := make([]ledger.UTxO, len(outputs))
	for i, o := range outputs {
		id, err := digest.Hash32FromHex(o.TxHash)
		if nil != err {
			return nil, err
		}
		u := ledger.UTxO{
			OutRef:  ledger.OutRef{TxId: id, Index: o.OutputIndex},
			Address: o.Address,
			Assets:  ledger.Assets{},
		}
		for _, a := range o.Amount {
			q, err := strconv.ParseUint(a.Quantity, 10, 64)
			if nil != err {
				return nil, fault.ErrValueIsNegative
			}
			u.Assets[a.Unit] = q
		}
		if nil != o.InlineDatum {
			b, err := hex.DecodeString(*o.InlineDatum)
			if nil != err {
				return nil, fault.ErrInvalidHexString
			}
			u.Datum = plutusdata.Packed(b)
		} else if nil != o.DataHash {
			u.DatumHash = *o.DataHash
		}
		if nil != o.ReferenceScriptHash {
			s, err := c.script(ctx, *o.ReferenceScriptHash)
			if nil != err {
				return nil, err
			}
			u.ScriptRef = s
		}
		utxos[i] = u
	}
	return utxos, nil
}

var plutusTypes = map[string]script.Type{
	"plutusV1": script.PlutusV1,
	"plutusV2": script.PlutusV2,
	"plutusV3": script.PlutusV3,
}

// fetch a script and check it against its hash
func (c *Client) script(ctx context.Context, hash string) (*script.Script, error) {
	expected, err := digest.Hash28FromHex(hash)
	if nil != err {
		return nil, err
	}

	var info wireScript
	err = c.get(ctx, "/scripts/"+hash, nil, fault.ErrScriptReferenceNotFound, &info)
	if nil != err {
		return nil, err
	}

	s := &script.Script{}
	if "timelock" == info.Type {
		var native wireNative
		err = c.get(ctx, "/scripts/"+hash+"/json", nil, fault.ErrScriptReferenceNotFound, &native)
		if nil != err {
			return nil, err
		}
		if "sig" != native.JSON.Type {
			return nil, fault.ErrInvalidScriptType
		}
		keyHash, err := digest.Hash28FromHex(native.JSON.KeyHash)
		if nil != err {
			return nil, err
		}
		*s = script.NativeSignature(keyHash)
	} else {
		t, ok := plutusTypes[info.Type]
		if !ok {
			return nil, fault.ErrInvalidScriptType
		}
		var code wireScriptCBOR
		err = c.get(ctx, "/scripts/"+hash+"/cbor", nil, fault.ErrScriptReferenceNotFound, &code)
		if nil != err {
			return nil, err
		}
		if nil == code.CBOR {
			return nil, fault.ErrScriptReferenceNotFound
		}
		b, err := hex.DecodeString(*code.CBOR)
		if nil != err {
			return nil, fault.ErrInvalidHexString
		}
		s.Type = t
		s.Code = b
	}

	if expected != s.Hash() {
		c.log.Errorf("script: %s  hash mismatch: %s", hash, s.Hash())
		return nil, fault.ErrInvalidProgram
	}
	return s, nil
}
