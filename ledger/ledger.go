// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"context"

	"github.com/bitmark-inc/raiders/digest"
)

//go:generate mockgen -source=ledger.go -destination=mocks/mock_ledger.go -package=mocks

// Ledger - the remote ledger as seen by the lifecycle operations
//
// every method is a fallible remote call
type Ledger interface {
	// network name as used by the chain package
	Network() string

	// current fee and size parameters
	ProtocolParameters(ctx context.Context) (*ProtocolParameters, error)

	// unspent outputs held at a bech32 address
	UTxOsAt(ctx context.Context, address string) ([]UTxO, error)

	// the single unspent output holding a unit
	UTxOByUnit(ctx context.Context, unit string) (*UTxO, error)

	// unspent outputs for explicit references, missing ones are omitted
	UTxOsByOutRef(ctx context.Context, refs []OutRef) ([]UTxO, error)

	// every unit minted under a policy with its current supply
	AssetsByPolicy(ctx context.Context, policy digest.Hash28) ([]AssetSupply, error)

	// send a signed transaction, returning its id
	Submit(ctx context.Context, tx []byte) (digest.Hash32, error)

	// block until the transaction is included
	AwaitTx(ctx context.Context, id digest.Hash32) error
}

// ProtocolParameters - the subset of ledger parameters needed to
// size and fund a transaction
type ProtocolParameters struct {
	MinFeeA           uint64  `json:"min_fee_a"`
	MinFeeB           uint64  `json:"min_fee_b"`
	MaxTxSize         uint64  `json:"max_tx_size"`
	CoinsPerUTxOByte  uint64  `json:"coins_per_utxo_size"`
	PriceMem          float64 `json:"price_mem"`
	PriceStep         float64 `json:"price_step"`
	MaxTxExMem        uint64  `json:"max_tx_ex_mem"`
	MaxTxExSteps      uint64  `json:"max_tx_ex_steps"`
	CollateralPercent uint64  `json:"collateral_percent"`
	RefScriptCost     uint64  `json:"min_fee_ref_script_cost_per_byte"`

	// keyed by language name, e.g. "PlutusV3"
	CostModels map[string][]int64 `json:"cost_models_raw"`
}

// DefaultProtocolParameters - values in force on mainnet at the
// start of the Conway era, used by the local emulator
func DefaultProtocolParameters() *ProtocolParameters {
	return &ProtocolParameters{
		MinFeeA:           44,
		MinFeeB:           155381,
		MaxTxSize:         16384,
		CoinsPerUTxOByte:  4310,
		PriceMem:          0.0577,
		PriceStep:         0.0000721,
		MaxTxExMem:        14000000,
		MaxTxExSteps:      10000000000,
		CollateralPercent: 150,
		RefScriptCost:     15,
		CostModels:        map[string][]int64{},
	}
}
