// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package emulator

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/raiders/address"
	"github.com/bitmark-inc/raiders/chain"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
)

// Account - initial funds for one address
type Account struct {
	Address string
	Assets  ledger.Assets
}

// Emulator - an in-memory ledger
//
// transactions are checked for structure, signatures and value
// conservation; Plutus programs are not executed
type Emulator struct {
	sync.RWMutex

	network      string
	params       *ledger.ProtocolParameters
	utxos        map[ledger.OutRef]ledger.UTxO
	supply       map[string]uint64
	transactions map[digest.Hash32]uint64
	height       uint64
	seeded       uint32
	log          *logger.L
}

// make sure the ledger interface is satisfied
var _ ledger.Ledger = (*Emulator)(nil)

// genesis transaction id, every seeded output hangs off it
var genesisId = digest.Sum256([]byte("genesis"))

// New - emulator with funded accounts
func New(network string, accounts ...Account) (*Emulator, error) {
	if !chain.Valid(network) {
		return nil, fault.ErrInvalidChain
	}
	e := &Emulator{
		network:      network,
		params:       ledger.DefaultProtocolParameters(),
		utxos:        make(map[ledger.OutRef]ledger.UTxO),
		supply:       make(map[string]uint64),
		transactions: make(map[digest.Hash32]uint64),
		log:          logger.New("emulator"),
	}
	for _, a := range accounts {
		_, err := e.Seed(a.Address, a.Assets)
		if nil != err {
			return nil, err
		}
	}
	return e, nil
}

// Seed - create an output out of nothing
func (e *Emulator) Seed(to string, assets ledger.Assets) (ledger.OutRef, error) {
	if _, err := address.Parse(to); nil != err {
		return ledger.OutRef{}, err
	}

	e.Lock()
	defer e.Unlock()

	ref := ledger.OutRef{
		TxId:  genesisId,
		Index: e.seeded,
	}
	e.seeded += 1
	e.utxos[ref] = ledger.UTxO{
		OutRef:  ref,
		Address: to,
		Assets:  assets.Clone(),
	}
	for unit, quantity := range assets {
		if ledger.Lovelace != unit {
			e.supply[unit] += quantity
		}
	}
	e.log.Infof("seed: %s  address: %s", ref, to)
	return ref, nil
}

// Network - the configured network name
func (e *Emulator) Network() string {
	return e.network
}

// Height - number of transactions applied
func (e *Emulator) Height() uint64 {
	e.RLock()
	defer e.RUnlock()
	return e.height
}

// ProtocolParameters - fixed parameters
func (e *Emulator) ProtocolParameters(ctx context.Context) (*ledger.ProtocolParameters, error) {
	if err := ctx.Err(); nil != err {
		return nil, err
	}
	p := *e.params
	return &p, nil
}

// UTxOsAt - outputs at an address in ledger order
func (e *Emulator) UTxOsAt(ctx context.Context, address string) ([]ledger.UTxO, error) {
	if err := ctx.Err(); nil != err {
		return nil, err
	}
	e.RLock()
	defer e.RUnlock()

	utxos := make([]ledger.UTxO, 0, 4)
	for _, u := range e.utxos {
		if address == u.Address {
			utxos = append(utxos, u)
		}
	}
	ledger.SortByOutRef(utxos)
	return utxos, nil
}

// UTxOByUnit - the only output holding a unit
func (e *Emulator) UTxOByUnit(ctx context.Context, unit string) (*ledger.UTxO, error) {
	if err := ctx.Err(); nil != err {
		return nil, err
	}
	if _, _, err := ledger.SplitUnit(unit); nil != err {
		return nil, err
	}
	e.RLock()
	defer e.RUnlock()

	var found *ledger.UTxO
	for _, u := range e.utxos {
		if 0 == u.Assets[unit] {
			continue
		}
		if nil != found {
			return nil, fault.ErrInvalidCount
		}
		v := u
		found = &v
	}
	if nil == found {
		return nil, fault.ErrUTxONotFound
	}
	return found, nil
}

// UTxOsByOutRef - the unspent subset of the references
func (e *Emulator) UTxOsByOutRef(ctx context.Context, refs []ledger.OutRef) ([]ledger.UTxO, error) {
	if err := ctx.Err(); nil != err {
		return nil, err
	}
	e.RLock()
	defer e.RUnlock()

	utxos := make([]ledger.UTxO, 0, len(refs))
	for _, ref := range refs {
		if u, ok := e.utxos[ref]; ok {
			utxos = append(utxos, u)
		}
	}
	return utxos, nil
}

// AssetsByPolicy - every unit ever minted under a policy, burned
// units are listed with zero supply
func (e *Emulator) AssetsByPolicy(ctx context.Context, policy digest.Hash28) ([]ledger.AssetSupply, error) {
	if err := ctx.Err(); nil != err {
		return nil, err
	}
	e.RLock()
	defer e.RUnlock()

	prefix := policy.String()
	assets := make([]ledger.AssetSupply, 0, 4)
	for unit, quantity := range e.supply {
		if strings.HasPrefix(unit, prefix) {
			assets = append(assets, ledger.AssetSupply{
				Unit:     unit,
				Quantity: quantity,
			})
		}
	}
	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Unit < assets[j].Unit
	})
	return assets, nil
}

// AwaitTx - transactions are applied on submission
func (e *Emulator) AwaitTx(ctx context.Context, id digest.Hash32) error {
	if err := ctx.Err(); nil != err {
		return err
	}
	e.RLock()
	defer e.RUnlock()

	if _, ok := e.transactions[id]; !ok {
		return fault.ErrTransactionNotFound
	}
	return nil
}
