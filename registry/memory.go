// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"sync"

	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
)

// Memory - an unpersisted store, used by the emulator and tests
type Memory struct {
	sync.RWMutex
	entries map[Key]ledger.UTxO
}

// NewMemory - empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[Key]ledger.UTxO),
	}
}

// Get - fetch one entry
func (m *Memory) Get(key Key) (*ledger.UTxO, error) {
	m.RLock()
	defer m.RUnlock()

	u, ok := m.entries[key]
	if !ok {
		return nil, fault.ErrDeploymentNotFound
	}
	return &u, nil
}

// Put - replace one entry
func (m *Memory) Put(key Key, utxo ledger.UTxO) error {
	m.Lock()
	m.entries[key] = utxo
	m.Unlock()
	return nil
}

// Close - nothing to release
func (m *Memory) Close() error {
	return nil
}
