// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
)

// File - one JSON document per entry
//
// layout: <directory>/<network>/raid-mint[-test].json
type File struct {
	directory string
	log       *logger.L
}

// NewFile - store rooted at a directory, created on first write
func NewFile(directory string) *File {
	return &File{
		directory: directory,
		log:       logger.New("registry"),
	}
}

func (f *File) fileName(key Key) string {
	return filepath.Join(f.directory, key.Network, key.name()+".json")
}

// Get - read one entry
func (f *File) Get(key Key) (*ledger.UTxO, error) {
	fileName := f.fileName(key)
	buffer, err := os.ReadFile(fileName)
	if os.IsNotExist(err) {
		f.log.Debugf("missing: %s", fileName)
		return nil, fault.ErrDeploymentNotFound
	}
	if nil != err {
		return nil, err
	}

	var u ledger.UTxO
	err = json.Unmarshal(buffer, &u)
	if nil != err {
		f.log.Errorf("decode: %s  error: %s", fileName, err)
		return nil, err
	}
	return &u, nil
}

// Put - write one entry, replacing the file atomically
func (f *File) Put(key Key, utxo ledger.UTxO) error {
	fileName := f.fileName(key)
	err := os.MkdirAll(filepath.Dir(fileName), 0o755)
	if nil != err {
		return err
	}

	buffer, err := json.Marshal(utxo)
	if nil != err {
		return err
	}

	temporary := fileName + ".new"
	err = os.WriteFile(temporary, buffer, 0o644)
	if nil != err {
		return err
	}
	err = os.Rename(temporary, fileName)
	if nil != err {
		return err
	}
	f.log.Infof("saved: %s  utxo: %s", fileName, utxo.OutRef)
	return nil
}

// Close - nothing to release
func (f *File) Close() error {
	return nil
}
