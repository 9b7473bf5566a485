// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blueprint

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/plutusdata"
	"github.com/bitmark-inc/raiders/script"
)

// Blueprint - the compiled validators of a project
type Blueprint struct {
	Preamble   Preamble    `json:"preamble"`
	Validators []Validator `json:"validators"`
}

// Preamble - project description
type Preamble struct {
	Title         string `json:"title"`
	Version       string `json:"version"`
	PlutusVersion string `json:"plutusVersion"`
}

// Validator - one compiled validator
type Validator struct {
	Title        string `json:"title"`
	CompiledCode string `json:"compiledCode"`
	Hash         string `json:"hash"`
}

// Parse - decode blueprint JSON
func Parse(buffer []byte) (*Blueprint, error) {
	var b Blueprint
	err := json.Unmarshal(buffer, &b)
	if nil != err {
		return nil, err
	}
	return &b, nil
}

// Load - read and decode a blueprint file
func Load(fileName string) (*Blueprint, error) {
	buffer, err := os.ReadFile(fileName)
	if os.IsNotExist(err) {
		return nil, fault.ErrBlueprintNotFound
	}
	if nil != err {
		return nil, err
	}
	return Parse(buffer)
}

func (b *Blueprint) language() script.Type {
	switch b.Preamble.PlutusVersion {
	case "v1":
		return script.PlutusV1
	case "v2":
		return script.PlutusV2
	default:
		return script.PlutusV3
	}
}

// Script - the unparameterised script for a validator title
func (b *Blueprint) Script(title string) (script.Script, error) {
	for _, v := range b.Validators {
		if v.Title != title {
			continue
		}
		code, err := hex.DecodeString(v.CompiledCode)
		if nil != err || 0 == len(code) {
			return script.Script{}, fault.ErrInvalidProgram
		}
		return script.Script{
			Type: b.language(),
			Code: code,
		}, nil
	}
	return script.Script{}, fault.ErrArtifactNotFound
}

// Apply - parameterise a validator
func (b *Blueprint) Apply(title string, params ...plutusdata.Data) (script.Script, error) {
	s, err := b.Script(title)
	if nil != err {
		return script.Script{}, err
	}
	return script.ApplyParams(s, params...)
}

// File - a blueprint read on first use and re-read after Reload
type File struct {
	sync.Mutex
	log       *logger.L
	fileName  string
	blueprint *Blueprint
}

// NewFile - lazily loaded blueprint
func NewFile(fileName string, log *logger.L) *File {
	return &File{
		log:      log,
		fileName: fileName,
	}
}

// Apply - parameterise a validator from the current file contents
func (f *File) Apply(title string, params ...plutusdata.Data) (script.Script, error) {
	f.Lock()
	defer f.Unlock()

	if nil == f.blueprint {
		b, err := Load(f.fileName)
		if fault.ErrBlueprintNotFound == err {
			f.log.Errorf("blueprint: %q not found", f.fileName)
			return script.Script{}, fault.ErrArtifactNotFound
		}
		if nil != err {
			f.log.Errorf("blueprint: %q  error: %s", f.fileName, err)
			return script.Script{}, err
		}
		f.log.Debugf("loaded blueprint: %q  validators: %d", f.fileName, len(b.Validators))
		f.blueprint = b
	}
	return f.blueprint.Apply(title, params...)
}

// Reload - drop the cached contents so the next Apply reads the file
func (f *File) Reload() {
	f.Lock()
	f.blueprint = nil
	f.Unlock()
}
