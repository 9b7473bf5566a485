// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefines(t *testing.T) {
	variables, err := defines([]string{"network=preview", "key=a=b", "empty="})
	assert.Nil(t, err)
	assert.Equal(t, map[string]string{
		"network": "preview",
		"key":     "a=b",
		"empty":   "",
	}, variables)

	for _, bad := range []string{"novalue", "=value"} {
		_, err = defines([]string{bad})
		assert.Equal(t, ErrInvalidDefine, err, bad)
	}
}

func TestParseOutRef(t *testing.T) {
	hash := "0a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20212223242526272829"
	ref, err := parseOutRef(hash + "#7")
	assert.Nil(t, err)
	assert.Equal(t, uint32(7), ref.Index)
	assert.Equal(t, hash, ref.TxId.String())

	for _, bad := range []string{hash, hash + "#", hash + "#-1", hash + "#1#2", "zz#1"} {
		_, err = parseOutRef(bad)
		assert.NotNil(t, err, bad)
	}
}

func TestCommandTable(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range commands {
		names[c.Name] = true
		for _, s := range c.Subcommands {
			names[c.Name+" "+s.Name] = true
		}
	}
	for _, expected := range []string{
		"deploy",
		"parameter mint",
		"parameter burn",
		"raider create",
		"raider create-with-authorizer",
		"raider claim",
		"raider remove",
		"raider list",
		"addresses",
		"version",
	} {
		assert.True(t, names[expected], "missing command: %s", expected)
	}
}

func TestPrintJson(t *testing.T) {
	b := &bytes.Buffer{}
	err := printJson(b, map[string]int{"quantity": 1})
	assert.Nil(t, err)
	assert.Equal(t, "{\n  \"quantity\": 1\n}\n", b.String())
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("closed")
}

func TestPrintJsonWriteFailure(t *testing.T) {
	err := printJson(brokenWriter{}, []string{"x"})
	assert.EqualError(t, err, "closed")

	err = printJson(&bytes.Buffer{}, func() {})
	assert.NotNil(t, err)
}
