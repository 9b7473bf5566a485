// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/plutusdata"
	"github.com/bitmark-inc/raiders/script"
)

// (program 1.1.0 (lam i_0 i_0)) wrapped in a byte string
const identityCode = "46010100200101"

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	if nil != err {
		t.Fatalf("hex: %q  error: %s", s, err)
	}
	return b
}

func TestApplyParams(t *testing.T) {
	s := script.Script{
		Type: script.PlutusV3,
		Code: mustHex(t, identityCode),
	}

	applied, err := script.ApplyParams(s, plutusdata.Int(42))
	if nil != err {
		t.Fatalf("apply error: %s", err)
	}

	expected := "4c010100320014c102182a0001"
	if c := hex.EncodeToString(applied.Code); c != expected {
		t.Errorf("applied: %s  expected: %s", c, expected)
	}

	expectedHash := "854ca9c209a4f8de38d5b244a6ff0fb8f26cdedb89fcfed64796678b"
	if h := applied.Hash().String(); h != expectedHash {
		t.Errorf("hash: %s  expected: %s", h, expectedHash)
	}

	// deterministic
	again, err := script.ApplyParams(s, plutusdata.Int(42))
	assert.Nil(t, err, "second apply")
	assert.Equal(t, applied.Hash(), again.Hash(), "same parameters same hash")

	// parameter sensitive
	other, err := script.ApplyParams(s, plutusdata.Int(43))
	assert.Nil(t, err, "other apply")
	assert.NotEqual(t, applied.Hash(), other.Hash(), "different parameters different hash")

	// order sensitive
	ab, _ := script.ApplyParams(s, plutusdata.Int(1), plutusdata.Int(2))
	ba, _ := script.ApplyParams(s, plutusdata.Int(2), plutusdata.Int(1))
	assert.NotEqual(t, ab.Hash(), ba.Hash(), "parameter order matters")
}

func TestApplyParamsDoubleWrapped(t *testing.T) {
	single := mustHex(t, identityCode)
	double := append([]byte{0x47}, single...)

	a, err := script.ApplyParams(script.Script{Type: script.PlutusV3, Code: single}, plutusdata.Void())
	assert.Nil(t, err, "single")
	b, err := script.ApplyParams(script.Script{Type: script.PlutusV3, Code: double}, plutusdata.Void())
	assert.Nil(t, err, "double")
	assert.Equal(t, a.Code, b.Code, "wrapping does not change the result")
}

func TestApplyParamsRichProgramPreserved(t *testing.T) {
	long := make([]byte, 512)
	for i := range long {
		long[i] = byte(i)
	}

	// exercises case, constr, bool, string, error, force, delay,
	// builtin, integer lists and a pair holding a chunked byte string
	flat := mustHex(t, "01010033329001c01d28d24104726169640058a2e6d2f5820503ec0212f7b46601")
	flat = append(flat, 255)
	flat = append(flat, long[:255]...)
	flat = append(flat, 255)
	flat = append(flat, long[255:510]...)
	flat = append(flat, 2)
	flat = append(flat, long[510:]...)
	flat = append(flat, 0, 1)

	code := append([]byte{0x59, byte(len(flat) >> 8), byte(len(flat))}, flat...)
	s := script.Script{Type: script.PlutusV3, Code: code}

	err := script.Validate(s)
	if nil != err {
		t.Fatalf("validate error: %s", err)
	}

	// applying nothing re-encodes the program unchanged
	same, err := script.ApplyParams(s)
	if nil != err {
		t.Fatalf("apply error: %s", err)
	}
	if !bytes.Equal(code, same.Code) {
		t.Errorf("re-encoded: %x\nexpected: %x", same.Code, code)
	}
}

func TestApplyParamsMalformed(t *testing.T) {
	tests := []string{
		"4401010020",     // truncated term
		"4601010020010a", // bad filler
		"450101002f",     // unknown term tag
		"01",             // not a byte string
		"480101002001010000", // trailing bytes
	}
	for i, c := range tests {
		_, err := script.ApplyParams(script.Script{Type: script.PlutusV3, Code: mustHex(t, c)}, plutusdata.Int(1))
		if !fault.IsErrRecord(err) {
			t.Errorf("%d: %s error: %v", i, c, err)
		}
	}

	_, err := script.ApplyParams(script.NativeSignature(digest.Hash28{}), plutusdata.Int(1))
	assert.Equal(t, fault.ErrInvalidScriptType, err, "native script")
}

func TestNativeSignature(t *testing.T) {
	keyHash := digest.Sum224([]byte("admin"))
	s := script.NativeSignature(keyHash)

	expected := "8200581c" + keyHash.String()
	assert.Equal(t, expected, hex.EncodeToString(s.Code), "native script encoding")
	assert.Equal(t, script.Native, s.Type, "type")

	h, err := script.SignatureKeyHash(s)
	assert.Nil(t, err, "key hash")
	assert.Equal(t, keyHash, h, "key hash value")

	// hash is over the language prefix and the code
	prefixed := append([]byte{0}, s.Code...)
	assert.Equal(t, digest.Sum224(prefixed), s.Hash(), "script hash")
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 7
	}
	return len(p), nil
}

func TestAlwaysFail(t *testing.T) {
	s, err := script.AlwaysFail(zeroReader{})
	if nil != err {
		t.Fatalf("always fail error: %s", err)
	}
	assert.Equal(t, script.PlutusV2, s.Type, "type")
	assert.Equal(t, 59, len(s.Code), "code length")
	assert.Equal(t, byte(0x58), s.Code[0], "byte string header")
	assert.Equal(t, byte(57), s.Code[1], "byte string length")

	other, err := script.AlwaysFail(bytes.NewReader(bytes.Repeat([]byte{3}, 63)))
	assert.Nil(t, err, "second script")
	assert.NotEqual(t, s.Hash(), other.Hash(), "different bodies give different addresses")
}

func TestScriptJSON(t *testing.T) {
	s := script.Script{Type: script.PlutusV3, Code: mustHex(t, identityCode)}
	b, err := json.Marshal(s)
	assert.Nil(t, err, "marshal")
	assert.Equal(t, `{"type":"PlutusV3","script":"`+identityCode+`"}`, string(b), "json")

	var back script.Script
	err = json.Unmarshal(b, &back)
	assert.Nil(t, err, "unmarshal")
	assert.Equal(t, s, back, "round trip")

	err = json.Unmarshal([]byte(`{"type":"PlutusV9","script":"00"}`), &back)
	assert.Equal(t, fault.ErrInvalidScriptType, err, "bad type")
}
