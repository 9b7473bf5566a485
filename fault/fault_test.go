// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bitmark-inc/raiders/fault"
)

var (
	ErrBalanceOne  = fault.BalanceError("balance one")
	ErrBalanceTwo  = fault.BalanceError("balance two")
	ErrExistsOne   = fault.ExistsError("exists one ")
	ErrExistsTwo   = fault.ExistsError("exists two")
	ErrInvalidOne  = fault.InvalidError("invalid one")
	ErrInvalidTwo  = fault.InvalidError("invalid two")
	ErrNotFoundOne = fault.NotFoundError("not found one")
	ErrNotFoundTwo = fault.NotFoundError("not found two")
	ErrProcessOne  = fault.ProcessError("process one")
	ErrProcessTwo  = fault.ProcessError("process two")
	ErrProtocolOne = fault.ProtocolError("protocol one")
	ErrProtocolTwo = fault.ProtocolError("protocol two")
	ErrRecordOne   = fault.RecordError("record one")
	ErrRecordTwo   = fault.RecordError("record two")
)

// test that the various errors can be classified
func TestClassification(t *testing.T) {
	errorList := []struct {
		err      error
		balance  bool
		exists   bool
		invalid  bool
		notFound bool
		process  bool
		protocol bool
		record   bool
	}{
		{ErrBalanceOne, true, false, false, false, false, false, false},
		{ErrBalanceTwo, true, false, false, false, false, false, false},
		{ErrExistsOne, false, true, false, false, false, false, false},
		{ErrExistsTwo, false, true, false, false, false, false, false},
		{ErrInvalidOne, false, false, true, false, false, false, false},
		{ErrInvalidTwo, false, false, true, false, false, false, false},
		{ErrNotFoundOne, false, false, false, true, false, false, false},
		{ErrNotFoundTwo, false, false, false, true, false, false, false},
		{ErrProcessOne, false, false, false, false, true, false, false},
		{ErrProcessTwo, false, false, false, false, true, false, false},
		{ErrProtocolOne, false, false, false, false, false, true, false},
		{ErrProtocolTwo, false, false, false, false, false, true, false},
		{ErrRecordOne, false, false, false, false, false, false, true},
		{ErrRecordTwo, false, false, false, false, false, false, true},
		{fmt.Errorf("wrapped: %w", ErrRecordOne), false, false, false, false, false, false, true},
		{fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrNotFoundTwo)), false, false, false, true, false, false, false},
		{errors.New("plain"), false, false, false, false, false, false, false},
	}

	for i, e := range errorList {
		err := e.err
		if fault.IsErrBalance(err) != e.balance {
			t.Errorf("%d: expected 'balance' == %v for err = %v", i, e.balance, err)
		}
		if fault.IsErrExists(err) != e.exists {
			t.Errorf("%d: expected 'exists' == %v for err = %v", i, e.exists, err)
		}
		if fault.IsErrInvalid(err) != e.invalid {
			t.Errorf("%d: expected 'invalid' == %v for err = %v", i, e.invalid, err)
		}
		if fault.IsErrNotFound(err) != e.notFound {
			t.Errorf("%d: expected 'not found' == %v for err = %v", i, e.notFound, err)
		}
		if fault.IsErrProcess(err) != e.process {
			t.Errorf("%d: expected 'process' == %v for err = %v", i, e.process, err)
		}
		if fault.IsErrProtocol(err) != e.protocol {
			t.Errorf("%d: expected 'protocol' == %v for err = %v", i, e.protocol, err)
		}
		if fault.IsErrRecord(err) != e.record {
			t.Errorf("%d: expected 'record' == %v for err = %v", i, e.record, err)
		}
	}
}

func TestWrappedIdentity(t *testing.T) {
	err := fmt.Errorf("claim: %w", fault.ErrNothingToClaim)
	if !errors.Is(err, fault.ErrNothingToClaim) {
		t.Errorf("expected wrapped error to match: %v", err)
	}
	if errors.Is(err, fault.ErrLockMismatch) {
		t.Errorf("unexpected match with: %v", fault.ErrLockMismatch)
	}
}
