// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokenname_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/tokenname"
)

func TestKnownNames(t *testing.T) {
	txId := digest.Hash32{}
	copy(txId[:], bytes.Repeat([]byte{0xa1}, digest.Hash32Length))

	items := []struct {
		index    uint32
		expected string
	}{
		{0, "f65ecdfc7dc414d7816eb3b9248488094e00fb6b69e67da0509cb6e0af055fa2"},
		{1, "6cfe0adff46d6e1880b5b2216b9cb2ec4ceccf688d7149bc56638edc03165d71"},
		{256, "21960266ee6afb87fef006adcc81ff3eb9f3690555fbedb922df400180122b75"},
		{16777216, "bd95c3e6048add06031f2a025e61223d610f346999864c2a3490698e6ae24c98"},
	}

	for i, item := range items {
		name := tokenname.FromOutRef(ledger.OutRef{TxId: txId, Index: item.index})
		if item.expected != name.String() {
			t.Errorf("%d: index: %d  actual: %s  expected: %s", i, item.index, name, item.expected)
		}
	}
}

func TestDeterministic(t *testing.T) {
	ref := randomRef(t)
	if tokenname.FromOutRef(ref) != tokenname.FromOutRef(ref) {
		t.Fatalf("name for %s is not stable", ref)
	}
}

func TestUniqueness(t *testing.T) {
	const count = 10000

	seen := make(map[digest.Hash32]ledger.OutRef, 2*count)
	for i := 0; i < count; i += 1 {
		ref := randomRef(t)

		// same transaction, neighbouring index
		sibling := ref
		sibling.Index += 1

		for _, r := range []ledger.OutRef{ref, sibling} {
			name := tokenname.FromOutRef(r)
			if previous, ok := seen[name]; ok && previous != r {
				t.Fatalf("collision: %s and %s both give: %s", previous, r, name)
			}
			seen[name] = r
		}
	}
}

func randomRef(t *testing.T) ledger.OutRef {
	ref := ledger.OutRef{}
	if _, err := rand.Read(ref.TxId[:]); nil != err {
		t.Fatalf("random error: %s", err)
	}
	b := make([]byte, 1)
	if _, err := rand.Read(b); nil != err {
		t.Fatalf("random error: %s", err)
	}
	ref.Index = uint32(b[0])
	return ref
}
