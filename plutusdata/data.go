// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package plutusdata

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/bitmark-inc/raiders/fault"
)

// Data - the ledger's structured data value
//
// one of: Constr, Integer, Bytes, List, Map
type Data interface {
	isData()
	String() string
}

// Constr - tagged constructor with positional fields
type Constr struct {
	Index  uint64
	Fields []Data
}

// Integer - arbitrary precision integer
type Integer struct {
	Value *big.Int
}

// Bytes - a byte string
type Bytes []byte

// List - an ordered list of values
type List []Data

// Pair - a key value entry in a Map
type Pair struct {
	Key   Data
	Value Data
}

// Map - ordered key value pairs, keys are not required to be unique
type Map []Pair

func (Constr) isData()  {}
func (Integer) isData() {}
func (Bytes) isData()   {}
func (List) isData()    {}
func (Map) isData()     {}

// NewConstr - create a constructor value
func NewConstr(index uint64, fields ...Data) Constr {
	if nil == fields {
		fields = []Data{}
	}
	return Constr{Index: index, Fields: fields}
}

// Void - the unit value, constructor 0 with no fields
func Void() Data {
	return NewConstr(0)
}

// Int - create an integer from a signed value
func Int(i int64) Data {
	return Integer{Value: big.NewInt(i)}
}

// Uint - create an integer from an unsigned value
func Uint(u uint64) Data {
	return Integer{Value: new(big.Int).SetUint64(u)}
}

func (c Constr) String() string {
	s := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		s[i] = f.String()
	}
	return fmt.Sprintf("Constr %d [%s]", c.Index, strings.Join(s, ", "))
}

func (i Integer) String() string {
	if nil == i.Value {
		return "0"
	}
	return i.Value.String()
}

func (b Bytes) String() string {
	return "#" + hex.EncodeToString(b)
}

func (l List) String() string {
	s := make([]string, len(l))
	for i, f := range l {
		s[i] = f.String()
	}
	return "[" + strings.Join(s, ", ") + "]"
}

func (m Map) String() string {
	s := make([]string, len(m))
	for i, p := range m {
		s[i] = p.Key.String() + ": " + p.Value.String()
	}
	return "{" + strings.Join(s, ", ") + "}"
}

// Equal - structural equality of two values
func Equal(a Data, b Data) bool {
	switch x := a.(type) {
	case Constr:
		y, ok := b.(Constr)
		if !ok || x.Index != y.Index || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !Equal(x.Fields[i], y.Fields[i]) {
				return false
			}
		}
		return true
	case Integer:
		y, ok := b.(Integer)
		return ok && 0 == bigOf(x).Cmp(bigOf(y))
	case Bytes:
		y, ok := b.(Bytes)
		return ok && bytes.Equal(x, y)
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Map:
		y, ok := b.(Map)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i].Key, y[i].Key) || !Equal(x[i].Value, y[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func bigOf(i Integer) *big.Int {
	if nil == i.Value {
		return new(big.Int)
	}
	return i.Value
}

// AsConstr - expect a constructor with a given index and field count
func AsConstr(d Data, index uint64, fieldCount int) ([]Data, error) {
	c, ok := d.(Constr)
	if !ok {
		return nil, fault.ErrUnexpectedDataType
	}
	if c.Index != index {
		return nil, fault.ErrUnexpectedConstructor
	}
	if len(c.Fields) != fieldCount {
		return nil, fault.ErrWrongNumberOfConstrFields
	}
	return c.Fields, nil
}

// AsBytes - expect a byte string
func AsBytes(d Data) ([]byte, error) {
	b, ok := d.(Bytes)
	if !ok {
		return nil, fault.ErrUnexpectedDataType
	}
	return b, nil
}

// AsList - expect a list
func AsList(d Data) ([]Data, error) {
	l, ok := d.(List)
	if !ok {
		return nil, fault.ErrUnexpectedDataType
	}
	return l, nil
}

// AsInt64 - expect an integer that fits a signed 64 bit value
func AsInt64(d Data) (int64, error) {
	i, ok := d.(Integer)
	if !ok {
		return 0, fault.ErrUnexpectedDataType
	}
	v := bigOf(i)
	if !v.IsInt64() {
		return 0, fault.ErrInvalidDatum
	}
	return v.Int64(), nil
}

// AsUint64 - expect an integer that fits an unsigned 64 bit value
func AsUint64(d Data) (uint64, error) {
	i, ok := d.(Integer)
	if !ok {
		return 0, fault.ErrUnexpectedDataType
	}
	v := bigOf(i)
	if !v.IsUint64() {
		return 0, fault.ErrInvalidDatum
	}
	return v.Uint64(), nil
}
