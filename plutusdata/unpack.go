// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package plutusdata

import (
	"encoding/hex"
	"math/big"

	"github.com/bitmark-inc/raiders/fault"
)

// nesting limit to stop hostile inputs exhausting the stack
const maxDepth = 256

// Unpack - decode a complete data value
//
// any bytes left over after the value are an error
func (record Packed) Unpack() (Data, error) {
	d, n, err := record.UnpackPrefix()
	if nil != err {
		return nil, err
	}
	if n != len(record) {
		return nil, fault.ErrTrailingData
	}
	return d, nil
}

// UnpackPrefix - decode one value from the front of the record
// returning the number of bytes consumed
func (record Packed) UnpackPrefix() (d Data, n int, e error) {

	defer func() {
		if r := recover(); nil != r {
			d = nil
			n = 0
			e = fault.ErrRecordTruncated
		}
	}()

	r := reader{buffer: record}
	d, err := r.data(0)
	if nil != err {
		return nil, 0, err
	}
	return d, r.n, nil
}

// UnpackHex - decode a hex encoded data value
func UnpackHex(s string) (Data, error) {
	b, err := hex.DecodeString(s)
	if nil != err {
		return nil, fault.ErrInvalidHexString
	}
	return Packed(b).Unpack()
}

type reader struct {
	buffer []byte
	n      int
}

func (r *reader) byte() byte {
	b := r.buffer[r.n]
	r.n += 1
	return b
}

func (r *reader) take(count uint64) []byte {
	if count > uint64(len(r.buffer)-r.n) {
		panic("truncated")
	}
	b := r.buffer[r.n : r.n+int(count)]
	r.n += int(count)
	return b
}

func (r *reader) peekBreak() bool {
	if breakCode == r.buffer[r.n] {
		r.n += 1
		return true
	}
	return false
}

// read a head returning major type, argument and indefinite flag
func (r *reader) head() (byte, uint64, bool, error) {
	initial := r.byte()
	major := initial >> 5
	info := initial & 0x1f

	switch {
	case info < 24:
		return major, uint64(info), false, nil
	case 24 == info:
		return major, uint64(r.byte()), false, nil
	case 25 == info:
		b := r.take(2)
		return major, uint64(b[0])<<8 | uint64(b[1]), false, nil
	case 26 == info:
		b := r.take(4)
		return major, uint64(b[0])<<24 | uint64(b[1])<<16 | uint64(b[2])<<8 | uint64(b[3]), false, nil
	case 27 == info:
		b := r.take(8)
		v := uint64(0)
		for _, x := range b {
			v = v<<8 | uint64(x)
		}
		return major, v, false, nil
	case indefinite == info:
		switch major {
		case majorBytes, majorArray, majorMap:
			return major, 0, true, nil
		}
	}
	return 0, 0, false, fault.ErrUnexpectedDataType
}

func (r *reader) data(depth int) (Data, error) {
	if depth > maxDepth {
		return nil, fault.ErrInvalidDatum
	}

	major, arg, indef, err := r.head()
	if nil != err {
		return nil, err
	}

	switch major {

	case majorUnsigned:
		return Integer{Value: new(big.Int).SetUint64(arg)}, nil

	case majorNegative:
		v := new(big.Int).SetUint64(arg)
		return Integer{Value: v.Neg(v).Sub(v, big.NewInt(1))}, nil

	case majorBytes:
		b, err := r.bytes(arg, indef)
		if nil != err {
			return nil, err
		}
		return Bytes(b), nil

	case majorArray:
		items, err := r.items(arg, indef, depth)
		if nil != err {
			return nil, err
		}
		return List(items), nil

	case majorMap:
		m := Map{}
		for i := uint64(0); indef || i < arg; i += 1 {
			if indef && r.peekBreak() {
				break
			}
			k, err := r.data(depth + 1)
			if nil != err {
				return nil, err
			}
			v, err := r.data(depth + 1)
			if nil != err {
				return nil, err
			}
			m = append(m, Pair{Key: k, Value: v})
		}
		return m, nil

	case majorTag:
		return r.tagged(arg, depth)
	}

	return nil, fault.ErrUnexpectedDataType
}

func (r *reader) tagged(tag uint64, depth int) (Data, error) {
	switch {
	case tag >= tagConstrSmall && tag < tagConstrSmall+7:
		fields, err := r.fields(depth)
		if nil != err {
			return nil, err
		}
		return Constr{Index: tag - tagConstrSmall, Fields: fields}, nil

	case tag >= tagConstrLarge && tag < tagConstrLarge+121:
		fields, err := r.fields(depth)
		if nil != err {
			return nil, err
		}
		return Constr{Index: tag - tagConstrLarge + 7, Fields: fields}, nil

	case tagConstrGeneral == tag:
		major, count, indef, err := r.head()
		if nil != err {
			return nil, err
		}
		if majorArray != major || indef || 2 != count {
			return nil, fault.ErrUnexpectedDataType
		}
		major, index, _, err := r.head()
		if nil != err {
			return nil, err
		}
		if majorUnsigned != major {
			return nil, fault.ErrUnexpectedDataType
		}
		fields, err := r.fields(depth)
		if nil != err {
			return nil, err
		}
		return Constr{Index: index, Fields: fields}, nil

	case tagPositiveBignum == tag, tagNegativeBignum == tag:
		major, arg, indef, err := r.head()
		if nil != err {
			return nil, err
		}
		if majorBytes != major {
			return nil, fault.ErrUnexpectedDataType
		}
		b, err := r.bytes(arg, indef)
		if nil != err {
			return nil, err
		}
		v := new(big.Int).SetBytes(b)
		if tagNegativeBignum == tag {
			v.Neg(v).Sub(v, big.NewInt(1))
		}
		return Integer{Value: v}, nil
	}
	return nil, fault.ErrUnknownTag
}

// constructor fields must be an array
func (r *reader) fields(depth int) ([]Data, error) {
	major, arg, indef, err := r.head()
	if nil != err {
		return nil, err
	}
	if majorArray != major {
		return nil, fault.ErrUnexpectedDataType
	}
	return r.items(arg, indef, depth)
}

func (r *reader) items(count uint64, indef bool, depth int) ([]Data, error) {
	items := []Data{}
	for i := uint64(0); indef || i < count; i += 1 {
		if indef && r.peekBreak() {
			break
		}
		item, err := r.data(depth + 1)
		if nil != err {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *reader) bytes(count uint64, indef bool) ([]byte, error) {
	if !indef {
		b := r.take(count)
		result := make([]byte, len(b))
		copy(result, b)
		return result, nil
	}
	result := []byte{}
	for !r.peekBreak() {
		major, n, chunkIndef, err := r.head()
		if nil != err {
			return nil, err
		}
		if majorBytes != major || chunkIndef {
			return nil, fault.ErrUnexpectedDataType
		}
		result = append(result, r.take(n)...)
	}
	return result, nil
}
