// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script

import (
	"math/big"

	"github.com/bitmark-inc/raiders/fault"
)

// untyped plutus core terms, as stored in the flat encoding
type term interface{}

type (
	varTerm     struct{ index uint64 }
	delayTerm   struct{ body term }
	lambdaTerm  struct{ body term }
	applyTerm   struct{ function, argument term }
	constTerm   struct{ constant constant }
	forceTerm   struct{ body term }
	errorTerm   struct{}
	builtinTerm struct{ function byte }
	constrTerm  struct {
		tag    uint64
		fields []term
	}
	caseTerm struct {
		scrutinee term
		branches  []term
	}
)

// term tags, four bits each
const (
	tagVar     = 0
	tagDelay   = 1
	tagLambda  = 2
	tagApply   = 3
	tagConst   = 4
	tagForce   = 5
	tagError   = 6
	tagBuiltin = 7
	tagConstr  = 8
	tagCase    = 9
)

// constant type tags, four bits each
const (
	typeInteger     = 0
	typeByteString  = 1
	typeString      = 2
	typeUnit        = 3
	typeBool        = 4
	typeList        = 5
	typePair        = 6
	typeApplication = 7
	typeData        = 8
)

// a constant is its type tag list and a value matching that type
//
// values: *big.Int, []byte, string, nil, bool, []interface{}, [2]interface{}
type constant struct {
	types []byte
	value interface{}
}

type program struct {
	version [3]uint64
	body    term
}

// decodeProgram - parse a complete flat encoded program
func decodeProgram(flat []byte) (p *program, e error) {

	defer func() {
		if r := recover(); nil != r {
			p = nil
			e = fault.ErrInvalidProgram
		}
	}()

	r := &bitReader{buffer: flat}
	p = &program{}
	for i := range p.version {
		p.version[i] = r.word()
	}
	p.body = r.term()
	r.filler()
	if r.position != 8*len(flat) {
		return nil, fault.ErrInvalidProgram
	}
	return p, nil
}

// encode - the flat encoding of a program
func (p *program) encode() []byte {
	w := &bitWriter{}
	for _, v := range p.version {
		w.word(v)
	}
	w.term(p.body)
	w.filler()
	return w.buffer
}

// ---------------------------------------------------------------------
// reading

type bitReader struct {
	buffer   []byte
	position int
}

type flatError string

func (r *bitReader) bit() bool {
	b := r.buffer[r.position>>3]
	shift := 7 - uint(r.position&7)
	r.position += 1
	return 0 != (b>>shift)&1
}

func (r *bitReader) bits(n int) byte {
	v := byte(0)
	for i := 0; i < n; i += 1 {
		v <<= 1
		if r.bit() {
			v |= 1
		}
	}
	return v
}

// 7 bit groups, least significant first, high bit set to continue
func (r *bitReader) natural() *big.Int {
	result := new(big.Int)
	shift := uint(0)
	for {
		b := r.bits(8)
		chunk := new(big.Int).SetUint64(uint64(b & 0x7f))
		result.Or(result, chunk.Lsh(chunk, shift))
		shift += 7
		if 0 == b&0x80 {
			return result
		}
	}
}

func (r *bitReader) word() uint64 {
	n := r.natural()
	if !n.IsUint64() {
		panic(flatError("word overflow"))
	}
	return n.Uint64()
}

func (r *bitReader) integer() *big.Int {
	n := r.natural()
	negative := 1 == n.Bit(0)
	n.Rsh(n, 1)
	if negative {
		n.Neg(n).Sub(n, big.NewInt(1))
	}
	return n
}

// filler is zero or more 0 bits then a 1 bit ending a byte
func (r *bitReader) filler() {
	for !r.bit() {
	}
	if 0 != r.position&7 {
		panic(flatError("misaligned filler"))
	}
}

func (r *bitReader) byteString() []byte {
	r.filler()
	result := []byte{}
	for {
		n := int(r.buffer[r.position>>3])
		r.position += 8
		if 0 == n {
			return result
		}
		start := r.position >> 3
		result = append(result, r.buffer[start:start+n]...)
		r.position += 8 * n
	}
}

func (r *bitReader) more() bool {
	return r.bit()
}

func (r *bitReader) term() term {
	switch tag := r.bits(4); tag {
	case tagVar:
		return varTerm{index: r.word()}
	case tagDelay:
		return delayTerm{body: r.term()}
	case tagLambda:
		return lambdaTerm{body: r.term()}
	case tagApply:
		f := r.term()
		a := r.term()
		return applyTerm{function: f, argument: a}
	case tagConst:
		types := r.typeTags()
		value := r.value(types)
		return constTerm{constant: constant{types: types, value: value}}
	case tagForce:
		return forceTerm{body: r.term()}
	case tagError:
		return errorTerm{}
	case tagBuiltin:
		return builtinTerm{function: r.bits(7)}
	case tagConstr:
		t := constrTerm{tag: r.word(), fields: []term{}}
		for r.more() {
			t.fields = append(t.fields, r.term())
		}
		return t
	case tagCase:
		t := caseTerm{scrutinee: r.term(), branches: []term{}}
		for r.more() {
			t.branches = append(t.branches, r.term())
		}
		return t
	default:
		panic(flatError("unknown term tag"))
	}
}

func (r *bitReader) typeTags() []byte {
	types := []byte{}
	for r.more() {
		types = append(types, r.bits(4))
	}
	return types
}

// value reads a constant of the type at the front of the tag list
// and returns it with the remaining tags
func (r *bitReader) value(types []byte) interface{} {
	v, rest := r.typedValue(types)
	if 0 != len(rest) {
		panic(flatError("excess type tags"))
	}
	return v
}

func (r *bitReader) typedValue(types []byte) (interface{}, []byte) {
	switch types[0] {
	case typeInteger:
		return r.integer(), types[1:]
	case typeByteString, typeData:
		return r.byteString(), types[1:]
	case typeString:
		return string(r.byteString()), types[1:]
	case typeUnit:
		return nil, types[1:]
	case typeBool:
		return r.bit(), types[1:]
	case typeApplication:
		if len(types) > 2 && typeList == types[1] {
			items := []interface{}{}
			var rest []byte
			for r.more() {
				var item interface{}
				item, rest = r.typedValue(types[2:])
				items = append(items, item)
			}
			if nil == rest {
				rest = skipType(types[2:])
			}
			return items, rest
		}
		if len(types) > 3 && typeApplication == types[1] && typePair == types[2] {
			first, rest := r.typedValue(types[3:])
			second, rest := r.typedValue(rest)
			return [2]interface{}{first, second}, rest
		}
	}
	panic(flatError("unsupported constant type"))
}

// skipType returns the tags following one complete type
func skipType(types []byte) []byte {
	switch types[0] {
	case typeApplication:
		if typeList == types[1] {
			return skipType(types[2:])
		}
		if typeApplication == types[1] && typePair == types[2] {
			return skipType(skipType(types[3:]))
		}
		panic(flatError("unsupported constant type"))
	default:
		return types[1:]
	}
}

// ---------------------------------------------------------------------
// writing

type bitWriter struct {
	buffer []byte
	used   uint // bits used in the last byte, 0 means a new byte is needed
}

func (w *bitWriter) bit(b bool) {
	if 0 == w.used {
		w.buffer = append(w.buffer, 0)
	}
	if b {
		w.buffer[len(w.buffer)-1] |= 1 << (7 - w.used)
	}
	w.used = (w.used + 1) & 7
}

func (w *bitWriter) bits(n int, v byte) {
	for i := n - 1; i >= 0; i -= 1 {
		w.bit(0 != (v>>uint(i))&1)
	}
}

func (w *bitWriter) natural(n *big.Int) {
	n = new(big.Int).Set(n)
	mask := big.NewInt(0x7f)
	for {
		chunk := byte(new(big.Int).And(n, mask).Uint64())
		n.Rsh(n, 7)
		if 0 == n.Sign() {
			w.bits(8, chunk)
			return
		}
		w.bits(8, chunk|0x80)
	}
}

func (w *bitWriter) word(v uint64) {
	w.natural(new(big.Int).SetUint64(v))
}

// zigzag: non-negative to even, negative to odd
func (w *bitWriter) integer(i *big.Int) {
	n := new(big.Int).Lsh(i, 1)
	if i.Sign() < 0 {
		n.Neg(n).Sub(n, big.NewInt(1))
	}
	w.natural(n)
}

func (w *bitWriter) filler() {
	for 7 != w.used {
		w.bit(false)
	}
	w.bit(true)
}

func (w *bitWriter) byteString(b []byte) {
	w.filler()
	for len(b) > 0 {
		n := len(b)
		if n > 255 {
			n = 255
		}
		w.buffer = append(w.buffer, byte(n))
		w.buffer = append(w.buffer, b[:n]...)
		b = b[n:]
	}
	w.buffer = append(w.buffer, 0)
}

func (w *bitWriter) term(t term) {
	switch v := t.(type) {
	case varTerm:
		w.bits(4, tagVar)
		w.word(v.index)
	case delayTerm:
		w.bits(4, tagDelay)
		w.term(v.body)
	case lambdaTerm:
		w.bits(4, tagLambda)
		w.term(v.body)
	case applyTerm:
		w.bits(4, tagApply)
		w.term(v.function)
		w.term(v.argument)
	case constTerm:
		w.bits(4, tagConst)
		for _, tag := range v.constant.types {
			w.bit(true)
			w.bits(4, tag)
		}
		w.bit(false)
		w.typedValue(v.constant.types, v.constant.value)
	case forceTerm:
		w.bits(4, tagForce)
		w.term(v.body)
	case errorTerm:
		w.bits(4, tagError)
	case builtinTerm:
		w.bits(4, tagBuiltin)
		w.bits(7, v.function)
	case constrTerm:
		w.bits(4, tagConstr)
		w.word(v.tag)
		for _, f := range v.fields {
			w.bit(true)
			w.term(f)
		}
		w.bit(false)
	case caseTerm:
		w.bits(4, tagCase)
		w.term(v.scrutinee)
		for _, b := range v.branches {
			w.bit(true)
			w.term(b)
		}
		w.bit(false)
	default:
		panic(flatError("unknown term"))
	}
}

func (w *bitWriter) typedValue(types []byte, value interface{}) []byte {
	switch types[0] {
	case typeInteger:
		w.integer(value.(*big.Int))
		return types[1:]
	case typeByteString, typeData:
		w.byteString(value.([]byte))
		return types[1:]
	case typeString:
		w.byteString([]byte(value.(string)))
		return types[1:]
	case typeUnit:
		return types[1:]
	case typeBool:
		w.bit(value.(bool))
		return types[1:]
	case typeApplication:
		if typeList == types[1] {
			for _, item := range value.([]interface{}) {
				w.bit(true)
				w.typedValue(types[2:], item)
			}
			w.bit(false)
			return skipType(types[2:])
		}
		pair := value.([2]interface{})
		rest := w.typedValue(types[3:], pair[0])
		return w.typedValue(rest, pair[1])
	}
	panic(flatError("unsupported constant type"))
}
