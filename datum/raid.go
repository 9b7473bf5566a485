// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package datum

import (
	"fmt"

	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/plutusdata"
)

const raidFields = 3

// Raid - a bounty escrow
type Raid struct {
	Quantity int64         `json:"quantity"`
	Price    uint64        `json:"price"`
	Creator  digest.Hash28 `json:"creator"`
}

// ToData - structured form
func (r *Raid) ToData() plutusdata.Data {
	return plutusdata.NewConstr(0,
		plutusdata.Int(r.Quantity),
		plutusdata.Uint(r.Price),
		plutusdata.Bytes(r.Creator.Bytes()),
	)
}

// Pack - binary form for an inline datum
func (r *Raid) Pack() (plutusdata.Packed, error) {
	if r.Quantity < 0 {
		return nil, fault.ErrInvalidQuantity
	}
	if 0 == r.Price {
		return nil, fault.ErrInvalidPrice
	}
	return plutusdata.Pack(r.ToData())
}

// Claimed - the record after one unit is claimed
func (r *Raid) Claimed() (*Raid, error) {
	if r.Quantity <= 0 {
		return nil, fault.ErrNothingToClaim
	}
	return &Raid{
		Quantity: r.Quantity - 1,
		Price:    r.Price,
		Creator:  r.Creator,
	}, nil
}

// UnpackRaid - decode an inline datum
func UnpackRaid(record plutusdata.Packed) (*Raid, error) {
	d, err := record.Unpack()
	if nil != err {
		return nil, err
	}
	r, err := RaidFromData(d)
	if nil != err {
		return nil, fmt.Errorf("raid: %w", err)
	}
	return r, nil
}

// RaidFromData - decode the structured form
func RaidFromData(d plutusdata.Data) (*Raid, error) {
	fields, err := plutusdata.AsConstr(d, 0, raidFields)
	if nil != err {
		return nil, err
	}

	r := &Raid{}
	r.Quantity, err = plutusdata.AsInt64(fields[0])
	if nil != err {
		return nil, err
	}
	if r.Quantity < 0 {
		return nil, fault.ErrInvalidDatum
	}

	r.Price, err = plutusdata.AsUint64(fields[1])
	if nil != err {
		return nil, err
	}
	if 0 == r.Price {
		return nil, fault.ErrInvalidDatum
	}

	err = hash28FromData(&r.Creator, fields[2])
	if nil != err {
		return nil, err
	}
	return r, nil
}
