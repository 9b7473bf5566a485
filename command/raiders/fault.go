// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/bitmark-inc/raiders/fault"
)

// common errors - keep in alphabetic order
var (
	ErrInvalidDefine = fault.InvalidError("define must be NAME=VALUE")
	ErrInvalidOutRef = fault.InvalidError("output reference must be TXHASH#INDEX")
)

func missingOption(name string) error {
	return fmt.Errorf("option: --%s is required: %w", name, fault.InvalidError("missing option"))
}
