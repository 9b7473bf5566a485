// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type BalanceError GenericError
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type ProtocolError GenericError
type RecordError GenericError

// common errors - keep in alphabetic order
var (
	ErrAddressIsNotKeyHash        = InvalidError("address payment credential is not a key hash")
	ErrAlreadyInitialised         = ExistsError("already initialised")
	ErrArtifactNotFound           = NotFoundError("program artifact not found")
	ErrBlueprintNotFound          = NotFoundError("blueprint file not found")
	ErrConfigurationNotTable      = InvalidError("configuration must return a table")
	ErrConfirmationTimeout        = ProcessError("confirmation timeout")
	ErrDeploymentNotFound         = NotFoundError("deployment not found")
	ErrDuplicateInput             = InvalidError("duplicate transaction input")
	ErrFeeNotConverged            = ProcessError("transaction fee did not converge")
	ErrFeePercentageOutOfRange    = RecordError("fee percentage out of range")
	ErrHashLength                 = InvalidError("hash length is invalid")
	ErrInputAlreadySpent          = ProcessError("input already spent")
	ErrInsufficientBalance        = BalanceError("insufficient balance")
	ErrInsufficientCollateral     = BalanceError("no suitable collateral input")
	ErrInvalidAddress             = InvalidError("invalid address")
	ErrInvalidAddressNetwork      = InvalidError("address is for a different network")
	ErrInvalidAddressType         = InvalidError("unsupported address type")
	ErrInvalidAssetName           = InvalidError("invalid asset name")
	ErrInvalidChain               = InvalidError("invalid chain")
	ErrInvalidCount               = InvalidError("invalid count")
	ErrInvalidDatum               = RecordError("invalid datum")
	ErrInvalidDirectory           = InvalidError("path is not a valid directory")
	ErrInvalidHexString           = InvalidError("invalid hex string")
	ErrInvalidKeyLength           = InvalidError("invalid key length")
	ErrInvalidParameterRef        = InvalidError("parameter reference does not carry a parameter datum")
	ErrInvalidPolicyId            = InvalidError("invalid policy id")
	ErrInvalidPrice               = InvalidError("price must be greater than 0")
	ErrInvalidProgram             = RecordError("invalid program")
	ErrInvalidQuantity            = InvalidError("quantity must be greater than or equal to 0")
	ErrInvalidRegistryDriver      = InvalidError("unsupported deployment registry driver")
	ErrInvalidScriptType          = InvalidError("invalid script type")
	ErrInvalidSigningKey          = InvalidError("invalid signing key")
	ErrInvalidTransaction         = RecordError("invalid transaction")
	ErrInvalidUnit                = InvalidError("invalid unit")
	ErrLockMismatch               = ProtocolError("locked address is not same as deployed")
	ErrMissingDatum               = RecordError("utxo does not have datum")
	ErrMissingRedeemer            = ProtocolError("redeemer missing for script purpose")
	ErrMissingSignature           = ProtocolError("required signature is missing")
	ErrNoChangeAddress            = InvalidError("change address is required")
	ErrNoFundingInput             = BalanceError("no funding input with enough lovelace and no reference script")
	ErrNothingToClaim             = ProtocolError("quantity must be greater than 0 to claim")
	ErrNotInitialised             = ProcessError("not initialised")
	ErrNotPlainFileName           = InvalidError("file name must not contain a path")
	ErrOutputTooSmall             = BalanceError("output below minimum lovelace")
	ErrOverflow                   = InvalidError("arithmetic overflow")
	ErrParameterNotFound          = NotFoundError("parameter not found")
	ErrRecordTruncated            = RecordError("record truncated")
	ErrRegistrySchema             = InvalidError("unsupported deployment registry schema")
	ErrScriptNotFound             = ProtocolError("script not available for purpose")
	ErrScriptReferenceNotFound    = NotFoundError("deployed utxo does not carry a reference script")
	ErrSubmissionFailed           = ProcessError("transaction submission failed")
	ErrTrailingData               = RecordError("unexpected trailing data")
	ErrTransactionNotFound        = NotFoundError("transaction not found")
	ErrUnauthorizedApprover       = ProtocolError("authorizer is not in parameter")
	ErrUnbalancedTransaction      = ProtocolError("transaction value is not conserved")
	ErrUnexpectedConstructor      = RecordError("unexpected constructor")
	ErrUnexpectedDataType         = RecordError("unexpected data type")
	ErrUnknownTag                 = RecordError("unknown tag")
	ErrUTxONotFound               = NotFoundError("utxo not found")
	ErrValueIsNegative            = InvalidError("value is negative")
	ErrWrongNumberOfConstrFields  = RecordError("wrong number of constructor fields")
	ErrWrongNumberOfDeployOutputs = ProcessError("deployed outputs not visible")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e BalanceError) Error() string  { return string(e) }
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e ProtocolError) Error() string { return string(e) }
func (e RecordError) Error() string   { return string(e) }

// determine the class of an error, looking through any wrapping
func IsErrBalance(e error) bool   { var t BalanceError; return errors.As(e, &t) }
func IsErrExists(e error) bool    { var t ExistsError; return errors.As(e, &t) }
func IsErrInvalid(e error) bool   { var t InvalidError; return errors.As(e, &t) }
func IsErrNotFound(e error) bool  { var t NotFoundError; return errors.As(e, &t) }
func IsErrProcess(e error) bool   { var t ProcessError; return errors.As(e, &t) }
func IsErrProtocol(e error) bool  { var t ProtocolError; return errors.As(e, &t) }
func IsErrRecord(e error) bool    { var t RecordError; return errors.As(e, &t) }
