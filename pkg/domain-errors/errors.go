// Package domainerrors carries the stable error vocabulary callers branch on.
//
// Every failure surfaced by the record handler is an *Error whose Code is one
// of the wire-visible ERROR_* strings. The Message and wrapped Err are for
// logs only; transports must render the Code and nothing else.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a wire-visible failure reason.
type Code string

// Input shape errors.
const (
	CodeMissingArguments      Code = "ERROR_MISSING_ARGUMENTS"
	CodeInvalidType           Code = "ERROR_INVALID_TYPE"
	CodeInvalidStringLength   Code = "ERROR_INVALID_STRING_LENGTH"
	CodeInvalidRecordName     Code = "ERROR_PROVIDE_VALID_DNS_RECORD_NAME"
	CodeInvalidDNSType        Code = "ERROR_INVALID_DNS_TYPE"
	CodeInvalidANSSyntax      Code = "ERROR_INVALID_ANS_SYNTAX"
	CodeInvalidFunction       Code = "ERROR_INVALID_FUNCTION_SUPPLIED"
	CodeInvalidJWKNSyntax     Code = "ERROR_INVALID_JWK_N_SYNTAX"
	CodeSignatureAlreadyUsed  Code = "ERROR_SIGNATURE_ALREADY_USED"
	CodeInvalidCallerSig      Code = "ERROR_INVALID_CALLER_SIGNATURE"
	CodeInvalidArweaveAddress Code = "ERROR_INVALID_ARWEAVE_ADDRESS"
	CodeMoleculeServerError   Code = "ERROR_MOLECULE_SERVER_ERROR"
)

// Authorization and state errors.
const (
	CodeCallerNotFound    Code = "ERROR_CALLER_NOT_FOUND"
	CodeNotDomainOwner    Code = "ERROR_CALLER_NOT_DOMAIN_OWNER"
	CodeEXMFetchRequest   Code = "ERROR_EXM_FETCH_REQUEST"
	CodeDomainNotFound    Code = "ERROR_DOMAIN_NOT_FOUND"
	CodeRecordNotFound    Code = "ERROR_RECORD_NOT_FOUND"
	CodeTransactionReused Code = "ERROR_TRANSACTION_ID_ALREADY_USED"
	CodeInternal          Code = "ERROR_INTERNAL"
	CodeStateUnavailable  Code = "ERROR_STATE_UNAVAILABLE"
	CodeBadRequest        Code = "ERROR_BAD_REQUEST"
)

// Error is a typed rejection.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a rejection with the given code.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code to an underlying error. The underlying error stays
// reachable through errors.Is / errors.As but never reaches the caller.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the outermost code in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost coded error in err's chain has code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Caused reports whether code appears anywhere in err's chain. Used to find
// the coalesced sub-cause behind an outward code.
func Caused(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}
