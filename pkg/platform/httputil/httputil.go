// Package httputil renders JSON responses and coded errors for the HTTP host.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "ansdns/pkg/domain-errors"
)

// ErrorResponse is the envelope of every failed request. Only the code is
// exposed; messages and causes stay in the logs.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the code of err with its mapped status.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, StatusFor(code), ErrorResponse{Error: string(code)})
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeMissingArguments,
		dErrors.CodeInvalidType,
		dErrors.CodeInvalidStringLength,
		dErrors.CodeInvalidRecordName,
		dErrors.CodeInvalidDNSType,
		dErrors.CodeInvalidANSSyntax,
		dErrors.CodeInvalidFunction,
		dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeInvalidJWKNSyntax,
		dErrors.CodeInvalidCallerSig,
		dErrors.CodeSignatureAlreadyUsed:
		return http.StatusUnauthorized
	case dErrors.CodeCallerNotFound,
		dErrors.CodeNotDomainOwner:
		return http.StatusForbidden
	case dErrors.CodeDomainNotFound,
		dErrors.CodeRecordNotFound:
		return http.StatusNotFound
	case dErrors.CodeTransactionReused:
		return http.StatusConflict
	case dErrors.CodeMoleculeServerError,
		dErrors.CodeInvalidArweaveAddress,
		dErrors.CodeEXMFetchRequest:
		return http.StatusBadGateway
	case dErrors.CodeStateUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
