package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	assert.Equal(t, "ERROR_INTERNAL", (&Error{Code: CodeInternal}).Error())
	assert.Equal(t, "ERROR_INVALID_TYPE: bad", New(CodeInvalidType, "bad").Error())
	assert.Equal(t, "ERROR_EXM_FETCH_REQUEST: fetch: boom",
		Wrap(errors.New("boom"), CodeEXMFetchRequest, "fetch").Error())
}

func TestCodeOf(t *testing.T) {
	inner := New(CodeSignatureAlreadyUsed, "replayed")
	outer := Wrap(inner, CodeInvalidCallerSig, "signature rejected")

	assert.Equal(t, CodeInvalidCallerSig, CodeOf(outer))
	assert.Equal(t, CodeInvalidCallerSig, CodeOf(fmt.Errorf("context: %w", outer)))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.True(t, HasCode(outer, CodeInvalidCallerSig))
	assert.False(t, HasCode(outer, CodeSignatureAlreadyUsed))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestCaused(t *testing.T) {
	cause := errors.New("io")
	inner := Wrap(cause, CodeInvalidArweaveAddress, "bad address")
	outer := Wrap(inner, CodeMoleculeServerError, "lookup failed")

	assert.True(t, Caused(outer, CodeMoleculeServerError))
	assert.True(t, Caused(outer, CodeInvalidArweaveAddress))
	assert.False(t, Caused(outer, CodeCallerNotFound))
	assert.True(t, errors.Is(outer, cause))
	assert.False(t, Caused(nil, CodeInternal))
}
