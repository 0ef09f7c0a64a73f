package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ansdns/pkg/domain-errors"
)

func TestNormalizeDomain(t *testing.T) {
	t.Run("case variants collapse to one key", func(t *testing.T) {
		for _, in := range []string{"EXAMPLE", "example", "Example"} {
			got, err := NormalizeDomain(in)
			require.NoError(t, err)
			assert.Equal(t, "example", got)
		}
	})

	t.Run("compatibility forms are folded by NFKC", func(t *testing.T) {
		// fullwidth latin letters and digits
		got, err := NormalizeDomain("ｅｘａｍｐｌｅ１")
		require.NoError(t, err)
		assert.Equal(t, "example1", got)
	})

	t.Run("rejects malformed labels", func(t *testing.T) {
		for _, in := range []string{"", "a", "sixteencharsxxxx", "has-dash", "dot.ted", "spa ce", "ünïcode"} {
			_, err := NormalizeDomain(in)
			require.Error(t, err, in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidANSSyntax), in)
		}
	})

	t.Run("accepts boundary lengths", func(t *testing.T) {
		_, err := NormalizeDomain("ab")
		require.NoError(t, err)
		_, err = NormalizeDomain("abcdefghijklmno")
		require.NoError(t, err)
	})
}
