package exm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ansdns/internal/records/models"
)

func TestBalances(t *testing.T) {
	t.Run("decodes the balances snapshot", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(`{"balances":[{"address":"a1","ownedDomains":[{"domain":"mine","color":"#fff"}]}]}`))
		}))
		defer srv.Close()

		c := New(WithBaseURL(srv.URL + "/read/"))
		got, err := c.Balances(context.Background(), "ans-contract")

		require.NoError(t, err)
		assert.Equal(t, "/read/ans-contract", gotPath)
		assert.Equal(t, []models.Balance{{Address: "a1", OwnedDomains: []models.OwnedDomain{{Domain: "mine"}}}}, got)
	})

	t.Run("server error is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := New(WithBaseURL(srv.URL)).Balances(context.Background(), "ans")
		assert.Error(t, err)
	})
}

func TestDefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New().baseURL)
	assert.Equal(t, DefaultBaseURL, New(WithBaseURL("")).baseURL)
}

func TestParseResponse(t *testing.T) {
	t.Run("empty list is valid", func(t *testing.T) {
		got, err := parseResponse(200, []byte(`{"balances":[]}`))
		require.NoError(t, err)
		assert.Empty(t, got)
	})
	t.Run("missing balances", func(t *testing.T) {
		_, err := parseResponse(200, []byte(`{"state":{}}`))
		assert.Error(t, err)
	})
	t.Run("malformed json", func(t *testing.T) {
		_, err := parseResponse(200, []byte(`<html>`))
		assert.Error(t, err)
	})
	t.Run("wrong shape", func(t *testing.T) {
		_, err := parseResponse(200, []byte(`{"balances":"nope"}`))
		assert.Error(t, err)
	})
}
