package molecule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ansdns/internal/records/metrics"
)

const address = "vZY2XY1RD9HIfWi8ift-1_DnHLDadZMWrufSh-_rKF0"

func TestResolveAddress(t *testing.T) {
	t.Run("returns address and requests the key path", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(`{"address":"` + address + `"}`))
		}))
		defer srv.Close()

		c := New(WithMetrics(metrics.New(prometheus.NewRegistry())))
		got, err := c.ResolveAddress(context.Background(), srv.URL+"/ota/", "abc_-123")

		require.NoError(t, err)
		assert.Equal(t, address, got)
		assert.Equal(t, "/ota/abc_-123", gotPath)
	})

	t.Run("non 200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := New().ResolveAddress(context.Background(), srv.URL, "k")
		assert.Error(t, err)
	})

	t.Run("timeout is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		_, err := New(WithTimeout(20*time.Millisecond)).ResolveAddress(context.Background(), srv.URL, "k")
		assert.Error(t, err)
	})

	t.Run("unreachable host is an error", func(t *testing.T) {
		_, err := New().ResolveAddress(context.Background(), "http://127.0.0.1:1", "k")
		assert.Error(t, err)
	})
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{name: "address present", status: 200, body: `{"address":"` + address + `"}`, want: address},
		{name: "extra fields ignored", status: 200, body: `{"address":"x","winston":"0"}`, want: "x"},
		{name: "address missing", status: 200, body: `{}`, wantErr: true},
		{name: "malformed json", status: 200, body: `{`, wantErr: true},
		{name: "not found", status: 404, body: `{"address":"x"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse(tt.status, []byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
