package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"ansdns/pkg/requestcontext"
)

func TestTransactionID(t *testing.T) {
	var got string
	h := TransactionID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestcontext.TransactionID(r.Context())
	}))

	t.Run("honours caller header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/actions", nil)
		req.Header.Set(TransactionIDHeader, "tx-42")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, "tx-42", got)
		assert.Equal(t, "tx-42", rr.Header().Get(TransactionIDHeader))
	})

	t.Run("mints uuid when absent", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/actions", nil))

		_, err := uuid.Parse(got)
		assert.NoError(t, err)
		assert.Equal(t, got, rr.Header().Get(TransactionIDHeader))
	})

	t.Run("replaces oversized header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/actions", nil)
		req.Header.Set(TransactionIDHeader, strings.Repeat("x", 200))
		h.ServeHTTP(httptest.NewRecorder(), req)

		_, err := uuid.Parse(got)
		assert.NoError(t, err)
	})
}

func TestContext(t *testing.T) {
	var reqID, ip, ua string
	h := chimw.RequestID(Context(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID = requestcontext.RequestID(r.Context())
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	req.Header.Set("User-Agent", "ansdnsctl")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEmpty(t, reqID)
	assert.Equal(t, "10.0.0.1", ip)
	assert.Equal(t, "ansdnsctl", ua)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	assert.Equal(t, "192.168.1.5", ClientIP(req))

	req.Header.Set("X-Real-IP", " 172.16.0.9 ")
	assert.Equal(t, "172.16.0.9", ClientIP(req))
}
