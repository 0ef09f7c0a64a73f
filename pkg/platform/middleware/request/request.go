// Package request provides the middleware that fills requestcontext for the
// record handlers: request id, request time, client metadata and the
// transaction identity of mutating actions.
package request

import (
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"ansdns/pkg/requestcontext"
)

// TransactionIDHeader lets a caller pin the identity of a mutating action.
const TransactionIDHeader = "X-Transaction-ID"

const maxTransactionIDLength = 128

// Context copies chi's request id into requestcontext and captures the
// request time and client metadata. Mount it after chi's RequestID.
func Context(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithRequestID(ctx, chimw.GetReqID(ctx))
		ctx = requestcontext.WithTime(ctx, time.Now())
		ctx = requestcontext.WithClientMetadata(ctx, ClientIP(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TransactionID assigns the identity records created by this request will
// carry: the caller's X-Transaction-ID when usable, otherwise a fresh UUID.
// The chosen value is echoed in the response header.
func TransactionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		txID := strings.TrimSpace(r.Header.Get(TransactionIDHeader))
		if txID == "" || len(txID) > maxTransactionIDLength {
			txID = uuid.NewString()
		}
		w.Header().Set(TransactionIDHeader, txID)
		ctx := requestcontext.WithTransactionID(r.Context(), txID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP extracts the client IP, honouring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// The first entry is the original client.
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return "unknown"
}
