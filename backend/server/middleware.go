package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDMiddleware tags every request with an id, reusing one supplied by
// a proxy if present. The id is echoed in the response headers and included
// in debug request logs.
func RequestIDMiddleware(next http.Handler) http.Handler {
	handler := func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(req.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, req.WithContext(ctx))
	}

	return http.HandlerFunc(handler)
}

// SecurityHeadersMiddleware sets headers that keep browsers from sniffing or
// framing returned files.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	handler := func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, req)
	}

	return http.HandlerFunc(handler)
}

func requestID(req *http.Request) string {
	id, _ := req.Context().Value(requestIDKey{}).(string)
	return id
}
