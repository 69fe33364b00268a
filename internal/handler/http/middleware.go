package http

import (
	"net/http"
	"strings"
)

// ContentTypeJSON rejects write requests that declare a non-JSON body.
// Requests without a Content-Type header pass through; the JSON decoder
// downstream fails them if the body is not valid JSON anyway.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct != "" && !strings.HasPrefix(ct, "application/json") {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
