package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestIDKeepsOrReplacesHeader(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	cases := map[string]struct {
		header string
		keep   bool
	}{
		"client id":   {header: "checkout-42", keep: true},
		"missing":     {header: ""},
		"with spaces": {header: "order 42"},
		"too long":    {header: strings.Repeat("a", maxRequestIDLen+1)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(requestIDHeader, tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(requestIDHeader)
			if tc.keep {
				if got != tc.header {
					t.Fatalf("expected %q to be kept, got %q", tc.header, got)
				}
				return
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("expected generated uuid, got %q", got)
			}
		})
	}
}
