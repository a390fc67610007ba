package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealthEndpoints_TableDriven(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		ping   func() error
		path   string
		status int
	}{
		{name: "healthz always ok", ping: nil, path: "/healthz", status: http.StatusOK},
		{name: "readyz without store", ping: nil, path: "/readyz", status: http.StatusOK},
		{name: "readyz store ok", ping: func() error { return nil }, path: "/readyz", status: http.StatusOK},
		{name: "readyz store down", ping: func() error { return errors.New("down") }, path: "/readyz", status: http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			NewHealthHandler(tc.ping).Register(r)

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
		})
	}
}
