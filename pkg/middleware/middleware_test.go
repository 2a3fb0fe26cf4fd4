package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/briefer/pkg/middleware"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApplyOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	sys := middleware.New()
	sys.Use(tag("outer"))
	sys.Use(tag("inner"))

	h := sys.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if got := strings.Join(order, ","); got != "outer,inner,handler" {
		t.Errorf("order = %s, want outer,inner,handler", got)
	}
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		cfg        middleware.CORSConfig
		method     string
		origin     string
		wantHeader string
		wantStatus int
	}{
		{
			name:       "disabled passes through",
			cfg:        middleware.CORSConfig{Enabled: false, Origins: []string{"http://a"}},
			method:     "GET",
			origin:     "http://a",
			wantHeader: "",
			wantStatus: http.StatusOK,
		},
		{
			name:       "allowed origin",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"http://a"}},
			method:     "GET",
			origin:     "http://a",
			wantHeader: "http://a",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wildcard origin",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"*"}},
			method:     "GET",
			origin:     "http://b",
			wantHeader: "http://b",
			wantStatus: http.StatusOK,
		},
		{
			name:       "disallowed origin",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"http://a"}},
			method:     "GET",
			origin:     "http://c",
			wantHeader: "",
			wantStatus: http.StatusOK,
		},
		{
			name:       "preflight",
			cfg:        middleware.CORSConfig{Enabled: true, Origins: []string{"http://a"}},
			method:     "OPTIONS",
			origin:     "http://a",
			wantHeader: "http://a",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if err := cfg.Finalize(nil); err != nil {
				t.Fatalf("finalize: %v", err)
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			middleware.CORS(&cfg)(ok).ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Errorf("allow-origin = %q, want %q", got, tt.wantHeader)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestCORSEnv(t *testing.T) {
	t.Setenv("TEST_CORS_ORIGINS", " http://a , ,http://b")
	t.Setenv("TEST_CORS_ENABLED", "true")

	var cfg middleware.CORSConfig
	if err := cfg.Finalize(&middleware.CORSEnv{
		Enabled: "TEST_CORS_ENABLED",
		Origins: "TEST_CORS_ORIGINS",
	}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if !cfg.Enabled {
		t.Error("enabled = false, want true")
	}
	if len(cfg.Origins) != 2 || cfg.Origins[0] != "http://a" || cfg.Origins[1] != "http://b" {
		t.Errorf("origins = %v", cfg.Origins)
	}
	if cfg.MaxAge != 3600 {
		t.Errorf("max age = %d, want 3600", cfg.MaxAge)
	}
}

func TestRecover(t *testing.T) {
	h := middleware.Recover(discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestLoggerKeepsStatus(t *testing.T) {
	h := middleware.Logger(discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}
