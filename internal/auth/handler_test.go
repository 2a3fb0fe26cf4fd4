package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/briefer/internal/auth"
	"github.com/JaimeStill/briefer/pkg/routes"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	sys := newSystem(newMemStore(), nil)
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestHandlerFlow(t *testing.T) {
	srv := newServer(t)

	registerBody := `{"first_name":"Ada","last_name":"Lovelace","company_name":"Acme Corp","email":"ada@example.com","password":"correct horse"}`

	req, _ := http.NewRequest("POST", srv.URL+"/auth/register", strings.NewReader(registerBody))
	resp, body := do(t, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	if body["email"] != "ada@example.com" {
		t.Errorf("register body = %v", body)
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Error("password hash serialized")
	}

	req, _ = http.NewRequest("POST", srv.URL+"/auth/register", strings.NewReader(registerBody))
	if resp, _ = do(t, req); resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", resp.StatusCode)
	}

	form := url.Values{"username": {"ada@example.com"}, "password": {"wrong"}}
	req, _ = http.NewRequest("POST", srv.URL+"/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if resp, _ = do(t, req); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", resp.StatusCode)
	}

	form.Set("password", "correct horse")
	req, _ = http.NewRequest("POST", srv.URL+"/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, body = do(t, req)
	if resp.StatusCode != http.StatusOK || body["token_type"] != "bearer" {
		t.Fatalf("login = %d %v", resp.StatusCode, body)
	}
	token := body["access_token"].(string)

	req, _ = http.NewRequest("GET", srv.URL+"/auth/me", nil)
	if resp, _ = do(t, req); resp.StatusCode != http.StatusUnauthorized || resp.Header.Get("WWW-Authenticate") != "Bearer" {
		t.Errorf("anonymous me = %d", resp.StatusCode)
	}

	req, _ = http.NewRequest("PUT", srv.URL+"/auth/persona", strings.NewReader(`{"persona":"CFO"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	resp, body = do(t, req)
	if resp.StatusCode != http.StatusOK || body["status"] != "success" || body["persona"] != "CFO" {
		t.Errorf("persona = %d %v", resp.StatusCode, body)
	}

	req, _ = http.NewRequest("GET", srv.URL+"/auth/me", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp, body = do(t, req)
	if resp.StatusCode != http.StatusOK || body["persona"] != "CFO" || body["company_name"] != "Acme Corp" {
		t.Errorf("me = %d %v", resp.StatusCode, body)
	}
}

func TestRegisterMalformedBody(t *testing.T) {
	srv := newServer(t)

	req, _ := http.NewRequest("POST", srv.URL+"/auth/register", strings.NewReader(`{`))
	if resp, _ := do(t, req); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":  "abc",
		"bearer  abc": "abc",
		"Basic abc":   "",
		"":            "",
		"Bearer":      "",
	}
	for header, want := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		if got := auth.BearerToken(r); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
