package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"libraryhub/internal/config"
	"libraryhub/internal/pkg/jwt"
	"libraryhub/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

const testSecret = "guard-secret"

func guardApp(t *testing.T, policy *Policy) *fiber.App {
	t.Helper()
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret, TokenTTL: time.Hour}}

	app := fiber.New()
	app.Use(SessionGuard(policy, cfg))
	echo := func(c *fiber.Ctx) error {
		userID, _ := c.Locals("userID").(uint)
		return c.SendString(strconv.FormatUint(uint64(userID), 10))
	}
	for _, path := range []string{"/", "/books", "/books/:id", "/auth/login", "/auth/signup", "/auth/logout", "/health", "/bookshelf"} {
		app.Get(path, echo)
	}
	return app
}

func doGet(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.TokenCookie, Value: token})
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func validToken(t *testing.T, userID uint) string {
	t.Helper()
	token, err := jwt.GenerateSessionToken(userID, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func clearedCookies(resp *http.Response) map[string]bool {
	cleared := map[string]bool{}
	for _, cookie := range resp.Cookies() {
		if cookie.Value == "" {
			cleared[cookie.Name] = true
		}
	}
	return cleared
}

func TestGuardWithoutToken(t *testing.T) {
	app := guardApp(t, DefaultPolicy())

	tests := []struct {
		path     string
		status   int
		location string
	}{
		{"/", fiber.StatusFound, LoginPath},
		{"/books", fiber.StatusFound, LoginPath},
		{"/books/7", fiber.StatusFound, LoginPath},
		{"/BOOKS", fiber.StatusFound, LoginPath},
		{"/Books/7", fiber.StatusFound, LoginPath},
		{"/books/", fiber.StatusFound, LoginPath},
		{"/auth/login", fiber.StatusOK, ""},
		{"/auth/signup", fiber.StatusOK, ""},
		{"/auth/logout", fiber.StatusOK, ""},
		{"/health", fiber.StatusOK, ""},
		{"/bookshelf", fiber.StatusOK, ""},
	}
	for _, tt := range tests {
		resp := doGet(t, app, tt.path, "")
		if resp.StatusCode != tt.status {
			t.Fatalf("%s: expected %d, got %d", tt.path, tt.status, resp.StatusCode)
		}
		if got := resp.Header.Get("Location"); got != tt.location {
			t.Fatalf("%s: expected location %q, got %q", tt.path, tt.location, got)
		}
	}
}

func TestGuardWithValidToken(t *testing.T) {
	app := guardApp(t, DefaultPolicy())
	token := validToken(t, 12)

	resp := doGet(t, app, "/books/3", token)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "12" {
		t.Fatalf("expected userID 12 in locals, got %q", body)
	}

	resp = doGet(t, app, "/auth/login", token)
	if resp.StatusCode != fiber.StatusFound || resp.Header.Get("Location") != HomePath {
		t.Fatalf("guest page with session should redirect home, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	// bearer header works too
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != fiber.StatusOK {
		t.Fatalf("bearer token should be accepted, got %v %v", resp.StatusCode, err)
	}
}

func TestGuardWithBadToken(t *testing.T) {
	app := guardApp(t, DefaultPolicy())
	expired, _ := jwt.GenerateSessionToken(5, testSecret, -time.Minute)
	forged, _ := jwt.GenerateSessionToken(5, "someone-else", time.Hour)

	for _, token := range []string{expired, forged, "not-a-jwt"} {
		resp := doGet(t, app, "/members", token)
		if resp.StatusCode != fiber.StatusFound || resp.Header.Get("Location") != LoginPath {
			t.Fatalf("expected redirect to login, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
		}
		cleared := clearedCookies(resp)
		if !cleared[session.TokenCookie] || !cleared[session.UserIDCookie] {
			t.Fatalf("expected session cookies cleared, got %v", resp.Header.Values("Set-Cookie"))
		}
	}

	// guest pages send a stale session back to login with cookies cleared
	for _, path := range []string{"/auth/login", "/auth/signup"} {
		resp := doGet(t, app, path, expired)
		if resp.StatusCode != fiber.StatusFound || resp.Header.Get("Location") != LoginPath {
			t.Fatalf("%s: expected redirect to login, got %d %q", path, resp.StatusCode, resp.Header.Get("Location"))
		}
		if !clearedCookies(resp)[session.TokenCookie] {
			t.Fatalf("%s: expected token cookie cleared", path)
		}
	}

	// public pages are served after clearing cookies
	resp := doGet(t, app, "/health", expired)
	if resp.StatusCode != fiber.StatusOK || !clearedCookies(resp)[session.TokenCookie] {
		t.Fatalf("public page should be served with cookies cleared, got %d", resp.StatusCode)
	}
}

func TestPolicyResolve(t *testing.T) {
	policy := &Policy{
		Default: AccessAuthenticated,
		Rules: []Rule{
			{Path: "/books", Prefix: true, Access: AccessAuthenticated},
			{Path: "/books/public", Prefix: true, Access: AccessPublic},
			{Path: "/books/public/draft", Access: AccessAuthenticated},
			{Path: "/docs/", Prefix: true, Access: AccessPublic},
		},
	}

	tests := map[string]Access{
		"/books":                  AccessAuthenticated,
		"/books/public":           AccessPublic,
		"/books/public/catalogue": AccessPublic,
		"/books/public/draft":     AccessAuthenticated,
		"/docs/index.html":        AccessPublic,
		"/elsewhere":              AccessAuthenticated,
		"/BOOKS":                  AccessAuthenticated,
		"/Books/Public/Catalogue": AccessPublic,
		"/books/public/draft/":    AccessAuthenticated,
		"//books//public":         AccessPublic,
		"/DOCS/index.html":        AccessPublic,
	}
	for path, want := range tests {
		if got := policy.Resolve(path); got != want {
			t.Fatalf("%s: expected %s, got %s", path, want, got)
		}
	}
}

func TestLoadPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guard.yaml")
	content := `
default: public
rules:
  - path: /
    access: authenticated
  - path: /catalogue
    prefix: true
    access: authenticated
  - path: /auth/login
    access: guest
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}

	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	if len(policy.Rules) != 3 || policy.Resolve("/catalogue/9") != AccessAuthenticated || policy.Resolve("/books") != AccessPublic {
		t.Fatalf("unexpected policy: %+v", policy)
	}

	bad := filepath.Join(dir, "bad.yaml")
	_ = os.WriteFile(bad, []byte("rules:\n  - path: /x\n    access: admins\n"), 0o600)
	if _, err := LoadPolicy(bad); err == nil {
		t.Fatalf("expected error for unknown access level")
	}
	if _, err := LoadPolicy(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDefaultPolicyIgnoresCaseAndTrailingSlash(t *testing.T) {
	policy := DefaultPolicy()

	tests := map[string]Access{
		"/BOOKS":               AccessAuthenticated,
		"/Members":             AccessAuthenticated,
		"/books/":              AccessAuthenticated,
		"/Transactions/export": AccessAuthenticated,
		"/REPORTS/overdue":     AccessAuthenticated,
		"/auth/login/":         AccessGuest,
		"/Auth/Signup":         AccessGuest,
		"":                     AccessAuthenticated,
		"/health":              AccessPublic,
	}
	for path, want := range tests {
		if got := policy.Resolve(path); got != want {
			t.Fatalf("%q: expected %s, got %s", path, want, got)
		}
	}
}
