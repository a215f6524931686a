package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"libraryhub/internal/adapters/http/middleware"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/config"
	"libraryhub/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type testClient struct {
	t     *testing.T
	app   *fiber.App
	token string
}

type result struct {
	status int
	header http.Header
	body   map[string]any
	raw    []byte
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	cfg := &config.Config{
		AppMode: "dev",
		JWT:     config.JWTConfig{Secret: "routes-secret", TokenTTL: time.Hour},
		Cookie:  config.CookieConfig{SameSite: "lax"},
		Loans:   config.LoanConfig{PeriodDays: 14},
	}

	deps, err := NewDependencies(repositories.NewMemoryStore(), nil, cfg)
	if err != nil {
		t.Fatalf("dependencies: %v", err)
	}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	if err := Setup(app, deps, cfg); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return &testClient{t: t, app: app}
}

func (tc *testClient) do(method, path string, body any, headers ...string) result {
	tc.t.Helper()
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.token != "" {
		req.AddCookie(&http.Cookie{Name: session.TokenCookie, Value: tc.token})
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := tc.app.Test(req, -1)
	if err != nil {
		tc.t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	out := result{status: resp.StatusCode, header: resp.Header, raw: raw}
	_ = json.Unmarshal(raw, &out.body)
	return out
}

func (r result) data() map[string]any {
	data, _ := r.body["data"].(map[string]any)
	return data
}

func (r result) id() int {
	id, _ := r.data()["id"].(float64)
	return int(id)
}

func (tc *testClient) login() {
	tc.t.Helper()
	signup := tc.do(http.MethodPost, "/auth/signup", map[string]string{
		"email": "librarian@example.com", "password": "s3cret", "name": "Librarian",
	})
	if signup.status != fiber.StatusOK {
		tc.t.Fatalf("signup: %d %s", signup.status, signup.raw)
	}
	login := tc.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "librarian@example.com", "password": "s3cret",
	})
	if login.status != fiber.StatusOK {
		tc.t.Fatalf("login: %d %s", login.status, login.raw)
	}
	tc.token, _ = login.body["token"].(string)
}

func TestAuthFlow(t *testing.T) {
	tc := newTestClient(t)

	if r := tc.do(http.MethodGet, "/books", nil); r.status != fiber.StatusFound || r.header.Get("Location") != "/auth/login" {
		t.Fatalf("expected redirect to login, got %d %q", r.status, r.header.Get("Location"))
	}
	if r := tc.do(http.MethodGet, "/auth/login", nil); r.status != fiber.StatusOK {
		t.Fatalf("login page should be public for guests, got %d", r.status)
	}
	for _, path := range []string{"/BOOKS", "/Members", "/books/", "/Transactions/export", "/Reports/overdue"} {
		if r := tc.do(http.MethodGet, path, nil); r.status != fiber.StatusFound || r.header.Get("Location") != "/auth/login" {
			t.Fatalf("%s: expected redirect to login, got %d %q", path, r.status, r.header.Get("Location"))
		}
	}
	if r := tc.do(http.MethodPost, "/Books", map[string]string{"title": "X", "author": "Y", "isbn": "9780000000000", "category": "Z"}); r.status != fiber.StatusFound {
		t.Fatalf("anonymous create should be redirected, got %d %s", r.status, r.raw)
	}

	signup := tc.do(http.MethodPost, "/auth/signup", map[string]string{"email": "a@example.com", "password": "pw", "name": "A"})
	if signup.status != fiber.StatusOK || signup.body["message"] != "signup success" {
		t.Fatalf("unexpected signup: %d %s", signup.status, signup.raw)
	}
	dup := tc.do(http.MethodPost, "/auth/signup", map[string]string{"email": "A@example.com", "password": "pw", "name": "A"})
	if dup.status != fiber.StatusConflict || dup.body["error"] != "Email already registered" {
		t.Fatalf("unexpected duplicate signup: %d %s", dup.status, dup.raw)
	}

	wrong := tc.do(http.MethodPost, "/auth/login", map[string]string{"email": "a@example.com", "password": "nope"})
	if wrong.status != fiber.StatusUnauthorized || wrong.body["error"] != "Invalid credentials" {
		t.Fatalf("unexpected wrong login: %d %s", wrong.status, wrong.raw)
	}
	missing := tc.do(http.MethodPost, "/auth/login", map[string]string{"email": "a@example.com"})
	if missing.status != fiber.StatusBadRequest || missing.body["error"] != "No valid credentials" {
		t.Fatalf("unexpected missing login: %d %s", missing.status, missing.raw)
	}

	ok := tc.do(http.MethodPost, "/auth/login", map[string]string{"email": "a@example.com", "password": "pw"})
	if ok.status != fiber.StatusOK || ok.body["message"] != "Login success" || ok.body["success"] != true {
		t.Fatalf("unexpected login: %d %s", ok.status, ok.raw)
	}
	if ok.body["userId"] != float64(1) || ok.body["token"] == "" {
		t.Fatalf("expected userId and token in body: %s", ok.raw)
	}
	cookies := strings.Join(ok.header.Values("Set-Cookie"), "\n")
	if !strings.Contains(cookies, "token=") || !strings.Contains(cookies, "userId=1") {
		t.Fatalf("expected session cookies, got %s", cookies)
	}

	// a sixth auth attempt inside the window is throttled
	if r := tc.do(http.MethodPost, "/auth/login", map[string]string{"email": "a@example.com", "password": "pw"}); r.status != fiber.StatusTooManyRequests {
		t.Fatalf("expected throttling, got %d", r.status)
	}

	tc.token, _ = ok.body["token"].(string)
	if r := tc.do(http.MethodGet, "/auth/login", nil); r.status != fiber.StatusFound || r.header.Get("Location") != "/" {
		t.Fatalf("signed-in user should be sent home, got %d %q", r.status, r.header.Get("Location"))
	}
	if r := tc.do(http.MethodGet, "/auth/login/", nil); r.status != fiber.StatusFound || r.header.Get("Location") != "/" {
		t.Fatalf("trailing slash should not escape the guest rule, got %d %q", r.status, r.header.Get("Location"))
	}
	if r := tc.do(http.MethodGet, "/BOOKS", nil); r.status != fiber.StatusOK {
		t.Fatalf("signed-in user should reach books in any case, got %d", r.status)
	}
	if r := tc.do(http.MethodGet, "/", nil); r.status != fiber.StatusOK {
		t.Fatalf("dashboard: %d %s", r.status, r.raw)
	}

	logout := tc.do(http.MethodPost, "/auth/logout", nil)
	if logout.status != fiber.StatusOK || !strings.Contains(strings.Join(logout.header.Values("Set-Cookie"), "\n"), "token=;") {
		t.Fatalf("logout should clear the token cookie: %d %v", logout.status, logout.header.Values("Set-Cookie"))
	}
}

func TestCirculationOverHTTP(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	book := tc.do(http.MethodPost, "/books", map[string]string{
		"title": "1984", "author": "George Orwell", "isbn": "9780451524935", "category": "Science Fiction", "publishedYear": "1949",
	})
	if book.status != fiber.StatusCreated || book.data()["status"] != "Available" {
		t.Fatalf("create book: %d %s", book.status, book.raw)
	}
	bad := tc.do(http.MethodPost, "/books", map[string]string{"title": "X", "author": "Y", "isbn": "123", "category": "Z"})
	if bad.status != fiber.StatusBadRequest || bad.body["error"] != "ISBN must be at least 10 characters" {
		t.Fatalf("expected isbn validation error, got %d %s", bad.status, bad.raw)
	}

	member := tc.do(http.MethodPost, "/members", map[string]string{"name": "John Doe", "email": "john@example.com"})
	if member.status != fiber.StatusCreated || member.data()["membershipId"] != "LIB-1001" {
		t.Fatalf("create member: %d %s", member.status, member.raw)
	}
	other := tc.do(http.MethodPost, "/members", map[string]string{"name": "Alice Smith", "email": "alice@example.com"})

	borrow := tc.do(http.MethodPost, "/transactions/borrow", map[string]int{"memberId": member.id(), "bookId": book.id()})
	if borrow.status != fiber.StatusCreated || borrow.data()["type"] != "Borrow" || borrow.data()["status"] != "Active" {
		t.Fatalf("borrow: %d %s", borrow.status, borrow.raw)
	}
	again := tc.do(http.MethodPost, "/transactions/borrow", map[string]int{"memberId": other.id(), "bookId": book.id()})
	if again.status != fiber.StatusConflict || again.body["error"] != "Book is already borrowed" {
		t.Fatalf("second borrow: %d %s", again.status, again.raw)
	}
	if r := tc.do(http.MethodPost, "/transactions/borrow", map[string]int{"memberId": 99, "bookId": book.id()}); r.status != fiber.StatusNotFound {
		t.Fatalf("unknown member: %d %s", r.status, r.raw)
	}
	if r := tc.do(http.MethodDelete, fmt.Sprintf("/books/%d", book.id()), nil); r.status != fiber.StatusConflict {
		t.Fatalf("deleting a borrowed book should conflict, got %d", r.status)
	}

	returnPath := fmt.Sprintf("/transactions/%d/return", borrow.id())
	ret := tc.do(http.MethodPost, returnPath, nil)
	if ret.status != fiber.StatusOK || ret.data()["type"] != "Return" {
		t.Fatalf("return: %d %s", ret.status, ret.raw)
	}
	if r := tc.do(http.MethodPost, returnPath, nil); r.status != fiber.StatusConflict || r.body["error"] != "Invalid transaction for return" {
		t.Fatalf("double return: %d %s", r.status, r.raw)
	}
	if r := tc.do(http.MethodPost, "/transactions/999/return", nil); r.status != fiber.StatusNotFound {
		t.Fatalf("unknown transaction: %d", r.status)
	}

	fetched := tc.do(http.MethodGet, fmt.Sprintf("/books/%d", book.id()), nil)
	if fetched.data()["status"] != "Available" {
		t.Fatalf("book should be available after return: %s", fetched.raw)
	}

	list := tc.do(http.MethodGet, "/transactions?limit=1", nil)
	meta, _ := list.data()["meta"].(map[string]any)
	if list.status != fiber.StatusOK || meta["total"] != float64(2) || meta["hasNext"] != true {
		t.Fatalf("unexpected transaction page: %s", list.raw)
	}

	export := tc.do(http.MethodGet, "/transactions/export", nil)
	var rows []map[string]any
	if err := json.Unmarshal(export.raw, &rows); err != nil || len(rows) != 2 {
		t.Fatalf("export should be a JSON array of 2 rows: %v %s", err, export.raw)
	}
	if !strings.Contains(export.header.Get("Content-Disposition"), "transactions.json") {
		t.Fatalf("export should be an attachment, got %q", export.header.Get("Content-Disposition"))
	}

	if r := tc.do(http.MethodGet, "/books/abc", nil); r.status != fiber.StatusBadRequest {
		t.Fatalf("invalid id: %d", r.status)
	}
}

func TestEmptyExportsAreArrays(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	for _, path := range []string{"/books/export", "/members/export", "/transactions/export"} {
		r := tc.do(http.MethodGet, path, nil)
		if r.status != fiber.StatusOK || strings.TrimSpace(string(r.raw)) != "[]" {
			t.Fatalf("%s: expected an empty JSON array, got %d %s", path, r.status, r.raw)
		}
	}
}

func TestListingsRevalidate(t *testing.T) {
	tc := newTestClient(t)
	tc.login()

	first := tc.do(http.MethodGet, "/books", nil)
	tag := first.header.Get("ETag")
	if first.status != fiber.StatusOK || tag == "" {
		t.Fatalf("expected tagged listing, got %d %q", first.status, tag)
	}
	if r := tc.do(http.MethodGet, "/books", nil, "If-None-Match", tag); r.status != fiber.StatusNotModified {
		t.Fatalf("expected 304, got %d", r.status)
	}

	tc.do(http.MethodPost, "/books", map[string]string{"title": "Dune", "author": "Frank Herbert", "isbn": "9780441172719", "category": "Science Fiction"})

	r := tc.do(http.MethodGet, "/books", nil, "If-None-Match", tag)
	if r.status != fiber.StatusOK {
		t.Fatalf("listing should refresh after a mutation, got %d", r.status)
	}
	items, _ := r.data()["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected the new book, got %s", r.raw)
	}
}

func TestReportsAndHealth(t *testing.T) {
	tc := newTestClient(t)

	if r := tc.do(http.MethodGet, "/health", nil); r.status != fiber.StatusOK {
		t.Fatalf("health: %d %s", r.status, r.raw)
	}

	tc.login()
	reports := tc.do(http.MethodGet, "/reports?months=3", nil)
	activity, _ := reports.data()["activity"].([]any)
	if reports.status != fiber.StatusOK || len(activity) != 3 {
		t.Fatalf("reports: %d %s", reports.status, reports.raw)
	}
	if r := tc.do(http.MethodGet, "/reports/overdue", nil); r.status != fiber.StatusOK {
		t.Fatalf("overdue: %d %s", r.status, r.raw)
	}
	if r := tc.do(http.MethodPost, "/reports/overdue/42/reminder", nil); r.status != fiber.StatusNotFound {
		t.Fatalf("reminder for unknown transaction: %d %s", r.status, r.raw)
	}
}
