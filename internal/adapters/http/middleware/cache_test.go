package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestViewCache(t *testing.T) {
	versions := NewViewVersions()
	app := fiber.New()
	app.Use(ViewCache(versions))
	hits := 0
	app.Get("/books", func(c *fiber.Ctx) error {
		hits++
		return c.JSON(fiber.Map{"hits": hits})
	})
	app.Get("/members", func(c *fiber.Ctx) error { return c.SendString("members") })

	get := func(path, etag string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if etag != "" {
			req.Header.Set("If-None-Match", etag)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		return resp
	}

	first := get("/books", "")
	tag := first.Header.Get("ETag")
	if first.StatusCode != fiber.StatusOK || tag == "" {
		t.Fatalf("expected 200 with etag, got %d %q", first.StatusCode, tag)
	}

	if resp := get("/books", tag); resp.StatusCode != fiber.StatusNotModified {
		t.Fatalf("expected 304 for unchanged view, got %d", resp.StatusCode)
	}
	if hits != 1 {
		t.Fatalf("handler should not run on 304, ran %d times", hits)
	}

	if resp := get("/books?page=2", tag); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("a different query must not match, got %d", resp.StatusCode)
	}

	versions.Invalidate("/members")
	if resp := get("/books", tag); resp.StatusCode != fiber.StatusNotModified {
		t.Fatalf("unrelated invalidation should keep the etag, got %d", resp.StatusCode)
	}

	versions.Invalidate("/books")
	resp := get("/books", tag)
	if resp.StatusCode != fiber.StatusOK || resp.Header.Get("ETag") == tag {
		t.Fatalf("expected fresh response after invalidation, got %d", resp.StatusCode)
	}
}

func TestViewFor(t *testing.T) {
	tests := map[string]string{
		"/":                    "/",
		"/books":               "/books",
		"/books/12":            "/books",
		"/reports/overdue":     "/reports",
		"/transactions/export": "/transactions",
	}
	for path, want := range tests {
		if got := viewFor(path); got != want {
			t.Fatalf("%s: expected %s, got %s", path, want, got)
		}
	}
}
