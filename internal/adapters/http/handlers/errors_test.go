package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"libraryhub/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

func TestRenderError(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{domain.NewValidationError("title", "Title is required"), fiber.StatusBadRequest, "Title is required"},
		{domain.ErrBookNotFound, fiber.StatusNotFound, "Book not found"},
		{domain.ErrBookUnavailable, fiber.StatusConflict, "Book is already borrowed"},
		{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid credentials"},
		{domain.ErrSecretKeyMissing, fiber.StatusInternalServerError, "Internal server error"},
		{domain.StoreError("get book", errors.New("connection reset")), fiber.StatusInternalServerError, "Failed"},
	}

	for _, tt := range tests {
		app := fiber.New()
		err := tt.err
		app.Get("/", func(c *fiber.Ctx) error { return renderError(c, err, "Failed") })

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		if resp.StatusCode != tt.status {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.status, resp.StatusCode)
		}
		var body struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Success || body.Error != tt.message {
			t.Fatalf("%v: unexpected body %+v", tt.err, body)
		}
	}
}
