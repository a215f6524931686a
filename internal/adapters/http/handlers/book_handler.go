package handlers

import (
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/pagination"
	"libraryhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles catalog endpoints
type BookHandler struct {
	bookService *services.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// List lists books
// @Summary List books
// @Description Search the catalog by title, author or ISBN
// @Tags Books
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param search query string false "Title, author or ISBN"
// @Param status query string false "Available or Borrowed"
// @Param category query string false "Category"
// @Success 200 {object} response.Response
// @Router /books [get]
func (h *BookHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	filter := repositories.BookFilter{
		Search:   params.Search,
		Status:   domain.BookStatus(c.Query("status")),
		Category: c.Query("category"),
	}

	books, total, err := h.bookService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return renderError(c, err, "Failed to list books")
	}

	return response.Success(c, "Books retrieved successfully", pagination.NewResponse(books, params, total))
}

// Export downloads the whole catalog
// @Summary Export books
// @Description Download every book as a JSON array
// @Tags Books
// @Produce json
// @Success 200 {array} models.Book
// @Router /books/export [get]
func (h *BookHandler) Export(c *fiber.Ctx) error {
	books, err := h.bookService.Export(c.Context())
	if err != nil {
		return renderError(c, err, "Failed to export books")
	}

	c.Attachment("books.json")
	return c.JSON(books)
}

// Get gets a book by ID
// @Summary Get book
// @Tags Books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid ID")
	}

	book, err := h.bookService.GetByID(c.Context(), id)
	if err != nil {
		return renderError(c, err, "Failed to get book")
	}

	return response.Success(c, "Book retrieved successfully", book)
}

// Create adds a book
// @Summary Create book
// @Description Add a book to the catalog; new books are Available
// @Tags Books
// @Accept json
// @Produce json
// @Param body body services.BookInput true "Book data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /books [post]
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var req services.BookInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.bookService.Create(c.Context(), &req)
	if err != nil {
		return renderError(c, err, "Failed to create book")
	}

	return response.Created(c, "Book added successfully", book)
}

// Update edits a book
// @Summary Update book
// @Tags Books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param body body services.BookInput true "Book data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [put]
func (h *BookHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid ID")
	}

	var req services.BookInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.bookService.Update(c.Context(), id, &req)
	if err != nil {
		return renderError(c, err, "Failed to update book")
	}

	return response.Success(c, "Book updated successfully", book)
}

// Delete removes a book
// @Summary Delete book
// @Tags Books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid ID")
	}

	if err := h.bookService.Delete(c.Context(), id); err != nil {
		return renderError(c, err, "Failed to delete book")
	}

	return response.Success(c, "Book deleted successfully", nil)
}
