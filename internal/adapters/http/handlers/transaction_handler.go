package handlers

import (
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/pagination"
	"libraryhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler handles circulation endpoints
type TransactionHandler struct {
	transactionService *services.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// List lists transactions newest first
// @Summary List transactions
// @Tags Transactions
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param search query string false "Member name or book title"
// @Param type query string false "Borrow or Return"
// @Param status query string false "Active, Completed or Overdue"
// @Param memberId query int false "Member ID"
// @Param bookId query int false "Book ID"
// @Success 200 {object} response.Response
// @Router /transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	filter := repositories.TransactionFilter{
		Search:   params.Search,
		Type:     domain.TxType(c.Query("type")),
		Status:   domain.TxStatus(c.Query("status")),
		MemberID: queryID(c, "memberId"),
		BookID:   queryID(c, "bookId"),
	}

	txs, total, err := h.transactionService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return renderError(c, err, "Failed to list transactions")
	}

	return response.Success(c, "Transactions retrieved successfully", pagination.NewResponse(txs, params, total))
}

// Export downloads every transaction
// @Summary Export transactions
// @Tags Transactions
// @Produce json
// @Success 200 {array} models.Transaction
// @Router /transactions/export [get]
func (h *TransactionHandler) Export(c *fiber.Ctx) error {
	txs, err := h.transactionService.Export(c.Context())
	if err != nil {
		return renderError(c, err, "Failed to export transactions")
	}

	c.Attachment("transactions.json")
	return c.JSON(txs)
}

// Get gets a transaction by ID
// @Summary Get transaction
// @Tags Transactions
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transactions/{id} [get]
func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid ID")
	}

	tx, err := h.transactionService.GetByID(c.Context(), id)
	if err != nil {
		return renderError(c, err, "Failed to get transaction")
	}

	return response.Success(c, "Transaction retrieved successfully", tx)
}

// Borrow lends a book to a member
// @Summary Borrow book
// @Description Record a borrow; the book becomes Borrowed and is due after the loan period
// @Tags Transactions
// @Accept json
// @Produce json
// @Param body body services.BorrowInput true "Member and book"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /transactions/borrow [post]
func (h *TransactionHandler) Borrow(c *fiber.Ctx) error {
	var req services.BorrowInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	tx, err := h.transactionService.Borrow(c.Context(), &req)
	if err != nil {
		return renderError(c, err, "Failed to borrow book")
	}

	return response.Created(c, "Book borrowed successfully", tx)
}

// Return closes a borrow
// @Summary Return book
// @Description Close an open borrow and record the return
// @Tags Transactions
// @Produce json
// @Param id path int true "Borrow transaction ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /transactions/{id}/return [post]
func (h *TransactionHandler) Return(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid ID")
	}

	tx, err := h.transactionService.Return(c.Context(), id)
	if err != nil {
		return renderError(c, err, "Failed to return book")
	}

	return response.Success(c, "Book returned successfully", tx)
}
