package handlers

import (
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles the dashboard and report endpoints
type ReportHandler struct {
	reportService      *services.ReportService
	transactionService *services.TransactionService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService, transactionService *services.TransactionService) *ReportHandler {
	return &ReportHandler{
		reportService:      reportService,
		transactionService: transactionService,
	}
}

// ReportsResponse is the reports page payload
type ReportsResponse struct {
	Stats    *services.DashboardStats   `json:"stats"`
	Activity []services.MonthlyActivity `json:"activity"`
}

// Dashboard returns the home page counters
// @Summary Dashboard
// @Description Catalog, membership and overdue counters with the latest borrows
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Response
// @Router / [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.reportService.Dashboard(c.Context())
	if err != nil {
		return renderError(c, err, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", stats)
}

// Reports returns the counters and monthly activity
// @Summary Reports
// @Tags Reports
// @Produce json
// @Param months query int false "Months of activity (default 6)"
// @Success 200 {object} response.Response
// @Router /reports [get]
func (h *ReportHandler) Reports(c *fiber.Ctx) error {
	stats, err := h.reportService.Dashboard(c.Context())
	if err != nil {
		return renderError(c, err, "Failed to load reports")
	}

	months := c.QueryInt("months", 6)
	if months > 24 {
		months = 24
	}
	activity, err := h.reportService.MonthlyActivity(c.Context(), months)
	if err != nil {
		return renderError(c, err, "Failed to load reports")
	}

	return response.Success(c, "Reports retrieved successfully", ReportsResponse{
		Stats:    stats,
		Activity: activity,
	})
}

// Overdue lists overdue borrows
// @Summary Overdue report
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Response
// @Router /reports/overdue [get]
func (h *ReportHandler) Overdue(c *fiber.Ctx) error {
	items, err := h.reportService.OverdueReport(c.Context())
	if err != nil {
		return renderError(c, err, "Failed to load overdue report")
	}

	return response.Success(c, "Overdue books retrieved successfully", items)
}

// SendReminder records a reminder for an overdue borrow
// @Summary Send reminder
// @Tags Reports
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reports/overdue/{id}/reminder [post]
func (h *ReportHandler) SendReminder(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid ID")
	}

	message, err := h.transactionService.SendReminder(c.Context(), id)
	if err != nil {
		return renderError(c, err, "Failed to send reminder")
	}

	return response.Success(c, message, nil)
}
