package handlers

import (
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/pagination"
	"libraryhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles membership endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// List lists members
// @Summary List members
// @Description Search members by name, email or membership ID
// @Tags Members
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param search query string false "Name, email or membership ID"
// @Param status query string false "Active or Inactive"
// @Success 200 {object} response.Response
// @Router /members [get]
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	filter := repositories.MemberFilter{
		Search: params.Search,
		Status: domain.MemberStatus(c.Query("status")),
	}

	members, total, err := h.memberService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return renderError(c, err, "Failed to list members")
	}

	return response.Success(c, "Members retrieved successfully", pagination.NewResponse(members, params, total))
}

// Export downloads every member
// @Summary Export members
// @Tags Members
// @Produce json
// @Success 200 {array} models.Member
// @Router /members/export [get]
func (h *MemberHandler) Export(c *fiber.Ctx) error {
	members, err := h.memberService.Export(c.Context())
	if err != nil {
		return renderError(c, err, "Failed to export members")
	}

	c.Attachment("members.json")
	return c.JSON(members)
}

// Get gets a member by ID
// @Summary Get member
// @Tags Members
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid ID")
	}

	member, err := h.memberService.GetByID(c.Context(), id)
	if err != nil {
		return renderError(c, err, "Failed to get member")
	}

	return response.Success(c, "Member retrieved successfully", member)
}

// Create registers a member
// @Summary Create member
// @Description Register a member; membership ID and join date are assigned
// @Tags Members
// @Accept json
// @Produce json
// @Param body body services.MemberInput true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members [post]
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var req services.MemberInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.Create(c.Context(), &req)
	if err != nil {
		return renderError(c, err, "Failed to create member")
	}

	return response.Created(c, "Member added successfully", member)
}

// Update edits a member
// @Summary Update member
// @Tags Members
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Param body body services.MemberInput true "Member data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members/{id} [put]
func (h *MemberHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid ID")
	}

	var req services.MemberInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	member, err := h.memberService.Update(c.Context(), id, &req)
	if err != nil {
		return renderError(c, err, "Failed to update member")
	}

	return response.Success(c, "Member updated successfully", member)
}

// Delete removes a member
// @Summary Delete member
// @Tags Members
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members/{id} [delete]
func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid ID")
	}

	if err := h.memberService.Delete(c.Context(), id); err != nil {
		return renderError(c, err, "Failed to delete member")
	}

	return response.Success(c, "Member deleted successfully", nil)
}
