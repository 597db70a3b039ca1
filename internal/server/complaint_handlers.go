package server

import (
	"strings"

	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

func complaintStatusQuery(c *fiber.Ctx) (models.ComplaintStatus, error) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" {
		return "", nil
	}
	status, ok := models.ParseComplaintStatus(raw)
	if !ok {
		return "", models.NewValidationError("Invalid complaint status")
	}
	return status, nil
}

func complaintFilter(c *fiber.Ctx) (repository.ComplaintFilter, error) {
	var filter repository.ComplaintFilter
	status, err := complaintStatusQuery(c)
	if err != nil {
		return filter, err
	}
	filter.Status = status
	if raw := strings.TrimSpace(c.Query("targetType")); raw != "" {
		target, ok := models.ParseComplaintTarget(raw)
		if !ok {
			return filter, models.NewValidationError("Invalid target type")
		}
		filter.TargetType = target
	}
	return filter, nil
}

// CreateComplaint handles POST /api/complaints
// @Summary File a complaint
// @Tags complaints
// @Accept json
// @Produce json
// @Param request body service.ComplaintInput true "Complaint"
// @Success 201 {object} models.Complaint
// @Security BearerAuth
// @Router /complaints [post]
func (s *Server) CreateComplaint(c *fiber.Ctx) error {
	var in service.ComplaintInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	complaint, err := s.complaintService.Create(c.UserContext(), principal(c), in)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Complaint submitted successfully",
		"complaint": complaint,
	})
}

// ListComplaints handles GET /api/complaints. Admins see every complaint,
// everyone else sees their own.
func (s *Server) ListComplaints(c *fiber.Ctx) error {
	if principal(c).IsAdmin() {
		return s.ListAllComplaints(c)
	}
	return s.ListMyComplaints(c)
}

// ListMyComplaints handles GET /api/complaints/my-complaints
func (s *Server) ListMyComplaints(c *fiber.Ctx) error {
	status, err := complaintStatusQuery(c)
	if err != nil {
		return models.RespondError(c, err)
	}
	page := parsePage(c)
	items, total, err := s.complaintService.ListMine(c.UserContext(), principal(c), status, page)
	if err != nil {
		return models.RespondError(c, err)
	}
	return paginated(c, "complaints", items, page, total)
}

// ListAllComplaints handles GET /api/complaints/admin/all
func (s *Server) ListAllComplaints(c *fiber.Ctx) error {
	filter, err := complaintFilter(c)
	if err != nil {
		return models.RespondError(c, err)
	}
	page := parsePage(c)
	items, total, err := s.complaintService.List(c.UserContext(), filter, page)
	if err != nil {
		return models.RespondError(c, err)
	}
	return paginated(c, "complaints", items, page, total)
}

// ReviewComplaint handles PUT /api/complaints/admin/:id/review
func (s *Server) ReviewComplaint(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	complaint, err := s.complaintService.Review(c.UserContext(), principal(c), id, in)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Complaint updated", "complaint": complaint})
}
