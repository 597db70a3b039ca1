package server

import (
	"strings"

	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/service"
	"jobboard/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// applicationFilter reads the status and jobId query filters.
func applicationFilter(c *fiber.Ctx) (repository.ApplicationFilter, error) {
	var filter repository.ApplicationFilter
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, ok := models.ParseApplicationStatus(raw)
		if !ok {
			return filter, models.NewValidationError("Invalid status")
		}
		filter.Status = status
	}
	jobID, err := queryUint(c, "jobId")
	if err != nil {
		return filter, err
	}
	filter.JobID = jobID
	return filter, nil
}

// CreateApplication handles POST /api/applications. Accepts JSON or a
// multipart form with an optional resume file.
// @Summary Apply to a job
// @Tags applications
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} models.Application
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /applications [post]
func (s *Server) CreateApplication(c *fiber.Ctx) error {
	var req struct {
		JobID       validation.FlexInt `json:"jobId"`
		CoverLetter string             `json:"coverLetter"`
	}

	form, err := multipartForm(c)
	if err != nil {
		return models.RespondError(c, err)
	}
	if form != nil {
		raw, _ := formValue(form, "jobId")
		if err := req.JobID.Parse(raw); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid job ID"))
		}
		req.CoverLetter, _ = formValue(form, "coverLetter")
	} else if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.JobID.Value < 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid job ID"))
	}

	resume, err := formFile(form, s.maxUpload, "resume")
	if err != nil {
		return models.RespondError(c, err)
	}

	app, err := s.applicationService.Create(c.UserContext(), principal(c), service.ApplyInput{
		JobID:       uint(req.JobID.Value),
		CoverLetter: req.CoverLetter,
		Resume:      resume,
	})
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Application submitted successfully",
		"application": app,
	})
}

// ListMyApplications handles GET /api/applications
func (s *Server) ListMyApplications(c *fiber.Ctx) error {
	filter, err := applicationFilter(c)
	if err != nil {
		return models.RespondError(c, err)
	}
	page := parsePage(c)
	apps, total, err := s.applicationService.ListMine(c.UserContext(), principal(c), filter, page)
	if err != nil {
		return models.RespondError(c, err)
	}
	return paginated(c, "applications", apps, page, total)
}

// GetApplication handles GET /api/applications/:id
func (s *Server) GetApplication(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	app, err := s.applicationService.ResolveForViewer(c.UserContext(), id, principal(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"application": app, "message": "Application retrieved successfully"})
}

// DownloadApplicationResume handles GET /api/applications/:id/resume
func (s *Server) DownloadApplicationResume(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	att, err := s.applicationService.ResolveResume(c.UserContext(), id, principal(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return sendAttachment(c, att)
}

// UpdateApplicationStatus handles PUT /api/applications/:id/status
// @Summary Move an application to a new status
// @Tags applications
// @Accept json
// @Produce json
// @Param request body service.StatusInput true "Status update"
// @Security BearerAuth
// @Router /applications/{id}/status [put]
func (s *Server) UpdateApplicationStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.StatusInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	app, err := s.applicationService.UpdateStatus(c.UserContext(), principal(c), id, in)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Application status updated", "application": app})
}

// DeleteApplication handles DELETE /api/applications/:id
func (s *Server) DeleteApplication(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.applicationService.Delete(c.UserContext(), principal(c), id); err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Application deleted"})
}

// GetMyApplicationStats handles GET /api/applications/stats/user
func (s *Server) GetMyApplicationStats(c *fiber.Ctx) error {
	stats, err := s.applicationService.UserStats(c.UserContext(), principal(c).UserID)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(stats)
}
