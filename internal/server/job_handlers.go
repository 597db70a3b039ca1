package server

import (
	"strings"

	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListJobs handles GET /api/jobs
// @Summary List active jobs
// @Tags jobs
// @Produce json
// @Param jobType query string false "Full-time, Part-time, Internship or Contract"
// @Param location query string false "Location substring"
// @Param search query string false "Matches title or description"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Router /jobs [get]
func (s *Server) ListJobs(c *fiber.Ctx) error {
	filter := repository.JobFilter{
		Location: strings.TrimSpace(c.Query("location")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("jobType")); raw != "" {
		jt := models.JobType(raw)
		if !jt.Valid() {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid job type"))
		}
		filter.JobType = jt
	}

	page := parsePage(c)
	jobs, total, err := s.jobService.ListPublic(c.UserContext(), filter, page)
	if err != nil {
		return models.RespondError(c, err)
	}
	return paginated(c, "jobs", jobs, page, total)
}

// GetJob handles GET /api/jobs/:id
func (s *Server) GetJob(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	job, err := s.jobService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(job)
}

// CreateJob handles POST /api/jobs
// @Summary Post a job (verified providers only)
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body service.JobInput true "Job"
// @Success 201 {object} models.Job
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /jobs [post]
func (s *Server) CreateJob(c *fiber.Ctx) error {
	var in service.JobInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	job, err := s.jobService.Create(c.UserContext(), principal(c), in)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Job posted successfully", "job": job})
}

// UpdateJob handles PUT /api/jobs/:id
func (s *Server) UpdateJob(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.JobInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	job, err := s.jobService.Update(c.UserContext(), principal(c), id, in)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Job updated successfully", "job": job})
}

// DeleteJob handles DELETE /api/jobs/:id. The job is deactivated, not removed.
func (s *Server) DeleteJob(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.jobService.Delete(c.UserContext(), principal(c), id); err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Job deleted successfully"})
}

// ListMyJobs handles GET /api/jobs/provider/jobs
func (s *Server) ListMyJobs(c *fiber.Ctx) error {
	page := parsePage(c)
	jobs, total, err := s.jobService.ListMine(c.UserContext(), principal(c), page)
	if err != nil {
		return models.RespondError(c, err)
	}
	return paginated(c, "jobs", jobs, page, total)
}
