package server

import (
	"strings"

	"jobboard/internal/models"
	"jobboard/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// VerifyProviderRequest is the body of PUT /api/admin/providers/:id/verify.
type VerifyProviderRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// AdminListUsers handles GET /api/admin/users
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	page := parsePage(c)
	users, total, err := s.userService.List(c.UserContext(), strings.TrimSpace(c.Query("role")), page)
	if err != nil {
		return models.RespondError(c, err)
	}
	return paginated(c, "users", users, page, total)
}

// AdminSetUserStatus handles PUT /api/admin/users/:id/status. Without an
// isActive field in the body the current status is toggled.
func (s *Server) AdminSetUserStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	ctx := c.UserContext()
	var active bool
	if req.IsActive != nil {
		active = *req.IsActive
	} else {
		current, err := s.userService.Get(ctx, id)
		if err != nil {
			return models.RespondError(c, err)
		}
		active = !current.IsActive
	}

	user, err := s.userService.SetStatus(ctx, principal(c), id, active)
	if err != nil {
		return models.RespondError(c, err)
	}
	verb := "deactivated"
	if user.IsActive {
		verb = "activated"
	}
	return c.JSON(fiber.Map{"message": "User " + verb + " successfully", "user": user})
}

// AdminStats handles GET /api/admin/stats
func (s *Server) AdminStats(c *fiber.Ctx) error {
	stats, err := s.adminService.Stats(c.UserContext())
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(stats)
}

// AdminListProviders handles GET /api/admin/providers
func (s *Server) AdminListProviders(c *fiber.Ctx) error {
	var filter repository.ProviderFilter
	if raw := strings.TrimSpace(c.Query("verificationStatus")); raw != "" {
		status, ok := models.ParseVerificationStatus(raw)
		if !ok {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid verification status"))
		}
		filter.VerificationStatus = status
	}

	page := parsePage(c)
	providers, total, err := s.providerService.List(c.UserContext(), filter, page)
	if err != nil {
		return models.RespondError(c, err)
	}
	return paginated(c, "providers", providers, page, total)
}

// AdminGetProvider handles GET /api/admin/providers/:id. Documents are
// returned as metadata only.
func (s *Server) AdminGetProvider(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	provider, err := s.providerService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"provider": provider})
}

// AdminVerifyProvider handles PUT /api/admin/providers/:id/verify
// @Summary Record a verification decision
// @Tags admin
// @Accept json
// @Produce json
// @Param request body VerifyProviderRequest true "pending, verified or rejected"
// @Security BearerAuth
// @Router /admin/providers/{id}/verify [put]
func (s *Server) AdminVerifyProvider(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req VerifyProviderRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	provider, err := s.providerService.SetVerification(c.UserContext(), id, req.Status, req.Reason)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":  "Provider " + string(provider.VerificationStatus) + " successfully",
		"provider": provider,
	})
}

// AdminDownloadProviderDoc handles GET /api/admin/providers/:id/docs/:docId
func (s *Server) AdminDownloadProviderDoc(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	doc, err := s.providerService.Doc(c.UserContext(), id, strings.TrimSpace(c.Params("docId")))
	if err != nil {
		return models.RespondError(c, err)
	}
	return sendAttachment(c, doc)
}

// AdminListJobs handles GET /api/admin/jobs
func (s *Server) AdminListJobs(c *fiber.Ctx) error {
	isActive, err := queryBool(c, "isActive")
	if err != nil {
		return models.RespondError(c, err)
	}
	page := parsePage(c)
	jobs, total, err := s.jobService.ListAll(c.UserContext(), isActive, page)
	if err != nil {
		return models.RespondError(c, err)
	}
	return paginated(c, "jobs", jobs, page, total)
}

// AdminDeactivateJob handles PUT /api/admin/jobs/:id/deactivate
func (s *Server) AdminDeactivateJob(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	job, err := s.jobService.Deactivate(c.UserContext(), id)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Job deactivated successfully", "job": job})
}
