package server

import (
	"jobboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListNotifications handles GET /api/notifications
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	read, err := queryBool(c, "read")
	if err != nil {
		return models.RespondError(c, err)
	}
	page := parsePage(c)
	items, total, err := s.notificationService.List(c.UserContext(), principal(c).UserID, read, page)
	if err != nil {
		return models.RespondError(c, err)
	}
	return paginated(c, "notifications", items, page, total)
}

// GetUnreadCount handles GET /api/notifications/unread/count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.notificationService.UnreadCount(c.UserContext(), principal(c).UserID)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// MarkNotificationRead handles PUT /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	n, err := s.notificationService.MarkRead(c.UserContext(), principal(c).UserID, id)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Marked as read", "notification": n})
}

// MarkAllNotificationsRead handles PUT /api/notifications/read/all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	updated, err := s.notificationService.MarkAllRead(c.UserContext(), principal(c).UserID)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read", "updated": updated})
}

// DeleteNotification handles DELETE /api/notifications/:id
func (s *Server) DeleteNotification(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notificationService.Delete(c.UserContext(), principal(c).UserID, id); err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification deleted"})
}
