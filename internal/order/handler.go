package order

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/boutique-backend/internal/logger"
	"github.com/wichananm65/boutique-backend/internal/user"
	"go.uber.org/zap"
)

// Handler exposes order history to customers and order management to admins.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/orders", h.getOrders)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/orders", h.getAllOrders)
	r.Put("/orders/:id/status", h.updateStatus)
	r.Delete("/orders/:id", h.deleteOrder)
	r.Get("/stats", h.getStats)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orders, err := h.service.ListForUser(userID)
	if err != nil {
		logger.Error(c, "failed to list orders", err, zap.String("user_id", userID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

func (h *Handler) getAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAll()
	if err != nil {
		logger.Error(c, "failed to list all orders", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	id := c.Params("id")
	if err := h.service.UpdateStatus(id, payload.Status); err != nil {
		switch err {
		case ErrInvalidStatus:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		default:
			logger.Error(c, "failed to update order status", err, zap.String("order_id", id))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	logger.Info(c, "order status updated", zap.String("order_id", id), zap.String("status", payload.Status))
	return c.JSON(fiber.Map{"message": "order status updated"})
}

func (h *Handler) deleteOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.Delete(id); err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		logger.Error(c, "failed to delete order", err, zap.String("order_id", id))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) getStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats()
	if err != nil {
		logger.Error(c, "failed to compute stats", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(stats)
}
