package address

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/boutique-backend/internal/logger"
	"github.com/wichananm65/boutique-backend/internal/user"
)

var validate = validator.New()

type Handler struct {
	service *Service
}

type addressRequest struct {
	FullName    string `json:"fullName" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=8"`
	Pincode     string `json:"pincode"`
	Area        string `json:"area" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state"`
	IsDefault   bool   `json:"isDefault"`
}

func (r addressRequest) toAddress() Address {
	return Address{
		FullName:    r.FullName,
		PhoneNumber: r.PhoneNumber,
		Pincode:     r.Pincode,
		Area:        r.Area,
		City:        r.City,
		State:       r.State,
		IsDefault:   r.IsDefault,
	}
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/addresses", h.getAddresses)
	app.Post("/api/v1/addresses", h.createAddress)
	app.Put("/api/v1/addresses/:id", h.updateAddress)
	app.Delete("/api/v1/addresses/:id", h.deleteAddress)
}

func (h *Handler) getAddresses(c *fiber.Ctx) error {
	uid, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	list, err := h.service.List(uid)
	if err != nil {
		logger.Error(c, "failed to list addresses", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(list)
}

func (h *Handler) parse(c *fiber.Ctx) (*addressRequest, error) {
	payload := new(addressRequest)
	if err := c.BodyParser(payload); err != nil {
		return nil, err
	}
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (h *Handler) createAddress(c *fiber.Ctx) error {
	uid, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload, err := h.parse(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "fullName, phoneNumber, area and city are required"})
	}
	created, err := h.service.Create(uid, payload.toAddress())
	if err != nil {
		logger.Error(c, "failed to create address", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateAddress(c *fiber.Ctx) error {
	uid, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload, err := h.parse(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "fullName, phoneNumber, area and city are required"})
	}
	updated, err := h.service.Update(uid, c.Params("id"), payload.toAddress())
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		logger.Error(c, "failed to update address", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(updated)
}

func (h *Handler) deleteAddress(c *fiber.Ctx) error {
	uid, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.Delete(uid, c.Params("id")); err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
