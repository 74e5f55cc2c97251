package contact

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/boutique-backend/internal/logger"
)

var validate = newValidator()

// newValidator adds "singleline", which rejects values spanning more than
// one line. Such values end up in email headers.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "\r\n")
	})
	return v
}

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/contact", h.submit)
}

func (h *Handler) submit(c *fiber.Ctx) error {
	payload := new(Message)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Veuillez remplir tous les champs avec un email valide."})
	}

	if err := h.service.Submit(c.UserContext(), *payload); err != nil {
		logger.Error(c, "failed to forward contact message", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Impossible d'envoyer le message pour le moment."})
	}
	return c.JSON(fiber.Map{"message": "Message envoyé avec succès."})
}
