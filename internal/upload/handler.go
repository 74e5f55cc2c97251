package upload

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wichananm65/boutique-backend/internal/logger"
	"go.uber.org/zap"
)

const (
	// PublicPrefix is the URL prefix the saved images are served under.
	PublicPrefix = "/uploads"
	maxImageSize = 5 << 20
)

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// Handler stores product images on local disk.
type Handler struct {
	dir string
}

func NewHandler(dir string) *Handler {
	return &Handler{dir: dir}
}

// RegisterPublicRoutes serves the stored files.
func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Static(PublicPrefix, h.dir)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Post("/upload-image", h.uploadImage)
}

func (h *Handler) uploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Aucun fichier téléchargé."})
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExt[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Type de fichier invalide."})
	}
	if file.Size > maxImageSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"message": "Fichier trop volumineux."})
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		logger.Error(c, "failed to create upload directory", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Erreur serveur lors de l'upload."})
	}

	name := "image-" + uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(h.dir, name)); err != nil {
		logger.Error(c, "failed to save image", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Erreur serveur lors de l'upload."})
	}

	url := PublicPrefix + "/" + name
	logger.Info(c, "image uploaded", zap.String("url", url), zap.Int64("size", file.Size))
	return c.JSON(fiber.Map{"imageUrl": url})
}
