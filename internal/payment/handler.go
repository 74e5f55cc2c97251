package payment

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wichananm65/boutique-backend/internal/logger"
	"github.com/wichananm65/boutique-backend/internal/order"
	"github.com/wichananm65/boutique-backend/internal/user"
	"go.uber.org/zap"
)

const (
	redirectSuccess = "success"
	redirectFailed  = "failed"
	redirectError   = "error"

	msgDefaultFailure = "Échec du paiement Kkiapay"
	msgPending        = "Paiement en attente de confirmation."
)

type Handler struct {
	verifier   Verifier
	reconciler *Reconciler
	signature  *SignatureVerifier
	appURL     string
}

// NewHandler builds the payment endpoints. appURL is the storefront origin
// used for callback redirects; the request origin is used when it is empty.
func NewHandler(v Verifier, r *Reconciler, sig *SignatureVerifier, appURL string) *Handler {
	return &Handler{verifier: v, reconciler: r, signature: sig, appURL: strings.TrimRight(appURL, "/")}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/payments/kkiapay/callback", h.callback)
	app.Post("/api/v1/payments/kkiapay/callback", h.callback)
	app.Post("/api/v1/payments/kkiapay/webhook", h.webhook)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/payments/prepare", h.prepare)
}

func (h *Handler) prepare(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authentification requise"})
	}
	id := uuid.NewString()
	logger.Info(c, "payment transaction prepared", zap.String("user_id", userID), zap.String("transaction_id", id))
	return c.JSON(fiber.Map{
		"success":       true,
		"message":       "Transaction préparée",
		"transactionId": id,
	})
}

// param reads a callback parameter from the query string, or from the form
// body when the provider posts the callback.
func param(c *fiber.Ctx, key string) string {
	if v := strings.TrimSpace(c.Query(key)); v != "" {
		return v
	}
	if c.Method() == fiber.MethodPost {
		return strings.TrimSpace(c.FormValue(key))
	}
	return ""
}

func (h *Handler) callback(c *fiber.Ctx) error {
	orderID := param(c, "transactionId")
	providerID := param(c, "transaction_id")
	if providerID == "" {
		providerID = param(c, "id")
	}
	logger.Info(c, "kkiapay callback received",
		zap.String("order_id", orderID),
		zap.String("provider_transaction_id", providerID),
		zap.String("status_hint", param(c, "status")),
		zap.String("reference", param(c, "reference")))

	if providerID == "" {
		return h.redirect(c, orderID, redirectError, "ID de transaction Kkiapay manquant pour la vérification.")
	}
	if orderID == "" {
		return h.redirect(c, "", redirectError, "Votre ID de commande est manquant dans le callback.")
	}

	v, err := h.verifier.Verify(c.UserContext(), providerID)
	if err != nil {
		logger.Error(c, "kkiapay verification failed", err, zap.String("order_id", orderID), zap.String("provider_transaction_id", providerID))
		return h.redirect(c, orderID, redirectError, "Impossible de vérifier le paiement pour le moment. Veuillez réessayer.")
	}

	res, err := h.reconciler.Reconcile(c.UserContext(), Reconciliation{
		OrderID:       orderID,
		ProviderTxID:  v.TransactionID,
		Status:        v.Status,
		Amount:        v.Amount,
		Currency:      v.Currency,
		PaymentMethod: v.PaymentMethod,
		Draft:         DecodeDraft(v.Data),
		Source:        "callback",
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return h.redirect(c, orderID, redirectError, "Commande introuvable.")
		}
		return h.redirect(c, orderID, redirectError, ErrPersistence.Message)
	}

	switch {
	case res.Paid():
		return h.redirect(c, res.OrderID, redirectSuccess, "")
	case res.PaymentStatus == order.PaymentPending:
		return h.redirect(c, res.OrderID, redirectFailed, msgPending)
	default:
		return h.redirect(c, res.OrderID, redirectFailed, firstNonEmpty(v.Message, msgDefaultFailure))
	}
}

func (h *Handler) redirect(c *fiber.Ctx, orderID, status, message string) error {
	base := h.appURL
	if base == "" {
		base = c.BaseURL()
	}
	q := url.Values{}
	if orderID != "" {
		q.Set("orderId", orderID)
	}
	q.Set("status", status)
	if message != "" {
		q.Set("message", message)
	}
	return c.Redirect(base+"/order-status?"+q.Encode(), fiber.StatusSeeOther)
}

type webhookEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		ID            string      `json:"id"`
		Reference     string      `json:"reference"`
		Status        string      `json:"status"`
		Amount        json.Number `json:"amount"`
		Currency      string      `json:"currency"`
		PaymentMethod string      `json:"paymentMethod"`
	} `json:"data"`
}

func (h *Handler) webhook(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get(SignatureHeader)
	if err := h.signature.Verify(body, signature); err != nil {
		logger.Warn(c, "webhook signature rejected",
			zap.String("ip", c.IP()),
			zap.Bool("signature_present", signature != ""),
			zap.Int("body_length", len(body)),
			zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Signature de webhook invalide"})
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil || event.Data.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Corps de webhook invalide"})
	}
	logger.Info(c, "kkiapay webhook received",
		zap.String("event_type", event.EventType),
		zap.String("provider_transaction_id", event.Data.ID),
		zap.String("reference", event.Data.Reference),
		zap.String("status_hint", event.Data.Status))

	v, err := h.verifier.Verify(c.UserContext(), event.Data.ID)
	if err != nil {
		logger.Error(c, "kkiapay verification failed", err, zap.String("provider_transaction_id", event.Data.ID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": ErrVerification.Message})
	}

	res, err := h.reconciler.Reconcile(c.UserContext(), Reconciliation{
		OrderID:       event.Data.Reference,
		ProviderTxID:  v.TransactionID,
		Status:        v.Status,
		Amount:        v.Amount,
		Currency:      firstNonEmpty(v.Currency, event.Data.Currency),
		PaymentMethod: firstNonEmpty(v.PaymentMethod, event.Data.PaymentMethod),
		Draft:         DecodeDraft(v.Data),
		Source:        "webhook",
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": ErrOrderNotFound.Message})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": ErrPersistence.Message})
	}
	return c.JSON(fiber.Map{"message": "Webhook traité", "outcome": res.Outcome})
}
