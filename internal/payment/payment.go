// Package payment confirms Kkiapay transactions and reconciles them into
// orders, order items and payments. The redirect callback and the webhook
// both end in Reconciler.Reconcile, which is safe to run twice for the same
// transaction in any order.
package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/boutique-backend/internal/apperror"
	"github.com/wichananm65/boutique-backend/internal/order"
)

// Provider statuses returned by the transaction status API.
const (
	ProviderSuccess   = "SUCCESS"
	ProviderFailed    = "FAILED"
	ProviderCancelled = "CANCELLED"
	ProviderPending   = "PENDING"
)

const (
	defaultCurrency      = "XOF"
	defaultCountry       = "Bénin"
	defaultPaymentMethod = "Mobile Money"
)

var (
	// ErrVerification means the provider could not confirm the transaction.
	// It is retryable and never a payment failure.
	ErrVerification  = apperror.New(fiber.StatusBadGateway, "Erreur lors de la vérification Kkiapay", nil)
	ErrOrderNotFound = apperror.New(fiber.StatusNotFound, "Commande introuvable", nil)
	ErrPersistence   = apperror.New(fiber.StatusInternalServerError, "Erreur serveur interne.", nil)

	// ErrDuplicate is returned by stores when a concurrent writer already
	// inserted the same order or payment.
	ErrDuplicate = errors.New("payment: duplicate order or payment")
)

// Verification is the provider's authoritative view of a transaction.
type Verification struct {
	Status        string
	Amount        float64
	Currency      string
	PaymentMethod string
	TransactionID string
	// Data is the order draft echoed back by the provider, as sent by the widget.
	Data    string
	Message string
}

type Verifier interface {
	Verify(ctx context.Context, transactionID string) (Verification, error)
}

type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeFailed    Outcome = "failed"
	OutcomePending   Outcome = "pending"
	OutcomeDuplicate Outcome = "duplicate"
)

// Reconciliation carries one verified notification into the store.
type Reconciliation struct {
	OrderID       string
	ProviderTxID  string
	Status        string
	Amount        float64
	Currency      string
	PaymentMethod string
	Draft         OrderDraft
	Source        string
}

type Result struct {
	Outcome       Outcome `json:"outcome"`
	OrderID       string  `json:"orderId"`
	OrderStatus   string  `json:"orderStatus"`
	PaymentStatus string  `json:"paymentStatus"`
}

// Paid reports whether the reconciled payment is completed.
func (r Result) Paid() bool {
	return r.PaymentStatus == order.PaymentCompleted
}

// targetStatus maps a provider status onto order and payment statuses.
// Anything unrecognised is a failure.
func targetStatus(providerStatus string) (orderStatus, paymentStatus string) {
	switch strings.ToUpper(strings.TrimSpace(providerStatus)) {
	case ProviderSuccess:
		return order.StatusPaidSuccess, order.PaymentCompleted
	case ProviderPending:
		return order.StatusPending, order.PaymentPending
	default:
		return order.StatusPaymentFailed, order.PaymentFailed
	}
}
