package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wichananm65/boutique-backend/internal/apperror"
	"github.com/wichananm65/boutique-backend/internal/config"
	"github.com/wichananm65/boutique-backend/internal/logger"
	"go.uber.org/zap"
)

const (
	productionBaseURL = "https://api.kkiapay.me"
	sandboxBaseURL    = "https://api-sandbox.kkiapay.me"
	statusPath        = "/api/v1/transactions/status"
	defaultTimeout    = 15 * time.Second
)

// KkiapayClient calls the Kkiapay transaction status API.
type KkiapayClient struct {
	http *resty.Client
}

func NewKkiapayClient(cfg config.KkiapayConfig) *KkiapayClient {
	base := cfg.BaseURL
	if base == "" {
		base = productionBaseURL
		if cfg.Sandbox {
			base = sandboxBaseURL
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeaders(map[string]string{
			"x-api-key":     cfg.PublicKey,
			"x-private-key": cfg.PrivateKey,
			"x-secret-key":  cfg.SecretKey,
		})
	return &KkiapayClient{http: client}
}

type statusResponse struct {
	Status           string          `json:"status"`
	Amount           json.Number     `json:"amount"`
	Currency         string          `json:"currency"`
	PaymentMethod    string          `json:"paymentMethod"`
	SourceCommonName string          `json:"source_common_name"`
	TransactionID    string          `json:"transactionId"`
	Data             json.RawMessage `json:"data"`
	State            json.RawMessage `json:"state"`
	Message          string          `json:"message"`
	Reason           *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"reason"`
}

// Verify asks the provider for the status of transactionID. Transport
// failures, non-2xx answers and answers without a status all yield
// ErrVerification.
func (k *KkiapayClient) Verify(ctx context.Context, transactionID string) (Verification, error) {
	if transactionID == "" {
		return Verification{}, apperror.Wrap(ErrVerification, errors.New("empty transaction id"))
	}

	resp, err := k.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"transactionId": transactionID}).
		Post(statusPath)
	if err != nil {
		return Verification{}, apperror.Wrap(ErrVerification, fmt.Errorf("kkiapay request: %w", err))
	}
	if !resp.IsSuccess() {
		return Verification{}, apperror.Wrap(ErrVerification, fmt.Errorf("kkiapay status %d: %s", resp.StatusCode(), truncate(resp.String(), 200)))
	}

	var out statusResponse
	dec := json.NewDecoder(bytes.NewReader(resp.Body()))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return Verification{}, apperror.Wrap(ErrVerification, fmt.Errorf("kkiapay response: %w", err))
	}
	status := strings.ToUpper(strings.TrimSpace(out.Status))
	if status == "" {
		return Verification{}, apperror.Wrap(ErrVerification, fmt.Errorf("kkiapay response without status for %s", transactionID))
	}

	v := Verification{
		Status:        status,
		Currency:      out.Currency,
		PaymentMethod: firstNonEmpty(out.PaymentMethod, out.SourceCommonName, defaultPaymentMethod),
		TransactionID: firstNonEmpty(out.TransactionID, transactionID),
		Data:          rawString(out.Data),
		Message:       out.Message,
	}
	if v.Data == "" {
		v.Data = rawString(out.State)
	}
	if v.Message == "" && out.Reason != nil {
		v.Message = out.Reason.Description
	}
	if out.Amount != "" {
		amount, err := out.Amount.Float64()
		if err != nil {
			return Verification{}, apperror.Wrap(ErrVerification, fmt.Errorf("kkiapay amount %q: %w", out.Amount, err))
		}
		v.Amount = amount
	}

	logger.Log.Info("kkiapay transaction verified",
		zap.String("provider_transaction_id", v.TransactionID),
		zap.String("status", v.Status),
		zap.Float64("amount", v.Amount))
	return v, nil
}

// rawString accepts the echoed payload either as a JSON string or as an
// embedded object.
func rawString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
