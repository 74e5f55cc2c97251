package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/boutique-backend/internal/apperror"
)

const testSecret = "whsec_test"

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, transactionID string) (Verification, error) {
	args := m.Called(transactionID)
	return args.Get(0).(Verification), args.Error(1)
}

func verified(status string) Verification {
	return Verification{
		Status:        status,
		Amount:        15000,
		Currency:      "XOF",
		PaymentMethod: "mtn-benin",
		TransactionID: "kk_abc123",
		Data:          exampleDraft,
	}
}

func setupApp(v Verifier, store Store) *fiber.App {
	app := fiber.New()
	h := NewHandler(v, newTestReconciler(store), NewSignatureVerifier(testSecret), "https://boutique.example")
	h.RegisterPublicRoutes(app)
	app.Use(func(c *fiber.Ctx) error {
		if uid := c.Get("X-User-ID"); uid != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": uid}})
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

// redirectQuery performs req and returns the query of the redirect target.
func redirectQuery(t *testing.T, app *fiber.App, req *http.Request) url.Values {
	t.Helper()
	res, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusSeeOther, res.StatusCode)
	loc, err := url.Parse(res.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "boutique.example", loc.Host)
	assert.Equal(t, "/order-status", loc.Path)
	return loc.Query()
}

func TestPrepare(t *testing.T) {
	app := setupApp(&mockVerifier{}, NewInMemoryStore())

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/payments/prepare", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	req := httptest.NewRequest("GET", "/api/v1/payments/prepare", nil)
	req.Header.Set("X-User-ID", "u-1")
	res, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var body struct {
		Success       bool   `json:"success"`
		TransactionID string `json:"transactionId"`
	}
	b, _ := io.ReadAll(res.Body)
	require.NoError(t, json.Unmarshal(b, &body))
	assert.True(t, body.Success)
	assert.Len(t, body.TransactionID, 36)
}

func TestCallback_Success(t *testing.T) {
	v := &mockVerifier{}
	v.On("Verify", "kk_abc123").Return(verified(ProviderSuccess), nil)
	store := NewInMemoryStore()
	store.SetCart("u-1", 2)
	app := setupApp(v, store)

	q := redirectQuery(t, app, httptest.NewRequest("GET", "/api/v1/payments/kkiapay/callback?transactionId=ord_001&transaction_id=kk_abc123&status=SUCCESS", nil))
	assert.Equal(t, "success", q.Get("status"))
	assert.Equal(t, "ord_001", q.Get("orderId"))

	orders, items, payments := store.Counts()
	assert.Equal(t, []int{1, 2, 1}, []int{orders, items, payments})
	assert.Equal(t, 0, store.CartLines("u-1"))
	v.AssertExpectations(t)
}

func TestCallback_PostAliasAndIDParam(t *testing.T) {
	v := &mockVerifier{}
	v.On("Verify", "kk_abc123").Return(verified(ProviderSuccess), nil)
	app := setupApp(v, NewInMemoryStore())

	req := httptest.NewRequest("POST", "/api/v1/payments/kkiapay/callback", strings.NewReader("transactionId=ord_001&id=kk_abc123"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	q := redirectQuery(t, app, req)
	assert.Equal(t, "success", q.Get("status"))
}

func TestCallback_MissingParameters(t *testing.T) {
	v := &mockVerifier{}
	app := setupApp(v, NewInMemoryStore())

	q := redirectQuery(t, app, httptest.NewRequest("GET", "/api/v1/payments/kkiapay/callback?transactionId=ord_001", nil))
	assert.Equal(t, "error", q.Get("status"))
	q = redirectQuery(t, app, httptest.NewRequest("GET", "/api/v1/payments/kkiapay/callback?transaction_id=kk_abc123", nil))
	assert.Equal(t, "error", q.Get("status"))

	v.AssertNotCalled(t, "Verify", mock.Anything)
}

func TestCallback_VerificationErrorIsNotFailure(t *testing.T) {
	v := &mockVerifier{}
	v.On("Verify", "kk_abc123").Return(Verification{}, apperror.Wrap(ErrVerification, errors.New("timeout")))
	store := NewInMemoryStore()
	store.SetCart("u-1", 2)
	app := setupApp(v, store)

	q := redirectQuery(t, app, httptest.NewRequest("GET", "/api/v1/payments/kkiapay/callback?transactionId=ord_001&transaction_id=kk_abc123&status=SUCCESS", nil))
	assert.Equal(t, "error", q.Get("status"))
	assert.Equal(t, "ord_001", q.Get("orderId"))

	orders, items, payments := store.Counts()
	assert.Zero(t, orders+items+payments)
	assert.Equal(t, 2, store.CartLines("u-1"))
}

func TestCallback_FailedPayment(t *testing.T) {
	v := &mockVerifier{}
	failed := verified(ProviderFailed)
	failed.Message = "Solde insuffisant"
	v.On("Verify", "kk_abc123").Return(failed, nil)
	app := setupApp(v, NewInMemoryStore())

	q := redirectQuery(t, app, httptest.NewRequest("GET", "/api/v1/payments/kkiapay/callback?transactionId=ord_001&transaction_id=kk_abc123", nil))
	assert.Equal(t, "failed", q.Get("status"))
	assert.Equal(t, "Solde insuffisant", q.Get("message"))
}

func TestCallback_PersistenceError(t *testing.T) {
	v := &mockVerifier{}
	v.On("Verify", "kk_abc123").Return(verified(ProviderSuccess), nil)
	app := setupApp(v, &faultyStore{inner: NewInMemoryStore(), paymentsErr: errors.New("db down")})

	q := redirectQuery(t, app, httptest.NewRequest("GET", "/api/v1/payments/kkiapay/callback?transactionId=ord_001&transaction_id=kk_abc123", nil))
	assert.Equal(t, "error", q.Get("status"))
	assert.Equal(t, "Erreur serveur interne.", q.Get("message"))
}

func webhookRequest(body, signature string) *http.Request {
	req := httptest.NewRequest("POST", "/api/v1/payments/kkiapay/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	return req
}

const webhookBody = `{"data":{"id":"kk_abc123","reference":"ord_001","status":"SUCCESS","amount":15000,"currency":"XOF","paymentMethod":"MOBILE_MONEY"},"event_type":"transaction.success"}`

func TestWebhook_SignatureRejection(t *testing.T) {
	v := &mockVerifier{}
	store := NewInMemoryStore()
	app := setupApp(v, store)

	tampered := strings.Replace(webhookBody, "15000", "1", 1)
	for _, req := range []*http.Request{
		webhookRequest(webhookBody, ""),
		webhookRequest(tampered, Sign([]byte(testSecret), []byte(webhookBody))),
	} {
		res, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	}

	v.AssertNotCalled(t, "Verify", mock.Anything)
	orders, items, payments := store.Counts()
	assert.Zero(t, orders+items+payments)
}

func TestWebhook_Success(t *testing.T) {
	v := &mockVerifier{}
	v.On("Verify", "kk_abc123").Return(verified(ProviderSuccess), nil).Twice()
	store := NewInMemoryStore()
	app := setupApp(v, store)

	for i := 0; i < 2; i++ {
		res, err := app.Test(webhookRequest(webhookBody, Sign([]byte(testSecret), []byte(webhookBody))))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	}
	orders, items, payments := store.Counts()
	assert.Equal(t, []int{1, 2, 1}, []int{orders, items, payments})
	v.AssertExpectations(t)
}

func TestWebhook_ErrorCodes(t *testing.T) {
	sign := func(body string) string { return Sign([]byte(testSecret), []byte(body)) }

	t.Run("order cannot be resolved", func(t *testing.T) {
		v := &mockVerifier{}
		orphan := verified(ProviderSuccess)
		orphan.Data = ""
		v.On("Verify", "kk_abc123").Return(orphan, nil)
		res, err := setupApp(v, NewInMemoryStore()).Test(webhookRequest(webhookBody, sign(webhookBody)))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
	})

	t.Run("verification error", func(t *testing.T) {
		v := &mockVerifier{}
		v.On("Verify", "kk_abc123").Return(Verification{}, apperror.Wrap(ErrVerification, errors.New("502")))
		res, err := setupApp(v, NewInMemoryStore()).Test(webhookRequest(webhookBody, sign(webhookBody)))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, res.StatusCode)
	})

	t.Run("persistence error", func(t *testing.T) {
		v := &mockVerifier{}
		v.On("Verify", "kk_abc123").Return(verified(ProviderSuccess), nil)
		store := &faultyStore{inner: NewInMemoryStore(), clearErr: errors.New("db down")}
		res, err := setupApp(v, store).Test(webhookRequest(webhookBody, sign(webhookBody)))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, res.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		body := `{"data":{}}`
		res, err := setupApp(&mockVerifier{}, NewInMemoryStore()).Test(webhookRequest(body, sign(body)))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	})
}
