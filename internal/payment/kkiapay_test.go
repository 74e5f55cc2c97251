package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/boutique-backend/internal/apperror"
	"github.com/wichananm65/boutique-backend/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *KkiapayClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewKkiapayClient(config.KkiapayConfig{
		PublicKey:  "pub",
		PrivateKey: "priv",
		SecretKey:  "sec",
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
	})
}

func TestKkiapayVerify_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, statusPath, r.URL.Path)
		assert.Equal(t, "pub", r.Header.Get("x-api-key"))
		assert.Equal(t, "priv", r.Header.Get("x-private-key"))
		assert.Equal(t, "sec", r.Header.Get("x-secret-key"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "kk_abc123", body["transactionId"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","amount":15000,"source_common_name":"mtn-benin","transactionId":"kk_abc123","state":{"userId":"u-1"}}`))
	})

	v, err := client.Verify(context.Background(), "kk_abc123")
	require.NoError(t, err)
	assert.Equal(t, ProviderSuccess, v.Status)
	assert.Equal(t, 15000.0, v.Amount)
	assert.Equal(t, "mtn-benin", v.PaymentMethod)
	assert.Equal(t, "kk_abc123", v.TransactionID)
	assert.JSONEq(t, `{"userId":"u-1"}`, v.Data)
}

func TestKkiapayVerify_StringDataAndDefaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"FAILED","amount":"500","data":"{\"userId\":\"u-2\"}","reason":{"code":"insufficient_fund","description":"Solde insuffisant"}}`))
	})

	v, err := client.Verify(context.Background(), "kk_1")
	require.NoError(t, err)
	assert.Equal(t, ProviderFailed, v.Status)
	assert.Equal(t, 500.0, v.Amount)
	assert.Equal(t, defaultPaymentMethod, v.PaymentMethod)
	assert.Equal(t, "kk_1", v.TransactionID)
	assert.Equal(t, `{"userId":"u-2"}`, v.Data)
	assert.Equal(t, "Solde insuffisant", v.Message)
}

func TestKkiapayVerify_Errors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"not found": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":"FAILED"}`))
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		},
		"no status": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"amount":100}`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newTestClient(t, handler).Verify(context.Background(), "kk_1")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrVerification)
			assert.Equal(t, 502, apperror.Code(err))
		})
	}
}

func TestNewKkiapayClient_BaseURL(t *testing.T) {
	assert.Equal(t, productionBaseURL, NewKkiapayClient(config.KkiapayConfig{}).http.BaseURL)
	assert.Equal(t, sandboxBaseURL, NewKkiapayClient(config.KkiapayConfig{Sandbox: true}).http.BaseURL)
	assert.Equal(t, "http://localhost:9999", NewKkiapayClient(config.KkiapayConfig{Sandbox: true, BaseURL: "http://localhost:9999/"}).http.BaseURL)
}
