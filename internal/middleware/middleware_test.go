package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/konstantin-nikolovski/perq/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "shpss_test_secret"

func webhookRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Shopify.APISecret = secret

	router := gin.New()
	router.POST("/webhooks/orders-paid", WebhookHMACMiddleware(cfg), func(c *gin.Context) {
		// Downstream must still see the body after verification consumed it.
		var payload map[string]interface{}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad body"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func signBody(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookHMACMiddlewareAcceptsValidSignature(t *testing.T) {
	router := webhookRouter(testSecret)
	body := `{"id": 1001}`

	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders-paid", strings.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", signBody(testSecret, body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok": true}`, rec.Body.String())
}

func TestWebhookHMACMiddlewareRejectsBadSignature(t *testing.T) {
	router := webhookRouter(testSecret)
	body := `{"id": 1001}`

	tests := []struct {
		name      string
		signature string
	}{
		{"wrong secret", signBody("other_secret", body)},
		{"tampered body", signBody(testSecret, `{"id": 9999}`)},
		{"missing header", ""},
		{"garbage signature", "not-a-signature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhooks/orders-paid", strings.NewReader(body))
			if tt.signature != "" {
				req.Header.Set("X-Shopify-Hmac-Sha256", tt.signature)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestWebhookHMACMiddlewareFailsClosedWithoutSecret(t *testing.T) {
	router := webhookRouter("")
	body := `{"id": 1001}`

	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders-paid", strings.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", signBody(testSecret, body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func sessionRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Shopify.APISecret = secret

	router := gin.New()
	router.GET("/settings/rules", SessionTokenMiddleware(cfg), func(c *gin.Context) {
		sub := ""
		if claims, ok := c.Get("claims"); ok {
			if mapClaims, ok := claims.(jwt.MapClaims); ok {
				sub, _ = mapClaims["sub"].(string)
			}
		}
		c.JSON(http.StatusOK, gin.H{"sub": sub})
	})
	return router
}

func sessionToken(t *testing.T, secret string, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "gid://shopify/Customer/7",
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestSessionTokenMiddlewareAcceptsValidToken(t *testing.T) {
	router := sessionRouter(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/settings/rules", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, testSecret, time.Now().Add(time.Minute)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sub": "gid://shopify/Customer/7"}`, rec.Body.String())
}

func TestSessionTokenMiddlewareRejectsInvalidTokens(t *testing.T) {
	router := sessionRouter(testSecret)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Token abc"},
		{"wrong secret", "Bearer " + sessionToken(t, "other_secret", time.Now().Add(time.Minute))},
		{"expired", "Bearer " + sessionToken(t, testSecret, time.Now().Add(-time.Minute))},
		{"malformed", "Bearer not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/settings/rules", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
