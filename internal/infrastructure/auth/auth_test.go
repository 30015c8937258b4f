package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/vidcrunch/vidcrunch/internal/config"
)

func newTestValidator(t *testing.T, cfg *config.Config) (*Validator, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	validator := &Validator{
		cfg: cfg,
		log: zerolog.Nop(),
		keyfunc: func(_ *jwt.Token) (any, error) {
			return &key.PublicKey, nil
		},
	}
	return validator, key
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func protectedRouter(validator *Validator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(validator.Middleware())
	r.GET("/protected", func(c *gin.Context) {
		principal, _ := PrincipalFromContext(c)
		c.JSON(http.StatusOK, gin.H{"principal": principal})
	})
	return r
}

func TestMiddlewareRejectsMissingOrMalformedHeader(t *testing.T) {
	validator, _ := newTestValidator(t, &config.Config{})
	router := protectedRouter(validator)

	for _, header := range []string{"", "Token abc", "Bearer", "bearer-without-space"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Errorf("header %q: expected {error: message} body, got %s", header, rec.Body.String())
		}
	}
}

func TestMiddlewareAcceptsValidTokenAndBindsPrincipal(t *testing.T) {
	validator, key := newTestValidator(t, &config.Config{})
	router := protectedRouter(validator)

	token := signToken(t, key, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["principal"] != "user-42" {
		t.Errorf("principal = %q, want user-42", body["principal"])
	}
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	validator, key := newTestValidator(t, &config.Config{
		AuthIssuer:   "https://issuer.example.com",
		AuthAudience: "compress-api",
	})
	router := protectedRouter(validator)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", signToken(t, key, jwt.MapClaims{
			"sub": "user-42",
			"iss": "https://issuer.example.com",
			"aud": "compress-api",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"wrong issuer", signToken(t, key, jwt.MapClaims{
			"sub": "user-42",
			"iss": "https://evil.example.com",
			"aud": "compress-api",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"wrong audience", signToken(t, key, jwt.MapClaims{
			"sub": "user-42",
			"iss": "https://issuer.example.com",
			"aud": "other-api",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"wrong key", signToken(t, otherKey, jwt.MapClaims{
			"sub": "user-42",
			"iss": "https://issuer.example.com",
			"aud": "compress-api",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"no subject", signToken(t, key, jwt.MapClaims{
			"iss": "https://issuer.example.com",
			"aud": "compress-api",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"garbage", "not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := bearerToken(tt.header); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
