package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/vidcrunch/vidcrunch/internal/config"
)

const principalKey = "principal_id"

// Validator exchanges bearer tokens for a verified principal using the
// identity provider's JWKS endpoint.
type Validator struct {
	cfg     *config.Config
	log     zerolog.Logger
	jwks    *keyfunc.JWKS
	keyfunc jwt.Keyfunc
}

// NewValidator initializes JWKS fetching from the identity provider.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error().Err(err).Msg("jwks refresh error")
		},
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, err
	}

	return &Validator{
		cfg:     cfg,
		log:     log,
		jwks:    jwks,
		keyfunc: jwks.Keyfunc,
	}, nil
}

// Middleware rejects requests without a verifiable bearer credential and
// binds the verified principal id to the request context. It never runs for
// CORS preflights, which are short-circuited earlier in the chain.
func (v *Validator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing or invalid authorization header")
			return
		}

		opts := []jwt.ParserOption{
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		}
		if issuer := strings.TrimSpace(v.cfg.AuthIssuer); issuer != "" {
			opts = append(opts, jwt.WithIssuer(issuer))
		}
		if audience := strings.TrimSpace(v.cfg.AuthAudience); audience != "" {
			opts = append(opts, jwt.WithAudience(audience))
		}

		token, err := jwt.Parse(tokenString, v.keyfunc, opts...)
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}
		subject, _ := claims["sub"].(string)
		if subject == "" {
			abortUnauthorized(c, "token has no subject")
			return
		}

		c.Set(principalKey, subject)
		c.Next()
	}
}

// Ready indicates if the validator is prepared.
func (v *Validator) Ready() bool {
	return v != nil && v.keyfunc != nil
}

// PrincipalFromContext returns the principal bound by Middleware.
func PrincipalFromContext(c *gin.Context) (string, bool) {
	val, ok := c.Get(principalKey)
	if !ok {
		return "", false
	}
	principal, ok := val.(string)
	return principal, ok && principal != ""
}

// SetPrincipal binds a principal id directly. Intended for tests that
// exercise handlers without the middleware chain.
func SetPrincipal(c *gin.Context, principal string) {
	c.Set(principalKey, principal)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
}
