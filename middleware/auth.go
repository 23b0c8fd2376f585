package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-orders/config"
)

// ScopeExportOrders allows an operator to trigger order exports.
const ScopeExportOrders = "export:orders"

const (
	operatorIDKey = "operator_id"
	claimsKey     = "validated_claims"
)

// OperatorClaims carries the scopes granted to an operator token.
type OperatorClaims struct {
	Scope string `json:"scope"`
}

// Validate satisfies validator.CustomClaims.
func (c OperatorClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope reports whether the space separated scope list contains scope.
func (c OperatorClaims) HasScope(scope string) bool {
	for _, s := range strings.Fields(c.Scope) {
		if s == scope {
			return true
		}
	}
	return false
}

// OperatorAuth validates Auth0 access tokens on operator routes.
func OperatorAuth(cfg *config.Config) (gin.HandlerFunc, error) {
	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &OperatorClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Warn("rejected operator token", "path", r.URL.Path, "error", err)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			slog.Error("failed to write error response", "error", writeErr)
		}
	}

	checker := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		var next http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			claims := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			SetOperator(c, claims)
			c.Next()
		}
		checker.CheckJWT(next).ServeHTTP(c.Writer, c.Request)
	}, nil
}

// SetOperator stores validated claims on the request context.
func SetOperator(c *gin.Context, claims *validator.ValidatedClaims) {
	c.Set(operatorIDKey, claims.RegisteredClaims.Subject)
	c.Set(claimsKey, claims)
}

// GetOperatorID returns the subject of the validated token.
func GetOperatorID(c *gin.Context) (string, error) {
	id, exists := c.Get(operatorIDKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_OPERATOR_ID", Message: "Operator ID not found in context"}
	}
	s, ok := id.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_OPERATOR_ID", Message: "Operator ID is not a string"}
	}
	return s, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(claimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validated, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validated, nil
}

// RequireScope aborts with 403 unless the token carries scope.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaims(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_CLAIMS",
					"message": "Could not retrieve token claims",
				},
			})
			return
		}

		custom, ok := claims.CustomClaims.(*OperatorClaims)
		if !ok || !custom.HasScope(scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INSUFFICIENT_SCOPE",
					"message": "Insufficient permissions to access this resource",
				},
			})
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
