package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-orders/middleware"
)

// MockValidatedClaims creates operator claims as the JWT validator would
func MockValidatedClaims(subject string, scopes ...string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "https://test.auth0.com/",
			Subject: subject,
		},
		CustomClaims: &middleware.OperatorClaims{
			Scope: strings.Join(scopes, " "),
		},
	}
}

// FakeOperatorAuth stands in for middleware.OperatorAuth and authenticates
// every request as subject with the given scopes.
func FakeOperatorAuth(subject string, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetOperator(c, MockValidatedClaims(subject, scopes...))
		c.Next()
	}
}
