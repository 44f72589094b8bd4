package middleware

import (
	"context"
	"net/http"
	"strings"

	"meetsync/core/constants"
	"meetsync/core/controller"
	"meetsync/core/errors"
	"meetsync/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// APIKeyVerifier resolves an API key to the owning company, or nil when the
// key is unknown or revoked.
type APIKeyVerifier interface {
	VerifyAPIKey(ctx context.Context, apiKey string) (*uuid.UUID, error)
}

type Middleware struct {
	jwtSecret string
	verifier  APIKeyVerifier
}

func New(jwtSecret string, verifier APIKeyVerifier) *Middleware {
	return &Middleware{
		jwtSecret: jwtSecret,
		verifier:  verifier,
	}
}

// AuthMiddleware validates the Bearer JWT and stores its claims in context
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return controller.NewErrorResponse(http.StatusUnauthorized,
					errors.ErrMissingAuthorizationHeader, "Missing Authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return controller.NewErrorResponse(http.StatusUnauthorized,
					errors.ErrInvalidTokenFormat, "Authorization header must be a Bearer token")
			}

			claims, err := utils.ParseToken(m.jwtSecret, parts[1])
			if err != nil {
				return controller.NewErrorResponse(http.StatusUnauthorized,
					errors.ErrTokenExpired, "Invalid or expired token")
			}

			c.Set(constants.ContextTokenData, claims)
			c.Set(constants.ContextCompanyID, claims.CompanyID)
			return next(c)
		}
	}
}

// APIKeyMiddleware authenticates machine callers by per-company API key
func (m *Middleware) APIKeyMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get("X-Api-Key")
			if apiKey == "" {
				return controller.NewErrorResponse(http.StatusUnauthorized,
					errors.ErrUnauthorized, "Missing X-Api-Key header")
			}

			companyID, err := m.verifier.VerifyAPIKey(c.Request().Context(), apiKey)
			if err != nil || companyID == nil {
				return controller.NewErrorResponse(http.StatusUnauthorized,
					errors.ErrUnauthorized, "Invalid API key")
			}

			c.Set(constants.ContextCompanyID, *companyID)
			return next(c)
		}
	}
}
