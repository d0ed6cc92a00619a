package middleware

import (
	stdErrors "errors"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/voice-guard/errors"
	"github.com/johnquangdev/voice-guard/pkg/jwt"
)

const (
	// SubjectContextKey holds the authenticated client name
	SubjectContextKey = "subject"
	// ScopeContextKey holds the token scope
	ScopeContextKey = "scope"
)

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// EchoAuth returns an Echo middleware that validates a service token and
// sets "subject" and "scope" into Echo context
func EchoAuth(validator TokenValidator, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return reject(c, errors.ErrUnauthenticated())
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				if logger != nil {
					logger.Warn("rejected API token",
						zap.String("path", c.Path()),
						zap.Error(err),
					)
				}
				if stdErrors.Is(err, jwt.ErrTokenExpired) {
					return reject(c, errors.ErrTokenExpired())
				}
				return reject(c, errors.ErrInvalidToken())
			}

			c.Set(SubjectContextKey, claims.Subject)
			c.Set(ScopeContextKey, claims.Scope)

			return next(c)
		}
	}
}

// GetSubject returns the authenticated client name, empty when auth is off
func GetSubject(c echo.Context) string {
	subject, _ := c.Get(SubjectContextKey).(string)
	return subject
}

func extractToken(c echo.Context) string {
	// Expected format: "Bearer <token>"
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func reject(c echo.Context, appErr errors.AppError) error {
	return c.JSON(appErr.HTTPCode, map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}
