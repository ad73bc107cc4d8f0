package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-system/internal/api/metrics"
	"github.com/stockroom/inventory-system/internal/core/domain"
	"github.com/stockroom/inventory-system/internal/core/ports"
)

// Context keys set by Auth and OptionalAuth.
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
)

// Auth validates the bearer token against the session registry and injects
// the caller's identity into context.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return authenticate(verifier, bearerToken)
}

// WebsocketAuth behaves like Auth but also accepts the token in the "token"
// query parameter, since browsers cannot set headers on websocket upgrades.
func WebsocketAuth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return authenticate(verifier, func(c echo.Context) (string, string) {
		if token, reason := bearerToken(c); reason != "missing" {
			return token, reason
		}
		if token := c.QueryParam(queryTokenParam); token != "" {
			return token, ""
		}
		return "", "missing"
	})
}

// OptionalAuth injects the caller's identity when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, reason := bearerToken(c)
			if reason == "" {
				if claims, err := verifier.Verify(c.Request().Context(), token); err == nil {
					setClaims(c, claims)
				}
			}
			return next(c)
		}
	}
}

func authenticate(verifier ports.TokenVerifier, extract func(echo.Context) (string, string)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, reason := extract(c)
			switch reason {
			case "missing":
				metrics.SessionRejectionsTotal.WithLabelValues(reason).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			case "malformed":
				metrics.SessionRejectionsTotal.WithLabelValues(reason).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrSessionRevoked):
					metrics.SessionRejectionsTotal.WithLabelValues("revoked").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "session expired, please log in again")
				case errors.Is(err, domain.ErrUnauthorized):
					metrics.SessionRejectionsTotal.WithLabelValues("invalid").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				// Session registry unavailable: let the error handler log it as a 500.
				return err
			}

			setClaims(c, claims)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (token, reason string) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", "missing"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "malformed"
	}
	return strings.TrimSpace(parts[1]), ""
}

func setClaims(c echo.Context, claims *ports.Claims) {
	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeyRole, claims.Role.String())
}
