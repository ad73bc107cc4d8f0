package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockroom/inventory-system/internal/api/middleware"
	"github.com/stockroom/inventory-system/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware. An empty
// user id means the middleware did not run or the token was anonymous.
func ctxIdentity(c echo.Context) (userID string, role domain.Role, err error) {
	userID, _ = c.Get(middleware.ContextKeyUserID).(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	r, _ := c.Get(middleware.ContextKeyRole).(string)
	return userID, domain.Role(r), nil
}
