package handler

import (
	"context"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// NotificationHub accepts websocket subscribers for activity notifications.
type NotificationHub interface {
	Serve(ctx context.Context, conn *websocket.Conn, userID string)
}

// NotificationHandler upgrades authenticated requests to websocket subscriptions.
type NotificationHandler struct {
	hub      NotificationHub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewNotificationHandler only accepts upgrades from allowedOrigins; "*" allows any.
func NewNotificationHandler(hub NotificationHub, allowedOrigins []string, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
		log: log,
	}
}

// Subscribe handles GET /api/notifications/ws.
//
// @Summary      Subscribe to activity notifications
// @Tags         activity
// @Security     BearerAuth
// @Param        token  query  string  false  "Bearer token, for clients that cannot set headers"
// @Success      101
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/notifications/ws [get]
func (h *NotificationHandler) Subscribe(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.Debug().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return nil
	}

	h.hub.Serve(c.Request().Context(), conn, userID)
	return nil
}
