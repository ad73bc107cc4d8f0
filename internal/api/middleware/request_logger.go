package middleware

import (
	"net/url"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// queryTokenParam is the query parameter WebsocketAuth reads a session token from.
const queryTokenParam = "token"

// RequestLogger writes one structured zerolog entry per request.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			switch {
			case v.Status >= 500:
				event = log.Error().Err(v.Error)
			case v.Status >= 400:
				event = log.Warn()
			}

			if userID, ok := c.Get(ContextKeyUserID).(string); ok && userID != "" {
				event = event.Str("user_id", userID)
			}

			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", redactedURI(c.Request().URL)).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// redactedURI renders u without the session token query parameter.
func redactedURI(u *url.URL) string {
	q := u.Query()
	if !q.Has(queryTokenParam) {
		return u.RequestURI()
	}
	q.Set(queryTokenParam, "REDACTED")
	out := *u
	out.RawQuery = q.Encode()
	return out.RequestURI()
}
