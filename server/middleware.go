package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/existflow/scic/internal/api"
	"github.com/existflow/scic/internal/logger"
)

// requestLogger logs every request and its response
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()
		res := c.Response()

		s.log.Debug("HTTP Request",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("remote", c.RealIP()),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)))

		err := next(c)

		fields := []logger.Field{
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)),
		}
		if res.Status >= http.StatusInternalServerError {
			s.log.Warn("HTTP Response", fields...)
		} else {
			s.log.Info("HTTP Response", fields...)
		}
		return err
	}
}

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorBody{Error: msg})
}

// backendError answers a failed backend call. Missing resources keep
// their 404; client errors carry the backend message; everything else is
// reported as a bad gateway without details.
func (s *Server) backendError(c echo.Context, op string, err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			return jsonError(c, http.StatusNotFound, "not found")
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			return jsonError(c, apiErr.StatusCode, apiErr.Message)
		}
	}

	s.log.Error("Backend call failed",
		logger.F("op", op),
		logger.F("error", err),
		logger.F("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
	return jsonError(c, http.StatusBadGateway, "the competition service is unavailable, please try again later")
}
