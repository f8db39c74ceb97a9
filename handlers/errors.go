package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/juniortour/engine"
)

type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// statusOf maps an error to its HTTP status and the reason shown to the
// caller. Unclassified errors are not echoed.
func statusOf(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprint(he.Message)
		if he.Internal != nil && he.Code < http.StatusInternalServerError {
			msg = fmt.Sprintf("%s: %v", msg, he.Internal)
		}
		return he.Code, msg
	}
	switch {
	case errors.Is(err, engine.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, engine.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, engine.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, engine.ErrUpstream):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, engine.ErrInconsistent):
		return http.StatusInternalServerError, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

// ErrorHandler renders every failure as {"ok": false, "error": reason}.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := statusOf(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err))
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, errorBody{OK: false, Error: msg})
		}
		if err != nil {
			logger.Warn("write error response", zap.Error(err))
		}
	}
}
