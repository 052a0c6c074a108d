package v1

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eidos/internal/errors"
)

const internalErrorMessage = "something went wrong"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusOf maps an error code to its HTTP status. Unknown codes are 500.
func statusOf(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case errors.ErrCodeTransport, errors.ErrCodeLLMUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorHandler renders handler errors as {"error": message}. Internal
// failures are logged and answered with a fixed message.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := http.StatusInternalServerError, internalErrorMessage
	var httpErr *echo.HTTPError
	switch {
	case errors.CodeOf(err) != "":
		status = statusOf(errors.CodeOf(err))
		if status != http.StatusInternalServerError {
			message = errors.MessageOf(err)
		}
	case stderrors.As(err, &httpErr):
		status = httpErr.Code
		if status < http.StatusInternalServerError {
			message = http.StatusText(status)
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
		}
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, ErrorResponse{Error: message})
	}
	if err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
	}
}

// parseID reads a positive int32 path parameter.
func parseID(c echo.Context, name string) (int32, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || id <= 0 {
		return 0, errors.Validation("invalid %s", name)
	}
	return int32(id), nil
}

// bind decodes the request body into v.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return errors.Validation("invalid request body")
	}
	return nil
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.Validation("invalid %s", name)
	}
	return n, nil
}
