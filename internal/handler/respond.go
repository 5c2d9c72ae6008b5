package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/mentor-marketplace/internal/apperr"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// listBody wraps collection responses.
type listBody[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func list[T any](items []T) listBody[T] {
	if items == nil {
		items = []T{}
	}
	return listBody[T]{Items: items, Count: len(items)}
}

var errorTable = []struct {
	sentinel error
	status   int
	code     string
}{
	{apperr.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperr.ErrInvalidRange, http.StatusBadRequest, "invalid_range"},
	{apperr.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{apperr.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{apperr.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperr.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperr.ErrConflict, http.StatusConflict, "conflict"},
	{apperr.ErrSlotUnavailable, http.StatusConflict, "slot_unavailable"},
	{apperr.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
}

// classify maps err to a status, a machine code and a client-safe message.
func classify(err error) (int, string, string) {
	for _, e := range errorTable {
		if errors.Is(err, e.sentinel) {
			return e.status, e.code, apperr.Message(err)
		}
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		code := strings.ReplaceAll(strings.ToLower(http.StatusText(he.Code)), " ", "_")
		if code == "" {
			code = "http_" + strconv.Itoa(he.Code)
		}
		return he.Code, code, msg
	}
	return http.StatusInternalServerError, "internal_error", "internal server error"
}

// ErrorHandler renders handler and middleware errors as errorBody.  5xx
// errors are logged with the request id; their text never reaches the
// client.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, code, msg := classify(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("request failed")
		}
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, errorBody{Error: code, Message: msg})
		}
		if werr != nil {
			log.Error().Err(werr).Msg("write error response")
		}
	}
}

// bind decodes the request body into dst and runs the registered
// validator on it.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Validationf("invalid body")
	}
	return c.Validate(dst)
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validationf("invalid %s", name)
	}
	return id, nil
}
