package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/foodgram/backend/internal/apperrors"
	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler is the single place domain errors become HTTP responses.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(c.Request().Context()).Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logging.Ctx(c.Request().Context()).Error().Err(err).Msg("failed to write error response")
	}
}

func errorResponse(err error) (int, echo.Map) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		if len(verr.Fields) == 0 {
			return http.StatusBadRequest, echo.Map{"errors": verr.Error()}
		}
		body := echo.Map{}
		for field, msgs := range verr.Fields {
			body[field] = msgs
		}
		if verr.Message != "" {
			body["errors"] = verr.Message
		}
		return http.StatusBadRequest, body
	}

	var coded apperrors.StatusCoder
	if errors.As(err, &coded) {
		return coded.StatusCode(), echo.Map{"errors": coded.Error()}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := he.Message
		if inner, ok := msg.(error); ok {
			msg = inner.Error()
		}
		if he.Code >= http.StatusInternalServerError {
			msg = http.StatusText(he.Code)
		}
		return he.Code, echo.Map{"errors": fmt.Sprint(msg)}
	}

	return http.StatusInternalServerError, echo.Map{"errors": "Internal server error."}
}
