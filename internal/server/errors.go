package server

import (
	"errors"
	"fmt"
	"meet-and-greet/internal/apperr"
	"meet-and-greet/internal/dto"
	"meet-and-greet/internal/logger"
	"meet-and-greet/internal/session"
	"meet-and-greet/internal/wizard"
	"net/http"

	"github.com/labstack/echo/v4"
)

// errorHandler answers every failure in the {success:false, error} shape.
func errorHandler(log logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, message := statusFor(err)
		if code >= http.StatusInternalServerError {
			log.WithError(err).Error("unhandled request error", map[string]interface{}{
				"route": c.Path(),
			})
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, dto.Fail(message))
		}
		if err != nil {
			log.WithError(err).Error("failed to write error response", nil)
		}
	}
}

func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		} else if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, msg
	}

	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, session.ErrLocked),
		errors.Is(err, wizard.ErrWrongStep),
		errors.Is(err, wizard.ErrNotReady),
		errors.Is(err, wizard.ErrSubmitRequired),
		errors.Is(err, wizard.ErrSubmitInProgress),
		errors.Is(err, wizard.ErrDraftLocked):
		return http.StatusConflict, err.Error()
	case errors.Is(err, wizard.ErrUnknownField),
		errors.Is(err, wizard.ErrUnknownPlan),
		errors.Is(err, wizard.ErrUnknownPaymentMethod):
		return http.StatusBadRequest, err.Error()
	}

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest, apperr.Message(err)
	case apperr.KindNotFound:
		return http.StatusNotFound, apperr.Message(err)
	case apperr.KindPersistence:
		return http.StatusBadGateway, apperr.Message(err)
	}

	return http.StatusInternalServerError, apperr.MsgUnexpectedError
}
