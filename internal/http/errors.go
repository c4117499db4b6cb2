package http

import (
	"errors"
	"net/http"

	inErrors "github.com/Alturino/storefront/internal/errors"
)

func StatusCodeFromError(err error) int {
	switch {
	case errors.Is(err, inErrors.ErrProductNotFound),
		errors.Is(err, inErrors.ErrOrderNotFound),
		errors.Is(err, inErrors.ErrCheckoutNotFound):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrInvalidQuantity),
		errors.Is(err, inErrors.ErrQuantityLimit),
		errors.Is(err, inErrors.ErrEmptyCart),
		errors.Is(err, inErrors.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, inErrors.ErrCheckoutInProgress),
		errors.Is(err, inErrors.ErrCheckoutConflict):
		return http.StatusConflict
	case errors.Is(err, inErrors.ErrPaymentNotCompleted):
		return http.StatusPaymentRequired
	case errors.Is(err, inErrors.ErrPaymentGateway):
		return http.StatusBadGateway
	case errors.Is(err, inErrors.ErrEmptyAuth), errors.Is(err, inErrors.ErrTokenInvalid):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
