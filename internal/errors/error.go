package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyAuth    = errors.New("missing authorization")
	ErrEmptySubject = errors.New("missing subject")
	ErrTokenInvalid = errors.New("invalid token")

	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidQuantity  = errors.New("quantity must be between 1 and 99")
	ErrQuantityLimit    = errors.New("quantity limit per product reached")
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrCheckoutNotFound = errors.New("checkout session not found")

	ErrCheckoutInProgress = errors.New("another checkout is already in progress")
	ErrCheckoutConflict   = errors.New("checkout session is already finalized")

	ErrPaymentGateway      = errors.New("payment gateway request failed")
	ErrPaymentNotCompleted = errors.New("payment is not completed")

	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
