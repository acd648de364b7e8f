package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	catalogdomain "github.com/storekit/checkout-engine/internal/catalog/domain"
	checkoutdomain "github.com/storekit/checkout-engine/internal/checkout/domain"
	deliverydomain "github.com/storekit/checkout-engine/internal/delivery/domain"
	inventorydomain "github.com/storekit/checkout-engine/internal/inventory/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error maps domain failures onto HTTP statuses and a stable error code.
// Anything outside the taxonomy is a 500 with no internal detail leaked.
func Error(w http.ResponseWriter, err error) {
	var (
		productNotFound     *catalogdomain.ProductNotFoundError
		customerNotFound    *catalogdomain.CustomerNotFoundError
		stockNotFound       *inventorydomain.StockNotFoundError
		reservationNotFound *inventorydomain.ReservationNotFoundError
		insufficientStock   *inventorydomain.InsufficientStockError
		txNotFound          *checkoutdomain.TransactionNotFoundError
		invalidState        *checkoutdomain.InvalidTransactionStateError
		paymentRejected     *checkoutdomain.PaymentRejectedError
		deliveryNotFound    *deliverydomain.DeliveryNotFoundError
	)

	switch {
	case errors.As(err, &productNotFound):
		JSON(w, http.StatusNotFound, errorBody{Code: "PRODUCT_NOT_FOUND", Message: err.Error()})
	case errors.As(err, &customerNotFound):
		JSON(w, http.StatusNotFound, errorBody{Code: "CUSTOMER_NOT_FOUND", Message: err.Error()})
	case errors.As(err, &stockNotFound):
		JSON(w, http.StatusNotFound, errorBody{Code: "STOCK_NOT_FOUND", Message: err.Error()})
	case errors.As(err, &reservationNotFound):
		JSON(w, http.StatusNotFound, errorBody{Code: "RESERVATION_NOT_FOUND", Message: err.Error()})
	case errors.As(err, &txNotFound):
		JSON(w, http.StatusNotFound, errorBody{Code: "TRANSACTION_NOT_FOUND", Message: err.Error()})
	case errors.As(err, &deliveryNotFound):
		JSON(w, http.StatusNotFound, errorBody{Code: "DELIVERY_NOT_FOUND", Message: err.Error()})
	case errors.As(err, &insufficientStock):
		JSON(w, http.StatusConflict, errorBody{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.As(err, &invalidState):
		JSON(w, http.StatusConflict, errorBody{Code: "INVALID_TRANSACTION_STATE", Message: err.Error()})
	case errors.As(err, &paymentRejected):
		JSON(w, http.StatusPaymentRequired, errorBody{Code: "PAYMENT_REJECTED", Message: err.Error()})
	default:
		JSON(w, http.StatusInternalServerError, errorBody{Code: "INTERNAL", Message: "internal error"})
	}
}

func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Message: message})
}
