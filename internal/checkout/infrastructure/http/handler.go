package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/storekit/checkout-engine/internal/checkout/application"
	"github.com/storekit/checkout-engine/internal/platform/httpapi"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("checkout-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/transactions", h.createTransaction)
	r.Post("/payments", h.processPayment)
	r.Get("/cart/summary", h.cartSummary)
}

type createTransactionReq struct {
	ProductID  string `json:"productId"`
	CustomerID string `json:"customerId"`
	Quantity   int    `json:"quantity"`
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateTransaction")
	defer span.End()

	var req createTransactionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.BadRequest(w, "invalid body")
		return
	}
	if req.ProductID == "" || req.CustomerID == "" || req.Quantity < 1 {
		httpapi.BadRequest(w, "productId, customerId and quantity >= 1 are required")
		return
	}

	tx, err := h.service.Create(ctx, application.CreateTransactionInput{
		ProductID:  req.ProductID,
		CustomerID: req.CustomerID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.JSON(w, http.StatusCreated, map[string]any{
		"id":         tx.ID,
		"productId":  tx.ProductID,
		"customerId": tx.CustomerID,
		"quantity":   tx.Quantity,
		"amount":     tx.Amount.String(),
		"status":     tx.Status,
	})
}

type processPaymentReq struct {
	TransactionID string `json:"transactionId"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	CardToken     string `json:"cardToken"`
}

func (h *Handler) processPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ProcessPayment")
	defer span.End()

	var req processPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.BadRequest(w, "invalid body")
		return
	}
	if req.TransactionID == "" || req.CardToken == "" {
		httpapi.BadRequest(w, "transactionId and cardToken are required")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpapi.BadRequest(w, "invalid amount")
		return
	}

	paymentID, err := h.service.ProcessPayment(ctx, application.ChargeRequest{
		TransactionID: req.TransactionID,
		Amount:        amount,
		Currency:      req.Currency,
		CardToken:     req.CardToken,
	})
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, map[string]string{"paymentId": paymentID})
}

func (h *Handler) cartSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CartSummary")
	defer span.End()

	customerID := r.URL.Query().Get("customerId")
	if customerID == "" {
		httpapi.BadRequest(w, "customerId is required")
		return
	}

	summary, err := h.service.CartSummary(ctx, customerID)
	if err != nil {
		httpapi.Error(w, err)
		return
	}

	type itemResp struct {
		ProductID  string `json:"productId"`
		Name       string `json:"name"`
		UnitPrice  string `json:"unitPrice"`
		Quantity   int    `json:"quantity"`
		LineAmount string `json:"lineAmount"`
	}
	items := make([]itemResp, 0, len(summary.Items))
	for _, it := range summary.Items {
		items = append(items, itemResp{
			ProductID:  it.ProductID,
			Name:       it.Name,
			UnitPrice:  it.UnitPrice.String(),
			Quantity:   it.Quantity,
			LineAmount: it.LineAmount.String(),
		})
	}
	httpapi.JSON(w, http.StatusOK, map[string]any{
		"customerId":  summary.CustomerID,
		"items":       items,
		"totalAmount": summary.TotalAmount.String(),
	})
}
