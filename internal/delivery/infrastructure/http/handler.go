package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/storekit/checkout-engine/internal/delivery/application"
	"github.com/storekit/checkout-engine/internal/delivery/domain"
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
		tracer:  otel.Tracer("delivery-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/deliveries", h.createDelivery)
}

type createDeliveryReq struct {
	TransactionID string `json:"transactionId"`
	AddressLine1  string `json:"addressLine1"`
	AddressLine2  string `json:"addressLine2"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
}

func (h *Handler) createDelivery(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateDelivery")
	defer span.End()

	var req createDeliveryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.BadRequest(w, "invalid body")
		return
	}
	if req.TransactionID == "" || req.AddressLine1 == "" || req.City == "" || req.Country == "" {
		httpapi.BadRequest(w, "transactionId, addressLine1, city and country are required")
		return
	}

	d, err := h.service.Create(ctx, req.TransactionID, domain.Address{
		Line1:      req.AddressLine1,
		Line2:      req.AddressLine2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.JSON(w, http.StatusCreated, map[string]any{
		"id":            d.ID,
		"transactionId": d.TransactionID,
		"status":        d.Status,
	})
}
