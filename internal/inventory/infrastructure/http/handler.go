package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/storekit/checkout-engine/internal/inventory/application"
	"github.com/storekit/checkout-engine/internal/inventory/domain"
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
		tracer:  otel.Tracer("inventory-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/stock/reserve", h.reserve)
	r.Put("/cart/items", h.setCartItem)
	r.Delete("/cart/items", h.removeCartItem)
	r.Get("/reservations", h.listReservations)
	r.Patch("/reservations/{id}", h.updateReservation)
	r.Delete("/reservations/{id}", h.deleteReservation)
}

type reservationResp struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	CustomerID string    `json:"customerId"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toReservationResps(rs []domain.Reservation) []reservationResp {
	out := make([]reservationResp, 0, len(rs))
	for _, r := range rs {
		out = append(out, reservationResp{
			ID:         r.ID,
			ProductID:  r.ProductID,
			CustomerID: r.CustomerID,
			Quantity:   r.Quantity,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out
}

type reserveReq struct {
	ProductID  string `json:"productId"`
	CustomerID string `json:"customerId"`
	Quantity   int    `json:"quantity"`
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ReserveStock")
	defer span.End()

	var req reserveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.BadRequest(w, "invalid body")
		return
	}
	if req.ProductID == "" || req.CustomerID == "" || req.Quantity < 1 {
		httpapi.BadRequest(w, "productId, customerId and quantity >= 1 are required")
		return
	}

	stock, err := h.service.Reserve(ctx, req.ProductID, req.CustomerID, req.Quantity)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, map[string]any{
		"productId": stock.ProductID,
		"quantity":  stock.Quantity,
		"reserved":  stock.Reserved,
	})
}

type setCartItemReq struct {
	ProductID  string `json:"productId"`
	CustomerID string `json:"customerId"`
	Quantity   *int   `json:"quantity"`
}

func (h *Handler) setCartItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SetCartItem")
	defer span.End()

	var req setCartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.BadRequest(w, "invalid body")
		return
	}
	if req.ProductID == "" || req.CustomerID == "" || req.Quantity == nil || *req.Quantity < 0 {
		httpapi.BadRequest(w, "productId, customerId and quantity >= 0 are required")
		return
	}

	line, err := h.service.SetQuantity(ctx, req.ProductID, req.CustomerID, *req.Quantity)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, map[string]any{
		"productId":    line.ProductID,
		"customerId":   line.CustomerID,
		"quantity":     line.Quantity,
		"reservations": toReservationResps(line.Reservations),
	})
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RemoveCartItem")
	defer span.End()

	productID := r.URL.Query().Get("productId")
	customerID := r.URL.Query().Get("customerId")
	if productID == "" || customerID == "" {
		httpapi.BadRequest(w, "productId and customerId are required")
		return
	}

	removed, err := h.service.RemoveLine(ctx, productID, customerID)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, map[string]any{
		"productId":  productID,
		"customerId": customerID,
		"removed":    removed,
	})
}

func (h *Handler) listReservations(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListReservations")
	defer span.End()

	customerID := r.URL.Query().Get("customerId")
	if customerID == "" {
		httpapi.JSON(w, http.StatusOK, []reservationResp{})
		return
	}
	rs, err := h.service.ListReservations(ctx, customerID)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, toReservationResps(rs))
}

type updateReservationReq struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) updateReservation(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateReservation")
	defer span.End()

	var req updateReservationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.BadRequest(w, "invalid body")
		return
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		httpapi.BadRequest(w, "quantity >= 0 is required")
		return
	}

	updated, err := h.service.UpdateReservation(ctx, chi.URLParam(r, "id"), *req.Quantity)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, toReservationResps([]domain.Reservation{updated})[0])
}

func (h *Handler) deleteReservation(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteReservation")
	defer span.End()

	if err := h.service.DeleteReservation(ctx, chi.URLParam(r, "id")); err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
