package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/storekit/checkout-engine/internal/catalog/application"
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
		tracer:  otel.Tracer("catalog-http"),
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Post("/customers", h.registerCustomer)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListProducts")
	defer span.End()

	listings, err := h.service.ListAvailable(ctx)
	if err != nil {
		httpapi.Error(w, err)
		return
	}

	type productResp struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       string `json:"price"`
		Available   int    `json:"available"`
	}
	out := make([]productResp, 0, len(listings))
	for _, l := range listings {
		out = append(out, productResp{
			ID:          l.ID,
			Name:        l.Name,
			Description: l.Description,
			Price:       l.Price.String(),
			Available:   l.Available,
		})
	}
	httpapi.JSON(w, http.StatusOK, out)
}

type registerCustomerReq struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (h *Handler) registerCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RegisterCustomer")
	defer span.End()

	var req registerCustomerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.BadRequest(w, "invalid body")
		return
	}
	if !strings.Contains(req.Email, "@") || req.Name == "" {
		httpapi.BadRequest(w, "email and name are required")
		return
	}

	c, err := h.service.RegisterCustomer(ctx, req.Email, req.Name, req.Phone)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.JSON(w, http.StatusOK, map[string]string{"customerId": c.ID})
}
