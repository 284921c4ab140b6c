package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rl1809/potion-bottler/internal/core/domain"
	"github.com/rl1809/potion-bottler/internal/core/service"
)

type HTTPHandler struct {
	bottler *service.BottlerService
}

// PotionQuantityJSON is the wire form of both plan entries and delivery lines.
type PotionQuantityJSON struct {
	PotionType []int `json:"potion_type"`
	Quantity   int   `json:"quantity"`
}

type DeliverHTTPResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Channel string `json:"channel,omitempty"`
}

type PotionJSON struct {
	ID         int64  `json:"id"`
	PotionType []int  `json:"potion_type"`
	Name       string `json:"name"`
	SKU        string `json:"sku"`
	Price      int    `json:"price"`
	Quantity   int    `json:"quantity"`
}

func NewHTTPHandler(bottler *service.BottlerService) *HTTPHandler {
	return &HTTPHandler{bottler: bottler}
}

// Register mounts the bottler routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("POST /bottler/plan", h.GetBottlePlan)
	mux.HandleFunc("POST /bottler/deliver/{order_id}", h.DeliverPotions)
	mux.HandleFunc("GET /catalog", h.ListCatalog)
}

func (h *HTTPHandler) GetBottlePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.bottler.GetBottlePlan(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, DeliverHTTPResponse{
			Status:  "error",
			Message: "internal error",
		})
		return
	}

	writeJSON(w, http.StatusOK, fromPlan(plan))
}

func (h *HTTPHandler) DeliverPotions(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.Atoi(r.PathValue("order_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, DeliverHTTPResponse{
			Status:  "error",
			Message: "invalid order id",
		})
		return
	}

	var req []PotionQuantityJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, DeliverHTTPResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}

	items, err := toDeliveryItems(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, DeliverHTTPResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	err = h.bottler.DeliverPotions(r.Context(), orderID, items)
	if err != nil {
		status := http.StatusInternalServerError
		resp := DeliverHTTPResponse{Status: "error", Message: "internal error"}

		var short *domain.InsufficientStockError
		switch {
		case errors.As(err, &short):
			status = http.StatusBadRequest
			resp.Message = short.Error()
			resp.Channel = short.Channel.String()
		case errors.Is(err, service.ErrDuplicateDelivery):
			status = http.StatusConflict
			resp.Message = "delivery in progress"
		case errors.Is(err, service.ErrInvalidDelivery):
			status = http.StatusBadRequest
			resp.Message = err.Error()
		}

		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, DeliverHTTPResponse{
		Status:  "success",
		Message: "delivery processed successfully",
	})
}

func (h *HTTPHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	potions, err := h.bottler.ListCatalog(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, DeliverHTTPResponse{
			Status:  "error",
			Message: "internal error",
		})
		return
	}

	resp := make([]PotionJSON, 0, len(potions))
	for _, p := range potions {
		resp = append(resp, PotionJSON{
			ID:         p.ID,
			PotionType: p.Signature[:],
			Name:       p.Name,
			SKU:        p.SKU,
			Price:      p.Price,
			Quantity:   p.Quantity,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
