package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orderprocessing/order-system/order-service/application"
	"github.com/orderprocessing/order-system/shared/saga"
)

// OrderHandlers contains order HTTP handlers
type OrderHandlers struct {
	createOrder *application.CreateOrder
	getOrder    *application.GetOrder
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(
	createOrder *application.CreateOrder,
	getOrder *application.GetOrder,
) *OrderHandlers {
	return &OrderHandlers{
		createOrder: createOrder,
		getOrder:    getOrder,
	}
}

// CreateOrder handles order creation requests. The response is always a
// PENDING snapshot; the saga advances the order asynchronously, so the
// caller polls GetOrder for the outcome.
func (h *OrderHandlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd application.CreateOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.createOrder.Execute(r.Context(), &cmd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(response)
}

// GetOrder handles order retrieval requests
func (h *OrderHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		http.Error(w, "Order ID is required", http.StatusBadRequest)
		return
	}

	response, err := h.getOrder.Execute(r.Context(), &application.GetOrderQuery{
		OrderID: orderID,
	})
	if err != nil {
		if saga.IsNotFound(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers order routes
func (h *OrderHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.CreateOrder)
			r.Get("/{id}", h.GetOrder)
		})
	})
}
