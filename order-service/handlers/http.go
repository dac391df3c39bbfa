package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orchestrated/order-system/order-service/application"
	"github.com/orchestrated/order-system/order-service/domain"
	"github.com/orchestrated/order-system/shared/models"
	"github.com/orchestrated/order-system/shared/saga"
)

// OrderHandlers contains order HTTP handlers
type OrderHandlers struct {
	createOrder *application.CreateOrder
	findEvent   *application.FindEvent
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(createOrder *application.CreateOrder, findEvent *application.FindEvent) *OrderHandlers {
	return &OrderHandlers{
		createOrder: createOrder,
		findEvent:   findEvent,
	}
}

// RegisterRoutes mounts the order API on the router.
func (h *OrderHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/orders", h.CreateOrder)
		r.Get("/events", h.FindEvent)
		r.Get("/events/all", h.ListEvents)
	})
}

type createOrderRequest struct {
	Products []models.OrderProduct `json:"products"`
}

type eventResponse struct {
	Event *saga.Event    `json:"event"`
	State saga.SagaState `json:"state"`
}

// CreateOrder handles order creation requests and starts the saga.
func (h *OrderHandlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	event, err := h.createOrder.Execute(r.Context(), req.Products)
	if err != nil {
		if saga.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(eventResponse{Event: event, State: saga.StateOf(event)})
}

// FindEvent handles saga status queries by order or transaction id.
func (h *OrderHandlers) FindEvent(w http.ResponseWriter, r *http.Request) {
	filter := domain.EventFilter{
		OrderID:       models.ID(r.URL.Query().Get("orderId")),
		TransactionID: r.URL.Query().Get("transactionId"),
	}

	event, err := h.findEvent.Execute(r.Context(), filter)
	if err != nil {
		if saga.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if saga.IsNotFoundError(err) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eventResponse{Event: event, State: saga.StateOf(event)})
}

// ListEvents returns every stored saga event, newest first.
func (h *OrderHandlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.findEvent.ExecuteAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	responses := make([]eventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, eventResponse{Event: event, State: saga.StateOf(event)})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}
