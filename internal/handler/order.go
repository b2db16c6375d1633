package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Samega18/MesaFacil/internal/order"
)

type OrderItemRequest struct {
	DishID   string `json:"dishId" validate:"required,uuid4"`
	Quantity int    `json:"quantity" validate:"required,gte=1,lte=99"`
}

type CreateOrderRequest struct {
	Items  []OrderItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
	Notes  *string            `json:"notes" validate:"omitempty,max=500"`
	Status *string            `json:"status" validate:"omitempty,oneof=RECEIVED PREPARING READY DELIVERED"`
}

type UpdateOrderRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=500"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=RECEIVED PREPARING READY DELIVERED"`
}

type OrderListResponse struct {
	Data  []order.Order `json:"data"`
	Count int           `json:"count"`
}

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/{id}", h.handleGetOrderByID)
	router.Put("/orders/{id}", h.handleUpdateOrder)
	router.Patch("/orders/{id}/status", h.handleUpdateOrderStatus)
	router.Delete("/orders/{id}", h.handleDeleteOrder)
}

func (h *OrderHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		log.Warn().Err(err).Msg("failed to decode request body")
		respondWithError(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Dados inválidos",
			Message: "Corpo da requisição inválido",
			Code:    "INVALID_BODY",
		})
		return false
	}

	if err := h.validate.Struct(payload); err != nil {
		if !respondWithValidationError(w, err) {
			log.Error().Err(err).Msg("unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, ErrorResponse{
				Error:   "Erro interno do servidor",
				Message: "Erro interno de validação",
				Code:    "INTERNAL_ERROR",
			})
		}
		return false
	}

	return true
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateOrderRequest
	if !h.decodeAndValidate(w, r, &requestPayload) {
		return
	}

	lines := make([]order.LineRequest, 0, len(requestPayload.Items))
	for _, item := range requestPayload.Items {
		// Validated as uuid4 above; FromStringOrNil cannot fail here.
		lines = append(lines, order.LineRequest{
			DishID:   uuid.FromStringOrNil(item.DishID),
			Quantity: item.Quantity,
		})
	}

	input := order.CreateInput{
		Items: lines,
		Notes: requestPayload.Notes,
	}
	if requestPayload.Status != nil {
		input.Status = order.Status(*requestPayload.Status)
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	status := order.Status(r.URL.Query().Get("status"))

	orders, err := h.service.List(r.Context(), status)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, OrderListResponse{Data: orders, Count: len(orders)})
}

func (h *OrderHandler) handleGetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	found, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, found)
}

func (h *OrderHandler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateOrderRequest
	if !h.decodeAndValidate(w, r, &requestPayload) {
		return
	}

	updated, err := h.service.UpdateNotes(r.Context(), id, requestPayload.Notes)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *OrderHandler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateOrderStatusRequest
	if !h.decodeAndValidate(w, r, &requestPayload) {
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), id, order.Status(requestPayload.Status))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *OrderHandler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondWithDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
