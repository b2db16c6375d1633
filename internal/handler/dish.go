package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Samega18/MesaFacil/internal/dish"
)

type CreateDishRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description" validate:"required,min=10,max=500"`
	Price       float64 `json:"price" validate:"required,gt=0,lte=9999.99"`
	Category    string  `json:"category" validate:"required,oneof=APPETIZER MAIN_COURSE DESSERT DRINK"`
	Active      *bool   `json:"active"`
	Image       *string `json:"image" validate:"omitempty,url,startswith=http"`
}

type UpdateDishRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description" validate:"omitempty,min=10,max=500"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0,lte=9999.99"`
	Category    *string  `json:"category" validate:"omitempty,oneof=APPETIZER MAIN_COURSE DESSERT DRINK"`
	Active      *bool    `json:"active"`
	Image       *string  `json:"image" validate:"omitempty,url,startswith=http"`
}

// DishHandler handles HTTP requests for the dish catalog.
type DishHandler struct {
	service  dish.Service
	validate *validator.Validate
}

func NewDishHandler(service dish.Service) *DishHandler {
	return &DishHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *DishHandler) RegisterRoutes(router chi.Router) {
	router.Post("/dishes", h.handleCreateDish)
	router.Get("/dishes", h.handleListDishes)
	router.Get("/dishes/{id}", h.handleGetDishByID)
	router.Put("/dishes/{id}", h.handleUpdateDish)
	router.Delete("/dishes/{id}", h.handleDeleteDish)
}

func (h *DishHandler) handleCreateDish(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateDishRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("failed to decode create dish request")
		respondWithError(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Dados inválidos",
			Message: "Corpo da requisição inválido",
			Code:    "INVALID_BODY",
		})
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		if !respondWithValidationError(w, err) {
			log.Error().Err(err).Msg("unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, ErrorResponse{
				Error:   "Erro interno do servidor",
				Message: "Erro interno de validação",
				Code:    "INTERNAL_ERROR",
			})
		}
		return
	}

	created, err := h.service.Create(r.Context(), dish.CreateInput{
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
		Price:       requestPayload.Price,
		Category:    dish.Category(requestPayload.Category),
		Active:      requestPayload.Active,
		Image:       requestPayload.Image,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *DishHandler) handleListDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.service.List(r.Context())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, dishes)
}

func (h *DishHandler) handleGetDishByID(w http.ResponseWriter, r *http.Request) {
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

func (h *DishHandler) handleUpdateDish(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateDishRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("failed to decode update dish request")
		respondWithError(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Dados inválidos",
			Message: "Corpo da requisição inválido",
			Code:    "INVALID_BODY",
		})
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		if !respondWithValidationError(w, err) {
			log.Error().Err(err).Msg("unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, ErrorResponse{
				Error:   "Erro interno do servidor",
				Message: "Erro interno de validação",
				Code:    "INTERNAL_ERROR",
			})
		}
		return
	}

	input := dish.UpdateInput{
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
		Price:       requestPayload.Price,
		Active:      requestPayload.Active,
		Image:       requestPayload.Image,
	}
	if requestPayload.Category != nil {
		category := dish.Category(*requestPayload.Category)
		input.Category = &category
	}

	updated, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *DishHandler) handleDeleteDish(w http.ResponseWriter, r *http.Request) {
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

// parseIDParam reads the {id} route parameter as a uuid, answering 400 itself
// when the value is malformed.
func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("id", idParam).Msg("failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Dados inválidos",
			Message: "id deve ser um UUID válido",
			Code:    "INVALID_ID",
		})
		return uuid.Nil, false
	}
	return id, true
}
