package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Samega18/MesaFacil/internal/dish"
	"github.com/Samega18/MesaFacil/internal/order"
)

// ErrorResponse is the boundary error envelope: a short label, a
// human-readable message and a stable machine-readable code.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ValidationErrorDetail struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

type ValidationErrorResponse struct {
	Error   string                  `json:"error"`
	Details []ValidationErrorDetail `json:"details"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Erro interno do servidor"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

func respondWithError(w http.ResponseWriter, code int, resp ErrorResponse) {
	respondWithJSON(w, code, resp)
}

// newValidator builds the request validator with json tag names, so
// validation details reference the fields the client actually sent.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", fe.Field())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s deve ter pelo menos %s itens", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s deve ter pelo menos %s caracteres", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s não pode ter mais de %s itens", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s deve ter no máximo %s caracteres", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s deve ser maior que %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s deve ser no mínimo %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s deve ser no máximo %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s deve ser um dos seguintes: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid4", "uuid":
		return fmt.Sprintf("%s deve ser um UUID válido", fe.Field())
	case "url", "startswith":
		return fmt.Sprintf("%s deve ser uma URL válida (http ou https)", fe.Field())
	default:
		return fmt.Sprintf("%s é inválido", fe.Field())
	}
}

func formatValidationErrors(validationErrors validator.ValidationErrors) []ValidationErrorDetail {
	details := make([]ValidationErrorDetail, 0, len(validationErrors))
	for _, fe := range validationErrors {
		detail := ValidationErrorDetail{
			// Namespace() is Struct-rooted; strip the request type prefix.
			Field:   strings.SplitN(fe.Namespace(), ".", 2)[1],
			Message: validationMessage(fe),
		}
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Int || fe.Kind() == reflect.Float64 {
			detail.Value = fe.Value()
		}
		details = append(details, detail)
	}
	return details
}

func respondWithValidationError(w http.ResponseWriter, err error) bool {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false
	}
	respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Error:   "Dados inválidos",
		Details: formatValidationErrors(validationErrors),
	})
	return true
}

// mapDomainError translates a typed service error into its HTTP answer.
// Errors are dispatched by identity, never by message text.
func mapDomainError(err error) (int, interface{}) {
	var (
		unavailable   *order.DishesUnavailableError
		validationErr *order.ValidationError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ValidationErrorResponse{
			Error: "Dados inválidos",
			Details: []ValidationErrorDetail{
				{Field: validationErr.Field, Message: validationErr.Message},
			},
		}
	case errors.As(err, &unavailable):
		return http.StatusNotFound, ErrorResponse{
			Error:   "Recurso não encontrado",
			Message: "Pratos não encontrados ou inativos: " + joinIDs(unavailable.IDs),
			Code:    "DISHES_UNAVAILABLE",
		}
	case errors.Is(err, dish.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error:   "Prato não encontrado",
			Message: "O prato informado não foi encontrado",
			Code:    "DISH_NOT_FOUND",
		}
	case errors.Is(err, dish.ErrNameExists):
		return http.StatusConflict, ErrorResponse{
			Error:   "Conflito de dados",
			Message: "Já existe um prato com este nome",
			Code:    "DISH_NAME_EXISTS",
		}
	case errors.Is(err, dish.ErrInUse):
		return http.StatusConflict, ErrorResponse{
			Error:   "Conflito de dados",
			Message: "Este prato não pode ser deletado pois possui pedidos associados",
			Code:    "DISH_IN_USE",
		}
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error:   "Pedido não encontrado",
			Message: "O pedido informado não foi encontrado",
			Code:    "ORDER_NOT_FOUND",
		}
	case errors.Is(err, order.ErrInvalidStatus):
		return http.StatusBadRequest, ErrorResponse{
			Error:   "Dados inválidos",
			Message: "Status inválido. Valores aceitos: " + joinStatuses(order.Statuses()),
			Code:    "INVALID_STATUS",
		}
	case errors.Is(err, order.ErrInvalidStatusTransition):
		return http.StatusBadRequest, ErrorResponse{
			Error:   "Dados inválidos",
			Message: "Transição de status não permitida",
			Code:    "INVALID_STATUS_TRANSITION",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "Erro interno do servidor",
			Message: "Ocorreu um erro inesperado ao processar sua solicitação",
			Code:    "INTERNAL_ERROR",
		}
	}
}

func respondWithDomainError(w http.ResponseWriter, err error) {
	code, payload := mapDomainError(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg("unhandled service error")
	}
	respondWithJSON(w, code, payload)
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}

func joinStatuses(statuses []order.Status) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}
