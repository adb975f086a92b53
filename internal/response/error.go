package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/paytrackhq/sms-finance-backend/internal/errs"
	"github.com/paytrackhq/sms-finance-backend/pkg/logger"
)

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeErrorResponse(w, r, status, ErrorResponse{Code: code, Message: message})
}

func (h *responseHandler) writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", resp.Code)
	}
}

// HandleError maps the domain error taxonomy to stable machine-readable
// codes. Anything unrecognized becomes a generic internal error so
// infrastructure details never leak to the caller.
func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	switch e := err.(type) {
	case *errs.NotFoundError:
		log.Warn("resource not found", "error", e.Message)
		h.WriteError(w, r, http.StatusNotFound, "not_found", e.Message)

	case *errs.DuplicateTransactionError:
		log.Warn("duplicate transaction rejected", "error", e.Message)
		h.WriteError(w, r, http.StatusConflict, "duplicate_transaction", e.Message)

	case *errs.InvalidTransactionMessageError:
		log.Warn("message rejected by extraction", "error", e.Message)
		h.WriteError(w, r, http.StatusBadRequest, "invalid_transaction_message", e.Message)

	case *errs.ValidationError:
		log.Warn("validation failed", "error", e.Message, "fields", e.Fields)
		h.writeErrorResponse(w, r, http.StatusBadRequest, ErrorResponse{
			Code:    "invalid_input",
			Message: e.Message,
			Fields:  e.Fields,
		})

	case *errs.ProviderFailureError:
		log.Error("all providers failed", "error", e.Message, "cause", e.Cause)
		h.WriteError(w, r, http.StatusBadGateway, "service_unavailable",
			"Text extraction is temporarily unavailable")

	case *errs.DatabaseError:
		log.Error("database error", "operation", e.Operation, "cause", e.Cause)
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An error occurred")

	default:
		log.Error("unexpected error", "error", err, "type", fmt.Sprintf("%T", err))
		h.WriteError(w, r, http.StatusInternalServerError, "internal_error",
			"An unexpected error occurred")
	}
}
