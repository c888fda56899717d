package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	domainerrors "github.com/payshield/risk-engine/internal/domain/errors"
	"github.com/payshield/risk-engine/internal/domain/fraud"
)

// EvaluateResponse pairs the engine's result with the transaction it scored.
type EvaluateResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	*fraud.DetectionResult
}

// FeedbackResponse acknowledges a feedback submission.
type FeedbackResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Accepted      bool      `json:"accepted"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("encode response", "error", err)
	}
}

// writeError maps an error to its HTTP form. Domain errors carry their own
// status code; everything else is an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.StatusCode, errorResponse{Error: errorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
		}})
		return
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
			Code:    "VALIDATION_FAILED",
			Message: "request validation failed",
			Details: strings.Join(fields, ", "),
		}})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}})
}
