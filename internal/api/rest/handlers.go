package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	domainerrors "github.com/payshield/risk-engine/internal/domain/errors"
	"github.com/payshield/risk-engine/internal/domain/fraud"
	"github.com/payshield/risk-engine/internal/infrastructure/ratelimit"
	fraudsvc "github.com/payshield/risk-engine/internal/service/fraud"
)

const maxRequestBody = 1 << 20 // 1 MiB

// EvaluationRecorder persists the context of a scored transaction so that
// future evaluations see it as user history.
type EvaluationRecorder interface {
	RecordEvaluation(ctx context.Context, txn fraud.TransactionContext) error
}

// Services bundles everything the HTTP surface depends on. Recorder and
// UserLimiter are optional; a nil field disables that behavior.
type Services struct {
	Engine fraudsvc.Service
	// Recorder observes every non-blocked evaluation.
	Recorder EvaluationRecorder
	// UserLimiter throttles evaluations per user across instances,
	// independent of the per-IP middleware.
	UserLimiter ratelimit.Limiter
}

// Handler serves the fraud evaluation endpoints.
type Handler struct {
	services Services
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler creates the API handler around the wired services.
func NewHandler(services Services, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		services: services,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) decode(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBody)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return domainerrors.NewValidationError("MALFORMED_BODY", "request body is not valid JSON")
	}
	return h.validate.Struct(dst)
}

// HandleEvaluate scores one transaction. The engine is total for valid
// input, so any error out of Evaluate is caller cancellation.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	txn, err := req.ToContext()
	if err != nil {
		writeError(w, domainerrors.NewValidationError("INVALID_TRANSACTION", err.Error()))
		return
	}

	if h.services.UserLimiter != nil {
		allowed, err := h.services.UserLimiter.Allow(r.Context(), "evaluate:"+txn.UserID.String())
		if err != nil {
			// A broken limiter backend must not take scoring down with it.
			h.logger.WarnContext(r.Context(), "user rate limit check failed",
				"user_id", txn.UserID, "error", err)
		} else if !allowed {
			writeError(w, domainerrors.NewRateLimitError("evaluation rate limit exceeded"))
			return
		}
	}

	result, err := h.services.Engine.Evaluate(r.Context(), txn)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, domainerrors.NewExternalError("REQUEST_CANCELED", "request was canceled"))
			return
		}
		h.logger.ErrorContext(r.Context(), "evaluation failed", "transaction_id", txn.ID, "error", err)
		writeError(w, err)
		return
	}

	// Blocked transactions never become history; everything else trains the
	// stores the next evaluation reads from.
	if h.services.Recorder != nil && !result.IsBlocked() {
		if err := h.services.Recorder.RecordEvaluation(r.Context(), txn); err != nil {
			h.logger.WarnContext(r.Context(), "observation recording incomplete",
				"transaction_id", txn.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, EvaluateResponse{
		TransactionID:   txn.ID,
		DetectionResult: result,
	})
}

// HandleFeedback records confirmed fraud outcomes. Feedback is best-effort
// downstream, so the endpoint always acknowledges a valid submission.
func (h *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	txnID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		writeError(w, domainerrors.NewValidationError("INVALID_TRANSACTION", "transaction_id is not a valid UUID"))
		return
	}

	h.services.Engine.ReportFeedback(r.Context(), txnID, req.IsFraud)

	writeJSON(w, http.StatusAccepted, FeedbackResponse{
		TransactionID: txnID,
		Accepted:      true,
	})
}
