package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayo6706/booking-billing/internal/api/middleware"
	"github.com/ayo6706/booking-billing/internal/api/problem"
	"github.com/ayo6706/booking-billing/internal/domain"
	"github.com/ayo6706/booking-billing/internal/models"
	"go.uber.org/zap"
)

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an error response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	if problemType != "" && problemType != "about:blank" && !strings.HasPrefix(problemType, "http") {
		problemType = problem.Type(problemType)
	}
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

func requestActor(r *http.Request) (models.ActorContext, bool) {
	return middleware.ActorFromContext(r.Context())
}

// RespondDomainError maps classified billing errors onto HTTP statuses.
// Internal causes are logged, never leaked.
func RespondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var e *domain.Error
	message := "request failed"
	kind := domain.KindOf(err)
	if errors.As(err, &e) {
		message = e.Message
	}

	switch kind {
	case domain.ErrInvalidRequest:
		RespondError(w, r, http.StatusBadRequest, "billing/invalid-request", message)
	case domain.ErrInvalidBillingType:
		RespondError(w, r, http.StatusBadRequest, "billing/invalid-billing-type", message)
	case domain.ErrNotSettled:
		RespondError(w, r, http.StatusBadRequest, "billing/not-settled", message)
	case domain.ErrInvalidTransition:
		RespondError(w, r, http.StatusBadRequest, "billing/invalid-transition", message)
	case domain.ErrForbidden:
		RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", message)
	case domain.ErrNotFound:
		RespondError(w, r, http.StatusNotFound, "billing/not-found", message)
	case domain.ErrStorageConflict:
		RespondError(w, r, http.StatusConflict, "billing/storage-conflict", message)
	default:
		zap.L().Error("unclassified billing error", zap.Error(err), zap.String("path", r.URL.Path))
		RespondError(w, r, http.StatusInternalServerError, "internal-server-error", "unexpected server error")
	}
}
