// Package handlers implements the HTTP handlers for the policy API.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "policyapi/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// errorResponse is the wire shape of every error body.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
	ErrorID   string `json:"error_id"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// RespondError writes the standard error envelope. Every error body gets a
// fresh error_id which is also logged for correlation.
func RespondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, message, code string) {
	errorID := uuid.New().String()

	logger.Error("Request failed",
		zap.String("errorID", errorID),
		zap.String("code", code),
		zap.String("message", message),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	)

	respondJSON(w, status, errorResponse{
		Error:     message,
		Code:      code,
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.999999") + "Z",
		Path:      r.URL.Path,
		ErrorID:   errorID,
	})
}

// RespondAppError maps an application error onto the wire envelope, hiding
// internal detail for store and unexpected failures.
func RespondAppError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		RespondError(w, r, logger, appErr.HTTPStatus, appErr.Message, appErr.Code)
		return
	}
	RespondError(w, r, logger, http.StatusInternalServerError, "Internal server error", apperrors.CodeInternalError)
}
