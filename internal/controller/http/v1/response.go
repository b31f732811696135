package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fieldops/task_distributor/internal/domain"
)

type errorResponse struct {
	Error *domain.Error `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// respondError maps a typed pipeline failure onto an HTTP status and returns
// it with its full structured detail. Anything else is an internal failure
// and surfaces as a generic 500: the stored distribution keeps the reason.
func respondError(w http.ResponseWriter, err error) {
	var pipelineErr *domain.Error
	if errors.As(err, &pipelineErr) {
		respondJSON(w, statusForCode(pipelineErr.Code), errorResponse{Error: pipelineErr})
		return
	}

	respondJSON(w, http.StatusInternalServerError, errorResponse{
		Error: domain.NewError("INTERNAL", "internal server error"),
	})
}

func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.CodeUnsupportedType:
		return http.StatusUnsupportedMediaType
	case domain.CodeInvalidData, domain.CodeMissingColumns:
		return http.StatusUnprocessableEntity
	case domain.CodeNoActiveAgents:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
