package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"dashboard-api/internal/model"
	"dashboard-api/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	apiErr := apierror.From(err)
	status := apiErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("request failed", "code", apiErr.Code, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   apiErr.Message,
		Code:    apiErr.Code,
	})
}
