package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"dashboard-api/internal/metrics"
	"dashboard-api/internal/model"
	"dashboard-api/pkg/apierror"
)

func jsonEncode(w http.ResponseWriter, value any) error {
	return json.NewEncoder(w).Encode(value)
}

// writeError sends the client-safe part of err. Causes of 5xx responses are
// logged here and nowhere else.
func writeError(w http.ResponseWriter, err error) {
	apiErr := apierror.From(err)
	status := apiErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request gate failed", "code", apiErr.Code, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error:   apiErr.Message,
		Code:    apiErr.Code,
	})
}

func reject(w http.ResponseWriter, m *metrics.Metrics, gate string, err error) {
	m.GateDecision(gate, strings.ToLower(apierror.From(err).Code))
	writeError(w, err)
}
