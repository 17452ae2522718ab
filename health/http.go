package health

import (
	"encoding/json"
	"net/http"
)

// LivenessHandler returns a handler that always reports the process alive.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

// HealthResponse is the JSON body of the readiness endpoint.
type HealthResponse struct {
	Status string                   `json:"status"`
	Checks map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is one component's entry in a HealthResponse.
type CheckResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// ReadinessHandler returns a handler that runs all checks and reports 200
// while the service is healthy or degraded, 503 otherwise.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := agg.CheckAll(r.Context())
		overall := agg.OverallStatus(results)

		resp := HealthResponse{
			Status: overall.String(),
			Checks: make(map[string]CheckResponse, len(results)),
		}
		for name, result := range results {
			check := CheckResponse{
				Status:     result.Status.String(),
				Message:    result.Message,
				DurationMS: result.Duration.Milliseconds(),
			}
			if result.Error != nil {
				check.Error = result.Error.Error()
			}
			resp.Checks[name] = check
		}

		w.Header().Set("Content-Type", "application/json")
		if overall == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		json.NewEncoder(w).Encode(resp)
	}
}

// RegisterHandlers mounts the liveness and readiness endpoints on mux.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(agg))
}
