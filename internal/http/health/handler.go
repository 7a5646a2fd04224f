// Package health exposes the liveness probe used by the container platform.
package health

import (
	"encoding/json"
	"net/http"

	applog "github.com/janisto/pipeline-greeting/internal/platform/logging"
)

// Path is where the probe is mounted.
const Path = "/health"

// Response is the payload for the health endpoint.
type Response struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Handler returns a plain HTTP handler reporting the service as healthy along
// with the running build version. It bypasses huma so probes stay cheap.
func Handler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(Response{Status: "healthy", Version: version}); err != nil {
			applog.LogError(r.Context(), "failed to write health response", err)
		}
	}
}
