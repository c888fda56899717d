package rest

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker probes one dependency.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc struct {
	CheckerName string
	Fn          func(ctx context.Context) error
}

func (f HealthCheckFunc) Name() string                    { return f.CheckerName }
func (f HealthCheckFunc) Check(ctx context.Context) error { return f.Fn(ctx) }

type checkStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Checks  map[string]checkStatus `json:"checks,omitempty"`
}

const healthCheckTimeout = 2 * time.Second

// healthHandler reports aggregate readiness. Any failing dependency turns
// the response into a 503 so load balancers stop routing here.
func healthHandler(version string, checkers []HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:  "healthy",
			Version: version,
			Checks:  make(map[string]checkStatus, len(checkers)),
		}

		status := http.StatusOK
		for _, checker := range checkers {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			err := checker.Check(ctx)
			cancel()

			if err != nil {
				resp.Status = "unhealthy"
				resp.Checks[checker.Name()] = checkStatus{Status: "fail", Error: err.Error()}
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[checker.Name()] = checkStatus{Status: "pass"}
		}

		writeJSON(w, status, resp)
	}
}
