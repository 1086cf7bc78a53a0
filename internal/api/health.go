package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/models/dtos/responses"
)

// HealthCheckHandler handles GET /healthCheck
//
// @Summary Health check
// @Description Pings the relational and document stores.
// @Tags Misc
// @Success 200 {object} responses.HealthCheckResponse
// @Failure 503 {object} responses.HealthCheckResponse
// @Router /healthCheck [get]
func (h *Handlers) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		services := make(map[string]responses.ServiceStatus)
		services["postgres"] = probe("Postgres Connected", func() error {
			return h.deps.Infra.SQL.PingContext(ctx)
		})
		services["redis"] = probe("Redis Connected", func() error {
			return h.deps.Infra.Redis.Ping(ctx).Err()
		})

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		now := time.Now()
		resp := responses.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  h.deps.UpSince,
			Uptime:   now.Sub(h.deps.UpSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func probe(okDetails string, ping func() error) responses.ServiceStatus {
	if err := ping(); err != nil {
		return responses.ServiceStatus{Status: "down", Details: err.Error()}
	}
	return responses.ServiceStatus{Status: "ok", Details: okDetails}
}
