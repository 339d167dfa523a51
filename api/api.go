package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger checks a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the service and its database are up
func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code, database := "healthy", http.StatusOK, "connected"
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				zap.S().With(err).Warn("health check failed to ping database")
				status, code, database = "unhealthy", http.StatusServiceUnavailable, "unreachable"
			}
		}
		b, _ := json.Marshal(map[string]string{
			"status":    status,
			"database":  database,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write(b)
	}
}
