package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/mdflamingo/paydesk/internal/logger"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck pings every dependency in deps under one second and answers
// 503 with the names of those that failed.
func HealthCheck(w http.ResponseWriter, r *http.Request, deps map[string]Pinger) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	var down []string
	for name, dep := range deps {
		if err := dep.Ping(ctx); err != nil {
			logger.Log.Error("dependency not available", zap.String("dependency", name), zap.Error(err))
			down = append(down, name)
		}
	}

	if len(down) > 0 {
		sort.Strings(down)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "error", "down": down})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
