// Package webserver exposes the process liveness probe. Interaction traffic
// arrives over Socket Mode; this HTTP surface exists only so a platform
// health check has something to hit.
package webserver

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	startOnce sync.Once
	startErr  error
)

// Start binds the port and serves the health endpoint in the background.
// Calling it more than once is a no-op returning the first result.
func Start(port int, log *zap.Logger) error {
	startOnce.Do(func() {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			startErr = fmt.Errorf("failed to bind port %d: %w", port, err)
			return
		}

		mux := http.NewServeMux()
		mux.HandleFunc("GET /health", handleHealth)

		log.Info("health endpoint listening", zap.Int("port", port))
		go func() {
			if err := http.Serve(ln, mux); err != nil {
				log.Error("health server stopped", zap.Error(err))
			}
		}()
	})
	return startErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
