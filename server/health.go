package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const healthTimeout = 5 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// handleHealth probes the model endpoint and the state store concurrently.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := map[string]string{"model": "skipped", "store": "skipped"}
	var modelErr, storeErr error

	var g errgroup.Group
	if s.models != nil {
		g.Go(func() error {
			modelErr = s.models.Ping(ctx, s.engine.Settings().BaseURL)
			return modelErr
		})
	}
	if s.store != nil {
		g.Go(func() error {
			if p, ok := s.store.(pinger); ok {
				storeErr = p.Ping(ctx)
			} else {
				_, storeErr = s.store.Load(ctx)
			}
			return storeErr
		})
	}
	err := g.Wait()

	if s.models != nil {
		checks["model"] = result(modelErr)
	}
	if s.store != nil {
		checks["store"] = result(storeErr)
	}

	status, code := "ok", http.StatusOK
	if err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}

func result(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}
