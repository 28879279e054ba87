// Package health reports process readiness: database connectivity and
// model-provider configuration.
package health

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/settham78ths/V2/internal/shared/server/respond"
)

// ConfigChecker reports whether the model client holds a usable
// credential. Configuration problems must show up here, not only when
// a generation fails.
type ConfigChecker interface {
	CheckConfig() error
}

// Service aggregates health checks.
type Service struct {
	db      *sql.DB
	checker ConfigChecker
}

func NewService(db *sql.DB, checker ConfigChecker) *Service {
	return &Service{db: db, checker: checker}
}

// Report is the aggregate health result.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Check runs all health checks.
func (s *Service) Check(ctx context.Context) Report {
	out := Report{Status: "ok", Checks: map[string]string{}}

	if s.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(pingCtx); err != nil {
			out.Status = "degraded"
			out.Checks["database"] = err.Error()
		} else {
			out.Checks["database"] = "ok"
		}
	} else {
		out.Checks["database"] = "not configured"
	}

	if s.checker != nil {
		if err := s.checker.CheckConfig(); err != nil {
			out.Status = "degraded"
			out.Checks["model"] = err.Error()
		} else {
			out.Checks["model"] = "ok"
		}
	}

	return out
}

// Handler serves the health endpoint.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := s.Check(c.Request.Context())
		code := http.StatusOK
		if st.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, st)
	}
}
