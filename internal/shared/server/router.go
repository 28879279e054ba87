// Package server assembles the HTTP surface.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/settham78ths/V2/internal/billing"
	"github.com/settham78ths/V2/internal/generations"
	"github.com/settham78ths/V2/internal/jobposting"
	"github.com/settham78ths/V2/internal/services/health"
	"github.com/settham78ths/V2/internal/shared/config"
	"github.com/settham78ths/V2/internal/shared/metrics"
	"github.com/settham78ths/V2/internal/shared/server/middleware"
	"github.com/settham78ths/V2/internal/uploads"
)

// Dependencies carries everything the router mounts.
type Dependencies struct {
	Config      config.Config
	Health      *health.Service
	Uploads     *uploads.Handler
	Generations *generations.Handler
	Billing     *billing.Handler
	JobPostings *jobposting.Handler
}

// NewRouter builds the gin engine with the full middleware chain.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logging(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())
	r.GET("/api/v1/health", deps.Health.Handler())

	limiter := middleware.NewRateLimiter()
	api := r.Group("/api/v1")
	api.Use(
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				// Generations hit the model provider; keep them scarce.
				"generate": {Capacity: 10, RefillPerS: 10.0 / 60.0},
				"default":  {Capacity: 60, RefillPerS: 1},
			},
			DefaultGroup: "default",
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == "POST" && (c.FullPath() == "/api/v1/generations" || c.FullPath() == "/api/v1/job-postings/analyze") {
					return "generate"
				}
				return "default"
			},
			Limiter: limiter,
		}),
	)

	deps.Uploads.Register(api)
	deps.Generations.Register(api)
	deps.Billing.Register(api)
	deps.JobPostings.Register(api)

	return r
}
