package router

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/ratelimit"
)

// Options 路由选项
type Options struct {
	// APIKey 非空时 /api/v1 需要 X-API-Key
	APIKey string
	// RateLimitQPM 非0时 /api/v1 按令牌桶限流
	RateLimitQPM   int
	RateLimitBurst int
	// Middlewares 在请求ID和请求日志之前执行，例如 tracing
	Middlewares []app.HandlerFunc
}

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, candidateHandler *handler.CandidateHandler, opts Options) {
	h.Use(opts.Middlewares...)
	h.Use(RequestID(), AccessLog())

	h.GET("/health", resumeHandler.Health)

	var guards []app.HandlerFunc
	if opts.APIKey != "" {
		guards = append(guards, APIKeyAuth(opts.APIKey))
	}
	if opts.RateLimitQPM > 0 {
		guards = append(guards, RateLimit(ratelimit.NewTokenBucket(opts.RateLimitQPM, opts.RateLimitBurst)))
	}
	api := h.Group("/api/v1", guards...)

	resume := api.Group("/resume")
	resume.POST("/parse", resumeHandler.Parse)
	resume.POST("/parse-batch", resumeHandler.ParseBatch)
	resume.POST("/upload", resumeHandler.Upload)
	resume.GET("/:uuid/profile", resumeHandler.GetProfile)

	candidates := api.Group("/candidates")
	candidates.POST("/analyze", candidateHandler.Analyze)
	candidates.POST("/filter", candidateHandler.Filter)
	candidates.POST("/match", candidateHandler.Match)
}
