package mockapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// DefaultAllowOrigins covers the Expo web and Vite dev servers.
var DefaultAllowOrigins = []string{
	"http://localhost:8081",
	"http://localhost:19006",
	"http://localhost:5173",
	"http://127.0.0.1:8081",
	"http://127.0.0.1:19006",
	"http://127.0.0.1:5173",
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	origins := s.opts.AllowOrigins
	if len(origins) == 0 {
		origins = DefaultAllowOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID", "traceparent", "tracestate"},
		ExposeHeaders: []string{"X-Request-ID"},
	})
}

// tracing continues the caller's W3C trace so client and mock spans join.
func (s *Server) tracing() gin.HandlerFunc {
	return otelgin.Middleware(s.opts.ServiceName)
}
