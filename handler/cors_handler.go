package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type CorsHandler struct {
	allowAll bool
	origins  map[string]struct{}
}

// NewCorsHandler allows the given origins. An empty list or "*" allows any
// origin.
func NewCorsHandler(allowedOrigins []string) *CorsHandler {
	h := &CorsHandler{origins: make(map[string]struct{})}
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			h.allowAll = true
		}
		if origin != "" {
			h.origins[origin] = struct{}{}
		}
	}
	if len(h.origins) == 0 {
		h.allowAll = true
	}
	return h
}

func (h *CorsHandler) CorsMiddleware(c *gin.Context) {
	origin := c.Request.Header.Get("Origin")
	switch {
	case h.allowAll:
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	case origin != "":
		if _, ok := h.origins[origin]; ok {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}
	}
	c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}
