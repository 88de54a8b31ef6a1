package http_access_middleware

import (
	"net/http"
	"sync"

	http_common "github.com/aakumar2208/tamil-movies-scraper/internal/delivery/http/common"
	"github.com/gin-gonic/gin"
)

// ExclusiveWrites lets one write job run at a time. Reads always pass, a
// second write while one is running gets 409.
func ExclusiveWrites() gin.HandlerFunc {
	var mu sync.Mutex
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		if !mu.TryLock() {
			c.AbortWithStatusJSON(http.StatusConflict, http_common.ErrorResponse{
				Error:   "Job already running",
				Message: "another scraping or analysis job is in progress",
				Code:    http.StatusConflict,
			})
			return
		}
		defer mu.Unlock()
		c.Next()
	}
}
