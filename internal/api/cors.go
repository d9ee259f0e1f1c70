package api

import "github.com/gin-gonic/gin"

// corsMiddleware allows any origin, method, and header, matching the
// original FastAPI app's CORSMiddleware(allow_origins=["*"],
// allow_methods=["*"], allow_headers=["*"]) (§4.6).
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "*")
		c.Header("Access-Control-Allow-Headers", "*")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
