package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SaugatGautam100/courseplex-sub001/config"
)

// SetupCORS allows the dashboard origins. Credentials are only sent to an
// explicit origin list, never with a wildcard.
func SetupCORS(cfg *config.Config) gin.HandlerFunc {
	c := cors.DefaultConfig()
	if anyOrigin(cfg.AllowedOrigins) {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
		c.AllowCredentials = true
	}
	c.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control", "Last-Event-ID"}
	c.ExposeHeaders = []string{"Retry-After"}
	c.MaxAge = 12 * time.Hour
	return cors.New(c)
}

func anyOrigin(origins []string) bool {
	return len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
}
