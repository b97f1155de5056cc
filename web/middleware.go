package web

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"

	dbt "nomadguide/db/db"
	"nomadguide/logging"
)

func CorsConfig() cors.Config {
	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	corsConf.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConf.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"}
	corsConf.AllowCredentials = true
	corsConf.MaxAge = 12 * 3600 // 12 hours
	return corsConf
}

// TripDataLoaderInjectionMiddleware gives every request its own batch
// loader, so loads never leak across requests.
func TripDataLoaderInjectionMiddleware(store dbt.TripStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := dbt.WithTripDataLoader(c.Request.Context(), dbt.NewTripDataLoader(store))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func setupMiddlewares(r *gin.Engine, cfg ServiceConfig) {
	r.Use(gin.Recovery())
	r.Use(logging.GinMiddleware(cfg.Logger))
	r.Use(cors.New(CorsConfig()))
	// the live stream hijacks the connection and must not be compressed
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`/live$`})))
	r.Use(secure.New(secure.Config{
		IsDevelopment:        cfg.IsDev,
		STSSeconds:           31536000, // 1 year
		STSIncludeSubdomains: true,
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		BrowserXssFilter:     true,
		ReferrerPolicy:       "strict-origin-when-cross-origin",
	}))
	r.Use(TripDataLoaderInjectionMiddleware(cfg.Service.Store()))
}
