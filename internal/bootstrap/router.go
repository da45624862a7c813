package bootstrap

import (
	"time"

	"github.com/civictrack/civictrack-go/internal/apiclient"
	httpapi "github.com/civictrack/civictrack-go/internal/api/http"
	"github.com/civictrack/civictrack-go/internal/api/http/middleware"
	"github.com/civictrack/civictrack-go/internal/api/http/routes"
	dashhttp "github.com/civictrack/civictrack-go/internal/dashboard/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	Redis       *redis.Client
	Upstream    *apiclient.Client
	Dashboard   *dashhttp.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Redis, dep.Upstream)
	healthHandler.RegisterRoutes(r)

	routes.RegisterV1(r, routes.V1Deps{Dashboard: dep.Dashboard})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
