package routes

import (
	dashhttp "github.com/civictrack/civictrack-go/internal/dashboard/http"
	"github.com/civictrack/civictrack-go/internal/api/http/middleware"

	"github.com/gin-gonic/gin"
)

type V1Deps struct {
	Dashboard *dashhttp.Handler
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")
	api.Use(middleware.RequestIDMiddleware())

	dep.Dashboard.Register(api)
}
