package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"marlang/cmd/api/handlers"
	"marlang/cmd/api/middleware"
	"marlang/cmd/api/services"
	_ "marlang/docs"
	"marlang/metrics"
	"marlang/repositories"
	"marlang/storage"
)

// Deps 는 라우터가 핸들러를 조립하는 데 필요한 의존성이다.
type Deps struct {
	Store   repositories.Store
	Runner  services.AgentRunner
	Images  storage.Reader
	Tokens  middleware.TokenParser
	AgentID string
	// Health 가 nil 이 아니면 /health 에서 호출해 저장소 상태를 확인한다.
	Health func(ctx context.Context) error
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace(), metrics.GinMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := d.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": "down", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", metrics.Handler())

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	postsSvc := services.NewPostService(d.Store)
	adminSvc := services.NewAdminService(d.Store, d.Store)
	agentSvc := services.NewAgentService(d.Store, d.Runner, d.AgentID)

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.GET("/posts", handlers.ListPostsHandler(postsSvc))
		api.GET("/posts/:id", handlers.GetPostHandler(postsSvc))
		api.GET("/posts/slug/:slug", handlers.GetPostBySlugHandler(postsSvc))
		if d.Images != nil {
			api.GET("/images/*key", handlers.GetImageHandler(d.Images))
		}
	}

	admin := api.Group("/admin", middleware.AdminAuthMiddleware(d.Tokens, d.Store))
	{
		admin.GET("/agent", handlers.AdminGetAgentHandler(agentSvc))
		admin.PUT("/agent", handlers.AdminReplaceAgentHandler(agentSvc))
		admin.PATCH("/agent", handlers.AdminPatchAgentHandler(agentSvc))
		admin.POST("/agent/run", handlers.AdminRunAgentHandler(agentSvc))

		admin.GET("/posts", handlers.AdminListPostsHandler(adminSvc))
		admin.PUT("/posts/:id", handlers.AdminUpdatePostHandler(adminSvc))
		admin.DELETE("/posts/:id", handlers.AdminDeletePostHandler(adminSvc))

		admin.GET("/admins", handlers.AdminListAdminsHandler(adminSvc))
		admin.POST("/admins", handlers.AdminAddAdminHandler(adminSvc))
		admin.DELETE("/admins/:uid", handlers.AdminRemoveAdminHandler(adminSvc))
	}

	return r
}
