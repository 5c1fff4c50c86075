package api

import (
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/miniblog/config"
	_ "github.com/d60-Lab/miniblog/docs"
	"github.com/d60-Lab/miniblog/internal/api/handler"
	"github.com/d60-Lab/miniblog/internal/api/middleware"
	"github.com/d60-Lab/miniblog/pkg/response"
)

// NewRouter 组装全部路由与中间件
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	registerValidations()

	r := gin.New()
	r.Use(middleware.Recovery())
	if cfg.Trace.Endpoint != "" {
		r.Use(otelgin.Middleware("miniblog"))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	r.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{"Hello": "world!"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)

	authed := r.Group("/api/v1", middleware.Auth(h.AuthService()))
	{
		authed.POST("/posts", h.CreatePost)
		authed.GET("/posts", h.ListPosts)
		authed.DELETE("/posts/:post_id", h.DeletePost)
	}

	return r
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	}
}
