package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/blog/backend/internal/transport/http/middleware"
)

const maxBodyBytes = 50 << 20

type RouterConfig struct {
	Auth           *AuthHandler
	Posts          *PostHandler
	Live           gin.HandlerFunc // Optional, can be nil
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.BodyLimit(maxBodyBytes))

	authMW := middleware.Auth(cfg.Auth.Auth)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Blog project backend API server")
	})

	// Public Auth Routes
	router.POST("/register", cfg.Auth.Register)
	router.POST("/login", cfg.Auth.Login)
	router.POST("/logout", cfg.Auth.Logout)
	router.POST("/token", cfg.Auth.Token)

	// Public Post Routes
	router.GET("/posts", cfg.Posts.List)
	router.GET("/posts/search", cfg.Posts.Search)
	router.GET("/posts/:id", cfg.Posts.Get)
	router.GET("/posts/:id/related", cfg.Posts.Related)
	if cfg.Live != nil {
		router.GET("/posts/live", cfg.Live)
	}

	// Protected Routes
	protected := router.Group("/")
	protected.Use(authMW)
	{
		protected.GET("/user", cfg.Auth.Me)
		protected.POST("/posts", cfg.Posts.Create)
		protected.DELETE("/posts/:id", cfg.Posts.Delete)
	}

	return router
}
