package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/iamasit07/blog/backend/internal/config"
	"github.com/iamasit07/blog/backend/internal/repository/memory"
	"github.com/iamasit07/blog/backend/internal/repository/postgres"
	"github.com/iamasit07/blog/backend/internal/repository/redis"
	"github.com/iamasit07/blog/backend/internal/service/cleanup"
	"github.com/iamasit07/blog/backend/internal/service/post"
	"github.com/iamasit07/blog/backend/internal/service/session"
	transportHttp "github.com/iamasit07/blog/backend/internal/transport/http"
	"github.com/iamasit07/blog/backend/internal/transport/websocket"
	"github.com/iamasit07/blog/backend/pkg/auth"
	"github.com/iamasit07/blog/backend/pkg/httputil"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	cfg := config.MustLoad(*configPath)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// 1. Persistence: Postgres when configured, in-memory otherwise
	var (
		users    session.UserRepository
		sessions session.SessionStore
		posts    post.PostRepository
		db       *sql.DB
	)
	if cfg.DB.URL != "" {
		log.Println("Running database migrations...")
		if err := postgres.Migrate(cfg.DB.URL); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}

		var err error
		db, err = postgres.Open(ctx, cfg.DB)
		if err != nil {
			log.Fatalf("Database unreachable: %v", err)
		}
		defer db.Close()

		users = postgres.NewUserRepo(db)
		sessions = postgres.NewSessionRepo(db)
		posts = postgres.NewPostRepo(db)
	} else {
		log.Println("[DB] DATABASE_URL not set, using in-memory storage")
		users = memory.NewUserRepo()
		sessions = memory.NewSessionStore()
		posts = memory.NewPostRepo()
	}

	// 2. Redis: session store and profile cache, skipped when unreachable
	var cache session.CacheRepository
	var redisClient *goredis.Client
	if cfg.Redis.URL != "" {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Printf("[REDIS] Warning: %v. Falling back to %s sessions.", err, backendName(db))
		} else {
			redisClient = client
			defer redisClient.Close()
			sessions = redis.NewSessionStore(redisClient, cfg.RefreshTokenTTL())
			cache = redis.NewRedisCache(redisClient)
		}
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	if repo, ok := sessions.(*postgres.SessionRepo); ok && cfg.RefreshTokenTTL() > 0 {
		cleanup.NewWorker(repo, cfg.RefreshTokenTTL()).Start(workerCtx)
	}

	// 3. Services
	issuer := auth.NewIssuer(cfg.Auth.AccessTokenSecret, cfg.Auth.RefreshTokenSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	authService := session.NewAuthService(users, sessions, issuer, auth.NewHasher(cfg.Auth.BcryptCost))
	if cache != nil {
		authService.WithProfileCache(cache, cfg.ProfileCacheTTL())
	}

	hub := websocket.NewHub()
	postService := post.NewService(posts, hub)

	// 4. HTTP
	cookies := httputil.CookiePolicy{Production: cfg.IsProduction(), MaxAge: cfg.RefreshTokenTTL()}
	router := transportHttp.NewRouter(transportHttp.RouterConfig{
		Auth:           transportHttp.NewAuthHandler(authService, cookies),
		Posts:          transportHttp.NewPostHandler(postService),
		Live:           websocket.NewHandler(hub, cfg.AllowedOrigins).ServeWS,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s (%s)", cfg.Port, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")

	stopWorkers()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}

func backendName(db *sql.DB) string {
	if db != nil {
		return "PostgreSQL"
	}
	return "in-memory"
}
