package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yashjaiswal5859/Doc-Collab/handlers"
	"github.com/yashjaiswal5859/Doc-Collab/internal/collab"
	"github.com/yashjaiswal5859/Doc-Collab/internal/config"
	"github.com/yashjaiswal5859/Doc-Collab/internal/database"
	"github.com/yashjaiswal5859/Doc-Collab/internal/document/repository"
	"github.com/yashjaiswal5859/Doc-Collab/internal/document/service"
	"github.com/yashjaiswal5859/Doc-Collab/internal/sessions"
	"github.com/yashjaiswal5859/Doc-Collab/internal/tokens"
	"github.com/yashjaiswal5859/Doc-Collab/internal/users"
	"github.com/yashjaiswal5859/Doc-Collab/pkg/logger"
	"github.com/yashjaiswal5859/Doc-Collab/pkg/metrics"
	"github.com/yashjaiswal5859/Doc-Collab/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging first (controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v access_mode=%s debounce=%ds",
		cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Collab.AccessMode, cfg.Collab.DebounceSeconds)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple; production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	ctx := context.Background()

	// Redis is optional: it adds the cross-instance broadcast bridge and
	// the distributed rate limiter.
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, float64(cfg.RateLimit.RPS), cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(float64(cfg.RateLimit.RPS), cfg.RateLimit.Burst))
		}
	}

	// Document store: Mongo when configured (with retry/backoff to
	// tolerate startup races), in-memory otherwise.
	var store repository.Store
	var userSvc *users.Service
	var sessRepo sessions.Repository
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Fatalf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		}
		defer func() { _ = client.Disconnect(ctx) }()
		store = repository.NewMongoStore(client, cfg.MongoDB.Database)
		userSvc = users.NewService(users.NewMongoUserRepository(client.Database(cfg.MongoDB.Database).Collection("users")))
		sessRepo = sessions.NewMongoRepository(client.Database(cfg.MongoDB.Database).Collection("sessions"))
	} else {
		logger.Warnf("MONGODB_URI not set — using in-memory document store (development only)")
		store = repository.NewMemoryStore()
	}

	docSvc := service.New(store)
	verifier := tokens.NewVerifier(cfg.JWT.Secret)

	// Refresh sessions prefer Redis (TTL-based expiry), fall back to Mongo.
	if rdb != nil {
		sessRepo = sessions.NewRedisRepository(rdb, "")
	}
	var sessSvc *sessions.Service
	if sessRepo != nil {
		sessSvc = sessions.NewService(sessRepo)
	}

	// Realtime layer: hub for presence/broadcast, scheduler for debounced
	// persistence, optional Redis bridge for multi-instance fan-out.
	hub := collab.NewHub()
	sched := collab.NewScheduler(time.Duration(cfg.Collab.DebounceSeconds)*time.Second,
		func(ctx context.Context, docID, userID, content string) (int, error) {
			_, n, err := docSvc.ApplyContentChange(ctx, docID, content, userID)
			return n, err
		})
	sched.SetFlushOnDisconnect(cfg.Collab.FlushOnDisconnect)
	if rdb != nil {
		bridge := collab.NewBridge(rdb, hub)
		go bridge.Run(ctx)
		logger.Infof("cross-instance broadcast bridge enabled")
	}

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the document store is usable
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"storage": store != nil,
			"users":   userSvc != nil || cfg.MongoDB.URI == "",
			"redis":   rdb != nil || cfg.Redis.Host == "",
		}
		ready := true
		for _, ok := range deps {
			ready = ready && ok
		}
		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	if userSvc != nil {
		ah := handlers.NewAuthHandler(cfg, userSvc, sessSvc)
		ah.Register(r.Group("/"))
		ah.RegisterMe(r.Group("/"), verifier)
	} else {
		logger.Warnf("auth routes not registered because the user service is unavailable")
	}

	handlers.NewDocumentHandler(docSvc, cfg.Collab.AccessOpen()).Register(r, verifier)
	handlers.NewCollabHandler(verifier, hub, sched, docSvc, cfg.Collab.AccessOpen()).Register(r)

	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting collaboration service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
