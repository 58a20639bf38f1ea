package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/scholarfolio/backend/handlers"
	"github.com/scholarfolio/backend/internal/config"
	"github.com/scholarfolio/backend/internal/content"
	"github.com/scholarfolio/backend/internal/content/handler"
	"github.com/scholarfolio/backend/internal/content/repository"
	"github.com/scholarfolio/backend/internal/content/service"
	"github.com/scholarfolio/backend/internal/database"
	"github.com/scholarfolio/backend/internal/oidc"
	"github.com/scholarfolio/backend/internal/revocation"
	"github.com/scholarfolio/backend/internal/storage"
	"github.com/scholarfolio/backend/internal/tokens"
	"github.com/scholarfolio/backend/internal/upload"
	"github.com/scholarfolio/backend/pkg/logger"
	"github.com/scholarfolio/backend/pkg/metrics"
	"github.com/scholarfolio/backend/pkg/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.InitWithFile(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v minio=%v log=%s",
		cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Storage.Endpoint != "", logger.LevelString())

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var checks []handlers.Check

	// Redis backs the shared rate limiter and the token revocation list.
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
		revocation.SetClient(rdb)
		checks = append(checks, handlers.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})
		defer rdb.Close()
	}

	var rateLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			rateLimit = middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
		} else {
			rateLimit = middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}

	verifier := buildVerifier(ctx, cfg)

	services, mongoClient := buildServices(ctx, cfg)
	if mongoClient != nil {
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
		checks = append(checks, handlers.Check{Name: "mongodb", Ping: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }})
	}

	store := buildStorage(cfg)
	var files storage.ObjectStore
	if m, ok := store.(*storage.MinIOStorage); ok {
		checks = append(checks, handlers.Check{Name: "storage", Ping: m.Ping})
	} else {
		files = store
	}
	uploader := upload.NewUploader(store, upload.Options{
		BucketName:   cfg.Upload.Bucket,
		FolderPath:   cfg.Upload.Folder,
		MaxFileSize:  cfg.Upload.MaxFileSize,
		AllowedTypes: []string{"application/pdf", "image/png", "image/jpeg", "image/webp"},
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	r := handlers.NewRouter(handlers.RouterDeps{
		Content:       services,
		Uploader:      uploader,
		Files:         files,
		Verifier:      verifier,
		DefaultOwner:  cfg.Owner.ID,
		AdminSubjects: cfg.Owner.AdminSubjects,
		RateLimit:     rateLimit,
		Metrics:       promhttp.Handler(),
		Checks:        checks,
		Started:       startTime,
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handlers.WithCORS(r, cfg.CORS.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("starting scholarfolio API on %s (owner %s)", addr, cfg.Owner.ID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown: %v", err)
	}
}

// buildVerifier chains every configured token verifier. It returns nil when
// none is configured, which leaves write routes open.
func buildVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	var chain middleware.VerifierChain
	if cfg.OwnerUnmapped() {
		logger.Warnf("OIDC is enabled but OWNER_ID is the built-in default %s and OWNER_ADMIN_SUBJECTS is empty: records saved by an OIDC login will not appear on the public pages", config.DefaultOwnerID)
	}
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.Keycloak.Issuer(), cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			chain = append(chain, ver)
		}
	}
	if cfg.JWT.Secret != "" {
		chain = append(chain, tokens.NewHMACVerifier(cfg.JWT.Secret))
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warn("enabling insecure token verifier (integration mode)")
		chain = append(chain, oidc.NewInsecureVerifier())
	}
	if len(chain) == 0 {
		if cfg.AuthEnabled() {
			// configured but unusable: fail closed
			logger.Errorf("token verification is configured but no verifier could be initialized; writes will be rejected")
			return middleware.VerifierChain{}
		}
		return nil
	}
	return chain
}

// buildServices returns Mongo-backed services when MONGODB_URI is set and
// reachable, in-memory ones otherwise.
func buildServices(ctx context.Context, cfg *config.Config) (handler.Services, *mongo.Client) {
	memory := handler.Services{
		Papers:   service.NewMemory[content.ResearchPaper, content.PaperInput](),
		Posts:    service.NewMemory[content.BlogPost, content.PostInput](),
		Teaching: service.NewMemory[content.TeachingExperience, content.TeachingInput](),
	}
	if cfg.MongoDB.URI == "" {
		logger.Warnf("MONGODB_URI not set: using in-memory repositories")
		return memory, nil
	}
	client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
	if err != nil {
		logger.Warnf("could not connect to MongoDB: %v; using in-memory repositories", err)
		return memory, nil
	}
	db := client.Database(cfg.MongoDB.Database)

	papers, err := repository.NewMongoRepo[content.ResearchPaper](ctx, db.Collection("researchpapers"))
	if err != nil {
		logger.Fatalf("prepare researchpapers collection: %v", err)
	}
	posts, err := repository.NewMongoRepo[content.BlogPost](ctx, db.Collection("blogposts"))
	if err != nil {
		logger.Fatalf("prepare blogposts collection: %v", err)
	}
	teaching, err := repository.NewMongoRepo[content.TeachingExperience](ctx, db.Collection("teachingexperiences"))
	if err != nil {
		logger.Fatalf("prepare teachingexperiences collection: %v", err)
	}
	logger.Infof("using MongoDB database %s", cfg.MongoDB.Database)
	return handler.Services{
		Papers:   service.New[content.ResearchPaper, content.PaperInput](papers),
		Posts:    service.New[content.BlogPost, content.PostInput](posts),
		Teaching: service.New[content.TeachingExperience, content.TeachingInput](teaching),
	}, client
}

func buildStorage(cfg *config.Config) storage.ObjectStore {
	if cfg.Storage.Endpoint == "" {
		logger.Warnf("MINIO_ENDPOINT not set: uploads are kept in memory")
		return storage.NewMemoryStorage("http://localhost:" + cfg.Server.Port + "/files")
	}
	s, err := storage.NewMinIOStorage(cfg.Storage)
	if err != nil {
		logger.Fatalf("failed to initialize MinIO client: %v", err)
	}
	return s
}
