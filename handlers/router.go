package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/scholarfolio/backend/internal/content/handler"
	"github.com/scholarfolio/backend/internal/storage"
	"github.com/scholarfolio/backend/internal/upload"
	"github.com/scholarfolio/backend/pkg/logger"
	"github.com/scholarfolio/backend/pkg/middleware"
)

// RouterDeps is everything NewRouter wires. Verifier may be nil, in which
// case writes are open (development only). Files, when set, is served
// under /files. AdminSubjects are verified subjects that write as
// DefaultOwner. RateLimit and Metrics are optional.
type RouterDeps struct {
	Content       handler.Services
	Uploader      *upload.Uploader
	Files         storage.ObjectStore
	Verifier      middleware.Verifier
	DefaultOwner  string
	AdminSubjects []string
	RateLimit     gin.HandlerFunc
	Metrics       http.Handler
	Checks        []Check
	Started       time.Time
}

// NewRouter builds the gin engine serving the public API.
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	if d.RateLimit != nil {
		r.Use(d.RateLimit)
	}
	// reads are scoped to the site owner; guarded routes re-resolve the
	// owner from the verified subject
	r.Use(middleware.OwnerMiddleware(d.DefaultOwner))

	var write []gin.HandlerFunc
	if d.Verifier != nil {
		auth := middleware.AuthMiddleware(d.Verifier)
		write = []gin.HandlerFunc{auth, middleware.OwnerMiddleware(d.DefaultOwner, d.AdminSubjects...)}
		RegisterTokenRoutes(r, auth)
		RegisterMe(r, write...)
	} else {
		logger.Warn("no token verifier configured: write routes are unauthenticated")
	}

	started := d.Started
	if started.IsZero() {
		started = time.Now()
	}
	RegisterHealth(r, started, d.Checks...)
	RegisterSwagger(r)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	handler.RegisterAll(r, d.Content, write...)
	if d.Uploader != nil {
		upload.RegisterRoutes(r, d.Uploader, write...)
		upload.RegisterRemoveRoute(r, d.Uploader, write...)
	}
	if d.Files != nil {
		upload.RegisterFileRoutes(r, "/files", d.Files)
	}
	return r
}

// WithCORS wraps h with the CORS policy for the admin front end.
func WithCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           600,
	}).Handler(h)
}
