package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agrolink/apiserver/config"
	"github.com/agrolink/apiserver/internal/db"
	"github.com/agrolink/apiserver/internal/handlers"
	"github.com/agrolink/apiserver/internal/services"
	"github.com/agrolink/apiserver/internal/storage"
	"github.com/agrolink/apiserver/internal/store"
	"github.com/agrolink/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with its full dependency graph: database,
// repositories, object storage, services, and routes.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	backend, err := newStorageBackend(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	images := storage.NewImageStore(backend)
	if err := images.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	productRepo := store.NewProductRepository(dbConn)
	orderRepo := store.NewOrderRepository(dbConn)

	userService := services.NewUserService(userRepo)
	productService := services.NewProductService(productRepo, images)
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo)
	revenueService := services.NewRevenueService(orderRepo)

	authMiddleware := handlers.RequireAuth(jwtSecret)
	optionalAuthMiddleware := handlers.OptionalAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)

	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, userService, jwtSecret)

	router.Route("/products", func(r chi.Router) {
		handlers.ProductRouter(r, productService, userService, authMiddleware, optionalAuthMiddleware)
	})

	router.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		handlers.OrderRouter(r, orderService, userService)

		r.Route("/transporter", func(r chi.Router) {
			r.Use(handlers.RequireRole(userService, types.RoleTransporter))
			handlers.TransporterRouter(r, orderService, userService)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(handlers.RequireRole(userService, types.RoleAdmin))
			handlers.AdminRouter(r, userService, productService, orderService, revenueService)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

func newStorageBackend(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStorage, error) {
	switch cfg.Backend {
	case config.StorageBackendMinio:
		return storage.NewMinioClient(cfg.Minio)
	case config.StorageBackendGCS:
		return storage.NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
