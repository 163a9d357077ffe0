package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	adminapp "github.com/fernetbarato/fernet-barato/api/internal/admin/application"
	"github.com/fernetbarato/fernet-barato/api/internal/config"
	"github.com/fernetbarato/fernet-barato/api/internal/infrastructure/cavos"
	"github.com/fernetbarato/fernet-barato/api/internal/infrastructure/geocode"
	mongodoc "github.com/fernetbarato/fernet-barato/api/internal/infrastructure/mongo"
	"github.com/fernetbarato/fernet-barato/api/internal/infrastructure/starknet"
	adminhttp "github.com/fernetbarato/fernet-barato/api/internal/interfaces/http/admin"
	commonhttp "github.com/fernetbarato/fernet-barato/api/internal/interfaces/http/common"
	publichttp "github.com/fernetbarato/fernet-barato/api/internal/interfaces/http/public"
	publicapp "github.com/fernetbarato/fernet-barato/api/internal/public/application"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type mongoPinger struct{ client *mongo.Client }

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

// Server owns the HTTP listener and the clients it must close on shutdown.
type Server struct {
	logger  *zap.Logger
	addr    string
	handler http.Handler
	client  *mongo.Client
	redis   *redis.Client
}

// Routes are the mounted handler sets.
type Routes struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	Pinger         Pinger
	Auth           *commonhttp.Authenticator
	Public         *publichttp.Handler
	Admin          *adminhttp.Handler
}

// NewRouter assembles middleware and routes.
func NewRouter(routes Routes) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(routes.AllowedOrigins))

	router.Get("/healthz", healthHandler(routes.Logger, routes.Pinger))
	router.Handle("/metrics", promhttp.Handler())

	routes.Public.RegisterCallback(router)
	router.Route("/api/v1", func(r chi.Router) {
		routes.Public.Register(r, routes.Auth.Middleware)
	})
	router.Route("/admin", func(r chi.Router) {
		routes.Admin.Register(r, routes.Auth.Middleware)
	})
	return router
}

// New resolves every dependency from cfg and returns a ready Server.
func New(ctx context.Context, cfg config.Config, client *mongo.Client, logger *zap.Logger) (*Server, error) {
	database := client.Database(cfg.MongoDatabase)

	sessions := mongodoc.NewSessionRepository(database, cfg.SessionCollection, cfg.Session.TTL)
	if err := sessions.EnsureIndexes(ctx); err != nil {
		logger.Warn("ensure session indexes", zap.Error(err))
	}
	journal := mongodoc.NewTransactionRepository(database, cfg.TransactionCollection)
	if err := journal.EnsureIndexes(ctx); err != nil {
		logger.Warn("ensure transaction indexes", zap.Error(err))
	}

	callers := make(map[string]starknet.Caller, len(cfg.Starknet.RPCURLs))
	for network, rpcURL := range cfg.Starknet.RPCURLs {
		if strings.TrimSpace(rpcURL) == "" {
			continue
		}
		node, err := starknet.NewClient(starknet.ClientConfig{RPCURL: rpcURL, Timeout: cfg.Starknet.Timeout})
		if err != nil {
			return nil, fmt.Errorf("starknet %s client: %w", network, err)
		}
		callers[network] = node
	}
	reader := starknet.NewReader(starknet.ReaderConfig{
		ContractAddress: cfg.Starknet.ContractAddress,
		Callers:         callers,
		FanOutLimit:     cfg.Starknet.FanOutLimit,
		Logger:          logger.Named("reader"),
	})

	wallets := cavos.NewClient(cavos.Config{
		BaseURL:   cfg.Cavos.BaseURL,
		AppID:     cfg.Cavos.AppID,
		OrgSecret: cfg.Cavos.OrgSecret,
		Timeout:   cfg.Cavos.Timeout,
	})
	writer := starknet.NewWriter(starknet.WriterConfig{
		ContractAddress: cfg.Starknet.ContractAddress,
		Executor:        wallets,
		Journal:         journal,
		Logger:          logger.Named("writer"),
	})

	locator, redisClient, err := newGeocoder(cfg.Geocode, logger.Named("geocode"))
	if err != nil {
		return nil, err
	}

	tokens := session.NewTokens(session.TokenConfig{
		Secret:   cfg.Session.Secret,
		Issuer:   cfg.Session.Issuer,
		Audience: cfg.Session.Audience,
		TTL:      cfg.Session.TTL,
	})

	accounts := publicapp.NewAccountService(publicapp.AccountConfig{
		Provider: wallets,
		Writer:   writer,
		Storage:  sessions,
		Tokens:   tokens,
		Logger:   logger.Named("accounts"),
	})
	storeQueries := publicapp.NewStoreQueryService(publicapp.StoreQueryConfig{
		Reader:   reader,
		Geocoder: locator,
		Logger:   logger.Named("stores"),
	})
	feedback := publicapp.NewFeedbackService(writer)
	adminStores := adminapp.NewStoreService(reader, writer, journal, logger.Named("admin"))

	handler := NewRouter(Routes{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		Pinger:         mongoPinger{client: client},
		Auth:           commonhttp.NewAuthenticator(tokens, sessions, logger.Named("auth")),
		Public: publichttp.NewHandler(publichttp.Config{
			Logger:         logger.Named("http"),
			Accounts:       accounts,
			StoreQueries:   storeQueries,
			Feedback:       feedback,
			DefaultNetwork: cfg.Starknet.DefaultNetwork,
		}),
		Admin: adminhttp.NewHandler(adminhttp.Config{
			Logger:       logger.Named("http.admin"),
			StoreService: adminStores,
			Sessions:     accounts,
		}),
	})

	return &Server{
		logger:  logger,
		addr:    cfg.Addr,
		handler: handler,
		client:  client,
		redis:   redisClient,
	}, nil
}

// newGeocoder builds static table -> (Redis cache ->) Nominatim.
func newGeocoder(cfg config.GeocodeConfig, logger *zap.Logger) (*geocode.Chain, *redis.Client, error) {
	table, err := geocode.LoadStaticTable(cfg.CoordinatesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load store coordinates: %w", err)
	}
	logger.Info("static coordinates loaded", zap.Int("stores", table.Len()))

	var remote geocode.Locator = geocode.NewNominatim(geocode.NominatimConfig{
		BaseURL:       cfg.NominatimURL,
		CountrySuffix: cfg.CountrySuffix,
		UserAgent:     cfg.UserAgent,
		RatePerSecond: cfg.RatePerSecond,
		Timeout:       cfg.Timeout,
	})

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		remote = geocode.NewRedisCache(redisClient, remote, cfg.CacheTTL, logger)
	}

	return geocode.NewChain(logger,
		geocode.Source{Name: "static", Locator: table},
		geocode.Source{Name: "nominatim", Locator: remote},
	), redisClient, nil
}

// Handler exposes the assembled router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.addr))
		errChan <- httpServer.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http shutdown", zap.Error(err))
		}
	}

	s.shutdown()
	return runErr
}

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		s.logger.Warn("mongo disconnect", zap.Error(err))
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("redis close", zap.Error(err))
		}
	}
}

// withCORS returns middleware adding CORS headers for allowed origins.
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler reports database reachability only.
func healthHandler(logger *zap.Logger, pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			commonhttp.WriteJSON(logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		commonhttp.WriteJSON(logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}
