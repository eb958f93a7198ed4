package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lifelog/authgate/authgate"
	"github.com/lifelog/authgate/internal/config"
	"github.com/lifelog/authgate/internal/records"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Server is the lifelog API process: gate, record store and listeners
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	gate     *authgate.Gate
	repo     records.Repository
	engine   *gin.Engine
	closers  []func() error
}

// NewLogger builds the process logger. Production writes JSON, development text.
func NewLogger(w io.Writer, level string, production bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if production {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// New wires the gate, the record repository and the HTTP routes from cfg
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gate, err := s.buildGate(ctx)
	if err != nil {
		return nil, err
	}
	s.gate = gate

	repo, err := s.buildRepository(ctx)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.repo = repo

	s.engine = s.routes()
	return s, nil
}

func (s *Server) buildGate(ctx context.Context) (*authgate.Gate, error) {
	secret, ephemeral, err := s.cfg.SigningSecret()
	if err != nil {
		return nil, err
	}
	if ephemeral {
		s.logger.Warn("jwt.secret not set, using a random per-process secret; no externally issued token will verify")
	}

	metrics, err := authgate.NewMetrics(s.registry)
	if err != nil {
		return nil, fmt.Errorf("register auth metrics: %w", err)
	}

	opts := []authgate.ConfigOption{
		authgate.WithHS256(secret),
		authgate.WithClockSkew(s.cfg.JWT.ClockSkew),
		authgate.WithLogger(s.logger),
		authgate.WithMetrics(metrics),
	}
	if s.cfg.JWT.PolicyFile != "" {
		guard, err := authgate.NewPolicyGuardFromFile(ctx, s.cfg.JWT.PolicyFile)
		if err != nil {
			return nil, err
		}
		s.logger.Info("ownership policy loaded", "path", s.cfg.JWT.PolicyFile)
		opts = append(opts, authgate.WithAuthorizer(guard))
	}

	gateCfg, err := authgate.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return authgate.New(gateCfg), nil
}

func (s *Server) buildRepository(ctx context.Context) (records.Repository, error) {
	var repo records.Repository
	if s.cfg.Database.DSN == "" {
		s.logger.Info("database.dsn not set, keeping records in memory")
		repo = records.NewMemoryRepository()
	} else {
		db, err := records.OpenPostgres(s.cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			s.closers = append(s.closers, sqlDB.Close)
		}
		gormRepo := records.NewGormRepository(db)
		if err := gormRepo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate records: %w", err)
		}
		repo = gormRepo
	}

	if s.cfg.Redis.Addr == "" {
		return repo, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     s.cfg.Redis.Addr,
		Password: s.cfg.Redis.Password,
		DB:       s.cfg.Redis.DB,
	})
	s.closers = append(s.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		s.logger.Warn("redis unreachable, owner lookups will go to the database", "addr", s.cfg.Redis.Addr, "error", err)
	}
	return records.NewCachedRepository(repo, client, s.cfg.Redis.OwnerTTL, s.logger), nil
}

func (s *Server) routes() *gin.Engine {
	if s.cfg.App.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, authgate.OK(gin.H{"status": "healthy"}))
	})
	if s.cfg.Metrics.Listen == "" {
		r.GET("/metrics", gin.WrapH(s.metricsHandler()))
	}

	records.NewHandler(s.gate, s.repo, s.logger).Register(r)
	r.GET("/api/me", authgate.Middleware(s.gate), func(c *gin.Context) {
		p := authgate.MustPrincipal(c.Request.Context())
		c.JSON(http.StatusOK, authgate.OK(gin.H{"userId": p.UserID()}))
	})
	return r
}

func (s *Server) metricsHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

// Handler returns the API handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Gate returns the gate guarding the API
func (s *Server) Gate() *authgate.Gate {
	return s.gate
}

// Run serves the API (and the metrics listener when configured) until ctx is
// cancelled, then shuts both down
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	servers := []*http.Server{{Addr: s.cfg.App.Listen, Handler: s.engine}}
	if s.cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metricsHandler())
		servers = append(servers, &http.Server{Addr: s.cfg.Metrics.Listen, Handler: mux})
	}

	for _, srv := range servers {
		g.Go(func() error {
			s.logger.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	s.logger.Info("server stopped")
	return err
}

// Close releases database and cache connections
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
