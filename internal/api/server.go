package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/snarg/speak2send/internal/config"
	"github.com/snarg/speak2send/internal/metrics"
	"github.com/snarg/speak2send/internal/ratelimit"
)

type Server struct {
	http *http.Server
	log  zerolog.Logger
}

// NewServer wires the router. burst and storePing may be nil to disable the
// burst throttle and the store health check respectively.
func NewServer(cfg *config.Config, converter Converter, burst *ratelimit.BurstStore, storePing StorePinger, version string, startTime time.Time, log zerolog.Logger) *Server {
	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestID)
	r.Use(Recoverer)
	r.Use(Logger(log))
	r.Use(metrics.InstrumentHandler)

	health := NewHealthHandler(cfg.OpenAIAPIKey != "", storePing, version, startTime)
	r.Get("/healthz", health.ServeHTTP)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	conv := NewConvertHandler(converter, cfg.OpenAIAPIKey != "", log)
	r.Group(func(r chi.Router) {
		r.Use(Throttle(burst))
		conv.Routes(r)
	})

	return &Server{
		http: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}
