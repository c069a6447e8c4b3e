package app

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/japanese-cards/internal/auth"
	"github.com/heartmarshall/japanese-cards/internal/config"
	"github.com/heartmarshall/japanese-cards/internal/transport/middleware"
	"github.com/heartmarshall/japanese-cards/internal/transport/rest"
)

// NewRouter builds the HTTP handler of the command API. The returned stop
// function ends the rate limiter's background sweep.
func NewRouter(cfg *config.Config, d *Deps, logger *slog.Logger) (http.Handler, func()) {
	health := rest.NewHealthHandler(d.Pool, BuildVersion()).WithProbe("assets", d.Assets.Ping)
	commands := rest.NewCommandHandler(d.Cards.Commands(), logger)
	pages := rest.NewPageHandler(d.Blocks, d.Pages, logger)
	audio := rest.NewAssetHandler(d.Assets, logger)

	var validator *auth.JWTManager
	if cfg.Auth.Enabled() {
		validator = auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	}
	authMW := middleware.Auth(nil)
	if validator != nil {
		authMW = middleware.Auth(validator)
	}

	limiter := middleware.NewRateLimiter(time.Minute)
	limit := limiter.Limit(cfg.Server.CommandsPerMin)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.Handle("GET /commands", middleware.Wrap(commands.List, authMW))
	mux.Handle("POST /commands/{name}", middleware.Wrap(commands.Run, authMW, limit))
	mux.Handle("POST /pages", middleware.Wrap(pages.Import, authMW))
	mux.Handle("GET /pages/{id}", middleware.Wrap(pages.Export, authMW))
	mux.Handle("GET /pages/{id}/entries", middleware.Wrap(pages.Entries, authMW))
	mux.Handle("GET /assets/{key}", middleware.Wrap(audio.Get, authMW))

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.CORS(cfg.CORS),
		middleware.Logger(logger),
	)(mux)

	return handler, limiter.Stop
}

// NewServer creates the HTTP server with the timeouts from cfg.
func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

func serverAddr(cfg config.ServerConfig) string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
}
