// Package rest exposes the update record over HTTP.
package rest

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/pires/go-proxyproto"
	"golang.org/x/sync/errgroup"

	"github.com/barokatu/tauri-updater-server/internal/auth"
	"github.com/barokatu/tauri-updater-server/internal/config"
	"github.com/barokatu/tauri-updater-server/internal/updates"
)

// maxBodySize caps the size of update records accepted over the API.
const maxBodySize = 1024 * 1024

// writeGrace is the time left to write a response once the request deadline
// has passed.
const writeGrace = 10 * time.Second

// Server holds the internal state of the REST API server.
type Server struct {
	config  *config.Config
	service *updates.Service
	checker auth.Checker
	ui      *template.Template
}

// NewServer returns a REST API server object.
func NewServer(cfg *config.Config, service *updates.Service, checker auth.Checker) (*Server, error) {
	ui, err := template.ParseFS(staticFiles, "html/index.html")
	if err != nil {
		return nil, err
	}

	// Define the struct.
	server := Server{
		config:  cfg,
		service: service,
		checker: checker,
		ui:      ui,
	}

	return &server, nil
}

// Handler returns the routed, logged and compressed HTTP handler.
func (s *Server) Handler() http.Handler {
	// Setup routing.
	router := http.NewServeMux()

	router.HandleFunc("/", s.apiRoot)
	router.HandleFunc("/healthz", s.apiHealth)
	router.HandleFunc("/updates", s.apiUpdates)
	router.HandleFunc("/api/updates", s.apiUpdates)
	router.HandleFunc("/ui/", s.apiUI)

	return gzhttp.GzipHandler(logRequests(withDeadline(router, s.config.RequestTimeout)))
}

// writeTimeout returns the response deadline, which outlasts every record
// store call made while handling the request.
func writeTimeout(cfg *config.Config) time.Duration {
	return cfg.RequestTimeout + writeGrace
}

// Serve starts the REST API server and stops it when ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	// Setup listener.
	lc := &net.ListenConfig{}

	listener, err := lc.Listen(ctx, "tcp", s.config.Listen)
	if err != nil {
		return err
	}

	if s.config.ProxyProtocol {
		listener = &proxyproto.Listener{
			Listener:          listener,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	// Setup server.
	server := &http.Server{
		Handler: s.Handler(),

		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout(s.config),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.InfoContext(ctx, "Serving update record", "address", listener.Addr().String(), "proxy_protocol", s.config.ProxyProtocol)

		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.InfoContext(ctx, "Shutting down REST API server")

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
