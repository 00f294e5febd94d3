// Package dashboard serves the interactive season explorer over HTTP: an HTML
// page with the filter controls, PNG charts and JSON series endpoints.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/pable/go-football-eda/internal/loader"
	"github.com/pable/go-football-eda/internal/logger"
	"github.com/pable/go-football-eda/internal/model"
)

//go:embed templates/page.html
var templateFS embed.FS

// Server renders the dashboard for one data source. Every request re-checks
// the source through the loader cache, so edits to the file show up on reload.
type Server struct {
	cache *loader.Cache
	path  string
	page  *template.Template
	mux   *http.ServeMux
}

// New builds a server reading path through cache.
func New(cache *loader.Cache, path string) (*Server, error) {
	page, err := template.New("page.html").Funcs(template.FuncMap{
		"value": formatValue,
	}).ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, err
	}

	s := &Server{cache: cache, path: path, page: page, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /chart/overview.png", s.handleOverviewChart)
	s.mux.HandleFunc("GET /chart/team.png", s.handleTeamChart)
	s.mux.HandleFunc("GET /api/overview", s.handleOverviewAPI)
	s.mux.HandleFunc("GET /api/team", s.handleTeamAPI)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s, nil
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return withRequestLogging(s.mux)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", "addr", addr, "data", s.path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("dashboard shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// load fetches the table, mapping loader failures to a user-facing message.
func (s *Server) load() (*model.Table, string, error) {
	t, err := s.cache.Load(s.path)
	if err != nil {
		logger.Warn("dataset unavailable", "path", s.path, "error", err)
		return nil, loader.Message(err), err
	}
	return t, "", nil
}
