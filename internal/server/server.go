// Package server serves the game: the go-app frontend, one websocket game
// session per connection, and the search API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/janpfeifer/GifCentration/internal/frontend"
	"github.com/janpfeifer/GifCentration/internal/game"
	"github.com/janpfeifer/GifCentration/internal/search"
	"github.com/janpfeifer/GifCentration/internal/session"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

// DefaultAddr is used when Config.Addr is empty: an automatic port on localhost.
const DefaultAddr = "127.0.0.1:0"

// stylesheets served from web/ and linked by every page.
var stylesheets = []string{"/web/css/main.css"}

// Config of the server.
type Config struct {
	Addr     string
	Game     game.Config
	Searcher search.Searcher

	// APIKey is required in the x-api-key header by /api/search.
	// If empty, every API request is forbidden.
	APIKey string
}

// ServerState holds the live game sessions, keyed by connection id.
type ServerState struct {
	Address string // Set once listening

	cfg         Config
	coordinator *search.Coordinator

	mu       sync.Mutex
	Sessions map[string]*session.Controller
}

// NewServerState creates the state for cfg.
func NewServerState(cfg Config) *ServerState {
	return &ServerState{
		cfg:         cfg,
		coordinator: search.NewCoordinator(cfg.Searcher),
		Sessions:    make(map[string]*session.Controller),
	}
}

// NumSessions is the number of connected players.
func (s *ServerState) NumSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sessions)
}

func (s *ServerState) register(id string, ctrl *session.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sessions[id] = ctrl
	klog.Infof("Session %s: connected (%d sessions)", id, len(s.Sessions))
}

func (s *ServerState) unregister(id string) {
	s.mu.Lock()
	ctrl := s.Sessions[id]
	delete(s.Sessions, id)
	n := len(s.Sessions)
	s.mu.Unlock()
	if ctrl != nil {
		ctrl.Close()
	}
	klog.Infof("Session %s: disconnected (%d sessions)", id, n)
}

// Handler returns the routes of the server.
func (s *ServerState) Handler() http.Handler {
	// Register go-app routes so the server knows how to prerender them
	frontend.InitState()
	app.Route("/", func() app.Composer { return &frontend.Game{} })

	// The web assets and the compiled webassembly
	// are served natively by the go-app framework
	h := &app.Handler{
		Name:        "GifCentration",
		Title:       "GifCentration",
		Description: "A concentration game played with GIFs",
		Version:     game.Version,
		Styles:      stylesheets,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/api/search", s.HandleSearchAPI)
	mux.Handle("/web/", http.StripPrefix("/web/", http.FileServer(http.Dir("web/"))))
	mux.Handle("/", h)
	return mux
}

// Run starts the server and blocks until the context is canceled.
// If started is not nil, it receives the state once the server is listening.
func Run(ctx context.Context, cfg Config, started chan<- *ServerState) error {
	if cfg.Searcher == nil {
		return errors.New("server: no searcher configured")
	}
	if err := cfg.Game.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	serverState := NewServerState(cfg)
	serverState.Address = listener.Addr().String()
	srv := &http.Server{
		Handler: serverState.Handler(),
		// Websocket connections are hijacked and not closed by Shutdown: their
		// request contexts derive from ctx, so that they end with it.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		klog.Infof("Server started on %s", serverState.Address)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.Errorf("Server error: %v", err)
			serveErr <- err
		}
		close(serveErr)
	}()
	if started != nil {
		started <- serverState
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return err
	}

	// Graceful shutdown with 5 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	klog.Infof("Shutting down server...")
	return srv.Shutdown(shutdownCtx)
}
