package server

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/janpfeifer/GifCentration/internal/game"
)

func TestServerRun(t *testing.T) {
	// Use a background context that we can cancel
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the server in a goroutine
	started := make(chan *ServerState, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, Config{Game: fastConfig(), Searcher: &stubSearcher{count: -1}}, started)
	}()
	s := <-started
	if s.Address == "" {
		t.Fatalf("Server did not report its address")
	}

	resp, err := http.Get("http://" + s.Address + "/")
	if err != nil {
		t.Fatalf("Failed to connect to server: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status OK, got %v", resp.Status)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}

	// The go-app framework generates standard HTML, with our name in the title.
	if body := string(bodyBytes); !strings.Contains(body, "GifCentration") {
		t.Errorf("Expected body to contain 'GifCentration', got body: %s", body)
	}

	// Cancel the context to stop the server
	cancel()

	// Wait for the server to shutdown cleanly
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Server shut down with error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Errorf("Server took too long to shut down")
	}
}

func TestRunInvalidConfig(t *testing.T) {
	t.Run("NoSearcher", func(t *testing.T) {
		if err := Run(context.Background(), Config{Game: game.DefaultConfig()}, nil); err == nil {
			t.Errorf("Expected an error without a searcher")
		}
	})
	t.Run("BadGameConfig", func(t *testing.T) {
		cfg := game.DefaultConfig()
		cfg.MinCards = 3
		if err := Run(context.Background(), Config{Game: cfg, Searcher: &stubSearcher{}}, nil); err == nil {
			t.Errorf("Expected an error for an odd minimum of cards")
		}
	})
}

func TestStylesheetsExist(t *testing.T) {
	for _, href := range stylesheets {
		path := filepath.Join("..", "..", filepath.FromSlash(strings.TrimPrefix(href, "/")))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Stylesheet %s is not in the repository: %v", href, err)
		}
	}
}
