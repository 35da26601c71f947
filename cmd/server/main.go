package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/janpfeifer/GifCentration/internal/game"
	"github.com/janpfeifer/GifCentration/internal/giphy"
	"github.com/janpfeifer/GifCentration/internal/search"
	"github.com/janpfeifer/GifCentration/internal/server"
	"k8s.io/klog/v2"
)

var (
	flagAddr      = flag.String("addr", "", "Address to listen on (default: auto-port on localhost)")
	flagConfig    = flag.String("config", "", "JSON file with the game configuration (default: built-in values)")
	flagGiphyKey  = flag.String("giphy_key", os.Getenv("GIPHY_API_KEY"), "Giphy API key (default: $GIPHY_API_KEY)")
	flagAPIKey    = flag.String("api_key", os.Getenv("GIFCENTRATION_API_KEY"), "Key required by /api/search in the x-api-key header (default: $GIFCENTRATION_API_KEY)")
	flagCacheSize = flag.Int("cache_size", 256, "Number of searches kept in the cache")
	flagCacheTTL  = flag.Duration("cache_ttl", 10*time.Minute, "How long a search result is cached")
	flagGiphyURL  = flag.String("giphy_url", giphy.DefaultBaseURL, "Base URL of the Giphy API")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if err := run(); err != nil {
		klog.Exitf("%v", err)
	}
}

func run() error {
	cfg := game.DefaultConfig()
	if *flagConfig != "" {
		var err error
		cfg, err = game.LoadConfig(*flagConfig)
		if err != nil {
			return err
		}
	}
	if *flagGiphyKey == "" {
		return fmt.Errorf("no Giphy API key: set -giphy_key or $GIPHY_API_KEY")
	}
	if *flagAPIKey == "" {
		klog.Warningf("No API key set with -api_key or $GIFCENTRATION_API_KEY: /api/search is disabled")
	}

	client := giphy.NewClient(*flagGiphyKey)
	client.BaseURL = *flagGiphyURL
	searcher := search.NewCachedSearcher(client, *flagCacheSize, *flagCacheTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := make(chan *server.ServerState, 1)
	go func() {
		state, ok := <-started
		if ok {
			fmt.Printf("GifCentration server listening on http://%s\n", state.Address)
		}
	}()

	return server.Run(ctx, server.Config{
		Addr:     *flagAddr,
		Game:     cfg,
		Searcher: searcher,
		APIKey:   *flagAPIKey,
	}, started)
}
