package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/azybler/chrouter/pkg/api"
	"github.com/azybler/chrouter/pkg/overlay"
	"github.com/azybler/chrouter/pkg/routing"
)

func main() {
	overlayPath := flag.String("overlay", "overlay.bin", "Path to preprocessed overlay binary")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	start := time.Now()

	// Load overlay.
	log.Printf("Loading overlay from %s...", *overlayPath)
	og, err := overlay.ReadBinary(*overlayPath)
	if err != nil {
		log.Fatalf("Failed to load overlay: %v", err)
	}
	g := og.Base()
	log.Printf("Loaded: %d nodes, %d edges (%d shortcuts)",
		g.NumNodes(), g.NumEdges(), og.NumShortcuts())

	// Build routing engine.
	log.Println("Building spatial index...")
	engine := routing.NewEngine(og)

	// Reclaim memory from init-time temporaries. Without this, Go's heap
	// retains peak RSS from index construction (GC doubles heap each cycle:
	// 120→240→480→960→1920 MB). This returns unused pages to the OS.
	runtime.GC()
	debug.FreeOSMemory()

	loadTime := time.Since(start)
	log.Printf("Ready in %s", loadTime.Round(time.Millisecond))

	// Setup HTTP server.
	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	stats := api.StatsResponse{
		NumNodes:     g.NumNodes(),
		NumEdges:     g.NumEdges(),
		NumShortcuts: og.NumShortcuts(),
	}

	handlers := api.NewHandlers(engine, stats)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
