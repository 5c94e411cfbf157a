package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	sceneDir := flag.String("scenes", "scenes", "Directory of JSON scene files")
	workers := flag.Int("workers", 0, "Number of render workers (0 = one per logical core)")
	tileSize := flag.Int("tile", renderer.DefaultTileSize, "Tile size in pixels")
	flag.Parse()

	host, err := renderer.DetectHost()
	if err != nil {
		log.Printf("Host detection incomplete: %v", err)
	}
	log.Printf("Host: %s", host)

	numWorkers := *workers
	if numWorkers <= 0 {
		numWorkers = host.Workers()
	}
	pool := renderer.NewWorkerPool(numWorkers, *tileSize)
	pool.Start()
	defer pool.Stop()

	// Create and start web server
	webServer := server.NewServer(*port, *sceneDir, pool, host)

	log.Printf("Sphere Path Tracer Web Server")
	log.Printf("Visit http://localhost:%d/api/scenes to list scenes", *port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- webServer.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Printf("Error starting server: %v", err)
			pool.Stop()
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Printf("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}
}
