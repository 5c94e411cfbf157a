package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
	"github.com/df07/go-sphere-pathtracer/viewer/display"
)

func main() {
	sceneType := flag.String("scene", "default", "Built-in scene id or path to a .json scene file")
	width := flag.Int("width", 400, "Image width in pixels")
	height := flag.Int("height", 300, "Image height in pixels")
	spp := flag.Int("spp", 1, "Samples per pixel per frame")
	bounces := flag.Int("bounces", 0, "Bounce budget (0 = scene default)")
	workers := flag.Int("workers", 0, "Number of render workers (0 = one per logical core)")
	seed := flag.Uint64("seed", renderer.DefaultRenderConfig().Seed, "Seed of the per-frame seed stream")
	flag.Parse()

	if err := run(*sceneType, renderer.RenderConfig{
		Width:           *width,
		Height:          *height,
		Seed:            *seed,
		MaxBounces:      *bounces,
		SamplesPerPixel: *spp,
	}, *workers); err != nil {
		log.Printf("Viewer error: %v", err)
		os.Exit(1)
	}
}

func run(sceneType string, config renderer.RenderConfig, workers int) error {
	s, err := createScene(sceneType)
	if err != nil {
		return err
	}

	host, err := renderer.DetectHost()
	if err != nil {
		log.Printf("Host detection incomplete: %v", err)
	}
	log.Printf("Host: %s", host)
	if workers <= 0 {
		workers = host.Workers()
	}
	pool := renderer.NewWorkerPool(workers, renderer.DefaultTileSize)
	pool.Start()
	defer pool.Stop()

	windowConfig := display.DefaultWindowConfig()
	windowConfig.Width, windowConfig.Height = config.Width, config.Height
	window, err := display.NewWindow(windowConfig)
	if err != nil {
		return err
	}
	defer window.Destroy()

	blitter, err := display.NewBlitter(config.Width, config.Height)
	if err != nil {
		return err
	}
	defer blitter.Destroy()

	progressive := renderer.DefaultProgressiveConfig()
	progressive.MaxPasses = 0
	pr := renderer.NewProgressiveRenderer(s, config, progressive, pool, renderer.NewDefaultLogger())

	ctx := context.Background()
	for {
		for _, action := range window.PollEvents() {
			if !applyAction(pr, action) {
				return nil
			}
		}

		start := time.Now()
		fb, stats, err := pr.RenderPass(ctx)
		if err != nil {
			return err
		}
		log.Printf("Frame %d rendered in %v (%d exhausted paths)", pr.CurrentPass(), time.Since(start), stats.Exhausted)

		if err := blitter.Upload(fb.Float32s()); err != nil {
			return err
		}
		blitter.Draw(window.GetFramebufferSize())
		window.SwapBuffers()
		window.SetTitle(fmt.Sprintf("%s - pass %d", windowConfig.Title, pr.CurrentPass()))
	}
}

// applyAction moves the camera or quits. Any camera move discards the
// accumulated passes. It returns false when the viewer should exit.
func applyAction(pr *renderer.ProgressiveRenderer, action display.Action) bool {
	switch action {
	case display.ActionMoveForward:
		pr.Scene().Camera.MoveForward()
		pr.Reset()
	case display.ActionMoveBackward:
		pr.Scene().Camera.MoveBackward()
		pr.Reset()
	case display.ActionQuit:
		return false
	}
	return true
}

// createScene builds a built-in scene or loads a .json scene file
func createScene(sceneType string) (*scene.Scene, error) {
	if strings.HasSuffix(sceneType, ".json") {
		return loaders.LoadSceneFile(sceneType)
	}
	return scene.NewBuiltInScene(sceneType)
}
