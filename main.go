package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/layout"
	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	sceneType string
	config    renderer.RenderConfig
	passes    int
	workers   int
	tileSize  int
	backend   string
	output    string
	dump      string
	export    string
}

func main() {
	// Parse command line flags
	defaults := renderer.DefaultRenderConfig()
	opts := options{}
	flag.StringVar(&opts.sceneType, "scene", "default", "Built-in scene id or path to a .json scene file")
	flag.IntVar(&opts.config.Width, "width", 400, "Image width in pixels")
	flag.IntVar(&opts.config.Height, "height", 300, "Image height in pixels")
	flag.Uint64Var(&opts.config.Seed, "seed", defaults.Seed, "Render seed")
	flag.IntVar(&opts.config.MaxBounces, "bounces", 0, "Bounce budget (0 = scene default)")
	flag.IntVar(&opts.config.SamplesPerPixel, "spp", 0, "Samples per pixel per pass (0 = scene default)")
	flag.IntVar(&opts.passes, "passes", 1, "Progressive passes to average")
	flag.IntVar(&opts.workers, "workers", 0, "Number of render workers (0 = one per logical core)")
	flag.IntVar(&opts.tileSize, "tile", renderer.DefaultTileSize, "Tile size in pixels")
	flag.StringVar(&opts.backend, "backend", "pool", "Render backend: 'pool' or 'serial'")
	flag.StringVar(&opts.output, "output", "", "Output PNG path (default output/<scene>/render_<timestamp>.png)")
	flag.StringVar(&opts.dump, "dump", "", "Also write the packed scene to this path")
	flag.StringVar(&opts.export, "export", "", "Also write the scene as a JSON scene file to this path")
	list := flag.Bool("list", false, "List built-in scenes and exit")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Sphere Path Tracer")
		fmt.Println("Usage: pathtracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		printScenes()
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
		return
	}
	if *list {
		printScenes()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func printScenes() {
	fmt.Println("Available scenes:")
	for _, info := range scene.ListBuiltInScenes() {
		fmt.Printf("  %-12s - %s\n", info.ID, info.Description)
	}
	fmt.Println("  <file>.json  - Scene file (see scenes/)")
}

// run renders one image according to opts and saves it
func run(ctx context.Context, opts options) error {
	fmt.Println("Starting Sphere Path Tracer...")

	selectedScene, err := createScene(opts.sceneType)
	if err != nil {
		return err
	}

	backend, cleanup, err := createBackend(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.dump != "" {
		if err := dumpPacket(selectedScene, opts.config, opts.dump); err != nil {
			return err
		}
		fmt.Printf("Packed scene written to %s\n", opts.dump)
	}
	if opts.export != "" {
		data, err := loaders.MarshalScene(selectedScene, filepath.Base(createOutputDir(opts.sceneType)))
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.export, data, 0644); err != nil {
			return err
		}
		fmt.Printf("Scene file written to %s\n", opts.export)
	}

	startTime := time.Now()
	fb, stats, err := renderScene(ctx, selectedScene, opts, backend)
	if err != nil {
		return err
	}
	fmt.Printf("Render completed in %v on %s\n", time.Since(startTime), backend.Name())
	fmt.Printf("Paths: %d (%.1f per pixel), emitted %d, missed %d, absorbed %d, exhausted %d\n",
		stats.TotalSamples, stats.AverageSamples, stats.Emitted, stats.Missed, stats.Absorbed, stats.Exhausted)
	fmt.Printf("Average luminance: %.4f\n", renderer.CalculateAverageLuminance(fb))

	filename := opts.output
	if filename == "" {
		outputDir := createOutputDir(opts.sceneType)
		timestamp := time.Now().Format("20060102_150405")
		filename = filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))
	}
	if err := savePNG(fb, filename); err != nil {
		return err
	}

	fmt.Printf("Render saved as %s\n", filename)
	return nil
}

// createScene builds a built-in scene or loads a .json scene file
func createScene(sceneType string) (*scene.Scene, error) {
	if strings.HasSuffix(sceneType, ".json") {
		return loaders.LoadSceneFile(sceneType)
	}
	return scene.NewBuiltInScene(sceneType)
}

// createOutputDir returns output/<scene name> for a scene id or file path
func createOutputDir(sceneType string) string {
	base := strings.TrimSuffix(filepath.Base(sceneType), filepath.Ext(sceneType))
	if base == "" || base == "." {
		base = "scene"
	}
	return filepath.Join("output", base)
}

// createBackend returns the selected backend and a function that releases it
func createBackend(opts options) (renderer.Backend, func(), error) {
	switch opts.backend {
	case "serial":
		return renderer.NewSerialBackend(), func() {}, nil
	case "pool", "":
		host, err := renderer.DetectHost()
		if err != nil {
			fmt.Printf("Host detection incomplete: %v\n", err)
		}
		fmt.Printf("Host: %s\n", host)

		workers := opts.workers
		if workers <= 0 {
			workers = host.Workers()
		}
		pool := renderer.NewWorkerPool(workers, opts.tileSize)
		pool.Start()
		return pool, pool.Stop, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want 'pool' or 'serial')", opts.backend)
	}
}

// renderScene renders a single image, or averages several progressive passes
func renderScene(ctx context.Context, s *scene.Scene, opts options, backend renderer.Backend) (*renderer.Framebuffer, renderer.RenderStats, error) {
	if opts.passes <= 1 {
		return renderer.Render(ctx, s, opts.config, backend)
	}

	progressive := renderer.DefaultProgressiveConfig()
	progressive.MaxPasses = opts.passes
	pr := renderer.NewProgressiveRenderer(s, opts.config, progressive, backend, renderer.NewDefaultLogger())

	var (
		image *renderer.Framebuffer
		total renderer.RenderStats
	)
	passChan, errChan := pr.RenderProgressive(ctx)
	for result := range passChan {
		image = result.Image
		stats := result.Stats
		total.TotalPixels = stats.TotalPixels
		total.TotalSamples += stats.TotalSamples
		total.TotalBounces += stats.TotalBounces
		total.Emitted += stats.Emitted
		total.Missed += stats.Missed
		total.Absorbed += stats.Absorbed
		total.Exhausted += stats.Exhausted
		total.Duration += stats.Duration
	}
	if err := <-errChan; err != nil {
		return nil, renderer.RenderStats{}, err
	}
	if image == nil {
		return nil, renderer.RenderStats{}, fmt.Errorf("no passes rendered")
	}
	if total.TotalPixels > 0 {
		total.AverageSamples = float64(total.TotalSamples) / float64(total.TotalPixels)
	}
	return image, total, nil
}

// dumpPacket writes the packed scene the backends consume
func dumpPacket(s *scene.Scene, config renderer.RenderConfig, path string) error {
	sampling := config.SamplingConfig(s)
	packet, err := layout.Encode(s, layout.Params{
		Width:           config.Width,
		Height:          config.Height,
		Seed:            config.Seed,
		MaxBounces:      sampling.MaxBounces,
		SamplesPerPixel: sampling.SamplesPerPixel,
	})
	if err != nil {
		return fmt.Errorf("pack scene: %w", err)
	}
	return os.WriteFile(path, packet, 0644)
}

func savePNG(fb *renderer.Framebuffer, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, fb.ToRGBA()); err != nil {
		return fmt.Errorf("error saving PNG: %w", err)
	}
	return file.Close()
}
