package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Request limits
const (
	maxImageSize  = 2000
	maxBounces    = 1024
	maxSamples    = 1024
	maxPasses     = 1000
	defaultWidth  = 400
	defaultHeight = 300
)

// Server handles web requests for the path tracer
type Server struct {
	port     int
	sceneDir string
	backend  renderer.Backend
	host     renderer.HostInfo
	echo     *echo.Echo
}

// NewServer creates a new web server rendering on backend. Scene files are
// discovered in sceneDir.
func NewServer(port int, sceneDir string, backend renderer.Backend, host renderer.HostInfo) *Server {
	s := &Server{
		port:     port,
		sceneDir: sceneDir,
		backend:  backend,
		host:     host,
	}
	s.echo = s.newEcho()
	return s
}

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet},
	}))

	e.GET("/api/health", s.handleHealth)
	e.GET("/api/scenes", s.handleScenes)
	e.GET("/api/scene-config", s.handleSceneConfig)
	e.GET("/api/render", s.handleRenderPNG)
	e.GET("/api/render/raw", s.handleRenderRaw)
	e.GET("/api/render/progressive", s.handleRenderProgressive)
	e.GET("/api/inspect", s.handleInspect)
	return e
}

// Handler exposes the routes for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the web server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s (%s)", addr, s.backend.Name())
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight renders
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene           string `json:"scene"`           // Built-in id or "file:<name>"
	Width           int    `json:"width"`           // Image width
	Height          int    `json:"height"`          // Image height
	Seed            uint64 `json:"seed"`            // Render seed
	MaxBounces      int    `json:"maxBounces"`      // 0 uses the scene's budget
	SamplesPerPixel int    `json:"samplesPerPixel"` // 0 uses the scene's count
	MaxPasses       int    `json:"maxPasses"`       // Progressive passes
}

// RenderConfig converts the request into renderer settings
func (r *RenderRequest) RenderConfig() renderer.RenderConfig {
	return renderer.RenderConfig{
		Width:           r.Width,
		Height:          r.Height,
		Seed:            r.Seed,
		MaxBounces:      r.MaxBounces,
		SamplesPerPixel: r.SamplesPerPixel,
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.backend.Name(),
		"host":    s.host.String(),
	})
}

// handleScenes lists built-in and file scenes
func (s *Server) handleScenes(c echo.Context) error {
	scenes := scene.ListBuiltInScenes()
	if s.sceneDir != "" {
		files, err := loaders.DiscoverSceneFiles(s.sceneDir)
		if err != nil {
			return errorJSON(c, http.StatusInternalServerError, err)
		}
		scenes = append(scenes, files...)
	}
	return c.JSON(http.StatusOK, scenes)
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(c echo.Context) error {
	sceneName := c.QueryParam("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.createScene(sceneName)
	if err != nil {
		return renderError(c, err)
	}

	config := sceneObj.SamplingConfig
	return c.JSON(http.StatusOK, map[string]interface{}{
		"scene":   sceneName,
		"objects": len(sceneObj.Objects),
		"defaults": map[string]interface{}{
			"width":           defaultWidth,
			"height":          defaultHeight,
			"maxBounces":      config.MaxBounces,
			"samplesPerPixel": config.SamplesPerPixel,
		},
		"limits": map[string]interface{}{
			"width":           map[string]int{"min": 1, "max": maxImageSize},
			"height":          map[string]int{"min": 1, "max": maxImageSize},
			"maxBounces":      map[string]int{"min": 1, "max": maxBounces},
			"samplesPerPixel": map[string]int{"min": 1, "max": maxSamples},
			"maxPasses":       map[string]int{"min": 1, "max": maxPasses},
		},
	})
}

// parseRenderRequest parses request parameters
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", defaultWidth, 1, maxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", defaultHeight, 1, maxImageSize); err != nil {
		return nil, err
	}
	if req.MaxBounces, err = parseIntParam(values, "maxBounces", 0, 1, maxBounces); err != nil {
		return nil, err
	}
	if req.SamplesPerPixel, err = parseIntParam(values, "samplesPerPixel", 0, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(values, "maxPasses", 8, 1, maxPasses); err != nil {
		return nil, err
	}
	if value := values.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseUint(value, 0, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
	} else {
		req.Seed = renderer.DefaultRenderConfig().Seed
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.SamplesPerPixel > 64 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene builds a built-in scene or loads a discovered scene file
func (s *Server) createScene(id string) (*scene.Scene, error) {
	if !strings.HasPrefix(id, "file:") {
		return scene.NewBuiltInScene(id)
	}

	if s.sceneDir != "" {
		files, err := loaders.DiscoverSceneFiles(s.sceneDir)
		if err != nil {
			return nil, err
		}
		for _, info := range files {
			if info.ID == id {
				return loaders.LoadSceneFile(info.FilePath)
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", scene.ErrUnknownScene, id)
}

// errorJSON writes {"error": ...} with the given status
func errorJSON(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"error": err.Error()})
}

// renderError maps scene, config and backend errors onto HTTP statuses
func renderError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, scene.ErrUnknownScene):
		return errorJSON(c, http.StatusNotFound, err)
	case errors.Is(err, scene.ErrInvalidObject),
		errors.Is(err, scene.ErrInvalidCamera),
		errors.Is(err, scene.ErrInvalidSampling),
		errors.Is(err, renderer.ErrInvalidConfig),
		errors.Is(err, loaders.ErrSceneFile):
		return errorJSON(c, http.StatusBadRequest, err)
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body
		return nil
	default:
		log.Printf("Render error: %v", err)
		return errorJSON(c, http.StatusInternalServerError, err)
	}
}
