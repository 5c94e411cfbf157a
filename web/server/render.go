package server

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// PassUpdate is the payload of a "pass" event
type PassUpdate struct {
	PassNumber     int     `json:"passNumber"`
	TotalPasses    int     `json:"totalPasses"`
	ElapsedMs      int64   `json:"elapsedMs"`
	ImageData      string  `json:"imageData"` // Base64 encoded PNG of the running average
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	TotalBounces   int     `json:"totalBounces"`
	Emitted        int     `json:"emitted"`
	Missed         int     `json:"missed"`
	Absorbed       int     `json:"absorbed"`
	Exhausted      int     `json:"exhausted"`
	IsLast         bool    `json:"isLast"`
}

// handleRenderPNG renders the scene once and returns a PNG
func (s *Server) handleRenderPNG(c echo.Context) error {
	fb, stats, err := s.renderOnce(c)
	if err != nil {
		return renderError(c, err)
	}

	data, err := encodePNG(fb.ToRGBA())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}

	setStatsHeaders(c, fb, stats)
	return c.Blob(http.StatusOK, "image/png", data)
}

// handleRenderRaw renders the scene once and returns linear RGB float32
// triples, little endian, row-major from the top row
func (s *Server) handleRenderRaw(c echo.Context) error {
	fb, stats, err := s.renderOnce(c)
	if err != nil {
		return renderError(c, err)
	}

	var buf bytes.Buffer
	buf.Grow(fb.Width * fb.Height * 12)
	if err := binary.Write(&buf, binary.LittleEndian, fb.Float32s()); err != nil {
		return errorJSON(c, http.StatusInternalServerError, err)
	}

	setStatsHeaders(c, fb, stats)
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, buf.Bytes())
}

// renderOnce parses the request and runs a single render on the server's backend
func (s *Server) renderOnce(c echo.Context) (*renderer.Framebuffer, renderer.RenderStats, error) {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return nil, renderer.RenderStats{}, fmt.Errorf("%w: %v", renderer.ErrInvalidConfig, err)
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}

	return renderer.Render(c.Request().Context(), sceneObj, req.RenderConfig(), s.backend)
}

func setStatsHeaders(c echo.Context, fb *renderer.Framebuffer, stats renderer.RenderStats) {
	h := c.Response().Header()
	h.Set("X-Width", strconv.Itoa(fb.Width))
	h.Set("X-Height", strconv.Itoa(fb.Height))
	h.Set("X-Render-Duration", stats.Duration.String())
	h.Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
}

// handleRenderProgressive streams progressive passes as Server-Sent Events.
// Events are written from the handler goroutine only.
func (s *Server) handleRenderProgressive(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err)
	}
	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		return renderError(c, err)
	}
	config := req.RenderConfig()
	if err := validateRender(sceneObj, config); err != nil {
		return renderError(c, err)
	}

	ctx := c.Request().Context()
	s.setSSEHeaders(c)

	consoleChan, webLogger := s.setupConsoleLogging()
	progressive := renderer.DefaultProgressiveConfig()
	progressive.MaxPasses = req.MaxPasses
	pr := renderer.NewProgressiveRenderer(sceneObj, config, progressive, s.backend, webLogger)

	startTime := time.Now()
	passChan, errChan := pr.RenderProgressive(ctx)

	for passChan != nil {
		select {
		case msg := <-consoleChan:
			s.writeConsole(c, msg)

		case result, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			if err := s.writePass(c, result, req, startTime); err != nil {
				// Client went away; the render stops with ctx
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}

	s.drainConsole(c, consoleChan)
	if err := <-errChan; err != nil {
		_ = writeSSEEvent(c, "error", fmt.Sprintf("Rendering failed: %v", err))
		return nil
	}
	_ = writeSSEEvent(c, "complete", "Rendering completed")
	return nil
}

// validateRender runs the same checks Render applies before any pass starts,
// so configuration errors become HTTP statuses instead of stream events
func validateRender(s *scene.Scene, config renderer.RenderConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := config.SamplingConfig(s).Validate(); err != nil {
		return err
	}
	return s.Validate()
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(c echo.Context) {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvent writes one event and flushes it to the client
func writeSSEEvent(c echo.Context, eventType, data string) error {
	if _, err := fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", eventType, data); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}

func (s *Server) writeConsole(c echo.Context, msg ConsoleMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling console message: %v", err)
		return
	}
	_ = writeSSEEvent(c, "console", string(data))
}

// drainConsole flushes messages logged after the last pass
func (s *Server) drainConsole(c echo.Context, consoleChan chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			s.writeConsole(c, msg)
		default:
			return
		}
	}
}

// writePass sends the running average and this pass's stats
func (s *Server) writePass(c echo.Context, result renderer.PassResult, req *RenderRequest, startTime time.Time) error {
	imageData, err := imageToBase64PNG(result.Image.ToRGBA())
	if err != nil {
		log.Printf("Error encoding pass %d: %v", result.PassNumber, err)
		return nil
	}

	stats := result.Stats
	data, err := json.Marshal(PassUpdate{
		PassNumber:     result.PassNumber,
		TotalPasses:    req.MaxPasses,
		ElapsedMs:      time.Since(startTime).Milliseconds(),
		ImageData:      imageData,
		TotalPixels:    stats.TotalPixels,
		TotalSamples:   stats.TotalSamples,
		AverageSamples: stats.AverageSamples,
		TotalBounces:   stats.TotalBounces,
		Emitted:        stats.Emitted,
		Missed:         stats.Missed,
		Absorbed:       stats.Absorbed,
		Exhausted:      stats.Exhausted,
		IsLast:         result.IsLast,
	})
	if err != nil {
		log.Printf("Error marshaling pass update: %v", err)
		return nil
	}
	return writeSSEEvent(c, "pass", string(data))
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
