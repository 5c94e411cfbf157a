package renderer

import (
	"fmt"
	"image"

	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// TileRenderer evaluates the pixel kernel over rectangular regions
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	width      int
	height     int
	seed       uint64
}

// NewTileRenderer creates a new tile renderer for one image and seed
func NewTileRenderer(s *scene.Scene, integratorInst integrator.Integrator, width, height int, seed uint64) *TileRenderer {
	return &TileRenderer{
		scene:      s,
		integrator: integratorInst,
		width:      width,
		height:     height,
		seed:       seed,
	}
}

// NewFramebuffer allocates an output buffer matching the image size
func (tr *TileRenderer) NewFramebuffer() *Framebuffer {
	return NewFramebuffer(tr.width, tr.height)
}

// RenderTileBounds renders pixels within the specified bounds. Each pixel is
// written exactly once, so tiles with disjoint bounds can share fb.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, fb *Framebuffer) RenderStats {
	var stats RenderStats

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			result := tr.integrator.PixelColor(tr.scene, x, y, tr.width, tr.height, tr.seed)
			fb.Set(x, y, result.Color)
			stats.addPixel(result)
		}
	}

	stats.finalize()
	return stats
}

// RenderTile is RenderTileBounds with kernel panics turned into ErrBackend
func (tr *TileRenderer) RenderTile(bounds image.Rectangle, fb *Framebuffer) (stats RenderStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: kernel panic in tile %v: %v", ErrBackend, bounds, r)
		}
	}()
	return tr.RenderTileBounds(bounds, fb), nil
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			// Calculate tile bounds
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}

	return tiles
}
