package renderer

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// DefaultTileSize is the edge length of a square tile in pixels
const DefaultTileSize = 32

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile     *Tile
	Renderer *TileRenderer
	Output   *Framebuffer // Shared output buffer; tiles never overlap
	TaskID   int

	ctx     context.Context
	results chan<- TileResult
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Stats  RenderStats
	Error  error
}

// WorkerPool is a Backend that renders tiles in parallel
type WorkerPool struct {
	taskQueue  chan TileTask
	workers    []*Worker
	numWorkers int
	tileSize   int
	wg         sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool
}

// Worker handles individual tile rendering tasks
type Worker struct {
	ID        int
	taskQueue chan TileTask
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(numWorkers, tileSize int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}

	wp := &WorkerPool{
		taskQueue:  make(chan TileTask, numWorkers*4),
		numWorkers: numWorkers,
		tileSize:   tileSize,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{ID: i, taskQueue: wp.taskQueue})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.started || wp.stopped {
		return
	}
	wp.started = true

	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers. Later dispatches fail with ErrBackend.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	close(wp.taskQueue) // No more tasks
	wp.mu.Unlock()

	wp.wg.Wait() // Wait for workers to finish
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Name identifies the backend
func (wp *WorkerPool) Name() string {
	return fmt.Sprintf("cpu-pool(%d workers)", wp.numWorkers)
}

// Dispatch renders the packet across the pool. Safe for concurrent use.
func (wp *WorkerPool) Dispatch(ctx context.Context, packet []byte) (*Framebuffer, RenderStats, error) {
	start := time.Now()

	tr, err := compile(packet)
	if err != nil {
		return nil, RenderStats{}, err
	}

	fb, stats, err := wp.renderTiles(ctx, tr)
	if err != nil {
		return nil, RenderStats{}, err
	}

	stats.Duration = time.Since(start)
	return fb, stats, nil
}

// renderTiles splits the image into tiles and waits for every tile result
func (wp *WorkerPool) renderTiles(ctx context.Context, tr *TileRenderer) (*Framebuffer, RenderStats, error) {
	if ctx.Err() != nil {
		return nil, RenderStats{}, cancelled(ctx)
	}

	tiles := NewTileGrid(tr.width, tr.height, wp.tileSize)
	fb := tr.NewFramebuffer()
	results := make(chan TileResult, len(tiles)) // Never blocks a worker

	if err := wp.submit(ctx, tiles, tr, fb, results); err != nil {
		return nil, RenderStats{}, err
	}

	var stats RenderStats
	var firstErr error
	for i := 0; i < len(tiles); i++ {
		select {
		case result := <-results:
			if result.Error != nil && firstErr == nil {
				firstErr = result.Error
			}
			stats.merge(result.Stats)
		case <-ctx.Done():
			return nil, RenderStats{}, cancelled(ctx)
		}
	}
	if firstErr != nil {
		return nil, RenderStats{}, firstErr
	}

	stats.finalize()
	return fb, stats, nil
}

func (wp *WorkerPool) submit(ctx context.Context, tiles []*Tile, tr *TileRenderer, fb *Framebuffer, results chan<- TileResult) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if !wp.started || wp.stopped {
		return fmt.Errorf("%w: worker pool is not running", ErrBackend)
	}

	for i, tile := range tiles {
		task := TileTask{
			Tile:     tile,
			Renderer: tr,
			Output:   fb,
			TaskID:   i,
			ctx:      ctx,
			results:  results,
		}
		select {
		case wp.taskQueue <- task:
		case <-ctx.Done():
			return cancelled(ctx)
		}
	}
	return nil
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		if task.ctx.Err() != nil {
			task.results <- TileResult{TaskID: task.TaskID, Error: cancelled(task.ctx)}
			continue
		}

		stats, err := task.Renderer.RenderTile(task.Tile.Bounds, task.Output)
		task.results <- TileResult{
			TaskID: task.TaskID,
			Stats:  stats,
			Error:  err,
		}
	}
}
