package main

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/layout"
	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		// Built-in scenes
		{"default scene", "default", false},
		{"cornell scene", "cornell", false},
		{"sphere grid scene", "sphere-grid", false},
		{"textures scene", "textures", false},

		// Scene files
		{"bundled scene file", "scenes/lantern.json", false},

		// Invalid scenes
		{"unknown scene", "nonexistent", true},
		{"missing scene file", "scenes/nonexistent.json", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, err := createScene(tt.sceneType)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if scene != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s'", tt.sceneType)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if len(scene.Objects) == 0 {
				t.Errorf("Expected objects in scene '%s'", tt.sceneType)
			}
			if err := scene.Validate(); err != nil {
				t.Errorf("Scene '%s' does not validate: %v", tt.sceneType, err)
			}
		})
	}
}

func TestCreateOutputDir(t *testing.T) {
	tests := []struct {
		name      string
		sceneType string
		expected  string
	}{
		{"built-in scene", "default", filepath.Join("output", "default")},
		{"hyphenated scene", "sphere-grid", filepath.Join("output", "sphere-grid")},
		{"scene file path", "scenes/lantern.json", filepath.Join("output", "lantern")},
		{"nested scene file", "scenes/subdir/my-scene.json", filepath.Join("output", "my-scene")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := createOutputDir(tt.sceneType); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	backend, cleanup, err := createBackend(options{backend: "serial"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	cleanup()
	if backend.Name() != "serial" {
		t.Errorf("Expected serial backend, got %s", backend.Name())
	}

	if _, _, err := createBackend(options{backend: "gpu"}); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		sceneType: "cornell",
		config:    renderer.RenderConfig{Width: 12, Height: 9, Seed: 3, SamplesPerPixel: 1},
		passes:    2,
		workers:   2,
		tileSize:  4,
		backend:   "pool",
		output:    filepath.Join(dir, "out", "cornell.png"),
		dump:      filepath.Join(dir, "cornell.spt"),
		export:    filepath.Join(dir, "cornell.json"),
	}

	if err := run(context.Background(), opts); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	file, err := os.Open(opts.output)
	if err != nil {
		t.Fatalf("Expected output file: %v", err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Invalid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 12 || b.Dy() != 9 {
		t.Errorf("Expected 12x9 image, got %dx%d", b.Dx(), b.Dy())
	}

	packet, err := os.ReadFile(opts.dump)
	if err != nil {
		t.Fatalf("Expected packet dump: %v", err)
	}
	_, params, err := layout.Decode(packet)
	if err != nil {
		t.Fatalf("Dumped packet does not decode: %v", err)
	}
	if params.Width != 12 || params.Height != 9 || params.Seed != 3 {
		t.Errorf("Unexpected packet params: %+v", params)
	}

	exported, err := loaders.LoadSceneFile(opts.export)
	if err != nil {
		t.Fatalf("Exported scene does not load: %v", err)
	}
	original, _ := createScene("cornell")
	if len(exported.Objects) != len(original.Objects) {
		t.Errorf("Expected %d exported objects, got %d", len(original.Objects), len(exported.Objects))
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts options
		want string
	}{
		{"unknown scene", options{sceneType: "nope", backend: "serial"}, "unknown scene"},
		{"bad size", options{sceneType: "default", backend: "serial"}, "invalid render config"},
		{"bad backend", options{sceneType: "default", backend: "quantum"}, "unknown backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.output = filepath.Join(t.TempDir(), "out.png")
			err := run(context.Background(), opts)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
