package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownScene is returned when no built-in scene has the requested id
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to the scene file (file type only)
}

type builtInScene struct {
	info  SceneInfo
	build func() *Scene
}

var builtInScenes = []builtInScene{
	{
		info: SceneInfo{
			ID:          "default",
			Description: "Glass, mirror and brass balls on a wood floor inside a glowing room",
		},
		build: NewDefaultScene,
	},
	{
		info: SceneInfo{
			ID:          "cornell",
			Description: "Cornell box built from huge wall spheres with mirror and glass balls",
		},
		build: NewCornellScene,
	},
	{
		info: SceneInfo{
			ID:          "sphere-grid",
			Description: "10x10 grid of glossy OKLCH-colored balls under a sky dome",
		},
		build: NewSphereGridScene,
	},
	{
		info: SceneInfo{
			ID:          "textures",
			Description: "One ball per procedural texture on a grass field",
		},
		build: NewTextureTestScene,
	},
}

// ListBuiltInScenes returns metadata for all built-in scenes, sorted by id
func ListBuiltInScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtInScenes))
	for _, b := range builtInScenes {
		info := b.info
		info.Name = titleCase(info.ID)
		info.Type = "builtin"
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes
}

// NewBuiltInScene builds a fresh copy of the named built-in scene
func NewBuiltInScene(id string) (*Scene, error) {
	for _, b := range builtInScenes {
		if b.info.ID == id {
			return b.build(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}

// titleCase converts a filename-style string to title case
// e.g., "sphere-grid" -> "Sphere Grid"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
