package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit         bool                   `json:"hit"`
	ObjectIndex int                    `json:"objectIndex"`
	TextureType string                 `json:"textureType,omitempty"`
	Point       [3]float32             `json:"point"`
	Normal      [3]float32             `json:"normal"`
	Distance    float32                `json:"distance"`
	FrontFace   bool                   `json:"frontFace"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

// extractMaterialInfo describes a material and its texture
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := map[string]interface{}{
		"emittance":     mat.Emittance,
		"reflectance":   mat.Reflectance,
		"transmittance": mat.Transmittance,
		"absorption":    max(0, 1-mat.Reflectance-mat.Transmittance),
		"diffuseness":   mat.Diffuseness,
	}

	if mat.Texture.Kind == material.TextureSolidColor {
		c := core.Clamp(mat.Texture.Color, 0, 1)
		properties["color"] = fmt.Sprintf("#%02x%02x%02x", int(c[0]*255), int(c[1]*255), int(c[2]*255))
	}
	return mat.Texture.Kind.String(), properties
}

// extractGeometryInfo describes the sphere itself
func extractGeometryInfo(o *geometry.Object) map[string]interface{} {
	return map[string]interface{}{
		"center": [3]float32(o.Center),
		"radius": o.Radius,
	}
}

// inspectPixel casts the camera ray for a pixel and reports the nearest object
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) InspectResponse {
	ray := integrator.CameraRay(sceneObj.Camera, pixelX, pixelY, width, height)

	hit, ok := sceneObj.NearestHit(ray)
	if !ok {
		return InspectResponse{Hit: false, ObjectIndex: -1}
	}

	obj := &sceneObj.Objects[hit.Index]
	point := ray.At(hit.TOI)
	normal := obj.Normal(point)
	textureType, materialProps := extractMaterialInfo(obj.Material)

	return InspectResponse{
		Hit:         true,
		ObjectIndex: hit.Index,
		TextureType: textureType,
		Point:       [3]float32(point),
		Normal:      [3]float32(normal),
		Distance:    hit.TOI,
		FrontFace:   ray.Direction.Dot(normal) < 0,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": extractGeometryInfo(obj),
		},
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, fmt.Errorf("invalid scene parameters: %w", err))
	}

	pixelX, err := strconv.Atoi(c.QueryParam("x"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, fmt.Errorf("invalid x coordinate"))
	}
	pixelY, err := strconv.Atoi(c.QueryParam("y"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, fmt.Errorf("invalid y coordinate"))
	}
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		return errorJSON(c, http.StatusBadRequest, fmt.Errorf("pixel coordinates out of bounds"))
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(http.StatusOK, inspectPixel(sceneObj, req.Width, req.Height, pixelX, pixelY))
}
