package ui

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
)

// Zoom limits of the editor canvas
const (
	MinZoom = 0.1
	MaxZoom = 20.0
)

// Camera maps canvas units to window pixels.
type Camera struct {
	// Center position in canvas units
	Center geom.Point

	// Pixels per canvas unit
	Zoom float64

	ScreenWidth  int
	ScreenHeight int
}

// NewCamera creates a camera at 1:1 looking at the origin.
func NewCamera(screenWidth, screenHeight int) *Camera {
	return &Camera{
		Zoom:         1,
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
	}
}

// WorldToScreen converts a canvas point to window pixels.
func (c *Camera) WorldToScreen(p geom.Point) geom.Point {
	return geom.Point{
		X: (p.X-c.Center.X)*c.Zoom + float64(c.ScreenWidth)/2,
		Y: (p.Y-c.Center.Y)*c.Zoom + float64(c.ScreenHeight)/2,
	}
}

// ScreenToWorld converts window pixels to a canvas point.
func (c *Camera) ScreenToWorld(x, y float64) geom.Point {
	return geom.Point{
		X: (x-float64(c.ScreenWidth)/2)/c.Zoom + c.Center.X,
		Y: (y-float64(c.ScreenHeight)/2)/c.Zoom + c.Center.Y,
	}
}

// Pan moves the view by a pixel offset.
func (c *Camera) Pan(dx, dy float64) {
	c.Center.X -= dx / c.Zoom
	c.Center.Y -= dy / c.Zoom
}

// ZoomAt scales the view by factor, keeping the canvas point under the
// given pixel fixed.
func (c *Camera) ZoomAt(x, y, factor float64) {
	before := c.ScreenToWorld(x, y)
	c.Zoom = math.Max(MinZoom, math.Min(MaxZoom, c.Zoom*factor))
	after := c.ScreenToWorld(x, y)
	c.Center = c.Center.Add(before.Sub(after))
}

// Fit centres r and zooms so it fills 90% of the smaller screen axis.
// Degenerate rectangles only move the centre.
func (c *Camera) Fit(r geom.Rect) {
	c.Center = r.Center()
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 || c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		return
	}
	zoom := math.Min(float64(c.ScreenWidth)*0.9/w, float64(c.ScreenHeight)*0.9/h)
	c.Zoom = math.Max(MinZoom, math.Min(MaxZoom, zoom))
}

// UpdateScreenSize records the window size.
func (c *Camera) UpdateScreenSize(width, height int) {
	c.ScreenWidth = width
	c.ScreenHeight = height
}

// VisibleBounds is the canvas area currently on screen.
func (c *Camera) VisibleBounds() geom.Rect {
	return geom.Bounds(
		c.ScreenToWorld(0, 0),
		c.ScreenToWorld(float64(c.ScreenWidth), float64(c.ScreenHeight)),
	)
}
