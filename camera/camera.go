// Package camera maps between world and screen space for the viewer.
//
// The camera stores its centre in world units and a zoom in pixels per world
// unit. A wrapping camera measures every offset the short way round the torus,
// so agents near the seam are drawn next to their neighbours on the far edge.
package camera

import "math"

// DefaultMaxZoom is the closest zoom New allows.
const DefaultMaxZoom = 8

// Camera is a pan and zoom view onto a WorldW x WorldH world.
type Camera struct {
	X, Y float32 // centre, world units
	Zoom float32 // pixels per world unit

	ViewportW, ViewportH float32
	WorldW, WorldH       float32
	Wrap                 bool

	// FitZoom shows the whole world. SetZoom clamps to [MinZoom, MaxZoom].
	FitZoom, MinZoom, MaxZoom float32
}

// New returns a camera centred on the world at FitZoom.
func New(viewportW, viewportH, worldW, worldH float32, wrap bool) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		Wrap:      wrap,
		MaxZoom:   DefaultMaxZoom,
	}
	c.fit()
	c.Reset()
	return c
}

// fit sizes FitZoom to the limiting dimension; MinZoom lets the world
// shrink to half the viewport.
func (c *Camera) fit() {
	c.FitZoom = min(c.ViewportW/c.WorldW, c.ViewportH/c.WorldH)
	c.MinZoom = c.FitZoom / 2
}

// WorldToScreen projects a world point into pixels.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	dx, dy := c.offset(wx, wy)
	return c.ViewportW/2 + dx*c.Zoom, c.ViewportH/2 + dy*c.Zoom
}

// ScreenToWorld unprojects a pixel. Wrapping cameras return a point inside
// the world; bounded ones may return points in the margin beyond it.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	if c.Wrap {
		wx, wy = wrap(wx, c.WorldW), wrap(wy, c.WorldH)
	}
	return wx, wy
}

// IsVisible reports whether a circle could overlap the viewport.
// It may return true for circles just outside a corner.
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	dx, dy := c.offset(wx, wy)
	reachX := c.ViewportW/(2*c.Zoom) + radius
	reachY := c.ViewportH/(2*c.Zoom) + radius
	return abs(dx) <= reachX && abs(dy) <= reachY
}

// ScaleLength converts a world length to pixels.
func (c *Camera) ScaleLength(l float32) float32 {
	return l * c.Zoom
}

// Resize adopts a new viewport and re-clamps the zoom to the new fit.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW, c.ViewportH = viewportW, viewportH
	c.fit()
	c.SetZoom(c.Zoom)
}

// Pan shifts the centre by a screen-pixel delta.
func (c *Camera) Pan(dx, dy float32) {
	c.X, c.Y = c.place(c.X+dx/c.Zoom, c.Y+dy/c.Zoom)
}

// Follow centres the camera on a world point, such as the selected agent.
func (c *Camera) Follow(wx, wy float32) {
	c.X, c.Y = c.place(wx, wy)
}

// SetZoom sets the zoom within [MinZoom, MaxZoom].
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy scales the zoom about the viewport centre.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt scales the zoom while keeping the world point under (sx, sy) fixed
// on screen, as for zooming toward the mouse cursor.
func (c *Camera) ZoomAt(factor, sx, sy float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.ZoomBy(factor)
	px, py := c.WorldToScreen(wx, wy)
	c.Pan(px-sx, py-sy)
}

// Reset returns to the world centre at FitZoom.
func (c *Camera) Reset() {
	c.X, c.Y = c.WorldW/2, c.WorldH/2
	c.Zoom = c.FitZoom
}

// offset is the world-space vector from the camera centre to (wx, wy).
func (c *Camera) offset(wx, wy float32) (dx, dy float32) {
	dx, dy = wx-c.X, wy-c.Y
	if c.Wrap {
		dx = shortest(dx, c.WorldW)
		dy = shortest(dy, c.WorldH)
	}
	return dx, dy
}

// place folds a centre back into the world: wrapped on a torus, clamped otherwise.
func (c *Camera) place(wx, wy float32) (float32, float32) {
	if c.Wrap {
		return wrap(wx, c.WorldW), wrap(wy, c.WorldH)
	}
	return clamp(wx, 0, c.WorldW), clamp(wy, 0, c.WorldH)
}

// shortest folds d into [-size/2, size/2].
func shortest(d, size float32) float32 {
	switch {
	case d > size/2:
		return d - size
	case d < -size/2:
		return d + size
	}
	return d
}

func wrap(x, size float32) float32 {
	r := float32(math.Mod(float64(x), float64(size)))
	if r < 0 {
		r += size
	}
	return r
}

func abs(x float32) float32 {
	return float32(math.Abs(float64(x)))
}

func clamp(x, lo, hi float32) float32 {
	return min(max(x, lo), hi)
}
