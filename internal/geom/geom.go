// Package geom implements the scale-aware coordinate math shared by the
// Wayland proxy layer and the X window manager: converting between host
// (Wayland, scaled-down) space and guest (X, scaled-up) space, and the
// rounding rules each direction requires.
package geom

import "math"

// Scale is the bridge-wide scale factor: guest_pixels = host_pixels * Scale.
type Scale float64

// Clamp restricts a requested scale to the documented CLI bound.
func Clamp(s float64) Scale {
	if s < 0.1 {
		s = 0.1
	}
	if s > 10.0 {
		s = 10.0
	}
	return Scale(s)
}

// CeilScale coerces a scale up to the next integer, used when the upstream
// compositor has no viewporter and fractional scale cannot be emulated.
func (s Scale) CeilScale() Scale {
	return Scale(math.Ceil(float64(s)))
}

// ToHost converts a guest (X) coordinate to host (Wayland) space. It is
// never rounded here; callers round it the way their particular request
// requires.
func (s Scale) ToHost(x int) float64 {
	return float64(x) / float64(s)
}

// ToGuest converts a host (Wayland) coordinate to guest (X) space.
func (s Scale) ToGuest(x float64) int {
	return int(x * float64(s))
}

// FloorHost floors a guest coordinate after converting to host space. Used
// for wl_surface.attach's x/y.
func (s Scale) FloorHost(x int) int32 {
	return int32(math.Floor(s.ToHost(x)))
}

// CeilDiv returns ceil(v / s), used for viewport destination sizing.
func (s Scale) CeilDiv(v int) int {
	return int(math.Ceil(float64(v) / float64(s)))
}

// Round rounds a scale to the nearest integer, used for wl_surface.set_buffer_scale
// when viewporter is unavailable.
func (s Scale) Round() int32 {
	return int32(math.Round(float64(s)))
}

// Rect is an axis-aligned integer rectangle in whichever space the caller
// is working in; the two spaces are never allowed to mix within a single
// Rect value. We approximate that discipline with doc comments and narrow
// conversion helpers instead of a generic type, since Go generics over
// arithmetic scale math add more ceremony here than they remove.
type Rect struct {
	X, Y, W, H int
}

// DamageOutset computes the "outset-by-one enclosing rect" used to forward
// wl_surface.damage requests at non-unit scale: the outset absorbs
// filtering artifacts introduced by scaling the damaged region.
func (s Scale) DamageOutset(r Rect) Rect {
	x1 := math.Floor(s.ToHost(r.X - 1))
	y1 := math.Floor(s.ToHost(r.Y - 1))
	x2 := math.Ceil(s.ToHost(r.X + r.W + 1))
	y2 := math.Ceil(s.ToHost(r.Y + r.H + 1))
	return Rect{
		X: int(x1),
		Y: int(y1),
		W: int(x2 - x1),
		H: int(y2 - y1),
	}
}

// ViewportDestination returns the ceil(contents/scale) size used to set a
// wp_viewport's destination when emulating fractional scale.
func (s Scale) ViewportDestination(w, h int) (int, int) {
	return s.CeilDiv(w), s.CeilDiv(h)
}

// ClampRect restricts a rectangle to lie fully within bounds, preserving size
// where possible and shrinking it only if it doesn't fit at all.
func ClampRect(r Rect, boundsW, boundsH int) Rect {
	w := r.W
	h := r.H
	if w > boundsW {
		w = boundsW
	}
	if h > boundsH {
		h = boundsH
	}
	x := r.X
	y := r.Y
	if x+w > boundsW {
		x = boundsW - w
	}
	if x < 0 {
		x = 0
	}
	if y+h > boundsH {
		y = boundsH - h
	}
	if y < 0 {
		y = 0
	}
	return Rect{X: x, Y: y, W: w, H: h}
}

// Center returns the top-left corner that centers a w×h rectangle within a
// boundsW×boundsH screen, used when a managed window has neither user nor
// program position hints.
func Center(w, h, boundsW, boundsH int) (x, y int) {
	return (boundsW - w) / 2, (boundsH - h) / 2
}
