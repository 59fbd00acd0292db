package wlproxy

import (
	"github.com/friedelschoen/xwl-run/internal/geom"
	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
)

// Surface is the C3 proxy resource for wl_surface. It is either unpaired (no
// X window claims it yet) or paired with exactly one window; pairing itself
// is tracked by internal/xwm, which is why Surface only exposes the fields
// the window model needs (contents size, realized transition, serial) and
// never references a window directly — that would invert the package
// dependency the rest of the bridge relies on.
type Surface struct {
	Host HostResource

	ContentsWidth, ContentsHeight int
	IsCursor                      bool

	Viewport *HostResource

	// LastEventSerial is bumped by Seat/Pointer/Keyboard/Touch whenever an
	// input event targets this surface; the focus and restacking
	// controller and the override-redirect parent heuristic both read it.
	LastEventSerial uint32

	// Realized becomes true on the first commit with nonzero contents.
	Realized bool

	// onDestroy holds the focus-target destroy listeners registered by
	// Seat/Pointer/Keyboard/Touch, whose focus targets are weak
	// back-references; Destroy invokes and clears them.
	onDestroy []func()

	hasViewporter bool
}

// NewSurface wires a freshly created downstream/upstream wl_surface pair.
func NewSurface(host HostResource, hasViewporter bool) *Surface {
	return &Surface{Host: host, hasViewporter: hasViewporter}
}

// OnDestroy registers a listener invoked exactly once when Destroy runs.
func (s *Surface) OnDestroy(fn func()) {
	s.onDestroy = append(s.onDestroy, fn)
}

// Attach stores the new contents size (zero if the buffer argument was
// nil), scale-converts the hotspot, and either sets a viewport destination
// or falls back to buffer-scale. Returns the new contents size so the
// caller (internal/bridge's dispatch loop) can drive the xdg configure-ack
// walk, which wlproxy itself must not call directly.
func (s *Surface) Attach(conn *wire.Conn, scale geom.Scale, buffer *wire.ObjectID, x, y int32, w, h int) (contentsW, contentsH int) {
	if buffer == nil {
		s.ContentsWidth, s.ContentsHeight = 0, 0
	} else {
		s.ContentsWidth, s.ContentsHeight = w, h
	}

	hx := scale.FloorHost(int(x))
	hy := scale.FloorHost(int(y))

	var b wire.Builder
	if buffer == nil {
		b.PutObject(0)
	} else {
		b.PutObject(*buffer)
	}
	b.PutInt32(hx).PutInt32(hy)
	sendUpstream(conn, s.Host.Upstream, wlproto.SurfaceAttach, &b)

	if s.ContentsWidth > 0 && s.ContentsHeight > 0 {
		if s.hasViewporter && s.Viewport != nil {
			dw, dh := scale.ViewportDestination(s.ContentsWidth, s.ContentsHeight)
			var vb wire.Builder
			vb.PutInt32(int32(dw)).PutInt32(int32(dh))
			sendUpstream(conn, s.Viewport.Upstream, wlproto.ViewportSetDestination, &vb)
		} else {
			var sb wire.Builder
			sb.PutInt32(scale.Round())
			sendUpstream(conn, s.Host.Upstream, wlproto.SurfaceSetBufferScale, &sb)
		}
	}

	return s.ContentsWidth, s.ContentsHeight
}

// Damage forwards an outset-by-one enclosing rect.
func (s *Surface) Damage(conn *wire.Conn, scale geom.Scale, x, y, w, h int) {
	r := scale.DamageOutset(geom.Rect{X: x, Y: y, W: w, H: h})
	var b wire.Builder
	b.PutInt32(int32(r.X)).PutInt32(int32(r.Y)).PutInt32(int32(r.W)).PutInt32(int32(r.H))
	sendUpstream(conn, s.Host.Upstream, wlproto.SurfaceDamage, &b)
}

// Commit applies the "cursor surfaces commit immediately, others only once
// paired with an xdg-surface" rule. allowed is computed by the
// caller (cursor surfaces, or a window whose xdg-surface already exists);
// Commit never itself knows about windows. It returns whether this commit
// is the one that marks the window realized (nonzero contents, not
// previously realized).
func (s *Surface) Commit(conn *wire.Conn, allowed bool) (justRealized bool) {
	if !allowed {
		return false
	}
	var b wire.Builder
	sendUpstream(conn, s.Host.Upstream, wlproto.SurfaceCommit, &b)
	if !s.Realized && s.ContentsWidth > 0 && s.ContentsHeight > 0 {
		s.Realized = true
		return true
	}
	return false
}

// Destroy frees the viewport if one was allocated and runs destroy
// listeners, symmetric with surface creation allocating one.
func (s *Surface) Destroy(conn *wire.Conn) {
	if s.Viewport != nil {
		var b wire.Builder
		sendUpstream(conn, s.Viewport.Upstream, wlproto.ViewportDestroy, &b)
		s.Viewport = nil
	}
	var b wire.Builder
	sendUpstream(conn, s.Host.Upstream, wlproto.SurfaceDestroy, &b)
	for _, fn := range s.onDestroy {
		fn()
	}
	s.onDestroy = nil
}

// Callback is the one-shot wl_callback proxy created by Surface.Frame.
type Callback struct {
	Host HostResource
}

// Frame creates a paired callback and forwards the upstream done(time) to
// the downstream one.
func (s *Surface) Frame(conn *wire.Conn, host HostResource) *Callback {
	var b wire.Builder
	b.PutObject(host.Upstream)
	sendUpstream(conn, s.Host.Upstream, wlproto.SurfaceFrame, &b)
	return &Callback{Host: host}
}

// Done forwards the upstream callback.done event to the downstream client.
func (c *Callback) Done(conn *wire.Conn, time uint32) {
	var b wire.Builder
	b.PutUint32(time)
	sendDownstream(conn, c.Host.Downstream, wlproto.CallbackEventDone, &b)
}
