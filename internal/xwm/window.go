package xwm

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/rs/zerolog"

	"github.com/friedelschoen/xwl-run/internal/geom"
	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
	"github.com/friedelschoen/xwl-run/internal/wlproxy"
)

// configState is an explicit 3-state encoding of the pending-config state
// machine, replacing an implicit serial-is-zero-means-idle convention with
// a named type.
type configState int

const (
	configIdle configState = iota
	configStaged
	configAwaiting
)

// Config is one staged or awaiting xdg configure: the serial to ack and the
// X-side width/height/state mask it implies.
type Config struct {
	Serial uint32
	Width  int32
	Height int32
	States uint32 // bitmask of stateMaximizedVert|stateMaximizedHorz|stateFullscreen|stateActivated
}

const (
	stateMaximizedVert = 1 << iota
	stateMaximizedHorz
	stateFullscreen
	stateActivated
)

// Window is the C5 per-X-window record.
type Window struct {
	ID       xproto.Window
	FrameID  xproto.Window // 0 until MapRequest creates a frame

	HostSurfaceID wire.ObjectID // downstream surface id, 0 until paired
	Surface       *wlproxy.Surface

	X, Y, Width, Height int32
	BorderWidth         int32
	Depth               byte

	Unpaired bool
	Managed  bool
	Realized bool
	Activated bool
	Decorated bool

	TransientFor xproto.Window

	UserPosition    bool
	ProgramPosition bool

	Name  string
	Clazz string

	Next    configState
	NextCfg Config
	Pending configState
	PendingCfg Config

	XdgSurface  wire.ObjectID
	XdgToplevel wire.ObjectID
	XdgPopup    wire.ObjectID
	AuraSurface wire.ObjectID

	NeedsSetInputFocus bool
}

// IsToplevel reports whether this window is driving an xdg_toplevel rather
// than an xdg_popup; the two are mutually exclusive.
func (w *Window) IsToplevel() bool { return w.XdgToplevel != 0 }

// Manager owns every X window the bridge manages plus the resources needed
// to drive both the X and upstream-Wayland sides of the window model: the X
// connection, the interned atom table, the upstream xdg-shell/aura-shell
// globals, and the per-depth visual/colormap table recovered from
// original_source/ (xwl.c populates this at connect time for frame windows
// of non-default depth, e.g. ARGB clients at depth 32, as the original
// Xwayland window manager does).
type Manager struct {
	Log    zerolog.Logger
	XConn  *xgb.Conn
	Screen *xproto.ScreenInfo
	Atoms  *Atoms
	Scale  geom.Scale

	Upstream      *wire.Conn
	AllocUpstream func() wire.ObjectID

	XdgShell  wire.ObjectID
	AuraShell wire.ObjectID
	HasAura   bool

	Windows  map[xproto.Window]*Window
	Unpaired map[xproto.Window]*Window

	Visuals   map[byte]xproto.Visualid
	Colormaps map[byte]xproto.Colormap

	AppIDOverride   string
	ShowWindowTitle bool
	FrameColorSet   bool
	FrameColorRGB   [3]byte

	// LookupSurface resolves a downstream surface id to its wlproxy
	// Surface; wired by internal/bridge at construction time since the
	// live surface table lives on the Bridge, not here.
	LookupSurface func(id wire.ObjectID) *wlproxy.Surface
}

// NewManager constructs an empty window manager; windows/unpaired start
// empty and are populated by CreateNotify.
func NewManager(log zerolog.Logger, xc *xgb.Conn, screen *xproto.ScreenInfo, atoms *Atoms, scale geom.Scale) *Manager {
	return &Manager{
		Log:      log,
		XConn:    xc,
		Screen:   screen,
		Atoms:    atoms,
		Scale:    scale,
		Windows:  make(map[xproto.Window]*Window),
		Unpaired: make(map[xproto.Window]*Window),
		Visuals:   make(map[byte]xproto.Visualid),
		Colormaps: make(map[byte]xproto.Colormap),
	}
}

// ourRange reports whether an id was allocated by the bridge itself (frame
// windows, the private EWMH check window, the clipboard window); such
// CreateNotify events for our own creations must be ignored. Every one of
// those ids comes from the X connection's own allocator, so they are
// recognized by lying in the resource-id range the server assigned to it.
func (m *Manager) ourRange(id xproto.Window) bool {
	if m.XConn == nil {
		return false
	}
	setup := xproto.Setup(m.XConn)
	return uint32(id)&^setup.ResourceIdMask == setup.ResourceIdBase
}

// CreateNotify handles a window-creation notification.
func (m *Manager) CreateNotify(ev *xproto.CreateNotifyEvent) {
	if m.ourRange(ev.Window) {
		return
	}
	w := &Window{
		ID:       ev.Window,
		X:        int32(ev.X),
		Y:        int32(ev.Y),
		Width:    int32(ev.Width),
		Height:   int32(ev.Height),
		BorderWidth: int32(ev.BorderWidth),
		Unpaired: true,
	}
	m.Unpaired[w.ID] = w
}

// DestroyNotify drops the frame, releases xdg/aura handles, and removes the
// window from whichever list currently holds it.
func (m *Manager) DestroyNotify(id xproto.Window) {
	w, ok := m.Windows[id]
	if ok {
		delete(m.Windows, id)
	} else if w, ok = m.Unpaired[id]; ok {
		delete(m.Unpaired, id)
	} else {
		return
	}
	if w.FrameID != 0 && m.XConn != nil {
		xproto.DestroyWindow(m.XConn, w.FrameID)
		w.FrameID = 0
	}
	m.releaseXdgRole(w)
}

func (m *Manager) releaseXdgRole(w *Window) {
	var b wire.Builder
	if w.XdgToplevel != 0 {
		sendUpstream(m.Upstream, w.XdgToplevel, wlproto.XdgToplevelV6Destroy, &b)
		w.XdgToplevel = 0
	}
	if w.XdgPopup != 0 {
		sendUpstream(m.Upstream, w.XdgPopup, wlproto.XdgPopupV6Destroy, &b)
		w.XdgPopup = 0
	}
	if w.AuraSurface != 0 {
		w.AuraSurface = 0
	}
	if w.XdgSurface != 0 {
		sendUpstream(m.Upstream, w.XdgSurface, wlproto.XdgSurfaceV6Destroy, &b)
		w.XdgSurface = 0
	}
}

func sendUpstream(conn *wire.Conn, id wire.ObjectID, opcode uint16, b *wire.Builder) {
	conn.QueueMessage(id, opcode, b.Bytes(), b.FDs())
}

// PairSurfaceID handles the WL_SURFACE_ID client message: move the window
// into the paired list and run the role-reconciliation update. When the
// window named by the client message cannot be found among unpaired
// windows, nothing is updated rather than falling back to some other
// cursor or default target, since updating an unrelated window would be
// worse than a silent no-op.
func (m *Manager) PairSurfaceID(id xproto.Window, surfaceID wire.ObjectID) {
	w, ok := m.Unpaired[id]
	if !ok {
		return
	}
	delete(m.Unpaired, id)
	w.Unpaired = false
	w.HostSurfaceID = surfaceID
	if m.LookupSurface != nil {
		w.Surface = m.LookupSurface(surfaceID)
	}
	m.Windows[id] = w
	m.XwlWindowUpdate(w)
}
