// Package bridge implements the process-wide bridge singleton, the event
// loop and supervisor, and the registry mirror. Proxy resources live in
// internal/wlproxy, the X window manager in internal/xwm, and the
// clipboard bridge in internal/clipboard; all three are driven from here.
package bridge

import (
	"os"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/rs/zerolog"

	"github.com/friedelschoen/xwl-run/internal/clipboard"
	"github.com/friedelschoen/xwl-run/internal/config"
	"github.com/friedelschoen/xwl-run/internal/geom"
	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproxy"
	"github.com/friedelschoen/xwl-run/internal/xwm"
)

// Bridge is the process-wide singleton: it owns the upstream Wayland
// connection, the downstream server endpoint serving the X renderer, the X
// connection, and every collection the rest of the bridge engine operates
// on.
//
// Both Wayland connections are the same internal/wire.Conn type run in
// opposite roles: Upstream is a client connection where every new_id we
// hand out in a request is one we allocate ourselves (upstreamIDs), and
// Downstream is a server connection where new_id arguments arrive already
// allocated by the X renderer's client library and the ids we mint
// ourselves (downstreamServerIDs) are reserved for the rare event that
// needs a server-initiated object. One wire codec and one wlproto table
// set serve both, since the wire format is identical in either role.
type Bridge struct {
	Log zerolog.Logger
	Cfg config.Config

	Scale geom.Scale

	// Upstream: this process as a Wayland client of the host compositor.
	Upstream *wire.Conn
	// DisplayID is always 1 on the upstream connection, matching the
	// implicit wl_display object every Wayland connection starts with.
	DisplayID  wire.ObjectID
	RegistryID wire.ObjectID

	// Downstream: this process as a Wayland server towards the single
	// Wayland client that matters, the X renderer.
	Downstream *wire.Conn

	// nextUpstreamID allocates new_id values for requests we issue on the
	// upstream connection, where we play the client role and so own the
	// id namespace.
	nextUpstreamID wire.ObjectID

	// nextServerID allocates ids in the server-owned range on the
	// downstream connection, used when the bridge itself must originate a
	// downstream object rather than bind one the client asked for.
	nextServerID wire.ObjectID

	Outputs map[uint32]*wlproxy.Output
	Seats   map[uint32]*wlproxy.Seat

	// Bridge-internal upstream singletons: bound once a matching global is
	// seen, never mirrored downstream, and consumed directly by
	// internal/wlproxy/internal/xwm rather than through a client request.
	CompositorUpstream        wire.ObjectID
	ShmUpstream               wire.ObjectID
	DataDeviceManagerUpstream wire.ObjectID
	XdgShellUpstream          wire.ObjectID
	AuraShellUpstream         wire.ObjectID
	ViewporterUpstream        wire.ObjectID
	DmabufUpstream            wire.ObjectID
	ShellUpstream             wire.ObjectID

	HasViewporter bool
	HasAuraShell  bool
	HasDmabuf     bool
	HasDrm        bool

	DmabufVersion uint32

	XConn   *xgb.Conn
	XScreen *xproto.ScreenInfo
	Atoms   *xwm.Atoms

	WM *xwm.Manager

	Clipboard *clipboard.Bridge

	xRenderer *os.Process
	inferior  *os.Process

	// ExitCode is the exited child's status, valid once Run returns nil.
	ExitCode int

	hostGlobals map[uint32]hostGlobal // name -> info, for registry mirror bookkeeping
	downGlobals map[uint32]uint32     // host name -> downstream global name we advertised

	// downGlobalIface records the interface string advertised for each
	// downstream global name; kept separate from hostGlobals.Interface
	// because the synthesized wl_drm global advertises a different
	// interface name than the zwp_linux_dmabuf_v1 host global it rides on.
	downGlobalIface map[uint32]string

	// nextDownstreamGlobalName allocates the small integer names handed
	// out in wl_registry.global events on the downstream connection;
	// distinct from the upstream global name, which the host owns.
	nextDownstreamGlobalName uint32

	// downstreamRegistry is the id the X renderer bound its wl_registry
	// to; bind requests against any other id are a protocol error.
	downstreamRegistry wire.ObjectID

	upstreamHandlers   map[wire.ObjectID]UpstreamHandler
	downstreamHandlers map[wire.ObjectID]DownstreamHandler

	surfacesByDown    map[wire.ObjectID]*wlproxy.Surface
	buffersByDown     map[wire.ObjectID]*wlproxy.Buffer
	shmPoolsByDown    map[wire.ObjectID]*wlproxy.ShmPool
	seatsByDown       map[wire.ObjectID]*wlproxy.Seat
	pointersByDown    map[wire.ObjectID]*wlproxy.Pointer
	keyboardsByDown   map[wire.ObjectID]*wlproxy.Keyboard
	touchesByDown     map[wire.ObjectID]*wlproxy.Touch
	dataSourcesByDown map[wire.ObjectID]*wlproxy.DataSource
	dataOffersByDown  map[wire.ObjectID]*wlproxy.DataOffer
	dataDevicesByDown map[wire.ObjectID]*wlproxy.DataDevice

	shellSurfacesByDown map[wire.ObjectID]*wlproxy.ShellSurface

	// epfd and extraReadable let internal/clipboard register a transient fd
	// (its per-transfer INCR read pipe) with the reactor's epoll set without
	// internal/bridge needing to know anything about what the fd is for.
	epfd          int
	extraReadable map[int]func()
}

type hostGlobal struct {
	Interface string
	Version   uint32
}

// New constructs the Bridge shell; callers must still call Connect and then
// Run to bring it up.
func New(cfg config.Config, log zerolog.Logger) *Bridge {
	scale := geom.Clamp(cfg.Scale)
	b := &Bridge{
		Log:                      log,
		Cfg:                      cfg,
		Scale:                    scale,
		Outputs:                  make(map[uint32]*wlproxy.Output),
		Seats:                    make(map[uint32]*wlproxy.Seat),
		hostGlobals:              make(map[uint32]hostGlobal),
		downGlobals:              make(map[uint32]uint32),
		downGlobalIface:          make(map[uint32]string),
		DisplayID:                1,
		nextUpstreamID:           2,          // 1 is the implicit wl_display object
		nextServerID:             0xff000000, // high range, disjoint from client-allocated ids
		nextDownstreamGlobalName: 1,

		upstreamHandlers:   make(map[wire.ObjectID]UpstreamHandler),
		downstreamHandlers: make(map[wire.ObjectID]DownstreamHandler),

		surfacesByDown:    make(map[wire.ObjectID]*wlproxy.Surface),
		buffersByDown:     make(map[wire.ObjectID]*wlproxy.Buffer),
		shmPoolsByDown:    make(map[wire.ObjectID]*wlproxy.ShmPool),
		seatsByDown:       make(map[wire.ObjectID]*wlproxy.Seat),
		pointersByDown:    make(map[wire.ObjectID]*wlproxy.Pointer),
		keyboardsByDown:   make(map[wire.ObjectID]*wlproxy.Keyboard),
		touchesByDown:     make(map[wire.ObjectID]*wlproxy.Touch),
		dataSourcesByDown: make(map[wire.ObjectID]*wlproxy.DataSource),
		dataOffersByDown:  make(map[wire.ObjectID]*wlproxy.DataOffer),
		dataDevicesByDown: make(map[wire.ObjectID]*wlproxy.DataDevice),

		shellSurfacesByDown: make(map[wire.ObjectID]*wlproxy.ShellSurface),

		extraReadable: make(map[int]func()),
	}
	return b
}

// AllocUpstreamID returns a fresh object id in the namespace the bridge
// owns as a client of the host compositor, for use as the new_id argument
// of an upstream request such as wl_registry.bind or wl_compositor.create_surface.
func (b *Bridge) AllocUpstreamID() wire.ObjectID {
	id := b.nextUpstreamID
	b.nextUpstreamID++
	return id
}

// AllocServerID returns a fresh object id from the server-owned id range,
// used when the bridge itself must originate a downstream object (the one
// case in this proxy design is none today — requests always carry the
// client's own new_id — but the allocator exists for forward compatibility
// with server-initiated objects such as future drag-and-drop icons).
func (b *Bridge) AllocServerID() wire.ObjectID {
	b.nextServerID++
	return b.nextServerID
}
