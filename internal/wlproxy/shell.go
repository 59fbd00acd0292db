package wlproxy

import (
	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
)

// ShellSurface mirrors one wl_shell_surface: the legacy shell role, kept
// around only so a client binding wl_shell directly against the X
// renderer's Wayland connection sees it proxied through rather than
// missing. This bridge's own window model never creates one of these for
// the windows it manages (that goes through zxdg_shell_v6 instead).
type ShellSurface struct {
	Host HostResource
}

func NewShellSurface(host HostResource) *ShellSurface { return &ShellSurface{Host: host} }

func (s *ShellSurface) Pong(conn *wire.Conn, serial uint32) {
	var b wire.Builder
	b.PutUint32(serial)
	sendUpstream(conn, s.Host.Upstream, wlproto.ShellSurfacePong, &b)
}

func (s *ShellSurface) Move(conn *wire.Conn, seat wire.ObjectID, serial uint32) {
	var b wire.Builder
	b.PutObject(seat).PutUint32(serial)
	sendUpstream(conn, s.Host.Upstream, wlproto.ShellSurfaceMove, &b)
}

func (s *ShellSurface) Resize(conn *wire.Conn, seat wire.ObjectID, serial, edges uint32) {
	var b wire.Builder
	b.PutObject(seat).PutUint32(serial).PutUint32(edges)
	sendUpstream(conn, s.Host.Upstream, wlproto.ShellSurfaceResize, &b)
}

func (s *ShellSurface) SetToplevel(conn *wire.Conn) {
	var b wire.Builder
	sendUpstream(conn, s.Host.Upstream, wlproto.ShellSurfaceSetToplevel, &b)
}

func (s *ShellSurface) SetTransient(conn *wire.Conn, parent wire.ObjectID, x, y int32, flags uint32) {
	var b wire.Builder
	b.PutObject(parent).PutInt32(x).PutInt32(y).PutUint32(flags)
	sendUpstream(conn, s.Host.Upstream, wlproto.ShellSurfaceSetTransient, &b)
}

// SetFullscreen forwards set_fullscreen with the output hint always null:
// this proxy keeps no downstream-id-to-upstream-id table for wl_output (the
// only table it has maps the other direction), and the hint is advisory
// only, so the host compositor is free to pick an output itself.
func (s *ShellSurface) SetFullscreen(conn *wire.Conn, method, framerate uint32) {
	var b wire.Builder
	b.PutUint32(method).PutUint32(framerate).PutObject(0)
	sendUpstream(conn, s.Host.Upstream, wlproto.ShellSurfaceSetFullscreen, &b)
}

func (s *ShellSurface) SetPopup(conn *wire.Conn, seat wire.ObjectID, serial uint32, parent wire.ObjectID, x, y int32, flags uint32) {
	var b wire.Builder
	b.PutObject(seat).PutUint32(serial).PutObject(parent).PutInt32(x).PutInt32(y).PutUint32(flags)
	sendUpstream(conn, s.Host.Upstream, wlproto.ShellSurfaceSetPopup, &b)
}

// SetMaximized forwards set_maximized, output hint always null; see
// SetFullscreen.
func (s *ShellSurface) SetMaximized(conn *wire.Conn) {
	var b wire.Builder
	b.PutObject(0)
	sendUpstream(conn, s.Host.Upstream, wlproto.ShellSurfaceSetMaximized, &b)
}

func (s *ShellSurface) SetTitle(conn *wire.Conn, title string) {
	var b wire.Builder
	b.PutString(title)
	sendUpstream(conn, s.Host.Upstream, wlproto.ShellSurfaceSetTitle, &b)
}

func (s *ShellSurface) SetClass(conn *wire.Conn, class string) {
	var b wire.Builder
	b.PutString(class)
	sendUpstream(conn, s.Host.Upstream, wlproto.ShellSurfaceSetClass, &b)
}

// Ping forwards the upstream ping event downstream.
func (s *ShellSurface) Ping(conn *wire.Conn, serial uint32) {
	var b wire.Builder
	b.PutUint32(serial)
	sendDownstream(conn, s.Host.Downstream, wlproto.ShellSurfaceEventPing, &b)
}

func (s *ShellSurface) Configure(conn *wire.Conn, edges uint32, width, height int32) {
	var b wire.Builder
	b.PutUint32(edges).PutInt32(width).PutInt32(height)
	sendDownstream(conn, s.Host.Downstream, wlproto.ShellSurfaceEventConfigure, &b)
}

func (s *ShellSurface) PopupDone(conn *wire.Conn) {
	var b wire.Builder
	sendDownstream(conn, s.Host.Downstream, wlproto.ShellSurfaceEventPopupDone, &b)
}

// Shell mirrors wl_shell: its one request wraps an existing surface in a
// ShellSurface role.
type Shell struct {
	Host HostResource
}

func NewShell(host HostResource) *Shell { return &Shell{Host: host} }

// GetShellSurface forwards wl_shell.get_shell_surface, binding the new
// upstream shell_surface to the given upstream wl_surface id.
func (sh *Shell) GetShellSurface(conn *wire.Conn, host HostResource, upstreamSurface wire.ObjectID) *ShellSurface {
	var b wire.Builder
	b.PutObject(host.Upstream).PutObject(upstreamSurface)
	sendUpstream(conn, sh.Host.Upstream, wlproto.ShellGetShellSurface, &b)
	return &ShellSurface{Host: host}
}
