package bridge

import (
	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
	"github.com/friedelschoen/xwl-run/internal/wlproxy"
)

// mirroredGlobal is an upstream interface the X renderer itself needs to
// bind as a Wayland client: the bridge mirrors one downstream global for
// each, capped at the version this bridge's proxy logic was written
// against. zxdg_shell_v6, zaura_shell and wp_viewporter are deliberately
// absent here: Xwayland never speaks those protocols itself, only
// internal/xwm and internal/wlproxy do, directly over the upstream
// connection, so those globals are bound but never re-exposed downstream.
type mirroredGlobal struct {
	DownstreamCap uint32
}

var mirroredGlobals = map[string]mirroredGlobal{
	"wl_compositor":          {3},
	"wl_shm":                 {1},
	"wl_output":              {2},
	"wl_seat":                {5},
	"wl_data_device_manager": {3},
	"wl_shell":               {1},
}

// internalGlobals are bound upstream purely for this bridge's own use and
// never advertised downstream at all.
var internalGlobals = map[string]bool{
	"zxdg_shell_v6":       true,
	"zaura_shell":         true,
	"wp_viewporter":       true,
	"zwp_linux_dmabuf_v1": true,
}

// bindUpstream allocates a new_id and issues wl_registry.bind for name/iface
// at the given version, returning the id the bound object now lives at.
func (b *Bridge) bindUpstream(name uint32, iface string, version uint32) wire.ObjectID {
	id := b.AllocUpstreamID()
	var bb wire.Builder
	bb.PutUint32(name).PutString(iface).PutUint32(version).PutObject(id)
	sendUpstream(b.Upstream, b.RegistryID, wlproto.RegistryBind, &bb)
	return id
}

// OnGlobal handles one wl_registry.global event from the upstream
// connection: bind it if the bridge knows what to do with it, record it for
// removal bookkeeping, and mirror a matching downstream global when the X
// renderer itself needs to see one.
func (b *Bridge) OnGlobal(name uint32, iface string, version uint32) {
	if mg, ok := mirroredGlobals[iface]; ok {
		cap := version
		if cap > mg.DownstreamCap {
			cap = mg.DownstreamCap
		}
		b.hostGlobals[name] = hostGlobal{Interface: iface, Version: cap}

		id := b.bindUpstream(name, iface, cap)
		b.onBoundSingleton(iface, name, id, cap)

		downName := b.nextDownstreamGlobalName
		b.nextDownstreamGlobalName++
		b.downGlobals[name] = downName
		b.downGlobalIface[downName] = iface

		b.advertiseDownstream(downName, iface, cap)
		return
	}

	if internalGlobals[iface] {
		b.hostGlobals[name] = hostGlobal{Interface: iface, Version: version}
		id := b.bindUpstream(name, iface, version)
		switch iface {
		case "zxdg_shell_v6":
			b.XdgShellUpstream = id
		case "zaura_shell":
			b.AuraShellUpstream = id
			b.HasAuraShell = true
		case "wp_viewporter":
			b.ViewporterUpstream = id
			b.HasViewporter = true
		case "zwp_linux_dmabuf_v1":
			b.DmabufUpstream = id
			if b.Cfg.DRMDevice != "" && version >= 2 {
				b.HasDmabuf = true
				b.DmabufVersion = version
				b.HasDrm = true
				downDrmName := b.nextDownstreamGlobalName
				b.nextDownstreamGlobalName++
				b.downGlobals[name] = downDrmName
				b.downGlobalIface[downDrmName] = "wl_drm"
				b.advertiseDownstream(downDrmName, "wl_drm", 2)
			}
		}
	}
}

// onBoundSingleton records the upstream id of a just-bound global. For
// wl_output and wl_seat it also creates the wlproxy object and upstream
// event handler; the other mirrored globals (compositor, shm,
// data_device_manager, shell) need no persistent state beyond the id stored
// here in CompositorUpstream and friends, since every request against them
// is a one-shot object creation driven from the downstream side.
func (b *Bridge) onBoundSingleton(iface string, hostName uint32, id wire.ObjectID, version uint32) {
	switch iface {
	case "wl_compositor":
		b.CompositorUpstream = id
	case "wl_shm":
		b.ShmUpstream = id
	case "wl_data_device_manager":
		b.DataDeviceManagerUpstream = id
	case "wl_shell":
		b.ShellUpstream = id
	case "wl_output":
		out := wlproxy.NewOutput(wlproxy.HostResource{Upstream: id})
		b.Outputs[hostName] = out
		b.RegisterUpstreamObject(id, func(msg wire.Message) { b.dispatchOutputEvent(out, msg) })
		if b.HasAuraShell {
			auraID := b.AllocUpstreamID()
			var ab wire.Builder
			ab.PutObject(auraID).PutObject(id)
			sendUpstream(b.Upstream, b.AuraShellUpstream, wlproto.AuraShellGetAuraOutput, &ab)
			b.RegisterUpstreamObject(auraID, func(msg wire.Message) { b.dispatchAuraOutputEvent(out, msg) })
		}
	case "wl_seat":
		seat := wlproxy.NewSeat(wlproxy.HostResource{Upstream: id})
		b.Seats[hostName] = seat
		b.RegisterUpstreamObject(id, func(msg wire.Message) { b.dispatchSeatEvent(seat, msg) })
	}
}

// OnGlobalRemove handles wl_registry.global_remove: destroy the matching
// downstream global and clear bookkeeping. A remove for an id we never
// tracked is a fatal assertion violation — it means the host and this
// bridge have diverged on which globals exist.
func (b *Bridge) OnGlobalRemove(name uint32) {
	downName, ok := b.downGlobals[name]
	if !ok {
		if _, internal := b.hostGlobals[name]; internal {
			delete(b.hostGlobals, name)
			return
		}
		b.Log.Panic().Uint32("name", name).Msg("registry-remove for unknown host global")
	}
	if b.downstreamRegistry != 0 {
		var rb wire.Builder
		rb.PutUint32(downName)
		b.Downstream.QueueMessage(b.downstreamRegistry, wlproto.RegistryEventGlobalRemove, rb.Bytes(), nil)
	}
	delete(b.downGlobals, name)
	delete(b.downGlobalIface, downName)
	delete(b.hostGlobals, name)
}

// advertiseDownstream emits wl_registry.global for a freshly bound global to
// the X renderer's registry, if it has bound one yet; globals seen during
// the startup roundtrip, before the renderer even connects, are instead
// picked up by the replay loop in onDownstreamGetRegistry.
func (b *Bridge) advertiseDownstream(downName uint32, iface string, version uint32) {
	if b.downstreamRegistry == 0 {
		return
	}
	var gb wire.Builder
	gb.PutUint32(downName).PutString(iface).PutUint32(version)
	b.Downstream.QueueMessage(b.downstreamRegistry, wlproto.RegistryEventGlobal, gb.Bytes(), nil)
}
