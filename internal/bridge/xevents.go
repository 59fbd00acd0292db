package bridge

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/friedelschoen/xwl-run/internal/wire"
)

// dispatchXEvent type-switches on one event yielded by the X connection and
// routes it to the window manager or the clipboard bridge. b.WM is always
// constructed during Connect before Run starts; b.Clipboard exists only when
// the clipboard manager is enabled, so clipboard events are dropped without it.
func (b *Bridge) dispatchXEvent(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.CreateNotifyEvent:
		b.WM.CreateNotify(&e)
	case xproto.DestroyNotifyEvent:
		b.WM.DestroyNotify(e.Window)
	case xproto.MapRequestEvent:
		b.onMapRequest(e.Window)
	case xproto.ConfigureRequestEvent:
		b.onConfigureRequest(&e)
	case xproto.ConfigureNotifyEvent:
		if e.Window == b.XScreen.Root {
			b.WM.RootConfigureNotify(e.Width, e.Height)
		}
	case xproto.PropertyNotifyEvent:
		if b.Clipboard != nil {
			b.onPropertyNotify(&e)
		}
	case xproto.ClientMessageEvent:
		b.onClientMessage(&e)
	case xfixes.SelectionNotifyEvent:
		if b.Clipboard != nil {
			b.Clipboard.OnSelectionOwnerChange(e.Owner)
		}
	case xproto.SelectionNotifyEvent:
		if b.Clipboard != nil {
			b.onSelectionNotify(&e)
		}
	case xproto.SelectionRequestEvent:
		if b.Clipboard != nil {
			b.Clipboard.OnSelectionRequest(&e)
		}
	}
}

// onMapRequest looks a window up among either the managed or unpaired
// tables (a client can map a window the bridge never saw CreateNotify for,
// if it existed before the bridge connected) before deferring to
// Manager.MapRequest.
func (b *Bridge) onMapRequest(id xproto.Window) {
	w, ok := b.WM.Windows[id]
	if !ok {
		w, ok = b.WM.Unpaired[id]
	}
	if !ok {
		return
	}
	if geo, err := xproto.GetGeometry(b.XConn, xproto.Drawable(w.ID)).Reply(); err == nil {
		w.Depth = geo.Depth
	}
	b.WM.ReadProperties(w)
	b.WM.MapRequest(w, b.allocXID)
}

// allocXID mints a fresh X resource id, passed to Manager.MapRequest as the
// allocator for frame windows.
func (b *Bridge) allocXID() xproto.Window {
	id, err := b.XConn.NewId()
	if err != nil {
		b.Log.Error().Err(err).Msg("x11 resource id allocation failed")
		return 0
	}
	return xproto.Window(id)
}

func (b *Bridge) onConfigureRequest(ev *xproto.ConfigureRequestEvent) {
	w, ok := b.WM.Windows[ev.Window]
	if !ok {
		w, ok = b.WM.Unpaired[ev.Window]
	}
	if !ok {
		return
	}
	if w.Managed {
		b.WM.ConfigureRequestManaged(w, ev)
	} else {
		b.WM.ConfigureRequestUnmanaged(w, ev)
	}
}

// onClientMessage handles WL_SURFACE_ID, the one client message type this
// bridge's own window model needs to see (WM_PROTOCOLS client messages we
// send ourselves, e.g. WM_TAKE_FOCUS, are never echoed back at us).
func (b *Bridge) onClientMessage(ev *xproto.ClientMessageEvent) {
	if ev.Type != b.Atoms.WLSurfaceID {
		return
	}
	data := ev.Data.Data32
	if len(data) == 0 {
		return
	}
	b.WM.PairSurfaceID(ev.Window, wire.ObjectID(data[0]))
}

// onPropertyNotify routes property-delete notifications to the clipboard
// bridge's INCR chunking state machines; the two properties it watches
// (_WL_SELECTION on our own window during outgoing transfers, and the
// requestor's destination property during incoming transfers) are told
// apart by the property atom: _WL_SELECTION goes to the outgoing side,
// any other deleted property to the incoming side.
func (b *Bridge) onPropertyNotify(ev *xproto.PropertyNotifyEvent) {
	if ev.State != xproto.PropertyDelete {
		return
	}
	if ev.Atom == b.Atoms.WLSelection {
		b.Clipboard.OnPropertyDelete()
		return
	}
	b.Clipboard.OnIncrPropertyDelete()
}

func (b *Bridge) onSelectionNotify(ev *xproto.SelectionNotifyEvent) {
	if ev.Selection != b.Atoms.Clipboard {
		return
	}
	if ev.Target == b.Atoms.Targets {
		b.Clipboard.OnSelectionNotifyTargets(0)
		return
	}
	prop, err := xproto.GetProperty(b.XConn, false, ev.Requestor, ev.Property, xproto.AtomAny, 0, 1<<20).Reply()
	if err != nil {
		return
	}
	b.Clipboard.OnSelectionNotifyData(prop.Type, prop.Value)
}
