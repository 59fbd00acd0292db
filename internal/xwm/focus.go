package xwm

import (
	"github.com/BurntSushi/xgb/xproto"
)

// RestackForEnter implements the C6 focus and restacking controller: before
// a pointer/touch enter reaches the X renderer's client, the entered
// surface's window frame is raised above every other managed window's
// frame, and a synchronous round trip forces the restack to take effect
// first, by forcing a synchronous X round-trip before the corresponding
// enter event is sent downstream. An alternative design would accept a
// race and re-sync lazily; this bridge keeps strict synchrony instead,
// since the cost is one round trip per focus change and the alternative
// risks a visible stacking glitch the moment a window is entered.
func (m *Manager) RestackForEnter(entered *Window) {
	if m.XConn == nil {
		return
	}
	for _, w := range m.Windows {
		if w.FrameID == 0 {
			continue
		}
		mode := uint32(xproto.StackModeBelow)
		if w == entered {
			mode = xproto.StackModeAbove
		}
		xproto.ConfigureWindow(m.XConn, w.FrameID, xproto.ConfigWindowStackMode, []uint32{mode})
	}
	// Force the X server to apply the restack before the caller sends the
	// enter event downstream: a round trip on any request guarantees every
	// request queued before it (the ConfigureWindow calls above) has been
	// processed.
	xproto.GetInputFocus(m.XConn).Reply()
}

// FindWindowBySurface resolves a wlproxy surface back to the window that
// owns it, used by input dispatch to translate "this surface was entered"
// into "this window should be restacked".
func (m *Manager) FindWindowBySurface(hostSurfaceID func(*Window) bool) *Window {
	for _, w := range m.Windows {
		if hostSurfaceID(w) {
			return w
		}
	}
	return nil
}

// ApplyActivation delivers WM_TAKE_FOCUS + SetInputFocus when a window's
// toplevel activation flips (or SetInputFocus(None) when nothing is
// active), at the flush step of the reactor's ordering contract.
// internal/bridge calls this once per reactor iteration for whichever
// window has NeedsSetInputFocus set.
func (m *Manager) ApplyActivation(w *Window) {
	if m.XConn == nil {
		return
	}
	if w == nil {
		xproto.SetInputFocus(m.XConn, xproto.InputFocusPointerRoot, xproto.AtomNone, xproto.TimeCurrentTime)
		return
	}
	w.NeedsSetInputFocus = false
	if !w.Activated {
		xproto.SetInputFocus(m.XConn, xproto.InputFocusPointerRoot, xproto.AtomNone, xproto.TimeCurrentTime)
		return
	}

	data32 := [5]uint32{uint32(m.Atoms.WMTakeFocus), uint32(xproto.TimeCurrentTime), 0, 0, 0}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w.ID,
		Type:   m.Atoms.WMProtocols,
		Data:   xproto.ClientMessageDataUnionData32New(data32[:]),
	}
	xproto.SendEvent(m.XConn, false, w.ID, xproto.EventMaskNoEvent, string(ev.Bytes()))
	xproto.SetInputFocus(m.XConn, xproto.InputFocusPointerRoot, w.ID, xproto.TimeCurrentTime)
}
