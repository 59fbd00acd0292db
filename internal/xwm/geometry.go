package xwm

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/friedelschoen/xwl-run/internal/geom"
)

const captionHeight = 32

// MapRequest creates the frame window: the window becomes managed, gets a
// same-depth frame window painted with the screen's black pixel, is
// reparented into it, stacked below, and both windows are mapped. Double
// MapRequest on an already-managed window is a no-op.
func (m *Manager) MapRequest(w *Window, allocID func() xproto.Window) {
	if w.Managed {
		return
	}
	w.Managed = true

	if m.XConn == nil {
		return
	}

	frame := allocID()
	w.FrameID = frame

	depth := w.Depth
	visual := m.Visuals[depth]
	colormap := m.Colormaps[depth]

	valueMask := uint32(xproto.CwBackPixel | xproto.CwBorderPixel | xproto.CwEventMask | xproto.CwColormap)
	values := []uint32{
		uint32(m.Screen.BlackPixel),
		uint32(m.Screen.BlackPixel),
		uint32(xproto.EventMaskSubstructureNotify | xproto.EventMaskSubstructureRedirect),
		uint32(colormap),
	}
	xproto.CreateWindow(m.XConn, depth, frame, m.Screen.Root,
		int16(w.X), int16(w.Y), uint16(w.Width), uint16(w.Height), 0,
		xproto.WindowClassInputOutput, visual, valueMask, values)

	xproto.ReparentWindow(m.XConn, w.ID, frame, 0, 0)
	xproto.ConfigureWindow(m.XConn, frame, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeBelow})

	extents := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	top := uint32(0)
	if w.Decorated {
		top = uint32(captionHeight * m.Scale)
	}
	putU32(extents[8:12], top)
	xproto.ChangeProperty(m.XConn, xproto.PropModeReplace, w.ID, m.Atoms.NetFrameExtents, xproto.AtomCardinal, 32, 4, extents)

	state := []byte{1, 0, 0, 0, 0, 0, 0, 0} // NormalState=1, icon_window=None
	xproto.ChangeProperty(m.XConn, xproto.PropModeReplace, w.ID, m.Atoms.WMState, m.Atoms.WMState, 32, 2, state)

	xproto.MapWindow(m.XConn, w.ID)
	xproto.MapWindow(m.XConn, frame)
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// ClampToScreen restricts a managed window's geometry to the screen.
func (m *Manager) ClampToScreen(w *Window) {
	r := geom.ClampRect(geom.Rect{X: int(w.X), Y: int(w.Y), W: int(w.Width), H: int(w.Height)},
		int(m.Screen.WidthInPixels), int(m.Screen.HeightInPixels))
	w.X, w.Y, w.Width, w.Height = int32(r.X), int32(r.Y), int32(r.W), int32(r.H)
}

// CenterIfUnpositioned centers w on screen when neither user nor program
// position hints were given.
func (m *Manager) CenterIfUnpositioned(w *Window) {
	if w.UserPosition || w.ProgramPosition {
		return
	}
	x, y := geom.Center(int(w.Width), int(w.Height), int(m.Screen.WidthInPixels), int(m.Screen.HeightInPixels))
	w.X, w.Y = int32(x), int32(y)
}

// ConfigureRequestUnmanaged honors an override-redirect client's own
// ConfigureRequest verbatim.
func (m *Manager) ConfigureRequestUnmanaged(w *Window, ev *xproto.ConfigureRequestEvent) {
	mask := ev.ValueMask
	values := configureValues(ev)
	if m.XConn != nil {
		xproto.ConfigureWindow(m.XConn, ev.Window, mask, values)
	}
	if mask&xproto.ConfigWindowX != 0 {
		w.X = int32(ev.X)
	}
	if mask&xproto.ConfigWindowY != 0 {
		w.Y = int32(ev.Y)
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		w.Width = int32(ev.Width)
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		w.Height = int32(ev.Height)
	}
}

// ConfigureRequestManaged handles a managed client's own ConfigureRequest:
// ack outstanding xdg configures (the client's new size wins), apply to the
// record, move the frame, and either resize the inner window or send a
// synthetic unchanged ConfigureNotify.
func (m *Manager) ConfigureRequestManaged(w *Window, ev *xproto.ConfigureRequestEvent) {
	m.DropPendingConfigures(w)

	mask := ev.ValueMask
	if mask&xproto.ConfigWindowX != 0 {
		w.X = int32(ev.X)
		w.UserPosition = true
	}
	if mask&xproto.ConfigWindowY != 0 {
		w.Y = int32(ev.Y)
		w.UserPosition = true
	}
	resized := false
	if mask&xproto.ConfigWindowWidth != 0 {
		w.Width = int32(ev.Width)
		resized = true
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		w.Height = int32(ev.Height)
		resized = true
	}

	m.ClampToScreen(w)
	m.CenterIfUnpositioned(w)

	if m.XConn == nil {
		return
	}
	if w.FrameID != 0 {
		xproto.ConfigureWindow(m.XConn, w.FrameID, xproto.ConfigWindowX|xproto.ConfigWindowY,
			[]uint32{uint32(int32(w.X)), uint32(int32(w.Y))})
	}
	if resized {
		xproto.ConfigureWindow(m.XConn, w.ID, xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
			[]uint32{uint32(w.Width), uint32(w.Height)})
	} else {
		m.sendSyntheticConfigureNotify(w)
	}
}

// sendSyntheticConfigureNotify mirrors xwl.c's xwl_send_configure_notify:
// tell the client its geometry is unchanged without an actual resize.
func (m *Manager) sendSyntheticConfigureNotify(w *Window) {
	if m.XConn == nil {
		return
	}
	ev := xproto.ConfigureNotifyEvent{
		Event:            w.ID,
		Window:           w.ID,
		AboveSibling:     0,
		X:                int16(w.X),
		Y:                int16(w.Y),
		Width:            uint16(w.Width),
		Height:           uint16(w.Height),
		BorderWidth:      uint16(w.BorderWidth),
		OverrideRedirect: false,
	}
	xproto.SendEvent(m.XConn, false, w.ID, xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

// RootConfigureNotify updates the cached screen size and re-centers every
// managed window that has no explicit position.
func (m *Manager) RootConfigureNotify(width, height uint16) {
	m.Screen.WidthInPixels = width
	m.Screen.HeightInPixels = height
	for _, w := range m.Windows {
		if w.Managed && !w.UserPosition && !w.ProgramPosition {
			m.CenterIfUnpositioned(w)
			if m.XConn != nil && w.FrameID != 0 {
				xproto.ConfigureWindow(m.XConn, w.FrameID, xproto.ConfigWindowX|xproto.ConfigWindowY,
					[]uint32{uint32(w.X), uint32(w.Y)})
			}
		}
	}
}

func configureValues(ev *xproto.ConfigureRequestEvent) []uint32 {
	var values []uint32
	mask := ev.ValueMask
	if mask&xproto.ConfigWindowX != 0 {
		values = append(values, uint32(int32(ev.X)))
	}
	if mask&xproto.ConfigWindowY != 0 {
		values = append(values, uint32(int32(ev.Y)))
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		values = append(values, uint32(ev.Width))
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		values = append(values, uint32(ev.Height))
	}
	if mask&xproto.ConfigWindowBorderWidth != 0 {
		values = append(values, uint32(ev.BorderWidth))
	}
	if mask&xproto.ConfigWindowSibling != 0 {
		values = append(values, uint32(ev.Sibling))
	}
	if mask&xproto.ConfigWindowStackMode != 0 {
		values = append(values, uint32(ev.StackMode))
	}
	return values
}
