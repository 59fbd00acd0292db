package xwm

import (
	"github.com/BurntSushi/xgb/xproto"
)

// ReadProperties fetches the ICCCM/Motif properties the window model needs
// before a window is mapped: title, class, transient-for, the
// user/program-specified position bits of WM_NORMAL_HINTS, and whether
// _MOTIF_WM_HINTS asks for no decoration. Unlike atom interning at connect
// time, these are read lazily per window since most windows never change
// them after creation and eagerly tracking every property write would cost
// a PropertyNotify subscription per window for no benefit.
func (m *Manager) ReadProperties(w *Window) {
	if m.XConn == nil {
		return
	}

	if reply, err := xproto.GetProperty(m.XConn, false, w.ID, xproto.AtomWmName, xproto.AtomString, 0, 1<<16).Reply(); err == nil && reply.ValueLen > 0 {
		w.Name = string(reply.Value)
	}
	if reply, err := xproto.GetProperty(m.XConn, false, w.ID, m.Atoms.NetWMName, m.Atoms.UTF8String, 0, 1<<16).Reply(); err == nil && reply.ValueLen > 0 {
		w.Name = string(reply.Value)
	}

	if reply, err := xproto.GetProperty(m.XConn, false, w.ID, xproto.AtomWmClass, xproto.AtomString, 0, 1<<16).Reply(); err == nil && reply.ValueLen > 0 {
		w.Clazz = splitWMClass(reply.Value)
	}

	if reply, err := xproto.GetProperty(m.XConn, false, w.ID, xproto.AtomWmTransientFor, xproto.AtomWindow, 0, 1).Reply(); err == nil && reply.ValueLen > 0 {
		w.TransientFor = xproto.Window(hostU32(reply.Value))
	}

	if reply, err := xproto.GetProperty(m.XConn, false, w.ID, xproto.AtomWmNormalHints, xproto.AtomWmSizeHints, 0, 18).Reply(); err == nil && reply.ValueLen > 0 {
		flags := hostU32(reply.Value)
		const (
			hintUSPosition = 1 << 0
			hintPPosition  = 1 << 2
		)
		w.UserPosition = flags&hintUSPosition != 0
		w.ProgramPosition = flags&hintPPosition != 0
	}

	w.Decorated = true
	if reply, err := xproto.GetProperty(m.XConn, false, w.ID, m.Atoms.MotifWMHints, m.Atoms.MotifWMHints, 0, 5).Reply(); err == nil && reply.ValueLen >= 3 {
		const motifHintDecorations = 1 << 1
		flags := hostU32(reply.Value[0:4])
		decorations := hostU32(reply.Value[8:12])
		if flags&motifHintDecorations != 0 && decorations == 0 {
			w.Decorated = false
		}
	}
}

// splitWMClass takes the second of WM_CLASS's two NUL-terminated strings
// (instance, class), matching the class name a window manager keys
// _NET_WM_WINDOW_TYPE-style heuristics and app-id fallback off of.
func splitWMClass(v []byte) string {
	for i, c := range v {
		if c == 0 {
			rest := v[i+1:]
			for j, c2 := range rest {
				if c2 == 0 {
					return string(rest[:j])
				}
			}
			return string(rest)
		}
	}
	return string(v)
}

func hostU32(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
