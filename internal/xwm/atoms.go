// Package xwm implements the X window manager half of the bridge: the
// window model and xdg-shell driver (C5), the focus and restacking
// controller (C6), and the atom/protocol constants table (C8). It drives
// the upstream xdg-shell connection directly through internal/wire and
// internal/wlproto, and consumes internal/wlproxy's Surface type to learn
// contents size and realized state.
package xwm

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Atoms holds every X atom interned at connect time. All are
// resolved eagerly with one batch of InternAtom requests followed by one
// round of replies, rather than lazily on first use, so no window-model
// code path needs to handle an unresolved atom.
type Atoms struct {
	WMS0               xproto.Atom
	WMProtocols        xproto.Atom
	WMState            xproto.Atom
	WMDeleteWindow     xproto.Atom
	WMTakeFocus        xproto.Atom
	WLSurfaceID        xproto.Atom
	UTF8String         xproto.Atom
	MotifWMHints       xproto.Atom
	NetFrameExtents    xproto.Atom
	NetSupportingWMCheck xproto.Atom
	NetWMName          xproto.Atom
	NetWMMoveResize    xproto.Atom
	NetWMState         xproto.Atom
	NetWMStateFullscreen xproto.Atom
	NetWMStateMaximizedVert xproto.Atom
	NetWMStateMaximizedHorz xproto.Atom
	Clipboard          xproto.Atom
	ClipboardManager   xproto.Atom
	Targets            xproto.Atom
	Timestamp          xproto.Atom
	Text               xproto.Atom
	Incr               xproto.Atom
	WLSelection        xproto.Atom
}

var atomNames = []string{
	"WM_S0",
	"WM_PROTOCOLS",
	"WM_STATE",
	"WM_DELETE_WINDOW",
	"WM_TAKE_FOCUS",
	"WL_SURFACE_ID",
	"UTF8_STRING",
	"_MOTIF_WM_HINTS",
	"_NET_FRAME_EXTENTS",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_WM_MOVERESIZE",
	"_NET_WM_STATE",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_WM_STATE_MAXIMIZED_VERT",
	"_NET_WM_STATE_MAXIMIZED_HORZ",
	"CLIPBOARD",
	"CLIPBOARD_MANAGER",
	"TARGETS",
	"TIMESTAMP",
	"TEXT",
	"INCR",
	"_WL_SELECTION",
}

// InternAtoms fires one InternAtom request per name without waiting,
// then collects replies in order, avoiding a round trip per atom.
func InternAtoms(xc *xgb.Conn) (*Atoms, error) {
	cookies := make([]xproto.InternAtomCookie, len(atomNames))
	for i, name := range atomNames {
		cookies[i] = xproto.InternAtom(xc, false, uint16(len(name)), name)
	}
	values := make([]xproto.Atom, len(atomNames))
	for i, c := range cookies {
		reply, err := c.Reply()
		if err != nil {
			return nil, err
		}
		values[i] = reply.Atom
	}
	return &Atoms{
		WMS0:               values[0],
		WMProtocols:        values[1],
		WMState:            values[2],
		WMDeleteWindow:     values[3],
		WMTakeFocus:        values[4],
		WLSurfaceID:        values[5],
		UTF8String:         values[6],
		MotifWMHints:       values[7],
		NetFrameExtents:    values[8],
		NetSupportingWMCheck: values[9],
		NetWMName:          values[10],
		NetWMMoveResize:    values[11],
		NetWMState:         values[12],
		NetWMStateFullscreen: values[13],
		NetWMStateMaximizedVert: values[14],
		NetWMStateMaximizedHorz: values[15],
		Clipboard:          values[16],
		ClipboardManager:   values[17],
		Targets:            values[18],
		Timestamp:          values[19],
		Text:               values[20],
		Incr:               values[21],
		WLSelection:        values[22],
	}, nil
}
