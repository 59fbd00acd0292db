package xwm

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
)

// XwlWindowUpdate is the central role-reconciliation transition, kept as
// one function: resolve the parent, acquire an xdg-surface if missing, pick
// a toplevel-or-popup role, and commit the paired surface.
func (m *Manager) XwlWindowUpdate(w *Window) {
	if w.Surface == nil {
		m.releaseXdgRole(w)
		return
	}

	parent := m.chooseParent(w)

	if w.XdgSurface == 0 {
		w.XdgSurface = m.AllocUpstream()
		var b wire.Builder
		b.PutObject(w.XdgSurface).PutObject(w.Surface.Host.Upstream)
		sendUpstream(m.Upstream, m.XdgShell, wlproto.XdgShellV6GetXdgSurface, &b)
	}

	if m.HasAura && w.AuraSurface == 0 {
		w.AuraSurface = m.AllocUpstream()
		var b wire.Builder
		b.PutObject(w.AuraSurface).PutObject(w.Surface.Host.Upstream)
		sendUpstream(m.Upstream, m.AuraShell, wlproto.AuraShellGetAuraSurface, &b)

		frameType := uint32(wlproto.AuraSurfaceFrameShadow)
		if w.Decorated {
			frameType = wlproto.AuraSurfaceFrameNormal
		} else if w.Depth == 32 {
			frameType = wlproto.AuraSurfaceFrameNone
		}
		var fb wire.Builder
		fb.PutUint32(frameType)
		sendUpstream(m.Upstream, w.AuraSurface, wlproto.AuraSurfaceSetFrame, &fb)

		if m.FrameColorSet {
			active := rgbToARGB(m.FrameColorRGB)
			var cb wire.Builder
			cb.PutUint32(active).PutUint32(active)
			sendUpstream(m.Upstream, w.AuraSurface, wlproto.AuraSurfaceSetFrameColors, &cb)
		}
	}

	if w.Managed || parent == nil {
		if w.XdgPopup != 0 {
			var b wire.Builder
			sendUpstream(m.Upstream, w.XdgPopup, wlproto.XdgPopupV6Destroy, &b)
			w.XdgPopup = 0
		}
		if w.XdgToplevel == 0 {
			w.XdgToplevel = m.AllocUpstream()
			var b wire.Builder
			b.PutObject(w.XdgToplevel)
			sendUpstream(m.Upstream, w.XdgSurface, wlproto.XdgSurfaceV6GetToplevel, &b)
		}
		if parent != nil && parent.XdgToplevel != 0 {
			var b wire.Builder
			b.PutObject(parent.XdgToplevel)
			sendUpstream(m.Upstream, w.XdgToplevel, wlproto.XdgToplevelV6SetParent, &b)
		}
		if m.ShowWindowTitle && w.Name != "" {
			var b wire.Builder
			b.PutString(w.Name)
			sendUpstream(m.Upstream, w.XdgToplevel, wlproto.XdgToplevelV6SetTitle, &b)
		}
		appID := m.AppIDOverride
		if appID == "" {
			appID = w.Clazz
		}
		if appID != "" {
			var b wire.Builder
			b.PutString(appID)
			sendUpstream(m.Upstream, w.XdgToplevel, wlproto.XdgToplevelV6SetAppID, &b)
		}
	} else {
		if w.XdgToplevel != 0 {
			var b wire.Builder
			sendUpstream(m.Upstream, w.XdgToplevel, wlproto.XdgToplevelV6Destroy, &b)
			w.XdgToplevel = 0
		}
		if w.XdgPopup == 0 {
			positioner := m.AllocUpstream()
			var pb wire.Builder
			pb.PutObject(positioner)
			sendUpstream(m.Upstream, m.XdgShell, wlproto.XdgShellV6CreatePositioner, &pb)

			offX := int32(m.Scale.ToHost(int(w.X - parent.X)))
			offY := int32(m.Scale.ToHost(int(w.Y - parent.Y)))
			var sizeB wire.Builder
			sizeB.PutInt32(1).PutInt32(1)
			sendUpstream(m.Upstream, positioner, wlproto.PositionerV6SetSize, &sizeB)
			var anchorB wire.Builder
			anchorB.PutInt32(offX).PutInt32(offY).PutInt32(1).PutInt32(1)
			sendUpstream(m.Upstream, positioner, wlproto.PositionerV6SetAnchorRect, &anchorB)
			var anchorEdge wire.Builder
			anchorEdge.PutUint32(wlproto.PositionerV6AnchorTop | wlproto.PositionerV6AnchorLeft)
			sendUpstream(m.Upstream, positioner, wlproto.PositionerV6SetAnchor, &anchorEdge)
			var gravB wire.Builder
			gravB.PutUint32(wlproto.PositionerV6GravityBottom | wlproto.PositionerV6GravityRight)
			sendUpstream(m.Upstream, positioner, wlproto.PositionerV6SetGravity, &gravB)

			w.XdgPopup = m.AllocUpstream()
			var popB wire.Builder
			popB.PutObject(w.XdgPopup)
			if parent != nil {
				popB.PutObject(parent.XdgSurface)
			} else {
				popB.PutObject(0)
			}
			popB.PutObject(positioner)
			sendUpstream(m.Upstream, w.XdgSurface, wlproto.XdgSurfaceV6GetPopup, &popB)
		}

		if parent != nil && m.HasAura && w.AuraSurface != 0 {
			offX := int32(m.Scale.ToHost(int(w.X - parent.X)))
			offY := int32(m.Scale.ToHost(int(w.Y - parent.Y)))
			var b wire.Builder
			b.PutObject(parent.Surface.Host.Upstream).PutInt32(offX).PutInt32(offY)
			sendUpstream(m.Upstream, w.AuraSurface, wlproto.AuraSurfaceSetParent, &b)
		}
	}

	allowCommit := w.Surface.IsCursor || w.XdgSurface != 0
	if w.Surface.Commit(m.Upstream, allowCommit) {
		w.Realized = true
	}
}

// chooseParent selects the window this window should be parented to.
func (m *Manager) chooseParent(w *Window) *Window {
	if w.Managed && w.TransientFor != 0 {
		if p, ok := m.Windows[w.TransientFor]; ok && p.XdgToplevel != 0 {
			return p
		}
		return nil
	}
	if !w.Managed {
		var best *Window
		var bestSerial uint32
		for _, p := range m.Windows {
			if p == w || !p.Realized || p.Surface == nil {
				continue
			}
			if p.Surface.LastEventSerial >= bestSerial {
				bestSerial = p.Surface.LastEventSerial
				best = p
			}
		}
		return best
	}
	return nil
}

func rgbToARGB(rgb [3]byte) uint32 {
	return 0xff000000 | uint32(rgb[0])<<16 | uint32(rgb[1])<<8 | uint32(rgb[2])
}

// OnXdgSurfaceConfigure is the xdg configure loop's entry point: stage the
// serial, and if nothing is already pending, compute and apply the X-side
// values immediately.
func (m *Manager) OnXdgSurfaceConfigure(w *Window, serial uint32) {
	w.NextCfg.Serial = serial
	w.Next = configStaged
	if w.Pending != configAwaiting {
		m.applyNextConfig(w)
	}
}

// OnXdgToplevelConfigure stages the width/height/states the next
// xdg_surface.configure serial will apply; called before that serial
// arrives, per the xdg-shell protocol's configure-then-ack-surface pairing.
func (m *Manager) OnXdgToplevelConfigure(w *Window, width, height int32, states []uint32) {
	var mask uint32
	activated := false
	for _, s := range states {
		switch s {
		case wlproto.XdgToplevelV6StateMaximized:
			mask |= stateMaximizedVert | stateMaximizedHorz
		case wlproto.XdgToplevelV6StateFullscreen:
			mask |= stateFullscreen
		case wlproto.XdgToplevelV6StateActivated:
			mask |= stateActivated
			activated = true
		}
	}
	if width > 0 && height > 0 {
		w.NextCfg.Width = int32(m.Scale.ToGuest(float64(width)))
		w.NextCfg.Height = int32(m.Scale.ToGuest(float64(height)))
	} else {
		w.NextCfg.Width = w.Width
		w.NextCfg.Height = w.Height
	}
	w.NextCfg.States = mask

	if w.Activated != activated {
		w.Activated = activated
		w.NeedsSetInputFocus = true
	}
}

func (m *Manager) applyNextConfig(w *Window) {
	if w.Next != configStaged {
		return
	}
	w.Pending = configAwaiting
	w.PendingCfg = w.NextCfg
	w.Next = configIdle

	cfg := w.PendingCfg
	w.Width = cfg.Width
	w.Height = cfg.Height

	if m.XConn != nil && w.FrameID != 0 {
		mask := uint16(xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
		xproto.ConfigureWindow(m.XConn, w.FrameID, mask, []uint32{uint32(cfg.Width), uint32(cfg.Height)})
		xproto.ConfigureWindow(m.XConn, w.ID, mask, []uint32{uint32(cfg.Width), uint32(cfg.Height)})
	}

	m.setNetWMState(w, cfg.States)
}

// TryAckConfigure is called by internal/bridge after Surface.Attach returns
// the new contents size, and acks the pending configure once the client's
// new size matches what was requested.
func (m *Manager) TryAckConfigure(w *Window, contentsW, contentsH int) {
	if w.Pending != configAwaiting {
		return
	}
	expectedW := int(w.PendingCfg.Width) + int(2*w.BorderWidth)
	expectedH := int(w.PendingCfg.Height) + int(2*w.BorderWidth)
	if contentsW != expectedW || contentsH != expectedH {
		return
	}
	var b wire.Builder
	b.PutUint32(w.PendingCfg.Serial)
	sendUpstream(m.Upstream, w.XdgSurface, wlproto.XdgSurfaceV6AckConfigure, &b)
	w.Pending = configIdle
	if w.Next == configStaged {
		m.applyNextConfig(w)
	}
}

// DropPendingConfigures acks both pending and next and drops them, since a
// conflicting ConfigureRequest means the client's own size now takes
// precedence.
func (m *Manager) DropPendingConfigures(w *Window) {
	if w.Pending == configAwaiting {
		var b wire.Builder
		b.PutUint32(w.PendingCfg.Serial)
		sendUpstream(m.Upstream, w.XdgSurface, wlproto.XdgSurfaceV6AckConfigure, &b)
		w.Pending = configIdle
	}
	if w.Next == configStaged {
		var b wire.Builder
		b.PutUint32(w.NextCfg.Serial)
		sendUpstream(m.Upstream, w.XdgSurface, wlproto.XdgSurfaceV6AckConfigure, &b)
		w.Next = configIdle
	}
}

func (m *Manager) setNetWMState(w *Window, mask uint32) {
	if m.XConn == nil {
		return
	}
	var atoms []uint32
	if mask&stateFullscreen != 0 {
		atoms = append(atoms, uint32(m.Atoms.NetWMStateFullscreen))
	}
	if mask&stateMaximizedVert != 0 {
		atoms = append(atoms, uint32(m.Atoms.NetWMStateMaximizedVert))
	}
	if mask&stateMaximizedHorz != 0 {
		atoms = append(atoms, uint32(m.Atoms.NetWMStateMaximizedHorz))
	}
	data := make([]byte, len(atoms)*4)
	for i, a := range atoms {
		data[i*4] = byte(a)
		data[i*4+1] = byte(a >> 8)
		data[i*4+2] = byte(a >> 16)
		data[i*4+3] = byte(a >> 24)
	}
	xproto.ChangeProperty(m.XConn, xproto.PropModeReplace, w.ID, m.Atoms.NetWMState, xproto.AtomAtom, 32, uint32(len(atoms)), data)
}
