package bridge

import (
	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
	"github.com/friedelschoen/xwl-run/internal/wlproxy"
	"github.com/friedelschoen/xwl-run/internal/xwm"
)

// hostNameForDown reverse-looks-up the host-side global name that
// advertised downName, used by onBind to find the upstream singleton a
// freshly bound downstream global should be backed by.
func (b *Bridge) hostNameForDown(downName uint32) (uint32, bool) {
	for hostName, dn := range b.downGlobals {
		if dn == downName {
			return hostName, true
		}
	}
	return 0, false
}

// onBind handles wl_registry.bind: resolve which global the client bound,
// create the matching downstream resource, and install the request handler
// that will field every request against it from here on.
func (b *Bridge) onBind(msg wire.Message) {
	dec := b.decodeOrLog("usun", msg)
	if dec == nil {
		return
	}
	downName := dec[0].(uint32)
	iface := dec[1].(string)
	clientID := dec[3].(wire.ObjectID)

	hostName, ok := b.hostNameForDown(downName)
	if !ok {
		b.Log.Warn().Uint32("name", downName).Msg("bind for unknown global name")
		return
	}

	switch iface {
	case "wl_compositor":
		b.RegisterDownstreamObject(clientID, b.onCompositorRequest)
	case "wl_shm":
		b.RegisterDownstreamObject(clientID, b.onShmRequest)
		// wl_shm.format enum: 0 = argb8888, 1 = xrgb8888, the two formats
		// every compositor must support and the only ones this bridge's
		// shm-backed surfaces ever use.
		for _, format := range []uint32{0, 1} {
			var fb wire.Builder
			fb.PutUint32(format)
			b.Downstream.QueueMessage(clientID, wlproto.ShmEventFormat, fb.Bytes(), nil)
		}
	case "wl_data_device_manager":
		b.RegisterDownstreamObject(clientID, b.onDataDeviceManagerRequest)
	case "wl_shell":
		b.RegisterDownstreamObject(clientID, b.onShellRequest)
	case "wl_output":
		out, ok := b.Outputs[hostName]
		if !ok {
			return
		}
		out.Host.Downstream = clientID
		b.RegisterDownstreamObject(clientID, b.onOutputRequest)
	case "wl_seat":
		seat, ok := b.Seats[hostName]
		if !ok {
			return
		}
		seat.Host.Downstream = clientID
		b.seatsByDown[clientID] = seat
		b.RegisterDownstreamObject(clientID, func(m wire.Message) { b.onSeatRequest(seat, m) })
		var cb wire.Builder
		cb.PutUint32(seat.Capabilities)
		b.Downstream.QueueMessage(clientID, wlproto.SeatEventCapabilities, cb.Bytes(), nil)
	case "wl_drm":
		drm := wlproxy.NewDrm(wlproxy.HostResource{Downstream: clientID, Upstream: b.DmabufUpstream}, b.DmabufUpstream, b.DmabufVersion, b.Cfg.DRMDevice)
		b.RegisterDownstreamObject(clientID, func(m wire.Message) { b.onDrmRequest(drm, m) })
		drm.Advertise(b.Downstream)
	}
}

func (b *Bridge) onCompositorRequest(msg wire.Message) {
	switch msg.Opcode {
	case wlproto.CompositorCreateSurface:
		dec := b.decodeOrLog("n", msg)
		if dec == nil {
			return
		}
		clientID := dec[0].(wire.ObjectID)
		upstreamID := b.AllocUpstreamID()
		var ub wire.Builder
		ub.PutObject(upstreamID)
		sendUpstream(b.Upstream, b.CompositorUpstream, wlproto.CompositorCreateSurface, &ub)

		surf := wlproxy.NewSurface(wlproxy.HostResource{Downstream: clientID, Upstream: upstreamID}, b.HasViewporter)
		if b.HasViewporter {
			viewportID := b.AllocUpstreamID()
			var vb wire.Builder
			vb.PutObject(viewportID).PutObject(upstreamID)
			sendUpstream(b.Upstream, b.ViewporterUpstream, wlproto.ViewporterGetViewport, &vb)
			surf.Viewport = &wlproxy.HostResource{Upstream: viewportID}
		}
		b.surfacesByDown[clientID] = surf
		b.RegisterDownstreamObject(clientID, func(m wire.Message) { b.onSurfaceRequest(surf, m) })
	case wlproto.CompositorCreateRegion:
		// Regions (opaque/input hints) have no X11-side effect this bridge
		// acts on; the id is still minted so set_opaque_region/
		// set_input_region callers referencing it don't see a protocol
		// error, but no request against it needs handling.
		dec := b.decodeOrLog("n", msg)
		_ = dec
	}
}

func (b *Bridge) onShmRequest(msg wire.Message) {
	if msg.Opcode != wlproto.ShmCreatePool {
		return
	}
	dec := b.decodeOrLog("nhi", msg)
	if dec == nil {
		return
	}
	clientID := dec[0].(wire.ObjectID)
	fd := dec[1].(int)
	size := dec[2].(int32)

	pool := wlproxy.CreateShmPool(b.Upstream, b.ShmUpstream, wlproxy.HostResource{Downstream: clientID}, fd, size)
	b.shmPoolsByDown[clientID] = pool
	b.RegisterDownstreamObject(clientID, func(m wire.Message) { b.onShmPoolRequest(pool, clientID, m) })
}

func (b *Bridge) onShmPoolRequest(pool *wlproxy.ShmPool, poolID wire.ObjectID, msg wire.Message) {
	switch msg.Opcode {
	case wlproto.ShmPoolCreateBuffer:
		dec := b.decodeOrLog("niiiiu", msg)
		if dec == nil {
			return
		}
		clientID := dec[0].(wire.ObjectID)
		offset, w, h, stride, format := dec[1].(int32), dec[2].(int32), dec[3].(int32), dec[4].(int32), dec[5].(uint32)
		buf := pool.CreateBuffer(b.Upstream, wlproxy.HostResource{Downstream: clientID}, offset, w, h, stride, int32(format))
		b.buffersByDown[clientID] = buf
		b.RegisterDownstreamObject(clientID, func(m wire.Message) { b.onBufferRequest(buf, clientID, m) })
	case wlproto.ShmPoolResize:
		dec := b.decodeOrLog("i", msg)
		if dec == nil {
			return
		}
		pool.Resize(b.Upstream, dec[0].(int32))
	case wlproto.ShmPoolDestroy:
		if b.decodeOrLog("", msg) == nil {
			return
		}
		pool.Destroy(b.Upstream)
		b.UnregisterDownstreamObject(poolID)
		delete(b.shmPoolsByDown, poolID)
	}
}

func (b *Bridge) onBufferRequest(buf *wlproxy.Buffer, bufID wire.ObjectID, msg wire.Message) {
	if msg.Opcode != wlproto.BufferDestroy {
		return
	}
	if b.decodeOrLog("", msg) == nil {
		return
	}
	buf.Destroy(b.Upstream)
	b.UnregisterDownstreamObject(bufID)
	delete(b.buffersByDown, bufID)
}

func (b *Bridge) onSeatRequest(seat *wlproxy.Seat, msg wire.Message) {
	switch msg.Opcode {
	case wlproto.SeatGetPointer:
		dec := b.decodeOrLog("n", msg)
		if dec == nil {
			return
		}
		clientID := dec[0].(wire.ObjectID)
		p := wlproxy.NewPointer(seat, wlproxy.HostResource{Downstream: clientID})
		seat.Pointer = p
		b.pointersByDown[clientID] = p
		b.RegisterDownstreamObject(clientID, func(m wire.Message) { b.onPointerRequest(p, clientID, m) })
	case wlproto.SeatGetKeyboard:
		dec := b.decodeOrLog("n", msg)
		if dec == nil {
			return
		}
		clientID := dec[0].(wire.ObjectID)
		k := wlproxy.NewKeyboard(seat, wlproxy.HostResource{Downstream: clientID})
		seat.Keyboard = k
		b.keyboardsByDown[clientID] = k
		b.RegisterDownstreamObject(clientID, func(m wire.Message) { b.onKeyboardRequest(k, clientID, m) })
		var rb wire.Builder
		rb.PutInt32(0).PutInt32(0)
		sendDownstream(b.Downstream, clientID, wlproto.KeyboardEventRepeatInfo, &rb)
	case wlproto.SeatGetTouch:
		dec := b.decodeOrLog("n", msg)
		if dec == nil {
			return
		}
		clientID := dec[0].(wire.ObjectID)
		t := wlproxy.NewTouch(seat, wlproxy.HostResource{Downstream: clientID})
		seat.Touch = t
		b.touchesByDown[clientID] = t
		b.RegisterDownstreamObject(clientID, func(m wire.Message) { b.onTouchRequest(t, clientID, m) })
	case wlproto.SeatRelease:
		b.decodeOrLog("", msg)
	}
}

// onPointerRequest handles release and set_cursor. set_cursor is forwarded
// upstream verbatim after marking the target surface as a cursor surface,
// whose commits bypass the xdg-surface pairing gate that ordinary content
// surfaces wait on.
func (b *Bridge) onPointerRequest(p *wlproxy.Pointer, pointerID wire.ObjectID, msg wire.Message) {
	switch msg.Opcode {
	case wlproto.PointerSetCursor:
		dec := b.decodeOrLog("u?oii", msg)
		if dec == nil {
			return
		}
		serial, surfID, hx, hy := dec[0].(uint32), dec[1].(wire.ObjectID), dec[2].(int32), dec[3].(int32)
		var ub wire.Builder
		ub.PutUint32(serial)
		if surfID != 0 {
			if surf, ok := b.surfacesByDown[surfID]; ok {
				surf.IsCursor = true
				ub.PutObject(surf.Host.Upstream)
			} else {
				ub.PutObject(0)
			}
		} else {
			ub.PutObject(0)
		}
		ub.PutInt32(hx).PutInt32(hy)
		sendUpstream(b.Upstream, p.Host.Upstream, wlproto.PointerSetCursor, &ub)
	case wlproto.PointerRelease:
		if b.decodeOrLog("", msg) == nil {
			return
		}
		p.Release(b.Upstream)
		b.UnregisterDownstreamObject(pointerID)
		delete(b.pointersByDown, pointerID)
	}
}

func (b *Bridge) onKeyboardRequest(k *wlproxy.Keyboard, keyboardID wire.ObjectID, msg wire.Message) {
	if msg.Opcode != wlproto.KeyboardRelease {
		return
	}
	if b.decodeOrLog("", msg) == nil {
		return
	}
	k.Release(b.Upstream)
	b.UnregisterDownstreamObject(keyboardID)
	delete(b.keyboardsByDown, keyboardID)
}

func (b *Bridge) onTouchRequest(t *wlproxy.Touch, touchID wire.ObjectID, msg wire.Message) {
	if msg.Opcode != wlproto.TouchRelease {
		return
	}
	if b.decodeOrLog("", msg) == nil {
		return
	}
	t.Release(b.Upstream)
	b.UnregisterDownstreamObject(touchID)
	delete(b.touchesByDown, touchID)
}

func (b *Bridge) onOutputRequest(msg wire.Message) {
	if msg.Opcode != wlproto.OutputRelease {
		return
	}
	b.decodeOrLog("", msg)
}

// onSurfaceRequest handles the wl_surface request set a rootless X renderer
// actually exercises. set_opaque_region, set_input_region and
// set_buffer_transform have no effect this bridge acts on and are decoded
// only to keep the wire parser in sync.
func (b *Bridge) onSurfaceRequest(surf *wlproxy.Surface, msg wire.Message) {
	switch msg.Opcode {
	case wlproto.SurfaceAttach:
		dec := b.decodeOrLog("?oii", msg)
		if dec == nil {
			return
		}
		bufID, x, y := dec[0].(wire.ObjectID), dec[1].(int32), dec[2].(int32)
		var bufferArg *wire.ObjectID
		var w, h int
		if bufID != 0 {
			if buf, ok := b.buffersByDown[bufID]; ok {
				id := buf.Host.Upstream
				bufferArg = &id
				w, h = buf.Width, buf.Height
			}
		}
		cw, ch := surf.Attach(b.Upstream, b.Scale, bufferArg, x, y, w, h)
		if win := b.WM.FindWindowBySurface(func(xw *xwm.Window) bool { return xw.Surface == surf }); win != nil {
			b.WM.TryAckConfigure(win, cw, ch)
		}
	case wlproto.SurfaceDamage:
		dec := b.decodeOrLog("iiii", msg)
		if dec == nil {
			return
		}
		surf.Damage(b.Upstream, b.Scale, int(dec[0].(int32)), int(dec[1].(int32)), int(dec[2].(int32)), int(dec[3].(int32)))
	case wlproto.SurfaceDamageBuffer:
		dec := b.decodeOrLog("iiii", msg)
		if dec == nil {
			return
		}
		surf.Damage(b.Upstream, b.Scale, int(dec[0].(int32)), int(dec[1].(int32)), int(dec[2].(int32)), int(dec[3].(int32)))
	case wlproto.SurfaceFrame:
		dec := b.decodeOrLog("n", msg)
		if dec == nil {
			return
		}
		clientID := dec[0].(wire.ObjectID)
		upstreamID := b.AllocUpstreamID()
		cb := surf.Frame(b.Upstream, wlproxy.HostResource{Downstream: clientID, Upstream: upstreamID})
		b.RegisterUpstreamObject(cb.Host.Upstream, func(m wire.Message) {
			d := b.decodeOrLog("u", m)
			if d == nil {
				return
			}
			cb.Done(b.Downstream, d[0].(uint32))
			b.UnregisterUpstreamObject(cb.Host.Upstream)
		})
	case wlproto.SurfaceCommit:
		if b.decodeOrLog("", msg) == nil {
			return
		}
		b.onSurfaceCommit(surf)
	case wlproto.SurfaceDestroy:
		if b.decodeOrLog("", msg) == nil {
			return
		}
		down := surf.Host.Downstream
		surf.Destroy(b.Upstream)
		b.UnregisterDownstreamObject(down)
		delete(b.surfacesByDown, down)
	case wlproto.SurfaceSetOpaqueRegion, wlproto.SurfaceSetInputRegion:
		b.decodeOrLog("?o", msg)
	case wlproto.SurfaceSetBufferTransform:
		b.decodeOrLog("i", msg)
	case wlproto.SurfaceSetBufferScale:
		b.decodeOrLog("i", msg)
	case wlproto.SurfaceOffset:
		b.decodeOrLog("ii", msg)
	}
}

// onSurfaceCommit applies a commit against whatever window (if any) this
// surface is currently paired to: cursor surfaces always commit, ordinary
// content surfaces only once an xdg-surface exists, and a commit that
// realizes the window for the first time or matches the pending configure
// acks it.
func (b *Bridge) onSurfaceCommit(surf *wlproxy.Surface) {
	w := b.WM.FindWindowBySurface(func(win *xwm.Window) bool { return win.Surface == surf })
	allowCommit := surf.IsCursor || (w != nil && w.XdgSurface != 0)
	if surf.Commit(b.Upstream, allowCommit) && w != nil {
		b.WM.XwlWindowUpdate(w)
	}
	if w != nil {
		b.WM.TryAckConfigure(w, surf.ContentsWidth, surf.ContentsHeight)
	}
}

func (b *Bridge) onDataDeviceManagerRequest(msg wire.Message) {
	switch msg.Opcode {
	case wlproto.DataDeviceManagerCreateDataSource:
		dec := b.decodeOrLog("n", msg)
		if dec == nil {
			return
		}
		clientID := dec[0].(wire.ObjectID)
		upstreamID := b.AllocUpstreamID()
		var ub wire.Builder
		ub.PutObject(upstreamID)
		sendUpstream(b.Upstream, b.DataDeviceManagerUpstream, wlproto.DataDeviceManagerCreateDataSource, &ub)
		src := wlproxy.NewDataSource(wlproxy.HostResource{Downstream: clientID, Upstream: upstreamID})
		b.dataSourcesByDown[clientID] = src
		b.RegisterDownstreamObject(clientID, func(m wire.Message) { b.onDataSourceRequest(src, clientID, m) })
		b.RegisterUpstreamObject(upstreamID, func(m wire.Message) { b.dispatchDataSourceEvent(src, m) })
	case wlproto.DataDeviceManagerGetDataDevice:
		dec := b.decodeOrLog("no", msg)
		if dec == nil {
			return
		}
		clientID, seatID := dec[0].(wire.ObjectID), dec[1].(wire.ObjectID)
		seat, ok := b.seatsByDown[seatID]
		if !ok {
			return
		}
		dev := wlproxy.NewDataDeviceManager(wlproxy.HostResource{Upstream: b.DataDeviceManagerUpstream}).
			GetDataDevice(b.Upstream, wlproxy.HostResource{Downstream: clientID}, seat)
		b.dataDevicesByDown[clientID] = dev
		b.RegisterDownstreamObject(clientID, func(m wire.Message) { b.onDataDeviceRequest(dev, clientID, m) })
	}
}

func (b *Bridge) onDataSourceRequest(src *wlproxy.DataSource, srcID wire.ObjectID, msg wire.Message) {
	switch msg.Opcode {
	case wlproto.DataSourceOffer:
		dec := b.decodeOrLog("s", msg)
		if dec == nil {
			return
		}
		src.Offer(b.Upstream, dec[0].(string))
	case wlproto.DataSourceSetActions:
		b.decodeOrLog("u", msg)
	case wlproto.DataSourceDestroy:
		if b.decodeOrLog("", msg) == nil {
			return
		}
		b.UnregisterDownstreamObject(srcID)
		b.UnregisterUpstreamObject(src.Host.Upstream)
		delete(b.dataSourcesByDown, srcID)
	}
}

func (b *Bridge) dispatchDataSourceEvent(src *wlproxy.DataSource, msg wire.Message) {
	switch msg.Opcode {
	case wlproto.DataSourceEventSend:
		dec := b.decodeOrLog("sh", msg)
		if dec == nil {
			return
		}
		src.Send(b.Downstream, dec[0].(string), dec[1].(int))
	case wlproto.DataSourceEventCancelled:
		if b.decodeOrLog("", msg) == nil {
			return
		}
		src.Cancelled(b.Downstream)
	}
}

func (b *Bridge) onDataOfferRequest(offer *wlproxy.DataOffer, offerID wire.ObjectID, msg wire.Message) {
	switch msg.Opcode {
	case wlproto.DataOfferReceive:
		dec := b.decodeOrLog("sh", msg)
		if dec == nil {
			return
		}
		offer.Receive(b.Upstream, dec[0].(string), dec[1].(int))
	case wlproto.DataOfferAccept:
		b.decodeOrLog("u?s", msg)
	case wlproto.DataOfferFinish:
		b.decodeOrLog("", msg)
	case wlproto.DataOfferSetActions:
		b.decodeOrLog("uu", msg)
	case wlproto.DataOfferDestroy:
		if b.decodeOrLog("", msg) == nil {
			return
		}
		b.UnregisterDownstreamObject(offerID)
		delete(b.dataOffersByDown, offerID)
	}
}

func (b *Bridge) onDataDeviceRequest(dev *wlproxy.DataDevice, devID wire.ObjectID, msg wire.Message) {
	switch msg.Opcode {
	case wlproto.DataDeviceSetSelection:
		dec := b.decodeOrLog("?ou", msg)
		if dec == nil {
			return
		}
		srcID, serial := dec[0].(wire.ObjectID), dec[1].(uint32)
		var src *wlproxy.DataSource
		if srcID != 0 {
			src = b.dataSourcesByDown[srcID]
		}
		dev.SetSelection(b.Upstream, src, serial)
	case wlproto.DataDeviceStartDrag:
		// Drag-and-drop is out of scope; decode and drop so the wire parser
		// stays in sync with whatever the client sent.
		b.decodeOrLog("?o?ou", msg)
	case wlproto.DataDeviceRelease:
		if b.decodeOrLog("", msg) == nil {
			return
		}
		b.UnregisterDownstreamObject(devID)
		delete(b.dataDevicesByDown, devID)
	}
}

// onShellRequest handles wl_shell.get_shell_surface: give the surface the
// legacy shell role. Nothing in this bridge's own window management reacts
// to the resulting ShellSurface (internal/xwm drives zxdg_shell_v6
// directly) so this exists purely to keep a client bound to wl_shell from
// hanging on a request that otherwise goes unanswered.
func (b *Bridge) onShellRequest(msg wire.Message) {
	dec := b.decodeOrLog("no", msg)
	if dec == nil {
		return
	}
	clientID := dec[0].(wire.ObjectID)
	surfaceID := dec[1].(wire.ObjectID)
	surf, ok := b.surfacesByDown[surfaceID]
	if !ok {
		return
	}
	upstreamID := b.AllocUpstreamID()
	shell := wlproxy.NewShell(wlproxy.HostResource{Upstream: b.ShellUpstream})
	ss := shell.GetShellSurface(b.Upstream, wlproxy.HostResource{Downstream: clientID, Upstream: upstreamID}, surf.Host.Upstream)
	b.shellSurfacesByDown[clientID] = ss
	b.RegisterDownstreamObject(clientID, func(m wire.Message) { b.onShellSurfaceRequest(ss, clientID, m) })
	b.RegisterUpstreamObject(upstreamID, func(m wire.Message) { b.dispatchShellSurfaceEvent(ss, m) })
}

func (b *Bridge) onShellSurfaceRequest(ss *wlproxy.ShellSurface, ssID wire.ObjectID, msg wire.Message) {
	switch msg.Opcode {
	case wlproto.ShellSurfacePong:
		dec := b.decodeOrLog("u", msg)
		if dec == nil {
			return
		}
		ss.Pong(b.Upstream, dec[0].(uint32))
	case wlproto.ShellSurfaceMove:
		dec := b.decodeOrLog("ou", msg)
		if dec == nil {
			return
		}
		seat, ok := b.seatsByDown[dec[0].(wire.ObjectID)]
		if !ok {
			return
		}
		ss.Move(b.Upstream, seat.Host.Upstream, dec[1].(uint32))
	case wlproto.ShellSurfaceResize:
		dec := b.decodeOrLog("ouu", msg)
		if dec == nil {
			return
		}
		seat, ok := b.seatsByDown[dec[0].(wire.ObjectID)]
		if !ok {
			return
		}
		ss.Resize(b.Upstream, seat.Host.Upstream, dec[1].(uint32), dec[2].(uint32))
	case wlproto.ShellSurfaceSetToplevel:
		if b.decodeOrLog("", msg) == nil {
			return
		}
		ss.SetToplevel(b.Upstream)
	case wlproto.ShellSurfaceSetTransient:
		dec := b.decodeOrLog("oiiu", msg)
		if dec == nil {
			return
		}
		parent, ok := b.surfacesByDown[dec[0].(wire.ObjectID)]
		if !ok {
			return
		}
		ss.SetTransient(b.Upstream, parent.Host.Upstream, dec[1].(int32), dec[2].(int32), dec[3].(uint32))
	case wlproto.ShellSurfaceSetFullscreen:
		dec := b.decodeOrLog("uu?o", msg)
		if dec == nil {
			return
		}
		ss.SetFullscreen(b.Upstream, dec[0].(uint32), dec[1].(uint32))
	case wlproto.ShellSurfaceSetPopup:
		dec := b.decodeOrLog("ouoiiu", msg)
		if dec == nil {
			return
		}
		seat, ok := b.seatsByDown[dec[0].(wire.ObjectID)]
		if !ok {
			return
		}
		parent, ok := b.surfacesByDown[dec[2].(wire.ObjectID)]
		if !ok {
			return
		}
		ss.SetPopup(b.Upstream, seat.Host.Upstream, dec[1].(uint32), parent.Host.Upstream, dec[3].(int32), dec[4].(int32), dec[5].(uint32))
	case wlproto.ShellSurfaceSetMaximized:
		if b.decodeOrLog("?o", msg) == nil {
			return
		}
		ss.SetMaximized(b.Upstream)
	case wlproto.ShellSurfaceSetTitle:
		dec := b.decodeOrLog("s", msg)
		if dec == nil {
			return
		}
		ss.SetTitle(b.Upstream, dec[0].(string))
	case wlproto.ShellSurfaceSetClass:
		dec := b.decodeOrLog("s", msg)
		if dec == nil {
			return
		}
		ss.SetClass(b.Upstream, dec[0].(string))
	}
}

func (b *Bridge) dispatchShellSurfaceEvent(ss *wlproxy.ShellSurface, msg wire.Message) {
	switch msg.Opcode {
	case wlproto.ShellSurfaceEventPing:
		dec := b.decodeOrLog("u", msg)
		if dec == nil {
			return
		}
		ss.Ping(b.Downstream, dec[0].(uint32))
	case wlproto.ShellSurfaceEventConfigure:
		dec := b.decodeOrLog("uii", msg)
		if dec == nil {
			return
		}
		ss.Configure(b.Downstream, dec[0].(uint32), dec[1].(int32), dec[2].(int32))
	case wlproto.ShellSurfaceEventPopupDone:
		if b.decodeOrLog("", msg) == nil {
			return
		}
		ss.PopupDone(b.Downstream)
	}
}

func (b *Bridge) onDrmRequest(drm *wlproxy.Drm, msg wire.Message) {
	if msg.Opcode != wlproto.DrmCreatePrimeBuffer {
		b.Log.Warn().Msg("wl_drm: only create_prime_buffer is implemented")
		return
	}
	dec := b.decodeOrLog("nhiiuuiuiu", msg)
	if dec == nil {
		return
	}
	clientID := dec[0].(wire.ObjectID)
	fd := dec[1].(int)
	width, height := dec[2].(int32), dec[3].(int32)
	format := dec[4].(uint32)
	offset := dec[5].(uint32)
	stride := uint32(dec[6].(int32))

	paramsUpstream := b.AllocUpstreamID()
	var pb wire.Builder
	pb.PutObject(paramsUpstream)
	sendUpstream(b.Upstream, b.DmabufUpstream, wlproto.LinuxDmabufCreateParams, &pb)

	upstreamBuf := b.AllocUpstreamID()
	buf := drm.CreatePrimeBuffer(b.Upstream, paramsUpstream, wlproxy.HostResource{Downstream: clientID, Upstream: upstreamBuf}, fd, width, height, format, stride, offset)
	b.buffersByDown[clientID] = buf
	b.RegisterDownstreamObject(clientID, func(m wire.Message) { b.onBufferRequest(buf, clientID, m) })
}
