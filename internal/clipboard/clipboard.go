// Package clipboard implements the C7 clipboard bridge: it tunnels a
// selection between X's incremental selection protocol and Wayland's
// data-device receive/send-file-descriptor model. Only one transfer per
// direction is ever in flight.
package clipboard

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
	"github.com/friedelschoen/xwl-run/internal/wlproxy"
	"github.com/friedelschoen/xwl-run/internal/xwm"
)

const incrChunkSize = 64 * 1024

// state is the small state machine of the clipboard bridge's data model.
type state int

const (
	stateIdle state = iota
	stateIncomingTargets
	stateIncomingData
	stateOutgoingData
)

// Bridge owns the dedicated invisible X window, CLIPBOARD_MANAGER
// ownership, and the at-most-one-transfer-per-direction state.
type Bridge struct {
	log   zerolog.Logger
	xc    *xgb.Conn
	atoms *xwm.Atoms
	win   xproto.Window

	upstream *wire.Conn
	ddMgr    *wlproxy.DataDeviceManager
	seat     *wlproxy.Seat
	device   *wlproxy.DataDevice

	// AllocUpstream and RegisterUpstream are injected by internal/bridge so
	// this package can allocate an id for its own data_device and wire its
	// upstream event dispatch without internal/bridge exposing its whole
	// object table.
	AllocUpstream    func() wire.ObjectID
	RegisterUpstream func(id wire.ObjectID, handler func(wire.Message))

	// WatchFD and UnwatchFD fold the incoming-transfer read pipe into
	// internal/bridge's own reactor so this package never needs an event
	// loop of its own.
	WatchFD   func(fd int, onReadable func()) error
	UnwatchFD func(fd int)

	pendingOffer *wlproxy.DataOffer

	outgoing       state // X owns selection, Wayland peer wants data
	outSource      *wlproxy.DataSource
	outFD          int
	outIncremental bool

	incoming      state // Wayland peer owns selection, X client requested
	incomingOffer *wlproxy.DataOffer

	// pending X SelectionRequest state for the TARGETS/UTF8_STRING path
	reqRequestor xproto.Window
	reqProperty  xproto.Atom
	reqBuf       []byte
	reqIncrPipe  [2]int
	reqIncr      bool
	reqEOF       bool
}

// New constructs a clipboard bridge bound to a freshly created invisible
// window; Start subscribes to XFIXES selection-owner notifications and
// acquires CLIPBOARD_MANAGER eagerly.
func New(log zerolog.Logger, xc *xgb.Conn, atoms *xwm.Atoms, win xproto.Window, upstream *wire.Conn, ddMgr *wlproxy.DataDeviceManager, seat *wlproxy.Seat) *Bridge {
	return &Bridge{
		log: log, xc: xc, atoms: atoms, win: win,
		upstream: upstream, ddMgr: ddMgr, seat: seat,
		outFD: -1,
	}
}

// Start subscribes to XFIXES CLIPBOARD selection-owner notifications and
// takes CLIPBOARD_MANAGER ownership immediately — a feature recovered from
// the original xwl.c, which acquires the manager role at startup rather
// than lazily on first transfer, so a competing clipboard manager never
// gets a window to race for ownership against.
func (b *Bridge) Start() error {
	if err := xfixes.Init(b.xc); err != nil {
		return err
	}
	xfixes.SelectSelectionInput(b.xc, b.win, b.atoms.Clipboard,
		xfixes.SelectionEventMaskSetSelectionOwner|
			xfixes.SelectionEventMaskSelectionWindowDestroy|
			xfixes.SelectionEventMaskSelectionClientClose)

	xproto.SetSelectionOwner(b.xc, b.win, b.atoms.ClipboardManager, xproto.TimeCurrentTime)

	devID := b.AllocUpstream()
	b.device = b.ddMgr.GetDataDevice(b.upstream, wlproxy.HostResource{Upstream: devID}, b.seat)
	b.RegisterUpstream(devID, b.dispatchDeviceEvent)
	return nil
}

// dispatchDeviceEvent handles the two data_device events this bridge cares
// about. data_offer introduces a new offer object in the server's own id
// range; selection then either names that offer as the new clipboard
// content or, with a null id, reports the clipboard was cleared. This
// bridge never inspects the offer's mime-type list: it always asks for
// text/plain;charset=utf-8 on demand and lets the peer fail the request if
// it has nothing matching.
func (b *Bridge) dispatchDeviceEvent(msg wire.Message) {
	switch msg.Opcode {
	case wlproto.DataDeviceEventDataOffer:
		dec, err := wire.Decode("n", msg.Body, msg.FDs)
		if err != nil {
			return
		}
		offerID := dec[0].(wire.ObjectID)
		b.pendingOffer = wlproxy.NewDataOffer(wlproxy.HostResource{Upstream: offerID})
	case wlproto.DataDeviceEventSelection:
		dec, err := wire.Decode("?o", msg.Body, msg.FDs)
		if err != nil {
			return
		}
		offerID, _ := dec[0].(wire.ObjectID)
		if offerID == 0 {
			b.OnWaylandSelection(nil)
			return
		}
		b.OnWaylandSelection(b.pendingOffer)
	}
}

// OnSelectionOwnerChange handles the XFIXES notification opening the X→
// Wayland pipeline: if a new, non-self owner took CLIPBOARD, ask it
// for TARGETS.
func (b *Bridge) OnSelectionOwnerChange(owner xproto.Window) {
	if owner == 0 || owner == b.win {
		return
	}
	b.outgoing = stateIncomingTargets
	xproto.ConvertSelection(b.xc, b.win, b.atoms.Clipboard, b.atoms.Targets, b.atoms.WLSelection, xproto.TimeCurrentTime)
}

// OnSelectionNotifyTargets handles the TARGETS reply: build a Wayland data
// source offering the one MIME type this bridge understands and set it as
// the seat's selection.
func (b *Bridge) OnSelectionNotifyTargets(lastInputSerial uint32) {
	if b.outgoing != stateIncomingTargets {
		return
	}
	srcID := b.AllocUpstream()
	src := b.ddMgr.CreateDataSource(b.upstream, wlproxy.HostResource{Upstream: srcID})
	b.RegisterUpstream(srcID, b.dispatchSourceEvent)
	src.Offer(b.upstream, "text/plain;charset=utf-8")
	b.outSource = src
	b.device.SetSelection(b.upstream, src, lastInputSerial)
	b.outgoing = stateIdle
}

// dispatchSourceEvent handles the two data_source events this bridge's own
// outgoing source cares about: send, which delivers the fd the peer wants
// CLIPBOARD's current content written to, and cancelled, which means some
// other source took the selection away from us.
func (b *Bridge) dispatchSourceEvent(msg wire.Message) {
	switch msg.Opcode {
	case wlproto.DataSourceEventSend:
		dec, err := wire.Decode("sh", msg.Body, msg.FDs)
		if err != nil {
			return
		}
		b.OnDataSourceSend(dec[1].(int))
	case wlproto.DataSourceEventCancelled:
		b.cancelOut()
	}
}

// OnDataSourceSend handles the Wayland peer calling send(mime, fd): convert
// CLIPBOARD to UTF8_STRING into _WL_SELECTION and remember fd.
func (b *Bridge) OnDataSourceSend(fd int) {
	unix.SetNonblock(fd, true)
	unix.CloseOnExec(fd)
	b.outFD = fd
	b.outgoing = stateOutgoingData
	xproto.ConvertSelection(b.xc, b.win, b.atoms.Clipboard, b.atoms.UTF8String, b.atoms.WLSelection, xproto.TimeCurrentTime)
}

// OnSelectionNotifyData handles the data reply for the pending convert: if
// INCR, wait for chunked PropertyNotify deletes; otherwise write the whole
// property to outFD and close it.
func (b *Bridge) OnSelectionNotifyData(propType xproto.Atom, data []byte) {
	if b.outgoing != stateOutgoingData || b.outFD < 0 {
		return
	}
	if propType == b.atoms.Incr {
		b.outIncremental = true
		return
	}
	b.writeOut(data)
	b.finishOut()
}

// OnPropertyDelete is driven by PropertyNotify when our own read of
// _WL_SELECTION deletes the property (acking one INCR chunk); request the
// next chunk and feed whatever it contains to OnIncrChunk.
func (b *Bridge) OnPropertyDelete() {
	if !b.outIncremental || b.outgoing != stateOutgoingData {
		return
	}
	reply, err := xproto.GetProperty(b.xc, true, b.win, b.atoms.WLSelection, xproto.AtomAny, 0, 1<<20).Reply()
	if err != nil {
		b.log.Warn().Err(err).Msg("clipboard: incr chunk read failed")
		b.cancelOut()
		return
	}
	b.OnIncrChunk(reply.Value)
}

// OnIncrChunk handles one INCR chunk delivered via GetProperty; a
// zero-length chunk is the end marker.
func (b *Bridge) OnIncrChunk(data []byte) {
	if len(data) == 0 {
		b.finishOut()
		return
	}
	b.writeOut(data)
}

func (b *Bridge) writeOut(data []byte) {
	for len(data) > 0 {
		n, err := unix.Write(b.outFD, data)
		if err != nil {
			if err == unix.EAGAIN {
				continue
			}
			b.log.Warn().Err(err).Msg("clipboard: write to wayland peer failed")
			b.cancelOut()
			return
		}
		data = data[n:]
	}
}

func (b *Bridge) finishOut() {
	if b.outFD >= 0 {
		unix.Close(b.outFD)
	}
	b.outFD = -1
	b.outIncremental = false
	b.outgoing = stateIdle
}

func (b *Bridge) cancelOut() {
	if b.outFD >= 0 {
		unix.Close(b.outFD)
	}
	b.outFD = -1
	b.outIncremental = false
	b.outgoing = stateIdle
}

// OnWaylandSelection handles data_device.selection(offer): remember the
// offer and take ownership of CLIPBOARD on the X side.
func (b *Bridge) OnWaylandSelection(offer *wlproxy.DataOffer) {
	b.incomingOffer = offer
	if offer == nil {
		return
	}
	xproto.SetSelectionOwner(b.xc, b.win, b.atoms.Clipboard, xproto.TimeCurrentTime)
}

// OnSelectionRequest implements the Wayland-to-X half of the bridge.
func (b *Bridge) OnSelectionRequest(ev *xproto.SelectionRequestEvent) {
	switch ev.Target {
	case b.atoms.Targets:
		atoms := []xproto.Atom{b.atoms.Timestamp, b.atoms.Targets, b.atoms.UTF8String, b.atoms.Text}
		data := make([]byte, len(atoms)*4)
		for i, a := range atoms {
			putU32(data[i*4:], uint32(a))
		}
		xproto.ChangeProperty(b.xc, xproto.PropModeReplace, ev.Requestor, ev.Property, xproto.AtomAtom, 32, uint32(len(atoms)), data)
		b.notify(ev, ev.Property)
	case b.atoms.Timestamp:
		data := make([]byte, 4)
		putU32(data, uint32(xproto.TimeCurrentTime))
		xproto.ChangeProperty(b.xc, xproto.PropModeReplace, ev.Requestor, ev.Property, xproto.AtomInteger, 32, 1, data)
		b.notify(ev, ev.Property)
	case b.atoms.UTF8String, b.atoms.Text:
		if b.incoming != stateIdle || b.incomingOffer == nil {
			b.notify(ev, 0)
			return
		}
		b.startIncomingTransfer(ev)
	default:
		b.notify(ev, 0)
	}
}

func (b *Bridge) startIncomingTransfer(ev *xproto.SelectionRequestEvent) {
	fds, err := unix.Pipe2(unix.O_CLOEXEC)
	if err != nil {
		b.notify(ev, 0)
		return
	}
	b.incoming = stateIncomingData
	b.reqRequestor = ev.Requestor
	b.reqProperty = ev.Property
	b.reqBuf = nil
	b.reqIncr = false
	b.reqEOF = false

	b.incomingOffer.Receive(b.upstream, "text/plain;charset=utf-8", fds[1])
	unix.Close(fds[1])
	b.reqIncrPipe[0] = fds[0]
	unix.SetNonblock(fds[0], true)
	if b.WatchFD != nil {
		b.WatchFD(fds[0], func() { b.PumpIncomingRead() })
	}
}

// PumpIncomingRead is driven by the reactor while reqIncrPipe[0] is
// readable; it accumulates bytes and, once the INCR threshold is crossed,
// switches the property to INCR and begins chunked delivery. Below the
// threshold, it waits for true EOF (the Wayland peer closed its write end)
// and then delivers the whole payload in one ChangeProperty, since a
// transfer that never crosses incrChunkSize never needs INCR at all.
func (b *Bridge) PumpIncomingRead() {
	if b.incoming != stateIncomingData {
		return
	}
	var buf [16384]byte
	for {
		n, err := unix.Read(b.reqIncrPipe[0], buf[:])
		if n > 0 {
			b.reqBuf = append(b.reqBuf, buf[:n]...)
		}
		if err != nil {
			if err == unix.EAGAIN {
				break
			}
			b.reqEOF = true
			break
		}
		if n == 0 {
			b.reqEOF = true
			break
		}
	}

	if b.reqEOF {
		// No more bytes are ever coming; stop watching the pipe regardless
		// of which path finishes the transfer.
		if b.UnwatchFD != nil {
			b.UnwatchFD(b.reqIncrPipe[0])
		}
		unix.Close(b.reqIncrPipe[0])
	}

	if len(b.reqBuf) > incrChunkSize && !b.reqIncr {
		b.reqIncr = true
		xproto.ChangeProperty(b.xc, xproto.PropModeReplace, b.reqRequestor, b.reqProperty, b.atoms.Incr, 32, 1, []byte{0, 0, 0, 0})
		b.sendSelectionNotify(b.reqRequestor, b.reqProperty)
		return
	}

	if b.reqEOF && !b.reqIncr {
		xproto.ChangeProperty(b.xc, xproto.PropModeReplace, b.reqRequestor, b.reqProperty, b.atoms.UTF8String, 8, uint32(len(b.reqBuf)), b.reqBuf)
		b.sendSelectionNotify(b.reqRequestor, b.reqProperty)
		b.incoming = stateIdle
	}
}

// OnIncrPropertyDelete is driven by PropertyNotify-delete on the requestor
// acking one chunk; append the next chunk, or a zero-length chunk to finish.
// reqEOF gating matters here: a still-filling reqBuf can legitimately be
// shorter than incrChunkSize mid-transfer, and that must not be mistaken for
// the final zero-length chunk.
func (b *Bridge) OnIncrPropertyDelete() {
	if b.incoming != stateIncomingData || !b.reqIncr {
		return
	}
	if len(b.reqBuf) == 0 && !b.reqEOF {
		return
	}
	n := incrChunkSize
	if n > len(b.reqBuf) {
		n = len(b.reqBuf)
	}
	chunk := b.reqBuf[:n]
	b.reqBuf = b.reqBuf[n:]
	xproto.ChangeProperty(b.xc, xproto.PropModeReplace, b.reqRequestor, b.reqProperty, b.atoms.UTF8String, 8, uint32(len(chunk)), chunk)
	if len(chunk) == 0 {
		b.incoming = stateIdle
	}
}

func (b *Bridge) notify(ev *xproto.SelectionRequestEvent, property xproto.Atom) {
	b.sendSelectionNotify(ev.Requestor, property)
}

// sendSelectionNotify is the requestor-driven half of notify, also used by
// the incoming-transfer paths, which only have the requestor/property pair
// left by startIncomingTransfer rather than the original SelectionRequestEvent.
func (b *Bridge) sendSelectionNotify(requestor xproto.Window, property xproto.Atom) {
	xproto.SendEvent(b.xc, false, requestor, xproto.EventMaskNoEvent,
		string(selectionNotifyBytes(b.atoms, requestor, property)))
}

func selectionNotifyBytes(atoms *xwm.Atoms, requestor xproto.Window, property xproto.Atom) []byte {
	ev := xproto.SelectionNotifyEvent{
		Time:      xproto.TimeCurrentTime,
		Requestor: requestor,
		Selection: atoms.Clipboard,
		Target:    atoms.UTF8String,
		Property:  property,
	}
	return ev.Bytes()
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
