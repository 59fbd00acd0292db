package bridge

import (
	"fmt"
	"unsafe"

	"github.com/BurntSushi/xgb"
	"golang.org/x/sys/unix"

	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
)

// UpstreamHandler decodes and acts on one event arriving from the host
// compositor, addressed to the object it was registered for.
type UpstreamHandler func(msg wire.Message)

// DownstreamHandler decodes and acts on one request arriving from the X
// renderer, addressed to the object it was registered for.
type DownstreamHandler func(msg wire.Message)

// RegisterUpstreamObject installs the handler invoked whenever the host
// compositor sends an event to id. Proxy resources call this when they are
// created; the entry is removed when the resource is destroyed.
func (b *Bridge) RegisterUpstreamObject(id wire.ObjectID, h UpstreamHandler) {
	if b.upstreamHandlers == nil {
		b.upstreamHandlers = make(map[wire.ObjectID]UpstreamHandler)
	}
	b.upstreamHandlers[id] = h
}

// UnregisterUpstreamObject removes a previously registered handler, called
// when the host destroys the object (delete_id) or the bridge tears it down.
func (b *Bridge) UnregisterUpstreamObject(id wire.ObjectID) {
	delete(b.upstreamHandlers, id)
}

// RegisterDownstreamObject installs the handler invoked whenever the X
// renderer sends a request to id.
func (b *Bridge) RegisterDownstreamObject(id wire.ObjectID, h DownstreamHandler) {
	if b.downstreamHandlers == nil {
		b.downstreamHandlers = make(map[wire.ObjectID]DownstreamHandler)
	}
	b.downstreamHandlers[id] = h
}

func (b *Bridge) UnregisterDownstreamObject(id wire.ObjectID) {
	delete(b.downstreamHandlers, id)
}

// WatchFD registers fd with the reactor's epoll set, invoking onReadable
// whenever it becomes readable. Used by internal/clipboard to fold its
// per-transfer INCR read pipe into the same event loop that already
// multiplexes the two Wayland connections and the X connection, instead of
// needing a goroutine of its own.
func (b *Bridge) WatchFD(fd int, onReadable func()) error {
	b.extraReadable[fd] = onReadable
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	return unix.EpollCtl(b.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

// UnwatchFD removes a fd registered with WatchFD; called once the fd is
// about to be closed, since epoll_ctl(DEL) on an already-closed fd is an
// error.
func (b *Bridge) UnwatchFD(fd int) {
	delete(b.extraReadable, fd)
	unix.EpollCtl(b.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// decodeOrLog decodes msg's body and logs+returns nil on a malformed
// message, so every call site can do a one-line nil check instead of
// threading the decode error through every handler.
func (b *Bridge) decodeOrLog(sig string, msg wire.Message) []wire.Arg {
	args, err := wire.Decode(sig, msg.Body, msg.FDs)
	if err != nil {
		b.Log.Warn().Err(err).Uint32("sender", uint32(msg.Sender)).Uint16("opcode", msg.Opcode).Msg("malformed message")
		return nil
	}
	return args
}

// dispatchUpstream routes one decoded message from the host compositor,
// handling the two connection-global opcodes (wl_display error/delete_id
// and wl_registry global/global_remove) inline and everything else through
// the per-object table.
func (b *Bridge) dispatchUpstream(msg wire.Message) {
	switch msg.Sender {
	case b.DisplayID:
		switch msg.Opcode {
		case wlproto.DisplayEventDeleteID:
			dec := b.decodeOrLog("u", msg)
			if dec == nil {
				return
			}
			b.UnregisterUpstreamObject(wire.ObjectID(dec[0].(uint32)))
		case wlproto.DisplayEventError:
			dec := b.decodeOrLog("ous", msg)
			if dec == nil {
				return
			}
			b.Log.Error().
				Uint32("object", uint32(dec[0].(wire.ObjectID))).
				Uint32("code", dec[1].(uint32)).
				Str("message", dec[2].(string)).
				Msg("fatal error from host compositor")
		}
		return
	case b.RegistryID:
		switch msg.Opcode {
		case wlproto.RegistryEventGlobal:
			dec := b.decodeOrLog("usu", msg)
			if dec == nil {
				return
			}
			b.OnGlobal(dec[0].(uint32), dec[1].(string), dec[2].(uint32))
		case wlproto.RegistryEventGlobalRemove:
			dec := b.decodeOrLog("u", msg)
			if dec == nil {
				return
			}
			b.OnGlobalRemove(dec[0].(uint32))
		}
		return
	}
	if h, ok := b.upstreamHandlers[msg.Sender]; ok {
		h(msg)
	}
}

// dispatchDownstream routes one decoded request from the X renderer. The
// implicit wl_display object (id 1) only ever receives sync/get_registry,
// both handled the same way any Wayland server handles them; everything
// bound through the registry goes through the per-object table that
// internal/wlproxy populates as it creates resources.
func (b *Bridge) dispatchDownstream(msg wire.Message) {
	if msg.Sender == 1 {
		switch msg.Opcode {
		case wlproto.DisplaySync:
			dec := b.decodeOrLog("n", msg)
			if dec == nil {
				return
			}
			cbID := dec[0].(wire.ObjectID)
			var eb wire.Builder
			eb.PutUint32(0)
			b.Downstream.QueueMessage(cbID, wlproto.CallbackEventDone, eb.Bytes(), nil)
			var db wire.Builder
			db.PutUint32(uint32(cbID))
			b.Downstream.QueueMessage(1, wlproto.DisplayEventDeleteID, db.Bytes(), nil)
		case wlproto.DisplayGetRegistry:
			dec := b.decodeOrLog("n", msg)
			if dec == nil {
				return
			}
			b.onDownstreamGetRegistry(dec[0].(wire.ObjectID))
		}
		return
	}
	if h, ok := b.downstreamHandlers[msg.Sender]; ok {
		h(msg)
	}
}

// onDownstreamGetRegistry replays every currently known global as a
// wl_registry.global event on the client's freshly bound registry, mirroring
// what a real compositor does for a registry bound after globals already
// exist.
func (b *Bridge) onDownstreamGetRegistry(regID wire.ObjectID) {
	b.downstreamRegistry = regID
	b.RegisterDownstreamObject(regID, b.onBind)
	for hostName, rec := range b.hostGlobals {
		downName, ok := b.downGlobals[hostName]
		if !ok {
			continue
		}
		iface := b.downGlobalIface[downName]
		var gb wire.Builder
		gb.PutUint32(downName).PutString(iface).PutUint32(rec.Version)
		b.Downstream.QueueMessage(regID, wlproto.RegistryEventGlobal, gb.Bytes(), nil)
	}
}

// Run drives the reactor for the lifetime of the bridge process: it
// multiplexes the upstream Wayland connection, the downstream Wayland
// connection, the X connection (via a background pump goroutine, since
// BurntSushi/xgb owns event reading on its own goroutine internally), and
// SIGCHLD, applying the flush-ordering contract after every iteration:
// downstream clients first, then any pending X focus change followed by an X
// flush, then the upstream connection last. This order matches how the
// pieces depend on each other: the X renderer should see its own window
// contents committed before it is told a different window now has focus,
// and the host compositor should only see state that has already been made
// consistent on both proxied sides.
func (b *Bridge) Run() error {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return fmt.Errorf("bridge: epoll_create1: %w", err)
	}
	defer unix.Close(epfd)
	b.epfd = epfd

	sigfd, err := b.setupSignalfd()
	if err != nil {
		return fmt.Errorf("bridge: signalfd: %w", err)
	}
	defer unix.Close(sigfd)

	xEventFD, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return fmt.Errorf("bridge: eventfd: %w", err)
	}
	defer unix.Close(xEventFD)

	xEvents := make(chan xgb.Event, 64)
	xErrors := make(chan xgb.Error, 16)
	go b.pumpXEvents(xEventFD, xEvents, xErrors)

	watch := []int{b.Upstream.Fd(), b.Downstream.Fd(), sigfd, xEventFD}
	for _, fd := range watch {
		ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
		if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
			return fmt.Errorf("bridge: epoll_ctl(%d): %w", fd, err)
		}
	}

	// Sized beyond the fixed watch set: fds registered later through WatchFD
	// (the clipboard bridge's per-transfer pipe) share the same epoll
	// instance and can make more fds ready in a single wait than len(watch).
	events := make([]unix.EpollEvent, 32)
	for {
		n, err := unix.EpollWait(epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("bridge: epoll_wait: %w", err)
		}

		exit := false
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			switch fd {
			case b.Upstream.Fd():
				if err := b.drainUpstream(); err != nil {
					return err
				}
			case b.Downstream.Fd():
				if err := b.drainDownstream(); err != nil {
					return err
				}
			case sigfd:
				var info unix.SignalfdSiginfo
				for {
					if err := readSignalfd(sigfd, &info); err != nil {
						break
					}
					if exited, code := b.reapChild(); exited {
						b.Log.Info().Int("code", code).Msg("child exited, shutting down")
						exit = true
					}
				}
			case xEventFD:
				var buf [8]byte
				unix.Read(xEventFD, buf[:])
				b.drainXEvents(xEvents, xErrors)
			default:
				if onReadable, ok := b.extraReadable[fd]; ok {
					onReadable()
				}
			}
		}

		b.flush()

		if exit {
			return nil
		}
	}
}

// flush implements the ordering contract described on Run.
func (b *Bridge) flush() {
	if err := b.Downstream.Flush(); err != nil {
		b.Log.Warn().Err(err).Msg("downstream flush failed")
	}
	if b.WM != nil {
		for _, w := range b.WM.Windows {
			if w.NeedsSetInputFocus {
				b.WM.ApplyActivation(w)
			}
		}
	}
	if b.XConn != nil {
		// BurntSushi/xgb has no explicit flush call; requests are written
		// synchronously by each call, so nothing further is needed here
		// beyond having already issued them above.
		_ = b.XConn
	}
	if err := b.Upstream.Flush(); err != nil {
		b.Log.Warn().Err(err).Msg("upstream flush failed")
	}
}

func (b *Bridge) drainUpstream() error {
	msgs, closed, err := b.Upstream.ReadMessages()
	if err != nil {
		return fmt.Errorf("bridge: upstream read: %w", err)
	}
	for _, m := range msgs {
		b.dispatchUpstream(m)
	}
	if closed {
		return fmt.Errorf("bridge: host compositor closed the connection")
	}
	return nil
}

func (b *Bridge) drainDownstream() error {
	msgs, closed, err := b.Downstream.ReadMessages()
	if err != nil {
		return fmt.Errorf("bridge: downstream read: %w", err)
	}
	for _, m := range msgs {
		b.dispatchDownstream(m)
	}
	if closed {
		b.Log.Info().Msg("x renderer closed its wayland connection")
		return fmt.Errorf("bridge: x renderer disconnected")
	}
	return nil
}

// pumpXEvents runs on its own goroutine since xgb.Conn.WaitForEvent blocks;
// every event or error it yields is forwarded to the reactor via the
// buffered channels, with an 8-byte eventfd increment written to wakeFD so
// epoll_wait returns promptly instead of waiting for the next Wayland activity.
func (b *Bridge) pumpXEvents(wakeFD int, events chan<- xgb.Event, errs chan<- xgb.Error) {
	for {
		ev, xerr, err := b.XConn.WaitForEvent()
		if err != nil {
			return
		}
		if ev != nil {
			events <- ev
		}
		if xerr != nil {
			errs <- xerr
		}
		one := [8]byte{1}
		unix.Write(wakeFD, one[:])
	}
}

func (b *Bridge) drainXEvents(events <-chan xgb.Event, errs <-chan xgb.Error) {
	for {
		select {
		case ev := <-events:
			b.dispatchXEvent(ev)
		case xerr := <-errs:
			b.Log.Warn().Str("error", xerr.Error()).Msg("x protocol error")
		default:
			return
		}
	}
}

// reapChild waits for every exited child without blocking. The X renderer
// exiting always ends the reactor loop, its status becoming the process
// exit code; the inferior program exiting is handled per exit_with_child:
// SIGTERM the X renderer (whose own exit then ends the loop through the
// branch above) when set, otherwise just logged.
func (b *Bridge) reapChild() (exited bool, code int) {
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)
		if err != nil || pid <= 0 {
			return exited, code
		}
		switch {
		case b.xRenderer != nil && pid == b.xRenderer.Pid:
			b.ExitCode = ws.ExitStatus()
			exited, code = true, b.ExitCode
		case b.inferior != nil && pid == b.inferior.Pid:
			if b.Cfg.ExitWithChild {
				unix.Kill(b.xRenderer.Pid, unix.SIGTERM)
			} else {
				b.Log.Info().Int("code", ws.ExitStatus()).Msg("inferior program exited")
			}
		}
	}
}

// setupSignalfd blocks SIGCHLD on the calling thread and returns a signalfd
// delivering it, so the reactor can reap children as just another readable
// fd instead of a regular Go signal handler racing the rest of the event
// loop.
func (b *Bridge) setupSignalfd() (int, error) {
	var set unix.Sigset_t
	addSignal(&set, unix.SIGCHLD)
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &set, nil); err != nil {
		return -1, fmt.Errorf("pthread_sigmask: %w", err)
	}
	fd, err := unix.Signalfd(-1, &set, unix.SFD_CLOEXEC|unix.SFD_NONBLOCK)
	if err != nil {
		return -1, fmt.Errorf("signalfd: %w", err)
	}
	return fd, nil
}

func addSignal(set *unix.Sigset_t, sig unix.Signal) {
	set.Val[(sig-1)/64] |= 1 << (uint(sig-1) % 64)
}

// readSignalfd drains exactly one siginfo record, returning an error once
// the fd has nothing more to offer (EAGAIN), which ends the draining loop
// in Run.
func readSignalfd(fd int, info *unix.SignalfdSiginfo) error {
	b := (*(*[unix.SizeofSignalfdSiginfo]byte)(unsafePointer(info)))[:]
	n, err := unix.Read(fd, b)
	if err != nil {
		return err
	}
	if n != unix.SizeofSignalfdSiginfo {
		return fmt.Errorf("short signalfd read: %d bytes", n)
	}
	return nil
}

func unsafePointer(info *unix.SignalfdSiginfo) unsafe.Pointer {
	return unsafe.Pointer(info)
}
