package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/sys/unix"

	"github.com/friedelschoen/xwl-run/internal/clipboard"
	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
	"github.com/friedelschoen/xwl-run/internal/wlproxy"
	"github.com/friedelschoen/xwl-run/internal/xwm"
)

// Connect performs the whole startup choreography: dial the host
// compositor, mirror its registry, spin up the X renderer and connect to it
// as its window manager, and wire the cross-package callbacks that let
// internal/xwm and internal/clipboard reach back into the bridge's object
// tables. Run can be called once Connect returns nil.
func (b *Bridge) Connect() error {
	upFD, err := dialUpstreamSocket()
	if err != nil {
		return err
	}
	b.Upstream = wire.NewConn(upFD)

	b.RegistryID = b.AllocUpstreamID()
	var rb wire.Builder
	rb.PutObject(b.RegistryID)
	sendUpstream(b.Upstream, b.DisplayID, wlproto.DisplayGetRegistry, &rb)
	if err := b.roundtripUpstream(); err != nil {
		return err
	}

	wlSock, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("bridge: wayland socketpair: %w", err)
	}
	b.Downstream = wire.NewConn(wlSock[0])

	displayPipe, err := unix.Pipe2(unix.O_CLOEXEC)
	if err != nil {
		return fmt.Errorf("bridge: displayfd pipe: %w", err)
	}

	wmSock, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("bridge: wm socketpair: %w", err)
	}

	proc, err := b.spawnXRenderer(wlSock[1], displayPipe[1], wmSock[1])
	if err != nil {
		return err
	}
	b.xRenderer = proc
	unix.Close(wlSock[1])
	unix.Close(displayPipe[1])
	unix.Close(wmSock[1])

	displayNum, err := readDisplayNumber(displayPipe[0])
	unix.Close(displayPipe[0])
	if err != nil {
		return err
	}
	display := fmt.Sprintf(":%d", displayNum)
	b.Log.Info().Str("display", display).Msg("x renderer ready")

	// wmSock[0] keeps the X renderer from showing client windows before a
	// window manager has connected; BurntSushi/xgb has no public
	// connect-over-existing-fd entry point, so the actual management
	// connection below is a regular xgb.NewConnDisplay dial against the
	// display the renderer just published, and this end of the pair is
	// only held open long enough to satisfy that protocol, then dropped.
	defer unix.Close(wmSock[0])

	xc, err := xgb.NewConnDisplay(display)
	if err != nil {
		return fmt.Errorf("bridge: x connect: %w", err)
	}
	b.XConn = xc
	b.XScreen = xproto.Setup(xc).DefaultScreen(xc)

	atoms, err := xwm.InternAtoms(xc)
	if err != nil {
		return fmt.Errorf("bridge: intern atoms: %w", err)
	}
	b.Atoms = atoms

	xproto.ChangeWindowAttributes(xc, b.XScreen.Root, xproto.CwEventMask, []uint32{
		uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify | xproto.EventMaskPropertyChange),
	})

	b.WM = xwm.NewManager(b.Log, xc, b.XScreen, atoms, b.Scale)
	b.WM.Upstream = b.Upstream
	b.WM.AllocUpstream = b.AllocUpstreamID
	b.WM.XdgShell = b.XdgShellUpstream
	b.WM.AuraShell = b.AuraShellUpstream
	b.WM.HasAura = b.HasAuraShell
	b.WM.AppIDOverride = b.Cfg.AppID
	b.WM.ShowWindowTitle = b.Cfg.ShowWindowTitle
	if r, g, bb, ok, _ := b.Cfg.FrameColorRGB(); ok {
		b.WM.FrameColorSet = true
		b.WM.FrameColorRGB = [3]byte{r, g, bb}
	}
	b.WM.Visuals, b.WM.Colormaps = visualsAndColormaps(xc, b.XScreen)
	b.WM.LookupSurface = func(id wire.ObjectID) *wlproxy.Surface {
		return b.surfacesByDown[id]
	}

	b.wireRestack()

	if err := b.announceWM(); err != nil {
		return fmt.Errorf("bridge: announce window manager: %w", err)
	}

	if b.Cfg.ClipboardManager {
		if err := b.startClipboard(); err != nil {
			return fmt.Errorf("bridge: clipboard: %w", err)
		}
	}

	inferior, err := b.spawnInferior(display)
	if err != nil {
		return err
	}
	b.inferior = inferior

	if err := notifyReady(); err != nil {
		b.Log.Warn().Err(err).Msg("sd_notify readiness failed")
	}
	return nil
}

// wireRestack installs the callback internal/wlproxy's Pointer calls before
// sending a pointer enter for a newly entered surface, on every seat pointer
// that exists when it runs; internal/xwm owns
// restacking decisions but only knows about Surfaces through the downstream
// id map the bridge keeps, hence the indirection through FindWindowBySurface.
func (b *Bridge) wireRestack() {
	restack := func(target *wlproxy.Surface) {
		w := b.WM.FindWindowBySurface(func(win *xwm.Window) bool { return win.Surface == target })
		if w != nil {
			b.WM.RestackForEnter(w)
		}
	}
	for _, seat := range b.Seats {
		if seat.Pointer != nil {
			seat.Pointer.RestackForEnter = restack
		}
	}
}

// announceWM takes WM_S0 ownership and publishes the private EWMH check
// window ICCCM-compliant clients look for to confirm a window manager is
// present.
func (b *Bridge) announceWM() error {
	id, err := b.XConn.NewId()
	if err != nil {
		return err
	}
	check := xproto.Window(id)
	xproto.CreateWindow(b.XConn, 0, check, b.XScreen.Root, -1, -1, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, 0, nil)

	name := "WLWM"
	xproto.ChangeProperty(b.XConn, xproto.PropModeReplace, check, b.Atoms.NetWMName, b.Atoms.UTF8String, 8, uint32(len(name)), []byte(name))

	var checkBuf [4]byte
	putU32(checkBuf[:], uint32(check))
	xproto.ChangeProperty(b.XConn, xproto.PropModeReplace, b.XScreen.Root, b.Atoms.NetSupportingWMCheck, xproto.AtomWindow, 32, 1, checkBuf[:])
	xproto.ChangeProperty(b.XConn, xproto.PropModeReplace, check, b.Atoms.NetSupportingWMCheck, xproto.AtomWindow, 32, 1, checkBuf[:])

	xproto.SetSelectionOwner(b.XConn, check, b.Atoms.WMS0, xproto.TimeCurrentTime)
	return nil
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// startClipboard creates the invisible window the clipboard bridge owns and
// wires it to one of the seats the host compositor advertised (the first one
// a map iteration over b.Seats yields, so not a fixed choice when there are
// several).
func (b *Bridge) startClipboard() error {
	var seat *wlproxy.Seat
	for _, s := range b.Seats {
		seat = s
		break
	}
	if seat == nil {
		return fmt.Errorf("no seat available for clipboard manager")
	}

	win, err := b.XConn.NewId()
	if err != nil {
		return err
	}
	cwin := xproto.Window(win)
	xproto.CreateWindow(b.XConn, 0, cwin, b.XScreen.Root, -1, -1, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwOverrideRedirect, []uint32{1})
	xproto.MapWindow(b.XConn, cwin)

	ddMgr := wlproxy.NewDataDeviceManager(wlproxy.HostResource{Upstream: b.DataDeviceManagerUpstream})
	cb := clipboard.New(b.Log, b.XConn, b.Atoms, cwin, b.Upstream, ddMgr, seat)
	cb.AllocUpstream = b.AllocUpstreamID
	cb.RegisterUpstream = b.RegisterUpstreamObject
	cb.WatchFD = b.WatchFD
	cb.UnwatchFD = b.UnwatchFD
	if err := cb.Start(); err != nil {
		return err
	}
	b.Clipboard = cb
	return nil
}

// visualsAndColormaps walks the screen's allowed depths and records one
// visual per depth along with a colormap for it; the root depth reuses the
// screen's own root visual/colormap, while every other depth that offers a
// visual (e.g. depth-32 ARGB) gets a colormap created for its first visual,
// since the root colormap doesn't match that visual.
func visualsAndColormaps(xc *xgb.Conn, screen *xproto.ScreenInfo) (map[byte]xproto.Visualid, map[byte]xproto.Colormap) {
	visuals := map[byte]xproto.Visualid{screen.RootDepth: screen.RootVisual}
	colormaps := map[byte]xproto.Colormap{screen.RootDepth: screen.DefaultColormap}

	for _, d := range screen.AllowedDepths {
		if d.Depth == screen.RootDepth || len(d.Visuals) == 0 {
			continue
		}
		visual := d.Visuals[0].VisualId
		visuals[d.Depth] = visual
		cmid, err := xc.NewId()
		if err != nil {
			continue
		}
		cm := xproto.Colormap(cmid)
		xproto.CreateColormap(xc, xproto.ColormapAllocNone, cm, screen.Root, visual)
		colormaps[d.Depth] = cm
	}
	return visuals, colormaps
}

// dialUpstreamSocket connects to the host compositor's Wayland socket named
// by WAYLAND_DISPLAY under XDG_RUNTIME_DIR, matching every other Wayland
// client's discovery rule.
func dialUpstreamSocket() (int, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return -1, fmt.Errorf("bridge: XDG_RUNTIME_DIR not set")
	}
	display := os.Getenv("WAYLAND_DISPLAY")
	if display == "" {
		display = "wayland-0"
	}
	path := display
	if !filepath.IsAbs(display) {
		path = filepath.Join(runtimeDir, display)
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("bridge: socket: %w", err)
	}
	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("bridge: connect %s: %w", path, err)
	}
	return fd, nil
}

// readDisplayNumber blocks until Xwayland writes its chosen display number
// followed by a newline to the displayfd pipe, per Xwayland's -displayfd
// contract.
func readDisplayNumber(fd int) (int, error) {
	var buf [32]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil {
		return 0, fmt.Errorf("bridge: read displayfd: %w", err)
	}
	s := strings.TrimSpace(string(buf[:n]))
	num, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bridge: malformed displayfd output %q: %w", s, err)
	}
	return num, nil
}

// roundtripUpstream sends wl_display.sync and blocks until the host
// compositor acks it, guaranteeing every globally-advertised object the
// compositor had at connect time has already reached OnGlobal. It returns an
// error if the connection stays silent for 5 seconds.
func (b *Bridge) roundtripUpstream() error {
	cbID := b.AllocUpstreamID()
	done := false
	b.RegisterUpstreamObject(cbID, func(msg wire.Message) {
		if msg.Opcode == wlproto.CallbackEventDone {
			done = true
		}
	})
	defer b.UnregisterUpstreamObject(cbID)

	var sb wire.Builder
	sb.PutObject(cbID)
	sendUpstream(b.Upstream, b.DisplayID, wlproto.DisplaySync, &sb)
	if err := b.Upstream.Flush(); err != nil {
		return fmt.Errorf("bridge: roundtrip flush: %w", err)
	}

	pfd := []unix.PollFd{{Fd: int32(b.Upstream.Fd()), Events: unix.POLLIN}}
	for !done {
		n, err := unix.Poll(pfd, 5000)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("bridge: roundtrip poll: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("bridge: timed out waiting for host compositor")
		}
		msgs, closed, err := b.Upstream.ReadMessages()
		if err != nil {
			return err
		}
		for _, m := range msgs {
			b.dispatchUpstream(m)
		}
		if closed {
			return fmt.Errorf("bridge: host compositor closed connection during startup")
		}
	}
	return nil
}
