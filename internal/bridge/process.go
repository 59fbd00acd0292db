package bridge

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"golang.org/x/sys/unix"
)

// xRendererArgv builds the Xwayland invocation: display number (if
// pinned), -nolisten tcp, -rootless, either -drm or -shm depending on
// whether a DRM device is configured without glamor, -displayfd and -wm
// pointing at the fds the supervisor set up.
func xRendererArgv(cfg xRendererConfig) []string {
	argv := []string{"Xwayland"}
	if cfg.Display >= 0 {
		argv = append(argv, fmt.Sprintf(":%d", cfg.Display))
	}
	argv = append(argv, "-nolisten", "tcp", "-rootless")
	if cfg.DRMDevice != "" && !cfg.Glamor {
		argv = append(argv, "-drm")
	} else {
		argv = append(argv, "-shm")
	}
	argv = append(argv, "-displayfd", strconv.Itoa(cfg.DisplayFD), "-wm", strconv.Itoa(cfg.WMFD))
	return argv
}

type xRendererConfig struct {
	Display   int
	DRMDevice string
	Glamor    bool
	DisplayFD int
	WMFD      int
}

// childFDBase is the fd number exec.Cmd.ExtraFiles always assigns its first
// entry in the child (fd 0-2 are stdin/stdout/stderr); the second and third
// entries land at childFDBase+1 and childFDBase+2 regardless of what number
// each fd happened to have in this process.
const childFDBase = 3

// spawnXRenderer forks and execs the X renderer with the wayland-socket fd,
// the display-ready pipe write end, and the WM X connection fd all
// inherited (close-on-exec cleared on exactly those three). wlSocketFD,
// displayFD and wmFD are this process's descriptor numbers; the child sees
// them renumbered to childFDBase, childFDBase+1, childFDBase+2 by
// cmd.ExtraFiles, so argv and the environment reference the child-side
// numbers, never the parent-side ones.
func (b *Bridge) spawnXRenderer(wlSocketFD, displayFD, wmFD int) (*os.Process, error) {
	argv := xRendererArgv(xRendererConfig{
		Display:   b.Cfg.Display,
		DRMDevice: b.Cfg.DRMDevice,
		Glamor:    b.Cfg.Glamor,
		DisplayFD: childFDBase + 1,
		WMFD:      childFDBase + 2,
	})
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("WAYLAND_SOCKET=%d", childFDBase))
	cmd.ExtraFiles = extraFilesFor(wlSocketFD, displayFD, wmFD)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("bridge: spawn x renderer: %w", err)
	}
	return cmd.Process, nil
}

// extraFilesFor builds the ExtraFiles slice so that the child process sees
// the given fds starting at fd 3, matching the numbers baked into argv and
// the WAYLAND_SOCKET env var by the caller.
func extraFilesFor(fds ...int) []*os.File {
	files := make([]*os.File, 0, len(fds))
	for _, fd := range fds {
		files = append(files, os.NewFile(uintptr(fd), ""))
	}
	return files
}

// spawnInferior forks and execs the inferior program with DISPLAY exported,
// once the X renderer has published its display name.
func (b *Bridge) spawnInferior(display string) (*os.Process, error) {
	if len(b.Cfg.ProgramArgs) == 0 && b.Cfg.Program == "" {
		return nil, fmt.Errorf("bridge: no inferior program configured")
	}
	cmd := exec.Command(b.Cfg.Program, b.Cfg.ProgramArgs...)
	cmd.Env = append(os.Environ(),
		"DISPLAY="+display,
		"XWL_VERSION="+xwlVersion,
	)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("bridge: spawn inferior: %w", err)
	}
	return cmd.Process, nil
}

const xwlVersion = "1"

// notifyReady emits the sd_notify-style "READY=1" datagram to NOTIFY_SOCKET
// if set, signaling service readiness to a supervising init. Absence of
// NOTIFY_SOCKET (no supervising init, e.g. running under a plain shell) is
// not an error.
func notifyReady() error {
	sock := os.Getenv("NOTIFY_SOCKET")
	if sock == "" {
		return nil
	}
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_DGRAM, 0)
	if err != nil {
		return fmt.Errorf("bridge: notify socket: %w", err)
	}
	defer unix.Close(fd)
	addr := &unix.SockaddrUnix{Name: sock}
	if sock[0] == '@' {
		addr.Name = "\x00" + sock[1:]
	}
	if err := unix.Connect(fd, addr); err != nil {
		return fmt.Errorf("bridge: notify connect: %w", err)
	}
	_, err = unix.Write(fd, []byte("READY=1"))
	return err
}
