package wire

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Conn is one endpoint of a Wayland wire connection over a UNIX domain
// socket. The bridge uses the same Conn type symmetrically on both sides of
// the proxy: upstream, where it is a client of the host compositor, and
// downstream, where it is the server the X renderer's Wayland client
// connects to. Framing and fd-passing are identical in both directions; only
// which side allocates object ids and which tables in internal/wlproto apply
// differ, and that distinction is made by the caller, not by Conn itself.
type Conn struct {
	fd int

	mu    sync.Mutex
	wbuf  []byte
	wfds  []int
	rbuf  []byte
	roff  int
	rfds  []int
}

// NewConn wraps an already-connected, already-nonblocking-or-not unix
// socket fd.
func NewConn(fd int) *Conn {
	return &Conn{fd: fd}
}

func (c *Conn) Fd() int { return c.fd }

// Close closes the underlying socket.
func (c *Conn) Close() error {
	return unix.Close(c.fd)
}

// QueueMessage appends a fully-encoded message to the outbound buffer; call
// Flush to actually write it. Queuing (rather than writing immediately)
// lets the event loop batch all messages produced within one reactor
// iteration into a single flush.
func (c *Conn) QueueMessage(target ObjectID, opcode uint16, body []byte, fds []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var hdr [8]byte
	putU32(hdr[0:4], uint32(target))
	size := 8 + len(body)
	putU32(hdr[4:8], uint32(size)<<16|uint32(opcode))
	c.wbuf = append(c.wbuf, hdr[:]...)
	c.wbuf = append(c.wbuf, body...)
	c.wfds = append(c.wfds, fds...)
}

// Flush writes any queued messages to the socket, passing any queued fds as
// ancillary SCM_RIGHTS data on the first sendmsg call.
func (c *Conn) Flush() error {
	c.mu.Lock()
	buf := c.wbuf
	fds := c.wfds
	c.wbuf = nil
	c.wfds = nil
	c.mu.Unlock()

	if len(buf) == 0 {
		return nil
	}
	var oob []byte
	if len(fds) > 0 {
		oob = unix.UnixRights(fds...)
	}
	for len(buf) > 0 || len(oob) > 0 {
		n, _, err := unix.Sendmsg(c.fd, buf, oob, nil, 0)
		if err != nil {
			if err == unix.EAGAIN {
				continue
			}
			return fmt.Errorf("wire: sendmsg: %w", err)
		}
		buf = buf[n:]
		oob = nil // ancillary data only needs to ride on the first send
	}
	return nil
}

// ReadMessages drains any messages currently available without blocking, so
// a reactor can poll an fd-readable source until it goes dry in one
// iteration. It returns io.EOF-equivalent via a closed bool when the peer
// has disconnected.
func (c *Conn) ReadMessages() (msgs []Message, closed bool, err error) {
	for {
		var buf [4096]byte
		oob := make([]byte, unix.CmsgSpace(16*4))
		n, oobn, _, _, rerr := unix.Recvmsg(c.fd, buf[:], oob, unix.MSG_DONTWAIT)
		if rerr != nil {
			if rerr == unix.EAGAIN || rerr == unix.EWOULDBLOCK {
				break
			}
			return msgs, false, fmt.Errorf("wire: recvmsg: %w", rerr)
		}
		if n == 0 {
			return msgs, true, nil
		}
		c.rbuf = append(c.rbuf, buf[:n]...)
		if oobn > 0 {
			scms, perr := unix.ParseSocketControlMessage(oob[:oobn])
			if perr == nil {
				for _, scm := range scms {
					fds, ferr := unix.ParseUnixRights(&scm)
					if ferr == nil {
						c.rfds = append(c.rfds, fds...)
					}
				}
			}
		}
	}

	for {
		m, ok, perr := c.popMessage()
		if perr != nil {
			return msgs, false, perr
		}
		if !ok {
			break
		}
		msgs = append(msgs, m)
	}
	return msgs, false, nil
}

func (c *Conn) popMessage() (Message, bool, error) {
	b := c.rbuf[c.roff:]
	if len(b) < 8 {
		return Message{}, false, nil
	}
	sender := getU32(b[0:4])
	sizeOp := getU32(b[4:8])
	size := int(sizeOp >> 16)
	opcode := uint16(sizeOp & 0xffff)
	if size < 8 {
		return Message{}, false, fmt.Errorf("wire: invalid message size %d", size)
	}
	if len(b) < size {
		return Message{}, false, nil
	}
	body := make([]byte, size-8)
	copy(body, b[8:size])
	c.roff += size
	if c.roff == len(c.rbuf) {
		c.rbuf = c.rbuf[:0]
		c.roff = 0
	}
	var fds []int
	if len(c.rfds) > 0 {
		fds = c.rfds
		c.rfds = nil
	}
	return Message{Sender: ObjectID(sender), Opcode: opcode, Body: body, FDs: fds}, true, nil
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
