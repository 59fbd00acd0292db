package wlproxy

import (
	"golang.org/x/sys/unix"

	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
)

// Buffer is a one-shot proxy: the only event it ever forwards is release.
// Width/Height are recorded at creation time since wl_surface.attach's wire
// form carries only the buffer id and a hotspot offset, never a size —
// Surface needs the size to compute contents size and viewport destination.
type Buffer struct {
	Host          HostResource
	Width, Height int
}

func NewBuffer(host HostResource) *Buffer { return &Buffer{Host: host} }

// Release forwards the upstream wl_buffer.release event downstream.
func (buf *Buffer) Release(conn *wire.Conn) {
	var b wire.Builder
	sendDownstream(conn, buf.Host.Downstream, wlproto.BufferEventRelease, &b)
}

// Destroy tears down the upstream buffer proxy.
func (buf *Buffer) Destroy(conn *wire.Conn) {
	var b wire.Builder
	sendUpstream(conn, buf.Host.Upstream, wlproto.BufferDestroy, &b)
}

// ShmPool is a trivial fd-carrying forward: wl_shm.create_pool hands the
// client's fd to the upstream wl_shm, and the client's own fd is closed
// once handed off.
type ShmPool struct {
	Host HostResource
}

// CreateShmPool forwards wl_shm.create_pool, duplicating clientFD to the
// upstream connection's fd namespace via SCM_RIGHTS and then closing the
// client-supplied descriptor, since ownership transfers to the host
// compositor's pool.
func CreateShmPool(conn *wire.Conn, upstreamShm wire.ObjectID, host HostResource, clientFD int, size int32) *ShmPool {
	var b wire.Builder
	b.PutObject(host.Upstream).PutFD(clientFD).PutInt32(size)
	sendUpstream(conn, upstreamShm, wlproto.ShmCreatePool, &b)
	_ = unix.Close(clientFD)
	return &ShmPool{Host: host}
}

// CreateBuffer forwards wl_shm_pool.create_buffer.
func (p *ShmPool) CreateBuffer(conn *wire.Conn, host HostResource, offset, width, height, stride, format int32) *Buffer {
	var b wire.Builder
	b.PutObject(host.Upstream).PutInt32(offset).PutInt32(width).PutInt32(height).PutInt32(stride).PutInt32(format)
	sendUpstream(conn, p.Host.Upstream, wlproto.ShmPoolCreateBuffer, &b)
	return &Buffer{Host: host, Width: int(width), Height: int(height)}
}

func (p *ShmPool) Resize(conn *wire.Conn, size int32) {
	var b wire.Builder
	b.PutInt32(size)
	sendUpstream(conn, p.Host.Upstream, wlproto.ShmPoolResize, &b)
}

func (p *ShmPool) Destroy(conn *wire.Conn) {
	var b wire.Builder
	sendUpstream(conn, p.Host.Upstream, wlproto.ShmPoolDestroy, &b)
}
