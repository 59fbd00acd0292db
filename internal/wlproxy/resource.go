// Package wlproxy implements the proxy resources (surface, buffer,
// shm-pool, shm, seat/pointer/keyboard/touch, output, data-device,
// drm-via-dmabuf, viewporter) and the output/scale model that sit between
// the upstream Wayland connection to the host compositor and the
// downstream Wayland connection the X renderer's Wayland client uses.
package wlproxy

import "github.com/friedelschoen/xwl-run/internal/wire"

// HostResource is the pair every proxied interface is built from: a
// downstream handle given out to the X renderer's Wayland client, and the
// upstream proxy object bound on the host compositor it mirrors. A host
// resource exclusively owns its upstream proxy; destroying either side
// deallocates the pair.
type HostResource struct {
	Downstream wire.ObjectID
	Upstream   wire.ObjectID
}

// Conns bundles the two wire connections every proxy resource forwards
// between. Passed by value into constructors so none of wlproxy needs to
// import internal/bridge.
type Conns struct {
	Upstream   *wire.Conn
	Downstream *wire.Conn
}

// sendUpstream is a small helper shared by every resource type: build the
// request body with a wire.Builder and queue it on the upstream connection.
func sendUpstream(c *wire.Conn, id wire.ObjectID, opcode uint16, b *wire.Builder) {
	c.QueueMessage(id, opcode, b.Bytes(), b.FDs())
}

func sendDownstream(c *wire.Conn, id wire.ObjectID, opcode uint16, b *wire.Builder) {
	c.QueueMessage(id, opcode, b.Bytes(), b.FDs())
}
