package bridge

import "github.com/friedelschoen/xwl-run/internal/wire"

// sendUpstream and sendDownstream mirror the small per-package helpers in
// internal/wlproxy and internal/xwm: build the message body with a
// wire.Builder and queue it on the given connection. internal/bridge needs
// its own copies since wire.Conn exposes no free function for this and the
// three packages intentionally don't share code across the package
// boundary beyond the wire/wlproto tables themselves.
func sendUpstream(c *wire.Conn, id wire.ObjectID, opcode uint16, b *wire.Builder) {
	c.QueueMessage(id, opcode, b.Bytes(), b.FDs())
}

func sendDownstream(c *wire.Conn, id wire.ObjectID, opcode uint16, b *wire.Builder) {
	c.QueueMessage(id, opcode, b.Bytes(), b.FDs())
}
