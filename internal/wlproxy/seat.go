package wlproxy

import (
	"github.com/friedelschoen/xwl-run/internal/geom"
	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
)

// Seat is the C3 proxy resource for wl_seat: it owns pointer/keyboard/touch
// sub-resources on demand and tracks the last serial any of them produced,
// the serial the X renderer must echo back for _NET_WM_MOVERESIZE.
type Seat struct {
	Host       HostResource
	Capabilities uint32
	Name       string

	LastSerial uint32

	Pointer  *Pointer
	Keyboard *Keyboard
	Touch    *Touch
}

func NewSeat(host HostResource) *Seat { return &Seat{Host: host} }

func (s *Seat) bumpSerial(serial uint32) {
	if serial != 0 {
		s.LastSerial = serial
	}
}

// Pointer tracks the one downstream surface currently entered, clearing it
// via a destroy listener on the target surface: Pointer never owns the
// surface it points at.
type Pointer struct {
	Host HostResource
	Seat *Seat

	focus       *Surface
	focusHostID wire.ObjectID

	// RestackForEnter is invoked with the about-to-be-entered surface
	// before the enter event is sent downstream, so the focus and
	// restacking controller (C6, internal/xwm) can reorder X stacking
	// first. wlproxy cannot import internal/xwm directly — bridge wiring
	// sets this hook after constructing both.
	RestackForEnter func(target *Surface)
}

func NewPointer(seat *Seat, host HostResource) *Pointer {
	return &Pointer{Host: host, Seat: seat}
}

// Enter applies the leave-then-restack-then-enter sequence.
func (p *Pointer) Enter(conn *wire.Conn, scale geom.Scale, serial uint32, target *Surface, targetHostID wire.ObjectID, x, y float64) {
	p.Seat.bumpSerial(serial)
	if p.focus == target {
		return
	}
	if p.focus != nil {
		p.sendLeave(conn, serial)
	}
	if p.RestackForEnter != nil {
		p.RestackForEnter(target)
	}
	p.focus = target
	p.focusHostID = targetHostID
	if target != nil {
		target.OnDestroy(func() {
			if p.focus == target {
				p.sendLeave(conn, serial)
				p.focus = nil
			}
		})
		target.LastEventSerial = serial
	}

	var b wire.Builder
	b.PutUint32(serial)
	if target != nil {
		b.PutObject(targetHostID)
	} else {
		b.PutObject(0)
	}
	b.PutFixed(wire.FixedFromFloat(float64(scale.ToGuest(x)))).PutFixed(wire.FixedFromFloat(float64(scale.ToGuest(y))))
	sendDownstream(conn, p.Host.Downstream, wlproto.PointerEventEnter, &b)
}

func (p *Pointer) sendLeave(conn *wire.Conn, serial uint32) {
	if p.focus == nil {
		return
	}
	var b wire.Builder
	b.PutUint32(serial).PutObject(p.focusHostID)
	sendDownstream(conn, p.Host.Downstream, wlproto.PointerEventLeave, &b)
}

// Motion forwards a scaled motion event.
func (p *Pointer) Motion(conn *wire.Conn, scale geom.Scale, time uint32, x, y float64) {
	var b wire.Builder
	b.PutUint32(time)
	b.PutFixed(wire.FixedFromFloat(float64(scale.ToGuest(x)))).PutFixed(wire.FixedFromFloat(float64(scale.ToGuest(y))))
	sendDownstream(conn, p.Host.Downstream, wlproto.PointerEventMotion, &b)
}

// Button forwards a button event and bumps the focused surface's serial.
func (p *Pointer) Button(conn *wire.Conn, serial, time, button, state uint32) {
	p.Seat.bumpSerial(serial)
	if p.focus != nil {
		p.focus.LastEventSerial = serial
	}
	var b wire.Builder
	b.PutUint32(serial).PutUint32(time).PutUint32(button).PutUint32(state)
	sendDownstream(conn, p.Host.Downstream, wlproto.PointerEventButton, &b)
}

func (p *Pointer) Release(conn *wire.Conn) {
	var b wire.Builder
	sendUpstream(conn, p.Host.Upstream, wlproto.PointerRelease, &b)
}

// Keyboard mirrors Pointer's focus-tracking shape for wl_keyboard.
type Keyboard struct {
	Host HostResource
	Seat *Seat

	focus       *Surface
	focusHostID wire.ObjectID
}

func NewKeyboard(seat *Seat, host HostResource) *Keyboard {
	return &Keyboard{Host: host, Seat: seat}
}

func (k *Keyboard) Enter(conn *wire.Conn, serial uint32, target *Surface, targetHostID wire.ObjectID, keys []byte) {
	k.Seat.bumpSerial(serial)
	if k.focus == target {
		return
	}
	if k.focus != nil {
		k.sendLeave(conn, serial)
	}
	k.focus = target
	k.focusHostID = targetHostID
	if target != nil {
		target.OnDestroy(func() {
			if k.focus == target {
				k.sendLeave(conn, serial)
				k.focus = nil
			}
		})
		target.LastEventSerial = serial
	}
	var b wire.Builder
	b.PutUint32(serial)
	if target != nil {
		b.PutObject(targetHostID)
	} else {
		b.PutObject(0)
	}
	b.PutArray(keys)
	sendDownstream(conn, k.Host.Downstream, wlproto.KeyboardEventEnter, &b)
}

func (k *Keyboard) sendLeave(conn *wire.Conn, serial uint32) {
	if k.focus == nil {
		return
	}
	var b wire.Builder
	b.PutUint32(serial).PutObject(k.focusHostID)
	sendDownstream(conn, k.Host.Downstream, wlproto.KeyboardEventLeave, &b)
}

func (k *Keyboard) Key(conn *wire.Conn, serial, time, key, state uint32) {
	k.Seat.bumpSerial(serial)
	if k.focus != nil {
		k.focus.LastEventSerial = serial
	}
	var b wire.Builder
	b.PutUint32(serial).PutUint32(time).PutUint32(key).PutUint32(state)
	sendDownstream(conn, k.Host.Downstream, wlproto.KeyboardEventKey, &b)
}

func (k *Keyboard) Release(conn *wire.Conn) {
	var b wire.Builder
	sendUpstream(conn, k.Host.Upstream, wlproto.KeyboardRelease, &b)
}

// Touch mirrors the same focus-tracking shape for wl_touch, keyed by touch
// point id rather than a single current focus (a real multi-touch device can
// have several concurrent contacts): each touch point's serial is
// attributed to its own contact's surface, not to a seat-wide notion of
// focus.
type Touch struct {
	Host HostResource
	Seat *Seat

	points map[int32]*Surface
}

func NewTouch(seat *Seat, host HostResource) *Touch {
	return &Touch{Host: host, Seat: seat, points: make(map[int32]*Surface)}
}

func (t *Touch) Down(conn *wire.Conn, scale geom.Scale, serial, time uint32, id int32, target *Surface, targetHostID wire.ObjectID, x, y float64) {
	t.Seat.bumpSerial(serial)
	t.points[id] = target
	if target != nil {
		target.LastEventSerial = serial
		target.OnDestroy(func() {
			if t.points[id] == target {
				delete(t.points, id)
			}
		})
	}
	var b wire.Builder
	b.PutUint32(serial).PutUint32(time)
	if target != nil {
		b.PutObject(targetHostID)
	} else {
		b.PutObject(0)
	}
	b.PutInt32(id)
	b.PutFixed(wire.FixedFromFloat(float64(scale.ToGuest(x)))).PutFixed(wire.FixedFromFloat(float64(scale.ToGuest(y))))
	sendDownstream(conn, t.Host.Downstream, wlproto.TouchEventDown, &b)
}

func (t *Touch) Up(conn *wire.Conn, serial, time uint32, id int32) {
	delete(t.points, id)
	var b wire.Builder
	b.PutUint32(serial).PutUint32(time).PutInt32(id)
	sendDownstream(conn, t.Host.Downstream, wlproto.TouchEventUp, &b)
}

func (t *Touch) Release(conn *wire.Conn) {
	var b wire.Builder
	sendUpstream(conn, t.Host.Upstream, wlproto.TouchRelease, &b)
}
