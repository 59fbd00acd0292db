package bridge

import (
	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
	"github.com/friedelschoen/xwl-run/internal/wlproxy"
)

// dispatchOutputEvent decodes one upstream wl_output event and applies it to
// the matching proxy output, flushing a mode/scale/done burst to the
// downstream global once a full round has been staged.
func (b *Bridge) dispatchOutputEvent(out *wlproxy.Output, msg wire.Message) {
	switch msg.Opcode {
	case wlproto.OutputEventGeometry:
		// Geometry carries no information the downstream global needs beyond
		// what Done already recomputes from mode, so it is only decoded to
		// validate the message and otherwise dropped.
		b.decodeOrLog("iiiissii", msg)
	case wlproto.OutputEventMode:
		dec := b.decodeOrLog("uiii", msg)
		if dec == nil {
			return
		}
		out.ApplyMode(dec[0].(uint32), dec[1].(int32), dec[2].(int32), dec[3].(int32))
	case wlproto.OutputEventDone:
		if b.decodeOrLog("", msg) == nil {
			return
		}
		out.Done(b.Scale, b.Downstream)
	case wlproto.OutputEventScale:
		// The integer buffer-scale event from core wl_output is superseded
		// by zaura_output.scale for outputs that have one; decode and
		// discard so an unexpected host that lacks zaura_shell still leaves
		// ScaleCurrent/ScaleMax at their 1.0 defaults.
		b.decodeOrLog("i", msg)
	}
}

// dispatchAuraOutputEvent decodes zaura_output.scale, the one event this
// bridge's aura_output binding cares about.
func (b *Bridge) dispatchAuraOutputEvent(out *wlproxy.Output, msg wire.Message) {
	if msg.Opcode != wlproto.AuraOutputEventScale {
		return
	}
	dec := b.decodeOrLog("uu", msg)
	if dec == nil {
		return
	}
	out.ApplyAuraScale(dec[0].(uint32), dec[1].(uint32))
}

// dispatchSeatEvent decodes one upstream wl_seat event and records it on the
// proxy seat: capabilities into seat.Capabilities, name into seat.Name. A
// capability change does not create or destroy any pointer/keyboard/touch
// proxy.
func (b *Bridge) dispatchSeatEvent(seat *wlproxy.Seat, msg wire.Message) {
	switch msg.Opcode {
	case wlproto.SeatEventCapabilities:
		dec := b.decodeOrLog("u", msg)
		if dec == nil {
			return
		}
		seat.Capabilities = dec[0].(uint32)
	case wlproto.SeatEventName:
		dec := b.decodeOrLog("s", msg)
		if dec == nil {
			return
		}
		seat.Name = dec[0].(string)
	}
}
