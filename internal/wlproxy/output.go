package wlproxy

import (
	"math"

	"github.com/friedelschoen/xwl-run/internal/geom"
	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
)

// Mode is the upstream wl_output.mode payload we last saw.
type Mode struct {
	Flags   uint32
	Width   int32
	Height  int32
	Refresh int32
}

// Output is the C4 output/scale model: the effective logical size reported
// downstream is computed from the host mode, the output's current and
// maximum zaura_shell scale, and the bridge-wide scale knob.
type Output struct {
	Host HostResource

	ScaleCurrent float64
	ScaleMax     float64
	HaveMode     bool
	Mode         Mode

	pendingGeometry bool
}

// NewOutput constructs the proxy state for one upstream wl_output (the
// downstream global itself is advertised by internal/bridge); scale_current and scale_max both default to 1.0 until a
// zaura_output.scale event says otherwise, matching an output that never
// receives aura_output events (no zaura_shell global, or the host never
// emits one for this output).
func NewOutput(host HostResource) *Output {
	return &Output{
		Host:         host,
		ScaleCurrent: 1.0,
		ScaleMax:     1.0,
	}
}

// ApplyAuraScale handles a zaura_output.scale event: when the "current" flag
// bit is set, scale_current is updated; scale_max always tracks the running
// maximum of every factor reported so far, reset at the end of each mode
// round by Done.
func (o *Output) ApplyAuraScale(flags uint32, scalePercent uint32) {
	factor := float64(scalePercent) / 1000.0
	if flags&wlproto.AuraOutputScaleFactorFlagCurrent != 0 {
		o.ScaleCurrent = factor
	}
	if factor > o.ScaleMax {
		o.ScaleMax = factor
	}
}

// ApplyMode records the upstream wl_output.mode event for later use by Done.
func (o *Output) ApplyMode(flags uint32, width, height, refresh int32) {
	o.HaveMode = true
	o.Mode = Mode{Flags: flags, Width: width, Height: height, Refresh: refresh}
}

// Done computes the effective downstream mode from the global scale knob and
// this output's scale_current/scale_max, emits it followed by scale(1) and
// done on the downstream wl_output, and resets scale_max
// for the next round.
func (o *Output) Done(global geom.Scale, conn *wire.Conn) {
	if !o.HaveMode {
		return
	}
	w := int32(math.Floor(float64(global) * o.ScaleCurrent * float64(o.Mode.Width) / o.ScaleMax))
	h := int32(math.Floor(float64(global) * o.ScaleCurrent * float64(o.Mode.Height) / o.ScaleMax))

	var b wire.Builder
	b.PutUint32(o.Mode.Flags).PutInt32(w).PutInt32(h).PutInt32(o.Mode.Refresh)
	sendDownstream(conn, o.Host.Downstream, wlproto.OutputEventMode, &b)

	var sb wire.Builder
	sb.PutInt32(1)
	sendDownstream(conn, o.Host.Downstream, wlproto.OutputEventScale, &sb)

	var db wire.Builder
	sendDownstream(conn, o.Host.Downstream, wlproto.OutputEventDone, &db)

	o.ScaleMax = 1.0
}
