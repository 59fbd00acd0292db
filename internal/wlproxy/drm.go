package wlproxy

import (
	"fmt"

	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
)

// Format codes the DRM shim advertises. These are
// the standard fourcc values (DRM_FORMAT_ARGB8888 and friends); no public Go
// package in the retrieval pack models the DRM fourcc table, so the three
// constants this bridge actually needs are named directly rather than
// pulling in a whole fourcc package for three values.
const (
	formatARGB8888 = 0x34325241
	formatXRGB8888 = 0x34325258
	formatRGB565   = 0x36314752
)

// Drm implements a DRM-compatibility shim over zwp_linux_dmabuf_v1: it
// presents a wl_drm-shaped interface downstream, with
// every buffer actually imported as a single-plane dmabuf upstream.
type Drm struct {
	Host HostResource

	Dmabuf       wire.ObjectID // upstream zwp_linux_dmabuf_v1
	DmabufVersion uint32
	Device       string
	HasPrime     bool
}

func NewDrm(host HostResource, dmabuf wire.ObjectID, dmabufVersion uint32, device string) *Drm {
	return &Drm{Host: host, Dmabuf: dmabuf, DmabufVersion: dmabufVersion, Device: device, HasPrime: true}
}

// Advertise emits the device name, the three supported formats, and the
// PRIME capability, matching a real wl_drm global's startup event burst.
func (d *Drm) Advertise(conn *wire.Conn) {
	var devB wire.Builder
	devB.PutString(d.Device)
	sendDownstream(conn, d.Host.Downstream, wlproto.DrmEventDevice, &devB)

	for _, f := range []uint32{formatARGB8888, formatXRGB8888, formatRGB565} {
		var fb wire.Builder
		fb.PutUint32(f)
		sendDownstream(conn, d.Host.Downstream, wlproto.DrmEventFormat, &fb)
	}

	var capB wire.Builder
	capB.PutUint32(wlproto.DrmCapabilityPrime)
	sendDownstream(conn, d.Host.Downstream, wlproto.DrmEventCapabilities, &capB)
}

// CreatePrimeBuffer wraps a single-plane imported fd into a
// zwp_linux_buffer_params_v1 transaction and returns the resulting upstream
// buffer proxy, implementing the one supported create_* variant.
func (d *Drm) CreatePrimeBuffer(conn *wire.Conn, paramsUpstream wire.ObjectID, bufferHost HostResource, fd int, width, height int32, format uint32, stride, offset uint32) *Buffer {
	var addB wire.Builder
	addB.PutFD(fd).PutUint32(0).PutUint32(offset).PutUint32(stride).PutUint32(0).PutUint32(0)
	sendUpstream(conn, paramsUpstream, wlproto.LinuxBufferParamsAdd, &addB)

	var createB wire.Builder
	createB.PutObject(bufferHost.Upstream).PutInt32(width).PutInt32(height).PutUint32(format).PutUint32(0)
	sendUpstream(conn, paramsUpstream, wlproto.LinuxBufferParamsCreateImmed, &createB)

	return &Buffer{Host: bufferHost, Width: int(width), Height: int(height)}
}

// AssertPrimeOnly reports the other create_* variants as unsupported.
func AssertPrimeOnly(variant string) error {
	return fmt.Errorf("wlproxy: drm shim only implements create_prime_buffer, got %s", variant)
}
