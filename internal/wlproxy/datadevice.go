package wlproxy

import (
	"github.com/friedelschoen/xwl-run/internal/wire"
	"github.com/friedelschoen/xwl-run/internal/wlproto"
)

// DataSource is the proxy half of wl_data_source; the clipboard bridge
// (internal/clipboard) owns the decision of which mime types to offer and
// reacts to Send/Cancelled, wlproxy only does the wire forwarding.
type DataSource struct {
	Host HostResource
}

func NewDataSource(host HostResource) *DataSource { return &DataSource{Host: host} }

func (s *DataSource) Offer(conn *wire.Conn, mime string) {
	var b wire.Builder
	b.PutString(mime)
	sendUpstream(conn, s.Host.Upstream, wlproto.DataSourceOffer, &b)
}

// Send forwards the upstream data_source.send event (compositor asking us,
// as the source, to write data for a peer) downstream, to the X renderer's
// Wayland client that created the source and holds the bytes to serve.
func (s *DataSource) Send(conn *wire.Conn, mime string, fd int) {
	var b wire.Builder
	b.PutString(mime).PutFD(fd)
	sendDownstream(conn, s.Host.Downstream, wlproto.DataSourceEventSend, &b)
}

func (s *DataSource) Cancelled(conn *wire.Conn) {
	var b wire.Builder
	sendDownstream(conn, s.Host.Downstream, wlproto.DataSourceEventCancelled, &b)
}

// DataOffer is the proxy half of wl_data_offer.
type DataOffer struct {
	Host HostResource
}

func NewDataOffer(host HostResource) *DataOffer { return &DataOffer{Host: host} }

func (o *DataOffer) OfferMime(conn *wire.Conn, mime string) {
	var b wire.Builder
	b.PutString(mime)
	sendDownstream(conn, o.Host.Downstream, wlproto.DataOfferEventOffer, &b)
}

// Receive forwards wl_data_offer.receive: the clipboard bridge supplies the
// write end of a pipe it will read the incoming bytes from.
func (o *DataOffer) Receive(conn *wire.Conn, mime string, writeFD int) {
	var b wire.Builder
	b.PutString(mime).PutFD(writeFD)
	sendUpstream(conn, o.Host.Upstream, wlproto.DataOfferReceive, &b)
}

// DataDevice is the proxy half of wl_data_device: selection plumbing only,
// no drag-and-drop per the stated Non-goal.
type DataDevice struct {
	Host HostResource
}

func NewDataDevice(host HostResource) *DataDevice { return &DataDevice{Host: host} }

func (d *DataDevice) SetSelection(conn *wire.Conn, source *DataSource, serial uint32) {
	var b wire.Builder
	if source != nil {
		b.PutObject(source.Host.Upstream)
	} else {
		b.PutObject(0)
	}
	b.PutUint32(serial)
	sendUpstream(conn, d.Host.Upstream, wlproto.DataDeviceSetSelection, &b)
}

// Selection forwards the upstream data_device.selection event downstream,
// with offer possibly nil (selection cleared).
func (d *DataDevice) Selection(conn *wire.Conn, offer *DataOffer) {
	var b wire.Builder
	if offer != nil {
		b.PutObject(offer.Host.Downstream)
	} else {
		b.PutObject(0)
	}
	sendDownstream(conn, d.Host.Downstream, wlproto.DataDeviceEventSelection, &b)
}

// DataDeviceManager creates DataSource/DataDevice pairs.
type DataDeviceManager struct {
	Host HostResource
}

func NewDataDeviceManager(host HostResource) *DataDeviceManager {
	return &DataDeviceManager{Host: host}
}

func (m *DataDeviceManager) CreateDataSource(conn *wire.Conn, host HostResource) *DataSource {
	var b wire.Builder
	b.PutObject(host.Upstream)
	sendUpstream(conn, m.Host.Upstream, wlproto.DataDeviceManagerCreateDataSource, &b)
	return NewDataSource(host)
}

func (m *DataDeviceManager) GetDataDevice(conn *wire.Conn, host HostResource, seat *Seat) *DataDevice {
	var b wire.Builder
	b.PutObject(host.Upstream).PutObject(seat.Host.Upstream)
	sendUpstream(conn, m.Host.Upstream, wlproto.DataDeviceManagerGetDataDevice, &b)
	return NewDataDevice(host)
}
