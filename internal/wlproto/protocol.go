// Package wlproto holds the Wayland protocol tables the bridge needs:
// opcode constants and wire signatures for every request and event of every
// interface the bridge proxies. The same tables serve both directions of
// the proxy — as the downstream server talking to the X renderer's Wayland
// client, request opcodes/signatures in this file are what we dispatch on
// and event opcodes/signatures are what we send; as the upstream client
// talking to the host compositor, the roles invert, but the opcode numbers
// and signature strings are the same wire protocol either way. Decoding and
// encoding itself is done by internal/wire; this package only supplies the
// per-interface metadata, in the same one-table-per-interface shape
// dominikh-go-libwayland uses for its cgo dispatch tables, translated to
// pure Go.
package wlproto

// Request opcodes, grouped per interface. Matches the stable core Wayland
// protocol (wayland.xml) plus the extension protocols the bridge proxies.

// wl_display
const (
	DisplaySync = iota
	DisplayGetRegistry
)

var DisplayRequestSig = []string{
	DisplaySync:        "n",
	DisplayGetRegistry: "n",
}

const (
	DisplayEventError = iota
	DisplayEventDeleteID
)

// wl_registry
const (
	RegistryBind = iota
)

var RegistryRequestSig = []string{
	RegistryBind: "usun",
}

const (
	RegistryEventGlobal = iota
	RegistryEventGlobalRemove
)

// wl_callback
const (
	CallbackEventDone = iota
)

// wl_compositor
const (
	CompositorCreateSurface = iota
	CompositorCreateRegion
)

var CompositorRequestSig = []string{
	CompositorCreateSurface: "n",
	CompositorCreateRegion:  "n",
}

// wl_surface
const (
	SurfaceDestroy = iota
	SurfaceAttach
	SurfaceDamage
	SurfaceFrame
	SurfaceSetOpaqueRegion
	SurfaceSetInputRegion
	SurfaceCommit
	SurfaceSetBufferTransform
	SurfaceSetBufferScale
	SurfaceDamageBuffer
	SurfaceOffset
)

var SurfaceRequestSig = []string{
	SurfaceDestroy:            "",
	SurfaceAttach:             "?oii",
	SurfaceDamage:             "iiii",
	SurfaceFrame:              "n",
	SurfaceSetOpaqueRegion:    "?o",
	SurfaceSetInputRegion:     "?o",
	SurfaceCommit:             "",
	SurfaceSetBufferTransform: "i",
	SurfaceSetBufferScale:     "i",
	SurfaceDamageBuffer:       "iiii",
	SurfaceOffset:             "ii",
}

const (
	SurfaceEventEnter = iota
	SurfaceEventLeave
	SurfaceEventPreferredBufferScale
	SurfaceEventPreferredBufferTransform
)

// wl_shm
const (
	ShmCreatePool = iota
)

var ShmRequestSig = []string{ShmCreatePool: "nhi"}

const ShmEventFormat = 0

// wl_shm_pool
const (
	ShmPoolCreateBuffer = iota
	ShmPoolDestroy
	ShmPoolResize
)

var ShmPoolRequestSig = []string{
	ShmPoolCreateBuffer: "niiiiu",
	ShmPoolDestroy:      "",
	ShmPoolResize:       "i",
}

// wl_buffer
const (
	BufferDestroy = iota
)

var BufferRequestSig = []string{BufferDestroy: ""}

const BufferEventRelease = 0

// wl_seat
const (
	SeatGetPointer = iota
	SeatGetKeyboard
	SeatGetTouch
	SeatRelease
)

var SeatRequestSig = []string{
	SeatGetPointer:  "n",
	SeatGetKeyboard: "n",
	SeatGetTouch:    "n",
	SeatRelease:     "",
}

const (
	SeatEventCapabilities = iota
	SeatEventName
)

// wl_pointer
const (
	PointerSetCursor = iota
	PointerRelease
)

var PointerRequestSig = []string{
	PointerSetCursor: "u?oii",
	PointerRelease:   "",
}

const (
	PointerEventEnter = iota
	PointerEventLeave
	PointerEventMotion
	PointerEventButton
	PointerEventAxis
	PointerEventFrame
)

// wl_keyboard
const (
	KeyboardRelease = iota
)

var KeyboardRequestSig = []string{KeyboardRelease: ""}

const (
	KeyboardEventKeymap = iota
	KeyboardEventEnter
	KeyboardEventLeave
	KeyboardEventKey
	KeyboardEventModifiers
	KeyboardEventRepeatInfo
)

// wl_touch
const (
	TouchRelease = iota
)

var TouchRequestSig = []string{TouchRelease: ""}

const (
	TouchEventDown = iota
	TouchEventUp
	TouchEventMotion
	TouchEventFrame
	TouchEventCancel
)

// wl_output
const (
	OutputRelease = iota
)

var OutputRequestSig = []string{OutputRelease: ""}

const (
	OutputEventGeometry = iota
	OutputEventMode
	OutputEventDone
	OutputEventScale
)

// wl_data_device_manager
const (
	DataDeviceManagerCreateDataSource = iota
	DataDeviceManagerGetDataDevice
)

var DataDeviceManagerRequestSig = []string{
	DataDeviceManagerCreateDataSource: "n",
	DataDeviceManagerGetDataDevice:    "no",
}

// wl_data_source
const (
	DataSourceOffer = iota
	DataSourceDestroy
	DataSourceSetActions
)

var DataSourceRequestSig = []string{
	DataSourceOffer:      "s",
	DataSourceDestroy:    "",
	DataSourceSetActions: "u",
}

const (
	DataSourceEventTarget = iota
	DataSourceEventSend
	DataSourceEventCancelled
	DataSourceEventDnDDropPerformed
	DataSourceEventDnDFinished
	DataSourceEventAction
)

// wl_data_offer
const (
	DataOfferAccept = iota
	DataOfferReceive
	DataOfferDestroy
	DataOfferFinish
	DataOfferSetActions
)

var DataOfferRequestSig = []string{
	DataOfferAccept:     "u?s",
	DataOfferReceive:    "sh",
	DataOfferDestroy:    "",
	DataOfferFinish:     "",
	DataOfferSetActions: "uu",
}

const (
	DataOfferEventOffer = iota
	DataOfferEventSourceActions
	DataOfferEventAction
)

// wl_data_device
const (
	DataDeviceStartDrag = iota
	DataDeviceSetSelection
	DataDeviceRelease
)

var DataDeviceRequestSig = []string{
	DataDeviceStartDrag:    "?o?ou",
	DataDeviceSetSelection: "?ou",
	DataDeviceRelease:      "",
}

const (
	DataDeviceEventDataOffer = iota
	DataDeviceEventEnter
	DataDeviceEventLeave
	DataDeviceEventMotion
	DataDeviceEventDrop
	DataDeviceEventSelection
)

// wl_shell, the legacy pre-xdg-shell surface-role protocol. No window this
// bridge manages is ever given a role through it (C5's window model drives
// zxdg_shell_v6 directly against the host compositor instead); it is
// mirrored purely so a client inside the rootless session that still binds
// it against the X renderer's Wayland connection does not see the global
// missing outright.
const (
	ShellGetShellSurface = iota
)

var ShellRequestSig = []string{
	ShellGetShellSurface: "no",
}

// wl_shell_surface
const (
	ShellSurfacePong = iota
	ShellSurfaceMove
	ShellSurfaceResize
	ShellSurfaceSetToplevel
	ShellSurfaceSetTransient
	ShellSurfaceSetFullscreen
	ShellSurfaceSetPopup
	ShellSurfaceSetMaximized
	ShellSurfaceSetTitle
	ShellSurfaceSetClass
)

var ShellSurfaceRequestSig = []string{
	ShellSurfacePong:          "u",
	ShellSurfaceMove:          "ou",
	ShellSurfaceResize:        "ouu",
	ShellSurfaceSetToplevel:   "",
	ShellSurfaceSetTransient:  "oiiu",
	ShellSurfaceSetFullscreen: "uu?o",
	ShellSurfaceSetPopup:      "ouoiiu",
	ShellSurfaceSetMaximized:  "?o",
	ShellSurfaceSetTitle:      "s",
	ShellSurfaceSetClass:      "s",
}

const (
	ShellSurfaceEventPing = iota
	ShellSurfaceEventConfigure
	ShellSurfaceEventPopupDone
)
