package wlproto

// zxdg_shell_v6 and friends. The bridge speaks the unstable v6 variant
// rather than the later stable xdg_wm_base, matching the ChromeOS X-to-
// Wayland bridge this protocol surface is modeled on.
const (
	XdgShellV6Destroy = iota
	XdgShellV6CreatePositioner
	XdgShellV6GetXdgSurface
	XdgShellV6Pong
)

var XdgShellV6RequestSig = []string{
	XdgShellV6Destroy:          "",
	XdgShellV6CreatePositioner: "n",
	XdgShellV6GetXdgSurface:    "no",
	XdgShellV6Pong:             "u",
}

const XdgShellV6EventPing = 0

const (
	XdgSurfaceV6Destroy = iota
	XdgSurfaceV6GetToplevel
	XdgSurfaceV6GetPopup
	XdgSurfaceV6SetWindowGeometry
	XdgSurfaceV6AckConfigure
)

var XdgSurfaceV6RequestSig = []string{
	XdgSurfaceV6Destroy:           "",
	XdgSurfaceV6GetToplevel:       "n",
	XdgSurfaceV6GetPopup:          "noo",
	XdgSurfaceV6SetWindowGeometry: "iiii",
	XdgSurfaceV6AckConfigure:      "u",
}

const XdgSurfaceV6EventConfigure = 0

const (
	XdgToplevelV6Destroy = iota
	XdgToplevelV6SetParent
	XdgToplevelV6SetTitle
	XdgToplevelV6SetAppID
	XdgToplevelV6ShowWindowMenu
	XdgToplevelV6Move
	XdgToplevelV6Resize
	XdgToplevelV6SetMaxSize
	XdgToplevelV6SetMinSize
	XdgToplevelV6SetMaximized
	XdgToplevelV6UnsetMaximized
	XdgToplevelV6SetFullscreen
	XdgToplevelV6UnsetFullscreen
	XdgToplevelV6SetMinimized
)

var XdgToplevelV6RequestSig = []string{
	XdgToplevelV6Destroy:        "",
	XdgToplevelV6SetParent:      "?o",
	XdgToplevelV6SetTitle:       "s",
	XdgToplevelV6SetAppID:       "s",
	XdgToplevelV6ShowWindowMenu: "ouii",
	XdgToplevelV6Move:           "ou",
	XdgToplevelV6Resize:         "ouu",
	XdgToplevelV6SetMaxSize:     "ii",
	XdgToplevelV6SetMinSize:     "ii",
	XdgToplevelV6SetMaximized:   "",
	XdgToplevelV6UnsetMaximized: "",
	XdgToplevelV6SetFullscreen:  "?o",
	XdgToplevelV6UnsetFullscreen: "",
	XdgToplevelV6SetMinimized:   "",
}

const (
	XdgToplevelV6EventConfigure = iota
	XdgToplevelV6EventClose
)

// xdg_toplevel_v6 state enum values, carried in the Configure event's
// states array.
const (
	XdgToplevelV6StateMaximized = 1
	XdgToplevelV6StateFullscreen = 2
	XdgToplevelV6StateResizing  = 3
	XdgToplevelV6StateActivated = 4
)

const (
	XdgPopupV6Destroy = iota
	XdgPopupV6Grab
)

var XdgPopupV6RequestSig = []string{
	XdgPopupV6Destroy: "",
	XdgPopupV6Grab:     "ou",
}

const (
	XdgPopupV6EventConfigure = iota
	XdgPopupV6EventPopupDone
)

const (
	PositionerV6Destroy = iota
	PositionerV6SetSize
	PositionerV6SetAnchorRect
	PositionerV6SetAnchor
	PositionerV6SetGravity
	PositionerV6SetConstraintAdjustment
	PositionerV6SetOffset
)

var PositionerV6RequestSig = []string{
	PositionerV6Destroy:                 "",
	PositionerV6SetSize:                 "ii",
	PositionerV6SetAnchorRect:           "iiii",
	PositionerV6SetAnchor:               "u",
	PositionerV6SetGravity:              "u",
	PositionerV6SetConstraintAdjustment: "u",
	PositionerV6SetOffset:               "ii",
}

const (
	PositionerV6AnchorTop    = 1
	PositionerV6AnchorBottom = 2
	PositionerV6AnchorLeft   = 4
	PositionerV6AnchorRight  = 8
)

const (
	PositionerV6GravityTop    = 1
	PositionerV6GravityBottom = 2
	PositionerV6GravityLeft   = 4
	PositionerV6GravityRight  = 8
)

// zaura_shell: Chrome-OS/exo-specific extension giving frame-type hints,
// per-output scale enumeration and parent-offset hints. No public Go
// package models it; see DESIGN.md.
const (
	AuraShellGetAuraSurface = iota
	AuraShellGetAuraOutput
)

var AuraShellRequestSig = []string{
	AuraShellGetAuraSurface: "no",
	AuraShellGetAuraOutput:  "no",
}

const (
	AuraSurfaceSetFrame = iota
	AuraSurfaceSetParent
	AuraSurfaceSetFrameColors
	AuraSurfaceSetStartupID
	AuraSurfaceSetApplicationID
)

var AuraSurfaceRequestSig = []string{
	AuraSurfaceSetFrame:         "u",
	AuraSurfaceSetParent:        "oii",
	AuraSurfaceSetFrameColors:   "uu",
	AuraSurfaceSetStartupID:     "s",
	AuraSurfaceSetApplicationID: "s",
}

const (
	AuraSurfaceFrameNone   = 0
	AuraSurfaceFrameNormal = 1
	AuraSurfaceFrameShadow = 2
)

const (
	AuraOutputEventScale = iota
)

const (
	AuraOutputScaleFactorFlagCurrent = 1 << 0
)

// wp_viewporter / wp_viewport: fractional scale emulation via
// destination-size scaling.
const (
	ViewporterDestroy = iota
	ViewporterGetViewport
)

var ViewporterRequestSig = []string{
	ViewporterGetViewport: "no",
	ViewporterDestroy:     "",
}

const (
	ViewportDestroy = iota
	ViewportSetSource
	ViewportSetDestination
)

var ViewportRequestSig = []string{
	ViewportSetSource:      "ffff",
	ViewportSetDestination: "ii",
	ViewportDestroy:        "",
}

// zwp_linux_dmabuf_v1 / wl_drm: DRM-compatibility shim.
const (
	LinuxDmabufDestroy = iota
	LinuxDmabufCreateParams
)

var LinuxDmabufRequestSig = []string{LinuxDmabufDestroy: "", LinuxDmabufCreateParams: "n"}

const (
	LinuxDmabufEventFormat = iota
	LinuxDmabufEventModifier
)

const (
	LinuxBufferParamsDestroy = iota
	LinuxBufferParamsAdd
	LinuxBufferParamsCreate
	LinuxBufferParamsCreateImmed
)

var LinuxBufferParamsRequestSig = []string{
	LinuxBufferParamsAdd:          "huuuuu",
	LinuxBufferParamsCreate:       "iiuu",
	LinuxBufferParamsCreateImmed:  "niiuu",
	LinuxBufferParamsDestroy:      "",
}

const (
	LinuxBufferParamsEventCreated = iota
	LinuxBufferParamsEventFailed
)

// wl_drm
const (
	DrmAuthenticate = iota
	DrmCreateBuffer
	DrmCreatePlanarBuffer
	DrmCreatePrimeBuffer
)

var DrmRequestSig = []string{
	DrmAuthenticate:       "u",
	DrmCreateBuffer:       "niiiuu",
	DrmCreatePlanarBuffer: "niiiuuiuiuiu",
	DrmCreatePrimeBuffer:  "nhiiuuiuiu",
}

const (
	DrmEventDevice = iota
	DrmEventFormat
	DrmEventAuthenticated
	DrmEventCapabilities
)

const DrmCapabilityPrime = 1
