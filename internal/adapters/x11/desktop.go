package x11

import (
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/bft-labs/vdesk/internal/domain"
)

// ProbeInfo describes the display as seen by the worker thread.
type ProbeInfo struct {
	Resource       string `json:"resource"`
	Display        string `json:"display"`
	Root           uint32 `json:"root"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	WindowManager  string `json:"window_manager"`
	Desktops       int    `json:"desktops"`
	CurrentDesktop int    `json:"current_desktop"`
}

// Probe queries the screen geometry, the EWMH window manager and the
// virtual desktop layout.
func (c *Context) Probe() (ProbeInfo, error) {
	xu, err := c.Conn()
	if err != nil {
		return ProbeInfo{}, err
	}

	info := ProbeInfo{
		Resource: c.id,
		Display:  displayName(c.display),
		Root:     uint32(xu.RootWin()),
	}
	if screen := xu.Screen(); screen != nil {
		info.Width = int(screen.WidthInPixels)
		info.Height = int(screen.HeightInPixels)
	}

	wm, err := ewmh.GetEwmhWM(xu)
	if err != nil {
		// No _NET_SUPPORTING_WM_CHECK: the window manager is not up (yet).
		return ProbeInfo{}, domain.NewResourceError(domain.KindClassNotRegistered, "ewmh window manager", err)
	}
	info.WindowManager = wm

	if info.Desktops, err = c.DesktopCount(); err != nil {
		return ProbeInfo{}, err
	}
	if info.CurrentDesktop, err = c.CurrentDesktop(); err != nil {
		return ProbeInfo{}, err
	}
	return info, nil
}

// CurrentDesktop returns the 0-indexed active virtual desktop.
func (c *Context) CurrentDesktop() (int, error) {
	xu, err := c.Conn()
	if err != nil {
		return 0, err
	}
	desktop, err := ewmh.CurrentDesktopGet(xu)
	if err != nil {
		return 0, classify("get current desktop", err)
	}
	return int(desktop), nil
}

// DesktopCount returns the number of virtual desktops.
func (c *Context) DesktopCount() (int, error) {
	xu, err := c.Conn()
	if err != nil {
		return 0, err
	}
	count, err := ewmh.NumberOfDesktopsGet(xu)
	if err != nil {
		return 0, classify("get desktop count", err)
	}
	return int(count), nil
}

// DesktopNames returns the names of the virtual desktops.
func (c *Context) DesktopNames() ([]string, error) {
	xu, err := c.Conn()
	if err != nil {
		return nil, err
	}
	names, err := ewmh.DesktopNamesGet(xu)
	if err != nil {
		return nil, classify("get desktop names", err)
	}
	return names, nil
}

// SwitchDesktop asks the window manager to activate desktop n.
func (c *Context) SwitchDesktop(n int) error {
	count, err := c.DesktopCount()
	if err != nil {
		return err
	}
	if n < 0 || n >= count {
		return domain.NewResourceError(domain.KindInvalidArgument, "switch desktop", nil)
	}
	xu, err := c.Conn()
	if err != nil {
		return err
	}
	if err := ewmh.CurrentDesktopReq(xu, n); err != nil {
		return classify("switch desktop", err)
	}
	return nil
}
