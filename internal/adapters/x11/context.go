// Package x11 implements the desktop resource over an X11 connection with
// EWMH virtual desktop support.
package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/google/uuid"

	"github.com/bft-labs/vdesk/internal/domain"
	"github.com/bft-labs/vdesk/internal/ports"
	"github.com/bft-labs/vdesk/pkg/log"
)

// Dialer opens a connection to the named X display. An empty name uses $DISPLAY.
type Dialer func(display string) (*xgbutil.XUtil, error)

// DefaultDialer dials with xgbutil, which also prepares the EWMH atom cache.
func DefaultDialer(display string) (*xgbutil.XUtil, error) {
	return xgbutil.NewConnDisplay(display)
}

// Context is the X11 resource owned by the worker thread. The connection is
// opened on first use and dropped by Reset, so the next operation re-dials.
type Context struct {
	id      string
	display string
	dial    Dialer
	logger  log.Logger

	xu     *xgbutil.XUtil
	dials  int
	resets int
}

var _ ports.Resource = (*Context)(nil)

// NewContext creates a context for display. Nothing is dialed yet.
func NewContext(display string, dial Dialer, logger log.Logger) *Context {
	if dial == nil {
		dial = DefaultDialer
	}
	return &Context{
		id:      uuid.NewString(),
		display: display,
		dial:    dial,
		logger:  log.OrNoop(logger),
	}
}

// NewFactory returns a factory building one Context per worker thread start.
func NewFactory(display string, dial Dialer, logger log.Logger) ports.Factory[*Context] {
	return func() *Context {
		return NewContext(display, dial, logger)
	}
}

// ID returns the identity token assigned at construction.
func (c *Context) ID() string { return c.id }

// Display returns the configured display name.
func (c *Context) Display() string { return c.display }

// Resets returns how many times Reset was called.
func (c *Context) Resets() int { return c.resets }

// Dials returns how many connections were opened.
func (c *Context) Dials() int { return c.dials }

// Conn returns the live connection, dialing it if needed.
func (c *Context) Conn() (*xgbutil.XUtil, error) {
	if c.xu != nil {
		return c.xu, nil
	}
	xu, err := c.dial(c.display)
	if err != nil {
		return nil, domain.NewResourceError(domain.KindServerUnavailable, "dial "+displayName(c.display), err)
	}
	if xu == nil {
		return nil, domain.NewResourceError(domain.KindNullResult, "dial "+displayName(c.display), nil)
	}
	c.xu = xu
	c.dials++
	c.logger.Debug("x11 connection opened",
		log.String("display", displayName(c.display)),
		log.String("resource", c.id),
	)
	return xu, nil
}

// Root returns the root window of the default screen.
func (c *Context) Root() (xproto.Window, error) {
	xu, err := c.Conn()
	if err != nil {
		return 0, err
	}
	return xu.RootWin(), nil
}

// Reset drops the connection. The identity token is kept.
func (c *Context) Reset() {
	c.resets++
	c.disconnect()
}

// Close drops the connection for good.
func (c *Context) Close() error {
	c.disconnect()
	return nil
}

func (c *Context) disconnect() {
	if c.xu == nil {
		return
	}
	c.xu.Conn().Close()
	c.xu = nil
	c.logger.Debug("x11 connection closed", log.String("resource", c.id))
}

func (c *Context) String() string {
	return fmt.Sprintf("x11(%s, %s)", displayName(c.display), c.id)
}

func displayName(display string) string {
	if display == "" {
		return "$DISPLAY"
	}
	return display
}
