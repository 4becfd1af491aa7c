package x11

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/bft-labs/vdesk/internal/domain"
)

func refusingDialer(calls *int) Dialer {
	return func(display string) (*xgbutil.XUtil, error) {
		*calls++
		return nil, fmt.Errorf("dial %s: connection refused", display)
	}
}

func TestContext_DialFailureIsServerUnavailable(t *testing.T) {
	calls := 0
	c := NewContext(":99", refusingDialer(&calls), nil)

	_, err := c.Probe()
	if !errors.Is(err, domain.ErrServerUnavailable) {
		t.Fatalf("Probe() error = %v, want server unavailable", err)
	}
	if !domain.IsTransient(err) {
		t.Error("dial failure must be transient")
	}

	if _, err := c.CurrentDesktop(); err == nil {
		t.Error("CurrentDesktop() succeeded without a connection")
	}
	if calls != 2 {
		t.Errorf("dialer called %d times, want 2", calls)
	}
	if c.Dials() != 0 {
		t.Errorf("Dials() = %d, want 0", c.Dials())
	}
}

func TestContext_NilConnectionIsNullResult(t *testing.T) {
	c := NewContext("", func(string) (*xgbutil.XUtil, error) { return nil, nil }, nil)

	_, err := c.Root()
	if !errors.Is(err, domain.ErrNullResult) {
		t.Fatalf("Root() error = %v, want null result", err)
	}
}

func TestContext_IdentityAndReset(t *testing.T) {
	factory := NewFactory(":1", refusingDialer(new(int)), nil)
	a, b := factory(), factory()

	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("identity tokens %q and %q must be distinct and non-empty", a.ID(), b.ID())
	}
	if a.Display() != ":1" {
		t.Errorf("Display() = %q", a.Display())
	}

	id := a.ID()
	a.Reset()
	a.Reset()
	if a.Resets() != 2 {
		t.Errorf("Resets() = %d, want 2", a.Resets())
	}
	if a.ID() != id {
		t.Error("Reset must not change the identity token")
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.Kind
	}{
		{"typed access", xproto.AccessError{}, domain.KindAccessDenied},
		{"typed window", xproto.WindowError{}, domain.KindNotFound},
		{"typed atom", xproto.AtomError{}, domain.KindNotFound},
		{"typed value", xproto.ValueError{}, domain.KindInvalidArgument},
		{"formatted access", errors.New("GetProperty: BadAccess {Sequence: 3}"), domain.KindAccessDenied},
		{"formatted window", errors.New("GetProperty: BadWindow {BadValue: 4}"), domain.KindNotFound},
		{"missing property", errors.New("GetProperty: No such property '_NET_CURRENT_DESKTOP'"), domain.KindNullResult},
		{"eof", fmt.Errorf("read: %w", io.EOF), domain.KindObjectNotConnected},
		{"unknown", errors.New("something else"), domain.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)
			kind, ok := domain.KindOf(err)
			if !ok {
				t.Fatalf("classify returned unclassified %v", err)
			}
			if kind != tt.want {
				t.Errorf("kind = %v, want %v", kind, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Error("cause lost")
			}
		})
	}
}

func TestClassify_KeepsResourceErrors(t *testing.T) {
	in := domain.NewResourceError(domain.KindServerUnavailable, "dial", nil)
	if got := classify("other", in); got != error(in) {
		t.Errorf("classify rewrapped %v as %v", in, got)
	}
	if classify("op", nil) != nil {
		t.Error("classify(nil) != nil")
	}
}
