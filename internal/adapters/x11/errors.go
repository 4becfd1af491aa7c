package x11

import (
	"errors"
	"io"
	"net"
	"strings"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/bft-labs/vdesk/internal/domain"
)

// classify maps an error from xgb or xgbutil onto a resource error kind.
// xgbutil formats protocol errors with %s, so the X error name is matched
// as text when the typed error is gone.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.KindOf(err); ok {
		return err
	}
	return domain.NewResourceError(kindOf(err), op, err)
}

func kindOf(err error) domain.Kind {
	var (
		access xproto.AccessError
		window xproto.WindowError
		atom   xproto.AtomError
		value  xproto.ValueError
	)
	switch {
	case errors.As(err, &access):
		return domain.KindAccessDenied
	case errors.As(err, &window), errors.As(err, &atom):
		return domain.KindNotFound
	case errors.As(err, &value):
		return domain.KindInvalidArgument
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		return domain.KindObjectNotConnected
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "BadAccess"):
		return domain.KindAccessDenied
	case strings.Contains(msg, "BadWindow"), strings.Contains(msg, "BadAtom"):
		return domain.KindNotFound
	case strings.Contains(msg, "BadValue"):
		return domain.KindInvalidArgument
	case strings.Contains(msg, "No such property"), strings.Contains(msg, "nil reply"):
		return domain.KindNullResult
	case strings.Contains(msg, "connection closed"), strings.Contains(msg, "broken pipe"), strings.Contains(msg, "EOF"):
		return domain.KindObjectNotConnected
	}
	return domain.KindInternal
}
