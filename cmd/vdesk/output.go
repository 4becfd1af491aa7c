package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/bft-labs/vdesk/pkg/vdesk"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

func pass(w io.Writer, format string, a ...any) {
	green.Fprint(w, "PASS ")
	fmt.Fprintf(w, format+"\n", a...)
}

func fail(w io.Writer, format string, a ...any) {
	red.Fprint(w, "FAIL ")
	fmt.Fprintf(w, format+"\n", a...)
}

func field(w io.Writer, key string, value any) {
	cyan.Fprintf(w, "%-16s", key)
	fmt.Fprintf(w, "%v\n", value)
}

// printError prints err to stderr with a hint for the common causes.
func printError(err error) {
	red.Fprintf(os.Stderr, "error: %v\n", err)

	var hint string
	switch {
	case errors.Is(err, vdesk.ErrServerUnavailable):
		hint = "is an X server running? check --display or $DISPLAY"
	case errors.Is(err, vdesk.ErrClassNotRegistered):
		hint = "no EWMH window manager is running on this display"
	case errors.Is(err, vdesk.ErrAccessDenied):
		hint = "the X server refused access; check xhost or $XAUTHORITY"
	case errors.Is(err, vdesk.ErrInvalidConfig):
		hint = "see vdesk --help for valid values"
	}
	if hint != "" {
		yellow.Fprintf(os.Stderr, "hint: %s\n", hint)
	}
}
