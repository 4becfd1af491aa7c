// Package log builds the CLI logger from configuration.
package log

import (
	"fmt"
	"io"

	"github.com/bft-labs/vdesk/pkg/log"
)

// New returns a zerolog-backed logger writing to w. format is "console"
// (the default) or "json". The level is installed process-wide, so it can be
// changed later with log.SetGlobalLevel.
func New(w io.Writer, level, format string) (*log.ZerologAdapter, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	var l *log.ZerologAdapter
	switch format {
	case "", "console":
		l = log.NewConsoleAdapter(w, log.LevelDebug)
	case "json":
		l = log.NewJSONAdapter(w, log.LevelDebug)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	log.SetGlobalLevel(lvl)
	return l, nil
}
