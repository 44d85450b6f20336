package cmdparse

import (
	"io"

	"github.com/charmbracelet/log"
)

// Log receives parser trace output. It discards everything by default; point
// it at a writer and lower the level to watch token consumption:
//
//	cmdparse.Log = log.NewWithOptions(os.Stderr, log.Options{Level: log.DebugLevel})
var Log = log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
