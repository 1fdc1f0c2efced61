/*
NAME
  logging.go

DESCRIPTION
  logging.go provides the decoder's logging shim: a narrow interface
  modeled on revid.Logger (see revid/revid.go), plus a default
  implementation that writes to standard error. The core's own log lines
  are few: a sustain-expiry style counter event never logs (see §7 of the
  spec; it's a normal event, recorded only as a counter), but a Stereo
  logs once per run when its two channels' target gains disagree, unless
  suppressed by TGMLogOff.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package hdcd

import (
	"fmt"
	"os"
)

// Logger is the logging capability a Channel or Stereo borrows for the
// lifetime of the state it's attached to. It is intentionally narrower
// than github.com/ausocean/utils/logging.Logger so that callers of this
// package aren't forced to depend on that package; cmd/hdcd-detect adapts
// a logging.Logger to this interface.
type Logger interface {
	Log(level int8, msg string, args ...interface{})
}

// Log levels, matching the numbering used by github.com/ausocean/utils/logging
// so a Logger implementation can share level constants with the rest of an
// application built on that package.
const (
	LogDebug   int8 = -1
	LogInfo    int8 = 0
	LogWarning int8 = 1
	LogError   int8 = 2
	LogFatal   int8 = 3
)

// stderrLogger is the default Logger, used whenever a Channel or Stereo is
// reset with a nil log sink. It holds no state.
type stderrLogger struct{}

// defaultLogger is the process-wide default log sink.
var defaultLogger Logger = stderrLogger{}

func (stderrLogger) Log(level int8, msg string, args ...interface{}) {
	prefix := "info"
	switch level {
	case LogDebug:
		prefix = "debug"
	case LogWarning:
		prefix = "warning"
	case LogError:
		prefix = "error"
	case LogFatal:
		prefix = "fatal"
	}
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "hdcd: %s: %s\n", prefix, msg)
		return
	}
	fmt.Fprintf(os.Stderr, "hdcd: %s: %s\n", prefix, fmt.Sprintf(msg, args...))
}
