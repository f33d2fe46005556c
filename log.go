package jinja

import "github.com/juju/loggo"

// Logger is the narrow logging surface the engine relies on, backed by
// juju/loggo instead of a hand-rolled logger.
type Logger interface {
	Debugf(format string, args ...any)
	Warningf(format string, args ...any)
}

type loggoLogger struct {
	l loggo.Logger
}

func (w loggoLogger) Debugf(format string, args ...any)   { w.l.Debugf(format, args...) }
func (w loggoLogger) Warningf(format string, args ...any) { w.l.Warningf(format, args...) }

var defaultLogger Logger = loggoLogger{l: loggo.GetLogger("jinja2go")}
