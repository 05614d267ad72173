/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

package elog

import (
	"bytes"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// View is the logging surface handed to library code. Implementations decide
// which levels actually reach the output.
type View interface {
	Debugf(format string, x ...interface{})
	Errorf(format string, x ...interface{})
	Infof(format string, x ...interface{})
	Printf(format string, x ...interface{})
	Warnf(format string, x ...interface{})
}

// CLI is a View that logs through the standard logrus logger. It doubles as
// a logrus.Formatter producing plain, optionally colored, lines suitable for
// a terminal.
type CLI struct {
	DisableTTY bool
	IsDebug    bool
	IsVerbose  bool
}

var _ View = (*CLI)(nil)
var _ logrus.Formatter = (*CLI)(nil)

// Debugf logs only when IsDebug is set.
func (log *CLI) Debugf(format string, x ...interface{}) {
	if !log.IsDebug {
		return
	}
	logrus.Debugf(format, x...)
}

// Infof logs only when IsVerbose is set.
func (log *CLI) Infof(format string, x ...interface{}) {
	if !log.IsVerbose {
		return
	}
	logrus.Infof(format, x...)
}

// Printf always logs, at info level.
func (log *CLI) Printf(format string, x ...interface{}) {
	logrus.Infof(format, x...)
}

// Warnf ..
func (log *CLI) Warnf(format string, x ...interface{}) {
	logrus.Warnf(format, x...)
}

// Errorf ..
func (log *CLI) Errorf(format string, x ...interface{}) {
	logrus.Errorf(format, x...)
}

func (log *CLI) colored() bool {
	if log.DisableTTY {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

var levelColors = map[logrus.Level]color.Attribute{
	logrus.PanicLevel: color.FgRed,
	logrus.FatalLevel: color.FgRed,
	logrus.ErrorLevel: color.FgRed,
	logrus.WarnLevel:  color.FgYellow,
	logrus.DebugLevel: color.FgHiBlack,
	logrus.TraceLevel: color.FgHiBlack,
}

// Format implements logrus.Formatter.
func (log *CLI) Format(entry *logrus.Entry) ([]byte, error) {

	msg := entry.Message

	if attr, ok := levelColors[entry.Level]; ok && log.colored() {
		c := color.New(attr)
		c.EnableColor()
		msg = c.Sprint(msg)
	}

	buf := new(bytes.Buffer)
	buf.WriteString(msg)
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}
