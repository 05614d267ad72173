package elog

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"io"
	"sync"

	"github.com/cirruslabs/echelon"
	"github.com/cirruslabs/echelon/renderers"
)

type LogLevel uint32

const (
	ErrorLevel LogLevel = LogLevel(echelon.ErrorLevel)
	WarnLevel  LogLevel = LogLevel(echelon.WarnLevel)
	InfoLevel  LogLevel = LogLevel(echelon.InfoLevel)
	DebugLevel LogLevel = LogLevel(echelon.DebugLevel)
	TraceLevel LogLevel = LogLevel(echelon.TraceLevel)
)

// Logger is a View that can open named child scopes, one per phase of work.
// A scope is closed with Finish.
type Logger interface {
	View
	Finish(success bool)
	IsLogLevelEnabled(level LogLevel) bool
	Logf(level LogLevel, format string, args ...interface{})
	Scoped(scope string) Logger
	Tracef(format string, args ...interface{})
}

// EchelonLogger is a Logger rendering through echelon. A root and all its
// scopes share one lock, so scopes may be used from several goroutines.
type EchelonLogger struct {
	*echelon.Logger
	lock     *sync.Mutex
	finished bool
}

var _ Logger = (*EchelonLogger)(nil)

// NewEchelonLogger returns a root Logger writing plain scoped lines to w.
func NewEchelonLogger(w io.Writer, level LogLevel) *EchelonLogger {
	return &EchelonLogger{
		Logger: echelon.NewLogger(echelon.LogLevel(level), renderers.NewSimpleRenderer(w, nil)),
		lock:   new(sync.Mutex),
	}
}

func (elog *EchelonLogger) IsLogLevelEnabled(level LogLevel) bool {
	return elog.Logger.IsLogLevelEnabled(echelon.LogLevel(level))
}

func (elog *EchelonLogger) Logf(level LogLevel, format string, args ...interface{}) {
	elog.lock.Lock()
	defer elog.lock.Unlock()
	elog.Logger.Logf(echelon.LogLevel(level), format, args...)
}

func (elog *EchelonLogger) Debugf(format string, args ...interface{}) {
	elog.Logf(DebugLevel, format, args...)
}

func (elog *EchelonLogger) Errorf(format string, args ...interface{}) {
	elog.Logf(ErrorLevel, format, args...)
}

func (elog *EchelonLogger) Infof(format string, args ...interface{}) {
	elog.Logf(InfoLevel, format, args...)
}

// Printf logs at info level.
func (elog *EchelonLogger) Printf(format string, args ...interface{}) {
	elog.Logf(InfoLevel, format, args...)
}

func (elog *EchelonLogger) Tracef(format string, args ...interface{}) {
	elog.Logf(TraceLevel, format, args...)
}

func (elog *EchelonLogger) Warnf(format string, args ...interface{}) {
	elog.Logf(WarnLevel, format, args...)
}

func (elog *EchelonLogger) Scoped(scope string) Logger {
	elog.lock.Lock()
	defer elog.lock.Unlock()
	return &EchelonLogger{
		Logger: elog.Logger.Scoped(scope),
		lock:   elog.lock,
	}
}

func (elog *EchelonLogger) Finish(success bool) {
	elog.lock.Lock()
	defer elog.lock.Unlock()
	if elog.finished {
		return
	}
	elog.finished = true
	elog.Logger.Finish(success)
}

// Scoped opens a child scope of log if it is a Logger. Any other View is
// returned unchanged.
func Scoped(log View, scope string) View {
	if l, ok := log.(Logger); ok {
		return l.Scoped(scope)
	}
	return log
}

// Finish closes a scope returned by Scoped. It does nothing for a plain View.
func Finish(log View, success bool) {
	if l, ok := log.(Logger); ok {
		l.Finish(success)
	}
}
