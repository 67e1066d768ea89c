// Copyright 2021 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package logging provides the Logger interface used throughout the
// runtime: the loader logs skipped module-decode errors at Warn, the
// machine logs execution errors before unwinding, and the memory package
// logs each GC hook invocation at Info.
package logging

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level is a log severity.
type Level uint8

const (
	Error Level = iota
	Warn
	Info
	Debug
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warn:
		return "warn"
	case Info:
		return "info"
	case Debug:
		return "debug"
	default:
		return "unknown"
	}
}

// GetLevel parses a level name, defaulting to Info for the empty string.
func GetLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return Debug, nil
	case "", "info":
		return Info, nil
	case "warn":
		return Warn, nil
	case "error":
		return Error, nil
	default:
		return Info, fmt.Errorf("invalid log level: %v", level)
	}
}

// Logger is the interface runtime components log through. Implementations
// must be safe for concurrent field-enrichment via WithFields, though the
// interpreter itself is single-threaded.
type Logger interface {
	Debug(fmt string, a ...any)
	Info(fmt string, a ...any)
	Warn(fmt string, a ...any)
	Error(fmt string, a ...any)
	WithFields(fields map[string]any) Logger
	GetLevel() Level
	SetLevel(Level)
}

// StandardLogger is the default Logger, backed by logrus.
type StandardLogger struct {
	entry *logrus.Entry
}

// New returns a StandardLogger writing logrus text-formatted entries
// (`level=info msg="..." field=value`) to stderr at Info level, the
// runtime's default.
func New() *StandardLogger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return &StandardLogger{entry: logrus.NewEntry(l)}
}

func (l *StandardLogger) Debug(f string, a ...any) { l.entry.Debugf(f, a...) }
func (l *StandardLogger) Info(f string, a ...any)  { l.entry.Infof(f, a...) }
func (l *StandardLogger) Warn(f string, a ...any)  { l.entry.Warnf(f, a...) }
func (l *StandardLogger) Error(f string, a ...any) { l.entry.Errorf(f, a...) }

func (l *StandardLogger) WithFields(fields map[string]any) Logger {
	return &StandardLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *StandardLogger) GetLevel() Level {
	switch l.entry.Logger.GetLevel() {
	case logrus.DebugLevel, logrus.TraceLevel:
		return Debug
	case logrus.WarnLevel:
		return Warn
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return Error
	default:
		return Info
	}
}

func (l *StandardLogger) SetLevel(lvl Level) {
	switch lvl {
	case Debug:
		l.entry.Logger.SetLevel(logrus.DebugLevel)
	case Warn:
		l.entry.Logger.SetLevel(logrus.WarnLevel)
	case Error:
		l.entry.Logger.SetLevel(logrus.ErrorLevel)
	default:
		l.entry.Logger.SetLevel(logrus.InfoLevel)
	}
}

// NoOpLogger discards everything. Used by tests that don't want runtime
// log noise.
type NoOpLogger struct {
	level Level
}

func NewNoOpLogger() *NoOpLogger { return &NoOpLogger{level: Info} }

func (*NoOpLogger) Debug(string, ...any) {}
func (*NoOpLogger) Info(string, ...any)  {}
func (*NoOpLogger) Warn(string, ...any)  {}
func (*NoOpLogger) Error(string, ...any) {}
func (n *NoOpLogger) WithFields(map[string]any) Logger { return n }
func (n *NoOpLogger) GetLevel() Level                  { return n.level }
func (n *NoOpLogger) SetLevel(l Level)                 { n.level = l }
