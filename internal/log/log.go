// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package log provides logging utilities for the HTTP client instrumentation.
package log

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DataDog/dd-otel-nethttp/internal/env"
)

// Level specifies the logging level that the log package prints at.
type Level int

const (
	// LevelDebug represents debug level messages.
	LevelDebug Level = iota
	// LevelInfo represents informational messages.
	LevelInfo
	// LevelWarn represents warning and errors.
	LevelWarn
	// LevelError represents aggregated error messages.
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

const prefixMsg = "Datadog HTTP Client Instrumentation"

// Logger implementations are able to log given messages that the
// instrumentation might output.
type Logger interface {
	// Log prints the given message.
	Log(msg string)
}

// DiscardLogger discards every call to Log().
type DiscardLogger struct{}

// Log implements Logger.
func (d DiscardLogger) Log(_ string) {}

var (
	mu             sync.RWMutex // guards below fields
	levelThreshold             = LevelWarn
	logger         Logger      = newLogrusLogger()
)

// UseLogger sets l as the active logger and returns a function to restore the
// previous logger.
func UseLogger(l Logger) (undo func()) {
	mu.Lock()
	defer mu.Unlock()
	old := logger
	logger = l
	return func() {
		mu.Lock()
		defer mu.Unlock()
		logger = old
	}
}

// SetLevel sets the given lvl as log threshold for logging.
func SetLevel(lvl Level) {
	mu.Lock()
	defer mu.Unlock()
	levelThreshold = lvl
}

// DebugEnabled returns true if debug log messages are enabled.
func DebugEnabled() bool {
	mu.RLock()
	lvl := levelThreshold
	mu.RUnlock()
	return lvl == LevelDebug
}

// Debug prints the given message if the level is LevelDebug.
func Debug(fmt string, a ...any) {
	if !DebugEnabled() {
		return
	}
	printMsg(LevelDebug, fmt, a...)
}

// Info prints an informational message.
func Info(fmt string, a ...any) {
	mu.RLock()
	lvl := levelThreshold
	mu.RUnlock()
	if lvl > LevelInfo {
		return
	}
	printMsg(LevelInfo, fmt, a...)
}

// Warn prints a warning message.
func Warn(fmt string, a ...any) {
	printMsg(LevelWarn, fmt, a...)
}

var (
	errmu   sync.RWMutex                // guards below fields
	erragg  = map[string]*errorReport{} // aggregated errors
	errrate = time.Minute               // the rate at which errors are reported
	erron   bool                        // true if errors are being aggregated
)

func init() {
	if v, ok := env.Lookup("DD_LOGGING_RATE"); ok {
		setLoggingRate(v)
	}
	if env.Bool("DD_TRACE_DEBUG", false) {
		SetLevel(LevelDebug)
	}
}

func setLoggingRate(v string) {
	if sec, err := strconv.ParseInt(v, 10, 64); err != nil {
		Warn("Invalid value for DD_LOGGING_RATE: %v", err)
	} else if sec < 0 {
		Warn("Invalid value for DD_LOGGING_RATE: negative value")
	} else {
		errrate = time.Duration(sec) * time.Second
	}
}

type errorReport struct {
	first time.Time // time when first error occurred
	err   error
	count uint64
}

// defaultErrorLimit specifies the maximum number of errors gathered in a report.
const defaultErrorLimit = 200

// Error reports an error. Errors get aggregated by format and logged once
// every DD_LOGGING_RATE number of seconds.
func Error(format string, a ...any) {
	key := format
	if errrate == time.Duration(0) {
		printMsg(LevelError, format, a...)
		return
	}
	if reachedLimit(key) {
		// avoid too much lock contention on spammy errors
		return
	}
	errmu.Lock()
	defer errmu.Unlock()
	report, ok := erragg[key]
	if !ok {
		erragg[key] = &errorReport{
			err:   fmt.Errorf(format, a...),
			first: time.Now(),
		}
		report = erragg[key]
	}
	report.count++
	if !erron {
		erron = true
		time.AfterFunc(errrate, Flush)
	}
}

// reachedLimit reports whether the maximum count has been reached for this key.
func reachedLimit(key string) bool {
	errmu.RLock()
	e, ok := erragg[key]
	confirm := ok && e.count > defaultErrorLimit
	errmu.RUnlock()
	return confirm
}

// Flush flushes and resets all aggregated errors to the logger.
func Flush() {
	errmu.Lock()
	defer errmu.Unlock()
	for _, report := range erragg {
		msg := fmt.Sprintf("%v", report.err)
		if report.count > defaultErrorLimit {
			msg += fmt.Sprintf(", %d+ additional messages skipped (first occurrence: %s)", defaultErrorLimit, report.first.Format(time.RFC822))
		} else if report.count > 1 {
			msg += fmt.Sprintf(", %d additional messages skipped (first occurrence: %s)", report.count-1, report.first.Format(time.RFC822))
		} else {
			msg += fmt.Sprintf(" (occurred: %s)", report.first.Format(time.RFC822))
		}
		printMsg(LevelError, "%s", msg)
	}
	for k := range erragg {
		delete(erragg, k)
	}
	erron = false
}

func printMsg(lvl Level, format string, a ...any) {
	msg := fmt.Sprintf("%s %s: %s", prefixMsg, lvl, fmt.Sprintf(format, a...))
	mu.RLock()
	defer mu.RUnlock()
	if ll, ok := logger.(*logrusLogger); ok {
		ll.logLevel(lvl, msg)
		return
	}
	logger.Log(msg)
}

// logrusLogger is the default Logger. It writes to stderr through logrus so
// that level and timestamp formatting match the host application's logs.
type logrusLogger struct{ l *logrus.Logger }

func newLogrusLogger() *logrusLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableQuote: true, FullTimestamp: true})
	return &logrusLogger{l: l}
}

// NewLogrusLogger returns a Logger writing to the given logrus logger.
func NewLogrusLogger(l *logrus.Logger) Logger { return &logrusLogger{l: l} }

func (p *logrusLogger) Log(msg string) { p.l.Print(msg) }

func (p *logrusLogger) logLevel(lvl Level, msg string) {
	switch lvl {
	case LevelDebug:
		p.l.Debug(msg)
	case LevelInfo:
		p.l.Info(msg)
	case LevelWarn:
		p.l.Warn(msg)
	default:
		p.l.Error(msg)
	}
}
