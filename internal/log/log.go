//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

// Package log provides the leveled logger shared by vgxml packages.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	LogAlways Level = iota
	LogError
	LogWarning
	LogInfo
	LogDebug
)

const logFlags = log.Ldate | log.Ltime | log.Lmicroseconds

var (
	currentLevel = LogInfo
	logPid       = "(" + strconv.Itoa(os.Getpid()) + ")"
)

// Init sets the log level and directs output to location, which is
// either "stdout", "stderr" or the path of a file to append to.
func Init(level Level, location string) error {
	SetLevel(level)

	w, err := openLog(location)
	if err != nil {
		return err
	}

	log.SetFlags(logFlags)
	log.SetOutput(w)
	return nil
}

func Errorf(format string, a ...interface{}) { logf(LogError, format, a...) }
func Warnf(format string, a ...interface{})  { logf(LogWarning, format, a...) }
func Infof(format string, a ...interface{})  { logf(LogInfo, format, a...) }
func Debugf(format string, a ...interface{}) { logf(LogDebug, format, a...) }

func logf(level Level, format string, a ...interface{}) {
	if Enabled(level) {
		log.Printf(logPid+" "+level.String()+": "+format, a...)
	}
}

// Enabled reports whether messages at level are currently written.
func Enabled(level Level) bool {
	return int32(level) <= atomic.LoadInt32((*int32)(&currentLevel))
}

// SetLevel sets the current log level. It is safe to call this function
// from multiple goroutines.
func SetLevel(level Level) {
	atomic.StoreInt32((*int32)(&currentLevel), int32(level))
}

func openLog(location string) (io.Writer, error) {
	switch location {
	case "stdout":
		return os.Stdout, nil
	case "stderr", "":
		return os.Stderr, nil
	default:
		return os.OpenFile(location, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	}
}

// StackTrace formats a stack trace of the calling goroutine.
func StackTrace() []byte {
	buf := make([]byte, 65*1024)
	n := runtime.Stack(buf, false)
	return buf[:n]
}

// String returns the string representation of the Level. It's
// implemented to satisify the Stringer and flag.Value interfaces.
func (level Level) String() string {
	switch level {
	case LogAlways:
		return "Always"
	case LogError:
		return "Error"
	case LogWarning:
		return "Warning"
	case LogInfo:
		return "Info"
	case LogDebug:
		return "Debug"
	default:
		return fmt.Sprintf("Unknown(%d)", level)
	}
}

// Set implements the flag.Value.Set method.
func (level *Level) Set(s string) error {
	x, err := parseLevel(s)
	if err != nil {
		return err
	}

	*level = x
	return nil
}

// Type names the flag value type in command usage.
func (level *Level) Type() string { return "level" }

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// This allows the log level to be unmarshaled by the configuration
// parser.
func (level *Level) UnmarshalText(text []byte) error {
	return level.Set(string(text))
}

func parseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "always":
		return LogAlways, nil
	case "error":
		return LogError, nil
	case "warning", "warn":
		return LogWarning, nil
	case "info", "":
		return LogInfo, nil
	case "debug", "verbose":
		return LogDebug, nil
	default:
		return LogInfo, fmt.Errorf("invalid log level: %q", s)
	}
}
