/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package rohclog adapts a caller-supplied trace callback onto a
// logrus.FieldLogger so an embedder gets structured logging and a
// diagnostic sink without having to choose between them.
package rohclog

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Level mirrors the trace callback's severity argument.
type Level int

// Levels a trace callback may report, ordered least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarning:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// TraceFunc is the trace_cb(level, entity, profile_id, fmt, args) shape:
// a diagnostic sink an embedder may supply, independent of the logger
// used for everything else.
type TraceFunc func(level Level, entity string, profileID uint16, format string, args ...interface{})

// New returns a default logger used when an embedder supplies none:
// logrus's standard logger, matching the teacher's convention of
// falling back to the package-level logrus functions when no
// per-component logger is injected.
func New() logrus.FieldLogger {
	return logrus.StandardLogger()
}

// WithTrace wraps log with a logrus.Hook that forwards every fired entry
// to trace, so a caller-supplied diagnostic sink and structured logging
// compose rather than compete. Returns a logger safe to pass to engine
// Config.Logger.
func WithTrace(log *logrus.Logger, entity string, profileID uint16, trace TraceFunc) logrus.FieldLogger {
	if trace == nil {
		return log
	}
	log.AddHook(&traceHook{entity: entity, profileID: profileID, trace: trace})
	return log
}

// TraceHook is the interface form of TraceFunc, satisfied by a generated
// mock so tests can assert on individual trace calls instead of
// recording into a closure.
type TraceHook interface {
	Trace(level Level, entity string, profileID uint16, format string, args ...interface{})
}

// WithTraceHook is WithTrace for a TraceHook collaborator rather than a
// bare func, for use with generated mocks.
func WithTraceHook(log *logrus.Logger, entity string, profileID uint16, hook TraceHook) logrus.FieldLogger {
	if hook == nil {
		return log
	}
	return WithTrace(log, entity, profileID, hook.Trace)
}

// traceHook is a logrus.Hook that replays fired entries through a
// trace_cb-shaped callback.
type traceHook struct {
	entity    string
	profileID uint16
	trace     TraceFunc
}

// Levels reports this hook fires for every level; severity filtering is
// the caller's responsibility inside TraceFunc.
func (h *traceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire adapts one logrus.Entry into a trace callback invocation.
func (h *traceHook) Fire(e *logrus.Entry) error {
	h.trace(fromLogrusLevel(e.Level), h.entity, h.profileID, "%s", fmt.Sprintf("%s", e.Message))
	return nil
}

func fromLogrusLevel(l logrus.Level) Level {
	switch l {
	case logrus.DebugLevel, logrus.TraceLevel:
		return LevelDebug
	case logrus.WarnLevel:
		return LevelWarning
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return LevelError
	default:
		return LevelInfo
	}
}
