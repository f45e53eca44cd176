// Copyright (c) 2026 The Capstan Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logconfig

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oceanops/capstan/pkg/logging"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Loggers is the realized logging configuration : one zerolog logger per
// configured logger, sharing sinks per handler definition.
// Loggers is immutable once built.
type Loggers struct {
	root    zerolog.Logger
	byName  map[string]zerolog.Logger
	closers []io.Closer
}

// Root returns the root logger.
func (l *Loggers) Root() zerolog.Logger {
	return l.root
}

// Logger resolves a logger by qualified name. If no logger is configured for
// the name, the dotted name hierarchy is walked upwards, falling back to the
// root logger, e.g. a.b.c -> a.b -> a -> root.
func (l *Loggers) Logger(qualname string) zerolog.Logger {
	for name := qualname; name != ""; {
		if logger, exists := l.byName[name]; exists {
			return logger
		}
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			break
		}
		name = name[:i]
	}
	return l.root
}

// Close releases the file sinks opened by Apply.
// The first close failure is returned; all sinks are closed regardless.
func (l *Loggers) Close() error {
	var err error
	for _, c := range l.closers {
		if e := c.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// Apply validates the configuration and realizes it : each handler becomes a
// level gated zerolog writer and each logger becomes a zerolog logger over
// its handlers' writers. Loggers that propagate also write to the root
// logger's handlers.
func Apply(cfg *Config) (*Loggers, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	loggers := &Loggers{byName: map[string]zerolog.Logger{}}

	writers := map[string]io.Writer{}
	for _, name := range cfg.HandlerNames {
		w, closer, err := newWriter(cfg, cfg.Handlers[name])
		if err != nil {
			loggers.Close()
			return nil, err
		}
		writers[name] = levelWriter{Writer: w, min: cfg.Handlers[name].Level.Zerolog()}
		if closer != nil {
			loggers.closers = append(loggers.closers, closer)
		}
	}

	root := cfg.Loggers[RootLogger]
	for _, name := range cfg.LoggerNames {
		logger := cfg.Loggers[name]

		handlers := logger.Handlers
		if logger.Propagate && name != RootLogger {
			handlers = mergeHandlers(handlers, root.Handlers)
		}
		ws := make([]io.Writer, 0, len(handlers))
		for _, handler := range handlers {
			ws = append(ws, writers[handler])
		}

		level := logger.Level
		if level == NotSet && name != RootLogger {
			level = root.Level
		}

		qualname := logger.Qualname
		if name == RootLogger {
			qualname = RootLogger
		}
		zl := zerolog.New(zerolog.MultiLevelWriter(ws...)).
			Level(level.Zerolog()).
			With().Timestamp().Str(logging.NAME, qualname).
			Logger()

		loggers.byName[qualname] = zl
		if name == RootLogger {
			loggers.root = zl
		}
	}

	return loggers, nil
}

// levelWriter gates a handler's sink at the handler's severity threshold.
type levelWriter struct {
	io.Writer
	min zerolog.Level
}

func (w levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < w.min {
		return len(p), nil
	}
	return w.Writer.Write(p)
}

func newWriter(cfg *Config, handler *Handler) (io.Writer, io.Closer, error) {
	switch handler.Class {
	case StreamHandler:
		out := os.Stderr
		if handler.Stream == "sys.stdout" {
			out = os.Stdout
		}
		w := zerolog.ConsoleWriter{Out: out, NoColor: true}
		if layout := dateFormat(cfg, handler); layout != "" {
			w.TimeFormat = layout
		}
		return w, nil, nil
	case FileHandler:
		flags := os.O_CREATE | os.O_WRONLY
		if handler.Mode == "w" {
			flags |= os.O_TRUNC
		} else {
			flags |= os.O_APPEND
		}
		if err := os.MkdirAll(filepath.Dir(handler.Filename), 0755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(handler.Filename, flags, 0644)
		if err != nil {
			return nil, nil, err
		}
		return f, f, nil
	case RotatingFileHandler:
		// lumberjack sizes in MiB
		maxSize := int(handler.MaxBytes / (1024 * 1024))
		if maxSize == 0 {
			maxSize = 1
		}
		w := &lumberjack.Logger{
			Filename:   handler.Filename,
			MaxSize:    maxSize,
			MaxBackups: handler.BackupCount,
		}
		return w, w, nil
	default:
		return nil, nil, &UnknownClassError{Handler: handler.Name, Class: handler.Class.String()}
	}
}

func dateFormat(cfg *Config, handler *Handler) string {
	if handler.Formatter == "" {
		return ""
	}
	formatter := cfg.Formatters[handler.Formatter]
	if formatter.DateFormat == "" {
		return ""
	}
	return translateDateFormat(formatter.DateFormat)
}

func mergeHandlers(handlers, rootHandlers []string) []string {
	merged := make([]string, len(handlers), len(handlers)+len(rootHandlers))
	copy(merged, handlers)
	for _, h := range rootHandlers {
		found := false
		for _, existing := range merged {
			if existing == h {
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, h)
		}
	}
	return merged
}
