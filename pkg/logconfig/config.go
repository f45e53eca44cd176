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
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// RootLogger is the name of the logger that must always be defined.
const RootLogger = "root"

// Config is the parsed logging configuration.
// It is built once by Load/Parse and never mutated afterwards.
type Config struct {
	Loggers    map[string]*Logger
	Handlers   map[string]*Handler
	Formatters map[string]*Formatter

	// index section ordering, preserved for deterministic reporting
	LoggerNames    []string
	HandlerNames   []string
	FormatterNames []string
}

// Logger defines a named logger : its severity threshold and the ordered
// list of handlers that receive its records.
type Logger struct {
	Name      string
	Level     Level
	Handlers  []string
	Qualname  string
	Propagate bool
}

// Handler defines a logging sink with a severity threshold and a formatter
// reference. The sink parameters come from the handler's args tuple or from
// the equivalent explicit keys.
type Handler struct {
	Name      string
	Class     Class
	Level     Level
	Formatter string

	// sink parameters
	Stream      string // StreamHandler : sys.stdout or sys.stderr
	Filename    string // FileHandler / RotatingFileHandler
	Mode        string // file open mode : a = append, w = truncate
	MaxBytes    int64  // RotatingFileHandler : rotate above this size
	BackupCount int    // RotatingFileHandler : rotated files to retain
}

// Formatter defines how a record is rendered : an output template and a
// date/time template.
type Formatter struct {
	Name       string
	Format     string
	DateFormat string
}

// Class identifies the underlying sink type of a handler.
type Class int

// Handler sink classes
const (
	StreamHandler Class = iota
	FileHandler
	RotatingFileHandler
)

func (c Class) String() string {
	switch c {
	case StreamHandler:
		return "StreamHandler"
	case FileHandler:
		return "FileHandler"
	case RotatingFileHandler:
		return "handlers.RotatingFileHandler"
	default:
		panic(fmt.Sprintf("UNKNOWN CLASS : %d", c))
	}
}

// ParseClass parses a handler class name. The "handlers." and "logging."
// prefixes are accepted and ignored.
func ParseClass(s string) (Class, error) {
	name := strings.TrimSpace(s)
	name = strings.TrimPrefix(name, "logging.")
	name = strings.TrimPrefix(name, "handlers.")
	switch name {
	case "StreamHandler":
		return StreamHandler, nil
	case "FileHandler":
		return FileHandler, nil
	case "RotatingFileHandler":
		return RotatingFileHandler, nil
	default:
		return 0, &UnknownClassError{Class: s}
	}
}

// Level is a record severity threshold.
type Level int

// Severity levels, ordered from least to most severe.
// NotSet on a logger means inherit, i.e., fall back to the root level.
const (
	NotSet Level = iota
	Debug
	Info
	Warning
	Error
	Critical
)

func (l Level) String() string {
	switch l {
	case NotSet:
		return "NOTSET"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	default:
		panic(fmt.Sprintf("UNKNOWN LEVEL : %d", l))
	}
}

// Zerolog maps the level to its zerolog equivalent.
func (l Level) Zerolog() zerolog.Level {
	switch l {
	case NotSet:
		return zerolog.TraceLevel
	case Debug:
		return zerolog.DebugLevel
	case Info:
		return zerolog.InfoLevel
	case Warning:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	case Critical:
		return zerolog.FatalLevel
	default:
		return zerolog.NoLevel
	}
}

// ParseLevel parses a severity level name. Names are case insensitive and
// WARN / FATAL are accepted as aliases.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NOTSET":
		return NotSet, nil
	case "DEBUG":
		return Debug, nil
	case "INFO":
		return Info, nil
	case "WARN", "WARNING":
		return Warning, nil
	case "ERROR":
		return Error, nil
	case "CRITICAL", "FATAL":
		return Critical, nil
	default:
		return 0, &UnknownLevelError{Level: s}
	}
}
