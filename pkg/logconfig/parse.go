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
	"strings"

	"gopkg.in/ini.v1"
)

// index sections
const (
	sectionLoggers    = "loggers"
	sectionHandlers   = "handlers"
	sectionFormatters = "formatters"

	loggerSectionPrefix    = "logger_"
	handlerSectionPrefix   = "handler_"
	formatterSectionPrefix = "formatter_"
)

// Load reads and parses the logging configuration file at path.
func Load(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return parse(f)
}

// Parse parses logging configuration source.
func Parse(src []byte) (*Config, error) {
	f, err := ini.Load(src)
	if err != nil {
		return nil, err
	}
	return parse(f)
}

func parse(f *ini.File) (*Config, error) {
	cfg := &Config{
		Loggers:    map[string]*Logger{},
		Handlers:   map[string]*Handler{},
		Formatters: map[string]*Formatter{},
	}

	var err error
	if cfg.LoggerNames, err = indexKeys(f, sectionLoggers); err != nil {
		return nil, err
	}
	if cfg.HandlerNames, err = indexKeys(f, sectionHandlers); err != nil {
		return nil, err
	}
	if cfg.FormatterNames, err = indexKeys(f, sectionFormatters); err != nil {
		return nil, err
	}

	for _, name := range cfg.LoggerNames {
		logger, err := parseLogger(f, name)
		if err != nil {
			return nil, err
		}
		cfg.Loggers[name] = logger
	}
	for _, name := range cfg.HandlerNames {
		handler, err := parseHandler(f, name)
		if err != nil {
			return nil, err
		}
		cfg.Handlers[name] = handler
	}
	for _, name := range cfg.FormatterNames {
		formatter, err := parseFormatter(f, name)
		if err != nil {
			return nil, err
		}
		cfg.Formatters[name] = formatter
	}

	return cfg, nil
}

// indexKeys returns the entity names listed by the index section's 'keys' entry.
func indexKeys(f *ini.File, section string) ([]string, error) {
	sec, err := f.GetSection(section)
	if err != nil {
		return nil, &MissingSectionError{Section: section}
	}
	return splitList(sec.Key("keys").String()), nil
}

func splitList(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func parseLogger(f *ini.File, name string) (*Logger, error) {
	sec, err := f.GetSection(loggerSectionPrefix + name)
	if err != nil {
		return nil, &MissingSectionError{Section: loggerSectionPrefix + name}
	}

	level, err := ParseLevel(sec.Key("level").String())
	if err != nil {
		return nil, err
	}

	logger := &Logger{
		Name:      name,
		Level:     level,
		Handlers:  splitList(sec.Key("handlers").String()),
		Qualname:  sec.Key("qualname").String(),
		Propagate: true,
	}
	if sec.HasKey("propagate") {
		logger.Propagate = sec.Key("propagate").String() != "0"
	}
	if logger.Qualname == "" && name != RootLogger {
		logger.Qualname = name
	}
	return logger, nil
}

func parseHandler(f *ini.File, name string) (*Handler, error) {
	sec, err := f.GetSection(handlerSectionPrefix + name)
	if err != nil {
		return nil, &MissingSectionError{Section: handlerSectionPrefix + name}
	}

	class, err := ParseClass(sec.Key("class").String())
	if err != nil {
		if e, ok := err.(*UnknownClassError); ok {
			e.Handler = name
		}
		return nil, err
	}

	level, err := ParseLevel(sec.Key("level").String())
	if err != nil {
		return nil, err
	}

	handler := &Handler{
		Name:      name,
		Class:     class,
		Level:     level,
		Formatter: sec.Key("formatter").String(),
		Mode:      "a",
	}

	if sec.HasKey("args") {
		if err := applyArgs(handler, sec.Key("args").String()); err != nil {
			return nil, err
		}
	}

	// explicit keys override the args tuple
	if sec.HasKey("filename") {
		handler.Filename = sec.Key("filename").String()
	}
	if sec.HasKey("mode") {
		handler.Mode = sec.Key("mode").String()
	}
	if sec.HasKey("maxBytes") {
		if handler.MaxBytes, err = sec.Key("maxBytes").Int64(); err != nil {
			return nil, &ArgsSyntaxError{Handler: name, Args: sec.Key("maxBytes").String(), Reason: "maxBytes must be an integer"}
		}
	}
	if sec.HasKey("backupCount") {
		if handler.BackupCount, err = sec.Key("backupCount").Int(); err != nil {
			return nil, &ArgsSyntaxError{Handler: name, Args: sec.Key("backupCount").String(), Reason: "backupCount must be an integer"}
		}
	}

	return handler, nil
}

// applyArgs maps the handler's constructor argument tuple onto the sink
// parameters for the handler's class.
func applyArgs(handler *Handler, raw string) error {
	args, err := parseArgs(raw)
	if err != nil {
		return &ArgsSyntaxError{Handler: handler.Name, Args: raw, Reason: err.Error()}
	}

	str := func(i int) string {
		if i < len(args) && !args[i].isNum {
			return args[i].str
		}
		return ""
	}

	switch handler.Class {
	case StreamHandler:
		if s := str(0); s != "" {
			handler.Stream = s
		}
	case FileHandler:
		handler.Filename = str(0)
		if mode := str(1); mode != "" {
			handler.Mode = mode
		}
	case RotatingFileHandler:
		handler.Filename = str(0)
		if mode := str(1); mode != "" {
			handler.Mode = mode
		}
		if len(args) > 2 {
			if !args[2].isNum {
				return &ArgsSyntaxError{Handler: handler.Name, Args: raw, Reason: "maxBytes must be an integer"}
			}
			handler.MaxBytes = args[2].num
		}
		if len(args) > 3 {
			if !args[3].isNum {
				return &ArgsSyntaxError{Handler: handler.Name, Args: raw, Reason: "backupCount must be an integer"}
			}
			handler.BackupCount = int(args[3].num)
		}
	}
	return nil
}

func parseFormatter(f *ini.File, name string) (*Formatter, error) {
	sec, err := f.GetSection(formatterSectionPrefix + name)
	if err != nil {
		return nil, &MissingSectionError{Section: formatterSectionPrefix + name}
	}
	return &Formatter{
		Name:       name,
		Format:     sec.Key("format").String(),
		DateFormat: sec.Key("datefmt").String(),
	}, nil
}
