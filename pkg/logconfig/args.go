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
	"strconv"
	"strings"
)

// arg is a single parsed value from a handler args tuple.
// It is either a string (quoted literal or bare identifier) or an integer.
type arg struct {
	str   string
	num   int64
	isNum bool
}

// parseArgs parses a handler constructor argument tuple, e.g.
//
//	('logs/container.log', 'a', 10*1024*1024, 3)
//	(sys.stdout,)
//
// Supported argument forms : quoted strings, bare identifiers, and integers.
// Integers may be written as products, e.g. 10*1024*1024.
func parseArgs(raw string) ([]arg, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("not a parenthesized tuple")
	}
	s = s[1 : len(s)-1]

	tokens, err := splitArgs(s)
	if err != nil {
		return nil, err
	}

	args := make([]arg, 0, len(tokens))
	for _, tok := range tokens {
		v, err := parseArg(tok)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// splitArgs splits on top level commas, honoring single and double quotes.
// A trailing comma (single element tuple syntax) is allowed.
func splitArgs(s string) ([]string, error) {
	var tokens []string
	var buf strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			buf.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
			buf.WriteByte(c)
		case c == ',':
			tokens = append(tokens, buf.String())
			buf.Reset()
		default:
			buf.WriteByte(c)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated string")
	}
	if last := strings.TrimSpace(buf.String()); last != "" {
		tokens = append(tokens, last)
	}
	return tokens, nil
}

func parseArg(tok string) (arg, error) {
	t := strings.TrimSpace(tok)
	if t == "" {
		return arg{}, fmt.Errorf("empty argument")
	}

	if (t[0] == '\'' || t[0] == '"') && len(t) >= 2 && t[len(t)-1] == t[0] {
		return arg{str: t[1 : len(t)-1]}, nil
	}

	// integer, possibly a product such as 10*1024*1024
	if c := t[0]; c == '-' || (c >= '0' && c <= '9') {
		product := int64(1)
		for _, factor := range strings.Split(t, "*") {
			n, err := strconv.ParseInt(strings.TrimSpace(factor), 10, 64)
			if err != nil {
				return arg{}, fmt.Errorf("invalid integer %q", t)
			}
			product *= n
		}
		return arg{num: product, isNum: true}, nil
	}

	// bare identifier, e.g. sys.stdout
	return arg{str: t}, nil
}
