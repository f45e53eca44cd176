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

import "strings"

// strftime verb -> Go reference time layout
var strftimeLayouts = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'z': "-0700",
	'Z': "MST",
	'%': "%",
}

// translateDateFormat converts a strftime style datefmt template into a Go
// time layout. Unrecognized verbs are kept literally.
func translateDateFormat(datefmt string) string {
	var layout strings.Builder
	for i := 0; i < len(datefmt); i++ {
		c := datefmt[i]
		if c != '%' || i+1 >= len(datefmt) {
			layout.WriteByte(c)
			continue
		}
		i++
		if goLayout, ok := strftimeLayouts[datefmt[i]]; ok {
			layout.WriteString(goLayout)
		} else {
			layout.WriteByte('%')
			layout.WriteByte(datefmt[i])
		}
	}
	return layout.String()
}
