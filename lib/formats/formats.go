// Copyright 2025 Antfly, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package formats detects known laboratory report layouts and extracts
// structured data from them with fixed-offset template readers.
//
// Detection is a hint, not a guarantee: callers fall back to the universal
// parser when a template reader comes up empty.
package formats

import "strings"

// Format identifies a known report layout.
type Format string

const (
	// FormatParth is the PARTH PATHOLOGY LABORATORY layout.
	FormatParth Format = "parth"
	// FormatGrant is the Grant Medical Foundation layout.
	FormatGrant Format = "grant"
	// FormatArfa is the ARFA DIAGNOSTIC CENTRE layout.
	FormatArfa Format = "arfa"
	// FormatUnknown means no known layout was recognized.
	FormatUnknown Format = "unknown"
)

// detectWindow is how many leading fragments the detector inspects.
const detectWindow = 50

// probes are checked in order; the first literal hit wins. The order is part
// of the output contract and must not change.
var probes = []struct {
	format   Format
	literals []string
}{
	{FormatParth, []string{"PARTH PATHOLOGY", "PARTH"}},
	{FormatGrant, []string{"GRANT MEDICAL", "GRANT"}},
	{FormatArfa, []string{"ARFA DIAGNOSTIC", "ARFA"}},
}

// Detect scans the leading fragments for a laboratory-identifying literal
// and returns the matching format, or FormatUnknown. Deterministic and free
// of side effects.
func Detect(texts []string) Format {
	n := len(texts)
	if n > detectWindow {
		n = detectWindow
	}
	joined := strings.ToUpper(strings.Join(texts[:n], " "))
	for _, probe := range probes {
		for _, literal := range probe.literals {
			if strings.Contains(joined, literal) {
				return probe.format
			}
		}
	}
	return FormatUnknown
}
