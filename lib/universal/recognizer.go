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

package universal

import (
	"strings"

	"github.com/antflydb/labreport/lib/report"
	"github.com/antflydb/labreport/lib/tokens"
)

// testLookahead bounds the forward scan for a test row's value, unit, and
// reference range.
const testLookahead = 5

// recognizeTest tries to read a test-result row starting at position i. The
// fragment there is the candidate name, optionally carrying its value after
// an embedded colon; the following fragments are classified as value, unit,
// or reference range, each slot filled at most once, in whatever order OCR
// emitted them. Noise inside the window is skipped rather than ending the
// row, but a later "key: value" fragment does end it once a value is in
// hand: that is the next row starting.
//
// A row is accepted when it has a value, or when the bare name is a known
// test. consumed is 1 for the name plus one per filled slot, so fragments
// the classifier did not recognize are revisited by the main scan.
func recognizeTest(texts []string, i int) (result report.TestResult, consumed int, ok bool) {
	name := strings.TrimSpace(texts[i])
	if name == "" || tokens.IsColumnHeader(name) || tokens.IsSectionHeader(name) {
		return report.TestResult{}, 0, false
	}

	if idx := strings.Index(name, ":"); idx >= 0 {
		prefix := strings.TrimSpace(name[:idx])
		suffix := strings.TrimSpace(name[idx+1:])
		if prefix == "" || suffix == "" {
			return report.TestResult{}, 0, false
		}
		name = prefix
		result.ObservedValue = suffix
	}
	if tokens.IsNumber(name) || tokens.IsUnit(name) || tokens.IsReferenceRange(name) {
		return report.TestResult{}, 0, false
	}
	result.TestName = name

scan:
	for j := i + 1; j <= i+testLookahead && j < len(texts); j++ {
		if result.ObservedValue != "" && result.Unit != "" && result.ReferenceRange != "" {
			break
		}
		raw := strings.TrimSpace(texts[j])
		if raw == "" || tokens.IsSeparator(raw) {
			continue
		}
		// A detached ": 13.5" fragment still carries its value.
		candidate := strings.TrimSpace(strings.TrimLeft(raw, ":"))
		if candidate == "" {
			continue
		}

		switch {
		case result.ObservedValue == "" && tokens.IsNumber(candidate) && !tokens.IsReferenceRange(candidate):
			result.ObservedValue = candidate
		case result.Unit == "" && tokens.IsUnit(candidate):
			result.Unit = candidate
		case result.ReferenceRange == "" && tokens.IsReferenceRange(candidate):
			result.ReferenceRange = candidate
		case result.ObservedValue != "" && startsNextRow(raw):
			break scan
		}
	}

	if result.ObservedValue == "" && !tokens.IsTestName(result.TestName) {
		return report.TestResult{}, 0, false
	}

	consumed = 1
	for _, field := range []string{result.ObservedValue, result.Unit, result.ReferenceRange} {
		if field != "" {
			consumed++
		}
	}
	return result, consumed, true
}

// startsNextRow reports whether a fragment is the "key: value" head of a
// following row. A bare trailing colon carries no value and is layout noise,
// not a row boundary.
func startsNextRow(raw string) bool {
	idx := strings.Index(raw, ":")
	return idx >= 0 && strings.TrimSpace(raw[idx+1:]) != ""
}
