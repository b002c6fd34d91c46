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

// Package tokens classifies individual OCR text fragments.
//
// OCR output for a lab report arrives as a flat ordered sequence of short
// fragments with no row or column structure. These predicates answer the
// local questions the parsers need at each position: is this fragment a
// numeric value, a measurement unit, a reference range, or a known field
// keyword.
package tokens

import (
	"strconv"
	"strings"
	"unicode"
)

// Normalize lowercases and trims a fragment for keyword comparison.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// numberSuffixes are unit suffixes that OCR frequently glues onto a value
// token ("13.5g/dl"). They are stripped before the numeric parse.
var numberSuffixes = []string{"g/dl", "%", "fl", "pg"}

// IsNumber reports whether the fragment is a numeric observed value,
// tolerating a small set of glued-on unit suffixes.
func IsNumber(text string) bool {
	if text == "" {
		return false
	}
	cleaned := Normalize(text)
	for _, suffix := range numberSuffixes {
		cleaned = strings.ReplaceAll(cleaned, suffix, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return false
	}
	_, err := strconv.ParseFloat(cleaned, 64)
	return err == nil
}

// unitLiterals is the closed list of measurement units that appear across
// the supported report layouts.
var unitLiterals = []string{
	"g/dl", "g/l", "%", "fl", "pg", "/ul", "/cumm", "/l", "million/ul",
	"x103", "x10^3", "cells/ul", "lakhs", "cmm", "mill/cumm",
}

// IsUnit reports whether the fragment contains a known measurement unit.
func IsUnit(text string) bool {
	if text == "" {
		return false
	}
	normalized := Normalize(text)
	for _, unit := range unitLiterals {
		if strings.Contains(normalized, unit) {
			return true
		}
	}
	return false
}

// IsReferenceRange reports whether the fragment looks like a reference
// interval ("13-17", "4.5 - 6.0"). The hyphen-plus-digit fallback is
// deliberately permissive: OCR drops the spacing around range separators
// often enough that recall matters more than precision here.
func IsReferenceRange(text string) bool {
	if text == "" {
		return false
	}
	if hasNumberSeparatorNumber(text) {
		return true
	}
	if strings.Contains(text, "-") && strings.ContainsFunc(text, unicode.IsDigit) {
		return true
	}
	return false
}

// hasNumberSeparatorNumber matches a digit run, then one or more spaces or
// hyphens, then another digit run, anywhere in the fragment.
func hasNumberSeparatorNumber(text string) bool {
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		if !unicode.IsDigit(runes[i]) {
			i++
			continue
		}
		for i < len(runes) && unicode.IsDigit(runes[i]) {
			i++
		}
		j := i
		for j < len(runes) && (runes[j] == '-' || unicode.IsSpace(runes[j])) {
			j++
		}
		if j > i && j < len(runes) && unicode.IsDigit(runes[j]) {
			return true
		}
	}
	return false
}

// IsSeparator reports whether the fragment is bare punctuation that carries
// no content of its own.
func IsSeparator(text string) bool {
	switch text {
	case ":", ".", `"`, "'":
		return true
	}
	return false
}
