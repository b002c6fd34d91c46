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

package formats

import (
	"strings"
	"unicode"

	"github.com/antflydb/labreport/lib/report"
)

// The three known layouts share one reader: a scalar-field rule table plus a
// table-section rule table per template. Only the literals and walk options
// differ between templates; the control flow lives here once.

// target selects the report section a field rule writes into.
type target int

const (
	targetPatient target = iota
	targetLab
	targetMorphology
	targetFooter
)

// captureMode selects how a field rule obtains its value once its keyword
// matched the current fragment.
type captureMode int

const (
	// captureNext takes the following fragment verbatim.
	captureNext captureMode = iota
	// captureColonNext requires the following fragment to start with ":"
	// and takes it with colons stripped. Consumes two fragments whether or
	// not the value qualified.
	captureColonNext
	// captureColonOrDigit scans the next two fragments for one that starts
	// with ":" or carries a digit, and takes it with colons stripped.
	captureColonOrDigit
	// captureLiteral stores a fixed literal and consumes one fragment.
	captureLiteral
	// captureSelf stores the matched fragment itself.
	captureSelf
	// captureColonJoin requires the next fragment to start with ":" and
	// joins it (colons stripped) with the fragment after it.
	captureColonJoin
	// captureSignature stores the matched fragment as the doctor name, the
	// next fragment as qualification, and a following "Registration"
	// fragment as registration.
	captureSignature
	// capturePrintBlock handles the Printed By / Printed On footer pair.
	capturePrintBlock
)

// fieldRule extracts one scalar field at a fixed offset from its keyword.
type fieldRule struct {
	contains   []string // all substrings must be present (case-sensitive)
	target     target
	key        string
	mode       captureMode
	literal    string // captureLiteral value
	stripColon bool   // strip colons from a captureNext value
	once       bool   // keep only the first captured value
}

// walkKind selects the strategy for walking a tabular section.
type walkKind int

const (
	// walkColonPairs pairs a name fragment with a following ":value"
	// fragment, then takes unit and range at fixed offsets.
	walkColonPairs walkKind = iota
	// walkSingleValue reads one ":value" unit range triple under a fixed
	// test name taken from the section marker itself.
	walkSingleValue
	// walkLookahead scans a bounded window after a whitelisted test name
	// for value, unit, and range in any order.
	walkLookahead
)

// sectionRule walks one tabular section of the report.
type sectionRule struct {
	trigger []string // any-of substrings that open the section
	headers []string // column-header fragments skipped after the trigger
	stops   []string // any-of substrings that end the walk
	walk    walkKind

	category         string            // category stamped on every row
	categoryTriggers map[string]string // in-walk marker substring -> category
	skipContains     []string          // in-walk fragments to skip entirely
	fixups           map[string]string // OCR fix-ups: lowercase substring -> test name
	indices          bool              // rows default to blood_indices
	indexKeywords    []string          // route rows with these name substrings to blood_indices
	indexNames       []string          // exact names that may omit the ":" pairing
	unitShift        bool              // shift a digit-free unit slot into the range
	fixedName        string            // walkSingleValue test name
	testNames        []string          // walkLookahead name whitelist
	unitLiterals     []string          // walkLookahead unit substrings
	stopDoctorAfter  int               // walkLookahead: "Dr." past this index ends the walk
}

// Template is a configured reader for one known layout.
type Template struct {
	format   Format
	fields   []fieldRule
	sections []sectionRule
}

// Format returns the layout this template reads.
func (t *Template) Format() Format {
	return t.format
}

// Read extracts a report by walking the fragments with this template's fixed
// offset assumptions. It never fails: an unrecognizable stream produces an
// empty report, which the caller treats as a signal to fall back.
func (t *Template) Read(texts []string) *report.Report {
	rep := report.New()
	for i := 0; i < len(texts); {
		if next, ok := t.applyFieldRules(rep, texts, i); ok {
			i = next
			continue
		}
		if next, ok := t.applySectionRules(rep, texts, i); ok {
			i = next
			continue
		}
		i++
	}
	return rep
}

func (t *Template) applyFieldRules(rep *report.Report, texts []string, i int) (int, bool) {
	text := texts[i]
	for _, rule := range t.fields {
		if !containsAll(text, rule.contains) {
			continue
		}
		if next, ok := applyCapture(rep, texts, i, rule); ok {
			return next, true
		}
	}
	return i, false
}

func applyCapture(rep *report.Report, texts []string, i int, rule fieldRule) (int, bool) {
	switch rule.mode {
	case captureLiteral:
		storeField(rep, rule, rule.literal)
		return i + 1, true

	case captureSelf:
		if rule.once {
			if i+1 >= len(texts) {
				return i, false
			}
			if _, exists := fieldSection(rep, rule.target)[rule.key]; !exists {
				storeField(rep, rule, texts[i])
			}
			return i + 1, true
		}
		storeField(rep, rule, texts[i])
		return i + 1, true

	case captureNext:
		if i+1 >= len(texts) {
			return i, false
		}
		value := strings.TrimSpace(texts[i+1])
		if rule.stripColon {
			value = stripColons(texts[i+1])
		}
		if value != "" {
			storeField(rep, rule, value)
		}
		return i + 2, true

	case captureColonNext:
		if i+1 >= len(texts) {
			return i, false
		}
		if strings.HasPrefix(texts[i+1], ":") {
			if value := stripColons(texts[i+1]); value != "" {
				storeField(rep, rule, value)
			}
		}
		return i + 2, true

	case captureColonOrDigit:
		for j := i + 1; j < i+3 && j < len(texts); j++ {
			next := texts[j]
			if strings.HasPrefix(next, ":") || strings.ContainsFunc(next, unicode.IsDigit) {
				if value := stripColons(next); value != "" {
					storeField(rep, rule, value)
					return j + 1, true
				}
			}
		}
		return i + 1, true

	case captureColonJoin:
		if i+1 >= len(texts) || !strings.HasPrefix(texts[i+1], ":") {
			return i, false
		}
		value := stripColons(texts[i+1])
		if i+2 < len(texts) {
			value = strings.TrimSpace(value + " " + texts[i+2])
		}
		storeField(rep, rule, value)
		return i + 3, true

	case captureSignature:
		rep.FooterInfo["doctor_name"] = texts[i]
		if i+1 < len(texts) {
			rep.FooterInfo["qualification"] = texts[i+1]
		}
		if i+2 < len(texts) && strings.Contains(texts[i+2], "Registration") {
			rep.FooterInfo["registration"] = texts[i+2]
		}
		return i + 3, true

	case capturePrintBlock:
		if i+1 < len(texts) {
			rep.FooterInfo["printed_by"] = stripColons(texts[i+1])
		}
		if i+2 < len(texts) && strings.Contains(texts[i+2], "Printed On") && i+3 < len(texts) {
			rep.FooterInfo["printed_on"] = strings.TrimSpace(texts[i+3])
		}
		return i + 4, true
	}
	return i, false
}

func (t *Template) applySectionRules(rep *report.Report, texts []string, i int) (int, bool) {
	text := texts[i]
	for _, rule := range t.sections {
		if !containsAny(text, rule.trigger) {
			continue
		}
		i++
		for i < len(texts) && isHeaderFragment(texts[i], rule.headers) {
			i++
		}
		switch rule.walk {
		case walkColonPairs:
			return rule.walkColonPairs(rep, texts, i), true
		case walkSingleValue:
			return rule.walkSingleValue(rep, texts, i), true
		case walkLookahead:
			return rule.walkLookahead(rep, texts, i), true
		}
	}
	return i, false
}

func (r *sectionRule) walkColonPairs(rep *report.Report, texts []string, i int) int {
	category := r.category
	for i < len(texts) {
		text := texts[i]
		if containsAny(text, r.stops) {
			return i
		}
		if marker, ok := matchCategoryTrigger(text, r.categoryTriggers); ok {
			category = marker
			i++
			continue
		}
		if containsAny(text, r.skipContains) {
			i++
			continue
		}
		if text == "" || strings.HasPrefix(text, ":") || isHeaderFragment(text, r.headers) {
			i++
			continue
		}

		name := applyFixups(text, r.fixups)
		explicit := containsExact(r.indexNames, text)
		paired := i+1 < len(texts) && strings.HasPrefix(texts[i+1], ":")
		if !paired && !explicit {
			i++
			continue
		}

		var value string
		if paired {
			value = stripColons(texts[i+1])
		} else if i+1 < len(texts) {
			// Explicit index names tolerate a bare value with no ":".
			value = strings.TrimSpace(texts[i+1])
		} else {
			i++
			continue
		}
		unit, refRange := at(texts, i+2), at(texts, i+3)

		// Some layouts omit the unit column: when the unit slot carries no
		// digit or hyphen at all it is actually the reference range shifted
		// left by one.
		if r.unitShift && unit != "" && !strings.ContainsFunc(unit, func(c rune) bool {
			return unicode.IsDigit(c) || c == '-'
		}) {
			refRange = unit
			unit = ""
		}

		row := report.TestResult{
			TestName:       name,
			ObservedValue:  value,
			Unit:           unit,
			ReferenceRange: refRange,
		}
		if r.indices || matchesIndexKeywords(name, r.indexKeywords) {
			rep.BloodIndices = append(rep.BloodIndices, row)
		} else {
			if category != "" {
				row.Category = category
			}
			rep.HaematologyReport = append(rep.HaematologyReport, row)
		}
		i += 4
	}
	return i
}

func (r *sectionRule) walkSingleValue(rep *report.Report, texts []string, i int) int {
	if i < len(texts) && strings.HasPrefix(texts[i], ":") {
		rep.HaematologyReport = append(rep.HaematologyReport, report.TestResult{
			TestName:       r.fixedName,
			ObservedValue:  stripColons(texts[i]),
			Unit:           at(texts, i+1),
			ReferenceRange: at(texts, i+2),
		})
		return i + 3
	}
	return i
}

func (r *sectionRule) walkLookahead(rep *report.Report, texts []string, i int) int {
	for i < len(texts) {
		text := texts[i]
		if containsAny(text, r.stops) {
			return i
		}
		if r.stopDoctorAfter > 0 && i > r.stopDoctorAfter && strings.Contains(text, "Dr.") {
			return i
		}
		if strings.TrimSpace(text) == "" {
			i++
			continue
		}
		if !containsAny(text, r.testNames) {
			i++
			continue
		}

		var value, unit, refRange string
		j := i + 1
		for j < i+6 && j < len(texts) {
			next := texts[j]
			// Gender-qualified range prefixes sit between the name and the
			// shared range.
			if strings.Contains(next, "Female:") || strings.Contains(next, "Male:") {
				j++
				continue
			}
			if refRange == "" && strings.Contains(next, "-") && strings.ContainsFunc(next, unicode.IsDigit) {
				refRange = strings.TrimSpace(next)
				j++
				continue
			}
			if unit == "" && containsAny(next, r.unitLiterals) {
				unit = strings.TrimSpace(next)
				j++
				continue
			}
			// A value fragment carries digits but no range separator and no
			// unit text, "/" included to keep dates and ratios out.
			if value == "" && strings.ContainsFunc(next, unicode.IsDigit) &&
				!strings.Contains(next, "-") && !strings.Contains(next, "/") &&
				!containsAny(next, r.unitLiterals) {
				value = strings.TrimSpace(next)
				j++
				if j < len(texts) && unit == "" &&
					(strings.Contains(texts[j], "/") || containsAny(texts[j], r.unitLiterals)) {
					unit = strings.TrimSpace(texts[j])
					j++
				}
				if j < len(texts) && refRange == "" &&
					strings.Contains(texts[j], "-") && strings.ContainsFunc(texts[j], unicode.IsDigit) {
					refRange = strings.TrimSpace(texts[j])
					j++
				}
				break
			}
			j++
		}

		row := report.TestResult{
			TestName:       text,
			ObservedValue:  value,
			Unit:           unit,
			ReferenceRange: refRange,
		}
		if matchesIndexKeywords(text, r.indexKeywords) {
			rep.BloodIndices = append(rep.BloodIndices, row)
		} else {
			rep.HaematologyReport = append(rep.HaematologyReport, row)
		}
		i = j
	}
	return i
}

func fieldSection(rep *report.Report, t target) map[string]string {
	switch t {
	case targetPatient:
		return rep.PatientInfo
	case targetLab:
		return rep.LaboratoryInfo
	case targetMorphology:
		return rep.Morphology
	default:
		return rep.FooterInfo
	}
}

func storeField(rep *report.Report, rule fieldRule, value string) {
	fieldSection(rep, rule.target)[rule.key] = value
}

func stripColons(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, ":", ""))
}

func at(texts []string, i int) string {
	if i < len(texts) {
		return strings.TrimSpace(texts[i])
	}
	return ""
}

func containsAll(text string, subs []string) bool {
	if len(subs) == 0 {
		return false
	}
	for _, sub := range subs {
		if !strings.Contains(text, sub) {
			return false
		}
	}
	return true
}

func containsAny(text string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}

func containsExact(names []string, text string) bool {
	for _, name := range names {
		if text == name {
			return true
		}
	}
	return false
}

func isHeaderFragment(text string, headers []string) bool {
	for _, header := range headers {
		if text == header {
			return true
		}
	}
	return false
}

func matchCategoryTrigger(text string, triggers map[string]string) (string, bool) {
	for marker, category := range triggers {
		if strings.Contains(text, marker) {
			return category, true
		}
	}
	return "", false
}

func applyFixups(text string, fixups map[string]string) string {
	lower := strings.ToLower(text)
	for fragment, replacement := range fixups {
		if strings.Contains(lower, fragment) {
			return replacement
		}
	}
	return text
}

func matchesIndexKeywords(name string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	lower := strings.ToLower(name)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
