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

// Package universal is the format-agnostic fallback parser: a single-pass,
// stateful scan over an OCR fragment stream that recognizes key-value fields
// and tabular test results without knowing the report layout in advance.
//
// At each position the scan tries, in priority order: section markers, patient
// fields, laboratory fields, test results, morphology fields (when that
// section is open), footer fields, and finally a generic "key: value" capture
// into the report's catch-all bucket. The first matching rule wins and
// advances the cursor by however many fragments it consumed.
package universal

import (
	"strings"

	"go.uber.org/zap"

	"github.com/antflydb/labreport/lib/report"
	"github.com/antflydb/labreport/lib/tokens"
)

// Section marker families, matched by uppercase substring.
var (
	haematologyMarkers  = []string{"HAEMATOLOGY", "HEMATOLOGY", "CBC", "COMPLETE BLOOD COUNT"}
	indicesMarkers      = []string{"BLOOD INDICES", "RBC INDICES", "PLATELETS INDICES"}
	differentialMarkers = []string{"DIFFERENTIAL COUNT", "DIFFERENTIAL LEUCOCYTE COUNT"}
	absoluteMarkers     = []string{"ABSOLUTE LEUCOCYTE COUNT", "ABSOLUTE COUNT"}
	morphologyMarkers   = []string{"RBC MORPHOLOGY", "PLATELETS ON SMEAR", "MORPHOLOGY"}
)

// valueLookahead bounds the forward scan for a field's value.
const valueLookahead = 3

// Action names the rule that handled a scan position. Exposed so the step
// function can be exercised rule by rule in tests.
type Action string

const (
	ActionSkip       Action = "skip"
	ActionSection    Action = "section"
	ActionPatient    Action = "patient"
	ActionLab        Action = "lab"
	ActionTest       Action = "test"
	ActionMorphology Action = "morphology"
	ActionFooter     Action = "footer"
	ActionOther      Action = "other"
	ActionNone       Action = "none"
)

// state carries the scan's section context between positions.
type state struct {
	inHaematology  bool
	inBloodIndices bool
	inMorphology   bool

	// category persists until the next explicit category marker; it is NOT
	// cleared when a new top-level section opens. Downstream consumers
	// depend on the carried-over tags, so this stays as is.
	category string
}

// Parser is the universal fallback parser. It holds no per-parse state and
// is safe for concurrent use.
type Parser struct {
	logger *zap.Logger
}

// New returns a universal parser.
func New(logger *zap.Logger) *Parser {
	return &Parser{logger: logger.Named("universal")}
}

// Parse scans the fragment stream once and returns the structured report.
// A nil or empty stream yields an empty report, never an error: that is the
// documented degenerate case, not a failure.
func (p *Parser) Parse(texts []string) *report.Report {
	rep := report.New()
	if len(texts) == 0 {
		return rep
	}

	cleaned := make([]string, len(texts))
	for i, text := range texts {
		cleaned[i] = strings.TrimSpace(text)
	}

	st := &state{}
	for i := 0; i < len(cleaned); {
		action, next := step(st, rep, cleaned, i)
		if next <= i {
			// Every rule consumes at least one fragment; guard against a
			// stuck cursor all the same.
			next = i + 1
		}
		if action != ActionSkip && action != ActionNone && p.logger.Core().Enabled(zap.DebugLevel) {
			p.logger.Debug("Matched rule",
				zap.String("action", string(action)),
				zap.Int("position", i),
				zap.Int("consumed", next-i))
		}
		i = next
	}
	return rep
}

// step applies the rule table to one position and returns the action taken
// plus the next cursor position. It is a pure function of (state, report,
// fragments, position); the parser loop is just repeated application.
func step(st *state, rep *report.Report, texts []string, i int) (Action, int) {
	text := texts[i]
	if text == "" || tokens.IsSeparator(text) {
		return ActionSkip, i + 1
	}

	if action, next, ok := stepSection(st, texts, i); ok {
		return action, next
	}
	if action, next, ok := stepPatient(rep, texts, i); ok {
		return action, next
	}
	if action, next, ok := stepLab(rep, texts, i); ok {
		return action, next
	}
	if action, next, ok := stepTest(st, rep, texts, i); ok {
		return action, next
	}
	if st.inMorphology {
		if action, next, ok := stepMorphology(rep, texts, i); ok {
			return action, next
		}
	}
	if action, next, ok := stepFooter(rep, texts, i); ok {
		return action, next
	}
	if action, next, ok := stepOther(rep, texts, i); ok {
		return action, next
	}
	return ActionNone, i + 1
}

// stepSection handles section markers and updates the scan flags. The
// haematology marker additionally swallows any column-header fragments that
// follow it.
func stepSection(st *state, texts []string, i int) (Action, int, bool) {
	upper := strings.ToUpper(texts[i])

	switch {
	case containsAny(upper, haematologyMarkers):
		st.inHaematology = true
		st.inBloodIndices = false
		next := i + 1
		for next < len(texts) && tokens.IsColumnHeader(texts[next]) {
			next++
		}
		return ActionSection, next, true

	case containsAny(upper, indicesMarkers):
		st.inBloodIndices = true
		st.inHaematology = false
		return ActionSection, i + 1, true

	case containsAny(upper, differentialMarkers):
		st.category = "Differential Count"
		return ActionSection, i + 1, true

	case containsAny(upper, absoluteMarkers):
		st.category = "Absolute Count"
		return ActionSection, i + 1, true

	case containsAny(upper, morphologyMarkers):
		st.inMorphology = true
		return ActionSection, i + 1, true
	}
	return ActionNone, i, false
}

func stepPatient(rep *report.Report, texts []string, i int) (Action, int, bool) {
	field := tokens.PatientFields.Match(texts[i])
	if field == "" {
		return ActionNone, i, false
	}
	value, _, ok := extractValue(texts, i)
	if !ok {
		return ActionNone, i, false
	}
	if field == "age_gender" && strings.Contains(value, "/") {
		parts := strings.SplitN(value, "/", 2)
		rep.PatientInfo["age"] = strings.TrimSpace(parts[0])
		rep.PatientInfo["gender"] = strings.TrimSpace(parts[1])
	} else {
		rep.PatientInfo[field] = value
	}
	return ActionPatient, i + 2, true
}

func stepLab(rep *report.Report, texts []string, i int) (Action, int, bool) {
	field := tokens.LabFields.Match(texts[i])
	if field == "" {
		return ActionNone, i, false
	}
	if field == "name" {
		// Lab names often break across two fragments; join with the next
		// fragment unless it clearly starts a different field.
		labName := texts[i]
		next := i + 1
		if i+1 < len(texts) && !tokens.PatientFields.Matches(texts[i+1]) && !looksLikeFieldStart(texts[i+1]) {
			labName = strings.TrimSpace(labName + " " + texts[i+1])
			next = i + 2
		}
		rep.LaboratoryInfo["name"] = labName
		return ActionLab, next, true
	}
	value, _, ok := extractValue(texts, i)
	if !ok {
		return ActionNone, i, false
	}
	rep.LaboratoryInfo[field] = value
	return ActionLab, i + 2, true
}

func stepTest(st *state, rep *report.Report, texts []string, i int) (Action, int, bool) {
	result, consumed, ok := recognizeTest(texts, i)
	if !ok {
		return ActionNone, i, false
	}
	if st.category != "" {
		result.Category = st.category
	}
	if tokens.IndexTests.Matches(result.TestName) || st.inBloodIndices {
		rep.BloodIndices = append(rep.BloodIndices, result)
	} else {
		rep.HaematologyReport = append(rep.HaematologyReport, result)
	}
	return ActionTest, i + consumed, true
}

func stepMorphology(rep *report.Report, texts []string, i int) (Action, int, bool) {
	field := tokens.MorphologyFields.Match(texts[i])
	if field == "" {
		return ActionNone, i, false
	}
	value, _, ok := extractValue(texts, i)
	if !ok {
		return ActionNone, i, false
	}
	next := i + 2
	// Smear observations frequently run onto a continuation fragment; merge
	// it unless it starts a recognizable field or test.
	if i+2 < len(texts) {
		follow := texts[i+2]
		if follow != "" && !tokens.PatientFields.Matches(follow) && !tokens.IsTestName(follow) {
			value = strings.TrimSpace(value + " " + follow)
			next = i + 3
		}
	}
	rep.Morphology[field] = value
	return ActionMorphology, next, true
}

func stepFooter(rep *report.Report, texts []string, i int) (Action, int, bool) {
	field := tokens.FooterFields.Match(texts[i])
	if field == "" {
		return ActionNone, i, false
	}
	if value, _, ok := extractValue(texts, i); ok {
		rep.FooterInfo[field] = value
		return ActionFooter, i + 2, true
	}
	// Footer signatures are often a bare fragment with no separator at all;
	// the matched fragment itself is the value.
	rep.FooterInfo[field] = texts[i]
	return ActionFooter, i + 1, true
}

func stepOther(rep *report.Report, texts []string, i int) (Action, int, bool) {
	text := texts[i]
	if !strings.Contains(text, ":") {
		return ActionNone, i, false
	}
	key := strings.TrimSpace(strings.SplitN(text, ":", 2)[0])
	if len(key) <= 2 {
		return ActionNone, i, false
	}
	value, fromSelf, ok := extractValue(texts, i)
	if !ok {
		return ActionNone, i, false
	}
	rep.AddOther(key, value)
	if fromSelf {
		return ActionOther, i + 1, true
	}
	return ActionOther, i + 2, true
}

// extractValue finds the value for a key fragment at position i: an embedded
// ":value" suffix on the fragment itself, else the first qualifying fragment
// within the lookahead window. fromSelf reports whether the value came from
// the key fragment. ok is false when nothing qualifies, in which case the
// field is simply not recorded.
func extractValue(texts []string, i int) (value string, fromSelf bool, ok bool) {
	if idx := strings.Index(texts[i], ":"); idx >= 0 {
		if suffix := strings.TrimSpace(texts[i][idx+1:]); suffix != "" {
			return suffix, true, true
		}
	}
	for j := i + 1; j <= i+valueLookahead && j < len(texts); j++ {
		candidate := texts[j]
		if candidate == "" || tokens.IsSeparator(candidate) {
			continue
		}
		if strings.HasPrefix(candidate, ":") {
			// A detached ": value" fragment still carries the value.
			if suffix := strings.TrimSpace(strings.TrimLeft(candidate, ":")); suffix != "" {
				return suffix, false, true
			}
			continue
		}
		return candidate, false, true
	}
	return "", false, false
}

// looksLikeFieldStart reports whether a fragment opens a key-value field of
// its own, which rules it out as a lab-name continuation line.
func looksLikeFieldStart(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range []string{":", "date", "no", "id"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func containsAny(text string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}
