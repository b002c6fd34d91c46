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

package report

import (
	"sort"
	"strings"
)

// Document wraps a Report with the per-image envelope written alongside it.
type Document struct {
	ImageName   string `json:"image_name"`
	ImagePath   string `json:"image_path"`
	ProcessedAt string `json:"processed_at"`
	*Report
}

// Markdown renders the document deterministically: fixed section headings,
// key/value bullets for the map sections, and pipe tables for the two test
// collections. Map keys are emitted in sorted order so the same report always
// renders to the same bytes.
func (d Document) Markdown() string {
	var md strings.Builder
	md.WriteString("# Medical Report: " + d.ImageName + "\n\n")
	if d.ImagePath != "" {
		md.WriteString("**Image Path:** `" + d.ImagePath + "`\n\n")
	}
	if d.ProcessedAt != "" {
		md.WriteString("**Processed At:** " + d.ProcessedAt + "\n\n")
	}
	if d.Report == nil {
		return md.String()
	}

	writeFieldSection(&md, "Patient Information", d.PatientInfo)
	writeFieldSection(&md, "Laboratory Information", d.LaboratoryInfo)
	writeTestSection(&md, "Haematology Report", d.HaematologyReport)
	writeTestSection(&md, "Blood Indices", d.BloodIndices)
	writeFieldSection(&md, "Morphology", d.Morphology)
	writeFieldSection(&md, "Footer Information", d.FooterInfo)
	writeOtherSection(&md, d.OtherFields)

	return md.String()
}

func writeFieldSection(md *strings.Builder, heading string, fields map[string]string) {
	if len(fields) == 0 {
		return
	}
	md.WriteString("## " + heading + "\n\n")
	for _, key := range sortedKeys(fields) {
		if fields[key] == "" {
			continue
		}
		md.WriteString("- **" + titleCase(key) + ":** " + fields[key] + "\n")
	}
	md.WriteString("\n")
}

func writeTestSection(md *strings.Builder, heading string, results []TestResult) {
	if len(results) == 0 {
		return
	}
	md.WriteString("## " + heading + "\n\n")
	md.WriteString("| Test Name | Observed Value | Unit | Reference Range |\n")
	md.WriteString("|-----------|----------------|------|-----------------|\n")
	for _, result := range results {
		md.WriteString("| " + escapePipes(result.TestName) +
			" | " + escapePipes(result.ObservedValue) +
			" | " + escapePipes(result.Unit) +
			" | " + escapePipes(result.ReferenceRange) + " |\n")
	}
	md.WriteString("\n")
}

func writeOtherSection(md *strings.Builder, fields map[string]*OtherValue) {
	if len(fields) == 0 {
		return
	}
	md.WriteString("## Other Fields\n\n")
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		values := fields[key].Values()
		if len(values) == 0 {
			continue
		}
		md.WriteString("- **" + titleCase(key) + ":** " + strings.Join(values, ", ") + "\n")
	}
	md.WriteString("\n")
}

func sortedKeys(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// escapePipes protects cell content from breaking the Markdown table.
func escapePipes(text string) string {
	return strings.ReplaceAll(text, "|", `\|`)
}

// titleCase turns a snake_case canonical field name into a display label
// ("patient_id" -> "Patient Id").
func titleCase(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
