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

package tokens

import "strings"

// Entry maps a canonical field name to the keyword variants that identify it
// in OCR output.
type Entry struct {
	Name     string
	Keywords []string
}

// Dictionary is an ordered list of field entries. Order is significant: when
// a fragment matches keywords from more than one entry, the earlier entry
// wins. All matching in the package goes through Match so that the tie-break
// lives in exactly one place.
type Dictionary []Entry

// Match returns the canonical name of the first entry whose keyword set
// matches the fragment, or "" when nothing matches.
func (d Dictionary) Match(text string) string {
	normalized := Normalize(text)
	if normalized == "" {
		return ""
	}
	for _, entry := range d {
		for _, keyword := range entry.Keywords {
			if strings.Contains(normalized, keyword) {
				return entry.Name
			}
		}
	}
	return ""
}

// Matches reports whether the fragment matches any entry in the dictionary.
func (d Dictionary) Matches(text string) bool {
	return d.Match(text) != ""
}

// PatientFields identifies patient metadata across all supported layouts.
var PatientFields = Dictionary{
	{Name: "patient_id", Keywords: []string{"patient id", "patient no", "lab no", "result no", "phcr", "booking no"}},
	{Name: "patient_name", Keywords: []string{"name", "patient name", "user"}},
	{Name: "age_gender", Keywords: []string{"age/gender", "age/sex"}},
	{Name: "age", Keywords: []string{"age"}},
	{Name: "gender", Keywords: []string{"gender", "sex"}},
	{Name: "collection_date", Keywords: []string{"collection date", "sample collected", "received date"}},
	{Name: "report_date", Keywords: []string{"report date", "reporting date", "results saved", "release date"}},
	{Name: "referring_doctor", Keywords: []string{"referred by", "referring doctor", "consultant", "dr."}},
	{Name: "phone", Keywords: []string{"phone", "mobile", "phone no"}},
	{Name: "specimen", Keywords: []string{"specimen"}},
	{Name: "ward_bed", Keywords: []string{"ward", "bed"}},
	{Name: "report_id", Keywords: []string{"report id"}},
	{Name: "passport_no", Keywords: []string{"passport no"}},
}

// LabFields identifies the issuing laboratory's own metadata.
var LabFields = Dictionary{
	{Name: "name", Keywords: []string{"laboratory", "lab", "diagnostic", "pathology", "medical", "foundation", "clinic", "centre"}},
	{Name: "address", Keywords: []string{"address"}},
	{Name: "phone", Keywords: []string{"phone", "tel", "telephone"}},
	{Name: "email", Keywords: []string{"email", "@"}},
	{Name: "website", Keywords: []string{"www", "http", "https"}},
	{Name: "phcr_number", Keywords: []string{"phcr"}},
}

// HaematologyTests covers the counts and differentials reported in the main
// haematology table.
var HaematologyTests = Dictionary{
	{Name: "haemoglobin", Keywords: []string{"haemoglobin", "hemoglobin", "hb", "hgb"}},
	{Name: "wbc", Keywords: []string{"wbc", "white blood cell", "total leucocyte count", "total w.b.c.", "total wbc", "leucocyte count"}},
	{Name: "rbc", Keywords: []string{"rbc", "red blood cell", "r.b.c.", "rbc count"}},
	{Name: "platelet", Keywords: []string{"platelet", "platelet count", "plt"}},
	{Name: "neutrophils", Keywords: []string{"neutrophils", "polymorphs", "neutrophil"}},
	{Name: "lymphocytes", Keywords: []string{"lymphocytes", "lymphocyte"}},
	{Name: "eosinophils", Keywords: []string{"eosinophils", "eosinophil"}},
	{Name: "monocytes", Keywords: []string{"monocytes", "monocyte"}},
	{Name: "basophils", Keywords: []string{"basophils", "basophil"}},
	{Name: "absolute_neutrophils", Keywords: []string{"absolute neutrophil", "absolute neutrophils"}},
	{Name: "absolute_lymphocytes", Keywords: []string{"absolute lymphocyte", "absolute lymphocytes"}},
	{Name: "absolute_eosinophils", Keywords: []string{"absolute eosinophil", "absolute eosinophils"}},
	{Name: "absolute_monocytes", Keywords: []string{"absolute monocyte", "absolute monocytes"}},
	{Name: "absolute_basophils", Keywords: []string{"absolute basophil", "absolute basophils"}},
}

// IndexTests covers the derived blood indices. A test whose name matches this
// table is always filed under blood indices, whatever section it was found in.
var IndexTests = Dictionary{
	{Name: "mcv", Keywords: []string{"mcv", "m.c.v.", "mean cell volume"}},
	{Name: "mch", Keywords: []string{"mch", "m.c.h.", "mean cell hemoglobin"}},
	{Name: "mchc", Keywords: []string{"mchc", "m.c.h.c.", "mean cell hb conc", "mean cell hemoglobin concentration"}},
	{Name: "hct", Keywords: []string{"hct", "h.c.t.", "hematocrit", "haematocrit"}},
	{Name: "rdw", Keywords: []string{"rdw", "r.d.w.", "rdw-cv", "rdw-sd"}},
	{Name: "mpv", Keywords: []string{"mpv", "m.p.v.", "mean platelet volume"}},
	{Name: "pct", Keywords: []string{"pct", "plateletcrit"}},
	{Name: "pdw", Keywords: []string{"pdw"}},
}

// MorphologyFields identifies free-text smear observations.
var MorphologyFields = Dictionary{
	{Name: "rbc_morphology", Keywords: []string{"rbc morphology", "red cell morphology"}},
	{Name: "platelets_on_smear", Keywords: []string{"platelets on smear", "platelet on smear"}},
	{Name: "wbc_morphology", Keywords: []string{"wbc morphology", "white cell morphology"}},
}

// FooterFields identifies the signing block at the bottom of a report.
var FooterFields = Dictionary{
	{Name: "doctor_name", Keywords: []string{"dr.", "doctor"}},
	{Name: "qualification", Keywords: []string{"mbbs", "md", "dcp", "phd"}},
	{Name: "registration", Keywords: []string{"registration", "reg no", "reg. no"}},
	{Name: "lab_technician", Keywords: []string{"lab technician", "technician"}},
	{Name: "printed_by", Keywords: []string{"printed by"}},
	{Name: "printed_on", Keywords: []string{"printed on"}},
}

// IsTestName reports whether the fragment matches any known test name,
// haematology or index.
func IsTestName(text string) bool {
	return HaematologyTests.Matches(text) || IndexTests.Matches(text)
}

// ColumnHeaders are the table-header fragments the layouts emit between a
// section marker and its first data row.
var ColumnHeaders = []string{
	"TEST DESCRIPTION", "RESULT", "REF. RANGE", "UNIT",
	"Test Name", "Observed Value", "Reference Range",
	"Investigation", "Units", "Biological Reference Interval",
}

// IsColumnHeader reports whether the fragment is a known column header,
// compared case-insensitively.
func IsColumnHeader(text string) bool {
	for _, header := range ColumnHeaders {
		if strings.EqualFold(text, header) {
			return true
		}
	}
	return false
}

// SectionHeaders are the section-marker literals that must never be mistaken
// for test names.
var SectionHeaders = []string{
	"HAEMATOLOGY", "BLOOD INDICES", "DIFFERENTIAL COUNT",
	"PLATELET COUNT", "RBC INDICES", "PLATELETS INDICES",
	"ABSOLUTE LEUCOCYTE COUNT", "COMPLETE BLOOD COUNT",
}

// IsSectionHeader reports whether the fragment contains any section-marker
// literal.
func IsSectionHeader(text string) bool {
	upper := strings.ToUpper(text)
	for _, header := range SectionHeaders {
		if strings.Contains(upper, header) {
			return true
		}
	}
	return false
}
