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

// NewGrantTemplate reads the Grant Medical Foundation layout. One combined
// haematology section holds counts, a mid-table "Differential Count" marker,
// and the indices; index rows are routed by name. Method lines are noise and
// skipped.
func NewGrantTemplate() *Template {
	return &Template{
		format: FormatGrant,
		fields: []fieldRule{
			{contains: []string{"Grant Medical"}, target: targetLab, key: "name", mode: captureLiteral, literal: "Grant Medical Foundation"},
			{contains: []string{"Received Date"}, target: targetPatient, key: "received_date", mode: captureNext},
			{contains: []string{"Report Date"}, target: targetPatient, key: "report_date", mode: captureNext},
			{contains: []string{"Lab No/Result No"}, target: targetPatient, key: "lab_no", mode: captureNext},
			{contains: []string{"Referred By Dr."}, target: targetPatient, key: "referring_doctor", mode: captureNext, stripColon: true},
			{contains: []string{"Specimen"}, target: targetPatient, key: "specimen", mode: captureNext, stripColon: true},
			{contains: []string{"Ward / Bed"}, target: targetPatient, key: "ward_bed", mode: captureNext, stripColon: true},
			{contains: []string{"Printed By"}, target: targetFooter, mode: capturePrintBlock},
		},
		sections: []sectionRule{
			{
				trigger: []string{"DEPARTMENT OF LABORATORY MEDICINE-HAEMATOLOGY", "HAEMATOLOGY"},
				headers: []string{"Investigation", "Result", "Units", "Biological Reference Interval", "Haemogram Report"},
				stops:   []string{"Printed By", "Printed On"},
				walk:    walkColonPairs,
				categoryTriggers: map[string]string{
					"Differential Count": "Differential Count",
				},
				skipContains:  []string{"Method :", "MethOd :"},
				indexKeywords: []string{"mcv", "mch", "mchc", "rdw", "hct", "hematocrit"},
			},
		},
	}
}
