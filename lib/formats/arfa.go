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

// NewArfaTemplate reads the ARFA DIAGNOSTIC CENTRE layout. Unlike the other
// two, its table emits value, unit, and range in no fixed order, sometimes
// with gender-qualified range prefixes; rows are found by a test-name
// whitelist and resolved with a bounded lookahead.
func NewArfaTemplate() *Template {
	return &Template{
		format: FormatArfa,
		fields: []fieldRule{
			{contains: []string{"ARFA"}, target: targetLab, key: "name", mode: captureLiteral, literal: "ARFA DIAGNOSTIC CENTRE"},
			{contains: []string{"User:"}, target: targetPatient, key: "user", mode: captureNext},
			{contains: []string{"PHCR #:"}, target: targetLab, key: "phcr_number", mode: captureNext},
			{contains: []string{"Booking No.:"}, target: targetPatient, key: "booking_no", mode: captureNext},
			{contains: []string{"Patient No.:"}, target: targetPatient, key: "patient_no", mode: captureNext},
			{contains: []string{"Patient Name:"}, target: targetPatient, key: "patient_name", mode: captureNext},
			{contains: []string{"Sample Collected:"}, target: targetPatient, key: "sample_collected", mode: captureNext},
			{contains: []string{"Age/Sex:"}, target: targetPatient, key: "age_sex", mode: captureNext},
			{contains: []string{"Test Booked:"}, target: targetPatient, key: "test_booked", mode: captureNext},
			{contains: []string{"Results Saved:"}, target: targetPatient, key: "results_saved", mode: captureNext},
			{contains: []string{"Mobile:"}, target: targetPatient, key: "mobile", mode: captureNext},
			{contains: []string{"Collection Point:"}, target: targetPatient, key: "collection_point", mode: captureNext},
			{contains: []string{"Consultant:"}, target: targetPatient, key: "consultant", mode: captureNext},
			{contains: []string{"Dr."}, target: targetFooter, key: "doctor_name", mode: captureSelf, once: true},
		},
		sections: []sectionRule{
			{
				trigger:         []string{"HAEMATOLOGY"},
				headers:         []string{"Test", "Normal Range", "Unit", "Result", "CBC With ESR"},
				stops:           []string{"Electronically Generated", "www."},
				walk:            walkLookahead,
				stopDoctorAfter: 50,
				testNames: []string{
					"Hemoglobin (HB)", "Hematocrit (HCT)", "Red Blood Cell (RBC)",
					"Mean Cell Volume (MCV)", "Mean Cell Hemoglobin (MCH)",
					"Mean Cell Hb Conc (MCHC)", "White Blood Cell (WBC/TLC)",
					"Neutrophils", "Lymphocytes", "Monocytes", "Eosinophil", "Basophils",
					"Platelets Count",
				},
				unitLiterals:  []string{"g/dl", "%", "fl", "pg", "*10", "/ul", "/l"},
				indexKeywords: []string{"mcv", "mch", "mchc", "hct", "hematocrit", "mean cell"},
			},
		},
	}
}
