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

// parthHeaders are the column headers PARTH reports emit before table rows.
var parthHeaders = []string{"Test Name", "Observed Value", "Unit", "Reference Range"}

// NewParthTemplate reads the PARTH PATHOLOGY LABORATORY layout. Values
// follow their test names as separate ":value" fragments; the differential
// count section carries an OCR fix-up for "Polymorphs", and blood indices
// are recognized by their exact dotted names, ":" pairing optional.
func NewParthTemplate() *Template {
	return &Template{
		format: FormatParth,
		fields: []fieldRule{
			{contains: []string{"Patient ID"}, target: targetPatient, key: "patient_id", mode: captureColonNext},
			{contains: []string{"Collection Date"}, target: targetPatient, key: "collection_date", mode: captureColonOrDigit},
			{contains: []string{"Reporting Date"}, target: targetPatient, key: "reporting_date", mode: captureColonOrDigit},
			{contains: []string{"PATHOLOGY LABORATORY"}, target: targetLab, key: "name", mode: captureLiteral, literal: "PARTH PATHOLOGY LABORATORY"},
			{contains: []string{"Dr.", "Hospital"}, target: targetPatient, key: "referring_doctor", mode: captureSelf},
			{contains: []string{"RBC Morphology"}, target: targetMorphology, key: "rbc_morphology", mode: captureColonJoin},
			{contains: []string{"Platelets on Smear"}, target: targetMorphology, key: "platelets_on_smear", mode: captureNext},
			{contains: []string{"Dr.", "Rajput"}, target: targetFooter, mode: captureSignature},
			{contains: []string{"Lab Technician"}, target: targetFooter, key: "lab_technician", mode: captureSelf},
		},
		sections: []sectionRule{
			{
				trigger:   []string{"HAEMATOLOGY REPORT"},
				headers:   parthHeaders,
				stops:     []string{"DIFFERENTIAL COUNT", "PLATELET COUNT", "BLOOD INDICES", "** End of Report"},
				walk:      walkColonPairs,
				unitShift: true,
			},
			{
				trigger:  []string{"DIFFERENTIAL COUNT"},
				stops:    []string{"PLATELET COUNT", "BLOOD INDICES", "** End of Report"},
				walk:     walkColonPairs,
				category: "Differential Count",
				fixups:   map[string]string{"olymorphs": "Polymorphs"},
			},
			{
				trigger:   []string{"PLATELET COUNT"},
				walk:      walkSingleValue,
				fixedName: "PLATELET COUNT",
			},
			{
				trigger: []string{"BLOOD INDICES"},
				stops:   []string{"RBC Morphology", "Platelets on Smear", "** End of Report"},
				walk:    walkColonPairs,
				indices: true,
				indexNames: []string{
					"M.C.H.C.", "H.C.T.", "M.C.V.", "M.C.H.",
					"R.D.W.", "M.P.V.", "Plateletcrit (PCT)",
				},
			},
		},
	}
}
