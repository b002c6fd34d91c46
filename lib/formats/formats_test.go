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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  Format
	}{
		{"parth full literal", []string{"PARTH PATHOLOGY LABORATORY"}, FormatParth},
		{"parth short", []string{"some noise", "Parth labs"}, FormatParth},
		{"grant", []string{"Grant Medical Foundation"}, FormatGrant},
		{"arfa", []string{"ARFA DIAGNOSTIC CENTRE"}, FormatArfa},
		{"case insensitive", []string{"arfa diagnostic"}, FormatArfa},
		{"unknown", []string{"Some Other Lab", "Haemoglobin", "13.5"}, FormatUnknown},
		{"empty", nil, FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.texts))
		})
	}
}

func TestDetectPrecedence(t *testing.T) {
	// When multiple laboratory literals appear, the probe order decides.
	texts := []string{"GRANT MEDICAL FOUNDATION", "referred from PARTH PATHOLOGY"}
	assert.Equal(t, FormatParth, Detect(texts))
}

func TestDetectWindowBound(t *testing.T) {
	texts := make([]string, detectWindow+1)
	for i := range texts {
		texts[i] = "noise"
	}
	texts[detectWindow] = "PARTH PATHOLOGY"
	assert.Equal(t, FormatUnknown, Detect(texts))

	texts[detectWindow-1] = "PARTH PATHOLOGY"
	assert.Equal(t, FormatParth, Detect(texts))
}

func TestParthTemplateRead(t *testing.T) {
	texts := []string{
		"PARTH PATHOLOGY LABORATORY",
		"Patient ID", ": P12345",
		"Collection Date", ": 01/02/2025",
		"HAEMATOLOGY REPORT",
		"Test Name", "Observed Value", "Unit", "Reference Range",
		"Haemoglobin", ": 13.5", "g/dl", "13-17",
		"DIFFERENTIAL COUNT",
		"?olymorphs", ": 60", "%", "40-70",
		"Lymphocytes", ": 30", "%", "20-40",
		"PLATELET COUNT",
		": 2,15,000", "Lakhs/cumm", "1.5-4.5",
		"BLOOD INDICES",
		"M.C.V.", ": 87.2", "fl", "76-96",
		"M.C.H.C.", "32.5", "g/dl", "30-34",
		"** End of Report **",
	}

	tpl := NewParthTemplate()
	assert.Equal(t, FormatParth, tpl.Format())
	rep := tpl.Read(texts)

	assert.Equal(t, "P12345", rep.PatientInfo["patient_id"])
	assert.Equal(t, "01/02/2025", rep.PatientInfo["collection_date"])
	assert.Equal(t, "PARTH PATHOLOGY LABORATORY", rep.LaboratoryInfo["name"])

	if assert.Len(t, rep.HaematologyReport, 4) {
		assert.Equal(t, "Haemoglobin", rep.HaematologyReport[0].TestName)
		assert.Equal(t, "13.5", rep.HaematologyReport[0].ObservedValue)

		// OCR fix-up and per-section category.
		assert.Equal(t, "Polymorphs", rep.HaematologyReport[1].TestName)
		assert.Equal(t, "60", rep.HaematologyReport[1].ObservedValue)
		assert.Equal(t, "%", rep.HaematologyReport[1].Unit)
		assert.Equal(t, "40-70", rep.HaematologyReport[1].ReferenceRange)
		assert.Equal(t, "Differential Count", rep.HaematologyReport[1].Category)
		assert.Equal(t, "Differential Count", rep.HaematologyReport[2].Category)

		assert.Equal(t, "PLATELET COUNT", rep.HaematologyReport[3].TestName)
		assert.Equal(t, "2,15,000", rep.HaematologyReport[3].ObservedValue)
		assert.Equal(t, "Lakhs/cumm", rep.HaematologyReport[3].Unit)
	}

	if assert.Len(t, rep.BloodIndices, 2) {
		assert.Equal(t, "M.C.V.", rep.BloodIndices[0].TestName)
		assert.Equal(t, "87.2", rep.BloodIndices[0].ObservedValue)
		assert.Empty(t, rep.BloodIndices[0].Category)

		// Explicit index names tolerate a missing ":" pairing.
		assert.Equal(t, "M.C.H.C.", rep.BloodIndices[1].TestName)
		assert.Equal(t, "32.5", rep.BloodIndices[1].ObservedValue)
	}
}

func TestParthUnitShift(t *testing.T) {
	// The main haematology table sometimes omits the unit column; a unit slot
	// with no digit or hyphen is read as the reference range shifted left.
	texts := []string{
		"HAEMATOLOGY REPORT",
		"Haemoglobin", ": 13.5", "g/dl", "13-17",
	}
	rep := NewParthTemplate().Read(texts)
	if assert.Len(t, rep.HaematologyReport, 1) {
		assert.Empty(t, rep.HaematologyReport[0].Unit)
		assert.Equal(t, "g/dl", rep.HaematologyReport[0].ReferenceRange)
	}
}

func TestGrantTemplateRead(t *testing.T) {
	texts := []string{
		"Grant Medical Foundation",
		"Received Date", "01/02/2025 10:30",
		"Lab No/Result No", "GR-991",
		"DEPARTMENT OF LABORATORY MEDICINE-HAEMATOLOGY",
		"Investigation", "Result", "Units", "Biological Reference Interval",
		"Haemogram Report",
		"Hemoglobin", ": 11.9", "g/dL", "13.0 - 17.0",
		"Method : Photometric measurement",
		"Differential Count",
		"Neutrophils", ": 65", "%", "40 - 80",
		"MCV", ": 87.2", "fL", "83 - 101",
		"Printed By", "admin", "Printed On", "01/02/2025 11:00",
	}

	rep := NewGrantTemplate().Read(texts)

	assert.Equal(t, "Grant Medical Foundation", rep.LaboratoryInfo["name"])
	assert.Equal(t, "01/02/2025 10:30", rep.PatientInfo["received_date"])
	assert.Equal(t, "GR-991", rep.PatientInfo["lab_no"])

	if assert.Len(t, rep.HaematologyReport, 2) {
		assert.Equal(t, "Hemoglobin", rep.HaematologyReport[0].TestName)
		assert.Equal(t, "11.9", rep.HaematologyReport[0].ObservedValue)
		assert.Equal(t, "g/dL", rep.HaematologyReport[0].Unit)
		assert.Equal(t, "13.0 - 17.0", rep.HaematologyReport[0].ReferenceRange)
		assert.Empty(t, rep.HaematologyReport[0].Category)

		// Category switches at the in-table marker; Method lines are noise.
		assert.Equal(t, "Neutrophils", rep.HaematologyReport[1].TestName)
		assert.Equal(t, "Differential Count", rep.HaematologyReport[1].Category)
	}

	// Index rows are routed by name even inside the combined table.
	if assert.Len(t, rep.BloodIndices, 1) {
		assert.Equal(t, "MCV", rep.BloodIndices[0].TestName)
		assert.Empty(t, rep.BloodIndices[0].Category)
	}

	assert.Equal(t, "admin", rep.FooterInfo["printed_by"])
	assert.Equal(t, "01/02/2025 11:00", rep.FooterInfo["printed_on"])
}

func TestArfaTemplateRead(t *testing.T) {
	texts := []string{
		"ARFA DIAGNOSTIC CENTRE",
		"Patient Name:", "John Doe",
		"Age/Sex:", "34 Y / Male",
		"HAEMATOLOGY",
		"Test", "Result", "Unit", "Normal Range",
		"Hemoglobin (HB)", "13.5", "g/dl", "13-17",
		"Mean Cell Volume (MCV)", "Female: 78-95", "87.2", "fl",
		"Neutrophils", "65", "%", "40-75",
		"Electronically Generated Report",
	}

	rep := NewArfaTemplate().Read(texts)

	assert.Equal(t, "ARFA DIAGNOSTIC CENTRE", rep.LaboratoryInfo["name"])
	assert.Equal(t, "John Doe", rep.PatientInfo["patient_name"])
	assert.Equal(t, "34 Y / Male", rep.PatientInfo["age_sex"])

	if assert.Len(t, rep.HaematologyReport, 2) {
		assert.Equal(t, "Hemoglobin (HB)", rep.HaematologyReport[0].TestName)
		assert.Equal(t, "13.5", rep.HaematologyReport[0].ObservedValue)
		assert.Equal(t, "g/dl", rep.HaematologyReport[0].Unit)
		assert.Equal(t, "13-17", rep.HaematologyReport[0].ReferenceRange)

		assert.Equal(t, "Neutrophils", rep.HaematologyReport[1].TestName)
		assert.Equal(t, "65", rep.HaematologyReport[1].ObservedValue)
	}

	// Indices route by name keywords; gender-qualified prefixes are skipped.
	if assert.Len(t, rep.BloodIndices, 1) {
		assert.Equal(t, "Mean Cell Volume (MCV)", rep.BloodIndices[0].TestName)
		assert.Equal(t, "87.2", rep.BloodIndices[0].ObservedValue)
		assert.Equal(t, "fl", rep.BloodIndices[0].Unit)
	}
}

func TestTemplateReadEmptyStream(t *testing.T) {
	for _, tpl := range []*Template{NewParthTemplate(), NewGrantTemplate(), NewArfaTemplate()} {
		rep := tpl.Read(nil)
		assert.True(t, rep.Empty(), string(tpl.Format()))
	}
}
