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
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestResultBaseFieldsAlwaysSerialize(t *testing.T) {
	data, err := sonic.Marshal(TestResult{TestName: "Haemoglobin"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, sonic.Unmarshal(data, &decoded))

	for _, key := range []string{"test_name", "observed_value", "unit", "reference_range"} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "category")
}

func TestTestResultCategorySerializesWhenSet(t *testing.T) {
	data, err := sonic.Marshal(TestResult{TestName: "Polymorphs", Category: "Differential Count"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category":"Differential Count"`)
}

func TestAddOtherPromotion(t *testing.T) {
	r := New()

	r.AddOther("Remark", "first")
	data, err := sonic.Marshal(r.OtherFields)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Remark":"first"}`, string(data))

	r.AddOther("Remark", "second")
	data, err = sonic.Marshal(r.OtherFields)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Remark":["first","second"]}`, string(data))

	assert.Equal(t, []string{"first", "second"}, r.OtherFields["Remark"].Values())
}

func TestOtherValueUnmarshalBothShapes(t *testing.T) {
	var single OtherValue
	require.NoError(t, sonic.Unmarshal([]byte(`"one"`), &single))
	assert.Equal(t, []string{"one"}, single.Values())

	var many OtherValue
	require.NoError(t, sonic.Unmarshal([]byte(`["one","two"]`), &many))
	assert.Equal(t, []string{"one", "two"}, many.Values())

	var bad OtherValue
	assert.Error(t, sonic.Unmarshal([]byte(`42`), &bad))
}

func TestEmpty(t *testing.T) {
	r := New()
	assert.True(t, r.Empty())

	// Morphology and footer alone do not make a report non-empty.
	r.Morphology["rbc_morphology"] = "Normocytic"
	r.FooterInfo["doctor_name"] = "Dr. A"
	assert.True(t, r.Empty())

	r.PatientInfo["patient_id"] = "P1"
	assert.False(t, r.Empty())

	indices := New()
	indices.BloodIndices = append(indices.BloodIndices, TestResult{TestName: "M.C.V."})
	assert.False(t, indices.Empty())
}

func TestNewInitializesCollections(t *testing.T) {
	data, err := sonic.Marshal(New())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, sonic.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "patient_info")
	assert.Contains(t, decoded, "haematology_report")
	assert.Contains(t, decoded, "blood_indices")
	// Empty other_fields is omitted entirely.
	assert.NotContains(t, decoded, "other_fields")
}

func TestMarkdownDeterministic(t *testing.T) {
	r := New()
	r.PatientInfo["patient_name"] = "A B"
	r.PatientInfo["age"] = "34"
	r.HaematologyReport = append(r.HaematologyReport, TestResult{
		TestName:       "Haemoglobin",
		ObservedValue:  "13.5",
		Unit:           "g/dl",
		ReferenceRange: "13-17",
	})
	r.AddOther("Note", "a|b")

	doc := Document{ImageName: "scan1.png", ImagePath: "/in/scan1.png", Report: r}

	first := doc.Markdown()
	assert.Equal(t, first, doc.Markdown())

	assert.Contains(t, first, "# Medical Report: scan1.png")
	assert.Contains(t, first, "## Patient Information")
	assert.Contains(t, first, "- **Age:** 34")
	assert.Contains(t, first, "| Haemoglobin | 13.5 | g/dl | 13-17 |")
	assert.Contains(t, first, `a\|b`)
	assert.NotContains(t, first, "## Blood Indices")
}

func TestMarkdownNilReport(t *testing.T) {
	doc := Document{ImageName: "scan1.png"}
	md := doc.Markdown()
	assert.Contains(t, md, "# Medical Report: scan1.png")
	assert.NotContains(t, md, "## Patient Information")
}
