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

// Package report defines the structured output extracted from a lab report
// and its JSON and Markdown renderings.
package report

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// TestResult is one row of a test table. The four base fields are always
// present in JSON, empty string when a subfield was not found; downstream
// consumers rely on the keys existing. Category is a finer-grained section
// tag ("Differential Count", "Absolute Count") and is omitted when unset.
type TestResult struct {
	TestName       string `json:"test_name"`
	ObservedValue  string `json:"observed_value"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"reference_range"`
	Category       string `json:"category,omitempty"`
}

// OtherValue holds a catch-all field value: a single string, promoted to an
// ordered list when the same raw key is captured again.
type OtherValue struct {
	values []string
}

// Append adds a captured value, promoting to a list on the second write.
func (v *OtherValue) Append(value string) {
	v.values = append(v.values, value)
}

// Values returns the captured values in capture order.
func (v *OtherValue) Values() []string {
	return v.values
}

// MarshalJSON renders a single capture as a bare string and multiple
// captures as an array, matching the documented other_fields shape.
func (v OtherValue) MarshalJSON() ([]byte, error) {
	if len(v.values) == 1 {
		return sonic.Marshal(v.values[0])
	}
	return sonic.Marshal(v.values)
}

// UnmarshalJSON accepts either shape.
func (v *OtherValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := sonic.Unmarshal(data, &single); err == nil {
		v.values = []string{single}
		return nil
	}
	var many []string
	if err := sonic.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("other_fields value is neither string nor list: %w", err)
	}
	v.values = many
	return nil
}

// Report is the full structured extraction for one report image. It is built
// fresh per token sequence and never mutated after the parse returns.
type Report struct {
	PatientInfo       map[string]string      `json:"patient_info"`
	LaboratoryInfo    map[string]string      `json:"laboratory_info"`
	HaematologyReport []TestResult           `json:"haematology_report"`
	BloodIndices      []TestResult           `json:"blood_indices"`
	Morphology        map[string]string      `json:"morphology"`
	FooterInfo        map[string]string      `json:"footer_info"`
	OtherFields       map[string]*OtherValue `json:"other_fields,omitempty"`
}

// New returns a Report with every collection initialized and empty.
func New() *Report {
	return &Report{
		PatientInfo:       map[string]string{},
		LaboratoryInfo:    map[string]string{},
		HaematologyReport: []TestResult{},
		BloodIndices:      []TestResult{},
		Morphology:        map[string]string{},
		FooterInfo:        map[string]string{},
		OtherFields:       map[string]*OtherValue{},
	}
}

// AddOther captures an unrecognized key/value pair, promoting the value to a
// list when the raw key recurs.
func (r *Report) AddOther(key, value string) {
	if existing, ok := r.OtherFields[key]; ok {
		existing.Append(value)
		return
	}
	v := &OtherValue{}
	v.Append(value)
	r.OtherFields[key] = v
}

// Empty reports whether the extraction found nothing usable: no patient
// fields, no haematology rows, and no blood indices. The routing layer uses
// this to decide whether a template reader's output should be discarded in
// favor of the universal parser.
func (r *Report) Empty() bool {
	return len(r.PatientInfo) == 0 &&
		len(r.HaematologyReport) == 0 &&
		len(r.BloodIndices) == 0
}
