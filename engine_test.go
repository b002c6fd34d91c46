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

package labreport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/antflydb/labreport/lib/formats"
)

func TestEngineTemplatePath(t *testing.T) {
	engine := NewEngine(nil, zaptest.NewLogger(t))

	extraction := engine.Parse([]string{"PARTH PATHOLOGY LABORATORY", "Patient ID", ": P12345"})

	assert.Equal(t, formats.FormatParth, extraction.Format)
	assert.False(t, extraction.Fallback)
	assert.Equal(t, "P12345", extraction.Report.PatientInfo["patient_id"])
	assert.Equal(t, "PARTH PATHOLOGY LABORATORY", extraction.Report.LaboratoryInfo["name"])
}

func TestEngineUnknownFormatFallsBack(t *testing.T) {
	engine := NewEngine(nil, zaptest.NewLogger(t))

	extraction := engine.Parse([]string{"Haemoglobin", "13.5", "g/dl", "13-17"})

	assert.Equal(t, formats.FormatUnknown, extraction.Format)
	assert.True(t, extraction.Fallback)
	require.Len(t, extraction.Report.HaematologyReport, 1)
	assert.Equal(t, "13.5", extraction.Report.HaematologyReport[0].ObservedValue)
}

func TestEngineEmptyTemplateExtractionFallsBack(t *testing.T) {
	// The stream carries a known laboratory literal, but in a layout variant
	// the template cannot read. The universal parser takes over and the
	// detected format is still reported.
	engine := NewEngine(nil, zaptest.NewLogger(t))

	extraction := engine.Parse([]string{"GRANT MEDICAL CENTER BRANCH", "Patient ID", ": P1"})

	assert.Equal(t, formats.FormatGrant, extraction.Format)
	assert.True(t, extraction.Fallback)
	assert.Equal(t, "P1", extraction.Report.PatientInfo["patient_id"])
}

func TestEngineEmptyInput(t *testing.T) {
	engine := NewEngine(nil, zaptest.NewLogger(t))

	extraction := engine.Parse(nil)
	assert.Equal(t, formats.FormatUnknown, extraction.Format)
	assert.True(t, extraction.Fallback)
	require.NotNil(t, extraction.Report)
	assert.True(t, extraction.Report.Empty())

	// Whitespace-only fragments are dropped before detection.
	extraction = engine.Parse([]string{"  ", "\t", ""})
	assert.True(t, extraction.Report.Empty())
}

func TestReaderRegistryDefaults(t *testing.T) {
	registry := DefaultReaderRegistry()

	assert.Equal(t, []formats.Format{formats.FormatArfa, formats.FormatGrant, formats.FormatParth},
		registry.Formats())
	assert.NotNil(t, registry.Lookup(formats.FormatParth))
	assert.Nil(t, registry.Lookup(formats.FormatUnknown))
}

func TestReaderRegistryReplace(t *testing.T) {
	registry := NewReaderRegistry()
	registry.Register(formats.NewParthTemplate())
	registry.Register(formats.NewParthTemplate())
	assert.Len(t, registry.Formats(), 1)
}

func TestCachedParser(t *testing.T) {
	logger := zaptest.NewLogger(t)
	parser := NewCachedParser(NewEngine(nil, logger), 0, logger)
	defer parser.Close()

	texts := []string{"Patient ID", ": P12345"}
	first := parser.Parse(texts)
	second := parser.Parse(texts)

	// The cached extraction is returned as is.
	assert.Same(t, first, second)

	stats := parser.Stats()
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Hits)

	parser.Parse([]string{"Patient ID", ": OTHER"})
	assert.Equal(t, uint64(2), parser.Stats().Misses)
}

func TestCacheKeyBoundaries(t *testing.T) {
	// Fragment boundaries are part of the key.
	assert.NotEqual(t, cacheKey([]string{"ab", "c"}), cacheKey([]string{"a", "bc"}))
	assert.Equal(t, cacheKey([]string{"a", "b"}), cacheKey([]string{"a", "b"}))
}
