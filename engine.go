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

// Package labreport extracts structured clinical data from the noisy text
// fragment streams that OCR produces for scanned laboratory reports. A
// detector picks a known layout when one is recognizable; a template reader
// extracts from it, and a universal parser covers everything else, including
// known layouts whose extraction came up empty.
package labreport

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/antflydb/labreport/lib/formats"
	"github.com/antflydb/labreport/lib/report"
	"github.com/antflydb/labreport/lib/universal"
)

// Extraction is one parse outcome: the structured report plus how it was
// obtained.
type Extraction struct {
	Report *report.Report
	Format formats.Format

	// Fallback is set when the universal parser produced the report, either
	// because no layout was recognized or because the layout reader returned
	// an empty extraction.
	Fallback bool
}

// Engine routes fragment streams through format detection, layout readers,
// and the universal fallback.
type Engine struct {
	registry  *ReaderRegistry
	universal *universal.Parser
	logger    *zap.Logger
}

// NewEngine returns an engine over the given registry. A nil registry gets
// the default built-in readers.
func NewEngine(registry *ReaderRegistry, logger *zap.Logger) *Engine {
	if registry == nil {
		registry = DefaultReaderRegistry()
	}
	return &Engine{
		registry:  registry,
		universal: universal.New(logger),
		logger:    logger.Named("engine"),
	}
}

// Parse extracts a structured report from a fragment stream. It never fails:
// unusable input degrades to an empty report.
func (e *Engine) Parse(texts []string) *Extraction {
	start := time.Now()
	cleaned := cleanFragments(texts)

	format := formats.Detect(cleaned)
	extraction := &Extraction{Format: format}

	if reader := e.registry.Lookup(format); reader != nil {
		extraction.Report = reader.Read(cleaned)
		if extraction.Report.Empty() {
			// The layout matched but the extraction found nothing usable,
			// so the stream is probably a variant the template cannot read.
			e.logger.Info("Template extraction empty, falling back",
				zap.String("format", string(format)))
			RecordFallback("empty_extraction")
			extraction.Report = e.universal.Parse(cleaned)
			extraction.Fallback = true
		}
	} else {
		if format == formats.FormatUnknown {
			RecordFallback("unknown_format")
		}
		extraction.Report = e.universal.Parse(cleaned)
		extraction.Fallback = true
	}

	RecordParse(string(format))
	RecordParseDuration(string(format), time.Since(start).Seconds())

	e.logger.Debug("Parsed fragment stream",
		zap.String("format", string(format)),
		zap.Bool("fallback", extraction.Fallback),
		zap.Int("fragments", len(cleaned)),
		zap.Duration("duration", time.Since(start)))

	return extraction
}

// cleanFragments trims whitespace and drops fragments that end up empty.
func cleanFragments(texts []string) []string {
	cleaned := make([]string, 0, len(texts))
	for _, text := range texts {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
