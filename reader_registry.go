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
	"sort"
	"sync"

	"github.com/antflydb/labreport/lib/formats"
	"github.com/antflydb/labreport/lib/report"
)

// FormatReader extracts a structured report from a fragment stream using
// knowledge of one fixed report layout.
type FormatReader interface {
	Format() formats.Format
	Read(texts []string) *report.Report
}

// ReaderRegistry maps detected formats to their layout readers.
type ReaderRegistry struct {
	mu      sync.RWMutex
	readers map[formats.Format]FormatReader
}

// NewReaderRegistry returns an empty registry.
func NewReaderRegistry() *ReaderRegistry {
	return &ReaderRegistry{readers: make(map[formats.Format]FormatReader)}
}

// DefaultReaderRegistry returns a registry with all built-in layout readers.
func DefaultReaderRegistry() *ReaderRegistry {
	r := NewReaderRegistry()
	r.Register(formats.NewParthTemplate())
	r.Register(formats.NewGrantTemplate())
	r.Register(formats.NewArfaTemplate())
	return r
}

// Register adds a reader, replacing any existing reader for its format.
func (r *ReaderRegistry) Register(reader FormatReader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readers[reader.Format()] = reader
}

// Lookup returns the reader for a format, or nil when none is registered.
func (r *ReaderRegistry) Lookup(format formats.Format) FormatReader {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.readers[format]
}

// Formats lists the registered formats in stable order.
func (r *ReaderRegistry) Formats() []formats.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]formats.Format, 0, len(r.readers))
	for f := range r.readers {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
