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

package ocr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// RawResult is the recognition output archived next to the structured
// extraction, so parses can be replayed without re-running OCR.
type RawResult struct {
	ImageName   string    `json:"image_name"`
	ImagePath   string    `json:"image_path"`
	ProcessedAt string    `json:"processed_at"`
	Texts       []string  `json:"rec_texts"`
	Scores      []float64 `json:"rec_scores"`
}

// NewRawResult wraps a recognition result with its image provenance.
func NewRawResult(imagePath string, result *Result) *RawResult {
	return &RawResult{
		ImageName:   filepath.Base(imagePath),
		ImagePath:   imagePath,
		ProcessedAt: time.Now().Format(time.RFC3339),
		Texts:       result.Texts,
		Scores:      result.Scores,
	}
}

// Save writes the raw result as <image-stem>_raw.json under dir.
func (r *RawResult) Save(dir string) (string, error) {
	stem := strings.TrimSuffix(r.ImageName, filepath.Ext(r.ImageName))
	path := filepath.Join(dir, stem+"_raw.json")

	data, err := sonic.ConfigDefault.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding raw result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing raw result: %w", err)
	}
	return path, nil
}

// LoadRawResult reads a previously saved raw result.
func LoadRawResult(path string) (*RawResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading raw result: %w", err)
	}
	var raw RawResult
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding raw result %s: %w", path, err)
	}
	return &raw, nil
}
