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
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the pipeline's runtime configuration.
type Config struct {
	// BaseDir is the working folder holding the input and output subfolders.
	BaseDir string `json:"base_dir" yaml:"base_dir"`

	// ReadServiceURL is the base URL of the recognition service.
	ReadServiceURL string `json:"read_service_url" yaml:"read_service_url"`

	// ReadTimeout bounds one recognition request.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// Workers is the number of images processed concurrently.
	Workers int `json:"workers" yaml:"workers"`

	// MinFragments is the detection count below which the image is enhanced
	// and recognition retried once.
	MinFragments int `json:"min_fragments" yaml:"min_fragments"`

	// CacheTTL is how long parsed extractions stay cached.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

// Pipeline folder names under BaseDir.
const (
	ImagesDir   = "images"
	RawDataDir  = "raw_data"
	JSONDir     = "json_results"
	MarkdownDir = "markdown_results"
)

// DefaultConfig returns the pipeline defaults rooted at baseDir.
func DefaultConfig(baseDir string) Config {
	return Config{
		BaseDir:        baseDir,
		ReadServiceURL: "http://localhost:8090",
		ReadTimeout:    2 * time.Minute,
		Workers:        4,
		MinFragments:   2,
		CacheTTL:       ParseCacheTTL,
	}
}

// ImagesPath returns the input image folder.
func (c Config) ImagesPath() string { return filepath.Join(c.BaseDir, ImagesDir) }

// RawDataPath returns the raw recognition output folder.
func (c Config) RawDataPath() string { return filepath.Join(c.BaseDir, RawDataDir) }

// JSONPath returns the structured extraction folder.
func (c Config) JSONPath() string { return filepath.Join(c.BaseDir, JSONDir) }

// MarkdownPath returns the rendered markdown folder.
func (c Config) MarkdownPath() string { return filepath.Join(c.BaseDir, MarkdownDir) }

// EnsureDirs creates the pipeline folders that are missing.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.ImagesPath(), c.RawDataPath(), c.JSONPath(), c.MarkdownPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c Config) Validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("base_dir is required")
	}
	if c.ReadServiceURL == "" {
		return fmt.Errorf("read_service_url is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MinFragments < 0 {
		return fmt.Errorf("min_fragments must not be negative, got %d", c.MinFragments)
	}
	return nil
}
