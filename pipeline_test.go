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
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/antflydb/labreport/lib/ocr"
)

// stubRecognizer returns canned fragments, failing for images whose content
// matches failOn.
type stubRecognizer struct {
	texts  []string
	failOn []byte
	calls  int
}

func (s *stubRecognizer) Recognize(ctx context.Context, image []byte) (*ocr.Result, error) {
	s.calls++
	if len(s.failOn) > 0 && bytes.Equal(image, s.failOn) {
		return nil, fmt.Errorf("recognition rejected")
	}
	scores := make([]float64, len(s.texts))
	for i := range scores {
		scores[i] = 0.99
	}
	return &ocr.Result{Texts: s.texts, Scores: scores}, nil
}

func (s *stubRecognizer) Close() error { return nil }

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.BaseDir = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Workers = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.ReadServiceURL = ""
	assert.Error(t, bad.Validate())
}

func TestConfigEnsureDirs(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	require.NoError(t, cfg.EnsureDirs())

	for _, dir := range []string{cfg.ImagesPath(), cfg.RawDataPath(), cfg.JSONPath(), cfg.MarkdownPath()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPipelineRun(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.Workers = 2
	cfg.MinFragments = 1

	stub := &stubRecognizer{texts: []string{"PARTH PATHOLOGY LABORATORY", "Patient ID", ": P12345"}}
	pipeline, err := NewPipeline(cfg, stub, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer pipeline.Close()

	require.NoError(t, os.WriteFile(filepath.Join(cfg.ImagesPath(), "scan.png"), testPNG(t), 0o644))

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.Fallbacks)

	raw, err := ocr.LoadRawResult(filepath.Join(cfg.RawDataPath(), "scan_raw.json"))
	require.NoError(t, err)
	assert.Equal(t, "scan.png", raw.ImageName)
	assert.Equal(t, stub.texts, raw.Texts)

	jsonData, err := os.ReadFile(filepath.Join(cfg.JSONPath(), "scan.json"))
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"patient_id"`)

	mdData, err := os.ReadFile(filepath.Join(cfg.MarkdownPath(), "scan.md"))
	require.NoError(t, err)
	assert.Contains(t, string(mdData), "# Medical Report: scan.png")
}

func TestPipelineCollectsImageErrors(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.Workers = 1
	cfg.MinFragments = 1

	bad := testPNG(t)
	stub := &stubRecognizer{
		texts:  []string{"Patient ID", ": P1"},
		failOn: bad,
	}
	pipeline, err := NewPipeline(cfg, stub, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer pipeline.Close()

	// One failing image, one good one. The good one differs by a byte of
	// trailing padding, which PNG decoders ignore.
	good := append(append([]byte{}, bad...), 0x00)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ImagesPath(), "bad.png"), bad, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ImagesPath(), "good.png"), good, 0o644))

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "bad.png", summary.Errors[0].ImageName)
	assert.Contains(t, summary.Errors[0].Error, "recognition rejected")
}

func TestPipelineRetryOnLowDetection(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.Workers = 1
	cfg.MinFragments = 5

	// Every recognition returns a single fragment, so the pipeline enhances
	// once, retries, and keeps the first result.
	stub := &stubRecognizer{texts: []string{"Patient ID: P1"}}
	pipeline, err := NewPipeline(cfg, stub, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer pipeline.Close()

	require.NoError(t, os.WriteFile(filepath.Join(cfg.ImagesPath(), "faint.png"), testPNG(t), 0o644))

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 2, stub.calls)
}

func TestPipelineSkipsNonImages(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.MinFragments = 1

	stub := &stubRecognizer{texts: []string{"Patient ID", ": P1"}}
	pipeline, err := NewPipeline(cfg, stub, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer pipeline.Close()

	require.NoError(t, os.WriteFile(filepath.Join(cfg.ImagesPath(), "notes.txt"), []byte("x"), 0o644))

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 0, summary.Failed)
	assert.Zero(t, stub.calls)
}
