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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/antflydb/labreport/lib/ocr"
	"github.com/antflydb/labreport/lib/preprocess"
	"github.com/antflydb/labreport/lib/report"
)

// imageExtensions are the input files the pipeline picks up.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tiff": true, ".tif": true, ".webp": true,
}

// ImageError records one image that failed, without failing the batch.
type ImageError struct {
	ImageName string `json:"image_name"`
	Error     string `json:"error"`
}

// Summary is the outcome of one batch run.
type Summary struct {
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	Fallbacks int           `json:"fallbacks"`
	Duration  time.Duration `json:"duration"`
	Errors    []ImageError  `json:"errors,omitempty"`
}

// Pipeline runs images through recognition, parsing, and result persistence.
type Pipeline struct {
	config     Config
	recognizer ocr.Recognizer
	parser     *CachedParser
	logger     *zap.Logger
}

// NewPipeline assembles a pipeline from a validated config and a recognizer.
func NewPipeline(config Config, recognizer ocr.Recognizer, logger *zap.Logger) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	engine := NewEngine(DefaultReaderRegistry(), logger)
	return &Pipeline{
		config:     config,
		recognizer: recognizer,
		parser:     NewCachedParser(engine, config.CacheTTL, logger),
		logger:     logger.Named("pipeline"),
	}, nil
}

// Close releases the pipeline's recognizer and cache.
func (p *Pipeline) Close() error {
	p.parser.Close()
	return p.recognizer.Close()
}

// Run processes every image in the input folder. Individual image failures
// are collected in the summary; only a context cancellation or an unreadable
// input folder aborts the batch.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	images, err := p.listImages()
	if err != nil {
		return nil, err
	}

	p.logger.Info("Starting batch",
		zap.Int("images", len(images)),
		zap.Int("workers", p.config.Workers))

	start := time.Now()
	summary := &Summary{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Workers)

	for _, path := range images {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			extraction, err := p.ProcessImage(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				summary.Errors = append(summary.Errors, ImageError{
					ImageName: filepath.Base(path),
					Error:     err.Error(),
				})
				RecordImageProcessed("error")
				p.logger.Warn("Image failed",
					zap.String("image", filepath.Base(path)),
					zap.Error(err))
				return nil
			}
			summary.Processed++
			if extraction.Fallback {
				summary.Fallbacks++
			}
			RecordImageProcessed("ok")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	summary.Duration = time.Since(start)
	sort.Slice(summary.Errors, func(i, j int) bool {
		return summary.Errors[i].ImageName < summary.Errors[j].ImageName
	})

	p.logger.Info("Batch finished",
		zap.Int("processed", summary.Processed),
		zap.Int("failed", summary.Failed),
		zap.Int("fallbacks", summary.Fallbacks),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

// ProcessImage runs one image end to end: recognition with a single
// enhancement retry, raw output archival, parsing, and result persistence.
func (p *Pipeline) ProcessImage(ctx context.Context, path string) (*Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	result, err := p.recognize(ctx, path, data)
	if err != nil {
		return nil, err
	}

	raw := ocr.NewRawResult(path, result)
	if _, err := raw.Save(p.config.RawDataPath()); err != nil {
		return nil, err
	}

	extraction := p.parser.Parse(result.Texts)

	doc := &report.Document{
		ImageName:   raw.ImageName,
		ImagePath:   raw.ImagePath,
		ProcessedAt: raw.ProcessedAt,
		Report:      extraction.Report,
	}
	if err := p.saveResults(doc); err != nil {
		return nil, err
	}

	p.logger.Info("Processed image",
		zap.String("image", raw.ImageName),
		zap.String("format", string(extraction.Format)),
		zap.Bool("fallback", extraction.Fallback),
		zap.Int("fragments", len(result.Texts)))

	return extraction, nil
}

// recognize calls the read service, retrying once with an enhanced image
// when too few fragments come back. The better of the two results wins.
func (p *Pipeline) recognize(ctx context.Context, path string, data []byte) (*ocr.Result, error) {
	RecordOCRRequest()
	result, err := p.recognizer.Recognize(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("recognizing %s: %w", filepath.Base(path), err)
	}
	if len(result.Texts) >= p.config.MinFragments {
		return result, nil
	}

	p.logger.Info("Low detection count, retrying with enhanced image",
		zap.String("image", filepath.Base(path)),
		zap.Int("fragments", len(result.Texts)))

	enhanced, err := preprocess.EnhanceBytes(data)
	if err != nil {
		// Enhancement is best effort; keep the first result.
		p.logger.Warn("Enhancement failed", zap.Error(err))
		return result, nil
	}

	RecordOCRRequest()
	RecordOCRRetry()
	retried, err := p.recognizer.Recognize(ctx, enhanced)
	if err != nil {
		p.logger.Warn("Retry recognition failed", zap.Error(err))
		return result, nil
	}
	if len(retried.Texts) > len(result.Texts) {
		return retried, nil
	}
	return result, nil
}

// saveResults writes the structured JSON and rendered markdown for one image.
func (p *Pipeline) saveResults(doc *report.Document) error {
	stem := strings.TrimSuffix(doc.ImageName, filepath.Ext(doc.ImageName))

	data, err := sonic.ConfigDefault.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	jsonPath := filepath.Join(p.config.JSONPath(), stem+".json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}

	mdPath := filepath.Join(p.config.MarkdownPath(), stem+".md")
	if err := os.WriteFile(mdPath, []byte(doc.Markdown()), 0o644); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}
	return nil
}

// listImages returns the input images sorted by name.
func (p *Pipeline) listImages() ([]string, error) {
	entries, err := os.ReadDir(p.config.ImagesPath())
	if err != nil {
		return nil, fmt.Errorf("reading image folder: %w", err)
	}
	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			images = append(images, filepath.Join(p.config.ImagesPath(), entry.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}
