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
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleDelay gives scanners and network copies time to finish writing a
// file before the pipeline reads it.
const settleDelay = 500 * time.Millisecond

// Watch processes new images as they land in the input folder, until the
// context is canceled. Failures on individual images are logged and do not
// stop the watch.
func (p *Pipeline) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.config.ImagesPath()); err != nil {
		return fmt.Errorf("watching %s: %w", p.config.ImagesPath(), err)
	}

	p.logger.Info("Watching for new images",
		zap.String("folder", p.config.ImagesPath()))

	// Arrivals are debounced per path rather than slept on inline, so a burst
	// of images does not serialize a settle delay per file. A later write to
	// the same path pushes its deadline back.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settleDelay / 5)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !imageExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			pending[event.Name] = time.Now().Add(settleDelay)

		case <-ticker.C:
			now := time.Now()
			for name, deadline := range pending {
				if now.Before(deadline) {
					continue
				}
				delete(pending, name)

				if _, err := p.ProcessImage(ctx, name); err != nil {
					RecordImageProcessed("error")
					p.logger.Warn("Image failed",
						zap.String("image", filepath.Base(name)),
						zap.Error(err))
					continue
				}
				RecordImageProcessed("ok")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("Watcher error", zap.Error(err))
		}
	}
}
