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

// Package ocr talks to a text-recognition service and persists its raw
// output. Recognition itself runs out of process; this package only carries
// image bytes over and fragment streams back.
package ocr

import "context"

// Result is one recognition pass over an image: the detected text fragments
// in reading order and a confidence score per fragment.
type Result struct {
	Texts  []string  `json:"rec_texts"`
	Scores []float64 `json:"rec_scores"`
}

// Recognizer extracts text fragments from an encoded image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (*Result, error)
	Close() error
}
