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
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// readPrompt selects the plain OCR task on the read endpoint.
const readPrompt = "<OCR>"

type readRequest struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

type readResponse struct {
	Texts  []string  `json:"rec_texts"`
	Scores []float64 `json:"rec_scores"`
	Error  string    `json:"error,omitempty"`
}

// Client is a Recognizer backed by a remote read service over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient returns a client for the read service at baseURL, e.g.
// "http://localhost:8090". A zero timeout disables the request deadline.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("ocr"),
	}
}

// Recognize sends the encoded image to the read service and returns the
// detected fragments.
func (c *Client) Recognize(ctx context.Context, image []byte) (*Result, error) {
	body, err := sonic.Marshal(readRequest{
		Image:  base64.StdEncoding.EncodeToString(image),
		Prompt: readPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding read request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/read", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building read request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling read service: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("read service returned %d: %s", resp.StatusCode, payload)
	}

	var decoded readResponse
	if err := sonic.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decoding read response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("read service error: %s", decoded.Error)
	}

	c.logger.Debug("Recognized image",
		zap.Int("fragments", len(decoded.Texts)),
		zap.Duration("duration", time.Since(start)))

	return &Result{Texts: decoded.Texts, Scores: decoded.Scores}, nil
}

// Close implements Recognizer. The HTTP client holds no resources that need
// explicit release.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
