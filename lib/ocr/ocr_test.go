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
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestClientRecognize(t *testing.T) {
	imageBytes := []byte{0x89, 0x50, 0x4e, 0x47}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/read", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]string
		require.NoError(t, sonic.Unmarshal(body, &req))
		assert.Equal(t, base64.StdEncoding.EncodeToString(imageBytes), req["image"])
		assert.Equal(t, "<OCR>", req["prompt"])

		_, _ = w.Write([]byte(`{"rec_texts":["Patient ID",": P1"],"rec_scores":[0.98,0.91]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, zaptest.NewLogger(t))
	defer client.Close()

	result, err := client.Recognize(context.Background(), imageBytes)
	require.NoError(t, err)
	assert.Equal(t, []string{"Patient ID", ": P1"}, result.Texts)
	assert.Equal(t, []float64{0.98, 0.91}, result.Scores)
}

func TestClientRecognizeServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, zaptest.NewLogger(t))
	defer client.Close()

	_, err := client.Recognize(context.Background(), []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestClientRecognizeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, zaptest.NewLogger(t))
	defer client.Close()

	_, err := client.Recognize(context.Background(), []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestRawResultRoundTrip(t *testing.T) {
	dir := t.TempDir()

	raw := NewRawResult("/input/scan.png", &Result{
		Texts:  []string{"Patient ID", ": P1"},
		Scores: []float64{0.98, 0.91},
	})
	assert.Equal(t, "scan.png", raw.ImageName)

	path, err := raw.Save(dir)
	require.NoError(t, err)
	assert.Contains(t, path, "scan_raw.json")

	loaded, err := LoadRawResult(path)
	require.NoError(t, err)
	assert.Equal(t, raw.ImageName, loaded.ImageName)
	assert.Equal(t, raw.ImagePath, loaded.ImagePath)
	assert.Equal(t, raw.Texts, loaded.Texts)
	assert.Equal(t, raw.Scores, loaded.Scores)
}

func TestLoadRawResultMissing(t *testing.T) {
	_, err := LoadRawResult("/does/not/exist_raw.json")
	assert.Error(t, err)
}
