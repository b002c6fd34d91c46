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

import "github.com/prometheus/client_golang/prometheus"

var (
	parseOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "antfly",
			Subsystem: "labreport",
			Name:      "parse_ops_total",
			Help:      "The total number of report parses.",
		},
		[]string{"format"},
	)

	fallbackOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "antfly",
			Subsystem: "labreport",
			Name:      "fallback_ops_total",
			Help:      "The total number of parses that fell through to the universal parser.",
		},
		[]string{"reason"}, // unknown_format, empty_extraction
	)

	parseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "antfly",
			Subsystem: "labreport",
			Name:      "parse_duration_seconds",
			Help:      "Time taken to parse one fragment stream.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"format"},
	)

	ocrRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "antfly",
			Subsystem: "labreport",
			Name:      "ocr_requests_total",
			Help:      "The total number of recognition requests sent to the read service.",
		},
	)

	ocrRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "antfly",
			Subsystem: "labreport",
			Name:      "ocr_retries_total",
			Help:      "The total number of recognition retries after image enhancement.",
		},
	)

	imagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "antfly",
			Subsystem: "labreport",
			Name:      "images_processed_total",
			Help:      "The total number of images processed by the pipeline.",
		},
		[]string{"status"}, // ok, error
	)

	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "antfly",
			Subsystem: "labreport",
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits.",
		},
		[]string{"type"}, // parse
	)

	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "antfly",
			Subsystem: "labreport",
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses.",
		},
		[]string{"type"}, // parse
	)
)

func init() {
	prometheus.MustRegister(parseOps)
	prometheus.MustRegister(fallbackOps)
	prometheus.MustRegister(parseDuration)
	prometheus.MustRegister(ocrRequests)
	prometheus.MustRegister(ocrRetries)
	prometheus.MustRegister(imagesProcessed)
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(cacheMisses)
}

// RecordParse increments the parse counter for a format
func RecordParse(format string) {
	parseOps.WithLabelValues(format).Inc()
}

// RecordFallback increments the universal-fallback counter
func RecordFallback(reason string) {
	fallbackOps.WithLabelValues(reason).Inc()
}

// RecordParseDuration records how long one parse took
func RecordParseDuration(format string, seconds float64) {
	parseDuration.WithLabelValues(format).Observe(seconds)
}

// RecordOCRRequest increments the recognition request counter
func RecordOCRRequest() {
	ocrRequests.Inc()
}

// RecordOCRRetry increments the enhancement-retry counter
func RecordOCRRetry() {
	ocrRetries.Inc()
}

// RecordImageProcessed increments the pipeline image counter
func RecordImageProcessed(status string) {
	imagesProcessed.WithLabelValues(status).Inc()
}

// RecordCacheHit increments the cache hit counter
func RecordCacheHit(cacheType string) {
	cacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss increments the cache miss counter
func RecordCacheMiss(cacheType string) {
	cacheMisses.WithLabelValues(cacheType).Inc()
}
