// Copyright 2025 Antfly, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/antflydb/labreport"
	"github.com/antflydb/labreport/lib/ocr"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process every image in the input folder",
	Long: `Run recognition and extraction over every image under <base-dir>/images,
writing raw recognition output, structured JSON, and markdown to the
sibling output folders.`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().String("base-dir", ".", "working folder holding images/ and the output folders")
	processCmd.Flags().String("read-url", "http://localhost:8090", "base URL of the read service")
	processCmd.Flags().Duration("read-timeout", labreport.DefaultConfig(".").ReadTimeout, "recognition request timeout")
	processCmd.Flags().Int("workers", 4, "number of images processed concurrently")
	processCmd.Flags().Int("min-fragments", 2, "detection count below which recognition is retried on an enhanced image")
	processCmd.Flags().String("metrics-addr", "", "address to serve /metrics on (empty disables)")
	mustBindPFlag("base_dir", processCmd.Flags().Lookup("base-dir"))
	mustBindPFlag("read_url", processCmd.Flags().Lookup("read-url"))
	mustBindPFlag("read_timeout", processCmd.Flags().Lookup("read-timeout"))
	mustBindPFlag("workers", processCmd.Flags().Lookup("workers"))
	mustBindPFlag("min_fragments", processCmd.Flags().Lookup("min-fragments"))
	mustBindPFlag("metrics_addr", processCmd.Flags().Lookup("metrics-addr"))
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	pipeline, err := buildPipeline(logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = pipeline.Close()
	}()

	startMetricsServer(logger)

	summary, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	for _, imageErr := range summary.Errors {
		logger.Warn("Failed image",
			zap.String("image", imageErr.ImageName),
			zap.String("error", imageErr.Error))
	}
	return nil
}

// buildPipeline assembles a pipeline from the viper settings.
func buildPipeline(logger *zap.Logger) (*labreport.Pipeline, error) {
	cfg := labreport.DefaultConfig(viper.GetString("base_dir"))
	cfg.ReadServiceURL = viper.GetString("read_url")
	cfg.ReadTimeout = viper.GetDuration("read_timeout")
	cfg.Workers = viper.GetInt("workers")
	cfg.MinFragments = viper.GetInt("min_fragments")

	recognizer := ocr.NewClient(cfg.ReadServiceURL, cfg.ReadTimeout, logger)
	return labreport.NewPipeline(cfg, recognizer, logger)
}

// startMetricsServer exposes prometheus metrics when metrics_addr is set.
func startMetricsServer(logger *zap.Logger) {
	addr := viper.GetString("metrics_addr")
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		logger.Info("Serving metrics", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warn("Metrics server stopped", zap.Error(err))
		}
	}()
}
