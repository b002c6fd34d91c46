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
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/antflydb/labreport"
	"github.com/antflydb/labreport/lib/ocr"
	"github.com/antflydb/labreport/lib/report"
)

var parseMarkdown bool

var parseCmd = &cobra.Command{
	Use:   "parse <raw-result.json> [...]",
	Short: "Re-parse saved raw recognition output",
	Long: `Parse one or more saved raw recognition files without re-running OCR,
printing the structured extraction for each. Useful for replaying parser
changes against archived batches.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&parseMarkdown, "markdown", false, "print markdown instead of JSON")
}

func runParse(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	engine := labreport.NewEngine(nil, logger)

	for _, path := range args {
		raw, err := ocr.LoadRawResult(path)
		if err != nil {
			return err
		}

		extraction := engine.Parse(raw.Texts)
		doc := &report.Document{
			ImageName:   raw.ImageName,
			ImagePath:   raw.ImagePath,
			ProcessedAt: raw.ProcessedAt,
			Report:      extraction.Report,
		}

		if parseMarkdown {
			fmt.Fprintln(os.Stdout, doc.Markdown())
			continue
		}
		data, err := sonic.ConfigDefault.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(data))
	}
	return nil
}
