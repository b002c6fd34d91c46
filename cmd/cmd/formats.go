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

	"github.com/spf13/cobra"

	"github.com/antflydb/labreport"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the built-in report layouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, format := range labreport.DefaultReaderRegistry().Formats() {
			fmt.Fprintln(os.Stdout, format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
