// Copyright 2025 walteh LLC
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

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/exportsrc/cmd/exportsrc/opts"
	"github.com/walteh/exportsrc/pkg/operation"
)

// run processes input and reports the outcome of every archive. It fails when
// any archive failed, once the whole batch is done.
func run(ctx context.Context, o *opts.RootOpts, input string) error {
	o.Console.Header(fmt.Sprintf("%s (%s)", input, o.Config))

	result, err := operation.NewRunner(o.Pipeline).Run(ctx, input)
	if err != nil {
		return err
	}

	if len(result.Archives) > 1 {
		if err := printSummary(o, result); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("rendering summary table")
		}
	}

	if failed := result.Failed(); len(failed) > 0 {
		zerolog.Ctx(ctx).Debug().Err(result.Err()).Msg("batch finished with failures")
		return errors.Errorf("%d of %d archives failed", len(failed), len(result.Archives))
	}
	return nil
}

// 📊 printSummary renders one table row per archive
func printSummary(o *opts.RootOpts, result *operation.BatchResult) error {
	data := pterm.TableData{
		{"Archive", "Output", "Emitted", "Skipped", "Merged", "Problems", "Result"},
	}
	for _, a := range result.Archives {
		row := []string{filepath.Base(a.Archive), "-", "-", "-", "-", "-", "ok"}
		if a.Report != nil {
			s := a.Report.Summary()
			if a.Report.Output != "" {
				row[1] = a.Report.Output
			}
			row[2] = strconv.Itoa(s.Emitted)
			row[3] = strconv.Itoa(s.Skipped)
			row[4] = strconv.Itoa(s.Merged)
			row[5] = strconv.Itoa(s.Problems())
		}
		if a.Err != nil {
			row[6] = "failed: " + a.Err.Error()
		}
		data = append(data, row)
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Errorf("rendering table: %w", err)
	}
	o.Console.LogNewline()
	fmt.Fprintln(o.Out, table)
	return nil
}
