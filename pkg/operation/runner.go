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

package operation

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/exportsrc/pkg/status"
)

// 📦 ArchiveResult is the outcome of one archive of a run
type ArchiveResult struct {
	Archive string
	Report  *status.Report
	Err     error
}

// 📚 BatchResult holds the archive results of a run in input order
type BatchResult struct {
	Archives []ArchiveResult
}

// Failed returns the archives that could not be processed.
func (b *BatchResult) Failed() []ArchiveResult {
	var failed []ArchiveResult
	for _, a := range b.Archives {
		if a.Err != nil {
			failed = append(failed, a)
		}
	}
	return failed
}

// Err joins the errors of every failed archive, or returns nil.
func (b *BatchResult) Err() error {
	var errs []error
	for _, a := range b.Failed() {
		errs = append(errs, errors.Errorf("archive %s: %w", a.Archive, a.Err))
	}
	return errors.Join(errs...)
}

// 🏃 Runner resolves an input path to archives and feeds them to a pipeline
type Runner struct {
	pipeline *Pipeline
	parallel int
}

// 🏗️ NewRunner creates a runner for p
func NewRunner(p *Pipeline) *Runner {
	return &Runner{
		pipeline: p,
		parallel: p.cfg.Parallel,
	}
}

// 🏃 Run processes inputPath, either a single archive or a directory whose
// top-level archives are processed in name order. A failing archive does not
// stop the batch; the returned error is set only for an invalid input path or
// cancellation.
func (r *Runner) Run(ctx context.Context, inputPath string) (*BatchResult, error) {
	archives, workDir, err := r.discover(inputPath)
	if err != nil {
		return nil, err
	}

	if len(archives) == 0 {
		zerolog.Ctx(ctx).Warn().Str("input", inputPath).Str("ext", r.pipeline.cfg.ArchiveExt).Msg("no archives found")
		r.pipeline.console.Warningf("no %s archives found in %s", r.pipeline.cfg.ArchiveExt, inputPath)
		return &BatchResult{}, nil
	}

	if r.parallel > 1 && len(archives) > 1 {
		return r.runParallel(ctx, archives, workDir)
	}
	return r.runSequential(ctx, archives, workDir)
}

// discover returns the archives named by inputPath and the directory that
// holds their extraction and output directories
func (r *Runner) discover(inputPath string) ([]string, string, error) {
	ext := r.pipeline.cfg.ArchiveExt

	info, err := r.pipeline.fs.Stat(inputPath)
	if err != nil {
		return nil, "", errors.WithStack(&InvalidInputError{Path: inputPath, Reason: err.Error()})
	}

	if !info.IsDir() {
		if !info.Mode().IsRegular() || !strings.HasSuffix(info.Name(), ext) {
			return nil, "", errors.WithStack(&InvalidInputError{Path: inputPath, Reason: "not a " + ext + " archive or a directory"})
		}
		return []string{inputPath}, filepath.Dir(inputPath), nil
	}

	entries, err := afero.ReadDir(r.pipeline.fs, inputPath)
	if err != nil {
		return nil, "", fsErr("reading input directory", inputPath, err)
	}

	var archives []string
	for _, e := range entries {
		if e.Mode().IsRegular() && strings.HasSuffix(e.Name(), ext) {
			archives = append(archives, filepath.Join(inputPath, e.Name()))
		}
	}
	sort.Strings(archives)
	return archives, inputPath, nil
}

func (r *Runner) runSequential(ctx context.Context, archives []string, workDir string) (*BatchResult, error) {
	extractDir := filepath.Join(workDir, r.pipeline.cfg.ExtractDir)

	result := &BatchResult{}
	for _, a := range archives {
		if err := ctx.Err(); err != nil {
			return result, errors.Errorf("run cancelled: %w", err)
		}
		result.Archives = append(result.Archives, r.processOne(ctx, a, extractDir))
	}
	return result, nil
}

// runParallel processes archives concurrently, each in its own extraction
// directory. Archives sharing an output name run in the same worker, in
// order, so their merges never race.
func (r *Runner) runParallel(ctx context.Context, archives []string, workDir string) (*BatchResult, error) {
	var order []string
	groups := map[string][]int{}
	for i, a := range archives {
		key := strings.ToLower(r.pipeline.BaseName(a))
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	results := make([]ArchiveResult, len(archives))

	g := errgroup.Group{}
	g.SetLimit(r.parallel)
	for _, key := range order {
		g.Go(func() error {
			for _, i := range groups[key] {
				if err := ctx.Err(); err != nil {
					return errors.Errorf("run cancelled: %w", err)
				}
				extractDir := filepath.Join(workDir, r.pipeline.cfg.ExtractDir+"-"+r.pipeline.BaseName(archives[i]))
				results[i] = r.processOne(ctx, archives[i], extractDir)
			}
			return nil
		})
	}

	err := g.Wait()

	result := &BatchResult{}
	for _, res := range results {
		if res.Archive != "" {
			result.Archives = append(result.Archives, res)
		}
	}
	return result, err
}

func (r *Runner) processOne(ctx context.Context, archivePath, extractDir string) ArchiveResult {
	report, err := r.pipeline.ProcessArchive(ctx, archivePath, extractDir)
	res := ArchiveResult{Archive: archivePath, Report: report, Err: err}

	console := r.pipeline.console
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("archive", archivePath).Msg("archive failed")
		console.Error(r.pipeline.formatter.FormatError(errors.Errorf("%s: %w", archivePath, err)))
		return res
	}

	console.Success(r.pipeline.formatter.FormatSummary(archivePath, report.Output, report.Summary()))
	if problems := report.Problems(); problems != nil {
		console.Warningf("%d problem(s) in %s", report.Summary().Problems(), filepath.Base(archivePath))
	}
	return res
}
