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

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/exportsrc/pkg/archive"
	"github.com/walteh/exportsrc/pkg/log"
	"github.com/walteh/exportsrc/pkg/status"
)

// 📦 ProcessArchive extracts archivePath into extractDir, flattens and
// organizes the tree and finalizes it as a directory named after the archive
// next to extractDir. Per-file problems end up in the report; the returned
// error is set only when the archive could not be processed, in which case
// extractDir has been cleaned up.
func (p *Pipeline) ProcessArchive(ctx context.Context, archivePath, extractDir string) (*status.Report, error) {
	report := status.NewReport(archivePath)
	baseName := p.BaseName(archivePath)
	output := filepath.Join(filepath.Dir(extractDir), baseName)

	logger := zerolog.Ctx(ctx).With().Str("archive", archivePath).Logger()
	ctx = logger.WithContext(ctx)

	if baseName == "" || filepath.Clean(output) == filepath.Clean(extractDir) {
		return report, errors.WithStack(&InvalidInputError{
			Path:   archivePath,
			Reason: "archive name collides with the extraction directory " + filepath.Base(extractDir),
		})
	}

	p.console.StartArchive(ctx, log.ArchiveOperation{
		Archive:    archivePath,
		Output:     output,
		ExtractDir: extractDir,
	})

	final, err := p.process(ctx, report, archivePath, extractDir, baseName)
	if err != nil {
		p.cleanup(ctx, extractDir)
		return report, err
	}
	report.Output = final

	logger.Info().Str("output", final).Interface("summary", report.Summary()).Msg("archive processed")
	return report, nil
}

func (p *Pipeline) process(ctx context.Context, report *status.Report, archivePath, extractDir, baseName string) (string, error) {
	if err := p.fs.MkdirAll(extractDir, 0755); err != nil {
		return "", fsErr("creating extraction directory", extractDir, err)
	}

	if err := archive.Extract(ctx, p.fs, archivePath, extractDir); err != nil {
		return "", errors.Errorf("extracting: %w", err)
	}

	// staging lives next to the extracted tree so the archive's own paths never collide with it
	stagingDir, err := afero.TempDir(p.fs, filepath.Dir(extractDir), p.cfg.StagingDir+"-")
	if err != nil {
		return "", fsErr("creating staging directory", filepath.Dir(extractDir), err)
	}
	defer p.cleanup(ctx, stagingDir)

	if err := p.Flatten(ctx, report, extractDir, stagingDir); err != nil {
		return "", errors.Errorf("flattening: %w", err)
	}

	if err := p.Organize(ctx, report, stagingDir, extractDir); err != nil {
		return "", errors.Errorf("organizing: %w", err)
	}

	if err := p.Prune(ctx, extractDir); err != nil {
		return "", errors.Errorf("pruning: %w", err)
	}

	output, err := p.Finalize(ctx, report, extractDir, baseName)
	if err != nil {
		return "", errors.Errorf("finalizing: %w", err)
	}
	return output, nil
}
