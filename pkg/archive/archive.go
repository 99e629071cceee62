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

// Package archive unpacks zip archives onto an afero filesystem.
package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// ❌ Error reports an archive that could not be read: missing, corrupt,
// unsupported, or holding entries that escape the target directory.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return "archive " + e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func archiveErr(path string, err error) error {
	return errors.WithStack(&Error{Path: path, Err: err})
}

// 📦 Extract decompresses every entry of archivePath into targetDir, creating
// targetDir when absent and overwriting colliding paths. Relative paths
// inside the archive are preserved.
func Extract(ctx context.Context, fs afero.Fs, archivePath, targetDir string) error {
	logger := zerolog.Ctx(ctx)

	f, err := fs.Open(archivePath)
	if err != nil {
		return archiveErr(archivePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return archiveErr(archivePath, err)
	}

	reader, err := zip.NewReader(f, info.Size())
	if err != nil {
		return archiveErr(archivePath, err)
	}

	if err := fs.MkdirAll(targetDir, 0755); err != nil {
		return errors.Errorf("creating target directory: %w", err)
	}

	logger.Debug().Str("archive", archivePath).Int("entries", len(reader.File)).Str("target", targetDir).Msg("extracting archive")

	for _, entry := range reader.File {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("extraction cancelled: %w", err)
		}

		dest, err := entryPath(targetDir, entry.Name)
		if err != nil {
			return archiveErr(archivePath, err)
		}

		if entry.FileInfo().IsDir() {
			if err := fs.MkdirAll(dest, 0755); err != nil {
				return errors.Errorf("creating directory %s: %w", dest, err)
			}
			continue
		}

		if err := extractFile(fs, entry, dest); err != nil {
			var aerr *Error
			if errors.As(err, &aerr) {
				aerr.Path = archivePath
			}
			return err
		}
	}

	return nil
}

// 🔒 entryPath resolves an entry name under targetDir, rejecting names that escape it
func entryPath(targetDir, name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(name, "/") || filepath.IsAbs(name) {
		return "", errors.Errorf("entry %q has an absolute path", name)
	}

	dest := filepath.Join(targetDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(targetDir, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("entry %q escapes the target directory", name)
	}
	return dest, nil
}

func extractFile(fs afero.Fs, entry *zip.File, dest string) error {
	if err := fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	src, err := entry.Open()
	if err != nil {
		return errors.WithStack(&Error{Err: errors.Errorf("opening entry %q: %w", entry.Name, err)})
	}
	defer src.Close()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}

	out, err := fs.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode|0200)
	if err != nil {
		return errors.Errorf("creating %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		// a write failure surfaces as a *os.PathError, anything else came from the reader
		var perr *os.PathError
		if errors.As(err, &perr) {
			return errors.Errorf("writing %s: %w", dest, err)
		}
		return errors.WithStack(&Error{Err: errors.Errorf("reading entry %q: %w", entry.Name, err)})
	}

	return nil
}
