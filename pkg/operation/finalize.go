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
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/exportsrc/pkg/status"
	"github.com/walteh/exportsrc/pkg/walk"
)

// ✂️ Prune removes the directories below extractDir that hold no files. The
// category directories survive when keep_empty_categories is set.
func (p *Pipeline) Prune(ctx context.Context, extractDir string) error {
	return walk.PruneEmpty(ctx, p.fs, extractDir, func(rel string) bool {
		return p.cfg.KeepEmptyCategories && isCategoryDir(rel)
	})
}

// 🏁 Finalize gives the organized tree in extractDir its final name,
// <parent of extractDir>/<baseName>. An existing output directory is merged
// into file by file and extractDir is removed. It returns the output path.
func (p *Pipeline) Finalize(ctx context.Context, report *status.Report, extractDir, baseName string) (string, error) {
	target := filepath.Join(filepath.Dir(extractDir), baseName)
	if filepath.Clean(target) == filepath.Clean(extractDir) {
		return "", fsErr("finalizing", target, errors.New("output directory is the extraction directory"))
	}

	info, err := p.fs.Stat(target)
	switch {
	case os.IsNotExist(err):
		if err := p.fs.Rename(extractDir, target); err != nil {
			return "", fsErr("renaming", extractDir, err)
		}
		zerolog.Ctx(ctx).Debug().Str("output", target).Msg("renamed extraction directory")
		return target, nil
	case err != nil:
		return "", fsErr("checking output directory", target, err)
	case !info.IsDir():
		return "", fsErr("merging into", target, errors.New("not a directory"))
	}

	if err := p.merge(ctx, report, extractDir, target); err != nil {
		return "", err
	}
	return target, nil
}

// 🔀 merge moves every file under srcRoot to the same relative path under
// dstRoot and removes srcRoot.
func (p *Pipeline) merge(ctx context.Context, report *status.Report, srcRoot, dstRoot string) error {
	err := walk.Walk(ctx, p.fs, srcRoot, walk.Visitor{
		File: func(ctx context.Context, path, rel string, info os.FileInfo) error {
			return p.mergeFile(ctx, report, path, rel, dstRoot, info)
		},
		Dir: func(ctx context.Context, path, rel string, empty bool) error {
			dst := filepath.Join(dstRoot, rel)
			if err := p.fs.MkdirAll(dst, 0755); err != nil {
				return fsErr("creating", dst, err)
			}
			if !empty {
				return nil
			}
			if err := p.fs.Remove(path); err != nil {
				return fsErr("removing merged directory", path, err)
			}
			return nil
		},
	})
	if err != nil {
		return err
	}

	if err := p.fs.Remove(srcRoot); err != nil {
		return fsErr("removing extraction directory", srcRoot, err)
	}
	return nil
}

func (p *Pipeline) mergeFile(ctx context.Context, report *status.Report, src, rel, dstRoot string, info os.FileInfo) error {
	dst := filepath.Join(dstRoot, rel)

	data, err := afero.ReadFile(p.fs, src)
	if err != nil {
		return fsErr("reading", src, err)
	}

	existing, err := p.fs.Stat(dst)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fsErr("checking", dst, err)
	case existing.IsDir():
		return fsErr("merging", dst, errors.New("a directory already exists at this path"))
	default:
		old, err := afero.ReadFile(p.fs, dst)
		if err != nil {
			return fsErr("reading", dst, err)
		}
		if bytes.Equal(old, data) {
			break
		}

		c, err := p.resolve(ctx, dst, rel, diffSummary(old, data), func() (string, error) {
			return uniquePath(p.fs, dst)
		})
		if err != nil {
			return err
		}
		if c.err != nil {
			p.track(ctx, report, status.FileInfo{Path: rel, Status: c.status, Error: c.err})
			if err := p.fs.Remove(src); err != nil {
				return fsErr("deleting", src, err)
			}
			return nil
		}
		dst = c.dest
	}

	if err := p.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fsErr("creating", filepath.Dir(dst), err)
	}
	if err := afero.WriteFile(p.fs, dst, data, info.Mode().Perm()|0200); err != nil {
		return fsErr("writing", dst, err)
	}
	if err := p.fs.Remove(src); err != nil {
		return fsErr("deleting", src, err)
	}

	dstRel, _ := filepath.Rel(dstRoot, dst)
	p.track(ctx, report, status.FileInfo{Path: dstRel, Status: status.StatusMerged})
	return nil
}
