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

// Package walk provides the depth-first traversal shared by the flatten,
// prune and merge stages.
//
// A walk never stops at the first failure. Errors from file and directory
// actions are collected and returned together once the whole tree has been
// visited, so one bad file does not prevent its siblings from being handled.
package walk

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// 🚶 Visitor holds the per-entry actions of a walk. Nil actions are skipped.
type Visitor struct {
	// Skip prunes a path (file or directory) from the walk entirely.
	Skip func(path string, info os.FileInfo) bool

	// File is called for every non-directory entry.
	File func(ctx context.Context, path, rel string, info os.FileInfo) error

	// Dir is called for every directory below the root after its children
	// have been visited. empty reports whether it has no entries left.
	Dir func(ctx context.Context, path, rel string, empty bool) error
}

// 🌲 Walk visits the tree below root, children before their parent, entries in
// lexical order. root itself is never passed to Dir.
func Walk(ctx context.Context, fs afero.Fs, root string, v Visitor) error {
	var errs []error
	walkDir(ctx, fs, root, root, v, &errs)
	return errors.Join(errs...)
}

func walkDir(ctx context.Context, fs afero.Fs, root, dir string, v Visitor, errs *[]error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		*errs = append(*errs, errors.Errorf("reading directory %s: %w", dir, err))
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, info := range entries {
		if err := ctx.Err(); err != nil {
			*errs = append(*errs, errors.Errorf("walk cancelled: %w", err))
			return
		}

		path := filepath.Join(dir, info.Name())
		if v.Skip != nil && v.Skip(path, info) {
			continue
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			*errs = append(*errs, errors.Errorf("relativizing %s: %w", path, err))
			continue
		}

		if !info.IsDir() {
			if v.File != nil {
				if err := v.File(ctx, path, rel, info); err != nil {
					*errs = append(*errs, err)
				}
			}
			continue
		}

		walkDir(ctx, fs, root, path, v, errs)

		if v.Dir != nil {
			empty, err := IsEmpty(fs, path)
			if err != nil {
				*errs = append(*errs, err)
				continue
			}
			if err := v.Dir(ctx, path, rel, empty); err != nil {
				*errs = append(*errs, err)
			}
		}
	}
}

// 📭 IsEmpty reports whether dir has no entries
func IsEmpty(fs afero.Fs, dir string) (bool, error) {
	empty, err := afero.IsEmpty(fs, dir)
	if err != nil {
		return false, errors.Errorf("checking directory %s: %w", dir, err)
	}
	return empty, nil
}

// ✂️ PruneEmpty removes every directory below root that is empty once its own
// children have been pruned. keep may veto removal of a directory, given its
// path relative to root. root itself is never removed.
func PruneEmpty(ctx context.Context, fs afero.Fs, root string, keep func(rel string) bool) error {
	return Walk(ctx, fs, root, Visitor{
		Dir: func(ctx context.Context, path, rel string, empty bool) error {
			if !empty || (keep != nil && keep(rel)) {
				return nil
			}
			if err := fs.Remove(path); err != nil {
				return errors.Errorf("removing empty directory %s: %w", path, err)
			}
			return nil
		},
	})
}
