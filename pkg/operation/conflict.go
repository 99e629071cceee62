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
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/exportsrc/pkg/config"
	"github.com/walteh/exportsrc/pkg/status"
)

// 💥 collision is the decision taken for an output that lands on an occupied path
type collision struct {
	dest   string            // where to write, empty when nothing is written
	status status.FileStatus // how the write should be tracked
	err    error             // set when the policy refused the write
}

// resolve applies the collision policy to the occupied path dest. display names
// dest in reports and renamed yields the alternative path used by the rename policy.
func (p *Pipeline) resolve(ctx context.Context, dest, display, detail string, renamed func() (string, error)) (collision, error) {
	conflict := &MergeConflictError{Path: display, Detail: detail}

	switch p.cfg.OnCollision {
	case config.CollisionFail:
		return collision{status: status.StatusConflict, err: errors.WithStack(conflict)}, nil
	case config.CollisionRename:
		alt, err := renamed()
		if err != nil {
			return collision{}, err
		}
		zerolog.Ctx(ctx).Info().Str("path", display).Str("renamed_to", alt).Msg("renamed colliding output")
		return collision{dest: alt, status: status.StatusRenamed}, nil
	default:
		zerolog.Ctx(ctx).Warn().Err(conflict).Msg("overwriting colliding output")
		return collision{dest: dest, status: status.StatusOverwritten}, nil
	}
}

// 🔢 uniquePath returns the first "<stem>-N<ext>" next to path that does not exist yet
func uniquePath(fs afero.Fs, path string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		exists, err := afero.Exists(fs, candidate)
		if err != nil {
			return "", fsErr("checking", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
}

// 🔀 sourceVariant names the output of a later source of a multi-source descriptor
func (p *Pipeline) sourceVariant(target, sourceID string) (string, error) {
	id := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, sourceID)
	if id == "" {
		id = "source"
	}

	candidate := strings.TrimSuffix(target, p.cfg.SourceExt) + "-" + id + p.cfg.SourceExt
	exists, err := afero.Exists(p.fs, candidate)
	if err != nil {
		return "", fsErr("checking", candidate, err)
	}
	if exists {
		return uniquePath(p.fs, candidate)
	}
	return candidate, nil
}

// 📐 diffSummary describes how incoming differs from existing
func diffSummary(existing, incoming []byte) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(existing), string(incoming), false)

	var inserted, deleted int
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += utf8.RuneCountInString(d.Text)
		case diffmatchpatch.DiffDelete:
			deleted += utf8.RuneCountInString(d.Text)
		}
	}
	return fmt.Sprintf("existing file differs (+%d -%d chars)", inserted, deleted)
}
