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

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// 🧹 cleanup removes a working directory (extraction or staging) left by an
// archive so the next archive starts from an empty working tree. A missing
// directory is not an error.
func (p *Pipeline) cleanup(ctx context.Context, dir string) {
	exists, err := afero.DirExists(p.fs, dir)
	if err == nil && !exists {
		return
	}
	if err := p.fs.RemoveAll(dir); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("dir", dir).Msg("cleaning up working directory")
		return
	}
	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("cleaned up working directory")
}
