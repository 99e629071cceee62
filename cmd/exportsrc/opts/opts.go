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

package opts

import (
	"io"

	"github.com/walteh/exportsrc/pkg/config"
	"github.com/walteh/exportsrc/pkg/log"
	"github.com/walteh/exportsrc/pkg/operation"
)

// RootOpts contains the dependencies of a command run
type RootOpts struct {
	Config   *config.Config
	Pipeline *operation.Pipeline
	Console  *log.Logger
	Out      io.Writer
}
