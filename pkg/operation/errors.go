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
	"fmt"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/exportsrc/pkg/archive"
)

// ArchiveError reports an unreadable, corrupt or unsupported archive. It is
// fatal for that archive only.
type ArchiveError = archive.Error

// 📄 MalformedDescriptorError reports a descriptor that is not valid JSON or
// has no sources mapping. The pipeline continues with the other descriptors.
type MalformedDescriptorError struct {
	File string
	Err  error
}

func (e *MalformedDescriptorError) Error() string {
	return fmt.Sprintf("malformed descriptor %s: %v", e.File, e.Err)
}

func (e *MalformedDescriptorError) Unwrap() error { return e.Err }

// 🔓 DecodeError reports a source entry whose payload could not be decoded.
// Sibling entries and descriptors continue.
type DecodeError struct {
	File     string
	SourceID string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding source %q of %s: %v", e.SourceID, e.File, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// 💾 FilesystemError reports a failed filesystem operation. It is fatal for
// the current archive; a batch moves on to the next one.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// ⚔️ MergeConflictError reports two outputs landing on the same path.
type MergeConflictError struct {
	Path   string
	Detail string
}

func (e *MergeConflictError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("conflict at %s", e.Path)
	}
	return fmt.Sprintf("conflict at %s: %s", e.Path, e.Detail)
}

// 🚫 InvalidInputError reports an input path that is neither an archive nor a
// directory. It aborts the whole run.
type InvalidInputError struct {
	Path   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Path, e.Reason)
}

func fsErr(op, path string, err error) error {
	return errors.WithStack(&FilesystemError{Op: op, Path: path, Err: err})
}
