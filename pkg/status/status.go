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

package status

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus represents what happened to a file during a run
type FileStatus int

const (
	StatusUnknown     FileStatus = iota
	StatusEmitted                // source written to a new path
	StatusOverwritten            // source replaced an earlier output
	StatusRenamed                // source written under a unique name to avoid a collision
	StatusSkipped                // descriptor produced no output
	StatusMerged                 // file moved into a pre-existing output directory
	StatusConflict               // collision that was not resolved by writing
	StatusFailed                 // descriptor or source could not be processed
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusEmitted:
		return "emitted"
	case StatusOverwritten:
		return "overwritten"
	case StatusRenamed:
		return "renamed"
	case StatusSkipped:
		return "skipped"
	case StatusMerged:
		return "merged"
	case StatusConflict:
		return "conflict"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileInfo describes one tracked file event
type FileInfo struct {
	Path     string     // Path relative to the output root, or the descriptor name
	Category string     // Output category, empty when unmatched
	SourceID string     // Source id inside the descriptor, if any
	Status   FileStatus // What happened
	Error    error      // Any error associated with this file
}

// 📈 Summary counts the tracked events of one archive
type Summary struct {
	Emitted   int // emitted, overwritten and renamed sources
	Skipped   int
	Merged    int
	Conflicts int
	Failed    int
}

// Problems returns how many events carried an error.
func (s Summary) Problems() int {
	return s.Conflicts + s.Failed
}

// 🔧 Report collects the file events of a single archive run
type Report struct {
	Archive string // archive path
	Output  string // final output directory, set once finalized

	mu    sync.Mutex
	files []FileInfo
}

// 🏭 NewReport creates an empty report for archive
func NewReport(archive string) *Report {
	return &Report{Archive: archive}
}

// 📝 Track records a file event
func (r *Report) Track(ctx context.Context, info FileInfo) {
	r.mu.Lock()
	r.files = append(r.files, info)
	r.mu.Unlock()

	event := zerolog.Ctx(ctx).Debug()
	if info.Error != nil {
		event = zerolog.Ctx(ctx).Warn().Err(info.Error)
	}
	event.
		Str("archive", r.Archive).
		Str("path", info.Path).
		Str("category", info.Category).
		Str("source_id", info.SourceID).
		Str("status", info.Status.String()).
		Msg("file event")
}

// 📋 Files returns a copy of the tracked events in the order they happened
func (r *Report) Files() []FileInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]FileInfo, len(r.files))
	copy(out, r.files)
	return out
}

// 🔢 Summary counts the tracked events by kind
func (r *Report) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s Summary
	for _, f := range r.files {
		switch f.Status {
		case StatusEmitted, StatusOverwritten, StatusRenamed:
			s.Emitted++
		case StatusSkipped:
			s.Skipped++
		case StatusMerged:
			s.Merged++
		case StatusConflict:
			s.Conflicts++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// ⚠️ Problems joins every error carried by a tracked event, or returns nil
func (r *Report) Problems() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, f := range r.files {
		if f.Error != nil {
			errs = append(errs, f.Error)
		}
	}
	return errors.Join(errs...)
}
