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
	"fmt"
	"path/filepath"
)

// FileFormatter defines how file events and archive results should be formatted
type FileFormatter interface {
	// FormatFileOperation formats a single file event
	FormatFileOperation(info FileInfo) string

	// FormatSummary formats the one-line result of an archive
	FormatSummary(archive, output string, s Summary) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats a file event with emojis
func (f *DefaultFileFormatter) FormatFileOperation(info FileInfo) string {
	path := info.Path
	if info.SourceID != "" {
		path = fmt.Sprintf("%s [%s]", path, info.SourceID)
	}

	switch info.Status {
	case StatusEmitted:
		return fmt.Sprintf("✨ Emitted %s", path)
	case StatusOverwritten:
		return fmt.Sprintf("📝 Overwrote %s", path)
	case StatusRenamed:
		return fmt.Sprintf("🔀 Renamed %s", path)
	case StatusSkipped:
		return fmt.Sprintf("⏭️  Skipped %s", path)
	case StatusMerged:
		return fmt.Sprintf("📥 Merged %s", path)
	case StatusConflict:
		return fmt.Sprintf("⚔️  Conflict %s: %v", path, info.Error)
	case StatusFailed:
		return fmt.Sprintf("❌ Failed %s: %v", path, info.Error)
	default:
		return fmt.Sprintf("👍 %s", path)
	}
}

// FormatSummary formats the result line of one archive
func (f *DefaultFileFormatter) FormatSummary(archive, output string, s Summary) string {
	return fmt.Sprintf("Extraction and organization completed for: %s -> %s (%d emitted, %d skipped, %d merged, %d problems)",
		filepath.Base(archive), output, s.Emitted, s.Skipped, s.Merged, s.Problems())
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
