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

package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collapse squeezes the column padding so assertions do not depend on widths
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_file_operation",
			op: func(t *testing.T, logger *Logger) {
				logger.LogFileOperation(context.Background(), FileOperation{
					Path:     "TRIGGER/alerts/TRIGGER-alerts-2.groovy",
					Category: "TRIGGER",
					Status:   "emitted",
					IsNew:    true,
				})
			},
			wantLogs: []string{
				"✓ TRIGGER/alerts/TRIGGER-alerts-2.groovy TRIGGER emitted",
			},
		},
		{
			name: "start_archive",
			op: func(t *testing.T, logger *Logger) {
				logger.StartArchive(context.Background(), ArchiveOperation{
					Archive:    "/in/demo.zip",
					Output:     "/in/demo",
					ExtractDir: "/in/extracted_files",
				})
			},
			wantLogs: []string{
				"[extracting /in/demo.zip]",
				"◆ /in/demo • /in/extracted_files",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"⚠️ warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_warning",
			op: func(t *testing.T, logger *Logger) {
				logger.Warningf("warning %s", "test")
			},
			wantLogs: []string{
				"⚠️ warning test",
			},
		},
		{
			name: "log_detail",
			op: func(t *testing.T, logger *Logger) {
				logger.Detail("❌ Failed BAD.json: bad json")
			},
			wantLogs: []string{
				"❌ Failed BAD.json: bad json",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("organizing exports")
			},
			wantLogs: []string{
				"exportsrc • organizing exports",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Success("first")
				logger.LogNewline()
				logger.Success("second")
			},
			wantLogs: []string{
				"✅ first",
				"",
				"✅ second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create buffer for console output
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			// Perform operation
			tt.op(t, logger)

			// Check output
			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, collapse(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestFileOperationFormatting(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		op   FileOperation
		want string
	}{
		{
			name: "emitted",
			op:   FileOperation{Path: "BATCH/BATCH-1.groovy", Category: "BATCH", Status: "emitted", IsNew: true},
			want: "✓ BATCH/BATCH-1.groovy BATCH emitted",
		},
		{
			name: "overwritten",
			op:   FileOperation{Path: "BATCH/BATCH-1.groovy", Category: "BATCH", Status: "overwritten", IsNew: true, IsModified: true},
			want: "⟳ BATCH/BATCH-1.groovy BATCH overwritten",
		},
		{
			name: "skipped",
			op:   FileOperation{Path: "MISC-1.json", Status: "skipped", IsRemoved: true},
			want: "- MISC-1.json - skipped",
		},
		{
			name: "failed",
			op:   FileOperation{Path: "BAD.json", Status: "failed", IsError: true, IsRemoved: true},
			want: "✗ BAD.json - failed",
		},
		{
			name: "merged",
			op:   FileOperation{Path: "UTILITY/u.groovy", Category: "UTILITY", Status: "merged"},
			want: "• UTILITY/u.groovy UTILITY merged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.Nop())

			logger.LogFileOperation(context.Background(), tt.op)

			output := buf.String()
			assert.True(t, strings.HasPrefix(output, "    "), "file lines should be indented")
			assert.Equal(t, tt.want, collapse(output), "formatted output should match")
		})
	}
}
