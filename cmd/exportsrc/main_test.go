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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/exportsrc/pkg/testutils"
)

// lockedBuffer is shared by the console and the logger, which parallel runs write from several goroutines
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &lockedBuffer{}
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd(t *testing.T) {
	fs := afero.NewOsFs()

	tests := []struct {
		name        string
		setup       func(t *testing.T, dir string) []string
		wantErr     bool
		errContains string
		validate    func(t *testing.T, dir, out string)
	}{
		{
			name: "single_archive",
			setup: func(t *testing.T, dir string) []string {
				testutils.BuildZip(t, fs, filepath.Join(dir, "demo.zip"), map[string]string{
					"sub/TRIGGER-alerts-2.json": testutils.Descriptor(t, testutils.Source{ID: "a", Code: "println 1"}),
					"readme.txt":                "hello",
				})
				return []string{filepath.Join(dir, "demo.zip")}
			},
			validate: func(t *testing.T, dir, out string) {
				data, err := os.ReadFile(filepath.Join(dir, "demo", "TRIGGER", "alerts", "TRIGGER-alerts-2.groovy"))
				require.NoError(t, err)
				assert.Equal(t, "println 1", string(data))
				assert.NoDirExists(t, filepath.Join(dir, "extracted_files"))
				assert.Contains(t, out, "Extraction and organization completed for: demo.zip")
			},
		},
		{
			name: "flags_override_config",
			setup: func(t *testing.T, dir string) []string {
				configPath := filepath.Join(dir, "exportsrc.yaml")
				require.NoError(t, os.WriteFile(configPath, []byte("source_ext: .txt\non_collision: fail\n"), 0644))
				testutils.BuildZip(t, fs, filepath.Join(dir, "demo.zip"), map[string]string{
					"BATCH-x.json": testutils.Descriptor(t, testutils.Source{ID: "a", Code: "x"}),
				})
				return []string{"--config", configPath, "--source-ext", "py", "--keep-empty-categories", filepath.Join(dir, "demo.zip")}
			},
			validate: func(t *testing.T, dir, out string) {
				assert.FileExists(t, filepath.Join(dir, "demo", "BATCH", "BATCH-x.py"))
				assert.DirExists(t, filepath.Join(dir, "demo", "UTILITY"))
			},
		},
		{
			name: "directory_with_a_failing_archive",
			setup: func(t *testing.T, dir string) []string {
				testutils.BuildZip(t, fs, filepath.Join(dir, "a.zip"), map[string]string{
					"UTILITY-a.json": testutils.Descriptor(t, testutils.Source{ID: "a", Code: "a"}),
				})
				require.NoError(t, os.WriteFile(filepath.Join(dir, "b.zip"), []byte("nope"), 0644))
				testutils.BuildZip(t, fs, filepath.Join(dir, "c.zip"), map[string]string{
					"UTILITY-c.json": testutils.Descriptor(t, testutils.Source{ID: "c", Code: "c"}),
				})
				return []string{"--parallel", "2", dir}
			},
			wantErr:     true,
			errContains: "1 of 3 archives failed",
			validate: func(t *testing.T, dir, out string) {
				assert.FileExists(t, filepath.Join(dir, "a", "UTILITY", "UTILITY-a.groovy"))
				assert.FileExists(t, filepath.Join(dir, "c", "UTILITY", "UTILITY-c.groovy"))
				assert.Contains(t, out, "Archive")
				assert.Contains(t, out, "b.zip")
			},
		},
		{
			name: "missing_path",
			setup: func(t *testing.T, dir string) []string {
				return []string{filepath.Join(dir, "missing.zip")}
			},
			wantErr:     true,
			errContains: "invalid input",
		},
		{
			name: "no_arguments",
			setup: func(t *testing.T, dir string) []string {
				return []string{}
			},
			wantErr:     true,
			errContains: "accepts 1 arg",
		},
		{
			name: "zero_parallel",
			setup: func(t *testing.T, dir string) []string {
				return []string{"--parallel", "0", dir}
			},
			wantErr:     true,
			errContains: "parallel must be at least 1",
		},
		{
			name: "bad_collision_policy",
			setup: func(t *testing.T, dir string) []string {
				return []string{"--on-collision", "merge", dir}
			},
			wantErr:     true,
			errContains: "on_collision must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			args := tt.setup(t, dir)

			out, err := execute(t, args...)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
			} else {
				require.NoError(t, err)
			}

			if tt.validate != nil {
				tt.validate(t, dir, out)
			}
		})
	}
}

func TestFormatVersion(t *testing.T) {
	out := FormatVersion()
	assert.Contains(t, out, "exportsrc")
	assert.Contains(t, out, "Go:")
}
