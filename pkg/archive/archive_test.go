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

package archive_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/exportsrc/pkg/archive"
	"github.com/walteh/exportsrc/pkg/testutils"
)

func TestExtract(t *testing.T) {
	ctx := testutils.Context(t)
	fs := afero.NewMemMapFs()

	testutils.BuildZip(t, fs, "/in/demo.zip", map[string]string{
		"sub/TRIGGER-alerts-2.json": `{"sources":{}}`,
		"readme.txt":                "hello",
		"empty/":                    "",
		"deep/er/still/x.json":      "{}",
	})

	// pre-existing colliding file is overwritten
	testutils.WriteTree(t, fs, "/out", map[string]string{"readme.txt": "stale"})

	require.NoError(t, archive.Extract(ctx, fs, "/in/demo.zip", "/out"))

	tree := testutils.ReadTree(t, fs, "/out")
	assert.Equal(t, map[string]string{
		"sub/":                      "",
		"sub/TRIGGER-alerts-2.json": `{"sources":{}}`,
		"readme.txt":                "hello",
		"empty/":                    "",
		"deep/":                     "",
		"deep/er/":                  "",
		"deep/er/still/":            "",
		"deep/er/still/x.json":      "{}",
	}, tree)
}

func TestExtractCreatesTarget(t *testing.T) {
	ctx := testutils.Context(t)
	fs := afero.NewMemMapFs()

	testutils.BuildZip(t, fs, "/a.zip", map[string]string{"x.json": "{}"})
	require.NoError(t, archive.Extract(ctx, fs, "/a.zip", "/new/target"))
	assert.True(t, testutils.Exists(t, fs, "/new/target/x.json"))
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, fs afero.Fs)
	}{
		{
			name:  "missing_archive",
			setup: func(t *testing.T, fs afero.Fs) {},
		},
		{
			name: "not_a_zip",
			setup: func(t *testing.T, fs afero.Fs) {
				require.NoError(t, afero.WriteFile(fs, "/a.zip", []byte("definitely not a zip"), 0644))
			},
		},
		{
			name: "parent_traversal",
			setup: func(t *testing.T, fs afero.Fs) {
				testutils.BuildZip(t, fs, "/a.zip", map[string]string{"../escape.json": "{}"})
			},
		},
		{
			name: "absolute_entry",
			setup: func(t *testing.T, fs afero.Fs) {
				testutils.BuildZip(t, fs, "/a.zip", map[string]string{"/etc/escape.json": "{}"})
			},
		},
		{
			name: "corrupt_entry",
			setup: func(t *testing.T, fs afero.Fs) {
				var buf bytes.Buffer
				w := zip.NewWriter(&buf)
				fw, err := w.CreateHeader(&zip.FileHeader{Name: "x.json", Method: zip.Store})
				require.NoError(t, err)
				_, err = fw.Write([]byte("some stored content"))
				require.NoError(t, err)
				require.NoError(t, w.Close())

				// flip a byte of the stored payload so the crc no longer matches
				data := buf.Bytes()
				idx := bytes.Index(data, []byte("some stored content"))
				require.GreaterOrEqual(t, idx, 0)
				data[idx] ^= 0xff
				require.NoError(t, afero.WriteFile(fs, "/a.zip", data, 0644))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutils.Context(t)
			fs := afero.NewMemMapFs()
			tt.setup(t, fs)

			err := archive.Extract(ctx, fs, "/a.zip", "/out")
			require.Error(t, err)

			var aerr *archive.Error
			require.True(t, errors.As(err, &aerr), "expected *archive.Error, got %T: %v", err, err)
			assert.Equal(t, "/a.zip", aerr.Path)
			assert.Contains(t, err.Error(), "archive /a.zip")
		})
	}
}

func TestExtractOnDisk(t *testing.T) {
	ctx := testutils.Context(t)
	fs := afero.NewOsFs()
	dir := t.TempDir()

	zipPath := filepath.Join(dir, "demo.zip")
	testutils.BuildZip(t, fs, zipPath, map[string]string{"a/b/c.json": "{}"})

	target := filepath.Join(dir, "extracted_files")
	require.NoError(t, archive.Extract(ctx, fs, zipPath, target))
	assert.True(t, testutils.Exists(t, fs, filepath.Join(target, "a", "b", "c.json")))
}
