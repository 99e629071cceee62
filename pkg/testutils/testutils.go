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

// Package testutils holds fixtures shared by the pipeline tests.
package testutils

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// 🧪 Context returns a context carrying a logger that writes to the test log
func Context(t testing.TB) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// 📄 Source is one entry of a descriptor fixture
type Source struct {
	ID   string
	Code string // plain text, encoded when the descriptor is built
}

// 📝 Descriptor renders a descriptor document whose sources appear in the given order
func Descriptor(t testing.TB, sources ...Source) string {
	t.Helper()

	buf := []byte(`{"name":"fixture","sources":{`)
	for i, s := range sources {
		if i > 0 {
			buf = append(buf, ',')
		}
		id, err := json.Marshal(s.ID)
		require.NoError(t, err)
		value, err := json.Marshal(map[string]string{
			"code": base64.StdEncoding.EncodeToString([]byte(s.Code)),
		})
		require.NoError(t, err)
		buf = append(buf, id...)
		buf = append(buf, ':')
		buf = append(buf, value...)
	}
	buf = append(buf, "}}"...)
	return string(buf)
}

// 🗜️ BuildZip writes a zip archive at path. Keys ending in "/" become directory entries.
func BuildZip(t testing.TB, fs afero.Fs, path string, entries map[string]string) {
	t.Helper()

	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	f, err := fs.Create(path)
	require.NoError(t, err)
	defer f.Close()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	w := zip.NewWriter(f)
	for _, name := range names {
		if name[len(name)-1] == '/' {
			_, err := w.Create(name)
			require.NoError(t, err)
			continue
		}
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

// 📂 WriteTree writes files (relative path -> content) under root. Keys ending
// in "/" create empty directories.
func WriteTree(t testing.TB, fs afero.Fs, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			require.NoError(t, fs.MkdirAll(p, 0755))
			continue
		}
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, afero.WriteFile(fs, p, []byte(content), 0644))
	}
}

// 🌳 ReadTree returns every file under root keyed by slash-separated relative
// path. Directories are listed with a trailing "/".
func ReadTree(t testing.TB, fs afero.Fs, root string) map[string]string {
	t.Helper()

	out := map[string]string{}
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			out[rel+"/"] = ""
			return nil
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		out[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

// ✅ Exists reports whether path exists on fs
func Exists(t testing.TB, fs afero.Fs, path string) bool {
	t.Helper()

	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	return ok
}
