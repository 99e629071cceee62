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

package descriptor

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		wantIDs     []string
		wantErr     bool
		errIs       error
		errContains string
	}{
		{
			name:    "keeps_document_order",
			doc:     `{"name": "ignored", "sources": {"z": {"code": "` + b64("1") + `"}, "a": {"code": "` + b64("2") + `"}, "m": {"code": "` + b64("3") + `", "lang": "groovy"}}}`,
			wantIDs: []string{"z", "a", "m"},
		},
		{
			name:    "empty_sources",
			doc:     `{"sources": {}}`,
			wantIDs: nil,
		},
		{
			name:    "bad_entries_do_not_fail_the_document",
			doc:     `{"sources": {"a": 5, "b": {}, "c": null}}`,
			wantIDs: []string{"a", "b", "c"},
		},
		{
			name:        "invalid_json",
			doc:         `{"sources": `,
			wantErr:     true,
			errContains: "parsing descriptor",
		},
		{
			name:    "missing_sources",
			doc:     `{"other": 1}`,
			wantErr: true,
			errIs:   ErrMissingSources,
		},
		{
			name:    "null_sources",
			doc:     `{"sources": null}`,
			wantErr: true,
			errIs:   ErrMissingSources,
		},
		{
			name:        "sources_not_object",
			doc:         `{"sources": ["a"]}`,
			wantErr:     true,
			errContains: "sources must be an object",
		},
		{
			name:        "top_level_array",
			doc:         `[]`,
			wantErr:     true,
			errContains: "parsing descriptor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := Parse([]byte(tt.doc))
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					assert.True(t, errors.Is(err, tt.errIs), "error should wrap %v, got %v", tt.errIs, err)
				}
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			var ids []string
			for _, s := range desc.Sources {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSourceDecode(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		want        string
		errContains string
	}{
		{name: "standard", code: b64("println 1"), want: "println 1"},
		{name: "unpadded", code: base64.RawStdEncoding.EncodeToString([]byte("ab")), want: "ab"},
		{name: "url_safe", code: base64.URLEncoding.EncodeToString([]byte{0xfb, 0xff}), want: string([]byte{0xfb, 0xff})},
		{name: "wrapped_lines", code: "cHJpbnRs\nbiAx\r\n", want: "println 1"},
		{name: "utf8", code: b64("def s = 'héllo ✓'"), want: "def s = 'héllo ✓'"},
		{name: "empty", code: "", want: ""},
		{name: "invalid", code: "!!!not base64!!!", errContains: `decoding source "id"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Source{ID: "id", Code: tt.code}.Decode()
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestBadEntriesFailOnDecode(t *testing.T) {
	desc, err := Parse([]byte(`{"sources": {"a": 5, "b": {}, "ok": {"code": "` + b64("x") + `"}}}`))
	require.NoError(t, err)
	require.Len(t, desc.Sources, 3)

	_, err = desc.Sources[0].Decode()
	assert.ErrorContains(t, err, `source "a" is not an object`)

	_, err = desc.Sources[1].Decode()
	assert.ErrorContains(t, err, `source "b" has no code`)

	out, err := desc.Sources[2].Decode()
	require.NoError(t, err)
	assert.Equal(t, "x", string(out))
}
