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

// Package descriptor parses exported descriptor documents and decodes their sources.
package descriptor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"
)

// ErrMissingSources is returned when a descriptor has no sources mapping.
var ErrMissingSources = errors.Base("missing sources mapping")

// 📄 Source is a single embedded payload
type Source struct {
	ID   string
	Code string // base64, as found in the document

	err error // set when the entry itself is unusable
}

// 📦 Descriptor is a parsed descriptor document
type Descriptor struct {
	// Sources keeps the order in which ids appear in the document.
	Sources []Source
}

type rawSource struct {
	Code *string `json:"code"`
}

// 🔍 Parse parses a descriptor document. Top-level fields other than
// "sources" are ignored.
func Parse(data []byte) (*Descriptor, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, errors.Errorf("parsing descriptor: %w", err)
	}

	raw, ok := top["sources"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, errors.WithStack(ErrMissingSources)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Errorf("reading sources: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.Errorf("sources must be an object, got %v", tok)
	}

	desc := &Descriptor{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.Errorf("reading source id: %w", err)
		}
		id, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, errors.Errorf("reading source %q: %w", id, err)
		}

		src := Source{ID: id}
		var rs rawSource
		switch err := json.Unmarshal(value, &rs); {
		case err != nil:
			src.err = errors.Errorf("source %q is not an object with a string code: %w", id, err)
		case rs.Code == nil:
			src.err = errors.Errorf("source %q has no code", id)
		default:
			src.Code = *rs.Code
		}
		desc.Sources = append(desc.Sources, src)
	}

	return desc, nil
}

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// 🔓 Decode returns the decoded source text. Whitespace inside the payload is
// ignored and both the standard and URL-safe alphabets are accepted, padded or not.
func (s Source) Decode() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}

	payload := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s.Code)

	var firstErr error
	for _, enc := range encodings {
		out, err := enc.DecodeString(payload)
		if err == nil {
			return out, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, errors.Errorf("decoding source %q: %w", s.ID, firstErr)
}
