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

// Package classify maps descriptor filenames to output categories.
//
// Classification looks at nothing but the filename, so it never touches the
// filesystem and can be tested in isolation.
package classify

import (
	"path/filepath"
	"strings"
)

// 🏷️ Category is the top-level output classification of a descriptor
type Category int

const (
	Unmatched Category = iota
	Batch
	Transaction
	Trigger
	Utility
)

// Categories lists the matchable categories in the order prefixes are checked.
var Categories = []Category{Batch, Transaction, Trigger, Utility}

// String returns the category prefix, which is also its directory name.
func (c Category) String() string {
	switch c {
	case Batch:
		return "BATCH"
	case Transaction:
		return "TRANSACTION"
	case Trigger:
		return "TRIGGER"
	case Utility:
		return "UTILITY"
	default:
		return "UNMATCHED"
	}
}

// HasSubName reports whether descriptors of this category nest under a sub-name directory.
func (c Category) HasSubName() bool {
	return c == Transaction || c == Trigger
}

// 🎯 Result is the outcome of classifying a single filename
type Result struct {
	Category Category
	SubName  string // only set for Transaction and Trigger
}

// Matched reports whether the filename belongs to any category.
func (r Result) Matched() bool {
	return r.Category != Unmatched
}

// Dir returns the destination directory relative to the output root.
// Unmatched results have no directory.
func (r Result) Dir() string {
	if !r.Matched() {
		return ""
	}
	if r.Category.HasSubName() {
		return filepath.Join(r.Category.String(), r.SubName)
	}
	return r.Category.String()
}

// 🔍 Classify matches the filename against the category prefixes, first match wins.
// The prefix match is exact and case sensitive.
func Classify(filename string) Result {
	for _, c := range Categories {
		if !strings.HasPrefix(filename, c.String()) {
			continue
		}
		r := Result{Category: c}
		if c.HasSubName() {
			r.SubName = SubName(filename)
		}
		return r
	}
	return Result{Category: Unmatched}
}

// ✂️ SubName returns the text strictly between the first and second hyphen of
// filename, or "" when it has fewer than two hyphens.
func SubName(filename string) string {
	_, rest, ok := strings.Cut(filename, "-")
	if !ok {
		return ""
	}
	name, _, ok := strings.Cut(rest, "-")
	if !ok {
		return ""
	}
	return name
}
