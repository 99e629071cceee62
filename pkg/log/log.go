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
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent     = 4  // spaces to indent file entries
	nameWidth      = 50 // Base width for filename
	categoryWidth  = 12 // Width for category
	statusWidth    = 12 // Width for status text
	appDisplayName = "exportsrc"
)

// 🎯 FileOperation represents a file operation for logging
type FileOperation struct {
	Path       string // Path relative to the output root
	Category   string // Output category (BATCH, TRIGGER, ...)
	Status     string // Operation status
	IsNew      bool   // Whether a new file was written
	IsModified bool   // Whether an existing output was replaced
	IsRemoved  bool   // Whether the input was dropped without output
	IsError    bool   // Whether the operation failed
}

// 📦 ArchiveOperation represents an archive being processed
type ArchiveOperation struct {
	Archive    string // Archive path
	Output     string // Final output directory
	ExtractDir string // Working directory for extraction
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔇 Discard returns a logger that prints nothing
func Discard() *Logger {
	return New(io.Discard, zerolog.Nop())
}

// 📝 formatFileOperation formats a file operation for display
func (l *Logger) formatFileOperation(op FileOperation) string {
	// Determine symbol and color
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsError:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.IsRemoved:
		symbol = '-'
		symbolColor = color.FgYellow
	case op.IsModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case op.IsNew:
		symbol = '✓'
		symbolColor = color.FgGreen
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	// Format category with color
	var categoryColor color.Attribute
	switch op.Category {
	case "BATCH":
		categoryColor = color.FgMagenta
	case "TRANSACTION":
		categoryColor = color.FgCyan
	case "TRIGGER":
		categoryColor = color.FgYellow
	case "UTILITY":
		categoryColor = color.FgBlue
	default:
		categoryColor = color.Faint
	}

	category := op.Category
	if category == "" {
		category = "-"
	}

	// Build the line
	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(categoryColor).Sprint(fmt.Sprintf("%-*s", categoryWidth, category)),
		fmt.Sprintf("%-*s", statusWidth, op.Status))
}

// 📝 LogFileOperation logs a file operation
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Format and print
	fmt.Fprintln(l.console, l.formatFileOperation(op))

	// Log to zerolog
	l.zlog.Debug().
		Str("file", op.Path).
		Str("category", op.Category).
		Str("status", op.Status).
		Bool("is_new", op.IsNew).
		Bool("is_modified", op.IsModified).
		Bool("is_removed", op.IsRemoved).
		Bool("is_error", op.IsError).
		Msg("file operation")
}

// 📝 StartArchive prints the header of an archive run
func (l *Logger) StartArchive(ctx context.Context, op ArchiveOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "[extracting %s]\n",
		color.New(color.FgCyan).Sprint(op.Archive))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Output),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(op.ExtractDir))

	l.zlog.Info().
		Str("archive", op.Archive).
		Str("output", op.Output).
		Str("extract_dir", op.ExtractDir).
		Msg("starting archive")
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	appText := color.New(color.Bold, color.FgCyan).Sprint(appDisplayName)
	fmt.Fprintf(l.console, "\n%s %s\n\n", appText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Detail prints an indented line under the preceding file entry
func (l *Logger) Detail(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s%s\n", strings.Repeat(" ", fileIndent*2), color.New(color.Faint).Sprint(msg))
}
