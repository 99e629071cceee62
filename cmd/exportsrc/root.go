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
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/exportsrc/cmd/exportsrc/opts"
	"github.com/walteh/exportsrc/pkg/config"
	"github.com/walteh/exportsrc/pkg/log"
	"github.com/walteh/exportsrc/pkg/operation"
)

// rootFlags holds the command line flags
type rootFlags struct {
	configFile          string
	debug               bool
	sourceExt           string
	onCollision         string
	parallel            int
	keepEmptyCategories bool
}

// newRootCmd creates the exportsrc command
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "exportsrc <archive.zip | directory>",
		Short: "Unpack exported configuration archives into source trees",
		Long: `exportsrc unpacks zip archives of exported configuration artifacts and turns
them into a tree of source files. For every archive it will:
1. Extract the archive into a working directory
2. Collect the JSON descriptors and delete every other file
3. Decode each descriptor's sources into <category>[/<sub-name>]/<name>.groovy
4. Rename the working directory after the archive, merging into an existing one

Given a directory, every top-level archive in it is processed in name order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       GetVersionInfo().Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), cmd.ErrOrStderr(), flags.debug)

			o, err := newRootOpts(ctx, cmd, flags)
			if err != nil {
				return err
			}

			return run(ctx, o, args[0])
		},
	}
	cmd.SetVersionTemplate(FormatVersion())

	addRootFlags(cmd, flags)

	return cmd
}

// addRootFlags adds the flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.Flags().StringVarP(&flags.configFile, "config", "c", "", "config file path (default: .exportsrc.{hcl,yaml,yml,json} in the working directory)")
	cmd.Flags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().StringVar(&flags.sourceExt, "source-ext", config.DefaultSourceExt, "extension of the emitted source files")
	cmd.Flags().StringVar(&flags.onCollision, "on-collision", string(config.CollisionOverwrite), "what to do when two outputs land on the same path: overwrite, fail or rename")
	cmd.Flags().IntVarP(&flags.parallel, "parallel", "p", 1, "number of archives processed concurrently")
	cmd.Flags().BoolVar(&flags.keepEmptyCategories, "keep-empty-categories", false, "keep the four category directories even when empty")
}

// setupLogging configures zerolog based on flags
func setupLogging(ctx context.Context, w io.Writer, debug bool) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)}).
		Level(level).
		With().Timestamp().Logger()
	return logger.WithContext(ctx)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// newRootOpts loads the config, applies flag overrides and builds the pipeline
func newRootOpts(ctx context.Context, cmd *cobra.Command, flags *rootFlags) (*opts.RootOpts, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.LoadOrDefault(ctx, flags.configFile, wd)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	changed := cmd.Flags().Changed
	if changed("source-ext") {
		cfg.SourceExt = flags.sourceExt
	}
	if changed("on-collision") {
		cfg.OnCollision = config.CollisionPolicy(flags.onCollision)
	}
	if changed("parallel") {
		cfg.Parallel = flags.parallel
	}
	if changed("keep-empty-categories") {
		cfg.KeepEmptyCategories = flags.keepEmptyCategories
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("config", cfg.String()).Msg("configuration loaded")

	console := log.New(cmd.OutOrStdout(), *zerolog.Ctx(ctx))

	p, err := operation.New(operation.Options{
		Config:  cfg,
		Console: console,
	})
	if err != nil {
		return nil, errors.Errorf("creating pipeline: %w", err)
	}

	return &opts.RootOpts{
		Config:   cfg,
		Pipeline: p,
		Console:  console,
		Out:      cmd.OutOrStdout(),
	}, nil
}
