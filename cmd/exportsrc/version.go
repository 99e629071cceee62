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
	"fmt"
	"runtime"
	"runtime/debug"
)

// VersionInfo is the build information embedded in the binary
type VersionInfo struct {
	Version  string
	Revision string
	Time     string
	Modified bool
}

// GetVersionInfo reads the version information from the build info
func GetVersionInfo() VersionInfo {
	info := VersionInfo{Version: "dev"}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if v := buildInfo.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.time":
			info.Time = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
	return info
}

// FormatVersion returns the --version output
func FormatVersion() string {
	info := GetVersionInfo()

	revision := info.Revision
	if revision == "" {
		revision = "unknown"
	}
	if info.Modified {
		revision += " (modified)"
	}

	return fmt.Sprintf("🚀 exportsrc %s\nRevision:  %s\nBuilt:     %s\nGo:        %s %s/%s\n",
		info.Version, revision, info.Time, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
