/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


// Package version carries build information, set at link time:
//
//	go build -ldflags "-X segmenter/internal/version.Version=1.2.0 -X segmenter/internal/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildTime = ""
)

// String returns the version with commit and build time when known. Without
// a linked commit the VCS revision recorded by the toolchain is used.
func String() string {
	commit := GitCommit
	if commit == "" {
		commit = vcsRevision()
	}
	s := Version
	if commit != "" {
		s = fmt.Sprintf("%s (%s)", s, commit)
	}
	if BuildTime != "" {
		s += " built " + BuildTime
	}
	return s
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, kv := range info.Settings {
		if kv.Key == "vcs.revision" && len(kv.Value) >= 7 {
			return kv.Value[:7]
		}
	}
	return ""
}
