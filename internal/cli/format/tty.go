// Copyright 2025 Tom Barlow
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

package format

import (
	"io"
	"os"

	"golang.org/x/term"
)

// ForceColorEnv forces styled output for any writer when set to "1",
// for pagers and CI logs that render ANSI colors.
const ForceColorEnv = "CMDSPEC_FORCE_COLOR"

// fdWriter is satisfied by *os.File.
type fdWriter interface {
	Fd() uintptr
}

// Styled reports whether highlighted or rendered output should be written
// to w. NO_COLOR and a dumb or empty TERM turn styling off, ForceColorEnv
// turns it on, and otherwise w must be a terminal.
func Styled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv(ForceColorEnv) == "1" {
		return true
	}
	if t := os.Getenv("TERM"); t == "" || t == "dumb" {
		return false
	}
	f, ok := w.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}
