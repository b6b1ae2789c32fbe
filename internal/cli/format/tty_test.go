// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package format

import (
	"bytes"
	"os"
	"testing"
)

func TestStyled(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		w     func(t *testing.T) *os.File
		want  bool
		plain bool
	}{
		{name: "buffer is never a terminal", env: map[string]string{"TERM": "xterm-256color"}, plain: true},
		{name: "force color on buffer", env: map[string]string{ForceColorEnv: "1"}, plain: true, want: true},
		{name: "NO_COLOR beats force", env: map[string]string{ForceColorEnv: "1", "NO_COLOR": "1"}, plain: true},
		{name: "dumb terminal", env: map[string]string{"TERM": "dumb"}, w: regularFile},
		{name: "regular file", env: map[string]string{"TERM": "xterm"}, w: regularFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"NO_COLOR", "TERM", ForceColorEnv} {
				t.Setenv(k, tt.env[k])
			}

			var got bool
			if tt.plain {
				got = Styled(&bytes.Buffer{})
			} else {
				got = Styled(tt.w(t))
			}
			if got != tt.want {
				t.Errorf("Styled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func regularFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}
