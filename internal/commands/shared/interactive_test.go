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
package shared

import (
	"os"
	"testing"
)

var interactiveEnv = []string{
	"CMDSPEC_NON_INTERACTIVE",
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"JENKINS_HOME",
}

func clearInteractiveEnv(t *testing.T) {
	t.Helper()
	for _, key := range interactiveEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestIsNonInteractive(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{name: "CMDSPEC_NON_INTERACTIVE=true", envVars: map[string]string{"CMDSPEC_NON_INTERACTIVE": "true"}},
		{name: "CMDSPEC_NON_INTERACTIVE=1", envVars: map[string]string{"CMDSPEC_NON_INTERACTIVE": "1"}},
		{name: "CI=true", envVars: map[string]string{"CI": "true"}},
		{name: "GITHUB_ACTIONS=true", envVars: map[string]string{"GITHUB_ACTIONS": "true"}},
		{name: "JENKINS_HOME set to path", envVars: map[string]string{"JENKINS_HOME": "/var/jenkins"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearInteractiveEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			if !IsNonInteractive() {
				t.Errorf("IsNonInteractive() = false, expected true")
			}
		})
	}

	t.Run("no indicators follows stdin", func(t *testing.T) {
		clearInteractiveEnv(t)
		if got, want := IsNonInteractive(), !isTerminal(); got != want {
			t.Errorf("IsNonInteractive() = %v, expected %v", got, want)
		}
	})
}

func TestIsCIEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected bool
	}{
		{name: "no CI vars", envVars: map[string]string{}, expected: false},
		{name: "CI=true", envVars: map[string]string{"CI": "true"}, expected: true},
		{name: "CI=1", envVars: map[string]string{"CI": "1"}, expected: true},
		{name: "CI=false", envVars: map[string]string{"CI": "false"}, expected: false},
		{name: "GITLAB_CI=true", envVars: map[string]string{"GITLAB_CI": "true"}, expected: true},
		{name: "CIRCLECI=true", envVars: map[string]string{"CIRCLECI": "true"}, expected: true},
		{name: "JENKINS_HOME set", envVars: map[string]string{"JENKINS_HOME": "/var/jenkins"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearInteractiveEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			if got := isCIEnvironment(); got != tt.expected {
				t.Errorf("isCIEnvironment() = %v, expected %v", got, tt.expected)
			}
		})
	}
}
