package spec

import (
	"fmt"
	"regexp"
	"sort"
)

// CredentialPattern is a pattern for detecting plaintext credentials in step configs.
type CredentialPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

var credentialPatterns = []CredentialPattern{
	{
		Name:    "GitHub Token",
		Pattern: regexp.MustCompile(`\b(ghp_|gho_|ghu_|ghs_|ghr_)[a-zA-Z0-9]{36,}\b`),
	},
	{
		Name:    "Anthropic API Key",
		Pattern: regexp.MustCompile(`\bsk-ant-[a-zA-Z0-9-]{95,}\b`),
	},
	{
		Name:    "OpenAI API Key",
		Pattern: regexp.MustCompile(`\bsk-[a-zA-Z0-9]{20,}\b`),
	},
	{
		Name:    "AWS Access Key",
		Pattern: regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
	},
	{
		Name:    "Slack Token",
		Pattern: regexp.MustCompile(`\b(xoxb-|xoxp-|xoxa-|xoxr-)[0-9]{10,13}-[0-9]{10,13}-[a-zA-Z0-9]{24,}\b`),
	},
}

// Lint returns non-blocking warnings about a valid spec. A spec with warnings
// still runs; the warnings point at likely authoring mistakes.
func Lint(s *CommandSpec) []string {
	var warnings []string
	warnings = append(warnings, lintOutputVars(s)...)
	warnings = append(warnings, DetectEmbeddedCredentials(s)...)
	return warnings
}

func lintOutputVars(s *CommandSpec) []string {
	var warnings []string
	firstType := make(map[string]OperationType)
	firstIndex := make(map[string]int)

	for i, step := range s.Steps {
		name := step.OutputVar
		if name == "" {
			continue
		}
		if contains(ReservedNames, name) {
			warnings = append(warnings, fmt.Sprintf(
				"steps[%d].outputVar %q shadows a variable the interpreter provides", i, name))
		}
		if prev, ok := firstType[name]; ok && prev != step.Type {
			warnings = append(warnings, fmt.Sprintf(
				"steps[%d] (%s) reuses outputVar %q already bound by steps[%d] (%s); the later value wins",
				i, step.Type, name, firstIndex[name], prev))
			continue
		}
		if _, ok := firstType[name]; !ok {
			firstType[name] = step.Type
			firstIndex[name] = i
		}
	}
	return warnings
}

// DetectEmbeddedCredentials scans every string in step and action configs for
// plaintext credentials. Secrets belong in the environment and should be
// referenced as {{env.NAME}}.
func DetectEmbeddedCredentials(s *CommandSpec) []string {
	var warnings []string

	check := func(location string, value any) {
		walkStrings(value, location, func(path, str string) {
			for _, pattern := range credentialPatterns {
				if pattern.Pattern.MatchString(str) {
					warnings = append(warnings, fmt.Sprintf(
						"%s contains %s - reference it from the environment with {{env.NAME}} instead",
						path, pattern.Name,
					))
				}
			}
		})
	}

	for i, step := range s.Steps {
		check(fmt.Sprintf("steps[%d].config", i), step.Config)
	}
	for i, action := range s.Actions {
		check(fmt.Sprintf("actions[%d].operation.config", i), action.Operation.Config)
	}
	return warnings
}

func walkStrings(v any, path string, fn func(path, s string)) {
	switch val := v.(type) {
	case string:
		fn(path, val)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkStrings(val[k], path+"."+k, fn)
		}
	case []any:
		for i, item := range val {
			walkStrings(item, fmt.Sprintf("%s[%d]", path, i), fn)
		}
	}
}
